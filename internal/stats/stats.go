// Package stats computes the aggregate environmental-impact summary shown on
// the public dashboard. Everything here is pure: the estimator operates on an
// already-fetched slice of submissions and performs no I/O.
package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gearreport/internal/models"
)

// CategoryStats is one per-category row of the impact breakdown.
type CategoryStats struct {
	Category       models.EquipmentCategory `json:"category"`
	Emoji          string                   `json:"emoji"`
	Name           string                   `json:"name"`
	Unit           string                   `json:"unit"`
	EstimatedCount float64                  `json:"estimated_count"`
	RangeText      string                   `json:"range_text"`
}

// ImpactStats is the aggregate summary produced by CalculateImpactStats.
//
// EstimatedTotalPieces and LineMeters are deliberately kept separate: line
// length does not count as "pieces", and views decide how to combine them.
type ImpactStats struct {
	TotalSubmissions     int             `json:"total_submissions"`
	TotalEquipmentItems  int             `json:"total_equipment_items"`
	EstimatedTotalPieces float64         `json:"estimated_total_pieces"`
	LineMeters           float64         `json:"line_meters"`
	EquipmentByCategory  []CategoryStats `json:"equipment_by_category"`
}

// Bucket point estimates. Each value is the midpoint of its bucket, except
// the open-ended top buckets which use a conservative fixed value.
var pieceEstimates = map[string]float64{
	models.QuantityFew:      5,   // 1-10
	models.QuantityMany:     30,  // 10-50
	models.QuantityLots:     75,  // 50-100
	models.QuantityHugeHaul: 150, // 100+
}

var lineMeterEstimates = map[string]float64{
	models.QuantityLine1to5:   3,
	models.QuantityLine5to10:  7.5,
	models.QuantityLine10to20: 15,
	models.QuantityLine20Plus: 25,
}

// display holds the fixed presentation attributes per category.
var display = map[models.EquipmentCategory]struct {
	emoji string
	name  string
	unit  string
}{
	models.CategoryHooks:   {"🪝", "Krokar", "st"},
	models.CategoryLures:   {"🎣", "Beten/Drag", "st"},
	models.CategoryLines:   {"🧵", "Fiskelina", "meter"},
	models.CategoryWeights: {"⚖️", "Vikter/Lod", "st"},
	models.CategoryFloats:  {"🎈", "Flöten", "st"},
	models.CategoryOther:   {"🔧", "Övrigt", "st"},
}

// CalculateImpactStats aggregates approved submissions into the impact
// summary. Callers may pass the full working set; the function filters to
// approved submissions itself. Equipment entries with a category outside the
// active enum (legacy records) are skipped.
func CalculateImpactStats(submissions []models.Submission) ImpactStats {
	var out ImpactStats

	type bucket struct {
		reports   int
		estimated float64
	}
	byCategory := make(map[models.EquipmentCategory]*bucket)

	for i := range submissions {
		sub := &submissions[i]
		if sub.Status != models.StatusApproved {
			continue
		}
		out.TotalSubmissions++

		for _, entry := range sub.Equipment {
			_, known := display[entry.Category]
			if !known {
				// Legacy category value no longer in the enum.
				continue
			}

			b := byCategory[entry.Category]
			if b == nil {
				b = &bucket{}
				byCategory[entry.Category] = b
			}
			b.reports++
			out.TotalEquipmentItems++

			var estimate float64
			if entry.Category == models.CategoryLines {
				estimate = lineMeterEstimates[entry.Quantity]
			} else {
				estimate = pieceEstimates[entry.Quantity]
			}
			if entry.AdminAdjustedCount != nil {
				estimate = *entry.AdminAdjustedCount
			}

			b.estimated += estimate
			if entry.Category == models.CategoryLines {
				out.LineMeters += estimate
			} else {
				out.EstimatedTotalPieces += estimate
			}
		}
	}

	// Categories with no observed entries are omitted, not emitted as zeros.
	for _, cat := range models.Categories() {
		b := byCategory[cat]
		if b == nil || b.estimated <= 0 {
			continue
		}
		d := display[cat]
		out.EquipmentByCategory = append(out.EquipmentByCategory, CategoryStats{
			Category:       cat,
			Emoji:          d.emoji,
			Name:           d.name,
			Unit:           d.unit,
			EstimatedCount: b.estimated,
			RangeText:      fmt.Sprintf("%d rapporter", b.reports),
		})
	}

	return out
}

// FormatNumber renders counts for display: values of 1000 and above collapse
// to a one-decimal "k" form ("1.5k"), smaller values print as-is.
func FormatNumber(n float64) string {
	if n >= 1000 {
		return strconv.FormatFloat(n/1000, 'f', 1, 64) + "k"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ImpactMessage composes the short shareable summary line for an aggregate.
func ImpactMessage(s ImpactStats) string {
	messages := []string{
		fmt.Sprintf("🎣 %d rapporter godkända", s.TotalSubmissions),
		fmt.Sprintf("🧹 Uppskattningsvis %s delar återvunna", FormatNumber(s.EstimatedTotalPieces)),
	}

	if s.LineMeters > 0 {
		messages = append(messages, fmt.Sprintf("🧵 %d meter fiskelina", int(math.Round(s.LineMeters))))
	}

	return strings.Join(messages, " • ")
}
