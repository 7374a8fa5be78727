package stats

import (
	"testing"

	"gearreport/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedWith(entries ...models.EquipmentEntry) models.Submission {
	return models.Submission{Status: models.StatusApproved, Equipment: entries}
}

func floatPtr(f float64) *float64 { return &f }

func TestCalculateImpactStats_Empty(t *testing.T) {
	s := CalculateImpactStats(nil)
	assert.Equal(t, 0, s.TotalSubmissions)
	assert.Equal(t, 0, s.TotalEquipmentItems)
	assert.Zero(t, s.EstimatedTotalPieces)
	assert.Zero(t, s.LineMeters)
	assert.Empty(t, s.EquipmentByCategory)

	s = CalculateImpactStats([]models.Submission{})
	assert.Equal(t, 0, s.TotalSubmissions)
	assert.Empty(t, s.EquipmentByCategory)
}

func TestCalculateImpactStats_FiltersUnapproved(t *testing.T) {
	subs := []models.Submission{
		{Status: models.StatusPending, Equipment: []models.EquipmentEntry{
			{Category: models.CategoryHooks, Quantity: models.QuantityHugeHaul},
		}},
		{Status: models.StatusRejected, Equipment: []models.EquipmentEntry{
			{Category: models.CategoryLures, Quantity: models.QuantityLots},
		}},
	}

	s := CalculateImpactStats(subs)
	assert.Equal(t, 0, s.TotalSubmissions)
	assert.Equal(t, 0, s.TotalEquipmentItems)
	assert.Zero(t, s.EstimatedTotalPieces)
	assert.Empty(t, s.EquipmentByCategory)
}

func TestCalculateImpactStats_LineEntry(t *testing.T) {
	subs := []models.Submission{
		approvedWith(models.EquipmentEntry{Category: models.CategoryLines, Quantity: models.QuantityLine5to10}),
	}

	s := CalculateImpactStats(subs)
	assert.InDelta(t, 7.5, s.LineMeters, 1e-9)
	assert.Zero(t, s.EstimatedTotalPieces, "line meters must not count as pieces")
	require.Len(t, s.EquipmentByCategory, 1)
	assert.Equal(t, models.CategoryLines, s.EquipmentByCategory[0].Category)
	assert.Equal(t, "meter", s.EquipmentByCategory[0].Unit)
	assert.InDelta(t, 7.5, s.EquipmentByCategory[0].EstimatedCount, 1e-9)
}

func TestCalculateImpactStats_HooksHugeHaul(t *testing.T) {
	subs := []models.Submission{
		approvedWith(models.EquipmentEntry{Category: models.CategoryHooks, Quantity: models.QuantityHugeHaul}),
	}

	s := CalculateImpactStats(subs)
	assert.InDelta(t, 150, s.EstimatedTotalPieces, 1e-9)
	require.Len(t, s.EquipmentByCategory, 1)
	assert.Equal(t, models.CategoryHooks, s.EquipmentByCategory[0].Category)
	assert.InDelta(t, 150, s.EquipmentByCategory[0].EstimatedCount, 1e-9)
	assert.Equal(t, "1 rapporter", s.EquipmentByCategory[0].RangeText)
}

func TestCalculateImpactStats_BucketTable(t *testing.T) {
	cases := []struct {
		quantity string
		want     float64
	}{
		{models.QuantityFew, 5},
		{models.QuantityMany, 30},
		{models.QuantityLots, 75},
		{models.QuantityHugeHaul, 150},
	}
	for _, tc := range cases {
		subs := []models.Submission{
			approvedWith(models.EquipmentEntry{Category: models.CategoryWeights, Quantity: tc.quantity}),
		}
		s := CalculateImpactStats(subs)
		assert.InDelta(t, tc.want, s.EstimatedTotalPieces, 1e-9, tc.quantity)
	}

	lineCases := []struct {
		quantity string
		want     float64
	}{
		{models.QuantityLine1to5, 3},
		{models.QuantityLine5to10, 7.5},
		{models.QuantityLine10to20, 15},
		{models.QuantityLine20Plus, 25},
	}
	for _, tc := range lineCases {
		subs := []models.Submission{
			approvedWith(models.EquipmentEntry{Category: models.CategoryLines, Quantity: tc.quantity}),
		}
		s := CalculateImpactStats(subs)
		assert.InDelta(t, tc.want, s.LineMeters, 1e-9, tc.quantity)
	}
}

func TestCalculateImpactStats_AdminAdjustedCountOverrides(t *testing.T) {
	subs := []models.Submission{
		approvedWith(models.EquipmentEntry{
			Category:           models.CategoryOther,
			Quantity:           models.QuantityFew,
			AdminAdjustedCount: floatPtr(42),
		}),
	}

	s := CalculateImpactStats(subs)
	assert.InDelta(t, 42, s.EstimatedTotalPieces, 1e-9)
	require.Len(t, s.EquipmentByCategory, 1)
	assert.InDelta(t, 42, s.EquipmentByCategory[0].EstimatedCount, 1e-9)
	// The category still registers the entry.
	assert.Equal(t, 1, s.TotalEquipmentItems)
	assert.Equal(t, "1 rapporter", s.EquipmentByCategory[0].RangeText)
}

func TestCalculateImpactStats_AdminAdjustedLineEntry(t *testing.T) {
	subs := []models.Submission{
		approvedWith(models.EquipmentEntry{
			Category:           models.CategoryLines,
			Quantity:           models.QuantityLine1to5,
			AdminAdjustedCount: floatPtr(12),
		}),
	}

	s := CalculateImpactStats(subs)
	assert.InDelta(t, 12, s.LineMeters, 1e-9)
	assert.Zero(t, s.EstimatedTotalPieces)
}

func TestCalculateImpactStats_SkipsUnknownCategory(t *testing.T) {
	subs := []models.Submission{
		approvedWith(
			models.EquipmentEntry{Category: "nets", Quantity: "2"},
			models.EquipmentEntry{Category: models.CategoryHooks, Quantity: models.QuantityFew},
		),
	}

	s := CalculateImpactStats(subs)
	assert.Equal(t, 1, s.TotalEquipmentItems)
	assert.InDelta(t, 5, s.EstimatedTotalPieces, 1e-9)
	require.Len(t, s.EquipmentByCategory, 1)
	assert.Equal(t, models.CategoryHooks, s.EquipmentByCategory[0].Category)
}

func TestCalculateImpactStats_NoEquipment(t *testing.T) {
	subs := []models.Submission{
		{Status: models.StatusApproved},
		{Status: models.StatusApproved, Equipment: []models.EquipmentEntry{}},
	}

	s := CalculateImpactStats(subs)
	assert.Equal(t, 2, s.TotalSubmissions)
	assert.Equal(t, 0, s.TotalEquipmentItems)
	assert.Empty(t, s.EquipmentByCategory)
}

func TestCalculateImpactStats_AbsentCategoriesOmitted(t *testing.T) {
	subs := []models.Submission{
		approvedWith(
			models.EquipmentEntry{Category: models.CategoryHooks, Quantity: models.QuantityMany},
			models.EquipmentEntry{Category: models.CategoryFloats, Quantity: models.QuantityFew},
		),
	}

	s := CalculateImpactStats(subs)
	require.Len(t, s.EquipmentByCategory, 2)
	for _, row := range s.EquipmentByCategory {
		assert.NotEqual(t, models.CategoryLures, row.Category)
		assert.Positive(t, row.EstimatedCount)
	}
}

func TestCalculateImpactStats_Aggregation(t *testing.T) {
	subs := []models.Submission{
		approvedWith(
			models.EquipmentEntry{Category: models.CategoryHooks, Quantity: models.QuantityMany},
			models.EquipmentEntry{Category: models.CategoryLines, Quantity: models.QuantityLine10to20},
		),
		approvedWith(
			models.EquipmentEntry{Category: models.CategoryHooks, Quantity: models.QuantityFew},
		),
		{Status: models.StatusPending, Equipment: []models.EquipmentEntry{
			{Category: models.CategoryHooks, Quantity: models.QuantityHugeHaul},
		}},
	}

	s := CalculateImpactStats(subs)
	assert.Equal(t, 2, s.TotalSubmissions)
	assert.Equal(t, 3, s.TotalEquipmentItems)
	assert.InDelta(t, 35, s.EstimatedTotalPieces, 1e-9)
	assert.InDelta(t, 15, s.LineMeters, 1e-9)

	require.Len(t, s.EquipmentByCategory, 2)
	assert.Equal(t, models.CategoryHooks, s.EquipmentByCategory[0].Category)
	assert.Equal(t, "2 rapporter", s.EquipmentByCategory[0].RangeText)
	assert.Equal(t, models.CategoryLines, s.EquipmentByCategory[1].Category)
}

func TestCalculateImpactStats_Idempotent(t *testing.T) {
	subs := []models.Submission{
		approvedWith(
			models.EquipmentEntry{Category: models.CategoryLures, Quantity: models.QuantityLots},
			models.EquipmentEntry{Category: models.CategoryLines, Quantity: models.QuantityLine20Plus},
		),
	}

	first := CalculateImpactStats(subs)
	second := CalculateImpactStats(subs)
	assert.Equal(t, first, second)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1.0k", FormatNumber(1000))
	assert.Equal(t, "1.5k", FormatNumber(1500))
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "7.5", FormatNumber(7.5))
	assert.Equal(t, "12.3k", FormatNumber(12345))
}

func TestImpactMessage(t *testing.T) {
	msg := ImpactMessage(ImpactStats{
		TotalSubmissions:     3,
		EstimatedTotalPieces: 1500,
		LineMeters:           12.6,
	})
	assert.Equal(t, "🎣 3 rapporter godkända • 🧹 Uppskattningsvis 1.5k delar återvunna • 🧵 13 meter fiskelina", msg)
}

func TestImpactMessage_NoLineMeters(t *testing.T) {
	msg := ImpactMessage(ImpactStats{TotalSubmissions: 1, EstimatedTotalPieces: 5})
	assert.Equal(t, "🎣 1 rapporter godkända • 🧹 Uppskattningsvis 5 delar återvunna", msg)
	assert.NotContains(t, msg, "fiskelina")
}
