// Package models contains the data structures persisted by the gear report service.
package models

import (
	"database/sql"
	"time"
)

// SubmissionStatus is the moderation state of a submission.
type SubmissionStatus string

const (
	// StatusPending is the state every new submission starts in.
	StatusPending SubmissionStatus = "pending"
	// StatusApproved marks a submission shown in the public gallery.
	StatusApproved SubmissionStatus = "approved"
	// StatusRejected marks a submission hidden from the public gallery.
	StatusRejected SubmissionStatus = "rejected"
)

// ValidStatus reports whether s is a known moderation state.
func ValidStatus(s SubmissionStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// EquipmentCategory classifies a recovered piece of fishing gear.
//
// Older records may carry category values outside this set (a retired
// "nets" category existed for a while); readers must tolerate and skip
// them rather than fail.
type EquipmentCategory string

const (
	CategoryHooks   EquipmentCategory = "hooks"
	CategoryLures   EquipmentCategory = "lures"
	CategoryLines   EquipmentCategory = "lines"
	CategoryWeights EquipmentCategory = "weights"
	CategoryFloats  EquipmentCategory = "floats"
	CategoryOther   EquipmentCategory = "other"
)

// Categories lists the active categories in display order.
func Categories() []EquipmentCategory {
	return []EquipmentCategory{
		CategoryHooks,
		CategoryLures,
		CategoryLines,
		CategoryWeights,
		CategoryFloats,
		CategoryOther,
	}
}

// Quantity buckets. General categories use count buckets; the lines
// category uses length buckets instead.
const (
	QuantityFew      = "few"
	QuantityMany     = "many"
	QuantityLots     = "lots"
	QuantityHugeHaul = "huge_haul"

	QuantityLine1to5   = "1-5m"
	QuantityLine5to10  = "5-10m"
	QuantityLine10to20 = "10-20m"
	QuantityLine20Plus = "20m+"
)

// ValidQuantity reports whether quantity is in the value domain for category.
func ValidQuantity(category EquipmentCategory, quantity string) bool {
	if category == CategoryLines {
		switch quantity {
		case QuantityLine1to5, QuantityLine5to10, QuantityLine10to20, QuantityLine20Plus:
			return true
		}
		return false
	}
	switch quantity {
	case QuantityFew, QuantityMany, QuantityLots, QuantityHugeHaul:
		return true
	}
	return false
}

// EquipmentEntry is one category+quantity line on a submission.
type EquipmentEntry struct {
	Category    EquipmentCategory `json:"category"`
	Quantity    string            `json:"quantity"`
	Description string            `json:"description,omitempty"`
	// AdminAdjustedCount, when set by a moderator, replaces the bucket
	// estimate for this entry in all statistics.
	AdminAdjustedCount *float64 `json:"admin_adjusted_count,omitempty"`
}

// Submission is a user-reported record of recovered fishing equipment.
type Submission struct {
	ID         string           `json:"id" db:"id"`
	Name       string           `json:"name" db:"name"`
	Email      string           `json:"email" db:"email"`
	Phone      string           `json:"phone" db:"phone"`
	Location   string           `json:"location" db:"location"`
	Latitude   sql.NullFloat64  `json:"latitude" db:"latitude"`
	Longitude  sql.NullFloat64  `json:"longitude" db:"longitude"`
	Message    sql.NullString   `json:"message" db:"message"`
	Images     []string         `json:"images" db:"images"`
	Equipment  []EquipmentEntry `json:"equipment" db:"equipment"`
	Status     SubmissionStatus `json:"status" db:"status"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	ApprovedAt sql.NullTime     `json:"approved_at" db:"approved_at"`
}

// HasCoordinates reports whether the submission carries a map position.
// Submissions predating the location picker have none.
func (s *Submission) HasCoordinates() bool {
	return s.Latitude.Valid && s.Longitude.Valid
}

// AdminUser is a moderator account with server-side credentials.
type AdminUser struct {
	ID           int            `json:"id" db:"id"`
	Username     string         `json:"username" db:"username"`
	PasswordHash string         `json:"-" db:"password_hash"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	LastActiveAt sql.NullTime   `json:"last_active_at" db:"last_active_at"`
	Email        sql.NullString `json:"email" db:"email"`
}
