package model

import "time"

// RuleSetVersion is a single-row monotonic counter. Every rule mutation
// increments it inside the same transaction, which makes the bump atomic and
// linearizable: a quote either sees the old rule set with the old version or
// the new with the new, never a mix.
type RuleSetVersion struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Version   int64     `gorm:"not null;default:0" json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}
