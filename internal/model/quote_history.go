package model

import (
	"time"

	"github.com/google/uuid"
)

// QuoteHistory is the append-only audit record of every quote computation.
// Rows are never updated or deleted. The full request and result are kept as
// jsonb payloads; the flat columns exist for range and attribute filtering.
type QuoteHistory struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Fingerprint    string    `gorm:"type:varchar(64);not null;index" json:"fingerprint"`
	Service        string    `gorm:"type:varchar(20);not null;index" json:"service"`
	Quantity       int       `gorm:"not null;index" json:"quantity"`
	TotalCents     int64     `gorm:"not null" json:"total_cents"`
	RuleSetVersion int64     `gorm:"not null;index" json:"rule_set_version"`
	CacheHit       bool      `gorm:"not null;default:false" json:"cache_hit"`
	Request        string    `gorm:"type:jsonb;not null" json:"request"`
	Result         string    `gorm:"type:jsonb;not null" json:"result"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}
