package model

import (
	"time"

	"github.com/google/uuid"
)

// PricingRule stores a rule with temporal validity. Conditions and the action
// set are kept as jsonb and decoded into the typed condition model when the
// rule-set snapshot is built; writes validate the payload first so unknown
// condition kinds never reach storage.
type PricingRule struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(120);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Conditions  string     `gorm:"type:jsonb;not null;default:'[]'" json:"conditions"`
	Action      string     `gorm:"type:jsonb;not null;default:'{}'" json:"action"`
	Precedence  int        `gorm:"not null;default:0;index" json:"precedence"`
	Active      bool       `gorm:"not null;default:true;index" json:"active"`
	ActiveFrom  time.Time  `gorm:"type:date;not null;index" json:"active_from"`
	ActiveUntil *time.Time `gorm:"type:date;index" json:"active_until"` // nullable = open-ended
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
