package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreatePricingRule = "CREATE_PRICING_RULE"
	ActionUpdatePricingRule = "UPDATE_PRICING_RULE"
	ActionDeletePricingRule = "DELETE_PRICING_RULE"
)

// AuditLog tracks What and When for rule administration changes. The acting
// identity arrives from the external admin system as an opaque string since
// authentication lives outside this service.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorID    string    `gorm:"type:varchar(64);index" json:"actor_id"` // empty for automated callers
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:jsonb" json:"details"` // serialized payload of the change
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
