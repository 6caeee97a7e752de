package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreatePricingRule = "CREATE_PRICING_RULE"
	ActionUpdatePricingRule = "UPDATE_PRICING_RULE"
	ActionDeletePricingRule = "DELETE_PRICING_RULE"
	ActionCreateLanguage    = "CREATE_LANGUAGE"
	ActionUpdateLanguage    = "UPDATE_LANGUAGE"
	ActionDeleteLanguage    = "DELETE_LANGUAGE"
	ActionCreateClient      = "CREATE_CLIENT"
	ActionUpdateClient      = "UPDATE_CLIENT"
	ActionCreateQuote       = "CREATE_QUOTE"
	ActionReviewQuote       = "REVIEW_QUOTE"
	ActionDeclineQuote      = "DECLINE_QUOTE"

	// Catalogue integrity incidents surfaced by the pricing engine
	ActionPricingDataError = "PRICING_DATA_ERROR"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for system-generated entries
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
