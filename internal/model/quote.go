package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus constants
const (
	QuoteStatusQuoted      = "QUOTED"       // priced automatically by the engine
	QuoteStatusNeedsReview = "NEEDS_REVIEW" // no applicable rule; waiting for manual pricing
	QuoteStatusReviewed    = "REVIEWED"     // manually priced by an administrator
	QuoteStatusAccepted    = "ACCEPTED"
	QuoteStatusDeclined    = "DECLINED"
)

// Quote persists a priced (or review-pending) request together with the
// breakdown the engine produced. The breakdown fields are a snapshot: editing
// the rule catalogue later never mutates an issued quote.
type Quote struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuoteNo string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"quote_no"`

	ClientID *uuid.UUID `gorm:"type:uuid;index" json:"client_id"`
	Client   *Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	ServiceType        string     `gorm:"type:varchar(20);not null;index" json:"service_type"`
	InterpretationType *string    `gorm:"type:varchar(20)" json:"interpretation_type"`
	SourceLanguageID   *uuid.UUID `gorm:"type:uuid" json:"source_language_id"`
	SourceLanguage     *Language  `gorm:"foreignKey:SourceLanguageID" json:"source_language,omitempty"`
	TargetLanguageID   *uuid.UUID `gorm:"type:uuid" json:"target_language_id"`
	TargetLanguage     *Language  `gorm:"foreignKey:TargetLanguageID" json:"target_language,omitempty"`
	Region             *string    `gorm:"type:varchar(10)" json:"region"`

	RuleID *uuid.UUID   `gorm:"type:uuid;index" json:"rule_id"` // resolved rule; nil when NEEDS_REVIEW
	Rule   *PricingRule `gorm:"foreignKey:RuleID" json:"rule,omitempty"`

	WordCount  *int64          `gorm:"type:bigint" json:"word_count"` // translation only
	TotalHours decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_hours"`

	UnitRate       decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0" json:"unit_rate"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"subtotal"`
	TravelFee      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"travel_fee"`
	RushFee        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"rush_fee"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total"`
	IsRush         bool            `gorm:"default:false" json:"is_rush"`
	IsSameDay      bool            `gorm:"default:false" json:"is_same_day"`
	MinimumApplied bool            `gorm:"default:false" json:"minimum_applied"`
	LineItems      string          `gorm:"type:jsonb" json:"line_items"` // serialized breakdown lines, audit only

	Status     string        `gorm:"type:varchar(20);not null;default:'QUOTED';index" json:"status"`
	ReviewedBy *uuid.UUID    `gorm:"type:uuid" json:"reviewed_by"`
	Reviewer   *User         `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt *time.Time    `json:"reviewed_at"`
	ReviewNote string        `gorm:"type:text" json:"review_note"`
	Windows    []QuoteWindow `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"windows"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuoteWindow is one billable schedule interval persisted with its quote.
type QuoteWindow struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuoteID  uuid.UUID `gorm:"type:uuid;not null;index" json:"quote_id"`
	StartsAt time.Time `gorm:"not null" json:"starts_at"`
	EndsAt   time.Time `gorm:"not null" json:"ends_at"`
}
