package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ServiceType enum constants
const (
	ServiceTranslation    = "TRANSLATION"
	ServiceInterpretation = "INTERPRETATION"
	ServiceTranscription  = "TRANSCRIPTION"
)

// InterpretationType enum constants
const (
	InterpretationOnSite      = "ON_SITE"
	InterpretationVideoRemote = "VIDEO_REMOTE"
	InterpretationPhone       = "PHONE"
)

// VolumeTier grants a rate multiplier once the quoted unit count reaches MinUnits.
// Tiers are translation-only; the calculator picks the highest tier at or below
// the requested word count.
type VolumeTier struct {
	MinUnits   int64           `json:"min_units"`
	Multiplier decimal.Decimal `json:"multiplier"` // e.g. 0.95 = 5% off the word rate
}

// VolumeTiers is stored as a jsonb column on pricing_rules.
type VolumeTiers []VolumeTier

func (t VolumeTiers) Value() (driver.Value, error) {
	if len(t) == 0 {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *VolumeTiers) Scan(src interface{}) error {
	if src == nil {
		*t = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported type %T for VolumeTiers", src)
	}
}

// DocTypeMultipliers maps a document category (e.g. "LEGAL", "MEDICAL") to a
// word-rate multiplier. Stored as jsonb.
type DocTypeMultipliers map[string]decimal.Decimal

func (m DocTypeMultipliers) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *DocTypeMultipliers) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type %T for DocTypeMultipliers", src)
	}
}

// PricingRule is one administrator-maintained entry of the rule catalogue.
// Nil language/region fields mean "any"; IsDefault marks the fallback rule the
// resolver uses when nothing more specific matches. Among active rules of a
// (service type, interpretation type) pair the fully-specified tuple
// (source, target, region) must be unique — enforced at write time and treated
// as a data error by the resolver if violated anyway.
type PricingRule struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ServiceType        string     `gorm:"type:varchar(20);not null;index" json:"service_type"` // TRANSLATION, INTERPRETATION, TRANSCRIPTION
	InterpretationType *string    `gorm:"type:varchar(20);index" json:"interpretation_type"`   // ON_SITE, VIDEO_REMOTE, PHONE; nil = any
	SourceLanguageID   *uuid.UUID `gorm:"type:uuid;index" json:"source_language_id"`
	SourceLanguage     *Language  `gorm:"foreignKey:SourceLanguageID" json:"source_language,omitempty"`
	TargetLanguageID   *uuid.UUID `gorm:"type:uuid;index" json:"target_language_id"`
	TargetLanguage     *Language  `gorm:"foreignKey:TargetLanguageID" json:"target_language,omitempty"`
	Region             *string    `gorm:"type:varchar(10);index" json:"region"` // US state code; nil = all regions

	HourlyRate *decimal.Decimal `gorm:"type:decimal(18,4)" json:"hourly_rate"` // interpretation / transcription
	WordRate   *decimal.Decimal `gorm:"type:decimal(18,6)" json:"word_rate"`   // translation

	MinimumUnits      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"minimum_units"` // hours or words
	TravelFee         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"travel_fee"`    // on-site interpretation only
	RushMultiplier    decimal.Decimal `gorm:"type:decimal(10,4);not null;default:1" json:"rush_multiplier"`
	SameDayMultiplier decimal.Decimal `gorm:"type:decimal(10,4);not null;default:1" json:"same_day_multiplier"`

	VolumeDiscountTiers     VolumeTiers        `gorm:"type:jsonb" json:"volume_discount_tiers"`
	DocumentTypeMultipliers DocTypeMultipliers `gorm:"type:jsonb" json:"document_type_multipliers"`

	IsDefault bool   `gorm:"default:false;index" json:"is_default"`
	IsActive  bool   `gorm:"default:true;index" json:"is_active"`
	Priority  int    `gorm:"type:int;not null;default:0" json:"priority"` // explicit tie-break, higher wins
	Notes     string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// HasLanguagePair reports whether the rule is scoped to an exact language pair.
func (r *PricingRule) HasLanguagePair() bool {
	return r.SourceLanguageID != nil && r.TargetLanguageID != nil
}
