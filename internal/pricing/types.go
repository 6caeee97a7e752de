package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateSelectionMode enum constants
const (
	SelectSingle   = "SINGLE"
	SelectRange    = "RANGE"
	SelectMultiple = "MULTIPLE"
)

// TimeMode enum constants
const (
	TimeSameForAll = "SAME_FOR_ALL"
	TimePerEntry   = "PER_ENTRY"
)

// TimePair is one wall-clock start/end pair in "15:04" format.
type TimePair struct {
	Start string `json:"start" example:"09:00"`
	End   string `json:"end" example:"11:00"`
}

// ScheduleInput is the raw, mode-tagged date selection the quote wizard
// produces. Which fields are consulted depends on Mode and TimeMode; the
// expander validates the combination and rejects anything incomplete.
type ScheduleInput struct {
	Mode     string `json:"date_selection_mode"` // SINGLE, RANGE, MULTIPLE
	TimeMode string `json:"time_mode"`           // SAME_FOR_ALL, PER_ENTRY

	Date      string   `json:"date,omitempty"`       // SINGLE: YYYY-MM-DD
	StartDate string   `json:"start_date,omitempty"` // RANGE
	EndDate   string   `json:"end_date,omitempty"`   // RANGE
	Dates     []string `json:"dates,omitempty"`      // MULTIPLE

	Time  TimePair   `json:"time,omitempty"`  // SAME_FOR_ALL (and SINGLE)
	Times []TimePair `json:"times,omitempty"` // PER_ENTRY: one pair per generated day
}

// Window is one normalized billable interval. StartsAt/EndsAt carry the full
// date+time in the engine's location; Date is the midnight of the same day and
// is what same-day detection compares against.
type Window struct {
	Date     time.Time
	StartsAt time.Time
	EndsAt   time.Time
}

// Duration returns the billable length of the window.
func (w Window) Duration() time.Duration {
	return w.EndsAt.Sub(w.StartsAt)
}

// Config carries the tunable billing policy. Values come from the environment
// at startup; tests construct their own.
type Config struct {
	BillingIncrement time.Duration  // partial hours round up to this, e.g. 15m
	RushLeadTime     time.Duration  // engagements starting sooner than this are rush
	Location         *time.Location // wall-clock interpretation for schedules and "today"
}

// DefaultConfig returns the production defaults: quarter-hour billing, 48h
// rush lead time, server-local wall clock.
func DefaultConfig() Config {
	return Config{
		BillingIncrement: 15 * time.Minute,
		RushLeadTime:     48 * time.Hour,
		Location:         time.Local,
	}
}

// Totals is the Duration Aggregator's result.
type Totals struct {
	Hours     decimal.Decimal
	IsSameDay bool
	IsRush    bool
}

// RuleContext is the request context the resolver matches the catalogue
// against. Empty InterpretationType / Region and nil language IDs mean the
// request does not constrain that axis.
type RuleContext struct {
	ServiceType        string
	InterpretationType string
	SourceLanguageID   *uuid.UUID
	TargetLanguageID   *uuid.UUID
	Region             string
}

// LineItem is one human-readable step of the price derivation. Labels are for
// audit/transparency display only and must not be re-parsed.
type LineItem struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Breakdown is the computed price. All money values are rounded to cents;
// recomputing with identical inputs always yields an identical Breakdown.
type Breakdown struct {
	TotalHours     decimal.Decimal `json:"total_hours"`
	TotalWords     int64           `json:"total_words,omitempty"`
	UnitRate       decimal.Decimal `json:"unit_rate"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TravelFee      decimal.Decimal `json:"travel_fee"`
	RushFee        decimal.Decimal `json:"rush_fee"`
	IsRush         bool            `json:"is_rush"`
	IsSameDay      bool            `json:"is_same_day"`
	MinimumApplied bool            `json:"minimum_applied"`
	Total          decimal.Decimal `json:"total"`
	LineItems      []LineItem      `json:"line_items"`
}
