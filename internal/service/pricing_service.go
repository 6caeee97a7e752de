package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/pricing"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

// CalculatePriceRequest is the single entry point payload the web layer sends.
// Schedule fields are consumed for interpretation/transcription; word_count and
// document_type for translation.
type CalculatePriceRequest struct {
	ServiceType        string `json:"service_type" binding:"required,oneof=TRANSLATION INTERPRETATION TRANSCRIPTION"`
	InterpretationType string `json:"interpretation_type" binding:"omitempty,oneof=ON_SITE VIDEO_REMOTE PHONE"`
	SourceLanguageID   string `json:"source_language_id"`
	TargetLanguageID   string `json:"target_language_id"`
	Region             string `json:"region"` // US state code, e.g. "CA"

	WordCount    int64  `json:"word_count"`    // translation only
	DocumentType string `json:"document_type"` // translation only

	Schedule pricing.ScheduleInput `json:"schedule"`
}

type LineItemResponse struct {
	Label  string `json:"label"`
	Amount string `json:"amount,omitempty"`
}

type PriceBreakdownResponse struct {
	RuleID         string             `json:"rule_id"`
	TotalHours     string             `json:"total_hours,omitempty"`
	TotalWords     int64              `json:"total_words,omitempty"`
	UnitRate       string             `json:"unit_rate"`
	Subtotal       string             `json:"subtotal"`
	TravelFee      string             `json:"travel_fee"`
	RushFee        string             `json:"rush_fee"`
	IsRush         bool               `json:"is_rush"`
	IsSameDay      bool               `json:"is_same_day"`
	MinimumApplied bool               `json:"minimum_applied"`
	Total          string             `json:"total"`
	LineItems      []LineItemResponse `json:"line_items"`
}

// PricingResult is the rich result the quote workflow persists from. The
// Breakdown/Rule pair is a consistent snapshot of one resolution pass.
type PricingResult struct {
	Breakdown *pricing.Breakdown
	Rule      *model.PricingRule
	Windows   []pricing.Window
	Context   pricing.RuleContext
}

// Notifier pushes catalogue-integrity alerts to connected admin dashboards.
// Satisfied by the websocket hub; a nil Notifier disables alerts.
type Notifier interface {
	Notify(event string, payload interface{})
}

// --- Interface ---

type PricingService interface {
	// CalculatePrice orchestrates schedule expansion, duration aggregation,
	// rule resolution and rate calculation, returning the breakdown or a
	// typed pricing error. It never substitutes a default price.
	CalculatePrice(ctx context.Context, req CalculatePriceRequest) (*PriceBreakdownResponse, error)
	// Price is CalculatePrice without the response mapping; the quote
	// workflow uses it to persist the resolved rule and windows. On
	// NoRuleFoundError the result still carries the expanded windows and
	// rule context alongside the error.
	Price(ctx context.Context, req CalculatePriceRequest) (*PricingResult, error)
}

type pricingService struct {
	ruleRepo  repository.PricingRuleRepository
	auditRepo repository.AuditRepository
	notifier  Notifier
	cfg       pricing.Config
	now       func() time.Time
}

func NewPricingService(ruleRepo repository.PricingRuleRepository, auditRepo repository.AuditRepository, notifier Notifier, cfg pricing.Config) PricingService {
	return &pricingService{
		ruleRepo:  ruleRepo,
		auditRepo: auditRepo,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
	}
}

// NewPricingServiceWithClock injects a fixed reference clock. Identical inputs
// plus an identical clock yield an identical breakdown.
func NewPricingServiceWithClock(ruleRepo repository.PricingRuleRepository, auditRepo repository.AuditRepository, notifier Notifier, cfg pricing.Config, now func() time.Time) PricingService {
	return &pricingService{
		ruleRepo:  ruleRepo,
		auditRepo: auditRepo,
		notifier:  notifier,
		cfg:       cfg,
		now:       now,
	}
}

// --- Implementation ---

func (s *pricingService) CalculatePrice(ctx context.Context, req CalculatePriceRequest) (*PriceBreakdownResponse, error) {
	result, err := s.Price(ctx, req)
	if err != nil {
		return nil, err
	}
	return toBreakdownResponse(result), nil
}

func (s *pricingService) Price(ctx context.Context, req CalculatePriceRequest) (*PricingResult, error) {
	ruleCtx, err := buildRuleContext(req)
	if err != nil {
		return nil, err
	}

	var (
		windows []pricing.Window
		totals  pricing.Totals
	)

	calcIn := pricing.CalcInput{
		ServiceType:        req.ServiceType,
		InterpretationType: req.InterpretationType,
		DocumentType:       req.DocumentType,
	}

	if req.ServiceType == model.ServiceTranslation {
		if req.WordCount <= 0 {
			return nil, &pricing.ValidationError{Msg: "word_count must be positive for translation"}
		}
		calcIn.Words = req.WordCount
	} else {
		windows, err = pricing.ExpandSchedule(req.Schedule, s.cfg.Location)
		if err != nil {
			return nil, err
		}
		totals = pricing.Aggregate(windows, s.now(), s.cfg)
		if totals.Hours.IsZero() {
			return nil, &pricing.ValidationError{Msg: "schedule yields zero billable hours"}
		}
		calcIn.Hours = totals.Hours
		calcIn.IsRush = totals.IsRush
		calcIn.IsSameDay = totals.IsSameDay
	}

	// One snapshot per calculation: resolution and calculation both see the
	// catalogue as of this read, regardless of concurrent admin edits.
	catalogue, err := s.ruleRepo.ListActiveRules(ctx, req.ServiceType)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule catalogue: %w", err)
	}

	rule, err := pricing.Resolve(ruleCtx, catalogue)
	if err != nil {
		s.reportDataError(ctx, err)
		var notFound *pricing.NoRuleFoundError
		if errors.As(err, &notFound) {
			// The schedule expanded fine; hand it back with the error so the
			// manual-review intake can persist what the customer asked for.
			return &PricingResult{Windows: windows, Context: ruleCtx}, err
		}
		return nil, err
	}

	breakdown, err := pricing.Calculate(rule, calcIn)
	if err != nil {
		s.reportDataError(ctx, err)
		return nil, err
	}
	breakdown.TotalHours = totals.Hours

	return &PricingResult{
		Breakdown: breakdown,
		Rule:      rule,
		Windows:   windows,
		Context:   ruleCtx,
	}, nil
}

// reportDataError logs catalogue-integrity defects for administrator
// attention. Resolution still fails; the engine never guesses.
func (s *pricingService) reportDataError(ctx context.Context, err error) {
	var ambiguous *pricing.AmbiguousRuleError
	var invalid *pricing.InvalidRuleError
	if !errors.As(err, &ambiguous) && !errors.As(err, &invalid) {
		return
	}

	log.Printf("pricing catalogue data error: %v", err)

	if s.auditRepo != nil {
		details, _ := json.Marshal(map[string]string{"error": err.Error()})
		entry := model.AuditLog{
			Action:     model.ActionPricingDataError,
			EntityName: "pricing catalogue",
			Details:    string(details),
		}
		// Best-effort: an audit write failure must not mask the pricing error
		if auditErr := s.auditRepo.Log(ctx, &entry); auditErr != nil {
			log.Printf("failed to audit pricing data error: %v", auditErr)
		}
	}

	if s.notifier != nil {
		s.notifier.Notify("pricing_data_error", map[string]string{"error": err.Error()})
	}
}

func buildRuleContext(req CalculatePriceRequest) (pricing.RuleContext, error) {
	ruleCtx := pricing.RuleContext{
		ServiceType:        req.ServiceType,
		InterpretationType: req.InterpretationType,
		Region:             strings.ToUpper(strings.TrimSpace(req.Region)),
	}

	if req.ServiceType == model.ServiceInterpretation {
		if req.InterpretationType == "" {
			return ruleCtx, &pricing.ValidationError{Msg: "interpretation_type is required for interpretation"}
		}
		if req.InterpretationType == model.InterpretationOnSite && ruleCtx.Region == "" {
			return ruleCtx, &pricing.ValidationError{Msg: "region is required for on-site interpretation"}
		}
	}

	var err error
	if ruleCtx.SourceLanguageID, err = parseOptionalUUID(req.SourceLanguageID, "source_language_id"); err != nil {
		return ruleCtx, err
	}
	if ruleCtx.TargetLanguageID, err = parseOptionalUUID(req.TargetLanguageID, "target_language_id"); err != nil {
		return ruleCtx, err
	}

	if req.ServiceType == model.ServiceTranslation || req.ServiceType == model.ServiceInterpretation {
		if ruleCtx.SourceLanguageID == nil || ruleCtx.TargetLanguageID == nil {
			return ruleCtx, &pricing.ValidationError{Msg: "source and target languages are required"}
		}
	}

	return ruleCtx, nil
}

func parseOptionalUUID(raw, field string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &pricing.ValidationError{Msg: "invalid " + field}
	}
	return &id, nil
}

func toBreakdownResponse(result *PricingResult) *PriceBreakdownResponse {
	b := result.Breakdown
	resp := &PriceBreakdownResponse{
		RuleID:         result.Rule.ID.String(),
		TotalWords:     b.TotalWords,
		UnitRate:       b.UnitRate.String(),
		Subtotal:       b.Subtotal.StringFixed(2),
		TravelFee:      b.TravelFee.StringFixed(2),
		RushFee:        b.RushFee.StringFixed(2),
		IsRush:         b.IsRush,
		IsSameDay:      b.IsSameDay,
		MinimumApplied: b.MinimumApplied,
		Total:          b.Total.StringFixed(2),
	}
	if !b.TotalHours.IsZero() {
		resp.TotalHours = b.TotalHours.String()
	}
	for _, item := range b.LineItems {
		li := LineItemResponse{Label: item.Label}
		if !item.Amount.IsZero() {
			li.Amount = item.Amount.StringFixed(2)
		}
		resp.LineItems = append(resp.LineItems, li)
	}
	return resp
}
