package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type VolumeTierRequest struct {
	MinUnits   int64  `json:"min_units" binding:"required,min=1"`
	Multiplier string `json:"multiplier" binding:"required"` // decimal string, e.g. "0.95"
}

type PricingRuleRequest struct {
	ServiceType        string `json:"service_type" binding:"required,oneof=TRANSLATION INTERPRETATION TRANSCRIPTION"`
	InterpretationType string `json:"interpretation_type" binding:"omitempty,oneof=ON_SITE VIDEO_REMOTE PHONE"`
	SourceLanguageID   string `json:"source_language_id"`
	TargetLanguageID   string `json:"target_language_id"`
	Region             string `json:"region"`

	HourlyRate string `json:"hourly_rate"` // decimal string; interpretation/transcription
	WordRate   string `json:"word_rate"`   // decimal string; translation

	MinimumUnits      string `json:"minimum_units"`
	TravelFee         string `json:"travel_fee"`
	RushMultiplier    string `json:"rush_multiplier"`
	SameDayMultiplier string `json:"same_day_multiplier"`

	VolumeDiscountTiers     []VolumeTierRequest `json:"volume_discount_tiers"`
	DocumentTypeMultipliers map[string]string   `json:"document_type_multipliers"`

	IsDefault bool   `json:"is_default"`
	IsActive  *bool  `json:"is_active"` // nil = true on create, unchanged semantics on update
	Priority  int    `json:"priority"`
	Notes     string `json:"notes"`
}

type PricingRuleResponse struct {
	ID                 string  `json:"id"`
	ServiceType        string  `json:"service_type"`
	InterpretationType *string `json:"interpretation_type"`
	SourceLanguage     *string `json:"source_language"`
	TargetLanguage     *string `json:"target_language"`
	SourceLanguageID   *string `json:"source_language_id"`
	TargetLanguageID   *string `json:"target_language_id"`
	Region             *string `json:"region"`

	HourlyRate *string `json:"hourly_rate"`
	WordRate   *string `json:"word_rate"`

	MinimumUnits      string `json:"minimum_units"`
	TravelFee         string `json:"travel_fee"`
	RushMultiplier    string `json:"rush_multiplier"`
	SameDayMultiplier string `json:"same_day_multiplier"`

	VolumeDiscountTiers     model.VolumeTiers        `json:"volume_discount_tiers,omitempty"`
	DocumentTypeMultipliers model.DocTypeMultipliers `json:"document_type_multipliers,omitempty"`

	IsDefault bool   `json:"is_default"`
	IsActive  bool   `json:"is_active"`
	Priority  int    `json:"priority"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type PricingRuleService interface {
	ListRules(ctx context.Context, serviceType string, page, limit int) ([]PricingRuleResponse, int64, error)
	GetRule(ctx context.Context, id string) (*PricingRuleResponse, error)
	CreateRule(ctx context.Context, req PricingRuleRequest, userID string) (*PricingRuleResponse, error)
	UpdateRule(ctx context.Context, id string, req PricingRuleRequest, userID string) (*PricingRuleResponse, error)
	DeleteRule(ctx context.Context, id string, userID string) error
}

type pricingRuleService struct {
	ruleRepo  repository.PricingRuleRepository
	langRepo  repository.LanguageRepository
	auditRepo repository.AuditRepository
}

func NewPricingRuleService(ruleRepo repository.PricingRuleRepository, langRepo repository.LanguageRepository, auditRepo repository.AuditRepository) PricingRuleService {
	return &pricingRuleService{ruleRepo: ruleRepo, langRepo: langRepo, auditRepo: auditRepo}
}

// --- Implementation ---

func (s *pricingRuleService) ListRules(ctx context.Context, serviceType string, page, limit int) ([]PricingRuleResponse, int64, error) {
	rules, total, err := s.ruleRepo.List(ctx, serviceType, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch pricing rules: %w", err)
	}

	res := make([]PricingRuleResponse, 0, len(rules))
	for i := range rules {
		res = append(res, toPricingRuleResponse(&rules[i]))
	}
	return res, total, nil
}

func (s *pricingRuleService) GetRule(ctx context.Context, id string) (*PricingRuleResponse, error) {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid pricing rule id: %w", err)
	}

	rule, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pricing rule not found")
		}
		return nil, fmt.Errorf("failed to fetch pricing rule: %w", err)
	}

	resp := toPricingRuleResponse(rule)
	return &resp, nil
}

func (s *pricingRuleService) CreateRule(ctx context.Context, req PricingRuleRequest, userID string) (*PricingRuleResponse, error) {
	rule, err := s.buildRule(ctx, req)
	if err != nil {
		return nil, err
	}

	if rule.IsActive {
		if err := s.checkScopeUnique(ctx, rule, nil); err != nil {
			return nil, err
		}
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create pricing rule: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionCreatePricingRule, rule.ID.String(), ruleSummary(rule), req)

	reloaded, err := s.ruleRepo.FindByID(ctx, rule.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload pricing rule: %w", err)
	}
	resp := toPricingRuleResponse(reloaded)
	return &resp, nil
}

func (s *pricingRuleService) UpdateRule(ctx context.Context, id string, req PricingRuleRequest, userID string) (*PricingRuleResponse, error) {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid pricing rule id: %w", err)
	}

	existing, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pricing rule not found")
		}
		return nil, fmt.Errorf("failed to fetch pricing rule: %w", err)
	}

	rule, err := s.buildRule(ctx, req)
	if err != nil {
		return nil, err
	}
	rule.ID = existing.ID
	rule.CreatedAt = existing.CreatedAt

	if rule.IsActive {
		if err := s.checkScopeUnique(ctx, rule, &rule.ID); err != nil {
			return nil, err
		}
	}

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update pricing rule: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionUpdatePricingRule, rule.ID.String(), ruleSummary(rule), req)

	reloaded, err := s.ruleRepo.FindByID(ctx, rule.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload pricing rule: %w", err)
	}
	resp := toPricingRuleResponse(reloaded)
	return &resp, nil
}

func (s *pricingRuleService) DeleteRule(ctx context.Context, id string, userID string) error {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid pricing rule id: %w", err)
	}

	rule, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("pricing rule not found")
		}
		return fmt.Errorf("failed to fetch pricing rule: %w", err)
	}

	if err := s.ruleRepo.Delete(ctx, ruleID); err != nil {
		return fmt.Errorf("failed to delete pricing rule: %w", err)
	}

	s.writeAudit(ctx, userID, model.ActionDeletePricingRule, rule.ID.String(), ruleSummary(rule), map[string]string{"deleted_id": id})
	return nil
}

// --- Helpers ---

// buildRule validates the request and assembles the model. Rate kind must
// match the service type; language scoping is both-or-neither so every rule
// lands in exactly one specificity tier.
func (s *pricingRuleService) buildRule(ctx context.Context, req PricingRuleRequest) (*model.PricingRule, error) {
	rule := &model.PricingRule{
		ServiceType: req.ServiceType,
		IsDefault:   req.IsDefault,
		IsActive:    true,
		Priority:    req.Priority,
		Notes:       req.Notes,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if req.InterpretationType != "" {
		if req.ServiceType != model.ServiceInterpretation {
			return nil, fmt.Errorf("interpretation_type is only valid for interpretation rules")
		}
		it := req.InterpretationType
		rule.InterpretationType = &it
	}

	src, err := s.resolveLanguage(ctx, req.SourceLanguageID, "source_language_id")
	if err != nil {
		return nil, err
	}
	tgt, err := s.resolveLanguage(ctx, req.TargetLanguageID, "target_language_id")
	if err != nil {
		return nil, err
	}
	if (src == nil) != (tgt == nil) {
		return nil, fmt.Errorf("source and target languages must be set together or not at all")
	}
	rule.SourceLanguageID = src
	rule.TargetLanguageID = tgt

	if region := strings.ToUpper(strings.TrimSpace(req.Region)); region != "" {
		rule.Region = &region
	}

	switch req.ServiceType {
	case model.ServiceTranslation:
		if req.HourlyRate != "" {
			return nil, fmt.Errorf("translation rules use word_rate, not hourly_rate")
		}
		rate, err := parsePositiveDecimal(req.WordRate, "word_rate")
		if err != nil {
			return nil, err
		}
		rule.WordRate = &rate
	default:
		if req.WordRate != "" {
			return nil, fmt.Errorf("%s rules use hourly_rate, not word_rate", strings.ToLower(req.ServiceType))
		}
		rate, err := parsePositiveDecimal(req.HourlyRate, "hourly_rate")
		if err != nil {
			return nil, err
		}
		rule.HourlyRate = &rate
	}

	if rule.MinimumUnits, err = parseDecimalOrZero(req.MinimumUnits, "minimum_units"); err != nil {
		return nil, err
	}
	if rule.TravelFee, err = parseDecimalOrZero(req.TravelFee, "travel_fee"); err != nil {
		return nil, err
	}
	if rule.RushMultiplier, err = parseMultiplier(req.RushMultiplier, "rush_multiplier"); err != nil {
		return nil, err
	}
	if rule.SameDayMultiplier, err = parseMultiplier(req.SameDayMultiplier, "same_day_multiplier"); err != nil {
		return nil, err
	}

	if rule.TravelFee.IsPositive() {
		if rule.InterpretationType == nil || *rule.InterpretationType != model.InterpretationOnSite {
			return nil, fmt.Errorf("travel_fee only applies to on-site interpretation rules")
		}
	}

	if len(req.VolumeDiscountTiers) > 0 || len(req.DocumentTypeMultipliers) > 0 {
		if req.ServiceType != model.ServiceTranslation {
			return nil, fmt.Errorf("volume tiers and document multipliers only apply to translation rules")
		}
	}
	for _, tier := range req.VolumeDiscountTiers {
		mult, err := parsePositiveDecimal(tier.Multiplier, "volume tier multiplier")
		if err != nil {
			return nil, err
		}
		rule.VolumeDiscountTiers = append(rule.VolumeDiscountTiers, model.VolumeTier{MinUnits: tier.MinUnits, Multiplier: mult})
	}
	if len(req.DocumentTypeMultipliers) > 0 {
		rule.DocumentTypeMultipliers = make(model.DocTypeMultipliers, len(req.DocumentTypeMultipliers))
		for docType, raw := range req.DocumentTypeMultipliers {
			mult, err := parsePositiveDecimal(raw, "document type multiplier")
			if err != nil {
				return nil, err
			}
			rule.DocumentTypeMultipliers[strings.ToUpper(docType)] = mult
		}
	}

	if rule.IsDefault && (rule.HasLanguagePair() || rule.Region != nil) {
		return nil, fmt.Errorf("a default rule must not be scoped to a language pair or region")
	}

	return rule, nil
}

// checkScopeUnique rejects a second active rule on the same fully-specified
// tuple. The resolver would report such a catalogue as ambiguous; this keeps
// the defect out of the data in the first place.
func (s *pricingRuleService) checkScopeUnique(ctx context.Context, rule *model.PricingRule, excludeID *uuid.UUID) error {
	scope := repository.RuleScope{
		ServiceType:        rule.ServiceType,
		InterpretationType: rule.InterpretationType,
		SourceLanguageID:   rule.SourceLanguageID,
		TargetLanguageID:   rule.TargetLanguageID,
		Region:             rule.Region,
	}
	count, err := s.ruleRepo.CountSameScope(ctx, scope, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check rule scope uniqueness: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("an active rule already covers this service/language/region scope")
	}
	return nil
}

func (s *pricingRuleService) resolveLanguage(ctx context.Context, raw, field string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	if _, err := s.langRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s references an unknown language", field)
		}
		return nil, fmt.Errorf("failed to verify %s: %w", field, err)
	}
	return &id, nil
}

func (s *pricingRuleService) writeAudit(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
	detailsJSON, _ := json.Marshal(details)

	entry := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}
	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}

	// Best-effort audit log — don't fail the operation if logging fails
	_ = s.auditRepo.Log(ctx, &entry)
}

func parsePositiveDecimal(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%s is required", field)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	if !value.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s must be positive", field)
	}
	return value, nil
}

func parseDecimalOrZero(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", field)
	}
	return value, nil
}

// parseMultiplier defaults to 1 (no surcharge) and requires >= 1 otherwise.
func parseMultiplier(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.NewFromInt(1), nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	if value.LessThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("%s must be >= 1", field)
	}
	return value, nil
}

func ruleSummary(rule *model.PricingRule) string {
	parts := []string{rule.ServiceType}
	if rule.InterpretationType != nil {
		parts = append(parts, *rule.InterpretationType)
	}
	if rule.Region != nil {
		parts = append(parts, *rule.Region)
	}
	if rule.IsDefault {
		parts = append(parts, "default")
	}
	return strings.Join(parts, " ")
}

func toPricingRuleResponse(rule *model.PricingRule) PricingRuleResponse {
	resp := PricingRuleResponse{
		ID:                      rule.ID.String(),
		ServiceType:             rule.ServiceType,
		InterpretationType:      rule.InterpretationType,
		Region:                  rule.Region,
		MinimumUnits:            rule.MinimumUnits.String(),
		TravelFee:               rule.TravelFee.StringFixed(2),
		RushMultiplier:          rule.RushMultiplier.String(),
		SameDayMultiplier:       rule.SameDayMultiplier.String(),
		VolumeDiscountTiers:     rule.VolumeDiscountTiers,
		DocumentTypeMultipliers: rule.DocumentTypeMultipliers,
		IsDefault:               rule.IsDefault,
		IsActive:                rule.IsActive,
		Priority:                rule.Priority,
		Notes:                   rule.Notes,
		CreatedAt:               rule.CreatedAt.Format(time.RFC3339),
	}
	if rule.HourlyRate != nil {
		v := rule.HourlyRate.StringFixed(2)
		resp.HourlyRate = &v
	}
	if rule.WordRate != nil {
		v := rule.WordRate.String()
		resp.WordRate = &v
	}
	if rule.SourceLanguageID != nil {
		v := rule.SourceLanguageID.String()
		resp.SourceLanguageID = &v
	}
	if rule.TargetLanguageID != nil {
		v := rule.TargetLanguageID.String()
		resp.TargetLanguageID = &v
	}
	if rule.SourceLanguage != nil {
		resp.SourceLanguage = &rule.SourceLanguage.Name
	}
	if rule.TargetLanguage != nil {
		resp.TargetLanguage = &rule.TargetLanguage.Name
	}
	return resp
}
