package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/pricing"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- In-memory doubles ---

type stubRuleRepo struct {
	rules []model.PricingRule
}

func (s *stubRuleRepo) Create(ctx context.Context, rule *model.PricingRule) error { return nil }
func (s *stubRuleRepo) Update(ctx context.Context, rule *model.PricingRule) error { return nil }
func (s *stubRuleRepo) Delete(ctx context.Context, id uuid.UUID) error            { return nil }
func (s *stubRuleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PricingRule, error) {
	for i := range s.rules {
		if s.rules[i].ID == id {
			return &s.rules[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubRuleRepo) List(ctx context.Context, serviceType string, page, limit int) ([]model.PricingRule, int64, error) {
	return s.rules, int64(len(s.rules)), nil
}
func (s *stubRuleRepo) ListActiveRules(ctx context.Context, serviceType string) ([]model.PricingRule, error) {
	var out []model.PricingRule
	for _, r := range s.rules {
		if r.IsActive && r.ServiceType == serviceType {
			out = append(out, r)
		}
	}
	return out, nil
}
func (s *stubRuleRepo) CountSameScope(ctx context.Context, scope repository.RuleScope, excludeID *uuid.UUID) (int64, error) {
	return 0, nil
}

type stubAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (s *stubAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubAuditRepo) List(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	return s.entries, int64(len(s.entries)), nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

// --- Fixtures ---

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
}

func testConfig() pricing.Config {
	cfg := pricing.DefaultConfig()
	cfg.Location = time.UTC
	return cfg
}

func onSiteCatalogueRule() model.PricingRule {
	onSite := model.InterpretationOnSite
	rate := decimal.RequireFromString("95")
	region := "CA"
	return model.PricingRule{
		ID:                 uuid.New(),
		ServiceType:        model.ServiceInterpretation,
		InterpretationType: &onSite,
		Region:             &region,
		HourlyRate:         &rate,
		MinimumUnits:       decimal.RequireFromString("2"),
		TravelFee:          decimal.RequireFromString("50"),
		RushMultiplier:     decimal.RequireFromString("1.35"),
		SameDayMultiplier:  decimal.RequireFromString("2"),
		IsActive:           true,
		Priority:           1,
	}
}

func interpretationRequest() CalculatePriceRequest {
	src := uuid.New().String()
	tgt := uuid.New().String()
	return CalculatePriceRequest{
		ServiceType:        model.ServiceInterpretation,
		InterpretationType: model.InterpretationOnSite,
		SourceLanguageID:   src,
		TargetLanguageID:   tgt,
		Region:             "ca", // normalized upward by the service
		Schedule: pricing.ScheduleInput{
			Mode: pricing.SelectSingle,
			Date: "2025-03-20",
			Time: pricing.TimePair{Start: "09:00", End: "13:00"},
		},
	}
}

func newTestPricingService(rules []model.PricingRule, audit *stubAuditRepo, notifier Notifier) PricingService {
	return NewPricingServiceWithClock(&stubRuleRepo{rules: rules}, audit, notifier, testConfig(), fixedClock())
}

// --- Tests ---

func TestCalculatePriceEndToEnd(t *testing.T) {
	svc := newTestPricingService([]model.PricingRule{onSiteCatalogueRule()}, &stubAuditRepo{}, nil)

	resp, err := svc.CalculatePrice(context.Background(), interpretationRequest())
	require.NoError(t, err)

	assert.Equal(t, "4", resp.TotalHours)
	assert.Equal(t, "380.00", resp.Subtotal)
	assert.Equal(t, "50.00", resp.TravelFee)
	assert.Equal(t, "430.00", resp.Total)
	assert.False(t, resp.IsRush)
	assert.False(t, resp.MinimumApplied)
}

func TestCalculatePriceDeterministic(t *testing.T) {
	svc := newTestPricingService([]model.PricingRule{onSiteCatalogueRule()}, &stubAuditRepo{}, nil)
	req := interpretationRequest()

	first, err := svc.CalculatePrice(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.CalculatePrice(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculatePriceNoRuleFound(t *testing.T) {
	svc := newTestPricingService(nil, &stubAuditRepo{}, nil)

	_, err := svc.CalculatePrice(context.Background(), interpretationRequest())

	var notFound *pricing.NoRuleFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPriceNoRuleStillReturnsSchedule(t *testing.T) {
	svc := newTestPricingService(nil, &stubAuditRepo{}, nil)

	result, err := svc.Price(context.Background(), interpretationRequest())

	var notFound *pricing.NoRuleFoundError
	require.ErrorAs(t, err, &notFound)

	// The expanded schedule survives a failed resolution so callers can
	// persist what the customer asked for.
	require.NotNil(t, result)
	require.Len(t, result.Windows, 1)
	assert.Equal(t, "CA", result.Context.Region)
	assert.Nil(t, result.Breakdown)
	assert.Nil(t, result.Rule)
}

func TestCalculatePriceValidation(t *testing.T) {
	svc := newTestPricingService([]model.PricingRule{onSiteCatalogueRule()}, &stubAuditRepo{}, nil)

	t.Run("interpretation requires interpretation type", func(t *testing.T) {
		req := interpretationRequest()
		req.InterpretationType = ""
		_, err := svc.CalculatePrice(context.Background(), req)
		var verr *pricing.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("on-site requires region", func(t *testing.T) {
		req := interpretationRequest()
		req.Region = ""
		_, err := svc.CalculatePrice(context.Background(), req)
		var verr *pricing.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("languages required", func(t *testing.T) {
		req := interpretationRequest()
		req.SourceLanguageID = ""
		_, err := svc.CalculatePrice(context.Background(), req)
		var verr *pricing.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("translation requires word count", func(t *testing.T) {
		req := interpretationRequest()
		req.ServiceType = model.ServiceTranslation
		req.InterpretationType = ""
		req.WordCount = 0
		_, err := svc.CalculatePrice(context.Background(), req)
		var verr *pricing.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestCalculatePriceTranslation(t *testing.T) {
	src := uuid.New()
	tgt := uuid.New()
	rate := decimal.RequireFromString("0.12")
	rule := model.PricingRule{
		ID:               uuid.New(),
		ServiceType:      model.ServiceTranslation,
		SourceLanguageID: &src,
		TargetLanguageID: &tgt,
		WordRate:         &rate,
		MinimumUnits:     decimal.RequireFromString("500"),
		IsActive:         true,
	}

	svc := newTestPricingService([]model.PricingRule{rule}, &stubAuditRepo{}, nil)

	resp, err := svc.CalculatePrice(context.Background(), CalculatePriceRequest{
		ServiceType:      model.ServiceTranslation,
		SourceLanguageID: src.String(),
		TargetLanguageID: tgt.String(),
		WordCount:        2000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2000), resp.TotalWords)
	assert.Equal(t, "240.00", resp.Total)
}

func TestCalculatePriceReportsAmbiguousCatalogue(t *testing.T) {
	a := onSiteCatalogueRule()
	b := onSiteCatalogueRule()
	b.ID = uuid.New()

	audit := &stubAuditRepo{}
	notifier := &recordingNotifier{}
	svc := newTestPricingService([]model.PricingRule{a, b}, audit, notifier)

	_, err := svc.CalculatePrice(context.Background(), interpretationRequest())

	var ambiguous *pricing.AmbiguousRuleError
	require.ErrorAs(t, err, &ambiguous)

	// Data errors are surfaced to administrators, not swallowed.
	require.Len(t, audit.entries, 1)
	assert.Equal(t, model.ActionPricingDataError, audit.entries[0].Action)
	assert.Equal(t, []string{"pricing_data_error"}, notifier.events)
}

func TestCalculatePriceRushFromClock(t *testing.T) {
	svc := newTestPricingService([]model.PricingRule{onSiteCatalogueRule()}, &stubAuditRepo{}, nil)

	req := interpretationRequest()
	req.Schedule.Date = "2025-03-02" // ~23h after the fixed clock

	resp, err := svc.CalculatePrice(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.IsRush)
	assert.False(t, resp.IsSameDay)
	// (380 + 50) * 0.35
	assert.Equal(t, "150.50", resp.RushFee)
	assert.Equal(t, "580.50", resp.Total)
}

func TestCalculatePriceSameDayFromClock(t *testing.T) {
	svc := newTestPricingService([]model.PricingRule{onSiteCatalogueRule()}, &stubAuditRepo{}, nil)

	req := interpretationRequest()
	req.Schedule.Date = "2025-03-01"
	req.Schedule.Time = pricing.TimePair{Start: "15:00", End: "17:00"}

	resp, err := svc.CalculatePrice(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.IsSameDay)
	assert.False(t, resp.IsRush)
	// Minimum 2h met exactly; (190 + 50) * (2 - 1)
	assert.Equal(t, "240.00", resp.RushFee)
	assert.Equal(t, "480.00", resp.Total)
}
