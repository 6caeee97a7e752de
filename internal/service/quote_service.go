package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/pricing"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

// QuoteContact is the lead-intake slice of a quote request. Email is the
// dedupe key: repeat requesters reuse their client record.
type QuoteContact struct {
	Name        string `json:"name" binding:"required"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
}

type CreateQuoteRequest struct {
	Contact QuoteContact          `json:"contact" binding:"required"`
	Pricing CalculatePriceRequest `json:"pricing" binding:"required"`
}

type ReviewQuoteRequest struct {
	Total string `json:"total" binding:"required"` // manually agreed price, decimal string
	Note  string `json:"note"`
}

type DeclineQuoteRequest struct {
	Note string `json:"note"`
}

type QuoteResponse struct {
	ID                 string  `json:"id"`
	QuoteNo            string  `json:"quote_no"`
	Status             string  `json:"status"`
	ClientID           *string `json:"client_id"`
	ClientName         string  `json:"client_name"`
	ServiceType        string  `json:"service_type"`
	InterpretationType *string `json:"interpretation_type"`
	SourceLanguage     string  `json:"source_language"`
	TargetLanguage     string  `json:"target_language"`
	Region             *string `json:"region"`
	WordCount          *int64  `json:"word_count"`
	TotalHours         string  `json:"total_hours"`
	UnitRate           string  `json:"unit_rate"`
	Subtotal           string  `json:"subtotal"`
	TravelFee          string  `json:"travel_fee"`
	RushFee            string  `json:"rush_fee"`
	Total              string  `json:"total"`
	IsRush             bool    `json:"is_rush"`
	IsSameDay          bool    `json:"is_same_day"`
	MinimumApplied     bool    `json:"minimum_applied"`
	LineItems          string  `json:"line_items"`
	ReviewNote         string  `json:"review_note,omitempty"`
	Windows            []QuoteWindowResponse `json:"windows,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

type QuoteWindowResponse struct {
	StartsAt string `json:"starts_at"`
	EndsAt   string `json:"ends_at"`
}

// --- Interface ---

type QuoteService interface {
	// CreateQuote prices the request and persists the result. When the
	// catalogue has no applicable rule the quote is stored as NEEDS_REVIEW
	// instead of failing the intake; validation errors still fail.
	CreateQuote(ctx context.Context, req CreateQuoteRequest) (*QuoteResponse, error)
	GetQuote(ctx context.Context, id string) (*QuoteResponse, error)
	ListQuotes(ctx context.Context, filter repository.QuoteFilter) ([]QuoteResponse, int64, error)
	// ReviewQuote sets a manually agreed price on a NEEDS_REVIEW quote.
	ReviewQuote(ctx context.Context, id string, req ReviewQuoteRequest, userID string) (*QuoteResponse, error)
	DeclineQuote(ctx context.Context, id string, req DeclineQuoteRequest, userID string) (*QuoteResponse, error)
	// Reprice recomputes a stored quote against the current catalogue and
	// returns the fresh breakdown without mutating the stored quote.
	Reprice(ctx context.Context, id string) (*PriceBreakdownResponse, error)
}

type quoteService struct {
	quoteRepo  repository.QuoteRepository
	clientRepo repository.ClientRepository
	auditRepo  repository.AuditRepository
	pricingSvc PricingService
	txManager  repository.TransactionManager
	notifier   Notifier
}

func NewQuoteService(
	quoteRepo repository.QuoteRepository,
	clientRepo repository.ClientRepository,
	auditRepo repository.AuditRepository,
	pricingSvc PricingService,
	txManager repository.TransactionManager,
	notifier Notifier,
) QuoteService {
	return &quoteService{
		quoteRepo:  quoteRepo,
		clientRepo: clientRepo,
		auditRepo:  auditRepo,
		pricingSvc: pricingSvc,
		txManager:  txManager,
		notifier:   notifier,
	}
}

// --- Implementation ---

func (s *quoteService) CreateQuote(ctx context.Context, req CreateQuoteRequest) (*QuoteResponse, error) {
	result, priceErr := s.pricingSvc.Price(ctx, req.Pricing)

	var noRule *pricing.NoRuleFoundError
	needsReview := errors.As(priceErr, &noRule)
	if priceErr != nil && !needsReview {
		return nil, priceErr
	}

	quote := &model.Quote{
		ServiceType: req.Pricing.ServiceType,
		Status:      model.QuoteStatusQuoted,
	}
	if req.Pricing.InterpretationType != "" {
		it := req.Pricing.InterpretationType
		quote.InterpretationType = &it
	}
	if req.Pricing.Region != "" {
		// Store the same form resolution matched on, not the raw input.
		region := strings.ToUpper(strings.TrimSpace(req.Pricing.Region))
		quote.Region = &region
	}
	if req.Pricing.WordCount > 0 {
		wc := req.Pricing.WordCount
		quote.WordCount = &wc
	}
	if id, err := uuid.Parse(req.Pricing.SourceLanguageID); err == nil {
		quote.SourceLanguageID = &id
	}
	if id, err := uuid.Parse(req.Pricing.TargetLanguageID); err == nil {
		quote.TargetLanguageID = &id
	}

	if needsReview {
		quote.Status = model.QuoteStatusNeedsReview
	} else {
		b := result.Breakdown
		quote.RuleID = &result.Rule.ID
		quote.TotalHours = b.TotalHours
		quote.UnitRate = b.UnitRate
		quote.Subtotal = b.Subtotal
		quote.TravelFee = b.TravelFee
		quote.RushFee = b.RushFee
		quote.Total = b.Total
		quote.IsRush = b.IsRush
		quote.IsSameDay = b.IsSameDay
		quote.MinimumApplied = b.MinimumApplied

		items, _ := json.Marshal(b.LineItems)
		quote.LineItems = string(items)
	}

	// The schedule is persisted even without a price: the reviewer needs the
	// requested dates and hours, and Reprice rebuilds its request from them.
	if result != nil {
		for _, w := range result.Windows {
			quote.Windows = append(quote.Windows, model.QuoteWindow{StartsAt: w.StartsAt, EndsAt: w.EndsAt})
		}
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.findOrCreateClient(txCtx, req.Contact)
		if err != nil {
			return err
		}
		quote.ClientID = &client.ID

		quoteNo, err := s.generateQuoteNo(txCtx)
		if err != nil {
			return fmt.Errorf("failed to generate quote number: %w", err)
		}
		quote.QuoteNo = quoteNo

		if err := s.quoteRepo.Create(txCtx, quote); err != nil {
			return fmt.Errorf("failed to create quote: %w", err)
		}

		details, _ := json.Marshal(map[string]string{"quote_no": quote.QuoteNo, "status": quote.Status})
		audit := model.AuditLog{
			Action:     model.ActionCreateQuote,
			EntityID:   quote.ID.String(),
			EntityName: quote.QuoteNo,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, &audit)
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		event := "quote_created"
		if needsReview {
			event = "quote_needs_review"
		}
		s.notifier.Notify(event, map[string]string{"quote_no": quote.QuoteNo, "service_type": quote.ServiceType})
	}

	return s.GetQuote(ctx, quote.ID.String())
}

func (s *quoteService) GetQuote(ctx context.Context, id string) (*QuoteResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid quote id: %w", err)
	}

	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quote not found")
		}
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}

	resp := toQuoteResponse(quote)
	return &resp, nil
}

func (s *quoteService) ListQuotes(ctx context.Context, filter repository.QuoteFilter) ([]QuoteResponse, int64, error) {
	quotes, total, err := s.quoteRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch quotes: %w", err)
	}

	res := make([]QuoteResponse, 0, len(quotes))
	for i := range quotes {
		res = append(res, toQuoteResponse(&quotes[i]))
	}
	return res, total, nil
}

func (s *quoteService) ReviewQuote(ctx context.Context, id string, req ReviewQuoteRequest, userID string) (*QuoteResponse, error) {
	total, err := decimal.NewFromString(req.Total)
	if err != nil || !total.IsPositive() {
		return nil, fmt.Errorf("invalid total: must be a positive amount")
	}

	quote, err := s.transitionQuote(ctx, id, model.QuoteStatusNeedsReview, model.QuoteStatusReviewed, userID, req.Note, model.ActionReviewQuote, func(q *model.Quote) {
		q.Total = total.Round(2)
	})
	if err != nil {
		return nil, err
	}

	resp := toQuoteResponse(quote)
	return &resp, nil
}

func (s *quoteService) DeclineQuote(ctx context.Context, id string, req DeclineQuoteRequest, userID string) (*QuoteResponse, error) {
	quote, err := s.transitionQuote(ctx, id, model.QuoteStatusNeedsReview, model.QuoteStatusDeclined, userID, req.Note, model.ActionDeclineQuote, nil)
	if err != nil {
		return nil, err
	}

	resp := toQuoteResponse(quote)
	return &resp, nil
}

func (s *quoteService) Reprice(ctx context.Context, id string) (*PriceBreakdownResponse, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid quote id: %w", err)
	}

	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quote not found")
		}
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}

	return s.pricingSvc.CalculatePrice(ctx, quoteToPricingRequest(quote))
}

// --- Helpers ---

func (s *quoteService) transitionQuote(ctx context.Context, id, fromStatus, toStatus, userID, note, action string, mutate func(*model.Quote)) (*model.Quote, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid quote id: %w", err)
	}

	var quote *model.Quote
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quote, err = s.quoteRepo.FindByID(txCtx, quoteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("quote not found")
			}
			return fmt.Errorf("failed to fetch quote: %w", err)
		}

		if quote.Status != fromStatus {
			return fmt.Errorf("quote %s is %s, expected %s", quote.QuoteNo, quote.Status, fromStatus)
		}

		quote.Status = toStatus
		quote.ReviewNote = note
		now := time.Now()
		quote.ReviewedAt = &now
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			quote.ReviewedBy = &parsed
		}
		if mutate != nil {
			mutate(quote)
		}

		if err := s.quoteRepo.Update(txCtx, quote); err != nil {
			return fmt.Errorf("failed to update quote: %w", err)
		}

		details, _ := json.Marshal(map[string]string{"status": toStatus, "note": note})
		audit := model.AuditLog{
			UserID:     quote.ReviewedBy,
			Action:     action,
			EntityID:   quote.ID.String(),
			EntityName: quote.QuoteNo,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, &audit)
	})
	if err != nil {
		return nil, err
	}

	return quote, nil
}

func (s *quoteService) findOrCreateClient(ctx context.Context, contact QuoteContact) (*model.Client, error) {
	client, err := s.clientRepo.FindByEmail(ctx, contact.Email)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}

	client = &model.Client{
		Name:        contact.Name,
		CompanyName: contact.CompanyName,
		Email:       contact.Email,
		Phone:       contact.Phone,
		LeadSource:  model.LeadSourceWeb,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// generateQuoteNo yields Q-YYYYMM-NNNN, sequential within the month.
func (s *quoteService) generateQuoteNo(ctx context.Context) (string, error) {
	prefix := "Q-" + time.Now().Format("200601")
	count, err := s.quoteRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, count+1), nil
}

func quoteToPricingRequest(quote *model.Quote) CalculatePriceRequest {
	req := CalculatePriceRequest{
		ServiceType: quote.ServiceType,
	}
	if quote.InterpretationType != nil {
		req.InterpretationType = *quote.InterpretationType
	}
	if quote.Region != nil {
		req.Region = *quote.Region
	}
	if quote.SourceLanguageID != nil {
		req.SourceLanguageID = quote.SourceLanguageID.String()
	}
	if quote.TargetLanguageID != nil {
		req.TargetLanguageID = quote.TargetLanguageID.String()
	}
	if quote.WordCount != nil {
		req.WordCount = *quote.WordCount
	}

	// Rebuild the schedule from the persisted windows.
	if len(quote.Windows) > 0 {
		req.Schedule.Mode = pricing.SelectMultiple
		req.Schedule.TimeMode = pricing.TimePerEntry
		for _, w := range quote.Windows {
			req.Schedule.Dates = append(req.Schedule.Dates, w.StartsAt.Format("2006-01-02"))
			req.Schedule.Times = append(req.Schedule.Times, pricing.TimePair{
				Start: w.StartsAt.Format("15:04"),
				End:   w.EndsAt.Format("15:04"),
			})
		}
	}
	return req
}

func toQuoteResponse(quote *model.Quote) QuoteResponse {
	resp := QuoteResponse{
		ID:                 quote.ID.String(),
		QuoteNo:            quote.QuoteNo,
		Status:             quote.Status,
		ServiceType:        quote.ServiceType,
		InterpretationType: quote.InterpretationType,
		Region:             quote.Region,
		WordCount:          quote.WordCount,
		TotalHours:         quote.TotalHours.String(),
		UnitRate:           quote.UnitRate.String(),
		Subtotal:           quote.Subtotal.StringFixed(2),
		TravelFee:          quote.TravelFee.StringFixed(2),
		RushFee:            quote.RushFee.StringFixed(2),
		Total:              quote.Total.StringFixed(2),
		IsRush:             quote.IsRush,
		IsSameDay:          quote.IsSameDay,
		MinimumApplied:     quote.MinimumApplied,
		LineItems:          quote.LineItems,
		ReviewNote:         quote.ReviewNote,
		CreatedAt:          quote.CreatedAt.Format(time.RFC3339),
	}
	if quote.ClientID != nil {
		v := quote.ClientID.String()
		resp.ClientID = &v
	}
	if quote.Client != nil {
		resp.ClientName = quote.Client.Name
	}
	if quote.SourceLanguage != nil {
		resp.SourceLanguage = quote.SourceLanguage.Name
	}
	if quote.TargetLanguage != nil {
		resp.TargetLanguage = quote.TargetLanguage.Name
	}
	for _, w := range quote.Windows {
		resp.Windows = append(resp.Windows, QuoteWindowResponse{
			StartsAt: w.StartsAt.Format(time.RFC3339),
			EndsAt:   w.EndsAt.Format(time.RFC3339),
		})
	}
	return resp
}
