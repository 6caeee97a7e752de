package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubQuoteRepo struct {
	quotes map[uuid.UUID]*model.Quote
}

func newStubQuoteRepo() *stubQuoteRepo {
	return &stubQuoteRepo{quotes: make(map[uuid.UUID]*model.Quote)}
}

func (s *stubQuoteRepo) Create(ctx context.Context, quote *model.Quote) error {
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	quote.CreatedAt = time.Now()
	s.quotes[quote.ID] = quote
	return nil
}

func (s *stubQuoteRepo) Update(ctx context.Context, quote *model.Quote) error {
	s.quotes[quote.ID] = quote
	return nil
}

func (s *stubQuoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	quote, ok := s.quotes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quote, nil
}

func (s *stubQuoteRepo) List(ctx context.Context, filter repository.QuoteFilter) ([]model.Quote, int64, error) {
	var out []model.Quote
	for _, q := range s.quotes {
		if filter.Status != "" && q.Status != filter.Status {
			continue
		}
		out = append(out, *q)
	}
	return out, int64(len(out)), nil
}

func (s *stubQuoteRepo) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	for _, q := range s.quotes {
		if strings.HasPrefix(q.QuoteNo, prefix) {
			count++
		}
	}
	return count, nil
}

type stubClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[uuid.UUID]*model.Client)}
}

func (s *stubClientRepo) Create(ctx context.Context, client *model.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	s.clients[client.ID] = client
	return nil
}

func (s *stubClientRepo) Update(ctx context.Context, client *model.Client) error {
	s.clients[client.ID] = client
	return nil
}

func (s *stubClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.clients, id)
	return nil
}

func (s *stubClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	client, ok := s.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return client, nil
}

func (s *stubClientRepo) FindByEmail(ctx context.Context, email string) (*model.Client, error) {
	for _, c := range s.clients {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubClientRepo) List(ctx context.Context, search string, page, limit int) ([]model.Client, int64, error) {
	var out []model.Client
	for _, c := range s.clients {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

// passthroughTx runs the closure directly; the stub repositories have no
// transaction semantics to enforce.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type quoteFixture struct {
	svc      QuoteService
	quotes   *stubQuoteRepo
	clients  *stubClientRepo
	rules    *stubRuleRepo
	audit    *stubAuditRepo
	notifier *recordingNotifier
}

func newQuoteFixture(rules []model.PricingRule) quoteFixture {
	audit := &stubAuditRepo{}
	notifier := &recordingNotifier{}
	quotes := newStubQuoteRepo()
	clients := newStubClientRepo()
	ruleRepo := &stubRuleRepo{rules: rules}
	pricingSvc := NewPricingServiceWithClock(ruleRepo, audit, notifier, testConfig(), fixedClock())
	svc := NewQuoteService(quotes, clients, audit, pricingSvc, passthroughTx{}, notifier)
	return quoteFixture{svc: svc, quotes: quotes, clients: clients, rules: ruleRepo, audit: audit, notifier: notifier}
}

func quoteRequest() CreateQuoteRequest {
	return CreateQuoteRequest{
		Contact: QuoteContact{
			Name:  "Maria Lopez",
			Email: "maria@example.com",
			Phone: "555-0100",
		},
		Pricing: interpretationRequest(),
	}
}

func currentQuotePrefix() string {
	return "Q-" + time.Now().Format("200601")
}

func TestCreateQuotePersistsBreakdown(t *testing.T) {
	f := newQuoteFixture([]model.PricingRule{onSiteCatalogueRule()})

	resp, err := f.svc.CreateQuote(context.Background(), quoteRequest())
	require.NoError(t, err)

	assert.Equal(t, model.QuoteStatusQuoted, resp.Status)
	assert.Equal(t, currentQuotePrefix()+"-0001", resp.QuoteNo)
	assert.Equal(t, "430.00", resp.Total)
	assert.Equal(t, "4", resp.TotalHours)
	require.Len(t, resp.Windows, 1)

	// The request sends "ca"; the stored quote carries the normalized form.
	require.NotNil(t, resp.Region)
	assert.Equal(t, "CA", *resp.Region)

	require.Len(t, f.clients.clients, 1)
	for _, c := range f.clients.clients {
		assert.Equal(t, model.LeadSourceWeb, c.LeadSource)
	}
	assert.Equal(t, []string{"quote_created"}, f.notifier.events)
}

func TestCreateQuoteReusesClientByEmail(t *testing.T) {
	f := newQuoteFixture([]model.PricingRule{onSiteCatalogueRule()})

	_, err := f.svc.CreateQuote(context.Background(), quoteRequest())
	require.NoError(t, err)
	_, err = f.svc.CreateQuote(context.Background(), quoteRequest())
	require.NoError(t, err)

	assert.Len(t, f.clients.clients, 1, "a repeat email must not create a second client")
	assert.Len(t, f.quotes.quotes, 2)
}

func TestCreateQuoteSequentialNumbers(t *testing.T) {
	f := newQuoteFixture([]model.PricingRule{onSiteCatalogueRule()})

	var numbers []string
	for i := 0; i < 3; i++ {
		resp, err := f.svc.CreateQuote(context.Background(), quoteRequest())
		require.NoError(t, err)
		numbers = append(numbers, resp.QuoteNo)
	}

	prefix := currentQuotePrefix()
	assert.Equal(t, []string{
		fmt.Sprintf("%s-0001", prefix),
		fmt.Sprintf("%s-0002", prefix),
		fmt.Sprintf("%s-0003", prefix),
	}, numbers)
}

func TestCreateQuoteNoRuleGoesToReview(t *testing.T) {
	f := newQuoteFixture(nil) // empty catalogue

	resp, err := f.svc.CreateQuote(context.Background(), quoteRequest())
	require.NoError(t, err, "a missing rule is a review case, not an intake failure")

	assert.Equal(t, model.QuoteStatusNeedsReview, resp.Status)
	assert.Equal(t, "0.00", resp.Total)
	assert.Equal(t, []string{"quote_needs_review"}, f.notifier.events)

	// The reviewer still sees the requested schedule even though no price
	// could be resolved.
	require.Len(t, resp.Windows, 1)
	assert.Equal(t, "2025-03-20T09:00:00Z", resp.Windows[0].StartsAt)
	assert.Equal(t, "2025-03-20T13:00:00Z", resp.Windows[0].EndsAt)
}

func TestRepriceNeedsReviewAfterRuleAdded(t *testing.T) {
	f := newQuoteFixture(nil)

	created, err := f.svc.CreateQuote(context.Background(), quoteRequest())
	require.NoError(t, err)
	require.Equal(t, model.QuoteStatusNeedsReview, created.Status)
	require.Len(t, created.Windows, 1)

	// Still no matching rule in the catalogue.
	_, err = f.svc.Reprice(context.Background(), created.ID)
	require.Error(t, err)

	// Once an administrator adds the missing rule, the persisted schedule
	// is enough to reprice the quote.
	f.rules.rules = append(f.rules.rules, onSiteCatalogueRule())

	breakdown, err := f.svc.Reprice(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "430.00", breakdown.Total)
	assert.Equal(t, "4", breakdown.TotalHours)
}

func TestCreateQuoteValidationStillFails(t *testing.T) {
	f := newQuoteFixture([]model.PricingRule{onSiteCatalogueRule()})

	req := quoteRequest()
	req.Pricing.InterpretationType = ""
	_, err := f.svc.CreateQuote(context.Background(), req)

	require.Error(t, err)
	assert.Empty(t, f.quotes.quotes)
	assert.Empty(t, f.clients.clients)
}

func TestReviewQuoteSetsAgreedTotal(t *testing.T) {
	f := newQuoteFixture(nil)

	created, err := f.svc.CreateQuote(context.Background(), quoteRequest())
	require.NoError(t, err)
	require.Equal(t, model.QuoteStatusNeedsReview, created.Status)

	reviewer := uuid.New().String()
	reviewed, err := f.svc.ReviewQuote(context.Background(), created.ID, ReviewQuoteRequest{
		Total: "525.50",
		Note:  "custom rate agreed by phone",
	}, reviewer)
	require.NoError(t, err)

	assert.Equal(t, model.QuoteStatusReviewed, reviewed.Status)
	assert.Equal(t, "525.50", reviewed.Total)
	assert.Equal(t, "custom rate agreed by phone", reviewed.ReviewNote)
}

func TestReviewQuoteRejectsWrongStatus(t *testing.T) {
	f := newQuoteFixture([]model.PricingRule{onSiteCatalogueRule()})

	created, err := f.svc.CreateQuote(context.Background(), quoteRequest())
	require.NoError(t, err)
	require.Equal(t, model.QuoteStatusQuoted, created.Status)

	_, err = f.svc.ReviewQuote(context.Background(), created.ID, ReviewQuoteRequest{Total: "100"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected "+model.QuoteStatusNeedsReview)
}

func TestReviewQuoteRejectsBadTotal(t *testing.T) {
	f := newQuoteFixture(nil)

	created, err := f.svc.CreateQuote(context.Background(), quoteRequest())
	require.NoError(t, err)

	_, err = f.svc.ReviewQuote(context.Background(), created.ID, ReviewQuoteRequest{Total: "-10"}, "")
	assert.Error(t, err)

	_, err = f.svc.ReviewQuote(context.Background(), created.ID, ReviewQuoteRequest{Total: "abc"}, "")
	assert.Error(t, err)
}

func TestDeclineQuote(t *testing.T) {
	f := newQuoteFixture(nil)

	created, err := f.svc.CreateQuote(context.Background(), quoteRequest())
	require.NoError(t, err)

	declined, err := f.svc.DeclineQuote(context.Background(), created.ID, DeclineQuoteRequest{Note: "out of coverage area"}, "")
	require.NoError(t, err)

	assert.Equal(t, model.QuoteStatusDeclined, declined.Status)
	assert.Equal(t, "out of coverage area", declined.ReviewNote)

	// A declined quote cannot be declined again.
	_, err = f.svc.DeclineQuote(context.Background(), created.ID, DeclineQuoteRequest{}, "")
	assert.Error(t, err)
}

func TestRepriceDoesNotMutateQuote(t *testing.T) {
	f := newQuoteFixture([]model.PricingRule{onSiteCatalogueRule()})

	created, err := f.svc.CreateQuote(context.Background(), quoteRequest())
	require.NoError(t, err)

	breakdown, err := f.svc.Reprice(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "430.00", breakdown.Total)

	after, err := f.svc.GetQuote(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Total, after.Total)
	assert.Equal(t, created.Status, after.Status)
}

func TestListQuotesFiltersByStatus(t *testing.T) {
	f := newQuoteFixture(nil)

	_, err := f.svc.CreateQuote(context.Background(), quoteRequest())
	require.NoError(t, err)

	quotes, total, err := f.svc.ListQuotes(context.Background(), repository.QuoteFilter{
		Status: model.QuoteStatusNeedsReview,
		Page:   1,
		Limit:  20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, quotes, 1)

	quotes, total, err = f.svc.ListQuotes(context.Background(), repository.QuoteFilter{
		Status: model.QuoteStatusQuoted,
		Page:   1,
		Limit:  20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, quotes)
}
