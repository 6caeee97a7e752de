package pricing

import (
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	langEN = uuid.New()
	langES = uuid.New()
	langFR = uuid.New()
)

func strPtr(s string) *string { return &s }

func hourly(rate string) *decimal.Decimal {
	d := decimal.RequireFromString(rate)
	return &d
}

func interpRule(opts func(*model.PricingRule)) model.PricingRule {
	rule := model.PricingRule{
		ID:          uuid.New(),
		ServiceType: model.ServiceInterpretation,
		HourlyRate:  hourly("100"),
		IsActive:    true,
	}
	if opts != nil {
		opts(&rule)
	}
	return rule
}

func onSiteContext() RuleContext {
	return RuleContext{
		ServiceType:        model.ServiceInterpretation,
		InterpretationType: model.InterpretationOnSite,
		SourceLanguageID:   &langEN,
		TargetLanguageID:   &langES,
		Region:             "CA",
	}
}

func TestResolvePicksMostSpecificTier(t *testing.T) {
	exact := interpRule(func(r *model.PricingRule) {
		r.SourceLanguageID = &langEN
		r.TargetLanguageID = &langES
		r.Region = strPtr("CA")
	})
	pairOnly := interpRule(func(r *model.PricingRule) {
		r.SourceLanguageID = &langEN
		r.TargetLanguageID = &langES
	})
	regionOnly := interpRule(func(r *model.PricingRule) {
		r.Region = strPtr("CA")
	})
	fallback := interpRule(func(r *model.PricingRule) {
		r.IsDefault = true
	})

	rule, err := Resolve(onSiteContext(), []model.PricingRule{fallback, regionOnly, pairOnly, exact})
	require.NoError(t, err)
	assert.Equal(t, exact.ID, rule.ID)
}

func TestResolveSpecificityBeatsPriority(t *testing.T) {
	exact := interpRule(func(r *model.PricingRule) {
		r.SourceLanguageID = &langEN
		r.TargetLanguageID = &langES
		r.Region = strPtr("CA")
		r.Priority = 0
	})
	fallback := interpRule(func(r *model.PricingRule) {
		r.IsDefault = true
		r.Priority = 1000
	})

	rule, err := Resolve(onSiteContext(), []model.PricingRule{fallback, exact})
	require.NoError(t, err)
	assert.Equal(t, exact.ID, rule.ID, "a more specific rule wins regardless of the default's priority")
}

func TestResolvePriorityBreaksTieWithinTier(t *testing.T) {
	low := interpRule(func(r *model.PricingRule) {
		r.Region = strPtr("CA")
		r.Priority = 1
	})
	high := interpRule(func(r *model.PricingRule) {
		r.Region = strPtr("CA")
		r.Priority = 5
	})

	// Different interpretation scoping keeps them out of the uniqueness
	// invariant while still matching the same request.
	onSite := model.InterpretationOnSite
	high.InterpretationType = &onSite

	rule, err := Resolve(onSiteContext(), []model.PricingRule{low, high})
	require.NoError(t, err)
	assert.Equal(t, high.ID, rule.ID)
}

func TestResolveEqualPriorityIsAmbiguous(t *testing.T) {
	a := interpRule(func(r *model.PricingRule) {
		r.Region = strPtr("CA")
		r.Priority = 3
	})
	b := interpRule(func(r *model.PricingRule) {
		r.Region = strPtr("CA")
		r.Priority = 3
	})

	_, err := Resolve(onSiteContext(), []model.PricingRule{a, b})

	var ambiguous *AmbiguousRuleError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.RuleIDs, 2)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, ambiguous.RuleIDs)
}

func TestResolveNoRuleFound(t *testing.T) {
	translationDefault := model.PricingRule{
		ID:          uuid.New(),
		ServiceType: model.ServiceTranslation,
		WordRate:    hourly("0.12"),
		IsDefault:   true,
		IsActive:    true,
	}

	ctx := RuleContext{
		ServiceType:        model.ServiceInterpretation,
		InterpretationType: model.InterpretationPhone,
	}

	_, err := Resolve(ctx, []model.PricingRule{translationDefault})

	var notFound *NoRuleFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, model.ServiceInterpretation, notFound.ServiceType)
	assert.Equal(t, model.InterpretationPhone, notFound.InterpretationType)
}

func TestResolveInactiveRulesExcluded(t *testing.T) {
	inactive := interpRule(func(r *model.PricingRule) {
		r.SourceLanguageID = &langEN
		r.TargetLanguageID = &langES
		r.Region = strPtr("CA")
		r.IsActive = false
	})
	fallback := interpRule(func(r *model.PricingRule) {
		r.IsDefault = true
	})

	rule, err := Resolve(onSiteContext(), []model.PricingRule{inactive, fallback})
	require.NoError(t, err)
	assert.Equal(t, fallback.ID, rule.ID)
}

func TestResolveUnscopedNonDefaultNeverMatches(t *testing.T) {
	orphan := interpRule(nil) // no scope, not marked default

	_, err := Resolve(onSiteContext(), []model.PricingRule{orphan})

	var notFound *NoRuleFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestResolveInterpretationTypeFiltersEveryTier(t *testing.T) {
	video := model.InterpretationVideoRemote
	videoExact := interpRule(func(r *model.PricingRule) {
		r.InterpretationType = &video
		r.SourceLanguageID = &langEN
		r.TargetLanguageID = &langES
		r.Region = strPtr("CA")
	})
	fallback := interpRule(func(r *model.PricingRule) {
		r.IsDefault = true
	})

	// An ON_SITE request must skip the VIDEO_REMOTE rule even though it is
	// the most specific match on languages and region.
	rule, err := Resolve(onSiteContext(), []model.PricingRule{videoExact, fallback})
	require.NoError(t, err)
	assert.Equal(t, fallback.ID, rule.ID)
}

func TestResolveLanguageMismatch(t *testing.T) {
	frRule := interpRule(func(r *model.PricingRule) {
		r.SourceLanguageID = &langEN
		r.TargetLanguageID = &langFR
	})

	_, err := Resolve(onSiteContext(), []model.PricingRule{frRule})

	var notFound *NoRuleFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestResolvePairWithoutRegionBeatsRegionWithoutPair(t *testing.T) {
	pairOnly := interpRule(func(r *model.PricingRule) {
		r.SourceLanguageID = &langEN
		r.TargetLanguageID = &langES
	})
	regionOnly := interpRule(func(r *model.PricingRule) {
		r.Region = strPtr("CA")
		r.Priority = 99
	})

	rule, err := Resolve(onSiteContext(), []model.PricingRule{regionOnly, pairOnly})
	require.NoError(t, err)
	assert.Equal(t, pairOnly.ID, rule.ID)
}
