package pricing

import (
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func onSiteRule() *model.PricingRule {
	onSite := model.InterpretationOnSite
	return &model.PricingRule{
		ID:                 uuid.New(),
		ServiceType:        model.ServiceInterpretation,
		InterpretationType: &onSite,
		HourlyRate:         hourly("95"),
		MinimumUnits:       dec("2"),
		TravelFee:          dec("50"),
		RushMultiplier:     dec("1.35"),
		SameDayMultiplier:  dec("2"),
		IsActive:           true,
	}
}

func TestCalculateSimpleOnSiteNoMinimum(t *testing.T) {
	// 4 hours at $95/h plus $50 travel: no minimum, no surcharge.
	b, err := Calculate(onSiteRule(), CalcInput{
		ServiceType:        model.ServiceInterpretation,
		InterpretationType: model.InterpretationOnSite,
		Hours:              dec("4"),
	})
	require.NoError(t, err)

	assert.Equal(t, "380.00", b.Subtotal.StringFixed(2))
	assert.Equal(t, "50.00", b.TravelFee.StringFixed(2))
	assert.Equal(t, "0.00", b.RushFee.StringFixed(2))
	assert.Equal(t, "430.00", b.Total.StringFixed(2))
	assert.False(t, b.MinimumApplied)
	assert.False(t, b.IsRush)
}

func TestCalculateMinimumTriggered(t *testing.T) {
	// Half an hour requested against a 2 hour minimum.
	b, err := Calculate(onSiteRule(), CalcInput{
		ServiceType:        model.ServiceInterpretation,
		InterpretationType: model.InterpretationOnSite,
		Hours:              dec("0.5"),
	})
	require.NoError(t, err)

	assert.Equal(t, "190.00", b.Subtotal.StringFixed(2))
	assert.Equal(t, "240.00", b.Total.StringFixed(2))
	assert.True(t, b.MinimumApplied)
}

func TestCalculateSameDaySurcharge(t *testing.T) {
	phone := model.InterpretationPhone
	rule := &model.PricingRule{
		ID:                 uuid.New(),
		ServiceType:        model.ServiceInterpretation,
		InterpretationType: &phone,
		HourlyRate:         hourly("80"),
		RushMultiplier:     dec("1.35"),
		SameDayMultiplier:  dec("2"),
		IsActive:           true,
	}

	b, err := Calculate(rule, CalcInput{
		ServiceType:        model.ServiceInterpretation,
		InterpretationType: model.InterpretationPhone,
		Hours:              dec("2"),
		IsSameDay:          true,
		IsRush:             true, // same-day supersedes
	})
	require.NoError(t, err)

	assert.Equal(t, "160.00", b.Subtotal.StringFixed(2))
	assert.Equal(t, "160.00", b.RushFee.StringFixed(2))
	assert.Equal(t, "320.00", b.Total.StringFixed(2))
	assert.True(t, b.IsSameDay)
	assert.False(t, b.IsRush, "a breakdown never reports rush and same-day together")
}

func TestCalculateRushSurchargeIncludesTravelFee(t *testing.T) {
	b, err := Calculate(onSiteRule(), CalcInput{
		ServiceType:        model.ServiceInterpretation,
		InterpretationType: model.InterpretationOnSite,
		Hours:              dec("4"),
		IsRush:             true,
	})
	require.NoError(t, err)

	// (380 + 50) * 0.35 = 150.50
	assert.Equal(t, "150.50", b.RushFee.StringFixed(2))
	assert.Equal(t, "580.50", b.Total.StringFixed(2))
	assert.True(t, b.IsRush)
}

func TestCalculateTravelFeeOnlyOnSite(t *testing.T) {
	rule := onSiteRule()
	b, err := Calculate(rule, CalcInput{
		ServiceType:        model.ServiceInterpretation,
		InterpretationType: model.InterpretationVideoRemote,
		Hours:              dec("4"),
	})
	require.NoError(t, err)

	assert.Equal(t, "0.00", b.TravelFee.StringFixed(2))
	assert.Equal(t, "380.00", b.Total.StringFixed(2))
}

func TestCalculateMissingRateIsInvalidRule(t *testing.T) {
	rule := onSiteRule()
	rule.HourlyRate = nil

	_, err := Calculate(rule, CalcInput{
		ServiceType:        model.ServiceInterpretation,
		InterpretationType: model.InterpretationOnSite,
		Hours:              dec("2"),
	})

	var invalid *InvalidRuleError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, rule.ID, invalid.RuleID)
}

func TestCalculateTranslationWords(t *testing.T) {
	rule := &model.PricingRule{
		ID:           uuid.New(),
		ServiceType:  model.ServiceTranslation,
		WordRate:     hourly("0.12"),
		MinimumUnits: dec("500"),
		IsActive:     true,
	}

	b, err := Calculate(rule, CalcInput{
		ServiceType: model.ServiceTranslation,
		Words:       2000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2000), b.TotalWords)
	assert.Equal(t, "240.00", b.Subtotal.StringFixed(2))
	assert.Equal(t, "240.00", b.Total.StringFixed(2))
	assert.False(t, b.MinimumApplied)
}

func TestCalculateTranslationMinimumWords(t *testing.T) {
	rule := &model.PricingRule{
		ID:           uuid.New(),
		ServiceType:  model.ServiceTranslation,
		WordRate:     hourly("0.12"),
		MinimumUnits: dec("500"),
		IsActive:     true,
	}

	b, err := Calculate(rule, CalcInput{
		ServiceType: model.ServiceTranslation,
		Words:       100,
	})
	require.NoError(t, err)

	// 500 * 0.12
	assert.Equal(t, "60.00", b.Total.StringFixed(2))
	assert.True(t, b.MinimumApplied)
}

func TestCalculateTranslationModifiers(t *testing.T) {
	rule := &model.PricingRule{
		ID:          uuid.New(),
		ServiceType: model.ServiceTranslation,
		WordRate:    hourly("0.10"),
		VolumeDiscountTiers: model.VolumeTiers{
			{MinUnits: 5000, Multiplier: dec("0.95")},
			{MinUnits: 10000, Multiplier: dec("0.9")},
		},
		DocumentTypeMultipliers: model.DocTypeMultipliers{
			"LEGAL": dec("1.25"),
		},
		IsActive: true,
	}

	b, err := Calculate(rule, CalcInput{
		ServiceType:  model.ServiceTranslation,
		Words:        10000,
		DocumentType: "LEGAL",
	})
	require.NoError(t, err)

	// 0.10 * 1.25 (legal) * 0.9 (10k tier) = 0.1125/word
	assert.Equal(t, "0.1125", b.UnitRate.String())
	assert.Equal(t, "1125.00", b.Total.StringFixed(2))
}

func TestCalculateVolumeTierPicksHighestApplicable(t *testing.T) {
	tiers := model.VolumeTiers{
		{MinUnits: 1000, Multiplier: dec("0.98")},
		{MinUnits: 5000, Multiplier: dec("0.95")},
	}

	assert.Equal(t, "1", volumeMultiplier(tiers, 500).String())
	assert.Equal(t, "0.98", volumeMultiplier(tiers, 1000).String())
	assert.Equal(t, "0.95", volumeMultiplier(tiers, 7500).String())
}

func TestCalculateDeterministic(t *testing.T) {
	in := CalcInput{
		ServiceType:        model.ServiceInterpretation,
		InterpretationType: model.InterpretationOnSite,
		Hours:              dec("3.25"),
		IsRush:             true,
	}
	rule := onSiteRule()

	first, err := Calculate(rule, in)
	require.NoError(t, err)
	second, err := Calculate(rule, in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
