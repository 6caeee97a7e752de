package pricing

import (
	"fmt"

	"backend/internal/model"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// CalcInput carries the aggregated request quantities into the calculator.
// Hours is used for interpretation/transcription, Words for translation.
type CalcInput struct {
	ServiceType        string
	InterpretationType string
	Hours              decimal.Decimal
	Words              int64
	DocumentType       string // translation-only rate modifier key
	IsRush             bool
	IsSameDay          bool
}

// Calculate combines the resolved rule with the aggregated quantities into a
// final breakdown. Deterministic and side-effect free: reproducible quotes
// depend on it.
func Calculate(rule *model.PricingRule, in CalcInput) (*Breakdown, error) {
	if in.ServiceType == model.ServiceTranslation {
		return calculateWords(rule, in)
	}
	return calculateHours(rule, in)
}

// calculateHours prices interpretation and transcription engagements.
func calculateHours(rule *model.PricingRule, in CalcInput) (*Breakdown, error) {
	if rule.HourlyRate == nil || !rule.HourlyRate.IsPositive() {
		return nil, &InvalidRuleError{RuleID: rule.ID, Reason: "missing or non-positive hourly rate for " + in.ServiceType}
	}
	rate := *rule.HourlyRate

	b := &Breakdown{
		TotalHours: in.Hours,
		UnitRate:   rate,
		IsSameDay:  in.IsSameDay,
		TravelFee:  decimal.Zero,
		RushFee:    decimal.Zero,
	}

	effective := in.Hours
	if in.Hours.LessThan(rule.MinimumUnits) {
		effective = rule.MinimumUnits
		b.MinimumApplied = true
	}

	b.Subtotal = effective.Mul(rate).Round(2)
	b.LineItems = append(b.LineItems, LineItem{
		Label:  fmt.Sprintf("%s: %s h × $%s/h", serviceLabel(in.ServiceType, in.InterpretationType), effective.String(), rate.StringFixed(2)),
		Amount: b.Subtotal,
	})
	if b.MinimumApplied {
		b.LineItems = append(b.LineItems, LineItem{
			Label: fmt.Sprintf("Minimum charge of %s h applied (requested %s h)", rule.MinimumUnits.String(), in.Hours.String()),
		})
	}

	// Travel fee is flat, once per engagement, on-site only.
	if in.InterpretationType == model.InterpretationOnSite && rule.TravelFee.IsPositive() {
		b.TravelFee = rule.TravelFee.Round(2)
		b.LineItems = append(b.LineItems, LineItem{Label: "On-site travel fee", Amount: b.TravelFee})
	}

	applySurcharge(b, rule, in)

	b.Total = b.Subtotal.Add(b.TravelFee).Add(b.RushFee)
	b.LineItems = append(b.LineItems, LineItem{Label: "Total", Amount: b.Total})
	return b, nil
}

// calculateWords prices translation jobs: per-word rate with optional
// document-type and volume-tier modifiers folded into the unit rate before
// minimum enforcement.
func calculateWords(rule *model.PricingRule, in CalcInput) (*Breakdown, error) {
	if rule.WordRate == nil || !rule.WordRate.IsPositive() {
		return nil, &InvalidRuleError{RuleID: rule.ID, Reason: "missing or non-positive per-word rate for TRANSLATION"}
	}

	rate := *rule.WordRate
	words := decimal.NewFromInt(in.Words)

	b := &Breakdown{
		TotalWords: in.Words,
		IsSameDay:  in.IsSameDay,
		TravelFee:  decimal.Zero,
		RushFee:    decimal.Zero,
	}

	if in.DocumentType != "" {
		if mult, ok := rule.DocumentTypeMultipliers[in.DocumentType]; ok && mult.IsPositive() {
			rate = rate.Mul(mult)
			b.LineItems = append(b.LineItems, LineItem{
				Label: fmt.Sprintf("Document type %s rate multiplier ×%s", in.DocumentType, mult.String()),
			})
		}
	}
	if mult := volumeMultiplier(rule.VolumeDiscountTiers, in.Words); !mult.Equal(one) {
		rate = rate.Mul(mult)
		b.LineItems = append(b.LineItems, LineItem{
			Label: fmt.Sprintf("Volume tier multiplier ×%s at %d words", mult.String(), in.Words),
		})
	}
	b.UnitRate = rate

	effective := words
	if words.LessThan(rule.MinimumUnits) {
		effective = rule.MinimumUnits
		b.MinimumApplied = true
	}

	b.Subtotal = effective.Mul(rate).Round(2)
	b.LineItems = append(b.LineItems, LineItem{
		Label:  fmt.Sprintf("Translation: %s words × $%s/word", effective.String(), rate.String()),
		Amount: b.Subtotal,
	})
	if b.MinimumApplied {
		b.LineItems = append(b.LineItems, LineItem{
			Label: fmt.Sprintf("Minimum charge of %s words applied (requested %d)", rule.MinimumUnits.String(), in.Words),
		})
	}

	applySurcharge(b, rule, in)

	b.Total = b.Subtotal.Add(b.RushFee)
	b.LineItems = append(b.LineItems, LineItem{Label: "Total", Amount: b.Total})
	return b, nil
}

// applySurcharge adds the lead-time surcharge. Same-day supersedes plain rush:
// when both thresholds are met only the same-day multiplier applies and the
// breakdown reports IsRush=false.
func applySurcharge(b *Breakdown, rule *model.PricingRule, in CalcInput) {
	base := b.Subtotal.Add(b.TravelFee)

	switch {
	case in.IsSameDay:
		if rule.SameDayMultiplier.GreaterThan(one) {
			b.RushFee = base.Mul(rule.SameDayMultiplier.Sub(one)).Round(2)
			b.LineItems = append(b.LineItems, LineItem{
				Label:  fmt.Sprintf("Same-day surcharge ×%s", rule.SameDayMultiplier.String()),
				Amount: b.RushFee,
			})
		}
		b.IsRush = false
	case in.IsRush:
		b.IsRush = true
		if rule.RushMultiplier.GreaterThan(one) {
			b.RushFee = base.Mul(rule.RushMultiplier.Sub(one)).Round(2)
			b.LineItems = append(b.LineItems, LineItem{
				Label:  fmt.Sprintf("Rush surcharge ×%s", rule.RushMultiplier.String()),
				Amount: b.RushFee,
			})
		}
	}
}

// volumeMultiplier picks the highest tier at or below the word count.
func volumeMultiplier(tiers model.VolumeTiers, words int64) decimal.Decimal {
	mult := one
	best := int64(-1)
	for _, tier := range tiers {
		if words >= tier.MinUnits && tier.MinUnits > best && tier.Multiplier.IsPositive() {
			best = tier.MinUnits
			mult = tier.Multiplier
		}
	}
	return mult
}

func serviceLabel(serviceType, interpretationType string) string {
	if serviceType == model.ServiceTranscription {
		return "Transcription"
	}
	switch interpretationType {
	case model.InterpretationOnSite:
		return "On-site interpretation"
	case model.InterpretationVideoRemote:
		return "Video remote interpretation"
	case model.InterpretationPhone:
		return "Phone interpretation"
	default:
		return "Interpretation"
	}
}
