package pricing

import (
	"backend/internal/model"

	"github.com/google/uuid"
)

// Specificity tiers, most specific first. A rule lands in exactly one tier for
// a given request; the resolver walks them in order and stops at the first
// tier with a match.
//
//	tier 3: exact language pair + exact region
//	tier 2: exact language pair + any region
//	tier 1: any language pair  + exact region
//	tier 0: any language pair  + any region, isDefault only
const (
	tierExactPairExactRegion = 3
	tierExactPairAnyRegion   = 2
	tierAnyPairExactRegion   = 1
	tierDefault              = 0
)

// Resolve picks the single governing rule for the request out of the
// catalogue snapshot. Inactive rules never participate, including the default
// tier. Within a tier the higher explicit priority wins; an exact tie is an
// AmbiguousRuleError because it indicates an administrator data error.
func Resolve(ctx RuleContext, catalogue []model.PricingRule) (*model.PricingRule, error) {
	var tiers [4][]*model.PricingRule

	for i := range catalogue {
		rule := &catalogue[i]
		if !rule.IsActive || rule.ServiceType != ctx.ServiceType {
			continue
		}
		if !interpretationMatches(rule, ctx) || !languagesMatch(rule, ctx) || !regionMatches(rule, ctx) {
			continue
		}

		tier := specificityTier(rule)
		if tier == tierDefault && !rule.IsDefault {
			// An unscoped non-default rule matches nothing; it exists only
			// as a base other admins forgot to mark default.
			continue
		}
		tiers[tier] = append(tiers[tier], rule)
	}

	for tier := tierExactPairExactRegion; tier >= tierDefault; tier-- {
		candidates := tiers[tier]
		if len(candidates) == 0 {
			continue
		}

		best := candidates[0]
		tied := []*model.PricingRule{best}
		for _, rule := range candidates[1:] {
			switch {
			case rule.Priority > best.Priority:
				best = rule
				tied = tied[:0]
				tied = append(tied, rule)
			case rule.Priority == best.Priority:
				tied = append(tied, rule)
			}
		}

		if len(tied) > 1 {
			ids := make([]uuid.UUID, 0, len(tied))
			for _, rule := range tied {
				ids = append(ids, rule.ID)
			}
			return nil, &AmbiguousRuleError{Tier: tier, RuleIDs: ids}
		}
		return best, nil
	}

	return nil, &NoRuleFoundError{
		ServiceType:        ctx.ServiceType,
		InterpretationType: ctx.InterpretationType,
		Region:             ctx.Region,
	}
}

// interpretationMatches applies the request's interpretation setting as an
// exact filter at every tier: a rule scoped to VIDEO_REMOTE never matches an
// ON_SITE request no matter how specific its languages are. Unscoped rules
// match any setting.
func interpretationMatches(rule *model.PricingRule, ctx RuleContext) bool {
	if rule.InterpretationType == nil {
		return true
	}
	return ctx.InterpretationType != "" && *rule.InterpretationType == ctx.InterpretationType
}

func languagesMatch(rule *model.PricingRule, ctx RuleContext) bool {
	if rule.SourceLanguageID != nil {
		if ctx.SourceLanguageID == nil || *rule.SourceLanguageID != *ctx.SourceLanguageID {
			return false
		}
	}
	if rule.TargetLanguageID != nil {
		if ctx.TargetLanguageID == nil || *rule.TargetLanguageID != *ctx.TargetLanguageID {
			return false
		}
	}
	return true
}

func regionMatches(rule *model.PricingRule, ctx RuleContext) bool {
	if rule.Region == nil {
		return true
	}
	return ctx.Region != "" && *rule.Region == ctx.Region
}

func specificityTier(rule *model.PricingRule) int {
	switch {
	case rule.HasLanguagePair() && rule.Region != nil:
		return tierExactPairExactRegion
	case rule.HasLanguagePair():
		return tierExactPairAnyRegion
	case rule.Region != nil:
		return tierAnyPairExactRegion
	default:
		return tierDefault
	}
}
