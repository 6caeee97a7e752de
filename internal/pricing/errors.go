package pricing

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports malformed or incomplete schedule/request input.
// Recoverable: the caller re-prompts the user.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NoRuleFoundError means the catalogue has no applicable rule, including no
// usable default. Surfaced as "quote requires manual review".
type NoRuleFoundError struct {
	ServiceType        string
	InterpretationType string
	Region             string
}

func (e *NoRuleFoundError) Error() string {
	msg := "no pricing rule matches service type " + e.ServiceType
	if e.InterpretationType != "" {
		msg += "/" + e.InterpretationType
	}
	if e.Region != "" {
		msg += " in region " + e.Region
	}
	return msg
}

// AmbiguousRuleError means two equally specific, equally prioritized active
// rules match the same request — an administrator data error. The engine must
// never guess between them.
type AmbiguousRuleError struct {
	Tier    int
	RuleIDs []uuid.UUID
}

func (e *AmbiguousRuleError) Error() string {
	return fmt.Sprintf("ambiguous catalogue: %d equally specific rules (tier %d, ids %v)", len(e.RuleIDs), e.Tier, e.RuleIDs)
}

// InvalidRuleError means the resolved rule lacks a usable rate for the
// requested service type — also an administrator data error.
type InvalidRuleError struct {
	RuleID uuid.UUID
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("pricing rule %s is unusable: %s", e.RuleID, e.Reason)
}
