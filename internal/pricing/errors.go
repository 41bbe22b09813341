package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatchingRule signals that no rule matched and no default rate table
	// covers the requested service. This is a configuration bug, not a normal
	// runtime path.
	ErrNoMatchingRule = errors.New("pricing: no matching rule and no default rates for service")

	// ErrCacheInconsistency indicates a cached entry carries a rule-set version
	// that does not match its fingerprint. Should never occur; treated as fatal
	// for the affected lookup and logged loudly.
	ErrCacheInconsistency = errors.New("pricing: cache entry version mismatch")
)

// ValidationError names the offending request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Message)
}

// MarginViolationError is returned when a rule forbids margin auto-correction
// and its override would produce a quote below the configured minimum margin.
type MarginViolationError struct {
	RuleID     string
	ImpliedBps int64
	MinimumBps int64
}

func (e *MarginViolationError) Error() string {
	return fmt.Sprintf("rule %s: implied margin %s below minimum %s and rule forbids clamping",
		e.RuleID, FormatBps(e.ImpliedBps), FormatBps(e.MinimumBps))
}
