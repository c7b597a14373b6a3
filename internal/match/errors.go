package match

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input. No state is mutated when it
// is returned.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// RuleViolation reports well-formed input that violates a domain
// invariant, e.g. substituting on a player who was already subbed off.
type RuleViolation struct {
	Player string
	Reason string
}

func (e *RuleViolation) Error() string {
	if e.Player == "" {
		return fmt.Sprintf("rule violation: %s", e.Reason)
	}
	return fmt.Sprintf("rule violation for %s: %s", e.Player, e.Reason)
}

// ErrContention is returned when the per-match lock could not be
// acquired within the bounded wait. The caller is expected to retry the
// whole invocation; the core never retries internally.
var ErrContention = errors.New("match lock contention")

// StoreUnavailableError reports an unreachable backend. Cache failures
// are non-fatal (the caller proceeds without cache); idempotency-store
// failures are fatal, since exactly-once cannot be guaranteed without it.
type StoreUnavailableError struct {
	Store string
	Err   error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("%s store unavailable: %v", e.Store, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRuleViolation reports whether err is a RuleViolation.
func IsRuleViolation(err error) bool {
	var rv *RuleViolation
	return errors.As(err, &rv)
}
