// Package xerrors defines the error taxonomy shared by every collision
// component: capacity overflows and invariant violations are fatal, numerical
// degeneracies are recovered locally and never reach this package.
package xerrors

import "github.com/pkg/errors"

// CapacityError indicates a caller-configured capacity was exceeded:
// leaf count, contact count, or candidate count. These are caller
// misconfiguration, not runtime errors, so the expected response is to panic
// at a boundary via MustNotOverflow rather than propagate.
type CapacityError struct {
	What     string
	Limit    int
	Attempt  int
	cause    error
}

func (e *CapacityError) Error() string {
	return errors.Errorf("%s: capacity %d exceeded (attempted %d)", e.What, e.Limit, e.Attempt).Error()
}

func (e *CapacityError) Unwrap() error { return e.cause }

// NewCapacityError constructs a CapacityError for the named resource.
func NewCapacityError(what string, limit, attempt int) *CapacityError {
	return &CapacityError{What: what, Limit: limit, Attempt: attempt}
}

// InvariantError indicates a build-time or dispatch-time bug: an unknown
// primitive-type pair, a Plane-Plane collision, or a malformed QBVH node
// encoding. These always panic; there is no recovery path.
type InvariantError struct {
	What string
}

func (e *InvariantError) Error() string {
	return errors.Errorf("invariant violated: %s", e.What).Error()
}

// NewInvariantError constructs an InvariantError.
func NewInvariantError(what string) *InvariantError {
	return &InvariantError{What: what}
}

// MustNotOverflow panics if err is non-nil (of any type, typically a
// CapacityError), and is a no-op for nil. Call this at the boundary spec.md identifies as "surfaced as
// assertion failures" -- entity/world registration and per-step buffer
// resets -- not inside the hot per-pair or per-pixel loop.
func MustNotOverflow(err error) {
	if err != nil {
		panic(err)
	}
}

// MustNotViolate panics if err is non-nil (of any type, typically an
// InvariantError).
func MustNotViolate(err error) {
	if err != nil {
		panic(err)
	}
}
