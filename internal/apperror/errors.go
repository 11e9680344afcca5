package apperror

import "errors"

// Domain error taxonomy. Data-layer errors are translated into these at the
// service boundary; the controller maps them to HTTP statuses.
var (
	// ErrNotFound marks an entity that is absent or soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrConstraintViolation is the raw store uniqueness error, prior to
	// translation into a domain-specific error such as ErrTitleUnavailable.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrTitleUnavailable reports a duplicate course title.
	ErrTitleUnavailable = errors.New("title unavailable")

	// ErrOptimisticConcurrency reports a row-version mismatch on update.
	ErrOptimisticConcurrency = errors.New("concurrent update detected")

	// ErrImageInvalid wraps any image processing failure.
	ErrImageInvalid = errors.New("image invalid")

	// ErrUnknownUser reports a missing identity claim.
	ErrUnknownUser = errors.New("unknown user")

	// ErrSendFailure wraps email transport errors.
	ErrSendFailure = errors.New("send failure")

	// ErrInvalidVote reports a vote outside [1,5].
	ErrInvalidVote = errors.New("invalid vote")

	// ErrSubscriptionNotFound reports a vote on a nonexistent subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrPaymentGateway wraps any payment provider failure.
	ErrPaymentGateway = errors.New("payment gateway failure")

	// ErrInvalidInput reports a violated domain invariant (price currency
	// mismatch, discounted price above full price, empty title and so on).
	ErrInvalidInput = errors.New("invalid input")
)
