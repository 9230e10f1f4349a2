package revshare

import "errors"

var (
	// ErrUnauthorized indicates a non-owner called an owner-only operation.
	ErrUnauthorized = errors.New("revshare: caller is not the ledger owner")

	// ErrAlreadyRecorded indicates revenue was already recorded for the period.
	ErrAlreadyRecorded = errors.New("revshare: revenue already recorded for period")

	// ErrPeriodNotFound indicates no revenue was recorded for the period.
	ErrPeriodNotFound = errors.New("revshare: revenue period not found")

	// ErrAlreadyDistributed indicates the period was already distributed.
	ErrAlreadyDistributed = errors.New("revshare: revenue already distributed")

	// ErrNotYetDistributed indicates a claim on a period that is not distributed.
	ErrNotYetDistributed = errors.New("revshare: revenue not yet distributed")

	// ErrAlreadyClaimed indicates the investor already claimed the period.
	ErrAlreadyClaimed = errors.New("revshare: revenue already claimed")

	// ErrInvalidAmount indicates a negative or non-integral revenue amount.
	ErrInvalidAmount = errors.New("revshare: invalid revenue amount")

	// ErrClaimNotFound indicates the investor has no claim on the period.
	ErrClaimNotFound = errors.New("revshare: claim not found")

	// ErrInvalidBasisPoints indicates an ownership value above 10000 basis points.
	ErrInvalidBasisPoints = errors.New("revshare: basis points out of range")

	// ErrNilParam indicates a required parameter is nil or empty.
	ErrNilParam = errors.New("revshare: required parameter is nil")

	// ErrInvalidRegistryData indicates the registry data is malformed.
	ErrInvalidRegistryData = errors.New("revshare: invalid registry data")

	// ErrShareConservationViolation indicates registry entries do not add up to the total.
	ErrShareConservationViolation = errors.New("revshare: share conservation violated")

	// ErrZeroTotalShares indicates total shares is zero.
	ErrZeroTotalShares = errors.New("revshare: zero total shares")

	// ErrTooManyEntries indicates the registry has more entries than the codec can hold.
	ErrTooManyEntries = errors.New("revshare: too many registry entries")

	// ErrClockFailed indicates the clock could not supply a distribution timestamp.
	ErrClockFailed = errors.New("revshare: clock unavailable")
)

// Error codes returned by the on-chain contract this ledger mirrors.
const (
	CodeAlreadyRecorded = 1
	CodeStateConflict   = 2 // already distributed, or not yet distributed
	CodeAlreadyClaimed  = 3
	CodeUnauthorized    = 403
	CodeNotFound        = 404
)

// Code maps a ledger error to its contract error code. It returns 0 for nil
// and -1 for errors that have no contract equivalent.
func Code(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrPeriodNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAlreadyRecorded):
		return CodeAlreadyRecorded
	case errors.Is(err, ErrAlreadyDistributed), errors.Is(err, ErrNotYetDistributed):
		return CodeStateConflict
	case errors.Is(err, ErrAlreadyClaimed):
		return CodeAlreadyClaimed
	default:
		return -1
	}
}
