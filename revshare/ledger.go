package revshare

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Ledger records per-project, per-period revenue, marks it distributed,
// and lets investors claim their share once.
//
// Operations on the same (project, period) key are serialized; operations
// on different keys run in parallel. A rejected call never mutates state.
type Ledger struct {
	owner     Identity
	store     Store
	ownership OwnershipLookup
	clock     Clock
	log       logrus.FieldLogger

	// global is held shared by key operations and exclusively by Reset and
	// SetInvestmentContract.
	global sync.RWMutex
	keys   keyLocks
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used for distribution timestamps.
func WithClock(c Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithLogger sets the logger for accepted and rejected operations.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Ledger) { l.log = log }
}

// NewLedger creates a ledger owned by owner. The default clock is WallClock
// and the default logger discards everything.
func NewLedger(owner Identity, store Store, ownership OwnershipLookup, opts ...Option) (*Ledger, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner", ErrNilParam)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: store", ErrNilParam)
	}
	if ownership == nil {
		return nil, fmt.Errorf("%w: ownership lookup", ErrNilParam)
	}

	l := &Ledger{
		owner:     owner,
		store:     store,
		ownership: ownership,
		clock:     WallClock{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.clock == nil {
		return nil, fmt.Errorf("%w: clock", ErrNilParam)
	}
	if l.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		l.log = discard
	}
	return l, nil
}

// Owner returns the identity allowed to run owner-only operations.
func (l *Ledger) Owner() Identity { return l.owner }

func (l *Ledger) authorize(caller Identity) error {
	if caller != l.owner {
		return fmt.Errorf("%w: %q", ErrUnauthorized, caller)
	}
	return nil
}

func (l *Ledger) reject(op string, fields logrus.Fields, err error) error {
	l.log.WithFields(fields).WithError(err).Debugf("%s rejected", op)
	return err
}

// SetInvestmentContract stores ref as the investment contract reference,
// replacing any previous value. Owner only.
func (l *Ledger) SetInvestmentContract(caller Identity, ref string) error {
	fields := logrus.Fields{"caller": caller, "ref": ref}
	if err := l.authorize(caller); err != nil {
		return l.reject("set investment contract", fields, err)
	}

	l.global.Lock()
	defer l.global.Unlock()

	if err := l.store.SetInvestmentContract(ref); err != nil {
		return fmt.Errorf("revshare: set investment contract: %w", err)
	}
	l.log.WithFields(fields).Info("investment contract set")
	return nil
}

// InvestmentContract returns the investment contract reference, or "".
func (l *Ledger) InvestmentContract() (string, error) {
	l.global.RLock()
	defer l.global.RUnlock()
	return l.store.GetInvestmentContract()
}

// RecordRevenue records amount as the total revenue of a project period.
// Owner only; a period can be recorded once.
func (l *Ledger) RecordRevenue(caller Identity, projectID, period uint64, amount int64) error {
	fields := logrus.Fields{"caller": caller, "project": projectID, "period": period, "amount": amount}
	if err := l.authorize(caller); err != nil {
		return l.reject("record revenue", fields, err)
	}
	if amount < 0 {
		return l.reject("record revenue", fields, fmt.Errorf("%w: %d is negative", ErrInvalidAmount, amount))
	}
	return l.recordRevenue(fields, PeriodKey{ProjectID: projectID, Period: period}, uint64(amount))
}

// RecordRevenueString is RecordRevenue for a decimal amount given as text.
// Negative, fractional, or out-of-range values yield ErrInvalidAmount;
// integral spellings such as "5e4" or "50000.0" are accepted.
func (l *Ledger) RecordRevenueString(caller Identity, projectID, period uint64, amount string) error {
	fields := logrus.Fields{"caller": caller, "project": projectID, "period": period, "amount": amount}
	if err := l.authorize(caller); err != nil {
		return l.reject("record revenue", fields, err)
	}
	value, err := ParseAmount(amount)
	if err != nil {
		return l.reject("record revenue", fields, err)
	}
	return l.recordRevenue(fields, PeriodKey{ProjectID: projectID, Period: period}, value)
}

func (l *Ledger) recordRevenue(fields logrus.Fields, key PeriodKey, amount uint64) error {
	l.global.RLock()
	defer l.global.RUnlock()
	unlock := l.keys.lock(key)
	defer unlock()

	err := l.store.CreatePeriod(&RevenuePeriod{
		ProjectID:    key.ProjectID,
		Period:       key.Period,
		TotalRevenue: amount,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyRecorded) {
			return l.reject("record revenue", fields, fmt.Errorf("%w: %s", ErrAlreadyRecorded, key))
		}
		return fmt.Errorf("revshare: record revenue %s: %w", key, err)
	}
	l.log.WithFields(fields).Info("revenue recorded")
	return nil
}

// decimalAmount matches plain decimal numbers with an optional fraction and
// exponent. Fractions, base prefixes, and digit separators do not match.
var decimalAmount = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]*)?([eE][+-]?[0-9]+)?$`)

// ParseAmount parses a non-negative integral revenue amount.
func ParseAmount(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if !decimalAmount.MatchString(s) {
		return 0, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, s)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	if r.Sign() < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	if !r.IsInt() {
		return 0, fmt.Errorf("%w: %q is not integral", ErrInvalidAmount, s)
	}
	n := r.Num()
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}
	return n.Uint64(), nil
}

// DistributeRevenue marks a recorded period as distributed and stamps it
// with the clock's current value. Owner only; a period is distributed once.
func (l *Ledger) DistributeRevenue(caller Identity, projectID, period uint64) error {
	key := PeriodKey{ProjectID: projectID, Period: period}
	fields := logrus.Fields{"caller": caller, "project": projectID, "period": period}
	if err := l.authorize(caller); err != nil {
		return l.reject("distribute revenue", fields, err)
	}

	l.global.RLock()
	defer l.global.RUnlock()
	unlock := l.keys.lock(key)
	defer unlock()

	p, err := l.store.GetPeriod(key)
	if err != nil {
		if errors.Is(err, ErrPeriodNotFound) {
			return l.reject("distribute revenue", fields, fmt.Errorf("%w: %s", ErrPeriodNotFound, key))
		}
		return fmt.Errorf("revshare: distribute revenue %s: %w", key, err)
	}
	if p.Distributed {
		return l.reject("distribute revenue", fields, fmt.Errorf("%w: %s", ErrAlreadyDistributed, key))
	}

	now, err := l.clock.Now()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrClockFailed, err)
	}
	// 0 is the "not yet distributed" timestamp.
	if now == 0 {
		return fmt.Errorf("%w: clock read 0", ErrClockFailed)
	}

	p.Distributed = true
	p.DistributionTimestamp = now
	if err := l.store.UpdatePeriod(p); err != nil {
		return fmt.Errorf("revshare: distribute revenue %s: %w", key, err)
	}
	l.log.WithFields(fields).WithField("timestamp", now).Info("revenue distributed")
	return nil
}

// CalculateInvestorShare returns the investor's share of a period's revenue:
// floor(totalRevenue * basisPoints / 10000). Unknown periods yield 0.
func (l *Ledger) CalculateInvestorShare(projectID, period uint64, investor Identity) (uint64, error) {
	l.global.RLock()
	defer l.global.RUnlock()

	p, err := l.store.GetPeriod(PeriodKey{ProjectID: projectID, Period: period})
	if err != nil {
		if errors.Is(err, ErrPeriodNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("revshare: calculate share: %w", err)
	}
	return l.shareOf(p, investor)
}

func (l *Ledger) shareOf(p *RevenuePeriod, investor Identity) (uint64, error) {
	bp, err := l.ownership.BasisPoints(p.ProjectID, investor)
	if err != nil {
		return 0, fmt.Errorf("revshare: ownership of %q in project %d: %w", investor, p.ProjectID, err)
	}
	return CalculateShare(p.TotalRevenue, bp)
}

// ClaimRevenue pays the caller their share of a distributed period and
// records the claim. Each investor can claim a period once. Any identity
// may claim; investors without ownership claim 0.
func (l *Ledger) ClaimRevenue(caller Identity, projectID, period uint64) (uint64, error) {
	key := PeriodKey{ProjectID: projectID, Period: period}
	fields := logrus.Fields{"investor": caller, "project": projectID, "period": period}

	l.global.RLock()
	defer l.global.RUnlock()
	unlock := l.keys.lock(key)
	defer unlock()

	p, err := l.store.GetPeriod(key)
	if err != nil {
		if errors.Is(err, ErrPeriodNotFound) {
			return 0, l.reject("claim revenue", fields, fmt.Errorf("%w: %s", ErrPeriodNotFound, key))
		}
		return 0, fmt.Errorf("revshare: claim revenue %s: %w", key, err)
	}
	if !p.Distributed {
		return 0, l.reject("claim revenue", fields, fmt.Errorf("%w: %s", ErrNotYetDistributed, key))
	}

	claimKey := ClaimKey{PeriodKey: key, Investor: caller}
	existing, err := l.store.GetClaim(claimKey)
	switch {
	case err == nil && existing.Claimed:
		return 0, l.reject("claim revenue", fields, fmt.Errorf("%w: %s", ErrAlreadyClaimed, claimKey))
	case err != nil && !errors.Is(err, ErrClaimNotFound):
		return 0, fmt.Errorf("revshare: claim revenue %s: %w", claimKey, err)
	}

	share, err := l.shareOf(p, caller)
	if err != nil {
		return 0, err
	}
	err = l.store.PutClaim(&InvestorClaim{
		ProjectID: projectID,
		Period:    period,
		Investor:  caller,
		Amount:    share,
		Claimed:   true,
	})
	if err != nil {
		return 0, fmt.Errorf("revshare: claim revenue %s: %w", claimKey, err)
	}
	l.log.WithFields(fields).WithField("amount", share).Info("revenue claimed")
	return share, nil
}

// Period returns a recorded period, or ErrPeriodNotFound.
func (l *Ledger) Period(projectID, period uint64) (*RevenuePeriod, error) {
	l.global.RLock()
	defer l.global.RUnlock()
	return l.store.GetPeriod(PeriodKey{ProjectID: projectID, Period: period})
}

// Claim returns an investor's claim, or ErrClaimNotFound.
func (l *Ledger) Claim(projectID, period uint64, investor Identity) (*InvestorClaim, error) {
	l.global.RLock()
	defer l.global.RUnlock()
	return l.store.GetClaim(ClaimKey{
		PeriodKey: PeriodKey{ProjectID: projectID, Period: period},
		Investor:  investor,
	})
}

// Periods returns every recorded period of a project.
func (l *Ledger) Periods(projectID uint64) ([]*RevenuePeriod, error) {
	l.global.RLock()
	defer l.global.RUnlock()
	return l.store.ListPeriods(projectID)
}

// Claims returns every claim on a period.
func (l *Ledger) Claims(projectID, period uint64) ([]*InvestorClaim, error) {
	l.global.RLock()
	defer l.global.RUnlock()
	return l.store.ListClaims(PeriodKey{ProjectID: projectID, Period: period})
}

// InvestorLister is implemented by ownership lookups that can enumerate
// a project's investors.
type InvestorLister interface {
	Investors(projectID uint64) []Identity
}

// Payouts reports what each investor is owed for a recorded period and
// whether they have claimed it. If investors is empty and the ownership
// lookup is an InvestorLister, the project's known investors are used.
func (l *Ledger) Payouts(projectID, period uint64, investors []Identity) (*PayoutReport, error) {
	key := PeriodKey{ProjectID: projectID, Period: period}

	l.global.RLock()
	defer l.global.RUnlock()

	p, err := l.store.GetPeriod(key)
	if err != nil {
		return nil, err
	}

	if len(investors) == 0 {
		if lister, ok := l.ownership.(InvestorLister); ok {
			investors = lister.Investors(projectID)
		}
	}
	sorted := uniqueIdentities(investors)

	holdings := make([]Holding, len(sorted))
	for i, inv := range sorted {
		bp, err := l.ownership.BasisPoints(projectID, inv)
		if err != nil {
			return nil, fmt.Errorf("revshare: ownership of %q in project %d: %w", inv, projectID, err)
		}
		holdings[i] = Holding{Investor: inv, BasisPoints: bp}
	}

	payouts, dust, err := DistributeRevenue(p.TotalRevenue, holdings)
	if err != nil {
		return nil, fmt.Errorf("revshare: payouts %s: %w", key, err)
	}

	claims, err := l.store.ListClaims(key)
	if err != nil {
		return nil, err
	}
	claimed := make(map[Identity]bool, len(claims))
	for _, c := range claims {
		claimed[c.Investor] = c.Claimed
	}
	for i := range payouts {
		payouts[i].Claimed = claimed[payouts[i].Investor]
	}

	return &PayoutReport{
		ProjectID:    projectID,
		Period:       period,
		TotalRevenue: p.TotalRevenue,
		Distributed:  p.Distributed,
		Payouts:      payouts,
		Allocated:    p.TotalRevenue - dust,
		Dust:         dust,
	}, nil
}

// Reset clears all periods, claims, and the investment contract reference.
// It waits for in-flight operations and blocks new ones until done.
func (l *Ledger) Reset() error {
	l.global.Lock()
	defer l.global.Unlock()

	if err := l.store.Reset(); err != nil {
		return fmt.Errorf("revshare: reset: %w", err)
	}
	l.log.Info("ledger reset")
	return nil
}
