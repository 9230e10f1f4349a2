package revshare

import (
	"fmt"
	"sort"
	"sync"
)

// Store persists revenue periods and investor claims. Every method is
// atomic on its own; the Ledger serializes multi-step operations per key.
type Store interface {
	// CreatePeriod inserts a new period. Returns ErrAlreadyRecorded if the
	// key already exists.
	CreatePeriod(p *RevenuePeriod) error

	// GetPeriod returns the period for key, or ErrPeriodNotFound.
	GetPeriod(key PeriodKey) (*RevenuePeriod, error)

	// UpdatePeriod overwrites an existing period. Returns ErrPeriodNotFound
	// if the key does not exist.
	UpdatePeriod(p *RevenuePeriod) error

	// ListPeriods returns all periods of a project ordered by period.
	ListPeriods(projectID uint64) ([]*RevenuePeriod, error)

	// GetClaim returns the claim for key, or ErrClaimNotFound.
	GetClaim(key ClaimKey) (*InvestorClaim, error)

	// PutClaim creates or overwrites a claim.
	PutClaim(c *InvestorClaim) error

	// ListClaims returns all claims on a period ordered by investor.
	ListClaims(key PeriodKey) ([]*InvestorClaim, error)

	// GetInvestmentContract returns the stored reference, or "" if unset.
	GetInvestmentContract() (string, error)

	// SetInvestmentContract stores the investment contract reference.
	SetInvestmentContract(ref string) error

	// Reset removes all periods, claims, and the investment contract reference.
	Reset() error
}

// MemStore is an in-memory implementation of Store.
type MemStore struct {
	mu         sync.RWMutex
	periods    map[PeriodKey]RevenuePeriod
	claims     map[ClaimKey]InvestorClaim
	investment string
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		periods: make(map[PeriodKey]RevenuePeriod),
		claims:  make(map[ClaimKey]InvestorClaim),
	}
}

// CreatePeriod inserts a new period.
func (s *MemStore) CreatePeriod(p *RevenuePeriod) error {
	if p == nil {
		return fmt.Errorf("%w: period", ErrNilParam)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := p.Key()
	if _, exists := s.periods[key]; exists {
		return ErrAlreadyRecorded
	}
	s.periods[key] = *p
	return nil
}

// GetPeriod returns a copy of the period for key.
func (s *MemStore) GetPeriod(key PeriodKey) (*RevenuePeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.periods[key]
	if !ok {
		return nil, ErrPeriodNotFound
	}
	return &p, nil
}

// UpdatePeriod overwrites an existing period.
func (s *MemStore) UpdatePeriod(p *RevenuePeriod) error {
	if p == nil {
		return fmt.Errorf("%w: period", ErrNilParam)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := p.Key()
	if _, ok := s.periods[key]; !ok {
		return ErrPeriodNotFound
	}
	s.periods[key] = *p
	return nil
}

// ListPeriods returns all periods of a project.
func (s *MemStore) ListPeriods(projectID uint64) ([]*RevenuePeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*RevenuePeriod
	for key, p := range s.periods {
		if key.ProjectID == projectID {
			p := p
			result = append(result, &p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Period < result[j].Period })
	return result, nil
}

// GetClaim returns a copy of the claim for key.
func (s *MemStore) GetClaim(key ClaimKey) (*InvestorClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.claims[key]
	if !ok {
		return nil, ErrClaimNotFound
	}
	return &c, nil
}

// PutClaim creates or overwrites a claim.
func (s *MemStore) PutClaim(c *InvestorClaim) error {
	if c == nil {
		return fmt.Errorf("%w: claim", ErrNilParam)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims[c.Key()] = *c
	return nil
}

// ListClaims returns all claims on a period.
func (s *MemStore) ListClaims(key PeriodKey) ([]*InvestorClaim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*InvestorClaim
	for k, c := range s.claims {
		if k.PeriodKey == key {
			c := c
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Investor < result[j].Investor })
	return result, nil
}

// GetInvestmentContract returns the stored reference.
func (s *MemStore) GetInvestmentContract() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.investment, nil
}

// SetInvestmentContract stores the investment contract reference.
func (s *MemStore) SetInvestmentContract(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investment = ref
	return nil
}

// Reset clears the store.
func (s *MemStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods = make(map[PeriodKey]RevenuePeriod)
	s.claims = make(map[ClaimKey]InvestorClaim)
	s.investment = ""
	return nil
}
