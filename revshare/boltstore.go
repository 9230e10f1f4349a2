package revshare

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketPeriods = []byte("periods")
	bucketClaims  = []byte("claims")
	bucketMeta    = []byte("meta")

	metaInvestmentContract = []byte("investment_contract")

	allBuckets = [][]byte{bucketPeriods, bucketClaims, bucketMeta}
)

// BoltStore persists the ledger in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("revshare: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("revshare: open bolt db: %w", err)
	}

	if err := db.Update(createBuckets); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("revshare: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func createBuckets(tx *bbolt.Tx) error {
	for _, name := range allBuckets {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// projectPrefix encodes a project ID as an 8-byte big-endian key prefix.
func projectPrefix(projectID uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, projectID)
	return k
}

// periodKeyBytes encodes a PeriodKey so that periods sort by project, then period.
func periodKeyBytes(key PeriodKey) []byte {
	k := make([]byte, 16)
	binary.BigEndian.PutUint64(k[0:8], key.ProjectID)
	binary.BigEndian.PutUint64(k[8:16], key.Period)
	return k
}

// claimKeyBytes appends the investor identity to the period key.
func claimKeyBytes(key ClaimKey) []byte {
	return append(periodKeyBytes(key.PeriodKey), string(key.Investor)...)
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// CreatePeriod inserts a new period. Returns ErrAlreadyRecorded if it exists.
func (s *BoltStore) CreatePeriod(p *RevenuePeriod) error {
	if p == nil {
		return fmt.Errorf("%w: period", ErrNilParam)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPeriods)
		k := periodKeyBytes(p.Key())
		if b.Get(k) != nil {
			return ErrAlreadyRecorded
		}
		data, err := encodeGob(p)
		if err != nil {
			return fmt.Errorf("encode period: %w", err)
		}
		if err := b.Put(k, data); err != nil {
			return fmt.Errorf("boltstore: put period: %w", err)
		}
		return nil
	})
}

// GetPeriod retrieves a period by key.
func (s *BoltStore) GetPeriod(key PeriodKey) (*RevenuePeriod, error) {
	var p RevenuePeriod
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPeriods).Get(periodKeyBytes(key))
		if data == nil {
			return ErrPeriodNotFound
		}
		if err := decodeGob(data, &p); err != nil {
			return fmt.Errorf("boltstore: decode period: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePeriod overwrites an existing period.
func (s *BoltStore) UpdatePeriod(p *RevenuePeriod) error {
	if p == nil {
		return fmt.Errorf("%w: period", ErrNilParam)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPeriods)
		k := periodKeyBytes(p.Key())
		if b.Get(k) == nil {
			return ErrPeriodNotFound
		}
		data, err := encodeGob(p)
		if err != nil {
			return fmt.Errorf("encode period: %w", err)
		}
		if err := b.Put(k, data); err != nil {
			return fmt.Errorf("boltstore: update period: %w", err)
		}
		return nil
	})
}

// ListPeriods returns all periods of a project in period order.
func (s *BoltStore) ListPeriods(projectID uint64) ([]*RevenuePeriod, error) {
	prefix := projectPrefix(projectID)

	var periods []*RevenuePeriod
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketPeriods).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var p RevenuePeriod
			if err := decodeGob(v, &p); err != nil {
				return fmt.Errorf("boltstore: decode period in list: %w", err)
			}
			periods = append(periods, &p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: list periods: %w", err)
	}
	return periods, nil
}

// GetClaim retrieves a claim by key.
func (s *BoltStore) GetClaim(key ClaimKey) (*InvestorClaim, error) {
	var c InvestorClaim
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketClaims).Get(claimKeyBytes(key))
		if data == nil {
			return ErrClaimNotFound
		}
		if err := decodeGob(data, &c); err != nil {
			return fmt.Errorf("boltstore: decode claim: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// PutClaim creates or overwrites a claim.
func (s *BoltStore) PutClaim(c *InvestorClaim) error {
	if c == nil {
		return fmt.Errorf("%w: claim", ErrNilParam)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := encodeGob(c)
		if err != nil {
			return fmt.Errorf("encode claim: %w", err)
		}
		if err := tx.Bucket(bucketClaims).Put(claimKeyBytes(c.Key()), data); err != nil {
			return fmt.Errorf("boltstore: put claim: %w", err)
		}
		return nil
	})
}

// ListClaims returns all claims on a period in investor order.
func (s *BoltStore) ListClaims(key PeriodKey) ([]*InvestorClaim, error) {
	prefix := periodKeyBytes(key)

	var claims []*InvestorClaim
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketClaims).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var claim InvestorClaim
			if err := decodeGob(v, &claim); err != nil {
				return fmt.Errorf("boltstore: decode claim in list: %w", err)
			}
			claims = append(claims, &claim)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: list claims: %w", err)
	}
	return claims, nil
}

// GetInvestmentContract returns the stored reference, or "" if unset.
func (s *BoltStore) GetInvestmentContract() (string, error) {
	var ref string
	err := s.db.View(func(tx *bbolt.Tx) error {
		ref = string(tx.Bucket(bucketMeta).Get(metaInvestmentContract))
		return nil
	})
	return ref, err
}

// SetInvestmentContract stores the investment contract reference.
func (s *BoltStore) SetInvestmentContract(ref string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketMeta).Put(metaInvestmentContract, []byte(ref)); err != nil {
			return fmt.Errorf("boltstore: put investment contract: %w", err)
		}
		return nil
	})
}

// Reset drops and recreates every bucket in a single transaction.
func (s *BoltStore) Reset() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return fmt.Errorf("boltstore: delete bucket %q: %w", name, err)
			}
		}
		return createBuckets(tx)
	})
}
