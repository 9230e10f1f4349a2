package revshare

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/bsv-blockchain/go-sdk/script"
)

// OwnershipLookup reports how much of a project an investor owns.
// Implementations return 0 for unknown investors, never an error.
type OwnershipLookup interface {
	// BasisPoints returns the investor's ownership of projectID in basis
	// points, in the range [0, 10000].
	BasisPoints(projectID uint64, investor Identity) (uint32, error)
}

// OwnershipFunc adapts a plain function to OwnershipLookup.
type OwnershipFunc func(projectID uint64, investor Identity) (uint32, error)

// BasisPoints calls f(projectID, investor).
func (f OwnershipFunc) BasisPoints(projectID uint64, investor Identity) (uint32, error) {
	return f(projectID, investor)
}

// FixedOwnership gives every investor of every project the same ownership.
func FixedOwnership(bp uint32) OwnershipLookup {
	return OwnershipFunc(func(uint64, Identity) (uint32, error) { return bp, nil })
}

// StaticOwnership is a map-backed OwnershipLookup safe for concurrent use.
type StaticOwnership struct {
	mu     sync.RWMutex
	shares map[uint64]map[Identity]uint32
}

// NewStaticOwnership creates an empty ownership table.
func NewStaticOwnership() *StaticOwnership {
	return &StaticOwnership{shares: make(map[uint64]map[Identity]uint32)}
}

// Set records investor's ownership of projectID. Setting 0 removes the record.
func (o *StaticOwnership) Set(projectID uint64, investor Identity, bp uint32) error {
	if err := ValidateBasisPoints(bp); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if bp == 0 {
		delete(o.shares[projectID], investor)
		return nil
	}
	project, ok := o.shares[projectID]
	if !ok {
		project = make(map[Identity]uint32)
		o.shares[projectID] = project
	}
	project[investor] = bp
	return nil
}

// BasisPoints returns the recorded ownership, or 0 if none.
func (o *StaticOwnership) BasisPoints(projectID uint64, investor Identity) (uint32, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.shares[projectID][investor], nil
}

// Investors returns every investor with a non-zero stake in projectID.
func (o *StaticOwnership) Investors(projectID uint64) []Identity {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]Identity, 0, len(o.shares[projectID]))
	for id := range o.shares[projectID] {
		out = append(out, id)
	}
	return out
}

// AddressIdentity renders a P2PKH public key hash as a base58 address identity.
func AddressIdentity(pkh [20]byte, mainnet bool) (Identity, error) {
	addr, err := script.NewAddressFromPublicKeyHash(pkh[:], mainnet)
	if err != nil {
		return "", fmt.Errorf("revshare: address from pubkey hash: %w", err)
	}
	return Identity(addr.AddressString), nil
}

// NewRegistryOwnership builds an ownership table from shareholder registries.
// Each entry owns floor(Share * 10000 / TotalShares) basis points of the
// registry's project and is identified by its P2PKH address.
func NewRegistryOwnership(mainnet bool, registries ...*RegistryState) (*StaticOwnership, error) {
	o := NewStaticOwnership()
	for _, reg := range registries {
		if err := ValidateRegistry(reg); err != nil {
			return nil, fmt.Errorf("project %d: %w", regProject(reg), err)
		}
		for _, entry := range reg.Entries {
			id, err := AddressIdentity(entry.Address, mainnet)
			if err != nil {
				return nil, err
			}
			hi, lo := bits.Mul64(entry.Share, BasisPointsDenominator)
			bp, _ := bits.Div64(hi, lo, reg.TotalShares) // Share <= TotalShares
			if err := o.Set(reg.ProjectID, id, uint32(bp)); err != nil {
				return nil, err
			}
		}
	}
	return o, nil
}

func regProject(reg *RegistryState) uint64 {
	if reg == nil {
		return 0
	}
	return reg.ProjectID
}
