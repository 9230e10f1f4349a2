package revshare

import "fmt"

// ValidateRegistry checks that a registry has a non-zero total, no duplicate
// or zero-share entries, and that its entries add up to TotalShares.
func ValidateRegistry(state *RegistryState) error {
	if state == nil {
		return fmt.Errorf("%w: registry", ErrNilParam)
	}
	if state.TotalShares == 0 {
		return ErrZeroTotalShares
	}

	seen := make(map[[20]byte]struct{}, len(state.Entries))
	var total uint64
	for i, entry := range state.Entries {
		if entry.Share == 0 {
			return fmt.Errorf("%w: entry %d has zero shares", ErrInvalidRegistryData, i)
		}
		if _, dup := seen[entry.Address]; dup {
			return fmt.Errorf("%w: entry %d duplicates an address", ErrInvalidRegistryData, i)
		}
		seen[entry.Address] = struct{}{}
		if total+entry.Share < total {
			return fmt.Errorf("%w: share total overflows", ErrShareConservationViolation)
		}
		total += entry.Share
	}
	if total != state.TotalShares {
		return fmt.Errorf("%w: entries=%d total=%d", ErrShareConservationViolation, total, state.TotalShares)
	}
	return nil
}

// ValidateBasisPoints checks that bp is a valid ownership fraction.
func ValidateBasisPoints(bp uint32) error {
	if bp > BasisPointsDenominator {
		return fmt.Errorf("%w: %d", ErrInvalidBasisPoints, bp)
	}
	return nil
}
