package revshare

import (
	"fmt"
	"math/bits"
	"sort"
)

// CalculateShare returns floor(totalRevenue * basisPoints / 10000).
// The product is computed in 128 bits so the result is exact for every
// uint64 revenue; no rounding up ever happens.
func CalculateShare(totalRevenue uint64, basisPoints uint32) (uint64, error) {
	if err := ValidateBasisPoints(basisPoints); err != nil {
		return 0, err
	}
	hi, lo := bits.Mul64(totalRevenue, uint64(basisPoints))
	// hi < 10000 because basisPoints <= 10000, so Div64 cannot overflow.
	q, _ := bits.Div64(hi, lo, BasisPointsDenominator)
	return q, nil
}

// Holding is an investor's ownership of a project in basis points.
type Holding struct {
	Investor    Identity
	BasisPoints uint32
}

// DistributeRevenue calculates per-investor payouts for totalRevenue.
// Every payout is floored independently, exactly as a claim would compute
// it; whatever is left over is returned as dust. Holdings must not exceed
// 10000 basis points in total.
func DistributeRevenue(totalRevenue uint64, holdings []Holding) ([]Payout, uint64, error) {
	var totalBP uint64
	payouts := make([]Payout, len(holdings))
	var allocated uint64

	for i, h := range holdings {
		amount, err := CalculateShare(totalRevenue, h.BasisPoints)
		if err != nil {
			return nil, 0, fmt.Errorf("holding %d (%s): %w", i, h.Investor, err)
		}
		totalBP += uint64(h.BasisPoints)
		payouts[i] = Payout{Investor: h.Investor, BasisPoints: h.BasisPoints, Amount: amount}
		allocated += amount
	}
	if totalBP > BasisPointsDenominator {
		return nil, 0, fmt.Errorf("%w: holdings total %d basis points", ErrShareConservationViolation, totalBP)
	}

	return payouts, totalRevenue - allocated, nil
}

// uniqueIdentities returns ids sorted with duplicates removed.
func uniqueIdentities(ids []Identity) []Identity {
	out := append([]Identity(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 0
	for i, id := range out {
		if i > 0 && id == out[n-1] {
			continue
		}
		out[n] = id
		n++
	}
	return out[:n]
}
