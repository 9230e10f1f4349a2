package revshare

import "fmt"

// BasisPointsDenominator is the basis-point value of full (100%) ownership.
const BasisPointsDenominator = 10000

// Identity is an opaque caller or investor identity (an address string,
// a principal, a user name). The ledger only compares identities for equality.
type Identity string

// PeriodKey identifies a revenue period of a project.
type PeriodKey struct {
	ProjectID uint64
	Period    uint64 // e.g. 202301 for January 2023
}

func (k PeriodKey) String() string {
	return fmt.Sprintf("%d-%d", k.ProjectID, k.Period)
}

// ClaimKey identifies a single investor's claim on a revenue period.
type ClaimKey struct {
	PeriodKey
	Investor Identity
}

func (k ClaimKey) String() string {
	return fmt.Sprintf("%d-%d-%s", k.ProjectID, k.Period, k.Investor)
}

// RevenuePeriod is the recorded revenue of one project for one period.
// TotalRevenue never changes after creation; Distributed goes from false
// to true exactly once.
type RevenuePeriod struct {
	ProjectID             uint64 `json:"project_id"`
	Period                uint64 `json:"period"`
	TotalRevenue          uint64 `json:"total_revenue"` // smallest currency unit
	Distributed           bool   `json:"distributed"`
	DistributionTimestamp uint64 `json:"distribution_timestamp"` // 0 until distributed
}

// Key returns the period's key.
func (p *RevenuePeriod) Key() PeriodKey {
	return PeriodKey{ProjectID: p.ProjectID, Period: p.Period}
}

// InvestorClaim records an investor's one-time withdrawal for a period.
type InvestorClaim struct {
	ProjectID uint64   `json:"project_id"`
	Period    uint64   `json:"period"`
	Investor  Identity `json:"investor"`
	Amount    uint64   `json:"amount"`
	Claimed   bool     `json:"claimed"`
}

// Key returns the claim's key.
func (c *InvestorClaim) Key() ClaimKey {
	return ClaimKey{
		PeriodKey: PeriodKey{ProjectID: c.ProjectID, Period: c.Period},
		Investor:  c.Investor,
	}
}

// Payout is a single investor's computed share in a PayoutReport.
type Payout struct {
	Investor    Identity `json:"investor"`
	BasisPoints uint32   `json:"basis_points"`
	Amount      uint64   `json:"amount"`
	Claimed     bool     `json:"claimed"`
}

// PayoutReport summarizes the shares of a set of investors for one period.
// Dust is the part of TotalRevenue left over after flooring every share,
// including ownership not covered by the listed investors.
type PayoutReport struct {
	ProjectID    uint64   `json:"project_id"`
	Period       uint64   `json:"period"`
	TotalRevenue uint64   `json:"total_revenue"`
	Distributed  bool     `json:"distributed"`
	Payouts      []Payout `json:"payouts"`
	Allocated    uint64   `json:"allocated"`
	Dust         uint64   `json:"dust"`
}

// RevShareEntry represents a shareholder's record in a registry.
type RevShareEntry struct {
	Address [20]byte // P2PKH address hash
	Share   uint64   // Number of shares held
}

// RegistryState is a project's shareholder registry. Ownership of an entry
// is Share/TotalShares.
type RegistryState struct {
	ProjectID   uint64
	TotalShares uint64
	Entries     []RevShareEntry
	ModeFlags   uint8 // bit 0: locked
}
