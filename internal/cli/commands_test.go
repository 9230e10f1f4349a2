package cli

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/revledger-go/config"
	"github.com/bitfsorg/revledger-go/revshare"
)

const (
	cliOwner    = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"
	cliInvestor = "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG"
)

// runCLI executes the root command against dataDir and returns stdout.
func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--datadir", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// initLedger creates a ledger owned by cliOwner in a fresh directory.
func initLedger(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runCLI(t, dir, "init", "--owner", cliOwner, "--log-level", "error")
	require.NoError(t, err)
	return dir
}

func TestInit_WritesConfig(t *testing.T) {
	dir := initLedger(t)

	cfg, err := config.LoadConfig(config.ConfigPath(dir))
	require.NoError(t, err)
	assert.Equal(t, cliOwner, cfg.Owner)
	assert.Equal(t, config.ClockWall, cfg.Clock)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := initLedger(t)

	_, err := runCLI(t, dir, "init", "--owner", cliInvestor)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = runCLI(t, dir, "init", "--owner", cliInvestor, "--force", "--log-level", "error")
	require.NoError(t, err)
	cfg, err := config.LoadConfig(config.ConfigPath(dir))
	require.NoError(t, err)
	assert.Equal(t, cliInvestor, cfg.Owner)
}

func TestInit_InvalidClock(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "init", "--owner", cliOwner, "--clock", "sundial")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidClock)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCommands_RequireInit(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "record", "1", "202301", "50000")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigNotFound)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCommands_RevenueLifecycle(t *testing.T) {
	dir := initLedger(t)

	_, err := runCLI(t, dir, "ownership", "set", "1", cliInvestor, "1000")
	require.NoError(t, err)

	_, err = runCLI(t, dir, "set-investment", "SP000.investment")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "record", "1", "202301", "50000")
	require.NoError(t, err)
	assert.Contains(t, out, "revenue 50000")

	out, err = runCLI(t, dir, "share", "1", "202301", cliInvestor)
	require.NoError(t, err)
	assert.Equal(t, "5000\n", out)

	// Claiming before distribution is rejected.
	_, err = runCLI(t, dir, "--as", cliInvestor, "claim", "1", "202301")
	require.Error(t, err)
	assert.ErrorIs(t, err, revshare.ErrNotYetDistributed)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = runCLI(t, dir, "distribute", "1", "202301")
	require.NoError(t, err)

	out, err = runCLI(t, dir, "--as", cliInvestor, "claim", "1", "202301")
	require.NoError(t, err)
	assert.Contains(t, out, "Claimed 5000")

	_, err = runCLI(t, dir, "--as", cliInvestor, "claim", "1", "202301")
	require.Error(t, err)
	assert.ErrorIs(t, err, revshare.ErrAlreadyClaimed)
	assert.Equal(t, revshare.CodeAlreadyClaimed, revshare.Code(err))

	out, err = runCLI(t, dir, "--format", "json", "show", "1", "202301")
	require.NoError(t, err)
	var view struct {
		TotalRevenue uint64                    `json:"total_revenue"`
		Distributed  bool                      `json:"distributed"`
		Claims       []*revshare.InvestorClaim `json:"claims"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, uint64(50000), view.TotalRevenue)
	assert.True(t, view.Distributed)
	require.Len(t, view.Claims, 1)
	assert.Equal(t, revshare.Identity(cliInvestor), view.Claims[0].Investor)
	assert.Equal(t, uint64(5000), view.Claims[0].Amount)

	out, err = runCLI(t, dir, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "SP000.investment")
	assert.Contains(t, out, "202301")
}

func TestCommands_OwnerOnly(t *testing.T) {
	dir := initLedger(t)

	cases := [][]string{
		{"set-investment", "SP000.investment"},
		{"record", "1", "202301", "50000"},
		{"distribute", "1", "202301"},
	}
	for _, args := range cases {
		t.Run(args[0], func(t *testing.T) {
			_, err := runCLI(t, dir, append([]string{"--as", cliInvestor}, args...)...)
			require.Error(t, err)
			assert.ErrorIs(t, err, revshare.ErrUnauthorized)
			assert.Equal(t, ExitFailure, GetExitCode(err))
		})
	}
}

func TestCommands_RecordErrors(t *testing.T) {
	dir := initLedger(t)

	_, err := runCLI(t, dir, "record", "1", "202301", "--", "-5")
	require.Error(t, err)
	assert.ErrorIs(t, err, revshare.ErrInvalidAmount)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = runCLI(t, dir, "record", "x", "202301", "5")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = runCLI(t, dir, "record", "1", "202301", "50000")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "record", "1", "202301", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, revshare.ErrAlreadyRecorded)

	_, err = runCLI(t, dir, "distribute", "1", "209912")
	require.Error(t, err)
	assert.ErrorIs(t, err, revshare.ErrPeriodNotFound)
}

func TestCommands_Payouts(t *testing.T) {
	dir := initLedger(t)

	for inv, bp := range map[string]string{"alice": "3333", "bob": "3333", "carol": "3334"} {
		_, err := runCLI(t, dir, "ownership", "set", "7", inv, bp)
		require.NoError(t, err)
	}
	_, err := runCLI(t, dir, "record", "7", "1", "1001")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "distribute", "7", "1")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "--as", "bob", "claim", "7", "1")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "--format", "json", "payouts", "7", "1")
	require.NoError(t, err)

	var report revshare.PayoutReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Payouts, 3)
	assert.Equal(t, revshare.Identity("alice"), report.Payouts[0].Investor)
	assert.Equal(t, uint64(333), report.Payouts[0].Amount)
	assert.False(t, report.Payouts[0].Claimed)
	assert.True(t, report.Payouts[1].Claimed)
	assert.Equal(t, uint64(333), report.Payouts[2].Amount)
	assert.Equal(t, uint64(2), report.Dust)

	out, err = runCLI(t, dir, "payouts", "7", "1", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.NotContains(t, out, "carol")
}

func TestCommands_Reset(t *testing.T) {
	dir := initLedger(t)

	_, err := runCLI(t, dir, "record", "1", "202301", "50000")
	require.NoError(t, err)

	_, err = runCLI(t, dir, "reset")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = runCLI(t, dir, "--as", cliInvestor, "reset", "--yes")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = runCLI(t, dir, "reset", "--yes")
	require.NoError(t, err)

	// The period can be recorded again after a reset.
	_, err = runCLI(t, dir, "record", "1", "202301", "70000")
	require.NoError(t, err)
}

func TestOwnershipSet_RejectsOverAllocation(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "ownership", "set", "1", "alice", "6000")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "ownership", "set", "1", "bob", "5000")
	require.Error(t, err)
	assert.ErrorIs(t, err, revshare.ErrShareConservationViolation)

	out, err := runCLI(t, dir, "ownership", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "alice  6000")
	assert.NotContains(t, out, "bob")

	_, err = runCLI(t, dir, "ownership", "set", "1", "alice", "0")
	require.NoError(t, err)
	out, err = runCLI(t, dir, "ownership", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "No ownership recorded")
}

func TestOwnershipImport(t *testing.T) {
	dir := initLedger(t)

	alice := [20]byte{0x01}
	bob := [20]byte{0x02}
	data, err := revshare.SerializeRegistry(&revshare.RegistryState{
		ProjectID:   9,
		TotalShares: 4,
		Entries: []revshare.RevShareEntry{
			{Address: alice, Share: 1},
			{Address: bob, Share: 3},
		},
	})
	require.NoError(t, err)
	regPath := filepath.Join(t.TempDir(), "registry.hex")
	require.NoError(t, os.WriteFile(regPath, []byte(hex.EncodeToString(data)+"\n"), 0600))

	_, err = runCLI(t, dir, "ownership", "import", regPath)
	require.NoError(t, err)

	aliceID, err := revshare.AddressIdentity(alice, true)
	require.NoError(t, err)
	bobID, err := revshare.AddressIdentity(bob, true)
	require.NoError(t, err)

	file, err := LoadOwnership(config.OwnershipPath(dir))
	require.NoError(t, err)
	assert.Equal(t, map[string]uint32{string(aliceID): 2500, string(bobID): 7500}, file.Projects[9])

	// The imported table drives claims.
	_, err = runCLI(t, dir, "record", "9", "1", "1000")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "distribute", "9", "1")
	require.NoError(t, err)
	out, err := runCLI(t, dir, "--as", string(bobID), "claim", "9", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Claimed 750")

	// Raw bytes are accepted too; a registry that does not add up is rejected.
	bad, err := revshare.SerializeRegistry(&revshare.RegistryState{
		ProjectID:   9,
		TotalShares: 5,
		Entries:     []revshare.RevShareEntry{{Address: alice, Share: 1}},
	})
	require.NoError(t, err)
	badPath := filepath.Join(t.TempDir(), "registry.bin")
	require.NoError(t, os.WriteFile(badPath, bad, 0600))
	_, err = runCLI(t, dir, "ownership", "import", badPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, revshare.ErrShareConservationViolation)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestLoadOwnership(t *testing.T) {
	dir := t.TempDir()
	path := config.OwnershipPath(dir)

	file, err := LoadOwnership(path)
	require.NoError(t, err)
	assert.Empty(t, file.Projects)

	require.NoError(t, file.Set(1, cliInvestor, 2500))
	require.NoError(t, SaveOwnership(path, file))

	loaded, err := LoadOwnership(path)
	require.NoError(t, err)
	lookup, err := loaded.Lookup()
	require.NoError(t, err)
	bp, err := lookup.BasisPoints(1, revshare.Identity(cliInvestor))
	require.NoError(t, err)
	assert.Equal(t, uint32(2500), bp)

	require.NoError(t, os.WriteFile(path, []byte("projects:\n  1:\n    a: 6000\n    b: 6000\n"), 0600))
	_, err = LoadOwnership(path)
	assert.ErrorIs(t, err, revshare.ErrShareConservationViolation)

	require.NoError(t, os.WriteFile(path, []byte("projects: [\n"), 0600))
	_, err = LoadOwnership(path)
	assert.Error(t, err)
}

func TestLedgerError(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(ledgerError("op", revshare.ErrAlreadyClaimed)))
	assert.Equal(t, ExitFailure, GetExitCode(ledgerError("op", revshare.ErrInvalidAmount)))
	assert.Equal(t, ExitCommandError, GetExitCode(ledgerError("op", os.ErrPermission)))
}
