package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

const sampleScenario = `
blocks: 26
round_length: 10
yield_rate: 1
unbonding_blocks: 2
tokens:
  - denom: stake
    reserve: 10000
    apply_delay: 3
    stake_rate: 0.5
    rate_sign: "+"
    stake_base: 100
    pools:
      - id: 1
        weight: 1
        shares: 1000
steps:
  - height: 26
    denom: stake
    payout: true
  - height: 15
    denom: stake
    pool: 1
    shares: 200
  - height: 24
    yield_rate: "1.5"
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, sampleScenario))
	require.NoError(t, err)
	require.NoError(t, sc.Validate())

	require.Equal(t, int64(26), sc.Blocks)
	require.Equal(t, uint64(10), sc.Params.RoundLength)
	require.Equal(t, types.DefaultMaxPools, sc.Params.MaxPools)
	require.Len(t, sc.Tokens, 1)

	token := sc.Tokens[0]
	require.Equal(t, "stake", token.Denom)
	require.Equal(t, "10000", token.Reserve.String())
	require.Equal(t, types.RateSignAdd, *token.Update.RateSign)
	require.True(t, token.Update.StakeRate.Equal(sdkmath.LegacyNewDecWithPrec(5, 1)))
	require.Equal(t, []uint32{1}, token.Update.PoolIDs)

	require.Len(t, sc.Steps, 3)
	require.Equal(t, []int64{15, 24, 26}, []int64{sc.Steps[0].Height, sc.Steps[1].Height, sc.Steps[2].Height})
	require.Equal(t, "200", sc.Steps[0].Shares.String())
	require.True(t, sc.Steps[2].Payout)
}

func TestLoadScenarioEnvOverride(t *testing.T) {
	t.Setenv("SYSTEMSTAKING_SIM_BLOCKS", "12")

	sc, err := LoadScenario(writeScenario(t, sampleScenario))
	require.NoError(t, err)
	require.Equal(t, int64(12), sc.Blocks)
}

func TestLoadScenarioErrors(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadScenario(writeScenario(t, "blocks: 5\ntokens:\n  - reserve: 1\n"))
	require.ErrorContains(t, err, "denom is required")

	_, err = LoadScenario(writeScenario(t, "blocks: 5\ntokens: []\nsteps:\n  - height: 2\n    payout: true\n"))
	require.ErrorContains(t, err, "denom is required")

	sc, err := LoadScenario(writeScenario(t, `
blocks: 5
tokens:
  - denom: stake
    apply_delay: 0
    stake_rate: 0.5
    pools:
      - id: 1
`))
	require.NoError(t, err)
	require.ErrorIs(t, sc.Validate(), types.ErrInvalidConfig)
}

func TestSimulate(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, sampleScenario))
	require.NoError(t, err)

	res, err := Simulate(sc, log.NewNopLogger(), false)
	require.NoError(t, err)
	require.Empty(t, res.StepErrors)

	require.Equal(t, int64(26), res.FinalHeight)
	require.Equal(t, types.Round{Index: 2, StartBlock: 20, Length: 10}, res.FinalRound)

	require.Len(t, res.Tokens, 1)
	token := res.Tokens[0]
	require.True(t, token.Tracked)
	require.Equal(t, "200", token.Info.StakedPrincipal.String())
	require.True(t, token.Info.PendingRedeem.IsZero())
	require.Equal(t, "9800", token.Reserve.String())
	require.Equal(t, "66", token.PaidOut.String())
	require.Equal(t, "134", token.CustodyYld.String())

	require.Equal(t, 1, res.EventCounts[types.EventTypeMintSuccess])
	require.Equal(t, 1, res.EventCounts[types.EventTypeRedeemRequested])
	require.Equal(t, 1, res.EventCounts[types.EventTypeWithdrawSuccess])
	require.Equal(t, 2, res.EventCounts[types.EventTypeNewRound])
	require.Equal(t, 3, res.EventCounts[types.EventTypePayout])

	var heights []int64
	for _, snap := range res.Trace {
		heights = append(heights, snap.Height)
	}
	require.Equal(t, []int64{1, 13, 23, 25, 26}, heights)
}

func TestSimulateHaltedScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, `
blocks: 14
tokens:
  - denom: stake
    reserve: 10000
    apply_delay: 3
    stake_rate: 0.5
    pools:
      - id: 1
        shares: 1000
steps:
  - height: 1
    halt: yield module upgrade
  - height: 5
    denom: stake
    payout: true
`))
	require.NoError(t, err)
	require.Equal(t, "yield module upgrade", sc.Steps[0].Halt)

	res, err := Simulate(sc, log.NewNopLogger(), false)
	require.NoError(t, err)
	require.Len(t, res.StepErrors, 1)
	require.Contains(t, res.StepErrors[0], "halted")

	require.Equal(t, 1, res.EventCounts[types.EventTypeHalted])
	require.Equal(t, 1, res.EventCounts[types.EventTypeNewRound])
	require.Zero(t, res.EventCounts[types.EventTypeMintSuccess])
	require.True(t, res.Tokens[0].Info.StakedPrincipal.IsZero())
	require.Equal(t, "10000", res.Tokens[0].Reserve.String())

	_, err = LoadScenario(writeScenario(t, "blocks: 5\ntokens: []\nsteps:\n  - height: 2\n    halt: x\n    resume: true\n"))
	require.ErrorContains(t, err, "halt and resume")
}

func TestRunCommandPrintsTables(t *testing.T) {
	path := writeScenario(t, sampleScenario)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"run", path, "--trace", "--decimals", "2"})
	require.NoError(t, root.Execute())

	require.Contains(t, out.String(), "height 26, round 2")
	require.Contains(t, out.String(), "98.00")
	require.Contains(t, out.String(), "mint_success")

	out.Reset()
	root = NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"validate", path})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "scenario OK: 26 blocks")
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "1234", formatAmount(sdkmath.NewInt(1234), 0))
	require.Equal(t, "12.34", formatAmount(sdkmath.NewInt(1234), 2))
	require.Equal(t, "0.001", formatAmount(sdkmath.NewInt(1), 3))
	require.Equal(t, "0", formatAmount(sdkmath.Int{}, 2))
}
