package keeper_test

import (
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/aethelred/systemstaking/x/systemstaking/testutil"
	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

func TestComputePayoutValuesYieldAbovePrincipal(t *testing.T) {
	env := setupEnv(t)
	activate(t, env, baseDenom, fullUpdate(3, "1", types.RateSignAdd, 0))
	setBalances(t, env, baseDenom, 600, 0)
	require.NoError(t, env.FundCustody(yieldDenom, sdkmath.NewInt(600)))
	env.Yield.Rate = sdkmath.LegacyNewDecWithPrec(15, 1)

	payout, err := env.Keeper.ComputePayout(env.Ctx, baseDenom)
	require.NoError(t, err)
	require.Equal(t, yieldDenom, payout.YieldDenom)
	require.Equal(t, "600", payout.FreeBalance.String())
	require.Equal(t, "900", payout.EquivalentBase.String())
	require.Equal(t, "600", payout.Principal.String())
	require.Equal(t, "300", payout.Accrued.String())
	require.Equal(t, "200", payout.Amount.String())
}

func TestPayoutSendsAccruedYield(t *testing.T) {
	env := setupEnv(t)
	activate(t, env, baseDenom, fullUpdate(3, "1", types.RateSignAdd, 0))
	setBalances(t, env, baseDenom, 600, 0)
	require.NoError(t, env.FundCustody(yieldDenom, sdkmath.NewInt(600)))
	env.Yield.Rate = sdkmath.LegacyNewDecWithPrec(15, 1)

	payout, err := env.Keeper.Payout(env.Ctx, baseDenom)
	require.NoError(t, err)
	require.Equal(t, "200", payout.Amount.String())
	require.Equal(t, "200", env.Balance(testutil.Beneficiary, yieldDenom).String())
	require.Equal(t, "400", env.Balance(env.Keeper.CustodialAddress(), yieldDenom).String())

	events := env.Events(types.EventTypePayout)
	require.Len(t, events, 1)
	require.Equal(t, testutil.Beneficiary.String(), testutil.EventAttribute(events[0], types.AttributeKeyTo))
	require.Equal(t, "200", testutil.EventAttribute(events[0], types.AttributeKeyAmount))

	// Principal is still fully backed after the payout.
	payout, err = env.Keeper.ComputePayout(env.Ctx, baseDenom)
	require.NoError(t, err)
	require.Equal(t, "600", payout.EquivalentBase.String())
	require.True(t, payout.Amount.IsZero())
}

func TestPayoutOfZeroStillEmitsEvent(t *testing.T) {
	env := setupEnv(t)
	activate(t, env, baseDenom, fullUpdate(3, "1", types.RateSignAdd, 0))
	setBalances(t, env, baseDenom, 600, 0)
	require.NoError(t, env.FundCustody(yieldDenom, sdkmath.NewInt(500)))

	payout, err := env.Keeper.Payout(env.Ctx, baseDenom)
	require.NoError(t, err)
	require.True(t, payout.Accrued.IsZero())
	require.True(t, payout.Amount.IsZero())
	require.True(t, env.Balance(testutil.Beneficiary, yieldDenom).IsZero())
	require.Len(t, env.Events(types.EventTypePayout), 1)
}

func TestPayoutErrors(t *testing.T) {
	t.Run("no beneficiary", func(t *testing.T) {
		params := testutil.DefaultParams()
		params.Beneficiary = ""
		env := setupEnvWithParams(t, params)
		activate(t, env, baseDenom, fullUpdate(3, "1", types.RateSignAdd, 0))

		_, err := env.Keeper.Payout(env.Ctx, baseDenom)
		require.ErrorIs(t, err, types.ErrTransferFailed)
	})

	t.Run("beneficiary rejects", func(t *testing.T) {
		env := setupEnv(t)
		activate(t, env, baseDenom, fullUpdate(3, "1", types.RateSignAdd, 0))
		require.NoError(t, env.FundCustody(yieldDenom, sdkmath.NewInt(10)))
		env.Bank.BlockRecipient(testutil.Beneficiary)

		_, err := env.Keeper.Payout(env.Ctx, baseDenom)
		require.ErrorIs(t, err, types.ErrTransferFailed)
	})

	t.Run("no yield token", func(t *testing.T) {
		env := setupEnv(t)
		env.Yield.Unsupport(baseDenom)
		activate(t, env, baseDenom, fullUpdate(3, "1", types.RateSignAdd, 0))

		_, err := env.Keeper.ComputePayout(env.Ctx, baseDenom)
		require.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("conversion fails", func(t *testing.T) {
		env := setupEnv(t)
		env.Yield.ConvertErr = errors.New("rate unavailable")
		activate(t, env, baseDenom, fullUpdate(3, "1", types.RateSignAdd, 0))

		_, err := env.Keeper.ComputePayout(env.Ctx, baseDenom)
		require.ErrorIs(t, err, types.ErrConversionFailed)
	})
}
