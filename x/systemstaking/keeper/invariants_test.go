package keeper_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/aethelred/systemstaking/x/systemstaking/keeper"
	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

func TestInvariantsHoldThroughRebalancing(t *testing.T) {
	env := setupEnv(t)
	env.Farming.SetShares(1, baseDenom, sdkmath.NewInt(1000))
	require.NoError(t, env.FundReserve(baseDenom, sdkmath.NewInt(1000)))
	_, _, err := env.Keeper.RegisterOrUpdate(env.Ctx, baseDenom, fullUpdate(3, "0.5", types.RateSignAdd, 0))
	require.NoError(t, err)

	for env.Height() < 25 {
		require.NoError(t, env.NextBlock())
		if env.Height() == 15 {
			env.Farming.SetShares(1, baseDenom, sdkmath.NewInt(200))
		}
		msg, broken := keeper.AllInvariants(env.Keeper)(env.Ctx)
		require.False(t, broken, msg)
	}

	// Round 2 tick redeemed down to the smaller pool.
	info := tokenInfo(t, env, baseDenom)
	require.Equal(t, "100", info.TargetAllocation.String())
	require.Equal(t, "400", info.PendingRedeem.String())
}

func TestRegistryConsistencyInvariantDetectsOrphans(t *testing.T) {
	env := setupEnv(t)
	_, _, err := env.Keeper.RegisterOrUpdate(env.Ctx, baseDenom, fullUpdate(3, "0.5", types.RateSignAdd, 0))
	require.NoError(t, err)

	_, broken := keeper.RegistryConsistencyInvariant(env.Keeper)(env.Ctx)
	require.False(t, broken)

	require.NoError(t, env.Keeper.TokenList.Set(env.Ctx, `["stake","ghost"]`))
	msg, broken := keeper.RegistryConsistencyInvariant(env.Keeper)(env.Ctx)
	require.True(t, broken)
	require.Contains(t, msg, "ghost")

	require.NoError(t, env.Keeper.TokenList.Set(env.Ctx, `[]`))
	msg, broken = keeper.RegistryConsistencyInvariant(env.Keeper)(env.Ctx)
	require.True(t, broken)
	require.Contains(t, msg, "not in the registry")
}

func TestPendingWithinPrincipalInvariant(t *testing.T) {
	env := setupEnv(t)
	activate(t, env, baseDenom, fullUpdate(3, "0.5", types.RateSignAdd, 0))
	setBalances(t, env, baseDenom, 100, 100)

	_, broken := keeper.PendingWithinPrincipalInvariant(env.Keeper)(env.Ctx)
	require.False(t, broken)

	setBalances(t, env, baseDenom, 100, 101)
	_, broken = keeper.PendingWithinPrincipalInvariant(env.Keeper)(env.Ctx)
	require.True(t, broken)
}

func TestPendingAbovePrincipalFromGenesisDoesNotBreakRegisteredInvariants(t *testing.T) {
	env := setupEnv(t)
	activate(t, env, baseDenom, fullUpdate(3, "0.5", types.RateSignAdd, 0))
	setBalances(t, env, baseDenom, 10, 20)

	gs, err := env.Keeper.ExportGenesis(env.Ctx)
	require.NoError(t, err)
	require.NoError(t, gs.Validate())

	other := setupEnv(t)
	require.NoError(t, other.Keeper.InitGenesis(other.Ctx, gs))

	msg, broken := keeper.AllInvariants(other.Keeper)(other.Ctx)
	require.False(t, broken, msg)

	msg, broken = keeper.PendingWithinPrincipalInvariant(other.Keeper)(other.Ctx)
	require.True(t, broken)
	require.Contains(t, msg, "pending redeem 20 exceeds staked principal 10")

	// NetStaked clamps to zero, so the whole target is minted.
	other.Farming.SetShares(1, baseDenom, sdkmath.NewInt(100))
	require.NoError(t, other.FundReserve(baseDenom, sdkmath.NewInt(100)))
	res, err := other.Keeper.Rebalance(other.Ctx, baseDenom)
	require.NoError(t, err)
	require.Equal(t, "50", res.Amount.String())
}

func TestConfigWellFormedInvariant(t *testing.T) {
	env := setupEnv(t)
	activate(t, env, baseDenom, fullUpdate(3, "0.5", types.RateSignAdd, 0))

	_, broken := keeper.ConfigWellFormedInvariant(env.Keeper)(env.Ctx)
	require.False(t, broken)

	info := tokenInfo(t, env, baseDenom)
	info.PendingConfig.PoolWeights = append(info.PendingConfig.PoolWeights, sdkmath.LegacyOneDec())
	require.NoError(t, env.Keeper.SetTokenInfo(env.Ctx, baseDenom, info))

	msg, broken := keeper.ConfigWellFormedInvariant(env.Keeper)(env.Ctx)
	require.True(t, broken)
	require.Contains(t, msg, baseDenom)
}
