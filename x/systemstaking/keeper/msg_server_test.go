package keeper_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/aethelred/systemstaking/x/systemstaking/keeper"
	"github.com/aethelred/systemstaking/x/systemstaking/testutil"
	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

func TestMsgServerRejectsWrongAuthority(t *testing.T) {
	env := setupEnv(t)
	srv := keeper.NewMsgServerImpl(env.Keeper)

	_, err := srv.ConfigureToken(env.Ctx, &types.MsgConfigureToken{
		Authority: outsider.String(),
		Denom:     baseDenom,
		Update:    fullUpdate(3, "0.5", types.RateSignAdd, 0),
	})
	require.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = srv.DeregisterToken(env.Ctx, &types.MsgDeregisterToken{Authority: outsider.String(), Denom: baseDenom})
	require.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = srv.RefreshToken(env.Ctx, &types.MsgRefreshToken{Authority: outsider.String(), Denom: baseDenom})
	require.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = srv.Payout(env.Ctx, &types.MsgPayout{Authority: outsider.String(), Denom: baseDenom})
	require.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = srv.ConfigureToken(env.Ctx, &types.MsgConfigureToken{Authority: testutil.Authority, Denom: "!"})
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestMsgConfigureAndDeregister(t *testing.T) {
	env := setupEnv(t)
	srv := keeper.NewMsgServerImpl(env.Keeper)

	resp, err := srv.ConfigureToken(env.Ctx, &types.MsgConfigureToken{
		Authority: testutil.Authority,
		Denom:     baseDenom,
		Update:    fullUpdate(3, "0.5", types.RateSignAdd, 10),
	})
	require.NoError(t, err)
	require.True(t, resp.Registered)
	require.Equal(t, "10", resp.PendingConfig.StakeBase.String())
	require.Len(t, env.Events(types.EventTypeTokenConfigChanged), 1)

	_, err = srv.DeregisterToken(env.Ctx, &types.MsgDeregisterToken{Authority: testutil.Authority, Denom: baseDenom})
	require.NoError(t, err)
	_, err = srv.DeregisterToken(env.Ctx, &types.MsgDeregisterToken{Authority: testutil.Authority, Denom: baseDenom})
	require.NoError(t, err)
	require.Len(t, env.Events(types.EventTypeTokenDeregistered), 2)
}

func TestMsgRefreshAppliesPendingImmediately(t *testing.T) {
	env := setupEnv(t)
	env.Farming.SetShares(1, baseDenom, sdkmath.NewInt(1000))
	require.NoError(t, env.FundReserve(baseDenom, sdkmath.NewInt(1000)))
	srv := keeper.NewMsgServerImpl(env.Keeper)

	_, err := srv.ConfigureToken(env.Ctx, &types.MsgConfigureToken{
		Authority: testutil.Authority,
		Denom:     baseDenom,
		Update:    fullUpdate(7, "0.3", types.RateSignAdd, 0),
	})
	require.NoError(t, err)

	resp, err := srv.RefreshToken(env.Ctx, &types.MsgRefreshToken{Authority: testutil.Authority, Denom: baseDenom})
	require.NoError(t, err)
	require.True(t, resp.Info.CurrentConfig.IsActive())
	require.False(t, resp.Info.ConfigChanged())
	require.Equal(t, "300", resp.Info.StakedPrincipal.String())

	require.Len(t, env.Events(types.EventTypeTokenInfoRefreshed), 1)
	require.Len(t, env.Events(types.EventTypeMintSuccess), 1)
	require.Equal(t, "300", tokenInfo(t, env, baseDenom).StakedPrincipal.String())

	_, err = srv.RefreshToken(env.Ctx, &types.MsgRefreshToken{Authority: testutil.Authority, Denom: "ghost"})
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestMsgRefreshIsAtomic(t *testing.T) {
	env := setupEnv(t)
	env.Farming.SetShares(1, baseDenom, sdkmath.NewInt(1000))
	srv := keeper.NewMsgServerImpl(env.Keeper)

	_, err := srv.ConfigureToken(env.Ctx, &types.MsgConfigureToken{
		Authority: testutil.Authority,
		Denom:     baseDenom,
		Update:    fullUpdate(7, "0.3", types.RateSignAdd, 0),
	})
	require.NoError(t, err)

	// The reserve is empty, so the mint fails and the promotion is undone.
	_, err = srv.RefreshToken(env.Ctx, &types.MsgRefreshToken{Authority: testutil.Authority, Denom: baseDenom})
	require.ErrorIs(t, err, types.ErrInsufficientFunds)

	info := tokenInfo(t, env, baseDenom)
	require.False(t, info.CurrentConfig.IsActive())
	require.True(t, info.ConfigChanged())
	require.Empty(t, env.Events(types.EventTypeTokenInfoRefreshed))
}

func TestMsgPayout(t *testing.T) {
	env := setupEnv(t)
	srv := keeper.NewMsgServerImpl(env.Keeper)
	activate(t, env, baseDenom, fullUpdate(3, "1", types.RateSignAdd, 0))
	setBalances(t, env, baseDenom, 100, 0)
	require.NoError(t, env.FundCustody(yieldDenom, sdkmath.NewInt(150)))

	resp, err := srv.Payout(env.Ctx, &types.MsgPayout{Authority: testutil.Authority, Denom: baseDenom})
	require.NoError(t, err)
	require.Equal(t, "50", resp.Payout.Amount.String())
	require.Equal(t, "50", env.Balance(testutil.Beneficiary, yieldDenom).String())
}
