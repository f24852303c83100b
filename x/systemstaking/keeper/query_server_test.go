package keeper_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/aethelred/systemstaking/x/systemstaking/keeper"
	"github.com/aethelred/systemstaking/x/systemstaking/testutil"
	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

func TestQueryServer(t *testing.T) {
	env := setupEnv(t)
	q := keeper.NewQueryServerImpl(env.Keeper)
	activate(t, env, baseDenom, fullUpdate(3, "1", types.RateSignAdd, 0))
	setBalances(t, env, baseDenom, 100, 0)
	require.NoError(t, env.FundCustody(yieldDenom, sdkmath.NewInt(130)))

	params, err := q.Params(env.Ctx, &types.QueryParamsRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.DefaultParams(), params.Params)

	round, err := q.Round(env.Ctx, &types.QueryRoundRequest{})
	require.NoError(t, err)
	require.Equal(t, uint64(10), round.Round.Length)

	tokens, err := q.Tokens(env.Ctx, &types.QueryTokensRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{baseDenom}, tokens.Denoms)

	info, err := q.TokenInfo(env.Ctx, &types.QueryTokenInfoRequest{Denom: baseDenom})
	require.NoError(t, err)
	require.Equal(t, "100", info.Info.StakedPrincipal.String())

	_, err = q.TokenInfo(env.Ctx, &types.QueryTokenInfoRequest{Denom: "ghost"})
	require.ErrorIs(t, err, types.ErrNotFound)

	preview, err := q.PayoutPreview(env.Ctx, &types.QueryPayoutPreviewRequest{Denom: baseDenom})
	require.NoError(t, err)
	require.Equal(t, "30", preview.Payout.Amount.String())
	require.True(t, env.Balance(testutil.Beneficiary, yieldDenom).IsZero())
}
