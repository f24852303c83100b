package systemstaking_test

import (
	"encoding/json"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/aethelred/systemstaking/x/systemstaking"
	"github.com/aethelred/systemstaking/x/systemstaking/testutil"
	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

type invariantRegistry struct {
	routes []string
}

func (r *invariantRegistry) RegisterRoute(moduleName, route string, _ sdk.Invariant) {
	r.routes = append(r.routes, moduleName+"/"+route)
}

func TestAppModuleBasicGenesis(t *testing.T) {
	basic := systemstaking.AppModuleBasic{}
	require.Equal(t, types.ModuleName, basic.Name())

	bz := basic.DefaultGenesis(nil)
	require.NoError(t, basic.ValidateGenesis(nil, nil, bz))
	require.Error(t, basic.ValidateGenesis(nil, nil, json.RawMessage(`{"params":{"round_length":0}}`)))
	require.Error(t, basic.ValidateGenesis(nil, nil, json.RawMessage(`not json`)))
}

func TestAppModuleGenesisAndBeginBlock(t *testing.T) {
	env, err := testutil.NewEnv(testutil.DefaultParams(), nil)
	require.NoError(t, err)
	am := systemstaking.NewAppModule(env.Keeper)

	gs := types.DefaultGenesis()
	gs.Params = testutil.DefaultParams()
	gs.Params.RoundLength = 2
	bz, err := json.Marshal(gs)
	require.NoError(t, err)
	require.Empty(t, am.InitGenesis(env.Ctx, nil, bz))

	env.Ctx = env.Ctx.WithBlockHeight(2).WithEventManager(sdk.NewEventManager())
	require.NoError(t, am.BeginBlock(env.Ctx))
	require.Len(t, env.Events(types.EventTypeNewRound), 1)

	var exported types.GenesisState
	require.NoError(t, json.Unmarshal(am.ExportGenesis(env.Ctx, nil), &exported))
	require.NotNil(t, exported.Round)
	require.Equal(t, uint32(1), exported.Round.Index)
	require.Equal(t, uint64(2), exported.Params.RoundLength)

	require.Equal(t, uint64(1), am.ConsensusVersion())
}

func TestAppModuleRegistersInvariants(t *testing.T) {
	env, err := testutil.NewEnv(testutil.DefaultParams(), nil)
	require.NoError(t, err)

	reg := &invariantRegistry{}
	systemstaking.NewAppModule(env.Keeper).RegisterInvariants(reg)
	require.Equal(t, []string{
		"systemstaking/registry-consistency",
		"systemstaking/config-well-formed",
	}, reg.routes)
}

func TestAppModuleServers(t *testing.T) {
	env, err := testutil.NewEnv(testutil.DefaultParams(), nil)
	require.NoError(t, err)
	am := systemstaking.NewAppModule(env.Keeper)

	resp, err := am.QueryServer().Tokens(env.Ctx, &types.QueryTokensRequest{})
	require.NoError(t, err)
	require.Empty(t, resp.Denoms)

	_, err = am.MsgServer().DeregisterToken(env.Ctx, &types.MsgDeregisterToken{Authority: testutil.Authority, Denom: "stake"})
	require.NoError(t, err)
}
