package types_test

import (
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

func genesisToken(denom string) types.GenesisToken {
	info := types.NewTokenInfo()
	info.PendingConfig = validConfig()
	return types.GenesisToken{Denom: denom, Info: info}
}

func TestDefaultGenesisIsValid(t *testing.T) {
	require.NoError(t, types.DefaultGenesis().Validate())
}

func TestGenesisValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(gs *types.GenesisState)
		wantErr bool
	}{
		{
			name: "tokens with valid configs",
			mutate: func(gs *types.GenesisState) {
				gs.Tokens = []types.GenesisToken{genesisToken("atom"), genesisToken("osmo")}
			},
		},
		{
			name:    "zero round length param",
			mutate:  func(gs *types.GenesisState) { gs.Params.RoundLength = 0 },
			wantErr: true,
		},
		{
			name:    "zero length round",
			mutate:  func(gs *types.GenesisState) { gs.Round = &types.Round{} },
			wantErr: true,
		},
		{
			name:    "active halt without reason",
			mutate:  func(gs *types.GenesisState) { gs.Halt = types.HaltState{Active: true} },
			wantErr: true,
		},
		{
			name:   "active halt with reason",
			mutate: func(gs *types.GenesisState) { gs.Halt = types.HaltState{Active: true, Reason: "upgrade"} },
		},
		{
			name: "duplicate denom",
			mutate: func(gs *types.GenesisState) {
				gs.Tokens = []types.GenesisToken{genesisToken("atom"), genesisToken("atom")}
			},
			wantErr: true,
		},
		{
			name: "too many tokens",
			mutate: func(gs *types.GenesisState) {
				gs.Params.MaxTokens = 1
				gs.Tokens = []types.GenesisToken{genesisToken("atom"), genesisToken("osmo")}
			},
			wantErr: true,
		},
		{
			name:    "bad denom",
			mutate:  func(gs *types.GenesisState) { gs.Tokens = []types.GenesisToken{genesisToken("1x")} },
			wantErr: true,
		},
		{
			name: "unconfigured token",
			mutate: func(gs *types.GenesisState) {
				gs.Tokens = []types.GenesisToken{{Denom: "atom", Info: types.NewTokenInfo()}}
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gs := types.DefaultGenesis()
			tc.mutate(gs)
			err := gs.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, types.ErrInvalidGenesis)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParamsValidate(t *testing.T) {
	params := types.DefaultParams()
	require.NoError(t, params.Validate())
	_, err := params.BeneficiaryAddress()
	require.Error(t, err)

	addr := sdk.AccAddress([]byte("beneficiary_address_"))
	params.Beneficiary = addr.String()
	require.NoError(t, params.Validate())
	got, err := params.BeneficiaryAddress()
	require.NoError(t, err)
	require.True(t, addr.Equals(got))

	params.Beneficiary = "not-an-address"
	require.Error(t, params.Validate())

	params = types.DefaultParams()
	params.MaxPools = 0
	require.Error(t, params.Validate())
}

func TestMsgValidateBasic(t *testing.T) {
	require.NoError(t, types.MsgRefreshToken{Authority: "gov", Denom: "stake"}.ValidateBasic())
	require.Error(t, types.MsgRefreshToken{Denom: "stake"}.ValidateBasic())
	require.Error(t, types.MsgPayout{Authority: "gov", Denom: ""}.ValidateBasic())
	require.Error(t, types.MsgDeregisterToken{Authority: " ", Denom: "stake"}.ValidateBasic())
	require.NoError(t, types.MsgConfigureToken{Authority: "gov", Denom: "ibc/ABC"}.ValidateBasic())
	require.NoError(t, types.MsgSetHalt{Authority: "gov"}.ValidateBasic())
	require.Error(t, types.MsgSetHalt{Authority: "gov", Halted: true}.ValidateBasic())
	require.NoError(t, types.MsgSetHalt{Authority: "gov", Halted: true, Reason: "upgrade"}.ValidateBasic())
}
