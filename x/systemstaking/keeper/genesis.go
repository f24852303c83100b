package keeper

import (
	"context"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

// InitGenesis loads params, the round, the halt state and the tracked tokens
// in order.
func (k Keeper) InitGenesis(ctx context.Context, gs *types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	if err := k.SetParams(ctx, gs.Params); err != nil {
		return err
	}

	round := types.NewRound(gs.Params.RoundLength)
	if gs.Round != nil {
		round = *gs.Round
	}
	if err := k.SetRound(ctx, round); err != nil {
		return err
	}

	if err := k.setHaltState(ctx, gs.Halt); err != nil {
		return err
	}

	denoms := make([]string, 0, len(gs.Tokens))
	for _, token := range gs.Tokens {
		info := token.Info
		info.Normalize()
		if err := k.SetTokenInfo(ctx, token.Denom, info); err != nil {
			return err
		}
		denoms = append(denoms, token.Denom)
	}
	return k.setTrackedTokens(ctx, denoms)
}

// ExportGenesis dumps the module state.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	round, err := k.GetRound(ctx)
	if err != nil {
		return nil, err
	}
	halt, err := k.GetHaltState(ctx)
	if err != nil {
		return nil, err
	}
	denoms, err := k.TrackedTokens(ctx)
	if err != nil {
		return nil, err
	}

	tokens := make([]types.GenesisToken, 0, len(denoms))
	for _, denom := range denoms {
		info, err := k.GetTokenInfo(ctx, denom)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, types.GenesisToken{Denom: denom, Info: info})
	}

	return &types.GenesisState{
		Params: params,
		Round:  &round,
		Tokens: tokens,
		Halt:   halt,
	}, nil
}
