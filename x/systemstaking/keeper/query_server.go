package keeper

import (
	"context"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

type queryServer struct {
	k Keeper
}

var _ types.QueryServer = queryServer{}

// NewQueryServerImpl returns the module's read service backed by keeper.
func NewQueryServerImpl(k Keeper) types.QueryServer {
	return queryServer{k: k}
}

func (q queryServer) Params(ctx context.Context, _ *types.QueryParamsRequest) (*types.QueryParamsResponse, error) {
	params, err := q.k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	return &types.QueryParamsResponse{Params: params}, nil
}

func (q queryServer) Round(ctx context.Context, _ *types.QueryRoundRequest) (*types.QueryRoundResponse, error) {
	round, err := q.k.GetRound(ctx)
	if err != nil {
		return nil, err
	}
	return &types.QueryRoundResponse{Round: round}, nil
}

func (q queryServer) TokenInfo(ctx context.Context, req *types.QueryTokenInfoRequest) (*types.QueryTokenInfoResponse, error) {
	info, err := q.k.GetTokenInfo(ctx, req.Denom)
	if err != nil {
		return nil, err
	}
	return &types.QueryTokenInfoResponse{Denom: req.Denom, Info: info}, nil
}

func (q queryServer) Tokens(ctx context.Context, _ *types.QueryTokensRequest) (*types.QueryTokensResponse, error) {
	denoms, err := q.k.TrackedTokens(ctx)
	if err != nil {
		return nil, err
	}
	return &types.QueryTokensResponse{Denoms: denoms}, nil
}

func (q queryServer) PayoutPreview(ctx context.Context, req *types.QueryPayoutPreviewRequest) (*types.QueryPayoutPreviewResponse, error) {
	payout, err := q.k.ComputePayout(ctx, req.Denom)
	if err != nil {
		return nil, err
	}
	return &types.QueryPayoutPreviewResponse{Payout: payout}, nil
}

func (q queryServer) HaltState(ctx context.Context, _ *types.QueryHaltStateRequest) (*types.QueryHaltStateResponse, error) {
	state, err := q.k.GetHaltState(ctx)
	if err != nil {
		return nil, err
	}
	return &types.QueryHaltStateResponse{State: state}, nil
}
