package types

import "context"

// QueryServer is the system staking read service.
type QueryServer interface {
	Params(context.Context, *QueryParamsRequest) (*QueryParamsResponse, error)
	Round(context.Context, *QueryRoundRequest) (*QueryRoundResponse, error)
	TokenInfo(context.Context, *QueryTokenInfoRequest) (*QueryTokenInfoResponse, error)
	Tokens(context.Context, *QueryTokensRequest) (*QueryTokensResponse, error)
	PayoutPreview(context.Context, *QueryPayoutPreviewRequest) (*QueryPayoutPreviewResponse, error)
	HaltState(context.Context, *QueryHaltStateRequest) (*QueryHaltStateResponse, error)
}

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `json:"params"`
}

type QueryRoundRequest struct{}

type QueryRoundResponse struct {
	Round Round `json:"round"`
}

type QueryTokenInfoRequest struct {
	Denom string `json:"denom"`
}

type QueryTokenInfoResponse struct {
	Denom string    `json:"denom"`
	Info  TokenInfo `json:"info"`
}

type QueryTokensRequest struct{}

type QueryTokensResponse struct {
	Denoms []string `json:"denoms"`
}

type QueryPayoutPreviewRequest struct {
	Denom string `json:"denom"`
}

type QueryPayoutPreviewResponse struct {
	Payout PayoutBreakdown `json:"payout"`
}

type QueryHaltStateRequest struct{}

type QueryHaltStateResponse struct {
	State HaltState `json:"state"`
}
