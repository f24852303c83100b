package types

import (
	"context"

	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// RedeemRequestedGas is the cost reported for a handled redeem request.
	RedeemRequestedGas storetypes.Gas = 20_000

	// RedeemCompletedGas is the cost reported for a handled completion.
	RedeemCompletedGas storetypes.Gas = 45_000
)

// RedeemHooks is the two-phase redemption contract between the yield module
// and its redeemers. A redemption is reserved by AfterRedeemRequested, run
// inline before RequestRedeem returns, and settled later by
// AfterRedeemCompleted or AfterRedeemRefunded once the unbonding finishes.
// Hooks never fail; they return the gas they consumed, zero when the call
// did not concern the implementer.
type RedeemHooks interface {
	AfterRedeemRequested(ctx context.Context, redeemer sdk.AccAddress, denom string, amount, yieldAmount, fee sdkmath.Int) storetypes.Gas
	AfterRedeemCompleted(ctx context.Context, denom string, to sdk.AccAddress, amount sdkmath.Int) storetypes.Gas
	AfterRedeemRefunded(ctx context.Context, denom string, to sdk.AccAddress, amount sdkmath.Int) storetypes.Gas
}

var _ RedeemHooks = MultiRedeemHooks{}

// MultiRedeemHooks fans every call out to each hook in order.
type MultiRedeemHooks []RedeemHooks

func NewMultiRedeemHooks(hooks ...RedeemHooks) MultiRedeemHooks {
	return hooks
}

func (h MultiRedeemHooks) AfterRedeemRequested(ctx context.Context, redeemer sdk.AccAddress, denom string, amount, yieldAmount, fee sdkmath.Int) storetypes.Gas {
	var total storetypes.Gas
	for _, hook := range h {
		total += hook.AfterRedeemRequested(ctx, redeemer, denom, amount, yieldAmount, fee)
	}
	return total
}

func (h MultiRedeemHooks) AfterRedeemCompleted(ctx context.Context, denom string, to sdk.AccAddress, amount sdkmath.Int) storetypes.Gas {
	var total storetypes.Gas
	for _, hook := range h {
		total += hook.AfterRedeemCompleted(ctx, denom, to, amount)
	}
	return total
}

func (h MultiRedeemHooks) AfterRedeemRefunded(ctx context.Context, denom string, to sdk.AccAddress, amount sdkmath.Int) storetypes.Gas {
	var total storetypes.Gas
	for _, hook := range h {
		total += hook.AfterRedeemRefunded(ctx, denom, to, amount)
	}
	return total
}
