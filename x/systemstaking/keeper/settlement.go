package keeper

import (
	"context"
	"errors"

	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

// Hooks wraps the keeper as the yield module's redemption hooks.
type Hooks struct {
	k Keeper
}

var _ types.RedeemHooks = Hooks{}

// Hooks returns the redemption hooks to register with the yield module.
func (k Keeper) Hooks() Hooks {
	return Hooks{k}
}

// AfterRedeemRequested reserves amount as pending. It runs inside
// RequestRedeem, so the rebalance that issued the request sees the new value
// as soon as the call returns.
func (h Hooks) AfterRedeemRequested(ctx context.Context, redeemer sdk.AccAddress, denom string, amount, yieldAmount, _ sdkmath.Int) storetypes.Gas {
	k := h.k
	if !redeemer.Equals(k.CustodialAddress()) {
		return 0
	}

	info, ok := k.loadForSettlement(ctx, denom)
	if !ok {
		return 0
	}

	info.PendingRedeem = info.PendingRedeem.Add(amount)
	if err := k.SetTokenInfo(ctx, denom, info); err != nil {
		k.Logger(ctx).Error("failed to record redeem request", "denom", denom, "amount", amount.String(), "err", err)
		return 0
	}

	attrs := append(bookkeepingAttributes(denom, amount, info),
		sdk.NewAttribute(types.AttributeKeyYieldAmount, yieldAmount.String()))
	emitEvent(ctx, sdk.NewEvent(types.EventTypeRedeemRequested, attrs...))
	return types.RedeemRequestedGas
}

// AfterRedeemCompleted settles a redemption whose base tokens have arrived in
// custody: the reservation is released, the base tokens go back to the
// reserve and the principal shrinks. If the tokens cannot be returned they
// are tracked as unsettled credit and swept on the next rebalance.
//
// The principal shrinks on a failed return too. The redemption has settled
// externally, so the amount is owed to the reserve as UnsettledCredit and
// must not be kept as principal; leaving the principal untouched here would
// make it drift upward with every failed return.
func (h Hooks) AfterRedeemCompleted(ctx context.Context, denom string, to sdk.AccAddress, amount sdkmath.Int) storetypes.Gas {
	k := h.k
	if !to.Equals(k.CustodialAddress()) {
		return 0
	}

	info, ok := k.loadForSettlement(ctx, denom)
	if !ok {
		return 0
	}

	info.PendingRedeem = types.SaturatingSub(info.PendingRedeem, amount)
	info.StakedPrincipal = types.SaturatingSub(info.StakedPrincipal, amount)

	eventType := types.EventTypeWithdrawSuccess
	if amount.IsPositive() {
		coins := sdk.NewCoins(sdk.NewCoin(denom, amount))
		if err := k.bankKeeper.SendCoinsFromModuleToModule(ctx, types.ModuleName, types.ReserveModuleName, coins); err != nil {
			k.Logger(ctx).Warn("withdraw to reserve failed", "denom", denom, "amount", amount.String(), "err", err)
			info.UnsettledCredit = info.UnsettledCredit.Add(amount)
			eventType = types.EventTypeWithdrawFailed
		}
	}

	if err := k.SetTokenInfo(ctx, denom, info); err != nil {
		k.Logger(ctx).Error("failed to record redeem completion", "denom", denom, "amount", amount.String(), "err", err)
		return 0
	}

	attrs := append(bookkeepingAttributes(denom, amount, info),
		sdk.NewAttribute(types.AttributeKeyUnsettledCredit, info.UnsettledCredit.String()))
	emitEvent(ctx, sdk.NewEvent(eventType, attrs...))
	telemetry.IncrCounter(1, types.ModuleName, eventType)

	return types.RedeemCompletedGas
}

// AfterRedeemRefunded handles base tokens refunded after a failed unbond;
// the accounting is the same as a completion.
func (h Hooks) AfterRedeemRefunded(ctx context.Context, denom string, to sdk.AccAddress, amount sdkmath.Int) storetypes.Gas {
	return h.AfterRedeemCompleted(ctx, denom, to, amount)
}

func (k Keeper) loadForSettlement(ctx context.Context, denom string) (types.TokenInfo, bool) {
	info, err := k.GetTokenInfo(ctx, denom)
	if errors.Is(err, types.ErrNotFound) {
		k.Logger(ctx).Info("ignoring redemption callback for untracked token", "denom", denom)
		return types.TokenInfo{}, false
	}
	if err != nil {
		k.Logger(ctx).Error("failed to load token info", "denom", denom, "err", err)
		return types.TokenInfo{}, false
	}
	return info, true
}
