package keeper

import (
	"context"
	"fmt"
	"time"

	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

// BeginBlocker rotates the round when due and then, for every tracked token
// whose apply delay lands on this block, rebalances and pays out. Failures
// are logged per token and never stop the block. While halted only the
// round advances.
func (k Keeper) BeginBlocker(ctx context.Context) error {
	defer telemetry.ModuleMeasureSince(types.ModuleName, time.Now(), telemetry.MetricKeyBeginBlocker)

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := blockHeight(sdkCtx)

	round, _, err := k.rotateRoundIfDue(sdkCtx, now)
	if err != nil {
		k.Logger(sdkCtx).Error("round rotation failed", "height", now, "err", err)
		return nil
	}

	if k.IsHalted(sdkCtx) {
		k.Logger(sdkCtx).Debug("system staking halted, skipping token processing", "height", now)
		return nil
	}

	denoms, err := k.TrackedTokens(sdkCtx)
	if err != nil {
		k.Logger(sdkCtx).Error("failed to load token registry", "err", err)
		return nil
	}

	for _, denom := range denoms {
		info, err := k.GetTokenInfo(sdkCtx, denom)
		if err != nil {
			k.Logger(sdkCtx).Error("failed to load token info", "denom", denom, "err", err)
			continue
		}
		cfg := info.CurrentConfig
		if !cfg.IsActive() || !round.DelayElapsed(now, cfg.ApplyDelay) {
			continue
		}
		k.processToken(sdkCtx, denom)
	}

	return nil
}

// processToken runs rebalance and payout for one token, each against its own
// cache so a failed step leaves no partial writes.
func (k Keeper) processToken(ctx sdk.Context, denom string) {
	defer func() {
		if r := recover(); r != nil {
			k.Logger(ctx).Error("recovered panic while processing token", "denom", denom, "err", r)
		}
	}()

	cacheCtx, write := ctx.CacheContext()
	res, err := k.Rebalance(cacheCtx, denom)
	if err != nil {
		k.Logger(ctx).Error("system staking rebalance failed",
			"denom", denom,
			"action", string(res.Action),
			"amount", res.Amount.String(),
			"err", err,
		)
		k.emitRebalanceFailure(ctx, res, err)
	} else {
		write()
	}

	cacheCtx, write = ctx.CacheContext()
	if _, err := k.Payout(cacheCtx, denom); err != nil {
		k.Logger(ctx).Error("system staking auto payout failed", "denom", denom, "err", err)
		emitEvent(ctx, sdk.NewEvent(
			types.EventTypePayoutFailed,
			sdk.NewAttribute(types.AttributeKeyDenom, denom),
			sdk.NewAttribute(types.AttributeKeyReason, err.Error()),
		))
		telemetry.IncrCounter(1, types.ModuleName, "payout_failed")
		return
	}
	write()
}

func (k Keeper) emitRebalanceFailure(ctx sdk.Context, res RebalanceResult, cause error) {
	var eventType string
	switch res.Action {
	case RebalanceMint:
		eventType = types.EventTypeMintFailed
	case RebalanceRedeem:
		eventType = types.EventTypeRedeemFailed
	default:
		return
	}
	info := res.Info
	info.Normalize()

	attrs := append(bookkeepingAttributes(res.Denom, res.Amount, info),
		sdk.NewAttribute(types.AttributeKeyReason, cause.Error()))
	emitEvent(ctx, sdk.NewEvent(eventType, attrs...))
	telemetry.IncrCounter(1, types.ModuleName, fmt.Sprintf("%s_failed", res.Action))
}
