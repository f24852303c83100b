package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

// RebalanceAction is the branch a rebalance took.
type RebalanceAction string

const (
	RebalanceNone   RebalanceAction = "none"
	RebalanceMint   RebalanceAction = "mint"
	RebalanceRedeem RebalanceAction = "redeem"
)

// RebalanceResult describes one rebalance attempt. Amount is in base units;
// YieldAmount is only set on the redeem branch.
type RebalanceResult struct {
	Denom       string
	Action      RebalanceAction
	Amount      sdkmath.Int
	YieldAmount sdkmath.Int
	Info        types.TokenInfo
}

// FarmingPrincipal sums weight * pool share over the configured pools, each
// term rounded down. Pools and weights must pair up one to one.
func (k Keeper) FarmingPrincipal(ctx context.Context, denom string, cfg types.TokenConfig) (sdkmath.Int, error) {
	if len(cfg.PoolIDs) != len(cfg.PoolWeights) {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidConfig,
			"%d pools but %d weights", len(cfg.PoolIDs), len(cfg.PoolWeights))
	}
	total := sdkmath.ZeroInt()
	for i, poolID := range cfg.PoolIDs {
		share := k.farmingKeeper.GetTokenShares(ctx, poolID, denom)
		total = total.Add(types.WeightedShare(cfg.PoolWeights[i], share))
	}
	return total, nil
}

// Rebalance moves the token's staked principal, net of in-flight
// redemptions, towards the target allocation of its current config. The
// caller owns atomicity: on error the attempt must be discarded.
func (k Keeper) Rebalance(ctx context.Context, denom string) (RebalanceResult, error) {
	res := RebalanceResult{
		Denom:       denom,
		Action:      RebalanceNone,
		Amount:      sdkmath.ZeroInt(),
		YieldAmount: sdkmath.ZeroInt(),
	}

	info, err := k.GetTokenInfo(ctx, denom)
	if err != nil {
		return res, err
	}

	k.sweepUnsettled(ctx, denom, &info)

	if info.PendingRedeem.GT(info.StakedPrincipal) {
		k.Logger(ctx).Warn("pending redeem exceeds staked principal",
			"denom", denom,
			"pending_redeem", info.PendingRedeem.String(),
			"staked_principal", info.StakedPrincipal.String(),
		)
	}

	cfg := info.CurrentConfig
	farming, err := k.FarmingPrincipal(ctx, denom, cfg)
	if err != nil {
		return res, err
	}
	info.FarmingPrincipal = farming
	info.TargetAllocation = types.TargetAllocation(info.FarmingPrincipal, cfg.StakeRate, cfg.RateSign, cfg.StakeBase)

	target := info.TargetAllocation
	netStaked := info.NetStaked()

	switch {
	case target.GT(netStaked):
		res.Action = RebalanceMint
		res.Amount = target.Sub(netStaked)
		res.Info = info
		if err := k.mintStake(ctx, denom, res.Amount); err != nil {
			return res, err
		}
		info.StakedPrincipal = info.StakedPrincipal.Add(res.Amount)

		emitEvent(ctx, sdk.NewEvent(types.EventTypeMintSuccess, bookkeepingAttributes(denom, res.Amount, info)...))
		telemetry.IncrCounter(1, types.ModuleName, "mint_success")

	case target.LT(netStaked):
		res.Action = RebalanceRedeem
		res.Amount = netStaked.Sub(target)
		res.Info = info

		yieldDenom, err := k.yieldKeeper.YieldDenom(denom)
		if err != nil {
			// No yield representation: nothing can be redeemed.
			k.Logger(ctx).Info("no yield token for denom", "denom", denom, "err", err)
			emitEvent(ctx, sdk.NewEvent(
				types.EventTypeYieldTokenNotFound,
				sdk.NewAttribute(types.AttributeKeyDenom, denom),
			))
			break
		}

		yieldAmount, err := k.yieldKeeper.YieldAmountFor(ctx, denom, yieldDenom, res.Amount)
		if err != nil {
			return res, errorsmod.Wrapf(types.ErrConversionFailed, "%s to %s: %s", denom, yieldDenom, err)
		}
		res.YieldAmount = yieldAmount
		if !yieldAmount.IsPositive() {
			break
		}

		// Persist first so the reservation hook works on this round's values.
		if err := k.SetTokenInfo(ctx, denom, info); err != nil {
			return res, err
		}
		if err := k.yieldKeeper.RequestRedeem(ctx, k.CustodialAddress(), yieldDenom, yieldAmount); err != nil {
			return res, errorsmod.Wrapf(types.ErrRedeemFailed, "%s%s: %s", yieldAmount, yieldDenom, err)
		}

		// RequestRedeem has already run AfterRedeemRequested against the store.
		reserved, err := k.GetTokenInfo(ctx, denom)
		if err != nil {
			return res, err
		}
		info.PendingRedeem = reserved.PendingRedeem
		telemetry.IncrCounter(1, types.ModuleName, "redeem_requested")
	}

	if err := k.SetTokenInfo(ctx, denom, info); err != nil {
		return res, err
	}
	res.Info = info

	telemetry.SetGauge(toFloat32(info.StakedPrincipal), types.ModuleName, "staked_principal", denom)
	telemetry.SetGauge(toFloat32(info.PendingRedeem), types.ModuleName, "pending_redeem", denom)

	return res, nil
}

// mintStake credits amount of base token from the reserve into custody and
// converts it into the yield representation.
func (k Keeper) mintStake(ctx context.Context, denom string, amount sdkmath.Int) error {
	coins := sdk.NewCoins(sdk.NewCoin(denom, amount))
	if err := k.bankKeeper.SendCoinsFromModuleToModule(ctx, types.ReserveModuleName, types.ModuleName, coins); err != nil {
		return errorsmod.Wrapf(types.ErrInsufficientFunds, "credit %s from reserve: %s", coins, err)
	}
	if err := k.yieldKeeper.Mint(ctx, k.CustodialAddress(), denom, amount); err != nil {
		return errorsmod.Wrapf(types.ErrMintFailed, "mint %s: %s", coins, err)
	}
	return nil
}

// sweepUnsettled retries returning base tokens left behind by a completion
// whose debit failed. Failure leaves the credit for the next attempt.
func (k Keeper) sweepUnsettled(ctx context.Context, denom string, info *types.TokenInfo) {
	if !info.UnsettledCredit.IsPositive() {
		return
	}
	coins := sdk.NewCoins(sdk.NewCoin(denom, info.UnsettledCredit))
	if err := k.bankKeeper.SendCoinsFromModuleToModule(ctx, types.ModuleName, types.ReserveModuleName, coins); err != nil {
		k.Logger(ctx).Debug("unsettled credit still pending", "denom", denom, "amount", info.UnsettledCredit.String(), "err", err)
		return
	}

	emitEvent(ctx, sdk.NewEvent(
		types.EventTypeSettlementSwept,
		sdk.NewAttribute(types.AttributeKeyDenom, denom),
		sdk.NewAttribute(types.AttributeKeyAmount, info.UnsettledCredit.String()),
	))
	info.UnsettledCredit = sdkmath.ZeroInt()
}
