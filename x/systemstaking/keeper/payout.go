package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

// ComputePayout values the custodial yield holdings in base units and
// returns the part above staked principal, converted back to yield units.
func (k Keeper) ComputePayout(ctx context.Context, denom string) (types.PayoutBreakdown, error) {
	info, err := k.GetTokenInfo(ctx, denom)
	if err != nil {
		return types.PayoutBreakdown{}, err
	}

	yieldDenom, err := k.yieldKeeper.YieldDenom(denom)
	if err != nil {
		return types.PayoutBreakdown{}, errorsmod.Wrapf(types.ErrNotFound, "yield token for %s: %s", denom, err)
	}

	free := k.bankKeeper.GetBalance(ctx, k.CustodialAddress(), yieldDenom).Amount
	equivalent, err := k.yieldKeeper.BaseAmountFor(ctx, denom, yieldDenom, free)
	if err != nil {
		return types.PayoutBreakdown{}, errorsmod.Wrapf(types.ErrConversionFailed, "%s to %s: %s", yieldDenom, denom, err)
	}

	accrued := types.SaturatingSub(equivalent, info.StakedPrincipal)
	amount, err := k.yieldKeeper.YieldAmountFor(ctx, denom, yieldDenom, accrued)
	if err != nil {
		return types.PayoutBreakdown{}, errorsmod.Wrapf(types.ErrConversionFailed, "%s to %s: %s", denom, yieldDenom, err)
	}

	return types.PayoutBreakdown{
		Denom:          denom,
		YieldDenom:     yieldDenom,
		FreeBalance:    free,
		EquivalentBase: equivalent,
		Principal:      info.StakedPrincipal,
		Accrued:        accrued,
		Amount:         amount,
	}, nil
}

// Payout transfers the accrued yield to the beneficiary.
func (k Keeper) Payout(ctx context.Context, denom string) (types.PayoutBreakdown, error) {
	payout, err := k.ComputePayout(ctx, denom)
	if err != nil {
		return types.PayoutBreakdown{}, err
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return types.PayoutBreakdown{}, err
	}
	beneficiary, err := params.BeneficiaryAddress()
	if err != nil {
		return types.PayoutBreakdown{}, errorsmod.Wrap(types.ErrTransferFailed, err.Error())
	}

	if payout.Amount.IsPositive() {
		coins := sdk.NewCoins(sdk.NewCoin(payout.YieldDenom, payout.Amount))
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, beneficiary, coins); err != nil {
			return types.PayoutBreakdown{}, errorsmod.Wrapf(types.ErrTransferFailed, "send %s: %s", coins, err)
		}
	}

	emitEvent(ctx, sdk.NewEvent(
		types.EventTypePayout,
		sdk.NewAttribute(types.AttributeKeyDenom, denom),
		sdk.NewAttribute(types.AttributeKeyYieldDenom, payout.YieldDenom),
		sdk.NewAttribute(types.AttributeKeyFrom, k.CustodialAddress().String()),
		sdk.NewAttribute(types.AttributeKeyTo, beneficiary.String()),
		sdk.NewAttribute(types.AttributeKeyAmount, payout.Amount.String()),
		sdk.NewAttribute(types.AttributeKeyFreeBalance, payout.FreeBalance.String()),
		sdk.NewAttribute(types.AttributeKeyEquivalentBase, payout.EquivalentBase.String()),
		sdk.NewAttribute(types.AttributeKeyStakedPrincipal, payout.Principal.String()),
	))
	telemetry.IncrCounter(1, types.ModuleName, "payout")

	return payout, nil
}
