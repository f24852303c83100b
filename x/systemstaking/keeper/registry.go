package keeper

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

// RegisterOrUpdate merges update into the token's pending config, creating
// the token on first use. The merged config is fully validated before
// anything is written. It reports whether the token was newly registered.
func (k Keeper) RegisterOrUpdate(ctx context.Context, denom string, update types.ConfigUpdate) (types.TokenInfo, bool, error) {
	if err := sdk.ValidateDenom(denom); err != nil {
		return types.TokenInfo{}, false, errorsmod.Wrap(types.ErrInvalidConfig, err.Error())
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return types.TokenInfo{}, false, err
	}

	info, err := k.GetTokenInfo(ctx, denom)
	isNew := false
	switch {
	case errors.Is(err, types.ErrNotFound):
		info = types.NewTokenInfo()
		isNew = true
	case err != nil:
		return types.TokenInfo{}, false, err
	}

	pending := update.ApplyTo(info.PendingConfig)
	if err := pending.Validate(params.MaxPools); err != nil {
		return types.TokenInfo{}, false, err
	}

	denoms, err := k.TrackedTokens(ctx)
	if err != nil {
		return types.TokenInfo{}, false, err
	}
	listed := slices.Contains(denoms, denom)
	if !listed && uint32(len(denoms)) >= params.MaxTokens {
		return types.TokenInfo{}, false, errorsmod.Wrapf(types.ErrRegistryFull, "%d tokens tracked", len(denoms))
	}

	info.PendingConfig = pending
	if err := k.SetTokenInfo(ctx, denom, info); err != nil {
		return types.TokenInfo{}, false, err
	}
	if !listed {
		if err := k.setTrackedTokens(ctx, append(denoms, denom)); err != nil {
			return types.TokenInfo{}, false, err
		}
	}

	emitEvent(ctx, sdk.NewEvent(
		types.EventTypeTokenConfigChanged,
		sdk.NewAttribute(types.AttributeKeyDenom, denom),
		sdk.NewAttribute(types.AttributeKeyApplyDelay, strconv.FormatUint(pending.ApplyDelay, 10)),
		sdk.NewAttribute(types.AttributeKeyStakeRate, pending.StakeRate.String()),
		sdk.NewAttribute(types.AttributeKeyRateSign, string(pending.RateSign)),
		sdk.NewAttribute(types.AttributeKeyStakeBase, pending.StakeBase.String()),
		sdk.NewAttribute(types.AttributeKeyPoolIDs, joinPoolIDs(pending.PoolIDs)),
		sdk.NewAttribute(types.AttributeKeyPoolWeights, joinWeights(pending)),
	))

	return info, isNew, nil
}

// Deregister drops a token's info and registry entry. It succeeds whether or
// not either is present.
func (k Keeper) Deregister(ctx context.Context, denom string) error {
	if err := k.Tokens.Remove(ctx, denom); err != nil {
		return err
	}

	denoms, err := k.TrackedTokens(ctx)
	if err != nil {
		return err
	}
	kept := make([]string, 0, len(denoms))
	for _, d := range denoms {
		if d != denom {
			kept = append(kept, d)
		}
	}
	if len(kept) != len(denoms) {
		if err := k.setTrackedTokens(ctx, kept); err != nil {
			return err
		}
	}

	emitEvent(ctx, sdk.NewEvent(
		types.EventTypeTokenDeregistered,
		sdk.NewAttribute(types.AttributeKeyDenom, denom),
	))
	return nil
}

// PromotePending makes the pending config current when the two differ.
func (k Keeper) PromotePending(ctx context.Context, denom string) (bool, error) {
	info, err := k.GetTokenInfo(ctx, denom)
	if err != nil {
		return false, err
	}
	if !info.ConfigChanged() {
		return false, nil
	}
	info.PromotePending()
	if err := k.SetTokenInfo(ctx, denom, info); err != nil {
		return false, err
	}
	return true, nil
}

func joinPoolIDs(ids []uint32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

func joinWeights(cfg types.TokenConfig) string {
	parts := make([]string, len(cfg.PoolWeights))
	for i, w := range cfg.PoolWeights {
		parts[i] = w.String()
	}
	return strings.Join(parts, ",")
}
