package keeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

// Halt stops automated rebalancing and payouts until Resume is called.
func (k Keeper) Halt(ctx context.Context, requester, reason string) (types.HaltState, error) {
	if strings.TrimSpace(requester) != k.authority {
		return types.HaltState{}, errorsmod.Wrap(types.ErrUnauthorized, "halt request")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return types.HaltState{}, errorsmod.Wrap(types.ErrInvalidConfig, "halt reason cannot be empty")
	}

	state := types.HaltState{
		Active:      true,
		Reason:      reason,
		TriggeredBy: requester,
	}
	if sdkCtx, ok := unwrapSDKContext(ctx); ok {
		state.TriggeredAtHeight = sdkCtx.BlockHeight()
		state.TriggeredAtUnix = sdkCtx.BlockTime().Unix()
	}
	if err := k.setHaltState(ctx, state); err != nil {
		return types.HaltState{}, err
	}

	emitEvent(ctx, sdk.NewEvent(
		types.EventTypeHalted,
		sdk.NewAttribute(types.AttributeKeyReason, state.Reason),
		sdk.NewAttribute(types.AttributeKeyRequester, requester),
	))
	k.Logger(ctx).Info("system staking halted", "reason", state.Reason, "height", state.TriggeredAtHeight)
	return state, nil
}

// Resume clears the halt state.
func (k Keeper) Resume(ctx context.Context, requester string) error {
	if strings.TrimSpace(requester) != k.authority {
		return errorsmod.Wrap(types.ErrUnauthorized, "resume request")
	}
	if err := k.setHaltState(ctx, types.HaltState{}); err != nil {
		return err
	}
	emitEvent(ctx, sdk.NewEvent(
		types.EventTypeResumed,
		sdk.NewAttribute(types.AttributeKeyRequester, requester),
	))
	return nil
}

func (k Keeper) GetHaltState(ctx context.Context) (types.HaltState, error) {
	raw, err := k.HaltState.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		return types.HaltState{}, nil
	}
	if err != nil {
		return types.HaltState{}, err
	}
	var state types.HaltState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return types.HaltState{}, fmt.Errorf("decode halt state: %w", err)
	}
	return state, nil
}

// IsHalted treats an unreadable halt record as halted.
func (k Keeper) IsHalted(ctx context.Context) bool {
	state, err := k.GetHaltState(ctx)
	if err != nil {
		k.Logger(ctx).Error("failed to load halt state", "err", err)
		return true
	}
	return state.Active
}

func (k Keeper) setHaltState(ctx context.Context, state types.HaltState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return k.HaltState.Set(ctx, string(raw))
}

func (k Keeper) ensureNotHalted(ctx context.Context) error {
	state, err := k.GetHaltState(ctx)
	if err != nil {
		return errorsmod.Wrapf(types.ErrHalted, "halt state unreadable: %s", err)
	}
	if !state.Active {
		return nil
	}
	return errorsmod.Wrapf(types.ErrHalted, "since height %d: %s", state.TriggeredAtHeight, state.Reason)
}
