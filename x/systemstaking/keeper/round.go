package keeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"cosmossdk.io/collections"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

// GetRound returns the current round. A missing round is created lazily at
// index zero with the configured length.
func (k Keeper) GetRound(ctx context.Context) (types.Round, error) {
	raw, err := k.Round.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		params, err := k.GetParams(ctx)
		if err != nil {
			return types.Round{}, err
		}
		return types.NewRound(params.RoundLength), nil
	}
	if err != nil {
		return types.Round{}, err
	}
	var round types.Round
	if err := json.Unmarshal([]byte(raw), &round); err != nil {
		return types.Round{}, fmt.Errorf("decode round: %w", err)
	}
	return round, nil
}

func (k Keeper) SetRound(ctx context.Context, round types.Round) error {
	if err := round.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(round)
	if err != nil {
		return err
	}
	return k.Round.Set(ctx, string(raw))
}

// rotateRoundIfDue starts a new round once the current one has elapsed and
// promotes every changed pending config. It returns the round in effect for
// this block.
func (k Keeper) rotateRoundIfDue(ctx context.Context, now uint64) (types.Round, bool, error) {
	round, err := k.GetRound(ctx)
	if err != nil {
		return types.Round{}, false, err
	}
	if !round.ShouldRotate(now) {
		return round, false, nil
	}

	round.Rotate(now)
	if err := k.SetRound(ctx, round); err != nil {
		return types.Round{}, false, err
	}

	denoms, err := k.TrackedTokens(ctx)
	if err != nil {
		return types.Round{}, false, err
	}
	for _, denom := range denoms {
		if _, err := k.PromotePending(ctx, denom); err != nil {
			// A token listed without info is repaired by Deregister; it must
			// not stop the rotation.
			k.Logger(ctx).Error("failed to promote pending config", "denom", denom, "err", err)
		}
	}

	emitEvent(ctx, sdk.NewEvent(
		types.EventTypeNewRound,
		sdk.NewAttribute(types.AttributeKeyRoundIndex, strconv.FormatUint(uint64(round.Index), 10)),
		sdk.NewAttribute(types.AttributeKeyRoundStart, strconv.FormatUint(round.StartBlock, 10)),
		sdk.NewAttribute(types.AttributeKeyRoundLength, strconv.FormatUint(round.Length, 10)),
	))

	return round, true, nil
}
