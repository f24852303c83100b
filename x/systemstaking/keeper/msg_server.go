package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

type msgServer struct {
	Keeper
}

var _ types.MsgServer = msgServer{}

// NewMsgServerImpl returns the module's message service backed by keeper.
func NewMsgServerImpl(keeper Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

func (m msgServer) ConfigureToken(ctx context.Context, msg *types.MsgConfigureToken) (*types.MsgConfigureTokenResponse, error) {
	if err := m.checkAuthority(msg.Authority, msg.ValidateBasic); err != nil {
		return nil, err
	}

	var (
		info       types.TokenInfo
		registered bool
	)
	err := m.atomically(ctx, func(ctx context.Context) error {
		var err error
		info, registered, err = m.RegisterOrUpdate(ctx, msg.Denom, msg.Update)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &types.MsgConfigureTokenResponse{
		Registered:    registered,
		PendingConfig: info.PendingConfig,
	}, nil
}

func (m msgServer) DeregisterToken(ctx context.Context, msg *types.MsgDeregisterToken) (*types.MsgDeregisterTokenResponse, error) {
	if err := m.checkAuthority(msg.Authority, msg.ValidateBasic); err != nil {
		return nil, err
	}
	if err := m.atomically(ctx, func(ctx context.Context) error {
		return m.Deregister(ctx, msg.Denom)
	}); err != nil {
		return nil, err
	}
	return &types.MsgDeregisterTokenResponse{}, nil
}

func (m msgServer) RefreshToken(ctx context.Context, msg *types.MsgRefreshToken) (*types.MsgRefreshTokenResponse, error) {
	if err := m.checkAuthority(msg.Authority, msg.ValidateBasic); err != nil {
		return nil, err
	}

	if err := m.ensureNotHalted(ctx); err != nil {
		return nil, err
	}

	var info types.TokenInfo
	err := m.atomically(ctx, func(ctx context.Context) error {
		var err error
		info, err = m.Refresh(ctx, msg.Denom)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgRefreshTokenResponse{Info: info}, nil
}

func (m msgServer) Payout(ctx context.Context, msg *types.MsgPayout) (*types.MsgPayoutResponse, error) {
	if err := m.checkAuthority(msg.Authority, msg.ValidateBasic); err != nil {
		return nil, err
	}

	if err := m.ensureNotHalted(ctx); err != nil {
		return nil, err
	}

	var payout types.PayoutBreakdown
	err := m.atomically(ctx, func(ctx context.Context) error {
		var err error
		payout, err = m.Keeper.Payout(ctx, msg.Denom)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgPayoutResponse{Payout: payout}, nil
}

func (m msgServer) SetHalt(ctx context.Context, msg *types.MsgSetHalt) (*types.MsgSetHaltResponse, error) {
	if err := m.checkAuthority(msg.Authority, msg.ValidateBasic); err != nil {
		return nil, err
	}
	if !msg.Halted {
		if err := m.Resume(ctx, msg.Authority); err != nil {
			return nil, err
		}
		return &types.MsgSetHaltResponse{}, nil
	}
	state, err := m.Halt(ctx, msg.Authority, msg.Reason)
	if err != nil {
		return nil, err
	}
	return &types.MsgSetHaltResponse{State: state}, nil
}

// Refresh promotes the pending config and rebalances now, ignoring the
// apply delay.
func (k Keeper) Refresh(ctx context.Context, denom string) (types.TokenInfo, error) {
	if _, err := k.PromotePending(ctx, denom); err != nil {
		return types.TokenInfo{}, err
	}
	res, err := k.Rebalance(ctx, denom)
	if err != nil {
		return types.TokenInfo{}, err
	}

	emitEvent(ctx, sdk.NewEvent(
		types.EventTypeTokenInfoRefreshed,
		sdk.NewAttribute(types.AttributeKeyDenom, denom),
		sdk.NewAttribute(types.AttributeKeyTargetAllocation, res.Info.TargetAllocation.String()),
	))
	return res.Info, nil
}

func (m msgServer) checkAuthority(authority string, validate func() error) error {
	if err := validate(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidConfig, err.Error())
	}
	if authority != m.authority {
		return errorsmod.Wrapf(types.ErrUnauthorized, "expected %s, got %s", m.authority, authority)
	}
	return nil
}

// atomically runs fn against a cached store and commits only on success.
func (k Keeper) atomically(ctx context.Context, fn func(context.Context) error) error {
	sdkCtx, ok := unwrapSDKContext(ctx)
	if !ok {
		return fn(ctx)
	}
	cacheCtx, write := sdkCtx.CacheContext()
	if err := fn(cacheCtx); err != nil {
		return err
	}
	write()
	return nil
}
