package types

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BankKeeper is the base/yield token ledger.
type BankKeeper interface {
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
	SendCoinsFromModuleToModule(ctx context.Context, senderModule, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
}

// FarmingKeeper reports how much of a token each farming pool holds.
type FarmingKeeper interface {
	GetTokenShares(ctx context.Context, poolID uint32, denom string) sdkmath.Int
}

// YieldKeeper converts base tokens into their yield-bearing representation
// and back. RequestRedeem must call RedeemHooks.AfterRedeemRequested before it
// returns; completion is reported later through AfterRedeemCompleted.
type YieldKeeper interface {
	YieldDenom(denom string) (string, error)
	Mint(ctx context.Context, minter sdk.AccAddress, denom string, amount sdkmath.Int) error
	RequestRedeem(ctx context.Context, redeemer sdk.AccAddress, yieldDenom string, yieldAmount sdkmath.Int) error
	YieldAmountFor(ctx context.Context, denom, yieldDenom string, baseAmount sdkmath.Int) (sdkmath.Int, error)
	BaseAmountFor(ctx context.Context, denom, yieldDenom string, yieldAmount sdkmath.Int) (sdkmath.Int, error)
}
