package testutil

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/store"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
)

// ErrBlockedRecipient is returned for sends to an address marked with
// BlockRecipient.
var ErrBlockedRecipient = errors.New("recipient blocked")

// BankKeeper is a minimal ledger kept in its own store so that cache
// contexts roll balances back together with keeper state.
type BankKeeper struct {
	Balances collections.Map[collections.Pair[sdk.AccAddress, string], sdkmath.Int]

	blocked map[string]bool
}

// NewBankKeeper builds the ledger on storeService.
func NewBankKeeper(storeService store.KVStoreService) *BankKeeper {
	sb := collections.NewSchemaBuilder(storeService)
	bk := &BankKeeper{
		Balances: collections.NewMap(
			sb,
			collections.NewPrefix(0x01),
			"balances",
			collections.PairKeyCodec(sdk.AccAddressKey, collections.StringKey),
			sdk.IntValue,
		),
		blocked: make(map[string]bool),
	}
	if _, err := sb.Build(); err != nil {
		panic(err)
	}
	return bk
}

func (b *BankKeeper) GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	amt, err := b.Balances.Get(ctx, collections.Join(addr, denom))
	if err != nil {
		return sdk.NewCoin(denom, sdkmath.ZeroInt())
	}
	return sdk.NewCoin(denom, amt)
}

func (b *BankKeeper) SendCoinsFromModuleToModule(ctx context.Context, senderModule, recipientModule string, amt sdk.Coins) error {
	return b.SendCoins(ctx, authtypes.NewModuleAddress(senderModule), authtypes.NewModuleAddress(recipientModule), amt)
}

func (b *BankKeeper) SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error {
	return b.SendCoins(ctx, authtypes.NewModuleAddress(senderModule), recipientAddr, amt)
}

// SendCoins moves amt between two addresses. Nothing is written unless the
// whole send succeeds.
func (b *BankKeeper) SendCoins(ctx context.Context, from, to sdk.AccAddress, amt sdk.Coins) error {
	if b.blocked[to.String()] {
		return fmt.Errorf("%w: %s", ErrBlockedRecipient, to)
	}
	for _, coin := range amt {
		if have := b.GetBalance(ctx, from, coin.Denom).Amount; have.LT(coin.Amount) {
			return fmt.Errorf("insufficient funds: %s has %s%s, needs %s", from, have, coin.Denom, coin)
		}
	}
	if err := b.BurnCoins(ctx, from, amt); err != nil {
		return err
	}
	return b.MintCoins(ctx, to, amt)
}

// MintCoins credits addr out of thin air.
func (b *BankKeeper) MintCoins(ctx context.Context, addr sdk.AccAddress, amt sdk.Coins) error {
	for _, coin := range amt {
		bal := b.GetBalance(ctx, addr, coin.Denom).Amount
		if err := b.Balances.Set(ctx, collections.Join(addr, coin.Denom), bal.Add(coin.Amount)); err != nil {
			return err
		}
	}
	return nil
}

// BurnCoins debits addr, failing if any balance is short.
func (b *BankKeeper) BurnCoins(ctx context.Context, addr sdk.AccAddress, amt sdk.Coins) error {
	for _, coin := range amt {
		bal := b.GetBalance(ctx, addr, coin.Denom).Amount
		if bal.LT(coin.Amount) {
			return fmt.Errorf("insufficient funds: %s has %s%s, needs %s", addr, bal, coin.Denom, coin)
		}
		if err := b.Balances.Set(ctx, collections.Join(addr, coin.Denom), bal.Sub(coin.Amount)); err != nil {
			return err
		}
	}
	return nil
}

// BlockRecipient makes every send to addr fail until UnblockRecipient.
func (b *BankKeeper) BlockRecipient(addr sdk.AccAddress) {
	b.blocked[addr.String()] = true
}

func (b *BankKeeper) UnblockRecipient(addr sdk.AccAddress) {
	delete(b.blocked, addr.String())
}
