package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/store"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

// YieldPrefix is prepended to a base denom to form its yield denom.
const YieldPrefix = "v"

// Unbonding is one queued redemption.
type Unbonding struct {
	Denom    string         `json:"denom"`
	Redeemer sdk.AccAddress `json:"redeemer"`
	Amount   sdkmath.Int    `json:"amount"`
	DueAt    int64          `json:"due_at"`
}

// YieldKeeper is a liquid staking stand-in. Exchange rate is base units per
// yield unit. Redemptions wait UnbondingBlocks before they are paid out and
// reported through the hooks.
type YieldKeeper struct {
	bank  *BankKeeper
	hooks types.RedeemHooks

	Queue    collections.Map[uint64, string]
	QueueSeq collections.Sequence

	Rate            sdkmath.LegacyDec
	UnbondingBlocks int64

	// RefundOnUnbond reports finished redemptions as refunds.
	RefundOnUnbond bool

	MintErr    error
	RedeemErr  error
	ConvertErr error

	unsupported map[string]bool
	gasUsed     uint64
}

// NewYieldKeeper builds the yield module on storeService, minting and
// burning through bank.
func NewYieldKeeper(storeService store.KVStoreService, bank *BankKeeper) *YieldKeeper {
	sb := collections.NewSchemaBuilder(storeService)
	yk := &YieldKeeper{
		bank:            bank,
		Queue:           collections.NewMap(sb, collections.NewPrefix(0x01), "queue", collections.Uint64Key, collections.StringValue),
		QueueSeq:        collections.NewSequence(sb, collections.NewPrefix(0x02), "queue_seq"),
		Rate:            sdkmath.LegacyOneDec(),
		UnbondingBlocks: 5,
		unsupported:     make(map[string]bool),
	}
	if _, err := sb.Build(); err != nil {
		panic(err)
	}
	return yk
}

// SetHooks registers the redemption hooks. It may only be called once.
func (y *YieldKeeper) SetHooks(hooks types.RedeemHooks) *YieldKeeper {
	if y.hooks != nil {
		panic("cannot set yield hooks twice")
	}
	y.hooks = hooks
	return y
}

// Unsupport makes denom have no yield representation.
func (y *YieldKeeper) Unsupport(denom string) {
	y.unsupported[denom] = true
}

// GasUsed is the total gas reported by the hooks.
func (y *YieldKeeper) GasUsed() uint64 {
	return y.gasUsed
}

func (y *YieldKeeper) YieldDenom(denom string) (string, error) {
	if y.unsupported[denom] {
		return "", fmt.Errorf("no yield token for %s", denom)
	}
	return YieldPrefix + denom, nil
}

func (y *YieldKeeper) baseDenom(yieldDenom string) (string, error) {
	if !strings.HasPrefix(yieldDenom, YieldPrefix) {
		return "", fmt.Errorf("unknown yield token %s", yieldDenom)
	}
	return strings.TrimPrefix(yieldDenom, YieldPrefix), nil
}

// Mint stakes amount of the minter's base token and credits the yield token.
func (y *YieldKeeper) Mint(ctx context.Context, minter sdk.AccAddress, denom string, amount sdkmath.Int) error {
	if y.MintErr != nil {
		return y.MintErr
	}
	yieldDenom, err := y.YieldDenom(denom)
	if err != nil {
		return err
	}
	yieldAmount, err := y.YieldAmountFor(ctx, denom, yieldDenom, amount)
	if err != nil {
		return err
	}
	if err := y.bank.BurnCoins(ctx, minter, sdk.NewCoins(sdk.NewCoin(denom, amount))); err != nil {
		return err
	}
	return y.bank.MintCoins(ctx, minter, sdk.NewCoins(sdk.NewCoin(yieldDenom, yieldAmount)))
}

// RequestRedeem burns the yield token, reports the reservation to the hooks
// and queues the unbonding.
func (y *YieldKeeper) RequestRedeem(ctx context.Context, redeemer sdk.AccAddress, yieldDenom string, yieldAmount sdkmath.Int) error {
	if y.RedeemErr != nil {
		return y.RedeemErr
	}
	denom, err := y.baseDenom(yieldDenom)
	if err != nil {
		return err
	}
	base, err := y.BaseAmountFor(ctx, denom, yieldDenom, yieldAmount)
	if err != nil {
		return err
	}
	if err := y.bank.BurnCoins(ctx, redeemer, sdk.NewCoins(sdk.NewCoin(yieldDenom, yieldAmount))); err != nil {
		return err
	}

	if y.hooks != nil {
		y.gasUsed += y.hooks.AfterRedeemRequested(ctx, redeemer, denom, base, yieldAmount, sdkmath.ZeroInt())
	}

	seq, err := y.QueueSeq.Next(ctx)
	if err != nil {
		return err
	}
	entry := Unbonding{
		Denom:    denom,
		Redeemer: redeemer,
		Amount:   base,
		DueAt:    sdk.UnwrapSDKContext(ctx).BlockHeight() + y.UnbondingBlocks,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return y.Queue.Set(ctx, seq, string(raw))
}

// ProcessUnbonding pays out every due redemption in queue order and reports
// it to the hooks. It returns how many were processed.
func (y *YieldKeeper) ProcessUnbonding(ctx context.Context) (int, error) {
	height := sdk.UnwrapSDKContext(ctx).BlockHeight()

	var due []uint64
	var entries []Unbonding
	err := y.Queue.Walk(ctx, nil, func(seq uint64, raw string) (bool, error) {
		var entry Unbonding
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return true, err
		}
		if entry.DueAt <= height {
			due = append(due, seq)
			entries = append(entries, entry)
		}
		return false, nil
	})
	if err != nil {
		return 0, err
	}

	for i, entry := range entries {
		if err := y.Queue.Remove(ctx, due[i]); err != nil {
			return i, err
		}
		if err := y.bank.MintCoins(ctx, entry.Redeemer, sdk.NewCoins(sdk.NewCoin(entry.Denom, entry.Amount))); err != nil {
			return i, err
		}
		if y.hooks == nil {
			continue
		}
		if y.RefundOnUnbond {
			y.gasUsed += y.hooks.AfterRedeemRefunded(ctx, entry.Denom, entry.Redeemer, entry.Amount)
		} else {
			y.gasUsed += y.hooks.AfterRedeemCompleted(ctx, entry.Denom, entry.Redeemer, entry.Amount)
		}
	}
	return len(entries), nil
}

// YieldAmountFor is base / rate, rounded down.
func (y *YieldKeeper) YieldAmountFor(_ context.Context, _, _ string, baseAmount sdkmath.Int) (sdkmath.Int, error) {
	if y.ConvertErr != nil {
		return sdkmath.Int{}, y.ConvertErr
	}
	if !y.Rate.IsPositive() {
		return sdkmath.Int{}, fmt.Errorf("exchange rate %s is not positive", y.Rate)
	}
	return sdkmath.LegacyNewDecFromInt(baseAmount).Quo(y.Rate).TruncateInt(), nil
}

// BaseAmountFor is yield * rate, rounded down.
func (y *YieldKeeper) BaseAmountFor(_ context.Context, _, _ string, yieldAmount sdkmath.Int) (sdkmath.Int, error) {
	if y.ConvertErr != nil {
		return sdkmath.Int{}, y.ConvertErr
	}
	return y.Rate.MulInt(yieldAmount).TruncateInt(), nil
}
