package testutil

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

// FarmingKeeper is a static table of pool shares.
type FarmingKeeper struct {
	shares map[uint32]map[string]sdkmath.Int
}

func NewFarmingKeeper() *FarmingKeeper {
	return &FarmingKeeper{shares: make(map[uint32]map[string]sdkmath.Int)}
}

// SetShares records how much of denom pool poolID holds.
func (f *FarmingKeeper) SetShares(poolID uint32, denom string, amount sdkmath.Int) {
	if f.shares[poolID] == nil {
		f.shares[poolID] = make(map[string]sdkmath.Int)
	}
	f.shares[poolID][denom] = amount
}

func (f *FarmingKeeper) GetTokenShares(_ context.Context, poolID uint32, denom string) sdkmath.Int {
	if amt, ok := f.shares[poolID][denom]; ok {
		return amt
	}
	return sdkmath.ZeroInt()
}
