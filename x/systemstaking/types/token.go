package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Round is the fixed-length scheduling epoch. Configuration changes take
// effect only when a round rotates.
type Round struct {
	Index      uint32 `json:"index"`
	StartBlock uint64 `json:"start_block"`
	Length     uint64 `json:"length"`
}

// NewRound returns round zero starting at block zero.
func NewRound(length uint64) Round {
	return Round{Index: 0, StartBlock: 0, Length: length}
}

// ShouldRotate is true once length blocks have passed since the round start.
func (r Round) ShouldRotate(now uint64) bool {
	if now < r.StartBlock {
		return false
	}
	return now-r.StartBlock >= r.Length
}

// Rotate starts the next round at now. Length is unchanged.
func (r *Round) Rotate(now uint64) {
	r.Index++
	r.StartBlock = now
}

// DelayElapsed is true on exactly one block per round: start + delay. A delay
// the round has already passed is missed until the next round.
func (r Round) DelayElapsed(now, delay uint64) bool {
	if now < r.StartBlock {
		return false
	}
	return now-r.StartBlock == delay
}

func (r Round) Validate() error {
	if r.Length == 0 {
		return fmt.Errorf("round length must be positive")
	}
	return nil
}

// TokenInfo is the bookkeeping of one tracked token. All amounts are in base
// token units.
type TokenInfo struct {
	CurrentConfig    TokenConfig `json:"current_config"`
	PendingConfig    TokenConfig `json:"pending_config"`
	FarmingPrincipal sdkmath.Int `json:"farming_principal"`
	TargetAllocation sdkmath.Int `json:"target_allocation"`
	StakedPrincipal  sdkmath.Int `json:"staked_principal"`
	PendingRedeem    sdkmath.Int `json:"pending_redeem"`
	// UnsettledCredit is base token that arrived from a completed redemption
	// but could not yet be returned to the reserve.
	UnsettledCredit sdkmath.Int `json:"unsettled_credit"`
}

// NewTokenInfo returns the zero-valued info of a new token.
func NewTokenInfo() TokenInfo {
	return TokenInfo{
		CurrentConfig:    DefaultTokenConfig(),
		PendingConfig:    DefaultTokenConfig(),
		FarmingPrincipal: sdkmath.ZeroInt(),
		TargetAllocation: sdkmath.ZeroInt(),
		StakedPrincipal:  sdkmath.ZeroInt(),
		PendingRedeem:    sdkmath.ZeroInt(),
		UnsettledCredit:  sdkmath.ZeroInt(),
	}
}

// Normalize replaces unset amounts with zero so decoded records are safe to
// do arithmetic on.
func (t *TokenInfo) Normalize() {
	t.CurrentConfig.normalize()
	t.PendingConfig.normalize()
	for _, amt := range []*sdkmath.Int{
		&t.FarmingPrincipal,
		&t.TargetAllocation,
		&t.StakedPrincipal,
		&t.PendingRedeem,
		&t.UnsettledCredit,
	} {
		if amt.IsNil() {
			*amt = sdkmath.ZeroInt()
		}
	}
}

// NetStaked is staked principal net of in-flight redemptions.
func (t TokenInfo) NetStaked() sdkmath.Int {
	return SaturatingSub(t.StakedPrincipal, t.PendingRedeem)
}

// ConfigChanged reports whether a pending config awaits promotion.
func (t TokenInfo) ConfigChanged() bool {
	return !t.CurrentConfig.Equal(t.PendingConfig)
}

// PromotePending makes the pending config current.
func (t *TokenInfo) PromotePending() {
	t.CurrentConfig = t.PendingConfig.Clone()
}

func (t TokenInfo) Validate(maxPools uint32) error {
	if err := t.PendingConfig.Validate(maxPools); err != nil {
		return fmt.Errorf("pending config: %w", err)
	}
	if t.CurrentConfig.IsActive() {
		if err := t.CurrentConfig.Validate(maxPools); err != nil {
			return fmt.Errorf("current config: %w", err)
		}
	}
	for name, amt := range map[string]sdkmath.Int{
		"farming_principal": t.FarmingPrincipal,
		"target_allocation": t.TargetAllocation,
		"staked_principal":  t.StakedPrincipal,
		"pending_redeem":    t.PendingRedeem,
		"unsettled_credit":  t.UnsettledCredit,
	} {
		if amt.IsNil() || amt.IsNegative() {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}
	return nil
}

// WeightedShare is weight * share rounded down.
func WeightedShare(weight sdkmath.LegacyDec, share sdkmath.Int) sdkmath.Int {
	if share.IsNil() || !share.IsPositive() {
		return sdkmath.ZeroInt()
	}
	return weight.MulInt(share).TruncateInt()
}

// TargetAllocation is rate * farming (floored) plus or minus base, floored at
// zero.
func TargetAllocation(farming sdkmath.Int, rate sdkmath.LegacyDec, sign RateSign, base sdkmath.Int) sdkmath.Int {
	scaled := WeightedShare(rate, farming)
	if sign == RateSignSub {
		return SaturatingSub(scaled, base)
	}
	return scaled.Add(base)
}

// SaturatingSub returns a - b, or zero when b >= a.
func SaturatingSub(a, b sdkmath.Int) sdkmath.Int {
	if a.LTE(b) {
		return sdkmath.ZeroInt()
	}
	return a.Sub(b)
}
