package types

import (
	"fmt"
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

// RateSign selects whether the stake base is added to or subtracted from the
// rate-scaled farming principal.
type RateSign string

const (
	RateSignAdd RateSign = "add"
	RateSignSub RateSign = "sub"
)

// ParseRateSign accepts "add"/"sub" and the "+"/"-" shorthands.
func ParseRateSign(s string) (RateSign, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add", "+":
		return RateSignAdd, nil
	case "sub", "-":
		return RateSignSub, nil
	default:
		return "", fmt.Errorf("unknown rate sign %q", s)
	}
}

func (s RateSign) IsValid() bool {
	return s == RateSignAdd || s == RateSignSub
}

// TokenConfig drives the target allocation of one tracked token.
type TokenConfig struct {
	ApplyDelay  uint64              `json:"apply_delay"`
	StakeRate   sdkmath.LegacyDec   `json:"stake_rate"`
	RateSign    RateSign            `json:"rate_sign"`
	StakeBase   sdkmath.Int         `json:"stake_base"`
	PoolIDs     []uint32            `json:"pool_ids"`
	PoolWeights []sdkmath.LegacyDec `json:"pool_weights"`
}

// DefaultTokenConfig is the zero-valued config of a freshly registered token.
func DefaultTokenConfig() TokenConfig {
	return TokenConfig{
		StakeRate:   sdkmath.LegacyZeroDec(),
		RateSign:    RateSignAdd,
		StakeBase:   sdkmath.ZeroInt(),
		PoolIDs:     []uint32{},
		PoolWeights: []sdkmath.LegacyDec{},
	}
}

// Validate checks the config against the pool bound. Pool ids and weights
// must pair up one to one.
func (c TokenConfig) Validate(maxPools uint32) error {
	if c.ApplyDelay == 0 {
		return errorsmod.Wrap(ErrInvalidConfig, "apply delay must be positive")
	}
	if !isFraction(c.StakeRate) {
		return errorsmod.Wrapf(ErrInvalidConfig, "stake rate must be within [0, 1], got %s", c.StakeRate)
	}
	if !c.RateSign.IsValid() {
		return errorsmod.Wrapf(ErrInvalidConfig, "unknown rate sign %q", c.RateSign)
	}
	if c.StakeBase.IsNil() || c.StakeBase.IsNegative() {
		return errorsmod.Wrap(ErrInvalidConfig, "stake base must be non-negative")
	}
	if len(c.PoolIDs) == 0 || len(c.PoolWeights) == 0 {
		return errorsmod.Wrap(ErrInvalidConfig, "pool ids and pool weights must not be empty")
	}
	if uint32(len(c.PoolIDs)) > maxPools || uint32(len(c.PoolWeights)) > maxPools {
		return errorsmod.Wrapf(ErrInvalidConfig, "at most %d pools per token", maxPools)
	}
	if len(c.PoolIDs) != len(c.PoolWeights) {
		return errorsmod.Wrapf(ErrInvalidConfig, "%d pool ids but %d pool weights", len(c.PoolIDs), len(c.PoolWeights))
	}
	for i, w := range c.PoolWeights {
		if !isFraction(w) {
			return errorsmod.Wrapf(ErrInvalidConfig, "pool weight %d must be within [0, 1], got %s", i, w)
		}
	}
	return nil
}

// IsActive reports whether the config has ever been promoted from pending.
func (c TokenConfig) IsActive() bool {
	return c.ApplyDelay > 0
}

// Equal compares two configs field by field.
func (c TokenConfig) Equal(o TokenConfig) bool {
	if c.ApplyDelay != o.ApplyDelay || c.RateSign != o.RateSign {
		return false
	}
	if !decEqual(c.StakeRate, o.StakeRate) || !intEqual(c.StakeBase, o.StakeBase) {
		return false
	}
	if len(c.PoolIDs) != len(o.PoolIDs) || len(c.PoolWeights) != len(o.PoolWeights) {
		return false
	}
	for i := range c.PoolIDs {
		if c.PoolIDs[i] != o.PoolIDs[i] {
			return false
		}
	}
	for i := range c.PoolWeights {
		if !decEqual(c.PoolWeights[i], o.PoolWeights[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (c TokenConfig) Clone() TokenConfig {
	out := c
	out.PoolIDs = append([]uint32{}, c.PoolIDs...)
	out.PoolWeights = make([]sdkmath.LegacyDec, len(c.PoolWeights))
	for i, w := range c.PoolWeights {
		out.PoolWeights[i] = w.Clone()
	}
	return out
}

func (c *TokenConfig) normalize() {
	if c.StakeRate.IsNil() {
		c.StakeRate = sdkmath.LegacyZeroDec()
	}
	if c.StakeBase.IsNil() {
		c.StakeBase = sdkmath.ZeroInt()
	}
	if c.RateSign == "" {
		c.RateSign = RateSignAdd
	}
	if c.PoolIDs == nil {
		c.PoolIDs = []uint32{}
	}
	if c.PoolWeights == nil {
		c.PoolWeights = []sdkmath.LegacyDec{}
	}
}

// ConfigUpdate is a partial config. Nil fields are left untouched when the
// update is merged into a pending config.
type ConfigUpdate struct {
	ApplyDelay  *uint64             `json:"apply_delay,omitempty"`
	StakeRate   *sdkmath.LegacyDec  `json:"stake_rate,omitempty"`
	RateSign    *RateSign           `json:"rate_sign,omitempty"`
	StakeBase   *sdkmath.Int        `json:"stake_base,omitempty"`
	PoolIDs     []uint32            `json:"pool_ids,omitempty"`
	PoolWeights []sdkmath.LegacyDec `json:"pool_weights,omitempty"`
}

// ApplyTo merges the supplied fields into base and returns the result.
func (u ConfigUpdate) ApplyTo(base TokenConfig) TokenConfig {
	out := base.Clone()
	if u.ApplyDelay != nil {
		out.ApplyDelay = *u.ApplyDelay
	}
	if u.StakeRate != nil {
		out.StakeRate = u.StakeRate.Clone()
	}
	if u.RateSign != nil {
		out.RateSign = *u.RateSign
	}
	if u.StakeBase != nil {
		out.StakeBase = *u.StakeBase
	}
	if u.PoolIDs != nil {
		out.PoolIDs = append([]uint32{}, u.PoolIDs...)
	}
	if u.PoolWeights != nil {
		out.PoolWeights = make([]sdkmath.LegacyDec, len(u.PoolWeights))
		for i, w := range u.PoolWeights {
			out.PoolWeights[i] = w.Clone()
		}
	}
	return out
}

// IsEmpty reports whether no field is supplied.
func (u ConfigUpdate) IsEmpty() bool {
	return u.ApplyDelay == nil && u.StakeRate == nil && u.RateSign == nil &&
		u.StakeBase == nil && u.PoolIDs == nil && u.PoolWeights == nil
}

func isFraction(d sdkmath.LegacyDec) bool {
	return !d.IsNil() && !d.IsNegative() && d.LTE(sdkmath.LegacyOneDec())
}

func decEqual(a, b sdkmath.LegacyDec) bool {
	if a.IsNil() || b.IsNil() {
		return a.IsNil() == b.IsNil()
	}
	return a.Equal(b)
}

func intEqual(a, b sdkmath.Int) bool {
	if a.IsNil() || b.IsNil() {
		return a.IsNil() == b.IsNil()
	}
	return a.Equal(b)
}
