package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// DefaultRoundLength is 1500 blocks, five hours at 12s blocks.
	DefaultRoundLength uint64 = 1500

	// DefaultMaxTokens bounds the tracked token registry.
	DefaultMaxTokens uint32 = 500

	// DefaultMaxPools bounds pool ids and weights per token.
	DefaultMaxPools uint32 = 32
)

// Params are set at genesis. RoundLength is read when the round is first
// created; later rotations keep the stored length.
type Params struct {
	RoundLength uint64 `json:"round_length" yaml:"round_length"`
	MaxTokens   uint32 `json:"max_tokens" yaml:"max_tokens"`
	MaxPools    uint32 `json:"max_pools" yaml:"max_pools"`
	Beneficiary string `json:"beneficiary" yaml:"beneficiary"`
}

// DefaultParams returns default module parameters. The beneficiary must be
// supplied by the chain's genesis.
func DefaultParams() Params {
	return Params{
		RoundLength: DefaultRoundLength,
		MaxTokens:   DefaultMaxTokens,
		MaxPools:    DefaultMaxPools,
	}
}

// Validate validates the parameters.
func (p Params) Validate() error {
	if p.RoundLength == 0 {
		return fmt.Errorf("round length must be positive")
	}
	if p.MaxTokens == 0 {
		return fmt.Errorf("max tokens must be positive")
	}
	if p.MaxPools == 0 {
		return fmt.Errorf("max pools must be positive")
	}
	if p.Beneficiary != "" {
		if _, err := sdk.AccAddressFromBech32(p.Beneficiary); err != nil {
			return fmt.Errorf("invalid beneficiary address: %w", err)
		}
	}
	return nil
}

// BeneficiaryAddress decodes the payout receiver.
func (p Params) BeneficiaryAddress() (sdk.AccAddress, error) {
	if p.Beneficiary == "" {
		return nil, fmt.Errorf("beneficiary is not configured")
	}
	return sdk.AccAddressFromBech32(p.Beneficiary)
}
