package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// GenesisToken is one tracked token in registry order.
type GenesisToken struct {
	Denom string    `json:"denom"`
	Info  TokenInfo `json:"info"`
}

// GenesisState defines the system staking module's genesis state.
type GenesisState struct {
	Params Params         `json:"params"`
	Round  *Round         `json:"round,omitempty"`
	Tokens []GenesisToken `json:"tokens"`
	Halt   HaltState      `json:"halt"`
}

// DefaultGenesis returns the default genesis state.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params: DefaultParams(),
		Tokens: []GenesisToken{},
	}
}

// Validate performs basic genesis state validation.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGenesis, err)
	}
	if gs.Round != nil {
		if err := gs.Round.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidGenesis, err)
		}
	}
	if err := gs.Halt.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGenesis, err)
	}
	if uint32(len(gs.Tokens)) > gs.Params.MaxTokens {
		return fmt.Errorf("%w: %d tokens exceeds max %d", ErrInvalidGenesis, len(gs.Tokens), gs.Params.MaxTokens)
	}

	seen := make(map[string]struct{}, len(gs.Tokens))
	for _, token := range gs.Tokens {
		if err := sdk.ValidateDenom(token.Denom); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidGenesis, err)
		}
		if _, dup := seen[token.Denom]; dup {
			return fmt.Errorf("%w: duplicate token %s", ErrInvalidGenesis, token.Denom)
		}
		seen[token.Denom] = struct{}{}

		info := token.Info
		info.Normalize()
		if err := info.Validate(gs.Params.MaxPools); err != nil {
			return fmt.Errorf("%w: token %s: %v", ErrInvalidGenesis, token.Denom, err)
		}
	}
	return nil
}
