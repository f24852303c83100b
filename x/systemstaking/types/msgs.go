package types

import (
	"context"
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MsgServer is the system staking message service.
type MsgServer interface {
	ConfigureToken(context.Context, *MsgConfigureToken) (*MsgConfigureTokenResponse, error)
	DeregisterToken(context.Context, *MsgDeregisterToken) (*MsgDeregisterTokenResponse, error)
	RefreshToken(context.Context, *MsgRefreshToken) (*MsgRefreshTokenResponse, error)
	Payout(context.Context, *MsgPayout) (*MsgPayoutResponse, error)
	SetHalt(context.Context, *MsgSetHalt) (*MsgSetHaltResponse, error)
}

// MsgConfigureToken merges a partial config into the token's pending config.
// It takes effect when the next round begins.
type MsgConfigureToken struct {
	Authority string       `json:"authority"`
	Denom     string       `json:"denom"`
	Update    ConfigUpdate `json:"update"`
}

type MsgConfigureTokenResponse struct {
	Registered    bool        `json:"registered"`
	PendingConfig TokenConfig `json:"pending_config"`
}

func (m MsgConfigureToken) ValidateBasic() error {
	if err := validateAuthority(m.Authority); err != nil {
		return err
	}
	return sdk.ValidateDenom(m.Denom)
}

// MsgDeregisterToken drops a token and all of its bookkeeping.
type MsgDeregisterToken struct {
	Authority string `json:"authority"`
	Denom     string `json:"denom"`
}

type MsgDeregisterTokenResponse struct{}

func (m MsgDeregisterToken) ValidateBasic() error {
	if err := validateAuthority(m.Authority); err != nil {
		return err
	}
	return sdk.ValidateDenom(m.Denom)
}

// MsgRefreshToken promotes the pending config and rebalances immediately,
// ignoring the apply delay.
type MsgRefreshToken struct {
	Authority string `json:"authority"`
	Denom     string `json:"denom"`
}

type MsgRefreshTokenResponse struct {
	Info TokenInfo `json:"info"`
}

func (m MsgRefreshToken) ValidateBasic() error {
	if err := validateAuthority(m.Authority); err != nil {
		return err
	}
	return sdk.ValidateDenom(m.Denom)
}

// MsgPayout forwards accrued yield to the beneficiary now.
type MsgPayout struct {
	Authority string `json:"authority"`
	Denom     string `json:"denom"`
}

type MsgPayoutResponse struct {
	Payout PayoutBreakdown `json:"payout"`
}

func (m MsgPayout) ValidateBasic() error {
	if err := validateAuthority(m.Authority); err != nil {
		return err
	}
	return sdk.ValidateDenom(m.Denom)
}

// PayoutBreakdown is the result of one payout computation.
type PayoutBreakdown struct {
	Denom          string      `json:"denom"`
	YieldDenom     string      `json:"yield_denom"`
	FreeBalance    sdkmath.Int `json:"free_balance"`
	EquivalentBase sdkmath.Int `json:"equivalent_base"`
	Principal      sdkmath.Int `json:"principal"`
	Accrued        sdkmath.Int `json:"accrued"`
	Amount         sdkmath.Int `json:"amount"`
}

func validateAuthority(authority string) error {
	if strings.TrimSpace(authority) == "" {
		return fmt.Errorf("authority cannot be empty")
	}
	return nil
}
