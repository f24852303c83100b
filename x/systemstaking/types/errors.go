package types

import (
	errorsmod "cosmossdk.io/errors"
)

// x/systemstaking module sentinel errors
var (
	ErrInvalidConfig     = errorsmod.Register(ModuleName, 2, "invalid token config")
	ErrRegistryFull      = errorsmod.Register(ModuleName, 3, "token registry is full")
	ErrNotFound          = errorsmod.Register(ModuleName, 4, "token info not found")
	ErrConversionFailed  = errorsmod.Register(ModuleName, 5, "exchange rate conversion failed")
	ErrInsufficientFunds = errorsmod.Register(ModuleName, 6, "insufficient funds")
	ErrTransferFailed    = errorsmod.Register(ModuleName, 7, "payout transfer failed")
	ErrUnauthorized      = errorsmod.Register(ModuleName, 8, "unauthorized")
	ErrInvalidGenesis    = errorsmod.Register(ModuleName, 9, "invalid genesis state")
	ErrInvalidParams     = errorsmod.Register(ModuleName, 10, "invalid params")
	ErrMintFailed        = errorsmod.Register(ModuleName, 11, "yield mint failed")
	ErrRedeemFailed      = errorsmod.Register(ModuleName, 12, "yield redeem request failed")
	ErrHalted            = errorsmod.Register(ModuleName, 13, "automated processing is halted")
)
