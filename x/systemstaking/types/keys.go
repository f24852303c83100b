package types

const (
	// ModuleName is the system staking module namespace. The module account
	// derived from it is the custodial account holding base and yield tokens.
	ModuleName = "systemstaking"

	// ReserveModuleName is the pre-funded module account that backs mint
	// credits. Completed redemptions return their base tokens here.
	ReserveModuleName = "systemstaking_reserve"

	// StoreKey is the module KV store key.
	StoreKey = ModuleName

	// RouterKey is the module message routing key.
	RouterKey = ModuleName
)

var (
	// ParamsKey stores module parameters.
	ParamsKey = []byte{0x01}

	// RoundKey stores the current round.
	RoundKey = []byte{0x02}

	// TokenListKey stores the ordered list of tracked denoms.
	TokenListKey = []byte{0x03}

	// TokenInfoKeyPrefix stores per-denom token info records.
	TokenInfoKeyPrefix = []byte{0x04}

	// HaltStateKey stores the active halt state.
	HaltStateKey = []byte{0x05}
)
