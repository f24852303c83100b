package types

// Event types
const (
	EventTypeNewRound           = "systemstaking_new_round"
	EventTypeTokenConfigChanged = "systemstaking_token_config_changed"
	EventTypeTokenDeregistered  = "systemstaking_token_deregistered"
	EventTypeTokenInfoRefreshed = "systemstaking_token_info_refreshed"
	EventTypeMintSuccess        = "systemstaking_mint_success"
	EventTypeMintFailed         = "systemstaking_mint_failed"
	EventTypeRedeemRequested    = "systemstaking_redeem_requested"
	EventTypeRedeemFailed       = "systemstaking_redeem_failed"
	EventTypeWithdrawSuccess    = "systemstaking_withdraw_success"
	EventTypeWithdrawFailed     = "systemstaking_withdraw_failed"
	EventTypeSettlementSwept    = "systemstaking_settlement_swept"
	EventTypePayout             = "systemstaking_payout"
	EventTypePayoutFailed       = "systemstaking_payout_failed"
	EventTypeYieldTokenNotFound = "systemstaking_yield_token_not_found"
	EventTypeHalted             = "systemstaking_halted"
	EventTypeResumed            = "systemstaking_resumed"
)

// Attribute keys
const (
	AttributeKeyDenom            = "denom"
	AttributeKeyYieldDenom       = "yield_denom"
	AttributeKeyAmount           = "amount"
	AttributeKeyYieldAmount      = "yield_amount"
	AttributeKeyFarmingPrincipal = "farming_principal"
	AttributeKeyTargetAllocation = "target_allocation"
	AttributeKeyStakedPrincipal  = "staked_principal"
	AttributeKeyPendingRedeem    = "pending_redeem"
	AttributeKeyUnsettledCredit  = "unsettled_credit"
	AttributeKeyRoundIndex       = "round_index"
	AttributeKeyRoundStart       = "round_start"
	AttributeKeyRoundLength      = "round_length"
	AttributeKeyApplyDelay       = "apply_delay"
	AttributeKeyStakeRate        = "stake_rate"
	AttributeKeyRateSign         = "rate_sign"
	AttributeKeyStakeBase        = "stake_base"
	AttributeKeyPoolIDs          = "pool_ids"
	AttributeKeyPoolWeights      = "pool_weights"
	AttributeKeyFrom             = "from"
	AttributeKeyTo               = "to"
	AttributeKeyFreeBalance      = "free_balance"
	AttributeKeyEquivalentBase   = "equivalent_base"
	AttributeKeyReason           = "reason"
	AttributeKeyRequester        = "requester"
)
