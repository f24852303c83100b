package keeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"slices"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/store"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

// ModuleConsensusVersion is the current state layout version.
const ModuleConsensusVersion = 1

// Keeper owns the round, the token registry and per-token bookkeeping of the
// system staking engine.
type Keeper struct {
	cdc          codec.BinaryCodec
	storeService store.KVStoreService
	authority    string

	bankKeeper    types.BankKeeper
	farmingKeeper types.FarmingKeeper
	yieldKeeper   types.YieldKeeper

	Params    collections.Item[string]
	Round     collections.Item[string]
	TokenList collections.Item[string]
	Tokens    collections.Map[string, string]
	HaltState collections.Item[string]
}

// NewKeeper creates a new system staking keeper. Records are stored as JSON,
// so cdc is not read; it is accepted for signature parity with the other
// app keepers.
func NewKeeper(
	cdc codec.BinaryCodec,
	storeService store.KVStoreService,
	bankKeeper types.BankKeeper,
	farmingKeeper types.FarmingKeeper,
	yieldKeeper types.YieldKeeper,
	authority string,
) Keeper {
	sb := collections.NewSchemaBuilder(storeService)

	k := Keeper{
		cdc:           cdc,
		storeService:  storeService,
		authority:     authority,
		bankKeeper:    bankKeeper,
		farmingKeeper: farmingKeeper,
		yieldKeeper:   yieldKeeper,
		Params: collections.NewItem(
			sb,
			collections.NewPrefix(types.ParamsKey),
			"params",
			collections.StringValue,
		),
		Round: collections.NewItem(
			sb,
			collections.NewPrefix(types.RoundKey),
			"round",
			collections.StringValue,
		),
		TokenList: collections.NewItem(
			sb,
			collections.NewPrefix(types.TokenListKey),
			"token_list",
			collections.StringValue,
		),
		Tokens: collections.NewMap(
			sb,
			collections.NewPrefix(types.TokenInfoKeyPrefix),
			"tokens",
			collections.StringKey,
			collections.StringValue,
		),
		HaltState: collections.NewItem(
			sb,
			collections.NewPrefix(types.HaltStateKey),
			"halt_state",
			collections.StringValue,
		),
	}

	if _, err := sb.Build(); err != nil {
		panic(err)
	}

	return k
}

// GetAuthority returns the keeper authority address.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// Logger returns a module-scoped logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	if sdkCtx, ok := unwrapSDKContext(ctx); ok {
		return sdkCtx.Logger().With("module", "x/"+types.ModuleName)
	}
	return log.NewNopLogger()
}

// CustodialAddress is the module account holding base and yield tokens.
func (k Keeper) CustodialAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(types.ModuleName)
}

// ReserveAddress is the module account backing mint credits.
func (k Keeper) ReserveAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(types.ReserveModuleName)
}

// GetParams returns the module params, falling back to defaults before
// genesis has run.
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	raw, err := k.Params.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		return types.DefaultParams(), nil
	}
	if err != nil {
		return types.Params{}, err
	}
	var params types.Params
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return types.Params{}, fmt.Errorf("decode params: %w", err)
	}
	return params, nil
}

func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidParams, err.Error())
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return k.Params.Set(ctx, string(raw))
}

// GetTokenInfo loads the bookkeeping of a tracked token.
func (k Keeper) GetTokenInfo(ctx context.Context, denom string) (types.TokenInfo, error) {
	raw, err := k.Tokens.Get(ctx, denom)
	if errors.Is(err, collections.ErrNotFound) {
		return types.TokenInfo{}, errorsmod.Wrapf(types.ErrNotFound, "token %s", denom)
	}
	if err != nil {
		return types.TokenInfo{}, err
	}
	return decodeTokenInfo(raw)
}

func (k Keeper) SetTokenInfo(ctx context.Context, denom string, info types.TokenInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return k.Tokens.Set(ctx, denom, string(raw))
}

func decodeTokenInfo(raw string) (types.TokenInfo, error) {
	var info types.TokenInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return types.TokenInfo{}, fmt.Errorf("decode token info: %w", err)
	}
	info.Normalize()
	return info, nil
}

// TrackedTokens returns the registry in insertion order.
func (k Keeper) TrackedTokens(ctx context.Context) ([]string, error) {
	raw, err := k.TokenList.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	var denoms []string
	if err := json.Unmarshal([]byte(raw), &denoms); err != nil {
		return nil, fmt.Errorf("decode token list: %w", err)
	}
	return denoms, nil
}

func (k Keeper) setTrackedTokens(ctx context.Context, denoms []string) error {
	if denoms == nil {
		denoms = []string{}
	}
	raw, err := json.Marshal(denoms)
	if err != nil {
		return err
	}
	return k.TokenList.Set(ctx, string(raw))
}

// IsTracked reports registry membership.
func (k Keeper) IsTracked(ctx context.Context, denom string) (bool, error) {
	denoms, err := k.TrackedTokens(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(denoms, denom), nil
}

func unwrapSDKContext(ctx context.Context) (sdk.Context, bool) {
	if ctx == nil {
		return sdk.Context{}, false
	}
	if sdkCtx, ok := ctx.(sdk.Context); ok {
		return sdkCtx, true
	}
	if val := ctx.Value(sdk.SdkContextKey); val != nil {
		if sdkCtx, ok := val.(sdk.Context); ok {
			return sdkCtx, true
		}
	}
	return sdk.Context{}, false
}

func blockHeight(ctx context.Context) uint64 {
	if sdkCtx, ok := unwrapSDKContext(ctx); ok && sdkCtx.BlockHeight() > 0 {
		return uint64(sdkCtx.BlockHeight())
	}
	return 0
}

func emitEvent(ctx context.Context, event sdk.Event) {
	sdkCtx, ok := unwrapSDKContext(ctx)
	if !ok {
		return
	}
	if em := sdkCtx.EventManager(); em != nil {
		em.EmitEvent(event)
	}
}

// bookkeepingAttributes are shared by the mint, redeem and withdraw events.
func bookkeepingAttributes(denom string, amount sdkmath.Int, info types.TokenInfo) []sdk.Attribute {
	return []sdk.Attribute{
		sdk.NewAttribute(types.AttributeKeyDenom, denom),
		sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
		sdk.NewAttribute(types.AttributeKeyFarmingPrincipal, info.FarmingPrincipal.String()),
		sdk.NewAttribute(types.AttributeKeyTargetAllocation, info.TargetAllocation.String()),
		sdk.NewAttribute(types.AttributeKeyStakedPrincipal, info.StakedPrincipal.String()),
		sdk.NewAttribute(types.AttributeKeyPendingRedeem, info.PendingRedeem.String()),
	}
}

func toFloat32(amount sdkmath.Int) float32 {
	if amount.IsNil() {
		return 0
	}
	f, _ := new(big.Float).SetInt(amount.BigInt()).Float32()
	return f
}
