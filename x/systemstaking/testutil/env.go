package testutil

import (
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	storemetrics "cosmossdk.io/store/metrics"
	"cosmossdk.io/store/rootmulti"
	storetypes "cosmossdk.io/store/types"
	tmproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	"github.com/cosmos/cosmos-sdk/std"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/aethelred/systemstaking/x/systemstaking/keeper"
	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

var (
	_ types.BankKeeper    = (*BankKeeper)(nil)
	_ types.FarmingKeeper = (*FarmingKeeper)(nil)
	_ types.YieldKeeper   = (*YieldKeeper)(nil)
)

const (
	bankStoreKey  = "mockbank"
	yieldStoreKey = "mockyield"
)

// Authority is the address allowed to send configuration messages.
var Authority = authtypes.NewModuleAddress("gov").String()

// Beneficiary receives payouts in the default environment.
var Beneficiary = sdk.AccAddress([]byte("systemstaking_payout"))

// Env wires the keeper to in-memory bank, farming and yield modules.
type Env struct {
	Ctx     sdk.Context
	Keeper  keeper.Keeper
	Bank    *BankKeeper
	Farming *FarmingKeeper
	Yield   *YieldKeeper
	Logger  log.Logger
}

// DefaultParams are the genesis params of a new Env: a short round and the
// package beneficiary.
func DefaultParams() types.Params {
	params := types.DefaultParams()
	params.RoundLength = 10
	params.Beneficiary = Beneficiary.String()
	return params
}

// NewEnv builds an environment at block one with genesis applied from
// params.
func NewEnv(params types.Params, logger log.Logger) (*Env, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	moduleKey := storetypes.NewKVStoreKey(types.StoreKey)
	bankKey := storetypes.NewKVStoreKey(bankStoreKey)
	yieldKey := storetypes.NewKVStoreKey(yieldStoreKey)

	db := dbm.NewMemDB()
	cms := rootmulti.NewStore(db, log.NewNopLogger(), storemetrics.NoOpMetrics{})
	for _, key := range []*storetypes.KVStoreKey{moduleKey, bankKey, yieldKey} {
		cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, err
	}

	header := tmproto.Header{
		ChainID: "systemstaking-test-1",
		Height:  1,
		Time:    time.Unix(1_770_000_000, 0).UTC(),
	}
	ctx := sdk.NewContext(cms, header, false, logger)

	reg := codectypes.NewInterfaceRegistry()
	std.RegisterInterfaces(reg)
	cdc := codec.NewProtoCodec(reg)

	bank := NewBankKeeper(runtime.NewKVStoreService(bankKey))
	farming := NewFarmingKeeper()
	yield := NewYieldKeeper(runtime.NewKVStoreService(yieldKey), bank)

	k := keeper.NewKeeper(
		cdc,
		runtime.NewKVStoreService(moduleKey),
		bank,
		farming,
		yield,
		Authority,
	)
	yield.SetHooks(k.Hooks())

	gs := types.DefaultGenesis()
	gs.Params = params
	if err := k.InitGenesis(ctx, gs); err != nil {
		return nil, err
	}

	return &Env{
		Ctx:     ctx,
		Keeper:  k,
		Bank:    bank,
		Farming: farming,
		Yield:   yield,
		Logger:  logger,
	}, nil
}

// Height is the current block height.
func (e *Env) Height() int64 {
	return e.Ctx.BlockHeight()
}

// NextBlock moves to the next height with a fresh event manager, finishes
// due unbondings and runs the module's begin blocker.
func (e *Env) NextBlock() error {
	e.Ctx = e.Ctx.
		WithBlockHeight(e.Ctx.BlockHeight() + 1).
		WithBlockTime(e.Ctx.BlockTime().Add(6 * time.Second)).
		WithEventManager(sdk.NewEventManager())

	if _, err := e.Yield.ProcessUnbonding(e.Ctx); err != nil {
		return err
	}
	return e.Keeper.BeginBlocker(e.Ctx)
}

// AdvanceTo runs blocks until height is reached.
func (e *Env) AdvanceTo(height int64) error {
	for e.Ctx.BlockHeight() < height {
		if err := e.NextBlock(); err != nil {
			return err
		}
	}
	return nil
}

// FundReserve credits the reserve module with base tokens.
func (e *Env) FundReserve(denom string, amount sdkmath.Int) error {
	return e.Bank.MintCoins(e.Ctx, e.Keeper.ReserveAddress(), sdk.NewCoins(sdk.NewCoin(denom, amount)))
}

// FundCustody credits the custodial module account directly.
func (e *Env) FundCustody(denom string, amount sdkmath.Int) error {
	return e.Bank.MintCoins(e.Ctx, e.Keeper.CustodialAddress(), sdk.NewCoins(sdk.NewCoin(denom, amount)))
}

// Balance returns addr's balance of denom.
func (e *Env) Balance(addr sdk.AccAddress, denom string) sdkmath.Int {
	return e.Bank.GetBalance(e.Ctx, addr, denom).Amount
}

// Events returns the events emitted so far in the current block with the
// given type.
func (e *Env) Events(eventType string) []sdk.Event {
	var out []sdk.Event
	for _, ev := range e.Ctx.EventManager().Events() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// EventAttribute returns the value of key on ev.
func EventAttribute(ev sdk.Event, key string) string {
	for _, attr := range ev.Attributes {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}
