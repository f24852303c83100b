package cmd

import (
	"fmt"
	"sort"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/aethelred/systemstaking/x/systemstaking/testutil"
	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

const envPrefix = "SYSTEMSTAKING_SIM"

// PoolSpec is one farming pool feeding a token.
type PoolSpec struct {
	ID     uint32
	Weight sdkmath.LegacyDec
	Shares sdkmath.Int
}

// TokenSpec is a token registered at the first block.
type TokenSpec struct {
	Denom   string
	Reserve sdkmath.Int
	Update  types.ConfigUpdate
	Pools   []PoolSpec
}

// Step is an action applied after the begin blocker of Height.
type Step struct {
	Height int64
	Denom  string

	Pool      uint32
	Shares    *sdkmath.Int
	YieldRate *sdkmath.LegacyDec
	StakeRate *sdkmath.LegacyDec
	StakeBase *sdkmath.Int
	Block     *bool

	Refresh    bool
	Payout     bool
	Deregister bool

	Halt   string
	Resume bool
}

// Scenario is a fully parsed simulation input.
type Scenario struct {
	Blocks          int64
	Params          types.Params
	YieldRate       sdkmath.LegacyDec
	UnbondingBlocks int64
	Tokens          []TokenSpec
	Steps           []Step
}

// LoadScenario reads a YAML (or JSON/TOML) scenario file. Top-level scalars
// can be overridden with SYSTEMSTAKING_SIM_* environment variables.
func LoadScenario(path string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("blocks", 30)
	v.SetDefault("round_length", 10)
	v.SetDefault("max_tokens", types.DefaultMaxTokens)
	v.SetDefault("max_pools", types.DefaultMaxPools)
	v.SetDefault("beneficiary", testutil.Beneficiary.String())
	v.SetDefault("yield_rate", "1")
	v.SetDefault("unbonding_blocks", 5)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	return parseScenario(v)
}

func parseScenario(v *viper.Viper) (*Scenario, error) {
	sc := &Scenario{
		Blocks:          v.GetInt64("blocks"),
		UnbondingBlocks: v.GetInt64("unbonding_blocks"),
		Params: types.Params{
			RoundLength: v.GetUint64("round_length"),
			MaxTokens:   v.GetUint32("max_tokens"),
			MaxPools:    v.GetUint32("max_pools"),
			Beneficiary: v.GetString("beneficiary"),
		},
	}
	if sc.Blocks < 1 {
		return nil, fmt.Errorf("blocks must be positive, got %d", sc.Blocks)
	}
	if sc.UnbondingBlocks < 0 {
		return nil, fmt.Errorf("unbonding_blocks must not be negative")
	}

	rate, err := toDec(v.Get("yield_rate"))
	if err != nil {
		return nil, fmt.Errorf("yield_rate: %w", err)
	}
	sc.YieldRate = rate

	tokens, err := cast.ToSliceE(v.Get("tokens"))
	if err != nil {
		return nil, fmt.Errorf("tokens: %w", err)
	}
	for i, raw := range tokens {
		token, err := parseToken(raw)
		if err != nil {
			return nil, fmt.Errorf("tokens[%d]: %w", i, err)
		}
		sc.Tokens = append(sc.Tokens, token)
	}

	if v.IsSet("steps") {
		steps, err := cast.ToSliceE(v.Get("steps"))
		if err != nil {
			return nil, fmt.Errorf("steps: %w", err)
		}
		for i, raw := range steps {
			step, err := parseStep(raw)
			if err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
			sc.Steps = append(sc.Steps, step)
		}
	}
	sort.SliceStable(sc.Steps, func(i, j int) bool { return sc.Steps[i].Height < sc.Steps[j].Height })

	return sc, nil
}

func parseToken(raw interface{}) (TokenSpec, error) {
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return TokenSpec{}, err
	}

	var token TokenSpec
	if token.Denom, err = cast.ToStringE(m["denom"]); err != nil || token.Denom == "" {
		return TokenSpec{}, fmt.Errorf("denom is required")
	}
	if token.Reserve, err = toInt(valueOr(m["reserve"], 0)); err != nil {
		return TokenSpec{}, fmt.Errorf("reserve: %w", err)
	}

	delay, err := cast.ToUint64E(m["apply_delay"])
	if err != nil {
		return TokenSpec{}, fmt.Errorf("apply_delay: %w", err)
	}
	stakeRate, err := toDec(m["stake_rate"])
	if err != nil {
		return TokenSpec{}, fmt.Errorf("stake_rate: %w", err)
	}
	sign, err := types.ParseRateSign(cast.ToString(valueOr(m["rate_sign"], string(types.RateSignAdd))))
	if err != nil {
		return TokenSpec{}, err
	}
	stakeBase, err := toInt(valueOr(m["stake_base"], 0))
	if err != nil {
		return TokenSpec{}, fmt.Errorf("stake_base: %w", err)
	}

	pools, err := cast.ToSliceE(m["pools"])
	if err != nil {
		return TokenSpec{}, fmt.Errorf("pools: %w", err)
	}
	update := types.ConfigUpdate{
		ApplyDelay:  &delay,
		StakeRate:   &stakeRate,
		RateSign:    &sign,
		StakeBase:   &stakeBase,
		PoolIDs:     []uint32{},
		PoolWeights: []sdkmath.LegacyDec{},
	}
	for i, rawPool := range pools {
		pool, err := parsePool(rawPool)
		if err != nil {
			return TokenSpec{}, fmt.Errorf("pools[%d]: %w", i, err)
		}
		token.Pools = append(token.Pools, pool)
		update.PoolIDs = append(update.PoolIDs, pool.ID)
		update.PoolWeights = append(update.PoolWeights, pool.Weight)
	}
	token.Update = update

	return token, nil
}

func parsePool(raw interface{}) (PoolSpec, error) {
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return PoolSpec{}, err
	}
	id, err := cast.ToUint32E(m["id"])
	if err != nil {
		return PoolSpec{}, fmt.Errorf("id: %w", err)
	}
	weight, err := toDec(valueOr(m["weight"], "1"))
	if err != nil {
		return PoolSpec{}, fmt.Errorf("weight: %w", err)
	}
	shares, err := toInt(valueOr(m["shares"], 0))
	if err != nil {
		return PoolSpec{}, fmt.Errorf("shares: %w", err)
	}
	return PoolSpec{ID: id, Weight: weight, Shares: shares}, nil
}

func parseStep(raw interface{}) (Step, error) {
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return Step{}, err
	}

	var step Step
	if step.Height, err = cast.ToInt64E(m["height"]); err != nil || step.Height < 1 {
		return Step{}, fmt.Errorf("height must be a positive block number")
	}
	step.Denom = cast.ToString(m["denom"])
	step.Pool = cast.ToUint32(m["pool"])
	step.Refresh = cast.ToBool(m["refresh"])
	step.Payout = cast.ToBool(m["payout"])
	step.Deregister = cast.ToBool(m["deregister"])
	step.Halt = strings.TrimSpace(cast.ToString(m["halt"]))
	step.Resume = cast.ToBool(m["resume"])
	if step.Halt != "" && step.Resume {
		return Step{}, fmt.Errorf("halt and resume at the same height %d", step.Height)
	}

	if v, ok := m["shares"]; ok {
		shares, err := toInt(v)
		if err != nil {
			return Step{}, fmt.Errorf("shares: %w", err)
		}
		step.Shares = &shares
	}
	if v, ok := m["yield_rate"]; ok {
		rate, err := toDec(v)
		if err != nil {
			return Step{}, fmt.Errorf("yield_rate: %w", err)
		}
		step.YieldRate = &rate
	}
	if v, ok := m["stake_rate"]; ok {
		rate, err := toDec(v)
		if err != nil {
			return Step{}, fmt.Errorf("stake_rate: %w", err)
		}
		step.StakeRate = &rate
	}
	if v, ok := m["stake_base"]; ok {
		base, err := toInt(v)
		if err != nil {
			return Step{}, fmt.Errorf("stake_base: %w", err)
		}
		step.StakeBase = &base
	}
	if v, ok := m["block_beneficiary"]; ok {
		block, err := cast.ToBoolE(v)
		if err != nil {
			return Step{}, fmt.Errorf("block_beneficiary: %w", err)
		}
		step.Block = &block
	}

	needsDenom := step.Shares != nil || step.StakeRate != nil || step.StakeBase != nil ||
		step.Refresh || step.Payout || step.Deregister
	if needsDenom && step.Denom == "" {
		return Step{}, fmt.Errorf("denom is required at height %d", step.Height)
	}
	return step, nil
}

// Validate checks the scenario against the module's own rules.
func (sc *Scenario) Validate() error {
	if err := sc.Params.Validate(); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	if !sc.YieldRate.IsPositive() {
		return fmt.Errorf("yield_rate must be positive")
	}
	if uint32(len(sc.Tokens)) > sc.Params.MaxTokens {
		return fmt.Errorf("%d tokens exceeds max_tokens %d", len(sc.Tokens), sc.Params.MaxTokens)
	}
	seen := make(map[string]bool, len(sc.Tokens))
	for _, token := range sc.Tokens {
		if seen[token.Denom] {
			return fmt.Errorf("token %s listed twice", token.Denom)
		}
		seen[token.Denom] = true
		cfg := token.Update.ApplyTo(types.DefaultTokenConfig())
		if err := cfg.Validate(sc.Params.MaxPools); err != nil {
			return fmt.Errorf("token %s: %w", token.Denom, err)
		}
	}
	for _, step := range sc.Steps {
		if step.YieldRate != nil && !step.YieldRate.IsPositive() {
			return fmt.Errorf("step at height %d: yield_rate must be positive", step.Height)
		}
	}
	return nil
}

func valueOr(v interface{}, fallback interface{}) interface{} {
	if v == nil {
		return fallback
	}
	return v
}

func toInt(v interface{}) (sdkmath.Int, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return sdkmath.Int{}, err
	}
	amount, ok := sdkmath.NewIntFromString(strings.TrimSpace(s))
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid integer %q", s)
	}
	if amount.IsNegative() {
		return sdkmath.Int{}, fmt.Errorf("amount %s must not be negative", amount)
	}
	return amount, nil
}

func toDec(v interface{}) (sdkmath.LegacyDec, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	return sdkmath.LegacyNewDecFromStr(strings.TrimSpace(s))
}
