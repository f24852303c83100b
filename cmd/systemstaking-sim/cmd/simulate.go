package cmd

import (
	"fmt"
	"sort"
	"strings"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/aethelred/systemstaking/x/systemstaking/keeper"
	"github.com/aethelred/systemstaking/x/systemstaking/testutil"
	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

// Snapshot is the bookkeeping of one token after a block in which something
// happened to it.
type Snapshot struct {
	Height    int64
	Round     uint32
	Denom     string
	Info      types.TokenInfo
	PaidOut   sdkmath.Int
	EventTags []string
}

// TokenSummary is the state of one token when the scenario ends.
type TokenSummary struct {
	Denom       string
	Tracked     bool
	Info        types.TokenInfo
	CustodyBase sdkmath.Int
	CustodyYld  sdkmath.Int
	Reserve     sdkmath.Int
	PaidOut     sdkmath.Int
}

// Result is everything a simulation produced.
type Result struct {
	FinalHeight int64
	FinalRound  types.Round
	Trace       []Snapshot
	Tokens      []TokenSummary
	EventCounts map[string]int
	StepErrors  []string
}

// Simulate replays sc from block one. Failed steps are recorded, not fatal,
// the same way a rejected transaction does not halt a chain.
func Simulate(sc *Scenario, logger log.Logger, refresh bool) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	env, err := testutil.NewEnv(sc.Params, logger)
	if err != nil {
		return nil, err
	}
	env.Yield.Rate = sc.YieldRate
	env.Yield.UnbondingBlocks = sc.UnbondingBlocks

	srv := keeper.NewMsgServerImpl(env.Keeper)
	res := &Result{EventCounts: make(map[string]int)}

	denoms := make([]string, 0, len(sc.Tokens))
	for _, token := range sc.Tokens {
		denoms = append(denoms, token.Denom)
		for _, pool := range token.Pools {
			env.Farming.SetShares(pool.ID, token.Denom, pool.Shares)
		}
		if token.Reserve.IsPositive() {
			if err := env.FundReserve(token.Denom, token.Reserve); err != nil {
				return nil, err
			}
		}
		if _, err := srv.ConfigureToken(env.Ctx, &types.MsgConfigureToken{
			Authority: testutil.Authority,
			Denom:     token.Denom,
			Update:    token.Update,
		}); err != nil {
			return nil, fmt.Errorf("register %s: %w", token.Denom, err)
		}
		if refresh {
			if _, err := srv.RefreshToken(env.Ctx, &types.MsgRefreshToken{
				Authority: testutil.Authority,
				Denom:     token.Denom,
			}); err != nil {
				return nil, fmt.Errorf("refresh %s: %w", token.Denom, err)
			}
		}
	}

	next := 0
	for {
		for next < len(sc.Steps) && sc.Steps[next].Height <= env.Height() {
			if sc.Steps[next].Height == env.Height() {
				if err := applyStep(env, srv, sc.Steps[next]); err != nil {
					res.StepErrors = append(res.StepErrors, fmt.Sprintf("height %d: %v", env.Height(), err))
				}
			}
			next++
		}
		if err := res.record(env, denoms); err != nil {
			return nil, err
		}
		if env.Height() >= sc.Blocks {
			break
		}
		if err := env.NextBlock(); err != nil {
			return nil, err
		}
	}

	round, err := env.Keeper.GetRound(env.Ctx)
	if err != nil {
		return nil, err
	}
	res.FinalHeight = env.Height()
	res.FinalRound = round

	for _, denom := range denoms {
		summary := TokenSummary{
			Denom:       denom,
			Info:        types.NewTokenInfo(),
			CustodyBase: env.Balance(env.Keeper.CustodialAddress(), denom),
			CustodyYld:  env.Balance(env.Keeper.CustodialAddress(), testutil.YieldPrefix+denom),
			Reserve:     env.Balance(env.Keeper.ReserveAddress(), denom),
			PaidOut:     env.Balance(testutil.Beneficiary, testutil.YieldPrefix+denom),
		}
		if info, err := env.Keeper.GetTokenInfo(env.Ctx, denom); err == nil {
			summary.Tracked = true
			summary.Info = info
		}
		res.Tokens = append(res.Tokens, summary)
	}

	return res, nil
}

func applyStep(env *testutil.Env, srv types.MsgServer, step Step) error {
	if step.Shares != nil {
		env.Farming.SetShares(step.Pool, step.Denom, *step.Shares)
	}
	if step.YieldRate != nil {
		env.Yield.Rate = *step.YieldRate
	}
	if step.Block != nil {
		if *step.Block {
			env.Bank.BlockRecipient(testutil.Beneficiary)
		} else {
			env.Bank.UnblockRecipient(testutil.Beneficiary)
		}
	}

	if step.Halt != "" || step.Resume {
		if _, err := srv.SetHalt(env.Ctx, &types.MsgSetHalt{
			Authority: testutil.Authority,
			Halted:    step.Halt != "",
			Reason:    step.Halt,
		}); err != nil {
			return err
		}
	}

	if step.StakeRate != nil || step.StakeBase != nil {
		update := types.ConfigUpdate{StakeRate: step.StakeRate, StakeBase: step.StakeBase}
		if _, err := srv.ConfigureToken(env.Ctx, &types.MsgConfigureToken{
			Authority: testutil.Authority,
			Denom:     step.Denom,
			Update:    update,
		}); err != nil {
			return err
		}
	}
	if step.Refresh {
		if _, err := srv.RefreshToken(env.Ctx, &types.MsgRefreshToken{Authority: testutil.Authority, Denom: step.Denom}); err != nil {
			return err
		}
	}
	if step.Payout {
		if _, err := srv.Payout(env.Ctx, &types.MsgPayout{Authority: testutil.Authority, Denom: step.Denom}); err != nil {
			return err
		}
	}
	if step.Deregister {
		if _, err := srv.DeregisterToken(env.Ctx, &types.MsgDeregisterToken{Authority: testutil.Authority, Denom: step.Denom}); err != nil {
			return err
		}
	}
	return nil
}

// record tallies the block's events and snapshots every token they touched.
func (r *Result) record(env *testutil.Env, denoms []string) error {
	touched := make(map[string][]string)
	for _, ev := range env.Ctx.EventManager().Events() {
		r.EventCounts[ev.Type]++
		if denom := testutil.EventAttribute(ev, types.AttributeKeyDenom); denom != "" {
			touched[denom] = append(touched[denom], shortEventName(ev))
		}
	}
	if len(touched) == 0 {
		return nil
	}

	round, err := env.Keeper.GetRound(env.Ctx)
	if err != nil {
		return err
	}
	for _, denom := range denoms {
		tags, ok := touched[denom]
		if !ok {
			continue
		}
		info, err := env.Keeper.GetTokenInfo(env.Ctx, denom)
		if err != nil {
			info = types.NewTokenInfo()
		}
		r.Trace = append(r.Trace, Snapshot{
			Height:    env.Height(),
			Round:     round.Index,
			Denom:     denom,
			Info:      info,
			PaidOut:   env.Balance(testutil.Beneficiary, testutil.YieldPrefix+denom),
			EventTags: tags,
		})
	}
	return nil
}

// SortedEventTypes lists the event types seen, most frequent first.
func (r *Result) SortedEventTypes() []string {
	out := make([]string, 0, len(r.EventCounts))
	for t := range r.EventCounts {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if r.EventCounts[out[i]] != r.EventCounts[out[j]] {
			return r.EventCounts[out[i]] > r.EventCounts[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

func shortEventName(ev sdk.Event) string {
	return strings.TrimPrefix(ev.Type, types.ModuleName+"_")
}
