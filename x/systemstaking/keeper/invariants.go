package keeper

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/aethelred/systemstaking/x/systemstaking/types"
)

// RegisterInvariants registers all module invariants with the invariant registry.
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "registry-consistency", RegistryConsistencyInvariant(k))
	ir.RegisterRoute(types.ModuleName, "config-well-formed", ConfigWellFormedInvariant(k))
}

// AllInvariants runs all invariants of the systemstaking module.
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		invariants := []sdk.Invariant{
			RegistryConsistencyInvariant(k),
			ConfigWellFormedInvariant(k),
		}

		for _, inv := range invariants {
			if msg, broken := inv(ctx); broken {
				return msg, broken
			}
		}
		return "", false
	}
}

// RegistryConsistencyInvariant checks that the registry has no duplicates,
// stays within MaxTokens and matches the set of stored token infos exactly.
func RegistryConsistencyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		broken := false

		params, err := k.GetParams(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "registry-consistency", err.Error()), true
		}
		denoms, err := k.TrackedTokens(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "registry-consistency", err.Error()), true
		}

		if uint32(len(denoms)) > params.MaxTokens {
			msg += fmt.Sprintf("INVARIANT BROKEN: %d tracked tokens exceeds max %d\n", len(denoms), params.MaxTokens)
			broken = true
		}

		listed := make(map[string]struct{}, len(denoms))
		for _, denom := range denoms {
			if _, dup := listed[denom]; dup {
				msg += fmt.Sprintf("INVARIANT BROKEN: token %s listed twice\n", denom)
				broken = true
			}
			listed[denom] = struct{}{}

			has, err := k.Tokens.Has(ctx, denom)
			if err != nil || !has {
				msg += fmt.Sprintf("INVARIANT BROKEN: listed token %s has no info\n", denom)
				broken = true
			}
		}

		_ = k.Tokens.Walk(ctx, nil, func(denom string, _ string) (bool, error) {
			if _, ok := listed[denom]; !ok {
				msg += fmt.Sprintf("INVARIANT BROKEN: token info %s is not in the registry\n", denom)
				broken = true
			}
			return false, nil
		})

		if broken {
			return sdk.FormatInvariant(types.ModuleName, "registry-consistency", msg), true
		}
		return "", false
	}
}

// ConfigWellFormedInvariant checks every stored pending config, and every
// activated current config, against the validation rules.
func ConfigWellFormedInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		broken := false

		params, err := k.GetParams(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "config-well-formed", err.Error()), true
		}

		_ = k.Tokens.Walk(ctx, nil, func(denom string, raw string) (bool, error) {
			info, err := decodeTokenInfo(raw)
			if err != nil {
				msg += fmt.Sprintf("INVARIANT BROKEN: token %s: %v\n", denom, err)
				broken = true
				return false, nil
			}
			if err := info.Validate(params.MaxPools); err != nil {
				msg += fmt.Sprintf("INVARIANT BROKEN: token %s: %v\n", denom, err)
				broken = true
			}
			return false, nil
		})

		if broken {
			return sdk.FormatInvariant(types.ModuleName, "config-well-formed", msg), true
		}
		return "", false
	}
}

// PendingWithinPrincipalInvariant reports tokens whose in-flight redemptions
// exceed the staked principal. It is not registered as a route: NetStaked
// clamps such a token to zero and the rebalance logs it.
func PendingWithinPrincipalInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		broken := false

		_ = k.Tokens.Walk(ctx, nil, func(denom string, raw string) (bool, error) {
			info, err := decodeTokenInfo(raw)
			if err != nil {
				return false, nil
			}
			if info.PendingRedeem.GT(info.StakedPrincipal) {
				msg += fmt.Sprintf("INVARIANT BROKEN: token %s pending redeem %s exceeds staked principal %s\n",
					denom, info.PendingRedeem, info.StakedPrincipal)
				broken = true
			}
			return false, nil
		})

		if broken {
			return sdk.FormatInvariant(types.ModuleName, "pending-within-principal", msg), true
		}
		return "", false
	}
}
