package recon

import (
	"math/big"

	"github.com/jetton-radar/pkg/model"
)

// ClassifyLiquidity inspects a pool's top holder. Liquidity counts as
// locked only when a single holder controls at least the lock-share
// threshold of the pool tokens AND that holder is one of the known
// sentinel addresses.
func (e *Engine) ClassifyLiquidity(pool *model.JettonMaster) model.LiquidityState {
	top := pool.TopTen()
	if len(top) == 0 {
		return model.LiquidityNoHolders
	}
	lead := top[0]
	if !shareAtLeast(lead.Balance, pool.Data.TotalSupply, e.opts.LockShareThreshold) {
		return model.LiquidityNotSafe
	}
	for _, state := range []model.LiquidityState{model.LiquidityBurned, model.LiquidityTonInuLocked} {
		if addr, ok := state.SentinelAddress(); ok && lead.Account.Address == addr {
			return state
		}
	}
	return model.LiquidityNotSafe
}

// RateToken is a heuristic filter, not a financial judgment: one point
// per passing check, 0..4. An unresolvable creator earns no point for the
// creator-share check (unknown is not evidence of a small stake).
//
// LiquidityUndefined counts as locked-equivalent even though the
// classifier never produces it today; see DESIGN.md.
func (e *Engine) RateToken(jetton, pool *model.JettonMaster, totalAirdropPercent float64) int {
	rating := 0
	if jetton.AdminAddress == model.ZeroAddress {
		rating++
	}
	switch e.ClassifyLiquidity(pool) {
	case model.LiquidityBurned, model.LiquidityTonInuLocked, model.LiquidityUndefined:
		rating++
	}
	if jetton.Creator != nil && shareAtMost(jetton.Creator.Balance, jetton.Data.TotalSupply, e.opts.CreatorShareLimit) {
		rating++
	}
	if totalAirdropPercent <= e.opts.AirdropPercentLimit {
		rating++
	}
	return rating
}

// shareAtLeast reports balance/total >= threshold, exactly.
func shareAtLeast(balance, total *big.Int, threshold float64) bool {
	return compareShare(balance, total, threshold) >= 0
}

// shareAtMost reports balance/total <= threshold, exactly.
func shareAtMost(balance, total *big.Int, threshold float64) bool {
	return compareShare(balance, total, threshold) <= 0
}

func compareShare(balance, total *big.Int, threshold float64) int {
	if balance == nil || total == nil || total.Sign() == 0 {
		return -1
	}
	share := new(big.Rat).SetFrac(balance, total)
	return share.Cmp(new(big.Rat).SetFloat64(threshold))
}
