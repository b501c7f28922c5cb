package recon

import (
	"context"
	"fmt"
	"sort"

	"github.com/jetton-radar/pkg/model"
)

// PoolCandidate is one new pool that passed the discovery funnel.
type PoolCandidate struct {
	CreatedAt    string
	PoolAddress  string
	TokenAddress string
}

// ListNewPoolCandidates walks pages 1..pages of newly created pools and
// keeps those with enough valuation and a sane reserve/valuation ratio.
// Page-internal ordering is preserved.
func (e *Engine) ListNewPoolCandidates(ctx context.Context, pages int) ([]PoolCandidate, error) {
	var out []PoolCandidate
	for page := 1; page <= pages; page++ {
		stats, err := e.market.NewPools(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("new pools page %d: %w", page, err)
		}
		for _, p := range stats {
			if p.FDVUSD.Cmp(e.opts.MinFDVUSD) < 0 {
				continue
			}
			if p.ReserveUSD.Cmp(p.FDVUSD.Mul(e.opts.MinReserveRatio)) < 0 {
				continue
			}
			out = append(out, PoolCandidate{
				CreatedAt:    p.CreatedAt,
				PoolAddress:  p.Address,
				TokenAddress: p.TokenAddress,
			})
		}
	}
	return out, nil
}

// JettonPools resolves every pool trading the jetton, highest valuation
// first. The market API does not sort; we do.
func (e *Engine) JettonPools(ctx context.Context, token string) ([]*model.JettonMaster, error) {
	stats, err := e.market.TokenPools(ctx, token)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].FDVUSD.Cmp(stats[j].FDVUSD) > 0
	})

	pools := make([]*model.JettonMaster, 0, len(stats))
	for _, p := range stats {
		master, err := e.ResolveJettonMaster(ctx, p.Address, KindPool)
		if err != nil {
			return nil, err
		}
		pools = append(pools, master)
	}
	return pools, nil
}

// Lookup is the full evaluation of one jetton: the master, its pools
// (valuation-descending), and the airdrop reconciliation.
type Lookup struct {
	Master         *model.JettonMaster
	Pools          []*model.JettonMaster
	Airdrop        *AirdropReport
	AirdropPercent float64
}

// LookupJetton performs the user-facing one-shot evaluation used by the
// CLI --info path and bot lookups.
func (e *Engine) LookupJetton(ctx context.Context, address string) (*Lookup, error) {
	master, err := e.ResolveJettonMaster(ctx, address, KindToken)
	if err != nil {
		return nil, err
	}
	pools, err := e.JettonPools(ctx, address)
	if err != nil {
		return nil, err
	}
	report, err := e.AttributeAirdrops(ctx, master)
	if err != nil {
		return nil, err
	}
	return &Lookup{
		Master:         master,
		Pools:          pools,
		Airdrop:        report,
		AirdropPercent: master.Holding(report.Total),
	}, nil
}
