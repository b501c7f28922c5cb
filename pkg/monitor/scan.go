// Package monitor runs the discovery scan: new pools in, evaluated and
// rated tokens out, results reported and recorded in the ledger.
package monitor

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/jetton-radar/pkg/ledger"
	"github.com/jetton-radar/pkg/model"
	"github.com/jetton-radar/pkg/recon"
	"github.com/jetton-radar/pkg/report"
)

// Engine is the slice of the reconciliation engine the scan loop needs.
type Engine interface {
	ListNewPoolCandidates(ctx context.Context, pages int) ([]recon.PoolCandidate, error)
	ResolveJettonMaster(ctx context.Context, address string, kind recon.Kind) (*model.JettonMaster, error)
	AttributeAirdrops(ctx context.Context, jetton *model.JettonMaster) (*recon.AirdropReport, error)
	ClassifyLiquidity(pool *model.JettonMaster) model.LiquidityState
	RateToken(jetton, pool *model.JettonMaster, totalAirdropPercent float64) int
}

// Sender delivers chat reports. When disabled, reports go to Out.
type Sender interface {
	Enabled() bool
	Send(ctx context.Context, text string) error
}

type Monitor struct {
	engine     Engine
	ledger     *ledger.Ledger
	sender     Sender
	passRating int

	// Out receives console reports; defaults to stdout.
	Out io.Writer
}

func New(engine Engine, led *ledger.Ledger, sender Sender, passRating int) *Monitor {
	return &Monitor{
		engine:     engine,
		ledger:     led,
		sender:     sender,
		passRating: passRating,
		Out:        os.Stdout,
	}
}

// ScanNewPools evaluates one batch of newly created pools. One bad pool
// never aborts the batch: its error is logged, the pool is recorded with
// a failing flag, and the loop moves on. Cancellation stops launching new
// resolutions but the ledger is still persisted for work already done.
func (m *Monitor) ScanNewPools(ctx context.Context, pages int) error {
	log.Info().Int("pages", pages).Msg("🔎 scanning new pools")
	candidates, err := m.engine.ListNewPoolCandidates(ctx, pages)
	if err != nil {
		return fmt.Errorf("list new pools: %w", err)
	}
	log.Info().Int("candidates", len(candidates)).Msg("pools past the funnel")

	for _, c := range candidates {
		if ctx.Err() != nil {
			log.Warn().Msg("scan interrupted, persisting ledger")
			break
		}
		if !m.ledger.ShouldScan(c.TokenAddress) {
			continue
		}
		passed := m.evaluate(ctx, c)
		m.ledger.Record(c.CreatedAt, c.PoolAddress, c.TokenAddress, passed)
	}

	if err := m.ledger.Save(); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	log.Info().Msg("scan finished")
	return nil
}

// evaluate resolves, rates and (when passing) reports one pool.
func (m *Monitor) evaluate(ctx context.Context, c recon.PoolCandidate) bool {
	jetton, err := m.engine.ResolveJettonMaster(ctx, c.TokenAddress, recon.KindToken)
	if err != nil {
		log.Error().Err(err).Str("pool", c.PoolAddress).Str("token", c.TokenAddress).Msg("token resolution failed")
		return false
	}
	pool, err := m.engine.ResolveJettonMaster(ctx, c.PoolAddress, recon.KindPool)
	if err != nil {
		log.Error().Err(err).Str("pool", c.PoolAddress).Msg("pool resolution failed")
		return false
	}
	airdrop, err := m.engine.AttributeAirdrops(ctx, jetton)
	if err != nil {
		log.Error().Err(err).Str("pool", c.PoolAddress).Msg("airdrop attribution failed")
		return false
	}

	totalPercent := jetton.Holding(airdrop.Total)
	rating := m.engine.RateToken(jetton, pool, totalPercent)
	log.Info().Str("token", c.TokenAddress).Int("rating", rating).Msg("rated")
	if rating < m.passRating {
		return false
	}

	m.report(ctx, jetton, pool, airdrop, totalPercent)
	return true
}

func (m *Monitor) report(ctx context.Context, jetton, pool *model.JettonMaster, airdrop *recon.AirdropReport, totalPercent float64) {
	if m.sender != nil && m.sender.Enabled() {
		state := m.engine.ClassifyLiquidity(pool)
		msg := report.TelegramMessage(jetton, state, pool.Account.AddressB64, airdrop, totalPercent)
		if err := m.sender.Send(ctx, msg); err != nil {
			log.Error().Err(err).Msg("report delivery failed")
		}
		return
	}
	lookup := &recon.Lookup{
		Master:         jetton,
		Pools:          []*model.JettonMaster{pool},
		Airdrop:        airdrop,
		AirdropPercent: totalPercent,
	}
	fmt.Fprint(m.Out, report.Console(lookup))
}
