package monitor

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetton-radar/pkg/ledger"
	"github.com/jetton-radar/pkg/model"
	"github.com/jetton-radar/pkg/recon"
)

type fakeEngine struct {
	candidates []recon.PoolCandidate
	ratings    map[string]int
	failing    map[string]bool
	resolved   []string
}

func (f *fakeEngine) ListNewPoolCandidates(context.Context, int) ([]recon.PoolCandidate, error) {
	return f.candidates, nil
}

func (f *fakeEngine) ResolveJettonMaster(_ context.Context, address string, kind recon.Kind) (*model.JettonMaster, error) {
	if kind == recon.KindToken {
		f.resolved = append(f.resolved, address)
	}
	if f.failing[address] {
		return nil, fmt.Errorf("boom %s", address)
	}
	return &model.JettonMaster{
		Account: model.Account{Address: address, AddressB64: "EQ" + address},
		Data: model.JettonData{
			TotalSupply: big.NewInt(100),
			Metadata:    model.JettonMetadata{Name: "Tok", Symbol: "TOK"},
		},
	}, nil
}

func (f *fakeEngine) AttributeAirdrops(context.Context, *model.JettonMaster) (*recon.AirdropReport, error) {
	return &recon.AirdropReport{Receivers: map[string]*recon.AirdropReceiver{}, Total: new(big.Int)}, nil
}

func (f *fakeEngine) ClassifyLiquidity(*model.JettonMaster) model.LiquidityState {
	return model.LiquidityBurned
}

func (f *fakeEngine) RateToken(jetton, _ *model.JettonMaster, _ float64) int {
	return f.ratings[jetton.Account.Address]
}

type fakeSender struct {
	enabled bool
	sent    []string
}

func (f *fakeSender) Enabled() bool { return f.enabled }
func (f *fakeSender) Send(_ context.Context, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func candidate(pool, token string) recon.PoolCandidate {
	return recon.PoolCandidate{
		CreatedAt:    "2024-05-01T10:00:00Z",
		PoolAddress:  pool,
		TokenAddress: token,
	}
}

func openLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(filepath.Join(t.TempDir(), "scanned_tokens.csv"), 2*time.Hour)
	require.NoError(t, err)
	return l
}

func TestScanRecordsAndReports(t *testing.T) {
	engine := &fakeEngine{
		candidates: []recon.PoolCandidate{
			candidate("0:p1", "0:winner"),
			candidate("0:p2", "0:loser"),
		},
		ratings: map[string]int{"0:winner": 4, "0:loser": 1},
	}
	sender := &fakeSender{enabled: true}
	led := openLedger(t)

	m := New(engine, led, sender, 3)
	require.NoError(t, m.ScanNewPools(context.Background(), 1))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Tok (TOK)")
	assert.Equal(t, 2, led.Len())

	// Both tokens are now on record: the pass forever, the fail for the
	// rescan window.
	assert.False(t, led.ShouldScan("0:winner"))
	assert.False(t, led.ShouldScan("0:loser"))
}

func TestScanIsolatesPerPoolFailures(t *testing.T) {
	engine := &fakeEngine{
		candidates: []recon.PoolCandidate{
			candidate("0:p1", "0:broken"),
			candidate("0:p2", "0:fine"),
		},
		ratings: map[string]int{"0:fine": 4},
		failing: map[string]bool{"0:broken": true},
	}
	sender := &fakeSender{enabled: true}
	led := openLedger(t)

	m := New(engine, led, sender, 3)
	require.NoError(t, m.ScanNewPools(context.Background(), 1))

	// The broken pool is recorded as failed, the good one still reports.
	assert.Equal(t, 2, led.Len())
	require.Len(t, sender.sent, 1)
	assert.False(t, led.ShouldScan("0:broken"))
}

func TestScanSkipsAlreadyRecordedTokens(t *testing.T) {
	engine := &fakeEngine{
		candidates: []recon.PoolCandidate{candidate("0:p1", "0:seen")},
		ratings:    map[string]int{"0:seen": 0},
	}
	led := openLedger(t)

	m := New(engine, led, &fakeSender{}, 3)
	m.Out = &bytes.Buffer{}
	require.NoError(t, m.ScanNewPools(context.Background(), 1))
	require.Len(t, engine.resolved, 1)

	// Second pass inside the window touches nothing.
	require.NoError(t, m.ScanNewPools(context.Background(), 1))
	assert.Len(t, engine.resolved, 1)
	assert.Equal(t, 1, led.Len())
}

func TestScanWritesToConsoleWhenSenderDisabled(t *testing.T) {
	engine := &fakeEngine{
		candidates: []recon.PoolCandidate{candidate("0:p1", "0:winner")},
		ratings:    map[string]int{"0:winner": 4},
	}
	led := openLedger(t)

	var out bytes.Buffer
	m := New(engine, led, &fakeSender{enabled: false}, 3)
	m.Out = &out
	require.NoError(t, m.ScanNewPools(context.Background(), 1))

	assert.Contains(t, out.String(), "Jetton: Tok (TOK)")
}

func TestScanStopsOnCancelButPersists(t *testing.T) {
	engine := &fakeEngine{
		candidates: []recon.PoolCandidate{
			candidate("0:p1", "0:t1"),
			candidate("0:p2", "0:t2"),
		},
		ratings: map[string]int{},
	}
	led := openLedger(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := New(engine, led, &fakeSender{}, 3)
	m.Out = &bytes.Buffer{}
	require.NoError(t, m.ScanNewPools(ctx, 1))

	// Nothing was evaluated, but the ledger file still got written.
	assert.Empty(t, engine.resolved)
	assert.Equal(t, 0, led.Len())
}
