package recon

import (
	"context"
	"math/big"

	"github.com/jetton-radar/pkg/model"
)

// Transfers carrying this comment are DEX swap legs, not distributions.
const dedustSwapComment = "Call: DedustSwap"

// DEX infrastructure accounts are excluded from airdrop totals: tokens
// parked there are liquidity, not simulated ownership.
var infraNames = map[string]bool{
	"Dedust Vault":  true,
	"Stonfi Router": true,
}

// AirdropReceiver is one attributed recipient of creator transfers.
type AirdropReceiver struct {
	Amount *big.Int
	Name   string
}

// AirdropReport maps recipient addresses to attributed amounts, with the
// filtered total.
type AirdropReport struct {
	Receivers map[string]*AirdropReceiver
	Total     *big.Int
}

func emptyAirdropReport() *AirdropReport {
	return &AirdropReport{Receivers: map[string]*AirdropReceiver{}, Total: new(big.Int)}
}

// AttributeAirdrops cross-references the creator's outbound jetton
// transfers against the current holder list. Matching holders get their
// AirdropAmount set in place; DEX infrastructure recipients are dropped
// before totalling. A nil creator yields an empty report.
func (e *Engine) AttributeAirdrops(ctx context.Context, jetton *model.JettonMaster) (*AirdropReport, error) {
	report := emptyAirdropReport()
	if jetton.Creator == nil {
		return report, nil
	}

	events, err := e.index.GetJettonHistory(ctx, jetton.Creator.Account.Address, jetton.Data.Metadata.Address, e.opts.Now())
	if err != nil {
		return nil, err
	}

	received := map[string]*AirdropReceiver{}
	for _, ev := range events {
		for _, act := range ev.Actions {
			if act.Type != model.ActionJettonTransfer || act.JettonTransfer == nil {
				continue
			}
			tr := act.JettonTransfer
			if tr.Sender.Address != jetton.Creator.Account.Address || tr.Comment == dedustSwapComment {
				continue
			}
			rec := received[tr.Recipient.Address]
			if rec == nil {
				rec = &AirdropReceiver{Amount: new(big.Int), Name: tr.Recipient.Name}
				received[tr.Recipient.Address] = rec
			}
			rec.Amount.Add(rec.Amount, tr.Amount.Big())
		}
	}

	for _, holder := range jetton.Holders {
		if rec, ok := received[holder.Account.Address]; ok {
			rec.Name = holder.Account.Name
			holder.AirdropAmount = new(big.Int).Set(rec.Amount)
		}
	}

	for addr, rec := range received {
		if infraNames[rec.Name] {
			continue
		}
		report.Receivers[addr] = rec
		report.Total.Add(report.Total, rec.Amount)
	}
	return report, nil
}
