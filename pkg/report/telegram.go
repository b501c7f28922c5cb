package report

import (
	"fmt"
	"strings"

	"github.com/jetton-radar/pkg/model"
	"github.com/jetton-radar/pkg/recon"
)

// TelegramMessage renders the chat report. Formatting stays within the
// HTML subset Telegram accepts; only bold tags are used.
func TelegramMessage(m *model.JettonMaster, state model.LiquidityState, poolB64 string, airdrop *recon.AirdropReport, totalPercent float64) string {
	var b strings.Builder

	b.WriteString("💹💹💹💹💹💹💹💹")
	fmt.Fprintf(&b, "\n💩<b>Jetton: %s (%s)</b>💩", m.Data.Metadata.Name, m.Data.Metadata.Symbol)
	fmt.Fprintf(&b, "\n<b>Address:</b> %s", m.Account.AddressB64)
	b.WriteString("\n")

	if len(m.Data.Metadata.Socials) > 0 {
		fmt.Fprintf(&b, "\n<b>Socials:</b>\n%s", strings.Join(m.Data.Metadata.Socials, "\n"))
	} else {
		b.WriteString("\n<b>Socials:</b> No socials found")
	}
	b.WriteString("\n")

	contract := "Seems okay"
	if m.UsedCells < UsedCellsFloor {
		contract = "Custom (MIGHT BE A SCAM)"
	}
	fmt.Fprintf(&b, "\n<b>Contract:</b> %s", contract)
	fmt.Fprintf(&b, "\n<b>Mintable:</b> %v", m.Data.Mintable)
	fmt.Fprintf(&b, "\n<b>Ownership revoked:</b> %v", m.AdminAddress == model.ZeroAddress)
	fmt.Fprintf(&b, "\n<b>Liquidity:</b> %s", state)
	fmt.Fprintf(&b, "\n<b>Airdrop:</b> amount - %.2f%%, receivers - %d", totalPercent, len(airdrop.Receivers))
	b.WriteString("\n")

	b.WriteString("\n" + TopTenBlock(m, false))
	fmt.Fprintf(&b, "\nhttps://www.geckoterminal.com/ton/pools/%s", poolB64)
	return b.String()
}

// TopTenBlock is the plain-text top-holder listing shared by chat
// messages and tests. One line per holder:
// rank, supply share, airdropped share when present, then name/address.
func TopTenBlock(m *model.JettonMaster, withAddress bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Top 10 - %.2f%%\n", m.TopTenPercent())
	for i, h := range m.TopTen() {
		fmt.Fprintf(&b, "%d. \t %s\n", i+1, holderLine(m, h, withAddress))
	}
	return b.String()
}

func holderLine(m *model.JettonMaster, h *model.Wallet, withAddress bool) string {
	s := fmt.Sprintf("%.2f%% ", m.Holding(h.Balance))
	if h.AirdropAmount != nil && h.AirdropAmount.Sign() > 0 {
		s += fmt.Sprintf("(Airdrop %.2f%%)", m.Holding(h.AirdropAmount))
	}
	s += " \t "
	if withAddress {
		s += "\t  " + h.Account.Address
	}
	if h.Account.Name != "" {
		s += " " + h.Account.Name
	}
	return s
}
