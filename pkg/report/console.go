// Package report renders evaluated jettons for the console or a chat.
package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/jetton-radar/pkg/model"
	"github.com/jetton-radar/pkg/recon"
)

// UsedCellsFloor is the storage size below which a jetton master looks
// like a custom (non-reference) contract.
const UsedCellsFloor = 42

var (
	good = color.New(color.FgGreen).SprintFunc()
	bad  = color.New(color.FgRed).SprintFunc()
)

func verdict(ok bool) string {
	if ok {
		return good("true")
	}
	return bad("false")
}

// Console renders a full lookup as plain text for terminal output.
// The "Jetton:" and "Top 10 -" lines are stable, parseable literals.
func Console(l *recon.Lookup) string {
	m := l.Master
	var b strings.Builder

	fmt.Fprintf(&b, "\nJetton: %s (%s)\n", m.Data.Metadata.Name, m.Data.Metadata.Symbol)
	if len(m.Data.Metadata.Socials) > 0 {
		fmt.Fprintf(&b, "Socials:\n%s\n", strings.Join(m.Data.Metadata.Socials, "\n"))
	} else {
		b.WriteString("Socials: none found\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Mintable: %v\n", m.Data.Mintable)
	fmt.Fprintf(&b, "Ownership revoked: %s\n", verdict(m.AdminAddress == model.ZeroAddress))
	fmt.Fprintf(&b, "Admin address: %s\n", m.AdminAddress)
	if m.Creator != nil {
		fmt.Fprintf(&b, "Creator address: %s\n", m.Creator.Account.Address)
	} else {
		b.WriteString("Creator address: unresolved\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Airdrop total: %.2f%%\n", l.AirdropPercent)
	fmt.Fprintf(&b, "Airdrop receivers: %d\n", len(l.Airdrop.Receivers))
	i := 0
	for addr, rec := range l.Airdrop.Receivers {
		line := fmt.Sprintf("%d.\t%.2f%%\t%s", i+1, m.Holding(rec.Amount), addr)
		if rec.Name != "" {
			line += fmt.Sprintf(" (%s)", rec.Name)
		}
		b.WriteString(line + "\n")
		i++
	}
	b.WriteString("\n")

	b.WriteString(holdersSection(m))

	if len(l.Pools) > 0 {
		b.WriteString("\nLiquidity pools:\n")
		for _, pool := range l.Pools {
			b.WriteString(holdersSection(pool))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// holdersSection is the "Top 10 - X%" line plus a holder table.
func holdersSection(m *model.JettonMaster) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Top 10 - %.2f%%\n", m.TopTenPercent())

	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"#", "Share", "Airdrop", "Holder"})
	table.SetBorder(false)
	for i, h := range m.TopTen() {
		airdrop := ""
		if h.AirdropAmount != nil && h.AirdropAmount.Sign() > 0 {
			airdrop = fmt.Sprintf("%.2f%%", m.Holding(h.AirdropAmount))
		}
		holder := h.Account.Address
		if h.Account.Name != "" {
			holder += " " + h.Account.Name
		}
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.2f%%", m.Holding(h.Balance)),
			airdrop,
			holder,
		})
	}
	table.Render()
	return b.String()
}
