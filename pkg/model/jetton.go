package model

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// socialURLRe picks website/social links out of free-text jetton
// descriptions. Token teams rarely fill a structured socials field.
var socialURLRe = regexp.MustCompile(`(?i)(?:https?://[a-zA-Z0-9][a-zA-Z0-9.-]*\.[^\s]{2,}|www\.[a-zA-Z0-9][a-zA-Z0-9.-]*\.[^\s]{2,})`)

// JettonMetadata is the on-chain metadata blob of a jetton master.
type JettonMetadata struct {
	Address     string
	Name        string
	Symbol      string
	Decimals    int
	Description string
	Socials     []string
}

func (m *JettonMetadata) UnmarshalJSON(data []byte) error {
	var raw struct {
		Address     string      `json:"address"`
		Name        string      `json:"name"`
		Symbol      string      `json:"symbol"`
		Decimals    json.Number `json:"decimals"`
		Description string      `json:"description"`
		Socials     []string    `json:"socials"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Address = raw.Address
	m.Name = raw.Name
	m.Symbol = raw.Symbol
	m.Description = raw.Description
	m.Socials = raw.Socials
	if d, err := strconv.Atoi(strings.Trim(raw.Decimals.String(), `"`)); err == nil {
		m.Decimals = d
	}
	m.Socials = append(m.Socials, socialURLRe.FindAllString(raw.Description, -1)...)
	return nil
}

// JettonData is the supply-level state of a jetton master.
type JettonData struct {
	Mintable     bool
	TotalSupply  *big.Int
	Metadata     JettonMetadata
	Verification string
	HoldersCount int
}

// JettonHolder is one raw holder row from the index API: the jetton-wallet
// address, its balance, and the owning account.
type JettonHolder struct {
	Address string      `json:"address"`
	Balance BigInt      `json:"balance"`
	Owner   AccountData `json:"owner"`
}

// MethodResult is the decoded result of a read-only contract method call.
type MethodResult struct {
	Success bool          `json:"success"`
	Decoded MethodDecoded `json:"decoded"`
}

type MethodDecoded struct {
	AdminAddress string `json:"admin_address"`
	Balance      BigInt `json:"balance"`
}

// NoAdmin marks aggregates without a meaningful admin concept, i.e.
// liquidity-pool contracts.
const NoAdmin = "None"

// JettonMaster is the aggregate root assembled by the reconciliation
// engine: the master account, its supply data, the derived creator wallet
// (nil when the creator's transfer pattern could not be located) and the
// current holder set.
type JettonMaster struct {
	Account      Account
	AdminAddress string
	Data         JettonData
	UsedCells    int
	Creator      *Wallet
	Holders      []*Wallet
}

// Holding converts a smallest-unit balance to a percentage of total
// supply, rounded to two decimals.
func (m *JettonMaster) Holding(balance *big.Int) float64 {
	if balance == nil || m.Data.TotalSupply == nil || m.Data.TotalSupply.Sign() == 0 {
		return 0
	}
	r := new(big.Rat).SetFrac(new(big.Int).Mul(balance, big.NewInt(100)), m.Data.TotalSupply)
	f, _ := r.Float64()
	return math.Round(f*100) / 100
}

// TopTen returns the ten largest holders by balance. The sort is stable:
// ties keep the order the holders arrived in.
func (m *JettonMaster) TopTen() []*Wallet {
	top := make([]*Wallet, len(m.Holders))
	copy(top, m.Holders)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Balance.Cmp(top[j].Balance) > 0
	})
	if len(top) > 10 {
		top = top[:10]
	}
	return top
}

// TopTenPercent is the combined supply share of the top ten holders.
func (m *JettonMaster) TopTenPercent() float64 {
	total := new(big.Int)
	for _, h := range m.TopTen() {
		total.Add(total, h.Balance)
	}
	return m.Holding(total)
}
