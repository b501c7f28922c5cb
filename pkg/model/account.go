package model

import "math/big"

// Account is a TON account as reported by the index API.
type Account struct {
	Address    string
	IsWallet   bool
	AddressB64 string
	Name       string
	Interfaces []string
	Events     []Event // attached post-construction
}

// Contract interfaces worth surfacing by name in reports. Order matters:
// the first match wins, e.g. a dedust vault also implements other ifaces.
var interfaceNames = []struct{ iface, name string }{
	{"dedust_vault", "Dedust Vault"},
	{"dedust_pool", "Dedust Pool"},
	{"stonfi_pool", "Stonfi Pool"},
	{"stonfi_router", "Stonfi Router"},
}

// ResolveName derives a display name from the contract interface list.
// Accounts without interfaces keep whatever name the gateway supplied;
// contracts get the interface-derived name (possibly empty).
func (a *Account) ResolveName() {
	if len(a.Interfaces) == 0 {
		return
	}
	name := ""
	for _, in := range interfaceNames {
		for _, iface := range a.Interfaces {
			if iface == in.iface {
				name = in.name
				break
			}
		}
		if name != "" {
			break
		}
	}
	a.Name = name
}

// Wallet is an account holding a balance of one specific jetton through
// its jetton-wallet sub-account. Balance is in the jetton's smallest unit.
type Wallet struct {
	Account      Account
	JettonWallet string
	Balance      *big.Int

	// AirdropAmount accumulates creator transfers attributed to this
	// holder during airdrop reconciliation.
	AirdropAmount *big.Int
}

// NewWallet builds a Wallet with a zeroed airdrop accumulator.
func NewWallet(account Account, jettonWallet string, balance *big.Int) *Wallet {
	if balance == nil {
		balance = new(big.Int)
	}
	return &Wallet{
		Account:       account,
		JettonWallet:  jettonWallet,
		Balance:       balance,
		AirdropAmount: new(big.Int),
	}
}
