package recon

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jetton-radar/pkg/model"
)

// IndexAPI is the slice of the blockchain index the engine consumes.
// Implemented by gateway.TonAPI.
type IndexAPI interface {
	GetAccount(ctx context.Context, address string) (*model.Account, error)
	GetAccountsBulk(ctx context.Context, addresses []string) ([]*model.Account, error)
	GetAccountEvents(ctx context.Context, address string, end time.Time) ([]model.Event, error)
	GetJettonHistory(ctx context.Context, account, jetton string, end time.Time) ([]model.Event, error)
	GetJettonInfo(ctx context.Context, address string) (*model.JettonData, error)
	GetJettonHolders(ctx context.Context, address string) ([]model.JettonHolder, error)
	ExecGetMethod(ctx context.Context, address, method string) (*model.MethodResult, error)
	ParseAddress(ctx context.Context, address string) (string, error)
	GetUsedCells(ctx context.Context, address string) (int, error)
}

// MarketAPI is the market-data slice the engine consumes.
// Implemented by gateway.Gecko.
type MarketAPI interface {
	NewPools(ctx context.Context, page int) ([]model.PoolStat, error)
	TokenPools(ctx context.Context, token string) ([]model.PoolStat, error)
}

// Kind selects how an address is resolved into a JettonMaster.
type Kind string

const (
	KindToken Kind = "token"
	KindPool  Kind = "pool"
)

// Options carries the tunable business thresholds. Zero values take the
// documented defaults.
type Options struct {
	// LockShareThreshold is the minimum top-holder share of pool supply
	// for the liquidity to count as concentrated enough to be locked or
	// burned. The 0.70 default is a hard business rule with no documented
	// justification; it is configurable but do not expect science.
	LockShareThreshold float64

	// CreatorShareLimit is the maximum creator supply share that still
	// earns a rating point.
	CreatorShareLimit float64

	// AirdropPercentLimit is the maximum airdropped supply percentage
	// that still earns a rating point.
	AirdropPercentLimit float64

	// MinFDVUSD and MinReserveRatio filter the new-pool funnel.
	MinFDVUSD       decimal.Decimal
	MinReserveRatio decimal.Decimal

	// Now is overridable in tests; defaults to time.Now in UTC.
	Now func() time.Time
}

func (o *Options) fillDefaults() {
	if o.LockShareThreshold == 0 {
		o.LockShareThreshold = 0.70
	}
	if o.CreatorShareLimit == 0 {
		o.CreatorShareLimit = 0.10
	}
	if o.AirdropPercentLimit == 0 {
		o.AirdropPercentLimit = 20
	}
	if o.MinFDVUSD.IsZero() {
		o.MinFDVUSD = decimal.NewFromInt(2000)
	}
	if o.MinReserveRatio.IsZero() {
		o.MinReserveRatio = decimal.NewFromFloat(0.05)
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
}

// Engine reconciles raw per-address data from the gateways into scored
// JettonMaster aggregates. Every resolution is a chain of data-dependent
// upstream calls, so operations are strictly sequential.
type Engine struct {
	index  IndexAPI
	market MarketAPI
	opts   Options
}

func New(index IndexAPI, market MarketAPI, opts Options) *Engine {
	opts.fillDefaults()
	return &Engine{index: index, market: market, opts: opts}
}

// ResolveJettonMaster assembles the full aggregate for a jetton master or
// a liquidity-pool contract. Any gateway error is fatal to this call;
// callers decide whether to retry the address or skip it.
func (e *Engine) ResolveJettonMaster(ctx context.Context, address string, kind Kind) (*model.JettonMaster, error) {
	data, err := e.index.GetJettonInfo(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("jetton info %s: %w", address, err)
	}

	admin := model.NoAdmin
	if kind == KindToken {
		res, err := e.index.ExecGetMethod(ctx, address, "get_jetton_data")
		if err != nil {
			return nil, fmt.Errorf("admin lookup %s: %w", address, err)
		}
		admin = res.Decoded.AdminAddress
	}

	events, err := e.index.GetAccountEvents(ctx, address, e.opts.Now())
	if err != nil {
		return nil, fmt.Errorf("events %s: %w", address, err)
	}

	account, err := e.index.GetAccount(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", address, err)
	}

	creator, err := e.DeriveCreatorWallet(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("creator %s: %w", address, err)
	}
	creatorAddr := ""
	if creator != nil {
		creatorAddr = creator.Account.Address
	}

	holders, err := e.ResolveHolders(ctx, address, creatorAddr)
	if err != nil {
		return nil, fmt.Errorf("holders %s: %w", address, err)
	}

	b64, err := e.index.ParseAddress(ctx, account.Address)
	if err != nil {
		return nil, fmt.Errorf("parse address %s: %w", address, err)
	}
	account.AddressB64 = b64
	account.Events = events

	cells, err := e.index.GetUsedCells(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("used cells %s: %w", address, err)
	}

	return &model.JettonMaster{
		Account:      *account,
		AdminAddress: admin,
		Data:         *data,
		UsedCells:    cells,
		Creator:      creator,
		Holders:      holders,
	}, nil
}

// Jetton masters mint through op 0x15; the minted tokens land on the
// creator's jetton wallet via an internal transfer. Both legs show up as
// SmartContractExec actions in the master's event history.
const (
	opInternalTransfer = "JettonInternalTransfer"
	opMint             = "0x00000015"
)

// DeriveCreatorWallet scans the master's event history (newest first, as
// supplied) for the two mint signatures and resolves the creator from
// them. First match wins for each signature independently. Returns
// (nil, nil) when either signature never appears: a missing creator is a
// valid state, not an error.
func (e *Engine) DeriveCreatorWallet(ctx context.Context, events []model.Event) (*model.Wallet, error) {
	var jettonWallet, owner *model.AccountData
	for _, ev := range events {
		for _, act := range ev.Actions {
			if act.Type != model.ActionSmartContractExec || act.SmartContractExec == nil {
				continue
			}
			switch act.SmartContractExec.Operation {
			case opInternalTransfer:
				if jettonWallet == nil {
					contract := act.SmartContractExec.Contract
					jettonWallet = &contract
				}
			case opMint:
				if owner == nil {
					executor := act.SmartContractExec.Executor
					owner = &executor
				}
			}
			if jettonWallet != nil && owner != nil {
				break
			}
		}
		if jettonWallet != nil && owner != nil {
			break
		}
	}
	if jettonWallet == nil || owner == nil {
		return nil, nil
	}

	account, err := e.index.GetAccount(ctx, owner.Address)
	if err != nil {
		return nil, err
	}
	history, err := e.index.GetAccountEvents(ctx, jettonWallet.Address, e.opts.Now())
	if err != nil {
		return nil, err
	}
	account.Events = history

	res, err := e.index.ExecGetMethod(ctx, jettonWallet.Address, "get_wallet_data")
	if err != nil {
		return nil, err
	}
	return model.NewWallet(*account, jettonWallet.Address, res.Decoded.Balance.Big()), nil
}

// The bulk account endpoint rejects oversized batches.
const bulkBatchSize = 100

// ResolveHolders fetches the holder list and turns it into Wallets.
// Direct wallets come first in gateway order, then contract holders in
// gateway order, names resolved through the bulk lookup. The ordering is
// incidental but kept stable for output stability.
func (e *Engine) ResolveHolders(ctx context.Context, jetton, creatorAddr string) ([]*model.Wallet, error) {
	rows, err := e.index.GetJettonHolders(ctx, jetton)
	if err != nil {
		return nil, err
	}

	var wallets []*model.Wallet
	var contracts []model.JettonHolder
	for _, row := range rows {
		if !row.Owner.IsWallet {
			contracts = append(contracts, row)
			continue
		}
		name := row.Owner.Name
		if name == "" && creatorAddr != "" && row.Owner.Address == creatorAddr {
			name = "Creator"
		}
		account := model.Account{Address: row.Owner.Address, IsWallet: true, Name: name}
		wallets = append(wallets, model.NewWallet(account, row.Address, row.Balance.Big()))
	}

	named := make(map[string]*model.Account, len(contracts))
	for start := 0; start < len(contracts); start += bulkBatchSize {
		end := start + bulkBatchSize
		if end > len(contracts) {
			end = len(contracts)
		}
		addresses := make([]string, 0, end-start)
		for _, row := range contracts[start:end] {
			addresses = append(addresses, row.Owner.Address)
		}
		accounts, err := e.index.GetAccountsBulk(ctx, addresses)
		if err != nil {
			return nil, err
		}
		for _, acc := range accounts {
			if acc.Address == model.TonInuLockerAddress {
				acc.Name = "TON Inu Locker"
			}
			named[acc.Address] = acc
		}
	}

	for _, row := range contracts {
		account := model.Account{Address: row.Owner.Address}
		if acc, ok := named[row.Owner.Address]; ok {
			account = *acc
		}
		wallets = append(wallets, model.NewWallet(account, row.Address, row.Balance.Big()))
	}
	return wallets, nil
}
