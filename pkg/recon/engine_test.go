package recon

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetton-radar/pkg/model"
)

// fakeIndex serves canned index data keyed by address.
type fakeIndex struct {
	accounts map[string]*model.Account
	events   map[string][]model.Event
	history  map[string][]model.Event
	jettons  map[string]*model.JettonData
	holders  map[string][]model.JettonHolder
	methods  map[string]*model.MethodResult // "addr/method"
	cells    map[string]int

	bulkBatches [][]string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		accounts: map[string]*model.Account{},
		events:   map[string][]model.Event{},
		history:  map[string][]model.Event{},
		jettons:  map[string]*model.JettonData{},
		holders:  map[string][]model.JettonHolder{},
		methods:  map[string]*model.MethodResult{},
		cells:    map[string]int{},
	}
}

func (f *fakeIndex) GetAccount(_ context.Context, address string) (*model.Account, error) {
	if acc, ok := f.accounts[address]; ok {
		c := *acc
		return &c, nil
	}
	return &model.Account{Address: address}, nil
}

func (f *fakeIndex) GetAccountsBulk(_ context.Context, addresses []string) ([]*model.Account, error) {
	f.bulkBatches = append(f.bulkBatches, addresses)
	out := make([]*model.Account, 0, len(addresses))
	for _, addr := range addresses {
		acc, err := f.GetAccount(context.Background(), addr)
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, nil
}

func (f *fakeIndex) GetAccountEvents(_ context.Context, address string, _ time.Time) ([]model.Event, error) {
	return f.events[address], nil
}

func (f *fakeIndex) GetJettonHistory(_ context.Context, account, _ string, _ time.Time) ([]model.Event, error) {
	return f.history[account], nil
}

func (f *fakeIndex) GetJettonInfo(_ context.Context, address string) (*model.JettonData, error) {
	if data, ok := f.jettons[address]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("no jetton %s", address)
}

func (f *fakeIndex) GetJettonHolders(_ context.Context, address string) ([]model.JettonHolder, error) {
	return f.holders[address], nil
}

func (f *fakeIndex) ExecGetMethod(_ context.Context, address, method string) (*model.MethodResult, error) {
	if res, ok := f.methods[address+"/"+method]; ok {
		return res, nil
	}
	return nil, fmt.Errorf("no method %s on %s", method, address)
}

func (f *fakeIndex) ParseAddress(_ context.Context, address string) (string, error) {
	return "b64:" + address, nil
}

func (f *fakeIndex) GetUsedCells(_ context.Context, address string) (int, error) {
	return f.cells[address], nil
}

func execAction(op, executor, contract string) model.Action {
	return model.Action{
		Type: model.ActionSmartContractExec,
		SmartContractExec: &model.SmartContractExec{
			Operation: op,
			Executor:  model.AccountData{Address: executor},
			Contract:  model.AccountData{Address: contract},
		},
	}
}

func methodBalance(amount string) *model.MethodResult {
	res := &model.MethodResult{Success: true}
	res.Decoded.Balance.SetString(amount, 10)
	return res
}

func TestDeriveCreatorWalletFirstMatchWins(t *testing.T) {
	idx := newFakeIndex()
	idx.accounts["0:creator"] = &model.Account{Address: "0:creator", IsWallet: true}
	idx.methods["0:jw1/get_wallet_data"] = methodBalance("5000")

	events := []model.Event{
		{Actions: []model.Action{
			execAction("JettonInternalTransfer", "", "0:jw1"),
			execAction("0x00000015", "0:creator", ""),
		}},
		// Later matches for the same signatures are ignored.
		{Actions: []model.Action{
			execAction("JettonInternalTransfer", "", "0:jw2"),
			execAction("0x00000015", "0:impostor", ""),
		}},
	}

	e := New(idx, nil, Options{})
	creator, err := e.DeriveCreatorWallet(context.Background(), events)
	require.NoError(t, err)
	require.NotNil(t, creator)
	assert.Equal(t, "0:creator", creator.Account.Address)
	assert.Equal(t, "0:jw1", creator.JettonWallet)
	assert.Equal(t, big.NewInt(5000), creator.Balance)
	assert.Equal(t, int64(0), creator.AirdropAmount.Int64())
}

func TestDeriveCreatorWalletMatchesAcrossEvents(t *testing.T) {
	idx := newFakeIndex()
	idx.accounts["0:creator"] = &model.Account{Address: "0:creator", IsWallet: true}
	idx.methods["0:jw1/get_wallet_data"] = methodBalance("1")

	events := []model.Event{
		{Actions: []model.Action{execAction("JettonInternalTransfer", "", "0:jw1")}},
		{Actions: []model.Action{execAction("0x00000015", "0:creator", "")}},
	}

	e := New(idx, nil, Options{})
	creator, err := e.DeriveCreatorWallet(context.Background(), events)
	require.NoError(t, err)
	require.NotNil(t, creator)
	assert.Equal(t, "0:creator", creator.Account.Address)
}

func TestDeriveCreatorWalletIncompleteSignature(t *testing.T) {
	e := New(newFakeIndex(), nil, Options{})

	// Mint leg alone is not enough.
	events := []model.Event{
		{Actions: []model.Action{execAction("0x00000015", "0:creator", "")}},
	}
	creator, err := e.DeriveCreatorWallet(context.Background(), events)
	require.NoError(t, err)
	assert.Nil(t, creator)

	// Neither leg, including non-exec noise.
	noise := []model.Event{
		{Actions: []model.Action{{Type: model.ActionTonTransfer, TonTransfer: &model.TonTransfer{Amount: 1}}}},
	}
	creator, err = e.DeriveCreatorWallet(context.Background(), noise)
	require.NoError(t, err)
	assert.Nil(t, creator)
}

func holderRow(owner, jettonWallet, balance string, isWallet bool, name string) model.JettonHolder {
	row := model.JettonHolder{
		Address: jettonWallet,
		Owner:   model.AccountData{Address: owner, IsWallet: isWallet, Name: name},
	}
	row.Balance.SetString(balance, 10)
	return row
}

func TestResolveHoldersNamesAndOrder(t *testing.T) {
	idx := newFakeIndex()
	idx.holders["0:master"] = []model.JettonHolder{
		holderRow("0:contract1", "0:cjw1", "100", false, ""),
		holderRow("0:creator", "0:jw1", "900", true, ""),
		holderRow(model.TonInuLockerAddress, "0:cjw2", "800", false, ""),
		holderRow("0:whale", "0:jw2", "700", true, "named whale"),
	}
	idx.accounts["0:contract1"] = &model.Account{Address: "0:contract1", Name: "Dedust Vault"}
	idx.accounts[model.TonInuLockerAddress] = &model.Account{Address: model.TonInuLockerAddress}

	e := New(idx, nil, Options{})
	wallets, err := e.ResolveHolders(context.Background(), "0:master", "0:creator")
	require.NoError(t, err)
	require.Len(t, wallets, 4)

	// Direct wallets first in gateway order, then contracts in gateway order.
	assert.Equal(t, "0:creator", wallets[0].Account.Address)
	assert.Equal(t, "Creator", wallets[0].Account.Name)
	assert.Equal(t, "named whale", wallets[1].Account.Name)
	assert.Equal(t, "Dedust Vault", wallets[2].Account.Name)
	assert.Equal(t, "TON Inu Locker", wallets[3].Account.Name)
	assert.Equal(t, big.NewInt(800), wallets[3].Balance)
}

func TestResolveHoldersBatchesBulkLookups(t *testing.T) {
	idx := newFakeIndex()
	var rows []model.JettonHolder
	for i := 0; i < 150; i++ {
		rows = append(rows, holderRow(fmt.Sprintf("0:c%03d", i), fmt.Sprintf("0:w%03d", i), "1", false, ""))
	}
	idx.holders["0:master"] = rows

	e := New(idx, nil, Options{})
	wallets, err := e.ResolveHolders(context.Background(), "0:master", "")
	require.NoError(t, err)
	assert.Len(t, wallets, 150)

	require.Len(t, idx.bulkBatches, 2)
	assert.Len(t, idx.bulkBatches[0], 100)
	assert.Len(t, idx.bulkBatches[1], 50)
}

func TestResolveJettonMasterAssemblesAggregate(t *testing.T) {
	idx := newFakeIndex()
	idx.jettons["0:master"] = &model.JettonData{
		TotalSupply: big.NewInt(1000),
		Metadata:    model.JettonMetadata{Address: "0:master", Name: "Test", Symbol: "TST"},
	}
	adminRes := &model.MethodResult{Success: true}
	adminRes.Decoded.AdminAddress = model.ZeroAddress
	idx.methods["0:master/get_jetton_data"] = adminRes
	idx.methods["0:jw1/get_wallet_data"] = methodBalance("100")
	idx.accounts["0:master"] = &model.Account{Address: "0:master"}
	idx.accounts["0:creator"] = &model.Account{Address: "0:creator", IsWallet: true}
	idx.events["0:master"] = []model.Event{
		{Actions: []model.Action{
			execAction("JettonInternalTransfer", "", "0:jw1"),
			execAction("0x00000015", "0:creator", ""),
		}},
	}
	idx.holders["0:master"] = []model.JettonHolder{
		holderRow("0:creator", "0:jw1", "100", true, ""),
	}
	idx.cells["0:master"] = 77

	e := New(idx, nil, Options{})
	m, err := e.ResolveJettonMaster(context.Background(), "0:master", KindToken)
	require.NoError(t, err)

	assert.Equal(t, model.ZeroAddress, m.AdminAddress)
	assert.Equal(t, "b64:0:master", m.Account.AddressB64)
	assert.Equal(t, 77, m.UsedCells)
	require.NotNil(t, m.Creator)
	assert.Equal(t, "0:creator", m.Creator.Account.Address)
	require.Len(t, m.Holders, 1)
	assert.Equal(t, "Creator", m.Holders[0].Account.Name)
}

func TestResolveJettonMasterPoolSkipsAdminLookup(t *testing.T) {
	idx := newFakeIndex()
	idx.jettons["0:pool"] = &model.JettonData{TotalSupply: big.NewInt(10)}
	idx.accounts["0:pool"] = &model.Account{Address: "0:pool"}

	e := New(idx, nil, Options{})
	m, err := e.ResolveJettonMaster(context.Background(), "0:pool", KindPool)
	require.NoError(t, err)
	assert.Equal(t, model.NoAdmin, m.AdminAddress)
	assert.Nil(t, m.Creator)
	assert.Empty(t, m.Holders)
}
