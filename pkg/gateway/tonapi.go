package gateway

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jetton-radar/pkg/model"
)

// TonAPI wraps the tonapi.io v2 index API: account profiles, event
// histories, jetton metadata and holder lists, read-only method calls.
type TonAPI struct {
	c *client
}

func NewTonAPI(baseURL, apiKey string, pause time.Duration) *TonAPI {
	return &TonAPI{c: newClient(baseURL, apiKey, pause)}
}

const eventPageLimit = 100

type rawAccount struct {
	Address    string   `json:"address"`
	Name       string   `json:"name"`
	IsWallet   bool     `json:"is_wallet"`
	Interfaces []string `json:"interfaces"`
}

func (r rawAccount) toModel() *model.Account {
	acc := &model.Account{
		Address:    r.Address,
		Name:       r.Name,
		IsWallet:   r.IsWallet,
		Interfaces: r.Interfaces,
	}
	acc.ResolveName()
	return acc
}

func (t *TonAPI) GetAccount(ctx context.Context, address string) (*model.Account, error) {
	var raw rawAccount
	if err := t.c.getJSON(ctx, "/accounts/"+url.PathEscape(address), &raw); err != nil {
		return nil, err
	}
	return raw.toModel(), nil
}

// GetAccountsBulk looks up many account profiles in one request. The
// upstream caps the batch size; callers batch accordingly.
func (t *TonAPI) GetAccountsBulk(ctx context.Context, addresses []string) ([]*model.Account, error) {
	payload := map[string][]string{"account_ids": addresses}
	var raw struct {
		Accounts []rawAccount `json:"accounts"`
	}
	if err := t.c.postJSON(ctx, "/accounts/_bulk", payload, &raw); err != nil {
		return nil, err
	}
	accounts := make([]*model.Account, 0, len(raw.Accounts))
	for _, r := range raw.Accounts {
		accounts = append(accounts, r.toModel())
	}
	return accounts, nil
}

// GetAccountEvents lists the most recent event page for an account,
// newest first, ending at the given timestamp.
func (t *TonAPI) GetAccountEvents(ctx context.Context, address string, end time.Time) ([]model.Event, error) {
	path := fmt.Sprintf("/accounts/%s/events?initiator=false&subject_only=false&limit=%d&end_date=%d",
		url.PathEscape(address), eventPageLimit, end.Unix())
	var raw struct {
		Events []model.Event `json:"events"`
	}
	if err := t.c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	return raw.Events, nil
}

// GetJettonHistory lists an account's event history filtered to one jetton.
func (t *TonAPI) GetJettonHistory(ctx context.Context, account, jetton string, end time.Time) ([]model.Event, error) {
	path := fmt.Sprintf("/accounts/%s/jettons/%s/history?initiator=false&subject_only=false&limit=%d&end_date=%d",
		url.PathEscape(account), url.PathEscape(jetton), eventPageLimit, end.Unix())
	var raw struct {
		Events []model.Event `json:"events"`
	}
	if err := t.c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	return raw.Events, nil
}

// GetJettonInfo fetches a jetton master's supply-level data. A zero or
// missing total supply is rejected here so percentage math downstream
// never divides by zero.
func (t *TonAPI) GetJettonInfo(ctx context.Context, address string) (*model.JettonData, error) {
	path := "/jettons/" + url.PathEscape(address)
	var raw struct {
		Mintable     bool                 `json:"mintable"`
		TotalSupply  model.BigInt         `json:"total_supply"`
		Metadata     model.JettonMetadata `json:"metadata"`
		Verification string               `json:"verification"`
		HoldersCount int                  `json:"holders_count"`
	}
	if err := t.c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	supply := raw.TotalSupply.Big()
	if supply.Sign() <= 0 {
		return nil, &DataShapeError{Endpoint: path, Reason: "total_supply must be positive"}
	}
	return &model.JettonData{
		Mintable:     raw.Mintable,
		TotalSupply:  supply,
		Metadata:     raw.Metadata,
		Verification: raw.Verification,
		HoldersCount: raw.HoldersCount,
	}, nil
}

func (t *TonAPI) GetJettonHolders(ctx context.Context, address string) ([]model.JettonHolder, error) {
	path := fmt.Sprintf("/jettons/%s/holders?limit=1000&offset=0", url.PathEscape(address))
	var raw struct {
		Addresses []model.JettonHolder `json:"addresses"`
	}
	if err := t.c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	return raw.Addresses, nil
}

// ExecGetMethod invokes a read-only contract get-method.
func (t *TonAPI) ExecGetMethod(ctx context.Context, address, method string) (*model.MethodResult, error) {
	path := fmt.Sprintf("/blockchain/accounts/%s/methods/%s", url.PathEscape(address), url.PathEscape(method))
	var res model.MethodResult
	if err := t.c.getJSON(ctx, path, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ParseAddress resolves the canonical bounceable base64url form.
func (t *TonAPI) ParseAddress(ctx context.Context, address string) (string, error) {
	path := fmt.Sprintf("/address/%s/parse", url.PathEscape(address))
	var raw struct {
		Bounceable struct {
			B64URL string `json:"b64url"`
		} `json:"bounceable"`
	}
	if err := t.c.getJSON(ctx, path, &raw); err != nil {
		return "", err
	}
	if raw.Bounceable.B64URL == "" {
		return "", &DataShapeError{Endpoint: path, Reason: "missing bounceable.b64url"}
	}
	return raw.Bounceable.B64URL, nil
}

// GetUsedCells reads the storage cell count from the low-level account
// state. A small count is a rough signal of a non-standard contract.
func (t *TonAPI) GetUsedCells(ctx context.Context, address string) (int, error) {
	path := "/blockchain/accounts/" + url.PathEscape(address)
	var raw struct {
		Storage struct {
			UsedCells int `json:"used_cells"`
		} `json:"storage"`
	}
	if err := t.c.getJSON(ctx, path, &raw); err != nil {
		return 0, err
	}
	return raw.Storage.UsedCells, nil
}
