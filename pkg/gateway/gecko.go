package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jetton-radar/pkg/model"
)

// Gecko wraps the GeckoTerminal market-data API for the TON network.
type Gecko struct {
	c *client
}

func NewGecko(baseURL string, pause time.Duration) *Gecko {
	return &Gecko{c: newClient(baseURL, "", pause)}
}

type rawPools struct {
	Data []struct {
		Attributes struct {
			Address       string          `json:"address"`
			FDVUSD        decimal.Decimal `json:"fdv_usd"`
			ReserveInUSD  decimal.Decimal `json:"reserve_in_usd"`
			PoolCreatedAt string          `json:"pool_created_at"`
		} `json:"attributes"`
		Relationships struct {
			BaseToken struct {
				Data struct {
					ID string `json:"id"`
				} `json:"data"`
			} `json:"base_token"`
		} `json:"relationships"`
	} `json:"data"`
}

func (r rawPools) toModel() []model.PoolStat {
	pools := make([]model.PoolStat, 0, len(r.Data))
	for _, d := range r.Data {
		pools = append(pools, model.PoolStat{
			CreatedAt:    d.Attributes.PoolCreatedAt,
			Address:      d.Attributes.Address,
			TokenAddress: strings.TrimPrefix(d.Relationships.BaseToken.Data.ID, "ton_"),
			FDVUSD:       d.Attributes.FDVUSD,
			ReserveUSD:   d.Attributes.ReserveInUSD,
		})
	}
	return pools
}

// NewPools lists one page of recently created pools, in upstream order.
func (g *Gecko) NewPools(ctx context.Context, page int) ([]model.PoolStat, error) {
	var raw rawPools
	if err := g.c.getJSON(ctx, fmt.Sprintf("/networks/ton/new_pools?page=%d", page), &raw); err != nil {
		return nil, err
	}
	return raw.toModel(), nil
}

// TokenPools lists the pools trading a given jetton, in upstream order.
func (g *Gecko) TokenPools(ctx context.Context, token string) ([]model.PoolStat, error) {
	path := fmt.Sprintf("/networks/ton/tokens/%s/pools", url.PathEscape(token))
	var raw rawPools
	if err := g.c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	return raw.toModel(), nil
}
