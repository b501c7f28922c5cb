package model

import "github.com/shopspring/decimal"

// PoolStat is one pool row from the market-data API. CreatedAt is kept as
// the verbatim upstream string: it is written to the scanned-pool ledger
// and must survive round trips byte for byte.
type PoolStat struct {
	CreatedAt    string
	Address      string
	TokenAddress string
	FDVUSD       decimal.Decimal
	ReserveUSD   decimal.Decimal
}
