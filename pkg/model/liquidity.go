package model

// LiquidityState classifies where a pool's liquidity tokens sit.
type LiquidityState string

const (
	LiquidityBurned       LiquidityState = "Burned"
	LiquidityTonInuLocked LiquidityState = "TonInuLocked"
	LiquidityNoHolders    LiquidityState = "NoHolders"
	LiquidityNotSafe      LiquidityState = "NotSafe"

	// LiquidityUndefined is accepted by scoring but currently has no
	// producer in the classifier. See DESIGN.md before removing it.
	LiquidityUndefined LiquidityState = "Undefined"
)

const (
	// ZeroAddress receives burned liquidity tokens and revoked admin roles.
	ZeroAddress = "0:0000000000000000000000000000000000000000000000000000000000000000"

	// TonInuLockerAddress is the TON Inu locker contract.
	TonInuLockerAddress = "0:f7d8b5faf56677ef9349d32f1be567722b4dd756378e6835ae580553ba2a3563"
)

// sentinelAddresses maps the states recognized by a literal holder address
// to that address. Kept separate from the state values themselves so that
// classification never compares enum identity against arbitrary strings.
var sentinelAddresses = map[LiquidityState]string{
	LiquidityBurned:       ZeroAddress,
	LiquidityTonInuLocked: TonInuLockerAddress,
}

// SentinelAddress returns the on-chain address a state corresponds to,
// for the states that are identified by one.
func (s LiquidityState) SentinelAddress() (string, bool) {
	addr, ok := sentinelAddresses[s]
	return addr, ok
}
