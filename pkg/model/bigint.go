package model

import (
	"bytes"
	"fmt"
	"math/big"
)

// BigInt decodes a raw token amount in the jetton's smallest unit.
// tonapi serves these both as bare JSON numbers and as quoted decimal
// strings, so accept either.
type BigInt struct {
	big.Int
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		b.Int.SetInt64(0)
		return nil
	}
	if _, ok := b.Int.SetString(string(data), 10); !ok {
		return fmt.Errorf("invalid integer amount %q", data)
	}
	return nil
}

func (b BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.Int.String() + `"`), nil
}

// Big returns a copy safe to mutate independently of the decoded value.
func (b *BigInt) Big() *big.Int {
	return new(big.Int).Set(&b.Int)
}
