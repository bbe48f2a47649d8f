package primitives

import (
	"github.com/ethereum/go-ethereum/crypto"
)

// Keccak256 is the standard Keccak-256 hash used throughout EIP-712 and
// address derivation. go-ethereum's implementation is the one the teacher
// and every other pack example grounded on go-ethereum already use.
func Keccak256(data ...[]byte) [32]byte {
	var out [32]byte
	copy(out[:], crypto.Keccak256(data...))
	return out
}
