package primitives

import (
	"github.com/ethereum/go-ethereum/common"
)

// ChecksumAddress applies the EIP-55 mixed-case checksum to an address
// given in any case. go-ethereum's common.Address already implements the
// nibble rule (keccak of the lowercase hex decides each letter's case); this
// wraps it so callers never need to import go-ethereum's common package
// directly just to checksum a string.
func ChecksumAddress(addr string) string {
	return common.HexToAddress(addr).Hex()
}

// IsValidAddress reports whether s looks like a 20-byte hex address,
// 0x-prefixed or not.
func IsValidAddress(s string) bool {
	return common.IsHexAddress(s)
}
