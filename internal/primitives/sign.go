package primitives

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"polyclob/errs"
)

// ParsePrivateKey accepts a hex-encoded secp256k1 private key, with or
// without a 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimPrefix(hexKey, "0x"), "0X")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, &errs.InvalidPrivateKey{Err: err}
	}
	return key, nil
}

// AddressFromPrivateKey derives the EIP-55 checksummed address for a
// private key: uncompressed pubkey, drop the leading 0x04 byte, keccak the
// remaining 64 bytes, take the last 20 bytes, checksum.
func AddressFromPrivateKey(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

// SignRecoverable signs a 32-byte digest with a recoverable secp256k1
// signature, returning the wire format r(32)||s(32)||v(1) with
// v = recid+27, matching Polymarket's and Ethereum's convention.
func SignRecoverable(digest [32]byte, key *ecdsa.PrivateKey) ([65]byte, error) {
	sig, err := crypto.Sign(digest[:], key)
	if err != nil {
		return [65]byte{}, &errs.CryptoFailure{Op: "sign", Err: err}
	}
	var out [65]byte
	copy(out[:], sig)
	out[64] += 27
	return out, nil
}
