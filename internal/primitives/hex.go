package primitives

import (
	"encoding/hex"
	"strings"

	"polyclob/errs"
)

// EncodeHex renders bytes as lowercase hex with a 0x prefix, matching the
// wire format every Polymarket endpoint expects for addresses, token ids,
// and signatures.
func EncodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// DecodeHex accepts either case and an optional 0x/0X prefix, rejecting
// anything of odd length.
func DecodeHex(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(trimmed)%2 != 0 {
		return nil, &errs.HexParse{Input: s, Err: hex.ErrLength}
	}
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, &errs.HexParse{Input: s, Err: err}
	}
	return b, nil
}
