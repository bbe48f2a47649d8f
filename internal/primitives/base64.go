package primitives

import (
	"encoding/base64"

	"polyclob/errs"
)

// DecodeSecret decodes an API secret delivered as base64. Polymarket issues
// secrets using the URL-safe alphabet, but some servers pad with the
// standard alphabet's `+/`, so both are tried, URL-safe first.
func DecodeSecret(s string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &errs.Base64Parse{Input: s, Err: err}
	}
	return b, nil
}

// EncodeSignatureURLSafe renders an HMAC digest the way every L2-signed
// request expects: URL-safe base64 with standard `=` padding.
func EncodeSignatureURLSafe(b []byte) string {
	return base64.URLEncoding.EncodeToString(b)
}
