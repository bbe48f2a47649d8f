// Package signer derives addresses, signs orders and L1 auth challenges,
// and computes L2 HMAC headers for authenticated requests.
package signer

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha256"
	"math/big"
	"strconv"
	"time"

	"polyclob/internal/eip712"
	"polyclob/internal/primitives"
)

// Clock is the injectable time source spec §9 calls for, so L1 auth
// signatures can be made deterministic in tests (order signatures do not
// read the clock).
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SignatureType mirrors the three wallet signature schemes Polymarket
// accepts.
type SignatureType int

const (
	SignatureTypeEOA SignatureType = iota
	SignatureTypePolyProxy
	SignatureTypePolyGnosisSafe
)

// Side is BUY or SELL.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideSell {
		return "SELL"
	}
	return "BUY"
}

// OrderParams is the caller-supplied content of an order, prior to signing.
// Amounts are base-unit decimal strings (see internal/primitives.ToBaseUnits).
type OrderParams struct {
	Maker         string
	Taker         string
	TokenID       string
	MakerAmount   string
	TakerAmount   string
	Side          Side
	FeeRateBps    string
	Nonce         string
	Expiration    int64
	SignatureType SignatureType
	// Salt overrides the randomly generated salt when non-nil, for
	// deterministic tests (spec scenario A).
	Salt *big.Int
}

// SignedOrder is the fully signed, wire-ready order envelope.
type SignedOrder struct {
	Salt          *big.Int
	Maker         string
	Signer        string
	Taker         string
	TokenID       string
	MakerAmount   string
	TakerAmount   string
	Expiration    string
	Nonce         string
	FeeRateBps    string
	Side          Side
	SignatureType SignatureType
	Signature     string
}

// L1Headers authenticate a request that mints or derives API credentials.
type L1Headers struct {
	Address   string
	Signature string
	Timestamp string
	Nonce     string
}

// ApiCredentials are the opaque L2 credentials issued once per wallet.
type ApiCredentials struct {
	APIKey     string
	Secret     string
	Passphrase string
}

// L2Headers authenticate a per-request HMAC-signed call.
type L2Headers struct {
	Address    string
	Signature  string
	Timestamp  string
	APIKey     string
	Passphrase string
}

// Signer holds a private key and the chain it signs for.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	chainID    int64
	address    string
	clock      Clock
}

// New constructs a Signer from a hex-encoded private key.
func New(privateKeyHex string, chainID int64) (*Signer, error) {
	key, err := primitives.ParsePrivateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	return &Signer{
		privateKey: key,
		chainID:    chainID,
		address:    primitives.AddressFromPrivateKey(key),
		clock:      realClock{},
	}, nil
}

// WithClock overrides the time source, for deterministic tests.
func (s *Signer) WithClock(c Clock) *Signer {
	s.clock = c
	return s
}

// Address returns the EIP-55 checksummed signer address.
func (s *Signer) Address() string { return s.address }

// SignOrder builds and signs the EIP-712 Order digest, generating a salt
// if the caller didn't supply one.
func (s *Signer) SignOrder(p OrderParams, verifyingContract string) (SignedOrder, error) {
	salt := p.Salt
	if salt == nil {
		var err error
		salt, err = primitives.GenerateSalt()
		if err != nil {
			return SignedOrder{}, err
		}
	}
	salt = primitives.ClampSalt(salt)

	domain := eip712.OrderDomain(s.chainID, verifyingContract)
	fields := eip712.OrderFields{
		Salt:          salt,
		Maker:         p.Maker,
		Signer:        s.address,
		Taker:         p.Taker,
		TokenID:       p.TokenID,
		MakerAmount:   p.MakerAmount,
		TakerAmount:   p.TakerAmount,
		Expiration:    strconv.FormatInt(p.Expiration, 10),
		Nonce:         p.Nonce,
		FeeRateBps:    p.FeeRateBps,
		Side:          int(p.Side),
		SignatureType: int(p.SignatureType),
	}

	digest, err := eip712.HashOrder(domain, fields)
	if err != nil {
		return SignedOrder{}, err
	}

	sig, err := primitives.SignRecoverable(digest, s.privateKey)
	if err != nil {
		return SignedOrder{}, err
	}

	return SignedOrder{
		Salt:          salt,
		Maker:         p.Maker,
		Signer:        s.address,
		Taker:         p.Taker,
		TokenID:       p.TokenID,
		MakerAmount:   p.MakerAmount,
		TakerAmount:   p.TakerAmount,
		Expiration:    fields.Expiration,
		Nonce:         p.Nonce,
		FeeRateBps:    p.FeeRateBps,
		Side:          p.Side,
		SignatureType: p.SignatureType,
		Signature:     primitives.EncodeHex(sig[:]),
	}, nil
}

// GenerateL1Headers signs the ClobAuth challenge over the current UNIX
// timestamp (from the signer's clock) and the given nonce. The address in
// the struct is always the signer, never the funder, even in proxy-wallet
// mode — matching the reference implementation.
func (s *Signer) GenerateL1Headers(nonce uint64) (L1Headers, error) {
	domain := eip712.AuthDomain(s.chainID)
	timestamp := strconv.FormatInt(s.clock.Now().UTC().Unix(), 10)

	digest, err := eip712.HashClobAuth(domain, s.address, timestamp, nonce)
	if err != nil {
		return L1Headers{}, err
	}
	sig, err := primitives.SignRecoverable(digest, s.privateKey)
	if err != nil {
		return L1Headers{}, err
	}

	return L1Headers{
		Address:   s.address,
		Signature: primitives.EncodeHex(sig[:]),
		Timestamp: timestamp,
		Nonce:     strconv.FormatUint(nonce, 10),
	}, nil
}

// GenerateL2Headers computes the per-request HMAC signature over
// timestamp||method||path||body (no separators; path excludes query
// string), HMAC-SHA256 under the base64-decoded secret, emitted as
// URL-safe base64.
func GenerateL2Headers(creds ApiCredentials, address, method, path, body string, now time.Time) (L2Headers, error) {
	timestamp := strconv.FormatInt(now.Unix(), 10)
	message := timestamp + method + path + body

	secretBytes, err := primitives.DecodeSecret(creds.Secret)
	if err != nil {
		return L2Headers{}, err
	}

	mac := hmac.New(sha256.New, secretBytes)
	mac.Write([]byte(message))
	signature := primitives.EncodeSignatureURLSafe(mac.Sum(nil))

	return L2Headers{
		Address:    address,
		Signature:  signature,
		Timestamp:  timestamp,
		APIKey:     creds.APIKey,
		Passphrase: creds.Passphrase,
	}, nil
}
