// Package eip712 builds the typed-data domain and struct hashes for the
// two message types this module signs: Polymarket's Order and the
// ClobAuth challenge used to mint API credentials.
package eip712

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"polyclob/errs"
	"polyclob/internal/primitives"
)

const (
	// AuthAttestationMessage is the literal message every ClobAuth
	// challenge signs over.
	AuthAttestationMessage = "This message attests that I control the given wallet"

	exchangeDomainName = "Polymarket CTF Exchange"
	authDomainName      = "ClobAuthDomain"
	domainVersion       = "1"
)

var orderDomainTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Order": {
		{Name: "salt", Type: "uint256"},
		{Name: "maker", Type: "address"},
		{Name: "signer", Type: "address"},
		{Name: "taker", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "makerAmount", Type: "uint256"},
		{Name: "takerAmount", Type: "uint256"},
		{Name: "expiration", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "feeRateBps", Type: "uint256"},
		{Name: "side", Type: "uint8"},
		{Name: "signatureType", Type: "uint8"},
	},
}

var authDomainTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
	},
	"ClobAuth": {
		{Name: "address", Type: "address"},
		{Name: "timestamp", Type: "string"},
		{Name: "nonce", Type: "uint256"},
		{Name: "message", Type: "string"},
	},
}

// OrderFields is the message body hashed and signed for an order. All
// numeric fields are carried as decimal strings to keep the caller's
// exact precision; Side/SignatureType are the small integer enum values.
type OrderFields struct {
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
	Side          int
	SignatureType int
}

// OrderDomain builds the Exchange domain for a given chain and verifying
// contract (the standard exchange address, or the neg-risk exchange
// address when the market is neg-risk).
func OrderDomain(chainID int64, verifyingContract string) apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              exchangeDomainName,
		Version:           domainVersion,
		ChainId:           math.NewHexOrDecimal256(chainID),
		VerifyingContract: verifyingContract,
	}
}

// AuthDomain builds the three-field ClobAuthDomain (no verifying contract).
func AuthDomain(chainID int64) apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:    authDomainName,
		Version: domainVersion,
		ChainId: math.NewHexOrDecimal256(chainID),
	}
}

// HashOrder computes the EIP-712 digest (0x1901 || domainHash ||
// structHash, keccak'd) for an order against the given domain.
func HashOrder(domain apitypes.TypedDataDomain, f OrderFields) ([32]byte, error) {
	message := apitypes.TypedDataMessage{
		"salt":          f.Salt.String(),
		"maker":         strings.ToLower(f.Maker),
		"signer":        strings.ToLower(f.Signer),
		"taker":         strings.ToLower(f.Taker),
		"tokenId":       f.TokenID,
		"makerAmount":   f.MakerAmount,
		"takerAmount":   f.TakerAmount,
		"expiration":    f.Expiration,
		"nonce":         f.Nonce,
		"feeRateBps":    f.FeeRateBps,
		"side":          strconv.Itoa(f.Side),
		"signatureType": strconv.Itoa(f.SignatureType),
	}

	typedData := apitypes.TypedData{
		Types:       orderDomainTypes,
		PrimaryType: "Order",
		Domain:      domain,
		Message:     message,
	}
	return digest(typedData)
}

// HashClobAuth computes the EIP-712 digest for the L1 auth challenge: the
// signer's address, a UNIX-second timestamp, a nonce, and the fixed
// attestation message.
func HashClobAuth(domain apitypes.TypedDataDomain, address string, timestamp string, nonce uint64) ([32]byte, error) {
	typedData := apitypes.TypedData{
		Types:       authDomainTypes,
		PrimaryType: "ClobAuth",
		Domain:      domain,
		Message: apitypes.TypedDataMessage{
			"address":   address,
			"timestamp": timestamp,
			"nonce":     math.NewHexOrDecimal256(int64(nonce)),
			"message":   AuthAttestationMessage,
		},
	}
	return digest(typedData)
}

func digest(typedData apitypes.TypedData) ([32]byte, error) {
	domainSep, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return [32]byte{}, &errs.CryptoFailure{Op: "hash domain", Err: err}
	}
	structHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return [32]byte{}, &errs.CryptoFailure{Op: "hash struct", Err: err}
	}
	return primitives.Keccak256([]byte{0x19, 0x01}, domainSep, structHash), nil
}
