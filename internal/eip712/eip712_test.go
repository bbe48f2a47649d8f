package eip712_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"polyclob/internal/eip712"
	"polyclob/internal/signer"
)

// the same well-known test private key used throughout internal/signer's
// tests (Hardhat/Anvil's default account #0), never used on mainnet.
const testPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func sampleOrderFields() eip712.OrderFields {
	return eip712.OrderFields{
		Salt:        big.NewInt(12345),
		Maker:       "0xAbC123000000000000000000000000000000000D",
		Signer:      "0xAbC123000000000000000000000000000000000D",
		Taker:       "0x0000000000000000000000000000000000000000",
		TokenID:     "100",
		MakerAmount: "3030000",
		TakerAmount: "3000000",
		Expiration:  "0",
		Nonce:       "0",
		FeeRateBps:  "0",
		Side:        0,
		SignatureType: 0,
	}
}

func TestHashOrder_IsDeterministic(t *testing.T) {
	domain := eip712.OrderDomain(137, "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E")
	fields := sampleOrderFields()

	h1, err := eip712.HashOrder(domain, fields)
	require.NoError(t, err)
	h2, err := eip712.HashOrder(domain, fields)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestHashOrder_DiffersWithSalt(t *testing.T) {
	domain := eip712.OrderDomain(137, "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E")
	f1 := sampleOrderFields()
	f2 := sampleOrderFields()
	f2.Salt = big.NewInt(99999)

	h1, err := eip712.HashOrder(domain, f1)
	require.NoError(t, err)
	h2, err := eip712.HashOrder(domain, f2)
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestHashOrder_DiffersWithVerifyingContract(t *testing.T) {
	fields := sampleOrderFields()
	domainA := eip712.OrderDomain(137, "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E")
	domainB := eip712.OrderDomain(137, "0xC5d563A36AE78145C45a50134d48A1215220f80a")

	hA, err := eip712.HashOrder(domainA, fields)
	require.NoError(t, err)
	hB, err := eip712.HashOrder(domainB, fields)
	require.NoError(t, err)
	require.NotEqual(t, hA, hB)
}

// TestHashOrder_KnownAnswerScenarioA drives OrderDomain and HashOrder
// through a real signature rather than only comparing hashes to each
// other: a domain or type-hash encoding bug would still leave two equal
// digests equal, but it would change this literal signature.
func TestHashOrder_KnownAnswerScenarioA(t *testing.T) {
	s, err := signer.New(testPrivateKey, 137)
	require.NoError(t, err)

	order, err := s.SignOrder(signer.OrderParams{
		Maker:         s.Address(),
		Taker:         "0x0000000000000000000000000000000000000000",
		TokenID:       "1234567890",
		MakerAmount:   "1000000",
		TakerAmount:   "2000000",
		Side:          signer.SideBuy,
		FeeRateBps:    "0",
		Nonce:         "0",
		Expiration:    0,
		SignatureType: signer.SignatureTypePolyGnosisSafe,
		Salt:          big.NewInt(123456789),
	}, "0xC5d563A36AE78145C45a50134d48A1215220f80a")
	require.NoError(t, err)

	require.Equal(t,
		"0x7883a3b2be0a2ec3ad8574fdf5fafe68a7d841369e2154272cbc9f8e66fc98bd27a7e89f0d51138be6b2f7b81012a2d4f475e2959f0a7ddf2ba0f5d756f6ae2f1c",
		order.Signature,
	)
}

func TestHashClobAuth_IsDeterministicAndAddressSensitive(t *testing.T) {
	domain := eip712.AuthDomain(137)

	h1, err := eip712.HashClobAuth(domain, "0xAbC123000000000000000000000000000000000D", "1700000000", 0)
	require.NoError(t, err)
	h2, err := eip712.HashClobAuth(domain, "0xAbC123000000000000000000000000000000000D", "1700000000", 0)
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	h3, err := eip712.HashClobAuth(domain, "0x0000000000000000000000000000000000000001", "1700000000", 0)
	require.NoError(t, err)
	require.NotEqual(t, h1, h3)
}
