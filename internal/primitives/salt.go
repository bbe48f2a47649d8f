package primitives

import (
	"crypto/rand"
	"math/big"
)

// SaltUpperBound is the exclusive upper bound on generated salts: a
// uniformly random decimal value in [0, 10^12).
var SaltUpperBound = new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil)

// MaxSalt is the largest salt value the wire envelope can carry without
// overflowing a signed 64-bit integer on strict servers.
var MaxSalt = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 62), big.NewInt(1))

// GenerateSalt returns a uniformly random salt in [0, 10^12), grounded on
// the reference implementation's uniform_int_distribution(0, 999999999999)
// rather than a float-seeded PRNG.
func GenerateSalt() (*big.Int, error) {
	return rand.Int(rand.Reader, SaltUpperBound)
}

// ClampSalt caps a caller-supplied salt at 2^62-1, the largest value the
// wire envelope's signed 64-bit integer field can hold.
func ClampSalt(salt *big.Int) *big.Int {
	if salt.Cmp(MaxSalt) > 0 {
		return new(big.Int).Set(MaxSalt)
	}
	return salt
}
