package primitives

import (
	"fmt"
	"strconv"
	"strings"
)

// roundFracDigits is the fixed intermediate precision the wire-unit
// conversion always rounds to before shifting the decimal point. This
// matches the reference implementation's "round to 10 decimals, then do
// decimal-point surgery" contract: a float multiply by 10^decimals is never
// performed.
const roundFracDigits = 10

// ToBaseUnits converts a decimal amount to a base-unit integer string
// (e.g. USDC's 6-decimal wei) without ever multiplying by 10^decimals in
// floating point. amount must be non-negative.
//
// The algorithm: take the shortest decimal string that round-trips to the
// input float, round its fractional part to 10 digits (floor when
// roundDown, banker's rounding otherwise), then shift the decimal point
// right by decimals places, padding with zeros or truncating as needed, and
// strip leading zeros (keeping at least one digit).
func ToBaseUnits(amount float64, decimals int, roundDown bool) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("amount must be non-negative, got %v", amount)
	}
	if decimals < 0 {
		return "", fmt.Errorf("decimals must be non-negative, got %d", decimals)
	}

	s := strconv.FormatFloat(amount, 'f', -1, 64)
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if !hasFrac {
		fracPart = ""
	}

	frac10, carry := roundFraction(fracPart, roundFracDigits, roundDown)
	if carry {
		intPart = incrementDecimalString(intPart)
	}

	shifted := shiftFraction(frac10, decimals)

	combined := strings.TrimLeft(intPart+shifted, "0")
	if combined == "" {
		combined = "0"
	}
	return combined, nil
}

// roundFraction rounds a fractional-digit string to exactly n digits,
// reporting whether rounding carried into the integer part.
func roundFraction(frac string, n int, roundDown bool) (string, bool) {
	if len(frac) <= n {
		return frac + strings.Repeat("0", n-len(frac)), false
	}

	kept := []byte(frac[:n])
	if roundDown {
		return string(kept), false
	}

	roundUp := false
	nextDigit := frac[n] - '0'
	switch {
	case nextDigit > 5:
		roundUp = true
	case nextDigit == 5:
		rest := strings.TrimRight(frac[n+1:], "0")
		if rest != "" {
			roundUp = true
		} else {
			// exactly half: round to even
			roundUp = (kept[len(kept)-1]-'0')%2 == 1
		}
	}

	carry := false
	if roundUp {
		carry = incrementDigitsInPlace(kept)
	}
	return string(kept), carry
}

// shiftFraction takes the (already-10-digit) fractional string and shifts
// the decimal point right by `decimals` places, padding with zeros if
// decimals exceeds the available precision.
func shiftFraction(frac10 string, decimals int) string {
	if decimals <= len(frac10) {
		return frac10[:decimals]
	}
	return frac10 + strings.Repeat("0", decimals-len(frac10))
}

// incrementDigitsInPlace adds 1 to the decimal digit string in b, from the
// least significant digit, returning true if the increment overflowed past
// the most significant digit (carry out of the whole string).
func incrementDigitsInPlace(b []byte) bool {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < '9' {
			b[i]++
			return false
		}
		b[i] = '0'
	}
	return true
}

// incrementDecimalString adds 1 to a (possibly empty, treated as "0")
// decimal string.
func incrementDecimalString(s string) string {
	if s == "" {
		s = "0"
	}
	b := []byte(s)
	if incrementDigitsInPlace(b) {
		return "1" + string(b)
	}
	return string(b)
}
