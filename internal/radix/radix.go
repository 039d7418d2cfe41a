// Package radix converts digit strings in bases 2 through 36 to and from arbitrary-precision integers.
package radix

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	MinBase = 2
	MaxBase = 36
)

var (
	ErrInvalidBase  = errors.New("invalid base")
	ErrInvalidDigit = errors.New("invalid digit")
	ErrNegative     = errors.New("negative value")
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func digit(r rune) int {
	switch {
	case '0' <= r && r <= '9':
		return int(r - '0')
	case 'a' <= r && r <= 'z':
		return int(r-'a') + 10
	case 'A' <= r && r <= 'Z':
		return int(r-'A') + 10
	}
	return -1
}

func checkBase(base int) error {
	if base < MinBase || base > MaxBase {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidBase, base, MinBase, MaxBase)
	}
	return nil
}

// Decode returns the value of digits read as a number in the given base.
// Letters are case-insensitive digits 10 through 35.
func Decode(digits string, base int) (*big.Int, error) {
	if err := checkBase(base); err != nil {
		return nil, err
	}
	if digits == "" {
		return nil, fmt.Errorf("%w: empty digit string", ErrInvalidDigit)
	}

	n := big.NewInt(0)
	b := big.NewInt(int64(base))
	d := big.NewInt(0)

	for i, r := range digits {
		v := digit(r)
		if v < 0 || v >= base {
			return nil, fmt.Errorf("%w: %q at position %d for base %d", ErrInvalidDigit, r, i, base)
		}

		n.Mul(n, b)
		n.Add(n, d.SetInt64(int64(v)))
	}
	return n, nil
}

// Encode renders n in the given base using lowercase letters for digits above 9.
func Encode(n *big.Int, base int) (string, error) {
	if err := checkBase(base); err != nil {
		return "", err
	}
	if n.Sign() < 0 {
		return "", fmt.Errorf("%w: %s", ErrNegative, n)
	}
	if n.Sign() == 0 {
		return "0", nil
	}

	n = big.NewInt(0).Set(n) // Clone n

	b := big.NewInt(int64(base))
	m := big.NewInt(0)

	var rev []byte
	for n.Sign() > 0 {
		n.DivMod(n, b, m)
		rev = append(rev, alphabet[m.Int64()])
	}

	s := &strings.Builder{}
	s.Grow(len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		s.WriteByte(rev[i])
	}
	return s.String(), nil
}
