// Package lagrange recovers the constant term of an integer polynomial from sample points
// using exact Lagrange interpolation over big rationals.
package lagrange

import (
	"errors"
	"fmt"
	"math/big"
	"slices"
)

var (
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrDegenerateInput    = errors.New("degenerate input")
	ErrNonIntegerResult   = errors.New("non-integer result")
)

// Point is a sample (x, f(x)) of the polynomial. Points are never modified once built.
type Point struct {
	X *big.Int
	Y *big.Int
}

func (p Point) String() string {
	return fmt.Sprintf("(%s, %s)", p.X, p.Y)
}

// sorted returns a copy of points ordered by ascending x.
func sorted(points []Point) []Point {
	s := slices.Clone(points)
	slices.SortStableFunc(s, func(a, b Point) int {
		return a.X.Cmp(b.X)
	})
	return s
}

func selection(points []Point, k int) ([]Point, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", ErrInsufficientPoints, k)
	}
	if len(points) < k {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrInsufficientPoints, k, len(points))
	}
	return sorted(points)[:k], nil
}

// interpolate evaluates the polynomial through points at x.
func interpolate(points []Point, x *big.Int) (*big.Rat, error) {
	sum := new(big.Rat)
	diff := new(big.Int)

	for i, pi := range points {
		num := big.NewInt(1)
		den := big.NewInt(1)

		for j, pj := range points {
			if i == j {
				continue
			}
			num.Mul(num, diff.Sub(x, pj.X))
			den.Mul(den, diff.Sub(pi.X, pj.X))
		}

		if den.Sign() == 0 {
			return nil, fmt.Errorf("%w: duplicate x %s", ErrDegenerateInput, pi.X)
		}

		num.Mul(num, pi.Y)
		sum.Add(sum, new(big.Rat).SetFrac(num, den))
	}

	return sum, nil
}

// Recover returns f(0) for the unique polynomial of degree k-1 through the
// k points with the smallest x. The input slice is not modified.
func Recover(points []Point, k int) (*big.Int, error) {
	sel, err := selection(points, k)
	if err != nil {
		return nil, err
	}

	secret, err := interpolate(sel, big.NewInt(0))
	if err != nil {
		return nil, err
	}

	if !secret.IsInt() {
		return nil, fmt.Errorf("%w: %s", ErrNonIntegerResult, secret.RatString())
	}
	return new(big.Int).Set(secret.Num()), nil
}

// Evaluate returns the value at x of the polynomial passing through all of points.
func Evaluate(points []Point, x *big.Int) (*big.Rat, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: need at least 1, got 0", ErrInsufficientPoints)
	}
	return interpolate(points, x)
}
