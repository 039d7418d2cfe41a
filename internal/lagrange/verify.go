package lagrange

import (
	"fmt"
	"math/big"
)

// Mismatch is an extra point that the recovered polynomial does not pass through.
type Mismatch struct {
	X    *big.Int
	Want *big.Int
	Have *big.Rat
}

func (m Mismatch) String() string {
	return fmt.Sprintf("x=%s: recorded %s, polynomial gives %s", m.X, m.Want, m.Have.RatString())
}

// Verify interpolates the same k points Recover uses and checks every remaining
// point against that polynomial. It returns the points that do not lie on it.
func Verify(points []Point, k int) ([]Mismatch, error) {
	sel, err := selection(points, k)
	if err != nil {
		return nil, err
	}

	var mismatches []Mismatch
	for _, p := range sorted(points)[k:] {
		have, err := interpolate(sel, p.X)
		if err != nil {
			return nil, err
		}

		if want := new(big.Rat).SetInt(p.Y); have.Cmp(want) != 0 {
			mismatches = append(mismatches, Mismatch{
				X:    p.X,
				Want: p.Y,
				Have: have,
			})
		}
	}
	return mismatches, nil
}
