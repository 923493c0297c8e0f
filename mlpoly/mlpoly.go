// Package mlpoly provides dense multilinear polynomials represented in
// evaluation form, i.e. by their values on the boolean hypercube {0,1}^n.
package mlpoly

import (
	"errors"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	ErrNotPowerOfTwo = errors.New("number of evaluations must be a power of two")
	ErrWrongNumVars  = errors.New("evaluation point has the wrong number of variables")
)

// Dense is a multilinear polynomial in n variables stored as its 2^n
// evaluations over the boolean hypercube.
type Dense struct {
	Z []fr.Element
}

// NewDense wraps evaluations z as a multilinear polynomial. The slice is
// not copied; it must not be mutated afterwards.
func NewDense(z []fr.Element) (*Dense, error) {
	if len(z) == 0 || len(z)&(len(z)-1) != 0 {
		return nil, ErrNotPowerOfTwo
	}
	return &Dense{Z: z}, nil
}

// Len returns the number of evaluations, 2^NumVars.
func (p *Dense) Len() int {
	return len(p.Z)
}

// NumVars returns the number of variables.
func (p *Dense) NumVars() int {
	return bits.TrailingZeros(uint(len(p.Z)))
}

// FoldOnce binds the highest-index variable of f (the one selected by the
// lowest bit of the evaluation index) to x, halving the number of
// evaluations: out[j] = x*(f[2j+1] - f[2j]) + f[2j].
func FoldOnce(f []fr.Element, x *fr.Element) []fr.Element {
	out := make([]fr.Element, len(f)/2)
	var d fr.Element
	for j := range out {
		d.Sub(&f[2*j+1], &f[2*j])
		out[j].Mul(&d, x).Add(&out[j], &f[2*j])
	}
	return out
}

// Fold returns the polynomial with the highest-index variable bound to x.
func (p *Dense) Fold(x *fr.Element) *Dense {
	return &Dense{Z: FoldOnce(p.Z, x)}
}

// Evaluate computes the multilinear extension of p at an arbitrary point
// of F^n, binding variables from the highest index down.
func (p *Dense) Evaluate(point []fr.Element) (fr.Element, error) {
	n := p.NumVars()
	if len(point) != n {
		return fr.Element{}, ErrWrongNumVars
	}
	f := p.Z
	for i := 0; i < n; i++ {
		f = FoldOnce(f, &point[n-1-i])
	}
	return f[0], nil
}
