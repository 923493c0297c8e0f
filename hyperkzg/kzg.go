package hyperkzg

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Digest is the commitment to a polynomial: a single G1 element.
type Digest = bn254.G1Affine

// kzgCommit commits to a univariate polynomial in coefficient form with a
// multi exponentiation against the key's G1 powers.
func kzgCommit(pk *ProverKey, coeffs []fr.Element) (Digest, error) {
	if len(coeffs) > len(pk.G1) {
		return Digest{}, fmt.Errorf("%w: key has %d G1 powers, polynomial has %d coefficients",
			ErrKeyTooShort, len(pk.G1), len(coeffs))
	}
	var res Digest
	if _, err := res.MultiExp(pk.G1[:len(coeffs)], coeffs, ecc.MultiExpConfig{}); err != nil {
		return Digest{}, err
	}
	return res, nil
}

// witnessPolynomial computes h(X) = (f(X) - f(u)) / (X - u) by synthetic
// division from the high-degree end: h[i-1] = f[i] + h[i]*u. The division
// is exact because u is a root of f(X) - f(u); the remainder f(u) is
// simply never materialized.
func witnessPolynomial(f []fr.Element, u *fr.Element) []fr.Element {
	h := make([]fr.Element, len(f))
	for i := len(f) - 1; i >= 1; i-- {
		h[i-1].Mul(&h[i], u).Add(&h[i-1], &f[i])
	}
	return h
}

// kzgOpen commits to the witness polynomial of f at u.
func kzgOpen(pk *ProverKey, f []fr.Element, u *fr.Element) (bn254.G1Affine, error) {
	return kzgCommit(pk, witnessPolynomial(f, u))
}

// eval evaluates a coefficient-form polynomial at u with Horner's rule.
func eval(f []fr.Element, u *fr.Element) fr.Element {
	var y fr.Element
	for i := len(f) - 1; i >= 0; i-- {
		y.Mul(&y, u).Add(&y, &f[i])
	}
	return y
}

// powers returns (1, a, a^2, ..., a^(n-1)).
func powers(a *fr.Element, n int) []fr.Element {
	res := make([]fr.Element, n)
	if n == 0 {
		return res
	}
	res[0].SetOne()
	for i := 1; i < n; i++ {
		res[i].Mul(&res[i-1], a)
	}
	return res
}
