// Package hyperkzg implements a polynomial commitment scheme for
// multilinear polynomials in evaluation form, built on a univariate KZG
// commitment over bn254.
//
// The evaluation vector of a multilinear polynomial doubles as the
// coefficient vector of a univariate polynomial, so committing needs no
// basis change. An evaluation claim P(x) = y is reduced, by repeatedly
// folding the vector with the coordinates of x, to a batch of univariate
// claims at the three points (r, -r, r^2) for a transcript challenge r,
// which a single multi-exponentiation and two pairings verify.
package hyperkzg

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/sumcheck-labs/zkriscv/mlpoly"
	"github.com/sumcheck-labs/zkriscv/transcript"
)

// ErrInvalidProof is returned for every verifier rejection. The wrapped
// messages differ for debugging, but callers observe a single error kind.
var ErrInvalidProof = errors.New("invalid hyperkzg proof")

// Proof attests that a committed multilinear polynomial in ell variables
// evaluates to a claimed value at a point of F^ell.
type Proof struct {
	// Com commits to the ell-1 intermediate folds of the evaluation
	// vector (the original polynomial is committed separately by the
	// caller, and the final fold is the claimed evaluation itself).
	Com []bn254.G1Affine

	// W are the witness commitments of the batched polynomial opened at
	// r, -r and r^2.
	W [3]bn254.G1Affine

	// V[j][i] is the evaluation of the i-th fold at the j-th opening
	// point.
	V [3][]fr.Element
}

// Commit commits to a multilinear polynomial by treating its evaluation
// vector as univariate coefficients.
func Commit(pk *ProverKey, p *mlpoly.Dense) (Digest, error) {
	return kzgCommit(pk, p.Z)
}

// Open proves that p evaluates to claimedEval at point. The claimed
// evaluation and the commitment to p are expected to be in the transcript
// already; the value itself is not used by the prover.
func Open(pk *ProverKey, tr *transcript.Transcript, p *mlpoly.Dense, point []fr.Element, claimedEval fr.Element) (*Proof, error) {
	_ = claimedEval

	ell := len(point)
	n := p.Len()
	if ell == 0 || n != 1<<ell {
		return nil, fmt.Errorf("polynomial has %d evaluations, point has %d variables", n, ell)
	}

	// Phase 1: fold tower. polys[i+1] is polys[i] with one more variable
	// of the point bound, from the highest index down. The last fold,
	// the evaluation itself, is never materialized.
	polys := make([][]fr.Element, ell)
	polys[0] = p.Z
	for i := 0; i < ell-1; i++ {
		polys[i+1] = mlpoly.FoldOnce(polys[i], &point[ell-1-i])
	}

	// Phase 2: commit to the folds, then derive the opening points
	// u = (r, -r, r^2) from the transcript.
	com := make([]bn254.G1Affine, ell-1)
	g := new(errgroup.Group)
	for i := 1; i < ell; i++ {
		i := i
		g.Go(func() error {
			c, err := kzgCommit(pk, polys[i])
			if err != nil {
				return err
			}
			com[i-1] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tr.AppendPoints("c", com)
	r := tr.ChallengeScalar("c")
	u := openingPoints(&r)

	// Phase 3: evaluate every fold at every opening point, derive the
	// batching challenge q, and open B = sum_i q^i * polys[i] at each
	// point. Each parallel phase joins before the transcript is touched.
	var v [3][]fr.Element
	g = new(errgroup.Group)
	for j := range u {
		j := j
		g.Go(func() error {
			row := make([]fr.Element, ell)
			for i := range polys {
				row[i] = eval(polys[i], &u[j])
			}
			v[j] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tr.AppendScalars("v", flatten(v, ell))
	q := tr.ChallengeScalar("r")

	b := batchPolynomial(polys, &q)

	var w [3]bn254.G1Affine
	g = new(errgroup.Group)
	for j := range u {
		j := j
		g.Go(func() error {
			wj, err := kzgOpen(pk, b, &u[j])
			if err != nil {
				return err
			}
			w[j] = wj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tr.AppendPoints("W", w[:])
	// The prover has no use for this challenge, but must consume it to
	// keep its transcript in the verifier's state.
	_ = tr.ChallengeScalar("d")

	return &Proof{Com: com, W: w, V: v}, nil
}

// Verify checks a proof that the polynomial committed in c evaluates to
// eval at point. Every rejection satisfies errors.Is(err, ErrInvalidProof).
func Verify(vk *VerifierKey, tr *transcript.Transcript, c *Digest, point []fr.Element, eval fr.Element, proof *Proof) error {
	ell := len(point)
	if ell == 0 || len(proof.Com) != ell-1 {
		return fmt.Errorf("%w: expected %d fold commitments, got %d", ErrInvalidProof, ell-1, len(proof.Com))
	}

	tr.AppendPoints("c", proof.Com)
	r := tr.ChallengeScalar("c")

	// r = 0 or an identity commitment would collapse the opening
	// equation below into a tautology.
	if r.IsZero() || c.IsInfinity() {
		return fmt.Errorf("%w: degenerate parameters", ErrInvalidProof)
	}

	com := make([]bn254.G1Affine, 0, ell)
	com = append(com, *c)
	com = append(com, proof.Com...)

	u := openingPoints(&r)

	for j := range proof.V {
		if len(proof.V[j]) != ell {
			return fmt.Errorf("%w: evaluation row %d has length %d, expected %d",
				ErrInvalidProof, j, len(proof.V[j]), ell)
		}
	}
	ypos := proof.V[0]
	yneg := proof.V[1]
	y := make([]fr.Element, ell+1)
	copy(y, proof.V[2])
	y[ell] = eval

	// Fold consistency: each claimed evaluation at r^2 must be the
	// correct combination of the previous fold's values at r and -r,
	//   2*r*Y[i+1] = r*(1-x̂)*(ypos[i]+yneg[i]) + x̂*(ypos[i]-yneg[i]),
	// the recursion rearranged to avoid dividing by two.
	var one, lhs, rhs, sum, diff, oneMinusX, t fr.Element
	one.SetOne()
	for i := 0; i < ell; i++ {
		xhat := point[ell-1-i]

		lhs.Double(&r).Mul(&lhs, &y[i+1])

		sum.Add(&ypos[i], &yneg[i])
		diff.Sub(&ypos[i], &yneg[i])
		oneMinusX.Sub(&one, &xhat)
		rhs.Mul(&r, &oneMinusX).Mul(&rhs, &sum)
		t.Mul(&xhat, &diff)
		rhs.Add(&rhs, &t)

		if !lhs.Equal(&rhs) {
			return fmt.Errorf("%w: fold consistency check failed at level %d", ErrInvalidProof, i)
		}
	}

	return verifyBatched(vk, tr, com, &proof.W, &u, &proof.V)
}

// verifyBatched checks the three batched KZG openings with a single
// multi-exponentiation and one pairing equality:
//
//	e(L, g2) = e(R, tau*g2)
//
// where L folds the commitments, witnesses and claimed evaluations with
// the batching challenges q and d0, and R = W0 + d0*W1 + d0^2*W2.
func verifyBatched(vk *VerifierKey, tr *transcript.Transcript, com []bn254.G1Affine, w *[3]bn254.G1Affine, u *[3]fr.Element, v *[3][]fr.Element) error {
	k := len(com)

	tr.AppendScalars("v", flatten(*v, k))
	q := tr.ChallengeScalar("r")

	tr.AppendPoints("W", w[:])
	d0 := tr.ChallengeScalar("d")
	var d1 fr.Element
	d1.Square(&d0)

	qPowers := powers(&q, k)

	// batched evaluations B(u_j) = sum_i q^i * v[j][i]
	var bu [3]fr.Element
	var t fr.Element
	for j := range bu {
		for i := 0; i < k; i++ {
			t.Mul(&qPowers[i], &v[j][i])
			bu[j].Add(&bu[j], &t)
		}
	}

	// multiplier (1 + d0 + d1) distributes the commitment fold over the
	// three opening points
	var m fr.Element
	m.SetOne().Add(&m, &d0).Add(&m, &d1)

	bases := make([]bn254.G1Affine, k+4)
	scalars := make([]fr.Element, k+4)
	copy(bases, com)
	for i := 0; i < k; i++ {
		scalars[i].Mul(&qPowers[i], &m)
	}
	bases[k] = w[0]
	scalars[k] = u[0]
	bases[k+1] = w[1]
	scalars[k+1].Mul(&u[1], &d0)
	bases[k+2] = w[2]
	scalars[k+2].Mul(&u[2], &d1)
	bases[k+3] = vk.G1
	scalars[k+3].Mul(&bu[1], &d0)
	t.Mul(&bu[2], &d1)
	scalars[k+3].Add(&scalars[k+3], &t).Add(&scalars[k+3], &bu[0]).Neg(&scalars[k+3])

	var left bn254.G1Affine
	if _, err := left.MultiExp(bases, scalars, ecc.MultiExpConfig{}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}

	var right, tmp bn254.G1Affine
	var bi big.Int
	right = w[0]
	tmp.ScalarMultiplication(&w[1], d0.BigInt(&bi))
	right.Add(&right, &tmp)
	tmp.ScalarMultiplication(&w[2], d1.BigInt(&bi))
	right.Add(&right, &tmp)

	// e(L, g2) = e(R, tau*g2)  <=>  e(L, g2) * e(-R, tau*g2) = 1
	right.Neg(&right)
	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{left, right},
		[]bn254.G2Affine{vk.G2, vk.TauG2},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if !ok {
		return fmt.Errorf("%w: pairing equation does not hold", ErrInvalidProof)
	}
	return nil
}

// openingPoints returns (r, -r, r^2).
func openingPoints(r *fr.Element) [3]fr.Element {
	var u [3]fr.Element
	u[0] = *r
	u[1].Neg(r)
	u[2].Square(r)
	return u
}

// batchPolynomial folds the tower into B = sum_i q^i * polys[i].
// polys[0] is the longest; shorter folds only touch a prefix.
func batchPolynomial(polys [][]fr.Element, q *fr.Element) []fr.Element {
	b := make([]fr.Element, len(polys[0]))
	copy(b, polys[0])
	var qPow, t fr.Element
	qPow.SetOne()
	for i := 1; i < len(polys); i++ {
		qPow.Mul(&qPow, q)
		for j := range polys[i] {
			t.Mul(&qPow, &polys[i][j])
			b[j].Add(&b[j], &t)
		}
	}
	return b
}

// flatten serializes the evaluation matrix row-major for the transcript.
func flatten(v [3][]fr.Element, ell int) []fr.Element {
	flat := make([]fr.Element, 0, 3*ell)
	for j := range v {
		flat = append(flat, v[j]...)
	}
	return flat
}
