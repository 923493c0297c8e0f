// Package zkriscv ties the virtual machine trace layer to the hyperkzg
// commitment scheme: the destination column of an execution trace becomes
// a multilinear polynomial, which is committed, opened at a
// verifier-chosen point and verified through a constant-size pairing
// check.
package zkriscv

import (
	"fmt"
	"io"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/logger"

	"github.com/sumcheck-labs/zkriscv/hyperkzg"
	"github.com/sumcheck-labs/zkriscv/mlpoly"
	"github.com/sumcheck-labs/zkriscv/transcript"
	"github.com/sumcheck-labs/zkriscv/vm"
)

// transcriptLabel seeds every prover/verifier transcript pair. Prover and
// verifier challenges only agree because both sides thread the same
// explicit transcript through the protocol.
const transcriptLabel = "zkriscv"

// TraceProof is a commitment to a trace column together with an opening
// at a point, as produced by ProveTrace and checked by VerifyTrace.
type TraceProof struct {
	Commitment hyperkzg.Digest
	Point      []fr.Element
	Eval       fr.Element
	Proof      *hyperkzg.Proof
}

// TracePolynomial lifts the destination column of a trace to a
// multilinear polynomial, padding with zeros to the next power of two
// (at least 2, so a single row still yields a one-variable polynomial).
// Rows without a destination value contribute zero.
func TracePolynomial(rows []vm.TraceRow) (*mlpoly.Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty trace")
	}
	n := 2
	for n < len(rows) {
		n *= 2
	}
	z := make([]fr.Element, n)
	for i, row := range rows {
		if row.RDPostVal != nil {
			z[i].SetUint64(*row.RDPostVal)
		}
	}
	return mlpoly.NewDense(z)
}

// ProveTrace commits to the destination column of rows and opens the
// commitment at point. The number of variables of point must match the
// padded trace length.
func ProveTrace(pk *hyperkzg.ProverKey, rows []vm.TraceRow, point []fr.Element) (*TraceProof, error) {
	log := logger.Logger().With().
		Str("backend", "hyperkzg").
		Int("rows", len(rows)).
		Logger()
	start := time.Now()

	poly, err := TracePolynomial(rows)
	if err != nil {
		return nil, err
	}
	if poly.Len() != 1<<len(point) {
		return nil, fmt.Errorf("trace polynomial has %d variables, point has %d",
			poly.NumVars(), len(point))
	}

	c, err := hyperkzg.Commit(pk, poly)
	if err != nil {
		return nil, fmt.Errorf("committing to trace: %w", err)
	}
	eval, err := poly.Evaluate(point)
	if err != nil {
		return nil, err
	}

	tr := transcript.New(transcriptLabel)
	proof, err := hyperkzg.Open(pk, tr, poly, point, eval)
	if err != nil {
		return nil, fmt.Errorf("opening trace commitment: %w", err)
	}

	log.Debug().Dur("took", time.Since(start)).Msg("prover done")

	return &TraceProof{
		Commitment: c,
		Point:      point,
		Eval:       eval,
		Proof:      proof,
	}, nil
}

// VerifyTrace checks a trace proof against its commitment.
func VerifyTrace(vk *hyperkzg.VerifierKey, tp *TraceProof) error {
	log := logger.Logger().With().Str("backend", "hyperkzg").Logger()
	start := time.Now()

	tr := transcript.New(transcriptLabel)
	err := hyperkzg.Verify(vk, tr, &tp.Commitment, tp.Point, tp.Eval, tp.Proof)

	log.Debug().Dur("took", time.Since(start)).Err(err).Msg("verifier done")
	return err
}

// WriteProof exports the opening proof in its canonical wire format.
func (tp *TraceProof) WriteProof(w io.Writer) error {
	_, err := tp.Proof.WriteTo(w)
	return err
}
