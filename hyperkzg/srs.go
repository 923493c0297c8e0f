package hyperkzg

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ptau "github.com/mdehoog/gnark-ptau"
)

var (
	ErrMinSRSSize  = errors.New("minimum srs degree is 1")
	ErrKeyTooShort = errors.New("key is too short")
)

// Conf specifies how the structured reference string is obtained: from a
// trusted ceremony file, or from a throwaway local tau not suitable for
// production.
type Conf int

const (
	Trusted Conf = iota
	TestOnly
)

// SRS holds the powers of a secret tau in both source groups:
// G1[i] = tau^i * g1 for i in [0, D], and G2 = (g2, tau * g2).
// The tau used to generate it is never stored.
type SRS struct {
	G1 []bn254.G1Affine
	G2 [2]bn254.G2Affine
}

// ProverKey is a prefix view of a shared SRS, long enough to commit to
// polynomials up to its working degree. It never copies the powers.
type ProverKey struct {
	srs *SRS
	G1  []bn254.G1Affine
}

// VerifierKey is the constant-size verification counterpart, copied by
// value.
type VerifierKey struct {
	G1    bn254.G1Affine
	G2    bn254.G2Affine
	TauG2 bn254.G2Affine
}

// NewSRS generates an SRS of maximum degree maxDegree from a random tau
// drawn from crypto/rand and immediately discarded. In production a
// ceremony-generated SRS must be used instead (see NewSRSFromPtau).
func NewSRS(maxDegree int) (*SRS, error) {
	if maxDegree < 1 {
		return nil, ErrMinSRSSize
	}
	bTau, err := rand.Int(rand.Reader, fr.Modulus())
	if err != nil {
		return nil, fmt.Errorf("sampling tau: %w", err)
	}

	var srs SRS
	srs.G1 = make([]bn254.G1Affine, maxDegree+1)

	_, _, g1, g2 := bn254.Generators()
	srs.G1[0] = g1
	srs.G2[0] = g2
	srs.G2[1].ScalarMultiplication(&g2, bTau)

	var tau fr.Element
	tau.SetBigInt(bTau)
	taus := make([]fr.Element, maxDegree)
	taus[0] = tau
	for i := 1; i < len(taus); i++ {
		taus[i].Mul(&taus[i-1], &tau)
	}
	g1s := bn254.BatchScalarMultiplicationG1(&g1, taus)
	copy(srs.G1[1:], g1s)

	return &srs, nil
}

// NewSRSFromPtau reads a powers-of-tau ceremony file (snarkjs .ptau
// format) and keeps the first maxDegree+1 G1 powers.
func NewSRSFromPtau(r io.Reader, maxDegree int) (*SRS, error) {
	if maxDegree < 1 {
		return nil, ErrMinSRSSize
	}
	ceremony, err := ptau.ToSRS(r)
	if err != nil {
		return nil, fmt.Errorf("reading ptau file: %w", err)
	}
	if len(ceremony.Pk.G1) < maxDegree+1 {
		return nil, fmt.Errorf("%w: ceremony provides %d G1 powers, need %d",
			ErrKeyTooShort, len(ceremony.Pk.G1), maxDegree+1)
	}
	return &SRS{
		G1: ceremony.Pk.G1[:maxDegree+1],
		G2: [2]bn254.G2Affine{ceremony.Vk.G2[0], ceremony.Vk.G2[1]},
	}, nil
}

// Setup returns an SRS of maximum degree maxDegree per conf: Trusted loads
// the ceremony file at ceremonyPath, TestOnly generates throwaway
// parameters locally.
func Setup(conf Conf, maxDegree int, ceremonyPath string) (*SRS, error) {
	switch conf {
	case Trusted:
		f, err := os.Open(ceremonyPath)
		if err != nil {
			return nil, fmt.Errorf("opening ceremony file: %w", err)
		}
		defer f.Close()
		return NewSRSFromPtau(f, maxDegree)
	case TestOnly:
		return NewSRS(maxDegree)
	default:
		return nil, fmt.Errorf("unknown setup conf: %d", conf)
	}
}

// MaxDegree returns the largest polynomial degree the SRS supports.
func (s *SRS) MaxDegree() int {
	return len(s.G1) - 1
}

// Trim derives a prover key for polynomials of degree up to maxDegree and
// the matching verifier key. The prover key shares the SRS powers; the
// verifier key is a value copy of the three elements it needs.
func (s *SRS) Trim(maxDegree int) (*ProverKey, *VerifierKey, error) {
	if maxDegree+1 > len(s.G1) {
		return nil, nil, fmt.Errorf("%w: srs has %d G1 powers, need %d",
			ErrKeyTooShort, len(s.G1), maxDegree+1)
	}
	pk := &ProverKey{srs: s, G1: s.G1[:maxDegree+1]}
	vk := &VerifierKey{G1: s.G1[0], G2: s.G2[0], TauG2: s.G2[1]}
	return pk, vk, nil
}
