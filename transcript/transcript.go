// Package transcript implements the Fiat-Shamir transform used to derive
// verifier challenges from prior protocol messages, making the interactive
// opening protocol non-interactive.
package transcript

import (
	"crypto/sha256"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Transcript is an append-only sponge. Every append and every challenge
// carries a label that becomes part of the hashed input, so two executions
// performing the same sequence of calls with identical payloads derive
// identical challenges.
//
// Challenges chain: the digest produced by ChallengeScalar seeds the state
// for everything appended afterwards, so later challenges depend on the
// full history of the transcript.
type Transcript struct {
	state []byte
}

// New returns a transcript seeded with a domain separation label.
func New(label string) *Transcript {
	t := &Transcript{}
	t.appendBytes([]byte(label))
	return t
}

func (t *Transcript) appendBytes(b []byte) {
	t.state = append(t.state, b...)
}

// AppendPoint absorbs a G1 point in compressed form.
func (t *Transcript) AppendPoint(label string, p *bn254.G1Affine) {
	t.appendBytes([]byte(label))
	b := p.Bytes()
	t.appendBytes(b[:])
}

// AppendPoints absorbs a list of G1 points under a single label.
func (t *Transcript) AppendPoints(label string, ps []bn254.G1Affine) {
	t.appendBytes([]byte(label))
	for i := range ps {
		b := ps[i].Bytes()
		t.appendBytes(b[:])
	}
}

// AppendScalar absorbs a field element in canonical big-endian form.
func (t *Transcript) AppendScalar(label string, s *fr.Element) {
	t.appendBytes([]byte(label))
	b := s.Bytes()
	t.appendBytes(b[:])
}

// AppendScalars absorbs a list of field elements under a single label.
func (t *Transcript) AppendScalars(label string, ss []fr.Element) {
	t.appendBytes([]byte(label))
	for i := range ss {
		b := ss[i].Bytes()
		t.appendBytes(b[:])
	}
}

// ChallengeScalar hashes the accumulated state, including the label, and
// reduces the digest into fr. The digest replaces the state so that
// subsequent appends and challenges remain bound to everything absorbed
// so far.
func (t *Transcript) ChallengeScalar(label string) fr.Element {
	t.appendBytes([]byte(label))
	digest := sha256.Sum256(t.state)
	t.state = append(t.state[:0], digest[:]...)

	var c fr.Element
	c.SetBytes(digest[:])
	return c
}
