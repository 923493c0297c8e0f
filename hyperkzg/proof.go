package hyperkzg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Canonical proof wire format, compatible with the reference
// serialization:
//
//	u64(len) || com points
//	u64(3)   || witness points
//	u64(3)   || ( u64(ell) || scalars ) x 3
//
// All length prefixes are little-endian. Points are compressed to the
// 32-byte little-endian x coordinate, with the infinity flag in bit 6 and
// the y-sign flag in bit 7 of the final byte (set when y is the
// lexicographically larger square root). Scalars are 32 bytes
// little-endian. A 2-variable proof is exactly 368 bytes.

const (
	sizeSerializedPoint  = 32
	sizeSerializedScalar = 32

	flagInfinity  byte = 1 << 6
	flagNegativeY byte = 1 << 7

	// maxSerializedVars caps vector lengths read from untrusted input.
	maxSerializedVars = 64
)

var ErrMalformedProof = errors.New("malformed serialized proof")

func serializePoint(p *bn254.G1Affine) [sizeSerializedPoint]byte {
	var out [sizeSerializedPoint]byte
	if p.IsInfinity() {
		out[sizeSerializedPoint-1] = flagInfinity
		return out
	}
	xb := p.X.Bytes()
	for i := range xb {
		out[i] = xb[len(xb)-1-i]
	}
	var negY fp.Element
	negY.Neg(&p.Y)
	if p.Y.Cmp(&negY) > 0 {
		out[sizeSerializedPoint-1] |= flagNegativeY
	}
	return out
}

func deserializePoint(p *bn254.G1Affine, in []byte) error {
	flags := in[sizeSerializedPoint-1] & (flagInfinity | flagNegativeY)
	if flags == flagInfinity {
		p.X.SetZero()
		p.Y.SetZero()
		return nil
	}

	var xb [sizeSerializedPoint]byte
	for i := range xb {
		xb[i] = in[len(in)-1-i]
	}
	xb[0] &^= flagInfinity | flagNegativeY
	p.X.SetBytes(xb[:])

	// y^2 = x^3 + 3
	var y2 fp.Element
	y2.Square(&p.X).Mul(&y2, &p.X)
	var three fp.Element
	three.SetUint64(3)
	y2.Add(&y2, &three)
	if p.Y.Sqrt(&y2) == nil {
		return fmt.Errorf("%w: x coordinate is not on the curve", ErrMalformedProof)
	}

	var negY fp.Element
	negY.Neg(&p.Y)
	larger := p.Y.Cmp(&negY) > 0
	if (flags == flagNegativeY) != larger {
		p.Y = negY
	}
	return nil
}

func serializeScalar(s *fr.Element) [sizeSerializedScalar]byte {
	var out [sizeSerializedScalar]byte
	sb := s.Bytes()
	for i := range sb {
		out[i] = sb[len(sb)-1-i]
	}
	return out
}

func deserializeScalar(s *fr.Element, in []byte) {
	var sb [sizeSerializedScalar]byte
	for i := range sb {
		sb[i] = in[len(in)-1-i]
	}
	s.SetBytes(sb[:])
}

// WriteTo serializes the proof in the canonical wire format.
func (proof *Proof) WriteTo(w io.Writer) (int64, error) {
	var written int64

	writeLen := func(n int) error {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		m, err := w.Write(buf[:])
		written += int64(m)
		return err
	}
	writePoint := func(p *bn254.G1Affine) error {
		buf := serializePoint(p)
		m, err := w.Write(buf[:])
		written += int64(m)
		return err
	}

	if err := writeLen(len(proof.Com)); err != nil {
		return written, err
	}
	for i := range proof.Com {
		if err := writePoint(&proof.Com[i]); err != nil {
			return written, err
		}
	}

	if err := writeLen(len(proof.W)); err != nil {
		return written, err
	}
	for i := range proof.W {
		if err := writePoint(&proof.W[i]); err != nil {
			return written, err
		}
	}

	if err := writeLen(len(proof.V)); err != nil {
		return written, err
	}
	for j := range proof.V {
		if err := writeLen(len(proof.V[j])); err != nil {
			return written, err
		}
		for i := range proof.V[j] {
			buf := serializeScalar(&proof.V[j][i])
			m, err := w.Write(buf[:])
			written += int64(m)
			if err != nil {
				return written, err
			}
		}
	}

	return written, nil
}

// ReadFrom deserializes a proof from the canonical wire format.
func (proof *Proof) ReadFrom(r io.Reader) (int64, error) {
	var read int64

	readLen := func() (int, error) {
		var buf [8]byte
		m, err := io.ReadFull(r, buf[:])
		read += int64(m)
		if err != nil {
			return 0, err
		}
		n := binary.LittleEndian.Uint64(buf[:])
		if n > maxSerializedVars {
			return 0, fmt.Errorf("%w: vector length %d out of range", ErrMalformedProof, n)
		}
		return int(n), nil
	}
	readPoint := func(p *bn254.G1Affine) error {
		var buf [sizeSerializedPoint]byte
		m, err := io.ReadFull(r, buf[:])
		read += int64(m)
		if err != nil {
			return err
		}
		return deserializePoint(p, buf[:])
	}

	nCom, err := readLen()
	if err != nil {
		return read, err
	}
	proof.Com = make([]bn254.G1Affine, nCom)
	for i := range proof.Com {
		if err := readPoint(&proof.Com[i]); err != nil {
			return read, err
		}
	}

	nW, err := readLen()
	if err != nil {
		return read, err
	}
	if nW != len(proof.W) {
		return read, fmt.Errorf("%w: expected %d witness points, got %d", ErrMalformedProof, len(proof.W), nW)
	}
	for i := range proof.W {
		if err := readPoint(&proof.W[i]); err != nil {
			return read, err
		}
	}

	nRows, err := readLen()
	if err != nil {
		return read, err
	}
	if nRows != len(proof.V) {
		return read, fmt.Errorf("%w: expected %d evaluation rows, got %d", ErrMalformedProof, len(proof.V), nRows)
	}
	for j := range proof.V {
		nCols, err := readLen()
		if err != nil {
			return read, err
		}
		proof.V[j] = make([]fr.Element, nCols)
		for i := range proof.V[j] {
			var buf [sizeSerializedScalar]byte
			m, err := io.ReadFull(r, buf[:])
			read += int64(m)
			if err != nil {
				return read, err
			}
			deserializeScalar(&proof.V[j][i], buf[:])
		}
	}

	return read, nil
}
