package hyperkzg

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/stretchr/testify/require"
)

func TestNewSRS(t *testing.T) {
	assert := require.New(t)

	_, err := NewSRS(0)
	assert.ErrorIs(err, ErrMinSRSSize)

	srs, err := NewSRS(7)
	assert.NoError(err)
	assert.Equal(8, len(srs.G1))
	assert.Equal(7, srs.MaxDegree())

	_, _, g1, g2 := bn254.Generators()
	assert.True(srs.G1[0].Equal(&g1))
	assert.True(srs.G2[0].Equal(&g2))

	// e(tau*g1, g2) = e(g1, tau*g2) pins the two groups to the same tau
	left, err := bn254.Pair([]bn254.G1Affine{srs.G1[1]}, []bn254.G2Affine{srs.G2[0]})
	assert.NoError(err)
	right, err := bn254.Pair([]bn254.G1Affine{srs.G1[0]}, []bn254.G2Affine{srs.G2[1]})
	assert.NoError(err)
	assert.True(left.Equal(&right))

	// consecutive powers are related by the same tau
	left, err = bn254.Pair([]bn254.G1Affine{srs.G1[2]}, []bn254.G2Affine{srs.G2[0]})
	assert.NoError(err)
	right, err = bn254.Pair([]bn254.G1Affine{srs.G1[1]}, []bn254.G2Affine{srs.G2[1]})
	assert.NoError(err)
	assert.True(left.Equal(&right))
}

func TestTrim(t *testing.T) {
	assert := require.New(t)

	srs, err := NewSRS(7)
	assert.NoError(err)

	pk, vk, err := srs.Trim(3)
	assert.NoError(err)
	assert.Equal(4, len(pk.G1))
	assert.True(vk.G1.Equal(&srs.G1[0]))
	assert.True(vk.G2.Equal(&srs.G2[0]))
	assert.True(vk.TauG2.Equal(&srs.G2[1]))

	// the prover key shares the SRS powers instead of copying them
	assert.Equal(&srs.G1[0], &pk.G1[0])

	_, _, err = srs.Trim(8)
	assert.ErrorIs(err, ErrKeyTooShort)
}

func TestSetupConf(t *testing.T) {
	assert := require.New(t)

	srs, err := Setup(TestOnly, 3, "")
	assert.NoError(err)
	assert.Equal(4, len(srs.G1))

	_, err = Setup(Trusted, 3, "does-not-exist.ptau")
	assert.Error(err)

	_, err = Setup(Conf(99), 3, "")
	assert.Error(err)
}
