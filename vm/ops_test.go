package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func u32(v int32) uint64 { return uint64(uint32(v)) }

func TestPrimitiveOps(t *testing.T) {
	assert := require.New(t)

	out, err := Lookup(ADD, 0xFFFFFFFF, 1, W32)
	assert.NoError(err)
	assert.EqualValues(0, out, "32-bit add must wrap")

	out, err = Lookup(ADD, 0xFFFFFFFF, 1, W64)
	assert.NoError(err)
	assert.EqualValues(uint64(0x100000000), out)

	out, err = Lookup(MUL, 0x80000000, 2, W32)
	assert.NoError(err)
	assert.EqualValues(0, out, "32-bit mul must wrap")

	out, err = Lookup(VirtualAdvice, 0x1_FFFF_FFFF, 0, W32)
	assert.NoError(err)
	assert.EqualValues(0xFFFFFFFF, out, "advice is truncated to the word size")

	out, err = Lookup(VirtualAssertEq, 7, 7, W32)
	assert.NoError(err)
	assert.EqualValues(1, out)

	out, err = Lookup(VirtualAssertEq, 7, 8, W32)
	assert.NoError(err)
	assert.EqualValues(0, out)

	_, err = Lookup(REM, 7, 3, W32)
	assert.Error(err, "REM is not a primitive")
}

func TestAssertValidSignedRemainder(t *testing.T) {
	assert := require.New(t)

	cases := []struct {
		name string
		r, y uint64
		want uint64
	}{
		{"same sign negative", u32(-2), u32(-3), 1},
		{"sign mismatch", 1, u32(-3), 0},
		{"zero remainder", 0, 7, 1},
		{"zero divisor sentinel", 5, 0, 1},
		{"magnitude too large", 3, 3, 0},
		{"negative vs positive", u32(-3), 3, 0},
		{"positive in range", 2, 3, 1},
	}
	for _, c := range cases {
		out, err := Lookup(VirtualAssertValidSignedRemainder, c.r, c.y, W32)
		assert.NoError(err, c.name)
		assert.Equal(c.want, out, c.name)
	}

	// 64-bit minimum: |r| of the minimum value never fits any divisor
	out, err := Lookup(VirtualAssertValidSignedRemainder, 1<<63, u64v(-7), W64)
	assert.NoError(err)
	assert.EqualValues(0, out)
}

func u64v(v int64) uint64 { return uint64(v) }

func TestRemAdvice(t *testing.T) {
	assert := require.New(t)

	// truncated result already carries the divisor's sign
	q, r := remAdvice(7, 3, W32)
	assert.EqualValues(2, q)
	assert.EqualValues(1, r)

	// opposite signs trigger the adjustment
	q, r = remAdvice(u32(-7), 3, W32)
	assert.Equal(u32(-3), q)
	assert.EqualValues(2, r)

	q, r = remAdvice(7, u32(-3), W32)
	assert.Equal(u32(-3), q)
	assert.Equal(u32(-2), r)

	// divide by zero: quotient 0, remainder is the dividend
	q, r = remAdvice(5, 0, W32)
	assert.EqualValues(0, q)
	assert.EqualValues(5, r)

	// minimum value divided by -1 wraps in the 32-bit ring
	q, r = remAdvice(0x80000000, u32(-1), W32)
	assert.EqualValues(0x80000000, q)
	assert.EqualValues(0, r)

	// 64-bit path
	q, r = remAdvice(u64v(-9), 4, W64)
	assert.Equal(u64v(-3), q)
	assert.EqualValues(3, r)
}
