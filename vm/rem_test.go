package vm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func remRow(rs1, rs2, rd int, x, y uint64) TraceRow {
	return TraceRow{
		Instruction: Instruction{
			Address:  0x8000_0000,
			Op:       REM,
			Rs1:      rs1,
			Rs2:      rs2,
			Rd:       rd,
			SeqIndex: -1,
		},
		RS1Val: u64(x),
		RS2Val: u64(y),
	}
}

func TestRemSequenceShape(t *testing.T) {
	assert := require.New(t)

	instr := Instruction{Op: REM, Rs1: 5, Rs2: 6, Rd: 7, SeqIndex: -1}
	seq, err := RemSequence(instr)
	assert.NoError(err)
	assert.Len(seq, 6)

	wantOps := []Opcode{
		VirtualAdvice,
		VirtualAdvice,
		VirtualAssertValidSignedRemainder,
		MUL,
		ADD,
		VirtualAssertEq,
	}
	for i, in := range seq {
		assert.Equal(wantOps[i], in.Op, "row %d", i)
		assert.Equal(i, in.SeqIndex, "sequence index must count up from 0")
	}

	assert.Equal(VirtualRegister(1), seq[0].Rd)
	assert.Equal(7, seq[1].Rd)
	assert.Equal(7, seq[2].Rs1)
	assert.Equal(6, seq[2].Rs2)
	assert.Equal(VirtualRegister(1), seq[3].Rs1)
	assert.Equal(VirtualRegister(2), seq[3].Rd)
	assert.Equal(VirtualRegister(2), seq[4].Rs1)
	assert.Equal(7, seq[4].Rs2)
	assert.Equal(VirtualRegister(0), seq[4].Rd)
	assert.Equal(VirtualRegister(0), seq[5].Rs1)
	assert.Equal(5, seq[5].Rs2)

	_, err = RemSequence(Instruction{Op: ADD})
	assert.Error(err)
}

// executeAndCheck runs the virtual trace of a REM row against a fresh
// register file and returns the file for inspection.
func executeAndCheck(t *testing.T, rs1, rs2, rd int, x, y uint64, w Width) []uint64 {
	t.Helper()
	assert := require.New(t)

	rows, err := RemTrace(remRow(rs1, rs2, rd, x, y), w)
	assert.NoError(err)
	assert.Len(rows, 6)

	regs := make([]uint64, RegisterCount)
	regs[rs1] = x
	regs[rs2] = y
	assert.NoError(Execute(rows, regs, w))
	return regs
}

func TestRemPositiveByNegative(t *testing.T) {
	assert := require.New(t)

	// 7 rem -3: truncated (q, r) = (-2, 1) has r and y with opposite
	// signs, so the advice is adjusted to (-3, -2)
	x, y := uint64(7), u32(-3)
	rows, err := RemTrace(remRow(2, 3, 4, x, y), W32)
	assert.NoError(err)
	assert.Equal(u32(-3), *rows[0].Advice)
	assert.Equal(u32(-2), *rows[1].Advice)

	regs := executeAndCheck(t, 2, 3, 4, x, y, W32)
	assert.Equal(u32(-2), regs[4])
	assert.Equal(x, regs[2])
	assert.Equal(y, regs[3])
}

func TestRemNegativeByPositive(t *testing.T) {
	assert := require.New(t)

	// -7 rem 3: adjustment turns (-2, -1) into (-3, 2)
	x, y := u32(-7), uint64(3)
	rows, err := RemTrace(remRow(2, 3, 4, x, y), W32)
	assert.NoError(err)
	assert.Equal(u32(-3), *rows[0].Advice)
	assert.EqualValues(2, *rows[1].Advice)

	regs := executeAndCheck(t, 2, 3, 4, x, y, W32)
	assert.EqualValues(2, regs[4])
}

func TestRemDivideByZero(t *testing.T) {
	assert := require.New(t)

	// divisor 0: quotient 0, remainder equals the dividend
	regs := executeAndCheck(t, 2, 3, 4, 5, 0, W32)
	assert.EqualValues(5, regs[4])
}

func TestRemMinByMinusOne(t *testing.T) {
	assert := require.New(t)

	regs := executeAndCheck(t, 2, 3, 4, 0x80000000, u32(-1), W32)
	assert.EqualValues(0, regs[4])
}

func TestRemVirtualSequenceRandom32(t *testing.T) {
	assert := require.New(t)

	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 100; iter++ {
		// three distinct architectural registers so the destination write
		// cannot clobber a source read
		perm := rng.Perm(NumArchRegisters)
		rX, rY, rd := perm[0], perm[1], perm[2]

		x := uint64(rng.Uint32())
		y := uint64(rng.Uint32())

		_, want := remAdvice(x, y, W32)

		regs := executeAndCheck(t, rX, rY, rd, x, y, W32)

		for i, val := range regs {
			switch i {
			case rX:
				assert.Equal(x, val, "rs1 clobbered")
			case rY:
				assert.Equal(y, val, "rs2 clobbered")
			case rd:
				assert.Equal(want, val, "wrong remainder in rd")
			default:
				if i < NumArchRegisters {
					assert.EqualValues(0, val, "architectural register %d touched", i)
				}
			}
		}
	}
}

func TestRemTrace64(t *testing.T) {
	assert := require.New(t)

	x := uint64(1) << 40
	y := u64v(-7)
	regs := executeAndCheck(t, 2, 3, 4, x, y, W64)

	q, r := remAdvice(x, y, W64)
	assert.Equal(r, regs[4])

	// the reconstruction identity holds in the 64-bit ring
	assert.Equal(x, q*y+r)
}

func TestRemTraceRejectsBadRows(t *testing.T) {
	assert := require.New(t)

	_, err := RemTrace(TraceRow{Instruction: Instruction{Op: ADD}}, W32)
	assert.Error(err)

	_, err = RemTrace(TraceRow{Instruction: Instruction{Op: REM}}, W32)
	assert.Error(err, "missing source values must be rejected")
}
