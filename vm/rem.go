package vm

import "fmt"

// RemSequence expands a REM instruction into its virtual sequence of six
// primitive instructions. The prover supplies the quotient and remainder
// as advice; the sequence then reconstructs q*y + r and asserts it equals
// the dividend, while a dedicated predicate constrains the remainder's
// range and sign.
//
//	0: ADVICE              -> v_q
//	1: ADVICE              -> rd
//	2: ASSERT_VALID_SIGNED_REMAINDER rd, rs2
//	3: MUL  v_q,  rs2      -> v_qy
//	4: ADD  v_qy, rd       -> v_0
//	5: ASSERT_EQ v_0, rs1
func RemSequence(instr Instruction) ([]Instruction, error) {
	if instr.Op != REM {
		return nil, fmt.Errorf("cannot expand %s as a signed remainder", instr.Op)
	}
	rX := instr.Rs1
	rY := instr.Rs2
	v0 := VirtualRegister(0)
	vQ := VirtualRegister(1)
	vQY := VirtualRegister(2)

	seq := make([]Instruction, 0, 6)
	seq = append(seq, Instruction{
		Address:  instr.Address,
		Op:       VirtualAdvice,
		Rs1:      RegNone,
		Rs2:      RegNone,
		Rd:       vQ,
		SeqIndex: len(seq),
	})
	seq = append(seq, Instruction{
		Address:  instr.Address,
		Op:       VirtualAdvice,
		Rs1:      RegNone,
		Rs2:      RegNone,
		Rd:       instr.Rd,
		SeqIndex: len(seq),
	})
	seq = append(seq, Instruction{
		Address:  instr.Address,
		Op:       VirtualAssertValidSignedRemainder,
		Rs1:      instr.Rd,
		Rs2:      rY,
		Rd:       RegNone,
		SeqIndex: len(seq),
	})
	seq = append(seq, Instruction{
		Address:  instr.Address,
		Op:       MUL,
		Rs1:      vQ,
		Rs2:      rY,
		Rd:       vQY,
		SeqIndex: len(seq),
	})
	seq = append(seq, Instruction{
		Address:  instr.Address,
		Op:       ADD,
		Rs1:      vQY,
		Rs2:      instr.Rd,
		Rd:       v0,
		SeqIndex: len(seq),
	})
	seq = append(seq, Instruction{
		Address:  instr.Address,
		Op:       VirtualAssertEq,
		Rs1:      v0,
		Rs2:      rX,
		Rd:       RegNone,
		SeqIndex: len(seq),
	})
	return seq, nil
}

// remAdvice computes the quotient and remainder of x by y in two's
// complement at width w. The native truncated pair is adjusted so that the
// remainder carries the divisor's sign (or is zero): if sign(r) != sign(y)
// then r += y, q -= 1. Division by zero yields quotient 0 and remainder x;
// the minimum value divided by -1 wraps in the w-bit ring.
func remAdvice(x, y uint64, w Width) (q, r uint64) {
	switch w {
	case W32:
		xi := int32(uint32(x))
		yi := int32(uint32(y))
		if yi == 0 {
			return 0, uint64(uint32(xi))
		}
		quotient := xi / yi
		remainder := xi % yi
		if (remainder < 0 && yi > 0) || (remainder > 0 && yi < 0) {
			remainder += yi
			quotient--
		}
		return uint64(uint32(quotient)), uint64(uint32(remainder))
	case W64:
		xi := int64(x)
		yi := int64(y)
		if yi == 0 {
			return 0, uint64(xi)
		}
		quotient := xi / yi
		remainder := xi % yi
		if (remainder < 0 && yi > 0) || (remainder > 0 && yi < 0) {
			remainder += yi
			quotient--
		}
		return uint64(quotient), uint64(remainder)
	default:
		panic(fmt.Sprintf("unsupported word size: %d", w))
	}
}

// RemTrace executes the virtual sequence of a REM trace row, returning the
// six rows with register pre/post values and advice filled in.
func RemTrace(row TraceRow, w Width) ([]TraceRow, error) {
	if row.Instruction.Op != REM {
		return nil, fmt.Errorf("cannot trace %s as a signed remainder", row.Instruction.Op)
	}
	if row.RS1Val == nil || row.RS2Val == nil {
		return nil, fmt.Errorf("REM trace row is missing source register values")
	}
	x := *row.RS1Val
	y := *row.RS2Val

	seq, err := RemSequence(row.Instruction)
	if err != nil {
		return nil, err
	}

	quotient, remainder := remAdvice(x, y, w)

	trace := make([]TraceRow, 0, len(seq))

	q, _ := Lookup(VirtualAdvice, quotient, 0, w)
	trace = append(trace, TraceRow{
		Instruction: seq[len(trace)],
		RDPostVal:   u64(q),
		Advice:      u64(quotient),
	})

	r, _ := Lookup(VirtualAdvice, remainder, 0, w)
	trace = append(trace, TraceRow{
		Instruction: seq[len(trace)],
		RDPostVal:   u64(r),
		Advice:      u64(remainder),
	})

	isValid, _ := Lookup(VirtualAssertValidSignedRemainder, r, y, w)
	if isValid != 1 {
		return nil, fmt.Errorf("advice remainder %d is not valid for divisor %d", r, y)
	}
	trace = append(trace, TraceRow{
		Instruction: seq[len(trace)],
		RS1Val:      u64(r),
		RS2Val:      u64(y),
	})

	qy, _ := Lookup(MUL, q, y, w)
	trace = append(trace, TraceRow{
		Instruction: seq[len(trace)],
		RS1Val:      u64(q),
		RS2Val:      u64(y),
		RDPostVal:   u64(qy),
	})

	add0, _ := Lookup(ADD, qy, r, w)
	trace = append(trace, TraceRow{
		Instruction: seq[len(trace)],
		RS1Val:      u64(qy),
		RS2Val:      u64(r),
		RDPostVal:   u64(add0),
	})

	if eq, _ := Lookup(VirtualAssertEq, add0, x, w); eq != 1 {
		return nil, fmt.Errorf("q*y + r = %d does not reconstruct dividend %d", add0, x)
	}
	trace = append(trace, TraceRow{
		Instruction: seq[len(trace)],
		RS1Val:      u64(add0),
		RS2Val:      u64(x),
	})

	return trace, nil
}
