package vm

import "fmt"

// truncate reduces v to the machine word size.
func truncate(v uint64, w Width) uint64 {
	if w == W32 {
		return uint64(uint32(v))
	}
	return v
}

// toSigned interprets the low w bits of v as a two's-complement integer.
func toSigned(v uint64, w Width) int64 {
	if w == W32 {
		return int64(int32(uint32(v)))
	}
	return int64(v)
}

// magnitude returns |v| as an unsigned value. Unlike a signed abs it is
// defined for the minimum integer, whose magnitude does not fit in int64.
func magnitude(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

func addOp(x, y uint64, w Width) uint64 {
	return truncate(x+y, w)
}

func mulOp(x, y uint64, w Width) uint64 {
	return truncate(x*y, w)
}

func assertEqOp(x, y uint64, w Width) uint64 {
	if truncate(x, w) == truncate(y, w) {
		return 1
	}
	return 0
}

// assertValidSignedRemainderOp returns 1 iff r is a valid signed remainder
// for divisor y at width w: r = 0, or y = 0 (the divide-by-zero sentinel
// accepts any remainder), or sign(r) = sign(y) and |r| < |y|.
func assertValidSignedRemainderOp(r, y uint64, w Width) uint64 {
	rs := toSigned(r, w)
	ys := toSigned(y, w)
	if rs == 0 || ys == 0 {
		return 1
	}
	if (rs < 0) == (ys < 0) && magnitude(rs) < magnitude(ys) {
		return 1
	}
	return 0
}

// Lookup evaluates a primitive opcode on its operands. For VirtualAdvice,
// x carries the advice value and y is ignored.
func Lookup(op Opcode, x, y uint64, w Width) (uint64, error) {
	switch op {
	case ADD:
		return addOp(x, y, w), nil
	case MUL:
		return mulOp(x, y, w), nil
	case VirtualAdvice:
		return truncate(x, w), nil
	case VirtualAssertEq:
		return assertEqOp(x, y, w), nil
	case VirtualAssertValidSignedRemainder:
		return assertValidSignedRemainderOp(x, y, w), nil
	default:
		return 0, fmt.Errorf("opcode %s is not a primitive", op)
	}
}

// Execute replays a virtual trace against a register file, checking every
// recorded register read against the file state and requiring assert rows
// to output 1. Rows with a destination write their output back to the
// file and must match the recorded post-value.
func Execute(rows []TraceRow, regs []uint64, w Width) error {
	if len(regs) < RegisterCount {
		return fmt.Errorf("register file has %d slots, need %d", len(regs), RegisterCount)
	}
	for i, row := range rows {
		in := row.Instruction
		if row.RS1Val != nil && regs[in.Rs1] != *row.RS1Val {
			return fmt.Errorf("row %d: rs1 read %d, register %d holds %d",
				i, *row.RS1Val, in.Rs1, regs[in.Rs1])
		}
		if row.RS2Val != nil && regs[in.Rs2] != *row.RS2Val {
			return fmt.Errorf("row %d: rs2 read %d, register %d holds %d",
				i, *row.RS2Val, in.Rs2, regs[in.Rs2])
		}

		var x, y uint64
		if in.Op == VirtualAdvice {
			if row.Advice == nil {
				return fmt.Errorf("row %d: advice row is missing its advice value", i)
			}
			x = *row.Advice
		} else {
			if row.RS1Val != nil {
				x = *row.RS1Val
			}
			if row.RS2Val != nil {
				y = *row.RS2Val
			}
		}

		out, err := Lookup(in.Op, x, y, w)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}

		if in.Rd != RegNone {
			regs[in.Rd] = out
			if row.RDPostVal != nil && *row.RDPostVal != out {
				return fmt.Errorf("row %d: rd post-value %d, computed %d",
					i, *row.RDPostVal, out)
			}
		} else if out != 1 {
			return fmt.Errorf("row %d: %s failed", i, in.Op)
		}
	}
	return nil
}
