// Package vm models the instruction and trace layer of a RISC-style
// virtual machine whose execution is proven by the commitment scheme in
// the hyperkzg package.
//
// Instructions that are not directly arithmetizable (signed remainder) are
// expanded into virtual sequences of primitive opcodes plus prover-supplied
// advice values, so that the verifier can re-check every step with
// low-degree relations.
package vm

import "fmt"

// Opcode identifies a primitive or expandable instruction.
type Opcode uint8

const (
	ADD Opcode = iota
	MUL
	REM
	VirtualAdvice
	VirtualAssertEq
	VirtualAssertValidSignedRemainder
)

func (op Opcode) String() string {
	switch op {
	case ADD:
		return "ADD"
	case MUL:
		return "MUL"
	case REM:
		return "REM"
	case VirtualAdvice:
		return "VIRTUAL_ADVICE"
	case VirtualAssertEq:
		return "VIRTUAL_ASSERT_EQ"
	case VirtualAssertValidSignedRemainder:
		return "VIRTUAL_ASSERT_VALID_SIGNED_REMAINDER"
	default:
		return fmt.Sprintf("Opcode(%d)", uint8(op))
	}
}

// Width is the machine word size in bits.
type Width uint

const (
	W32 Width = 32
	W64 Width = 64
)

const (
	// NumArchRegisters is the size of the architectural register file.
	NumArchRegisters = 32
	// RegisterCount is the total register file size, including the region
	// reserved for virtual registers.
	RegisterCount = 64
	// RegNone marks an absent register operand.
	RegNone = -1
)

// VirtualRegister returns the index of the i-th reserved virtual register.
// Virtual registers are disjoint from the architectural file.
func VirtualRegister(i int) int {
	return NumArchRegisters + i
}

// Instruction is one (possibly virtual) instruction of the trace.
// Register operands use RegNone when absent. SeqIndex is -1 outside a
// virtual sequence and counts up from 0 within one.
type Instruction struct {
	Address  uint64
	Op       Opcode
	Rs1      int
	Rs2      int
	Rd       int
	Imm      *int64
	SeqIndex int
}

// TraceRow records one executed instruction: the values read from rs1/rs2
// before execution, the value written to rd after it, and the advice
// scalar for advice rows. Absent fields are nil.
type TraceRow struct {
	Instruction Instruction
	RS1Val      *uint64
	RS2Val      *uint64
	RDPostVal   *uint64
	Advice      *uint64
}

func u64(v uint64) *uint64 { return &v }
