package emit

// Opcode is a one-byte TGQ instruction opcode, except RET and SYNC
// which are emitted (and recognised by the disassembler) as 4-byte
// words disjoint from the one-byte space (spec.md §4.5).
type Opcode byte

const (
	OpNOP Opcode = iota
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpFML // fused multiply
	OpSQRT
	OpMIN
	OpMAX
	OpAND
	OpOR
	OpXOR
	OpNOT
	OpSHL
	OpSHR
	OpMOV
	OpXCHG
	OpBRA
	OpBEQ
	OpBNE
	OpBLT
	OpBGT
	OpCALL
	OpLD_GLOBAL
	OpST_GLOBAL
	OpLD_LOCAL
	OpST_LOCAL
	OpLCONST8
	OpLCONST16
	OpLCONST32
	OpLCONST64
	// Atomic family. Named in the emitter but never assigned a stable
	// value in the original opcode enum; assigned here as the next
	// free one-byte slots, immediately after the lconst family, to
	// keep the one-byte space contiguous (see DESIGN.md's
	// open-question resolution).
	OpATOMIC_ADD
	OpATOMIC_SUB
	OpATOMIC_ST
)

// RET and SYNC are 4-byte words (not one-byte opcodes), so that a
// disassembler can detect them by peeking 4 bytes regardless of what
// byte value would otherwise collide with the one-byte space.
const (
	WordRET  uint32 = 0x10000000
	WordSYNC uint32 = 0x10000001
)

var opcodeNames = map[Opcode]string{
	OpNOP: "nop", OpADD: "add", OpSUB: "sub", OpMUL: "mul", OpDIV: "div",
	OpFML: "fml", OpSQRT: "sqrt", OpMIN: "min", OpMAX: "max",
	OpAND: "and", OpOR: "or", OpXOR: "xor", OpNOT: "not",
	OpSHL: "shl", OpSHR: "shr", OpMOV: "mov", OpXCHG: "xchg",
	OpBRA: "bra", OpBEQ: "beq", OpBNE: "bne", OpBLT: "blt", OpBGT: "bgt",
	OpCALL: "call",
	OpLD_GLOBAL: "ld_global", OpST_GLOBAL: "st_global",
	OpLD_LOCAL: "ld_local", OpST_LOCAL: "st_local",
	OpLCONST8: "lconst.8", OpLCONST16: "lconst.16", OpLCONST32: "lconst.32", OpLCONST64: "lconst.64",
	OpATOMIC_ADD: "atomic_add", OpATOMIC_SUB: "atomic_sub", OpATOMIC_ST: "atomic_st",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "unknown"
}

// arithmeticOpcodes are the scalar-N family opcodes that carry a
// trailing type tag (spec.md §4.5 "Scalar-N").
var arithmeticOpcodes = map[Opcode]bool{
	OpADD: true, OpSUB: true, OpMUL: true, OpDIV: true, OpFML: true,
	OpSQRT: true, OpMIN: true, OpMAX: true, OpAND: true, OpOR: true,
	OpXOR: true, OpNOT: true, OpSHL: true, OpSHR: true, OpMOV: true, OpXCHG: true,
	OpATOMIC_ADD: true, OpATOMIC_SUB: true, OpATOMIC_ST: true,
}

var memoryOpcodes = map[Opcode]bool{
	OpLD_GLOBAL: true, OpST_GLOBAL: true, OpLD_LOCAL: true, OpST_LOCAL: true,
}

var lconstOpcodes = map[Opcode]bool{
	OpLCONST8: true, OpLCONST16: true, OpLCONST32: true, OpLCONST64: true,
}

// HasTypeTag reports whether op's encoding carries a type tag: a
// separate byte after the opcode for the arithmetic and memory
// families, the high nibble of the register byte for the lconst
// family (the arithmetic/memory/lconst range named in spec.md §4.6
// "Disassembler").
func HasTypeTag(op Opcode) bool {
	return arithmeticOpcodes[op] || memoryOpcodes[op] || lconstOpcodes[op]
}

// BinaryOpcode maps an AST binary operator lexeme to its scalar-2/3
// opcode, for operators that lower directly to a single TGQ
// instruction (spec.md §4.6 "binary expressions lower to the
// corresponding arithmetic opcode").
func BinaryOpcode(lexeme string) (Opcode, bool) {
	switch lexeme {
	case "+":
		return OpADD, true
	case "-":
		return OpSUB, true
	case "*":
		return OpMUL, true
	case "/":
		return OpDIV, true
	case "&&":
		return OpAND, true
	case "||":
		return OpOR, true
	}
	return 0, false
}
