package emit

import (
	"fmt"

	"tgquartz/pkg/types"
)

// RegEncode packs a type tag and register index into the single-byte
// layout (type&0x0F)<<4 | (reg&0x0F) used throughout the TGQ
// instruction set (spec.md §4.5 "Register encoding", §6).
func RegEncode(t types.TGQType, reg int) byte {
	return byte(t&0x0F)<<4 | byte(reg&0x0F)
}

// DecodeReg splits a register-encoded byte back into its type tag and
// register index.
func DecodeReg(b byte) (types.TGQType, int) {
	return types.TGQType(b >> 4 & 0x0F), int(b & 0x0F)
}

// Emitter writes TGQ instructions into a code Buffer, recording
// forward-reference relocations in a LabelManager.
type Emitter struct {
	Code   *Buffer
	Labels *LabelManager
}

// NewEmitter builds an Emitter over the given code buffer and label
// manager.
func NewEmitter(code *Buffer, labels *LabelManager) *Emitter {
	return &Emitter{Code: code, Labels: labels}
}

// NOP emits the single-byte no-op.
func (e *Emitter) NOP() {
	e.Code.Byte(byte(OpNOP))
}

// Scalar2 emits [opcode][type][rd_enc][r1_enc].
func (e *Emitter) Scalar2(op Opcode, t types.TGQType, rd, r1 int) {
	e.Code.Byte(byte(op))
	e.Code.Byte(byte(t))
	e.Code.Byte(RegEncode(t, rd))
	e.Code.Byte(RegEncode(t, r1))
}

// Scalar3 emits [opcode][type][rd_enc][r1_enc][r2_enc]: used both by
// the 3-operand arithmetic family and, with fixed operand roles, by
// the memory family (rd/rsrc, rbase, roff).
func (e *Emitter) Scalar3(op Opcode, t types.TGQType, rd, r1, r2 int) {
	e.Code.Byte(byte(op))
	e.Code.Byte(byte(t))
	e.Code.Byte(RegEncode(t, rd))
	e.Code.Byte(RegEncode(t, r1))
	e.Code.Byte(RegEncode(t, r2))
}

// Scalar4 emits [opcode][type][rd_enc][r1_enc][r2_enc][r3_enc].
func (e *Emitter) Scalar4(op Opcode, t types.TGQType, rd, r1, r2, r3 int) {
	e.Code.Byte(byte(op))
	e.Code.Byte(byte(t))
	e.Code.Byte(RegEncode(t, rd))
	e.Code.Byte(RegEncode(t, r1))
	e.Code.Byte(RegEncode(t, r2))
	e.Code.Byte(RegEncode(t, r3))
}

// LConst8 emits [LCONST8][reg_enc][1-byte immediate].
func (e *Emitter) LConst8(t types.TGQType, reg int, imm byte) {
	e.Code.Byte(byte(OpLCONST8))
	e.Code.Byte(RegEncode(t, reg))
	e.Code.Byte(imm)
}

// LConst16 emits [LCONST16][reg_enc][2-byte LE immediate].
func (e *Emitter) LConst16(t types.TGQType, reg int, imm uint16) {
	e.Code.Byte(byte(OpLCONST16))
	e.Code.Byte(RegEncode(t, reg))
	e.Code.U16(imm)
}

// LConst32 emits [LCONST32][reg_enc][4-byte LE immediate].
func (e *Emitter) LConst32(t types.TGQType, reg int, imm uint32) {
	e.Code.Byte(byte(OpLCONST32))
	e.Code.Byte(RegEncode(t, reg))
	e.Code.U32(imm)
}

// LConstF32 emits lconst.32 with the register type tag forced to
// FP32, carrying a bitwise float immediate (spec.md §4.5).
func (e *Emitter) LConstF32(reg int, imm float32) {
	e.Code.Byte(byte(OpLCONST32))
	e.Code.Byte(RegEncode(types.FP32, reg))
	e.Code.F32(imm)
}

// LConst64 emits [LCONST64][reg_enc][8-byte LE immediate].
func (e *Emitter) LConst64(t types.TGQType, reg int, imm uint64) {
	e.Code.Byte(byte(OpLCONST64))
	e.Code.Byte(RegEncode(t, reg))
	e.Code.U64(imm)
}

// Memory emits the memory family (ld_global/st_global/ld_local/
// st_local), which shares the scalar-3 layout with operand roles
// (rd_or_rsrc, rbase, roff).
func (e *Emitter) Memory(op Opcode, t types.TGQType, rdOrSrc, rbase, roff int) {
	e.Scalar3(op, t, rdOrSrc, rbase, roff)
}

// Branch emits an unconditional or conditional branch: opcode byte,
// optional type+two-register compare operands, then a 4-byte
// branch-relative relocation slot patched to 0 and registered with
// labels for later resolution.
func (e *Emitter) Branch(op Opcode, t types.TGQType, cmpA, cmpB int, target int) error {
	e.Code.Byte(byte(op))
	if op != OpBRA {
		e.Code.Byte(byte(t))
		e.Code.Byte(RegEncode(t, cmpA))
		e.Code.Byte(RegEncode(t, cmpB))
	}
	offset := e.Code.Len()
	e.Code.I32(0)
	return e.Labels.AddReloc(offset, target, RelocBranch)
}

// Call emits [CALL] followed by a 4-byte branch-relative relocation
// slot targeting the callee's label, mirroring Branch's tail.
func (e *Emitter) Call(target int) error {
	e.Code.Byte(byte(OpCALL))
	offset := e.Code.Len()
	e.Code.I32(0)
	return e.Labels.AddReloc(offset, target, RelocBranch)
}

// Ret emits the 4-byte RET word.
func (e *Emitter) Ret() {
	e.Code.U32(WordRET)
}

// Sync emits the 4-byte SYNC word.
func (e *Emitter) Sync() {
	e.Code.U32(WordSYNC)
}

// DefineHere creates a label and immediately defines it at the
// current code-buffer position — convenience for jump targets known
// at emission time (e.g. loop heads).
func (e *Emitter) DefineHere() (int, error) {
	id, err := e.Labels.Create()
	if err != nil {
		return 0, err
	}
	if err := e.Labels.Define(id, e.Code.Len()); err != nil {
		return 0, err
	}
	return id, nil
}

// Disassemble reads buf sequentially and produces one mnemonic line
// per instruction, peeking 4 bytes at each position to detect RET/
// SYNC before falling back to the one-byte opcode space (spec.md
// §4.5 "Disassembler"), grounded on
// gmofishsauce-wut4/asm/disasm.go's linear instruction-at-a-time scan.
func Disassemble(buf []byte) []string {
	var out []string
	pos := 0
	for pos < len(buf) {
		if pos+4 <= len(buf) {
			word := leU32(buf[pos:])
			if word == WordRET {
				out = append(out, fmt.Sprintf("%04x: ret", pos))
				pos += 4
				continue
			}
			if word == WordSYNC {
				out = append(out, fmt.Sprintf("%04x: sync", pos))
				pos += 4
				continue
			}
		}

		op := Opcode(buf[pos])
		start := pos
		pos++
		mnemonic := op.String()

		switch {
		case op == OpNOP:
			out = append(out, fmt.Sprintf("%04x: nop", start))
			continue
		case lconstOpcodes[op]:
			if pos >= len(buf) {
				out = append(out, fmt.Sprintf("%04x: %s <truncated>", start, mnemonic))
				pos = len(buf)
				continue
			}
			t, reg := DecodeReg(buf[pos])
			pos++
			width := lconstWidth(op)
			if pos+width > len(buf) {
				out = append(out, fmt.Sprintf("%04x: %s r%d:%s <truncated>", start, mnemonic, reg, t))
				pos = len(buf)
				continue
			}
			pos += width
			out = append(out, fmt.Sprintf("%04x: %s r%d:%s", start, mnemonic, reg, t))
		case HasTypeTag(op):
			if pos >= len(buf) {
				out = append(out, fmt.Sprintf("%04x: %s <truncated>", start, mnemonic))
				pos = len(buf)
				continue
			}
			t := types.TGQType(buf[pos])
			pos++
			regs := regOperandCount(op)
			var parts []string
			for i := 0; i < regs && pos < len(buf); i++ {
				_, r := DecodeReg(buf[pos])
				parts = append(parts, fmt.Sprintf("r%d", r))
				pos++
			}
			out = append(out, fmt.Sprintf("%04x: %s:%s %v", start, mnemonic, t, parts))
		case op == OpBRA || op == OpBEQ || op == OpBNE || op == OpBLT || op == OpBGT:
			if op != OpBRA {
				pos += 3 // type + 2 compare regs
			}
			if pos+4 > len(buf) {
				out = append(out, fmt.Sprintf("%04x: %s <truncated>", start, mnemonic))
				pos = len(buf)
				continue
			}
			rel := int32(leU32(buf[pos:]))
			pos += 4
			out = append(out, fmt.Sprintf("%04x: %s %+d", start, mnemonic, rel))
		case op == OpCALL:
			if pos+4 > len(buf) {
				out = append(out, fmt.Sprintf("%04x: call <truncated>", start))
				pos = len(buf)
				continue
			}
			rel := int32(leU32(buf[pos:]))
			pos += 4
			out = append(out, fmt.Sprintf("%04x: call %+d", start, rel))
		default:
			out = append(out, fmt.Sprintf("%04x: %s", start, mnemonic))
		}
	}
	return out
}

func regOperandCount(op Opcode) int {
	switch op {
	case OpNOT, OpSQRT:
		return 2
	case OpMOV, OpXCHG:
		return 2
	default:
		return 3
	}
}

func lconstWidth(op Opcode) int {
	switch op {
	case OpLCONST8:
		return 1
	case OpLCONST16:
		return 2
	case OpLCONST32:
		return 4
	case OpLCONST64:
		return 8
	}
	return 0
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
