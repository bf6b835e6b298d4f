// Package emit implements the growable byte buffer, label/relocation
// manager and TGQ instruction encoders that sit beneath the code
// generator (spec.md §4.5).
//
// The growable-buffer shape is grounded on
// gmofishsauce-wut4/asm/codegen.go's output accumulation; the
// relocation patch loop is grounded on
// gmofishsauce-wut4/lang/yld/linker.go's relocate() phase, adapted
// from a linker's cross-object symbol patching to a single
// translation unit's forward-branch patching.
package emit

import (
	"encoding/binary"
	"math"
)

const initialCapacity = 1024

// Buffer is a growable little-endian byte accumulator.
type Buffer struct {
	data []byte
}

// NewBuffer allocates a Buffer with its initial capacity preallocated.
func NewBuffer() *Buffer {
	return &Buffer{data: make([]byte, 0, initialCapacity)}
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns the underlying accumulated bytes. Callers must not
// retain the slice across further writes.
func (b *Buffer) Bytes() []byte { return b.data }

// Byte appends a single byte.
func (b *Buffer) Byte(v byte) { b.data = append(b.data, v) }

// U16 appends v little-endian.
func (b *Buffer) U16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// U32 appends v little-endian.
func (b *Buffer) U32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// U64 appends v little-endian.
func (b *Buffer) U64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// I32 appends v little-endian, two's complement.
func (b *Buffer) I32(v int32) { b.U32(uint32(v)) }

// F32 appends the bitwise binary32 representation of v.
func (b *Buffer) F32(v float32) { b.U32(math.Float32bits(v)) }

// F64 appends the bitwise binary64 representation of v.
func (b *Buffer) F64(v float64) { b.U64(math.Float64bits(v)) }

// PatchI32 overwrites the 4 bytes at offset with v, little-endian
// signed. Used by relocation resolution.
func (b *Buffer) PatchI32(offset int, v int32) {
	binary.LittleEndian.PutUint32(b.data[offset:offset+4], uint32(v))
}

// PatchU64 overwrites the 8 bytes at offset with v, little-endian.
func (b *Buffer) PatchU64(offset int, v uint64) {
	binary.LittleEndian.PutUint64(b.data[offset:offset+8], v)
}

// ReadU32At reads back a little-endian uint32 previously written with
// U32 — used by the round-trip law in tests.
func (b *Buffer) ReadU32At(offset int) uint32 {
	return binary.LittleEndian.Uint32(b.data[offset : offset+4])
}
