package emit

import "fmt"

const (
	maxLabels      = 256
	maxRelocations = 512
)

// RelocKind distinguishes a branch-relative patch from an
// absolute-address patch (spec.md §3 "Relocation").
type RelocKind int

const (
	RelocBranch RelocKind = iota
	RelocAbsolute
)

// labelDef is (id, position); position is -1 until Define is called.
type labelDef struct {
	position int
}

// relocation is (byte_offset_in_buffer, target_label_id, kind).
type relocation struct {
	offset int
	label  int
	kind   RelocKind
}

// LabelManager owns label allocation, deferred definition, and the
// relocation list patched by Resolve. It patches directly into a
// *Buffer given to Resolve.
type LabelManager struct {
	labels      []labelDef
	relocations []relocation
}

// NewLabelManager returns an empty LabelManager.
func NewLabelManager() *LabelManager {
	return &LabelManager{}
}

// Create allocates a fresh label id with position -1.
func (lm *LabelManager) Create() (int, error) {
	if len(lm.labels) >= maxLabels {
		return 0, fmt.Errorf("label manager exhausted: at most %d labels", maxLabels)
	}
	id := len(lm.labels)
	lm.labels = append(lm.labels, labelDef{position: -1})
	return id, nil
}

// Define sets label id's position to the given buffer offset
// (typically buf.Len() at the point of definition).
func (lm *LabelManager) Define(id, position int) error {
	if id < 0 || id >= len(lm.labels) {
		return fmt.Errorf("define: label id %d out of range", id)
	}
	lm.labels[id].position = position
	return nil
}

// AddReloc records a pending patch at the given buffer offset,
// targeting label id, of the given kind.
func (lm *LabelManager) AddReloc(offset, label int, kind RelocKind) error {
	if label < 0 || label >= len(lm.labels) {
		return fmt.Errorf("add_reloc: label id %d out of range (next_label=%d)", label, len(lm.labels))
	}
	if len(lm.relocations) >= maxRelocations {
		return fmt.Errorf("label manager exhausted: at most %d relocations", maxRelocations)
	}
	lm.relocations = append(lm.relocations, relocation{offset: offset, label: label, kind: kind})
	return nil
}

// Resolve patches every pending relocation into buf. Branch
// relocations are patched as a signed 32-bit little-endian
// target-(offset+4); absolute relocations as an unsigned 64-bit
// little-endian target. Every referenced label must be defined, or
// resolution fails (spec.md §3 invariant, §4.5).
func (lm *LabelManager) Resolve(buf *Buffer) error {
	for _, r := range lm.relocations {
		if r.label < 0 || r.label >= len(lm.labels) {
			return fmt.Errorf("resolve: relocation at offset %d targets out-of-range label %d", r.offset, r.label)
		}
		target := lm.labels[r.label].position
		if target < 0 {
			return fmt.Errorf("resolve: label %d is never defined", r.label)
		}
		switch r.kind {
		case RelocBranch:
			delta := int32(target - (r.offset + 4))
			buf.PatchI32(r.offset, delta)
		case RelocAbsolute:
			buf.PatchU64(r.offset, uint64(target))
		default:
			return fmt.Errorf("resolve: unknown relocation kind %d", r.kind)
		}
	}
	return nil
}

// Position returns the current resolved position of a label, or -1 if
// the label has not been defined yet.
func (lm *LabelManager) Position(id int) int {
	if id < 0 || id >= len(lm.labels) {
		return -1
	}
	return lm.labels[id].position
}
