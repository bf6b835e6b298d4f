package types

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Registry is the process-wide type registry. Scalar, vector, matrix
// and sampler prototypes are canonicalised behind an LRU cache keyed
// by built-in type name (each name denotes one structure), resolving spec.md §9 DESIGN NOTES' request
// for "a process-wide immutable type registry keyed by structural
// identity, referenced by lightweight handle" — LookupBuiltin always
// returns the same *TypeInfo for the same name, instead of the
// teacher-adjacent original's per-call fresh allocation.
type Registry struct {
	cache *lru.Cache[string, *TypeInfo]
}

// NewRegistry builds a Registry with its builtin prototypes
// precomputed. The LRU capacity comfortably exceeds the fixed builtin
// set (spec.md's closed list of scalar/vector/matrix/sampler names),
// so builtins are effectively never evicted; headroom is left for a
// future per-module type cache without changing the API.
func NewRegistry() *Registry {
	cache, err := lru.New[string, *TypeInfo](256)
	if err != nil {
		panic(err) // unreachable: constant positive size
	}
	r := &Registry{cache: cache}
	for name, proto := range builtinPrototypes() {
		r.cache.Add(name, proto)
	}
	return r
}

// LookupBuiltin returns the canonical TypeInfo for a built-in type
// name, or (nil, false) if name does not name a built-in type.
func (r *Registry) LookupBuiltin(name string) (*TypeInfo, bool) {
	return r.cache.Get(name)
}

func scalar(kind BaseKind, size int, tgq TGQType) *TypeInfo {
	return &TypeInfo{Kind: kind, Size: size, Alignment: size, Components: 1, TGQType: tgq, RegClass: RegGeneral}
}

func vector(kind BaseKind, n int, elemSize int, tgq TGQType) *TypeInfo {
	return &TypeInfo{Kind: kind, Size: elemSize * n, Alignment: elemSize, Components: n, TGQType: tgq, RegClass: RegVector}
}

func matrix(kind BaseKind, n int) *TypeInfo {
	return &TypeInfo{Kind: kind, Size: 4 * n * n, Alignment: 4, Components: n * n, TGQType: FP32, RegClass: RegMatrix}
}

func sampler(kind BaseKind) *TypeInfo {
	return &TypeInfo{Kind: kind, Size: 8, Alignment: 8, Components: 1, TGQType: I64, RegClass: RegSampler}
}

func builtinPrototypes() map[string]*TypeInfo {
	return map[string]*TypeInfo{
		"void":   {Kind: Void, Size: 0, Alignment: 1, RegClass: RegNone},
		"bool":   scalar(Bool, 1, I8),
		"int":    scalar(Int, 4, I32),
		"float":  scalar(Float, 4, FP32),
		"double": scalar(Double, 8, I64),
		"char":   scalar(Char, 1, I8),

		"vec2": vector(Vec2, 2, 4, V4FP32),
		"vec3": vector(Vec3, 3, 4, V4FP32),
		"vec4": vector(Vec4, 4, 4, V4FP32),

		"ivec2": vector(IVec2, 2, 4, V4I32),
		"ivec3": vector(IVec3, 3, 4, V4I32),
		"ivec4": vector(IVec4, 4, 4, V4I32),

		"bvec2": vector(BVec2, 2, 1, V4I32),
		"bvec3": vector(BVec3, 3, 1, V4I32),
		"bvec4": vector(BVec4, 4, 1, V4I32),

		"mat2": matrix(Mat2, 2),
		"mat3": matrix(Mat3, 3),
		"mat4": matrix(Mat4, 4),

		"sampler2D":   sampler(Sampler2D),
		"sampler3D":   sampler(Sampler3D),
		"samplerCube": sampler(SamplerCube),
	}
}

// alignUp rounds offset up to the next multiple of alignment.
func alignUp(offset, alignment int) int {
	if alignment <= 1 {
		return offset
	}
	rem := offset % alignment
	if rem == 0 {
		return offset
	}
	return offset + (alignment - rem)
}

// NewStructType builds a StructInfo from an ordered field list,
// assigning each field an offset by aligning the running offset up to
// the field's alignment; the struct's own alignment is the max of its
// fields' (spec.md §3 invariant: "A struct's total_size equals the
// running aligned offset after its last field").
func NewStructType(name string, fieldNames []string, fieldTypes []*TypeInfo) *TypeInfo {
	fields := make([]FieldInfo, len(fieldNames))
	offset := 0
	alignment := 1
	for i, ft := range fieldTypes {
		offset = alignUp(offset, ft.Alignment)
		fields[i] = FieldInfo{Name: fieldNames[i], Type: ft, Offset: offset}
		offset += ft.Size
		if ft.Alignment > alignment {
			alignment = ft.Alignment
		}
	}
	total := alignUp(offset, alignment)
	si := &StructInfo{Name: name, Fields: fields, Size: total, Alignment: alignment}
	return &TypeInfo{Kind: StructKind, Size: total, Alignment: alignment, Components: 1, TGQType: I8, RegClass: RegNone, Struct: si}
}

// NewArrayType builds an array TypeInfo: size = element.Size * length,
// alignment equals the element's, register class is always RegNone
// (memory-resident).
func NewArrayType(elem *TypeInfo, length int) *TypeInfo {
	return &TypeInfo{
		Kind: ArrayKind, Size: elem.Size * length, Alignment: elem.Alignment,
		Components: length, TGQType: elem.TGQType, RegClass: RegNone,
		ElementType: elem, ArrayLength: length,
	}
}

// NewFunctionType builds a function type from a return type and an
// ordered parameter type list.
func NewFunctionType(ret *TypeInfo, params []*TypeInfo) *TypeInfo {
	return &TypeInfo{Kind: FunctionKind, RegClass: RegNone, ReturnType: ret, ParamTypes: params}
}
