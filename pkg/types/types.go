// Package types implements TGQ's type system: scalar/vector/matrix
// semantics, structs, arrays, swizzles and binary/unary result
// inference (spec.md §3 "TypeInfo", §4.3).
package types

import (
	"fmt"
	"math"
)

// BaseKind is the coarse category a TypeInfo belongs to.
type BaseKind int

const (
	Void BaseKind = iota
	Bool
	Int
	Float
	Double
	Char
	Vec2
	Vec3
	Vec4
	IVec2
	IVec3
	IVec4
	BVec2
	BVec3
	BVec4
	Mat2
	Mat3
	Mat4
	Sampler2D
	Sampler3D
	SamplerCube
	StructKind
	ArrayKind
	FunctionKind
)

// TGQType is the 4-bit machine type tag used inside encoded
// instructions (spec.md GLOSSARY "Type tag").
type TGQType uint8

const (
	I8 TGQType = iota
	I16
	I32
	I64
	FP16
	FP32
	BF16
	BF32
	V4I32
	V4FP16
	V4FP32
	V4BF16
	V4BF32
)

var tgqTypeNames = map[TGQType]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	FP16: "fp16", FP32: "fp32", BF16: "bf16", BF32: "bf32",
	V4I32: "v4i32", V4FP16: "v4fp16", V4FP32: "v4fp32", V4BF16: "v4bf16", V4BF32: "v4bf32",
}

func (t TGQType) String() string {
	if name, ok := tgqTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// RegClass is the register file a value of a given type lives in.
type RegClass int

const (
	RegGeneral RegClass = iota
	RegVector
	RegMatrix
	RegSampler
	RegNone // no register file: arrays, structs, void and function types
)

// FieldInfo is a struct field resolved to a byte offset.
type FieldInfo struct {
	Name   string
	Type   *TypeInfo
	Offset int
}

// StructInfo is the resolved layout of a struct type.
type StructInfo struct {
	Name      string
	Fields    []FieldInfo
	Size      int
	Alignment int
}

// TypeInfo is an immutable type descriptor. Scalar/vector/matrix/
// sampler prototypes are canonicalised by Registry (one shared
// instance per structural identity); array, struct and function types
// are allocated fresh per declaration since their identity is
// structural, not poolable (spec.md §9 DESIGN NOTES).
type TypeInfo struct {
	Kind       BaseKind
	Size       int // bytes
	Alignment  int
	Components int // 1 for scalars, N for vecN/matN² elements
	TGQType    TGQType
	RegClass   RegClass

	// Array-only.
	ElementType *TypeInfo
	ArrayLength int

	// Struct-only.
	Struct *StructInfo

	// Function-only.
	ReturnType *TypeInfo
	ParamTypes []*TypeInfo
}

func (t *TypeInfo) String() string {
	if t == nil {
		return "<unresolved>"
	}
	switch t.Kind {
	case ArrayKind:
		return fmt.Sprintf("%s[%d]", t.ElementType, t.ArrayLength)
	case StructKind:
		return "struct " + t.Struct.Name
	case FunctionKind:
		return fmt.Sprintf("func(%d params) %s", len(t.ParamTypes), t.ReturnType)
	default:
		return kindNames[t.Kind]
	}
}

var kindNames = map[BaseKind]string{
	Void: "void", Bool: "bool", Int: "int", Float: "float", Double: "double", Char: "char",
	Vec2: "vec2", Vec3: "vec3", Vec4: "vec4",
	IVec2: "ivec2", IVec3: "ivec3", IVec4: "ivec4",
	BVec2: "bvec2", BVec3: "bvec3", BVec4: "bvec4",
	Mat2: "mat2", Mat3: "mat3", Mat4: "mat4",
	Sampler2D: "sampler2D", Sampler3D: "sampler3D", SamplerCube: "samplerCube",
}

// IsScalar reports whether t is one of the non-composite numeric or
// bool base kinds.
func IsScalar(t *TypeInfo) bool {
	switch t.Kind {
	case Bool, Int, Float, Double, Char:
		return true
	}
	return false
}

// IsVector reports whether t is a vecN/ivecN/bvecN type.
func IsVector(t *TypeInfo) bool {
	switch t.Kind {
	case Vec2, Vec3, Vec4, IVec2, IVec3, IVec4, BVec2, BVec3, BVec4:
		return true
	}
	return false
}

// IsMatrix reports whether t is a matN type.
func IsMatrix(t *TypeInfo) bool {
	switch t.Kind {
	case Mat2, Mat3, Mat4:
		return true
	}
	return false
}

// IsNumeric reports whether t supports arithmetic (scalar, vector or
// matrix, excluding bool and bvecN).
func IsNumeric(t *TypeInfo) bool {
	if t.Kind == Bool || t.Kind == BVec2 || t.Kind == BVec3 || t.Kind == BVec4 {
		return false
	}
	return IsScalar(t) || IsVector(t) || IsMatrix(t)
}

// isFloaty reports whether t's representation is a floating type.
func isFloaty(t *TypeInfo) bool {
	switch t.Kind {
	case Float, Double, Vec2, Vec3, Vec4, Mat2, Mat3, Mat4:
		return true
	}
	return false
}

// TypesEqual is structural, except for structs which compare by name
// (nominal typing, spec.md §4.3).
func TypesEqual(a, b *TypeInfo) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case StructKind:
		return a.Struct.Name == b.Struct.Name
	case ArrayKind:
		return a.ArrayLength == b.ArrayLength && TypesEqual(a.ElementType, b.ElementType)
	default:
		return true
	}
}

// TypesCompatible additionally allows int<->float and bool<->int
// (spec.md §4.3).
func TypesCompatible(a, b *TypeInfo) bool {
	if TypesEqual(a, b) {
		return true
	}
	intFloat := func(x, y *TypeInfo) bool { return x.Kind == Int && y.Kind == Float }
	boolInt := func(x, y *TypeInfo) bool { return x.Kind == Bool && y.Kind == Int }
	return intFloat(a, b) || intFloat(b, a) || boolInt(a, b) || boolInt(b, a)
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"&&": true, "||": true,
}

// BinaryResultType infers the result type of a binary expression per
// spec.md §4.3: comparisons/logicals -> bool; scalar arithmetic with a
// float operand -> float, else int; vector-vector (matching component
// count) -> the left operand's type; scalar-vector (either side) ->
// the vector type; matrix-matrix -> the left matrix; matrix-vector ->
// the vector type matching the matrix order.
func BinaryResultType(reg *Registry, op string, l, r *TypeInfo) (*TypeInfo, error) {
	if comparisonOps[op] {
		bt, _ := reg.LookupBuiltin("bool")
		return bt, nil
	}

	if IsMatrix(l) && IsMatrix(r) {
		return l, nil
	}
	if IsMatrix(l) && IsVector(r) {
		if !matrixVectorMatches(l, r) {
			return nil, fmt.Errorf("matrix/vector order mismatch: %s * %s", l, r)
		}
		return r, nil
	}
	if IsVector(l) && IsMatrix(r) {
		if !matrixVectorMatches(r, l) {
			return nil, fmt.Errorf("matrix/vector order mismatch: %s * %s", l, r)
		}
		return l, nil
	}
	if IsVector(l) && IsVector(r) {
		if l.Components != r.Components {
			return nil, fmt.Errorf("vector component mismatch: %s vs %s", l, r)
		}
		return l, nil
	}
	if IsVector(l) && IsScalar(r) {
		return l, nil
	}
	if IsScalar(l) && IsVector(r) {
		return r, nil
	}

	// Scalar arithmetic.
	if isFloaty(l) || isFloaty(r) {
		ft, _ := reg.LookupBuiltin("float")
		return ft, nil
	}
	it, _ := reg.LookupBuiltin("int")
	return it, nil
}

func matrixVectorMatches(m, v *TypeInfo) bool {
	switch m.Kind {
	case Mat4:
		return v.Kind == Vec4
	case Mat3:
		return v.Kind == Vec3
	case Mat2:
		return v.Kind == Vec2
	}
	return false
}

// UnaryResultType infers the result type of a unary expression: "!"
// yields bool, everything else preserves the operand type.
func UnaryResultType(reg *Registry, op string, t *TypeInfo) *TypeInfo {
	if op == "!" {
		bt, _ := reg.LookupBuiltin("bool")
		return bt
	}
	return t
}

// swizzleSets holds the three interchangeable swizzle alphabets,
// indexed 0-3 (spec.md §4.3).
var swizzleSets = []string{"xyzw", "rgba", "stpq"}

func swizzleIndex(c byte) (int, bool) {
	for _, set := range swizzleSets {
		for i := 0; i < len(set); i++ {
			if set[i] == c {
				return i, true
			}
		}
	}
	return 0, false
}

// MemberType resolves a MemberExpr: struct field lookup, or vector
// swizzle (length 1 -> the component scalar type, 2/3/4 -> vecN).
func MemberType(reg *Registry, base *TypeInfo, name string) (*TypeInfo, error) {
	if base.Kind == StructKind {
		for _, f := range base.Struct.Fields {
			if f.Name == name {
				return f.Type, nil
			}
		}
		return nil, fmt.Errorf("struct %s has no field %q", base.Struct.Name, name)
	}

	if !IsVector(base) {
		return nil, fmt.Errorf("type %s has no member %q", base, name)
	}
	if len(name) < 1 || len(name) > 4 {
		return nil, fmt.Errorf("invalid swizzle %q", name)
	}
	for i := 0; i < len(name); i++ {
		idx, ok := swizzleIndex(name[i])
		if !ok {
			return nil, fmt.Errorf("invalid swizzle character %q", name[i])
		}
		if idx >= base.Components {
			return nil, fmt.Errorf("swizzle %q out of range for %s", name, base)
		}
	}

	scalarName := "float"
	if base.Kind == IVec2 || base.Kind == IVec3 || base.Kind == IVec4 {
		scalarName = "int"
	} else if base.Kind == BVec2 || base.Kind == BVec3 || base.Kind == BVec4 {
		scalarName = "bool"
	}

	switch len(name) {
	case 1:
		t, _ := reg.LookupBuiltin(scalarName)
		return t, nil
	default:
		vecName := fmt.Sprintf("%s%d", vecPrefix(base.Kind), len(name))
		t, ok := reg.LookupBuiltin(vecName)
		if !ok {
			return nil, fmt.Errorf("no vector type for swizzle result %q", vecName)
		}
		return t, nil
	}
}

func vecPrefix(k BaseKind) string {
	switch k {
	case IVec2, IVec3, IVec4:
		return "ivec"
	case BVec2, BVec3, BVec4:
		return "bvec"
	default:
		return "vec"
	}
}

// Float32ToFP16 converts an IEEE-754 binary32 value to a binary16 bit
// pattern: subnormal exponents collapse to signed zero, overflowing
// exponents produce signed infinity, otherwise the exponent is
// rebiased and the mantissa truncated to 10 bits (spec.md §4.3, §8).
func Float32ToFP16(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xFF) - 127 + 15
	mantissa := bits & 0x7FFFFF

	if exp <= 0 {
		return sign
	}
	if exp >= 31 {
		return sign | 0x7C00
	}
	return sign | uint16(exp<<10) | uint16(mantissa>>13)
}
