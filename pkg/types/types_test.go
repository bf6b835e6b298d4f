package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCanonicalisesBuiltins(t *testing.T) {
	reg := NewRegistry()
	a, ok := reg.LookupBuiltin("vec3")
	require.True(t, ok)
	b, ok := reg.LookupBuiltin("vec3")
	require.True(t, ok)
	assert.Same(t, a, b, "LookupBuiltin must return the same canonical handle across calls")

	_, ok = reg.LookupBuiltin("nonsense")
	assert.False(t, ok)
}

func TestStructLayoutAlignment(t *testing.T) {
	reg := NewRegistry()
	intT, _ := reg.LookupBuiltin("int")
	floatT, _ := reg.LookupBuiltin("float")
	charT, _ := reg.LookupBuiltin("char")

	// struct S { char a; int b; } -- b must align to 4.
	st := NewStructType("S", []string{"a", "b"}, []*TypeInfo{charT, intT})
	require.Len(t, st.Struct.Fields, 2)
	assert.Equal(t, 0, st.Struct.Fields[0].Offset)
	assert.Equal(t, 4, st.Struct.Fields[1].Offset)
	assert.Equal(t, 8, st.Struct.Size)
	assert.Equal(t, 4, st.Struct.Alignment)

	for _, f := range st.Struct.Fields {
		assert.Equal(t, 0, f.Offset%f.Type.Alignment, "field %s offset must satisfy its own alignment", f.Name)
	}
	assert.Equal(t, 0, st.Struct.Size%st.Struct.Alignment)

	// spec §8 boundary scenario 2: struct S { int a; float b; }; S s;
	st2 := NewStructType("S2", []string{"a", "b"}, []*TypeInfo{intT, floatT})
	assert.Equal(t, 0, st2.Struct.Fields[0].Offset)
	assert.Equal(t, 4, st2.Struct.Fields[1].Offset)
	assert.Equal(t, 8, st2.Struct.Size)
	assert.Equal(t, 4, st2.Struct.Alignment)
}

func TestArrayType(t *testing.T) {
	reg := NewRegistry()
	intT, _ := reg.LookupBuiltin("int")
	arr := NewArrayType(intT, 4)
	assert.Equal(t, 16, arr.Size)
	assert.Equal(t, intT.Alignment, arr.Alignment)
	assert.Equal(t, RegNone, arr.RegClass)
}

func TestBinaryResultType(t *testing.T) {
	reg := NewRegistry()
	intT, _ := reg.LookupBuiltin("int")
	floatT, _ := reg.LookupBuiltin("float")
	vec3T, _ := reg.LookupBuiltin("vec3")
	mat4T, _ := reg.LookupBuiltin("mat4")
	vec4T, _ := reg.LookupBuiltin("vec4")
	boolT, _ := reg.LookupBuiltin("bool")

	res, err := BinaryResultType(reg, "==", intT, floatT)
	require.NoError(t, err)
	assert.Same(t, boolT, res)

	res, err = BinaryResultType(reg, "+", intT, floatT)
	require.NoError(t, err)
	assert.Same(t, floatT, res)

	res, err = BinaryResultType(reg, "+", intT, intT)
	require.NoError(t, err)
	assert.Same(t, intT, res)

	res, err = BinaryResultType(reg, "*", vec3T, intT)
	require.NoError(t, err)
	assert.Same(t, vec3T, res)

	res, err = BinaryResultType(reg, "*", mat4T, vec4T)
	require.NoError(t, err)
	assert.Same(t, vec4T, res)

	_, err = BinaryResultType(reg, "*", mat4T, vec3T)
	assert.Error(t, err, "mismatched matrix/vector order must fail")
}

func TestUnaryResultType(t *testing.T) {
	reg := NewRegistry()
	intT, _ := reg.LookupBuiltin("int")
	boolT, _ := reg.LookupBuiltin("bool")

	assert.Same(t, boolT, UnaryResultType(reg, "!", intT))
	assert.Same(t, intT, UnaryResultType(reg, "-", intT))
}

func TestMemberTypeSwizzle(t *testing.T) {
	reg := NewRegistry()
	vec4T, _ := reg.LookupBuiltin("vec4")
	floatT, _ := reg.LookupBuiltin("float")
	vec2T, _ := reg.LookupBuiltin("vec2")
	vec3T, _ := reg.LookupBuiltin("vec3")

	res, err := MemberType(reg, vec4T, "x")
	require.NoError(t, err)
	assert.Same(t, floatT, res)

	res, err = MemberType(reg, vec4T, "xy")
	require.NoError(t, err)
	assert.Same(t, vec2T, res)

	// rgba and xyzw are interchangeable alphabets over the same components.
	res, err = MemberType(reg, vec4T, "rgb")
	require.NoError(t, err)
	assert.Same(t, vec3T, res)

	_, err = MemberType(reg, vec2T, "z")
	assert.Error(t, err, "swizzle index must stay within the source's component count")
}

func TestMemberTypeStructField(t *testing.T) {
	reg := NewRegistry()
	intT, _ := reg.LookupBuiltin("int")
	floatT, _ := reg.LookupBuiltin("float")
	st := NewStructType("S", []string{"a", "b"}, []*TypeInfo{intT, floatT})

	res, err := MemberType(reg, st, "b")
	require.NoError(t, err)
	assert.Same(t, floatT, res)

	_, err = MemberType(reg, st, "missing")
	assert.Error(t, err)
}

func TestFloat32ToFP16(t *testing.T) {
	cases := []struct {
		name  string
		input float32
		want  uint16
	}{
		{"positive zero", 0.0, 0x0000},
		{"negative zero", float32(negZero()), 0x8000},
		{"subnormal collapses to zero", 1e-10, 0x0000},
		{"overflow to +inf", 1e30, 0x7C00},
		{"overflow to -inf", -1e30, 0xFC00},
		{"one", 1.0, 0x3C00},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Float32ToFP16(c.input))
		})
	}
}

func negZero() float32 {
	var z float32
	return -z
}
