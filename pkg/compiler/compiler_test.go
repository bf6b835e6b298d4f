package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSourceEndToEnd(t *testing.T) {
	c := New(nil)
	res, err := c.CompileSource(`
		const int N = 42;
		vec3 v = vec3(1.0, 2.0, 3.0);
		float scale(float x) { return x * 2.0; }
	`)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.NotEmpty(t, res.Tokens)
	assert.Len(t, res.Program.Decls, 3)
	assert.NotEmpty(t, res.Code)
	assert.Equal(t, []byte{0x2A, 0x00, 0x00, 0x00}, res.Data)
	assert.NotEmpty(t, res.Disassembly)
}

func TestCompileSourcePropagatesParseError(t *testing.T) {
	c := New(nil)
	_, err := c.CompileSource("int x = ;")
	assert.Error(t, err)
}

func TestTwoCompilersProduceDistinctCompileIDs(t *testing.T) {
	a := New(nil)
	b := New(nil)
	assert.NotEqual(t, a.CompileID, b.CompileID)
}

func TestCompileSourceIsDeterministic(t *testing.T) {
	src := "const int N = 42;"
	a, err := New(nil).CompileSource(src)
	require.NoError(t, err)
	b, err := New(nil).CompileSource(src)
	require.NoError(t, err)
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Data, b.Data)
}
