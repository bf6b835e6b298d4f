package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgquartz/pkg/ast"
	"tgquartz/pkg/lexer"
)

func parseSrc(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks := lexer.Lex(src)
	prog, err := Parse(toks)
	require.NoError(t, err)
	return prog
}

func TestConstIntDeclaration(t *testing.T) {
	prog := parseSrc(t, "const int N = 42;")
	require.Len(t, prog.Decls, 1)
	decl, ok := prog.Decls[0].(*ast.VariableDecl)
	require.True(t, ok)
	assert.Equal(t, []ast.Qualifier{ast.QualConst}, decl.Qualifiers)
	assert.Equal(t, "int", decl.TypeName)
	assert.Equal(t, "N", decl.Name)
	lit, ok := decl.Init.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "42", lit.Lexeme)
}

func TestStructDeclaration(t *testing.T) {
	prog := parseSrc(t, "struct S { int a; float b; }; S s;")
	require.Len(t, prog.Decls, 2)

	sd, ok := prog.Decls[0].(*ast.StructDecl)
	require.True(t, ok)
	assert.Equal(t, "S", sd.Name)
	require.Len(t, sd.Fields, 2)
	assert.Equal(t, ast.StructField{TypeName: "int", Name: "a"}, sd.Fields[0])
	assert.Equal(t, ast.StructField{TypeName: "float", Name: "b"}, sd.Fields[1])

	vd, ok := prog.Decls[1].(*ast.VariableDecl)
	require.True(t, ok)
	assert.Equal(t, "S", vd.TypeName)
	assert.Equal(t, "s", vd.Name)
}

// spec §8 boundary scenario 3.
func TestBinaryPrecedence(t *testing.T) {
	prog := parseSrc(t, "float x = a + b * c;")
	decl := prog.Decls[0].(*ast.VariableDecl)
	top, ok := decl.Init.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", top.Op)
	assert.IsType(t, &ast.Identifier{}, top.Left)

	right, ok := top.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", right.Op)
}

// spec §8 boundary scenario 4.
func TestForLoopShape(t *testing.T) {
	prog := parseSrc(t, "void f() { for (int i = 0; i < 10; i = i + 1) { } }")
	fn := prog.Decls[0].(*ast.FunctionDecl)
	forStmt := fn.Body.Stmts[0].(*ast.ForStmt)

	initDecl, ok := forStmt.Init.(*ast.VariableDecl)
	require.True(t, ok)
	assert.Equal(t, "int", initDecl.TypeName)
	assert.Equal(t, "i", initDecl.Name)

	test, ok := forStmt.Test.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "<", test.Op)

	update, ok := forStmt.Update.(*ast.ExprStmt)
	require.True(t, ok)
	assign, ok := update.Expr.(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "=", assign.Op)
}

// spec §8 boundary scenario 5.
func TestConstructorExpression(t *testing.T) {
	prog := parseSrc(t, "vec3 v = vec3(1.0, 2.0, 3.0);")
	decl := prog.Decls[0].(*ast.VariableDecl)
	ctor, ok := decl.Init.(*ast.ConstructorExpr)
	require.True(t, ok)
	assert.Equal(t, "vec3", ctor.TypeName)
	require.Len(t, ctor.Args, 3)
	for i, want := range []string{"1.0", "2.0", "3.0"} {
		lit := ctor.Args[i].(*ast.Literal)
		assert.Equal(t, want, lit.Lexeme)
	}
}

func TestFunctionDeclarationWithParams(t *testing.T) {
	prog := parseSrc(t, "float dot3(vec3 a, vec3 b) { return a; }")
	fn := prog.Decls[0].(*ast.FunctionDecl)
	assert.Equal(t, "float", fn.ReturnType)
	assert.Equal(t, "dot3", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, ast.Param{TypeName: "vec3", Name: "a"}, fn.Params[0])
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	assert.IsType(t, &ast.Identifier{}, ret.Argument)
}

func TestQualifiedVariableDeclaration(t *testing.T) {
	prog := parseSrc(t, "uniform vec3 color;")
	decl := prog.Decls[0].(*ast.VariableDecl)
	assert.Equal(t, []ast.Qualifier{ast.QualUniform}, decl.Qualifiers)
	assert.Equal(t, "vec3", decl.TypeName)
	assert.Nil(t, decl.Init)
}

func TestMemberAndSwizzleAccess(t *testing.T) {
	prog := parseSrc(t, "float x = v.xyz.x;")
	decl := prog.Decls[0].(*ast.VariableDecl)
	outer, ok := decl.Init.(*ast.MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "x", outer.Property)
	inner, ok := outer.Object.(*ast.MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "xyz", inner.Property)
}

func TestIndexExpression(t *testing.T) {
	prog := parseSrc(t, "float x = arr[2];")
	decl := prog.Decls[0].(*ast.VariableDecl)
	idx, ok := decl.Init.(*ast.IndexExpr)
	require.True(t, ok)
	lit := idx.Index.(*ast.Literal)
	assert.Equal(t, "2", lit.Lexeme)
}

func TestCallExpression(t *testing.T) {
	prog := parseSrc(t, "float x = dot(a, b);")
	decl := prog.Decls[0].(*ast.VariableDecl)
	call, ok := decl.Init.(*ast.CallExpr)
	require.True(t, ok)
	callee := call.Callee.(*ast.Identifier)
	assert.Equal(t, "dot", callee.Name)
	require.Len(t, call.Args, 2)
}

func TestArrayDeclaration(t *testing.T) {
	prog := parseSrc(t, "int counter[4];")
	decl := prog.Decls[0].(*ast.VariableDecl)
	length := decl.ArrayLength.(*ast.Literal)
	assert.Equal(t, "4", length.Lexeme)
}

func TestIfElseStatement(t *testing.T) {
	prog := parseSrc(t, "void f() { if (a < b) { } else { } }")
	fn := prog.Decls[0].(*ast.FunctionDecl)
	ifStmt := fn.Body.Stmts[0].(*ast.IfStmt)
	assert.NotNil(t, ifStmt.Consequent)
	assert.NotNil(t, ifStmt.Alternate)
}

func TestWhileStatement(t *testing.T) {
	prog := parseSrc(t, "void f() { while (a < b) { } }")
	fn := prog.Decls[0].(*ast.FunctionDecl)
	w := fn.Body.Stmts[0].(*ast.WhileStmt)
	test, ok := w.Test.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "<", test.Op)
}

func TestPrecisionDeclLowersToPlaceholder(t *testing.T) {
	prog := parseSrc(t, "precision highp float;")
	decl := prog.Decls[0].(*ast.VariableDecl)
	assert.Equal(t, "float", decl.TypeName)
	assert.Equal(t, "$precision", decl.Name)
}

func TestParseErrorOnUnexpectedToken(t *testing.T) {
	toks := lexer.Lex("int x = ;")
	_, err := Parse(toks)
	assert.Error(t, err)
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	prog := parseSrc(t, "void f() { a = b = c; }")
	fn := prog.Decls[0].(*ast.FunctionDecl)
	exprStmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	outer, ok := exprStmt.Expr.(*ast.Assignment)
	require.True(t, ok)
	assert.IsType(t, &ast.Identifier{}, outer.Left)
	inner, ok := outer.Right.(*ast.Assignment)
	require.True(t, ok)
	assert.IsType(t, &ast.Identifier{}, inner.Left)
}

// Parsing is deterministic: repeated parses of the same input yield
// structurally identical ASTs (spec §8).
func TestParsingIsDeterministic(t *testing.T) {
	src := "vec3 v = vec3(1.0, 2.0, 3.0) + a * b;"
	a := parseSrc(t, src)
	b := parseSrc(t, src)
	assert.Equal(t, a.String(), b.String())
}
