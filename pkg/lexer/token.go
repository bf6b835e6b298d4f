package lexer

import "fmt"

// TokenKind identifies the category of a lexed token.
type TokenKind int

const (
	EOF TokenKind = iota // sentinel: end of input

	IDENTIFIER
	NUMBER
	STRING

	// Keywords
	KW_IF
	KW_ELSE
	KW_FOR
	KW_WHILE
	KW_DO
	KW_RETURN
	KW_BREAK
	KW_CONTINUE
	KW_CONST
	KW_STRUCT
	KW_UNIFORM
	KW_VARYING
	KW_ATTRIBUTE
	KW_IN
	KW_OUT
	KW_INOUT
	KW_PRECISION
	KW_MEDIUMP
	KW_HIGHP
	KW_LOWP

	// Built-in type names
	TYPE_VOID
	TYPE_INT
	TYPE_FLOAT
	TYPE_DOUBLE
	TYPE_BOOL
	TYPE_CHAR
	TYPE_VEC2
	TYPE_VEC3
	TYPE_VEC4
	TYPE_IVEC2
	TYPE_IVEC3
	TYPE_IVEC4
	TYPE_BVEC2
	TYPE_BVEC3
	TYPE_BVEC4
	TYPE_MAT2
	TYPE_MAT3
	TYPE_MAT4
	TYPE_SAMPLER2D
	TYPE_SAMPLER3D
	TYPE_SAMPLERCUBE

	// Brackets / punctuators (one kind per character)
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	SEMICOLON
	COMMA
	DOT

	// Operators (lexemes vary; kind is generic, Lexeme carries the text)
	OPERATOR

	COMMENT // returned by Lexer.Next; Lex filters it out before the parser sees the stream
)

var kindNames = [...]string{
	EOF:              "EOF",
	IDENTIFIER:       "IDENTIFIER",
	NUMBER:           "NUMBER",
	STRING:           "STRING",
	KW_IF:            "if",
	KW_ELSE:          "else",
	KW_FOR:           "for",
	KW_WHILE:         "while",
	KW_DO:            "do",
	KW_RETURN:        "return",
	KW_BREAK:         "break",
	KW_CONTINUE:      "continue",
	KW_CONST:         "const",
	KW_STRUCT:        "struct",
	KW_UNIFORM:       "uniform",
	KW_VARYING:       "varying",
	KW_ATTRIBUTE:     "attribute",
	KW_IN:            "in",
	KW_OUT:           "out",
	KW_INOUT:         "inout",
	KW_PRECISION:     "precision",
	KW_MEDIUMP:       "mediump",
	KW_HIGHP:         "highp",
	KW_LOWP:          "lowp",
	TYPE_VOID:        "void",
	TYPE_INT:         "int",
	TYPE_FLOAT:       "float",
	TYPE_DOUBLE:      "double",
	TYPE_BOOL:        "bool",
	TYPE_CHAR:        "char",
	TYPE_VEC2:        "vec2",
	TYPE_VEC3:        "vec3",
	TYPE_VEC4:        "vec4",
	TYPE_IVEC2:       "ivec2",
	TYPE_IVEC3:       "ivec3",
	TYPE_IVEC4:       "ivec4",
	TYPE_BVEC2:       "bvec2",
	TYPE_BVEC3:       "bvec3",
	TYPE_BVEC4:       "bvec4",
	TYPE_MAT2:        "mat2",
	TYPE_MAT3:        "mat3",
	TYPE_MAT4:        "mat4",
	TYPE_SAMPLER2D:   "sampler2D",
	TYPE_SAMPLER3D:   "sampler3D",
	TYPE_SAMPLERCUBE: "samplerCube",
	LPAREN:           "LPAREN",
	RPAREN:           "RPAREN",
	LBRACE:           "LBRACE",
	RBRACE:           "RBRACE",
	LBRACKET:         "LBRACKET",
	RBRACKET:         "RBRACKET",
	SEMICOLON:        "SEMICOLON",
	COMMA:            "COMMA",
	DOT:              "DOT",
	OPERATOR:         "OPERATOR",
	COMMENT:          "COMMENT",
}

func (k TokenKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// keywords maps source text to its keyword TokenKind.
var keywords = map[string]TokenKind{
	"if":        KW_IF,
	"else":      KW_ELSE,
	"for":       KW_FOR,
	"while":     KW_WHILE,
	"do":        KW_DO,
	"return":    KW_RETURN,
	"break":     KW_BREAK,
	"continue":  KW_CONTINUE,
	"const":     KW_CONST,
	"struct":    KW_STRUCT,
	"uniform":   KW_UNIFORM,
	"varying":   KW_VARYING,
	"attribute": KW_ATTRIBUTE,
	"in":        KW_IN,
	"out":       KW_OUT,
	"inout":     KW_INOUT,
	"precision": KW_PRECISION,
	"mediump":   KW_MEDIUMP,
	"highp":     KW_HIGHP,
	"lowp":      KW_LOWP,
}

// builtinTypes maps source text to its built-in-type TokenKind.
var builtinTypes = map[string]TokenKind{
	"void":        TYPE_VOID,
	"int":         TYPE_INT,
	"float":       TYPE_FLOAT,
	"double":      TYPE_DOUBLE,
	"bool":        TYPE_BOOL,
	"char":        TYPE_CHAR,
	"vec2":        TYPE_VEC2,
	"vec3":        TYPE_VEC3,
	"vec4":        TYPE_VEC4,
	"ivec2":       TYPE_IVEC2,
	"ivec3":       TYPE_IVEC3,
	"ivec4":       TYPE_IVEC4,
	"bvec2":       TYPE_BVEC2,
	"bvec3":       TYPE_BVEC3,
	"bvec4":       TYPE_BVEC4,
	"mat2":        TYPE_MAT2,
	"mat3":        TYPE_MAT3,
	"mat4":        TYPE_MAT4,
	"sampler2D":   TYPE_SAMPLER2D,
	"sampler3D":   TYPE_SAMPLER3D,
	"samplerCube": TYPE_SAMPLERCUBE,
}

// IsBuiltinType reports whether kind names one of the built-in scalar,
// vector, matrix or sampler types.
func (k TokenKind) IsBuiltinType() bool {
	return k >= TYPE_VOID && k <= TYPE_SAMPLERCUBE
}

// Token is a single lexical unit produced by the Lexer. Tokens are
// immutable once produced.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Col    int
}

func (t Token) String() string {
	return fmt.Sprintf("%-12s %-14q line %d col %d", t.Kind, t.Lexeme, t.Line, t.Col)
}
