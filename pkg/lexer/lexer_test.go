package lexer

import (
	"reflect"
	"testing"
)

func stripPos(toks []Token) []Token {
	out := make([]Token, len(toks))
	for i, t := range toks {
		out[i] = Token{Kind: t.Kind, Lexeme: t.Lexeme}
	}
	return out
}

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []Token{{Kind: EOF}},
		},
		{
			name:  "Basic tokens",
			input: "+ - * / = == != < > ; , { } ( )",
			expected: []Token{
				{Kind: OPERATOR, Lexeme: "+"},
				{Kind: OPERATOR, Lexeme: "-"},
				{Kind: OPERATOR, Lexeme: "*"},
				{Kind: OPERATOR, Lexeme: "/"},
				{Kind: OPERATOR, Lexeme: "="},
				{Kind: OPERATOR, Lexeme: "=="},
				{Kind: OPERATOR, Lexeme: "!="},
				{Kind: OPERATOR, Lexeme: "<"},
				{Kind: OPERATOR, Lexeme: ">"},
				{Kind: SEMICOLON, Lexeme: ";"},
				{Kind: COMMA, Lexeme: ","},
				{Kind: LBRACE, Lexeme: "{"},
				{Kind: RBRACE, Lexeme: "}"},
				{Kind: LPAREN, Lexeme: "("},
				{Kind: RPAREN, Lexeme: ")"},
				{Kind: EOF},
			},
		},
		{
			name:  "Keywords, types and identifiers",
			input: "vec3 uniform if else while return v _under_score",
			expected: []Token{
				{Kind: TYPE_VEC3, Lexeme: "vec3"},
				{Kind: KW_UNIFORM, Lexeme: "uniform"},
				{Kind: KW_IF, Lexeme: "if"},
				{Kind: KW_ELSE, Lexeme: "else"},
				{Kind: KW_WHILE, Lexeme: "while"},
				{Kind: KW_RETURN, Lexeme: "return"},
				{Kind: IDENTIFIER, Lexeme: "v"},
				{Kind: IDENTIFIER, Lexeme: "_under_score"},
				{Kind: EOF},
			},
		},
		{
			name:  "Numbers",
			input: "42 3.14 1.0f 0f",
			expected: []Token{
				{Kind: NUMBER, Lexeme: "42"},
				{Kind: NUMBER, Lexeme: "3.14"},
				{Kind: NUMBER, Lexeme: "1.0f"},
				{Kind: NUMBER, Lexeme: "0f"},
				{Kind: EOF},
			},
		},
		{
			name:  "Two-char operators greedily matched",
			input: "== != <= >= && || += -= *= /= ++ -- << >>",
			expected: []Token{
				{Kind: OPERATOR, Lexeme: "=="}, {Kind: OPERATOR, Lexeme: "!="},
				{Kind: OPERATOR, Lexeme: "<="}, {Kind: OPERATOR, Lexeme: ">="},
				{Kind: OPERATOR, Lexeme: "&&"}, {Kind: OPERATOR, Lexeme: "||"},
				{Kind: OPERATOR, Lexeme: "+="}, {Kind: OPERATOR, Lexeme: "-="},
				{Kind: OPERATOR, Lexeme: "*="}, {Kind: OPERATOR, Lexeme: "/="},
				{Kind: OPERATOR, Lexeme: "++"}, {Kind: OPERATOR, Lexeme: "--"},
				{Kind: OPERATOR, Lexeme: "<<"}, {Kind: OPERATOR, Lexeme: ">>"},
				{Kind: EOF},
			},
		},
		{
			// spec §8 boundary scenario 6: "==" is one token; "= =" is two.
			name:  "Spaced equals stays two tokens",
			input: "= =",
			expected: []Token{
				{Kind: OPERATOR, Lexeme: "="},
				{Kind: OPERATOR, Lexeme: "="},
				{Kind: EOF},
			},
		},
		{
			name:  "Line comment then block comment stripped",
			input: "int x; // trailing\n/* block\n comment */ int y;",
			expected: []Token{
				{Kind: TYPE_INT, Lexeme: "int"}, {Kind: IDENTIFIER, Lexeme: "x"}, {Kind: SEMICOLON, Lexeme: ";"},
				{Kind: TYPE_INT, Lexeme: "int"}, {Kind: IDENTIFIER, Lexeme: "y"}, {Kind: SEMICOLON, Lexeme: ";"},
				{Kind: EOF},
			},
		},
		{
			name:  "Unterminated block comment runs to EOF without failing",
			input: "int x; /* never closed",
			expected: []Token{
				{Kind: TYPE_INT, Lexeme: "int"}, {Kind: IDENTIFIER, Lexeme: "x"}, {Kind: SEMICOLON, Lexeme: ";"},
				{Kind: EOF},
			},
		},
		{
			name:  "Unrecognised byte becomes a one-byte operator",
			input: "x @ y",
			expected: []Token{
				{Kind: IDENTIFIER, Lexeme: "x"},
				{Kind: OPERATOR, Lexeme: "@"},
				{Kind: IDENTIFIER, Lexeme: "y"},
				{Kind: EOF},
			},
		},
		{
			name:  "String literal with escape pass-through",
			input: `"a\"b" 'c'`,
			expected: []Token{
				{Kind: STRING, Lexeme: `"a\"b"`},
				{Kind: STRING, Lexeme: `'c'`},
				{Kind: EOF},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripPos(Lex(tt.input))
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lex(%q) =\n  %v\nwant\n  %v", tt.input, got, tt.expected)
			}
		})
	}
}

// TestLexIdempotent checks spec §8's invariant: lexing, printing the
// lexemes back out space-separated, and re-lexing reproduces the same
// kind/lexeme sequence (comments aside, since printing drops them).
func TestLexIdempotent(t *testing.T) {
	srcs := []string{
		"int x = 10; vec3 v = vec3(1.0, 2.0, 3.0);",
		"for (int i = 0; i < 10; i = i + 1) { }",
		"struct S { int a; float b; }; S s;",
	}
	for _, src := range srcs {
		first := Lex(src)
		var rebuilt string
		for _, tok := range first {
			if tok.Kind == EOF {
				break
			}
			rebuilt += tok.Lexeme + " "
		}
		second := Lex(rebuilt)
		if !reflect.DeepEqual(stripPos(first), stripPos(second)) {
			t.Errorf("re-lex mismatch for %q:\n  first  %v\n  second %v", src, stripPos(first), stripPos(second))
		}
	}
}

func TestLexEOFPosition(t *testing.T) {
	toks := Lex("int x;\n")
	last := toks[len(toks)-1]
	if last.Kind != EOF {
		t.Fatalf("expected final token to be EOF, got %v", last.Kind)
	}
	if last.Line != 2 {
		t.Errorf("expected EOF on line 2, got line %d", last.Line)
	}
}
