// Package parser implements the recursive-descent parser of spec.md
// §4.2: a 9-level precedence-climbing expression grammar and
// two-token-lookahead declaration/statement parsing over
// pkg/lexer's filtered token stream, producing pkg/ast nodes.
//
// Grounded on smasonuk-sicpu/pkg/compiler/parser.go's recursive
// descent shape (peek/peekAt/advance/expect, one method per
// precedence level, parseStatement dispatch table), generalised from
// that teacher's C-subset grammar to the shading-language grammar:
// qualifier lists, swizzle/member access, and type constructors are
// new; casts, pointers and switch are dropped (see SPEC_FULL.md §5).
package parser

import (
	"fmt"
	"strings"

	"tgquartz/pkg/ast"
	"tgquartz/pkg/lexer"
)

// Parser consumes a flat token slice and builds an AST. On the first
// error it returns (nil, error) rather than aborting the process
// (spec.md §9 DESIGN NOTES: "fatal-exit-on-parse-error should be
// replaced with result-returning error propagation").
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New constructs a Parser over tokens (normally the output of
// lexer.Lex, which has already filtered comments).
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes nothing itself: it expects the caller to have already
// run the lexer. It returns the root Program node, or the first
// parse error encountered.
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	p := New(tokens)
	return p.parseProgram()
}

func (p *Parser) peek() lexer.Token  { return p.peekAt(0) }
func (p *Parser) peekNext() lexer.Token { return p.peekAt(1) }

func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // sticky EOF
	}
	return p.tokens[idx]
}

// advance consumes and returns the current token. Advancing past the
// sticky EOF token is a no-op (spec.md §4.2).
func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("line %d:%d: %s (got %s %q)", tok.Line, tok.Col, msg, tok.Kind, tok.Lexeme)
}

func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, error) {
	tok := p.advance()
	if tok.Kind != kind {
		return tok, p.errorf(tok, "expected %s", kind)
	}
	return tok, nil
}

func (p *Parser) expectLexeme(kind lexer.TokenKind, lexeme string) (lexer.Token, error) {
	tok := p.advance()
	if tok.Kind != kind || tok.Lexeme != lexeme {
		return tok, p.errorf(tok, "expected %q", lexeme)
	}
	return tok, nil
}

//  Top-level program / declarations

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.peek().Kind != lexer.EOF {
		decl, err := p.parseTopLevelDecl()
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, decl)
	}
	return prog, nil
}

func (p *Parser) parseTopLevelDecl() (ast.Stmt, error) {
	switch {
	case p.peek().Kind == lexer.KW_STRUCT:
		return p.parseStructDecl()
	case p.peek().Kind == lexer.KW_PRECISION:
		return p.parsePrecisionDecl()
	case p.peek().Kind == lexer.KW_CONST:
		return p.parseConstDecl()
	default:
		return p.parseQualifiedDecl()
	}
}

// parseStructDecl parses "struct NAME { (TYPE NAME ;)* } ;".
func (p *Parser) parseStructDecl() (ast.Stmt, error) {
	if _, err := p.expect(lexer.KW_STRUCT); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	var fields []ast.StructField
	for p.peek().Kind != lexer.RBRACE && p.peek().Kind != lexer.EOF {
		typeTok := p.advance()
		if !isTypeToken(typeTok) {
			return nil, p.errorf(typeTok, "expected field type")
		}
		nameTok, err := p.expect(lexer.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.SEMICOLON); err != nil {
			return nil, err
		}
		fields = append(fields, ast.StructField{TypeName: typeTok.Lexeme, Name: nameTok.Lexeme})
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.StructDecl{Name: nameTok.Lexeme, Fields: fields}, nil
}

// parsePrecisionDecl parses "precision (mediump|highp|lowp) TYPE ;"
// and lowers it to a placeholder variable declaration (spec.md §4.2
// item 2) so code generation may skip it by name.
func (p *Parser) parsePrecisionDecl() (ast.Stmt, error) {
	if _, err := p.expect(lexer.KW_PRECISION); err != nil {
		return nil, err
	}
	qualTok := p.advance()
	switch qualTok.Kind {
	case lexer.KW_MEDIUMP, lexer.KW_HIGHP, lexer.KW_LOWP:
	default:
		return nil, p.errorf(qualTok, "expected mediump, highp or lowp")
	}
	typeTok := p.advance()
	if !isTypeToken(typeTok) {
		return nil, p.errorf(typeTok, "expected type name")
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.VariableDecl{TypeName: typeTok.Lexeme, Name: "$precision"}, nil
}

// parseConstDecl parses "const TYPE NAME ([N])? = EXPR ;".
func (p *Parser) parseConstDecl() (ast.Stmt, error) {
	if _, err := p.expect(lexer.KW_CONST); err != nil {
		return nil, err
	}
	return p.finishVariableDecl([]ast.Qualifier{ast.QualConst})
}

// parseQualifiedDecl handles "{qualifiers} TYPE NAME (params)BLOCK"
// (function) or "{qualifiers} TYPE NAME ([N])? (=EXPR)? ;" (variable).
func (p *Parser) parseQualifiedDecl() (ast.Stmt, error) {
	var quals []ast.Qualifier
	for {
		q, ok := qualifierFor(p.peek().Kind)
		if !ok {
			break
		}
		quals = append(quals, q)
		p.advance()
	}

	typeTok := p.advance()
	if !isTypeToken(typeTok) {
		return nil, p.errorf(typeTok, "expected type name")
	}
	nameTok, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return nil, err
	}

	if p.peek().Kind == lexer.LPAREN {
		return p.finishFunctionDecl(quals, typeTok.Lexeme, nameTok.Lexeme)
	}
	return p.finishVariableDeclTail(quals, typeTok.Lexeme, nameTok.Lexeme)
}

func (p *Parser) finishVariableDecl(quals []ast.Qualifier) (ast.Stmt, error) {
	typeTok := p.advance()
	if !isTypeToken(typeTok) {
		return nil, p.errorf(typeTok, "expected type name")
	}
	nameTok, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	return p.finishVariableDeclTail(quals, typeTok.Lexeme, nameTok.Lexeme)
}

func (p *Parser) finishVariableDeclTail(quals []ast.Qualifier, typeName, name string) (ast.Stmt, error) {
	decl := &ast.VariableDecl{Qualifiers: quals, TypeName: typeName, Name: name}

	if p.peek().Kind == lexer.LBRACKET {
		p.advance()
		length, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		decl.ArrayLength = length
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
	}

	if p.peek().Kind == lexer.OPERATOR && p.peek().Lexeme == "=" {
		p.advance()
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}

	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) finishFunctionDecl(quals []ast.Qualifier, retType, name string) (ast.Stmt, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var params []ast.Param
	if p.peek().Kind != lexer.RPAREN {
		for {
			typeTok := p.advance()
			if !isTypeToken(typeTok) {
				return nil, p.errorf(typeTok, "expected parameter type")
			}
			nameTok, err := p.expect(lexer.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{TypeName: typeTok.Lexeme, Name: nameTok.Lexeme})
			if p.peek().Kind != lexer.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{Qualifiers: quals, ReturnType: retType, Name: name, Params: params, Body: body}, nil
}

func qualifierFor(k lexer.TokenKind) (ast.Qualifier, bool) {
	switch k {
	case lexer.KW_UNIFORM:
		return ast.QualUniform, true
	case lexer.KW_VARYING:
		return ast.QualVarying, true
	case lexer.KW_ATTRIBUTE:
		return ast.QualAttribute, true
	case lexer.KW_IN:
		return ast.QualIn, true
	case lexer.KW_OUT:
		return ast.QualOut, true
	case lexer.KW_INOUT:
		return ast.QualInout, true
	}
	return "", false
}

func isTypeToken(tok lexer.Token) bool {
	if tok.Kind == lexer.IDENTIFIER {
		return true // bare identifier naming a previously-declared struct
	}
	return tok.Kind.IsBuiltinType()
}

//  Statements

func (p *Parser) parseBlockBody() (*ast.BlockStmt, error) {
	block := &ast.BlockStmt{}
	for p.peek().Kind != lexer.RBRACE && p.peek().Kind != lexer.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return block, nil
}

// looksLikeDeclaration implements the two-token lookahead: a type
// token (built-in or identifier) followed by an identifier starts a
// declaration (spec.md §4.2, §9 "known limitation").
func (p *Parser) looksLikeDeclaration() bool {
	return isTypeToken(p.peek()) && p.peekNext().Kind == lexer.IDENTIFIER
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.peek().Kind {
	case lexer.LBRACE:
		p.advance()
		return p.parseBlockBody()
	case lexer.KW_IF:
		return p.parseIf()
	case lexer.KW_FOR:
		return p.parseFor()
	case lexer.KW_WHILE:
		return p.parseWhile()
	case lexer.KW_RETURN:
		return p.parseReturn()
	case lexer.KW_CONST:
		return p.parseConstDecl()
	}

	if p.looksLikeDeclaration() {
		typeTok := p.advance()
		nameTok, err := p.expect(lexer.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		return p.finishVariableDeclTail(nil, typeTok.Lexeme, nameTok.Lexeme)
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Expr: expr}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	p.advance() // if
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Condition: cond, Consequent: then}
	if p.peek().Kind == lexer.KW_ELSE {
		p.advance()
		alt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmt.Alternate = alt
	}
	return stmt, nil
}

// parseForInitOrExpr parses a for-loop's init clause: a declaration
// when lookahead says so, else an expression statement (which may
// itself be an assignment, spec.md boundary scenario 4).
func (p *Parser) parseForInitOrExpr() (ast.Stmt, error) {
	if p.looksLikeDeclaration() {
		typeTok := p.advance()
		nameTok, err := p.expect(lexer.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		decl := &ast.VariableDecl{TypeName: typeTok.Lexeme, Name: nameTok.Lexeme}
		if p.peek().Kind == lexer.OPERATOR && p.peek().Lexeme == "=" {
			p.advance()
			init, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			decl.Init = init
		}
		return decl, nil
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Expr: expr}, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	p.advance() // for
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}

	var init ast.Stmt
	if p.peek().Kind != lexer.SEMICOLON {
		var err error
		init, err = p.parseForInitOrExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}

	var test ast.Expr
	if p.peek().Kind != lexer.SEMICOLON {
		var err error
		test, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}

	var update ast.Stmt
	if p.peek().Kind != lexer.RPAREN {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		update = &ast.ExprStmt{Expr: expr}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Init: init, Test: test, Update: update, Body: body}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	p.advance() // while
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Test: test, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	p.advance() // return
	if p.peek().Kind == lexer.SEMICOLON {
		p.advance()
		return &ast.ReturnStmt{}, nil
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Argument: expr}, nil
}

//  Expressions (precedence-climbing, 9 levels)

var assignOps = map[string]bool{"=": true, "+=": true, "-=": true, "*=": true, "/=": true}

// parseExpression is the entry point, level 1 (assignment, right-associative).
func (p *Parser) parseExpression() (ast.Expr, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind == lexer.OPERATOR && assignOps[p.peek().Lexeme] {
		op := p.advance().Lexeme
		right, err := p.parseExpression() // right-associative
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseLogicalAnd, "||")
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseComparison, "&&")
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseAdditive, "==", "!=", "<", ">", "<=", ">=")
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, "+", "-")
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseUnary, "*", "/", "%")
}

// parseBinaryLevel left-folds same-precedence operators drawn from
// ops, deferring to next for the higher-precedence operand.
func (p *Parser) parseBinaryLevel(next func() (ast.Expr, error), ops ...string) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == lexer.OPERATOR && containsOp(ops, p.peek().Lexeme) {
		op := p.advance().Lexeme
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func containsOp(ops []string, lexeme string) bool {
	for _, o := range ops {
		if o == lexeme {
			return true
		}
	}
	return false
}

var unaryOps = map[string]bool{"+": true, "-": true, "!": true, "++": true, "--": true}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.peek().Kind == lexer.OPERATOR && unaryOps[p.peek().Lexeme] {
		op := p.advance().Lexeme
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op, Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Kind {
		case lexer.LPAREN:
			p.advance()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpr{Callee: expr, Args: args}
		case lexer.DOT:
			p.advance()
			member, err := p.expect(lexer.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpr{Object: expr, Property: member.Lexeme}
		case lexer.LBRACKET:
			p.advance()
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{Container: expr, Index: idx}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	if p.peek().Kind != lexer.RPAREN {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().Kind != lexer.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()
	switch {
	case tok.Kind == lexer.NUMBER:
		p.advance()
		return &ast.Literal{Lexeme: tok.Lexeme}, nil

	case tok.Kind.IsBuiltinType() && p.peekNext().Kind == lexer.LPAREN:
		p.advance()
		p.advance() // (
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &ast.ConstructorExpr{TypeName: tok.Lexeme, Args: args}, nil

	case tok.Kind == lexer.IDENTIFIER:
		p.advance()
		return &ast.Identifier{Name: tok.Lexeme}, nil

	case tok.Kind == lexer.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.errorf(tok, "expected expression")
	}
}

// LiteralLooksFloat distinguishes integer-looking lexemes from
// float-looking ones without re-lexing, for codegen's literal-to-
// TGQ-kind dispatch (spec.md §4.6).
func LiteralLooksFloat(lexeme string) bool {
	return strings.ContainsAny(lexeme, ".fF")
}
