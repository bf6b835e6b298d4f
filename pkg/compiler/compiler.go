// Package compiler wires the lexer, parser and code generator into a
// single compilation pipeline.
//
// Grounded on smasonuk-sicpu/pkg/compiler/compile.go's Compile driver
// (preprocess -> lex -> parse -> symbol table -> generate -> assemble
// stage order), with the package-level NewSymbolTable()/Generate()
// calls replaced by an explicit Compiler value carrying a logger and a
// per-compilation identifier, so nothing about a run lives in process
// globals (spec.md §9 DESIGN NOTES).
package compiler

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tgquartz/pkg/ast"
	"tgquartz/pkg/codegen"
	"tgquartz/pkg/emit"
	"tgquartz/pkg/lexer"
	"tgquartz/pkg/parser"
)

// Compiler holds the state a single compilation run needs beyond its
// source text: a logger and a unique identifier used to correlate log
// lines across the pipeline's stages.
type Compiler struct {
	Logger    *zap.Logger
	CompileID uuid.UUID
}

// New builds a Compiler. A nil logger is replaced with a no-op logger.
func New(logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{Logger: logger, CompileID: uuid.New()}
}

// Result holds every artifact produced by one CompileSource call.
type Result struct {
	Program     *ast.Program
	Tokens      []lexer.Token
	Code        []byte
	Data        []byte
	Disassembly []string
}

// CompileSource runs src through lex -> parse -> codegen, returning
// the finished artifacts or the first stage error encountered.
func (c *Compiler) CompileSource(src string) (*Result, error) {
	log := c.Logger.With(zap.String("compile_id", c.CompileID.String()))

	tokens := lexer.Lex(src)
	log.Debug("lexed source", zap.Int("token_count", len(tokens)))

	prog, err := parser.Parse(tokens)
	if err != nil {
		log.Error("parse failed", zap.Error(err))
		return nil, fmt.Errorf("parse: %w", err)
	}
	log.Debug("parsed source", zap.Int("decl_count", len(prog.Decls)))

	gen := codegen.New(log)
	code, data, err := gen.Generate(prog)
	if err != nil {
		log.Error("codegen failed", zap.Error(err))
		return nil, fmt.Errorf("codegen: %w", err)
	}
	log.Info("compilation complete",
		zap.Int("code_bytes", len(code)), zap.Int("data_bytes", len(data)))

	return &Result{
		Program:     prog,
		Tokens:      tokens,
		Code:        code,
		Data:        data,
		Disassembly: emit.Disassemble(code),
	}, nil
}
