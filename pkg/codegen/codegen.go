// Package codegen implements the AST-driven code generator (spec.md
// §4.6): it ties the type registry, symbol table and instruction
// emitters together, walking a Program and producing a code buffer and
// a data buffer.
//
// The genExpr/genStmt dispatch shape and the function-body
// skip-jump-then-label convention are grounded on
// smasonuk-sicpu/pkg/compiler/codegen.go's CodeGen; the symbol-table
// wiring (EnterScope/ExitScope around blocks and function bodies) is
// grounded on the same repo's symtable.go. Global mutable state is
// reified here as an explicit struct rather than process globals
// (spec.md §9 DESIGN NOTES).
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tgquartz/pkg/ast"
	"tgquartz/pkg/emit"
	"tgquartz/pkg/parser"
	"tgquartz/pkg/symtab"
	"tgquartz/pkg/types"
)

// CodeGen owns the two emit buffers, the label manager built on top of
// the code buffer, the type registry and symbol table, and a naive
// per-type "next free register" counter (spec.md §4.6: "no register
// allocator beyond naive allocation").
type CodeGen struct {
	Code   *emit.Buffer
	Data   *emit.Buffer
	Labels *emit.LabelManager
	Em     *emit.Emitter
	Types  *types.Registry
	Syms   *symtab.SymbolTable
	Logger *zap.Logger

	nextReg    map[types.TGQType]int
	funcLabels map[string]int
}

// New builds a CodeGen with fresh buffers, registry and symbol table
// (spec.md's gen_init). A nil logger is replaced with a no-op logger.
func New(logger *zap.Logger) *CodeGen {
	if logger == nil {
		logger = zap.NewNop()
	}
	code := emit.NewBuffer()
	data := emit.NewBuffer()
	labels := emit.NewLabelManager()
	return &CodeGen{
		Code:       code,
		Data:       data,
		Labels:     labels,
		Em:         emit.NewEmitter(code, labels),
		Types:      types.NewRegistry(),
		Syms:       symtab.New(),
		Logger:     logger,
		nextReg:    make(map[types.TGQType]int),
		funcLabels: make(map[string]int),
	}
}

// Generate walks prog's top-level declarations in order, resolves all
// labels, and returns the finished code and data byte streams.
func (cg *CodeGen) Generate(prog *ast.Program) (code, data []byte, err error) {
	for _, d := range prog.Decls {
		if err := cg.genTopLevel(d); err != nil {
			return nil, nil, err
		}
	}
	if err := cg.Labels.Resolve(cg.Code); err != nil {
		return nil, nil, err
	}
	return cg.Code.Bytes(), cg.Data.Bytes(), nil
}

func (cg *CodeGen) genTopLevel(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.StructDecl:
		return cg.genStructDecl(n)
	case *ast.VariableDecl:
		return cg.genVarDecl(n)
	case *ast.FunctionDecl:
		return cg.genFuncDecl(n)
	default:
		return fmt.Errorf("codegen: unsupported top-level declaration %T", s)
	}
}

func (cg *CodeGen) allocReg(t types.TGQType) int {
	r := cg.nextReg[t] % 16
	cg.nextReg[t]++
	return r
}

func (cg *CodeGen) resolveType(name string) (*types.TypeInfo, bool) {
	if t, ok := cg.Types.LookupBuiltin(name); ok {
		return t, true
	}
	return cg.Syms.LookupStruct(name)
}

func storageForQualifiers(quals []ast.Qualifier, atGlobal bool) symtab.StorageClass {
	for _, q := range quals {
		switch q {
		case ast.QualConst:
			return symtab.StorageConst
		case ast.QualUniform:
			return symtab.StorageUniform
		case ast.QualVarying:
			return symtab.StorageVarying
		case ast.QualAttribute:
			return symtab.StorageAttribute
		case ast.QualIn:
			return symtab.StorageIn
		case ast.QualOut:
			return symtab.StorageOut
		case ast.QualInout:
			return symtab.StorageInout
		}
	}
	if atGlobal {
		return symtab.StorageGlobal
	}
	return symtab.StorageLocal
}

func isGlobalStorage(s symtab.StorageClass) bool {
	switch s {
	case symtab.StorageGlobal, symtab.StorageUniform, symtab.StorageVarying,
		symtab.StorageAttribute, symtab.StorageConst, symtab.StorageIn,
		symtab.StorageOut, symtab.StorageInout:
		return true
	}
	return false
}

// Struct declarations

func (cg *CodeGen) genStructDecl(s *ast.StructDecl) error {
	fieldNames := make([]string, len(s.Fields))
	fieldTypes := make([]*types.TypeInfo, len(s.Fields))
	for i, f := range s.Fields {
		ft, ok := cg.resolveType(f.TypeName)
		if !ok {
			return fmt.Errorf("struct %s: unknown field type %q", s.Name, f.TypeName)
		}
		fieldNames[i] = f.Name
		fieldTypes[i] = ft
	}
	st := types.NewStructType(s.Name, fieldNames, fieldTypes)
	for i := range s.Fields {
		s.Fields[i].Offset = st.Struct.Fields[i].Offset
	}
	return cg.Syms.DefineStruct(s.Name, st, 0)
}

// Variable declarations

func trimFloatSuffix(s string) string {
	return strings.TrimRight(s, "fF")
}

// writeLiteralToData parses lit according to t's TGQ machine type and
// appends the raw bytes to the data buffer (spec.md §4.6). The
// returned byte is only meaningful for size-1 types, where it feeds
// the accompanying lconst.8 materialisation step.
func (cg *CodeGen) writeLiteralToData(t *types.TypeInfo, lit *ast.Literal) (byte, error) {
	switch t.TGQType {
	case types.I8:
		v, err := strconv.ParseInt(lit.Lexeme, 10, 16)
		if err != nil {
			return 0, err
		}
		b := byte(int8(v))
		cg.Data.Byte(b)
		return b, nil
	case types.I16:
		v, err := strconv.ParseInt(lit.Lexeme, 10, 32)
		if err != nil {
			return 0, err
		}
		cg.Data.U16(uint16(int16(v)))
		return 0, nil
	case types.I32:
		v, err := strconv.ParseInt(lit.Lexeme, 10, 64)
		if err != nil {
			return 0, err
		}
		cg.Data.U32(uint32(int32(v)))
		return 0, nil
	case types.I64:
		v, err := strconv.ParseInt(lit.Lexeme, 10, 64)
		if err != nil {
			return 0, err
		}
		cg.Data.U64(uint64(v))
		return 0, nil
	case types.FP16:
		f, err := strconv.ParseFloat(trimFloatSuffix(lit.Lexeme), 32)
		if err != nil {
			return 0, err
		}
		cg.Data.U16(types.Float32ToFP16(float32(f)))
		return 0, nil
	case types.FP32, types.BF32:
		f, err := strconv.ParseFloat(trimFloatSuffix(lit.Lexeme), 32)
		if err != nil {
			return 0, err
		}
		cg.Data.F32(float32(f))
		return 0, nil
	default:
		return 0, fmt.Errorf("codegen: cannot materialise literal into type %s", t)
	}
}

func (cg *CodeGen) constIntValue(e ast.Expr) (int, error) {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return 0, fmt.Errorf("array length must be a constant literal")
	}
	v, err := strconv.ParseInt(lit.Lexeme, 10, 32)
	return int(v), err
}

// genVarDecl resolves the declared type, defines the symbol, and
// either materialises a literal initialiser into the data buffer or
// walks a runtime-computed initialiser and stores its result.
func (cg *CodeGen) genVarDecl(n *ast.VariableDecl) error {
	if n.Name == "$precision" {
		return nil
	}
	t, ok := cg.resolveType(n.TypeName)
	if !ok {
		cg.Logger.Warn("unknown type name, dropping declaration",
			zap.String("type", n.TypeName), zap.String("name", n.Name))
		return nil
	}
	if n.ArrayLength != nil {
		length, err := cg.constIntValue(n.ArrayLength)
		if err != nil {
			return err
		}
		t = types.NewArrayType(t, length)
	}

	atGlobal := cg.Syms.AtGlobalScope()
	storage := storageForQualifiers(n.Qualifiers, atGlobal)

	var sym *symtab.Symbol
	var err error
	if atGlobal {
		sym, err = cg.Syms.Define(n.Name, symtab.SymVariable, t, storage, 0)
	} else {
		sym, err = cg.Syms.DefineLocal(n.Name, t, 0)
	}
	if err != nil {
		cg.Logger.Warn("redefinition", zap.String("name", n.Name), zap.Error(err))
		return nil
	}
	if n.Init == nil {
		return nil
	}

	if lit, ok := n.Init.(*ast.Literal); ok {
		offset := cg.Data.Len()
		immByte, err := cg.writeLiteralToData(t, lit)
		if err != nil {
			return err
		}
		sym.StackOffset = offset
		if t.Size == 1 {
			reg := cg.allocReg(t.TGQType)
			cg.Em.LConst8(t.TGQType, reg, immByte)
		}
		return nil
	}

	valReg, _, err := cg.genExpr(n.Init)
	if err != nil {
		return err
	}
	return cg.storeVar(sym, t, valReg)
}

func (cg *CodeGen) storeVar(sym *symtab.Symbol, t *types.TypeInfo, valueReg int) error {
	op := emit.OpST_LOCAL
	if isGlobalStorage(sym.Storage) {
		op = emit.OpST_GLOBAL
	}
	offsetReg := cg.allocReg(t.TGQType)
	cg.Em.LConst32(t.TGQType, offsetReg, uint32(int32(sym.StackOffset)))
	cg.Em.Memory(op, t.TGQType, valueReg, 0, offsetReg)
	return nil
}

func (cg *CodeGen) loadVar(sym *symtab.Symbol) (int, *types.TypeInfo, error) {
	op := emit.OpLD_LOCAL
	if isGlobalStorage(sym.Storage) {
		op = emit.OpLD_GLOBAL
	}
	reg := cg.allocReg(sym.Type.TGQType)
	offsetReg := cg.allocReg(sym.Type.TGQType)
	cg.Em.LConst32(sym.Type.TGQType, offsetReg, uint32(int32(sym.StackOffset)))
	cg.Em.Memory(op, sym.Type.TGQType, reg, 0, offsetReg)
	return reg, sym.Type, nil
}

// Function declarations

func (cg *CodeGen) labelForFunc(name string) int {
	if id, ok := cg.funcLabels[name]; ok {
		return id
	}
	id, _ := cg.Labels.Create()
	cg.funcLabels[name] = id
	return id
}

// genFuncDecl registers the function's signature, then emits a
// skip-jump around the body (so straight-line top-level code never
// falls into a function), defines the entry label, and walks the body
// in a fresh scope seeded with the parameter symbols.
func (cg *CodeGen) genFuncDecl(f *ast.FunctionDecl) error {
	retType, ok := cg.resolveType(f.ReturnType)
	if !ok {
		return fmt.Errorf("function %s: unknown return type %q", f.Name, f.ReturnType)
	}
	paramTypes := make([]*types.TypeInfo, len(f.Params))
	paramNames := make([]string, len(f.Params))
	for i, p := range f.Params {
		pt, ok := cg.resolveType(p.TypeName)
		if !ok {
			return fmt.Errorf("function %s: unknown parameter type %q", f.Name, p.TypeName)
		}
		paramTypes[i] = pt
		paramNames[i] = p.Name
	}
	fnType := types.NewFunctionType(retType, paramTypes)

	if _, err := cg.Syms.DefineFunction(f.Name, fnType, paramNames, 0); err != nil {
		cg.Logger.Warn("redefinition of function", zap.String("name", f.Name), zap.Error(err))
		return nil
	}

	skipLabel, err := cg.Labels.Create()
	if err != nil {
		return err
	}
	if err := cg.Em.Branch(emit.OpBRA, 0, 0, 0, skipLabel); err != nil {
		return err
	}

	entryLabel := cg.labelForFunc(f.Name)
	if err := cg.Labels.Define(entryLabel, cg.Code.Len()); err != nil {
		return err
	}

	cg.Syms.EnterScope()
	for i, p := range f.Params {
		if _, err := cg.Syms.DefineLocal(p.Name, paramTypes[i], 0); err != nil {
			cg.Syms.ExitScope()
			return err
		}
	}
	for _, stmt := range f.Body.Stmts {
		if err := cg.genStmt(stmt); err != nil {
			cg.Syms.ExitScope()
			return err
		}
	}
	cg.Em.Ret()
	cg.Syms.ExitScope()

	return cg.Labels.Define(skipLabel, cg.Code.Len())
}

// Statements

func (cg *CodeGen) genStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.VariableDecl:
		return cg.genVarDecl(n)
	case *ast.StructDecl:
		return cg.genStructDecl(n)
	case *ast.BlockStmt:
		cg.Syms.EnterScope()
		defer cg.Syms.ExitScope()
		for _, stmt := range n.Stmts {
			if err := cg.genStmt(stmt); err != nil {
				return err
			}
		}
		return nil
	case *ast.ExprStmt:
		_, _, err := cg.genExpr(n.Expr)
		return err
	case *ast.IfStmt:
		return cg.genIf(n)
	case *ast.ForStmt:
		return cg.genFor(n)
	case *ast.WhileStmt:
		return cg.genWhile(n)
	case *ast.ReturnStmt:
		return cg.genReturn(n)
	default:
		return fmt.Errorf("codegen: unsupported statement %T", s)
	}
}

func (cg *CodeGen) zeroReg(t *types.TypeInfo) int {
	r := cg.allocReg(t.TGQType)
	switch t.TGQType {
	case types.I8:
		cg.Em.LConst8(t.TGQType, r, 0)
	case types.I16:
		cg.Em.LConst16(t.TGQType, r, 0)
	case types.I64:
		cg.Em.LConst64(t.TGQType, r, 0)
	case types.FP32, types.BF32:
		cg.Em.LConstF32(r, 0)
	default:
		cg.Em.LConst32(t.TGQType, r, 0)
	}
	return r
}

// genIf lowers to "branch past the consequent when the condition
// compares equal to zero", with an optional second branch past the
// alternate (spec.md §4.6: branches and loops lower to labels plus
// conditional branches).
func (cg *CodeGen) genIf(n *ast.IfStmt) error {
	condReg, condType, err := cg.genExpr(n.Condition)
	if err != nil {
		return err
	}
	zero := cg.zeroReg(condType)
	falseLabel, err := cg.Labels.Create()
	if err != nil {
		return err
	}
	if err := cg.Em.Branch(emit.OpBEQ, condType.TGQType, condReg, zero, falseLabel); err != nil {
		return err
	}
	if err := cg.genStmt(n.Consequent); err != nil {
		return err
	}
	if n.Alternate != nil {
		endLabel, err := cg.Labels.Create()
		if err != nil {
			return err
		}
		if err := cg.Em.Branch(emit.OpBRA, 0, 0, 0, endLabel); err != nil {
			return err
		}
		if err := cg.Labels.Define(falseLabel, cg.Code.Len()); err != nil {
			return err
		}
		if err := cg.genStmt(n.Alternate); err != nil {
			return err
		}
		return cg.Labels.Define(endLabel, cg.Code.Len())
	}
	return cg.Labels.Define(falseLabel, cg.Code.Len())
}

func (cg *CodeGen) genWhile(n *ast.WhileStmt) error {
	startLabel, err := cg.Em.DefineHere()
	if err != nil {
		return err
	}
	condReg, condType, err := cg.genExpr(n.Test)
	if err != nil {
		return err
	}
	zero := cg.zeroReg(condType)
	endLabel, err := cg.Labels.Create()
	if err != nil {
		return err
	}
	if err := cg.Em.Branch(emit.OpBEQ, condType.TGQType, condReg, zero, endLabel); err != nil {
		return err
	}
	if err := cg.genStmt(n.Body); err != nil {
		return err
	}
	if err := cg.Em.Branch(emit.OpBRA, 0, 0, 0, startLabel); err != nil {
		return err
	}
	return cg.Labels.Define(endLabel, cg.Code.Len())
}

func (cg *CodeGen) genFor(n *ast.ForStmt) error {
	cg.Syms.EnterScope()
	defer cg.Syms.ExitScope()

	if n.Init != nil {
		if err := cg.genStmt(n.Init); err != nil {
			return err
		}
	}
	startLabel, err := cg.Em.DefineHere()
	if err != nil {
		return err
	}
	endLabel, err := cg.Labels.Create()
	if err != nil {
		return err
	}
	if n.Test != nil {
		condReg, condType, err := cg.genExpr(n.Test)
		if err != nil {
			return err
		}
		zero := cg.zeroReg(condType)
		if err := cg.Em.Branch(emit.OpBEQ, condType.TGQType, condReg, zero, endLabel); err != nil {
			return err
		}
	}
	if err := cg.genStmt(n.Body); err != nil {
		return err
	}
	if n.Update != nil {
		if err := cg.genStmt(n.Update); err != nil {
			return err
		}
	}
	if err := cg.Em.Branch(emit.OpBRA, 0, 0, 0, startLabel); err != nil {
		return err
	}
	return cg.Labels.Define(endLabel, cg.Code.Len())
}

func (cg *CodeGen) genReturn(n *ast.ReturnStmt) error {
	if n.Argument != nil {
		if _, _, err := cg.genExpr(n.Argument); err != nil {
			return err
		}
	}
	cg.Em.Ret()
	return nil
}

// Expressions

// genExpr walks e and returns the register holding its value together
// with its resolved type (spec.md §4.6 "Expressions").
func (cg *CodeGen) genExpr(e ast.Expr) (int, *types.TypeInfo, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return cg.genLiteral(n)
	case *ast.Identifier:
		sym, ok := cg.Syms.Lookup(n.Name)
		if !ok {
			return 0, nil, fmt.Errorf("undefined variable %q", n.Name)
		}
		return cg.loadVar(sym)
	case *ast.BinaryExpr:
		return cg.genBinary(n)
	case *ast.UnaryExpr:
		return cg.genUnary(n)
	case *ast.Assignment:
		return cg.genAssignment(n)
	case *ast.CallExpr:
		return cg.genCall(n)
	case *ast.ConstructorExpr:
		return cg.genConstructor(n)
	case *ast.MemberExpr:
		return cg.genMember(n)
	case *ast.IndexExpr:
		return cg.genIndex(n)
	default:
		return 0, nil, fmt.Errorf("codegen: unknown expression node %T", e)
	}
}

// genLiteral infers int vs float from the lexeme's shape, reusing
// pkg/parser's own float/int dispatch so the two stages never drift.
func (cg *CodeGen) genLiteral(lit *ast.Literal) (int, *types.TypeInfo, error) {
	isFloat := parser.LiteralLooksFloat(lit.Lexeme)
	var t *types.TypeInfo
	if isFloat {
		t, _ = cg.Types.LookupBuiltin("float")
	} else {
		t, _ = cg.Types.LookupBuiltin("int")
	}
	reg := cg.allocReg(t.TGQType)
	if isFloat {
		f, err := strconv.ParseFloat(trimFloatSuffix(lit.Lexeme), 32)
		if err != nil {
			return 0, nil, err
		}
		cg.Em.LConstF32(reg, float32(f))
	} else {
		v, err := strconv.ParseInt(lit.Lexeme, 10, 64)
		if err != nil {
			return 0, nil, err
		}
		cg.Em.LConst32(t.TGQType, reg, uint32(int32(v)))
	}
	return reg, t, nil
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}

func (cg *CodeGen) genBinary(b *ast.BinaryExpr) (int, *types.TypeInfo, error) {
	lReg, lt, err := cg.genExpr(b.Left)
	if err != nil {
		return 0, nil, err
	}
	rReg, rt, err := cg.genExpr(b.Right)
	if err != nil {
		return 0, nil, err
	}
	if isComparison(b.Op) {
		return cg.genComparison(b.Op, lReg, rReg, lt)
	}
	rtype, err := types.BinaryResultType(cg.Types, b.Op, lt, rt)
	if err != nil {
		return 0, nil, err
	}
	opc, ok := emit.BinaryOpcode(b.Op)
	if !ok {
		return 0, nil, fmt.Errorf("codegen: no opcode for operator %q", b.Op)
	}
	rd := cg.allocReg(rtype.TGQType)
	cg.Em.Scalar3(opc, rtype.TGQType, rd, lReg, rReg)
	return rd, rtype, nil
}

// comparisonBranch maps a comparison operator to the branch opcode
// that tests it directly and whether the branch being taken means the
// comparison held (false for the negated <=/>= forms, which branch on
// the opposite strict comparison).
func comparisonBranch(op string) (emit.Opcode, bool, bool) {
	switch op {
	case "==":
		return emit.OpBEQ, true, true
	case "!=":
		return emit.OpBNE, true, true
	case "<":
		return emit.OpBLT, true, true
	case ">":
		return emit.OpBGT, true, true
	case "<=":
		return emit.OpBGT, false, true
	case ">=":
		return emit.OpBLT, false, true
	}
	return 0, false, false
}

func (cg *CodeGen) genComparison(op string, lReg, rReg int, t *types.TypeInfo) (int, *types.TypeInfo, error) {
	boolT, _ := cg.Types.LookupBuiltin("bool")
	branchOp, trueIsBranchTaken, ok := comparisonBranch(op)
	if !ok {
		return 0, nil, fmt.Errorf("codegen: unsupported comparison %q", op)
	}
	rd := cg.allocReg(boolT.TGQType)
	branchTarget, err := cg.Labels.Create()
	if err != nil {
		return 0, nil, err
	}
	endLabel, err := cg.Labels.Create()
	if err != nil {
		return 0, nil, err
	}
	if err := cg.Em.Branch(branchOp, t.TGQType, lReg, rReg, branchTarget); err != nil {
		return 0, nil, err
	}
	fallVal, branchVal := byte(0), byte(1)
	if !trueIsBranchTaken {
		fallVal, branchVal = 1, 0
	}
	cg.Em.LConst8(boolT.TGQType, rd, fallVal)
	if err := cg.Em.Branch(emit.OpBRA, 0, 0, 0, endLabel); err != nil {
		return 0, nil, err
	}
	if err := cg.Labels.Define(branchTarget, cg.Code.Len()); err != nil {
		return 0, nil, err
	}
	cg.Em.LConst8(boolT.TGQType, rd, branchVal)
	if err := cg.Labels.Define(endLabel, cg.Code.Len()); err != nil {
		return 0, nil, err
	}
	return rd, boolT, nil
}

func (cg *CodeGen) genUnary(u *ast.UnaryExpr) (int, *types.TypeInfo, error) {
	switch u.Op {
	case "+":
		return cg.genExpr(u.Operand)
	case "-":
		reg, t, err := cg.genExpr(u.Operand)
		if err != nil {
			return 0, nil, err
		}
		zero := cg.zeroReg(t)
		rd := cg.allocReg(t.TGQType)
		cg.Em.Scalar3(emit.OpSUB, t.TGQType, rd, zero, reg)
		return rd, t, nil
	case "!":
		reg, _, err := cg.genExpr(u.Operand)
		if err != nil {
			return 0, nil, err
		}
		boolT, _ := cg.Types.LookupBuiltin("bool")
		rd := cg.allocReg(boolT.TGQType)
		cg.Em.Scalar2(emit.OpNOT, boolT.TGQType, rd, reg)
		return rd, boolT, nil
	case "++", "--":
		ident, ok := u.Operand.(*ast.Identifier)
		if !ok {
			return 0, nil, fmt.Errorf("codegen: unsupported %s target %T", u.Op, u.Operand)
		}
		sym, ok := cg.Syms.Lookup(ident.Name)
		if !ok {
			return 0, nil, fmt.Errorf("undefined variable %q", ident.Name)
		}
		cur, t, err := cg.loadVar(sym)
		if err != nil {
			return 0, nil, err
		}
		one := cg.allocReg(t.TGQType)
		cg.Em.LConst8(t.TGQType, one, 1)
		rd := cg.allocReg(t.TGQType)
		op := emit.OpADD
		if u.Op == "--" {
			op = emit.OpSUB
		}
		cg.Em.Scalar3(op, t.TGQType, rd, cur, one)
		if err := cg.storeVar(sym, t, rd); err != nil {
			return 0, nil, err
		}
		return rd, t, nil
	}
	return 0, nil, fmt.Errorf("codegen: unknown unary operator %q", u.Op)
}

// genAssignment lowers compound operators (+= -= *= /=) by rewriting
// into an equivalent BinaryExpr before storing, so a single code path
// handles both plain and compound assignment.
func (cg *CodeGen) genAssignment(a *ast.Assignment) (int, *types.TypeInfo, error) {
	ident, ok := a.Left.(*ast.Identifier)
	if !ok {
		return 0, nil, fmt.Errorf("codegen: unsupported assignment target %T", a.Left)
	}
	sym, ok := cg.Syms.Lookup(ident.Name)
	if !ok {
		return 0, nil, fmt.Errorf("undefined variable %q", ident.Name)
	}
	rhs := a.Right
	if a.Op != "=" {
		rhs = &ast.BinaryExpr{Op: strings.TrimSuffix(a.Op, "="), Left: a.Left, Right: a.Right}
	}
	valReg, valType, err := cg.genExpr(rhs)
	if err != nil {
		return 0, nil, err
	}
	if err := cg.storeVar(sym, sym.Type, valReg); err != nil {
		return 0, nil, err
	}
	return valReg, valType, nil
}

func (cg *CodeGen) genCall(c *ast.CallExpr) (int, *types.TypeInfo, error) {
	ident, ok := c.Callee.(*ast.Identifier)
	if !ok {
		return 0, nil, fmt.Errorf("codegen: unsupported call target %T", c.Callee)
	}
	for _, a := range c.Args {
		if _, _, err := cg.genExpr(a); err != nil {
			return 0, nil, err
		}
	}
	fnSym, ok := cg.Syms.LookupFunction(ident.Name)
	if !ok {
		return 0, nil, fmt.Errorf("undefined function %q", ident.Name)
	}
	target := cg.labelForFunc(ident.Name)
	if err := cg.Em.Call(target); err != nil {
		return 0, nil, err
	}
	retType := fnSym.Type.ReturnType
	if retType == nil || retType.Kind == types.Void {
		return 0, retType, nil
	}
	rd := cg.allocReg(retType.TGQType)
	return rd, retType, nil
}

// genConstructor evaluates each argument in turn (for its side
// effects and component registers) then moves each into the result
// register with the constructed vector/matrix type's tag, giving the
// result a distinct register-class identity from its scalar arguments
// (spec.md §8 boundary scenario 5). OpMOV is always 2-operand
// (rd, r1), so components are folded in one MOV at a time rather than
// packed into a single variable-arity instruction.
func (cg *CodeGen) genConstructor(c *ast.ConstructorExpr) (int, *types.TypeInfo, error) {
	t, ok := cg.resolveType(c.TypeName)
	if !ok {
		return 0, nil, fmt.Errorf("unknown constructor type %q", c.TypeName)
	}
	argRegs := make([]int, 0, len(c.Args))
	for _, a := range c.Args {
		r, _, err := cg.genExpr(a)
		if err != nil {
			return 0, nil, err
		}
		argRegs = append(argRegs, r)
	}
	rd := cg.allocReg(t.TGQType)
	if len(argRegs) == 0 {
		cg.Em.Scalar2(emit.OpMOV, t.TGQType, rd, rd)
	}
	for _, r := range argRegs {
		cg.Em.Scalar2(emit.OpMOV, t.TGQType, rd, r)
	}
	return rd, t, nil
}

func (cg *CodeGen) genMember(m *ast.MemberExpr) (int, *types.TypeInfo, error) {
	baseReg, baseType, err := cg.genExpr(m.Object)
	if err != nil {
		return 0, nil, err
	}
	mt, err := types.MemberType(cg.Types, baseType, m.Property)
	if err != nil {
		return 0, nil, err
	}
	if baseType.Kind == types.StructKind {
		for _, f := range baseType.Struct.Fields {
			if f.Name == m.Property {
				rd := cg.allocReg(mt.TGQType)
				offReg := cg.allocReg(mt.TGQType)
				cg.Em.LConst32(mt.TGQType, offReg, uint32(f.Offset))
				cg.Em.Memory(emit.OpLD_LOCAL, mt.TGQType, rd, baseReg, offReg)
				return rd, mt, nil
			}
		}
	}
	// Swizzle: component selection lives in the execution model, not
	// the register file, so the source register carries the result.
	return baseReg, mt, nil
}

func (cg *CodeGen) genIndex(ix *ast.IndexExpr) (int, *types.TypeInfo, error) {
	baseReg, baseType, err := cg.genExpr(ix.Container)
	if err != nil {
		return 0, nil, err
	}
	if baseType.Kind != types.ArrayKind {
		return 0, nil, fmt.Errorf("cannot index non-array type %s", baseType)
	}
	idxReg, _, err := cg.genExpr(ix.Index)
	if err != nil {
		return 0, nil, err
	}
	elem := baseType.ElementType
	rd := cg.allocReg(elem.TGQType)
	cg.Em.Memory(emit.OpLD_LOCAL, elem.TGQType, rd, baseReg, idxReg)
	return rd, elem, nil
}
