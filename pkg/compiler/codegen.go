package compiler

import (
	"fmt"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/fixed"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"
)

// CodegenError reports a lowering failure. After a successful check these
// only arise from malformed AST, so one doubles as an internal assertion.
type CodegenError struct {
	Line int
	Msg  string
}

func (e *CodegenError) Error() string {
	return fmt.Sprintf("line %d: codegen: %s", e.Line, e.Msg)
}

// Generate lowers a checked script to a runnable program. The entry
// function is index 0; user functions follow in declaration order, matching
// the indices the checker assigned to calls.
func Generate(script *Script) (*vm.Program, error) {
	if script.Main == nil {
		return nil, &CodegenError{Msg: "script has not been type-checked"}
	}

	decls := append([]*FunctionDecl{script.Main}, script.Funcs...)
	prog := &vm.Program{Funcs: make([]vm.Function, len(decls))}
	for i, decl := range decls {
		fn, err := genFunction(decl)
		if err != nil {
			return nil, err
		}
		prog.Funcs[i] = *fn
	}
	return prog, nil
}

type gen struct {
	decl *FunctionDecl
	code []vm.Instr
}

func genFunction(decl *FunctionDecl) (*vm.Function, error) {
	g := &gen{decl: decl}

	// The caller leaves arguments on the shared value stack, pushed left to
	// right. Pop them into their slots back to front.
	for i := len(decl.Params) - 1; i >= 0; i-- {
		op, ok := vm.StoreOp(decl.Params[i].Type)
		if !ok {
			return nil, &CodegenError{Line: decl.Line, Msg: "unstorable parameter type"}
		}
		g.emit(op, int32(i))
	}

	for _, s := range decl.Body.Stmts {
		if err := g.stmt(s); err != nil {
			return nil, err
		}
	}

	// Fall-off-the-end epilogue: return a typed zero. Unreachable when
	// every path already returns; the peephole pass drops it then.
	if decl.Return != vm.TypeVoid {
		g.pushZero(decl.Return)
	}
	g.emit(vm.OpReturn, 0)

	params := make([]vm.Local, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = vm.Local{Name: p.Name, Type: p.Type}
	}
	return &vm.Function{
		Name:   decl.Name,
		Params: params,
		Locals: decl.Locals,
		Return: decl.Return,
		Code:   g.code,
	}, nil
}

func (g *gen) emit(op vm.Opcode, arg int32) int {
	g.code = append(g.code, vm.Instr{Op: op, Arg: arg})
	return len(g.code) - 1
}

// emitJump emits a jump with a placeholder offset and returns its index
// for later patching.
func (g *gen) emitJump(op vm.Opcode) int {
	return g.emit(op, 0)
}

// patch points the jump at idx to the next instruction to be emitted.
// Offsets are relative to the instruction after the jump.
func (g *gen) patch(idx int) {
	g.code[idx].Arg = int32(len(g.code) - (idx + 1))
}

// jumpBack emits a jump targeting an already-emitted instruction index.
func (g *gen) jumpBack(target int) {
	idx := g.emit(vm.OpJump, 0)
	g.code[idx].Arg = int32(target - (idx + 1))
}

// pushZero emits instructions leaving the zero value of t on the stack.
func (g *gen) pushZero(t vm.ValueType) {
	switch t {
	case vm.TypeInt:
		g.emit(vm.OpPushInt, 0)
	case vm.TypeBool:
		g.emit(vm.OpPushBool, 0)
	case vm.TypeFixed:
		g.emit(vm.OpPushFixed, 0)
	case vm.TypeMat3:
		for i := 0; i < 9; i++ {
			g.emit(vm.OpPushFixed, 0)
		}
		g.emit(vm.OpMakeMat3, 0)
	default:
		n := t.Components()
		for i := 0; i < n; i++ {
			g.emit(vm.OpPushFixed, 0)
		}
		g.emit(vm.OpMakeVec, int32(n))
	}
}

//  Statements

func (g *gen) stmt(s Stmt) error {
	switch st := s.(type) {
	case *VarDeclStmt:
		if st.Init != nil {
			if err := g.expr(st.Init); err != nil {
				return err
			}
		} else {
			g.pushZero(st.DeclType)
		}
		op, ok := vm.StoreOp(st.DeclType)
		if !ok {
			return &CodegenError{Line: st.Line, Msg: fmt.Sprintf("cannot store %s", st.DeclType)}
		}
		g.emit(op, int32(st.Slot))
		return nil

	case *ExprStmt:
		return g.exprForEffect(st.Expr)

	case *ReturnStmt:
		if st.Expr != nil {
			if err := g.expr(st.Expr); err != nil {
				return err
			}
		} else if g.decl.Return != vm.TypeVoid {
			// Entry-function inference can land here: an early bare return
			// in a script whose later returns carry a value.
			g.pushZero(g.decl.Return)
		}
		g.emit(vm.OpReturn, 0)
		return nil

	case *BlockStmt:
		for _, inner := range st.Stmts {
			if err := g.stmt(inner); err != nil {
				return err
			}
		}
		return nil

	case *IfStmt:
		if err := g.expr(st.Condition); err != nil {
			return err
		}
		toElse := g.emitJump(vm.OpJumpIfZero)
		if err := g.stmt(st.Body); err != nil {
			return err
		}
		if st.ElseBody == nil {
			g.patch(toElse)
			return nil
		}
		toEnd := g.emitJump(vm.OpJump)
		g.patch(toElse)
		if err := g.stmt(st.ElseBody); err != nil {
			return err
		}
		g.patch(toEnd)
		return nil

	case *WhileStmt:
		top := len(g.code)
		if err := g.expr(st.Condition); err != nil {
			return err
		}
		exit := g.emitJump(vm.OpJumpIfZero)
		if err := g.stmt(st.Body); err != nil {
			return err
		}
		g.jumpBack(top)
		g.patch(exit)
		return nil

	case *ForStmt:
		if st.Init != nil {
			if err := g.stmt(st.Init); err != nil {
				return err
			}
		}
		top := len(g.code)
		exit := -1
		if st.Cond != nil {
			if err := g.expr(st.Cond); err != nil {
				return err
			}
			exit = g.emitJump(vm.OpJumpIfZero)
		}
		if err := g.stmt(st.Body); err != nil {
			return err
		}
		if st.Post != nil {
			if err := g.stmt(st.Post); err != nil {
				return err
			}
		}
		g.jumpBack(top)
		if exit >= 0 {
			g.patch(exit)
		}
		return nil

	default:
		return &CodegenError{Msg: fmt.Sprintf("unexpected statement %T", s)}
	}
}

// exprForEffect lowers an expression statement. Assignments and increments
// skip the duplicate that would otherwise keep their value on the stack;
// any other result is popped.
func (g *gen) exprForEffect(e Expr) error {
	switch ex := e.(type) {
	case *AssignExpr:
		if err := g.expr(ex.Value); err != nil {
			return err
		}
		return g.storeVar(ex.Target)

	case *PostfixExpr:
		if err := g.loadVar(ex.Left); err != nil {
			return err
		}
		g.pushOne(ex.Type())
		g.emitIncDec(ex)
		return g.storeVar(ex.Left)

	default:
		if err := g.expr(e); err != nil {
			return err
		}
		if e.Type() != vm.TypeVoid {
			g.emit(vm.OpPop, 0)
		}
		return nil
	}
}

//  Expressions

func (g *gen) expr(e Expr) error {
	switch ex := e.(type) {
	case *Literal:
		switch ex.Val.Type {
		case vm.TypeInt:
			g.emit(vm.OpPushInt, ex.Val.Int())
		case vm.TypeBool:
			if ex.Val.Bool() {
				g.emit(vm.OpPushBool, 1)
			} else {
				g.emit(vm.OpPushBool, 0)
			}
		default:
			g.emit(vm.OpPushFixed, int32(ex.Val.Fixed()))
		}
		return nil

	case *VarRef:
		return g.loadVar(ex)

	case *ConvExpr:
		if err := g.expr(ex.X); err != nil {
			return err
		}
		if ex.Type() == vm.TypeFixed {
			g.emit(vm.OpIntToFixed, 0)
		} else {
			g.emit(vm.OpFixedToInt, 0)
		}
		return nil

	case *AssignExpr:
		if err := g.expr(ex.Value); err != nil {
			return err
		}
		g.emit(vm.OpDup, 0)
		return g.storeVar(ex.Target)

	case *PostfixExpr:
		// Postfix yields the old value: load, keep a copy, bump, store.
		if err := g.loadVar(ex.Left); err != nil {
			return err
		}
		g.emit(vm.OpDup, 0)
		g.pushOne(ex.Type())
		g.emitIncDec(ex)
		return g.storeVar(ex.Left)

	case *UnaryExpr:
		return g.unary(ex)

	case *BinaryExpr:
		return g.binary(ex)

	case *LogicalExpr:
		if err := g.expr(ex.Left); err != nil {
			return err
		}
		if err := g.expr(ex.Right); err != nil {
			return err
		}
		if ex.Op == AND_LOGICAL {
			g.emit(vm.OpAndLogic, 0)
		} else {
			g.emit(vm.OpOrLogic, 0)
		}
		return nil

	case *TernaryExpr:
		if err := g.expr(ex.Cond); err != nil {
			return err
		}
		toElse := g.emitJump(vm.OpJumpIfZero)
		if err := g.expr(ex.Then); err != nil {
			return err
		}
		toEnd := g.emitJump(vm.OpJump)
		g.patch(toElse)
		if err := g.expr(ex.Else); err != nil {
			return err
		}
		g.patch(toEnd)
		return nil

	case *SwizzleExpr:
		if err := g.expr(ex.Base); err != nil {
			return err
		}
		g.emit(vm.OpSwizzle, vm.PackSwizzle(ex.Indices))
		return nil

	case *CallExpr:
		for _, arg := range ex.Args {
			if err := g.expr(arg); err != nil {
				return err
			}
		}
		switch {
		case ex.Ctor == 9:
			g.emit(vm.OpMakeMat3, 0)
		case ex.Ctor > 0:
			g.emit(vm.OpMakeVec, int32(ex.Ctor))
		case ex.Builtin >= 0:
			g.emit(vm.OpCallBuiltin, int32(ex.Builtin))
		case ex.FuncIndex >= 0:
			g.emit(vm.OpCall, int32(ex.FuncIndex))
		default:
			return &CodegenError{Line: ex.Line, Msg: fmt.Sprintf("unresolved call %q", ex.Name)}
		}
		return nil

	default:
		return &CodegenError{Line: e.Pos(), Msg: fmt.Sprintf("unexpected expression %T", e)}
	}
}

func (g *gen) loadVar(v *VarRef) error {
	if v.Input >= 0 {
		g.emit(vm.OpLoadInput, int32(v.Input))
		return nil
	}
	op, ok := vm.LoadOp(v.Type())
	if !ok {
		return &CodegenError{Line: v.Line, Msg: fmt.Sprintf("cannot load %s", v.Type())}
	}
	g.emit(op, int32(v.Slot))
	return nil
}

func (g *gen) storeVar(v *VarRef) error {
	op, ok := vm.StoreOp(v.Type())
	if !ok {
		return &CodegenError{Line: v.Line, Msg: fmt.Sprintf("cannot store %s", v.Type())}
	}
	g.emit(op, int32(v.Slot))
	return nil
}

// pushOne pushes the 1 of the operand's numeric type.
func (g *gen) pushOne(t vm.ValueType) {
	if t == vm.TypeInt {
		g.emit(vm.OpPushInt, 1)
	} else {
		g.emit(vm.OpPushFixed, int32(fixed.One))
	}
}

func (g *gen) emitIncDec(ex *PostfixExpr) {
	isInt := ex.Type() == vm.TypeInt
	switch {
	case ex.Op == PLUS_PLUS && isInt:
		g.emit(vm.OpAddInt, 0)
	case ex.Op == PLUS_PLUS:
		g.emit(vm.OpAddFixed, 0)
	case isInt:
		g.emit(vm.OpSubInt, 0)
	default:
		g.emit(vm.OpSubFixed, 0)
	}
}

func (g *gen) unary(ex *UnaryExpr) error {
	if err := g.expr(ex.Right); err != nil {
		return err
	}
	switch ex.Op {
	case MINUS:
		switch {
		case ex.Type() == vm.TypeInt:
			g.emit(vm.OpNegInt, 0)
		case ex.Type().IsVector():
			g.emit(vm.OpNegVec, 0)
		default:
			g.emit(vm.OpNegFixed, 0)
		}
	case NOT:
		g.emit(vm.OpNotLogic, 0)
	case TILDE:
		g.emit(vm.OpInvInt, 0)
	default:
		return &CodegenError{Line: ex.Line, Msg: fmt.Sprintf("unexpected unary %s", ex.Op)}
	}
	return nil
}

var intBinOps = map[TokenType]vm.Opcode{
	PLUS:       vm.OpAddInt,
	MINUS:      vm.OpSubInt,
	STAR:       vm.OpMulInt,
	SLASH:      vm.OpDivInt,
	PERCENT:    vm.OpModInt,
	AND:        vm.OpAndInt,
	PIPE:       vm.OpOrInt,
	CARET:      vm.OpXorInt,
	SHL_OP:     vm.OpShlInt,
	SHR_OP:     vm.OpShrInt,
	EQUALS:     vm.OpEqInt,
	NOT_EQ:     vm.OpNeInt,
	LESS:       vm.OpLtInt,
	LESS_EQ:    vm.OpLeInt,
	GREATER:    vm.OpGtInt,
	GREATER_EQ: vm.OpGeInt,
}

var fixedBinOps = map[TokenType]vm.Opcode{
	PLUS:       vm.OpAddFixed,
	MINUS:      vm.OpSubFixed,
	STAR:       vm.OpMulFixed,
	SLASH:      vm.OpDivFixed,
	PERCENT:    vm.OpModFixed,
	EQUALS:     vm.OpEqFixed,
	NOT_EQ:     vm.OpNeFixed,
	LESS:       vm.OpLtFixed,
	LESS_EQ:    vm.OpLeFixed,
	GREATER:    vm.OpGtFixed,
	GREATER_EQ: vm.OpGeFixed,
}

var vecBinOps = map[TokenType]vm.Opcode{
	PLUS:  vm.OpAddVec,
	MINUS: vm.OpSubVec,
	STAR:  vm.OpMulVec,
	SLASH: vm.OpDivVec,
}

var mat3BinOps = map[TokenType]vm.Opcode{
	PLUS:  vm.OpAddMat3,
	MINUS: vm.OpSubMat3,
	STAR:  vm.OpMulMat3,
}

func (g *gen) binary(ex *BinaryExpr) error {
	if err := g.expr(ex.Left); err != nil {
		return err
	}
	if err := g.expr(ex.Right); err != nil {
		return err
	}

	lt, rt := ex.Left.Type(), ex.Right.Type()
	var op vm.Opcode
	ok := false

	switch {
	case lt.IsVector() && rt == vm.TypeFixed, lt == vm.TypeFixed && rt.IsVector():
		op, ok = vm.OpScaleVec, ex.Op == STAR
	case lt == vm.TypeMat3 && rt == vm.TypeVec3:
		op, ok = vm.OpMulMat3Vec3, ex.Op == STAR
	case lt == vm.TypeMat3:
		op, ok = mat3BinOps[ex.Op]
	case lt.IsVector():
		op, ok = vecBinOps[ex.Op]
	case lt == vm.TypeInt:
		op, ok = intBinOps[ex.Op]
	default:
		// float operands; bool comparisons never reach here.
		op, ok = fixedBinOps[ex.Op]
	}
	if !ok {
		return &CodegenError{Line: ex.Line, Msg: fmt.Sprintf("no opcode for %s on %s", ex.Op, lt)}
	}
	g.emit(op, 0)
	return nil
}
