package compiler

import (
	"fmt"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"
)

// TypeErrorCode classifies what a type error is about.
type TypeErrorCode int

const (
	ErrTypeMismatch TypeErrorCode = iota
	ErrUndefinedVariable
	ErrRedeclaredVariable
	ErrInvalidOperation
	ErrInvalidArgumentCount
	ErrMissingReturn
	ErrUnknownFunction
)

var typeErrorNames = [...]string{
	ErrTypeMismatch:         "type mismatch",
	ErrUndefinedVariable:    "undefined variable",
	ErrRedeclaredVariable:   "redeclared variable",
	ErrInvalidOperation:     "invalid operation",
	ErrInvalidArgumentCount: "wrong argument count",
	ErrMissingReturn:        "missing return",
	ErrUnknownFunction:      "unknown function",
}

func (c TypeErrorCode) String() string {
	if int(c) < len(typeErrorNames) {
		return typeErrorNames[c]
	}
	return fmt.Sprintf("TypeErrorCode(%d)", int(c))
}

// TypeError is a single semantic error with its source line.
type TypeError struct {
	Code TypeErrorCode
	Line int
	Msg  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Code, e.Msg)
}

// Checker resolves names, assigns local slots, and annotates every
// expression with its type. It also performs the two AST rewrites later
// stages rely on: implicit int-to-float widening becomes an explicit
// ConvExpr, and scalar builtins called with vector arguments become a
// vector constructor of per-component scalar calls.
type Checker struct {
	funcs map[string]*FunctionDecl
	syms  *SymbolTable

	// Return type of the function being checked. For the implicit entry
	// function it starts unknown and is inferred from the first return.
	ret      vm.ValueType
	retKnown bool
}

// Check type-checks the whole script in place. On success every expression
// carries its type, every variable its slot, and script.Main holds the
// synthesized entry function at index 0.
func Check(script *Script) error {
	c := &Checker{funcs: make(map[string]*FunctionDecl)}

	for i, fn := range script.Funcs {
		if _, dup := c.funcs[fn.Name]; dup {
			return c.errf(ErrInvalidOperation, fn.Line, "function %q defined twice", fn.Name)
		}
		fn.Index = i + 1 // entry occupies index 0
		c.funcs[fn.Name] = fn
	}

	// The implicit entry wraps the top-level statements.
	script.Main = &FunctionDecl{
		Name:   "main",
		Return: vm.TypeVoid,
		Body:   &BlockStmt{Stmts: script.Top},
		Index:  0,
	}
	if err := c.checkFunction(script.Main, true); err != nil {
		return err
	}

	for _, fn := range script.Funcs {
		if err := c.checkFunction(fn, false); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) errf(code TypeErrorCode, line int, format string, args ...any) error {
	return &TypeError{Code: code, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (c *Checker) checkFunction(fn *FunctionDecl, isEntry bool) error {
	c.syms = NewSymbolTable()
	c.syms.DefineInput("uv", vm.TypeVec2, vm.InputUV)
	c.syms.DefineInput("coord", vm.TypeVec2, vm.InputCoord)
	c.syms.DefineInput("time", vm.TypeFixed, vm.InputTime)

	for _, p := range fn.Params {
		if _, ok := c.syms.Define(p.Name, p.Type); !ok {
			return c.errf(ErrRedeclaredVariable, p.Line, "duplicate parameter %q", p.Name)
		}
	}

	c.ret = fn.Return
	c.retKnown = !isEntry

	// Parameters share the body's outermost scope, so a body-level
	// declaration cannot shadow a parameter.
	if err := c.checkStmts(fn.Body.Stmts); err != nil {
		return err
	}

	fn.Return = c.ret
	fn.Locals = c.syms.Locals()

	// A declared non-void function must return on every path. The entry
	// function is exempt: the code generator appends a typed zero return
	// when control can fall off the end.
	if !isEntry && fn.Return != vm.TypeVoid && !returnsOnAllPaths(fn.Body) {
		return c.errf(ErrMissingReturn, fn.Line, "function %q does not return on all paths", fn.Name)
	}
	return nil
}

// returnsOnAllPaths reports whether every control path through s ends in a
// return statement. Loops never count: their bodies may run zero times.
func returnsOnAllPaths(s Stmt) bool {
	switch st := s.(type) {
	case *ReturnStmt:
		return true
	case *BlockStmt:
		for _, inner := range st.Stmts {
			if returnsOnAllPaths(inner) {
				return true
			}
		}
		return false
	case *IfStmt:
		return st.ElseBody != nil &&
			returnsOnAllPaths(st.Body) && returnsOnAllPaths(st.ElseBody)
	}
	return false
}

//  Statements

func (c *Checker) checkStmts(stmts []Stmt) error {
	for _, s := range stmts {
		if err := c.checkStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkStmt(s Stmt) error {
	switch st := s.(type) {
	case *VarDeclStmt:
		if st.Init != nil {
			init, err := c.checkExpr(st.Init)
			if err != nil {
				return err
			}
			init, err = c.coerce(init, st.DeclType, st.Line)
			if err != nil {
				return err
			}
			st.Init = init
		}
		sym, ok := c.syms.Define(st.Name, st.DeclType)
		if !ok {
			return c.errf(ErrRedeclaredVariable, st.Line, "%q already declared in this scope", st.Name)
		}
		st.Slot = sym.Slot
		return nil

	case *ExprStmt:
		expr, err := c.checkExpr(st.Expr)
		if err != nil {
			return err
		}
		st.Expr = expr
		return nil

	case *ReturnStmt:
		return c.checkReturn(st)

	case *BlockStmt:
		c.syms.EnterScope()
		defer c.syms.ExitScope()
		return c.checkStmts(st.Stmts)

	case *IfStmt:
		cond, err := c.checkCondition(st.Condition, st.Line)
		if err != nil {
			return err
		}
		st.Condition = cond
		if err := c.checkStmt(st.Body); err != nil {
			return err
		}
		if st.ElseBody != nil {
			return c.checkStmt(st.ElseBody)
		}
		return nil

	case *WhileStmt:
		cond, err := c.checkCondition(st.Condition, st.Line)
		if err != nil {
			return err
		}
		st.Condition = cond
		return c.checkStmt(st.Body)

	case *ForStmt:
		// The init declaration lives in its own scope around the loop.
		c.syms.EnterScope()
		defer c.syms.ExitScope()
		if st.Init != nil {
			if err := c.checkStmt(st.Init); err != nil {
				return err
			}
		}
		if st.Cond != nil {
			cond, err := c.checkCondition(st.Cond, st.Line)
			if err != nil {
				return err
			}
			st.Cond = cond
		}
		if st.Post != nil {
			if err := c.checkStmt(st.Post); err != nil {
				return err
			}
		}
		return c.checkStmt(st.Body)

	default:
		return c.errf(ErrInvalidOperation, 0, "unexpected statement %T", s)
	}
}

func (c *Checker) checkReturn(st *ReturnStmt) error {
	if st.Expr == nil {
		if c.retKnown && c.ret != vm.TypeVoid {
			return c.errf(ErrTypeMismatch, st.Line, "bare return in function returning %s", c.ret)
		}
		c.retKnown = true
		return nil
	}

	expr, err := c.checkExpr(st.Expr)
	if err != nil {
		return err
	}
	if !c.retKnown {
		// First return in the entry function fixes its result type.
		c.ret = expr.Type()
		c.retKnown = true
	}
	if c.ret == vm.TypeVoid {
		return c.errf(ErrTypeMismatch, st.Line, "void function cannot return a value")
	}
	expr, err = c.coerce(expr, c.ret, st.Line)
	if err != nil {
		return err
	}
	st.Expr = expr
	return nil
}

// checkCondition checks a branch/loop condition: any scalar works, matching
// the nonzero-is-true convention the runtime uses.
func (c *Checker) checkCondition(e Expr, line int) (Expr, error) {
	expr, err := c.checkExpr(e)
	if err != nil {
		return nil, err
	}
	if !expr.Type().IsScalar() {
		return nil, c.errf(ErrTypeMismatch, line, "condition must be scalar, got %s", expr.Type())
	}
	return expr, nil
}

//  Expressions

// coerce makes expr usable where want is expected, inserting the implicit
// int-to-float widening. Any other mismatch is an error.
func (c *Checker) coerce(expr Expr, want vm.ValueType, line int) (Expr, error) {
	got := expr.Type()
	if got == want {
		return expr, nil
	}
	if got == vm.TypeInt && want == vm.TypeFixed {
		conv := &ConvExpr{exprBase: exprBase{Line: expr.Pos(), T: vm.TypeFixed}, X: expr}
		return conv, nil
	}
	return nil, c.errf(ErrTypeMismatch, line, "expected %s, got %s", want, got)
}

func (c *Checker) checkExpr(e Expr) (Expr, error) {
	switch ex := e.(type) {
	case *Literal:
		switch ex.Kind {
		case LitInt:
			ex.setType(vm.TypeInt)
		case LitFixed:
			ex.setType(vm.TypeFixed)
		case LitBool:
			ex.setType(vm.TypeBool)
		}
		return ex, nil

	case *VarRef:
		sym, ok := c.syms.Lookup(ex.Name)
		if !ok {
			return nil, c.errf(ErrUndefinedVariable, ex.Line, "%q is not declared", ex.Name)
		}
		if sym.ReadOnly {
			ex.Input = sym.Slot
			ex.Slot = -1
		} else {
			ex.Slot = sym.Slot
			ex.Input = -1
		}
		ex.setType(sym.Type)
		return ex, nil

	case *AssignExpr:
		return c.checkAssign(ex)

	case *BinaryExpr:
		return c.checkBinary(ex)

	case *LogicalExpr:
		left, err := c.checkExpr(ex.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.checkExpr(ex.Right)
		if err != nil {
			return nil, err
		}
		if !left.Type().IsScalar() || !right.Type().IsScalar() {
			return nil, c.errf(ErrTypeMismatch, ex.Line, "%s requires scalar operands, got %s and %s",
				ex.Op, left.Type(), right.Type())
		}
		ex.Left, ex.Right = left, right
		ex.setType(vm.TypeBool)
		return ex, nil

	case *UnaryExpr:
		return c.checkUnary(ex)

	case *PostfixExpr:
		sym, ok := c.syms.Lookup(ex.Left.Name)
		if !ok {
			return nil, c.errf(ErrUndefinedVariable, ex.Line, "%q is not declared", ex.Left.Name)
		}
		if sym.ReadOnly {
			return nil, c.errf(ErrInvalidOperation, ex.Line, "cannot modify input %q", ex.Left.Name)
		}
		if sym.Type != vm.TypeInt && sym.Type != vm.TypeFixed {
			return nil, c.errf(ErrInvalidOperation, ex.Line, "%s requires int or float, got %s", ex.Op, sym.Type)
		}
		ex.Left.Slot = sym.Slot
		ex.Left.Input = -1
		ex.Left.setType(sym.Type)
		ex.setType(sym.Type)
		return ex, nil

	case *TernaryExpr:
		cond, err := c.checkCondition(ex.Cond, ex.Line)
		if err != nil {
			return nil, err
		}
		then, err := c.checkExpr(ex.Then)
		if err != nil {
			return nil, err
		}
		els, err := c.checkExpr(ex.Else)
		if err != nil {
			return nil, err
		}
		then, els, t, ok := c.unify(then, els)
		if !ok {
			return nil, c.errf(ErrTypeMismatch, ex.Line, "ternary branches disagree: %s vs %s",
				then.Type(), els.Type())
		}
		ex.Cond, ex.Then, ex.Else = cond, then, els
		ex.setType(t)
		return ex, nil

	case *SwizzleExpr:
		return c.checkSwizzle(ex)

	case *CallExpr:
		return c.checkCall(ex)

	default:
		return nil, c.errf(ErrInvalidOperation, e.Pos(), "unexpected expression %T", e)
	}
}

func (c *Checker) checkAssign(ex *AssignExpr) (Expr, error) {
	sym, ok := c.syms.Lookup(ex.Target.Name)
	if !ok {
		return nil, c.errf(ErrUndefinedVariable, ex.Line, "%q is not declared", ex.Target.Name)
	}
	if sym.ReadOnly {
		return nil, c.errf(ErrInvalidOperation, ex.Line, "cannot assign to input %q", ex.Target.Name)
	}
	ex.Target.Slot = sym.Slot
	ex.Target.Input = -1
	ex.Target.setType(sym.Type)

	value, err := c.checkExpr(ex.Value)
	if err != nil {
		return nil, err
	}
	value, err = c.coerce(value, sym.Type, ex.Line)
	if err != nil {
		return nil, err
	}
	ex.Value = value
	ex.setType(sym.Type)
	return ex, nil
}

// unify brings two expressions to a common type using the int-to-float
// widening, reporting the common type.
func (c *Checker) unify(a, b Expr) (Expr, Expr, vm.ValueType, bool) {
	at, bt := a.Type(), b.Type()
	if at == bt {
		return a, b, at, true
	}
	if at == vm.TypeInt && bt == vm.TypeFixed {
		conv := &ConvExpr{exprBase: exprBase{Line: a.Pos(), T: vm.TypeFixed}, X: a}
		return conv, b, vm.TypeFixed, true
	}
	if at == vm.TypeFixed && bt == vm.TypeInt {
		conv := &ConvExpr{exprBase: exprBase{Line: b.Pos(), T: vm.TypeFixed}, X: b}
		return a, conv, vm.TypeFixed, true
	}
	return a, b, vm.TypeVoid, false
}

func (c *Checker) checkBinary(ex *BinaryExpr) (Expr, error) {
	left, err := c.checkExpr(ex.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.checkExpr(ex.Right)
	if err != nil {
		return nil, err
	}

	switch ex.Op {
	case AND, PIPE, CARET, SHL_OP, SHR_OP:
		if left.Type() != vm.TypeInt || right.Type() != vm.TypeInt {
			return nil, c.errf(ErrInvalidOperation, ex.Line, "%s requires int operands, got %s and %s",
				ex.Op, left.Type(), right.Type())
		}
		ex.Left, ex.Right = left, right
		ex.setType(vm.TypeInt)
		return ex, nil

	case EQUALS, NOT_EQ, LESS, LESS_EQ, GREATER, GREATER_EQ:
		l, r, t, ok := c.unify(left, right)
		if !ok || (t != vm.TypeInt && t != vm.TypeFixed) {
			return nil, c.errf(ErrTypeMismatch, ex.Line, "cannot compare %s and %s",
				left.Type(), right.Type())
		}
		ex.Left, ex.Right = l, r
		ex.setType(vm.TypeBool)
		return ex, nil

	case PLUS, MINUS, STAR, SLASH, PERCENT:
		return c.checkArith(ex, left, right)

	default:
		return nil, c.errf(ErrInvalidOperation, ex.Line, "unexpected operator %s", ex.Op)
	}
}

func (c *Checker) checkArith(ex *BinaryExpr, left, right Expr) (Expr, error) {
	lt, rt := left.Type(), right.Type()

	// vec * scalar and scalar * vec scale component-wise; the int side of a
	// mixed pairing widens first.
	if ex.Op == STAR {
		if lt.IsVector() && (rt == vm.TypeFixed || rt == vm.TypeInt) {
			right, _ = c.coerce(right, vm.TypeFixed, ex.Line)
			ex.Left, ex.Right = left, right
			ex.setType(lt)
			return ex, nil
		}
		if (lt == vm.TypeFixed || lt == vm.TypeInt) && rt.IsVector() {
			left, _ = c.coerce(left, vm.TypeFixed, ex.Line)
			ex.Left, ex.Right = left, right
			ex.setType(rt)
			return ex, nil
		}
		if lt == vm.TypeMat3 && rt == vm.TypeVec3 {
			ex.Left, ex.Right = left, right
			ex.setType(vm.TypeVec3)
			return ex, nil
		}
	}

	l, r, t, ok := c.unify(left, right)
	if !ok {
		return nil, c.errf(ErrTypeMismatch, ex.Line, "operands of %s disagree: %s vs %s", ex.Op, lt, rt)
	}

	switch {
	case t == vm.TypeInt || t == vm.TypeFixed:
		// All five operators.
	case t.IsVector():
		if ex.Op == PERCENT {
			return nil, c.errf(ErrInvalidOperation, ex.Line, "%% is not defined on %s", t)
		}
	case t == vm.TypeMat3:
		if ex.Op != PLUS && ex.Op != MINUS && ex.Op != STAR {
			return nil, c.errf(ErrInvalidOperation, ex.Line, "%s is not defined on mat3", ex.Op)
		}
	default:
		return nil, c.errf(ErrInvalidOperation, ex.Line, "%s is not defined on %s", ex.Op, t)
	}

	ex.Left, ex.Right = l, r
	ex.setType(t)
	return ex, nil
}

func (c *Checker) checkUnary(ex *UnaryExpr) (Expr, error) {
	right, err := c.checkExpr(ex.Right)
	if err != nil {
		return nil, err
	}
	rt := right.Type()

	switch ex.Op {
	case MINUS:
		if rt != vm.TypeInt && rt != vm.TypeFixed && !rt.IsVector() {
			return nil, c.errf(ErrInvalidOperation, ex.Line, "cannot negate %s", rt)
		}
		ex.Right = right
		ex.setType(rt)
		return ex, nil

	case NOT:
		if !rt.IsScalar() {
			return nil, c.errf(ErrTypeMismatch, ex.Line, "! requires a scalar, got %s", rt)
		}
		ex.Right = right
		ex.setType(vm.TypeBool)
		return ex, nil

	case TILDE:
		if rt != vm.TypeInt {
			return nil, c.errf(ErrInvalidOperation, ex.Line, "~ requires int, got %s", rt)
		}
		ex.Right = right
		ex.setType(vm.TypeInt)
		return ex, nil
	}
	return nil, c.errf(ErrInvalidOperation, ex.Line, "unexpected unary operator %s", ex.Op)
}

var swizzleIndex = map[rune]int{
	'x': 0, 'y': 1, 'z': 2, 'w': 3,
	'r': 0, 'g': 1, 'b': 2, 'a': 3,
}

func (c *Checker) checkSwizzle(ex *SwizzleExpr) (Expr, error) {
	base, err := c.checkExpr(ex.Base)
	if err != nil {
		return nil, err
	}
	bt := base.Type()
	if !bt.IsVector() {
		return nil, c.errf(ErrInvalidOperation, ex.Line, "cannot swizzle %s", bt)
	}
	if len(ex.Letters) < 1 || len(ex.Letters) > 4 {
		return nil, c.errf(ErrInvalidOperation, ex.Line, "swizzle %q selects %d components", ex.Letters, len(ex.Letters))
	}

	indices := make([]int, 0, len(ex.Letters))
	for _, ch := range ex.Letters {
		idx, ok := swizzleIndex[ch]
		if !ok {
			return nil, c.errf(ErrInvalidOperation, ex.Line, "unknown swizzle component %q", string(ch))
		}
		if idx >= bt.Components() {
			return nil, c.errf(ErrInvalidOperation, ex.Line, "component %q out of range for %s", string(ch), bt)
		}
		indices = append(indices, idx)
	}

	ex.Base = base
	ex.Indices = indices
	ex.setType(vm.VecType(len(indices)))
	return ex, nil
}

//  Calls

// ctorWidth maps a constructor name to its component count.
var ctorWidth = map[string]int{"vec2": 2, "vec3": 3, "vec4": 4, "mat3": 9}

func (c *Checker) checkCall(ex *CallExpr) (Expr, error) {
	args := make([]Expr, len(ex.Args))
	for i, a := range ex.Args {
		checked, err := c.checkExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = checked
	}
	ex.Args = args

	// Scalar conversion constructors.
	if ex.Name == "float" || ex.Name == "int" {
		return c.checkConvCtor(ex)
	}

	// Vector and matrix constructors.
	if width, ok := ctorWidth[ex.Name]; ok {
		return c.checkCtor(ex, width)
	}

	// User functions shadow the builtin catalog.
	if fn, ok := c.funcs[ex.Name]; ok {
		return c.checkUserCall(ex, fn)
	}

	// noise is overloaded on its argument type.
	if ex.Name == "noise" {
		return c.checkNoise(ex)
	}

	info, ok := builtinTable[ex.Name]
	if !ok {
		return nil, c.errf(ErrUnknownFunction, ex.Line, "no function %q", ex.Name)
	}
	if len(ex.Args) != info.arity {
		return nil, c.errf(ErrInvalidArgumentCount, ex.Line, "%s takes %d argument(s), got %d",
			ex.Name, info.arity, len(ex.Args))
	}
	if info.kind == kindVector {
		return c.checkVectorBuiltin(ex, info)
	}
	return c.checkScalarBuiltin(ex, info)
}

// checkConvCtor handles float(x) and int(x).
func (c *Checker) checkConvCtor(ex *CallExpr) (Expr, error) {
	if len(ex.Args) != 1 {
		return nil, c.errf(ErrInvalidArgumentCount, ex.Line, "%s takes 1 argument, got %d",
			ex.Name, len(ex.Args))
	}
	arg := ex.Args[0]
	at := arg.Type()

	want := vm.TypeFixed
	if ex.Name == "int" {
		want = vm.TypeInt
	}
	if at == want {
		return arg, nil
	}
	if (at == vm.TypeInt && want == vm.TypeFixed) || (at == vm.TypeFixed && want == vm.TypeInt) {
		return &ConvExpr{exprBase: exprBase{Line: ex.Line, T: want}, X: arg}, nil
	}
	return nil, c.errf(ErrTypeMismatch, ex.Line, "cannot convert %s to %s", at, ex.Name)
}

// checkCtor handles vec2/vec3/vec4/mat3 construction: the argument
// component counts must add up to the target width exactly.
func (c *Checker) checkCtor(ex *CallExpr, width int) (Expr, error) {
	total := 0
	for i, arg := range ex.Args {
		at := arg.Type()
		if at == vm.TypeInt {
			arg, _ = c.coerce(arg, vm.TypeFixed, ex.Line)
			ex.Args[i] = arg
			at = vm.TypeFixed
		}
		if at != vm.TypeFixed && !at.IsVector() {
			return nil, c.errf(ErrTypeMismatch, ex.Line, "%s constructor cannot take %s", ex.Name, at)
		}
		total += at.Components()
	}
	if total != width {
		return nil, c.errf(ErrInvalidArgumentCount, ex.Line,
			"%s needs %d components, arguments provide %d", ex.Name, width, total)
	}

	ex.Ctor = width
	if ex.Name == "mat3" {
		ex.setType(vm.TypeMat3)
	} else {
		ex.setType(vm.VecType(width))
	}
	return ex, nil
}

func (c *Checker) checkUserCall(ex *CallExpr, fn *FunctionDecl) (Expr, error) {
	if len(ex.Args) != len(fn.Params) {
		return nil, c.errf(ErrInvalidArgumentCount, ex.Line, "%s takes %d argument(s), got %d",
			fn.Name, len(fn.Params), len(ex.Args))
	}
	for i, arg := range ex.Args {
		arg, err := c.coerce(arg, fn.Params[i].Type, ex.Line)
		if err != nil {
			return nil, err
		}
		ex.Args[i] = arg
	}
	ex.FuncIndex = fn.Index
	ex.setType(fn.Return)
	return ex, nil
}

func (c *Checker) checkNoise(ex *CallExpr) (Expr, error) {
	if len(ex.Args) != 1 {
		return nil, c.errf(ErrInvalidArgumentCount, ex.Line, "noise takes 1 argument, got %d", len(ex.Args))
	}
	arg := ex.Args[0]
	switch arg.Type() {
	case vm.TypeInt:
		arg, _ = c.coerce(arg, vm.TypeFixed, ex.Line)
		fallthrough
	case vm.TypeFixed:
		ex.Args[0] = arg
		ex.Builtin = vm.BuiltinNoise
	case vm.TypeVec2:
		ex.Builtin = vm.BuiltinNoise2
	default:
		return nil, c.errf(ErrTypeMismatch, ex.Line, "noise takes float or vec2, got %s", arg.Type())
	}
	ex.setType(vm.TypeFixed)
	return ex, nil
}

func (c *Checker) checkVectorBuiltin(ex *CallExpr, info builtinInfo) (Expr, error) {
	argT := func(i int) vm.ValueType { return ex.Args[i].Type() }

	switch info.op {
	case vm.BuiltinLength, vm.BuiltinNormalize:
		if !argT(0).IsVector() {
			return nil, c.errf(ErrTypeMismatch, ex.Line, "%s takes a vector, got %s", ex.Name, argT(0))
		}
		if info.op == vm.BuiltinLength {
			ex.setType(vm.TypeFixed)
		} else {
			ex.setType(argT(0))
		}

	case vm.BuiltinDot, vm.BuiltinDistance:
		if !argT(0).IsVector() || argT(0) != argT(1) {
			return nil, c.errf(ErrTypeMismatch, ex.Line, "%s takes two matching vectors, got %s and %s",
				ex.Name, argT(0), argT(1))
		}
		ex.setType(vm.TypeFixed)

	case vm.BuiltinCross:
		if argT(0) != vm.TypeVec3 || argT(1) != vm.TypeVec3 {
			return nil, c.errf(ErrTypeMismatch, ex.Line, "cross takes two vec3, got %s and %s",
				argT(0), argT(1))
		}
		ex.setType(vm.TypeVec3)

	case vm.BuiltinTranspose, vm.BuiltinInverse, vm.BuiltinDeterminant:
		if argT(0) != vm.TypeMat3 {
			return nil, c.errf(ErrTypeMismatch, ex.Line, "%s takes mat3, got %s", ex.Name, argT(0))
		}
		if info.op == vm.BuiltinDeterminant {
			ex.setType(vm.TypeFixed)
		} else {
			ex.setType(vm.TypeMat3)
		}
	}

	ex.Builtin = info.op
	return ex, nil
}

// checkScalarBuiltin types a call to a float-signature builtin. When any
// argument is a vector the call is rewritten into a vector constructor of
// per-component scalar calls, with scalar arguments broadcast.
func (c *Checker) checkScalarBuiltin(ex *CallExpr, info builtinInfo) (Expr, error) {
	width := 0
	for i, arg := range ex.Args {
		at := arg.Type()
		switch {
		case at == vm.TypeInt:
			arg, _ = c.coerce(arg, vm.TypeFixed, ex.Line)
			ex.Args[i] = arg
		case at == vm.TypeFixed:
			// fine as-is
		case at.IsVector():
			if width != 0 && at.Components() != width {
				return nil, c.errf(ErrTypeMismatch, ex.Line,
					"%s vector arguments disagree: %d vs %d components",
					ex.Name, width, at.Components())
			}
			width = at.Components()
		default:
			return nil, c.errf(ErrTypeMismatch, ex.Line, "%s cannot take %s", ex.Name, at)
		}
	}

	if width == 0 {
		ex.Builtin = info.op
		ex.setType(vm.TypeFixed)
		return ex, nil
	}

	// sin(v) becomes vecN(sin(v.x), ..., sin(v.<n>)). Scalar arguments are
	// reused per component; plain reads and literals make that free.
	ctor := &CallExpr{
		exprBase:  exprBase{Line: ex.Line, T: vm.VecType(width)},
		Name:      vm.VecType(width).String(),
		Builtin:   -1,
		FuncIndex: -1,
		Ctor:      width,
	}
	for comp := 0; comp < width; comp++ {
		call := &CallExpr{
			exprBase:  exprBase{Line: ex.Line, T: vm.TypeFixed},
			Name:      ex.Name,
			Builtin:   info.op,
			FuncIndex: -1,
		}
		for _, arg := range ex.Args {
			if arg.Type().IsVector() {
				call.Args = append(call.Args, &SwizzleExpr{
					exprBase: exprBase{Line: ex.Line, T: vm.TypeFixed},
					Base:     arg,
					Letters:  string("xyzw"[comp]),
					Indices:  []int{comp},
				})
			} else {
				call.Args = append(call.Args, arg)
			}
		}
		ctor.Args = append(ctor.Args, call)
	}
	return ctor, nil
}
