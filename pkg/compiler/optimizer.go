package compiler

import (
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/fixed"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"
)

// maxOptPasses bounds the fold/simplify iteration. Each pass only shrinks
// the tree, so a handful of rounds reaches the fixed point in practice.
const maxOptPasses = 8

// optimizer rewrites a checked AST in place: constant folding, algebraic
// identities, and dead-code removal. It never changes observable behavior;
// in particular a division by a constant zero is left alone so the program
// still faults at run time.
type optimizer struct {
	opts    Options
	changed bool
}

func optimize(script *Script, opts Options) {
	o := &optimizer{opts: opts}
	for pass := 0; pass < maxOptPasses; pass++ {
		o.changed = false
		script.Main.Body.Stmts = o.stmts(script.Main.Body.Stmts)
		for _, fn := range script.Funcs {
			fn.Body.Stmts = o.stmts(fn.Body.Stmts)
		}
		if !o.changed {
			return
		}
	}
}

//  Statements

func (o *optimizer) stmts(in []Stmt) []Stmt {
	out := in[:0]
	for _, s := range in {
		s = o.stmt(s)
		if s == nil {
			o.changed = true
			continue
		}
		out = append(out, s)
		if _, isReturn := s.(*ReturnStmt); isReturn && o.opts.DeadCode {
			// Nothing after a return runs.
			break
		}
	}
	if len(out) != len(in) {
		o.changed = true
	}
	return out
}

func (o *optimizer) stmt(s Stmt) Stmt {
	switch st := s.(type) {
	case *VarDeclStmt:
		if st.Init != nil {
			st.Init = o.expr(st.Init)
		}
		return st

	case *ExprStmt:
		st.Expr = o.expr(st.Expr)
		if o.opts.DeadCode && isPure(st.Expr) {
			return nil
		}
		return st

	case *ReturnStmt:
		if st.Expr != nil {
			st.Expr = o.expr(st.Expr)
		}
		return st

	case *BlockStmt:
		st.Stmts = o.stmts(st.Stmts)
		if o.opts.DeadCode && len(st.Stmts) == 0 {
			return nil
		}
		return st

	case *IfStmt:
		st.Condition = o.expr(st.Condition)
		st.Body = o.stmt(st.Body)
		if st.ElseBody != nil {
			st.ElseBody = o.stmt(st.ElseBody)
		}
		if o.opts.DeadCode {
			if lit, ok := st.Condition.(*Literal); ok {
				o.changed = true
				if truthy(lit) {
					return st.Body
				}
				return st.ElseBody // may be nil
			}
			if st.Body == nil && st.ElseBody == nil && isPure(st.Condition) {
				return nil
			}
			if st.Body == nil {
				// Keep structure simple: invert by swapping an empty then.
				st.Body = &BlockStmt{}
			}
		}
		if st.Body == nil {
			st.Body = &BlockStmt{}
		}
		return st

	case *WhileStmt:
		st.Condition = o.expr(st.Condition)
		st.Body = o.stmt(st.Body)
		if st.Body == nil {
			st.Body = &BlockStmt{}
		}
		if o.opts.DeadCode {
			if lit, ok := st.Condition.(*Literal); ok && !truthy(lit) {
				return nil
			}
		}
		return st

	case *ForStmt:
		if st.Init != nil {
			st.Init = o.stmt(st.Init)
		}
		if st.Cond != nil {
			st.Cond = o.expr(st.Cond)
		}
		if st.Post != nil {
			st.Post = o.stmt(st.Post)
		}
		st.Body = o.stmt(st.Body)
		if st.Body == nil {
			st.Body = &BlockStmt{}
		}
		if o.opts.DeadCode {
			if lit, ok := st.Cond.(*Literal); ok && !truthy(lit) {
				// The loop never runs; only the init survives.
				if st.Init != nil {
					return st.Init
				}
				return nil
			}
		}
		return st

	default:
		return s
	}
}

//  Expressions

func (o *optimizer) expr(e Expr) Expr {
	switch ex := e.(type) {
	case *BinaryExpr:
		ex.Left = o.expr(ex.Left)
		ex.Right = o.expr(ex.Right)
		if o.opts.FoldConstants {
			if folded := foldBinary(ex); folded != nil {
				o.changed = true
				return folded
			}
		}
		if o.opts.Simplify {
			if simpler := simplifyBinary(ex); simpler != nil {
				o.changed = true
				return simpler
			}
		}
		return ex

	case *LogicalExpr:
		ex.Left = o.expr(ex.Left)
		ex.Right = o.expr(ex.Right)
		if o.opts.FoldConstants {
			l, lok := ex.Left.(*Literal)
			r, rok := ex.Right.(*Literal)
			if lok && rok {
				o.changed = true
				res := truthy(l) && truthy(r)
				if ex.Op == OR_LOGICAL {
					res = truthy(l) || truthy(r)
				}
				return boolLit(ex.Line, res)
			}
		}
		return ex

	case *UnaryExpr:
		ex.Right = o.expr(ex.Right)
		if o.opts.FoldConstants {
			if folded := foldUnary(ex); folded != nil {
				o.changed = true
				return folded
			}
		}
		if o.opts.Simplify && ex.Op == MINUS {
			if inner, ok := ex.Right.(*UnaryExpr); ok && inner.Op == MINUS {
				o.changed = true
				return inner.Right
			}
		}
		return ex

	case *TernaryExpr:
		ex.Cond = o.expr(ex.Cond)
		ex.Then = o.expr(ex.Then)
		ex.Else = o.expr(ex.Else)
		if o.opts.DeadCode {
			if lit, ok := ex.Cond.(*Literal); ok {
				o.changed = true
				if truthy(lit) {
					return ex.Then
				}
				return ex.Else
			}
		}
		return ex

	case *ConvExpr:
		ex.X = o.expr(ex.X)
		if o.opts.FoldConstants {
			if lit, ok := ex.X.(*Literal); ok {
				o.changed = true
				if ex.Type() == vm.TypeFixed {
					return fixedLit(ex.Line, fixed.FromInt(lit.Val.Int()))
				}
				return intLit(ex.Line, int32(int64(lit.Val.Fixed())/int64(fixed.One)))
			}
		}
		return ex

	case *AssignExpr:
		ex.Value = o.expr(ex.Value)
		return ex

	case *SwizzleExpr:
		ex.Base = o.expr(ex.Base)
		return ex

	case *CallExpr:
		for i, a := range ex.Args {
			ex.Args[i] = o.expr(a)
		}
		return ex

	default:
		return e
	}
}

//  Helpers

// isPure reports whether evaluating e has no observable effect: no writes
// and no possible runtime fault. Division and calls are treated as impure
// so removing the expression cannot hide a fault the program would raise.
func isPure(e Expr) bool {
	switch ex := e.(type) {
	case *Literal:
		return true
	case *VarRef:
		return true
	case *UnaryExpr:
		return isPure(ex.Right)
	case *BinaryExpr:
		if ex.Op == SLASH || ex.Op == PERCENT {
			return false
		}
		return isPure(ex.Left) && isPure(ex.Right)
	case *LogicalExpr:
		return isPure(ex.Left) && isPure(ex.Right)
	case *TernaryExpr:
		return isPure(ex.Cond) && isPure(ex.Then) && isPure(ex.Else)
	case *ConvExpr:
		return isPure(ex.X)
	case *SwizzleExpr:
		return isPure(ex.Base)
	case *CallExpr:
		// Constructors of pure parts are pure. Builtins and user calls can
		// fault (or burn instruction budget), so they stay.
		if ex.Ctor == 0 {
			return false
		}
		for _, a := range ex.Args {
			if !isPure(a) {
				return false
			}
		}
		return true
	}
	return false
}

func truthy(l *Literal) bool { return l.Val.Bool() }

func intLit(line int, v int32) *Literal {
	return &Literal{exprBase: exprBase{Line: line, T: vm.TypeInt}, Kind: LitInt, Val: vm.IntVal(v)}
}

func fixedLit(line int, v fixed.Fixed) *Literal {
	return &Literal{exprBase: exprBase{Line: line, T: vm.TypeFixed}, Kind: LitFixed, Val: vm.FixedVal(v)}
}

func boolLit(line int, v bool) *Literal {
	return &Literal{exprBase: exprBase{Line: line, T: vm.TypeBool}, Kind: LitBool, Val: vm.BoolVal(v)}
}

// foldBinary evaluates a binary operation over two literals, or nil when it
// cannot fold. Divisions by a constant zero are left for the runtime fault.
func foldBinary(ex *BinaryExpr) Expr {
	l, lok := ex.Left.(*Literal)
	r, rok := ex.Right.(*Literal)
	if !lok || !rok {
		return nil
	}

	if l.Val.Type == vm.TypeInt && r.Val.Type == vm.TypeInt {
		a, b := l.Val.Int(), r.Val.Int()
		switch ex.Op {
		case PLUS:
			return intLit(ex.Line, a+b)
		case MINUS:
			return intLit(ex.Line, a-b)
		case STAR:
			return intLit(ex.Line, a*b)
		case SLASH:
			if b == 0 {
				return nil
			}
			return intLit(ex.Line, a/b)
		case PERCENT:
			if b == 0 {
				return nil
			}
			return intLit(ex.Line, a%b)
		case AND:
			return intLit(ex.Line, a&b)
		case PIPE:
			return intLit(ex.Line, a|b)
		case CARET:
			return intLit(ex.Line, a^b)
		case SHL_OP:
			if b < 0 || b > 31 {
				return nil
			}
			return intLit(ex.Line, a<<uint(b))
		case SHR_OP:
			if b < 0 || b > 31 {
				return nil
			}
			return intLit(ex.Line, a>>uint(b))
		case EQUALS:
			return boolLit(ex.Line, a == b)
		case NOT_EQ:
			return boolLit(ex.Line, a != b)
		case LESS:
			return boolLit(ex.Line, a < b)
		case LESS_EQ:
			return boolLit(ex.Line, a <= b)
		case GREATER:
			return boolLit(ex.Line, a > b)
		case GREATER_EQ:
			return boolLit(ex.Line, a >= b)
		}
		return nil
	}

	if l.Val.Type == vm.TypeFixed && r.Val.Type == vm.TypeFixed {
		a, b := l.Val.Fixed(), r.Val.Fixed()
		switch ex.Op {
		case PLUS:
			return fixedLit(ex.Line, a+b)
		case MINUS:
			return fixedLit(ex.Line, a-b)
		case STAR:
			return fixedLit(ex.Line, a.Mul(b))
		case SLASH:
			if b == 0 {
				return nil
			}
			return fixedLit(ex.Line, a.Div(b))
		case PERCENT:
			if b == 0 {
				return nil
			}
			return fixedLit(ex.Line, a.Mod(b))
		case EQUALS:
			return boolLit(ex.Line, a == b)
		case NOT_EQ:
			return boolLit(ex.Line, a != b)
		case LESS:
			return boolLit(ex.Line, a < b)
		case LESS_EQ:
			return boolLit(ex.Line, a <= b)
		case GREATER:
			return boolLit(ex.Line, a > b)
		case GREATER_EQ:
			return boolLit(ex.Line, a >= b)
		}
	}
	return nil
}

func foldUnary(ex *UnaryExpr) Expr {
	lit, ok := ex.Right.(*Literal)
	if !ok {
		return nil
	}
	switch ex.Op {
	case MINUS:
		if lit.Val.Type == vm.TypeInt {
			return intLit(ex.Line, -lit.Val.Int())
		}
		if lit.Val.Type == vm.TypeFixed {
			return fixedLit(ex.Line, -lit.Val.Fixed())
		}
	case NOT:
		return boolLit(ex.Line, !truthy(lit))
	case TILDE:
		if lit.Val.Type == vm.TypeInt {
			return intLit(ex.Line, ^lit.Val.Int())
		}
	}
	return nil
}

// simplifyBinary applies the algebraic identities that survive fixed-point
// arithmetic exactly: x+0, x-0, x*1, x/1, x*0 (for pure x), 0*x, 0+x.
func simplifyBinary(ex *BinaryExpr) Expr {
	t := ex.Type()
	if t != vm.TypeInt && t != vm.TypeFixed {
		return nil
	}

	isZero := func(e Expr) bool {
		lit, ok := e.(*Literal)
		return ok && lit.Val.C[0] == 0
	}
	isOne := func(e Expr) bool {
		lit, ok := e.(*Literal)
		if !ok {
			return false
		}
		if lit.Val.Type == vm.TypeInt {
			return lit.Val.Int() == 1
		}
		return lit.Val.Fixed() == fixed.One
	}

	switch ex.Op {
	case PLUS:
		if isZero(ex.Right) {
			return ex.Left
		}
		if isZero(ex.Left) {
			return ex.Right
		}
	case MINUS:
		if isZero(ex.Right) {
			return ex.Left
		}
	case STAR:
		if isOne(ex.Right) {
			return ex.Left
		}
		if isOne(ex.Left) {
			return ex.Right
		}
		if isZero(ex.Right) && isPure(ex.Left) {
			return ex.Right
		}
		if isZero(ex.Left) && isPure(ex.Right) {
			return ex.Left
		}
	case SLASH:
		if isOne(ex.Right) {
			return ex.Left
		}
	}
	return nil
}
