package compiler

import (
	"errors"
	"testing"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"
)

// checkSource parses and type-checks src, returning the annotated script.
func checkSource(t *testing.T, src string) *Script {
	t.Helper()
	script, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := Check(script); err != nil {
		t.Fatalf("Check: %v", err)
	}
	return script
}

func checkError(t *testing.T, src string) *TypeError {
	t.Helper()
	script, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	err = Check(script)
	if err == nil {
		t.Fatalf("Check(%q): expected error", src)
	}
	var te *TypeError
	if !errors.As(err, &te) {
		t.Fatalf("Check(%q): expected *TypeError, got %T: %v", src, err, err)
	}
	return te
}

func TestCheckErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code TypeErrorCode
	}{
		{"undefined variable", "return x;", ErrUndefinedVariable},
		{"redeclared in scope", "int a = 1; int a = 2;", ErrRedeclaredVariable},
		{"assign type mismatch", "int a = 1; a = 2.5;", ErrTypeMismatch},
		{"float to int narrows", "float f = 1.5; int i = f;", ErrTypeMismatch},
		{"assign to input", "uv = vec2(0.0, 0.0);", ErrInvalidOperation},
		{"assign to time", "time = 1.0;", ErrInvalidOperation},
		{"vector equality", "return vec2(1.0,1.0) == vec2(1.0,1.0);", ErrTypeMismatch},
		{"vector modulo", "return vec2(1.0,1.0) % vec2(2.0,2.0);", ErrInvalidOperation},
		{"vector over scalar", "return vec2(1.0,1.0) / 2.0;", ErrTypeMismatch},
		{"bitwise on float", "return 1.5 & 2;", ErrInvalidOperation},
		{"shift on float", "return 1 << 1.5;", ErrInvalidOperation},
		{"negate matrix", "mat3 m = mat3(1,0,0, 0,1,0, 0,0,1); return -m;", ErrInvalidOperation},
		{"condition not scalar", "if (vec2(1.0,1.0)) { return 1; }", ErrTypeMismatch},
		{"ternary branch mismatch", "return true ? 1 : vec2(1.0,1.0);", ErrTypeMismatch},
		{"swizzle scalar", "float f = 1.0; return f.x;", ErrInvalidOperation},
		{"swizzle out of range", "vec2 v = vec2(1.0,1.0); return v.z;", ErrInvalidOperation},
		{"swizzle too wide", "vec2 v = vec2(1.0,1.0); return v.xyxyx;", ErrInvalidOperation},
		{"swizzle unknown letter", "vec2 v = vec2(1.0,1.0); return v.q;", ErrInvalidOperation},
		{"ctor wrong arity", "return vec3(1.0, 2.0);", ErrInvalidArgumentCount},
		{"ctor too many", "return vec2(1.0, 2.0, 3.0);", ErrInvalidArgumentCount},
		{"unknown function", "return warble(1.0);", ErrUnknownFunction},
		{"builtin wrong arity", "return sin(1.0, 2.0);", ErrInvalidArgumentCount},
		{"cross needs vec3", "return cross(vec2(1.0,0.0), vec2(0.0,1.0));", ErrTypeMismatch},
		{"dot width mismatch", "return dot(vec2(1.0,0.0), vec3(0.0,1.0,0.0));", ErrTypeMismatch},
		{"determinant needs mat3", "return determinant(vec3(1.0,2.0,3.0));", ErrTypeMismatch},
		{"noise bad arg", "return noise(vec3(1.0,2.0,3.0));", ErrTypeMismatch},
		{"call arity", "float f(float x) { return x; } return f(1.0, 2.0);", ErrInvalidArgumentCount},
		{"call arg type", "float f(vec2 v) { return v.x; } return f(1.0);", ErrTypeMismatch},
		{"missing return", "float f(float x) { if (x > 0.0) { return x; } }", ErrMissingReturn},
		{"void returns value", "void f() { return 1.0; } return 0;", ErrTypeMismatch},
		{"duplicate function", "float f() { return 1.0; } float f() { return 2.0; } return 0;", ErrInvalidOperation},
		{"duplicate param", "float f(float a, float a) { return a; } return 0;", ErrRedeclaredVariable},
		{"increment vector", "vec2 v = vec2(1.0,1.0); v++;", ErrInvalidOperation},
		{"increment input", "time++;", ErrInvalidOperation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			te := checkError(t, tc.src)
			if te.Code != tc.code {
				t.Errorf("expected %s, got %s (%v)", tc.code, te.Code, te)
			}
		})
	}
}

func TestCheckSlotAllocationOrder(t *testing.T) {
	script := checkSource(t, `
		float a = 1.0;
		int b = 2;
		vec2 c = vec2(0.0, 0.0);
		return a;
	`)
	want := []vm.Local{
		{Name: "a", Type: vm.TypeFixed},
		{Name: "b", Type: vm.TypeInt},
		{Name: "c", Type: vm.TypeVec2},
	}
	locals := script.Main.Locals
	if len(locals) != len(want) {
		t.Fatalf("expected %d locals, got %d", len(want), len(locals))
	}
	for i, w := range want {
		if locals[i] != w {
			t.Errorf("slot %d: expected %+v, got %+v", i, w, locals[i])
		}
	}
}

func TestCheckShadowingGetsFreshSlot(t *testing.T) {
	script := checkSource(t, `
		float x = 1.0;
		{
			float x = 2.0;
		}
		return x;
	`)
	if len(script.Main.Locals) != 2 {
		t.Fatalf("expected 2 slots for shadowed declarations, got %d", len(script.Main.Locals))
	}
}

func TestCheckSiblingScopesDistinctSlots(t *testing.T) {
	// Declarations in sibling blocks must not share storage.
	script := checkSource(t, `
		{ int a = 1; }
		{ float b = 2.0; }
		return 0;
	`)
	if len(script.Main.Locals) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(script.Main.Locals))
	}
}

func TestCheckIntPromotionInsertsConv(t *testing.T) {
	script := checkSource(t, "float x = 1 + 2.5; return x;")
	decl := script.Main.Body.Stmts[0].(*VarDeclStmt)
	bin, ok := decl.Init.(*BinaryExpr)
	if !ok {
		t.Fatalf("expected binary init, got %T", decl.Init)
	}
	if _, ok := bin.Left.(*ConvExpr); !ok {
		t.Errorf("expected int literal widened via ConvExpr, got %T", bin.Left)
	}
	if bin.Type() != vm.TypeFixed {
		t.Errorf("expected float result, got %s", bin.Type())
	}
}

func TestCheckEntryReturnInference(t *testing.T) {
	cases := []struct {
		src  string
		want vm.ValueType
	}{
		{"return 1.5;", vm.TypeFixed},
		{"return 1;", vm.TypeInt},
		{"return vec3(1.0, 0.0, 0.0);", vm.TypeVec3},
		{"float x = 1.0;", vm.TypeVoid},
		{"", vm.TypeVoid},
	}
	for _, tc := range cases {
		script := checkSource(t, tc.src)
		if script.Main.Return != tc.want {
			t.Errorf("%q: expected entry return %s, got %s", tc.src, tc.want, script.Main.Return)
		}
	}
}

func TestCheckEntryReturnsMustAgree(t *testing.T) {
	te := checkError(t, `
		if (time > 1.0) {
			return 1.0;
		}
		return vec2(0.0, 0.0);
	`)
	if te.Code != ErrTypeMismatch {
		t.Errorf("expected mismatch between inferred returns, got %s", te.Code)
	}
}

func TestCheckInputsResolved(t *testing.T) {
	script := checkSource(t, "return uv;")
	ret := script.Main.Body.Stmts[0].(*ReturnStmt)
	ref := ret.Expr.(*VarRef)
	if ref.Input != vm.InputUV || ref.Slot != -1 {
		t.Errorf("expected uv resolved as input %d, got input=%d slot=%d", vm.InputUV, ref.Input, ref.Slot)
	}
	if ref.Type() != vm.TypeVec2 {
		t.Errorf("expected vec2, got %s", ref.Type())
	}
}

func TestCheckComponentwiseExpansion(t *testing.T) {
	script := checkSource(t, "vec2 v = vec2(-1.0, 2.0); return abs(v);")
	ret := script.Main.Body.Stmts[1].(*ReturnStmt)
	ctor, ok := ret.Expr.(*CallExpr)
	if !ok || ctor.Ctor != 2 {
		t.Fatalf("expected rewritten vec2 constructor, got %s", ret.Expr)
	}
	for i, arg := range ctor.Args {
		call, ok := arg.(*CallExpr)
		if !ok || call.Builtin != vm.BuiltinAbs {
			t.Fatalf("component %d: expected scalar abs call, got %s", i, arg)
		}
		if _, ok := call.Args[0].(*SwizzleExpr); !ok {
			t.Errorf("component %d: expected swizzle argument, got %T", i, call.Args[0])
		}
	}
	if ret.Expr.Type() != vm.TypeVec2 {
		t.Errorf("expected vec2 result, got %s", ret.Expr.Type())
	}
}

func TestCheckMixedExpansionBroadcastsScalars(t *testing.T) {
	script := checkSource(t, "vec3 v = vec3(0.1, 0.5, 0.9); return clamp(v, 0.2, 0.8);")
	ret := script.Main.Body.Stmts[1].(*ReturnStmt)
	ctor := ret.Expr.(*CallExpr)
	if ctor.Ctor != 3 {
		t.Fatalf("expected vec3 expansion, got %s", ret.Expr)
	}
	inner := ctor.Args[0].(*CallExpr)
	if len(inner.Args) != 3 {
		t.Fatalf("expected 3 args per component, got %d", len(inner.Args))
	}
	if _, ok := inner.Args[1].(*Literal); !ok {
		t.Errorf("expected scalar bound broadcast as-is, got %T", inner.Args[1])
	}
}

func TestCheckNoiseOverload(t *testing.T) {
	script := checkSource(t, "return noise(uv);")
	ret := script.Main.Body.Stmts[0].(*ReturnStmt)
	call := ret.Expr.(*CallExpr)
	if call.Builtin != vm.BuiltinNoise2 {
		t.Errorf("expected vec2 overload, got builtin %d", call.Builtin)
	}

	script = checkSource(t, "return noise(time);")
	ret = script.Main.Body.Stmts[0].(*ReturnStmt)
	call = ret.Expr.(*CallExpr)
	if call.Builtin != vm.BuiltinNoise {
		t.Errorf("expected float overload, got builtin %d", call.Builtin)
	}
}

func TestCheckUserFunctionShadowsBuiltin(t *testing.T) {
	script := checkSource(t, `
		float sin(float x) { return x; }
		return sin(1.0);
	`)
	ret := script.Main.Body.Stmts[0].(*ReturnStmt)
	call := ret.Expr.(*CallExpr)
	if call.FuncIndex != 1 || call.Builtin >= 0 {
		t.Errorf("expected user function to win, got builtin=%d index=%d", call.Builtin, call.FuncIndex)
	}
}
