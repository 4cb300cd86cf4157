package compiler

import (
	"testing"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/fixed"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"
)

func optimized(t *testing.T, src string, opts Options) *vm.Program {
	t.Helper()
	prog, err := CompileWithOptions(src, opts)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return prog
}

func TestFoldConstantExpression(t *testing.T) {
	prog := optimized(t, "return 2.0 * 3.0 + 1.0;", DefaultOptions())
	code := prog.Funcs[0].Code
	if len(code) != 2 {
		t.Fatalf("expected push+return, got %d instructions:\n%s", len(code), prog.Disassemble())
	}
	if code[0].Op != vm.OpPushFixed || fixed.Fixed(code[0].Arg) != fixed.FromFloat(7.0) {
		t.Errorf("expected PUSHF 7.0, got %s %d", code[0].Op, code[0].Arg)
	}
}

func TestFoldComparisonToBool(t *testing.T) {
	prog := optimized(t, "return 3 > 2;", Options{FoldConstants: true})
	code := prog.Funcs[0].Code
	if code[0].Op != vm.OpPushBool || code[0].Arg != 1 {
		t.Errorf("expected PUSHB 1, got %s %d", code[0].Op, code[0].Arg)
	}
}

func TestSimplifyDoubleNegation(t *testing.T) {
	prog := optimized(t, "float x = time; return -(-x);", Options{Simplify: true})
	for _, ins := range prog.Funcs[0].Code {
		if ins.Op == vm.OpNegFixed {
			t.Fatalf("negation survived simplification:\n%s", prog.Disassemble())
		}
	}
}

func TestFoldKeepsDivisionByZero(t *testing.T) {
	// A constant zero divisor still faults at run time; folding must not
	// hide it.
	prog := optimized(t, "return 1.0 / 0.0;", DefaultOptions())
	m := vm.New()
	_, err := m.Run(prog, vm.Inputs{})
	if err == nil {
		t.Fatal("expected DivisionByZero at run time")
	}
}

func TestSimplifyIdentities(t *testing.T) {
	cases := []string{
		"float x = time; return x * 1.0;",
		"float x = time; return 1.0 * x;",
		"float x = time; return x + 0.0;",
		"float x = time; return 0.0 + x;",
		"float x = time; return x - 0.0;",
		"float x = time; return x / 1.0;",
	}
	for _, src := range cases {
		plain := optimized(t, src, Options{})
		simpler := optimized(t, src, Options{Simplify: true})
		if len(simpler.Funcs[0].Code) >= len(plain.Funcs[0].Code) {
			t.Errorf("%q: expected shorter code, %d vs %d", src,
				len(simpler.Funcs[0].Code), len(plain.Funcs[0].Code))
		}
	}
}

func TestSimplifyMulZeroRequiresPureOperand(t *testing.T) {
	// x*0 folds away only when dropping x cannot hide a fault.
	src := "float x = 1.0 / (time - 2.0); return x * 0.0;"
	prog := optimized(t, src, DefaultOptions())
	m := vm.New()
	_, err := m.Run(prog, vm.Inputs{Time: fixed.FromFloat(2.0)})
	if err == nil {
		t.Fatal("expected the division fault to survive optimization")
	}
}

func TestDeadCodeRemovesConstantBranch(t *testing.T) {
	prog := optimized(t, `
		float x = 1.0;
		if (false) {
			x = 2.0;
		}
		return x;
	`, DefaultOptions())
	for _, ins := range prog.Funcs[0].Code {
		if ins.Op == vm.OpJumpIfZero {
			t.Fatalf("constant branch survived:\n%s", prog.Disassemble())
		}
	}
}

func TestDeadCodeRemovesUnusedPureStatement(t *testing.T) {
	withDead := optimized(t, "1.0 + 2.0; return 5;", Options{})
	without := optimized(t, "1.0 + 2.0; return 5;", DefaultOptions())
	if len(without.Funcs[0].Code) >= len(withDead.Funcs[0].Code) {
		t.Errorf("expected pure statement removed, %d vs %d instructions",
			len(without.Funcs[0].Code), len(withDead.Funcs[0].Code))
	}
}

func TestDeadCodeStopsAfterReturn(t *testing.T) {
	prog := optimized(t, `
		return 1.0;
		float x = 2.0;
	`, DefaultOptions())
	code := prog.Funcs[0].Code
	if len(code) != 2 {
		t.Errorf("expected push+return only, got:\n%s", prog.Disassemble())
	}
}

func TestPeepholeRemovesPushPop(t *testing.T) {
	// An unused call result compiles to a push/pop pair at the bytecode
	// level; with AST passes off, only the peephole can remove dead pushes.
	src := "int x = 1; x = 2; return x;"
	plain := optimized(t, src, Options{})
	peep := optimized(t, src, Options{Peephole: true})
	if len(peep.Funcs[0].Code) > len(plain.Funcs[0].Code) {
		t.Errorf("peephole grew the code: %d vs %d", len(peep.Funcs[0].Code), len(plain.Funcs[0].Code))
	}
}

func TestPeepholeDropsUnreachableTail(t *testing.T) {
	// The synthesized fall-off epilogue after an unconditional return is
	// unreachable and should disappear.
	withOpt := optimized(t, "float f(float x) { return x; } return f(1.0);", Options{Peephole: true})
	code := withOpt.Funcs[1].Code
	returns := 0
	for _, ins := range code {
		if ins.Op == vm.OpReturn {
			returns++
		}
	}
	if returns != 1 {
		t.Errorf("expected a single return after trimming, got %d:\n%s", returns, withOpt.Disassemble())
	}
}

func TestPeepholeKeepsJumpTargetsIntact(t *testing.T) {
	// A loop whose body ends in store/load of the same slot exercises the
	// jump-offset remapping.
	src := `
		int i = 0;
		while (i < 3) {
			i = i + 1;
		}
		return i;
	`
	prog := optimized(t, src, Options{Peephole: true})
	m := vm.New()
	out, err := m.Run(prog, vm.Inputs{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Int() != 3 {
		t.Errorf("expected 3, got %s", out)
	}
}
