package compiler

import (
	"testing"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"
)

// generate compiles src with no optimization so tests can assert on the
// raw instruction stream.
func generate(t *testing.T, src string) *vm.Program {
	t.Helper()
	prog, err := CompileWithOptions(src, Options{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return prog
}

func TestGenEntryIsFunctionZero(t *testing.T) {
	prog := generate(t, `
		float double(float x) { return x + x; }
		return double(2.0);
	`)
	if len(prog.Funcs) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(prog.Funcs))
	}
	if prog.Funcs[0].Name != "main" {
		t.Errorf("expected entry at index 0, got %q", prog.Funcs[0].Name)
	}
	if prog.Funcs[1].Name != "double" {
		t.Errorf("expected double at index 1, got %q", prog.Funcs[1].Name)
	}
}

func TestGenParamPrologueStoresReversed(t *testing.T) {
	prog := generate(t, `
		float f(float a, int b) { return a; }
		return f(1.0, 2);
	`)
	code := prog.Funcs[1].Code
	// Arguments arrive pushed left to right; the prologue pops the last
	// argument first.
	if code[0].Op != vm.OpStoreInt || code[0].Arg != 1 {
		t.Errorf("instr 0: expected STI 1, got %s %d", code[0].Op, code[0].Arg)
	}
	if code[1].Op != vm.OpStoreFixed || code[1].Arg != 0 {
		t.Errorf("instr 1: expected STF 0, got %s %d", code[1].Op, code[1].Arg)
	}
}

func TestGenIfElseJumpOffsets(t *testing.T) {
	prog := generate(t, `
		int r = 0;
		if (time > 1.0) { r = 1; } else { r = 2; }
		return r;
	`)
	code := prog.Funcs[0].Code

	// Walk each jump and make sure the relative offset lands inside the
	// function on an instruction boundary.
	for i, ins := range code {
		if ins.Op == vm.OpJump || ins.Op == vm.OpJumpIfZero {
			target := i + 1 + int(ins.Arg)
			if target < 0 || target > len(code) {
				t.Errorf("jump at %d targets %d, out of [0,%d]", i, target, len(code))
			}
		}
	}
}

func TestGenWhileLoopJumpsBack(t *testing.T) {
	prog := generate(t, `
		int i = 0;
		while (i < 3) { i = i + 1; }
		return i;
	`)
	code := prog.Funcs[0].Code
	foundBack := false
	for i, ins := range code {
		if ins.Op == vm.OpJump && int(ins.Arg) < 0 {
			target := i + 1 + int(ins.Arg)
			if target < 0 {
				t.Fatalf("backward jump at %d overshoots to %d", i, target)
			}
			foundBack = true
		}
	}
	if !foundBack {
		t.Error("expected a backward jump for the loop")
	}
}

func TestGenVoidEntryEndsWithReturn(t *testing.T) {
	prog := generate(t, "float x = 1.0;")
	code := prog.Funcs[0].Code
	if len(code) == 0 || code[len(code)-1].Op != vm.OpReturn {
		t.Errorf("expected trailing return, got %v", code)
	}
	if prog.Funcs[0].Return != vm.TypeVoid {
		t.Errorf("expected void entry, got %s", prog.Funcs[0].Return)
	}
}

func TestGenNonVoidFallOffReturnsZero(t *testing.T) {
	// Inferred float entry with a conditional return: the fall-off path
	// must still return a float.
	prog := generate(t, `
		if (time > 100.0) { return 5.0; }
	`)
	m := vm.New()
	out, err := m.Run(prog, vm.Inputs{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Type != vm.TypeFixed || out.Fixed() != 0 {
		t.Errorf("expected 0.0 fall-off value, got %s", out)
	}
}

func TestGenAssignStatementLeavesStackBalanced(t *testing.T) {
	// If assignment-as-statement left its value behind, the stack would
	// outgrow its capacity over many iterations.
	prog := generate(t, `
		float acc = 0.0;
		for (int i = 0; i < 200; i++) {
			acc = acc + 0.5;
		}
		return acc;
	`)
	m := vm.New()
	out, err := m.Run(prog, vm.Inputs{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Fixed().Float() != 100.0 {
		t.Errorf("expected 100.0, got %v", out.Fixed().Float())
	}
}

func TestGenDisassembleRoundTrips(t *testing.T) {
	prog := generate(t, `
		vec3 c = vec3(uv, 0.5);
		return c * 2.0;
	`)
	text := prog.Disassemble()
	if text == "" {
		t.Fatal("empty disassembly")
	}
}
