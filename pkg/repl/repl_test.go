package repl

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/fixed"
)

func TestEvalExpression(t *testing.T) {
	s := NewSession()
	out, err := s.Eval("1 + 2")
	be.Err(t, err, nil)
	be.Equal(t, out, "3")
}

func TestEvalExpressionWithSemicolon(t *testing.T) {
	s := NewSession()
	out, err := s.Eval("2.0 * 3.0;")
	be.Err(t, err, nil)
	be.Equal(t, out, "6")
}

func TestStatementPersistsAcrossLines(t *testing.T) {
	s := NewSession()
	out, err := s.Eval("float x = 2.5;")
	be.Err(t, err, nil)
	be.Equal(t, out, "")

	out, err = s.Eval("x * 2.0")
	be.Err(t, err, nil)
	be.Equal(t, out, "5")
}

func TestFunctionDeclarationPersists(t *testing.T) {
	s := NewSession()
	_, err := s.Eval("float double(float v) { return v * 2.0; }")
	be.Err(t, err, nil)

	out, err := s.Eval("double(1.5)")
	be.Err(t, err, nil)
	be.Equal(t, out, "3")
}

func TestCompileErrorDoesNotJoinSession(t *testing.T) {
	s := NewSession()
	_, err := s.Eval("float x = ;")
	if err == nil {
		t.Fatal("expected a compile error")
	}

	// The broken line must not poison later input.
	out, err := s.Eval("1 + 1")
	be.Err(t, err, nil)
	be.Equal(t, out, "2")
}

func TestRuntimeFaultReported(t *testing.T) {
	s := NewSession()
	_, err := s.Eval("1 / 0")
	if err == nil {
		t.Fatal("expected a runtime fault")
	}
}

func TestFaultingStatementDoesNotJoinSession(t *testing.T) {
	s := NewSession()
	_, err := s.Eval("int x = 1 / 0;")
	if err == nil {
		t.Fatal("expected a runtime fault")
	}
	out, err := s.Eval("2 + 2")
	be.Err(t, err, nil)
	be.Equal(t, out, "4")
}

func TestReturnStatementRejected(t *testing.T) {
	s := NewSession()
	_, err := s.Eval("return 1.0;")
	if err == nil {
		t.Fatal("expected a rejection for a bare return")
	}

	// The session must stay clean: later expressions print their own value,
	// not a stale return's.
	out, err := s.Eval("2 + 2")
	be.Err(t, err, nil)
	be.Equal(t, out, "4")
}

func TestNestedReturnRejected(t *testing.T) {
	s := NewSession()
	_, err := s.Eval("if (1 > 0) { return 5.0; }")
	if err == nil {
		t.Fatal("expected a rejection for a return inside a block")
	}
	out, err := s.Eval("1 + 1")
	be.Err(t, err, nil)
	be.Equal(t, out, "2")
}

func TestInputsVisible(t *testing.T) {
	s := NewSession()
	s.Inputs.Time = fixed.FromInt(3)
	out, err := s.Eval("time")
	be.Err(t, err, nil)
	be.Equal(t, out, "3")

	out, err = s.Eval("uv.x")
	be.Err(t, err, nil)
	be.Equal(t, out, "0.5")
}

func TestVectorResultPrinted(t *testing.T) {
	s := NewSession()
	out, err := s.Eval("vec2(1.0, 2.0)")
	be.Err(t, err, nil)
	be.Equal(t, out, "vec2(1, 2)")
}

func TestReset(t *testing.T) {
	s := NewSession()
	_, err := s.Eval("int n = 7;")
	be.Err(t, err, nil)
	s.Reset()
	_, err = s.Eval("n")
	if err == nil {
		t.Fatal("expected an undefined variable error after reset")
	}
}

func TestBlankLineIsNoop(t *testing.T) {
	s := NewSession()
	out, err := s.Eval("   ")
	be.Err(t, err, nil)
	be.Equal(t, out, "")
}
