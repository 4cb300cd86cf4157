package compiler

import (
	"strings"
	"testing"
)

// parseExprFromStmt parses src as a script and digs the first top-level
// expression statement out of it.
func parseExprFromStmt(t *testing.T, src string) Expr {
	t.Helper()
	script, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	if len(script.Top) == 0 {
		t.Fatalf("Parse(%q): no top-level statements", src)
	}
	es, ok := script.Top[0].(*ExprStmt)
	if !ok {
		t.Fatalf("Parse(%q): expected ExprStmt, got %T", src, script.Top[0])
	}
	return es.Expr
}

func TestParsePrecedenceMulBeforeAdd(t *testing.T) {
	expr := parseExprFromStmt(t, "1 + 2 * 3;")
	add, ok := expr.(*BinaryExpr)
	if !ok || add.Op != PLUS {
		t.Fatalf("expected + at root, got %s", expr)
	}
	mul, ok := add.Right.(*BinaryExpr)
	if !ok || mul.Op != STAR {
		t.Fatalf("expected * on the right of +, got %s", add.Right)
	}
}

func TestParseParenthesesOverride(t *testing.T) {
	expr := parseExprFromStmt(t, "(1 + 2) * 3;")
	mul, ok := expr.(*BinaryExpr)
	if !ok || mul.Op != STAR {
		t.Fatalf("expected * at root, got %s", expr)
	}
	if add, ok := mul.Left.(*BinaryExpr); !ok || add.Op != PLUS {
		t.Fatalf("expected + on the left of *, got %s", mul.Left)
	}
}

func TestParseComparisonBindsLooserThanShift(t *testing.T) {
	expr := parseExprFromStmt(t, "1 << 2 < 3;")
	cmp, ok := expr.(*BinaryExpr)
	if !ok || cmp.Op != LESS {
		t.Fatalf("expected < at root, got %s", expr)
	}
	if shl, ok := cmp.Left.(*BinaryExpr); !ok || shl.Op != SHL_OP {
		t.Fatalf("expected << on the left of <, got %s", cmp.Left)
	}
}

func TestParseLogicalPrecedence(t *testing.T) {
	// a || b && c parses as a || (b && c)
	expr := parseExprFromStmt(t, "a || b && c;")
	or, ok := expr.(*LogicalExpr)
	if !ok || or.Op != OR_LOGICAL {
		t.Fatalf("expected || at root, got %s", expr)
	}
	if and, ok := or.Right.(*LogicalExpr); !ok || and.Op != AND_LOGICAL {
		t.Fatalf("expected && on the right of ||, got %s", or.Right)
	}
}

func TestParseTernary(t *testing.T) {
	expr := parseExprFromStmt(t, "a > b ? 1 : 2;")
	tern, ok := expr.(*TernaryExpr)
	if !ok {
		t.Fatalf("expected ternary, got %T", expr)
	}
	if _, ok := tern.Cond.(*BinaryExpr); !ok {
		t.Errorf("expected comparison condition, got %s", tern.Cond)
	}
}

func TestParseCompoundAssignDesugars(t *testing.T) {
	expr := parseExprFromStmt(t, "x += 2;")
	assign, ok := expr.(*AssignExpr)
	if !ok {
		t.Fatalf("expected assignment, got %T", expr)
	}
	add, ok := assign.Value.(*BinaryExpr)
	if !ok || add.Op != PLUS {
		t.Fatalf("expected x + 2 as the value, got %s", assign.Value)
	}
	if ref, ok := add.Left.(*VarRef); !ok || ref.Name != "x" {
		t.Errorf("expected x on the left of desugared +, got %s", add.Left)
	}
}

func TestParseAssignmentRightAssociative(t *testing.T) {
	expr := parseExprFromStmt(t, "a = b = 1;")
	outer, ok := expr.(*AssignExpr)
	if !ok || outer.Target.Name != "a" {
		t.Fatalf("expected a = ..., got %s", expr)
	}
	inner, ok := outer.Value.(*AssignExpr)
	if !ok || inner.Target.Name != "b" {
		t.Fatalf("expected b = 1 nested, got %s", outer.Value)
	}
}

func TestParseSwizzle(t *testing.T) {
	expr := parseExprFromStmt(t, "v.xyz;")
	sw, ok := expr.(*SwizzleExpr)
	if !ok {
		t.Fatalf("expected swizzle, got %T", expr)
	}
	if sw.Letters != "xyz" {
		t.Errorf("expected letters xyz, got %q", sw.Letters)
	}
}

func TestParseConstructorCall(t *testing.T) {
	expr := parseExprFromStmt(t, "vec3(1.0, 2.0, 3.0);")
	call, ok := expr.(*CallExpr)
	if !ok || call.Name != "vec3" {
		t.Fatalf("expected vec3 call, got %s", expr)
	}
	if len(call.Args) != 3 {
		t.Errorf("expected 3 args, got %d", len(call.Args))
	}
}

func TestParsePostfixIncrement(t *testing.T) {
	expr := parseExprFromStmt(t, "i++;")
	post, ok := expr.(*PostfixExpr)
	if !ok || post.Op != PLUS_PLUS {
		t.Fatalf("expected i++, got %s", expr)
	}
}

func TestParseFunctionDecl(t *testing.T) {
	script, err := Parse(`
		float wave(float x, int n) {
			return x;
		}
		return wave(1.0, 2);
	`)
	if err != nil {
		t.Fatal(err)
	}
	if len(script.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(script.Funcs))
	}
	fn := script.Funcs[0]
	if fn.Name != "wave" || len(fn.Params) != 2 {
		t.Errorf("unexpected function: %s", fn)
	}
	if len(script.Top) != 1 {
		t.Errorf("expected 1 top-level statement, got %d", len(script.Top))
	}
}

func TestParseForLoop(t *testing.T) {
	script, err := Parse("for (int i = 0; i < 4; i++) { }")
	if err != nil {
		t.Fatal(err)
	}
	loop, ok := script.Top[0].(*ForStmt)
	if !ok {
		t.Fatalf("expected for statement, got %T", script.Top[0])
	}
	if loop.Init == nil || loop.Cond == nil || loop.Post == nil {
		t.Errorf("expected full loop header, got %s", loop)
	}
}

func TestParseForLoopEmptyHeader(t *testing.T) {
	script, err := Parse("for (;;) { return 1; }")
	if err != nil {
		t.Fatal(err)
	}
	loop := script.Top[0].(*ForStmt)
	if loop.Init != nil || loop.Cond != nil || loop.Post != nil {
		t.Errorf("expected empty loop header, got %s", loop)
	}
}

func TestParseDanglingElse(t *testing.T) {
	script, err := Parse("if (a) if (b) return 1; else return 2;")
	if err != nil {
		t.Fatal(err)
	}
	outer := script.Top[0].(*IfStmt)
	if outer.ElseBody != nil {
		t.Fatal("else should bind to the inner if")
	}
	inner := outer.Body.(*IfStmt)
	if inner.ElseBody == nil {
		t.Fatal("inner if lost its else")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"missing semicolon", "float x = 1.0", "expected SEMICOLON"},
		{"unclosed paren", "float x = (1.0;", "expected RPAREN"},
		{"missing expression", "float x = ;", "expected expression"},
		{"void variable", "void x;", "void variable"},
		{"illegal char", "float x = @;", "unexpected character"},
		{"missing call paren", "float x = sin 1.0;", "expected SEMICOLON"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			if err == nil {
				t.Fatalf("Parse(%q): expected error", tc.src)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Parse(%q): error %q does not mention %q", tc.src, err, tc.want)
			}
		})
	}
}

func TestControlStatementsUseKeywordLine(t *testing.T) {
	// The condition's opening paren sits on the line after the keyword; the
	// statement must still report the keyword's line.
	script, err := Parse("int x = 0;\nwhile\n(x < 3) { x++; }\nif\n(x > 0) { x = 0; }\nfor\n(;;) { x++; }")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	loop, ok := script.Top[1].(*WhileStmt)
	if !ok || loop.Line != 2 {
		t.Errorf("expected while on line 2, got %#v", script.Top[1])
	}
	cond, ok := script.Top[2].(*IfStmt)
	if !ok || cond.Line != 4 {
		t.Errorf("expected if on line 4, got %#v", script.Top[2])
	}
	iter, ok := script.Top[3].(*ForStmt)
	if !ok || iter.Line != 6 {
		t.Errorf("expected for on line 6, got %#v", script.Top[3])
	}
}

func TestParseErrorIncludesSourceLine(t *testing.T) {
	_, err := Parse("float x = 1.0 +;")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "float x = 1.0 +;") {
		t.Errorf("error should quote the offending line, got %q", err)
	}
}

func TestParseDepthGuard(t *testing.T) {
	src := "float x = " + strings.Repeat("(", 500) + "1.0" + strings.Repeat(")", 500) + ";"
	_, err := Parse(src)
	if err == nil {
		t.Fatal("expected nesting error")
	}
	if !strings.Contains(err.Error(), "nesting too deep") {
		t.Errorf("expected nesting error, got %q", err)
	}
}
