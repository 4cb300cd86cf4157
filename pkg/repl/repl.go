// Package repl provides a read/eval/print loop for pattern scripts.
//
// It supports readline-style command editing, and interrupts through
// Control-C.
//
// If an input line can be compiled as an expression, the REPL evaluates it
// and prints its result. Otherwise the line is compiled as statements and,
// on success, retained so later expressions can refer to the variables and
// functions it declares.
package repl

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/compiler"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/fixed"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"
)

var interrupted = make(chan os.Signal, 1)

// Session accumulates successfully compiled statement lines. Each Eval
// recompiles the whole session, so a variable declared on one line stays
// visible to every later line.
type Session struct {
	lines   []string
	machine *vm.VM

	// Inputs are the uv/coord/time values each evaluation runs against.
	Inputs vm.Inputs
}

func NewSession() *Session {
	return &Session{
		machine: vm.New(),
		Inputs: vm.Inputs{
			UV:    fixed.Vec2{fixed.Half, fixed.Half},
			Coord: fixed.Vec2{},
			Time:  0,
		},
	}
}

func (s *Session) source(last string) string {
	var b strings.Builder
	for _, l := range s.lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString(last)
	return b.String()
}

// Eval compiles and runs one input line. For an expression it returns the
// printed result; for statements it returns the empty string and remembers
// the line. Compile and runtime errors are returned, not printed.
func (s *Session) Eval(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}

	// Expression first: wrap the line in a return so the program yields it.
	// A trailing semicolon is tolerated so "1 + 2;" still prints.
	expr := strings.TrimRight(line, "; \t")
	if prog, err := compiler.Compile(s.source("return (" + expr + ");")); err == nil {
		out, err := s.machine.Run(prog, s.Inputs)
		if err != nil {
			return "", err
		}
		return out.String(), nil
	}

	// Statement fallback. Run it once so faults surface immediately; only a
	// line that compiles and runs cleanly joins the session.
	prog, err := compiler.Compile(s.source(line))
	if err != nil {
		return "", err
	}
	// A retained return would sit in front of every later expression and
	// shadow its result, so returns stay out of the session. Returns inside
	// function bodies are fine.
	if script, err := compiler.Parse(line); err == nil && anyReturns(script.Top) {
		return "", fmt.Errorf("return is not allowed here; enter the expression by itself")
	}
	if _, err := s.machine.Run(prog, s.Inputs); err != nil {
		return "", err
	}
	s.lines = append(s.lines, line)
	return "", nil
}

// anyReturns reports whether any statement in the list is or contains a
// return statement.
func anyReturns(stmts []compiler.Stmt) bool {
	for _, s := range stmts {
		switch st := s.(type) {
		case *compiler.ReturnStmt:
			return true
		case *compiler.BlockStmt:
			if anyReturns(st.Stmts) {
				return true
			}
		case *compiler.IfStmt:
			if anyReturns([]compiler.Stmt{st.Body}) {
				return true
			}
			if st.ElseBody != nil && anyReturns([]compiler.Stmt{st.ElseBody}) {
				return true
			}
		case *compiler.WhileStmt:
			if anyReturns([]compiler.Stmt{st.Body}) {
				return true
			}
		case *compiler.ForStmt:
			if anyReturns([]compiler.Stmt{st.Body}) {
				return true
			}
		}
	}
	return false
}

// Reset drops every retained line.
func (s *Session) Reset() {
	s.lines = nil
}

// REPL executes a read, eval, print loop on standard input until EOF.
func REPL() {
	signal.Notify(interrupted, os.Interrupt)
	defer signal.Stop(interrupted)

	rl, err := readline.New("> ")
	if err != nil {
		PrintError(err)
		return
	}
	defer rl.Close()

	s := NewSession()
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println(err)
				continue
			}
			if err == io.EOF {
				break
			}
			PrintError(err)
			break
		}
		out, err := s.Eval(line)
		if err != nil {
			PrintError(err)
			continue
		}
		if out != "" {
			fmt.Println(out)
		}
	}
	fmt.Println()
}

// PrintError prints the error to stderr.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, err)
}
