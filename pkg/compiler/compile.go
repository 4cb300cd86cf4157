// Package compiler turns shader-style source text into programs for the
// lighting VM: lexing, parsing, type checking, optional optimization, and
// bytecode generation.
package compiler

import "github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"

// Options selects the optimization passes. The zero value disables them
// all, which is useful when inspecting generated code.
type Options struct {
	FoldConstants bool
	Simplify      bool
	DeadCode      bool
	Peephole      bool
}

// DefaultOptions enables every pass.
func DefaultOptions() Options {
	return Options{FoldConstants: true, Simplify: true, DeadCode: true, Peephole: true}
}

// Compile runs the full pipeline with default options.
func Compile(src string) (*vm.Program, error) {
	return CompileWithOptions(src, DefaultOptions())
}

// CompileWithOptions runs lex, parse, check, the selected optimization
// passes, and code generation.
func CompileWithOptions(src string, opts Options) (*vm.Program, error) {
	script, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if err := Check(script); err != nil {
		return nil, err
	}
	if opts.FoldConstants || opts.Simplify || opts.DeadCode {
		optimize(script, opts)
	}
	prog, err := Generate(script)
	if err != nil {
		return nil, err
	}
	if opts.Peephole {
		peephole(prog)
	}
	return prog, nil
}
