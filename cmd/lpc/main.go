// Command lpc compiles and runs pattern scripts from the console. It can
// dump each compilation stage, evaluate a script once, or write a rendered
// frame as a PNG. With no script and an interactive terminal it starts the
// REPL.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/compiler"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/fixed"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/render"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/repl"
	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"
)

func main() {
	showTokens := flag.Bool("tokens", false, "print the token stream")
	showAST := flag.Bool("ast", false, "print the checked syntax tree")
	showDis := flag.Bool("dis", false, "print the generated bytecode")
	noOpt := flag.Bool("no-opt", false, "disable all optimizer passes")
	snapshot := flag.String("snapshot", "", "render one frame and write it to this PNG path")
	width := flag.Int("width", 64, "frame width in pixels")
	height := flag.Int("height", 64, "frame height in pixels")
	scale := flag.Int("scale", 4, "nearest-neighbor scale factor for snapshots")
	timeArg := flag.Float64("time", 0, "time input in seconds")
	flag.Parse()

	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "usage: lpc [flags] [script.lp]")
		os.Exit(2)
	}

	var src string
	if flag.NArg() == 1 {
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read %q: %v\n", flag.Arg(0), err)
			os.Exit(1)
		}
		src = string(data)
	} else {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			repl.REPL()
			return
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	if *showTokens {
		tokens := compiler.Lex(src)
		fmt.Printf("Tokens (%d)\n", len(tokens))
		for _, tok := range tokens {
			fmt.Println(" ", tok)
		}
		fmt.Println()
	}

	if *showAST {
		script, err := compiler.Parse(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, "parse error:", err)
			os.Exit(1)
		}
		if err := compiler.Check(script); err != nil {
			fmt.Fprintln(os.Stderr, "type error:", err)
			os.Exit(1)
		}
		fmt.Println("AST")
		for _, fn := range script.Funcs {
			fmt.Println(" ", fn)
		}
		for _, s := range script.Main.Body.Stmts {
			fmt.Println(" ", s)
		}
		fmt.Println()
	}

	opts := compiler.DefaultOptions()
	if *noOpt {
		opts = compiler.Options{}
	}
	prog, err := compiler.CompileWithOptions(src, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(1)
	}

	if *showDis {
		fmt.Print(prog.Disassemble())
		fmt.Println()
	}

	t := fixed.FromFloat(*timeArg)

	if *snapshot != "" {
		r := render.New(prog, *width, *height)
		if err := r.SaveSnapshot(*snapshot, t, *scale); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %q: %v\n", *snapshot, err)
			os.Exit(1)
		}
		if n := r.Faults(); n > 0 {
			fmt.Fprintf(os.Stderr, "%d of %d pixels faulted\n", n, *width**height)
		}
		fmt.Println("wrote", *snapshot)
		return
	}

	// One-shot evaluation at the frame center.
	machine := vm.New()
	out, err := machine.Run(prog, vm.Inputs{
		UV:    fixed.Vec2{fixed.Half, fixed.Half},
		Coord: fixed.Vec2{fixed.FromInt(int32(*width / 2)), fixed.FromInt(int32(*height / 2))},
		Time:  t,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "runtime fault:", err)
		os.Exit(1)
	}
	if out.Type != vm.TypeVoid {
		fmt.Println(out)
	}
}
