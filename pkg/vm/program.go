package vm

import (
	"fmt"
	"strings"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/fixed"
)

// Local is one declared local variable (or parameter) of a function.
type Local struct {
	Name string
	Type ValueType
}

// Function is one compiled function: parameters occupy the lowest local
// slots in declaration order, followed by body locals in first-declaration
// order.
type Function struct {
	Name   string
	Params []Local
	Locals []Local // includes Params as a prefix
	Return ValueType
	Code   []Instr
}

// Program is an ordered list of compiled functions. The function at index 0
// is the entry point. A Program is immutable once generated and may be
// shared read-only across VM instances.
type Program struct {
	Funcs []Function
}

// Entry returns the entry-point function.
func (p *Program) Entry() *Function {
	return &p.Funcs[0]
}

// Disassemble renders the whole program as annotated text, one instruction
// per line, for debugging and the console compiler's -dump flag.
func (p *Program) Disassemble() string {
	var sb strings.Builder
	for fi := range p.Funcs {
		fn := &p.Funcs[fi]
		fmt.Fprintf(&sb, "func %d %s(", fi, fn.Name)
		for i, prm := range fn.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s %s", prm.Type, prm.Name)
		}
		fmt.Fprintf(&sb, ") %s\n", fn.Return)
		for i, loc := range fn.Locals {
			fmt.Fprintf(&sb, "  ; local %d: %s %s\n", i, loc.Type, loc.Name)
		}
		for i, ins := range fn.Code {
			fmt.Fprintf(&sb, "  %4d  %-8s%s\n", i, ins.Op, disasmArg(fn, i, ins))
		}
	}
	return sb.String()
}

func disasmArg(fn *Function, idx int, ins Instr) string {
	switch ins.Op {
	case OpPushFixed:
		return fmt.Sprintf("%g", fixed.Fixed(ins.Arg).Float())
	case OpPushInt, OpPushBool, OpMakeVec:
		return fmt.Sprintf("%d", ins.Arg)
	case OpLoadBool, OpLoadInt, OpLoadFixed, OpLoadVec2, OpLoadVec3, OpLoadVec4, OpLoadMat3,
		OpStoreBool, OpStoreInt, OpStoreFixed, OpStoreVec2, OpStoreVec3, OpStoreVec4, OpStoreMat3:
		name := "?"
		if int(ins.Arg) < len(fn.Locals) {
			name = fn.Locals[ins.Arg].Name
		}
		return fmt.Sprintf("%d (%s)", ins.Arg, name)
	case OpLoadInput:
		switch ins.Arg {
		case InputUV:
			return "uv"
		case InputCoord:
			return "coord"
		case InputTime:
			return "time"
		}
		return fmt.Sprintf("%d", ins.Arg)
	case OpJump, OpJumpIfZero:
		return fmt.Sprintf("%+d -> %d", ins.Arg, idx+1+int(ins.Arg))
	case OpCall:
		return fmt.Sprintf("%d", ins.Arg)
	case OpCallBuiltin:
		return Builtin(ins.Arg).String()
	case OpSwizzle:
		letters := "xyzw"
		var b strings.Builder
		for _, c := range UnpackSwizzle(ins.Arg) {
			b.WriteByte(letters[c])
		}
		return "." + b.String()
	}
	return ""
}
