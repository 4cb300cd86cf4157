package compiler

import "github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"

// peephole shrinks each function's code: cancelling instruction pairs,
// then instructions no control path reaches. Relative jump offsets are
// recomputed after every removal, so the pass can run repeatedly until it
// stops finding work.
func peephole(p *vm.Program) {
	for i := range p.Funcs {
		for {
			code, changed := peepholeOnce(p.Funcs[i].Code)
			p.Funcs[i].Code = code
			if !changed {
				break
			}
		}
	}
}

func isJump(op vm.Opcode) bool {
	return op == vm.OpJump || op == vm.OpJumpIfZero
}

// jumpTargets collects the set of instruction indices some jump lands on.
func jumpTargets(code []vm.Instr) map[int]bool {
	targets := make(map[int]bool)
	for i, ins := range code {
		if isJump(ins.Op) {
			targets[i+1+int(ins.Arg)] = true
		}
	}
	return targets
}

// cancels reports whether the pair (a, b) is a net no-op that can be
// removed when control only enters at a.
func cancels(a, b vm.Instr) bool {
	if b.Op == vm.OpPop {
		switch a.Op {
		case vm.OpPushFixed, vm.OpPushInt, vm.OpPushBool, vm.OpDup:
			return true
		}
	}
	// Reloading the slot just stored reduces to keeping the value; only the
	// pure load-then-store of the very same slot is a true no-op.
	if la, okA := loadSlot(a); okA {
		if lb, okB := storeSlot(b); okB && la == lb && storeForLoad(a.Op) == b.Op {
			return true
		}
	}
	return false
}

func loadSlot(ins vm.Instr) (int32, bool) {
	switch ins.Op {
	case vm.OpLoadBool, vm.OpLoadInt, vm.OpLoadFixed,
		vm.OpLoadVec2, vm.OpLoadVec3, vm.OpLoadVec4, vm.OpLoadMat3:
		return ins.Arg, true
	}
	return 0, false
}

func storeSlot(ins vm.Instr) (int32, bool) {
	switch ins.Op {
	case vm.OpStoreBool, vm.OpStoreInt, vm.OpStoreFixed,
		vm.OpStoreVec2, vm.OpStoreVec3, vm.OpStoreVec4, vm.OpStoreMat3:
		return ins.Arg, true
	}
	return 0, false
}

// storeForLoad maps a load opcode to the store of the same type.
func storeForLoad(op vm.Opcode) vm.Opcode {
	return op + (vm.OpStoreBool - vm.OpLoadBool)
}

func peepholeOnce(code []vm.Instr) ([]vm.Instr, bool) {
	if len(code) == 0 {
		return code, false
	}
	targets := jumpTargets(code)

	keep := make([]bool, len(code))
	for i := range keep {
		keep[i] = true
	}

	// Cancelling pairs. Neither half may be a jump target: removal would
	// change what the jumping path executes.
	for i := 0; i+1 < len(code); i++ {
		if !keep[i] || !keep[i+1] {
			continue
		}
		if targets[i] || targets[i+1] {
			continue
		}
		if cancels(code[i], code[i+1]) {
			keep[i], keep[i+1] = false, false
			i++
		}
	}

	// Reachability from the function entry.
	reach := make([]bool, len(code))
	var walk func(int)
	walk = func(pc int) {
		for pc >= 0 && pc < len(code) && !reach[pc] {
			reach[pc] = true
			ins := code[pc]
			switch ins.Op {
			case vm.OpJump:
				pc = pc + 1 + int(ins.Arg)
			case vm.OpJumpIfZero:
				walk(pc + 1 + int(ins.Arg))
				pc++
			case vm.OpReturn:
				return
			default:
				pc++
			}
		}
	}
	walk(0)

	changed := false
	for i := range keep {
		if keep[i] && !reach[i] {
			keep[i] = false
		}
		if !keep[i] {
			changed = true
		}
	}
	if !changed {
		return code, false
	}

	// Rebuild, remapping every surviving jump. newIndex[i] is the new slot
	// of old instruction i; removed instructions map to the next survivor
	// so jumps that skipped them still land right.
	newIndex := make([]int, len(code)+1)
	n := 0
	for i, k := range keep {
		newIndex[i] = n
		if k {
			n++
		}
	}
	newIndex[len(code)] = n

	out := make([]vm.Instr, 0, n)
	for i, k := range keep {
		if !k {
			continue
		}
		ins := code[i]
		if isJump(ins.Op) {
			oldTarget := i + 1 + int(ins.Arg)
			if oldTarget < 0 {
				oldTarget = 0
			}
			if oldTarget > len(code) {
				oldTarget = len(code)
			}
			ins.Arg = int32(newIndex[oldTarget] - (newIndex[i] + 1))
		}
		out = append(out, ins)
	}
	return out, true
}
