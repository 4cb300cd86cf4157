package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"
)

// Symbol is one resolved variable: its local slot and declared type.
// ReadOnly marks the engine-provided inputs (uv, coord, time), which can be
// read anywhere but never assigned.
type Symbol struct {
	Slot     int
	Type     vm.ValueType
	ReadOnly bool
}

// SymbolTable maps variable names to local slots inside one function.
//
// Scopes nest lexically: a block introduces a scope, and a name declared in
// an inner scope shadows the same name outside. Every declaration gets a
// fresh slot even when it shadows, so sibling blocks never alias storage.
type SymbolTable struct {
	// Stack of scopes, innermost last.
	scopes []map[string]Symbol

	// Every slot allocated for the function, in declaration order. This
	// becomes Function.Locals so the code generator numbers slots the same
	// way the checker did.
	slots []vm.Local
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{scopes: []map[string]Symbol{make(map[string]Symbol)}}
}

func (s *SymbolTable) EnterScope() {
	s.scopes = append(s.scopes, make(map[string]Symbol))
}

func (s *SymbolTable) ExitScope() {
	if len(s.scopes) > 1 {
		s.scopes = s.scopes[:len(s.scopes)-1]
	}
}

// Define allocates the next slot for name in the current scope. It reports
// false if name is already declared in this same scope (shadowing an outer
// scope is fine, redeclaring within one is not).
func (s *SymbolTable) Define(name string, t vm.ValueType) (Symbol, bool) {
	scope := s.scopes[len(s.scopes)-1]
	if _, exists := scope[name]; exists {
		return Symbol{}, false
	}

	sym := Symbol{Slot: len(s.slots), Type: t}
	scope[name] = sym
	s.slots = append(s.slots, vm.Local{Name: name, Type: t})
	return sym, true
}

// DefineInput declares a read-only engine input in the outermost scope.
// Inputs do not consume slots; they are loaded with a dedicated opcode.
func (s *SymbolTable) DefineInput(name string, t vm.ValueType, input int) {
	s.scopes[0][name] = Symbol{Slot: input, Type: t, ReadOnly: true}
}

// Lookup searches scopes from innermost to outermost.
func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if sym, ok := s.scopes[i][name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// Locals returns every slot allocated so far, in declaration order.
func (s *SymbolTable) Locals() []vm.Local {
	return s.slots
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	for i, scope := range s.scopes {
		fmt.Fprintf(&sb, "Scope %d:\n", i)
		names := make([]string, 0, len(scope))
		for name := range scope {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sym := scope[name]
			if sym.ReadOnly {
				fmt.Fprintf(&sb, "  %-16s input %d (%s)\n", name, sym.Slot, sym.Type)
			} else {
				fmt.Fprintf(&sb, "  %-16s slot %d (%s)\n", name, sym.Slot, sym.Type)
			}
		}
	}
	return sb.String()
}
