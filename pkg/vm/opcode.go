package vm

import "fmt"

// Opcode identifies one typed instruction in the closed instruction set.
// Load/store and arithmetic opcodes are specialized by operand type; there
// is no untyped slot access.
type Opcode int

const (
	OpNop Opcode = iota

	// Constants and stack shuffling
	OpPushFixed // Arg: raw Q16.16 bits
	OpPushInt   // Arg: raw int32
	OpPushBool  // Arg: 0 or 1
	OpDup
	OpPop

	// Typed local load (Arg: slot index)
	OpLoadBool
	OpLoadInt
	OpLoadFixed
	OpLoadVec2
	OpLoadVec3
	OpLoadVec4
	OpLoadMat3

	// Typed local store (Arg: slot index)
	OpStoreBool
	OpStoreInt
	OpStoreFixed
	OpStoreVec2
	OpStoreVec3
	OpStoreVec4
	OpStoreMat3

	// External inputs (Arg: InputUV, InputCoord or InputTime)
	OpLoadInput

	// Integer arithmetic
	OpAddInt
	OpSubInt
	OpMulInt
	OpDivInt
	OpModInt
	OpNegInt

	// Integer bitwise
	OpAndInt
	OpOrInt
	OpXorInt
	OpShlInt
	OpShrInt
	OpInvInt

	// Fixed-point arithmetic
	OpAddFixed
	OpSubFixed
	OpMulFixed
	OpDivFixed
	OpModFixed
	OpNegFixed

	// Component-wise vector arithmetic (operand widths must match)
	OpAddVec
	OpSubVec
	OpMulVec
	OpDivVec
	OpNegVec
	OpScaleVec // vec * fixed scalar

	// Matrix arithmetic
	OpAddMat3
	OpSubMat3
	OpMulMat3
	OpMulMat3Vec3

	// Conversions
	OpIntToFixed
	OpFixedToInt // truncates toward zero

	// Comparisons: pop two, push Bool (fixed 1.0 / 0.0)
	OpEqInt
	OpNeInt
	OpLtInt
	OpLeInt
	OpGtInt
	OpGeInt
	OpEqFixed
	OpNeFixed
	OpLtFixed
	OpLeFixed
	OpGtFixed
	OpGeFixed

	// Logical: operate on scalar truthiness, push Bool
	OpAndLogic
	OpOrLogic
	OpNotLogic

	// Control flow (Arg: relative offset, target - (idx + 1))
	OpJump
	OpJumpIfZero

	// Calls
	OpCall        // Arg: function index; args pushed left to right
	OpCallBuiltin // Arg: Builtin id
	OpReturn      // pops the return value for non-void functions

	// Aggregate construction and swizzling
	OpMakeVec  // Arg: target width 2..4; pops values totalling Arg components
	OpMakeMat3 // pops values totalling 9 components
	OpSwizzle  // Arg: packed swizzle, see PackSwizzle
)

// External input ids for OpLoadInput.
const (
	InputUV = iota
	InputCoord
	InputTime
)

var opcodeNames = [...]string{
	OpNop:         "NOP",
	OpPushFixed:   "PUSHF",
	OpPushInt:     "PUSHI",
	OpPushBool:    "PUSHB",
	OpDup:         "DUP",
	OpPop:         "POP",
	OpLoadBool:    "LOADB",
	OpLoadInt:     "LOADI",
	OpLoadFixed:   "LOADF",
	OpLoadVec2:    "LOADV2",
	OpLoadVec3:    "LOADV3",
	OpLoadVec4:    "LOADV4",
	OpLoadMat3:    "LOADM3",
	OpStoreBool:   "STOREB",
	OpStoreInt:    "STOREI",
	OpStoreFixed:  "STOREF",
	OpStoreVec2:   "STOREV2",
	OpStoreVec3:   "STOREV3",
	OpStoreVec4:   "STOREV4",
	OpStoreMat3:   "STOREM3",
	OpLoadInput:   "INPUT",
	OpAddInt:      "ADDI",
	OpSubInt:      "SUBI",
	OpMulInt:      "MULI",
	OpDivInt:      "DIVI",
	OpModInt:      "MODI",
	OpNegInt:      "NEGI",
	OpAndInt:      "ANDI",
	OpOrInt:       "ORI",
	OpXorInt:      "XORI",
	OpShlInt:      "SHLI",
	OpShrInt:      "SHRI",
	OpInvInt:      "INVI",
	OpAddFixed:    "ADDF",
	OpSubFixed:    "SUBF",
	OpMulFixed:    "MULF",
	OpDivFixed:    "DIVF",
	OpModFixed:    "MODF",
	OpNegFixed:    "NEGF",
	OpAddVec:      "ADDV",
	OpSubVec:      "SUBV",
	OpMulVec:      "MULV",
	OpDivVec:      "DIVV",
	OpNegVec:      "NEGV",
	OpScaleVec:    "SCALEV",
	OpAddMat3:     "ADDM3",
	OpSubMat3:     "SUBM3",
	OpMulMat3:     "MULM3",
	OpMulMat3Vec3: "MULM3V3",
	OpIntToFixed:  "I2F",
	OpFixedToInt:  "F2I",
	OpEqInt:       "EQI",
	OpNeInt:       "NEI",
	OpLtInt:       "LTI",
	OpLeInt:       "LEI",
	OpGtInt:       "GTI",
	OpGeInt:       "GEI",
	OpEqFixed:     "EQF",
	OpNeFixed:     "NEF",
	OpLtFixed:     "LTF",
	OpLeFixed:     "LEF",
	OpGtFixed:     "GTF",
	OpGeFixed:     "GEF",
	OpAndLogic:    "LAND",
	OpOrLogic:     "LOR",
	OpNotLogic:    "LNOT",
	OpJump:        "JMP",
	OpJumpIfZero:  "JZ",
	OpCall:        "CALL",
	OpCallBuiltin: "BUILTIN",
	OpReturn:      "RET",
	OpMakeVec:     "MAKEV",
	OpMakeMat3:    "MAKEM3",
	OpSwizzle:     "SWIZ",
}

func (op Opcode) String() string {
	if int(op) >= 0 && int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// Instr is one instruction: an opcode plus its immediate argument. Opcodes
// without an immediate leave Arg zero.
type Instr struct {
	Op  Opcode
	Arg int32
}

// LoadOp returns the load opcode specialized for t.
func LoadOp(t ValueType) (Opcode, bool) {
	switch t {
	case TypeBool:
		return OpLoadBool, true
	case TypeInt:
		return OpLoadInt, true
	case TypeFixed:
		return OpLoadFixed, true
	case TypeVec2:
		return OpLoadVec2, true
	case TypeVec3:
		return OpLoadVec3, true
	case TypeVec4:
		return OpLoadVec4, true
	case TypeMat3:
		return OpLoadMat3, true
	}
	return OpNop, false
}

// StoreOp returns the store opcode specialized for t.
func StoreOp(t ValueType) (Opcode, bool) {
	switch t {
	case TypeBool:
		return OpStoreBool, true
	case TypeInt:
		return OpStoreInt, true
	case TypeFixed:
		return OpStoreFixed, true
	case TypeVec2:
		return OpStoreVec2, true
	case TypeVec3:
		return OpStoreVec3, true
	case TypeVec4:
		return OpStoreVec4, true
	case TypeMat3:
		return OpStoreMat3, true
	}
	return OpNop, false
}

// localType maps a typed load/store opcode back to the slot type it expects.
func localType(op Opcode) ValueType {
	switch op {
	case OpLoadBool, OpStoreBool:
		return TypeBool
	case OpLoadInt, OpStoreInt:
		return TypeInt
	case OpLoadFixed, OpStoreFixed:
		return TypeFixed
	case OpLoadVec2, OpStoreVec2:
		return TypeVec2
	case OpLoadVec3, OpStoreVec3:
		return TypeVec3
	case OpLoadVec4, OpStoreVec4:
		return TypeVec4
	case OpLoadMat3, OpStoreMat3:
		return TypeMat3
	}
	return TypeVoid
}

// PackSwizzle encodes up to four component indices (0..3) into an Arg.
// The low byte holds the count; component i occupies bits 8+2i.
func PackSwizzle(idx []int) int32 {
	arg := int32(len(idx))
	for i, c := range idx {
		arg |= int32(c) << (8 + 2*i)
	}
	return arg
}

// UnpackSwizzle reverses PackSwizzle.
func UnpackSwizzle(arg int32) []int {
	n := int(arg & 0xFF)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = int(arg>>(8+2*i)) & 0x3
	}
	return idx
}
