package vm

import "github.com/Yona-Appletree/lpmini2024-sub004/pkg/fixed"

// Resource bounds. These are sized for the embedded deployment target: a
// runaway script must fault long before the render loop misses a frame.
const (
	DefaultStackCap  = 64
	DefaultMaxFrames = 16
	DefaultMaxSteps  = 200000
)

// Inputs is the fixed per-invocation input tuple the embedder supplies:
// normalized pixel position, integer pixel position, and animation time.
type Inputs struct {
	UV    fixed.Vec2
	Coord fixed.Vec2
	Time  fixed.Fixed
}

// VM executes compiled Programs. One invocation runs to completion
// (returned or faulted) before the next may begin; a VM instance must not
// be shared between goroutines. The Program itself is never mutated, so
// one Program may feed many VM instances.
type VM struct {
	StackCap  int
	MaxFrames int
	MaxSteps  int

	stack  []Value
	frames []frame
	in     Inputs
	steps  int

	// location of the instruction being executed, for fault reports
	fnName string
	pc     int
}

type frame struct {
	fn     *Function
	locals []Value
	pc     int
}

// New returns a VM with the default resource bounds.
func New() *VM {
	return &VM{
		StackCap:  DefaultStackCap,
		MaxFrames: DefaultMaxFrames,
		MaxSteps:  DefaultMaxSteps,
	}
}

func (m *VM) fault(code FaultCode) *RuntimeError {
	return &RuntimeError{Code: code, Function: m.fnName, PC: m.pc}
}

func (m *VM) push(v Value) *RuntimeError {
	if len(m.stack) >= m.StackCap {
		return m.fault(FaultStackOverflow)
	}
	m.stack = append(m.stack, v)
	return nil
}

func (m *VM) pop() (Value, *RuntimeError) {
	if len(m.stack) == 0 {
		e := m.fault(FaultStackUnderflow)
		e.Required = 1
		return Value{}, e
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *VM) popType(t ValueType) (Value, *RuntimeError) {
	v, err := m.pop()
	if err != nil {
		return Value{}, err
	}
	if v.Type != t {
		return Value{}, m.fault(FaultTypeMismatch)
	}
	return v, nil
}

func (m *VM) popVector() (Value, *RuntimeError) {
	v, err := m.pop()
	if err != nil {
		return Value{}, err
	}
	if !v.Type.IsVector() {
		return Value{}, m.fault(FaultTypeMismatch)
	}
	return v, nil
}

// popScalar pops any single-component value; logical opcodes use shader
// truthiness and accept bool, int and fixed alike.
func (m *VM) popScalar() (Value, *RuntimeError) {
	v, err := m.pop()
	if err != nil {
		return Value{}, err
	}
	if !v.Type.IsScalar() {
		return Value{}, m.fault(FaultTypeMismatch)
	}
	return v, nil
}

func (m *VM) binInt(f func(a, b int32) int32) *RuntimeError {
	b, err := m.popType(TypeInt)
	if err != nil {
		return err
	}
	a, err := m.popType(TypeInt)
	if err != nil {
		return err
	}
	return m.push(IntVal(f(a.Int(), b.Int())))
}

func (m *VM) binFixed(f func(a, b fixed.Fixed) fixed.Fixed) *RuntimeError {
	b, err := m.popType(TypeFixed)
	if err != nil {
		return err
	}
	a, err := m.popType(TypeFixed)
	if err != nil {
		return err
	}
	return m.push(FixedVal(f(a.Fixed(), b.Fixed())))
}

func (m *VM) cmpInt(f func(a, b int32) bool) *RuntimeError {
	b, err := m.popType(TypeInt)
	if err != nil {
		return err
	}
	a, err := m.popType(TypeInt)
	if err != nil {
		return err
	}
	return m.push(BoolVal(f(a.Int(), b.Int())))
}

func (m *VM) cmpFixed(f func(a, b fixed.Fixed) bool) *RuntimeError {
	b, err := m.popType(TypeFixed)
	if err != nil {
		return err
	}
	a, err := m.popType(TypeFixed)
	if err != nil {
		return err
	}
	return m.push(BoolVal(f(a.Fixed(), b.Fixed())))
}

func (m *VM) binVec(f func(a, b fixed.Fixed) fixed.Fixed) *RuntimeError {
	b, err := m.popVector()
	if err != nil {
		return err
	}
	a, err := m.popVector()
	if err != nil {
		return err
	}
	if a.Type != b.Type {
		return m.fault(FaultTypeMismatch)
	}
	for i := 0; i < a.Type.Components(); i++ {
		a.C[i] = f(a.C[i], b.C[i])
	}
	return m.push(a)
}

func (m *VM) pushFrame(fn *Function) *RuntimeError {
	if len(m.frames) >= m.MaxFrames {
		return m.fault(FaultCallStackOverflow)
	}
	locals := make([]Value, len(fn.Locals))
	for i, l := range fn.Locals {
		locals[i] = Zero(l.Type)
	}
	m.frames = append(m.frames, frame{fn: fn, locals: locals})
	return nil
}

// Run executes function 0 of p against the given inputs and returns its
// result, or the runtime fault that ended the invocation. Run may be called
// repeatedly; each call is an independent invocation with fresh state.
func (m *VM) Run(p *Program, in Inputs) (Value, error) {
	m.fnName, m.pc = "", 0
	if len(p.Funcs) == 0 {
		return Value{}, m.fault(FaultInvalidFunctionIndex)
	}
	if m.stack == nil {
		m.stack = make([]Value, 0, m.StackCap)
	}
	m.stack = m.stack[:0]
	m.frames = m.frames[:0]
	m.steps = 0
	m.in = in

	if err := m.pushFrame(p.Entry()); err != nil {
		return Value{}, err
	}

	for {
		fr := &m.frames[len(m.frames)-1]
		m.fnName = fr.fn.Name
		m.pc = fr.pc

		if m.steps >= m.MaxSteps {
			return Value{}, m.fault(FaultInstructionLimit)
		}
		m.steps++
		if fr.pc < 0 || fr.pc >= len(fr.fn.Code) {
			return Value{}, m.fault(FaultPCOutOfBounds)
		}
		ins := fr.fn.Code[fr.pc]
		fr.pc++

		var err *RuntimeError
		switch ins.Op {
		case OpNop:

		case OpPushFixed:
			err = m.push(FixedVal(fixed.Fixed(ins.Arg)))
		case OpPushInt:
			err = m.push(IntVal(ins.Arg))
		case OpPushBool:
			err = m.push(BoolVal(ins.Arg != 0))

		case OpDup:
			var v Value
			if v, err = m.pop(); err == nil {
				if err = m.push(v); err == nil {
					err = m.push(v)
				}
			}
		case OpPop:
			_, err = m.pop()

		case OpLoadBool, OpLoadInt, OpLoadFixed, OpLoadVec2, OpLoadVec3, OpLoadVec4, OpLoadMat3:
			slot := int(ins.Arg)
			if slot < 0 || slot >= len(fr.locals) {
				err = m.fault(FaultLocalOutOfBounds)
				break
			}
			if fr.locals[slot].Type != localType(ins.Op) {
				err = m.fault(FaultLocalTypeMismatch)
				break
			}
			err = m.push(fr.locals[slot])

		case OpStoreBool, OpStoreInt, OpStoreFixed, OpStoreVec2, OpStoreVec3, OpStoreVec4, OpStoreMat3:
			slot := int(ins.Arg)
			if slot < 0 || slot >= len(fr.locals) {
				err = m.fault(FaultLocalOutOfBounds)
				break
			}
			want := localType(ins.Op)
			if fr.locals[slot].Type != want {
				err = m.fault(FaultLocalTypeMismatch)
				break
			}
			var v Value
			if v, err = m.popType(want); err == nil {
				fr.locals[slot] = v
			}

		case OpLoadInput:
			switch ins.Arg {
			case InputUV:
				err = m.push(Vec2Val(m.in.UV))
			case InputCoord:
				err = m.push(Vec2Val(m.in.Coord))
			case InputTime:
				err = m.push(FixedVal(m.in.Time))
			default:
				err = m.fault(FaultUnsupportedOpCode)
			}

		case OpAddInt:
			err = m.binInt(func(a, b int32) int32 { return a + b })
		case OpSubInt:
			err = m.binInt(func(a, b int32) int32 { return a - b })
		case OpMulInt:
			err = m.binInt(func(a, b int32) int32 { return a * b })
		case OpDivInt, OpModInt:
			var a, b Value
			if b, err = m.popType(TypeInt); err != nil {
				break
			}
			if a, err = m.popType(TypeInt); err != nil {
				break
			}
			if b.Int() == 0 {
				err = m.fault(FaultDivisionByZero)
				break
			}
			if ins.Op == OpDivInt {
				err = m.push(IntVal(a.Int() / b.Int()))
			} else {
				err = m.push(IntVal(a.Int() % b.Int()))
			}
		case OpNegInt:
			var v Value
			if v, err = m.popType(TypeInt); err == nil {
				err = m.push(IntVal(-v.Int()))
			}

		case OpAndInt:
			err = m.binInt(func(a, b int32) int32 { return a & b })
		case OpOrInt:
			err = m.binInt(func(a, b int32) int32 { return a | b })
		case OpXorInt:
			err = m.binInt(func(a, b int32) int32 { return a ^ b })
		case OpShlInt:
			err = m.binInt(func(a, b int32) int32 { return a << (uint32(b) & 31) })
		case OpShrInt:
			err = m.binInt(func(a, b int32) int32 { return a >> (uint32(b) & 31) })
		case OpInvInt:
			var v Value
			if v, err = m.popType(TypeInt); err == nil {
				err = m.push(IntVal(^v.Int()))
			}

		case OpAddFixed:
			err = m.binFixed(func(a, b fixed.Fixed) fixed.Fixed { return a + b })
		case OpSubFixed:
			err = m.binFixed(func(a, b fixed.Fixed) fixed.Fixed { return a - b })
		case OpMulFixed:
			err = m.binFixed(func(a, b fixed.Fixed) fixed.Fixed { return a.Mul(b) })
		case OpDivFixed, OpModFixed:
			var a, b Value
			if b, err = m.popType(TypeFixed); err != nil {
				break
			}
			if a, err = m.popType(TypeFixed); err != nil {
				break
			}
			if b.Fixed() == 0 {
				err = m.fault(FaultDivisionByZero)
				break
			}
			if ins.Op == OpDivFixed {
				err = m.push(FixedVal(a.Fixed().Div(b.Fixed())))
			} else {
				err = m.push(FixedVal(a.Fixed().Mod(b.Fixed())))
			}
		case OpNegFixed:
			var v Value
			if v, err = m.popType(TypeFixed); err == nil {
				err = m.push(FixedVal(-v.Fixed()))
			}

		case OpAddVec:
			err = m.binVec(func(a, b fixed.Fixed) fixed.Fixed { return a + b })
		case OpSubVec:
			err = m.binVec(func(a, b fixed.Fixed) fixed.Fixed { return a - b })
		case OpMulVec:
			err = m.binVec(func(a, b fixed.Fixed) fixed.Fixed { return a.Mul(b) })
		case OpDivVec:
			var a, b Value
			if b, err = m.popVector(); err != nil {
				break
			}
			if a, err = m.popVector(); err != nil {
				break
			}
			if a.Type != b.Type {
				err = m.fault(FaultTypeMismatch)
				break
			}
			for i := 0; i < a.Type.Components() && err == nil; i++ {
				if b.C[i] == 0 {
					err = m.fault(FaultDivisionByZero)
				} else {
					a.C[i] = a.C[i].Div(b.C[i])
				}
			}
			if err == nil {
				err = m.push(a)
			}
		case OpNegVec:
			var v Value
			if v, err = m.popVector(); err == nil {
				for i := 0; i < v.Type.Components(); i++ {
					v.C[i] = -v.C[i]
				}
				err = m.push(v)
			}
		case OpScaleVec:
			// Order-insensitive: one operand is a vector, the other a fixed
			// scalar, so both vec*s and s*vec compile to the same opcode.
			var x, y Value
			if y, err = m.pop(); err != nil {
				break
			}
			if x, err = m.pop(); err != nil {
				break
			}
			vec, s := x, y
			if !vec.Type.IsVector() {
				vec, s = y, x
			}
			if !vec.Type.IsVector() || s.Type != TypeFixed {
				err = m.fault(FaultTypeMismatch)
				break
			}
			for i := 0; i < vec.Type.Components(); i++ {
				vec.C[i] = vec.C[i].Mul(s.C[0])
			}
			err = m.push(vec)

		case OpAddMat3, OpSubMat3:
			var a, b Value
			if b, err = m.popType(TypeMat3); err != nil {
				break
			}
			if a, err = m.popType(TypeMat3); err != nil {
				break
			}
			for i := 0; i < 9; i++ {
				if ins.Op == OpAddMat3 {
					a.C[i] += b.C[i]
				} else {
					a.C[i] -= b.C[i]
				}
			}
			err = m.push(a)
		case OpMulMat3:
			var a, b Value
			if b, err = m.popType(TypeMat3); err != nil {
				break
			}
			if a, err = m.popType(TypeMat3); err != nil {
				break
			}
			err = m.push(Mat3Val(a.Mat3().Mul(b.Mat3())))
		case OpMulMat3Vec3:
			var a, b Value
			if b, err = m.popType(TypeVec3); err != nil {
				break
			}
			if a, err = m.popType(TypeMat3); err != nil {
				break
			}
			err = m.push(Vec3Val(a.Mat3().MulVec3(b.Vec3())))

		case OpIntToFixed:
			var v Value
			if v, err = m.popType(TypeInt); err == nil {
				err = m.push(FixedVal(fixed.FromInt(v.Int())))
			}
		case OpFixedToInt:
			var v Value
			if v, err = m.popType(TypeFixed); err == nil {
				err = m.push(IntVal(int32(int64(v.Fixed()) / int64(fixed.One))))
			}

		case OpEqInt:
			err = m.cmpInt(func(a, b int32) bool { return a == b })
		case OpNeInt:
			err = m.cmpInt(func(a, b int32) bool { return a != b })
		case OpLtInt:
			err = m.cmpInt(func(a, b int32) bool { return a < b })
		case OpLeInt:
			err = m.cmpInt(func(a, b int32) bool { return a <= b })
		case OpGtInt:
			err = m.cmpInt(func(a, b int32) bool { return a > b })
		case OpGeInt:
			err = m.cmpInt(func(a, b int32) bool { return a >= b })
		case OpEqFixed:
			err = m.cmpFixed(func(a, b fixed.Fixed) bool { return a == b })
		case OpNeFixed:
			err = m.cmpFixed(func(a, b fixed.Fixed) bool { return a != b })
		case OpLtFixed:
			err = m.cmpFixed(func(a, b fixed.Fixed) bool { return a < b })
		case OpLeFixed:
			err = m.cmpFixed(func(a, b fixed.Fixed) bool { return a <= b })
		case OpGtFixed:
			err = m.cmpFixed(func(a, b fixed.Fixed) bool { return a > b })
		case OpGeFixed:
			err = m.cmpFixed(func(a, b fixed.Fixed) bool { return a >= b })

		case OpAndLogic, OpOrLogic:
			var a, b Value
			if b, err = m.popScalar(); err != nil {
				break
			}
			if a, err = m.popScalar(); err != nil {
				break
			}
			if ins.Op == OpAndLogic {
				err = m.push(BoolVal(a.Bool() && b.Bool()))
			} else {
				err = m.push(BoolVal(a.Bool() || b.Bool()))
			}
		case OpNotLogic:
			var v Value
			if v, err = m.popScalar(); err == nil {
				err = m.push(BoolVal(!v.Bool()))
			}

		case OpJump:
			fr.pc += int(ins.Arg)
		case OpJumpIfZero:
			var v Value
			if v, err = m.popScalar(); err == nil && !v.Bool() {
				fr.pc += int(ins.Arg)
			}

		case OpCall:
			idx := int(ins.Arg)
			if idx < 0 || idx >= len(p.Funcs) {
				err = m.fault(FaultInvalidFunctionIndex)
				break
			}
			err = m.pushFrame(&p.Funcs[idx])

		case OpCallBuiltin:
			err = m.callBuiltin(Builtin(ins.Arg))

		case OpReturn:
			var ret Value
			if fr.fn.Return != TypeVoid {
				if ret, err = m.popType(fr.fn.Return); err != nil {
					break
				}
			}
			m.frames = m.frames[:len(m.frames)-1]
			if len(m.frames) == 0 {
				return ret, nil
			}
			if fr.fn.Return != TypeVoid {
				err = m.push(ret)
			}

		case OpMakeVec, OpMakeMat3:
			want := int(ins.Arg)
			if ins.Op == OpMakeMat3 {
				want = 9
			}
			var out Value
			if ins.Op == OpMakeMat3 {
				out.Type = TypeMat3
			} else {
				out.Type = VecType(want)
			}
			// Components were pushed left to right; pop and fill backwards.
			got := 0
			for got < want {
				var v Value
				if v, err = m.pop(); err != nil {
					break
				}
				n := v.Type.Components()
				if v.Type == TypeMat3 || n == 0 || got+n > want {
					err = m.fault(FaultTypeMismatch)
					break
				}
				copy(out.C[want-got-n:], v.C[:n])
				got += n
			}
			if err == nil {
				err = m.push(out)
			}

		case OpSwizzle:
			var v Value
			if v, err = m.popVector(); err != nil {
				break
			}
			idx := UnpackSwizzle(ins.Arg)
			var out Value
			out.Type = VecType(len(idx))
			for i, c := range idx {
				if c >= v.Type.Components() {
					err = m.fault(FaultTypeMismatch)
					break
				}
				out.C[i] = v.C[c]
			}
			if err == nil {
				err = m.push(out)
			}

		default:
			err = m.fault(FaultUnsupportedOpCode)
		}

		if err != nil {
			return Value{}, err
		}
	}
}
