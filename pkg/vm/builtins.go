package vm

import (
	"fmt"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/fixed"
)

// Builtin identifies one entry of the fixed builtin-function catalog.
// Scalar builtins (sin .. noise) take and return fixed-point scalars; calls
// with vector arguments are expanded component-wise by the type checker, so
// the VM only ever sees the scalar forms of those. The vector and matrix
// builtins operate on aggregates directly.
type Builtin int

const (
	BuiltinSin Builtin = iota
	BuiltinCos
	BuiltinTan
	BuiltinAbs
	BuiltinFloor
	BuiltinCeil
	BuiltinFract
	BuiltinSqrt
	BuiltinMin
	BuiltinMax
	BuiltinClamp
	BuiltinMix
	BuiltinNoise
	BuiltinNoise2

	BuiltinLength
	BuiltinDot
	BuiltinCross
	BuiltinNormalize
	BuiltinDistance

	BuiltinTranspose
	BuiltinDeterminant
	BuiltinInverse

	NumBuiltins
)

var builtinNames = [...]string{
	BuiltinSin:         "sin",
	BuiltinCos:         "cos",
	BuiltinTan:         "tan",
	BuiltinAbs:         "abs",
	BuiltinFloor:       "floor",
	BuiltinCeil:        "ceil",
	BuiltinFract:       "fract",
	BuiltinSqrt:        "sqrt",
	BuiltinMin:         "min",
	BuiltinMax:         "max",
	BuiltinClamp:       "clamp",
	BuiltinMix:         "mix",
	BuiltinNoise:       "noise",
	BuiltinNoise2:      "noise2",
	BuiltinLength:      "length",
	BuiltinDot:         "dot",
	BuiltinCross:       "cross",
	BuiltinNormalize:   "normalize",
	BuiltinDistance:    "distance",
	BuiltinTranspose:   "transpose",
	BuiltinDeterminant: "determinant",
	BuiltinInverse:     "inverse",
}

func (b Builtin) String() string {
	if b >= 0 && b < NumBuiltins {
		return builtinNames[b]
	}
	return fmt.Sprintf("Builtin(%d)", int(b))
}

// Arity returns how many arguments b pops.
func (b Builtin) Arity() int {
	switch b {
	case BuiltinMin, BuiltinMax, BuiltinDot, BuiltinCross, BuiltinDistance:
		return 2
	case BuiltinClamp, BuiltinMix:
		return 3
	}
	return 1
}

// callBuiltin executes builtin b against the value stack. Argument types
// were validated by the type checker; the VM re-checks only what it needs
// to stay memory-safe and faults with TypeMismatch otherwise.
func (m *VM) callBuiltin(b Builtin) *RuntimeError {
	switch b {
	case BuiltinSin, BuiltinCos, BuiltinTan, BuiltinAbs, BuiltinFloor,
		BuiltinCeil, BuiltinFract, BuiltinSqrt, BuiltinNoise:
		v, err := m.popType(TypeFixed)
		if err != nil {
			return err
		}
		x := v.Fixed()
		var r fixed.Fixed
		switch b {
		case BuiltinSin:
			r = fixed.Sin(x)
		case BuiltinCos:
			r = fixed.Cos(x)
		case BuiltinTan:
			r = fixed.Tan(x)
		case BuiltinAbs:
			r = x.Abs()
		case BuiltinFloor:
			r = x.Floor()
		case BuiltinCeil:
			r = x.Ceil()
		case BuiltinFract:
			r = x.Fract()
		case BuiltinSqrt:
			r = x.Sqrt()
		case BuiltinNoise:
			r = fixed.Noise1(x)
		}
		return m.push(FixedVal(r))

	case BuiltinMin, BuiltinMax:
		y, err := m.popType(TypeFixed)
		if err != nil {
			return err
		}
		x, err := m.popType(TypeFixed)
		if err != nil {
			return err
		}
		if b == BuiltinMin {
			return m.push(FixedVal(fixed.Min(x.Fixed(), y.Fixed())))
		}
		return m.push(FixedVal(fixed.Max(x.Fixed(), y.Fixed())))

	case BuiltinClamp:
		hi, err := m.popType(TypeFixed)
		if err != nil {
			return err
		}
		lo, err := m.popType(TypeFixed)
		if err != nil {
			return err
		}
		x, err := m.popType(TypeFixed)
		if err != nil {
			return err
		}
		return m.push(FixedVal(fixed.Clamp(x.Fixed(), lo.Fixed(), hi.Fixed())))

	case BuiltinMix:
		t, err := m.popType(TypeFixed)
		if err != nil {
			return err
		}
		y, err := m.popType(TypeFixed)
		if err != nil {
			return err
		}
		x, err := m.popType(TypeFixed)
		if err != nil {
			return err
		}
		return m.push(FixedVal(fixed.Lerp(x.Fixed(), y.Fixed(), t.Fixed())))

	case BuiltinNoise2:
		p, err := m.popType(TypeVec2)
		if err != nil {
			return err
		}
		return m.push(FixedVal(fixed.Noise2(p.C[0], p.C[1])))

	case BuiltinLength:
		v, err := m.popVector()
		if err != nil {
			return err
		}
		return m.push(FixedVal(fixed.Length(v.C[:v.Type.Components()])))

	case BuiltinNormalize:
		v, err := m.popVector()
		if err != nil {
			return err
		}
		fixed.Normalize(v.C[:v.Type.Components()])
		return m.push(v)

	case BuiltinDot:
		y, err := m.popVector()
		if err != nil {
			return err
		}
		x, err := m.popVector()
		if err != nil {
			return err
		}
		if x.Type != y.Type {
			return m.fault(FaultTypeMismatch)
		}
		var sum fixed.Fixed
		for i := 0; i < x.Type.Components(); i++ {
			sum += x.C[i].Mul(y.C[i])
		}
		return m.push(FixedVal(sum))

	case BuiltinDistance:
		y, err := m.popVector()
		if err != nil {
			return err
		}
		x, err := m.popVector()
		if err != nil {
			return err
		}
		if x.Type != y.Type {
			return m.fault(FaultTypeMismatch)
		}
		n := x.Type.Components()
		return m.push(FixedVal(fixed.Distance(x.C[:n], y.C[:n])))

	case BuiltinCross:
		y, err := m.popType(TypeVec3)
		if err != nil {
			return err
		}
		x, err := m.popType(TypeVec3)
		if err != nil {
			return err
		}
		return m.push(Vec3Val(fixed.Cross(x.Vec3(), y.Vec3())))

	case BuiltinTranspose:
		v, err := m.popType(TypeMat3)
		if err != nil {
			return err
		}
		return m.push(Mat3Val(v.Mat3().Transpose()))

	case BuiltinDeterminant:
		v, err := m.popType(TypeMat3)
		if err != nil {
			return err
		}
		return m.push(FixedVal(v.Mat3().Determinant()))

	case BuiltinInverse:
		v, err := m.popType(TypeMat3)
		if err != nil {
			return err
		}
		// A singular matrix inverts to the zero matrix rather than faulting;
		// a dropped frame is worse than a black pixel on a light installation.
		inv, _ := v.Mat3().Inverse()
		return m.push(Mat3Val(inv))
	}

	return m.fault(FaultUnsupportedOpCode)
}
