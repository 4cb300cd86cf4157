// Package vm defines the compiled program representation (typed opcodes,
// functions, programs) and the deterministic stack machine that executes it.
// All numeric state is Q16.16 fixed point; an immutable Program may be shared
// by any number of VM instances because execution state lives only in the VM.
package vm

import (
	"fmt"
	"strings"

	"github.com/Yona-Appletree/lpmini2024-sub004/pkg/fixed"
)

// ValueType is the closed set of types a stack slot or local can hold.
type ValueType int

const (
	TypeVoid ValueType = iota
	TypeBool
	TypeInt
	TypeFixed
	TypeVec2
	TypeVec3
	TypeVec4
	TypeMat3
)

var typeNames = [...]string{
	TypeVoid:  "void",
	TypeBool:  "bool",
	TypeInt:   "int",
	TypeFixed: "float",
	TypeVec2:  "vec2",
	TypeVec3:  "vec3",
	TypeVec4:  "vec4",
	TypeMat3:  "mat3",
}

func (t ValueType) String() string {
	if int(t) >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// Components returns how many fixed-point components a value of type t
// carries: 1 for scalars, 2/3/4 for vectors, 9 for mat3, 0 for void.
func (t ValueType) Components() int {
	switch t {
	case TypeBool, TypeInt, TypeFixed:
		return 1
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4:
		return 4
	case TypeMat3:
		return 9
	}
	return 0
}

// IsVector reports whether t is vec2, vec3 or vec4.
func (t ValueType) IsVector() bool {
	return t == TypeVec2 || t == TypeVec3 || t == TypeVec4
}

// IsScalar reports whether t occupies a single component.
func (t ValueType) IsScalar() bool {
	return t == TypeBool || t == TypeInt || t == TypeFixed
}

// VecType returns the vector type with n components (n in 2..4), or
// TypeFixed for n == 1.
func VecType(n int) ValueType {
	switch n {
	case 1:
		return TypeFixed
	case 2:
		return TypeVec2
	case 3:
		return TypeVec3
	case 4:
		return TypeVec4
	}
	return TypeVoid
}

// Value is one stack slot or local. Scalars live in C[0]; vecN uses C[:n];
// mat3 uses all nine components in row-major order. Int values store their
// raw int32 in C[0] (not Q16.16 scaled); bools store fixed 1.0 or 0.0,
// matching the shader truthiness encoding.
type Value struct {
	Type ValueType
	C    [9]fixed.Fixed
}

// FixedVal wraps a fixed-point scalar.
func FixedVal(f fixed.Fixed) Value {
	return Value{Type: TypeFixed, C: [9]fixed.Fixed{f}}
}

// IntVal wraps a raw int32.
func IntVal(i int32) Value {
	return Value{Type: TypeInt, C: [9]fixed.Fixed{fixed.Fixed(i)}}
}

// BoolVal wraps a bool as fixed 1.0 / 0.0.
func BoolVal(b bool) Value {
	if b {
		return Value{Type: TypeBool, C: [9]fixed.Fixed{fixed.One}}
	}
	return Value{Type: TypeBool}
}

// Vec2Val wraps a 2-vector.
func Vec2Val(v fixed.Vec2) Value {
	return Value{Type: TypeVec2, C: [9]fixed.Fixed{v[0], v[1]}}
}

// Vec3Val wraps a 3-vector.
func Vec3Val(v fixed.Vec3) Value {
	return Value{Type: TypeVec3, C: [9]fixed.Fixed{v[0], v[1], v[2]}}
}

// Vec4Val wraps a 4-vector.
func Vec4Val(v fixed.Vec4) Value {
	return Value{Type: TypeVec4, C: [9]fixed.Fixed{v[0], v[1], v[2], v[3]}}
}

// Mat3Val wraps a 3x3 matrix.
func Mat3Val(m fixed.Mat3) Value {
	var v Value
	v.Type = TypeMat3
	copy(v.C[:], m[:])
	return v
}

// Zero returns the zero value of type t.
func Zero(t ValueType) Value {
	return Value{Type: t}
}

// Fixed returns the scalar component of v.
func (v Value) Fixed() fixed.Fixed { return v.C[0] }

// Int returns the raw int32 stored in an int value.
func (v Value) Int() int32 { return int32(v.C[0]) }

// Bool reports shader truthiness: any non-zero raw component C[0].
func (v Value) Bool() bool { return v.C[0] != 0 }

// Vec3 returns the first three components.
func (v Value) Vec3() fixed.Vec3 { return fixed.Vec3{v.C[0], v.C[1], v.C[2]} }

// Mat3 returns all nine components as a matrix.
func (v Value) Mat3() fixed.Mat3 {
	var m fixed.Mat3
	copy(m[:], v.C[:])
	return m
}

func (v Value) String() string {
	switch v.Type {
	case TypeVoid:
		return "void"
	case TypeBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case TypeInt:
		return fmt.Sprintf("%d", v.Int())
	case TypeFixed:
		return fmt.Sprintf("%g", v.C[0].Float())
	default:
		parts := make([]string, v.Type.Components())
		for i := range parts {
			parts[i] = fmt.Sprintf("%g", v.C[i].Float())
		}
		return fmt.Sprintf("%s(%s)", v.Type, strings.Join(parts, ", "))
	}
}
