package compiler

import "github.com/Yona-Appletree/lpmini2024-sub004/pkg/vm"

// builtinKind groups the builtin catalog by how calls are typed.
type builtinKind int

const (
	// kindScalar: all arguments and the result are float. Calls with
	// vector arguments are rewritten component-wise by the checker.
	kindScalar builtinKind = iota
	// kindVector: operates on whole vectors or matrices; never expanded.
	kindVector
)

type builtinInfo struct {
	op    vm.Builtin
	arity int
	kind  builtinKind
}

// builtinTable is the callable catalog. noise is absent: it is overloaded
// on its argument type (float or vec2) and resolved directly by the checker.
var builtinTable = map[string]builtinInfo{
	"sin":   {vm.BuiltinSin, 1, kindScalar},
	"cos":   {vm.BuiltinCos, 1, kindScalar},
	"tan":   {vm.BuiltinTan, 1, kindScalar},
	"abs":   {vm.BuiltinAbs, 1, kindScalar},
	"floor": {vm.BuiltinFloor, 1, kindScalar},
	"ceil":  {vm.BuiltinCeil, 1, kindScalar},
	"fract": {vm.BuiltinFract, 1, kindScalar},
	"sqrt":  {vm.BuiltinSqrt, 1, kindScalar},
	"min":   {vm.BuiltinMin, 2, kindScalar},
	"max":   {vm.BuiltinMax, 2, kindScalar},
	"clamp": {vm.BuiltinClamp, 3, kindScalar},
	"mix":   {vm.BuiltinMix, 3, kindScalar},

	"length":      {vm.BuiltinLength, 1, kindVector},
	"normalize":   {vm.BuiltinNormalize, 1, kindVector},
	"dot":         {vm.BuiltinDot, 2, kindVector},
	"cross":       {vm.BuiltinCross, 2, kindVector},
	"distance":    {vm.BuiltinDistance, 2, kindVector},
	"transpose":   {vm.BuiltinTranspose, 1, kindVector},
	"determinant": {vm.BuiltinDeterminant, 1, kindVector},
	"inverse":     {vm.BuiltinInverse, 1, kindVector},
}
