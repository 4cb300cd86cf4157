package vm

import "fmt"

// FaultCode classifies a runtime fault. A fault aborts the current
// invocation only; the Program remains valid and re-invokable.
type FaultCode int

const (
	FaultStackUnderflow FaultCode = iota
	FaultStackOverflow
	FaultLocalOutOfBounds
	FaultLocalTypeMismatch
	FaultDivisionByZero
	FaultPCOutOfBounds
	FaultTypeMismatch
	FaultUnsupportedOpCode
	FaultInstructionLimit
	FaultCallStackOverflow
	FaultInvalidFunctionIndex
)

var faultNames = [...]string{
	FaultStackUnderflow:       "StackUnderflow",
	FaultStackOverflow:        "StackOverflow",
	FaultLocalOutOfBounds:     "LocalOutOfBounds",
	FaultLocalTypeMismatch:    "LocalTypeMismatch",
	FaultDivisionByZero:       "DivisionByZero",
	FaultPCOutOfBounds:        "ProgramCounterOutOfBounds",
	FaultTypeMismatch:         "TypeMismatch",
	FaultUnsupportedOpCode:    "UnsupportedOpCode",
	FaultInstructionLimit:     "InstructionLimitExceeded",
	FaultCallStackOverflow:    "CallStackOverflow",
	FaultInvalidFunctionIndex: "InvalidFunctionIndex",
}

func (c FaultCode) String() string {
	if int(c) >= 0 && int(c) < len(faultNames) {
		return faultNames[c]
	}
	return fmt.Sprintf("FaultCode(%d)", int(c))
}

// RuntimeError is a fault raised during execution. Function and PC locate
// the faulting instruction; Required/Actual are filled for stack underflow.
type RuntimeError struct {
	Code     FaultCode
	Function string
	PC       int
	Required int
	Actual   int
}

func (e *RuntimeError) Error() string {
	if e.Code == FaultStackUnderflow {
		return fmt.Sprintf("%s in %s at %d: need %d values, have %d",
			e.Code, e.Function, e.PC, e.Required, e.Actual)
	}
	return fmt.Sprintf("%s in %s at %d", e.Code, e.Function, e.PC)
}
