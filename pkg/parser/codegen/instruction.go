package codegen

import (
	"duckc/pkg/lexer"
	"fmt"
)

type Operation int

// Opcodes, numbered by the duck count of the opcode line
const (
	OpEnd Operation = iota
	OpPrint
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpInput
	OpPush
	OpPop
	OpLoopBegin
	OpLoopEnd
	OpSet
)

var operationNames = [...]string{
	OpEnd:       "End",
	OpPrint:     "Print",
	OpAdd:       "Add",
	OpSub:       "Subtract",
	OpMul:       "Multiply",
	OpDiv:       "Divide",
	OpInput:     "Input",
	OpPush:      "Push",
	OpPop:       "Pop",
	OpLoopBegin: "LoopBegin",
	OpLoopEnd:   "LoopEnd",
	OpSet:       "Set",
}

// DecodeOperation maps an opcode value to its operation
func DecodeOperation(code int) (Operation, bool) {
	if code < int(OpEnd) || code > int(OpSet) {
		return 0, false
	}

	return Operation(code), true
}

// String returns the operation name
func (o Operation) String() string {
	if o >= OpEnd && o <= OpSet {
		return operationNames[o]
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(o))
}

// Arity returns the number of operands recorded for the operation
func (o Operation) Arity() int {
	switch o {
	case OpEnd:
		return 0
	case OpPrint, OpInput, OpPush, OpPop:
		return 1
	default:
		return 2
	}
}

// MovesCursor reports whether executing the operation leaves the cursor on its
// destination slot
func (o Operation) MovesCursor() bool {
	switch o {
	case OpAdd, OpSub, OpMul, OpDiv, OpSet, OpInput, OpPush, OpPop:
		return true
	default:
		return false
	}
}

// MarshalYAML renders the operation by name
func (o Operation) MarshalYAML() (any, error) {
	return o.String(), nil
}

type Instruction struct {
	Op   Operation `yaml:"op"`
	N    int       `yaml:"n"`
	Y    int       `yaml:"y"`    // second slot, Set literal, or LoopBegin identifier
	Argc int       `yaml:"argc"` // operands recorded at decode time

	Pos lexer.Position `yaml:"-"` // position of the opcode line's goose
}

// String returns a string representation of the instruction
func (i Instruction) String() string {
	switch i.Argc {
	case 0:
		return fmt.Sprintf("%s:", i.Op)
	case 1:
		return fmt.Sprintf("%s: %d", i.Op, i.N)
	default:
		return fmt.Sprintf("%s: %d,%d", i.Op, i.N, i.Y)
	}
}
