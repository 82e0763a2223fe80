package codegen

import "fmt"

// Program is a decoded instruction sequence together with its slot count
type Program struct {
	Slots        int           `yaml:"slots"`
	Instructions []Instruction `yaml:"instructions"`
}

// NewProgram creates an empty program with the given slot count
func NewProgram(slots int) *Program {
	return &Program{
		Slots:        slots,
		Instructions: make([]Instruction, 0),
	}
}

// Append adds an instruction to the program
func (p *Program) Append(in Instruction) {
	p.Instructions = append(p.Instructions, in)
}

// Len returns the number of instructions
func (p *Program) Len() int {
	return len(p.Instructions)
}

// Last returns the final instruction, if any
func (p *Program) Last() (Instruction, bool) {
	if len(p.Instructions) == 0 {
		return Instruction{}, false
	}

	return p.Instructions[len(p.Instructions)-1], true
}

// Validate checks whole-program invariants. A program is valid when it is
// non-empty and its last instruction is End. Slot indices are not range checked.
func Validate(p *Program) error {
	last, ok := p.Last()
	if !ok {
		return fmt.Errorf("%w: program has no instructions", ErrUnterminatedProgram)
	}

	if last.Op != OpEnd {
		return fmt.Errorf("%w: last instruction is %s at line %d", ErrUnterminatedProgram, last.Op, last.Pos.Line)
	}

	return nil
}
