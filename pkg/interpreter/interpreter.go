package interpreter

import (
	"errors"
	"io"
	"os"

	"duckc/pkg/parser/codegen"
)

// Interpreter executes a decoded program on the same ring, cursor and satchel
// model the code generators lower to
type Interpreter struct {
	program *codegen.Program  // program being executed
	loops   *codegen.LoopPlan // LoopBegin/LoopEnd pairing
	pc      int               // index of the next instruction
	frame   *Frame            // cells and cursor

	in  io.Reader // byte source for Input
	out io.Writer // byte sink for Print

	// Exec hook, see SetExecStep
	execStep func(*Interpreter) (halted bool, err error)

	maxSteps int // maximum steps (0 = unlimited)
	steps    int // steps executed
}

type Option func(*Interpreter)

// WithReader sets the byte source read by Input
func WithReader(r io.Reader) Option {
	return func(i *Interpreter) { i.in = r }
}

// WithWriter sets the byte sink written by Print
func WithWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithMaxSteps sets a maximum number of interpreter steps before returning ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// NewInterpreter creates a new Interpreter instance. It fails when the program's
// loops do not pair up.
func NewInterpreter(p *codegen.Program, opts ...Option) (*Interpreter, error) {
	it := &Interpreter{}
	for _, o := range opts {
		o(it)
	}

	if it.in == nil {
		it.in = os.Stdin
	}

	if it.out == nil {
		it.out = os.Stdout
	}

	if it.execStep == nil {
		it.execStep = coreStep
	}

	if err := it.Load(p); err != nil {
		return nil, err
	}

	return it, nil
}

// Load replaces the current program with a new one, resetting state
func (i *Interpreter) Load(p *codegen.Program) error {
	loops, err := codegen.PlanLoops(p.Instructions)
	if err != nil {
		return err
	}

	i.program = p
	i.loops = loops
	i.Reset()

	return nil
}

// Reset clears runtime state (cells, cursor, PC, counters)
func (i *Interpreter) Reset() {
	i.pc = 0
	i.frame = newFrame(codegen.Ring{Slots: i.program.Slots})
	i.steps = 0
}

// Program returns the active program
func (i *Interpreter) Program() *codegen.Program {
	return i.program
}

// Frame returns the machine memory
func (i *Interpreter) Frame() *Frame {
	return i.frame
}

// SetExecStep installs the core step function
func (i *Interpreter) SetExecStep(fn func(*Interpreter) (bool, error)) {
	i.execStep = fn
}

// Step executes a single instruction, returning (halted, error)
func (i *Interpreter) Step() (bool, error) {
	if i.execStep == nil {
		return false, ErrNotImplemented
	}

	if i.maxSteps > 0 && i.steps >= i.maxSteps {
		return false, ErrMaxStepsExceeded
	}

	halted, err := i.execStep(i)
	i.steps++

	return halted, err
}

// Run executes until halt or error
func (i *Interpreter) Run() error {
	for {
		halted, err := i.Step()
		if err != nil {
			return err
		}

		if halted {
			return nil
		}
	}
}

// PC returns the current instruction pointer
func (i *Interpreter) PC() int {
	return i.pc
}

// SetPC sets the current instruction pointer
func (i *Interpreter) SetPC(pc int) {
	i.pc = pc
}

// Steps returns the number of executed steps
func (i *Interpreter) Steps() int {
	return i.steps
}

var (
	ErrNotImplemented   = errors.New("interpreter step function not linked")
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
	ErrDivisionByZero   = errors.New("division by zero")
)
