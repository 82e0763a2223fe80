package x86_64_linux

import (
	"bytes"

	"duckc/pkg/parser/codegen"
	"duckc/pkg/parser/codegen/assembly"
)

// registers binds the generator's storage roles to x86-64 registers. Base and
// cursor live in registers the kernel preserves across syscall; dest and source
// survive syscall as well, so Input can move the cursor after its read.
var registers = codegen.StorageTable{
	{Role: codegen.RoleBase, Name: "%rbx"},
	{Role: codegen.RoleCursor, Name: "%r12"},
	{Role: codegen.RoleDest, Name: "%r8"},
	{Role: codegen.RoleSource, Name: "%r9"},
	{Role: codegen.RoleValue, Name: "%rax"},
	{Role: codegen.RoleScratch, Name: "%rcx"},
}

const cellSize = 8

type x86_64Linux struct {
	program *codegen.Program // validated program
	opts    assembly.Options // build options
	state   *codegen.State   // ring geometry and loop labels, rebuilt by Generate

	text bytes.Buffer // .text section
}

// NewX86_64Linux creates a new x86-64 Linux assembly generator instance
func NewX86_64Linux(p *codegen.Program, opts assembly.Options) assembly.Assembly {
	return &x86_64Linux{
		program: p,
		opts:    opts,
	}
}

// Generate generates the assembly code for the program
func (a *x86_64Linux) Generate() error {
	a.text.Reset()

	state, err := codegen.NewState(a.program)
	if err != nil {
		return err
	}
	a.state = state

	a.emitPrologue()
	for idx, in := range a.program.Instructions {
		if err := a.emitInstruction(idx, in); err != nil {
			return err
		}
	}

	// trailing terminator, emitted even when the program already ended with End
	a.addText("# implicit End")
	a.emitExit()
	a.emitEpilogue()

	return nil
}

// GetCode returns the generated assembly code as a string
func (a *x86_64Linux) GetCode() string {
	return a.text.String()
}
