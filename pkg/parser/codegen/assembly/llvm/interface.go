package llvm

import (
	"duckc/pkg/parser/codegen"
	"duckc/pkg/parser/codegen/assembly"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// storage names the two stack slots the generated main keeps. Operands and
// resolved addresses live in SSA values and need no storage.
var storage = codegen.StorageTable{
	{Role: codegen.RoleBase, Name: "cells"},
	{Role: codegen.RoleCursor, Name: "cursor"},
}

type llvmIR struct {
	program *codegen.Program // validated program
	opts    assembly.Options // build options
	state   *codegen.State   // ring geometry and loop labels, rebuilt by Generate

	module *ir.Module
	main   *ir.Func
	block  *ir.Block // block receiving instructions
	libc   libc

	ring   *types.ArrayType
	cells  *ir.InstAlloca
	cursor *ir.InstAlloca

	heads map[int]*ir.Block // loop id -> condition block
	exits map[int]*ir.Block // loop id -> block after the loop

	text string
}

// libc holds the external functions the program calls
type libc struct {
	read  *ir.Func
	write *ir.Func
	exit  *ir.Func
}

// NewLLVM creates a new LLVM IR generator instance
func NewLLVM(p *codegen.Program, opts assembly.Options) assembly.Assembly {
	return &llvmIR{
		program: p,
		opts:    opts,
	}
}

// Generate builds the LLVM module for the program
func (g *llvmIR) Generate() error {
	g.text = ""

	state, err := codegen.NewState(g.program)
	if err != nil {
		return err
	}
	g.state = state

	g.declare()
	g.emitPrologue()
	for idx, in := range g.program.Instructions {
		if err := g.emitInstruction(idx, in); err != nil {
			return err
		}
	}

	// trailing terminator, emitted even when the program already ended with End
	g.emitExit()

	g.text = g.module.String()
	return nil
}

// GetCode returns the generated LLVM IR as a string
func (g *llvmIR) GetCode() string {
	return g.text
}
