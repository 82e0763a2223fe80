package x86_64_linux

import (
	"duckc/pkg/parser/codegen"
	"fmt"

	"github.com/charmbracelet/log"
)

// emitPrologue reserves and zeroes the ring cells, sets the base register and puts
// the cursor on cell 0
func (a *x86_64Linux) emitPrologue() {
	base := reg(codegen.RoleBase)
	cursor := reg(codegen.RoleCursor)

	a.addText("\t.text")
	a.addText("\t.globl\tmain")
	a.addText("main:")
	a.addText(fmt.Sprintf("# %d slot(s) + satchel", a.state.Ring.Slots))
	a.emit("sub\t$%d, %%rsp", a.frameSize())
	a.emit("mov\t%%rsp, %s", base)
	a.emit("mov\t%%rsp, %%rdi")
	a.emit("mov\t$%d, %%rcx", a.state.Ring.Size())
	a.emit("xor\t%%eax, %%eax")
	a.emit("rep stosq")
	a.emit("xor\t%s, %s", cursor, cursor)
}

// emitEpilogue marks the stack non-executable for the linker
func (a *x86_64Linux) emitEpilogue() {
	a.addText("\t.section\t.note.GNU-stack,\"\",@progbits")
}

// emitInstruction lowers one instruction
func (a *x86_64Linux) emitInstruction(idx int, in codegen.Instruction) error {
	a.addText(fmt.Sprintf("# %s", in))

	switch in.Op {
	case codegen.OpEnd:
		a.emitExit()
	case codegen.OpAdd:
		a.emitArithmetic(in, "add")
	case codegen.OpSub:
		a.emitArithmetic(in, "sub")
	case codegen.OpMul:
		a.emitArithmetic(in, "imul")
	case codegen.OpDiv:
		a.emitDivide(in)
	case codegen.OpSet:
		a.emitSet(in)
	case codegen.OpPrint:
		a.emitPrint(in)
	case codegen.OpInput:
		a.emitInput(in)
	case codegen.OpPush:
		a.emitPush(in)
	case codegen.OpPop:
		a.emitPop(in)
	case codegen.OpLoopBegin, codegen.OpLoopEnd:
		loop, ok := a.state.Loops.At(idx)
		if !ok {
			return fmt.Errorf("%w: no label for %s at line %d", codegen.ErrUnbalancedLoop, in.Op, in.Pos.Line)
		}
		if in.Op == codegen.OpLoopBegin {
			a.emitLoopBegin(in, loop)
		} else {
			a.emitLoopEnd(loop)
		}
	default:
		return fmt.Errorf("unhandled operation %s", in.Op)
	}

	log.Debug("Lowered instruction", "index", idx, "op", in.Op, "n", in.N, "y", in.Y)

	return nil
}

// emitResolve computes the physical cell of a logical slot from the current cursor
// and leaves it in the register bound to role. Clobbers %rax, %rdx and scratch.
func (a *x86_64Linux) emitResolve(slot int, role codegen.Role) {
	scratch := reg(codegen.RoleScratch)

	a.emit("mov\t%s, %%rax", reg(codegen.RoleCursor))
	a.emit("add\t$%d, %%rax", slot)
	a.emit("xor\t%%edx, %%edx")
	a.emit("mov\t$%d, %s", a.state.Ring.Size(), scratch)
	a.emit("div\t%s", scratch)
	a.emit("mov\t%%rdx, %s", reg(role))
}

// emitAdvance moves the cursor onto the resolved destination cell
func (a *x86_64Linux) emitAdvance() {
	a.emit("mov\t%s, %s", reg(codegen.RoleDest), reg(codegen.RoleCursor))
}

// emitArithmetic lowers Add, Subtract and Multiply: n = n op y
func (a *x86_64Linux) emitArithmetic(in codegen.Instruction, mnemonic string) {
	value := reg(codegen.RoleValue)

	a.emitResolve(in.N, codegen.RoleDest)
	a.emitResolve(in.Y, codegen.RoleSource)
	a.emit("mov\t%s, %s", cell(codegen.RoleDest), value)
	a.emit("%s\t%s, %s", mnemonic, cell(codegen.RoleSource), value)
	a.emit("mov\t%s, %s", value, cell(codegen.RoleDest))
	a.emitAdvance()
}

// emitDivide lowers Divide: n = n / y, truncating toward zero. A zero divisor
// faults at run time.
func (a *x86_64Linux) emitDivide(in codegen.Instruction) {
	a.emitResolve(in.N, codegen.RoleDest)
	a.emitResolve(in.Y, codegen.RoleSource)
	a.emit("mov\t%s, %%rax", cell(codegen.RoleDest))
	a.emit("cqo")
	a.emit("idivq\t%s", cell(codegen.RoleSource))
	a.emit("mov\t%%rax, %s", cell(codegen.RoleDest))
	a.emitAdvance()
}

// emitSet stores the literal y in n
func (a *x86_64Linux) emitSet(in codegen.Instruction) {
	value := reg(codegen.RoleValue)

	a.emitResolve(in.N, codegen.RoleDest)
	a.emit("movabs\t$%d, %s", in.Y, value)
	a.emit("mov\t%s, %s", value, cell(codegen.RoleDest))
	a.emitAdvance()
}

// emitPrint writes the low byte of n to stdout. The cursor stays put.
func (a *x86_64Linux) emitPrint(in codegen.Instruction) {
	a.emitResolve(in.N, codegen.RoleDest)
	a.emit("lea\t%s, %%rsi", cell(codegen.RoleDest))
	a.emit("mov\t$1, %%eax") // write
	a.emit("mov\t$1, %%edi") // stdout
	a.emit("mov\t$1, %%edx")
	a.emit("syscall")
}

// emitInput reads one byte from stdin into n. At end of input n becomes 0.
func (a *x86_64Linux) emitInput(in codegen.Instruction) {
	a.emitResolve(in.N, codegen.RoleDest)
	a.emit("movq\t$0, %s", cell(codegen.RoleDest))
	a.emit("lea\t%s, %%rsi", cell(codegen.RoleDest))
	a.emit("xor\t%%eax, %%eax") // read
	a.emit("xor\t%%edi, %%edi") // stdin
	a.emit("mov\t$1, %%edx")
	a.emit("syscall")
	a.emitAdvance()
}

// emitPush copies n into the satchel; n keeps its value
func (a *x86_64Linux) emitPush(in codegen.Instruction) {
	value := reg(codegen.RoleValue)

	a.emitResolve(in.N, codegen.RoleDest)
	a.emit("mov\t%s, %s", cell(codegen.RoleDest), value)
	a.emit("mov\t%s, %s", value, cell(codegen.RoleDest))
	a.emit("mov\t%s, %s", value, a.satchel())
	a.emitAdvance()
}

// emitPop moves the satchel into n and empties the satchel
func (a *x86_64Linux) emitPop(in codegen.Instruction) {
	value := reg(codegen.RoleValue)

	a.emitResolve(in.N, codegen.RoleDest)
	a.emit("mov\t%s, %s", a.satchel(), value)
	a.emit("mov\t%s, %s", value, cell(codegen.RoleDest))
	a.emit("movq\t$0, %s", a.satchel())
	a.emitAdvance()
}

// emitLoopBegin emits the loop head: leave the loop when n is zero
func (a *x86_64Linux) emitLoopBegin(in codegen.Instruction, loop codegen.Loop) {
	a.addText(fmt.Sprintf("%s:\t# tag %d", loopLabel(loop.ID), loop.Tag))
	a.emitResolve(in.N, codegen.RoleDest)
	a.emit("cmpq\t$0, %s", cell(codegen.RoleDest))
	a.emit("je\t%s", endLabel(loop.ID))
}

// emitLoopEnd jumps back to the loop head
func (a *x86_64Linux) emitLoopEnd(loop codegen.Loop) {
	a.emit("jmp\t%s", loopLabel(loop.ID))
	a.addText(fmt.Sprintf("%s:", endLabel(loop.ID)))
}

// emitExit terminates the process with status 0
func (a *x86_64Linux) emitExit() {
	a.emit("mov\t$60, %%eax") // exit
	a.emit("xor\t%%edi, %%edi")
	a.emit("syscall")
}
