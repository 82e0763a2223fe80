package x86_64_linux

import (
	"duckc/pkg/parser/codegen"
	"fmt"
)

// addText adds an instruction to the text section
func (a *x86_64Linux) addText(instruction string) {
	a.text.WriteString(instruction + "\n")
}

// emit adds one formatted, indented instruction
func (a *x86_64Linux) emit(format string, args ...any) {
	a.addText("\t" + fmt.Sprintf(format, args...))
}

// reg returns the register bound to role
func reg(role codegen.Role) string {
	return registers.Lookup(role)
}

// cell returns the memory operand of the cell whose index is held in the register
// bound to role
func cell(role codegen.Role) string {
	return fmt.Sprintf("(%s,%s,%d)", reg(codegen.RoleBase), reg(role), cellSize)
}

// satchel returns the memory operand of the fixed satchel cell
func (a *x86_64Linux) satchel() string {
	return fmt.Sprintf("%d(%s)", a.state.Ring.Satchel()*cellSize, reg(codegen.RoleBase))
}

// frameSize returns the stack bytes reserved for the ring, kept 16-byte aligned
func (a *x86_64Linux) frameSize() int {
	size := a.state.Ring.Size() * cellSize
	return ((size + 15) / 16) * 16
}

func loopLabel(id int) string {
	return fmt.Sprintf(".Lloop_%d", id)
}

func endLabel(id int) string {
	return fmt.Sprintf(".Lend_%d", id)
}
