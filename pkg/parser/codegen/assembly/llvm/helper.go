package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

func i64(v int) *constant.Int {
	return constant.NewInt(types.I64, int64(v))
}

func i32(v int) *constant.Int {
	return constant.NewInt(types.I32, int64(v))
}

// attach appends a block created ahead of time to main and makes it current
func (g *llvmIR) attach(b *ir.Block) {
	b.Parent = g.main
	g.main.Blocks = append(g.main.Blocks, b)
	g.block = b
}

// resolve loads the cursor and returns the physical cell index of slot
func (g *llvmIR) resolve(slot int) value.Value {
	cur := g.block.NewLoad(types.I64, g.cursor)
	sum := g.block.NewAdd(cur, i64(slot))
	return g.block.NewURem(sum, i64(g.state.Ring.Size()))
}

// cell returns a pointer to the cell at a physical index
func (g *llvmIR) cell(idx value.Value) value.Value {
	return g.block.NewGetElementPtr(g.ring, g.cells, i64(0), idx)
}

// satchel returns a pointer to the fixed satchel cell
func (g *llvmIR) satchel() value.Value {
	return g.cell(i64(g.state.Ring.Satchel()))
}

// advance moves the cursor onto a physical index
func (g *llvmIR) advance(idx value.Value) {
	g.block.NewStore(idx, g.cursor)
}

func loopName(id int) string {
	return fmt.Sprintf("loop.%d", id)
}

func bodyName(id int) string {
	return fmt.Sprintf("body.%d", id)
}

func endName(id int) string {
	return fmt.Sprintf("end.%d", id)
}
