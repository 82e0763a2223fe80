package llvm

import (
	"duckc/pkg/parser/codegen"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// declare creates the module with main and the libc declarations
func (g *llvmIR) declare() {
	g.module = ir.NewModule()

	g.libc = libc{
		read: g.module.NewFunc("read", types.I64,
			ir.NewParam("fd", types.I32),
			ir.NewParam("buf", types.I8Ptr),
			ir.NewParam("count", types.I64)),
		write: g.module.NewFunc("write", types.I64,
			ir.NewParam("fd", types.I32),
			ir.NewParam("buf", types.I8Ptr),
			ir.NewParam("count", types.I64)),
		exit: g.module.NewFunc("exit", types.Void,
			ir.NewParam("status", types.I32)),
	}

	g.main = g.module.NewFunc("main", types.I32)
	g.heads = make(map[int]*ir.Block)
	g.exits = make(map[int]*ir.Block)
}

// emitPrologue allocates and zeroes the ring cells and puts the cursor on cell 0
func (g *llvmIR) emitPrologue() {
	g.block = g.main.NewBlock("entry")
	g.ring = types.NewArray(uint64(g.state.Ring.Size()), types.I64)

	g.cells = g.block.NewAlloca(g.ring)
	g.cells.SetName(storage.Lookup(codegen.RoleBase))
	g.block.NewStore(constant.NewZeroInitializer(g.ring), g.cells)

	g.cursor = g.block.NewAlloca(types.I64)
	g.cursor.SetName(storage.Lookup(codegen.RoleCursor))
	g.block.NewStore(i64(0), g.cursor)
}

// emitInstruction lowers one instruction
func (g *llvmIR) emitInstruction(idx int, in codegen.Instruction) error {
	switch in.Op {
	case codegen.OpEnd:
		g.emitExit()
		// anything after a mid-program End is unreachable but still needs a block
		g.attach(ir.NewBlock(fmt.Sprintf("after.%d", idx)))
	case codegen.OpAdd, codegen.OpSub, codegen.OpMul, codegen.OpDiv:
		g.emitArithmetic(in)
	case codegen.OpSet:
		g.emitSet(in)
	case codegen.OpPrint:
		g.emitPrint(in)
	case codegen.OpInput:
		g.emitInput(in)
	case codegen.OpPush:
		g.emitPush(in)
	case codegen.OpPop:
		g.emitPop(in)
	case codegen.OpLoopBegin, codegen.OpLoopEnd:
		loop, ok := g.state.Loops.At(idx)
		if !ok {
			return fmt.Errorf("%w: no label for %s at line %d", codegen.ErrUnbalancedLoop, in.Op, in.Pos.Line)
		}
		if in.Op == codegen.OpLoopBegin {
			g.emitLoopBegin(in, loop)
		} else {
			g.emitLoopEnd(loop)
		}
	default:
		return fmt.Errorf("unhandled operation %s", in.Op)
	}

	log.Debug("Lowered instruction", "index", idx, "op", in.Op, "n", in.N, "y", in.Y)

	return nil
}

// emitArithmetic lowers Add, Subtract, Multiply and Divide: n = n op y. Divide
// truncates toward zero and a zero divisor is undefined.
func (g *llvmIR) emitArithmetic(in codegen.Instruction) {
	dst := g.resolve(in.N)
	src := g.resolve(in.Y)
	dp := g.cell(dst)
	x := g.block.NewLoad(types.I64, dp)
	y := g.block.NewLoad(types.I64, g.cell(src))

	switch in.Op {
	case codegen.OpAdd:
		g.block.NewStore(g.block.NewAdd(x, y), dp)
	case codegen.OpSub:
		g.block.NewStore(g.block.NewSub(x, y), dp)
	case codegen.OpMul:
		g.block.NewStore(g.block.NewMul(x, y), dp)
	case codegen.OpDiv:
		g.block.NewStore(g.block.NewSDiv(x, y), dp)
	}

	g.advance(dst)
}

// emitSet stores the literal y in n
func (g *llvmIR) emitSet(in codegen.Instruction) {
	dst := g.resolve(in.N)
	g.block.NewStore(i64(in.Y), g.cell(dst))
	g.advance(dst)
}

// emitPrint writes the low byte of n to stdout. The cursor stays put.
func (g *llvmIR) emitPrint(in codegen.Instruction) {
	buf := g.block.NewBitCast(g.cell(g.resolve(in.N)), types.I8Ptr)
	g.block.NewCall(g.libc.write, i32(1), buf, i64(1))
}

// emitInput reads one byte from stdin into n. At end of input n becomes 0.
func (g *llvmIR) emitInput(in codegen.Instruction) {
	dst := g.resolve(in.N)
	dp := g.cell(dst)
	g.block.NewStore(i64(0), dp)
	g.block.NewCall(g.libc.read, i32(0), g.block.NewBitCast(dp, types.I8Ptr), i64(1))
	g.advance(dst)
}

// emitPush copies n into the satchel
func (g *llvmIR) emitPush(in codegen.Instruction) {
	dst := g.resolve(in.N)
	v := g.block.NewLoad(types.I64, g.cell(dst))
	g.block.NewStore(v, g.satchel())
	g.advance(dst)
}

// emitPop moves the satchel into n and empties the satchel
func (g *llvmIR) emitPop(in codegen.Instruction) {
	dst := g.resolve(in.N)
	sp := g.satchel()
	v := g.block.NewLoad(types.I64, sp)
	g.block.NewStore(v, g.cell(dst))
	g.block.NewStore(i64(0), sp)
	g.advance(dst)
}

// emitLoopBegin closes the current block and opens the loop condition: enter the
// body while n is non-zero
func (g *llvmIR) emitLoopBegin(in codegen.Instruction, loop codegen.Loop) {
	head := ir.NewBlock(loopName(loop.ID))
	body := ir.NewBlock(bodyName(loop.ID))
	g.heads[loop.ID] = head
	g.exits[loop.ID] = ir.NewBlock(endName(loop.ID))

	g.block.NewBr(head)
	g.attach(head)

	v := g.block.NewLoad(types.I64, g.cell(g.resolve(in.N)))
	cond := g.block.NewICmp(enum.IPredNE, v, i64(0))
	g.block.NewCondBr(cond, body, g.exits[loop.ID])

	g.attach(body)
}

// emitLoopEnd jumps back to the loop condition and continues after the loop
func (g *llvmIR) emitLoopEnd(loop codegen.Loop) {
	g.block.NewBr(g.heads[loop.ID])
	g.attach(g.exits[loop.ID])
}

// emitExit terminates the process with status 0
func (g *llvmIR) emitExit() {
	g.block.NewCall(g.libc.exit, i32(0))
	g.block.NewUnreachable()
}
