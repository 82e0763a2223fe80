package interpreter

import (
	"errors"
	"fmt"
	"io"

	"duckc/pkg/parser/codegen"

	"github.com/charmbracelet/log"
)

// coreStep is the main single-step execution function
// it returns (halted, error).
func coreStep(i *Interpreter) (bool, error) {
	pc := i.PC()
	if pc < 0 || pc >= len(i.program.Instructions) {
		// falling off the end is the implicit End
		return true, nil
	}

	in := i.program.Instructions[pc]
	f := i.frame

	// slots are resolved against the cursor before the instruction runs
	n := f.Resolve(in.N)

	switch in.Op {
	case codegen.OpEnd:
		return true, nil

	case codegen.OpAdd, codegen.OpSub, codegen.OpMul, codegen.OpDiv:
		y := f.Resolve(in.Y)
		res, err := evalBinary(in.Op, f.Cells[n], f.Cells[y])
		if err != nil {
			return false, fmt.Errorf("%w at line %d", err, in.Pos.Line)
		}
		f.Cells[n] = res
		f.Cursor = n

	case codegen.OpSet:
		f.Cells[n] = int64(in.Y)
		f.Cursor = n

	case codegen.OpPrint:
		if _, err := i.out.Write([]byte{byte(f.Cells[n])}); err != nil {
			return false, fmt.Errorf("print: %w", err)
		}

	case codegen.OpInput:
		v, err := i.readByte()
		if err != nil {
			return false, fmt.Errorf("input: %w", err)
		}
		f.Cells[n] = v
		f.Cursor = n

	case codegen.OpPush:
		f.Cells[f.Ring.Satchel()] = f.Cells[n]
		f.Cursor = n

	case codegen.OpPop:
		// n may alias the satchel, in which case the clear wins
		f.Cells[n] = f.Satchel()
		f.Cells[f.Ring.Satchel()] = 0
		f.Cursor = n

	case codegen.OpLoopBegin:
		loop, ok := i.loops.At(pc)
		if !ok {
			return false, fmt.Errorf("%w: no pair for loop begin at line %d", codegen.ErrUnbalancedLoop, in.Pos.Line)
		}
		if f.Cells[n] == 0 {
			i.SetPC(loop.End + 1)
			return false, nil
		}

	case codegen.OpLoopEnd:
		loop, ok := i.loops.At(pc)
		if !ok {
			return false, fmt.Errorf("%w: no pair for loop end at line %d", codegen.ErrUnbalancedLoop, in.Pos.Line)
		}
		i.SetPC(loop.Begin)
		return false, nil

	default:
		return false, fmt.Errorf("unhandled op at %d: %s", pc, in.Op)
	}

	log.Debug("Executed", "pc", pc, "op", in.Op, "cursor", f.Cursor)

	i.SetPC(pc + 1)
	return false, nil
}

// readByte reads one byte from the input. End of input reads as 0.
func (i *Interpreter) readByte() (int64, error) {
	var buf [1]byte
	_, err := io.ReadFull(i.in, buf[:])
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return int64(buf[0]), nil
}

// evalBinary evaluates a binary operation with signed 64-bit wraparound. Division
// truncates toward zero.
func evalBinary(op codegen.Operation, a, b int64) (int64, error) {
	switch op {
	case codegen.OpAdd:
		return a + b, nil
	case codegen.OpSub:
		return a - b, nil
	case codegen.OpMul:
		return a * b, nil
	case codegen.OpDiv:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	}

	return 0, fmt.Errorf("unsupported binary op: %s", op)
}
