package interpreter

import "duckc/pkg/parser/codegen"

// Frame is the machine memory: the ring cells and the cursor over them.
type Frame struct {
	Ring   codegen.Ring
	Cells  []int64 // Ring.Size() cells, the last one is the satchel
	Cursor int     // physical index of logical slot 0
}

func newFrame(r codegen.Ring) *Frame {
	return &Frame{
		Ring:  r,
		Cells: make([]int64, r.Size()),
	}
}

// Resolve returns the physical cell of a logical slot for the current cursor
func (f *Frame) Resolve(slot int) int {
	return f.Ring.Resolve(f.Cursor, slot)
}

// Satchel returns the satchel cell value
func (f *Frame) Satchel() int64 {
	return f.Cells[f.Ring.Satchel()]
}
