package codegen

import (
	"duckc/pkg/parser/stack"
	"fmt"
)

// Ring describes the circular cell buffer backing the logical slots. It holds
// Slots+1 cells; logical slot i lives at (cursor + i) mod Size(), and the satchel
// is the fixed cell at index Slots, addressed without the cursor.
type Ring struct {
	Slots int
}

// Size returns the number of physical cells
func (r Ring) Size() int {
	return r.Slots + 1
}

// Satchel returns the fixed cell index used by Push and Pop
func (r Ring) Satchel() int {
	return r.Slots
}

// Resolve maps a logical slot to its physical cell for the given cursor
func (r Ring) Resolve(cursor, slot int) int {
	return (cursor + slot) % r.Size()
}

// Loop is one LoopBegin/LoopEnd pair matched by nesting
type Loop struct {
	ID    int // label number, allocated in source order of LoopBegin
	Begin int // instruction index of LoopBegin
	End   int // instruction index of LoopEnd
	Tag   int // identifier supplied by the source on LoopBegin
}

// LoopPlan assigns a label to every loop instruction of a program
type LoopPlan struct {
	loops   []Loop
	byIndex map[int]int // instruction index -> position in loops
}

// PlanLoops pairs each LoopEnd with the innermost open LoopBegin
func PlanLoops(instructions []Instruction) (*LoopPlan, error) {
	lp := &LoopPlan{
		loops:   make([]Loop, 0),
		byIndex: make(map[int]int),
	}
	open := stack.NewStack()

	for idx, in := range instructions {
		switch in.Op {
		case OpLoopBegin:
			id := len(lp.loops)
			lp.loops = append(lp.loops, Loop{ID: id, Begin: idx, End: -1, Tag: in.Y})
			lp.byIndex[idx] = id
			open.Push(id)
		case OpLoopEnd:
			id, ok := open.Pop()
			if !ok {
				return nil, fmt.Errorf("%w: loop end at line %d has no matching begin", ErrUnbalancedLoop, in.Pos.Line)
			}
			lp.loops[id].End = idx
			lp.byIndex[idx] = id
		}
	}

	if id, ok := open.Peek(); ok {
		begin := instructions[lp.loops[id].Begin]
		return nil, fmt.Errorf("%w: loop begin at line %d is never closed", ErrUnbalancedLoop, begin.Pos.Line)
	}

	return lp, nil
}

// At returns the loop that the instruction at idx begins or ends
func (lp *LoopPlan) At(idx int) (Loop, bool) {
	id, ok := lp.byIndex[idx]
	if !ok {
		return Loop{}, false
	}

	return lp.loops[id], true
}

// Len returns the number of loops
func (lp *LoopPlan) Len() int {
	return len(lp.loops)
}

// State is the generator state for one compilation
type State struct {
	Ring  Ring
	Loops *LoopPlan
}

// NewState builds the generator state for a validated program
func NewState(p *Program) (*State, error) {
	loops, err := PlanLoops(p.Instructions)
	if err != nil {
		return nil, err
	}

	return &State{
		Ring:  Ring{Slots: p.Slots},
		Loops: loops,
	}, nil
}
