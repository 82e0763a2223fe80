package parser

import (
	"bufio"
	"duckc/pkg/lexer"
	"duckc/pkg/parser/codegen"
	"duckc/pkg/parser/stack"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

type Parser struct {
	reader *bufio.Reader // source lines
	stack  *stack.Stack  // operand stack, cleared after every opcode line
	line   int           // number of the last line read
	offset int           // byte offset of the next line
	strict bool          // reject operands left over by an opcode

	headerDone bool // header already consumed
	slots      int  // slot count fixed by the header
}

type Option func(*Parser)

// WithStrictOperands makes operands left on the stack by an opcode line an error
// instead of silently discarding them
func WithStrictOperands() Option {
	return func(p *Parser) { p.strict = true }
}

// NewParser creates a new parser instance reading source lines from r
func NewParser(r io.Reader, opts ...Option) *Parser {
	p := &Parser{
		reader: bufio.NewReader(r),
		stack:  stack.NewStack(),
	}

	for _, o := range opts {
		o(p)
	}

	return p
}

// Parse reads the header and decodes the whole body. The returned program has not
// been validated.
func (p *Parser) Parse() (*codegen.Program, error) {
	if _, err := p.ParseHeader(); err != nil {
		return nil, err
	}

	return p.Decode()
}

// ParseHeader consumes leading lines up to and including the header line and
// returns the slot count
func (p *Parser) ParseHeader() (int, error) {
	if p.headerDone {
		return p.slots, nil
	}

	for {
		line, ok, err := p.nextLine()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, newError(ErrUnexpectedEndOfInput, lexer.NewPosition(p.line, 1, p.offset), "no header line found")
		}

		if line.Counts.Geese == 0 {
			if line.Counts.Ducks == 0 {
				continue
			}

			duck := line.Tokens[0]
			return 0, newError(ErrMissingHeaderMarker, duck.Pos, "header line has %d duck(s) and no goose", line.Counts.Ducks)
		}

		if err := checkMarkers(line); err != nil {
			return 0, err
		}

		p.slots = line.Counts.Ducks
		p.headerDone = true
		log.Debug("Parsed header", "line", line.Number, "slots", p.slots)

		return p.slots, nil
	}
}

// Decode turns the remaining lines into instructions
func (p *Parser) Decode() (*codegen.Program, error) {
	if _, err := p.ParseHeader(); err != nil {
		return nil, err
	}

	program := codegen.NewProgram(p.slots)
	p.stack.Clear()

	for {
		line, ok, err := p.nextLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		if line.Counts.Geese == 0 {
			p.stack.Push(line.Counts.Ducks)
			continue
		}

		if err := checkMarkers(line); err != nil {
			return nil, err
		}

		goose, _ := line.Goose()
		in, err := p.decodeInstruction(line.Counts.Ducks, goose.Pos)
		if err != nil {
			return nil, err
		}

		if p.strict && p.stack.Size() > 0 {
			return nil, newError(ErrTrailingOperands, goose.Pos, "%s left %d operand(s) unused", in.Op, p.stack.Size())
		}
		p.stack.Clear()

		program.Append(in)
	}

	log.Debug("Decoded body", "instructions", program.Len())

	return program, nil
}

// decodeInstruction pops the operands of the opcode from the operand stack. The
// operand pushed last becomes y, the one before it n.
func (p *Parser) decodeInstruction(code int, pos lexer.Position) (codegen.Instruction, error) {
	op, ok := codegen.DecodeOperation(code)
	if !ok {
		return codegen.Instruction{}, newError(ErrUnknownOpcode, pos, "opcode %d", code)
	}

	in := codegen.Instruction{Op: op, Argc: op.Arity(), Pos: pos}

	switch op {
	case codegen.OpEnd:
	case codegen.OpPrint, codegen.OpInput, codegen.OpPush, codegen.OpPop:
		n, ok := p.stack.Pop()
		if !ok {
			return in, newError(ErrArity, pos, "%s needs 1 operand", op)
		}
		in.N = n
	case codegen.OpAdd, codegen.OpSub, codegen.OpMul, codegen.OpDiv, codegen.OpSet:
		y, ok := p.stack.Pop()
		if !ok {
			return in, newError(ErrArity, pos, "%s needs 2 operands, got 0", op)
		}
		n, ok := p.stack.Pop()
		if !ok {
			return in, newError(ErrArity, pos, "%s needs 2 operands, got 1", op)
		}
		in.N, in.Y = n, y
	case codegen.OpLoopBegin:
		in.Y = p.stack.PopOr(0)
		n, ok := p.stack.Pop()
		if !ok {
			return in, newError(ErrArity, pos, "%s needs a slot operand", op)
		}
		in.N = n
	case codegen.OpLoopEnd:
		in.N = p.stack.PopOr(0)
	}

	return in, nil
}

// checkMarkers enforces the one-goose rule and that every duck precedes the goose
func checkMarkers(line lexer.Line) error {
	geese := line.Geese()
	if len(geese) > 1 {
		return newError(ErrMultipleMarkers, geese[1].Pos, "found %d geese", len(geese))
	}

	duck, ok := line.LastDuck()
	if ok && duck.Pos.Offset > geese[0].Pos.Offset {
		return newError(ErrMarkerOrder, duck.Pos, "")
	}

	return nil
}

// nextLine reads and scans the next source line; ok is false at end of input
func (p *Parser) nextLine() (lexer.Line, bool, error) {
	text, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return lexer.Line{}, false, fmt.Errorf("failed to read line %d: %w", p.line+1, err)
	}
	if text == "" {
		return lexer.Line{}, false, nil
	}

	p.line++
	line := lexer.ScanLine(text, p.line, p.offset)
	p.offset += len(text)

	return line, true, nil
}
