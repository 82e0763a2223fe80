package parser

import (
	"duckc/pkg/color"
	"duckc/pkg/lexer"
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the parser wraps exactly one of these.
var (
	ErrMissingHeaderMarker  = errors.New("missing goose")
	ErrMultipleMarkers      = errors.New("there can only be one goose")
	ErrMarkerOrder          = errors.New("duck after goose")
	ErrUnexpectedEndOfInput = errors.New("unexpected end of input")
	ErrUnknownOpcode        = errors.New("unknown opcode")
	ErrArity                = errors.New("mismatched argument count")
	ErrTrailingOperands     = errors.New("trailing operands")
)

// Error is a parse failure at a source position
type Error struct {
	Kind   error          // one of the Err* kinds above
	Pos    lexer.Position // where it happened
	Detail string         // optional extra context
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s at Line: %d, Column %d", e.Kind, e.Pos.Line, e.Pos.Column)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Pretty renders the error for terminal output
func (e *Error) Pretty() string {
	msg := color.RedText(e.Kind.Error()) + " at " + color.YellowText(fmt.Sprintf("Line: %d, Column %d", e.Pos.Line, e.Pos.Column))
	if e.Detail != "" {
		msg += " " + color.GrayText("("+e.Detail+")")
	}

	return msg
}

// newError creates a positioned parse error
func newError(kind error, pos lexer.Position, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Pos:    pos,
		Detail: fmt.Sprintf(format, args...),
	}
}
