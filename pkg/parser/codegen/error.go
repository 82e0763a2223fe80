package codegen

import (
	"errors"
)

var (
	ErrUnterminatedProgram = errors.New("program does not end with goose")
	ErrUnbalancedLoop      = errors.New("unbalanced loop")
)
