package compiler

import (
	"duckc/pkg/parser/codegen"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Dump formats
const (
	DumpText = "text"
	DumpYAML = "yaml"
)

type programDump struct {
	Slots        int               `yaml:"slots"`
	Instructions []instructionDump `yaml:"instructions"`
}

type instructionDump struct {
	codegen.Instruction `yaml:",inline"`
	Line                int `yaml:"line"`
}

// Dump writes the decoded program to w. The text form lists the slot count and
// one instruction per line with the line of its opcode.
func Dump(w io.Writer, p *codegen.Program, format string) error {
	switch format {
	case DumpText:
		fmt.Fprintf(w, "There are %d duck(s).\n", p.Slots)
		for _, in := range p.Instructions {
			fmt.Fprintf(w, "g: %d -> %s\n", in.Pos.Line, in)
		}
		return nil

	case DumpYAML:
		d := programDump{Slots: p.Slots, Instructions: make([]instructionDump, 0, p.Len())}
		for _, in := range p.Instructions {
			d.Instructions = append(d.Instructions, instructionDump{Instruction: in, Line: in.Pos.Line})
		}

		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to dump program: %w", err)
		}
		return enc.Close()

	default:
		return fmt.Errorf("unknown dump format %q (want %s or %s)", format, DumpText, DumpYAML)
	}
}
