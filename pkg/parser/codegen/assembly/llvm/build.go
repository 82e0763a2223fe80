package llvm

import (
	"duckc/pkg/parser/codegen/assembly"
	"errors"
)

// Build compiles the LLVM IR into a native executable with clang
func (g *llvmIR) Build() error {
	if g.text == "" {
		return errors.New("nothing to build: Generate has not run")
	}

	return assembly.Toolchain(g.opts, []byte(g.text), "program.ll", func(src, exe string) []assembly.Step {
		return []assembly.Step{
			{Name: "compilation", Tool: "clang", Args: []string{"-o", exe, src}},
		}
	})
}
