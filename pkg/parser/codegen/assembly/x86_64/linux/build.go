package x86_64_linux

import (
	"duckc/pkg/parser/codegen/assembly"
	"errors"
)

// Build assembles and links the x86-64 assembly code into a Linux executable
func (a *x86_64Linux) Build() error {
	if a.text.Len() == 0 {
		return errors.New("nothing to build: Generate has not run")
	}

	return assembly.Toolchain(a.opts, a.text.Bytes(), "program.s", func(src, exe string) []assembly.Step {
		obj := exe + ".o"
		return []assembly.Step{
			{Name: "assembly", Tool: "as", Args: []string{"--64", "-o", obj, src}},
			{Name: "linking", Tool: "cc", Args: []string{"-o", exe, obj}},
		}
	})
}
