package x86_64_linux

import (
	"bytes"
	"duckc/pkg/interpreter"
	"duckc/pkg/parser/codegen"
	"duckc/pkg/parser/codegen/assembly"
	"os/exec"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func op(o codegen.Operation, n, y int) codegen.Instruction {
	return codegen.Instruction{Op: o, N: n, Y: y}
}

var _ = Describe("Executable", func() {
	BeforeEach(func() {
		for _, tool := range []string{"as", "cc"} {
			if _, err := exec.LookPath(tool); err != nil {
				Skip(tool + " is not installed")
			}
		}
	})

	DescribeTable("should produce the interpreter's output",
		func(input string, p *codegen.Program) {
			dir := GinkgoT().TempDir()
			exe := filepath.Join(dir, "prog")

			a := NewX86_64Linux(p, assembly.Options{Output: exe, WorkDir: dir})
			Expect(a.Generate()).To(Succeed())
			Expect(a.Build()).To(Succeed())

			cmd := exec.Command(exe)
			cmd.Stdin = strings.NewReader(input)
			got, err := cmd.Output()
			Expect(err).NotTo(HaveOccurred())

			want := &bytes.Buffer{}
			it, err := interpreter.NewInterpreter(p,
				interpreter.WithReader(strings.NewReader(input)),
				interpreter.WithWriter(want),
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(it.Run()).To(Succeed())

			Expect(got).To(Equal(want.Bytes()))
		},
		Entry("arithmetic across a rotating cursor", "", program(2,
			op(codegen.OpSet, 0, 6),
			op(codegen.OpSet, 1, 7),
			op(codegen.OpMul, 0, 2),
			op(codegen.OpPrint, 0, 0),
			op(codegen.OpSet, 1, -7),
			op(codegen.OpSet, 1, 2),
			op(codegen.OpDiv, 2, 0),
			op(codegen.OpAdd, 1, 2),
			op(codegen.OpPrint, 2, 0),
			op(codegen.OpPrint, 0, 0),
			end,
		)),
		Entry("push and pop, including a pop onto the satchel", "", program(2,
			op(codegen.OpSet, 0, 9),
			op(codegen.OpPush, 0, 0),
			op(codegen.OpPop, 1, 0),
			op(codegen.OpPrint, 0, 0),
			op(codegen.OpSet, 1, 65),
			op(codegen.OpPop, 0, 0),
			op(codegen.OpPrint, 0, 0),
			op(codegen.OpPrint, 1, 0),
			end,
		)),
		Entry("a counting loop", "", program(2,
			op(codegen.OpSet, 1, 1),
			op(codegen.OpSet, 2, 3),
			op(codegen.OpLoopBegin, 0, 5),
			op(codegen.OpPrint, 0, 0),
			op(codegen.OpSub, 0, 1),
			op(codegen.OpLoopEnd, 0, 0),
			end,
		)),
		Entry("input echoed back, then end of input", "ok", program(2,
			op(codegen.OpInput, 0, 0),
			op(codegen.OpPrint, 0, 0),
			op(codegen.OpInput, 1, 0),
			op(codegen.OpPrint, 1, 0),
			op(codegen.OpInput, 0, 0),
			op(codegen.OpPrint, 0, 0),
			end,
		)),
		Entry("a mid-program End", "", program(1,
			op(codegen.OpSet, 0, 'A'),
			op(codegen.OpPrint, 0, 0),
			end,
			op(codegen.OpPrint, 0, 0),
			end,
		)),
	)
})
