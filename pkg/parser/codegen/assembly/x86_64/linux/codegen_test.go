package x86_64_linux

import (
	"duckc/pkg/parser/codegen"
	"duckc/pkg/parser/codegen/assembly"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func program(slots int, instrs ...codegen.Instruction) *codegen.Program {
	p := codegen.NewProgram(slots)
	for _, in := range instrs {
		in.Argc = in.Op.Arity()
		p.Append(in)
	}
	return p
}

func generate(p *codegen.Program) string {
	a := NewX86_64Linux(p, assembly.Options{})
	Expect(a.Generate()).To(Succeed())
	return a.GetCode()
}

// block returns the lines lowered for the instruction whose comment header is
// "# <header>", up to the next comment line
func block(code, header string) []string {
	lines := strings.Split(code, "\n")
	out := []string{}
	in := false
	for _, l := range lines {
		if strings.HasPrefix(l, "# ") {
			if in {
				break
			}
			in = l == "# "+header
			continue
		}
		if in {
			out = append(out, l)
		}
	}
	return out
}

var end = codegen.Instruction{Op: codegen.OpEnd}

var _ = Describe("x86-64 Linux generator", func() {
	Context("prologue", func() {
		It("should reserve and zero slot count + 1 cells", func() {
			code := generate(program(3, end))

			Expect(code).To(HavePrefix("\t.text\n\t.globl\tmain\nmain:\n"))
			Expect(code).To(ContainSubstring("\tsub\t$32, %rsp\n"))
			Expect(code).To(ContainSubstring("\tmov\t$4, %rcx\n\txor\t%eax, %eax\n\trep stosq\n"))
			Expect(code).To(ContainSubstring("\tmov\t%rsp, %rbx\n"))
			Expect(code).To(ContainSubstring("\txor\t%r12, %r12\n"))
		})

		It("should keep the frame 16-byte aligned", func() {
			Expect(generate(program(0, end))).To(ContainSubstring("\tsub\t$16, %rsp\n"))
			Expect(generate(program(4, end))).To(ContainSubstring("\tsub\t$48, %rsp\n"))
		})
	})

	Context("Set", func() {
		It("should store the literal at the resolved slot and advance the cursor", func() {
			code := generate(program(2,
				codegen.Instruction{Op: codegen.OpSet, N: 1, Y: 2},
				end,
			))

			Expect(block(code, "Set: 1,2")).To(Equal([]string{
				"\tmov\t%r12, %rax",
				"\tadd\t$1, %rax",
				"\txor\t%edx, %edx",
				"\tmov\t$3, %rcx",
				"\tdiv\t%rcx",
				"\tmov\t%rdx, %r8",
				"\tmovabs\t$2, %rax",
				"\tmov\t%rax, (%rbx,%r8,8)",
				"\tmov\t%r8, %r12",
			}))
		})
	})

	Context("arithmetic", func() {
		DescribeTable("should combine n and y into n and advance the cursor",
			func(op codegen.Operation, header, mnemonic string) {
				code := generate(program(3, codegen.Instruction{Op: op, N: 0, Y: 2}, end))
				lines := block(code, header)

				Expect(lines).To(ContainElement("\tmov\t%rdx, %r8"))
				Expect(lines).To(ContainElement("\tmov\t%rdx, %r9"))
				Expect(lines).To(ContainElement("\t" + mnemonic + "\t(%rbx,%r9,8), %rax"))
				Expect(lines[len(lines)-2:]).To(Equal([]string{
					"\tmov\t%rax, (%rbx,%r8,8)",
					"\tmov\t%r8, %r12",
				}))
			},
			Entry("Add", codegen.OpAdd, "Add: 0,2", "add"),
			Entry("Subtract", codegen.OpSub, "Subtract: 0,2", "sub"),
			Entry("Multiply", codegen.OpMul, "Multiply: 0,2", "imul"),
		)

		It("should divide with sign, truncating toward zero", func() {
			code := generate(program(3, codegen.Instruction{Op: codegen.OpDiv, N: 1, Y: 0}, end))
			lines := block(code, "Divide: 1,0")

			Expect(lines).To(ContainElement("\tcqo"))
			Expect(lines).To(ContainElement("\tidivq\t(%rbx,%r9,8)"))
			Expect(lines[len(lines)-1]).To(Equal("\tmov\t%r8, %r12"))
		})
	})

	Context("I/O", func() {
		It("should write one raw byte without moving the cursor", func() {
			code := generate(program(1, codegen.Instruction{Op: codegen.OpPrint, N: 0}, end))
			lines := block(code, "Print: 0")

			Expect(lines[len(lines)-5:]).To(Equal([]string{
				"\tlea\t(%rbx,%r8,8), %rsi",
				"\tmov\t$1, %eax",
				"\tmov\t$1, %edi",
				"\tmov\t$1, %edx",
				"\tsyscall",
			}))
			Expect(code).NotTo(ContainSubstring("%r8, %r12"))
		})

		It("should read one byte into a cleared cell and advance the cursor", func() {
			code := generate(program(1, codegen.Instruction{Op: codegen.OpInput, N: 0}, end))
			lines := block(code, "Input: 0")

			Expect(lines).To(ContainElement("\tmovq\t$0, (%rbx,%r8,8)"))
			Expect(lines).To(ContainElement("\txor\t%edi, %edi"))
			Expect(lines[len(lines)-2:]).To(Equal([]string{"\tsyscall", "\tmov\t%r8, %r12"}))
		})
	})

	Context("satchel", func() {
		It("should copy into the fixed cell on Push", func() {
			code := generate(program(3, codegen.Instruction{Op: codegen.OpPush, N: 2}, end))
			lines := block(code, "Push: 2")

			Expect(lines).To(ContainElement("\tmov\t%rax, 24(%rbx)"))
			Expect(lines[len(lines)-1]).To(Equal("\tmov\t%r8, %r12"))
		})

		It("should move out of the fixed cell and clear it on Pop", func() {
			code := generate(program(3, codegen.Instruction{Op: codegen.OpPop, N: 1}, end))
			lines := block(code, "Pop: 1")

			Expect(lines).To(ContainElement("\tmov\t24(%rbx), %rax"))
			Expect(lines).To(ContainElement("\tmov\t%rax, (%rbx,%r8,8)"))
			Expect(lines).To(ContainElement("\tmovq\t$0, 24(%rbx)"))
		})
	})

	Context("loops", func() {
		It("should label loops by nesting, not by source tag", func() {
			code := generate(program(2,
				codegen.Instruction{Op: codegen.OpLoopBegin, N: 0, Y: 7},
				codegen.Instruction{Op: codegen.OpLoopBegin, N: 1, Y: 7},
				codegen.Instruction{Op: codegen.OpLoopEnd},
				codegen.Instruction{Op: codegen.OpLoopEnd},
				end,
			))

			Expect(code).To(ContainSubstring(".Lloop_0:\t# tag 7\n"))
			Expect(code).To(ContainSubstring(".Lloop_1:\t# tag 7\n"))
			Expect(code).To(ContainSubstring("\tcmpq\t$0, (%rbx,%r8,8)\n\tje\t.Lend_1\n"))
			Expect(code).To(ContainSubstring("\tjmp\t.Lloop_1\n.Lend_1:\n# LoopEnd: 0,0\n\tjmp\t.Lloop_0\n.Lend_0:\n"))
		})

		It("should reject an unmatched loop end", func() {
			a := NewX86_64Linux(program(1, codegen.Instruction{Op: codegen.OpLoopEnd}, end), assembly.Options{})
			Expect(a.Generate()).To(MatchError(codegen.ErrUnbalancedLoop))
		})
	})

	Context("termination", func() {
		It("should append an exit after the program's own End", func() {
			code := generate(program(0, end))

			Expect(strings.Count(code, "\tmov\t$60, %eax\n")).To(Equal(2))
			Expect(code).To(HaveSuffix("# implicit End\n\tmov\t$60, %eax\n\txor\t%edi, %edi\n\tsyscall\n\t.section\t.note.GNU-stack,\"\",@progbits\n"))
		})

		It("should produce identical text when generated twice", func() {
			p := program(3,
				codegen.Instruction{Op: codegen.OpSet, N: 1, Y: 72},
				codegen.Instruction{Op: codegen.OpLoopBegin, N: 1},
				codegen.Instruction{Op: codegen.OpPrint, N: 1},
				codegen.Instruction{Op: codegen.OpLoopEnd},
				end,
			)

			a := NewX86_64Linux(p, assembly.Options{})
			Expect(a.Generate()).To(Succeed())
			first := a.GetCode()
			Expect(a.Generate()).To(Succeed())

			Expect(a.GetCode()).To(Equal(first))
			Expect(generate(p)).To(Equal(first))
		})
	})
})
