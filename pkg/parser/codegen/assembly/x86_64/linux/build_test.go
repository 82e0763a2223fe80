package x86_64_linux

import (
	"duckc/pkg/parser/codegen"
	"duckc/pkg/parser/codegen/assembly"
	"errors"
	"os"
	"path/filepath"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Build", func() {
	var (
		mockCtrl *gomock.Controller
		runner   *MockRunner
		dir      string
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		runner = NewMockRunner(mockCtrl)
		dir = GinkgoT().TempDir()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	newBackend := func() assembly.Assembly {
		p := codegen.NewProgram(1)
		p.Append(codegen.Instruction{Op: codegen.OpEnd})
		return NewX86_64Linux(p, assembly.Options{
			Output:  filepath.Join(dir, "a.out"),
			WorkDir: dir,
			Runner:  runner,
		})
	}

	It("should refuse to build before Generate", func() {
		Expect(newBackend().Build()).NotTo(Succeed())
	})

	It("should assemble, link and copy the executable", func() {
		a := newBackend()
		Expect(a.Generate()).To(Succeed())

		gomock.InOrder(
			runner.EXPECT().
				Run("as", "--64", "-o", gomock.Any(), gomock.Any()).
				DoAndReturn(func(name string, args ...string) ([]byte, error) {
					src, err := os.ReadFile(args[3])
					Expect(err).NotTo(HaveOccurred())
					Expect(string(src)).To(Equal(a.GetCode()))
					return nil, nil
				}),
			runner.EXPECT().
				Run("cc", "-o", gomock.Any(), gomock.Any()).
				DoAndReturn(func(name string, args ...string) ([]byte, error) {
					return nil, os.WriteFile(args[1], []byte("ELF"), 0o755)
				}),
		)

		Expect(a.Build()).To(Succeed())

		data, err := os.ReadFile(filepath.Join(dir, "a.out"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("ELF"))
	})

	It("should report the assembler output on failure", func() {
		a := newBackend()
		Expect(a.Generate()).To(Succeed())

		runner.EXPECT().
			Run("as", gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]byte("bad mnemonic"), errors.New("exit status 1"))

		err := a.Build()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("bad mnemonic"))

		_, statErr := os.Stat(filepath.Join(dir, "a.out"))
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})
})
