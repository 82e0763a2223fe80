package compiler

import (
	"duckc/pkg/color"
	"duckc/pkg/interpreter"
	"duckc/pkg/parser"
	"duckc/pkg/parser/codegen"
	"duckc/pkg/parser/codegen/assembly"
	"duckc/pkg/parser/codegen/assembly/llvm"
	x86_64_linux "duckc/pkg/parser/codegen/assembly/x86_64/linux"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Supported targets
const (
	TargetX86_64Linux = "x86_64-linux"
	TargetLLVM        = "llvm"
)

type Compiler struct {
	Help            bool   // Show help message
	Verbose         bool   // Enable verbose output
	ShouldInterpret bool   // Whether to run the program with the interpreter
	ShouldCompile   bool   // Whether to build an executable
	NoColor         bool   // Disable colored output
	Strict          bool   // Reject operands left over at an opcode line
	TargetArch      string // Target for code generation (x86_64-linux or llvm)
	SourceFile      string // Path to the source file
	AsmFile         string // Path of the generated code; empty skips writing it
	OutputFile      string // Path to the executable
	Dump            string // Decoded program dump format: text, yaml or empty
	MaxSteps        int    // Interpreter step limit, 0 for none
	WorkDir         string // Parent directory for build scratch space

	Runner assembly.Runner // Toolchain runner; nil runs the real tools
	Stdin  io.Reader       // Interpreter input; nil is os.Stdin
	Stdout io.Writer       // Dumps, reports and interpreter output; nil is os.Stdout
}

// Compile decodes the source file, writes the generated code and then builds it,
// runs it, or both, depending on the options set.
func (opts *Compiler) Compile() error {
	log.Info("Processing file", "file", opts.SourceFile)

	program, err := opts.load()
	if err != nil {
		return err
	}

	if opts.Dump != "" {
		if err := Dump(opts.stdout(), program, opts.Dump); err != nil {
			return err
		}
	}

	if opts.Verbose {
		fmt.Fprintln(opts.stdout(), color.GreenText("\n=== Decoded Program ==="))
		if err := Dump(opts.stdout(), program, DumpText); err != nil {
			return err
		}
	}

	arch, err := opts.backend(program)
	if err != nil {
		return err
	}

	if err := arch.Generate(); err != nil {
		return fmt.Errorf("code generation failed: %w", err)
	}

	code := arch.GetCode()
	if opts.Verbose {
		fmt.Fprintln(opts.stdout(), color.GreenText("\n=== Generated Code ==="))
		fmt.Fprintln(opts.stdout(), code)
	}

	if opts.AsmFile != "" {
		if err := assembly.WriteFile(opts.AsmFile, []byte(code), 0o644); err != nil {
			return err
		}
		log.Info("Wrote generated code", "file", opts.AsmFile, "size", humanize.Bytes(uint64(len(code))))
	}

	if opts.ShouldCompile {
		if err := arch.Build(); err != nil {
			return fmt.Errorf("build failed: %w", err)
		}

		if info, err := os.Stat(opts.OutputFile); err == nil {
			log.Info("Built executable", "file", opts.OutputFile, "size", humanize.Bytes(uint64(info.Size())))
		}
	}

	if opts.ShouldInterpret {
		intr, err := interpreter.NewInterpreter(program,
			interpreter.WithReader(opts.stdin()),
			interpreter.WithWriter(opts.stdout()),
			interpreter.WithMaxSteps(opts.MaxSteps),
		)
		if err != nil {
			return fmt.Errorf("interpretation failed: %w", err)
		}

		if opts.Verbose {
			fmt.Fprintln(opts.stdout(), color.GreenText("\n=== Program Output ==="))
		}
		if err := intr.Run(); err != nil {
			return fmt.Errorf("interpretation failed: %w", err)
		}
	}

	return nil
}

// load reads, decodes and validates the source file
func (opts *Compiler) load() (*codegen.Program, error) {
	f, err := os.Open(opts.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()

	var popts []parser.Option
	if opts.Strict {
		popts = append(popts, parser.WithStrictOperands())
	}

	program, err := parser.NewParser(f, popts...).Parse()
	if err != nil {
		fmt.Fprintln(opts.stdout(), color.BrightRedText("=== Syntax Errors ==="))

		var perr *parser.Error
		if errors.As(err, &perr) {
			fmt.Fprintln(opts.stdout(), perr.Pretty())
		} else {
			fmt.Fprintln(opts.stdout(), err)
		}

		return nil, fmt.Errorf("parsing failed: %w", err)
	}

	if err := codegen.Validate(program); err != nil {
		fmt.Fprintln(opts.stdout(), color.BrightRedText("=== Program Errors ==="))
		fmt.Fprintln(opts.stdout(), err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	log.Debug("Decoded program", "slots", program.Slots, "instructions", program.Len())

	return program, nil
}

// backend returns the code generator for the configured target
func (opts *Compiler) backend(program *codegen.Program) (assembly.Assembly, error) {
	aopts := assembly.Options{
		Output:  opts.OutputFile,
		WorkDir: opts.WorkDir,
		Runner:  opts.Runner,
	}

	switch opts.TargetArch {
	case TargetX86_64Linux, "":
		return x86_64_linux.NewX86_64Linux(program, aopts), nil
	case TargetLLVM:
		return llvm.NewLLVM(program, aopts), nil
	default:
		return nil, fmt.Errorf("unsupported target %q (want %s or %s)", opts.TargetArch, TargetX86_64Linux, TargetLLVM)
	}
}

func (opts *Compiler) stdout() io.Writer {
	if opts.Stdout == nil {
		return os.Stdout
	}

	return opts.Stdout
}

func (opts *Compiler) stdin() io.Reader {
	if opts.Stdin == nil {
		return os.Stdin
	}

	return opts.Stdin
}
