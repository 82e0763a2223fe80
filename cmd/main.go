package main

import (
	"duckc/internal/compiler"
	"duckc/internal/logger"
	"duckc/pkg/color"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/tebeka/atexit"
)

// Main entry point for the duck compiler.
func main() {
	options := compiler.Compiler{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode")
	flag.BoolVar(&options.ShouldInterpret, "r", false, "Run with interpreter")
	flag.BoolVar(&options.ShouldCompile, "c", false, "Compile to binary")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.BoolVar(&options.Strict, "strict", false, "Reject operands left over at an opcode line")
	flag.StringVar(&options.TargetArch, "a", compiler.TargetX86_64Linux, "Target (x86_64-linux, llvm)")
	flag.StringVar(&options.AsmFile, "S", "out.s", "Generated code file (empty to skip)")
	flag.StringVar(&options.OutputFile, "o", "a.out", "Output binary name")
	flag.StringVar(&options.Dump, "dump", "", "Print the decoded program (text, yaml)")
	flag.IntVar(&options.MaxSteps, "max-steps", 0, "Interpreter step limit (0 = unlimited)")

	flag.Parse()
	args := flag.Args()

	logger.Init(options.Verbose, options.NoColor)
	if options.Help {
		fmt.Printf("Usage: %s [options] <file.duck>\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		atexit.Exit(0)
	}

	if options.NoColor {
		color.EnableColor(false)
	}

	if len(args) == 0 {
		log.Error("No input file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
		atexit.Exit(2)
	}

	options.SourceFile = args[0]

	if options.ShouldCompile {
		dir, err := os.MkdirTemp("", "duckc_")
		if err != nil {
			log.Error("Failed to create work directory", "error", err)
			atexit.Exit(1)
		}
		atexit.Register(func() { os.RemoveAll(dir) })
		options.WorkDir = dir
	}

	if err := options.Compile(); err != nil {
		log.Error("Compilation failed", "error", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
