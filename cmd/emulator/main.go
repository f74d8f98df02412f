// Command mc8vm runs an mc8 binary image, optionally under the interactive debugger.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lookbusy1344/mc8/config"
	"github.com/lookbusy1344/mc8/debugger"
	"github.com/lookbusy1344/mc8/loader"
	"github.com/lookbusy1344/mc8/vm"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		asSource    = flag.Bool("source", false, "Treat the input file as mc8 assembly source, not a binary image")
		macroDepth  = flag.Int("macro-depth", 0, "Macro expansion depth when -source is given (default: from config)")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum instructions to execute before aborting (0: from config)")
		debugMode   = flag.Bool("debug", false, "Start the interactive terminal debugger")
		traceFile   = flag.String("trace", "", "Append one line per executed instruction to this file")
		configPath  = flag.String("config", "", "Path to a mc8.toml config file (default: platform config dir)")
		verbose     = flag.Bool("verbose", false, "Verbose output")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("mc8vm %s (%s)\n", Version, Commit)
		os.Exit(0)
	}
	if *showHelp || flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	cycles := cfg.Emulator.MaxCycles
	if *maxCycles > 0 {
		cycles = *maxCycles
	}

	path := flag.Arg(0)
	machine := vm.NewVM()

	if *asSource {
		depth := cfg.Assembler.MacroDepth
		if *macroDepth > 0 {
			depth = *macroDepth
		}
		if err := loader.AssembleAndLoad(machine, path, depth); err != nil {
			fmt.Fprintf(os.Stderr, "Assembly error:\n%v\n", err)
			os.Exit(1)
		}
	} else {
		if err := loader.LoadBinaryFile(machine, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	trace := *traceFile
	if trace == "" {
		trace = cfg.Emulator.TraceFile
	}
	if trace != "" {
		f, err := os.OpenFile(trace, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644) // #nosec G304 -- user-specified trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		machine.Trace = vm.NewExecutionTrace(f)
	}

	if *debugMode {
		dbg := debugger.NewDebugger(machine)
		tui := debugger.NewTUI(dbg)
		if err := tui.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *verbose {
		fmt.Println("Starting execution...")
	}

	if err := machine.Run(cycles); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error at pc=0x%04X: %v\n", machine.CPU.PC(), err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Halted after %d cycles\n", machine.CPU.Cycles)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func printHelp() {
	fmt.Print(`mc8vm - mc8 emulator

Usage: mc8vm [options] <image-file>

Options:
  -source             Treat the input file as mc8 assembly source, assembling it first
  -macro-depth N       Macro expansion depth when -source is given (default: from config)
  -max-cycles N        Maximum instructions to execute before aborting (0: from config, 0 there means unbounded)
  -debug               Start the interactive terminal debugger
  -trace FILE          Append one line per executed instruction to FILE
  -config FILE         Path to a mc8.toml config file (default: platform config dir)
  -verbose             Verbose output
  -version             Show version information
  -help                Show this help message

Examples:
  mc8vm program.bin
  mc8vm -source -debug program.mc8
  mc8vm -trace run.trace program.bin
`)
}
