// Command mc8asm assembles mc8 source into a flat binary image.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lookbusy1344/mc8/config"
	"github.com/lookbusy1344/mc8/loader"
	"github.com/lookbusy1344/mc8/parser"
	"github.com/lookbusy1344/mc8/tools"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		out         = flag.String("o", "", "Output binary path (default: <target-file>, else <input>.bin)")
		macroDepth  = flag.Int("macro-depth", 0, "Maximum macro expansion depth (default: from config, or 256)")
		lint        = flag.Bool("lint", false, "Run the static lint pass and print findings")
		noLint      = flag.Bool("no-lint", false, "Disable the static lint pass even if the config file enables it")
		configPath  = flag.String("config", "", "Path to a mc8.toml config file (default: platform config dir)")
		verbose     = flag.Bool("verbose", false, "Verbose output")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("mc8asm %s (%s)\n", Version, Commit)
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		printHelp()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	depth := cfg.Assembler.MacroDepth
	if *macroDepth > 0 {
		depth = *macroDepth
	}

	src := flag.Arg(0)
	source, err := os.ReadFile(src) // #nosec G304 -- user-supplied source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", src, err)
		os.Exit(1)
	}

	if cfg.Assembler.Lint && !*noLint || *lint {
		runLint(string(source), src)
	}

	if *verbose {
		fmt.Printf("Assembling %s (macro depth %d)\n", src, depth)
	}

	image, err := loader.Assemble(string(source), src, depth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Assembly error:\n%v\n", err)
		os.Exit(1)
	}

	outPath := *out
	if outPath == "" && flag.NArg() > 1 {
		outPath = flag.Arg(1)
	}
	if outPath == "" {
		outPath = src + ".bin"
	}
	if err := os.WriteFile(outPath, image, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Wrote %d bytes to %s\n", len(image), outPath)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func runLint(source, filename string) {
	lexer := parser.NewLexer(source, filename)
	tokens := lexer.TokenizeAll()
	if lexer.Errors().HasErrors() {
		fmt.Fprintf(os.Stderr, "lint: lex errors, skipping: %v\n", lexer.Errors())
		return
	}
	p := parser.NewParser(tokens)
	prog, perr := p.Parse()
	if perr != nil || prog == nil {
		fmt.Fprintf(os.Stderr, "lint: parse errors, skipping\n")
		return
	}
	for _, issue := range tools.Lint(prog) {
		fmt.Fprintf(os.Stderr, "lint: %s\n", issue)
	}
}

func printHelp() {
	fmt.Print(`mc8asm - mc8 assembler

Usage: mc8asm [options] <source-file> [target-file]

Options:
  -o FILE            Output binary path (default: <target-file>, else <input>.bin)
  -macro-depth N      Maximum macro expansion depth (default: from config, or 256)
  -lint               Run the static lint pass and print findings
  -no-lint            Disable the static lint pass even if the config file enables it
  -config FILE        Path to a mc8.toml config file (default: platform config dir)
  -verbose            Verbose output
  -version            Show version information
  -help               Show this help message

Examples:
  mc8asm program.mc8
  mc8asm -o program.bin -lint program.mc8
`)
}
