// Package loader turns mc8 assembly source or a pre-encoded byte image into a running VM.
package loader

import (
	"fmt"
	"os"

	"github.com/lookbusy1344/mc8/encoder"
	"github.com/lookbusy1344/mc8/parser"
	"github.com/lookbusy1344/mc8/vm"
)

// Assemble lexes, parses, expands macros in, and encodes mc8 source into a binary image.
func Assemble(source, filename string, macroDepth int) ([]byte, error) {
	lexer := parser.NewLexer(source, filename)
	tokens := lexer.TokenizeAll()
	if errs := lexer.Errors(); errs.HasErrors() {
		return nil, errs
	}

	p := parser.NewParser(tokens)
	program, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if errs := p.Errors(); errs.HasErrors() {
		return nil, errs
	}

	instructions, err := parser.Expand(program, macroDepth)
	if err != nil {
		return nil, err
	}

	image, encErr := encoder.Encode(instructions)
	if encErr != nil {
		return nil, encErr
	}
	return image, nil
}

// AssembleFile reads path and assembles it, per Assemble.
func AssembleFile(path string, macroDepth int) ([]byte, error) {
	source, err := os.ReadFile(path) // #nosec G304 -- user-supplied source path
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}
	return Assemble(string(source), path, macroDepth)
}

// LoadImageIntoVM copies an already-encoded byte image into the VM's RAM at offset 0 and resets
// the program counter to 0, per the boot procedure in §4.5. The stack pointer and all other
// registers are left at their zeroed NewVM state.
func LoadImageIntoVM(machine *vm.VM, image []byte) error {
	if len(image) > len(machine.Mem.RAM) {
		return fmt.Errorf("image of %d bytes exceeds %d-byte RAM", len(image), len(machine.Mem.RAM))
	}
	machine.Mem.Load(image)
	machine.CPU.SetPC(0)
	return nil
}

// LoadBinaryFile reads a pre-encoded image file from disk and loads it into machine.
func LoadBinaryFile(machine *vm.VM, path string) error {
	image, err := os.ReadFile(path) // #nosec G304 -- user-supplied binary path
	if err != nil {
		return fmt.Errorf("failed to read binary file: %w", err)
	}
	return LoadImageIntoVM(machine, image)
}

// AssembleAndLoad assembles source and loads the resulting image into machine in one step, the
// path the emulator takes for -source input in both its -debug and direct-run modes (§10.3).
func AssembleAndLoad(machine *vm.VM, path string, macroDepth int) error {
	image, err := AssembleFile(path, macroDepth)
	if err != nil {
		return err
	}
	return LoadImageIntoVM(machine, image)
}
