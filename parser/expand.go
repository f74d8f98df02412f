package parser

import "github.com/lookbusy1344/mc8/isa"

// Expand flattens a parsed Program into the ordered instruction stream that the encoder consumes
// (§3 stage 4): every top-level macro call is expanded (recursively, through nested calls) against
// the program's macro table, and every LABEL item becomes an isa.Label pseudo-instruction in
// place. maxDepth bounds macro recursion (0 uses the default of 256, per §4.3/§9).
func Expand(prog *Program, maxDepth int) ([]isa.Instruction, *Error) {
	expander := NewMacroExpander(prog.Macros, maxDepth)

	var out []isa.Instruction
	for _, item := range prog.Items {
		switch {
		case item.IsLabel:
			out = append(out, isa.Label(item.LabelName))

		case item.IsCall:
			expander.Reset()
			expanded, err := expander.ExpandAll(item.CallName, item.CallArgs, item.Pos)
			if err != nil {
				return nil, err
			}
			for _, e := range expanded {
				if e.IsLabel {
					out = append(out, isa.Label(e.LabelName))
				} else {
					out = append(out, e.Instr)
				}
			}

		default:
			out = append(out, item.Instr)
		}
	}
	return out, nil
}
