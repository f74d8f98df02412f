package parser

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/mc8/isa"
)

// ParamKind is the declared type of a macro parameter. Unlike untyped string-substitution macros,
// every mc8 parameter is typed: the actual argument bound to it must match exactly, with no
// implicit coercion (a parameter declared as a register accepts only a register name, never a
// literal value, and a bound argument whose kind differs from the declared kind is rejected).
// A register name written for a value parameter is parsed as a register-valued Value.
type ParamKind int

const (
	ParamRegister ParamKind = iota
	ParamValue
	ParamAddress
	ParamFlag
	ParamInstruction
	ParamIdentifier
)

func (k ParamKind) String() string {
	switch k {
	case ParamRegister:
		return "register"
	case ParamValue:
		return "value"
	case ParamAddress:
		return "address"
	case ParamFlag:
		return "flag"
	case ParamInstruction:
		return "instruction"
	case ParamIdentifier:
		return "identifier"
	default:
		return "unknown"
	}
}

// paramKindKeywords maps the type keyword written in a macro declaration to its ParamKind.
var paramKindKeywords = map[string]ParamKind{
	"reg":        ParamRegister,
	"register":   ParamRegister,
	"val":        ParamValue,
	"value":      ParamValue,
	"addr":       ParamAddress,
	"address":    ParamAddress,
	"flag":       ParamFlag,
	"inst":       ParamInstruction,
	"instr":      ParamInstruction,
	"ident":      ParamIdentifier,
	"identifier": ParamIdentifier,
}

// MacroParam is one formal parameter of a macro declaration.
type MacroParam struct {
	Name string
	Kind ParamKind
}

// templateOperand is a single operand slot within a macro body template. Exactly one of the
// concrete fields is meaningful unless Param is non-empty, in which case the slot is resolved by
// looking up Param in the binding table at expansion time.
type templateOperand struct {
	Param string // non-empty: substitute from bindings instead of using the concrete value below

	Reg  isa.Register
	Val  isa.Value
	Addr isa.Address
	Flg  isa.Flag
}

// TemplateItem is one line of a macro body: either a label definition, a concrete/templated
// instruction, or a nested macro call.
type TemplateItem struct {
	IsLabel bool
	IsCall  bool

	// label
	LabelName  string
	LabelParam string // non-empty: label name comes from an Identifier-kind parameter

	// whole-instruction substitution: the entire line is a single Instruction-kind parameter
	// reference (e.g. a body line consisting of just `$op`), resolved at expansion time to
	// whatever Instruction value was bound to it.
	InstrParam string

	// instruction (IsLabel == false, IsCall == false, InstrParam == "")
	Op   isa.Op
	Reg  templateOperand
	Val  templateOperand
	Addr templateOperand
	Flg  templateOperand

	// nested macro call (IsCall == true)
	CallName string
	CallArgs []TemplateArg
	Pos      Position
}

// TemplateArg is one actual argument within a macro body's nested macro call: either a reference
// to the enclosing macro's own parameter, or a concrete literal argument.
type TemplateArg struct {
	Param string // non-empty: forward the enclosing macro's own binding
	Bound MacroArg
}

// MacroArg is a fully resolved actual argument bound to a parameter, tagged by kind.
type MacroArg struct {
	Kind  ParamKind
	Reg   isa.Register
	Val   isa.Value
	Addr  isa.Address
	Flg   isa.Flag
	Inst  isa.Instruction
	Ident string
}

// MacroDef is a typed macro declaration: a name, an ordered list of typed parameters, and a body
// of template items referencing those parameters (§3, §4.3).
type MacroDef struct {
	Name   string
	Params []MacroParam
	Body   []TemplateItem
	Pos    Position
}

func (md *MacroDef) paramKind(name string) (ParamKind, bool) {
	for _, p := range md.Params {
		if p.Name == name {
			return p.Kind, true
		}
	}
	return 0, false
}

// MacroTable manages macro definitions and binds/substitutes actual arguments into a template
// body, producing a flat instruction/label/call sequence for further expansion.
type MacroTable struct {
	macros map[string]*MacroDef
}

// NewMacroTable creates an empty macro table.
func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[string]*MacroDef)}
}

// Define registers a macro definition, rejecting duplicate names.
func (mt *MacroTable) Define(def *MacroDef) *Error {
	if _, exists := mt.macros[def.Name]; exists {
		return NewError(def.Pos, ErrorDuplicateMacro, fmt.Sprintf("macro %q already defined", def.Name))
	}
	mt.macros[def.Name] = def
	return nil
}

// Lookup finds a macro definition by name.
func (mt *MacroTable) Lookup(name string) (*MacroDef, bool) {
	def, ok := mt.macros[name]
	return def, ok
}

// All returns every registered macro definition, for tooling (e.g. the lint pass) that needs to
// walk the whole table rather than look up one name.
func (mt *MacroTable) All() map[string]*MacroDef {
	return mt.macros
}

// bind validates a call's actual arguments against a macro's declared parameters (arity and
// per-parameter type), returning the binding table keyed by parameter name.
func (mt *MacroTable) bind(def *MacroDef, args []MacroArg, pos Position) (map[string]MacroArg, *Error) {
	if len(args) != len(def.Params) {
		return nil, NewError(pos, ErrorMacroArity,
			fmt.Sprintf("macro %q expects %d argument(s), got %d", def.Name, len(def.Params), len(args)))
	}
	bindings := make(map[string]MacroArg, len(args))
	for i, p := range def.Params {
		a := args[i]
		if a.Kind != p.Kind {
			return nil, NewError(pos, ErrorMacroType,
				fmt.Sprintf("macro %q parameter %q expects %s, got %s", def.Name, p.Name, p.Kind, a.Kind))
		}
		bindings[p.Name] = a
	}
	return bindings, nil
}

// resolveOperand substitutes a template operand slot using bindings, or passes the concrete value
// through unchanged if the slot is not parameterized.
func resolveOperand(op templateOperand, bindings map[string]MacroArg) templateOperand {
	if op.Param == "" {
		return op
	}
	bound, ok := bindings[op.Param]
	if !ok {
		return op
	}
	switch bound.Kind {
	case ParamRegister:
		return templateOperand{Reg: bound.Reg, Val: isa.RegisterValue(bound.Reg)}
	case ParamValue:
		return templateOperand{Val: bound.Val}
	case ParamAddress:
		return templateOperand{Addr: bound.Addr}
	case ParamFlag:
		return templateOperand{Flg: bound.Flg}
	default:
		return op
	}
}

// Expand binds args against the named macro's parameters and substitutes them into the macro
// body, returning a flat sequence of expansion items (instructions, labels, and any nested macro
// calls still to be expanded by the caller).
func (mt *MacroTable) Expand(name string, args []MacroArg, pos Position) ([]ExpandedItem, *Error) {
	def, exists := mt.macros[name]
	if !exists {
		return nil, NewError(pos, ErrorUndefinedMacro, fmt.Sprintf("undefined macro: %q", name))
	}
	bindings, err := mt.bind(def, args, pos)
	if err != nil {
		return nil, err
	}

	out := make([]ExpandedItem, 0, len(def.Body))
	for _, item := range def.Body {
		switch {
		case item.IsLabel:
			name := item.LabelName
			if item.LabelParam != "" {
				if b, ok := bindings[item.LabelParam]; ok && b.Kind == ParamIdentifier {
					name = b.Ident
				}
			}
			out = append(out, ExpandedItem{IsLabel: true, LabelName: name})

		case item.InstrParam != "":
			if b, ok := bindings[item.InstrParam]; ok && b.Kind == ParamInstruction {
				out = append(out, ExpandedItem{Instr: b.Inst})
			}

		case item.IsCall:
			callArgs := make([]MacroArg, 0, len(item.CallArgs))
			for _, a := range item.CallArgs {
				if a.Param != "" {
					if b, ok := bindings[a.Param]; ok {
						callArgs = append(callArgs, b)
						continue
					}
				}
				callArgs = append(callArgs, a.Bound)
			}
			out = append(out, ExpandedItem{IsCall: true, CallName: item.CallName, CallArgs: callArgs, Pos: item.Pos})

		default:
			inst := isa.Instruction{
				Op:   item.Op,
				Reg:  resolveOperand(item.Reg, bindings).Reg,
				Val:  resolveOperand(item.Val, bindings).Val,
				Addr: resolveOperand(item.Addr, bindings).Addr,
				Flg:  resolveOperand(item.Flg, bindings).Flg,
			}
			out = append(out, ExpandedItem{Instr: inst})
		}
	}
	return out, nil
}

// ExpandedItem is one element of a macro's flattened expansion: an instruction, a label, or a
// still-to-be-expanded nested macro call.
type ExpandedItem struct {
	IsLabel   bool
	LabelName string

	IsCall   bool
	CallName string
	CallArgs []MacroArg
	Pos      Position

	Instr isa.Instruction
}

// MacroExpander drives recursive macro expansion with a configurable depth limit and cycle
// detection via an explicit call stack. The default depth limit is 256 (§4.3, §9).
type MacroExpander struct {
	table     *MacroTable
	maxDepth  int
	callStack []string
}

// NewMacroExpander creates an expander bound to table with the given maximum nesting depth. A
// depth of 0 or less falls back to the default of 256.
func NewMacroExpander(table *MacroTable, maxDepth int) *MacroExpander {
	if maxDepth <= 0 {
		maxDepth = 256
	}
	return &MacroExpander{table: table, maxDepth: maxDepth}
}

// ExpandAll fully expands a top-level macro call, recursively expanding any nested calls found in
// the body, and returns the flat instruction/label sequence.
func (me *MacroExpander) ExpandAll(name string, args []MacroArg, pos Position) ([]ExpandedItem, *Error) {
	if len(me.callStack) >= me.maxDepth {
		return nil, NewError(pos, ErrorMacroDepth,
			fmt.Sprintf("macro expansion too deep (possible recursion): %s", strings.Join(me.callStack, " -> ")))
	}
	for _, caller := range me.callStack {
		if caller == name {
			return nil, NewError(pos, ErrorMacroDepth,
				fmt.Sprintf("recursive macro call detected: %s -> %s", strings.Join(me.callStack, " -> "), name))
		}
	}

	me.callStack = append(me.callStack, name)
	defer func() { me.callStack = me.callStack[:len(me.callStack)-1] }()

	items, err := me.table.Expand(name, args, pos)
	if err != nil {
		return nil, err
	}

	var out []ExpandedItem
	for _, item := range items {
		if !item.IsCall {
			out = append(out, item)
			continue
		}
		nested, err := me.ExpandAll(item.CallName, item.CallArgs, item.Pos)
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}

// Reset clears the expander's call stack, ready for reuse on a new top-level call.
func (me *MacroExpander) Reset() {
	me.callStack = nil
}
