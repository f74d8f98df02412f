// Package tools implements ambient static checks over an mc8 program, per §10.4:
// unused labels, unused macros, and unused macro parameters. Findings are always warnings; lint
// never aborts assembly (§7 still governs hard errors).
package tools

import (
	"fmt"
	"sort"

	"github.com/lookbusy1344/mc8/isa"
	"github.com/lookbusy1344/mc8/parser"
)

// LintLevel is the severity of a lint finding.
type LintLevel int

const (
	LintWarning LintLevel = iota
	LintInfo
)

func (l LintLevel) String() string {
	if l == LintInfo {
		return "info"
	}
	return "warning"
}

// LintIssue is a single lint finding.
type LintIssue struct {
	Level   LintLevel
	Message string
	Code    string
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("%s: %s [%s]", i.Level, i.Message, i.Code)
}

// Lint walks a parsed program and its macro table and reports unused labels, unused macros, and
// unused macro parameters. It never mutates prog and never returns a hard error: every finding is
// advisory.
func Lint(prog *parser.Program) []*LintIssue {
	var issues []*LintIssue

	issues = append(issues, lintUnusedLabels(prog)...)
	issues = append(issues, lintUnusedMacros(prog)...)
	issues = append(issues, lintUnusedMacroParams(prog)...)

	sort.Slice(issues, func(i, j int) bool { return issues[i].Code < issues[j].Code })
	return issues
}

// lintUnusedLabels reports every label defined at the top level that no Address::Label operand,
// at the top level or inside any macro body, ever references.
func lintUnusedLabels(prog *parser.Program) []*LintIssue {
	defined := map[string]bool{}
	for _, item := range prog.Items {
		if item.IsLabel {
			defined[item.LabelName] = true
		}
	}

	referenced := map[string]bool{}
	for _, item := range prog.Items {
		if !item.IsLabel && !item.IsCall {
			collectAddressLabel(item.Instr.Addr, referenced)
		}
	}
	for _, def := range prog.Macros.All() {
		for _, ti := range def.Body {
			if !ti.IsLabel && !ti.IsCall && ti.InstrParam == "" {
				collectAddressLabel(ti.Addr.Addr, referenced)
			}
		}
	}

	var issues []*LintIssue
	for name := range defined {
		if !referenced[name] {
			issues = append(issues, &LintIssue{
				Level:   LintWarning,
				Message: fmt.Sprintf("label %q is never referenced", name),
				Code:    "UNUSED_LABEL",
			})
		}
	}
	return issues
}

func collectAddressLabel(addr isa.Address, referenced map[string]bool) {
	if addr.AddrKind == isa.AddressLabel {
		referenced[addr.Label] = true
	}
}

// lintUnusedMacros reports every macro defined but never called, at the top level or from
// within another macro's body.
func lintUnusedMacros(prog *parser.Program) []*LintIssue {
	called := map[string]bool{}
	for _, item := range prog.Items {
		if item.IsCall {
			called[item.CallName] = true
		}
	}
	for _, def := range prog.Macros.All() {
		for _, ti := range def.Body {
			if ti.IsCall {
				called[ti.CallName] = true
			}
		}
	}

	var issues []*LintIssue
	for name := range prog.Macros.All() {
		if !called[name] {
			issues = append(issues, &LintIssue{
				Level:   LintWarning,
				Message: fmt.Sprintf("macro %q is never called", name),
				Code:    "UNUSED_MACRO",
			})
		}
	}
	return issues
}

// lintUnusedMacroParams reports every declared macro parameter that the macro's body never
// references, in any of the ways a parameter can be referenced (a register, value, address or
// flag operand slot, a label name, whole-instruction substitution, or a forwarded nested-call
// argument).
func lintUnusedMacroParams(prog *parser.Program) []*LintIssue {
	var issues []*LintIssue
	for name, def := range prog.Macros.All() {
		used := map[string]bool{}
		for _, ti := range def.Body {
			if ti.LabelParam != "" {
				used[ti.LabelParam] = true
			}
			if ti.InstrParam != "" {
				used[ti.InstrParam] = true
			}
			if ti.Reg.Param != "" {
				used[ti.Reg.Param] = true
			}
			if ti.Val.Param != "" {
				used[ti.Val.Param] = true
			}
			if ti.Addr.Param != "" {
				used[ti.Addr.Param] = true
			}
			if ti.Flg.Param != "" {
				used[ti.Flg.Param] = true
			}
			for _, arg := range ti.CallArgs {
				if arg.Param != "" {
					used[arg.Param] = true
				}
			}
		}

		for _, p := range def.Params {
			if !used[p.Name] {
				issues = append(issues, &LintIssue{
					Level:   LintWarning,
					Message: fmt.Sprintf("macro %q parameter %q is never referenced", name, p.Name),
					Code:    "UNUSED_MACRO_PARAM",
				})
			}
		}
	}
	return issues
}
