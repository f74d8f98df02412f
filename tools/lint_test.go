package tools_test

import (
	"testing"

	"github.com/lookbusy1344/mc8/parser"
	"github.com/lookbusy1344/mc8/tools"
)

func parseSource(t *testing.T, src string) *parser.Program {
	t.Helper()
	lexer := parser.NewLexer(src, "test.mc8")
	tokens := lexer.TokenizeAll()
	if lexer.Errors().HasErrors() {
		t.Fatalf("lex errors: %v", lexer.Errors())
	}
	p := parser.NewParser(tokens)
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func hasCode(issues []*tools.LintIssue, code string) bool {
	for _, i := range issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

func TestLint_UnusedLabel(t *testing.T) {
	prog := parseSource(t, "@unused:\nmov reg0 5\n")
	issues := tools.Lint(prog)
	if !hasCode(issues, "UNUSED_LABEL") {
		t.Error("expected an UNUSED_LABEL finding")
	}
}

func TestLint_ReferencedLabelIsNotFlagged(t *testing.T) {
	prog := parseSource(t, "@loop:\njmp halt @loop\n")
	issues := tools.Lint(prog)
	if hasCode(issues, "UNUSED_LABEL") {
		t.Error("did not expect an UNUSED_LABEL finding for a referenced label")
	}
}

func TestLint_UnusedMacro(t *testing.T) {
	prog := parseSource(t, "macro noop(reg $r) {\n  mov $r 0\n}\nmov reg0 1\n")
	issues := tools.Lint(prog)
	if !hasCode(issues, "UNUSED_MACRO") {
		t.Error("expected an UNUSED_MACRO finding")
	}
}

func TestLint_CalledMacroIsNotFlagged(t *testing.T) {
	prog := parseSource(t, "macro zero(reg $r) {\n  mov $r 0\n}\n!zero reg0\n")
	issues := tools.Lint(prog)
	if hasCode(issues, "UNUSED_MACRO") {
		t.Error("did not expect an UNUSED_MACRO finding for a called macro")
	}
}

func TestLint_UnusedMacroParam(t *testing.T) {
	prog := parseSource(t, "macro two(reg $a, reg $b) {\n  mov $a 0\n}\n!two reg0 reg1\n")
	issues := tools.Lint(prog)
	if !hasCode(issues, "UNUSED_MACRO_PARAM") {
		t.Error("expected an UNUSED_MACRO_PARAM finding")
	}
}

func TestLint_AllParamsUsedIsClean(t *testing.T) {
	prog := parseSource(t, "macro add2(reg $a, reg $b) {\n  add $a $b\n}\n!add2 reg0 reg1\n")
	issues := tools.Lint(prog)
	if hasCode(issues, "UNUSED_MACRO_PARAM") {
		t.Error("did not expect an UNUSED_MACRO_PARAM finding when every param is used")
	}
}
