package parser

import (
	"strconv"

	"github.com/lookbusy1344/mc8/isa"
)

// Program is the parsed, macro-aware output of Parse: every macro definition collected into a
// table, plus the ordered top-level items (labels, instructions, and not-yet-expanded macro
// calls) that a later expansion pass (expand.go) flattens into a plain []isa.Instruction.
type Program struct {
	Macros *MacroTable
	Items  []ExpandedItem
}

// Parser turns a token stream into a Program. Each line's leading token decides what is parsed,
// and each operand slot expects one kind of token; TokenStream's checkpoint discipline
// (save/restore/commit) is used where a slot has two alternatives (a value operand tries a
// register name, then a numeric literal) and for the macro-signature pre-scan.
type Parser struct {
	ts     *TokenStream
	errs   *ErrorList
	macros *MacroTable

	// sigs holds every macro's name and parameter kinds, collected by a pre-scan before the real
	// pass begins. A call site needs a macro's parameter kinds to type-check its arguments, but
	// per §3 a call may precede its own definition in the file, so sigs lets call sites resolve
	// against a macro's signature whether or not Parse has reached that macro's body yet.
	sigs map[string]*MacroDef
}

// NewParser creates a parser over tokens (as produced by Lexer.TokenizeAll).
func NewParser(tokens []Token) *Parser {
	return &Parser{
		ts:     NewTokenStream(tokens),
		errs:   &ErrorList{},
		macros: NewMacroTable(),
		sigs:   make(map[string]*MacroDef),
	}
}

// Errors returns the errors accumulated while parsing.
func (p *Parser) Errors() *ErrorList {
	return p.errs
}

func (p *Parser) fail(pos Position, kind ErrorKind, msg string) *Error {
	e := NewError(pos, kind, msg)
	p.errs.Add(e)
	return e
}

func (p *Parser) skipNewlines() {
	for p.ts.Peek().Type == TokenNewline {
		p.ts.Next()
	}
}

// Parse consumes the entire token stream and returns the parsed program. Per §7 policy, the first
// error aborts the file: Parse stops and returns nil, err as soon as one is recorded.
func (p *Parser) Parse() (*Program, *Error) {
	p.prescanMacroSignatures()

	prog := &Program{Macros: p.macros}

	for {
		p.skipNewlines()
		tok := p.ts.Peek()
		if tok.Type == TokenEOF {
			break
		}

		switch {
		case tok.Type == TokenIdentifier && tok.Literal == "macro":
			if err := p.parseMacroDef(); err != nil {
				return nil, err
			}

		case tok.Type == TokenLabelDef:
			p.ts.Next()
			prog.Items = append(prog.Items, ExpandedItem{IsLabel: true, LabelName: tok.Literal})
			// A label may be followed on the same line by an instruction or macro call.
			continue

		case tok.Type == TokenMacroCall:
			item, err := p.parseTopLevelMacroCall()
			if err != nil {
				return nil, err
			}
			prog.Items = append(prog.Items, *item)

		case tok.Type == TokenIdentifier:
			inst, err := p.parseInstruction(nil)
			if err != nil {
				return nil, err
			}
			prog.Items = append(prog.Items, ExpandedItem{Instr: inst})

		default:
			return nil, p.fail(tok.Pos, ErrorSyntax, "expected label, macro call, or instruction, found "+tok.Type.String())
		}

		if err := p.expectLineEnd(); err != nil {
			return nil, err
		}
	}

	return prog, nil
}

// prescanMacroSignatures walks the whole token stream once, before real parsing begins,
// registering every macro's name and parameter kinds in sigs. This is what lets a call like !foo
// resolve correctly even when macro foo(){...} appears later in the file (§3: forward references
// within a file are allowed, the same way label references already work). The cursor is restored
// to its starting position afterward so the real pass sees the stream unchanged.
func (p *Parser) prescanMacroSignatures() {
	start := p.ts.Save()
	for !p.ts.AtEOF() {
		tok := p.ts.Peek()
		if tok.Type != TokenIdentifier || tok.Literal != "macro" {
			p.ts.Next()
			continue
		}
		if !p.prescanOneSignature() {
			p.ts.Next()
		}
	}
	p.ts.Restore(start)
}

// prescanOneSignature reads one macro header (name and typed parameter list) at the current
// "macro" token, registers it in sigs, and skips over the brace-delimited body. It reports false
// and leaves the cursor unadvanced if the header is not well-formed; the real pass will surface
// the actual syntax error when it reaches this point normally.
func (p *Parser) prescanOneSignature() bool {
	cp := p.ts.Save()
	p.ts.Next() // "macro"

	nameTok := p.ts.Next()
	if nameTok.Type != TokenIdentifier {
		p.ts.Restore(cp)
		return false
	}
	if p.ts.Next().Type != TokenLParen {
		p.ts.Restore(cp)
		return false
	}

	var params []MacroParam
	for p.ts.Peek().Type != TokenRParen {
		if p.ts.Peek().Type == TokenEOF {
			p.ts.Restore(cp)
			return false
		}
		kindTok := p.ts.Next()
		kind, ok := paramKindKeywords[kindTok.Literal]
		if kindTok.Type != TokenIdentifier || !ok {
			p.ts.Restore(cp)
			return false
		}
		argTok := p.ts.Next()
		if argTok.Type != TokenMacroArg {
			p.ts.Restore(cp)
			return false
		}
		params = append(params, MacroParam{Name: argTok.Literal, Kind: kind})
		if p.ts.Peek().Type == TokenComma {
			p.ts.Next()
		}
	}
	p.ts.Next() // ')'

	p.skipNewlines()
	if p.ts.Peek().Type != TokenLBrace {
		p.ts.Restore(cp)
		return false
	}
	p.ts.Next() // '{'

	for depth := 1; depth > 0; {
		switch p.ts.Next().Type {
		case TokenEOF:
			p.ts.Restore(cp)
			return false
		case TokenLBrace:
			depth++
		case TokenRBrace:
			depth--
		}
	}

	p.sigs[nameTok.Literal] = &MacroDef{Name: nameTok.Literal, Params: params, Pos: nameTok.Pos}
	return true
}

// lookupMacroSignature resolves a call's target macro by name against the pre-scanned signature
// table, so callers can type-check and bind arguments regardless of whether the macro's own
// definition appears earlier or later in the file.
func (p *Parser) lookupMacroSignature(name string) (*MacroDef, bool) {
	def, ok := p.sigs[name]
	return def, ok
}

// expectLineEnd requires a newline or EOF after a top-level item.
func (p *Parser) expectLineEnd() *Error {
	tok := p.ts.Peek()
	if tok.Type == TokenNewline || tok.Type == TokenEOF {
		return nil
	}
	return p.fail(tok.Pos, ErrorSyntax, "expected end of line, found "+tok.Type.String())
}

// parseMnemonic consumes the leading mnemonic token and resolves it to an isa.Op, per §4.2's
// "ambiguity resolution": each instruction is uniquely identified by its leading mnemonic, so
// operand parsing proceeds deterministically once it is known.
func (p *Parser) parseMnemonic() (isa.Op, Position, *Error) {
	tok := p.ts.Next()
	if tok.Type != TokenIdentifier {
		return 0, tok.Pos, p.fail(tok.Pos, ErrorSyntax, "expected mnemonic, found "+tok.Type.String())
	}
	op, ok := isa.MnemonicToOp[tok.Literal]
	if !ok {
		return 0, tok.Pos, p.fail(tok.Pos, ErrorSyntax, "unknown mnemonic: "+tok.Literal)
	}
	return op, tok.Pos, nil
}

// parseInstruction parses one concrete (non-template) instruction line. params is always nil at
// the top level; parseInstructionTemplate is the macro-body counterpart that allows $param
// references.
func (p *Parser) parseInstruction(params map[string]ParamKind) (isa.Instruction, *Error) {
	item, err := p.parseInstructionTemplate(params)
	if err != nil {
		return isa.Instruction{}, err
	}
	return isa.Instruction{
		Op:   item.Op,
		Reg:  item.Reg.Reg,
		Val:  item.Val.Val,
		Addr: item.Addr.Addr,
		Flg:  item.Flg.Flg,
	}, nil
}

// parseInstructionTemplate parses a mnemonic and its fixed operand tuple (§6), producing a
// TemplateItem whose operand slots may reference macro parameters when params is non-nil.
func (p *Parser) parseInstructionTemplate(params map[string]ParamKind) (TemplateItem, *Error) {
	op, pos, err := p.parseMnemonic()
	if err != nil {
		return TemplateItem{}, err
	}

	item := TemplateItem{Op: op, Pos: pos}

	switch op {
	case isa.OpNop, isa.OpInv, isa.OpPop:
		if op == isa.OpInv || op == isa.OpPop {
			reg, err := p.parseRegisterOperand(params)
			if err != nil {
				return TemplateItem{}, err
			}
			item.Reg = reg
		}

	case isa.OpMov, isa.OpAdd, isa.OpSub, isa.OpAnd, isa.OpOr, isa.OpCmp, isa.OpShl, isa.OpShr:
		reg, err := p.parseRegisterOperand(params)
		if err != nil {
			return TemplateItem{}, err
		}
		val, err := p.parseValueOperand(params)
		if err != nil {
			return TemplateItem{}, err
		}
		item.Reg, item.Val = reg, val

	case isa.OpLdw, isa.OpStw:
		reg, err := p.parseRegisterOperand(params)
		if err != nil {
			return TemplateItem{}, err
		}
		addr, err := p.parseAddressOperand(params)
		if err != nil {
			return TemplateItem{}, err
		}
		item.Reg, item.Addr = reg, addr

	case isa.OpLda:
		addr, err := p.parseAddressOperand(params)
		if err != nil {
			return TemplateItem{}, err
		}
		item.Addr = addr

	case isa.OpPsh:
		val, err := p.parseValueOperand(params)
		if err != nil {
			return TemplateItem{}, err
		}
		item.Val = val

	case isa.OpJmp:
		flg, err := p.parseFlagOperand(params)
		if err != nil {
			return TemplateItem{}, err
		}
		addr, err := p.parseAddressOperand(params)
		if err != nil {
			return TemplateItem{}, err
		}
		item.Flg, item.Addr = flg, addr

	default:
		return TemplateItem{}, p.fail(pos, ErrorSyntax, "unsupported mnemonic")
	}

	return item, nil
}

// paramRef, when the next token is a macro-argument sigil, validates it against the expected
// slot kind and returns the parameter name. ok is false (with no error recorded) when the next
// token is not a macro argument at all, letting the caller fall through to concrete parsing.
func (p *Parser) paramRef(params map[string]ParamKind, expect ...ParamKind) (string, bool, *Error) {
	tok := p.ts.Peek()
	if tok.Type != TokenMacroArg {
		return "", false, nil
	}
	if params == nil {
		return "", false, p.fail(tok.Pos, ErrorSyntax, "macro parameter reference outside a macro body: $"+tok.Literal)
	}
	kind, declared := params[tok.Literal]
	if !declared {
		return "", false, p.fail(tok.Pos, ErrorSyntax, "undeclared macro parameter: $"+tok.Literal)
	}
	for _, k := range expect {
		if kind == k {
			p.ts.Next()
			return tok.Literal, true, nil
		}
	}
	return "", false, p.fail(tok.Pos, ErrorMacroType, "macro parameter $"+tok.Literal+" is declared "+kind.String()+", not usable here")
}

func (p *Parser) parseRegisterOperand(params map[string]ParamKind) (templateOperand, *Error) {
	if name, ok, err := p.paramRef(params, ParamRegister); err != nil {
		return templateOperand{}, err
	} else if ok {
		return templateOperand{Param: name}, nil
	}

	tok := p.ts.Peek()
	if tok.Type != TokenIdentifier {
		return templateOperand{}, p.fail(tok.Pos, ErrorInvalidOperand, "expected register, found "+tok.Type.String())
	}
	reg, ok := isa.LookupRegister(tok.Literal)
	if !ok {
		return templateOperand{}, p.fail(tok.Pos, ErrorInvalidOperand, "unknown register: "+tok.Literal)
	}
	p.ts.Next()
	return templateOperand{Reg: reg}, nil
}

func (p *Parser) parseFlagOperand(params map[string]ParamKind) (templateOperand, *Error) {
	if name, ok, err := p.paramRef(params, ParamFlag); err != nil {
		return templateOperand{}, err
	} else if ok {
		return templateOperand{Param: name}, nil
	}

	tok := p.ts.Peek()
	if tok.Type != TokenIdentifier {
		return templateOperand{}, p.fail(tok.Pos, ErrorInvalidOperand, "expected flag, found "+tok.Type.String())
	}
	flg, ok := isa.LookupFlag(tok.Literal)
	if !ok {
		return templateOperand{}, p.fail(tok.Pos, ErrorInvalidOperand, "unknown flag: "+tok.Literal)
	}
	p.ts.Next()
	return templateOperand{Flg: flg}, nil
}

// parseValueOperand implements the §4.2 recognizer order: try Register first, then a signed
// 8-bit numeric literal, restoring the checkpoint between attempts.
func (p *Parser) parseValueOperand(params map[string]ParamKind) (templateOperand, *Error) {
	if name, ok, err := p.paramRef(params, ParamRegister, ParamValue); err != nil {
		return templateOperand{}, err
	} else if ok {
		return templateOperand{Param: name}, nil
	}

	cp := p.ts.Save()
	if reg, ok := p.tryRegisterName(); ok {
		p.ts.Commit(cp)
		return templateOperand{Reg: reg, Val: isa.RegisterValue(reg)}, nil
	}
	p.ts.Restore(cp)

	tok := p.ts.Peek()
	if tok.Type != TokenNumber {
		return templateOperand{}, p.fail(tok.Pos, ErrorInvalidOperand, "expected register or numeric literal, found "+tok.Type.String())
	}
	n, convErr := strconv.Atoi(tok.Literal)
	if convErr != nil || n < -128 || n > 127 {
		return templateOperand{}, p.fail(tok.Pos, ErrorOutOfRange, "literal out of range for an 8-bit signed value: "+tok.Literal)
	}
	p.ts.Next()
	return templateOperand{Val: isa.LiteralValue(int8(n))}, nil
}

// tryRegisterName attempts to read a bare register name at the current position without
// recording an error on failure — the speculative half of the Value recognizer's try-Register,
// then-try-literal order (§4.2).
func (p *Parser) tryRegisterName() (isa.Register, bool) {
	tok := p.ts.Peek()
	if tok.Type != TokenIdentifier {
		return 0, false
	}
	reg, ok := isa.LookupRegister(tok.Literal)
	if !ok {
		return 0, false
	}
	p.ts.Next()
	return reg, true
}

// parseAddressOperand implements the §4.2 Address recognizer: try the HL keyword first, else a
// 16-bit literal or a label reference.
func (p *Parser) parseAddressOperand(params map[string]ParamKind) (templateOperand, *Error) {
	if name, ok, err := p.paramRef(params, ParamAddress); err != nil {
		return templateOperand{}, err
	} else if ok {
		return templateOperand{Param: name}, nil
	}

	tok := p.ts.Peek()
	switch tok.Type {
	case TokenIdentifier:
		if tok.Literal == "hl" {
			p.ts.Next()
			return templateOperand{Addr: isa.HLAddress()}, nil
		}
		return templateOperand{}, p.fail(tok.Pos, ErrorInvalidOperand, "expected HL, numeric address, or label, found identifier "+tok.Literal)

	case TokenNumber:
		n, convErr := strconv.Atoi(tok.Literal)
		if convErr != nil || n < 0 || n > 0xFFFF {
			return templateOperand{}, p.fail(tok.Pos, ErrorOutOfRange, "address out of range for a 16-bit value: "+tok.Literal)
		}
		p.ts.Next()
		return templateOperand{Addr: isa.LiteralAddress(uint16(n))}, nil

	case TokenLabelRef:
		p.ts.Next()
		return templateOperand{Addr: isa.LabelAddress(tok.Literal)}, nil

	default:
		return templateOperand{}, p.fail(tok.Pos, ErrorInvalidOperand, "expected HL, numeric address, or label, found "+tok.Type.String())
	}
}

// parseTopLevelMacroCall parses `!name arg…` at the top level, where every argument must be
// concrete (params is nil): no $ references are in scope outside a macro body.
func (p *Parser) parseTopLevelMacroCall() (*ExpandedItem, *Error) {
	tok := p.ts.Next() // TokenMacroCall
	def, ok := p.lookupMacroSignature(tok.Literal)
	if !ok {
		return nil, p.fail(tok.Pos, ErrorUndefinedMacro, "undefined macro: "+tok.Literal)
	}
	args, err := p.parseCallArgs(def, nil)
	if err != nil {
		return nil, err
	}
	return &ExpandedItem{IsCall: true, CallName: tok.Literal, CallArgs: args, Pos: tok.Pos}, nil
}

// parseCallArgs parses def's actual arguments in order, type-directed by each formal parameter's
// declared kind. When params is non-nil (i.e. this call appears inside a macro body), an argument
// token may itself be a $name reference to the enclosing macro's own parameter.
func (p *Parser) parseCallArgs(def *MacroDef, params map[string]ParamKind) ([]MacroArg, *Error) {
	args := make([]MacroArg, 0, len(def.Params))
	for _, formal := range def.Params {
		arg, err := p.parseCallArg(formal.Kind, params)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func (p *Parser) parseCallArg(kind ParamKind, params map[string]ParamKind) (MacroArg, *Error) {
	switch kind {
	case ParamRegister:
		op, err := p.parseRegisterOperand(params)
		if err != nil {
			return MacroArg{}, err
		}
		return MacroArg{Kind: ParamRegister, Reg: op.Reg}, nil

	case ParamValue:
		op, err := p.parseValueOperand(params)
		if err != nil {
			return MacroArg{}, err
		}
		return MacroArg{Kind: ParamValue, Val: op.Val}, nil

	case ParamAddress:
		op, err := p.parseAddressOperand(params)
		if err != nil {
			return MacroArg{}, err
		}
		return MacroArg{Kind: ParamAddress, Addr: op.Addr}, nil

	case ParamFlag:
		op, err := p.parseFlagOperand(params)
		if err != nil {
			return MacroArg{}, err
		}
		return MacroArg{Kind: ParamFlag, Flg: op.Flg}, nil

	case ParamInstruction:
		tok := p.ts.Peek()
		if tok.Type != TokenLBracket {
			return MacroArg{}, p.fail(tok.Pos, ErrorInvalidOperand, "expected '[' to begin an instruction argument")
		}
		p.ts.Next()
		inst, err := p.parseInstruction(params)
		if err != nil {
			return MacroArg{}, err
		}
		close := p.ts.Peek()
		if close.Type != TokenRBracket {
			return MacroArg{}, p.fail(close.Pos, ErrorInvalidOperand, "expected ']' to close an instruction argument")
		}
		p.ts.Next()
		return MacroArg{Kind: ParamInstruction, Inst: inst}, nil

	case ParamIdentifier:
		if name, ok, err := p.paramRef(params, ParamIdentifier); err != nil {
			return MacroArg{}, err
		} else if ok {
			return MacroArg{Kind: ParamIdentifier, Ident: name}, nil
		}
		tok := p.ts.Peek()
		if tok.Type != TokenIdentifier {
			return MacroArg{}, p.fail(tok.Pos, ErrorInvalidOperand, "expected identifier, found "+tok.Type.String())
		}
		p.ts.Next()
		return MacroArg{Kind: ParamIdentifier, Ident: tok.Literal}, nil

	default:
		tok := p.ts.Peek()
		return MacroArg{}, p.fail(tok.Pos, ErrorSyntax, "unsupported macro parameter kind")
	}
}

// parseMacroDef parses `macro name(type $param, type $param, ...) { body }`, the block-delimited
// syntax resolved for the surface-syntax open question (§9).
func (p *Parser) parseMacroDef() *Error {
	p.ts.Next() // "macro"

	nameTok := p.ts.Next()
	if nameTok.Type != TokenIdentifier {
		return p.fail(nameTok.Pos, ErrorSyntax, "expected macro name")
	}

	if lp := p.ts.Next(); lp.Type != TokenLParen {
		return p.fail(lp.Pos, ErrorSyntax, "expected '(' after macro name")
	}

	var params []MacroParam
	paramKinds := make(map[string]ParamKind)
	for p.ts.Peek().Type != TokenRParen {
		kindTok := p.ts.Next()
		if kindTok.Type != TokenIdentifier {
			return p.fail(kindTok.Pos, ErrorSyntax, "expected parameter type")
		}
		kind, ok := paramKindKeywords[kindTok.Literal]
		if !ok {
			return p.fail(kindTok.Pos, ErrorSyntax, "unknown parameter type: "+kindTok.Literal)
		}
		argTok := p.ts.Next()
		if argTok.Type != TokenMacroArg {
			return p.fail(argTok.Pos, ErrorSyntax, "expected $param after parameter type")
		}
		params = append(params, MacroParam{Name: argTok.Literal, Kind: kind})
		paramKinds[argTok.Literal] = kind

		if p.ts.Peek().Type == TokenComma {
			p.ts.Next()
		}
	}
	p.ts.Next() // ')'

	p.skipNewlines()
	if lb := p.ts.Next(); lb.Type != TokenLBrace {
		return p.fail(lb.Pos, ErrorSyntax, "expected '{' to begin macro body")
	}
	p.skipNewlines()

	def := &MacroDef{Name: nameTok.Literal, Params: params, Pos: nameTok.Pos}

	for p.ts.Peek().Type != TokenRBrace {
		if p.ts.Peek().Type == TokenEOF {
			return p.fail(p.ts.Peek().Pos, ErrorSyntax, "unterminated macro body, expected '}'")
		}

		tok := p.ts.Peek()
		switch {
		case tok.Type == TokenLabelDef:
			p.ts.Next()
			def.Body = append(def.Body, TemplateItem{IsLabel: true, LabelName: tok.Literal})
			p.skipNewlines()
			continue

		case tok.Type == TokenMacroCall:
			p.ts.Next()
			nested, ok := p.lookupMacroSignature(tok.Literal)
			if !ok {
				return p.fail(tok.Pos, ErrorUndefinedMacro, "undefined macro: "+tok.Literal)
			}
			args, err := p.parseTemplateCallArgs(nested, paramKinds)
			if err != nil {
				return err
			}
			def.Body = append(def.Body, TemplateItem{IsCall: true, CallName: tok.Literal, CallArgs: args, Pos: tok.Pos})

		case tok.Type == TokenMacroArg:
			name, ok, err := p.paramRef(paramKinds, ParamInstruction)
			if err != nil {
				return err
			}
			if !ok {
				return p.fail(tok.Pos, ErrorSyntax, "unexpected macro parameter reference in body")
			}
			def.Body = append(def.Body, TemplateItem{InstrParam: name})

		case tok.Type == TokenIdentifier:
			item, err := p.parseInstructionTemplate(paramKinds)
			if err != nil {
				return err
			}
			def.Body = append(def.Body, item)

		default:
			return p.fail(tok.Pos, ErrorSyntax, "expected label, macro call, or instruction inside macro body")
		}

		if tok2 := p.ts.Peek(); tok2.Type != TokenRBrace {
			if err := p.expectLineEnd(); err != nil {
				return err
			}
			p.skipNewlines()
		}
	}
	p.ts.Next() // '}'

	if err := p.macros.Define(def); err != nil {
		p.errs.Add(err)
		return err
	}
	return nil
}

// parseTemplateCallArgs is the macro-body counterpart of parseCallArgs: arguments may forward the
// enclosing macro's own $params as well as supplying concrete literals.
func (p *Parser) parseTemplateCallArgs(def *MacroDef, params map[string]ParamKind) ([]TemplateArg, *Error) {
	args := make([]TemplateArg, 0, len(def.Params))
	for _, formal := range def.Params {
		if name, ok, err := p.paramRef(params, formal.Kind); err != nil {
			return nil, err
		} else if ok {
			args = append(args, TemplateArg{Param: name})
			continue
		}
		bound, err := p.parseCallArg(formal.Kind, nil)
		if err != nil {
			return nil, err
		}
		args = append(args, TemplateArg{Bound: bound})
	}
	return args, nil
}
