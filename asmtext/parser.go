package asmtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pyvm/pyasm/cfg"
	"github.com/go-pyvm/pyasm/code"
	"github.com/go-pyvm/pyasm/opcode"
)

// ParseError reports a source position alongside the underlying message.
type ParseError struct {
	Line, Column int
	Msg          string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("asmtext:%d:%d: %s", e.Line, e.Column, e.Msg)
}

// Parse reads asmtext source and builds a cfg.FlowGraph from it (spec.md
// §6's input contract, realized as text instead of an AST walk).
func Parse(src []byte) (*cfg.FlowGraph, error) {
	p := &parser{
		sc:     NewScanner(src),
		g:      cfg.NewFlowGraph(),
		labels: map[string]cfg.BlockID{},
	}
	p.labels["entry"] = p.g.Entry()
	p.labels["exit"] = p.g.Exit()
	p.advance()
	if err := p.program(); err != nil {
		return nil, err
	}
	return p.g, nil
}

type parser struct {
	sc  *Scanner
	g   *cfg.FlowGraph
	tok *Token

	labels map[string]cfg.BlockID
	// lastBlockTerminal tracks whether the most recently emitted
	// instruction in the current block unconditionally transfers control,
	// so a following label knows whether to link via NextBlock (implicit
	// fall-through) or just start a disconnected block.
	lastBlockTerminal bool
}

func (p *parser) advance() { p.tok = p.sc.Scan() }

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Line: p.tok.Line, Column: p.tok.Column, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipBlankLines() {
	for p.tok.Kind == NEWLINE {
		p.advance()
	}
}

func (p *parser) program() error {
	p.skipBlankLines()
	for p.tok.Kind != EOF {
		switch p.tok.Kind {
		case DIRECTIVE:
			if err := p.directive(); err != nil {
				return err
			}
		case LABEL:
			if err := p.label(); err != nil {
				return err
			}
		case IDENT:
			if err := p.instruction(); err != nil {
				return err
			}
		default:
			return p.errorf("unexpected token %s", p.tok)
		}
		p.skipBlankLines()
	}
	return nil
}

func (p *parser) endOfLine() error {
	if p.tok.Kind != NEWLINE && p.tok.Kind != EOF {
		return p.errorf("expected end of line, got %s", p.tok)
	}
	if p.tok.Kind == NEWLINE {
		p.advance()
	}
	return nil
}

func (p *parser) restOfLine() []string {
	var words []string
	for p.tok.Kind != NEWLINE && p.tok.Kind != EOF {
		words = append(words, p.tok.Text)
		p.advance()
	}
	return words
}

func (p *parser) directive() error {
	name := p.tok.Text
	p.advance()
	args := p.restOfLine()
	if err := p.endOfLine(); err != nil {
		return err
	}

	switch name {
	case ".name":
		p.g.Name = strings.Join(args, " ")
	case ".filename":
		p.g.Filename = strings.Join(args, " ")
	case ".klass":
		p.g.Klass = true
	case ".firstlineno":
		n, err := strconv.Atoi(join(args))
		if err != nil {
			return p.errorf("bad .firstlineno: %v", err)
		}
		p.g.FirstLineno = n
	case ".args":
		p.g.SetArgs(args)
	case ".freevars":
		p.g.SetFreeVars(args)
	case ".cellvars":
		p.g.SetCellVars(args)
	case ".docstring":
		if len(args) == 1 {
			p.g.SetDocstring(code.Str(unquote(args[0])))
		}
	case ".flags":
		for _, f := range args {
			flag, err := flagByName(f)
			if err != nil {
				return p.errorf("%v", err)
			}
			p.g.SetFlag(flag)
		}
	default:
		return p.errorf("unknown directive %s", name)
	}
	return nil
}

func flagByName(name string) (code.Flags, error) {
	switch name {
	case "OPTIMIZED":
		return code.Optimized, nil
	case "NEWLOCALS":
		return code.NewLocals, nil
	case "VARARGS":
		return code.Varargs, nil
	case "VARKEYWORDS":
		return code.Varkeywords, nil
	case "NESTED":
		return code.Nested, nil
	case "GENERATOR":
		return code.Generator, nil
	case "NOFREE":
		return code.NoFree, nil
	default:
		return 0, fmt.Errorf("unknown flag %s", name)
	}
}

func join(words []string) string { return strings.Join(words, "") }

func unquote(s string) string { return s }

// blockFor returns the block id for a label, allocating a fresh,
// not-yet-started block the first time a forward reference (a jump target
// mentioned before its label line) is seen.
func (p *parser) blockFor(name string) cfg.BlockID {
	if id, ok := p.labels[name]; ok {
		return id
	}
	id := p.g.NewBlock()
	p.labels[name] = id
	return id
}

func (p *parser) label() error {
	name := p.tok.Text
	p.advance()
	if err := p.endOfLine(); err != nil {
		return err
	}

	id := p.blockFor(name)
	if id == p.g.Current() {
		return nil
	}
	if !p.lastBlockTerminal {
		p.g.NextBlock(id)
	} else {
		p.g.StartBlock(id)
	}
	p.lastBlockTerminal = false
	return nil
}

func (p *parser) instruction() error {
	mnemonic := p.tok.Text
	op, err := opcode.ByName(mnemonic)
	if err != nil {
		return p.errorf("%v", err)
	}
	p.advance()

	var arg interface{}
	if op.HasArg {
		a, err := p.operand(op)
		if err != nil {
			return err
		}
		arg = a
	}
	if err := p.endOfLine(); err != nil {
		return err
	}

	p.g.Emit(op, arg)
	p.lastBlockTerminal = opcode.Terminal[op.Code]
	return nil
}

func (p *parser) operand(op opcode.Op) (interface{}, error) {
	switch {
	case opcode.HasJump(op):
		if p.tok.Kind != AT {
			return nil, p.errorf("expected @label jump target, got %s", p.tok)
		}
		name := p.tok.Text
		p.advance()
		return p.blockFor(name), nil

	case op.Code == opcode.SetLineno.Code:
		n, err := strconv.Atoi(p.tok.Text)
		if err != nil {
			return nil, p.errorf("bad SET_LINENO line number: %v", err)
		}
		p.advance()
		return n, nil

	case op.Code == opcode.LoadConst.Code:
		return p.constOperand()

	case op.Code == opcode.CompareOp.Code:
		words := p.restOfLine()
		return strings.Join(words, " "), nil

	default:
		// Name-bearing opcodes (LOAD_FAST, LOAD_NAME, LOAD_DEREF, ...)
		// take a bare identifier; everything else still unencoded (the
		// rare already-numeric oparg, e.g. CALL_FUNCTION's argument
		// count) is written as a decimal literal.
		if p.tok.Kind == NUMBER {
			n, err := strconv.Atoi(p.tok.Text)
			if err != nil {
				return nil, p.errorf("bad integer operand: %v", err)
			}
			p.advance()
			return n, nil
		}
		text := p.tok.Text
		p.advance()
		return text, nil
	}
}

// constOperand parses a LOAD_CONST operand, written as a type-tagged
// literal: none, true, false, int:N, long:N, float:F, or a quoted string.
// A bare @label (a nested code-object constant) is rejected with a parse
// error.
func (p *parser) constOperand() (interface{}, error) {
	if p.tok.Kind == AT {
		name := p.tok.Text
		p.advance()
		// asmtext does not parse nested code-object bodies, so a constant
		// naming one is reported as an error at this point.
		_ = name
		return nil, p.errorf("nested code-object constants are not supported by asmtext")
	}
	text := p.tok.Text
	kind := p.tok.Kind
	p.advance()
	// The scanner reads "int:", "long:" and "float:" as a LABEL token, so
	// rejoin the tag with the number that follows it.
	if kind == LABEL && p.tok.Kind == NUMBER {
		text += ":" + p.tok.Text
		p.advance()
	}

	switch {
	case text == "none":
		return code.None{}, nil
	case text == "true":
		return code.Bool(true), nil
	case text == "false":
		return code.Bool(false), nil
	case strings.HasPrefix(text, "int:"):
		n, err := strconv.ParseInt(strings.TrimPrefix(text, "int:"), 10, 32)
		if err != nil {
			return nil, p.errorf("bad int const: %v", err)
		}
		return code.Int(n), nil
	case strings.HasPrefix(text, "long:"):
		n, err := strconv.ParseInt(strings.TrimPrefix(text, "long:"), 10, 64)
		if err != nil {
			return nil, p.errorf("bad long const: %v", err)
		}
		return code.Long(n), nil
	case strings.HasPrefix(text, "float:"):
		f, err := strconv.ParseFloat(strings.TrimPrefix(text, "float:"), 64)
		if err != nil {
			return nil, p.errorf("bad float const: %v", err)
		}
		return code.Float(f), nil
	case kind == STRING:
		return code.Str(text), nil
	default:
		return nil, p.errorf("unrecognized LOAD_CONST operand %q", text)
	}
}
