package rlang

import (
	"fmt"
	"strconv"
	"strings"

	gawki "github.com/benhoyt/goawk/interp"
	gawkp "github.com/benhoyt/goawk/parser"
	"github.com/pkg/errors"
)

// Expressions are evaluated by translating them into an AWK expression and
// running it inside of a BEGIN block, ie
//
//   function rl_basename(p) { ... }
//   BEGIN { printf "%s", (expr) }
//
// The interpreter is sandboxed, no command execution and no file access.

const awkPrelude = `
function rl_basename(p) {
  sub(/\/+$/, "", p)
  sub(/.*\//, "", p)
  return p
}
`

// Compiler evaluates operator arguments.
type Compiler struct {
	// Environment visible to env(), in KEY=VALUE form. The process's
	// environment is used when nil.
	Environ []string
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

type awkCodeGen struct {
	o strings.Builder
}

func awkQuote(s string) string {
	b := strings.Builder{}
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c == 0x7f {
				b.WriteString(fmt.Sprintf("\\%03o", c))
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (self *awkCodeGen) genConst(c *Const) {
	switch c.Tk.Type {
	case TkStr:
		self.o.WriteString(awkQuote(c.Tk.Text))
	case TkInt:
		self.o.WriteString(strconv.FormatInt(c.Tk.Int, 10))
	case TkReal:
		self.o.WriteString(strconv.FormatFloat(c.Tk.Real, 'g', -1, 64))
	case TkTrue:
		self.o.WriteString("1")
	case TkFalse:
		self.o.WriteString("0")
	default:
		break
	}
}

// genAsStr generates e such that it is always a string in AWK's eyes.
func (self *awkCodeGen) genAsStr(e Expr) {
	switch e.ValueType() {
	case TypeString:
		self.genExpr(e)
	case TypeBool:
		self.o.WriteString("(")
		self.genExpr(e)
		self.o.WriteString(` ? "true" : "false")`)
	default:
		self.o.WriteString("(")
		self.genExpr(e)
		self.o.WriteString(` "")`)
	}
}

func (self *awkCodeGen) genCall(c *Call) {
	switch c.Name {
	case "str":
		self.genAsStr(c.Args[0])
	case "lower", "upper":
		self.o.WriteString("to" + c.Name + "(")
		self.genExpr(c.Args[0])
		self.o.WriteString(")")
	case "env":
		self.o.WriteString("ENVIRON[")
		self.genExpr(c.Args[0])
		self.o.WriteString("]")
	case "basename":
		self.o.WriteString("rl_basename(")
		self.genExpr(c.Args[0])
		self.o.WriteString(")")
	case "concat":
		self.o.WriteString("(")
		for i, a := range c.Args {
			if i > 0 {
				self.o.WriteString(" ")
			}
			self.genAsStr(a)
		}
		self.o.WriteString(` "")`)
	default:
		panic("unknown builtin " + c.Name)
	}
}

func (self *awkCodeGen) genExpr(e Expr) {
	switch e.Type() {
	case ExprConst:
		self.genConst(e.(*Const))
	case ExprUnary:
		self.o.WriteString("(-")
		self.genExpr(e.(*Unary).Operand)
		self.o.WriteString(")")
	case ExprBinary:
		b := e.(*Binary)
		self.o.WriteString("(")
		self.genExpr(b.L)
		if b.Ty == TypeString {
			self.o.WriteString(" ")
		} else {
			self.o.WriteString(" " + tokenName(b.Op) + " ")
		}
		self.genExpr(b.R)
		self.o.WriteString(")")
	case ExprCall:
		self.genCall(e.(*Call))
	default:
		break
	}
}

// GenAwk renders the program evaluating e.
func GenAwk(e Expr) string {
	gen := &awkCodeGen{}
	gen.genAsStr(e)
	return fmt.Sprintf("%s\nBEGIN { printf \"%%s\", %s }\n", awkPrelude, gen.o.String())
}

func (self *Compiler) run(code string) (string, error) {
	prog, err := gawkp.ParseProgram([]byte(code), nil)
	if err != nil {
		return "", errors.Wrap(err, "compile")
	}
	interp, err := gawki.New(prog)
	if err != nil {
		return "", errors.Wrap(err, "compile")
	}

	buf := strings.Builder{}
	config := &gawki.Config{
		Stdin:        strings.NewReader(""),
		Output:       &buf,
		Environ:      self.environ(),
		NoExec:       true,
		NoFileWrites: true,
		NoFileReads:  true,
	}
	if _, err := interp.Execute(config); err != nil {
		return "", errors.Wrap(err, "evaluate")
	}
	return buf.String(), nil
}

// goawk wants a flat name, value, name, value list.
func (self *Compiler) environ() []string {
	if self.Environ == nil {
		return nil
	}
	env := make([]string, 0, 2*len(self.Environ))
	for _, kv := range self.Environ {
		k, v, _ := strings.Cut(kv, "=")
		env = append(env, k, v)
	}
	return env
}

// Eval evaluates any expression and returns its string rendering.
func (self *Compiler) Eval(tokens []Token) (string, error) {
	e, err := Parse(tokens)
	if err != nil {
		return "", err
	}
	return self.run(GenAwk(e))
}

// EvalToStringOnly evaluates an expression which must be string typed.
func (self *Compiler) EvalToStringOnly(tokens []Token) (string, error) {
	e, err := Parse(tokens)
	if err != nil {
		return "", err
	}
	if e.ValueType() != TypeString {
		return "", errors.Wrapf(ErrNotString, "%s is %s", PrintExpr(e), typeName(e.ValueType()))
	}
	return self.run(GenAwk(e))
}
