package rlang

import (
	"fmt"
	"strings"
)

// value types of an expression
const (
	TypeString = iota
	TypeInt
	TypeReal
	TypeBool
)

func typeName(t int) string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeReal:
		return "real"
	case TypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

func isNumeric(t int) bool {
	return t == TypeInt || t == TypeReal
}

const (
	ExprConst = iota
	ExprUnary
	ExprBinary
	ExprCall
)

// Expr is a type checked expression node.
type Expr interface {
	Type() int      // kind of node
	ValueType() int // type of the value the node evaluates to
}

type Const struct {
	Tk Token
	Ty int
}

type Unary struct {
	Op      int
	Operand Expr
}

type Binary struct {
	Op int
	L  Expr
	R  Expr
	Ty int
}

type Call struct {
	Name string
	Args []Expr
	Ty   int
}

func (self *Const) Type() int       { return ExprConst }
func (self *Const) ValueType() int  { return self.Ty }
func (self *Unary) Type() int       { return ExprUnary }
func (self *Unary) ValueType() int  { return self.Operand.ValueType() }
func (self *Binary) Type() int      { return ExprBinary }
func (self *Binary) ValueType() int { return self.Ty }
func (self *Call) Type() int        { return ExprCall }
func (self *Call) ValueType() int   { return self.Ty }

// PrintExpr renders an expression back into source form, mostly for
// diagnostics.
func PrintExpr(e Expr) string {
	switch e.Type() {
	case ExprConst:
		return e.(*Const).Tk.String()
	case ExprUnary:
		u := e.(*Unary)
		return fmt.Sprintf("%s%s", tokenName(u.Op), PrintExpr(u.Operand))
	case ExprBinary:
		b := e.(*Binary)
		return fmt.Sprintf("(%s %s %s)", PrintExpr(b.L), tokenName(b.Op), PrintExpr(b.R))
	case ExprCall:
		c := e.(*Call)
		args := []string{}
		for _, a := range c.Args {
			args = append(args, PrintExpr(a))
		}
		return fmt.Sprintf("%s(%s)", c.Name, strings.Join(args, ", "))
	default:
		return "<?>"
	}
}
