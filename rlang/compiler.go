package rlang

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrType      = errors.New("type error")
	ErrNotString = errors.New("expression does not evaluate to a single string")
)

// expression grammar, operator arguments are expressions only
//
// expr := term (('+'|'-') term)*
// term := unary (('*'|'/') unary)*
// unary := '-' unary | primary
// primary := const | '(' expr ')' | ID '(' arg-list? ')'
// arg-list := expr (',' expr)*
// const := INT | REAL | STR | TRUE | FALSE

type builtin struct {
	minArg int
	maxArg int // -1 for variadic
	arg    int // required argument type, -1 for any
	ret    int
}

var builtins = map[string]builtin{
	"str":      {1, 1, -1, TypeString},
	"lower":    {1, 1, TypeString, TypeString},
	"upper":    {1, 1, TypeString, TypeString},
	"env":      {1, 1, TypeString, TypeString},
	"basename": {1, 1, TypeString, TypeString},
	"concat":   {1, -1, -1, TypeString},
}

type parser struct {
	tokens []Token
	cursor int
}

func (self *parser) peek() Token {
	if self.cursor >= len(self.tokens) {
		return Token{Type: TkEof}
	}
	return self.tokens[self.cursor]
}

func (self *parser) advance() Token {
	tk := self.peek()
	if self.cursor < len(self.tokens) {
		self.cursor++
	}
	return tk
}

func (self *parser) err(tk Token, msg string) error {
	return errors.Wrapf(ErrSyntax, "token %d (%s): %s", self.cursor, tk, msg)
}

func (self *parser) typeErr(f string, args ...interface{}) error {
	return errors.Wrap(ErrType, fmt.Sprintf(f, args...))
}

func (self *parser) expect(tk int) error {
	if got := self.peek(); got.Type != tk {
		return self.err(got, fmt.Sprintf("expect %s", tokenName(tk)))
	}
	self.advance()
	return nil
}

// Parse builds a type checked expression out of the token list, every
// token must be consumed.
func Parse(tokens []Token) (Expr, error) {
	p := &parser{tokens: tokens}
	if len(tokens) == 0 {
		return nil, p.err(p.peek(), "empty expression")
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tk := p.peek(); tk.Type != TkEof {
		return nil, p.err(tk, "trailing tokens after expression")
	}
	return e, nil
}

func (self *parser) parseExpr() (Expr, error) {
	lhs, err := self.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op := self.peek().Type
		if op != TkAdd && op != TkSub {
			return lhs, nil
		}
		self.advance()
		rhs, err := self.parseTerm()
		if err != nil {
			return nil, err
		}
		if lhs, err = self.binary(op, lhs, rhs); err != nil {
			return nil, err
		}
	}
}

func (self *parser) parseTerm() (Expr, error) {
	lhs, err := self.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := self.peek().Type
		if op != TkMul && op != TkDiv {
			return lhs, nil
		}
		self.advance()
		rhs, err := self.parseUnary()
		if err != nil {
			return nil, err
		}
		if lhs, err = self.binary(op, lhs, rhs); err != nil {
			return nil, err
		}
	}
}

func (self *parser) binary(op int, lhs, rhs Expr) (Expr, error) {
	lt, rt := lhs.ValueType(), rhs.ValueType()
	out := &Binary{Op: op, L: lhs, R: rhs}

	switch {
	case op == TkAdd && lt == TypeString && rt == TypeString:
		out.Ty = TypeString
	case isNumeric(lt) && isNumeric(rt):
		if op == TkDiv || lt == TypeReal || rt == TypeReal {
			out.Ty = TypeReal
		} else {
			out.Ty = TypeInt
		}
	default:
		return nil, self.typeErr(
			"operator %s can not be applied to %s and %s",
			tokenName(op),
			typeName(lt),
			typeName(rt),
		)
	}
	return out, nil
}

func (self *parser) parseUnary() (Expr, error) {
	if self.peek().Type != TkSub {
		return self.parsePrimary()
	}
	self.advance()
	operand, err := self.parseUnary()
	if err != nil {
		return nil, err
	}
	if !isNumeric(operand.ValueType()) {
		return nil, self.typeErr("unary - can not be applied to %s", typeName(operand.ValueType()))
	}
	return &Unary{Op: TkSub, Operand: operand}, nil
}

func (self *parser) parsePrimary() (Expr, error) {
	tk := self.advance()
	switch tk.Type {
	case TkStr:
		return &Const{Tk: tk, Ty: TypeString}, nil
	case TkInt:
		return &Const{Tk: tk, Ty: TypeInt}, nil
	case TkReal:
		return &Const{Tk: tk, Ty: TypeReal}, nil
	case TkTrue, TkFalse:
		return &Const{Tk: tk, Ty: TypeBool}, nil
	case TkLPar:
		e, err := self.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := self.expect(TkRPar); err != nil {
			return nil, err
		}
		return e, nil
	case TkId:
		return self.parseCall(tk)
	default:
		return nil, self.err(tk, "unexpected token")
	}
}

func (self *parser) parseCall(name Token) (Expr, error) {
	b, ok := builtins[name.Text]
	if !ok {
		return nil, self.err(name, fmt.Sprintf("unknown function %q", name.Text))
	}
	if err := self.expect(TkLPar); err != nil {
		return nil, err
	}

	out := &Call{Name: name.Text, Ty: b.ret}
	if self.peek().Type != TkRPar {
		for {
			arg, err := self.parseExpr()
			if err != nil {
				return nil, err
			}
			if b.arg >= 0 && arg.ValueType() != b.arg {
				return nil, self.typeErr(
					"function %s expects %s argument, got %s",
					name.Text,
					typeName(b.arg),
					typeName(arg.ValueType()),
				)
			}
			out.Args = append(out.Args, arg)
			if self.peek().Type != TkComma {
				break
			}
			self.advance()
		}
	}
	if err := self.expect(TkRPar); err != nil {
		return nil, err
	}

	if len(out.Args) < b.minArg || (b.maxArg >= 0 && len(out.Args) > b.maxArg) {
		return nil, self.typeErr("function %s: wrong number of arguments(%d)", name.Text, len(out.Args))
	}
	return out, nil
}
