package rlang

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var ErrSyntax = errors.New("syntax error")

const (
	// Literal
	TkTrue = iota
	TkFalse
	TkInt
	TkReal
	TkStr
	TkId

	// Punctuation
	TkComma
	TkLPar
	TkRPar
	TkAdd
	TkSub
	TkMul
	TkDiv

	TkError
	TkEof
)

func tokenName(tk int) string {
	switch tk {
	case TkTrue:
		return "true"
	case TkFalse:
		return "false"
	case TkInt:
		return "int"
	case TkReal:
		return "real"
	case TkStr:
		return "string"
	case TkId:
		return "identifier"
	case TkComma:
		return ","
	case TkLPar:
		return "("
	case TkRPar:
		return ")"
	case TkAdd:
		return "+"
	case TkSub:
		return "-"
	case TkMul:
		return "*"
	case TkDiv:
		return "/"
	case TkEof:
		return "<eof>"
	default:
		return "<error>"
	}
}

// Token is one lexed unit of an operator argument. Pos is the byte offset
// inside of the source, kept for diagnostics only.
type Token struct {
	Type int
	Text string
	Int  int64
	Real float64
	Pos  int
}

func (self Token) String() string {
	switch self.Type {
	case TkStr:
		return strconv.Quote(self.Text)
	case TkInt, TkReal, TkId:
		return self.Text
	default:
		return tokenName(self.Type)
	}
}

type lexer struct {
	source string
	cursor int
}

func (self *lexer) pos(where int) (int, int) {
	line := 1
	col := 1
	for idx := 0; idx < where && idx < len(self.source); idx++ {
		if self.source[idx] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func (self *lexer) err(where int, msg string) error {
	line, col := self.pos(where)
	return errors.Wrapf(ErrSyntax, "around position(%d: %d): %s", line, col, msg)
}

// Lex turns an argument source into tokens, the trailing TkEof is not part
// of the result.
func Lex(source string) ([]Token, error) {
	l := &lexer{source: source}
	out := []Token{}
	for {
		tk, err := l.next()
		if err != nil {
			return nil, err
		}
		if tk.Type == TkEof {
			return out, nil
		}
		out = append(out, tk)
	}
}

func (self *lexer) next() (Token, error) {
	for self.cursor < len(self.source) {
		r, sz := utf8.DecodeRuneInString(self.source[self.cursor:])
		if r == utf8.RuneError && sz == 1 {
			return Token{}, self.err(self.cursor, "invalid utf8 character")
		}
		if !unicode.IsSpace(r) {
			break
		}
		self.cursor += sz
	}
	if self.cursor == len(self.source) {
		return Token{Type: TkEof, Pos: self.cursor}, nil
	}

	start := self.cursor
	c := self.source[self.cursor]
	switch c {
	case ',':
		return self.yield(TkComma, start, 1), nil
	case '(':
		return self.yield(TkLPar, start, 1), nil
	case ')':
		return self.yield(TkRPar, start, 1), nil
	case '+':
		return self.yield(TkAdd, start, 1), nil
	case '-':
		return self.yield(TkSub, start, 1), nil
	case '*':
		return self.yield(TkMul, start, 1), nil
	case '/':
		return self.yield(TkDiv, start, 1), nil
	case '"', '\'':
		return self.lexStr(c)
	default:
		break
	}

	if c >= '0' && c <= '9' || c == '.' {
		return self.lexNum()
	}
	if c == '_' || unicode.IsLetter(rune(c)) {
		return self.lexId(), nil
	}
	return Token{}, self.err(start, fmt.Sprintf("unexpected character %q", c))
}

func (self *lexer) yield(tk int, start int, sz int) Token {
	self.cursor += sz
	return Token{
		Type: tk,
		Text: self.source[start:self.cursor],
		Pos:  start,
	}
}

func (self *lexer) lexStr(quote byte) (Token, error) {
	start := self.cursor
	self.cursor++
	b := strings.Builder{}
	for self.cursor < len(self.source) {
		c := self.source[self.cursor]
		switch c {
		case quote:
			self.cursor++
			return Token{Type: TkStr, Text: b.String(), Pos: start}, nil
		case '\\':
			if self.cursor+1 == len(self.source) {
				return Token{}, self.err(start, "string literal not closed")
			}
			self.cursor++
			switch n := self.source[self.cursor]; n {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(n)
			}
		default:
			b.WriteByte(c)
		}
		self.cursor++
	}
	return Token{}, self.err(start, "string literal not closed")
}

func (self *lexer) lexNum() (Token, error) {
	start := self.cursor
	isReal := false
loop:
	for self.cursor < len(self.source) {
		c := self.source[self.cursor]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' || c == 'e' || c == 'E':
			isReal = true
		case c == '+' || c == '-':
			// sign of an exponent
			if p := self.source[self.cursor-1]; p != 'e' && p != 'E' {
				break loop
			}
		default:
			break loop
		}
		self.cursor++
	}
	text := self.source[start:self.cursor]

	if isReal {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, self.err(start, fmt.Sprintf("invalid number %q", text))
		}
		return Token{Type: TkReal, Text: text, Real: v, Pos: start}, nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Token{}, self.err(start, fmt.Sprintf("invalid number %q", text))
	}
	return Token{Type: TkInt, Text: text, Int: v, Pos: start}, nil
}

func (self *lexer) lexId() Token {
	start := self.cursor
	for self.cursor < len(self.source) {
		r, sz := utf8.DecodeRuneInString(self.source[self.cursor:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' {
			break
		}
		self.cursor += sz
	}
	text := self.source[start:self.cursor]
	switch text {
	case "true":
		return Token{Type: TkTrue, Text: text, Pos: start}
	case "false":
		return Token{Type: TkFalse, Text: text, Pos: start}
	default:
		return Token{Type: TkId, Text: text, Pos: start}
	}
}
