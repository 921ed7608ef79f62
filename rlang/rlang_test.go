package rlang

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func lexOrDie(t *testing.T, src string) []Token {
	tks, err := Lex(src)
	if err != nil {
		t.Fatalf("lex %q: %s", src, err)
	}
	return tks
}

func TestLex(t *testing.T) {
	assert := assert.New(t)
	{
		tks := lexOrDie(t, `concat("a\"b", 'c', 12, 1.5e3, true) + x_1`)
		types := []int{}
		for _, tk := range tks {
			types = append(types, tk.Type)
		}
		assert.Equal([]int{
			TkId, TkLPar, TkStr, TkComma, TkStr, TkComma, TkInt, TkComma,
			TkReal, TkComma, TkTrue, TkRPar, TkAdd, TkId,
		}, types)
		assert.Equal(`a"b`, tks[2].Text)
		assert.Equal("c", tks[4].Text)
		assert.Equal(int64(12), tks[6].Int)
		assert.Equal(1500.0, tks[8].Real)
		assert.Equal("x_1", tks[13].Text)
	}
	{
		tks := lexOrDie(t, "   ")
		assert.Equal(0, len(tks))
	}
	{
		_, err := Lex(`"open`)
		assert.True(errors.Cause(err) == ErrSyntax)
	}
	{
		_, err := Lex("a ? b")
		assert.True(errors.Cause(err) == ErrSyntax)
		assert.Contains(err.Error(), "position(1: 3)")
	}
}

func TestParseErrors(t *testing.T) {
	assert := assert.New(t)
	for _, c := range []struct {
		src   string
		cause error
	}{
		{``, ErrSyntax},
		{`"a" "b"`, ErrSyntax},
		{`(1 + 2`, ErrSyntax},
		{`nope(1)`, ErrSyntax},
		{`name`, ErrSyntax},
		{`"a" + 1`, ErrType},
		{`-"a"`, ErrType},
		{`"a" * "b"`, ErrType},
		{`lower(1)`, ErrType},
		{`env()`, ErrType},
		{`str(1, 2)`, ErrType},
	} {
		_, err := Parse(lexOrDie(t, c.src))
		assert.True(errors.Cause(err) == c.cause, "%s: %v", c.src, err)
	}
}

func TestParseTypes(t *testing.T) {
	assert := assert.New(t)
	for _, c := range []struct {
		src string
		ty  int
	}{
		{`"a" + "b"`, TypeString},
		{`1 + 2 * 3`, TypeInt},
		{`1 + 2.0`, TypeReal},
		{`4 / 2`, TypeReal},
		{`true`, TypeBool},
		{`str(1)`, TypeString},
		{`concat("a", 1, true)`, TypeString},
	} {
		e, err := Parse(lexOrDie(t, c.src))
		assert.Nil(err, c.src)
		assert.Equal(c.ty, e.ValueType(), c.src)
	}
}

func TestEvalToStringOnly(t *testing.T) {
	assert := assert.New(t)
	c := &Compiler{
		Environ: []string{"DATA_DIR=/var/data", "EMPTY="},
	}

	for _, x := range []struct {
		src    string
		expect string
	}{
		{`"people.tsv"`, "people.tsv"},
		{`"people" + ".tsv"`, "people.tsv"},
		{`env("DATA_DIR") + "/ages.tsv.gz"`, "/var/data/ages.tsv.gz"},
		{`concat("part-", 1 + 2, ".tsv")`, "part-3.tsv"},
		{`concat("flag-", true)`, "flag-true"},
		{`str(7 * 6)`, "42"},
		{`str(-1)`, "-1"},
		{`upper("abc") + lower("DEF")`, "ABCdef"},
		{`basename("/tmp/x/y.tsv")`, "y.tsv"},
		{`basename("/tmp/x/")`, "x"},
		{`"quote\" back\\slash"`, `quote" back\slash`},
		{`env("MISSING") + env("EMPTY")`, ""},
	} {
		v, err := c.EvalToStringOnly(lexOrDie(t, x.src))
		assert.Nil(err, x.src)
		assert.Equal(x.expect, v, x.src)
	}
}

func TestEvalEnviron(t *testing.T) {
	assert := assert.New(t)
	{
		c := &Compiler{Environ: []string{"DIR=/data"}}
		v, err := c.EvalToStringOnly(lexOrDie(t, `env("DIR") + "/x.tsv"`))
		assert.Nil(err)
		assert.Equal("/data/x.tsv", v)
	}
	{
		c := &Compiler{Environ: []string{"DIR=/data", "HOME=/h", "Q=a=b", "NOVALUE"}}
		for _, x := range []struct {
			src    string
			expect string
		}{
			{`env("DIR") + "/x.tsv"`, "/data/x.tsv"},
			{`env("HOME")`, "/h"},
			{`env("Q")`, "a=b"},
			{`env("NOVALUE")`, ""},
			{`env("PATH")`, ""},
		} {
			v, err := c.EvalToStringOnly(lexOrDie(t, x.src))
			assert.Nil(err, x.src)
			assert.Equal(x.expect, v, x.src)
		}
	}
	{
		// empty but not nil hides the process environment
		c := &Compiler{Environ: []string{}}
		v, err := c.EvalToStringOnly(lexOrDie(t, `env("PATH")`))
		assert.Nil(err)
		assert.Equal("", v)
	}
}

func TestEvalToStringOnlyRejectsNonString(t *testing.T) {
	assert := assert.New(t)
	c := NewCompiler()
	for _, src := range []string{`1`, `1 + 2`, `2.5`, `true`} {
		_, err := c.EvalToStringOnly(lexOrDie(t, src))
		assert.True(errors.Cause(err) == ErrNotString, src)
	}

	// plain Eval is fine with numbers
	v, err := c.Eval(lexOrDie(t, `1 + 2`))
	assert.Nil(err)
	assert.Equal("3", v)
}

func TestGenAwk(t *testing.T) {
	assert := assert.New(t)
	e, err := Parse(lexOrDie(t, `"a" + env("B")`))
	assert.Nil(err)
	assert.Contains(GenAwk(e), `printf "%s", ("a" ENVIRON["B"])`)
	assert.Equal(`("a" + env("B"))`, PrintExpr(e))
}
