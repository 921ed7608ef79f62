package rel

import (
	"testing"

	"github.com/dianpeng/relpipe/dt"
	"github.com/dianpeng/relpipe/record"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func headings(h ...string) record.Ref {
	return record.New(h, 0).Ref()
}

func row(f ...string) record.Ref {
	return record.New(f, 0).Ref()
}

func TestFindCommonAndNonCommonHeadings(t *testing.T) {
	assert := assert.New(t)
	{
		common, nonCommon := FindCommonAndNonCommonHeadings(
			headings("b:int", "a", "x"),
			headings("y:bool", "a:string", "z", "b:int"),
		)
		assert.Equal([]string{"b", "a"}, common)
		assert.Equal([]int{0, 2}, nonCommon)
	}
	{
		common, nonCommon := FindCommonAndNonCommonHeadings(
			headings("a", "b"),
			headings("c", "d"),
		)
		assert.Equal(0, len(common))
		assert.Equal([]int{0, 1}, nonCommon)
	}
	{
		// duplicated names only count once
		common, nonCommon := FindCommonAndNonCommonHeadings(
			headings("id:int", "id:int"),
			headings("id:int", "v"),
		)
		assert.Equal([]string{"id"}, common)
		assert.Equal([]int{1}, nonCommon)
	}
}

func TestCompareSpecsKey(t *testing.T) {
	assert := assert.New(t)
	r := dt.NewRegistry()
	h1 := headings("name:istring", "id:int", "x")
	h2 := headings("id:int", "y", "name:istring")
	common, _ := FindCommonAndNonCommonHeadings(h1, h2)

	s1, err := NewCompareSpecs(r, h1, common)
	assert.Nil(err)
	s2, err := NewCompareSpecs(r, h2, common)
	assert.Nil(err)
	assert.Nil(ValidateCompareSpecsPair(s1, s2))
	assert.Equal(2, s1.Len())
	assert.Equal(1, s1.At(1).FieldNumber)
	assert.Equal(0, s2.At(1).FieldNumber)

	r1 := row("Alice", "007", "whatever")
	r2 := row("7", "other", "ALICE")
	assert.True(s1.Equal(r1, s2, r2))
	assert.Equal(
		string(s1.AppendKey(nil, r1)),
		string(s2.AppendKey(nil, r2)),
	)

	r3 := row("8", "other", "alice")
	assert.False(s1.Equal(r1, s2, r3))
	assert.NotEqual(
		string(s1.AppendKey(nil, r1)),
		string(s2.AppendKey(nil, r3)),
	)
}

func TestCompareSpecsKeyIsUnambiguous(t *testing.T) {
	assert := assert.New(t)
	r := dt.NewRegistry()
	h := headings("a", "b")
	s, err := NewCompareSpecs(r, h, []string{"a", "b"})
	assert.Nil(err)

	// plain concatenation would make these two collide
	assert.NotEqual(
		string(s.AppendKey(nil, row("ab", "c"))),
		string(s.AppendKey(nil, row("a", "bc"))),
	)
}

func TestValidateCompareSpecs(t *testing.T) {
	assert := assert.New(t)
	r := dt.NewRegistry()
	{
		s, err := NewCompareSpecs(r, headings("price:double"), []string{"price"})
		assert.Nil(err)
		err = ValidateCompareSpecs(s)
		assert.True(errors.Is(err, ErrUnsupportedType))
		assert.Contains(err.Error(), "price")
	}
	{
		s1, _ := NewCompareSpecs(r, headings("id:int"), []string{"id"})
		s2, _ := NewCompareSpecs(r, headings("id:string"), []string{"id"})
		assert.True(errors.Is(ValidateCompareSpecsPair(s1, s2), ErrTypeMismatch))
	}
	{
		s, _ := NewCompareSpecs(r, headings("id:int"), nil)
		assert.True(errors.Is(ValidateCompareSpecs(s), ErrNoCommonColumns))
	}
	{
		_, err := NewCompareSpecs(r, headings("id:money"), []string{"id"})
		assert.True(errors.Is(err, ErrHeadings))
		assert.True(errors.Is(err, dt.ErrUnknownType))
	}
}

func TestValidateHeadings(t *testing.T) {
	assert := assert.New(t)
	r := dt.NewRegistry()
	assert.Nil(ValidateHeadings(r, headings("id:int", "name", "ip:ipaddress")))
	assert.Nil(ValidateHeadings(r, headings()))
	{
		err := ValidateHeadings(r, headings("id:int", "v:bogus"))
		assert.True(errors.Is(err, ErrHeadings))
		assert.True(errors.Is(err, dt.ErrUnknownType))
		assert.Contains(err.Error(), "column 1")
	}
	{
		err := ValidateHeadings(r, headings("a", "id:int", "id:string"))
		assert.True(errors.Is(err, ErrDuplicateColumn))
		assert.Contains(err.Error(), "column 1 and 2")
	}
}
