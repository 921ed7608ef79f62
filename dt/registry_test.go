package dt

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRegistryTypeFromTag(t *testing.T) {
	assert := assert.New(t)
	r := NewRegistry()

	{
		ty, err := r.TypeFromTag("int")
		assert.Nil(err)
		assert.Equal(TypeInt, ty.Id)
		assert.Equal("0", string(r.EmptyLiteral(ty)))
	}
	{
		// no tag means string
		ty, err := r.TypeFromTag("")
		assert.Nil(err)
		assert.Equal(TypeString, ty.Id)
		assert.Equal("", string(r.EmptyLiteral(ty)))
	}
	{
		_, err := r.TypeFromTag("decimal")
		assert.True(errors.Cause(err) == ErrUnknownType)
	}
}

func TestHeading(t *testing.T) {
	assert := assert.New(t)
	r := NewRegistry()

	name, tag := SplitHeading("age:int")
	assert.Equal("age", name)
	assert.Equal("int", tag)

	name, tag = SplitHeading("name")
	assert.Equal("name", name)
	assert.Equal("", tag)

	assert.Equal("a:b", HeadingName("a:b:string"))

	ty, err := r.HeadingType("addr:ipaddress")
	assert.Nil(err)
	assert.Equal(TypeIPAddress, ty.Id)

	_, err = r.HeadingType("x:nope")
	assert.True(errors.Cause(err) == ErrUnknownType)
}

func TestTypeEquality(t *testing.T) {
	assert := assert.New(t)
	r := NewRegistry()
	ty := func(tag string) *Type {
		x, err := r.TypeFromTag(tag)
		assert.Nil(err)
		return x
	}

	for _, c := range []struct {
		tag   string
		a     string
		b     string
		equal bool
	}{
		{"string", "Bob", "Bob", true},
		{"string", "Bob", "bob", false},
		{"istring", "Bob", "bOB", true},
		{"istring", "Bob", "Rob", false},
		{"int", "007", "7", true},
		{"int", "+7", "7", true},
		{"int", "-7", "7", false},
		{"int", "3", "3.0", false},
		{"uint", "010", "10", true},
		{"uint", "10", "11", false},
		{"bool", "1", "true", true},
		{"bool", "T", "false", false},
		{"ipaddress", "10.0.0.1", "10.0.0.1", true},
		{"ipaddress", "::ffff:0a00:0001", "::ffff:10.0.0.1", true},
		{"ipaddress", "10.0.0.1", "10.0.0.2", false},
		{"double", "3", "3.0", true},
		{"double", "-0", "0", true},
		// malformed values only match the very same bytes
		{"int", "x1", "x1", true},
		{"int", "x1", "1", false},
	} {
		assert.Equal(c.equal, ty(c.tag).Equal([]byte(c.a), []byte(c.b)), "%s: %q vs %q", c.tag, c.a, c.b)
	}
}

func TestComparable(t *testing.T) {
	assert := assert.New(t)
	r := NewRegistry()

	for _, tag := range []string{"string", "istring", "int", "uint", "bool", "ipaddress"} {
		ty, _ := r.TypeFromTag(tag)
		assert.True(ty.Comparable, tag)
	}
	ty, _ := r.TypeFromTag("double")
	assert.False(ty.Comparable)
}
