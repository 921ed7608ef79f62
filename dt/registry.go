package dt

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrUnknownType = errors.New("unknown type tag")

const headingTypeSep = ":"

// Registry maps a type tag to its Type. Build one with NewRegistry at start
// up and hand it to every component that needs to interpret column values.
type Registry struct {
	types map[string]*Type
}

func NewRegistry() *Registry {
	r := &Registry{
		types: make(map[string]*Type),
	}
	for _, t := range []*Type{
		{Id: TypeString, Tag: "string", Empty: []byte{}, Comparable: true, canon: canonString},
		{Id: TypeIString, Tag: "istring", Empty: []byte{}, Comparable: true, canon: canonIString},
		{Id: TypeInt, Tag: "int", Empty: []byte("0"), Comparable: true, canon: canonInt},
		{Id: TypeUInt, Tag: "uint", Empty: []byte("0"), Comparable: true, canon: canonUInt},
		{Id: TypeDouble, Tag: "double", Empty: []byte("0.0"), Comparable: false, canon: canonDouble},
		{Id: TypeBool, Tag: "bool", Empty: []byte("false"), Comparable: true, canon: canonBool},
		{Id: TypeIPAddress, Tag: "ipaddress", Empty: []byte("0.0.0.0"), Comparable: true, canon: canonIPAddress},
	} {
		r.types[t.Tag] = t
	}
	return r
}

func (self *Registry) TypeFromTag(tag string) (*Type, error) {
	if tag == "" {
		tag = "string"
	}
	t, ok := self.types[tag]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "tag %q", tag)
	}
	return t, nil
}

func (self *Registry) EmptyLiteral(t *Type) []byte {
	return t.Empty
}

// HeadingType resolves the type carried by a heading such as "age:int".
func (self *Registry) HeadingType(heading string) (*Type, error) {
	_, tag := SplitHeading(heading)
	t, err := self.TypeFromTag(tag)
	if err != nil {
		return nil, errors.Wrapf(err, "heading %q", heading)
	}
	return t, nil
}

// SplitHeading splits "name:tag" into its parts. The tag is empty when the
// heading carries none.
func SplitHeading(heading string) (string, string) {
	idx := strings.LastIndex(heading, headingTypeSep)
	if idx < 0 {
		return heading, ""
	}
	return heading[:idx], heading[idx+1:]
}

// HeadingName strips the type tag off a heading.
func HeadingName(heading string) string {
	name, _ := SplitHeading(heading)
	return name
}
