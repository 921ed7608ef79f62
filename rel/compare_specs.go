package rel

import (
	"encoding/binary"

	"github.com/dianpeng/relpipe/dt"
	"github.com/dianpeng/relpipe/record"
)

// CompareSpec locates one join column inside of a relation.
type CompareSpec struct {
	Name        string
	FieldNumber int
	Type        *dt.Type
}

// CompareSpecs is the list of join columns of one relation. The specs of
// the two sides of a join are built from the same list of names, so the
// i-th spec of one side pairs with the i-th spec of the other.
type CompareSpecs struct {
	specs []CompareSpec
}

func NewCompareSpecs(
	registry *dt.Registry,
	headings record.Ref,
	names []string,
) (*CompareSpecs, error) {
	out := &CompareSpecs{
		specs: make([]CompareSpec, 0, len(names)),
	}
	for _, name := range names {
		idx := findHeading(headings, name)
		if idx < 0 {
			return nil, newError("compare-specs", ErrNoCommonColumns, nil, "column %q not found", name)
		}
		heading := string(headings.Field(idx))
		t, err := registry.HeadingType(heading)
		if err != nil {
			return nil, newError("compare-specs", ErrHeadings, err, "")
		}
		out.specs = append(out.specs, CompareSpec{
			Name:        name,
			FieldNumber: idx,
			Type:        t,
		})
	}
	return out, nil
}

func findHeading(headings record.Ref, name string) int {
	for i := 0; i < headings.NumberFields(); i++ {
		if dt.HeadingName(string(headings.Field(i))) == name {
			return i
		}
	}
	return -1
}

func (self *CompareSpecs) Len() int {
	return len(self.specs)
}

func (self *CompareSpecs) At(idx int) CompareSpec {
	return self.specs[idx]
}

// AppendKey appends the join key of r to dst. Each field is rendered
// through its type's canonical form and length prefixed, so equal keys
// mean equal values under every column's equality.
func (self *CompareSpecs) AppendKey(dst []byte, r record.Ref) []byte {
	var scratch [32]byte
	for _, s := range self.specs {
		v := s.Type.AppendCanonical(scratch[:0], r.Field(s.FieldNumber))
		dst = binary.AppendUvarint(dst, uint64(len(v)))
		dst = append(dst, v...)
	}
	return dst
}

// Equal tells whether r1, under these specs, and r2, under other, match on
// every join column.
func (self *CompareSpecs) Equal(
	r1 record.Ref,
	other *CompareSpecs,
	r2 record.Ref,
) bool {
	if len(self.specs) != len(other.specs) {
		return false
	}
	for i, s := range self.specs {
		o := other.specs[i]
		if !s.Type.Equal(r1.Field(s.FieldNumber), r2.Field(o.FieldNumber)) {
			return false
		}
	}
	return true
}

// ValidateCompareSpecs checks every join column has a type that supports
// matching.
func ValidateCompareSpecs(specs *CompareSpecs) error {
	if specs.Len() == 0 {
		return newError("validate", ErrNoCommonColumns, nil, "")
	}
	for _, s := range specs.specs {
		if !s.Type.Comparable {
			return newError(
				"validate",
				ErrUnsupportedType,
				nil,
				"column %q has type %s",
				s.Name,
				s.Type,
			)
		}
	}
	return nil
}

// ValidateCompareSpecsPair checks both sides agree on every join column's
// type.
func ValidateCompareSpecsPair(specs1, specs2 *CompareSpecs) error {
	if err := ValidateCompareSpecs(specs1); err != nil {
		return err
	}
	if err := ValidateCompareSpecs(specs2); err != nil {
		return err
	}
	if specs1.Len() != specs2.Len() {
		return newError("validate", ErrNoCommonColumns, nil, "spec size mismatch %d vs %d", specs1.Len(), specs2.Len())
	}
	for i, s1 := range specs1.specs {
		s2 := specs2.specs[i]
		if s1.Type.Id != s2.Type.Id {
			return newError(
				"validate",
				ErrTypeMismatch,
				nil,
				"column %q is %s on one side and %s on the other",
				s1.Name,
				s1.Type,
				s2.Type,
			)
		}
	}
	return nil
}
