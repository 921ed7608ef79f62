package record

import (
	"strings"
)

// Ref is a read only view over a row's fields. The bytes are owned by
// whoever produced the Ref, a Ref handed to a callback is only valid until
// that callback returns. Use Copy to keep it around.
type Ref struct {
	fields [][]byte
}

func NewRef(fields [][]byte) Ref {
	return Ref{fields: fields}
}

func (self Ref) NumberFields() int {
	return len(self.fields)
}

func (self Ref) Field(idx int) []byte {
	return self.fields[idx]
}

func (self Ref) Fields() [][]byte {
	return self.fields
}

// Copy detaches the row from its current buffer. All fields of the copy
// share one freshly allocated backing array.
func (self Ref) Copy() Record {
	sz := 0
	for _, f := range self.fields {
		sz += len(f)
	}
	return build(self.fields, sz, 0)
}

func (self Ref) Strings() []string {
	out := make([]string, 0, len(self.fields))
	for _, f := range self.fields {
		out = append(out, string(f))
	}
	return out
}

func (self Ref) String() string {
	return "[" + strings.Join(self.Strings(), ",") + "]"
}

// Record owns its bytes.
type Record struct {
	buf []byte
	ref Ref
}

// New builds a record out of strings, reserve is a hint for additional
// fields the caller expects to append later.
func New(fields []string, reserve int) Record {
	bs := make([][]byte, 0, len(fields))
	sz := 0
	for _, f := range fields {
		bs = append(bs, []byte(f))
		sz += len(f)
	}
	return build(bs, sz, reserve)
}

func FromBytes(fields ...[]byte) Record {
	return NewRef(fields).Copy()
}

func build(fields [][]byte, sz int, reserve int) Record {
	buf := make([]byte, 0, sz)
	out := make([][]byte, 0, len(fields)+reserve)
	for _, f := range fields {
		start := len(buf)
		buf = append(buf, f...)
		out = append(out, buf[start:len(buf):len(buf)])
	}
	return Record{
		buf: buf,
		ref: Ref{fields: out},
	}
}

func (self Record) Ref() Ref {
	return self.ref
}

func (self Record) NumberFields() int {
	return self.ref.NumberFields()
}

func (self Record) Field(idx int) []byte {
	return self.ref.Field(idx)
}

func (self Record) Strings() []string {
	return self.ref.Strings()
}

func (self Record) String() string {
	return self.ref.String()
}
