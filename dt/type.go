package dt

import (
	"bytes"
	"net/netip"
	"strconv"
)

// Data types known to the record streams. A heading carries its type as a
// tag after the column name, ie "age:int"; a heading without tag is a string.
const (
	TypeString = iota
	TypeIString
	TypeInt
	TypeUInt
	TypeDouble
	TypeBool
	TypeIPAddress
)

// Type describes how a column's values behave. A Type is immutable once
// registered.
type Type struct {
	Id    int
	Tag   string
	Empty []byte // canonical "no value" literal

	// Whether two values of this type can be matched against each other
	// inside of a join key.
	Comparable bool

	// normalize one value into its canonical form, appending it to dst. The
	// boolean result is false if the value does not parse under this type.
	canon func(dst []byte, v []byte) ([]byte, bool)
}

// prefix for values that do not parse, canonical forms never start with it
const malformedMark = 0x00

// AppendCanonical appends the canonical form of v to dst. Two values are
// equal under this type iff their canonical forms are byte equal.
func (self *Type) AppendCanonical(dst []byte, v []byte) []byte {
	if self.canon == nil {
		return append(dst, v...)
	}
	out, ok := self.canon(dst, v)
	if !ok {
		out = append(dst, malformedMark)
		out = append(out, v...)
	}
	return out
}

// Equal compares two raw values under this type's equality.
func (self *Type) Equal(a, b []byte) bool {
	var ab, bb [64]byte
	return bytes.Equal(
		self.AppendCanonical(ab[:0], a),
		self.AppendCanonical(bb[:0], b),
	)
}

func (self *Type) String() string {
	return self.Tag
}

func canonString(dst []byte, v []byte) ([]byte, bool) {
	return append(dst, v...), true
}

func canonIString(dst []byte, v []byte) ([]byte, bool) {
	return append(dst, bytes.ToLower(v)...), true
}

func canonInt(dst []byte, v []byte) ([]byte, bool) {
	i, err := strconv.ParseInt(string(bytes.TrimSpace(v)), 10, 64)
	if err != nil {
		return dst, false
	}
	return strconv.AppendInt(dst, i, 10), true
}

func canonUInt(dst []byte, v []byte) ([]byte, bool) {
	u, err := strconv.ParseUint(
		string(bytes.TrimPrefix(bytes.TrimSpace(v), []byte{'+'})),
		10,
		64,
	)
	if err != nil {
		return dst, false
	}
	return strconv.AppendUint(dst, u, 10), true
}

func canonDouble(dst []byte, v []byte) ([]byte, bool) {
	f, err := strconv.ParseFloat(string(bytes.TrimSpace(v)), 64)
	if err != nil {
		return dst, false
	}
	if f == 0 {
		f = 0 // fold -0
	}
	return strconv.AppendFloat(dst, f, 'g', -1, 64), true
}

func canonBool(dst []byte, v []byte) ([]byte, bool) {
	b, err := strconv.ParseBool(string(bytes.TrimSpace(v)))
	if err != nil {
		return dst, false
	}
	return strconv.AppendBool(dst, b), true
}

func canonIPAddress(dst []byte, v []byte) ([]byte, bool) {
	addr, err := netip.ParseAddr(string(bytes.TrimSpace(v)))
	if err != nil {
		return dst, false
	}
	return addr.AppendTo(dst), true
}
