package rel

import (
	"fmt"

	"github.com/pkg/errors"
)

// Conditions a join aborts on. Use errors.Is to tell them apart, the
// underlying cause, if any, stays reachable through Unwrap.
var (
	ErrArgument        = errors.New("bad argument")
	ErrOpen            = errors.New("unable to open input file")
	ErrHeadings        = errors.New("unable to parse headings")
	ErrDuplicateColumn = errors.New("column name appears more than once")
	ErrNoCommonColumns = errors.New("no common columns to join on")
	ErrTypeMismatch    = errors.New("common column has different types")
	ErrUnsupportedType = errors.New("column type can not be joined on")
	ErrRecords         = errors.New("unable to parse records")
)

type Error struct {
	Stage string
	Kind  error
	Msg   string
	Err   error
}

func (self *Error) Error() string {
	out := fmt.Sprintf("stage(%s): %s", self.Stage, self.Kind)
	if self.Msg != "" {
		out += ": " + self.Msg
	}
	if self.Err != nil {
		out += ": " + self.Err.Error()
	}
	return out
}

func (self *Error) Is(target error) bool {
	return target == self.Kind
}

func (self *Error) Unwrap() error {
	return self.Err
}

func newError(stage string, kind error, cause error, f string, args ...interface{}) error {
	return &Error{
		Stage: stage,
		Kind:  kind,
		Msg:   fmt.Sprintf(f, args...),
		Err:   cause,
	}
}
