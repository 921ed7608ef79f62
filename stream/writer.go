package stream

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

var ErrRefused = errors.New("writer refused record")

// Writer emits records in the same format Reader parses. Once a write
// fails, either because the record limit is reached or the underlying
// writer errors out, every following write is refused.
type Writer struct {
	bw      *bufio.Writer
	sep     byte
	limit   int // max records accepted, zero means unlimited
	written int
	err     error
}

func NewWriter(w io.Writer, config *Config) *Writer {
	return &Writer{
		bw:  bufio.NewWriterSize(w, config.bufferSize()),
		sep: config.separator(),
	}
}

// SetLimit caps the number of records, headings included, the writer
// accepts.
func (self *Writer) SetLimit(n int) {
	self.limit = n
}

func (self *Writer) Written() int {
	return self.written
}

// Err reports why the writer started refusing records, if it did.
func (self *Writer) Err() error {
	return self.err
}

func (self *Writer) WriteRecord(fields [][]byte) bool {
	if self.err != nil {
		return false
	}
	if self.limit > 0 && self.written >= self.limit {
		self.err = errors.Wrapf(ErrRefused, "limit of %d records reached", self.limit)
		return false
	}

	for i, f := range fields {
		if i > 0 {
			self.bw.WriteByte(self.sep)
		}
		self.writeField(f)
	}
	if err := self.bw.WriteByte('\n'); err != nil {
		self.err = errors.Wrap(err, "write record")
		return false
	}
	self.written++
	return true
}

func (self *Writer) WriteStrings(fields ...string) bool {
	bs := make([][]byte, 0, len(fields))
	for _, f := range fields {
		bs = append(bs, []byte(f))
	}
	return self.WriteRecord(bs)
}

func (self *Writer) writeField(f []byte) {
	start := 0
	for i, c := range f {
		var esc byte
		switch c {
		case '\\':
			esc = '\\'
		case '\n':
			esc = 'n'
		case '\r':
			esc = 'r'
		case self.sep:
			if self.sep == '\t' {
				esc = 't'
			} else {
				esc = c
			}
		default:
			continue
		}
		self.bw.Write(f[start:i])
		self.bw.WriteByte('\\')
		self.bw.WriteByte(esc)
		start = i + 1
	}
	self.bw.Write(f[start:])
}

func (self *Writer) Flush() error {
	if err := self.bw.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}
	return nil
}
