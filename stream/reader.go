package stream

import (
	"bufio"
	"bytes"
	"io"

	"github.com/dianpeng/relpipe/record"
	"github.com/pkg/errors"
)

var (
	ErrNoHeadings = errors.New("stream has no headings")
	ErrFieldCount = errors.New("record field count does not match headings")
)

const (
	defSeparator  = '\t'
	defBufferSize = 64 * 1024
)

type Config struct {
	Separator  byte // field separator, TAB if zero
	BufferSize int  // read buffer size in bytes, 64KiB if zero
}

func (self *Config) separator() byte {
	if self == nil || self.Separator == 0 {
		return defSeparator
	}
	return self.Separator
}

func (self *Config) bufferSize() int {
	if self == nil || self.BufferSize <= 0 {
		return defBufferSize
	}
	return self.BufferSize
}

// Reader parses a headered record stream. The first line holds the
// headings, every following line is one record with exactly as many fields.
//
// Records handed out by ParseRecords borrow the reader's buffer, they are
// only valid for the duration of the callback.
type Reader struct {
	br       *bufio.Reader
	sep      byte
	headings *record.Record
	line     int

	long    []byte   // line that does not fit into the bufio buffer
	scratch []byte   // unescaped field bytes
	bounds  []int    // field boundaries inside of scratch
	fields  [][]byte // fields of the current line
}

func NewReader(r io.Reader, config *Config) *Reader {
	return &Reader{
		br:  bufio.NewReaderSize(r, config.bufferSize()),
		sep: config.separator(),
	}
}

// ParseHeadings reads the headings line. Calling it again returns the same
// headings without touching the stream.
func (self *Reader) ParseHeadings() (record.Record, error) {
	if self.headings != nil {
		return *self.headings, nil
	}
	line, err := self.readLine()
	if err == io.EOF {
		return record.Record{}, ErrNoHeadings
	}
	if err != nil {
		return record.Record{}, errors.Wrap(err, "read headings")
	}
	h := record.NewRef(self.split(line)).Copy()
	self.headings = &h
	return h, nil
}

// ParseRecords invokes fn on every record until the stream is exhausted or
// fn returns false. The boolean result is false iff fn returned false.
func (self *Reader) ParseRecords(fn func(record.Ref) bool) (bool, error) {
	h, err := self.ParseHeadings()
	if err != nil {
		return false, err
	}
	want := h.NumberFields()

	for {
		line, err := self.readLine()
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, errors.Wrapf(err, "read line %d", self.line)
		}
		fields := self.split(line)
		if len(fields) != want {
			return false, errors.Wrapf(
				ErrFieldCount,
				"line %d: expect %d fields, got %d",
				self.line,
				want,
				len(fields),
			)
		}
		if !fn(record.NewRef(fields)) {
			return false, nil
		}
	}
}

func (self *Reader) readLine() ([]byte, error) {
	line, err := self.br.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		self.long = append(self.long[:0], line...)
		for err == bufio.ErrBufferFull {
			line, err = self.br.ReadSlice('\n')
			self.long = append(self.long, line...)
		}
		line = self.long
	}

	if err == io.EOF {
		if len(line) == 0 {
			return nil, io.EOF
		}
	} else if err != nil {
		return nil, err
	}

	self.line++
	line = bytes.TrimSuffix(line, []byte{'\n'})
	line = bytes.TrimSuffix(line, []byte{'\r'})
	return line, nil
}

// split cuts the line into fields, fields point into the line unless the
// line carries escapes, in which case they point into the scratch buffer.
func (self *Reader) split(line []byte) [][]byte {
	self.fields = self.fields[:0]

	if bytes.IndexByte(line, '\\') < 0 {
		start := 0
		for i, c := range line {
			if c == self.sep {
				self.fields = append(self.fields, line[start:i:i])
				start = i + 1
			}
		}
		self.fields = append(self.fields, line[start:len(line):len(line)])
		return self.fields
	}

	self.scratch = self.scratch[:0]
	self.bounds = append(self.bounds[:0], 0)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			i++
			self.scratch = append(self.scratch, unescape(line[i]))
		case c == self.sep:
			self.bounds = append(self.bounds, len(self.scratch))
		default:
			self.scratch = append(self.scratch, c)
		}
	}
	self.bounds = append(self.bounds, len(self.scratch))

	for i := 1; i < len(self.bounds); i++ {
		s, e := self.bounds[i-1], self.bounds[i]
		self.fields = append(self.fields, self.scratch[s:e:e])
	}
	return self.fields
}

func unescape(c byte) byte {
	switch c {
	case 't':
		return '\t'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	default:
		return c
	}
}
