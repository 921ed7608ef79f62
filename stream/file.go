package stream

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

const (
	CompressionNone = iota
	CompressionGzip
	CompressionZstd
	CompressionSnappy
	CompressionLZ4
)

var (
	magicGzip   = []byte{0x1f, 0x8b}
	magicZstd   = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicSnappy = []byte("\xff\x06\x00\x00sNaPpY")
	magicLZ4    = []byte{0x04, 0x22, 0x4d, 0x18}
)

func detectCompression(head []byte) int {
	switch {
	case bytes.HasPrefix(head, magicGzip):
		return CompressionGzip
	case bytes.HasPrefix(head, magicZstd):
		return CompressionZstd
	case bytes.HasPrefix(head, magicSnappy):
		return CompressionSnappy
	case bytes.HasPrefix(head, magicLZ4):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// CompressionFromPath picks the output compression by file extension.
func CompressionFromPath(path string) int {
	switch filepath.Ext(path) {
	case ".gz":
		return CompressionGzip
	case ".zst":
		return CompressionZstd
	case ".sz":
		return CompressionSnappy
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// File is a read only record stream backed by a file. Compressed files are
// detected by their magic bytes and decompressed transparently.
type File struct {
	*Reader
	Path        string
	Compression int

	fd      *os.File
	closers []io.Closer
}

func OpenRO(path string, config *Config) (*File, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	br := bufio.NewReader(fd)
	head, _ := br.Peek(len(magicSnappy))
	out := &File{
		Path:        path,
		Compression: detectCompression(head),
		fd:          fd,
	}

	var src io.Reader = br
	switch out.Compression {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			fd.Close()
			return nil, errors.Wrapf(err, "gzip %s", path)
		}
		out.closers = append(out.closers, zr)
		src = zr
	case CompressionZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			fd.Close()
			return nil, errors.Wrapf(err, "zstd %s", path)
		}
		rc := zr.IOReadCloser()
		out.closers = append(out.closers, rc)
		src = rc
	case CompressionSnappy:
		src = snappy.NewReader(br)
	case CompressionLZ4:
		src = lz4.NewReader(br)
	}

	out.Reader = NewReader(src, config)
	return out, nil
}

// Close releases the decompressor, the read buffer and the file handle.
// Closing twice is a no-op.
func (self *File) Close() error {
	if self.fd == nil {
		return nil
	}
	var first error
	for i := len(self.closers) - 1; i >= 0; i-- {
		if err := self.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := self.fd.Close(); err != nil && first == nil {
		first = err
	}
	self.closers = nil
	self.fd = nil
	self.Reader = nil
	if first != nil {
		return errors.Wrapf(first, "close %s", self.Path)
	}
	return nil
}

// OutputFile is a Writer backed by a file, compressed according to the
// file extension.
type OutputFile struct {
	*Writer
	Path string

	fd      *os.File
	closers []io.Closer
}

func Create(path string, config *Config) (*OutputFile, error) {
	fd, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}
	out := &OutputFile{
		Path: path,
		fd:   fd,
	}

	var dst io.Writer = fd
	switch CompressionFromPath(path) {
	case CompressionGzip:
		zw := gzip.NewWriter(fd)
		out.closers = append(out.closers, zw)
		dst = zw
	case CompressionZstd:
		zw, err := zstd.NewWriter(fd)
		if err != nil {
			fd.Close()
			return nil, errors.Wrapf(err, "zstd %s", path)
		}
		out.closers = append(out.closers, zw)
		dst = zw
	case CompressionSnappy:
		zw := snappy.NewBufferedWriter(fd)
		out.closers = append(out.closers, zw)
		dst = zw
	case CompressionLZ4:
		zw := lz4.NewWriter(fd)
		out.closers = append(out.closers, zw)
		dst = zw
	}

	out.Writer = NewWriter(dst, config)
	return out, nil
}

// Close flushes buffered records through the compressor and closes the file.
func (self *OutputFile) Close() error {
	if self.fd == nil {
		return nil
	}
	first := self.Writer.Flush()
	for i := len(self.closers) - 1; i >= 0; i-- {
		if err := self.closers[i].Close(); err != nil && first == nil {
			first = errors.Wrapf(err, "close %s", self.Path)
		}
	}
	if err := self.fd.Close(); err != nil && first == nil {
		first = errors.Wrapf(err, "close %s", self.Path)
	}
	self.closers = nil
	self.fd = nil
	return first
}
