package main

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dianpeng/relpipe/dt"
	"github.com/dianpeng/relpipe/rel"
	"github.com/dianpeng/relpipe/record"
	"github.com/dianpeng/relpipe/stream"
	"github.com/stretchr/testify/assert"
)

func newLeft(r *dt.Registry, c *stream.Config) (joinRunner, *rel.Joiner) {
	j := rel.NewJoinLeft(r, c)
	return j, &j.Joiner
}

func writeFile(t *testing.T, path string, rows ...[]string) {
	out, err := stream.Create(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		out.WriteStrings(r...)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) (*stream.File, [][]string) {
	f, err := stream.OpenRO(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	out := [][]string{}
	h, err := f.ParseHeadings()
	if err != nil {
		return f, out
	}
	out = append(out, h.Strings())
	f.ParseRecords(func(r record.Ref) bool {
		out = append(out, r.Strings())
		return true
	})
	return f, out
}

func joinFiles(t *testing.T) (string, string, string) {
	dir := t.TempDir()
	in := filepath.Join(dir, "people.tsv")
	build := filepath.Join(dir, "ages.tsv")
	writeFile(t, in,
		[]string{"id:int", "name"},
		[]string{"1", "Alice"},
		[]string{"2", "Bob"},
		[]string{"3", "Carol"},
	)
	writeFile(t, build,
		[]string{"id:int", "age:int"},
		[]string{"1", "30"},
		[]string{"3", "50"},
	)
	return in, build, filepath.Join(dir, "out.tsv.gz")
}

func TestRunJoin(t *testing.T) {
	assert := assert.New(t)
	in, build, out := joinFiles(t)
	opt := &options{input: in, output: out}
	assert.Equal(0, runJoin(opt, []string{fmt.Sprintf("%q", build)}, newLeft))

	f, records := readFile(t, out)
	assert.Equal(stream.CompressionGzip, f.Compression)
	assert.Equal([][]string{
		{"id:int", "name", "age:int"},
		{"1", "Alice", "30"},
		{"2", "Bob", "0"},
		{"3", "Carol", "50"},
	}, records)
}

func TestRunJoinLimit(t *testing.T) {
	assert := assert.New(t)
	in, build, out := joinFiles(t)
	opt := &options{input: in, output: out, limit: 1}
	assert.Equal(2, runJoin(opt, []string{fmt.Sprintf("%q", build)}, newLeft))

	_, records := readFile(t, out)
	assert.Equal([][]string{
		{"id:int", "name", "age:int"},
		{"1", "Alice", "30"},
	}, records)
}

func TestRunJoinFailureClosesFiles(t *testing.T) {
	assert := assert.New(t)
	in, _, out := joinFiles(t)
	opt := &options{input: in, output: out}
	assert.Equal(-1, runJoin(opt, []string{`"no-such-file.tsv"`}, newLeft))

	// an empty gzip stream is only there once the output was closed
	f, records := readFile(t, out)
	assert.Equal(stream.CompressionGzip, f.Compression)
	assert.Equal(0, len(records))
}

func TestRunJoinBadOptions(t *testing.T) {
	assert := assert.New(t)
	in, build, _ := joinFiles(t)
	assert.Equal(-1, runJoin(&options{input: in, sep: "::"}, []string{fmt.Sprintf("%q", build)}, newLeft))
	assert.Equal(-1, runJoin(&options{input: in}, []string{`"unterminated`}, newLeft))
}
