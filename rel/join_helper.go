package rel

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dianpeng/relpipe/dt"
	"github.com/dianpeng/relpipe/record"
	"github.com/dianpeng/relpipe/stream"
)

// RecordInputStream is a headered stream of records, ie stream.Reader.
type RecordInputStream interface {
	ParseHeadings() (record.Record, error)
	ParseRecords(func(record.Ref) bool) (bool, error)
}

// RecordFileStream is a RecordInputStream owning a resource.
type RecordFileStream interface {
	RecordInputStream
	Close() error
}

// RecordOutputStream accepts records, false means the record was refused
// and nothing more should be written.
type RecordOutputStream interface {
	WriteRecord([][]byte) bool
}

// Opener opens the relation named by a join's argument.
type Opener func(path string) (RecordFileStream, error)

func FileOpener(config *stream.Config) Opener {
	return func(path string) (RecordFileStream, error) {
		f, err := stream.OpenRO(path, config)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// Stats counts what a join did.
type Stats struct {
	BuildRows          int
	ProbeRows          int
	EmittedRows        int // headings excluded
	UnmatchedProbeRows int
	MatchedBuild       *roaring.Bitmap // insertion numbers of build rows matched at least once
}

func newStats() *Stats {
	return &Stats{
		MatchedBuild: roaring.New(),
	}
}

func (self *Stats) DistinctBuildMatched() uint64 {
	return self.MatchedBuild.GetCardinality()
}

// FindCommonAndNonCommonHeadings returns the column names shared by both
// headings, in headings1's order, and the field numbers of headings2 that
// are not shared, in headings2's order. Names are compared with their type
// tags stripped.
func FindCommonAndNonCommonHeadings(
	headings1 record.Ref,
	headings2 record.Ref,
) ([]string, []int) {
	names2 := make(map[string]bool, headings2.NumberFields())
	for i := 0; i < headings2.NumberFields(); i++ {
		names2[dt.HeadingName(string(headings2.Field(i)))] = true
	}

	common := []string{}
	commonSet := make(map[string]bool)
	for i := 0; i < headings1.NumberFields(); i++ {
		name := dt.HeadingName(string(headings1.Field(i)))
		if names2[name] && !commonSet[name] {
			common = append(common, name)
			commonSet[name] = true
		}
	}

	nonCommon := []int{}
	for i := 0; i < headings2.NumberFields(); i++ {
		if !commonSet[dt.HeadingName(string(headings2.Field(i)))] {
			nonCommon = append(nonCommon, i)
		}
	}
	return common, nonCommon
}

// ValidateHeadings checks that every column name is unique and every type
// tag is known.
func ValidateHeadings(
	registry *dt.Registry,
	headings record.Ref,
) error {
	seen := make(map[string]int, headings.NumberFields())
	for i := 0; i < headings.NumberFields(); i++ {
		heading := string(headings.Field(i))
		if _, err := registry.HeadingType(heading); err != nil {
			return newError("headings", ErrHeadings, err, "column %d", i)
		}
		name := dt.HeadingName(heading)
		if j, ok := seen[name]; ok {
			return newError("headings", ErrDuplicateColumn, nil, "%q at column %d and %d", name, j, i)
		}
		seen[name] = i
	}
	return nil
}

// MakeRecordWithEmptyFields builds a record holding the empty literal of
// every heading's type.
func MakeRecordWithEmptyFields(
	registry *dt.Registry,
	headings record.Ref,
) (record.Record, error) {
	fields := make([]string, 0, headings.NumberFields())
	for i := 0; i < headings.NumberFields(); i++ {
		t, err := registry.HeadingType(string(headings.Field(i)))
		if err != nil {
			return record.Record{}, newError("empty-record", ErrHeadings, err, "")
		}
		fields = append(fields, string(registry.EmptyLiteral(t)))
	}
	return record.New(fields, 0), nil
}

// mergeWriter writes a record of one relation followed by the non common
// fields of a record of the other relation.
type mergeWriter struct {
	output    RecordOutputStream
	nonCommon []int
	storage   [][]byte
}

func (self *mergeWriter) write(r1 record.Ref, r2 record.Ref) bool {
	self.storage = append(self.storage[:0], r1.Fields()...)
	for _, n := range self.nonCommon {
		self.storage = append(self.storage, r2.Field(n))
	}
	return self.output.WriteRecord(self.storage)
}
