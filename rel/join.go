package rel

import (
	"github.com/dianpeng/relpipe/dt"
	"github.com/dianpeng/relpipe/record"
	"github.com/dianpeng/relpipe/rlang"
	"github.com/dianpeng/relpipe/stream"
)

// Joiner holds what the join operators need from their surroundings. The
// relation given by the operator argument is the build side, it is loaded
// into memory; the input stream is the probe side and is streamed.
type Joiner struct {
	Registry *dt.Registry
	Compiler *rlang.Compiler
	Open     Opener

	// Stats of the last run.
	Stats *Stats
}

func NewJoiner(registry *dt.Registry, config *stream.Config) *Joiner {
	return &Joiner{
		Registry: registry,
		Compiler: rlang.NewCompiler(),
		Open:     FileOpener(config),
	}
}

// state of a join once the build side is in memory
type joinState struct {
	headings1  record.Record // probe side
	headings2  record.Record // build side
	nonCommon2 []int
	empty2     record.Record // empty literal of every build column
	specs1     *CompareSpecs
	specs2     *CompareSpecs
	map2       *RecordMultiMap
}

// prepare runs everything up to, not including, the output: resolve the
// build file name, open it, parse both headings, reconcile them, load the
// build side and close it.
func (self *Joiner) prepare(
	input RecordInputStream,
	tokens []rlang.Token,
) (*joinState, error) {
	self.Stats = newStats()

	fileName2, err := self.Compiler.EvalToStringOnly(tokens)
	if err != nil {
		return nil, newError("argument", ErrArgument, err, "")
	}

	file2, err := self.Open(fileName2)
	if err != nil {
		return nil, newError("open", ErrOpen, err, "%s", fileName2)
	}
	closed := false
	defer func() {
		if !closed {
			file2.Close()
		}
	}()

	out := &joinState{}
	if out.headings1, err = input.ParseHeadings(); err != nil {
		return nil, newError("headings", ErrHeadings, err, "input")
	}
	if out.headings2, err = file2.ParseHeadings(); err != nil {
		return nil, newError("headings", ErrHeadings, err, "%s", fileName2)
	}

	if err := ValidateHeadings(self.Registry, out.headings1.Ref()); err != nil {
		return nil, err
	}
	if err := ValidateHeadings(self.Registry, out.headings2.Ref()); err != nil {
		return nil, err
	}

	common, nonCommon2 := FindCommonAndNonCommonHeadings(out.headings1.Ref(), out.headings2.Ref())
	if len(common) == 0 {
		return nil, newError(
			"reconcile",
			ErrNoCommonColumns,
			nil,
			"%s and %s",
			out.headings1,
			out.headings2,
		)
	}
	out.nonCommon2 = nonCommon2

	if out.specs1, err = NewCompareSpecs(self.Registry, out.headings1.Ref(), common); err != nil {
		return nil, err
	}
	if out.specs2, err = NewCompareSpecs(self.Registry, out.headings2.Ref(), common); err != nil {
		return nil, err
	}
	if err := ValidateCompareSpecsPair(out.specs1, out.specs2); err != nil {
		return nil, err
	}

	if out.empty2, err = MakeRecordWithEmptyFields(self.Registry, out.headings2.Ref()); err != nil {
		return nil, err
	}

	// load the build side
	out.map2 = NewRecordMultiMap(out.specs2)
	if _, err := file2.ParseRecords(func(r record.Ref) bool {
		out.map2.Insert(r)
		return true
	}); err != nil {
		return nil, newError("build", ErrRecords, err, "%s", fileName2)
	}
	self.Stats.BuildRows = out.map2.Size()

	// The build side may hold a large buffer and the probe side can be of
	// any size, give the memory back before the probe starts.
	closed = true
	if err := file2.Close(); err != nil {
		return nil, newError("build", ErrRecords, err, "close %s", fileName2)
	}

	if err := ValidateCompareSpecsPair(out.specs1, out.map2.Specs()); err != nil {
		return nil, err
	}
	return out, nil
}
