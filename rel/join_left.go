package rel

import (
	"github.com/dianpeng/relpipe/dt"
	"github.com/dianpeng/relpipe/record"
	"github.com/dianpeng/relpipe/rlang"
	"github.com/dianpeng/relpipe/stream"
)

// JoinLeft joins every input record with all matching records of the
// relation named by its argument. An input record without match is joined
// with a record of empty values instead, so each input record shows up at
// least once.
type JoinLeft struct {
	Joiner
}

func NewJoinLeft(registry *dt.Registry, config *stream.Config) *JoinLeft {
	return &JoinLeft{
		Joiner: *NewJoiner(registry, config),
	}
}

// Run performs the join. The boolean result is false if output refused a
// record, in which case the join stopped right there. Every other failure
// is reported as an error.
func (self *JoinLeft) Run(
	input RecordInputStream,
	output RecordOutputStream,
	tokens []rlang.Token,
) (bool, error) {
	state, err := self.prepare(input, tokens)
	if err != nil {
		return false, err
	}

	merge := &mergeWriter{
		output:    output,
		nonCommon: state.nonCommon2,
	}
	if !merge.write(state.headings1.Ref(), state.headings2.Ref()) {
		return false, nil
	}

	stats := self.Stats
	ok, err := input.ParseRecords(func(r1 record.Ref) bool {
		stats.ProbeRows++
		found := false
		if !state.map2.ForEachId(
			func(id uint32, r2 record.Ref) bool {
				found = true
				stats.MatchedBuild.Add(id)
				if !merge.write(r1, r2) {
					return false
				}
				stats.EmittedRows++
				return true
			},
			r1,
			state.specs1,
		) {
			return false
		}

		if !found {
			stats.UnmatchedProbeRows++
			if !merge.write(r1, state.empty2.Ref()) {
				return false
			}
			stats.EmittedRows++
		}
		return true
	})
	if err != nil {
		return false, newError("probe", ErrRecords, err, "input")
	}
	return ok, nil
}
