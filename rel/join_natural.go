package rel

import (
	"github.com/dianpeng/relpipe/dt"
	"github.com/dianpeng/relpipe/record"
	"github.com/dianpeng/relpipe/rlang"
	"github.com/dianpeng/relpipe/stream"
)

// JoinNatural is the inner flavour of JoinLeft: input records without a
// match are dropped.
type JoinNatural struct {
	Joiner
}

func NewJoinNatural(registry *dt.Registry, config *stream.Config) *JoinNatural {
	return &JoinNatural{
		Joiner: *NewJoiner(registry, config),
	}
}

func (self *JoinNatural) Run(
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
		ok := state.map2.ForEachId(
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
		)
		if !found {
			stats.UnmatchedProbeRows++
		}
		return ok
	})
	if err != nil {
		return false, newError("probe", ErrRecords, err, "input")
	}
	return ok, nil
}
