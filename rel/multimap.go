package rel

import (
	"github.com/dianpeng/relpipe/record"
)

type mapEntry struct {
	id  uint32
	rec record.Record
}

// RecordMultiMap is an in memory index of records keyed by their join
// columns. Any number of records may share a key, they are kept in
// insertion order.
type RecordMultiMap struct {
	specs   *CompareSpecs
	buckets map[string][]mapEntry
	size    int
	key     []byte
}

func NewRecordMultiMap(specs *CompareSpecs) *RecordMultiMap {
	return &RecordMultiMap{
		specs:   specs,
		buckets: make(map[string][]mapEntry),
	}
}

func (self *RecordMultiMap) Specs() *CompareSpecs {
	return self.specs
}

// Size is the number of records stored.
func (self *RecordMultiMap) Size() int {
	return self.size
}

// Keys is the number of distinct keys.
func (self *RecordMultiMap) Keys() int {
	return len(self.buckets)
}

// Insert copies r into the map, the caller may reuse r's buffer right
// after. Records are numbered by insertion order, starting at zero.
func (self *RecordMultiMap) Insert(r record.Ref) {
	self.InsertRecord(r.Copy())
}

func (self *RecordMultiMap) InsertRecord(r record.Record) {
	self.key = self.specs.AppendKey(self.key[:0], r.Ref())
	k := string(self.key)
	self.buckets[k] = append(self.buckets[k], mapEntry{
		id:  uint32(self.size),
		rec: r,
	})
	self.size++
}

// ForEach invokes fn on every stored record matching probe, where probe's
// join columns are described by probeSpecs. It stops as soon as fn returns
// false and reports false in that case, otherwise true, no match included.
func (self *RecordMultiMap) ForEach(
	fn func(record.Ref) bool,
	probe record.Ref,
	probeSpecs *CompareSpecs,
) bool {
	return self.ForEachId(
		func(_ uint32, r record.Ref) bool {
			return fn(r)
		},
		probe,
		probeSpecs,
	)
}

// ForEachId is ForEach which also hands out the matching record's insertion
// number.
func (self *RecordMultiMap) ForEachId(
	fn func(uint32, record.Ref) bool,
	probe record.Ref,
	probeSpecs *CompareSpecs,
) bool {
	self.key = probeSpecs.AppendKey(self.key[:0], probe)
	for _, e := range self.buckets[string(self.key)] {
		if !fn(e.id, e.rec.Ref()) {
			return false
		}
	}
	return true
}
