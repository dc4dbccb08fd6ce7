// Package face implements the cooperative, single-threaded Face API: the
// application-facing surface that expresses Interests, answers them with
// Data or Nack, and registers prefixes with the forwarder. It is built on
// top of an ndn.Engine, which owns the transport and the low-level FIB/PIT
// multiplexing; Face adds the record bookkeeping (pending Interests,
// Interest filters, registered prefixes) and the processEvents/shutdown
// lifecycle that an application drives directly.
package face

// RecordId identifies a record (pending Interest, Interest filter, or
// registered prefix) within its RecordContainer. The zero value never
// denotes a live record.
type RecordId uint64

// RecordContainer stores records of type T keyed by a RecordId it assigns
// itself, mirroring the pending-Interest/Interest-filter/registered-prefix
// tables of a Face: insertion always allocates a fresh id, lookups and
// removals are by id, and RemoveIf/ForEach give callers a way to sweep the
// whole table without exposing its internal map.
type RecordContainer[T any] struct {
	records map[RecordId]*T
	lastId  RecordId
}

// NewRecordContainer constructs an empty container.
func NewRecordContainer[T any]() *RecordContainer[T] {
	return &RecordContainer[T]{records: make(map[RecordId]*T)}
}

// Insert stores val under a newly allocated id and returns it.
func (c *RecordContainer[T]) Insert(val T) RecordId {
	c.lastId++
	id := c.lastId
	c.records[id] = &val
	return id
}

// Get returns the record stored under id, or nil if there is none.
func (c *RecordContainer[T]) Get(id RecordId) *T {
	return c.records[id]
}

// Erase removes the record stored under id, if any.
func (c *RecordContainer[T]) Erase(id RecordId) {
	delete(c.records, id)
}

// Clear removes every record.
func (c *RecordContainer[T]) Clear() {
	c.records = make(map[RecordId]*T)
}

// RemoveIf visits every record, removing those for which f returns true.
// f may be called in any order; mutating val in place is retained unless
// the record is removed.
func (c *RecordContainer[T]) RemoveIf(f func(id RecordId, val *T) bool) {
	for id, val := range c.records {
		if f(id, val) {
			delete(c.records, id)
		}
	}
}

// ForEach visits every record without the option to remove it.
func (c *RecordContainer[T]) ForEach(f func(id RecordId, val *T)) {
	c.RemoveIf(func(id RecordId, val *T) bool {
		f(id, val)
		return false
	})
}

// Empty reports whether the container holds no records.
func (c *RecordContainer[T]) Empty() bool {
	return len(c.records) == 0
}

// Len returns the number of records currently stored.
func (c *RecordContainer[T]) Len() int {
	return len(c.records)
}
