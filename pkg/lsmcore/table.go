package lsmcore

// Entry is a single (generation time, write count) pair. Write counts
// start at zero in memory, are set to one on a direct (sequential) flush,
// and are incremented by one on every rewrite a merge subjects them to.
type Entry struct {
	Gen    int64
	Writes int64
}

// Table is an immutable, ordered run of Entries. Entries are held in a
// plain slice (no per-entry allocation, no linked structure) so merge and
// iteration stay cache-friendly.
//
// A Table is immutable after construction except for its write counts
// (mutated in place by Pop/Rewrite) and its cursor, which advances during
// a merge pass and is otherwise zero.
type Table struct {
	entries       []Entry
	minGen        int64
	maxGen        int64
	cursor        int
	fromMergeSort bool
}

// NewTable constructs a Table from entries already sorted strictly
// ascending by Gen. Callers (the engines) are responsible for the sort;
// NewTable does not re-sort.
func NewTable(entries []Entry, fromMergeSort bool) *Table {
	t := &Table{
		entries:       entries,
		fromMergeSort: fromMergeSort,
	}
	if len(entries) > 0 {
		t.minGen = entries[0].Gen
		t.maxGen = entries[len(entries)-1].Gen
	}
	return t
}

// MinGen returns the smallest key held by the table.
func (t *Table) MinGen() int64 { return t.minGen }

// MaxGen returns the largest key held by the table.
func (t *Table) MaxGen() int64 { return t.maxGen }

// Len returns the number of entries in the table, irrespective of cursor
// position.
func (t *Table) Len() int { return len(t.entries) }

// FromMergeSort reports whether this table was produced by the merge
// engine (true) or is a direct flush (false).
func (t *Table) FromMergeSort() bool { return t.fromMergeSort }

// Entries returns the table's backing entries. Callers must not retain a
// mutable reference across a merge, which mutates write counts in place.
func (t *Table) Entries() []Entry { return t.entries }

// Peek returns the key at the cursor and true, or (0, false) once the
// cursor has consumed every entry.
func (t *Table) Peek() (int64, bool) {
	if t.cursor >= len(t.entries) {
		return 0, false
	}
	return t.entries[t.cursor].Gen, true
}

// Pop returns the entry at the cursor, increments its write count, and
// advances the cursor. Popping past the end is a programming error.
func (t *Table) Pop() (Entry, error) {
	if t.cursor >= len(t.entries) {
		return Entry{}, newInvariantError("Table.Pop", ErrCursorOverrun)
	}
	t.entries[t.cursor].Writes++
	e := t.entries[t.cursor]
	t.cursor++
	return e, nil
}

// Rewrite increments the write count of every entry by one. Used when a
// table is appended to L1 without going through the merge engine (the LSM
// engine's no-overlap append path).
func (t *Table) Rewrite() {
	for i := range t.entries {
		t.entries[i].Writes++
	}
}

// TotalWrites sums the write count across every entry.
func (t *Table) TotalWrites() int64 {
	var sum int64
	for _, e := range t.entries {
		sum += e.Writes
	}
	return sum
}

// ResetCursor rewinds the cursor to zero. Tables that have been merged
// away are discarded, not reused, but this is exposed for tests that want
// to re-walk a table's entries after a merge pass.
func (t *Table) ResetCursor() { t.cursor = 0 }
