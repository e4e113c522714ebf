package timeline

import (
	"sort"
)

// Line is a single lyric with the playback time at which it becomes active.
type Line struct {
	Text  string
	Start float64 // seconds
}

// Timeline is an immutable, ascending-ordered sequence of lyric lines.
//
// Equal Start values are kept in input order (stable sort, no deduplication),
// so which of two lines sharing a start time resolves as active depends on
// the order they were supplied in.
type Timeline struct {
	lines []Line
}

// New builds a timeline from lines in any order. Input is copied and
// stable-sorted ascending by Start; empty or duplicate text is permitted.
func New(lines []Line) *Timeline {
	sorted := make([]Line, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})
	return &Timeline{lines: sorted}
}

// Len returns the number of lines.
func (t *Timeline) Len() int { return len(t.lines) }

// Lines returns a copy of the ordered lines.
func (t *Timeline) Lines() []Line {
	out := make([]Line, len(t.lines))
	copy(out, t.lines)
	return out
}

// ActiveIndex returns the index of the last line whose start time is at or
// before ts, or -1 if no line is active yet. Queries may arrive in any
// order; no call-order state is kept.
func (t *Timeline) ActiveIndex(ts float64) int {
	// first index with Start > ts; the active line sits just before it
	i := sort.Search(len(t.lines), func(i int) bool {
		return t.lines[i].Start > ts
	})
	return i - 1
}

// ActiveAt resolves the active lyric text for ts. The second return is false
// when ts precedes the first line or the timeline is empty.
func (t *Timeline) ActiveAt(ts float64) (string, bool) {
	i := t.ActiveIndex(ts)
	if i < 0 {
		return "", false
	}
	return t.lines[i].Text, true
}

// End returns the start time of the final line, or 0 for an empty timeline.
func (t *Timeline) End() float64 {
	if len(t.lines) == 0 {
		return 0
	}
	return t.lines[len(t.lines)-1].Start
}
