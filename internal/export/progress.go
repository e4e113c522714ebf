package export

import "math"

// ProgressFunc receives export progress in [0, 1].
type ProgressFunc func(progress float64)

// Phase boundaries of the reported progress range: asset loading and setup
// occupy the first 20%, encoding the remainder.
const (
	loadPhaseEnd = 0.2
	encodeSpan   = 1.0 - loadPhaseEnd
)

// tracker throttles and monotonizes progress callbacks: a callback fires
// only when the rounded percentage changes, values never decrease, and a
// successful export ends on exactly 1.0.
type tracker struct {
	fn       ProgressFunc
	lastPct  int
	lastSent float64
}

func newTracker(fn ProgressFunc) *tracker {
	return &tracker{fn: fn, lastPct: -1, lastSent: -1}
}

func (t *tracker) report(p float64) {
	if t.fn == nil {
		return
	}
	if p < t.lastSent {
		return
	}
	if p > 1 {
		p = 1
	}

	pct := int(math.Round(p * 100))
	if pct <= t.lastPct {
		return
	}

	t.lastPct = pct
	t.lastSent = p
	t.fn(p)
}

// finish emits the terminal 1.0 exactly once.
func (t *tracker) finish() {
	if t.fn == nil || t.lastSent == 1.0 {
		return
	}
	t.lastPct = 100
	t.lastSent = 1.0
	t.fn(1.0)
}
