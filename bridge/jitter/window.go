// Package jitter implements the per-speaker jitter-buffered decode queue
// and the sliding-window occupancy tracker it uses to size itself.
package jitter

const windowSize uint8 = 255

type extremeEntry struct {
	insertedAt uint8
	value      uint8
}

// SlidingWindowExtreme tracks an extremum (minimum or maximum, depending on
// the comparator it was built with) of the last 255 pushed values in
// amortized O(1) time, using a monotone deque keyed by a wrapping
// insertion-time counter.
type SlidingWindowExtreme struct {
	dominates func(back, incoming uint8) bool
	entries   []extremeEntry
	curTime   uint8
}

func newSlidingWindowExtreme(dominates func(back, incoming uint8) bool) *SlidingWindowExtreme {
	return &SlidingWindowExtreme{dominates: dominates}
}

// NewSlidingWindowMin returns a tracker of the minimum of the last 255
// pushed values.
func NewSlidingWindowMin() *SlidingWindowExtreme {
	return newSlidingWindowExtreme(func(back, incoming uint8) bool { return back >= incoming })
}

// NewSlidingWindowMax returns a tracker of the maximum of the last 255
// pushed values.
func NewSlidingWindowMax() *SlidingWindowExtreme {
	return newSlidingWindowExtreme(func(back, incoming uint8) bool { return back <= incoming })
}

// Push inserts a new observation.
func (w *SlidingWindowExtreme) Push(value uint8) {
	for len(w.entries) > 0 && w.dominates(w.entries[len(w.entries)-1].value, value) {
		w.entries = w.entries[:len(w.entries)-1]
	}
	w.entries = append(w.entries, extremeEntry{insertedAt: w.curTime, value: value})
	for len(w.entries) > 0 && w.curTime-w.entries[0].insertedAt >= windowSize {
		w.entries = w.entries[1:]
	}
	w.curTime++
}

// Get returns the current extremum, or 0 if nothing has been pushed yet.
func (w *SlidingWindowExtreme) Get() uint8 {
	if len(w.entries) == 0 {
		return 0
	}
	return w.entries[0].value
}
