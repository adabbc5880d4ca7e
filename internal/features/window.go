package features

// Window keeps the most recent values of one statistic and reports their mean once full.
// Only defined values count toward the size, so after an undefined rate the window reaches one
// game further back instead of averaging fewer games.
type Window struct {
	size   int
	values []float64
	next   int
	full   bool
}

// NewWindow creates a trailing window of the given size
func NewWindow(size int) *Window {
	return &Window{
		size:   size,
		values: make([]float64, size),
	}
}

// Push records a value, evicting the oldest once the window is full
func (w *Window) Push(v float64) {
	w.values[w.next] = v
	w.next = (w.next + 1) % w.size
	if w.next == 0 {
		w.full = true
	}
}

// PushOptional records v when it is defined and leaves the window untouched otherwise
func (w *Window) PushOptional(v *float64) {
	if v != nil {
		w.Push(*v)
	}
}

// Len returns the number of values currently held
func (w *Window) Len() int {
	if w.full {
		return w.size
	}
	return w.next
}

// Mean returns the average of the held values. ok is false until the window is full.
func (w *Window) Mean() (mean float64, ok bool) {
	if !w.full {
		return 0, false
	}
	sum := 0.0
	for _, v := range w.values {
		sum += v
	}
	return sum / float64(w.size), true
}
