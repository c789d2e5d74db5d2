// Package rolling provides incremental rolling-window computations with O(1)
// amortized cost per update: ring-buffer sums and means, Welford-style
// windowed variance, and monotonic-deque min/max.
package rolling

import "math"

// Window is a fixed-capacity ring buffer over float64 values that maintains a
// running sum. Pushing beyond capacity evicts the oldest value.
type Window struct {
	buf   []float64
	head  int
	count int
	sum   float64
}

// NewWindow creates a rolling window with the given size. Size must be positive.
func NewWindow(size int) *Window {
	if size <= 0 {
		panic("rolling: window size must be positive")
	}

	return &Window{
		buf:   make([]float64, size),
		head:  0,
		count: 0,
		sum:   0,
	}
}

// Push adds a value, evicting the oldest value when the window is full.
// It returns the evicted value and whether an eviction happened.
func (w *Window) Push(v float64) (evicted float64, didEvict bool) {
	if w.count == len(w.buf) {
		evicted = w.buf[w.head]
		didEvict = true
		w.sum -= evicted
		w.buf[w.head] = v
		w.head = (w.head + 1) % len(w.buf)
	} else {
		w.buf[(w.head+w.count)%len(w.buf)] = v
		w.count++
	}

	w.sum += v

	return evicted, didEvict
}

// Full reports whether the window holds size values.
func (w *Window) Full() bool {
	return w.count == len(w.buf)
}

// Count returns the number of values currently held.
func (w *Window) Count() int {
	return w.count
}

// Size returns the window capacity.
func (w *Window) Size() int {
	return len(w.buf)
}

// Sum returns the running sum of the held values.
func (w *Window) Sum() float64 {
	return w.sum
}

// Mean returns the mean of the held values, or NaN when empty.
func (w *Window) Mean() float64 {
	if w.count == 0 {
		return math.NaN()
	}

	return w.sum / float64(w.count)
}

// At returns the i-th held value, oldest first. i must be in [0, Count()).
func (w *Window) At(i int) float64 {
	return w.buf[(w.head+i)%len(w.buf)]
}

// Variance maintains windowed mean and variance using Welford's method with
// support for removing the evicted value, so each update is O(1).
type Variance struct {
	win  *Window
	mean float64
	m2   float64
}

// NewVariance creates a windowed variance accumulator over size values.
func NewVariance(size int) *Variance {
	return &Variance{
		win:  NewWindow(size),
		mean: 0,
		m2:   0,
	}
}

// Push adds a value, evicting the oldest when full.
func (v *Variance) Push(x float64) {
	evicted, didEvict := v.win.Push(x)

	if didEvict {
		// Remove the evicted value first, then add the new one.
		n := float64(v.win.Count()) // count is unchanged by a full-window push
		oldMean := v.mean
		v.mean = (n*oldMean - evicted) / (n - 1)
		v.m2 -= (evicted - oldMean) * (evicted - v.mean)
	}

	n := float64(v.win.Count())
	if !didEvict {
		delta := x - v.mean
		v.mean += delta / n
		v.m2 += delta * (x - v.mean)

		return
	}

	// didEvict: the window dropped to n-1 values above; re-add at n.
	delta := x - v.mean
	v.mean = v.mean + delta/n
	v.m2 += delta * (x - v.mean)
}

// Full reports whether the window holds size values.
func (v *Variance) Full() bool {
	return v.win.Full()
}

// Mean returns the windowed mean, or NaN when empty.
func (v *Variance) Mean() float64 {
	if v.win.Count() == 0 {
		return math.NaN()
	}

	return v.mean
}

// Std returns the sample standard deviation of the window, NaN with fewer than
// two values.
func (v *Variance) Std() float64 {
	n := v.win.Count()
	if n < 2 {
		return math.NaN()
	}

	m2 := v.m2
	if m2 < 0 {
		// Guard against negative rounding residue.
		m2 = 0
	}

	return math.Sqrt(m2 / float64(n-1))
}

type extremumEntry struct {
	index int
	value float64
}

// Extremum tracks the rolling minimum or maximum of the last size values using
// a monotonic deque.
type Extremum struct {
	size   int
	better func(a, b float64) bool
	deque  []extremumEntry
	next   int
}

// NewMin creates a rolling minimum over size values.
func NewMin(size int) *Extremum {
	return newExtremum(size, func(a, b float64) bool { return a <= b })
}

// NewMax creates a rolling maximum over size values.
func NewMax(size int) *Extremum {
	return newExtremum(size, func(a, b float64) bool { return a >= b })
}

func newExtremum(size int, better func(a, b float64) bool) *Extremum {
	if size <= 0 {
		panic("rolling: extremum size must be positive")
	}

	return &Extremum{
		size:   size,
		better: better,
		deque:  nil,
		next:   0,
	}
}

// Push adds a value to the rolling extremum.
func (e *Extremum) Push(v float64) {
	// Drop dominated entries from the back.
	for len(e.deque) > 0 && e.better(v, e.deque[len(e.deque)-1].value) {
		e.deque = e.deque[:len(e.deque)-1]
	}

	e.deque = append(e.deque, extremumEntry{index: e.next, value: v})
	e.next++

	// Expire entries that left the window from the front.
	for len(e.deque) > 0 && e.deque[0].index <= e.next-1-e.size {
		e.deque = e.deque[1:]
	}
}

// Full reports whether at least size values have been pushed.
func (e *Extremum) Full() bool {
	return e.next >= e.size
}

// Value returns the current extremum, or NaN when no values were pushed.
func (e *Extremum) Value() float64 {
	if len(e.deque) == 0 {
		return math.NaN()
	}

	return e.deque[0].value
}

// EMAState maintains an exponential moving average seeded by the SMA of the
// first period values, matching the standard charting definition.
type EMAState struct {
	period int
	alpha  float64
	seed   *Window
	value  float64
	ready  bool
}

// NewEMA creates an EMA accumulator with the given period.
func NewEMA(period int) *EMAState {
	if period <= 0 {
		panic("rolling: ema period must be positive")
	}

	return &EMAState{
		period: period,
		alpha:  2.0 / (float64(period) + 1.0),
		seed:   NewWindow(period),
		value:  0,
		ready:  false,
	}
}

// Push feeds the next value and returns the updated EMA, NaN until seeded.
func (e *EMAState) Push(v float64) float64 {
	if !e.ready {
		e.seed.Push(v)
		if !e.seed.Full() {
			return math.NaN()
		}

		e.value = e.seed.Mean()
		e.ready = true

		return e.value
	}

	e.value = e.alpha*v + (1-e.alpha)*e.value

	return e.value
}

// Ready reports whether the EMA has consumed period values.
func (e *EMAState) Ready() bool {
	return e.ready
}

// Value returns the current EMA, NaN until seeded.
func (e *EMAState) Value() float64 {
	if !e.ready {
		return math.NaN()
	}

	return e.value
}
