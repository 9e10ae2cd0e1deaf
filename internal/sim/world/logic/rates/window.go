// Package rates implements tick-based fixed-window limits.
package rates

// Window counts events in a fixed window of ticks.
type Window struct {
	Start uint64
	Count int
}

// Allow records one event at nowTick. It returns false, plus the ticks until
// the window resets, once more than max events land in the same window.
// A zero window or non-positive max never limits.
func (w *Window) Allow(nowTick, window uint64, max int) (ok bool, cooldownTicks uint64) {
	if window == 0 || max <= 0 {
		return true, 0
	}
	if nowTick < w.Start || nowTick-w.Start >= window {
		w.Start = nowTick
		w.Count = 0
	}
	w.Count++
	if w.Count <= max {
		return true, 0
	}
	return false, (w.Start + window) - nowTick
}
