package utils

import "time"

// Timer measures elapsed wall-clock time between a start and stop event.
// [NewTimer] starts it immediately.
type Timer struct {
	startTime time.Time
	duration  time.Duration
}

// NewTimer creates a started Timer.
func NewTimer() *Timer {
	return &Timer{startTime: time.Now()}
}

// Start resets the start time to now.
func (t *Timer) Start() {
	t.startTime = time.Now()
	t.duration = 0
}

// Stop records the elapsed time since the last Start and returns it.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.startTime)
	return t.duration
}

// GetDuration returns the duration captured by the most recent call to
// [Timer.Stop], or zero.
func (t *Timer) GetDuration() time.Duration {
	return t.duration
}

// Milliseconds returns GetDuration as fractional milliseconds, the unit used
// by the duration histograms.
func (t *Timer) Milliseconds() float64 {
	return float64(t.duration) / float64(time.Millisecond)
}
