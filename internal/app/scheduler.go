package app

import "time"

// Scheduler runs a callback once after a delay. Scheduled callbacks are
// never cancelled; they must check whether they are still current.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// TimerScheduler schedules callbacks on the runtime timer.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Timings holds the durations of transient highlights.
type Timings struct {
	PullAnimation  time.Duration
	ErrorHighlight time.Duration
}

// DefaultTimings matches the browser animations.
func DefaultTimings() Timings {
	return Timings{
		PullAnimation:  800 * time.Millisecond,
		ErrorHighlight: 500 * time.Millisecond,
	}
}
