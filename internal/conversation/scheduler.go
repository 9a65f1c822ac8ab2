package conversation

import "time"

// Scheduler defers work. The reveal pipeline and the post-expiry restart
// are its only users; swapping it out lets tests drive time by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// NewTimerScheduler returns the production scheduler backed by the runtime
// timer wheel.
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}
