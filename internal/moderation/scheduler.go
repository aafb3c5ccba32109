package moderation

import (
	"time"

	"exile-bot/internal/crash"
)

// Scheduler runs deferred work such as drunk-tank releases and command
// message cleanup. Tasks must not depend on the event that scheduled them.
type Scheduler interface {
	After(name string, d time.Duration, fn func())
}

// TimerScheduler runs each task on its own timer with panic recovery.
type TimerScheduler struct{}

func (TimerScheduler) After(name string, d time.Duration, fn func()) {
	crash.AfterFunc(name, d, fn)
}
