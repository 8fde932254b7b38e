// Package clock планировщик отложенных действий страницы: таймеры и кадры анимации.
package clock

import "time"

// FrameInterval период кадра анимации
const FrameInterval = 16 * time.Millisecond

// Timer запланированное действие, которое можно отменить
type Timer interface {
	Stop() bool
}

// Scheduler планировщик действий страницы
type Scheduler interface {
	// AfterFunc выполнить f через d
	AfterFunc(d time.Duration, f func()) Timer
	// NextFrame выполнить f на следующем кадре анимации
	NextFrame(f func())
}

// Real планировщик на таймерах time
type Real struct{}

// AfterFunc выполнить f через d
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// NextFrame выполнить f на следующем кадре анимации
func (Real) NextFrame(f func()) {
	time.AfterFunc(FrameInterval, f)
}
