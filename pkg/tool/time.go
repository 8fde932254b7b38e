package tool

import "time"

// RoundToDate округляет дату в t до начала дня
func RoundToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysAgo начало дня, отстоящего от now на days дней назад
func DaysAgo(now time.Time, days int) time.Time {
	return RoundToDate(now).AddDate(0, 0, -days)
}
