package timeutils

import "time"

// Возвращает начало окна "N дней назад" от указанного момента.
func DaysBack(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, -days)
}

// Возвращает время начала текущего месяца.
func BeginOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
