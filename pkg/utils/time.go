package utils

import (
	"time"
)

// time.go - утилиты для работы со временем
//
// Границы суток считаются в UTC: дневные счетчики сделок и убытка
// сбрасываются в полночь UTC независимо от локальной таймзоны.

// GetDayStart возвращает начало текущего дня (00:00:00) в UTC
func GetDayStart() time.Time {
	return GetDayStartFrom(time.Now().UTC())
}

// GetDayStartFrom возвращает начало дня для указанного времени в UTC
func GetDayStartFrom(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GetDayEnd возвращает конец текущего дня (23:59:59.999999999) в UTC
func GetDayEnd() time.Time {
	return GetDayEndFrom(time.Now().UTC())
}

// GetDayEndFrom возвращает конец дня для указанного времени
func GetDayEndFrom(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, time.UTC)
}

// TimeRange представляет временной диапазон [From, To]
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains проверяет, попадает ли время в диапазон
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.From) && !t.After(tr.To)
}

// Duration возвращает длительность диапазона
func (tr TimeRange) Duration() time.Duration {
	return tr.To.Sub(tr.From)
}

// GetDayRange возвращает диапазон текущего дня в UTC
func GetDayRange() TimeRange {
	return TimeRange{From: GetDayStart(), To: GetDayEnd()}
}

// GetLastNDays возвращает диапазон последних N дней включая сегодня
func GetLastNDays(n int) TimeRange {
	now := time.Now().UTC()
	return TimeRange{
		From: GetDayStartFrom(now.AddDate(0, 0, -(n - 1))),
		To:   GetDayEndFrom(now),
	}
}
