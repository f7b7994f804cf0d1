//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package calendar derives the calendar dimension from the observed sale
// date range. Derivation is a pure function; persistence (upsert by date)
// lives in the store package so re-derivation stays idempotent.
package calendar

import (
	"time"

	"github.com/storepulse/storepulse/internal/model"
)

// ISOWeekday returns the ISO 8601 weekday number (Monday=1 .. Sunday=7).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

// IsWeekend reports whether t falls on an ISO Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	return ISOWeekday(t) >= 6
}

// Derive builds the attributes for a single date.
func Derive(date time.Time) model.CalendarDay {
	d := truncate(date)
	return model.CalendarDay{
		Date:        d,
		WeekdayName: d.Weekday().String(),
		MonthNumber: int(d.Month()),
		MonthName:   d.Month().String(),
		Year:        d.Year(),
		IsWeekend:   IsWeekend(d),
	}
}

// DeriveRange builds one row per day of the inclusive [min, max] range.
// Returns nil when max precedes min.
func DeriveRange(min, max time.Time) []model.CalendarDay {
	start, end := truncate(min), truncate(max)
	if end.Before(start) {
		return nil
	}

	var days []model.CalendarDay
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, Derive(d))
	}
	return days
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
