package schedule

import (
	"time"

	"github.com/gfranca/atelieagenda/internal/model"
)

// Hours is the resolved open/close window for one date, local "HH:MM".
type Hours struct {
	Open  string
	Close string
}

const (
	defaultOpen  = "08:00"
	defaultClose = "20:00"
)

// defaultHours returns the built-in window for a weekday: Tuesday through
// Saturday 08:00-20:00, closed Sunday and Monday.
func defaultHours(weekday time.Weekday) (Hours, bool) {
	if weekday >= time.Tuesday && weekday <= time.Saturday {
		return Hours{Open: defaultOpen, Close: defaultClose}, true
	}
	return Hours{}, false
}

// ResolveHours maps a date to its open/close window. Rules are canonical
// (normalized at the store adapter); at most the first rule matching the
// weekday is consulted. Degradation order mirrors the admin store's quirks:
// a missing rule falls back to the built-in default, a rule flagged closed
// wins outright, a rule without parseable times falls back to the default,
// and an inverted window (open >= close) closes the day. Never errors.
func ResolveHours(date time.Time, rules []model.BusinessHoursRule) (Hours, bool) {
	weekday := date.In(Location).Weekday()

	var rule *model.BusinessHoursRule
	for i := range rules {
		if rules[i].Weekday == int(weekday) {
			rule = &rules[i]
			break
		}
	}

	if rule == nil {
		return defaultHours(weekday)
	}
	if rule.Closed {
		return Hours{}, false
	}

	openMins, openOK := minutesOf(rule.Open)
	closeMins, closeOK := minutesOf(rule.Close)
	if !openOK || !closeOK {
		return defaultHours(weekday)
	}
	if openMins >= closeMins {
		return Hours{}, false
	}
	return Hours{Open: rule.Open, Close: rule.Close}, true
}
