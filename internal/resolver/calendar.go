package resolver

import (
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"
)

// DayKeyLayout formats calendar-day keys.
const DayKeyLayout = "2006-01-02"

// DefaultTimezone is the reference zone used when none is configured.
const DefaultTimezone = "Asia/Jakarta"

// LoadLocation resolves a configured timezone name, defaulting to DefaultTimezone.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// DayKey returns the calendar day of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayKeyLayout)
}

// CalendarMarks is the set of days holding at least one on-going deadline, computed
// in a fixed reference zone so every viewer sees the same highlighted days.
type CalendarMarks struct {
	loc     *time.Location
	days    map[string]struct{}
	ongoing []ResolvedAssignment
}

// MarkCalendar collects the day keys of on-going assignments with a deadline.
func MarkCalendar(items []ResolvedAssignment, loc *time.Location) CalendarMarks {
	if loc == nil {
		loc = time.UTC
	}
	marks := CalendarMarks{loc: loc, days: make(map[string]struct{})}
	for _, item := range items {
		if item.Status != StatusOnGoing || item.Definition.Deadline == nil {
			continue
		}
		marks.days[DayKey(*item.Definition.Deadline, loc)] = struct{}{}
		marks.ongoing = append(marks.ongoing, item)
	}
	return marks
}

// Len returns the number of marked days.
func (c CalendarMarks) Len() int {
	return len(c.days)
}

// Has reports whether the reference-zone day of t is marked.
func (c CalendarMarks) Has(t time.Time) bool {
	_, ok := c.days[DayKey(t, c.loc)]
	return ok
}

// HasKey reports whether a YYYY-MM-DD key is marked.
func (c CalendarMarks) HasKey(key string) bool {
	_, ok := c.days[key]
	return ok
}

// Keys returns the marked days in ascending order.
func (c CalendarMarks) Keys() []string {
	keys := make([]string, 0, len(c.days))
	for key := range c.days {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// KeysInMonth returns the marked days of one month in ascending order.
func (c CalendarMarks) KeysInMonth(year int, month time.Month) []string {
	prefix := fmt.Sprintf("%04d-%02d-", year, int(month))
	keys := make([]string, 0)
	for _, key := range c.Keys() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Reminders lists on-going assignments due on the reference-zone day of day,
// ascending by deadline.
func (c CalendarMarks) Reminders(day time.Time) []ResolvedAssignment {
	key := DayKey(day, c.loc)
	reminders := make([]ResolvedAssignment, 0)
	for _, item := range c.ongoing {
		if DayKey(*item.Definition.Deadline, c.loc) == key {
			reminders = append(reminders, item)
		}
	}
	SortByDeadline(reminders)
	return reminders
}

// Location returns the reference zone.
func (c CalendarMarks) Location() *time.Location {
	return c.loc
}
