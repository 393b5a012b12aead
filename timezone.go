package directory

import (
	"fmt"
	"time"
)

// TimeZone describes the zone the remote service should use for a free/busy
// view: a base bias in minutes plus optional standard/daylight transitions.
type TimeZone struct {
	// Bias is the UTC offset in minutes, sign as used by the service (UTC = local + bias).
	Bias         int         `json:"bias"`
	StandardTime *TimeChange `json:"standard_time,omitempty"`
	DaylightTime *TimeChange `json:"daylight_time,omitempty"`
}

// TimeChange describes one recurring transition, e.g. "the last Sunday of October at 02:00".
type TimeChange struct {
	Bias int `json:"bias"`
	// Time is the local clock time of the transition, "hh:mm:ss".
	Time string `json:"time"`
	// DayOrder is the week of the month, 1-5 where 5 means last.
	DayOrder  int    `json:"day_order"`
	Month     int    `json:"month"`
	DayOfWeek string `json:"day_of_week"`
}

// Clone returns a deep copy of tz. Clone of nil is nil.
func (tz *TimeZone) Clone() *TimeZone {
	if tz == nil {
		return nil
	}
	c := *tz
	if tz.StandardTime != nil {
		st := *tz.StandardTime
		c.StandardTime = &st
	}
	if tz.DaylightTime != nil {
		dt := *tz.DaylightTime
		c.DaylightTime = &dt
	}
	return &c
}

// Map renders the time zone in nested-map wire form.
func (tz *TimeZone) Map() map[string]any {
	m := map[string]any{"bias": tz.Bias}
	if tz.StandardTime != nil {
		m["standard_time"] = tz.StandardTime.Map()
	}
	if tz.DaylightTime != nil {
		m["daylight_time"] = tz.DaylightTime.Map()
	}
	return m
}

// Map renders the transition in nested-map wire form.
func (tc *TimeChange) Map() map[string]any {
	return map[string]any{
		"bias":        tc.Bias,
		"time":        tc.Time,
		"day_order":   tc.DayOrder,
		"month":       tc.Month,
		"day_of_week": tc.DayOfWeek,
	}
}

// Validate checks field ranges. It is a helper for callers that want to
// reject a malformed zone before querying; the builder never calls it and
// passes the time zone through as given.
func (tz *TimeZone) Validate() error {
	if tz == nil {
		return nil
	}
	changes := []struct {
		name string
		tc   *TimeChange
	}{{"standard_time", tz.StandardTime}, {"daylight_time", tz.DaylightTime}}
	for _, ch := range changes {
		name, tc := ch.name, ch.tc
		if tc == nil {
			continue
		}
		if tc.Month < 1 || tc.Month > 12 {
			return &InvalidArgumentError{Key: OptTimeZone, Reason: fmt.Sprintf("%s month %d out of range", name, tc.Month)}
		}
		if tc.DayOrder < 1 || tc.DayOrder > 5 {
			return &InvalidArgumentError{Key: OptTimeZone, Reason: fmt.Sprintf("%s day_order %d out of range", name, tc.DayOrder)}
		}
		if _, ok := parseWeekday(tc.DayOfWeek); !ok {
			return &InvalidArgumentError{Key: OptTimeZone, Reason: fmt.Sprintf("%s day_of_week %q unknown", name, tc.DayOfWeek)}
		}
		if _, err := time.Parse(time.TimeOnly, tc.Time); err != nil {
			return &InvalidArgumentError{Key: OptTimeZone, Reason: fmt.Sprintf("%s time %q is not hh:mm:ss", name, tc.Time)}
		}
	}
	return nil
}

func parseWeekday(s string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == s {
			return d, true
		}
	}
	return 0, false
}
