// Package export renders directory results in standard interchange formats:
// availability as iCalendar VFREEBUSY components and candidates as vCards.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/rbaliyan/directory"
)

// DefaultProductID is the PRODID of exported calendars.
const DefaultProductID = "-//rbaliyan//directory//EN"

// DefaultMergedInterval is the slot length assumed when expanding merged free/busy strings.
const DefaultMergedInterval = 30 * time.Minute

const (
	propFreeBusy = "FREEBUSY"
	paramFBType  = "FBTYPE"
	periodLayout = "20060102T150405Z"
)

// ErrResponseMismatch is returned when the response does not carry one entry per address.
var ErrResponseMismatch = errors.New("export: response count does not match addresses")

var fbTypes = map[directory.BusyType]string{
	directory.BusyBusy:      "BUSY",
	directory.BusyTentative: "BUSY-TENTATIVE",
	directory.BusyOOF:       "BUSY-UNAVAILABLE",
}

var mergedTypes = map[byte]directory.BusyType{
	'1': directory.BusyTentative,
	'2': directory.BusyBusy,
	'3': directory.BusyOOF,
}

type options struct {
	productID string
	interval  time.Duration
	now       func() time.Time
}

// Option configures calendar export.
type Option func(*options)

// WithProductID sets the PRODID of the exported calendar.
func WithProductID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.productID = id
		}
	}
}

// WithMergedInterval sets the slot length used to expand merged free/busy
// strings when a response carries no calendar events.
func WithMergedInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithClock sets the clock used for DTSTAMP.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts ...Option) *options {
	o := &options{
		productID: DefaultProductID,
		interval:  DefaultMergedInterval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FreeBusyCalendar converts an availability response into a calendar with
// one VFREEBUSY component per mailbox. emails must be the addresses the
// query was made for, in the same order. Mailboxes whose response failed
// are skipped.
func FreeBusyCalendar(resp *directory.AvailabilityResponse, emails []string, window directory.TimeWindow, opts ...Option) (*ical.Calendar, error) {
	if resp == nil {
		return nil, directory.ErrNilResponse
	}
	if len(resp.FreeBusyResponses) != len(emails) {
		return nil, fmt.Errorf("%w: %d responses for %d addresses", ErrResponseMismatch, len(resp.FreeBusyResponses), len(emails))
	}
	o := newOptions(opts...)
	stamp := o.now()

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, o.productID)

	for i, fb := range resp.FreeBusyResponses {
		if !fb.Succeeded() {
			continue
		}
		comp := ical.NewComponent(ical.CompFreeBusy)
		comp.Props.SetText(ical.PropUID, uuid.NewString())
		comp.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		comp.Props.SetDateTime(ical.PropDateTimeStart, window.StartTime.UTC())
		comp.Props.SetDateTime(ical.PropDateTimeEnd, window.EndTime.UTC())

		attendee := ical.NewProp(ical.PropAttendee)
		attendee.Value = "mailto:" + emails[i]
		comp.Props.Add(attendee)

		for _, p := range busyPeriods(fb.View, window, o.interval) {
			comp.Props.Add(p)
		}
		cal.Children = append(cal.Children, comp)
	}
	return cal, nil
}

// WriteFreeBusy encodes the FreeBusyCalendar of resp to w.
func WriteFreeBusy(w io.Writer, resp *directory.AvailabilityResponse, emails []string, window directory.TimeWindow, opts ...Option) error {
	cal, err := FreeBusyCalendar(resp, emails, window, opts...)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("export: encode calendar: %w", err)
	}
	return nil
}

// busyPeriods returns one FREEBUSY property per occupied period. Calendar
// events are preferred; the merged string is used when there are none.
func busyPeriods(view directory.FreeBusyViewResult, window directory.TimeWindow, interval time.Duration) []*ical.Prop {
	var props []*ical.Prop
	if len(view.CalendarEvents) > 0 {
		for _, ev := range view.CalendarEvents {
			if p := periodProp(ev.BusyType, ev.StartTime, ev.EndTime); p != nil {
				props = append(props, p)
			}
		}
		return props
	}

	for i := 0; i < len(view.MergedFreeBusy); {
		bt, ok := mergedTypes[view.MergedFreeBusy[i]]
		if !ok {
			i++
			continue
		}
		j := i + 1
		for j < len(view.MergedFreeBusy) && view.MergedFreeBusy[j] == view.MergedFreeBusy[i] {
			j++
		}
		start := window.StartTime.Add(time.Duration(i) * interval)
		end := window.StartTime.Add(time.Duration(j) * interval)
		if end.After(window.EndTime) {
			end = window.EndTime
		}
		props = append(props, periodProp(bt, start, end))
		i = j
	}
	return props
}

func periodProp(bt directory.BusyType, start, end time.Time) *ical.Prop {
	fbType, ok := fbTypes[bt]
	if !ok {
		return nil
	}
	p := ical.NewProp(propFreeBusy)
	p.Params.Set(paramFBType, fbType)
	p.Value = start.UTC().Format(periodLayout) + "/" + end.UTC().Format(periodLayout)
	return p
}
