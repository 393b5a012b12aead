// Package memory provides an in-memory directory.Caller for testing and local development.
// It answers with the same response classes and codes as a real directory service.
package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rbaliyan/directory"
)

// Codes returned by the in-memory directory besides the name-resolution codes.
const (
	CodeMailRecipientNotFound = "ErrorMailRecipientNotFound"
	CodeInvalidTimeInterval   = "ErrorInvalidTimeInterval"
)

// DefaultMergedInterval is the slot length of merged free/busy strings.
const DefaultMergedInterval = 30 * time.Minute

// MaxMergedSlots bounds the length of a merged free/busy string. Merged
// queries whose window needs more slots answer ErrorInvalidTimeInterval.
const MaxMergedSlots = 42 * 24 * 4

// ErrNilArgs is returned when GetUserAvailability receives nil arguments.
var ErrNilArgs = errors.New("memory: nil availability args")

// Entry is one directory object.
type Entry struct {
	Mailbox directory.Mailbox
	Contact *directory.Contact
	// Group marks a distribution list. Groups resolve without a mailbox
	// entry and have no calendar.
	Group bool
}

// Directory implements directory.Caller with in-memory data.
// Thread-safe for concurrent use. Not suitable for production.
type Directory struct {
	mu       sync.RWMutex
	entries  []Entry
	events   map[string][]directory.CalendarEvent // keyed by lowercase address
	failure  *directory.Envelope
	interval time.Duration

	resolveCalls      atomic.Int64
	availabilityCalls atomic.Int64
}

// Ensure Directory implements directory.Caller.
var _ directory.Caller = (*Directory)(nil)

// Option configures an in-memory Directory.
type Option func(*Directory)

// WithMergedInterval sets the slot length used for merged free/busy strings.
func WithMergedInterval(d time.Duration) Option {
	return func(m *Directory) {
		if d > 0 {
			m.interval = d
		}
	}
}

// New creates an empty in-memory directory.
func New(opts ...Option) *Directory {
	d := &Directory{
		events:   make(map[string][]directory.CalendarEvent),
		interval: DefaultMergedInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Add registers directory entries.
func (d *Directory) Add(entries ...Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, entries...)
}

// AddEvent records a calendar event for the mailbox at address.
func (d *Directory) AddEvent(address string, ev directory.CalendarEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := strings.ToLower(address)
	d.events[key] = append(d.events[key], ev)
}

// FailWith makes every following call answer with ClassError and the given code.
func (d *Directory) FailWith(code, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failure = &directory.Envelope{Class: directory.ClassError, Code: code, Message: message}
}

// ClearFailure undoes FailWith.
func (d *Directory) ClearFailure() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failure = nil
}

// ResolveCalls returns how many ResolveNames calls were received.
func (d *Directory) ResolveCalls() int64 {
	return d.resolveCalls.Load()
}

// AvailabilityCalls returns how many GetUserAvailability calls were received.
func (d *Directory) AvailabilityCalls() int64 {
	return d.availabilityCalls.Load()
}

// ResolveNames matches query case-insensitively against names and addresses.
// One match answers Success, several answer Warning with
// ErrorNameResolutionMultipleResults, none answers Error with
// ErrorNameResolutionNoResults.
func (d *Directory) ResolveNames(ctx context.Context, query string) (*directory.ResolveNamesResponse, error) {
	d.resolveCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.failure != nil {
		return &directory.ResolveNamesResponse{Envelope: *d.failure}, nil
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var set []directory.Candidate
	if q != "" {
		for _, e := range d.entries {
			if e.matches(q) {
				set = append(set, e.candidate())
			}
		}
	}

	switch len(set) {
	case 0:
		return &directory.ResolveNamesResponse{Envelope: directory.Envelope{
			Class:   directory.ClassError,
			Code:    directory.CodeNameResolutionNoResults,
			Message: "No results were found.",
		}}, nil
	case 1:
		return &directory.ResolveNamesResponse{
			Envelope:      directory.Envelope{Class: directory.ClassSuccess, Code: directory.CodeNoError},
			ResolutionSet: set,
		}, nil
	default:
		return &directory.ResolveNamesResponse{
			Envelope: directory.Envelope{
				Class:   directory.ClassWarning,
				Code:    directory.CodeNameResolutionMultipleResults,
				Message: "Multiple results were found.",
			},
			ResolutionSet: set,
		}, nil
	}
}

func (e Entry) matches(q string) bool {
	if strings.Contains(strings.ToLower(e.Mailbox.Name), q) ||
		strings.Contains(strings.ToLower(e.Mailbox.EmailAddress), q) {
		return true
	}
	return e.Contact != nil && strings.Contains(strings.ToLower(e.Contact.DisplayName), q)
}

// candidate returns a copy so callers cannot reach the stored entry.
func (e Entry) candidate() directory.Candidate {
	var contact *directory.Contact
	if e.Contact != nil {
		c := *e.Contact
		c.EmailAddresses = slices.Clone(e.Contact.EmailAddresses)
		c.PhoneNumbers = slices.Clone(e.Contact.PhoneNumbers)
		contact = &c
	}
	if e.Group {
		if contact == nil {
			contact = &directory.Contact{DisplayName: e.Mailbox.Name}
		}
		return directory.Candidate{Entries: []directory.ResolutionEntry{{Contact: contact}}}
	}
	mb := e.Mailbox
	return directory.Candidate{Entries: []directory.ResolutionEntry{{Mailbox: &mb, Contact: contact}}}
}

// GetUserAvailability returns free/busy data for each requested mailbox,
// in request order. Unknown addresses get a per-mailbox error response.
func (d *Directory) GetUserAvailability(ctx context.Context, args *directory.AvailabilityArgs) (*directory.AvailabilityResponse, error) {
	d.availabilityCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if args == nil {
		return nil, ErrNilArgs
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.failure != nil {
		return &directory.AvailabilityResponse{Envelope: *d.failure}, nil
	}

	window := args.FreeBusyViewOptions.TimeWindow
	if !window.EndTime.After(window.StartTime) {
		return &directory.AvailabilityResponse{Envelope: directory.Envelope{
			Class:   directory.ClassError,
			Code:    CodeInvalidTimeInterval,
			Message: "The end time must be after the start time.",
		}}, nil
	}
	view := args.FreeBusyViewOptions.RequestedView.RequestedFreeBusyView
	if view.Merged() && slotCount(window, d.interval) > MaxMergedSlots {
		return &directory.AvailabilityResponse{Envelope: directory.Envelope{
			Class:   directory.ClassError,
			Code:    CodeInvalidTimeInterval,
			Message: "The time window is too long for the merged free/busy interval.",
		}}, nil
	}

	resp := &directory.AvailabilityResponse{
		Envelope:          directory.Envelope{Class: directory.ClassSuccess, Code: directory.CodeNoError},
		FreeBusyResponses: make([]directory.FreeBusyResponse, 0, len(args.MailboxData)),
	}
	for _, md := range args.MailboxData {
		resp.FreeBusyResponses = append(resp.FreeBusyResponses, d.freeBusy(md.Email.Address, window, view))
	}
	return resp, nil
}

func (d *Directory) freeBusy(address string, window directory.TimeWindow, view directory.FreeBusyView) directory.FreeBusyResponse {
	if !d.hasMailbox(address) {
		return directory.FreeBusyResponse{Envelope: directory.Envelope{
			Class:   directory.ClassError,
			Code:    CodeMailRecipientNotFound,
			Message: "No mailbox with address " + address + " exists.",
		}}
	}

	var events []directory.CalendarEvent
	for _, ev := range d.events[strings.ToLower(address)] {
		if ev.StartTime.Before(window.EndTime) && ev.EndTime.After(window.StartTime) {
			switch {
			case !view.Detailed():
				ev.Details = nil
			case ev.Details != nil:
				dd := *ev.Details
				ev.Details = &dd
			}
			events = append(events, ev)
		}
	}
	slices.SortFunc(events, func(a, b directory.CalendarEvent) int {
		return a.StartTime.Compare(b.StartTime)
	})

	result := directory.FreeBusyViewResult{ViewType: view}
	if view.Merged() {
		result.MergedFreeBusy = mergedFreeBusy(events, window, d.interval)
	}
	if view != directory.ViewMergedOnly {
		result.CalendarEvents = events
	}
	return directory.FreeBusyResponse{
		Envelope: directory.Envelope{Class: directory.ClassSuccess, Code: directory.CodeNoError},
		View:     result,
	}
}

func (d *Directory) hasMailbox(address string) bool {
	for _, e := range d.entries {
		if !e.Group && strings.EqualFold(e.Mailbox.EmailAddress, address) {
			return true
		}
	}
	return false
}

var busyLevel = map[directory.BusyType]byte{
	directory.BusyFree:      '0',
	directory.BusyTentative: '1',
	directory.BusyBusy:      '2',
	directory.BusyOOF:       '3',
	directory.BusyNoData:    '4',
}

// mergedFreeBusy renders one digit per interval; overlapping events keep the
// highest level in the slot.
func mergedFreeBusy(events []directory.CalendarEvent, window directory.TimeWindow, interval time.Duration) string {
	out := make([]byte, slotCount(window, interval))
	for i := range out {
		out[i] = '0'
	}
	for i := range out {
		slotStart := window.StartTime.Add(time.Duration(i) * interval)
		slotEnd := slotStart.Add(interval)
		for _, ev := range events {
			if ev.StartTime.Before(slotEnd) && ev.EndTime.After(slotStart) {
				if lvl, ok := busyLevel[ev.BusyType]; ok && lvl > out[i] {
					out[i] = lvl
				}
			}
		}
	}
	return string(out)
}

// slotCount rounds a trailing partial interval up to a whole slot.
func slotCount(window directory.TimeWindow, interval time.Duration) int64 {
	span := window.EndTime.Sub(window.StartTime)
	n := int64(span / interval)
	if span%interval != 0 {
		n++
	}
	return n
}
