package directory

import (
	"maps"
	"strings"
	"time"
)

// Option keys recognized in availability option maps and used in the wire form.
const (
	OptStartTime     = "start_time"
	OptEndTime       = "end_time"
	OptRequestedView = "requested_view"
	OptRoutingType   = "routing_type"
	OptTimeZone      = "time_zone"
)

// Wire keys of the assembled availability arguments.
const (
	keyMailboxData           = "mailbox_data"
	keyEmail                 = "email"
	keyAddress               = "address"
	keyFreeBusyViewOptions   = "free_busy_view_options"
	keyTimeWindow            = "time_window"
	keyRequestedFreeBusyView = "requested_free_busy_view"
)

// Routing types understood by the directory.
const (
	RoutingTypeSMTP = "SMTP"
	RoutingTypeEX   = "EX"
)

// FreeBusyView selects the granularity of a free/busy response.
type FreeBusyView string

// Requested views, in wire spelling.
const (
	ViewMergedOnly     FreeBusyView = "MergedOnly"
	ViewFreeBusy       FreeBusyView = "FreeBusy"
	ViewFreeBusyMerged FreeBusyView = "FreeBusyMerged"
	ViewDetailed       FreeBusyView = "Detailed"
	ViewDetailedMerged FreeBusyView = "DetailedMerged"
)

var freeBusyViews = map[string]FreeBusyView{
	"mergedonly":     ViewMergedOnly,
	"freebusy":       ViewFreeBusy,
	"freebusymerged": ViewFreeBusyMerged,
	"detailed":       ViewDetailed,
	"detailedmerged": ViewDetailedMerged,
}

// ParseFreeBusyView accepts the wire spelling ("FreeBusyMerged") or the
// snake_case spelling ("free_busy_merged"), case-insensitively.
func ParseFreeBusyView(s string) (FreeBusyView, bool) {
	key := strings.ToLower(strings.ReplaceAll(s, "_", ""))
	v, ok := freeBusyViews[key]
	return v, ok
}

// Merged reports whether the view includes a merged free/busy string.
func (v FreeBusyView) Merged() bool {
	switch v {
	case ViewMergedOnly, ViewFreeBusyMerged, ViewDetailedMerged:
		return true
	}
	return false
}

// Detailed reports whether the view includes calendar event details.
func (v FreeBusyView) Detailed() bool {
	return v == ViewDetailed || v == ViewDetailedMerged
}

// AvailabilityOptions configures an availability query.
//
// StartTime, EndTime and RequestedView are required; a zero time or an empty
// view counts as absent. RoutingType, when set, is applied to every address.
// TimeZone and Extra are passed through to the wire arguments untouched.
type AvailabilityOptions struct {
	StartTime     time.Time
	EndTime       time.Time
	RequestedView FreeBusyView
	RoutingType   string
	TimeZone      *TimeZone
	// Extra holds caller keys with no dedicated field. Keys the builder
	// defines always take precedence over entries here: "mailbox_data",
	// "free_busy_view_options" and "time_zone" are ignored. A time zone
	// must be set through TimeZone.
	Extra map[string]any
}

// clone returns a copy that shares no mutable state with o.
func (o AvailabilityOptions) clone() AvailabilityOptions {
	c := o
	c.TimeZone = o.TimeZone.Clone()
	if o.Extra != nil {
		c.Extra = maps.Clone(o.Extra)
	}
	return c
}

// missing returns the required option keys that are absent, in canonical order.
func (o AvailabilityOptions) missing() []string {
	var out []string
	if o.StartTime.IsZero() {
		out = append(out, OptStartTime)
	}
	if o.EndTime.IsZero() {
		out = append(out, OptEndTime)
	}
	if o.RequestedView == "" {
		out = append(out, OptRequestedView)
	}
	return out
}

// EmailAddress is the per-mailbox address in availability arguments.
type EmailAddress struct {
	Address     string `json:"address"`
	RoutingType string `json:"routing_type,omitempty"`
}

// MailboxData is one mailbox entry of the availability arguments.
type MailboxData struct {
	Email EmailAddress `json:"email"`
}

// TimeWindow is the queried time range, copied verbatim from the options.
type TimeWindow struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// RequestedView wraps the requested free/busy view.
type RequestedView struct {
	RequestedFreeBusyView FreeBusyView `json:"requested_free_busy_view"`
}

// FreeBusyViewOptions is the time window and view block of the arguments.
type FreeBusyViewOptions struct {
	TimeWindow    TimeWindow    `json:"time_window"`
	RequestedView RequestedView `json:"requested_view"`
}

// AvailabilityArgs is the assembled argument structure handed to the Caller.
// It is built fresh per call and not modified after it is handed over.
type AvailabilityArgs struct {
	MailboxData         []MailboxData       `json:"mailbox_data"`
	FreeBusyViewOptions FreeBusyViewOptions `json:"free_busy_view_options"`
	TimeZone            *TimeZone           `json:"time_zone,omitempty"`
	Extra               map[string]any      `json:"-"`
}

// BuildAvailabilityArgs constructs the wire arguments for emails.
//
// One MailboxData entry is emitted per address, in input order, duplicates
// included. The time window and view are copied unchanged. TimeZone and
// Extra are left unset; opts is not modified.
func BuildAvailabilityArgs(emails []string, opts AvailabilityOptions) (*AvailabilityArgs, error) {
	if missing := opts.missing(); len(missing) > 0 {
		return nil, &MissingArgumentError{Missing: missing}
	}

	data := make([]MailboxData, 0, len(emails))
	for _, e := range emails {
		data = append(data, MailboxData{
			Email: EmailAddress{Address: e, RoutingType: opts.RoutingType},
		})
	}

	return &AvailabilityArgs{
		MailboxData: data,
		FreeBusyViewOptions: FreeBusyViewOptions{
			TimeWindow: TimeWindow{
				StartTime: opts.StartTime,
				EndTime:   opts.EndTime,
			},
			RequestedView: RequestedView{RequestedFreeBusyView: opts.RequestedView},
		},
	}, nil
}

// mergeOptions lays the remaining caller options under the built arguments.
// Fields the builder set are kept; time zone and extra keys pass through.
func (a *AvailabilityArgs) mergeOptions(opts AvailabilityOptions) {
	a.TimeZone = opts.TimeZone
	if len(opts.Extra) == 0 {
		return
	}
	a.Extra = make(map[string]any, len(opts.Extra))
	for k, v := range opts.Extra {
		switch k {
		case keyMailboxData, keyFreeBusyViewOptions, OptTimeZone:
			continue
		}
		a.Extra[k] = v
	}
}

// Map renders the arguments in their nested-map wire form.
// Extra entries are copied first so builder keys override them.
func (a *AvailabilityArgs) Map() map[string]any {
	m := make(map[string]any, len(a.Extra)+3)
	for k, v := range a.Extra {
		m[k] = v
	}

	mailboxes := make([]any, 0, len(a.MailboxData))
	for _, d := range a.MailboxData {
		email := map[string]any{keyAddress: d.Email.Address}
		if d.Email.RoutingType != "" {
			email[OptRoutingType] = d.Email.RoutingType
		}
		mailboxes = append(mailboxes, map[string]any{keyEmail: email})
	}
	m[keyMailboxData] = mailboxes

	view := a.FreeBusyViewOptions
	m[keyFreeBusyViewOptions] = map[string]any{
		keyTimeWindow: map[string]any{
			OptStartTime: view.TimeWindow.StartTime,
			OptEndTime:   view.TimeWindow.EndTime,
		},
		OptRequestedView: map[string]any{
			keyRequestedFreeBusyView: view.RequestedView.RequestedFreeBusyView,
		},
	}

	if a.TimeZone != nil {
		m[OptTimeZone] = a.TimeZone.Map()
	}
	return m
}

// Addresses returns the requested addresses in order.
func (a *AvailabilityArgs) Addresses() []string {
	out := make([]string, len(a.MailboxData))
	for i, d := range a.MailboxData {
		out[i] = d.Email.Address
	}
	return out
}
