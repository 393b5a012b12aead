package directory

import "time"

// ResponseClass is the status flag carried by every remote response.
type ResponseClass string

// Response classes reported by the remote service.
const (
	ClassSuccess ResponseClass = "Success"
	ClassWarning ResponseClass = "Warning"
	ClassError   ResponseClass = "Error"
)

// Response codes with special meaning during name resolution.
const (
	CodeNoError                       = "NoError"
	CodeNameResolutionMultipleResults = "ErrorNameResolutionMultipleResults"
	CodeNameResolutionNoResults       = "ErrorNameResolutionNoResults"
)

// Envelope is the status part of a remote response.
// Only ClassSuccess counts as success; every other class is inspected by code.
type Envelope struct {
	Class   ResponseClass `json:"response_class"`
	Code    string        `json:"response_code,omitempty"`
	Message string        `json:"message_text,omitempty"`
}

// Succeeded reports whether the envelope carries ClassSuccess.
func (e Envelope) Succeeded() bool {
	return e.Class == ClassSuccess
}

// Mailbox identifies a single mailbox in the directory.
type Mailbox struct {
	Name         string `json:"name,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
	RoutingType  string `json:"routing_type,omitempty"`
	// MailboxType is the directory kind, e.g. "Mailbox", "PublicDL", "Contact".
	MailboxType string `json:"mailbox_type,omitempty"`
}

// Contact carries the directory attributes returned alongside a mailbox.
type Contact struct {
	DisplayName    string   `json:"display_name,omitempty"`
	GivenName      string   `json:"given_name,omitempty"`
	Surname        string   `json:"surname,omitempty"`
	CompanyName    string   `json:"company_name,omitempty"`
	Department     string   `json:"department,omitempty"`
	JobTitle       string   `json:"job_title,omitempty"`
	EmailAddresses []string `json:"email_addresses,omitempty"`
	PhoneNumbers   []string `json:"phone_numbers,omitempty"`
}

// ResolutionEntry is one element of a candidate's resolution.
// Either field may be nil; distribution-list placeholders carry no mailbox.
type ResolutionEntry struct {
	Mailbox *Mailbox `json:"mailbox,omitempty"`
	Contact *Contact `json:"contact,omitempty"`
}

// Candidate is one element of a name-resolution result set.
type Candidate struct {
	Entries []ResolutionEntry `json:"resolution"`
}

// Mailbox returns the mailbox of the first resolution entry, or nil.
func (c Candidate) Mailbox() *Mailbox {
	if len(c.Entries) == 0 {
		return nil
	}
	return c.Entries[0].Mailbox
}

// Contact returns the first contact record found in the resolution, or nil.
func (c Candidate) Contact() *Contact {
	for _, e := range c.Entries {
		if e.Contact != nil {
			return e.Contact
		}
	}
	return nil
}

// ResolveNamesResponse is what the remote service returns for a resolve call.
type ResolveNamesResponse struct {
	Envelope
	ResolutionSet []Candidate `json:"resolution_set,omitempty"`
}

// BusyType describes how a calendar slot is occupied.
type BusyType string

// Busy types reported in free/busy data.
const (
	BusyFree      BusyType = "Free"
	BusyTentative BusyType = "Tentative"
	BusyBusy      BusyType = "Busy"
	BusyOOF       BusyType = "OOF"
	BusyNoData    BusyType = "NoData"
)

// CalendarEvent is one occupied window in a free/busy view.
type CalendarEvent struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	BusyType  BusyType  `json:"busy_type"`
	// Details is populated only for the detailed views.
	Details *CalendarEventDetails `json:"calendar_event_details,omitempty"`
}

// CalendarEventDetails holds the optional per-event detail of detailed views.
type CalendarEventDetails struct {
	Subject     string `json:"subject,omitempty"`
	Location    string `json:"location,omitempty"`
	IsMeeting   bool   `json:"is_meeting,omitempty"`
	IsRecurring bool   `json:"is_recurring,omitempty"`
	IsPrivate   bool   `json:"is_private,omitempty"`
}

// FreeBusyViewResult is the free/busy data for one mailbox.
type FreeBusyViewResult struct {
	ViewType FreeBusyView `json:"free_busy_view_type"`
	// MergedFreeBusy is one digit per interval: 0 free, 1 tentative, 2 busy, 3 OOF, 4 no data.
	MergedFreeBusy string          `json:"merged_free_busy,omitempty"`
	CalendarEvents []CalendarEvent `json:"calendar_event_array,omitempty"`
}

// FreeBusyResponse pairs a per-mailbox status with its view.
type FreeBusyResponse struct {
	Envelope
	View FreeBusyViewResult `json:"free_busy_view"`
}

// AvailabilityResponse is what the remote service returns for an availability query.
// FreeBusyResponses follow the order of the requested mailboxes.
type AvailabilityResponse struct {
	Envelope
	FreeBusyResponses []FreeBusyResponse `json:"free_busy_response_array,omitempty"`
}
