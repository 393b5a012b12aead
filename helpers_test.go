package directory

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeCaller records calls and answers with canned responses.
type fakeCaller struct {
	mu sync.Mutex

	resolveResp *ResolveNamesResponse
	resolveErr  error
	availResp   *AvailabilityResponse
	availErr    error

	resolveCalls int
	availCalls   int
	lastQuery    string
	lastArgs     *AvailabilityArgs
}

func (f *fakeCaller) ResolveNames(_ context.Context, query string) (*ResolveNamesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls++
	f.lastQuery = query
	return f.resolveResp, f.resolveErr
}

func (f *fakeCaller) GetUserAvailability(_ context.Context, args *AvailabilityArgs) (*AvailabilityResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.availCalls++
	f.lastArgs = args
	return f.availResp, f.availErr
}

func (f *fakeCaller) calls() (resolve, avail int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolveCalls, f.availCalls
}

func newTestService(t *testing.T, c Caller, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(append([]Option{WithCaller(c)}, opts...)...)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func mailboxCandidate(name, email string) Candidate {
	return Candidate{Entries: []ResolutionEntry{{
		Mailbox: &Mailbox{Name: name, EmailAddress: email, RoutingType: RoutingTypeSMTP, MailboxType: "Mailbox"},
	}}}
}

func groupCandidate(name string) Candidate {
	return Candidate{Entries: []ResolutionEntry{{Contact: &Contact{DisplayName: name}}}}
}

func successResponse(set ...Candidate) *ResolveNamesResponse {
	return &ResolveNamesResponse{
		Envelope:      Envelope{Class: ClassSuccess, Code: CodeNoError},
		ResolutionSet: set,
	}
}

var zeroTime time.Time

func testWindow() (time.Time, time.Time) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return start, start.Add(8 * time.Hour)
}

func testOptions() AvailabilityOptions {
	start, end := testWindow()
	return AvailabilityOptions{
		StartTime:     start,
		EndTime:       end,
		RequestedView: ViewFreeBusy,
	}
}
