package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rbaliyan/directory"
)

func seeded() *Directory {
	d := New()
	d.Add(
		Entry{
			Mailbox: directory.Mailbox{Name: "Alice Smith", EmailAddress: "alice@example.com", RoutingType: "SMTP", MailboxType: "Mailbox"},
			Contact: &directory.Contact{DisplayName: "Alice Smith", GivenName: "Alice", Surname: "Smith", PhoneNumbers: []string{"+1 555 0100"}},
		},
		Entry{Mailbox: directory.Mailbox{Name: "Bob Jones", EmailAddress: "bob@example.com", RoutingType: "SMTP", MailboxType: "Mailbox"}},
		Entry{Mailbox: directory.Mailbox{Name: "Engineering", MailboxType: "PublicDL"}, Group: true},
	)
	return d
}

var day = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func window(hours int) directory.TimeWindow {
	return directory.TimeWindow{StartTime: day, EndTime: day.Add(time.Duration(hours) * time.Hour)}
}

func availabilityArgs(view directory.FreeBusyView, w directory.TimeWindow, emails ...string) *directory.AvailabilityArgs {
	args, err := directory.BuildAvailabilityArgs(emails, directory.AvailabilityOptions{
		StartTime:     w.StartTime,
		EndTime:       w.EndTime,
		RequestedView: view,
	})
	if err != nil {
		panic(err)
	}
	return args
}

func TestResolveNames(t *testing.T) {
	ctx := context.Background()

	t.Run("single match succeeds", func(t *testing.T) {
		d := seeded()
		resp, err := d.ResolveNames(ctx, "ALICE")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Class != directory.ClassSuccess || len(resp.ResolutionSet) != 1 {
			t.Fatalf("unexpected response: %+v", resp)
		}
		c := resp.ResolutionSet[0]
		if c.Mailbox().EmailAddress != "alice@example.com" || c.Contact().Surname != "Smith" {
			t.Errorf("unexpected candidate: %+v", c)
		}
	})

	t.Run("matches on address", func(t *testing.T) {
		resp, _ := seeded().ResolveNames(ctx, "bob@")
		if resp.Class != directory.ClassSuccess {
			t.Errorf("expected success, got %s", resp.Class)
		}
	})

	t.Run("several matches warn", func(t *testing.T) {
		resp, _ := seeded().ResolveNames(ctx, "e")
		if resp.Class != directory.ClassWarning || resp.Code != directory.CodeNameResolutionMultipleResults {
			t.Fatalf("unexpected envelope: %+v", resp.Envelope)
		}
		if len(resp.ResolutionSet) != 3 {
			t.Fatalf("expected 3 candidates, got %d", len(resp.ResolutionSet))
		}
		if resp.ResolutionSet[2].Mailbox() != nil {
			t.Error("expected group candidate without mailbox")
		}
		if resp.ResolutionSet[2].Contact().DisplayName != "Engineering" {
			t.Errorf("unexpected group contact: %+v", resp.ResolutionSet[2].Contact())
		}
	})

	t.Run("no match errors with no results", func(t *testing.T) {
		for _, q := range []string{"zed", "", "   "} {
			resp, _ := seeded().ResolveNames(ctx, q)
			if resp.Class != directory.ClassError || resp.Code != directory.CodeNameResolutionNoResults {
				t.Errorf("query %q: unexpected envelope %+v", q, resp.Envelope)
			}
		}
	})

	t.Run("candidates are copies", func(t *testing.T) {
		d := seeded()
		resp, _ := d.ResolveNames(ctx, "alice")
		resp.ResolutionSet[0].Mailbox().EmailAddress = "mallory@example.com"
		resp.ResolutionSet[0].Contact().PhoneNumbers[0] = "0"

		again, _ := d.ResolveNames(ctx, "alice")
		if again.ResolutionSet[0].Mailbox().EmailAddress != "alice@example.com" {
			t.Error("expected stored mailbox untouched")
		}
		if again.ResolutionSet[0].Contact().PhoneNumbers[0] != "+1 555 0100" {
			t.Error("expected stored contact untouched")
		}
	})

	t.Run("injected failure", func(t *testing.T) {
		d := seeded()
		d.FailWith("ErrorServerBusy", "try later")
		resp, _ := d.ResolveNames(ctx, "alice")
		if resp.Class != directory.ClassError || resp.Code != "ErrorServerBusy" {
			t.Errorf("unexpected envelope: %+v", resp.Envelope)
		}
		d.ClearFailure()
		resp, _ = d.ResolveNames(ctx, "alice")
		if resp.Class != directory.ClassSuccess {
			t.Errorf("expected success after clear, got %s", resp.Class)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := seeded().ResolveNames(cctx, "alice"); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestGetUserAvailability(t *testing.T) {
	ctx := context.Background()

	withEvents := func() *Directory {
		d := seeded()
		d.AddEvent("alice@example.com", directory.CalendarEvent{
			StartTime: day.Add(2 * time.Hour), EndTime: day.Add(3 * time.Hour), BusyType: directory.BusyTentative,
		})
		d.AddEvent("ALICE@example.com", directory.CalendarEvent{
			StartTime: day.Add(30 * time.Minute), EndTime: day.Add(90 * time.Minute), BusyType: directory.BusyBusy,
			Details: &directory.CalendarEventDetails{Subject: "Standup"},
		})
		d.AddEvent("alice@example.com", directory.CalendarEvent{
			StartTime: day.Add(-2 * time.Hour), EndTime: day.Add(-time.Hour), BusyType: directory.BusyOOF,
		})
		return d
	}

	t.Run("merged only", func(t *testing.T) {
		resp, err := withEvents().GetUserAvailability(ctx, availabilityArgs(directory.ViewMergedOnly, window(4), "alice@example.com"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		view := resp.FreeBusyResponses[0].View
		if view.MergedFreeBusy != "02201100" {
			t.Errorf("unexpected merged string %q", view.MergedFreeBusy)
		}
		if len(view.CalendarEvents) != 0 {
			t.Errorf("expected no events for merged only, got %d", len(view.CalendarEvents))
		}
	})

	t.Run("free busy returns sorted events without details", func(t *testing.T) {
		resp, _ := withEvents().GetUserAvailability(ctx, availabilityArgs(directory.ViewFreeBusy, window(4), "alice@example.com"))
		view := resp.FreeBusyResponses[0].View
		if view.MergedFreeBusy != "" {
			t.Errorf("expected no merged string, got %q", view.MergedFreeBusy)
		}
		if len(view.CalendarEvents) != 2 {
			t.Fatalf("expected 2 events in window, got %d", len(view.CalendarEvents))
		}
		if view.CalendarEvents[0].BusyType != directory.BusyBusy {
			t.Errorf("expected events sorted by start, got %+v", view.CalendarEvents)
		}
		if view.CalendarEvents[0].Details != nil {
			t.Error("expected details stripped")
		}
	})

	t.Run("detailed keeps details", func(t *testing.T) {
		d := withEvents()
		args := availabilityArgs(directory.ViewDetailedMerged, window(4), "alice@example.com")
		resp, _ := d.GetUserAvailability(ctx, args)
		view := resp.FreeBusyResponses[0].View
		if view.CalendarEvents[0].Details == nil || view.CalendarEvents[0].Details.Subject != "Standup" {
			t.Fatalf("expected details, got %+v", view.CalendarEvents[0])
		}
		if view.MergedFreeBusy == "" {
			t.Error("expected merged string")
		}

		// Returned details are a copy of the stored event.
		view.CalendarEvents[0].Details.Subject = "changed"
		resp, _ = d.GetUserAvailability(ctx, args)
		if got := resp.FreeBusyResponses[0].View.CalendarEvents[0].Details.Subject; got != "Standup" {
			t.Errorf("expected stored subject Standup, got %q", got)
		}
	})

	t.Run("per mailbox responses in order", func(t *testing.T) {
		resp, _ := withEvents().GetUserAvailability(ctx,
			availabilityArgs(directory.ViewFreeBusy, window(4), "nobody@example.com", "bob@example.com"))
		if len(resp.FreeBusyResponses) != 2 {
			t.Fatalf("expected 2 responses, got %d", len(resp.FreeBusyResponses))
		}
		if resp.FreeBusyResponses[0].Code != CodeMailRecipientNotFound {
			t.Errorf("expected recipient not found, got %+v", resp.FreeBusyResponses[0].Envelope)
		}
		if !resp.FreeBusyResponses[1].Succeeded() {
			t.Errorf("expected success for bob, got %+v", resp.FreeBusyResponses[1].Envelope)
		}
		if !resp.Succeeded() {
			t.Error("expected overall success")
		}
	})

	t.Run("partial slot rounds up", func(t *testing.T) {
		d := New(WithMergedInterval(time.Hour))
		d.Add(Entry{Mailbox: directory.Mailbox{EmailAddress: "c@example.com"}})
		w := directory.TimeWindow{StartTime: day, EndTime: day.Add(150 * time.Minute)}
		resp, _ := d.GetUserAvailability(ctx, availabilityArgs(directory.ViewMergedOnly, w, "c@example.com"))
		if got := resp.FreeBusyResponses[0].View.MergedFreeBusy; got != "000" {
			t.Errorf("expected 3 slots, got %q", got)
		}
	})

	t.Run("merged window too long", func(t *testing.T) {
		d := New(WithMergedInterval(time.Minute))
		d.Add(Entry{Mailbox: directory.Mailbox{EmailAddress: "c@example.com"}})
		w := directory.TimeWindow{StartTime: day, EndTime: day.AddDate(5, 0, 0)}

		resp, err := d.GetUserAvailability(ctx, availabilityArgs(directory.ViewMergedOnly, w, "c@example.com"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Code != CodeInvalidTimeInterval {
			t.Errorf("expected invalid interval, got %+v", resp.Envelope)
		}

		// Non-merged views build no slot string and are not limited.
		resp, _ = d.GetUserAvailability(ctx, availabilityArgs(directory.ViewFreeBusy, w, "c@example.com"))
		if !resp.Succeeded() {
			t.Errorf("expected success for free busy view, got %+v", resp.Envelope)
		}
	})

	t.Run("invalid window", func(t *testing.T) {
		w := directory.TimeWindow{StartTime: day, EndTime: day}
		resp, err := seeded().GetUserAvailability(ctx, availabilityArgs(directory.ViewFreeBusy, w, "alice@example.com"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Code != CodeInvalidTimeInterval {
			t.Errorf("expected invalid interval, got %+v", resp.Envelope)
		}
	})

	t.Run("nil args", func(t *testing.T) {
		if _, err := seeded().GetUserAvailability(ctx, nil); !errors.Is(err, ErrNilArgs) {
			t.Errorf("expected ErrNilArgs, got %v", err)
		}
	})
}

func TestCallCounters(t *testing.T) {
	ctx := context.Background()
	d := seeded()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.ResolveNames(ctx, "alice")
			_, _ = d.GetUserAvailability(ctx, availabilityArgs(directory.ViewFreeBusy, window(1), "alice@example.com"))
		}()
	}
	wg.Wait()

	if d.ResolveCalls() != 10 || d.AvailabilityCalls() != 10 {
		t.Errorf("expected 10 calls each, got %d and %d", d.ResolveCalls(), d.AvailabilityCalls())
	}
}
