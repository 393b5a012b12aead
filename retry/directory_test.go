package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rbaliyan/directory"
	"github.com/rbaliyan/directory/memory"
)

// flakyCaller answers ErrorServerBusy for the first failures calls.
type flakyCaller struct {
	next     directory.Caller
	failures int64
	calls    atomic.Int64
}

var busy = directory.Envelope{Class: directory.ClassError, Code: "ErrorServerBusy", Message: "busy"}

func (f *flakyCaller) ResolveNames(ctx context.Context, q string) (*directory.ResolveNamesResponse, error) {
	if f.calls.Add(1) <= f.failures {
		return &directory.ResolveNamesResponse{Envelope: busy}, nil
	}
	return f.next.ResolveNames(ctx, q)
}

func (f *flakyCaller) GetUserAvailability(ctx context.Context, args *directory.AvailabilityArgs) (*directory.AvailabilityResponse, error) {
	if f.calls.Add(1) <= f.failures {
		return &directory.AvailabilityResponse{Envelope: busy}, nil
	}
	return f.next.GetUserAvailability(ctx, args)
}

func setup(t *testing.T, failures int64) (directory.Directory, *flakyCaller, *memory.Directory) {
	t.Helper()
	mem := memory.New()
	mem.Add(memory.Entry{Mailbox: directory.Mailbox{Name: "Alice", EmailAddress: "alice@example.com"}})
	fc := &flakyCaller{next: mem, failures: failures}
	svc, err := directory.NewService(directory.WithCaller(fc))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return Wrap(svc, fastConfig(3)), fc, mem
}

func availabilityOptions() directory.AvailabilityOptions {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return directory.AvailabilityOptions{
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		RequestedView: directory.ViewFreeBusy,
	}
}

func TestWrap(t *testing.T) {
	ctx := context.Background()

	t.Run("retries transient resolve failures", func(t *testing.T) {
		d, fc, _ := setup(t, 2)
		got, err := d.SearchContacts(ctx, "alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected 1 candidate, got %d", len(got))
		}
		if n := fc.calls.Load(); n != 3 {
			t.Errorf("expected 3 calls, got %d", n)
		}
	})

	t.Run("empty outcome is final", func(t *testing.T) {
		d, fc, _ := setup(t, 0)
		out := d.ResolveNames(ctx, "nobody")
		if out.Kind != directory.OutcomeEmpty {
			t.Errorf("expected empty, got %s", out.Kind)
		}
		if n := fc.calls.Load(); n != 1 {
			t.Errorf("expected 1 call, got %d", n)
		}
	})

	t.Run("permanent error returned as produced", func(t *testing.T) {
		d, fc, mem := setup(t, 0)
		mem.FailWith("ErrorAccessDenied", "denied")

		_, err := d.SearchContacts(ctx, "alice")
		var re *RetryError
		if errors.As(err, &re) {
			t.Errorf("expected unwrapped error, got %v", err)
		}
		if rse, ok := directory.IsRemoteServiceError(err); !ok || rse.Code != "ErrorAccessDenied" {
			t.Errorf("expected ErrorAccessDenied, got %v", err)
		}
		if n := fc.calls.Load(); n != 1 {
			t.Errorf("expected 1 call, got %d", n)
		}
	})

	t.Run("exhausted retries", func(t *testing.T) {
		d, fc, _ := setup(t, 100)
		out := d.ResolveNames(ctx, "alice")
		if out.Kind != directory.OutcomeFailure {
			t.Fatalf("expected failure, got %s", out.Kind)
		}
		if !errors.Is(out.Err, ErrMaxRetries) {
			t.Errorf("expected ErrMaxRetries, got %v", out.Err)
		}
		if _, ok := directory.IsRemoteServiceError(out.Err); !ok {
			t.Errorf("expected cause to be remote error, got %v", out.Err)
		}
		if n := fc.calls.Load(); n != 4 {
			t.Errorf("expected 4 calls, got %d", n)
		}
	})

	t.Run("retries availability", func(t *testing.T) {
		d, fc, _ := setup(t, 1)
		resp, err := d.GetUserAvailability(ctx, []string{"alice@example.com"}, availabilityOptions())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(resp.FreeBusyResponses) != 1 {
			t.Errorf("expected 1 response, got %d", len(resp.FreeBusyResponses))
		}
		if n := fc.calls.Load(); n != 2 {
			t.Errorf("expected 2 calls, got %d", n)
		}
	})

	t.Run("missing argument is not retried", func(t *testing.T) {
		d, fc, _ := setup(t, 0)
		opts := availabilityOptions()
		opts.RequestedView = ""
		_, err := d.GetUserAvailability(ctx, []string{"alice@example.com"}, opts)
		if _, ok := directory.IsMissingArgument(err); !ok {
			t.Errorf("expected MissingArgumentError, got %v", err)
		}
		if n := fc.calls.Load(); n != 0 {
			t.Errorf("expected no calls, got %d", n)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		d, _, _ := setup(t, 0)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		out := d.ResolveNames(cctx, "alice")
		if out.Kind != directory.OutcomeFailure || !errors.Is(out.Err, context.Canceled) {
			t.Errorf("expected canceled failure, got %s %v", out.Kind, out.Err)
		}
	})
}
