package directory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Service resolves names and queries availability through a Caller.
// It holds no mutable state after construction and is safe for concurrent use.
type Service struct {
	caller Caller
	logger *slog.Logger
	otel   *otelInstrumentation
}

// Ensure Service implements Directory.
var _ Directory = (*Service)(nil)

// NewService creates a directory service.
// WithCaller is required.
func NewService(opts ...Option) (*Service, error) {
	o := newOptions(opts...)

	if o.caller == nil {
		return nil, ErrCallerRequired
	}

	otelInstr, err := newOtelInstrumentation(o)
	if err != nil {
		return nil, fmt.Errorf("init otel: %w", err)
	}

	return &Service{
		caller: o.caller,
		logger: o.logger,
		otel:   otelInstr,
	}, nil
}

// ResolveNames resolves query and returns the classified outcome.
// The query is passed to the Caller unchanged, even when empty.
func (s *Service) ResolveNames(ctx context.Context, query string) Outcome[[]Candidate] {
	requestID := uuid.NewString()
	ctx, endSpan := s.otel.startSpan(ctx, "directory.ResolveNames",
		attribute.String("request_id", requestID),
		attribute.Int("query_length", len(query)),
	)
	start := time.Now()

	var out Outcome[[]Candidate]
	resp, err := s.caller.ResolveNames(ctx, query)
	if err != nil {
		out = failure[[]Candidate](fmt.Errorf("directory: resolve names: %w", err))
	} else {
		out = ClassifyResolveNames(resp)
	}

	s.otel.recordResolve(ctx, time.Since(start), out.Kind, len(out.Value))
	endSpan(out.Err,
		attribute.String("outcome", out.Kind.String()),
		attribute.Int("candidate_count", len(out.Value)),
	)
	s.logger.Debug("resolve names",
		"request_id", requestID,
		"outcome", out.Kind.String(),
		"candidates", len(out.Value),
	)
	return out
}

// SearchContacts resolves query into mailbox candidates.
//
// "No results" yields an empty slice and "multiple results" yields only the
// candidates that carry a mailbox; neither is an error. Any other non-success
// response returns a *RemoteServiceError.
func (s *Service) SearchContacts(ctx context.Context, query string) ([]Candidate, error) {
	return s.ResolveNames(ctx, query).Result()
}

// GetUserAvailability queries free/busy data for emails.
//
// opts is copied before use and never modified. Missing required options
// return a *MissingArgumentError before any remote call is made. A non-success
// response returns a *RemoteServiceError; on success the payload is returned
// as received.
func (s *Service) GetUserAvailability(ctx context.Context, emails []string, opts AvailabilityOptions) (*AvailabilityResponse, error) {
	opts = opts.clone()

	args, err := BuildAvailabilityArgs(emails, opts)
	if err != nil {
		return nil, err
	}
	args.mergeOptions(opts)

	requestID := uuid.NewString()
	ctx, endSpan := s.otel.startSpan(ctx, "directory.GetUserAvailability",
		attribute.String("request_id", requestID),
		attribute.Int("mailbox_count", len(emails)),
		attribute.String("requested_view", string(opts.RequestedView)),
	)
	start := time.Now()

	var out Outcome[*AvailabilityResponse]
	resp, err := s.caller.GetUserAvailability(ctx, args)
	if err != nil {
		out = failure[*AvailabilityResponse](fmt.Errorf("directory: get user availability: %w", err))
	} else {
		out = ClassifyAvailability(resp)
	}

	s.otel.recordAvailability(ctx, time.Since(start), len(emails), out.Err)
	endSpan(out.Err)
	s.logger.Debug("get user availability",
		"request_id", requestID,
		"mailboxes", len(emails),
		"outcome", out.Kind.String(),
	)
	return out.Result()
}

// GetUserAvailabilityMap is GetUserAvailability for callers holding a
// loosely-typed option map. See OptionsFromMap for the recognized keys.
func (s *Service) GetUserAvailabilityMap(ctx context.Context, emails []string, opts map[string]any) (*AvailabilityResponse, error) {
	o, err := OptionsFromMap(opts)
	if err != nil {
		return nil, err
	}
	return s.GetUserAvailability(ctx, emails, o)
}
