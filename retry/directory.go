package retry

import (
	"context"
	"errors"

	"github.com/rbaliyan/directory"
)

// Wrap returns a Directory that retries transient failures of d.
//
// Only failures are retried: empty and partial resolutions are final.
// Permanent errors are returned unwrapped, exactly as d produced them;
// exhausted or canceled retries return a *RetryError whose Cause is the
// last failure.
func Wrap(d directory.Directory, cfg Config) directory.Directory {
	return &retrying{next: d, cfg: cfg}
}

type retrying struct {
	next directory.Directory
	cfg  Config
}

func (r *retrying) ResolveNames(ctx context.Context, query string) directory.Outcome[[]directory.Candidate] {
	var out directory.Outcome[[]directory.Candidate]
	err := Do(ctx, r.cfg, func(ctx context.Context) error {
		out = r.next.ResolveNames(ctx, query)
		return out.Err
	})
	if err != nil {
		return directory.Outcome[[]directory.Candidate]{Kind: directory.OutcomeFailure, Err: unwrapPermanent(err)}
	}
	return out
}

func (r *retrying) SearchContacts(ctx context.Context, query string) ([]directory.Candidate, error) {
	return r.ResolveNames(ctx, query).Result()
}

func (r *retrying) GetUserAvailability(ctx context.Context, emails []string, opts directory.AvailabilityOptions) (*directory.AvailabilityResponse, error) {
	resp, err := DoWithResult(ctx, r.cfg, func(ctx context.Context) (*directory.AvailabilityResponse, error) {
		return r.next.GetUserAvailability(ctx, emails, opts)
	})
	if err != nil {
		return nil, unwrapPermanent(err)
	}
	return resp, nil
}

func unwrapPermanent(err error) error {
	var re *RetryError
	if errors.As(err, &re) && errors.Is(re.Err, ErrNotRetryable) {
		return re.Cause
	}
	return err
}
