package resolver

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rbaliyan/directory"
)

// DefaultConcurrency bounds the number of in-flight lookups in ResolveBatch.
const DefaultConcurrency = 8

// Directory resolves queries through a directory.ContactSearcher.
// Safe for concurrent use.
type Directory struct {
	searcher directory.ContactSearcher
	limit    int
	limiter  *rate.Limiter
}

// Ensure Directory implements Resolver.
var _ Resolver = (*Directory)(nil)

// Option configures a Directory resolver.
type Option func(*Directory)

// WithConcurrency sets how many lookups ResolveBatch runs at once.
func WithConcurrency(n int) Option {
	return func(d *Directory) {
		if n > 0 {
			d.limit = n
		}
	}
}

// WithRateLimit caps ResolveBatch at rps lookups per second with the given burst.
// Single Resolve calls are not limited.
func WithRateLimit(rps float64, burst int) Option {
	return func(d *Directory) {
		if rps > 0 && burst > 0 {
			d.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewDirectory creates a resolver backed by s.
func NewDirectory(s directory.ContactSearcher, opts ...Option) *Directory {
	d := &Directory{searcher: s, limit: DefaultConcurrency}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Resolve returns the single mailbox matching query.
// Candidates without a mailbox, such as distribution lists, are ignored.
func (d *Directory) Resolve(ctx context.Context, query string) (*Recipient, error) {
	out := d.searcher.ResolveNames(ctx, query)
	if out.Kind == directory.OutcomeFailure {
		return nil, out.Err
	}

	var matches []directory.Candidate
	for _, c := range out.Value {
		if c.Mailbox() != nil {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRecipientNotFound, query)
	case 1:
		return fromCandidate(query, matches[0]), nil
	default:
		return nil, &AmbiguousError{Query: query, Candidates: matches}
	}
}

// ResolveBatch resolves queries concurrently and returns results in input order.
// Unresolved and ambiguous queries have nil entries. The first remote or
// transport error cancels the remaining lookups and is returned.
func (d *Directory) ResolveBatch(ctx context.Context, queries []string) ([]*Recipient, error) {
	result := make([]*Recipient, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.limit)
	for i, q := range queries {
		g.Go(func() error {
			if d.limiter != nil {
				if err := d.limiter.Wait(ctx); err != nil {
					return err
				}
			}
			r, err := d.Resolve(ctx, q)
			switch {
			case err == nil:
				result[i] = r
				return nil
			case errors.Is(err, ErrRecipientNotFound), errors.Is(err, ErrAmbiguous):
				return nil
			default:
				return fmt.Errorf("resolver: resolve %q: %w", q, err)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
