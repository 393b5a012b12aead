package resolver

import (
	"context"
	"fmt"
	"strings"
)

// Static is a map-based Resolver for testing and simple deployments.
// Queries are matched case-insensitively against the map keys.
// Safe for concurrent use (read-only after creation).
type Static struct {
	recipients map[string]*Recipient
}

// Ensure Static implements Resolver.
var _ Resolver = (*Static)(nil)

// NewStatic creates a Static resolver from a map of query to Recipient.
// The map is copied to prevent external mutation.
func NewStatic(recipients map[string]*Recipient) *Static {
	m := make(map[string]*Recipient, len(recipients))
	for k, v := range recipients {
		m[strings.ToLower(k)] = v
	}
	return &Static{recipients: m}
}

// Resolve returns the recipient registered for query.
func (s *Static) Resolve(_ context.Context, query string) (*Recipient, error) {
	r, ok := s.recipients[strings.ToLower(query)]
	if !ok || r == nil {
		return nil, fmt.Errorf("%w: %s", ErrRecipientNotFound, query)
	}
	return r, nil
}

// ResolveBatch returns the recipients for queries in input order.
// Unknown queries have nil entries in the returned slice.
func (s *Static) ResolveBatch(_ context.Context, queries []string) ([]*Recipient, error) {
	result := make([]*Recipient, len(queries))
	for i, q := range queries {
		result[i] = s.recipients[strings.ToLower(q)]
	}
	return result, nil
}
