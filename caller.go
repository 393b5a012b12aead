package directory

import "context"

// Caller performs the remote calls against the directory/calendar service.
// It owns the session, authentication, serialization and transport retries.
// Implementations must be safe for concurrent use if the Service is shared.
type Caller interface {
	// ResolveNames asks the service to resolve a free-text query.
	ResolveNames(ctx context.Context, query string) (*ResolveNamesResponse, error)

	// GetUserAvailability asks the service for free/busy data.
	GetUserAvailability(ctx context.Context, args *AvailabilityArgs) (*AvailabilityResponse, error)
}

// ContactSearcher resolves free-text queries into mailbox candidates.
type ContactSearcher interface {
	// ResolveNames returns the classified outcome of a resolve call.
	ResolveNames(ctx context.Context, query string) Outcome[[]Candidate]
	// SearchContacts returns the candidates for query. Benign "no results"
	// and "multiple results" responses are not errors.
	SearchContacts(ctx context.Context, query string) ([]Candidate, error)
}

// AvailabilityReader retrieves free/busy availability.
type AvailabilityReader interface {
	GetUserAvailability(ctx context.Context, emails []string, opts AvailabilityOptions) (*AvailabilityResponse, error)
}

// Directory is the full surface exposed by the Service.
//
// Composed of:
//   - ContactSearcher: name resolution (ResolveNames, SearchContacts)
//   - AvailabilityReader: free/busy queries (GetUserAvailability)
type Directory interface {
	ContactSearcher
	AvailabilityReader
}
