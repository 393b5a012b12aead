// Package resolver turns free-text names into single recipients.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rbaliyan/directory"
)

// ErrRecipientNotFound is returned when a query matches no mailbox.
var ErrRecipientNotFound = errors.New("resolver: recipient not found")

// ErrAmbiguous is returned when a query matches more than one mailbox.
var ErrAmbiguous = errors.New("resolver: ambiguous recipient")

// Recipient is the mailbox a query resolved to.
type Recipient struct {
	// Query is the input the recipient was resolved from.
	Query string
	// Name is the display name of the mailbox.
	Name string
	// Email is the mailbox address.
	Email string
	// RoutingType is the address routing type, usually "SMTP".
	RoutingType string
	// Contact holds directory attributes when the service returned them.
	Contact *directory.Contact
}

// Resolver maps queries to recipients.
// Implementations should be safe for concurrent use.
type Resolver interface {
	// Resolve returns the single recipient matching query.
	// Returns ErrRecipientNotFound if nothing matches and an
	// *AmbiguousError if more than one mailbox matches.
	Resolve(ctx context.Context, query string) (*Recipient, error)

	// ResolveBatch resolves queries in input order. Queries that match
	// nothing, or more than one mailbox, have nil entries.
	ResolveBatch(ctx context.Context, queries []string) ([]*Recipient, error)
}

// AmbiguousError lists the mailbox candidates of a query that matched several.
type AmbiguousError struct {
	Query      string
	Candidates []directory.Candidate
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("resolver: %q matches %d mailboxes", e.Query, len(e.Candidates))
}

func (e *AmbiguousError) Unwrap() error {
	return ErrAmbiguous
}

// IsAmbiguous checks if the error is an ambiguity error and returns details.
func IsAmbiguous(err error) (*AmbiguousError, bool) {
	var ae *AmbiguousError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func fromCandidate(query string, c directory.Candidate) *Recipient {
	mb := c.Mailbox()
	r := &Recipient{
		Query:       query,
		Name:        mb.Name,
		Email:       mb.EmailAddress,
		RoutingType: mb.RoutingType,
		Contact:     c.Contact(),
	}
	if r.Name == "" && r.Contact != nil {
		r.Name = r.Contact.DisplayName
	}
	return r
}
