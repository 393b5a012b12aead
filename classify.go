package directory

// Remote operation names used in errors, spans and logs.
const (
	opResolveNames        = "ResolveNames"
	opGetUserAvailability = "GetUserAvailability"
)

// ClassifyResolveNames maps a resolve-names response to an Outcome.
//
// Rules, in order:
//  1. ClassSuccess: every resolution-set element, unfiltered (possibly none).
//  2. CodeNameResolutionMultipleResults: only candidates whose first
//     resolution entry has a mailbox (OutcomePartial).
//  3. CodeNameResolutionNoResults: no candidates, no error (OutcomeEmpty).
//  4. Anything else: a *RemoteServiceError with the code and message.
func ClassifyResolveNames(resp *ResolveNamesResponse) Outcome[[]Candidate] {
	if resp == nil {
		return failure[[]Candidate](ErrNilResponse)
	}

	switch {
	case resp.Succeeded():
		out := make([]Candidate, len(resp.ResolutionSet))
		copy(out, resp.ResolutionSet)
		return success(out)
	case resp.Code == CodeNameResolutionMultipleResults:
		return partial(mailboxCandidates(resp.ResolutionSet))
	case resp.Code == CodeNameResolutionNoResults:
		return empty([]Candidate{})
	default:
		return failure[[]Candidate](remoteError(opResolveNames, resp.Envelope))
	}
}

// mailboxCandidates keeps candidates whose first entry carries a mailbox.
// Later entries are not consulted.
func mailboxCandidates(set []Candidate) []Candidate {
	out := make([]Candidate, 0, len(set))
	for _, c := range set {
		if c.Mailbox() != nil {
			out = append(out, c)
		}
	}
	return out
}

// ClassifyAvailability maps an availability response to an Outcome.
// Availability has no partial case: ClassSuccess returns the payload as-is,
// anything else is a *RemoteServiceError.
func ClassifyAvailability(resp *AvailabilityResponse) Outcome[*AvailabilityResponse] {
	if resp == nil {
		return failure[*AvailabilityResponse](ErrNilResponse)
	}
	if resp.Succeeded() {
		return success(resp)
	}
	return failure[*AvailabilityResponse](remoteError(opGetUserAvailability, resp.Envelope))
}

func remoteError(op string, env Envelope) *RemoteServiceError {
	return &RemoteServiceError{
		Operation: op,
		Code:      env.Code,
		Message:   env.Message,
	}
}
