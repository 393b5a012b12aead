package directory

// OutcomeKind tags the semantic result of a remote call.
type OutcomeKind int

const (
	// OutcomeSuccess means the service answered with ClassSuccess.
	OutcomeSuccess OutcomeKind = iota
	// OutcomePartial means the service reported multiple matches; Value is filtered.
	OutcomePartial
	// OutcomeEmpty means the service found nothing. It is not an error.
	OutcomeEmpty
	// OutcomeFailure means the call failed; Err is set.
	OutcomeFailure
)

// String returns the lowercase name used in logs and metric attributes.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomePartial:
		return "partial"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of a remote call.
// Exactly one of Value (for non-failure kinds) or Err (for OutcomeFailure) is meaningful.
type Outcome[T any] struct {
	Kind  OutcomeKind
	Value T
	Err   error
}

// Result unpacks the outcome into the conventional value/error pair.
// Partial and Empty outcomes return their value with a nil error.
func (o Outcome[T]) Result() (T, error) {
	if o.Kind == OutcomeFailure {
		var zero T
		return zero, o.Err
	}
	return o.Value, nil
}

// OK reports whether the outcome is anything other than a failure.
func (o Outcome[T]) OK() bool {
	return o.Kind != OutcomeFailure
}

func success[T any](v T) Outcome[T] { return Outcome[T]{Kind: OutcomeSuccess, Value: v} }
func partial[T any](v T) Outcome[T] { return Outcome[T]{Kind: OutcomePartial, Value: v} }
func empty[T any](v T) Outcome[T]   { return Outcome[T]{Kind: OutcomeEmpty, Value: v} }
func failure[T any](err error) Outcome[T] {
	return Outcome[T]{Kind: OutcomeFailure, Err: err}
}
