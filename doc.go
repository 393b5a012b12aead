// Package directory provides name resolution and free/busy availability
// against an Exchange-style directory service.
//
// The package does not speak any wire protocol. A Caller performs the two
// remote operations (ResolveNames and GetUserAvailability); the Service
// builds their arguments and turns the raw responses into results or errors.
//
// # Basic Usage
//
//	// Create in-memory directory for testing
//	dir := memory.New()
//	dir.Add(memory.Entry{Mailbox: directory.Mailbox{
//	    Name:         "Alice Smith",
//	    EmailAddress: "alice@example.com",
//	    RoutingType:  "SMTP",
//	}})
//
//	svc, err := directory.NewService(
//	    directory.WithCaller(dir),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Resolve a name
//	candidates, err := svc.SearchContacts(ctx, "alice")
//
//	// Query availability
//	resp, err := svc.GetUserAvailability(ctx, []string{"alice@example.com"},
//	    directory.AvailabilityOptions{
//	        StartTime:     start,
//	        EndTime:       start.Add(8 * time.Hour),
//	        RequestedView: directory.ViewFreeBusy,
//	    })
//
// # Name Resolution
//
// Responses are classified into an Outcome:
//   - Success: every candidate returned, unfiltered
//   - Partial: "multiple results" warning, only candidates with a mailbox
//   - Empty: "no results", not an error
//   - Failure: any other code, as a *RemoteServiceError
//
// SearchContacts collapses the outcome into ([]Candidate, error).
//
// # Availability
//
// StartTime, EndTime and RequestedView are required. A missing option returns
// a *MissingArgumentError without contacting the service. RoutingType is
// applied to every requested address. TimeZone and Extra pass through to the
// arguments unchanged, except that Extra cannot override the keys the builder
// sets; a time zone belongs in TimeZone. GetUserAvailabilityMap accepts a
// loosely-typed option map instead (see OptionsFromMap).
//
// # Related Packages
//
//   - memory: in-memory Caller for tests and local development
//   - resolver: resolves a query to exactly one recipient, with batching
//   - retry: exponential backoff and a retrying Directory wrapper
//   - export: iCalendar VFREEBUSY and vCard rendering of results
//
// # OpenTelemetry
//
// Tracing and metrics are disabled by default:
//
//	svc, _ := directory.NewService(
//	    directory.WithCaller(dir),
//	    directory.WithOTel(true),
//	    directory.WithServiceName("scheduler"),
//	)
package directory
