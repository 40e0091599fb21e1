// package errors contains domain errors that different layers can use to add
// meaning to an error and that the HTTP handler can transform to a status
// code. This is implemented as a separate package in order to avoid cycle
// import errors.
package errors

import (
	"github.com/cockroachdb/errors"
)

// The following errors serve as domain errors that can be used by the
// different layers. The handler in the entrypoint will intercept these and
// convert them to the relevant HTTP codes. End-user copy is attached with
// errors.WithHint where a fixed message applies; callers can override the
// hint with more specific wording.
var (
	// ErrInvalidArgument is used when the provided argument is incorrect (e.g.
	// format, missing job identifier).
	ErrInvalidArgument = errors.New("invalid")
	// ErrNotFound is used when a resource doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated is used when no candidate session is resolved. The
	// handler sets needs_auth on the response so the client redirects to
	// login instead of rendering an inline error.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNoPermission is used when a request can't be performed due to
	// insufficient permissions on the target resource.
	ErrNoPermission = errors.New("no permission")
	// ErrAlreadyExists is used when a resource can't be created because it
	// already exists, e.g. a second application for the same job.
	ErrAlreadyExists = errors.WithHint(errors.New("resource already exists"), "Resource already exists.")
	// ErrJobNotPublished is used when the targeted job posting exists but is
	// not accepting applications.
	ErrJobNotPublished = errors.WithHint(errors.New("job posting not published"), "This job posting is not accepting applications.")
	// ErrFileRejected is used when one or more uploaded files fail size or
	// MIME type validation. The per-file details are attached as hints.
	ErrFileRejected = errors.New("file rejected")
	// ErrNoCompanyUser is used when the job's company account has no user to
	// own the application thread.
	ErrNoCompanyUser = errors.New("no company user for account")
)
