// Package auth implements the identity reconciliation and session bootstrap
// pipeline: a Shibboleth-asserted principal is extracted from the transport
// attribute bag, reconciled against the durable account store, and bound to
// a local session with its group memberships synchronized.
package auth

import "errors"

// Errors returned by the reconciliation pipeline.
var (
	// ErrMissingPrincipal indicates that no username-bearing attribute was
	// present in the transport attribute bag. The request proceeds
	// unauthenticated; this is a precondition failure, not a server error.
	ErrMissingPrincipal = errors.New("no username attribute asserted")

	// ErrAccountPersist indicates that creating or updating the durable
	// account failed. The login attempt aborts and no session is issued.
	ErrAccountPersist = errors.New("account persistence failed")
)
