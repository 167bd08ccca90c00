package sale

import "errors"

// ErrValidation marks malformed or out-of-range caller input.  Nothing
// is persisted when a request fails validation.
var ErrValidation = errors.New("invalid request")

// ErrState marks a request that is well-formed but invalid in the
// current state: unknown user or event, cancelled or past event, or a
// selection that does not match the requested event.
var ErrState = errors.New("invalid state")
