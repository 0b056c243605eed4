package domain

import "errors"

// ErrNotFound is returned when the requested resource (trip, item, member,
// invite, or move anchor) does not exist.
// Handlers should map this to HTTP 404 with an empty body.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. blank name, date outside trip range, both move anchors given).
// Handlers should map this to HTTP 400 with a {message} body.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the acting member lacks the role an
// operation requires. Handlers should map this to HTTP 403 with an empty body.
// Non-members never see ErrForbidden — the service layer reports ErrNotFound
// instead, so the existence of a private trip is not disclosed.
var ErrForbidden = errors.New("forbidden")

// ErrInvariant is returned when a transition would leave the trip aggregate
// in an invalid state (zero owners, duplicate members, dangling primary
// owner). The transition is rejected as a whole; the prior aggregate is
// untouched. Handlers should map this to HTTP 400 with a {message} body.
var ErrInvariant = errors.New("invariant violation")
