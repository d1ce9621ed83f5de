package embedded

import "errors"

var (
	// ErrMalformedEmbeddedDocument is returned when a record tagged as a JSON
	// object does not hold a JSON object.
	ErrMalformedEmbeddedDocument = errors.New("embedded: malformed embedded document")

	// ErrCapacityExceeded is returned when a rewritten document would need
	// more bytes than its slot reserves. Nothing is written in that case.
	ErrCapacityExceeded = errors.New("embedded: rewritten document exceeds reserved length")

	// ErrInvalidDocument is returned when the catalog text is not valid JSON.
	ErrInvalidDocument = errors.New("embedded: invalid catalog document")

	// ErrMissingMember is returned when a required catalog member is absent
	// or has the wrong JSON type.
	ErrMissingMember = errors.New("embedded: missing catalog member")

	// ErrBadRecord is returned when an extra data record runs past the
	// buffer or carries a negative length.
	ErrBadRecord = errors.New("embedded: bad extra data record")
)
