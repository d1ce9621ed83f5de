package graph

import "errors"

var (
	// ErrUnsupportedVersion is attached to the warning logged for catalog
	// versions without a known layout. It is never returned.
	ErrUnsupportedVersion = errors.New("graph: unsupported catalog version")
)
