package catalog

import (
	"errors"

	"github.com/joshuapare/catalogkit/catalog/embedded"
	"github.com/joshuapare/catalogkit/catalog/graph"
)

var (
	// ErrNotFound is returned when the catalog path does not exist.
	ErrNotFound = errors.New("catalog: not found")

	// ErrNoTextRecord is returned for bundles without a TextAsset record.
	ErrNoTextRecord = errors.New("catalog: bundle has no text record")

	// ErrUnsupportedVersion is attached to the warning logged for binary
	// catalogs of unknown versions. It is never returned.
	ErrUnsupportedVersion = graph.ErrUnsupportedVersion

	ErrMalformedEmbeddedDocument = embedded.ErrMalformedEmbeddedDocument
	ErrCapacityExceeded          = embedded.ErrCapacityExceeded
)
