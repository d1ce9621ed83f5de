package dirty

// Adder is the minimal interface for recording modified byte ranges.
//
// Components that only write (the in-place patcher) depend on Adder; the
// owner of the image decides when and how to flush.
type Adder interface {
	// Add marks a byte range as dirty.
	// off is the offset from the start of the file, length is the number of bytes.
	Add(off, length int)
}

// Syncer persists byte ranges of a modified image.
//
// Ranges passed to SyncRange are page-aligned and may extend past the end of
// the image; implementations clamp them.
type Syncer interface {
	SyncRange(off, length int64) error
	Sync() error
}

var _ Adder = (*Tracker)(nil)
