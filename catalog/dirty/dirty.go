// Package dirty tracks modified byte ranges of a patched catalog image and
// flushes them to disk page by page.
//
// The tracker maintains a list of dirty byte ranges, coalesces them into
// page-aligned ranges, and hands them to a Syncer (msync on a mapping, or
// positioned writes on a heap copy).
package dirty

import (
	"context"
	"fmt"
	"sort"
)

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64

	// DefaultPageSize is the typical OS page size (4KB).
	DefaultPageSize = 4096
)

// Range represents a dirty byte range (absolute file offsets).
type Range struct {
	Off int64 // Absolute offset in file
	Len int64 // Length in bytes
}

// End returns the first offset past the range.
func (r Range) End() int64 { return r.Off + r.Len }

// Tracker accumulates dirty ranges and flushes them efficiently.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	ranges   []Range // raw ranges, coalesced at flush time
	pageSize int64
}

// NewTracker creates a tracker that aligns ranges to pageSize bytes.
// A non-positive pageSize selects DefaultPageSize.
func NewTracker(pageSize int64) *Tracker {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Tracker{
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: pageSize,
	}
}

// Add records a dirty range. Zero-length ranges are ignored.
//
// The range will be page-aligned and coalesced with other ranges at flush time.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{Off: int64(off), Len: int64(length)})
}

// Len returns the number of raw ranges recorded since the last flush or reset.
func (t *Tracker) Len() int { return len(t.ranges) }

// Ranges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) Ranges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// Coalesced returns the page-aligned, sorted, merged ranges a flush would sync.
func (t *Tracker) Coalesced() []Range {
	return t.coalesce()
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// Flush syncs every coalesced range through s, then asks s to make the
// result durable, and clears the tracker.
//
// The context is checked between ranges. If cancelled mid-way, some ranges
// may have been synced while others have not; the tracker keeps its ranges
// so the flush can be retried.
func (t *Tracker) Flush(ctx context.Context, s Syncer) error {
	if len(t.ranges) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range t.coalesce() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.SyncRange(r.Off, r.Len); err != nil {
			return fmt.Errorf("dirty: sync 0x%x+%d: %w", r.Off, r.Len, err)
		}
	}
	if err := s.Sync(); err != nil {
		return fmt.Errorf("dirty: sync: %w", err)
	}
	t.Reset()
	return nil
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping/adjacent ranges.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize
		end := r.End()
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}
		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.End() {
			if next.End() > current.End() {
				current.Len = next.End() - current.Off
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
