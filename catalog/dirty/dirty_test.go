package dirty

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingSyncer struct {
	ranges  []Range
	synced  int
	failAt  int64
	syncErr error
}

func (s *recordingSyncer) SyncRange(off, length int64) error {
	if s.failAt != 0 && off == s.failAt {
		return errors.New("boom")
	}
	s.ranges = append(s.ranges, Range{Off: off, Len: length})
	return nil
}

func (s *recordingSyncer) Sync() error {
	s.synced++
	return s.syncErr
}

func Test_Tracker_PageAlignment(t *testing.T) {
	tracker := NewTracker(0)
	tracker.Add(100, 200)

	coalesced := tracker.Coalesced()
	require.Equal(t, []Range{{Off: 0, Len: 4096}}, coalesced)
}

func Test_Tracker_Coalesce(t *testing.T) {
	tests := []struct {
		name string
		add  []Range
		want []Range
	}{
		{"adjacent", []Range{{4096, 4096}, {8192, 4096}}, []Range{{4096, 8192}}},
		{"overlapping", []Range{{0, 8192}, {4096, 8192}}, []Range{{0, 12288}}},
		{"disjoint", []Range{{0x5000, 4}, {0x1000, 4}}, []Range{{0x1000, 4096}, {0x5000, 4096}}},
		{"same page", []Range{{0x1004, 4}, {0x1ff0, 8}}, []Range{{0x1000, 4096}}},
		{"straddles page", []Range{{0x0ffe, 4}}, []Range{{0, 8192}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(DefaultPageSize)
			for _, r := range tt.add {
				tracker.Add(int(r.Off), int(r.Len))
			}
			require.Equal(t, tt.want, tracker.Coalesced())
		})
	}
}

func Test_Tracker_IgnoresEmptyRanges(t *testing.T) {
	tracker := NewTracker(DefaultPageSize)
	tracker.Add(10, 0)
	tracker.Add(10, -1)
	require.Equal(t, 0, tracker.Len())
	require.Nil(t, tracker.Coalesced())
}

func Test_Tracker_Flush(t *testing.T) {
	tracker := NewTracker(DefaultPageSize)
	tracker.Add(0x20, 4)
	tracker.Add(0x3008, 4)

	s := &recordingSyncer{}
	require.NoError(t, tracker.Flush(context.Background(), s))
	require.Equal(t, []Range{{0, 4096}, {0x3000, 4096}}, s.ranges)
	require.Equal(t, 1, s.synced)
	require.Equal(t, 0, tracker.Len())

	// Nothing to do after a flush.
	require.NoError(t, tracker.Flush(context.Background(), s))
	require.Equal(t, 1, s.synced)
}

func Test_Tracker_FlushErrorKeepsRanges(t *testing.T) {
	tracker := NewTracker(DefaultPageSize)
	tracker.Add(0x3008, 4)

	s := &recordingSyncer{failAt: 0x3000}
	require.Error(t, tracker.Flush(context.Background(), s))
	require.Equal(t, 1, tracker.Len())
	require.Equal(t, 0, s.synced)
}

func Test_Tracker_FlushPreCancelled(t *testing.T) {
	tracker := NewTracker(DefaultPageSize)
	tracker.Add(4096, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tracker.Flush(ctx, &recordingSyncer{})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, tracker.Len())
}

func Test_Tracker_RangesIsCopy(t *testing.T) {
	tracker := NewTracker(DefaultPageSize)
	tracker.Add(1, 2)
	r := tracker.Ranges()
	r[0].Off = 99
	require.Equal(t, int64(1), tracker.Ranges()[0].Off)
}
