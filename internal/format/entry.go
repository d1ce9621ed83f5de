package format

import (
	"fmt"

	"github.com/joshuapare/catalogkit/internal/buf"
)

// EntryData is one record of a JSON catalog's m_EntryDataString table.
//
//	Offset  Field
//	------  -----------------
//	 0x00   InternalIDIndex
//	 0x04   ProviderIndex
//	 0x08   DependencyKey
//	 0x0C   DepHash
//	 0x10   DataIndex
//	 0x14   PrimaryKeyIndex
//	 0x18   ResourceTypeIndex
//
// The table is stored little-endian and decoded field by field, so the host
// byte order never matters.
type EntryData struct {
	InternalIDIndex   int32
	ProviderIndex     int32
	DependencyKey     int32
	DepHash           int32
	DataIndex         int32
	PrimaryKeyIndex   int32
	ResourceTypeIndex int32
}

// DecodeEntryData decodes a count-prefixed, tightly packed array of entry records.
func DecodeEntryData(b []byte) ([]EntryData, error) {
	if len(b) < EntryDataCountSize {
		return nil, fmt.Errorf("entry data: %w", ErrTruncated)
	}
	count := int(buf.I32LE(b))
	if _, err := buf.CheckListBounds(len(b), EntryDataCountSize, count, EntryDataSize); err != nil {
		return nil, fmt.Errorf("entry data: %w: %w", ErrTruncated, err)
	}
	entries := make([]EntryData, count)
	for i := range entries {
		rec := b[EntryDataCountSize+i*EntryDataSize:]
		entries[i] = EntryData{
			InternalIDIndex:   buf.I32LE(rec[0x00:]),
			ProviderIndex:     buf.I32LE(rec[0x04:]),
			DependencyKey:     buf.I32LE(rec[0x08:]),
			DepHash:           buf.I32LE(rec[0x0C:]),
			DataIndex:         buf.I32LE(rec[0x10:]),
			PrimaryKeyIndex:   buf.I32LE(rec[0x14:]),
			ResourceTypeIndex: buf.I32LE(rec[0x18:]),
		}
	}
	return entries, nil
}

// EncodeEntryData is the inverse of DecodeEntryData.
func EncodeEntryData(entries []EntryData) []byte {
	out := make([]byte, EntryDataCountSize+len(entries)*EntryDataSize)
	PutI32LE(out, 0, int32(len(entries)))
	for i, e := range entries {
		off := EntryDataCountSize + i*EntryDataSize
		PutI32LE(out, off+0x00, e.InternalIDIndex)
		PutI32LE(out, off+0x04, e.ProviderIndex)
		PutI32LE(out, off+0x08, e.DependencyKey)
		PutI32LE(out, off+0x0C, e.DepHash)
		PutI32LE(out, off+0x10, e.DataIndex)
		PutI32LE(out, off+0x14, e.PrimaryKeyIndex)
		PutI32LE(out, off+0x18, e.ResourceTypeIndex)
	}
	return out
}
