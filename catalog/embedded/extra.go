package embedded

import (
	"fmt"
	"strconv"

	"github.com/tailscale/hujson"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/catalogkit/internal/buf"
	"github.com/joshuapare/catalogkit/internal/format"
)

// Patch describes one rewritten document slot.
type Patch struct {
	Entry     int    // first entry that referenced the slot
	DataIndex int    // offset of the tag byte in the extra data
	OldLen    int    // original document length in bytes
	NewLen    int    // rewritten document length in bytes
	OldValue  string // checksum literal before zeroing
}

// slot is a decoded JSON record inside the extra data.
type slot struct {
	lenOff int // offset of the int32 document length
	body   []byte
}

// PatchExtraData zeroes the checksum of every JSON request-options record
// referenced by an entry of the given provider. Slots shared by several
// entries are rewritten once.
//
// All slots are decoded and re-encoded before the first write, so any error
// leaves extra unchanged.
func PatchExtraData(extra []byte, entries []format.EntryData, provider int, opts Options) ([]Patch, error) {
	return patchExtraData(extra, entries, provider, opts, zeroLiteral)
}

// zeroLiteral replaces non-zero checksums.
var zeroLiteral = hujson.Literal("0")

func patchExtraData(extra []byte, entries []format.EntryData, provider int, opts Options, value hujson.Literal) ([]Patch, error) {
	if provider < 0 {
		return nil, nil
	}
	type pending struct {
		patch Patch
		slot  slot
		doc   []byte
	}
	var plan []pending
	seen := make(map[int32]struct{})

	for i, e := range entries {
		if int(e.ProviderIndex) != provider || e.DataIndex < 0 {
			continue
		}
		if _, dup := seen[e.DataIndex]; dup {
			continue
		}
		seen[e.DataIndex] = struct{}{}

		s, ok, err := readSlot(extra, int(e.DataIndex))
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if !ok {
			continue
		}
		text, err := decodeText(s.body, opts.Encoding)
		if err != nil {
			return nil, fmt.Errorf("entry %d at 0x%x: %w: %w", i, e.DataIndex, ErrMalformedEmbeddedDocument, err)
		}
		rewritten, old, changed, err := replaceChecksum(text, value)
		if err != nil {
			return nil, fmt.Errorf("entry %d at 0x%x: %w", i, e.DataIndex, err)
		}
		if !changed {
			continue
		}
		encoded, err := encodeText(rewritten, opts.Encoding)
		if err != nil {
			return nil, fmt.Errorf("entry %d at 0x%x: encode: %w", i, e.DataIndex, err)
		}
		if len(encoded) > len(s.body) {
			return nil, fmt.Errorf("entry %d at 0x%x: %w: need %d bytes, slot holds %d",
				i, e.DataIndex, ErrCapacityExceeded, len(encoded), len(s.body))
		}
		plan = append(plan, pending{
			patch: Patch{Entry: i, DataIndex: int(e.DataIndex), OldLen: len(s.body), NewLen: len(encoded), OldValue: old},
			slot:  s,
			doc:   encoded,
		})
	}

	patches := make([]Patch, 0, len(plan))
	for _, p := range plan {
		format.PutI32LE(extra, p.slot.lenOff, int32(len(p.doc)))
		copy(extra[p.slot.lenOff+format.WordSize:], p.doc)
		patches = append(patches, p.patch)
		opts.Logger.Debug().
			Int("entry", p.patch.Entry).
			Int("data_index", p.patch.DataIndex).
			Int("old_len", p.patch.OldLen).
			Int("new_len", p.patch.NewLen).
			Str("old_crc", p.patch.OldValue).
			Msg("embedded checksum zeroed")
	}
	return patches, nil
}

// readSlot locates the JSON document of the record at off. ok is false for
// records with another tag.
func readSlot(extra []byte, off int) (slot, bool, error) {
	tag, ok := buf.Slice(extra, off, 1)
	if !ok {
		return slot{}, false, fmt.Errorf("%w: data index 0x%x beyond %d bytes", ErrBadRecord, off, len(extra))
	}
	if tag[0] != format.ObjectTypeJSON {
		return slot{}, false, nil
	}
	pos := off + 1
	for range 2 { // assembly and class names
		n, err := prefixAt(extra, pos)
		if err != nil {
			return slot{}, false, err
		}
		pos += format.WordSize + n
	}
	n, err := prefixAt(extra, pos)
	if err != nil {
		return slot{}, false, err
	}
	return slot{lenOff: pos, body: extra[pos+format.WordSize : pos+format.WordSize+n]}, true, nil
}

// prefixAt reads an int32 length at off and checks that that many bytes follow.
func prefixAt(b []byte, off int) (int, error) {
	head, ok := buf.Slice(b, off, format.WordSize)
	if !ok {
		return 0, fmt.Errorf("%w: length prefix at 0x%x truncated", ErrBadRecord, off)
	}
	n := int(buf.I32LE(head))
	if !buf.Has(b, off+format.WordSize, n) {
		return 0, fmt.Errorf("%w: length %d at 0x%x exceeds %d bytes", ErrBadRecord, n, off, len(b))
	}
	return n, nil
}

func decodeText(b []byte, enc Encoding) (string, error) {
	if enc == EncodingUTF8 {
		return string(b), nil
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	return string(out), err
}

func encodeText(s string, enc Encoding) ([]byte, error) {
	if enc == EncodingUTF8 {
		return []byte(s), nil
	}
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
}

// replaceChecksum parses text as a JSON object and sets its checksum to
// value. changed is false when the property is absent or not a non-zero
// number. The rewritten document is compact.
func replaceChecksum(text string, value hujson.Literal) (out, old string, changed bool, err error) {
	v, err := hujson.Parse([]byte(text))
	if err != nil {
		return "", "", false, fmt.Errorf("%w: %w", ErrMalformedEmbeddedDocument, err)
	}
	obj, ok := v.Value.(*hujson.Object)
	if !ok {
		return "", "", false, fmt.Errorf("%w: top-level value is not an object", ErrMalformedEmbeddedDocument)
	}
	for i := range obj.Members {
		m := &obj.Members[i]
		name, ok := m.Name.Value.(hujson.Literal)
		if !ok || name.String() != format.ChecksumProperty {
			continue
		}
		lit, ok := m.Value.Value.(hujson.Literal)
		if !ok || lit.Kind() != '0' {
			return "", "", false, nil
		}
		f, perr := strconv.ParseFloat(string(lit), 64)
		if perr != nil || f == 0 {
			return "", "", false, nil
		}
		old = string(lit)
		m.Value.Value = value
		v.Minimize()
		return string(v.Pack()), old, true, nil
	}
	return "", "", false, nil
}
