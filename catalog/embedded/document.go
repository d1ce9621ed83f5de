package embedded

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/tailscale/hujson"

	"github.com/joshuapare/catalogkit/internal/format"
)

// Result is the outcome of PatchDocument.
type Result struct {
	// Document is the patched catalog text, or the input when nothing changed.
	Document []byte
	Modified []Patch
	// ProviderIndex is the matched provider position, -1 when none matched.
	ProviderIndex int
	Entries       int
}

// Changed reports whether any slot was rewritten.
func (r *Result) Changed() bool { return len(r.Modified) > 0 }

// Catalog is a parsed JSON catalog whose extra data can be patched and
// written back without disturbing the rest of the document.
type Catalog struct {
	root        hujson.Value
	ProviderIDs []string
	Entries     []format.EntryData
	Extra       []byte
	extraMember *hujson.Value
	bom         bool
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCatalog parses doc and decodes the provider ids, entry table and
// extra data.
func ParseCatalog(doc []byte) (*Catalog, error) {
	bom := bytes.HasPrefix(doc, utf8BOM)
	root, err := hujson.Parse(bytes.TrimPrefix(doc, utf8BOM))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	obj, ok := root.Value.(*hujson.Object)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrInvalidDocument)
	}
	c := &Catalog{root: root, bom: bom}
	members := make(map[string]*hujson.Value, len(obj.Members))
	for i := range obj.Members {
		if name, ok := obj.Members[i].Name.Value.(hujson.Literal); ok {
			members[name.String()] = &obj.Members[i].Value
		}
	}

	ids, ok := members[format.JSONProviderIDs]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingMember, format.JSONProviderIDs)
	}
	arr, ok := ids.Value.(*hujson.Array)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an array", ErrMissingMember, format.JSONProviderIDs)
	}
	for _, el := range arr.Elements {
		lit, ok := el.Value.(hujson.Literal)
		if !ok || lit.Kind() != '"' {
			return nil, fmt.Errorf("%w: %s holds a non-string", ErrMissingMember, format.JSONProviderIDs)
		}
		c.ProviderIDs = append(c.ProviderIDs, lit.String())
	}

	entryBlob, _, err := decodeBlob(members, format.JSONEntryData)
	if err != nil {
		return nil, err
	}
	if c.Entries, err = format.DecodeEntryData(entryBlob); err != nil {
		return nil, fmt.Errorf("embedded: %s: %w", format.JSONEntryData, err)
	}
	if c.Extra, c.extraMember, err = decodeBlob(members, format.JSONExtraData); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeBlob(members map[string]*hujson.Value, name string) ([]byte, *hujson.Value, error) {
	v, ok := members[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingMember, name)
	}
	lit, ok := v.Value.(hujson.Literal)
	if !ok || lit.Kind() != '"' {
		return nil, nil, fmt.Errorf("%w: %s is not a string", ErrMissingMember, name)
	}
	raw, err := base64.StdEncoding.DecodeString(lit.String())
	if err != nil {
		return nil, nil, fmt.Errorf("embedded: %s: %w", name, err)
	}
	return raw, v, nil
}

// Encode re-encodes the extra data into the document and returns the text.
func (c *Catalog) Encode() []byte {
	c.extraMember.Value = hujson.String(base64.StdEncoding.EncodeToString(c.Extra))
	out := c.root.Pack()
	if c.bom {
		out = append(append([]byte(nil), utf8BOM...), out...)
	}
	return out
}

// PatchDocument zeroes every bundle checksum of a JSON catalog.
func PatchDocument(doc []byte, opts Options) (*Result, error) {
	c, err := ParseCatalog(doc)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Document:      doc,
		ProviderIndex: ProviderIndex(c.ProviderIDs, opts),
		Entries:       len(c.Entries),
	}
	if res.ProviderIndex < 0 {
		opts.Logger.Debug().Int("providers", len(c.ProviderIDs)).Msg("no bundle provider in catalog")
		return res, nil
	}
	res.Modified, err = PatchExtraData(c.Extra, c.Entries, res.ProviderIndex, opts)
	if err != nil {
		return nil, err
	}
	if res.Changed() {
		res.Document = c.Encode()
	}
	return res, nil
}

// Inspect lists the slots PatchDocument would rewrite without changing doc.
func Inspect(doc []byte, opts Options) (*Result, error) {
	c, err := ParseCatalog(doc)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Document:      doc,
		ProviderIndex: ProviderIndex(c.ProviderIDs, opts),
		Entries:       len(c.Entries),
	}
	scratch := append([]byte(nil), c.Extra...)
	if res.Modified, err = PatchExtraData(scratch, c.Entries, res.ProviderIndex, opts); err != nil {
		return nil, err
	}
	return res, nil
}
