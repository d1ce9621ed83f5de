package testutil

import (
	"encoding/base64"
	"unicode/utf16"

	"github.com/goccy/go-json"

	"github.com/joshuapare/catalogkit/internal/format"
)

// JSONCatalog assembles a JSON catalog with its packed entry table and extra
// data blob.
type JSONCatalog struct {
	ProviderIDs []string
	Entries     []format.EntryData
	Extra       []byte
	// Members are merged into the top-level object as-is.
	Members map[string]any
}

// AddEntry appends an entry for provider index p with the given data index.
func (c *JSONCatalog) AddEntry(p, dataIndex int32) {
	c.Entries = append(c.Entries, format.EntryData{
		InternalIDIndex:   int32(len(c.Entries)),
		ProviderIndex:     p,
		DataIndex:         dataIndex,
		DependencyKey:     -1,
		PrimaryKeyIndex:   int32(len(c.Entries)),
		ResourceTypeIndex: 0,
	})
}

// AddJSONObject appends a tagged JSON object to the extra data and returns its
// offset. The document is stored UTF-16LE when unicode is set, otherwise
// UTF-8. When width exceeds the document length it is padded with trailing
// spaces to that many characters.
func (c *JSONCatalog) AddJSONObject(doc string, unicode bool, width int) int32 {
	for len(doc) < width {
		doc += " "
	}
	off := int32(len(c.Extra))
	c.Extra = append(c.Extra, format.ObjectTypeJSON)
	c.Extra = appendLPString(c.Extra, []byte("Unity.ResourceManager, Version=0.0.0.0"))
	c.Extra = appendLPString(c.Extra, []byte("UnityEngine.ResourceManagement.ResourceProviders.AssetBundleRequestOptions"))
	if unicode {
		c.Extra = appendLPString(c.Extra, UTF16LE(doc))
	} else {
		c.Extra = appendLPString(c.Extra, []byte(doc))
	}
	return off
}

// Document renders the catalog as JSON text.
func (c *JSONCatalog) Document() []byte {
	doc := map[string]any{}
	for k, v := range c.Members {
		doc[k] = v
	}
	doc[format.JSONProviderIDs] = c.ProviderIDs
	doc[format.JSONEntryData] = base64.StdEncoding.EncodeToString(format.EncodeEntryData(c.Entries))
	doc[format.JSONExtraData] = base64.StdEncoding.EncodeToString(c.Extra)
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		panic(err)
	}
	return out
}

// UTF16LE encodes s as little-endian UTF-16 without a BOM.
func UTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		out[2*i] = byte(u)
		out[2*i+1] = byte(u >> 8)
	}
	return out
}

func appendLPString(dst, s []byte) []byte {
	var n [format.WordSize]byte
	format.PutI32LE(n[:], 0, int32(len(s)))
	dst = append(dst, n[:]...)
	return append(dst, s...)
}
