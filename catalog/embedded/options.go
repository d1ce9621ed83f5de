package embedded

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/joshuapare/catalogkit/internal/format"
)

// ProviderMatch selects how provider ids are compared with the target type.
type ProviderMatch int

const (
	// MatchSuffix accepts ids ending in "AssetBundleProvider".
	MatchSuffix ProviderMatch = iota
	// MatchExact accepts only the fully qualified provider type name.
	MatchExact
)

// Encoding is the text encoding of embedded JSON documents.
type Encoding int

const (
	// EncodingUTF16 is UTF-16LE without a BOM, as written by the stock serializer.
	EncodingUTF16 Encoding = iota
	// EncodingUTF8 is plain UTF-8.
	EncodingUTF8
)

// Options configures document patching. The zero value is usable.
type Options struct {
	ProviderMatch ProviderMatch
	// ProviderType overrides format.AssetBundleProviderType for MatchExact.
	ProviderType string
	Encoding     Encoding
	Logger       zerolog.Logger
}

func (o Options) providerType() string {
	if o.ProviderType == "" {
		return format.AssetBundleProviderType
	}
	return o.ProviderType
}

func (o Options) matches(id string) bool {
	if o.ProviderMatch == MatchExact {
		return id == o.providerType()
	}
	return strings.HasSuffix(id, format.AssetBundleProviderSuffix)
}

// ProviderIndex returns the position of the first id naming the bundle
// provider, or -1 when none does.
func ProviderIndex(ids []string, opts Options) int {
	for i, id := range ids {
		if opts.matches(id) {
			return i
		}
	}
	return -1
}

// ParseProviderMatch maps a configuration string to a ProviderMatch.
func ParseProviderMatch(s string) (ProviderMatch, error) {
	switch strings.ToLower(s) {
	case "", "suffix":
		return MatchSuffix, nil
	case "exact":
		return MatchExact, nil
	}
	return MatchSuffix, fmt.Errorf("embedded: unknown provider match %q", s)
}

// ParseEncoding maps a configuration string to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "", "utf16", "utf-16", "utf-16le":
		return EncodingUTF16, nil
	case "utf8", "utf-8":
		return EncodingUTF8, nil
	}
	return EncodingUTF16, fmt.Errorf("embedded: unknown encoding %q", s)
}

func (e Encoding) String() string {
	if e == EncodingUTF8 {
		return "utf-8"
	}
	return "utf-16le"
}
