package graph

import (
	"encoding/binary"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joshuapare/catalogkit/catalog/stream"
	"github.com/joshuapare/catalogkit/internal/format"
)

// Options configures a Walker.
type Options struct {
	// Logger receives traversal diagnostics. The zero value discards output.
	Logger zerolog.Logger

	// ProviderType is the provider name whose locations are collected.
	// Empty means format.AssetBundleProviderType.
	ProviderType string

	// StrictProviderMatch disables the cached-offset shortcut: once the first
	// matching provider offset is known, other provider offsets are still
	// decoded and compared by value instead of being rejected outright.
	// Catalogs written by the stock serializer intern the provider string, so
	// the shortcut is exact for them.
	StrictProviderMatch bool
}

// Field is one checksum word scheduled for zeroing.
type Field struct {
	Offset   int64 // absolute offset of the checksum word
	Location int32 // location that reached it first
	Value    int32 // checksum value at plan time
}

// Stats counts what a walk touched.
type Stats struct {
	Keys             int
	LocationLists    int
	Locations        int
	ForeignLocations int // locations of other providers
	ProviderAliases  int // extra matching provider offsets (strict mode only)
	ZeroChecksums    int // matching objects whose checksum is already zero
	Visited          int
}

// Plan is the outcome of one walk.
type Plan struct {
	Order          binary.ByteOrder
	Version        int32
	ProviderOffset int32 // format.NullOffset when no matching provider was found
	Fields         []Field
	Stats          Stats
}

// Empty reports whether the plan has nothing to write.
func (p *Plan) Empty() bool { return len(p.Fields) == 0 }

// Walker traverses one binary catalog.
type Walker struct {
	r    *stream.Reader
	opts Options
}

// NewWalker returns a Walker over r.
func NewWalker(r *stream.Reader, opts Options) *Walker {
	if opts.ProviderType == "" {
		opts.ProviderType = format.AssetBundleProviderType
	}
	return &Walker{r: r, opts: opts}
}

// Walk reads the header and visits the whole graph once.
func (w *Walker) Walk() (*Plan, error) {
	version, err := w.r.Int32At(format.BinaryVersionOffset)
	if err != nil {
		return nil, fmt.Errorf("graph: read version: %w", err)
	}
	if version != format.BinaryVersion1 && version != format.BinaryVersion2 {
		w.opts.Logger.Warn().
			Err(ErrUnsupportedVersion).
			Int32("version", version).
			Msg("processing catalog best-effort")
	}
	keys, err := w.r.Int32At(format.BinaryKeysOffsetOffset)
	if err != nil {
		return nil, fmt.Errorf("graph: read keys offset: %w", err)
	}

	t := &traversal{
		r:       w.r,
		opts:    w.opts,
		visited: NewVisitedSet(),
		strings: NewStringDecoder(w.r, version),
		target:  format.NullOffset,
		aliases: make(map[int32]struct{}),
		planned: make(map[int64]struct{}),
		plan: &Plan{
			Order:          w.r.Order(),
			Version:        version,
			ProviderOffset: format.NullOffset,
		},
	}
	if err := t.run(keys); err != nil {
		return nil, err
	}
	t.plan.Stats.Visited = t.visited.Len()

	w.opts.Logger.Debug().
		Int32("version", version).
		Int("keys", t.plan.Stats.Keys).
		Int("locations", t.plan.Stats.Locations).
		Int("fields", len(t.plan.Fields)).
		Msg("catalog walk complete")
	return t.plan, nil
}

type traversal struct {
	r       *stream.Reader
	opts    Options
	visited *VisitedSet
	strings *StringDecoder
	target  int32
	aliases map[int32]struct{}
	planned map[int64]struct{}
	plan    *Plan
}

func (t *traversal) run(keys int32) error {
	if keys == format.NullOffset {
		return nil
	}
	pairs, err := t.r.Int32ArrayAt(int64(keys))
	if err != nil {
		return fmt.Errorf("graph: key array at 0x%x: %w", keys, err)
	}
	// Even slots are key references, odd slots location lists.
	for i := 1; i < len(pairs); i += 2 {
		t.plan.Stats.Keys++
		if err := t.locationList(pairs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *traversal) locationList(off int32) error {
	if !t.visited.Visit(off) {
		return nil
	}
	t.plan.Stats.LocationLists++
	locs, err := t.r.Int32ArrayAt(int64(off))
	if err != nil {
		return fmt.Errorf("graph: location list at 0x%x: %w", off, err)
	}
	for _, loc := range locs {
		if err := t.location(loc); err != nil {
			return err
		}
	}
	return nil
}

func (t *traversal) location(loc int32) error {
	if !t.visited.Visit(loc) {
		return nil
	}
	t.plan.Stats.Locations++

	base := int64(loc)
	provider, err := t.r.Int32At(base + format.LocationProviderWord*format.WordSize)
	if err != nil {
		return fmt.Errorf("graph: location 0x%x: %w", loc, err)
	}
	ok, err := t.matchProvider(provider)
	if err != nil {
		return err
	}
	if !ok {
		t.plan.Stats.ForeignLocations++
		return nil
	}

	data, err := t.r.Int32At(base + format.LocationDataWord*format.WordSize)
	if err != nil {
		return fmt.Errorf("graph: location 0x%x: %w", loc, err)
	}
	if !t.visited.Visit(data) {
		return nil
	}
	rel, err := t.r.Int32At(int64(data) + format.DataObjectOffsetWord*format.WordSize)
	if err != nil {
		return fmt.Errorf("graph: extra data 0x%x: %w", data, err)
	}
	if rel == format.NullOffset {
		return nil
	}
	obj := int64(rel) + format.DataObjectHeaderSize
	crc, err := t.r.Int32At(obj)
	if err != nil {
		return fmt.Errorf("graph: request options at 0x%x: %w", obj, err)
	}
	if crc == 0 {
		t.plan.Stats.ZeroChecksums++
		return nil
	}
	if _, dup := t.planned[obj]; dup {
		return nil
	}
	t.planned[obj] = struct{}{}
	t.plan.Fields = append(t.plan.Fields, Field{Offset: obj, Location: loc, Value: crc})
	return nil
}

func (t *traversal) matchProvider(p int32) (bool, error) {
	if p == format.NullOffset {
		return false, nil
	}
	if p == t.target {
		return true, nil
	}
	if t.target != format.NullOffset && !t.opts.StrictProviderMatch {
		return false, nil
	}
	if _, ok := t.aliases[p]; ok {
		return true, nil
	}
	if !t.visited.Visit(p) {
		return false, nil
	}
	name, err := t.strings.Decode(p, format.FragmentSeparatorV2)
	if err != nil {
		return false, fmt.Errorf("graph: provider id 0x%x: %w", p, err)
	}
	if name != t.opts.ProviderType {
		return false, nil
	}
	if t.target == format.NullOffset {
		t.target = p
		t.plan.ProviderOffset = p
		t.opts.Logger.Debug().Int32("offset", p).Msg("bundle provider located")
		return true, nil
	}
	t.aliases[p] = struct{}{}
	t.plan.Stats.ProviderAliases++
	return true, nil
}
