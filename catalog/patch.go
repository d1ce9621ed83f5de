package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/joshuapare/catalogkit/catalog/container"
	"github.com/joshuapare/catalogkit/catalog/embedded"
	"github.com/joshuapare/catalogkit/catalog/graph"
)

// DefaultBackupSuffix is appended to the catalog path to name its backup.
const DefaultBackupSuffix = ".bak"

// Options configures a Patcher.
type Options struct {
	Logger zerolog.Logger

	// BackupSuffix names the backup copy. Empty means DefaultBackupSuffix.
	BackupSuffix string

	// StrictProviderMatch compares provider names by value when offsets
	// differ. See graph.Options.
	StrictProviderMatch bool

	// ProviderMatch and Encoding apply to JSON catalogs and bundles.
	ProviderMatch embedded.ProviderMatch
	Encoding      embedded.Encoding

	// Opener opens bundles. Nil means container.UnityFS.
	Opener container.Opener

	// DryRun reports what would change without writing or backing up.
	DryRun bool
}

// Result describes one patched catalog.
type Result struct {
	Path   string `json:"path"`
	Source Source `json:"source"`
	// Version is the binary catalog version, 0 for other shapes.
	Version int32 `json:"version,omitempty"`
	// Fields are the binary checksum words that were (or would be) zeroed.
	Fields []graph.Field `json:"fields,omitempty"`
	// Entries are the embedded slots that were (or would be) rewritten.
	Entries []embedded.Patch `json:"entries,omitempty"`
	Backup  string           `json:"backup,omitempty"`
	// Modified is set once the file on disk has changed.
	Modified bool `json:"modified"`
	// Before and After are xxhash64 fingerprints of the file contents.
	Before uint64 `json:"before"`
	After  uint64 `json:"after"`
}

// Count returns the number of checksum fields the result covers.
func (r *Result) Count() int { return len(r.Fields) + len(r.Entries) }

// Patcher zeroes bundle checksums in catalog files. A Patcher holds no
// per-file state and may be shared between goroutines.
type Patcher struct {
	opts Options
}

// New returns a Patcher for opts.
func New(opts Options) *Patcher {
	if opts.BackupSuffix == "" {
		opts.BackupSuffix = DefaultBackupSuffix
	}
	if opts.Opener == nil {
		opts.Opener = container.UnityFS{}
	}
	return &Patcher{opts: opts}
}

// PatchFile detects the shape of the catalog at path and patches it.
func (p *Patcher) PatchFile(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, openError(path, err)
	}
	source, _, err := DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	res := &Result{Path: path, Source: source}
	log := p.opts.Logger.With().Str("path", path).Stringer("source", source).Logger()
	switch source {
	case SourceRawBinaryGraph:
		err = p.patchBinary(ctx, log, res)
	case SourceCompressedContainer:
		err = p.patchContainer(log, res)
	default:
		err = p.patchJSON(log, res)
	}
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	switch {
	case res.Modified:
		log.Info().Int("fields", res.Count()).Msg("catalog patched")
	case p.opts.DryRun:
		log.Info().Int("fields", res.Count()).Msg("dry run")
	default:
		log.Info().Msg("catalog unchanged")
	}
	return res, nil
}

func (p *Patcher) embeddedOptions(log zerolog.Logger) embedded.Options {
	return embedded.Options{
		ProviderMatch: p.opts.ProviderMatch,
		Encoding:      p.opts.Encoding,
		Logger:        log,
	}
}
