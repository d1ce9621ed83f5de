package catalog

import (
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/joshuapare/catalogkit/internal/format"
)

// patchContainer patches the JSON catalog held by the first TextAsset
// record of a bundle and repacks the bundle.
func (p *Patcher) patchContainer(log zerolog.Logger, res *Result) error {
	raw, err := os.ReadFile(res.Path)
	if err != nil {
		return err
	}
	res.Before = xxhash.Sum64(raw)
	res.After = res.Before

	c, err := p.opts.Opener.OpenContainer(res.Path)
	if err != nil {
		return err
	}
	records, err := c.Records()
	if err != nil {
		return err
	}
	index := -1
	for i, r := range records {
		if r.TypeID == format.TextAssetClassID {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrNoTextRecord
	}
	rec := records[index]
	name, doc, err := format.DecodeTextAsset(rec.Payload, rec.Order)
	if err != nil {
		return fmt.Errorf("catalog: record %d: %w", index, err)
	}
	log = log.With().Str("record", name).Logger()

	patched, err := p.patchDocument(log, doc)
	if err != nil {
		return fmt.Errorf("catalog: record %q: %w", name, err)
	}
	res.Entries = patched.Modified
	if p.opts.DryRun || !patched.Changed() {
		return nil
	}

	payload := format.EncodeTextAsset(name, patched.Document, rec.Order)
	if err := c.ReplaceRecordPayload(index, payload); err != nil {
		return err
	}
	img, err := c.Repack()
	if err != nil {
		return fmt.Errorf("catalog: repack: %w", err)
	}
	return p.replaceFile(log, res, img)
}
