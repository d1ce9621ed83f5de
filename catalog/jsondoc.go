package catalog

import (
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/joshuapare/catalogkit/catalog/embedded"
	"github.com/joshuapare/catalogkit/internal/writer"
)

func (p *Patcher) patchJSON(log zerolog.Logger, res *Result) error {
	doc, err := os.ReadFile(res.Path)
	if err != nil {
		return err
	}
	res.Before = xxhash.Sum64(doc)
	res.After = res.Before

	patched, err := p.patchDocument(log, doc)
	if err != nil {
		return err
	}
	res.Entries = patched.Modified
	if p.opts.DryRun || !patched.Changed() {
		return nil
	}
	return p.replaceFile(log, res, patched.Document)
}

func (p *Patcher) patchDocument(log zerolog.Logger, doc []byte) (*embedded.Result, error) {
	if p.opts.DryRun {
		return embedded.Inspect(doc, p.embeddedOptions(log))
	}
	return embedded.PatchDocument(doc, p.embeddedOptions(log))
}

// replaceFile backs up the catalog and atomically swaps in contents.
func (p *Patcher) replaceFile(log zerolog.Logger, res *Result, contents []byte) error {
	if err := p.backup(log, res); err != nil {
		return err
	}
	w := &writer.FileWriter{Path: res.Path}
	if err := w.Write(contents); err != nil {
		return err
	}
	res.Modified = true
	res.After = xxhash.Sum64(contents)
	return nil
}
