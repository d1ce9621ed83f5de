package catalog

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/joshuapare/catalogkit/catalog/dirty"
	"github.com/joshuapare/catalogkit/catalog/graph"
	"github.com/joshuapare/catalogkit/catalog/inplace"
	"github.com/joshuapare/catalogkit/catalog/stream"
	"github.com/joshuapare/catalogkit/internal/format"
	"github.com/joshuapare/catalogkit/internal/mmfile"
)

// patchBinary walks the whole graph over the mapped file, then zeroes the
// planned words in place and flushes the touched pages.
func (p *Patcher) patchBinary(ctx context.Context, log zerolog.Logger, res *Result) error {
	if p.opts.DryRun {
		data, unmap, err := mmfile.Map(res.Path)
		if err != nil {
			return err
		}
		defer unmap()
		plan, err := p.plan(log, data)
		if err != nil {
			return err
		}
		res.Version, res.Fields = plan.Version, plan.Fields
		res.Before = xxhash.Sum64(data)
		res.After = res.Before
		return nil
	}

	m, err := mmfile.OpenRW(res.Path)
	if err != nil {
		return err
	}
	defer m.Close()
	data := m.Bytes()
	res.Before = xxhash.Sum64(data)
	res.After = res.Before

	plan, err := p.plan(log, data)
	if err != nil {
		return err
	}
	res.Version = plan.Version
	if plan.Empty() {
		return nil
	}

	tracker := dirty.NewTracker(int64(os.Getpagesize()))
	ip := inplace.New(data, plan.Order, tracker)
	ip.BeforeWrite = func() error { return p.backup(log, res) }
	if _, err := ip.Apply(plan); err != nil {
		return err
	}
	if !ip.Wrote() {
		return nil
	}
	res.Fields = plan.Fields
	if err := tracker.Flush(ctx, m); err != nil {
		return fmt.Errorf("catalog: flush: %w", err)
	}
	res.Modified = true
	res.After = xxhash.Sum64(data)
	for _, f := range res.Fields {
		log.Debug().Int64("offset", f.Offset).Int32("old", f.Value).Msg("checksum zeroed")
	}
	return nil
}

func (p *Patcher) plan(log zerolog.Logger, data []byte) (*graph.Plan, error) {
	order, ok := format.DetectBinaryOrder(data)
	if !ok {
		return nil, fmt.Errorf("catalog: binary magic: %w", format.ErrSignatureMismatch)
	}
	r := stream.New(bytes.NewReader(data), int64(len(data)), order)
	return graph.NewWalker(r, graph.Options{
		Logger:              log,
		StrictProviderMatch: p.opts.StrictProviderMatch,
	}).Walk()
}
