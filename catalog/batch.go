package catalog

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// PatchAll patches independent catalogs concurrently with at most workers
// files in flight (GOMAXPROCS when workers < 1). Results line up with paths;
// a failed path leaves its slot as returned by PatchFile. Errors of all
// paths are joined.
func (p *Patcher) PatchAll(ctx context.Context, paths []string, workers int) ([]*Result, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]*Result, len(paths))
	wp := pool.New().WithMaxGoroutines(workers).WithContext(ctx)
	for i, path := range paths {
		wp.Go(func(ctx context.Context) error {
			res, err := p.PatchFile(ctx, path)
			results[i] = res
			return err
		})
	}
	return results, wp.Wait()
}
