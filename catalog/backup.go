package catalog

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joshuapare/catalogkit/internal/writer"
)

// backup copies the catalog to its backup path, overwriting an older backup.
// It runs at most once per Result.
func (p *Patcher) backup(log zerolog.Logger, res *Result) error {
	if res.Backup != "" {
		return nil
	}
	dst := res.Path + p.opts.BackupSuffix
	if err := writer.CopyFile(res.Path, dst); err != nil {
		return fmt.Errorf("catalog: backup: %w", err)
	}
	res.Backup = dst
	log.Info().Str("backup", dst).Msg("backup created")
	return nil
}
