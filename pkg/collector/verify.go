package collector

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/wasmstash/pkg/digest"
	"github.com/arthur-debert/wasmstash/pkg/errors"
	"github.com/arthur-debert/wasmstash/pkg/types"
)

// Verify re-hashes every entry in the destination directory and reports
// those whose name differs from their content digest. Files with the
// artifact extension that are not named by a digest are listed as foreign
// and not hashed. Nothing is changed on disk. A missing store verifies as
// empty.
func (c *Collector) Verify(ctx context.Context) (*types.VerifyResult, error) {
	if c.opts.DestDir == "" {
		return nil, errors.New(errors.ErrInvalidInput, "destination directory is empty")
	}
	if !digest.Supported(c.opts.Algorithm) {
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown digest algorithm %q", c.opts.Algorithm)
	}

	result := &types.VerifyResult{
		DestDir:    c.opts.DestDir,
		Algorithm:  c.opts.Algorithm,
		Mismatches: []types.Mismatch{},
		Foreign:    []string{},
		Timestamp:  time.Now(),
	}

	entries, err := c.fs.ReadDir(c.opts.DestDir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return nil, errors.Wrapf(err, errors.ErrDirRead, "failed to read store %s", c.opts.DestDir).
			WithDetail("path", c.opts.DestDir)
	}

	suffix := "." + c.opts.Extension
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, errors.ErrCanceled, "verification canceled")
		}

		path := filepath.Join(c.opts.DestDir, entry.Name())
		info, err := c.regularFile(path, entry)
		if err != nil {
			return nil, err
		}
		if info == nil {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), suffix)
		if !digest.Valid(name) {
			c.logger.Debug().Str("path", path).Msg("Store file is not named by a digest")
			result.Foreign = append(result.Foreign, path)
			continue
		}

		data, err := c.fs.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read store entry %s", path).
				WithDetail("path", path)
		}
		sum, err := digest.Sum(c.opts.Algorithm, data)
		if err != nil {
			return nil, err
		}

		result.Checked++
		if name != sum {
			c.logger.Warn().Str("path", path).Str("digest", sum).Msg("Store entry does not match its content")
			result.Mismatches = append(result.Mismatches, types.Mismatch{
				Path:   path,
				Name:   name,
				Digest: sum,
			})
		}
	}

	return result, nil
}
