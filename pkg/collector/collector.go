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
	"github.com/arthur-debert/wasmstash/pkg/logging"
	"github.com/arthur-debert/wasmstash/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// DefaultSourceDir is where cargo leaves wasm32 release builds
	DefaultSourceDir = "target/wasm32-unknown-unknown/release"

	// DefaultDestDir is the plugin index the host loads <hash>.wasm from
	DefaultDestDir = "fg-index/converters"

	// DefaultExtension is the artifact extension, without the dot
	DefaultExtension = "wasm"

	dirPerm  fs.FileMode = 0755
	filePerm fs.FileMode = 0644
)

// Options configures a single collector run.
type Options struct {
	SourceDir string
	DestDir   string
	Extension string
	Algorithm string

	// CopyOnNew copies unseen artifacts into DestDir. When false the run
	// only classifies and nothing on disk changes.
	CopyOnNew bool

	// ReportSize adds "(<KiB>kb)" to report lines.
	ReportSize bool

	// StrictSource turns a missing SourceDir into an error instead of an
	// empty run.
	StrictSource bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SourceDir:  DefaultSourceDir,
		DestDir:    DefaultDestDir,
		Extension:  DefaultExtension,
		Algorithm:  digest.SHA256,
		CopyOnNew:  true,
		ReportSize: true,
	}
}

// ReportFunc receives each entry as soon as it has been handled. Returning
// an error aborts the run.
type ReportFunc func(types.Entry) error

// Collector scans, hashes and stores artifacts.
type Collector struct {
	fs     types.FS
	opts   Options
	logger zerolog.Logger

	// planned holds digests a dry run would have written, so a duplicate
	// later in the same run is still reported as Old.
	planned map[string]struct{}
}

// New creates a Collector working on fs.
func New(fs types.FS, opts Options) *Collector {
	opts.Extension = strings.TrimPrefix(opts.Extension, ".")
	if opts.Algorithm == "" {
		opts.Algorithm = digest.SHA256
	}
	return &Collector{
		fs:      fs,
		opts:    opts,
		logger:  logging.GetLogger("collector"),
		planned: make(map[string]struct{}),
	}
}

// Options returns the normalized options of the collector.
func (c *Collector) Options() Options {
	return c.opts
}

func (c *Collector) validate() error {
	if c.opts.SourceDir == "" {
		return errors.New(errors.ErrInvalidInput, "source directory is empty")
	}
	if c.opts.CopyOnNew && c.opts.DestDir == "" {
		return errors.New(errors.ErrInvalidInput, "destination directory is empty")
	}
	if c.opts.Extension == "" {
		return errors.New(errors.ErrInvalidInput, "artifact extension is empty")
	}
	if !digest.Supported(c.opts.Algorithm) {
		return errors.Newf(errors.ErrInvalidInput, "unknown digest algorithm %q", c.opts.Algorithm)
	}
	return nil
}

// Scan lists the artifacts directly under the source directory, in
// directory-listing order. Subdirectories are not descended into.
func (c *Collector) Scan() ([]types.Artifact, error) {
	entries, err := c.fs.ReadDir(c.opts.SourceDir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			if c.opts.StrictSource {
				return nil, errors.Wrapf(err, errors.ErrSourceNotFound, "source directory %s does not exist", c.opts.SourceDir).
					WithDetail("path", c.opts.SourceDir)
			}
			c.logger.Warn().Str("source", c.opts.SourceDir).Msg("Source directory does not exist, nothing to collect")
			return []types.Artifact{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrDirRead, "failed to read source directory %s", c.opts.SourceDir).
			WithDetail("path", c.opts.SourceDir)
	}

	suffix := "." + c.opts.Extension
	artifacts := make([]types.Artifact, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, suffix) {
			continue
		}
		stem := strings.TrimSuffix(name, suffix)
		if stem == "" {
			continue
		}

		path := filepath.Join(c.opts.SourceDir, name)
		info, err := c.regularFile(path, entry)
		if err != nil {
			return nil, err
		}
		if info == nil {
			continue
		}
		artifacts = append(artifacts, types.Artifact{
			Name: stem,
			Path: path,
			Size: info.Size(),
		})
	}

	c.logger.Debug().
		Str("source", c.opts.SourceDir).
		Int("artifacts", len(artifacts)).
		Msg("Scanned source directory")
	return artifacts, nil
}

// regularFile resolves a listed entry, following symlinks. It returns nil
// info for anything that is not a regular file, including dangling links.
func (c *Collector) regularFile(path string, entry fs.DirEntry) (fs.FileInfo, error) {
	var (
		info fs.FileInfo
		err  error
	)
	if entry.Type()&fs.ModeSymlink != 0 {
		info, err = c.fs.Stat(path)
	} else {
		info, err = entry.Info()
	}
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			c.logger.Debug().Str("path", path).Msg("Skipping dangling entry")
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileStat, "failed to stat %s", path).
			WithDetail("path", path)
	}
	if !info.Mode().IsRegular() {
		c.logger.Debug().Str("path", path).Str("mode", info.Mode().String()).Msg("Skipping non-regular file")
		return nil, nil
	}
	return info, nil
}

// EntryPath returns the store path for a digest.
func (c *Collector) EntryPath(sum string) string {
	return filepath.Join(c.opts.DestDir, sum+"."+c.opts.Extension)
}

// read loads an artifact and resolves its digest and store path.
func (c *Collector) read(a types.Artifact) (types.Entry, []byte, error) {
	data, err := c.fs.ReadFile(a.Path)
	if err != nil {
		return types.Entry{}, nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read artifact %s", a.Path).
			WithDetail("path", a.Path)
	}
	sum, err := digest.Sum(c.opts.Algorithm, data)
	if err != nil {
		return types.Entry{}, nil, err
	}

	a.Size = int64(len(data))
	return types.Entry{
		Artifact: a,
		Digest:   sum,
		Path:     c.EntryPath(sum),
	}, data, nil
}

// Collect handles a single artifact: it is reported Old when its store
// entry exists, otherwise it is copied (unless CopyOnNew is off) and
// reported New.
func (c *Collector) Collect(a types.Artifact) (types.Entry, error) {
	entry, data, err := c.read(a)
	if err != nil {
		return types.Entry{}, err
	}

	_, err = c.fs.Stat(entry.Path)
	switch {
	case err == nil:
		entry.Status = types.StatusOld
		return entry, nil
	case !stderrors.Is(err, fs.ErrNotExist):
		return types.Entry{}, errors.Wrapf(err, errors.ErrFileStat, "failed to check store entry %s", entry.Path).
			WithDetail("path", entry.Path)
	}

	if !c.opts.CopyOnNew {
		if _, seen := c.planned[entry.Digest]; seen {
			entry.Status = types.StatusOld
		} else {
			c.planned[entry.Digest] = struct{}{}
			entry.Status = types.StatusNew
		}
		return entry, nil
	}

	if err := c.fs.WriteFile(entry.Path, data, filePerm); err != nil {
		if stderrors.Is(err, fs.ErrExist) {
			// Someone else stored the same content since the Stat.
			entry.Status = types.StatusOld
			return entry, nil
		}
		return types.Entry{}, errors.Wrapf(err, errors.ErrFileWrite, "failed to write store entry %s", entry.Path).
			WithDetail("path", entry.Path).
			WithDetail("artifact", a.Path)
	}

	entry.Status = types.StatusNew
	entry.Written = true
	return entry, nil
}

// Run performs a full collection pass. The destination directory is
// created (with parents) after the scan and before any artifact is
// processed. Entries are passed to report in processing order; the first
// error ends the run.
func (c *Collector) Run(ctx context.Context, report ReportFunc) (*types.Result, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	done := logging.LogOperationStart(c.logger, "collect")
	defer done()

	c.planned = make(map[string]struct{})
	result := &types.Result{
		Command:    "collect",
		SourceDir:  c.opts.SourceDir,
		DestDir:    c.opts.DestDir,
		Algorithm:  c.opts.Algorithm,
		DryRun:     !c.opts.CopyOnNew,
		ReportSize: c.opts.ReportSize,
		Entries:    []types.Entry{},
		Timestamp:  time.Now(),
	}

	// A failed scan leaves no empty store behind
	artifacts, err := c.Scan()
	if err != nil {
		return nil, err
	}

	if c.opts.CopyOnNew {
		if err := c.fs.MkdirAll(c.opts.DestDir, dirPerm); err != nil {
			return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create destination directory %s", c.opts.DestDir).
				WithDetail("path", c.opts.DestDir)
		}
	}

	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, errors.ErrCanceled, "collection canceled")
		}

		entry, err := c.Collect(a)
		if err != nil {
			return result, err
		}
		result.Entries = append(result.Entries, entry)

		c.logger.Info().
			Str("artifact", entry.Artifact.Name).
			Str("digest", entry.Digest).
			Str("status", string(entry.Status)).
			Bool("written", entry.Written).
			Msg("Artifact handled")

		if report != nil {
			if err := report(entry); err != nil {
				return result, err
			}
		}
	}

	c.logger.Info().
		Int("new", result.Count(types.StatusNew)).
		Int("old", result.Count(types.StatusOld)).
		Msg("Collection finished")
	return result, nil
}

// Hash digests every artifact without looking at the store.
func (c *Collector) Hash(ctx context.Context, report ReportFunc) (*types.Result, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	result := &types.Result{
		Command:   "hash",
		SourceDir: c.opts.SourceDir,
		Algorithm: c.opts.Algorithm,
		Entries:   []types.Entry{},
		Timestamp: time.Now(),
	}

	artifacts, err := c.Scan()
	if err != nil {
		return nil, err
	}

	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, errors.ErrCanceled, "hashing canceled")
		}

		entry, _, err := c.read(a)
		if err != nil {
			return result, err
		}
		result.Entries = append(result.Entries, entry)

		if report != nil {
			if err := report(entry); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}
