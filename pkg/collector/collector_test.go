// pkg/collector/collector_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: Real filesystem (t.TempDir) and in-memory afero
// PURPOSE: Test scanning, classification, copying and reporting

package collector

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/wasmstash/pkg/digest"
	"github.com/arthur-debert/wasmstash/pkg/errors"
	"github.com/arthur-debert/wasmstash/pkg/filesystem"
	"github.com/arthur-debert/wasmstash/pkg/testutil"
	"github.com/arthur-debert/wasmstash/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	src  string
	dest string
}

func newEnv(t *testing.T, files map[string][]byte) env {
	t.Helper()
	root := t.TempDir()
	e := env{
		src:  filepath.Join(root, "target", "release"),
		dest: filepath.Join(root, "index", "converters"),
	}
	testutil.WriteArtifacts(t, e.src, files)
	return e
}

func (e env) options() Options {
	opts := DefaultOptions()
	opts.SourceDir = e.src
	opts.DestDir = e.dest
	return opts
}

func sha(t *testing.T, data []byte) string {
	t.Helper()
	sum, err := digest.Sum(digest.SHA256, data)
	require.NoError(t, err)
	return sum
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, "target/wasm32-unknown-unknown/release", opts.SourceDir)
	assert.Equal(t, "fg-index/converters", opts.DestDir)
	assert.Equal(t, "wasm", opts.Extension)
	assert.Equal(t, digest.SHA256, opts.Algorithm)
	assert.True(t, opts.CopyOnNew)
	assert.True(t, opts.ReportSize)
	assert.False(t, opts.StrictSource)
}

func TestNew_NormalizesExtension(t *testing.T) {
	opts := DefaultOptions()
	opts.Extension = ".wasm"
	opts.Algorithm = ""
	c := New(filesystem.NewMemory(), opts)

	assert.Equal(t, "wasm", c.Options().Extension)
	assert.Equal(t, digest.SHA256, c.Options().Algorithm)
	assert.Equal(t, filepath.Join("fg-index/converters", "abc.wasm"), c.EntryPath("abc"))
}

func TestScan(t *testing.T) {
	e := newEnv(t, map[string][]byte{
		"bson.wasm":    []byte("bson"),
		"wasm.wasm":    []byte("wasm"),
		"notes.txt":    []byte("ignore me"),
		"lib.wasm.d":   []byte("dep file"),
		".wasm":        []byte("no stem"),
		"archive.WASM": []byte("case matters"),
	})
	require.NoError(t, os.MkdirAll(filepath.Join(e.src, "deps.wasm"), 0755))

	c := New(filesystem.NewOS(), e.options())
	artifacts, err := c.Scan()
	require.NoError(t, err)

	require.Len(t, artifacts, 2)
	assert.Equal(t, "bson", artifacts[0].Name)
	assert.Equal(t, filepath.Join(e.src, "bson.wasm"), artifacts[0].Path)
	assert.Equal(t, int64(4), artifacts[0].Size)
	assert.Equal(t, "wasm", artifacts[1].Name)
}

func TestScan_MissingSource(t *testing.T) {
	root := t.TempDir()
	opts := DefaultOptions()
	opts.SourceDir = filepath.Join(root, "does-not-exist")
	opts.DestDir = filepath.Join(root, "dest")

	t.Run("lenient_yields_empty", func(t *testing.T) {
		c := New(filesystem.NewOS(), opts)
		artifacts, err := c.Scan()
		require.NoError(t, err)
		assert.Empty(t, artifacts)

		result, err := c.Run(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, result.Entries)
	})

	t.Run("strict_is_an_error", func(t *testing.T) {
		strict := opts
		strict.StrictSource = true
		c := New(filesystem.NewOS(), strict)

		_, err := c.Scan()
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSourceNotFound))
		assert.False(t, errors.IsIOError(err))
	})
}

func TestScan_Symlinks(t *testing.T) {
	e := newEnv(t, map[string][]byte{"real.wasm": []byte("real")})
	elsewhere := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(elsewhere, "deps"), 0755))

	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "deps"), filepath.Join(e.src, "dir.wasm")))
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "gone"), filepath.Join(e.src, "dangling.wasm")))
	require.NoError(t, os.Symlink(filepath.Join(e.src, "real.wasm"), filepath.Join(e.src, "linked.wasm")))

	c := New(filesystem.NewOS(), e.options())
	artifacts, err := c.Scan()
	require.NoError(t, err)

	require.Len(t, artifacts, 2)
	assert.Equal(t, "linked", artifacts[0].Name)
	assert.Equal(t, int64(4), artifacts[0].Size, "size of the link target")
	assert.Equal(t, "real", artifacts[1].Name)

	result, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count(types.StatusNew))
	assert.Equal(t, 1, result.Count(types.StatusOld))
}

func TestRun_StrictMissingSourceLeavesNoStore(t *testing.T) {
	root := t.TempDir()
	opts := DefaultOptions()
	opts.SourceDir = filepath.Join(root, "missing")
	opts.DestDir = filepath.Join(root, "store")
	opts.StrictSource = true
	c := New(filesystem.NewOS(), opts)

	_, err := c.Run(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSourceNotFound))

	_, err = os.Stat(opts.DestDir)
	assert.True(t, os.IsNotExist(err), "a failed scan must not create the store")
}

func TestScan_ReadDirFailure(t *testing.T) {
	fsys := testutil.NewFailingFS(filesystem.NewMemory())
	fsys.ReadDirErr = fs.ErrPermission
	c := New(fsys, DefaultOptions())

	_, err := c.Scan()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDirRead))
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestRun_NewThenOld(t *testing.T) {
	bson := []byte("\x00asm bson converter")
	wasm := []byte("\x00asm wasm printer")
	e := newEnv(t, map[string][]byte{"bson.wasm": bson, "wasm.wasm": wasm})
	c := New(filesystem.NewOS(), e.options())

	var lines []string
	report := func(entry types.Entry) error {
		lines = append(lines, entry.Line(true))
		return nil
	}

	first, err := c.Run(context.Background(), report)
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	for _, entry := range first.Entries {
		assert.Equal(t, types.StatusNew, entry.Status)
		assert.True(t, entry.Written)
	}
	assert.Equal(t, []string{
		"New: bson: " + sha(t, bson) + " (0kb)",
		"New: wasm: " + sha(t, wasm) + " (0kb)",
	}, lines)

	stored, err := os.ReadFile(filepath.Join(e.dest, sha(t, bson)+".wasm"))
	require.NoError(t, err)
	assert.Equal(t, bson, stored, "copy must be byte-identical")

	before := testutil.StoreFiles(t, e.dest)

	lines = nil
	second, err := c.Run(context.Background(), report)
	require.NoError(t, err)
	for _, entry := range second.Entries {
		assert.Equal(t, types.StatusOld, entry.Status)
		assert.False(t, entry.Written)
	}
	assert.Equal(t, 0, second.Count(types.StatusNew))
	assert.Equal(t, 2, second.Count(types.StatusOld))
	assert.True(t, strings.HasPrefix(lines[0], "Old: bson: "))
	assert.Equal(t, before, testutil.StoreFiles(t, e.dest))
}

func TestRun_ContentAddressing(t *testing.T) {
	same := []byte("identical module bytes")
	e := newEnv(t, map[string][]byte{
		"alpha.wasm": same,
		"beta.wasm":  same,
	})
	c := New(filesystem.NewOS(), e.options())

	result, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)

	assert.Equal(t, result.Entries[0].Path, result.Entries[1].Path)
	assert.Equal(t, types.StatusNew, result.Entries[0].Status)
	assert.Equal(t, types.StatusOld, result.Entries[1].Status)
	assert.Equal(t, []string{sha(t, same) + ".wasm"}, testutil.StoreFiles(t, e.dest))
}

func TestRun_EmptyArtifactDigest(t *testing.T) {
	e := newEnv(t, map[string][]byte{"empty.wasm": {}})
	c := New(filesystem.NewOS(), e.options())

	result, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, testutil.EmptyDigest, result.Entries[0].Digest)
	assert.Equal(t, filepath.Join(e.dest, testutil.EmptyDigest+".wasm"), result.Entries[0].Path)
}

func TestRun_SizeReporting(t *testing.T) {
	e := newEnv(t, map[string][]byte{"two.wasm": make([]byte, 2048)})

	t.Run("with_size", func(t *testing.T) {
		c := New(filesystem.NewOS(), e.options())
		result, err := c.Run(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, result.Entries, 1)
		assert.Equal(t, int64(2048), result.Entries[0].Artifact.Size)
		assert.Equal(t, int64(2), result.Entries[0].SizeKiB())
		assert.True(t, strings.HasSuffix(result.Entries[0].Line(result.ReportSize), " (2kb)"))
	})

	t.Run("without_size", func(t *testing.T) {
		opts := e.options()
		opts.ReportSize = false
		c := New(filesystem.NewOS(), opts)
		result, err := c.Run(context.Background(), nil)
		require.NoError(t, err)
		assert.False(t, result.ReportSize)
		assert.NotContains(t, result.Entries[0].Line(result.ReportSize), "kb")
	})
}

func TestRun_CreatesDestinationWithParents(t *testing.T) {
	e := newEnv(t, nil)
	opts := e.options()
	opts.DestDir = filepath.Join(e.dest, "deeply", "nested")
	c := New(filesystem.NewOS(), opts)

	_, err := c.Run(context.Background(), nil)
	require.NoError(t, err)

	info, err := os.Stat(opts.DestDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRun_DryRun(t *testing.T) {
	same := []byte("same")
	e := newEnv(t, map[string][]byte{
		"a.wasm": same,
		"b.wasm": same,
		"c.wasm": []byte("other"),
	})
	opts := e.options()
	opts.CopyOnNew = false
	c := New(filesystem.NewOS(), opts)

	result, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, types.StatusNew, result.Entries[0].Status)
	assert.Equal(t, types.StatusOld, result.Entries[1].Status)
	assert.Equal(t, types.StatusNew, result.Entries[2].Status)
	for _, entry := range result.Entries {
		assert.False(t, entry.Written)
	}

	_, err = os.Stat(e.dest)
	assert.True(t, os.IsNotExist(err), "dry run must not create the store")

	// A second dry run starts fresh
	again, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusNew, again.Entries[0].Status)
}

func TestRun_AlgorithmBlake3(t *testing.T) {
	e := newEnv(t, map[string][]byte{"empty.wasm": {}})
	opts := e.options()
	opts.Algorithm = digest.BLAKE3
	c := New(filesystem.NewOS(), opts)

	result, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", result.Entries[0].Digest)
	assert.Equal(t, digest.BLAKE3, result.Algorithm)
}

func TestRun_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"empty_source", func(o *Options) { o.SourceDir = "" }},
		{"empty_dest", func(o *Options) { o.DestDir = "" }},
		{"empty_extension", func(o *Options) { o.Extension = "" }},
		{"unknown_algorithm", func(o *Options) { o.Algorithm = "crc32" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			c := New(filesystem.NewMemory(), opts)

			_, err := c.Run(context.Background(), nil)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		})
	}
}

func TestRun_IOFailuresAreFatal(t *testing.T) {
	boom := stderrors.New("disk on fire")

	tests := []struct {
		name     string
		fsys     func(types.FS) types.FS
		wantCode errors.ErrorCode
	}{
		{"read_failure", func(base types.FS) types.FS { return &testutil.FailingFS{FS: base, ReadErr: boom} }, errors.ErrFileRead},
		{"write_failure", func(base types.FS) types.FS { return &testutil.FailingFS{FS: base, WriteErr: boom} }, errors.ErrFileWrite},
		{"mkdir_failure", func(base types.FS) types.FS { return &testutil.FailingFS{FS: base, MkdirErr: boom} }, errors.ErrDirCreate},
		{"stat_failure", func(base types.FS) types.FS { return &testutil.FailingFS{FS: base, StatErr: boom} }, errors.ErrFileStat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, map[string][]byte{"a.wasm": []byte("a"), "b.wasm": []byte("b")})
			reported := 0
			c := New(tt.fsys(filesystem.NewOS()), e.options())

			_, err := c.Run(context.Background(), func(types.Entry) error {
				reported++
				return nil
			})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.wantCode), "got %v", err)
			assert.True(t, errors.IsIOError(err))
			assert.ErrorIs(t, err, boom)
			assert.Zero(t, reported, "nothing is reported after a failure")
		})
	}
}

func TestRun_ReportErrorAborts(t *testing.T) {
	e := newEnv(t, map[string][]byte{"a.wasm": []byte("a"), "b.wasm": []byte("b")})
	c := New(filesystem.NewOS(), e.options())
	stop := stderrors.New("stdout closed")

	calls := 0
	result, err := c.Run(context.Background(), func(types.Entry) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
	assert.Len(t, result.Entries, 1)
}

func TestRun_Canceled(t *testing.T) {
	e := newEnv(t, map[string][]byte{"a.wasm": []byte("a")})
	c := New(filesystem.NewOS(), e.options())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Run(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCanceled))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_InMemory(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/src", 0755))
	require.NoError(t, fsys.WriteFile("/src/gcat.wasm", []byte("gcat"), 0644))

	opts := DefaultOptions()
	opts.SourceDir = "/src"
	opts.DestDir = "/store"
	c := New(fsys, opts)

	result, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, types.StatusNew, result.Entries[0].Status)

	data, err := fsys.ReadFile(result.Entries[0].Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("gcat"), data)
}

func TestHash(t *testing.T) {
	e := newEnv(t, map[string][]byte{"empty.wasm": {}})
	c := New(filesystem.NewOS(), e.options())

	var lines []string
	result, err := c.Hash(context.Background(), func(entry types.Entry) error {
		lines = append(lines, entry.HashLine())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hash", result.Command)
	assert.Equal(t, []string{"empty: " + testutil.EmptyDigest}, lines)
	assert.Equal(t, types.EntryStatus(""), result.Entries[0].Status)

	_, err = os.Stat(e.dest)
	assert.True(t, os.IsNotExist(err), "hash must not touch the store")
}
