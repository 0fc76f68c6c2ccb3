package config

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/wasmstash/pkg/collector"
	"github.com/arthur-debert/wasmstash/pkg/digest"
	"github.com/arthur-debert/wasmstash/pkg/errors"
)

// Config is the effective configuration of a run
type Config struct {
	SourceDir    string `koanf:"source_dir" toml:"source_dir"`
	DestDir      string `koanf:"dest_dir" toml:"dest_dir"`
	Extension    string `koanf:"extension" toml:"extension"`
	Algorithm    string `koanf:"algorithm" toml:"algorithm"`
	CopyOnNew    bool   `koanf:"copy_on_new" toml:"copy_on_new"`
	ReportSize   bool   `koanf:"report_size" toml:"report_size"`
	StrictSource bool   `koanf:"strict_source" toml:"strict_source"`
	Format       string `koanf:"format" toml:"format"`
}

var validFormats = map[string]bool{
	"auto": true, "term": true, "terminal": true,
	"text": true, "plain": true, "json": true,
}

// Validate checks the values that cannot be caught by type decoding
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.SourceDir) == "" {
		problems = append(problems, "source_dir must not be empty")
	}
	if strings.TrimSpace(c.DestDir) == "" {
		problems = append(problems, "dest_dir must not be empty")
	}

	ext := strings.TrimPrefix(c.Extension, ".")
	switch {
	case ext == "":
		problems = append(problems, "extension must not be empty")
	case strings.ContainsAny(ext, `/\`):
		problems = append(problems, fmt.Sprintf("extension %q must not contain path separators", c.Extension))
	}

	if !digest.Supported(c.Algorithm) {
		problems = append(problems, fmt.Sprintf("algorithm %q is not one of %s",
			c.Algorithm, strings.Join(digest.Algorithms(), ", ")))
	}
	if !validFormats[strings.ToLower(c.Format)] {
		problems = append(problems, fmt.Sprintf("format %q is not one of auto, term, text, json", c.Format))
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrConfigValid, strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}

// CollectorOptions converts the configuration into collector options
func (c *Config) CollectorOptions() collector.Options {
	return collector.Options{
		SourceDir:    c.SourceDir,
		DestDir:      c.DestDir,
		Extension:    strings.TrimPrefix(c.Extension, "."),
		Algorithm:    strings.ToLower(c.Algorithm),
		CopyOnNew:    c.CopyOnNew,
		ReportSize:   c.ReportSize,
		StrictSource: c.StrictSource,
	}
}
