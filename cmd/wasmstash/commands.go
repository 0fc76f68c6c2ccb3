package wasmstash

import (
	"fmt"

	"github.com/arthur-debert/wasmstash/internal/version"
	"github.com/arthur-debert/wasmstash/pkg/collector"
	"github.com/arthur-debert/wasmstash/pkg/config"
	"github.com/arthur-debert/wasmstash/pkg/errors"
	"github.com/arthur-debert/wasmstash/pkg/filesystem"
	"github.com/arthur-debert/wasmstash/pkg/logging"
	"github.com/arthur-debert/wasmstash/pkg/types"
	"github.com/arthur-debert/wasmstash/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalOptions holds the values bound to the persistent flags
type globalOptions struct {
	verbosity  int
	configFile string
	format     string
	source     string
	dest       string
	ext        string
	algorithm  string
	strict     bool
	dryRun     bool
	noSize     bool

	// outputFormat is the format from the loaded config, used to render
	// errors once loading has succeeded
	outputFormat string

	// fs is swapped in tests
	fs types.FS
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(filesystem.NewOS())
}

func newRootCmd(fs types.FS) *cobra.Command {
	opts := &globalOptions{fs: fs}

	rootCmd := &cobra.Command{
		Use:     "wasmstash",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		Args: cobra.NoArgs,
		RunE: withErrorRendering(opts, func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, opts)
		}),
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVarP(&opts.configFile, "config", "c", "", MsgFlagConfig)
	flags.StringVarP(&opts.format, "format", "f", "auto", MsgFlagFormat)
	flags.StringVarP(&opts.source, "source", "s", collector.DefaultSourceDir, MsgFlagSource)
	flags.StringVarP(&opts.dest, "dest", "d", collector.DefaultDestDir, MsgFlagDest)
	flags.StringVar(&opts.ext, "ext", collector.DefaultExtension, MsgFlagExt)
	flags.StringVar(&opts.algorithm, "algorithm", "sha256", MsgFlagAlgorithm)
	flags.BoolVar(&opts.strict, "strict", false, MsgFlagStrict)

	// Collect flags also live on the root since it collects by default
	addCollectFlags(rootCmd, opts)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	rootCmd.AddCommand(newCollectCmd(opts))
	rootCmd.AddCommand(newHashCmd(opts))
	rootCmd.AddCommand(newVerifyCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func addCollectFlags(cmd *cobra.Command, opts *globalOptions) {
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&opts.noSize, "no-size", false, MsgFlagNoSize)
}

// loadConfig layers the explicitly set flags over files and environment
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	overrides := map[string]interface{}{}
	flags := cmd.Flags()

	if flags.Changed("source") {
		overrides["source_dir"] = opts.source
	}
	if flags.Changed("dest") {
		overrides["dest_dir"] = opts.dest
	}
	if flags.Changed("ext") {
		overrides["extension"] = opts.ext
	}
	if flags.Changed("algorithm") {
		overrides["algorithm"] = opts.algorithm
	}
	if flags.Changed("strict") {
		overrides["strict_source"] = opts.strict
	}
	if flags.Changed("format") {
		overrides["format"] = opts.format
	}
	if flags.Changed("dry-run") {
		overrides["copy_on_new"] = !opts.dryRun
	}
	if flags.Changed("no-size") {
		overrides["report_size"] = !opts.noSize
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: opts.configFile,
		Overrides:  overrides,
	})
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}

	opts.outputFormat = cfg.Format

	log.Debug().
		Str("source", cfg.SourceDir).
		Str("dest", cfg.DestDir).
		Str("ext", cfg.Extension).
		Bool("copyOnNew", cfg.CopyOnNew).
		Msg("Configuration loaded")
	return cfg, nil
}

func newRenderer(cmd *cobra.Command, cfg *config.Config) (ui.Renderer, error) {
	format, err := ui.ParseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf(MsgErrRenderer, err)
	}
	renderer, err := ui.NewRenderer(format, cmd.OutOrStdout())
	if err != nil {
		return nil, fmt.Errorf(MsgErrRenderer, err)
	}
	return renderer, nil
}

// RenderedError marks an error that has already been written to stderr
type RenderedError struct {
	Err error
}

func (e *RenderedError) Error() string { return e.Err.Error() }
func (e *RenderedError) Unwrap() error { return e.Err }

// withErrorRendering writes a failing command's error to stderr in the
// configured output format. Before the config has loaded the --format flag
// is used.
func withErrorRendering(opts *globalOptions, run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		opts.outputFormat = ""
		err := run(cmd, args)
		if err == nil {
			return nil
		}

		name := opts.outputFormat
		if name == "" {
			name = opts.format
		}
		format, perr := ui.ParseFormat(name)
		if perr != nil {
			format = ui.FormatText
		}
		renderer, rerr := ui.NewRenderer(format, cmd.ErrOrStderr())
		if rerr != nil {
			return err
		}
		if rerr := renderer.RenderError(err); rerr != nil {
			log.Debug().Err(rerr).Msg("Failed to render error")
			return err
		}
		return &RenderedError{Err: err}
	}
}

func runCollect(cmd *cobra.Command, opts *globalOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cmd, cfg)
	if err != nil {
		return err
	}

	c := collector.New(opts.fs, cfg.CollectorOptions())
	result, err := c.Run(cmd.Context(), func(entry types.Entry) error {
		return renderer.RenderEntry(entry, cfg.ReportSize)
	})
	if err != nil {
		return err
	}
	return renderer.RenderResult(result)
}

func newCollectCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collect",
		Short:   MsgCollectShort,
		Long:    MsgCollectLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: withErrorRendering(opts, func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, opts)
		}),
	}
	addCollectFlags(cmd, opts)
	return cmd
}

func newHashCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "hash",
		Short:   MsgHashShort,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: withErrorRendering(opts, func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			renderer, err := newRenderer(cmd, cfg)
			if err != nil {
				return err
			}

			c := collector.New(opts.fs, cfg.CollectorOptions())
			result, err := c.Hash(cmd.Context(), func(entry types.Entry) error {
				return renderer.RenderEntry(entry, false)
			})
			if err != nil {
				return err
			}
			return renderer.RenderResult(result)
		}),
	}
}

func newVerifyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "verify",
		Short:   MsgVerifyShort,
		Long:    MsgVerifyLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: withErrorRendering(opts, func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			renderer, err := newRenderer(cmd, cfg)
			if err != nil {
				return err
			}

			c := collector.New(opts.fs, cfg.CollectorOptions())
			result, err := c.Verify(cmd.Context())
			if err != nil {
				return err
			}
			if err := renderer.RenderResult(result); err != nil {
				return err
			}
			if !result.OK() {
				return errors.Newf(errors.ErrStoreMismatch, MsgErrMismatch, len(result.Mismatches)).
					WithDetail("path", result.DestDir)
			}
			return nil
		}),
	}
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: withErrorRendering(opts, func(cmd *cobra.Command, args []string) error {
			if defaults {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GenerateConfigContent())
				return err
			}

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			out, err := cfg.TOML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}),
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
