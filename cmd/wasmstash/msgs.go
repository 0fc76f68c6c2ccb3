package wasmstash

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Collect plugin binaries into a content-addressed store"
	MsgCollectShort    = "Hash artifacts and copy new ones into the store"
	MsgHashShort       = "Print the digest of every artifact without touching the store"
	MsgVerifyShort     = "Check that every store entry is named by its digest"
	MsgConfigShort     = "Print the effective configuration"
	MsgConfigLong      = "Print the configuration after defaults, config files, environment and flags have been applied."
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgVersionFormat = "wasmstash version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrLoadConfig = "failed to load configuration: %w"
	MsgErrRenderer   = "failed to create renderer: %w"
	MsgErrMismatch   = "%d store entries do not match their digest"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig    = "Config file (default: ./wasmstash.toml)"
	MsgFlagFormat    = "Output format: auto, term, text, json"
	MsgFlagSource    = "Directory scanned for artifacts"
	MsgFlagDest      = "Content-addressed store directory"
	MsgFlagExt       = "Artifact extension"
	MsgFlagAlgorithm = "Digest algorithm: sha256, blake3"
	MsgFlagStrict    = "Fail when the source directory does not exist"
	MsgFlagDryRun    = "Classify artifacts without writing anything"
	MsgFlagNoSize    = "Do not report artifact sizes"
	MsgFlagDefaults  = "Print a commented template of every setting instead"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/collect-long.txt
	msgCollectLongRaw string
	MsgCollectLong    = strings.TrimSpace(msgCollectLongRaw)

	//go:embed msgs/verify-long.txt
	msgVerifyLongRaw string
	MsgVerifyLong    = strings.TrimSpace(msgVerifyLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
