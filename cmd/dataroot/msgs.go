package dataroot

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Scoped source redirection for dataset types"
	MsgResolveShort    = "Print the effective source directory of a dataset"
	MsgListShort       = "List all configured dataset types"
	MsgListLong        = "List displays every dataset type from the catalog with its effective source directory."
	MsgStageShort      = "Build a synthetic source tree and print its path"
	MsgPruneShort      = "Remove leftover synthetic source trees"
	MsgHashShort       = "Print the BLAKE3 digest of a file in a dataset"
	MsgGenConfigShort  = "Generate a starter configuration file"
	MsgGenConfigLong   = "Output the default configuration with every value commented out.\n\nWith -w the file is written to the config directory (or wherever -o points) unless one already exists there."
	MsgTopicsShort     = "Display available documentation topics"
	MsgTopicsLong      = "Display a list of all available help topics that provide additional documentation beyond command help."
	MsgCompletionShort = "Generate shell completion script"

	MsgGenConfigExample = `  dataroot genconfig                   # Output to stdout
  dataroot genconfig -w                # Write to the config directory
  dataroot genconfig -w -o ./dataroot.toml`

	// Status messages
	MsgOverrideNotice = "note: source overridden by %s\n"
	MsgStagedFormat   = "staged %d entries for dataset '%s'\n"
	MsgConfigWritten  = "Wrote config to %s\n"
	MsgConfigExists   = "Config already exists at %s, not overwriting\n"

	// Error messages
	MsgErrInitPaths    = "failed to initialize paths: %w"
	MsgErrListDatasets = "failed to list datasets: %w"
	MsgErrStageTree    = "failed to stage tree: %w"
	MsgErrPruneTrees   = "failed to prune trees: %w"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig       = "Config file to use instead of the discovered one"
	MsgFlagFormat       = "Output format (text, json or yaml)"
	MsgFlagMappingFile  = "TOML file of dest = \"source\" entries to stage"
	MsgFlagNoLinkOthers = "Do not backfill untouched entries from the default source"
	MsgFlagOlderThan    = "Only prune trees older than this (e.g. 36h); defaults to prune.age"
	MsgFlagDryRun       = "Show what would be removed without removing anything"
	MsgFlagWrite        = "Write config to a file instead of stdout"
	MsgFlagOutput       = "File to write the config to (implies nothing without -w)"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/resolve-long.txt
	msgResolveLongRaw string
	MsgResolveLong    = strings.TrimSpace(msgResolveLongRaw)

	//go:embed msgs/resolve-example.txt
	msgResolveExampleRaw string
	MsgResolveExample    = strings.TrimSpace(msgResolveExampleRaw)

	//go:embed msgs/list-example.txt
	msgListExampleRaw string
	MsgListExample    = strings.TrimSpace(msgListExampleRaw)

	//go:embed msgs/stage-long.txt
	msgStageLongRaw string
	MsgStageLong    = strings.TrimSpace(msgStageLongRaw)

	//go:embed msgs/stage-example.txt
	msgStageExampleRaw string
	MsgStageExample    = strings.TrimSpace(msgStageExampleRaw)

	//go:embed msgs/prune-long.txt
	msgPruneLongRaw string
	MsgPruneLong    = strings.TrimSpace(msgPruneLongRaw)

	//go:embed msgs/prune-example.txt
	msgPruneExampleRaw string
	MsgPruneExample    = strings.TrimSpace(msgPruneExampleRaw)

	//go:embed msgs/hash-long.txt
	msgHashLongRaw string
	MsgHashLong    = strings.TrimSpace(msgHashLongRaw)

	//go:embed msgs/hash-example.txt
	msgHashExampleRaw string
	MsgHashExample    = strings.TrimSpace(msgHashExampleRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
