package dataroot

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/datawerks/dataroot/internal/version"
	"github.com/datawerks/dataroot/pkg/catalog"
	"github.com/datawerks/dataroot/pkg/cobrax/topics"
	"github.com/datawerks/dataroot/pkg/commands/genconfig"
	"github.com/datawerks/dataroot/pkg/commands/hash"
	"github.com/datawerks/dataroot/pkg/commands/list"
	"github.com/datawerks/dataroot/pkg/commands/prune"
	"github.com/datawerks/dataroot/pkg/commands/resolve"
	"github.com/datawerks/dataroot/pkg/commands/stage"
	"github.com/datawerks/dataroot/pkg/config"
	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/logging"
	"github.com/datawerks/dataroot/pkg/paths"
	"github.com/datawerks/dataroot/pkg/style"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	var (
		verbosity  int
		configFile string
	)

	rootCmd := &cobra.Command{
		Use:     "dataroot",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand given: show help but exit nonzero
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", MsgFlagConfig)

	// Disable automatic help command (we'll use our custom one from topics)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	// Set custom help template
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	// Add all commands
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newStageCmd())
	rootCmd.AddCommand(newPruneCmd())
	rootCmd.AddCommand(newHashCmd())
	rootCmd.AddCommand(newGenConfigCmd())
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newCompletionCmd())

	// Initialize topic-based help system from the embedded docs
	opts := topics.Options{
		Renderer: topics.NewGlamourRenderer(),
	}
	if err := topics.InitializeWithOptions(rootCmd, docsFS(), opts); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

// loadConfig loads the dataroot configuration: the file named by
// --config when given, the discovered config file otherwise.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Root().PersistentFlags().GetString("config")
	if configFile == "" {
		p, err := paths.New()
		if err != nil {
			return nil, fmt.Errorf(MsgErrInitPaths, err)
		}
		configFile = p.ConfigFilePath()
	}
	return config.Load(configFile)
}

// loadCatalog loads the configuration and builds the dataset catalog
// from it.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.FromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cat, cfg, nil
}

// datasetNamesCompletion provides shell completion for dataset type names
func datasetNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cat, _, err := loadCatalog(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return cat.Names(), cobra.ShellCompDirectiveNoFileComp
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "resolve <dataset>",
		Short:             MsgResolveShort,
		Long:              MsgResolveLong,
		Example:           MsgResolveExample,
		Args:              cobra.ExactArgs(1),
		GroupID:           "core",
		ValidArgsFunction: datasetNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := loadCatalog(cmd)
			if err != nil {
				return err
			}

			result, err := resolve.ResolveSource(resolve.Options{
				Catalog: cat,
				Dataset: args[0],
			})
			if err != nil {
				return err
			}

			// Only the path on stdout so scripts can capture it
			fmt.Println(result.Source)
			if result.Override {
				fmt.Fprintf(os.Stderr, MsgOverrideNotice, paths.SourceEnvVar(result.Dataset))
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		Long:    MsgListLong,
		Example: MsgListExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := loadCatalog(cmd)
			if err != nil {
				return err
			}

			result, err := list.ListDatasets(list.Options{Catalog: cat})
			if err != nil {
				return fmt.Errorf(MsgErrListDatasets, err)
			}

			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "json":
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			case "yaml":
				out, err := yaml.Marshal(result)
				if err != nil {
					return err
				}
				fmt.Print(string(out))
			case "text":
				rows := make([]style.DatasetRow, len(result.Datasets))
				for i, ds := range result.Datasets {
					rows[i] = style.DatasetRow{
						Name:     ds.Name,
						Source:   ds.Source,
						Override: ds.Override,
						Exists:   ds.Exists,
					}
				}
				renderer := style.NewTerminalRenderer()
				fmt.Println(renderer.RenderDatasetList(rows))
			default:
				return errors.Newf(errors.ErrInvalidInput,
					"unknown format %q (want text, json or yaml)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "text", MsgFlagFormat)
	return cmd
}

func newStageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "stage <dataset> [dest=source...]",
		Short:             MsgStageShort,
		Long:              MsgStageLong,
		Example:           MsgStageExample,
		Args:              cobra.MinimumNArgs(1),
		GroupID:           "core",
		ValidArgsFunction: datasetNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, cfg, err := loadCatalog(cmd)
			if err != nil {
				return err
			}

			mappingFile, _ := cmd.Flags().GetString("mapping-file")
			noLinkOthers, _ := cmd.Flags().GetBool("no-link-others")

			result, err := stage.StageTree(stage.Options{
				Catalog:     cat,
				Dataset:     args[0],
				Pairs:       args[1:],
				MappingFile: mappingFile,
				LinkOthers:  !noLinkOthers,
				Fallback:    cfg.Link.Fallback,
			})
			if err != nil {
				return fmt.Errorf(MsgErrStageTree, err)
			}

			// Only the tree path on stdout: the command exists to be
			// captured, e.g. DATAROOT_SRC_TAU=$(dataroot stage Tau ...)
			fmt.Println(result.TreePath)
			fmt.Fprintf(os.Stderr, MsgStagedFormat, result.Entries, result.Dataset)
			return nil
		},
	}

	cmd.Flags().StringP("mapping-file", "m", "", MsgFlagMappingFile)
	cmd.Flags().Bool("no-link-others", false, MsgFlagNoLinkOthers)
	return cmd
}

func newPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prune",
		Short:   MsgPruneShort,
		Long:    MsgPruneLong,
		Example: MsgPruneExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			olderThan := cfg.Prune.Age
			if raw, _ := cmd.Flags().GetString("older-than"); raw != "" {
				olderThan, err = time.ParseDuration(raw)
				if err != nil {
					return errors.Wrapf(err, errors.ErrInvalidInput,
						"invalid --older-than value %q", raw)
				}
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			result, err := prune.PruneTrees(prune.Options{
				OlderThan: olderThan,
				DryRun:    dryRun,
			})
			if err != nil {
				return fmt.Errorf(MsgErrPruneTrees, err)
			}

			renderer := style.NewTerminalRenderer()
			fmt.Println(renderer.RenderPrune(style.PruneView{
				Removed: result.Removed,
				Kept:    result.Kept,
				DryRun:  result.DryRun,
			}))
			return nil
		},
	}

	cmd.Flags().String("older-than", "", MsgFlagOlderThan)
	cmd.Flags().Bool("dry-run", false, MsgFlagDryRun)
	return cmd
}

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "hash <dataset> <path>",
		Short:             MsgHashShort,
		Long:              MsgHashLong,
		Example:           MsgHashExample,
		Args:              cobra.ExactArgs(2),
		GroupID:           "core",
		ValidArgsFunction: datasetNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := loadCatalog(cmd)
			if err != nil {
				return err
			}

			result, err := hash.HashFile(hash.Options{
				Catalog: cat,
				Dataset: args[0],
				RelPath: args[1],
			})
			if err != nil {
				return err
			}

			// b2sum-style output
			fmt.Printf("%s  %s\n", result.Digest, result.Path)
			return nil
		},
	}
}

func newGenConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		Example: MsgGenConfigExample,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			write, _ := cmd.Flags().GetBool("write")
			output, _ := cmd.Flags().GetString("output")

			result, err := genconfig.GenConfig(genconfig.Options{
				Write: write,
				Path:  output,
			})
			if err != nil {
				return err
			}

			if !write {
				fmt.Print(result.Content)
				return nil
			}
			if result.Written {
				fmt.Fprintf(os.Stderr, MsgConfigWritten, result.Path)
			} else {
				fmt.Fprintf(os.Stderr, MsgConfigExists, result.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolP("write", "w", false, MsgFlagWrite)
	cmd.Flags().StringP("output", "o", "", MsgFlagOutput)
	return cmd
}

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgTopicsShort,
		Long:    MsgTopicsLong,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Find the help command and execute it with "topics" argument
			if helpCmd, _, err := cmd.Root().Find([]string{"help"}); err == nil {
				if helpCmd.RunE != nil {
					return helpCmd.RunE(helpCmd, []string{"topics"})
				} else if helpCmd.Run != nil {
					helpCmd.Run(helpCmd, []string{"topics"})
					return nil
				}
			}
			return fmt.Errorf("help command not found")
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
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}
