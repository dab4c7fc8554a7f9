// Package topics adds a topic-based help system to cobra applications.
// Topics are documentation files (plain text or markdown) served through
// "app help <topic>" next to cobra's regular command help, so a binary
// can ship its guides embedded and stay self-documenting.
package topics

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Topic is one help document.
type Topic struct {
	Name    string
	Format  string // file extension, selects the renderer treatment
	Content string
}

// TopicManager serves help topics scanned from a file system.
type TopicManager struct {
	topics       map[string]*Topic
	originalHelp func(*cobra.Command, []string)
	renderer     Renderer
}

// Options configures the TopicManager.
type Options struct {
	// Extensions lists the file extensions served as topics.
	// Defaults to .txt and .md.
	Extensions []string

	// Renderer formats topic content. Defaults to PlainRenderer.
	Renderer Renderer
}

// New scans docs for topic files and returns a manager serving them.
func New(docs fs.FS) (*TopicManager, error) {
	return NewWithOptions(docs, Options{})
}

// NewWithOptions scans docs with custom options.
func NewWithOptions(docs fs.FS, opts Options) (*TopicManager, error) {
	tm := &TopicManager{
		topics:   make(map[string]*Topic),
		renderer: opts.Renderer,
	}
	if tm.renderer == nil {
		tm.renderer = &PlainRenderer{}
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = []string{".txt", ".md"}
	}

	if err := tm.scan(docs, extensions); err != nil {
		return nil, fmt.Errorf("failed to scan topics: %w", err)
	}
	return tm, nil
}

// scan walks the file system and loads every file with a supported
// extension. Subdirectories flatten: the topic name is the base name
// without its extension.
func (tm *TopicManager) scan(docs fs.FS, extensions []string) error {
	return fs.WalkDir(docs, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := path.Ext(p)
		supported := false
		for _, validExt := range extensions {
			if ext == validExt {
				supported = true
				break
			}
		}
		if !supported {
			return nil
		}

		content, err := fs.ReadFile(docs, p)
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(path.Base(p), ext)
		tm.topics[name] = &Topic{
			Name:    name,
			Format:  ext,
			Content: string(content),
		}
		return nil
	})
}

// Topic retrieves a topic by name. Flag-style lookups work too:
// "--format" finds the "format" topic.
func (tm *TopicManager) Topic(name string) (*Topic, bool) {
	name = strings.TrimPrefix(name, "--")
	name = strings.TrimPrefix(name, "-")

	topic, exists := tm.topics[name]
	return topic, exists
}

// Names returns all available topic names, sorted.
func (tm *TopicManager) Names() []string {
	names := make([]string, 0, len(tm.topics))
	for name := range tm.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// render formats one topic for terminal display.
func (tm *TopicManager) render(topic *Topic) string {
	return tm.renderer.Render(topic.Content, topic.Format)
}

// Initialize wires the topic help system into a root command with
// default options.
func Initialize(rootCmd *cobra.Command, docs fs.FS) error {
	return InitializeWithOptions(rootCmd, docs, Options{})
}

// InitializeWithOptions replaces the root command's help command with
// one that also knows the topics found in docs. "app help <topic>"
// prints the rendered topic; anything else falls through to cobra's
// regular help.
func InitializeWithOptions(rootCmd *cobra.Command, docs fs.FS, opts Options) error {
	tm, err := NewWithOptions(docs, opts)
	if err != nil {
		return err
	}

	tm.originalHelp = rootCmd.HelpFunc()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: `Help provides help for any command or topic in the application.
Simply type ` + rootCmd.Name() + ` help [path to command or topic] for full details.

To see all available help topics:
  ` + rootCmd.Name() + ` help topics`,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range rootCmd.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, tm.Names()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				tm.originalHelp(rootCmd, []string{})
				return
			}

			if args[0] == "topics" {
				names := tm.Names()
				if len(names) == 0 {
					fmt.Println("No help topics available.")
					return
				}
				fmt.Println("Available help topics:")
				for _, name := range names {
					fmt.Printf("  %s\n", name)
				}
				fmt.Printf("\nUse '%s help <topic>' to read about a specific topic.\n", rootCmd.Name())
				return
			}

			if topic, exists := tm.Topic(args[0]); exists {
				fmt.Print(tm.render(topic))
				return
			}

			// Not a topic, fall back to command help
			tm.originalHelp(rootCmd, args)
		},
	}

	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "help" {
			rootCmd.RemoveCommand(cmd)
			break
		}
	}
	rootCmd.AddCommand(helpCmd)

	// --help on the root also consults topics first
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			if topic, exists := tm.Topic(args[0]); exists {
				fmt.Print(tm.render(topic))
				return
			}
		}
		tm.originalHelp(cmd, args)
	})

	return nil
}
