// Package cli implements the html2md command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mattn/html2md"
	"github.com/mattn/html2md/internal/config"
	"github.com/mattn/html2md/internal/logger"
	"github.com/mattn/html2md/internal/sink"
	"github.com/mattn/html2md/internal/source"
)

type flags struct {
	configPath  string
	verbose     bool
	ignore      []string
	spacing     string
	alignTables bool
	blankLines  bool
	directRows  bool
	maxDepth    int

	url      string
	str      string
	output   string
	encoding string
}

// NewRootCommand returns the html2md command with its subcommands.
func NewRootCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "html2md [input]",
		Short: "Convert HTML to Markdown",
		Long: `Reads HTML from a file, standard input ("-" or no argument), a string
or a URL and prints its text as Markdown: headings, emphasis, links, lists
and tables. Malformed markup is recovered silently.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, f)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "TOML config file")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Print diagnostics to stderr")
	pf.StringSliceVar(&f.ignore, "ignore", nil, "Tags to skip with their content (replaces the default set)")
	pf.StringVar(&f.spacing, "spacing", "separated", "Blank line convention: separated or compact")
	pf.BoolVar(&f.alignTables, "align-tables", false, "Pad table cells to equal column widths")
	pf.BoolVar(&f.blankLines, "blank-lines", false, "Keep one blank line between blocks")
	pf.BoolVar(&f.directRows, "direct-rows", false, "Read only table rows outside thead, tbody and tfoot")
	pf.IntVar(&f.maxDepth, "max-depth", html2md.DefaultMaxDepth, "Maximum element nesting depth")

	fl := cmd.Flags()
	fl.StringVarP(&f.url, "url", "u", "", "URL to fetch")
	fl.StringVarP(&f.str, "string", "s", "", "HTML string, or a path to an HTML file")
	fl.StringVarP(&f.output, "output", "o", "", "Write to this file instead of stdout")
	fl.StringVar(&f.encoding, "encoding", "", "Output encoding (default utf-8)")

	cmd.AddCommand(newServeCommand(f))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig layers defaults, the config file, the environment and then
// any flag given on the command line.
func loadConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(f.configPath); err != nil {
			return cfg, err
		}
		logger.Debug("loaded config from %s", f.configPath)
	}
	cfg.ApplyEnv()

	changed := cmd.Flags().Changed
	if changed("ignore") {
		cfg.IgnoredTags = f.ignore
		if cfg.IgnoredTags == nil {
			cfg.IgnoredTags = []string{}
		}
	}
	if changed("spacing") {
		cfg.Spacing = f.spacing
	}
	if changed("align-tables") {
		cfg.AlignTables = f.alignTables
	}
	if changed("blank-lines") {
		cfg.BlankLines = f.blankLines
	}
	if changed("direct-rows") {
		cfg.DirectRows = f.directRows
	}
	if changed("max-depth") {
		cfg.MaxDepth = f.maxDepth
	}
	if changed("encoding") {
		cfg.Encoding = f.encoding
	}
	return cfg, cfg.Validate()
}

func runConvert(cmd *cobra.Command, args []string, f *flags) error {
	logger.SetVerbose(f.verbose)

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	opt, err := cfg.Option()
	if err != nil {
		return err
	}

	doc, err := readInput(cmd, args, f, cfg)
	if err != nil {
		return err
	}

	root, err := html2md.Parse(strings.NewReader(doc), opt)
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	dumpTree(root, 3)

	text := html2md.Extract(root, opt)
	logger.Info("converted %d bytes of HTML into %d bytes of Markdown", len(doc), len(text))

	if f.output != "" {
		if err := sink.WriteFile(f.output, text, cfg.Encoding); err != nil {
			return err
		}
		logger.Info("wrote %s", f.output)
		return nil
	}
	return sink.Print(cmd.OutOrStdout(), text, cfg.Encoding)
}

// readInput picks the first of --string, --url, the input argument and
// standard input.
func readInput(cmd *cobra.Command, args []string, f *flags, cfg config.Config) (string, error) {
	switch {
	case f.str != "":
		return source.FromString(f.str)
	case f.url != "":
		timeout, err := cfg.FetchTimeout()
		if err != nil {
			return "", err
		}
		logger.Debug("fetching %s (timeout %s)", f.url, timeout)
		s, err := source.NewFetcher(cfg.Fetch.UserAgent, timeout).Fetch(cmd.Context(), f.url)
		if err != nil {
			logger.Warn("fetch failed: %v", err)
			return "", err
		}
		return s, nil
	case len(args) == 1 && args[0] != "-":
		return source.FromFile(args[0])
	}
	s, err := source.Decode(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return s, nil
}
