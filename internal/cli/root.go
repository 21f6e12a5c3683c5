package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	glob "github.com/Sriram-PR/go-glob"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// globFlags holds the command line flags of the root command.
type globFlags struct {
	config          string
	ignore          []string
	ignoreFiles     []string
	dot             bool
	absolute        bool
	deep            int
	onlyDirectories bool
	onlyFiles       bool
	caseInsensitive bool
	strict          bool
	cwd             string
	concurrency     int
	sync            bool
	timeout         time.Duration
	count           bool
	logLevel        string
}

// NewRootCommand creates and returns the root cobra command for fglob
func NewRootCommand() *cobra.Command {
	f := &globFlags{}

	cmd := &cobra.Command{
		Use:   "fglob [flags] PATTERN...",
		Short: "Find files matching glob patterns",
		Long: `fglob prints the paths matching one or more glob patterns.

Patterns support *, ?, [...] classes and ** for any number of directories.
A pattern starting with ! excludes matches; quote patterns so the shell
does not expand them.`,
		Example: `  fglob 'src/**/*.ts' '!**/*.test.ts'
  fglob --absolute --ignore '**/*.d.ts' 'src/**/*.ts'
  fglob --dot 'src/**/.*'
  fglob --deep 1 'src/**/*'`,
		Args:    cobra.MinimumNArgs(1),
		Version: Version,
		// main prints the error; silence cobra's copy and the usage text
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGlob(cmd, args, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.config, "config", "", "YAML file with default options")
	flags.StringSliceVarP(&f.ignore, "ignore", "i", nil, "exclusion pattern (repeatable)")
	flags.StringSliceVar(&f.ignoreFiles, "ignore-file", nil, "file with one exclusion pattern per line (repeatable)")
	flags.BoolVar(&f.dot, "dot", false, "let wildcards match names starting with a dot")
	flags.BoolVarP(&f.absolute, "absolute", "a", false, "print absolute paths")
	flags.IntVar(&f.deep, "deep", -1, "maximum depth below each pattern's base (-1 for unbounded)")
	flags.BoolVarP(&f.onlyDirectories, "only-dirs", "d", false, "print directories only")
	flags.BoolVarP(&f.onlyFiles, "only-files", "f", false, "print non-directories only")
	flags.BoolVar(&f.caseInsensitive, "case-insensitive", false, "match case-insensitively")
	flags.BoolVar(&f.strict, "strict", false, "fail on unreadable directories and missing static paths")
	flags.StringVarP(&f.cwd, "cwd", "C", "", "resolve relative patterns against this directory")
	flags.IntVar(&f.concurrency, "concurrency", glob.DefaultConcurrency, "maximum concurrent directory reads")
	flags.BoolVar(&f.sync, "sync", false, "walk in a single goroutine")
	flags.DurationVar(&f.timeout, "timeout", 0, "abort after this duration (0 for none)")
	flags.BoolVar(&f.count, "count", false, "print only the number of matches")
	flags.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn, error or none")

	cmd.AddCommand(NewEscapeCommand())
	cmd.AddCommand(NewDynamicCommand())

	return cmd
}

func runGlob(cmd *cobra.Command, args []string, f *globFlags) error {
	logger, err := newLogger(cmd.ErrOrStderr(), f.logLevel)
	if err != nil {
		return err
	}

	opts, err := f.options(cmd)
	if err != nil {
		return err
	}
	opts.Logger = logger

	var entries []glob.Match
	if f.sync {
		entries, err = glob.GlobEntriesSync(args, opts)
	} else {
		ctx := cmd.Context()
		if f.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.timeout)
			defer cancel()
		}
		entries, err = glob.GlobEntries(ctx, args, opts)
	}
	if err != nil {
		return err
	}

	return printEntries(cmd.OutOrStdout(), entries, f.count)
}

// options merges the config file (if any) with the flags set explicitly on
// the command line; flags win.
func (f *globFlags) options(cmd *cobra.Command) (glob.Options, error) {
	var opts glob.Options
	if f.config != "" {
		cfg, err := loadConfig(f.config)
		if err != nil {
			return opts, err
		}
		opts = cfg.options()
	}

	changed := cmd.Flags().Changed
	if changed("ignore") {
		opts.Ignore = append(opts.Ignore, f.ignore...)
	}
	for _, path := range f.ignoreFiles {
		patterns, err := glob.ReadPatternFile(path)
		if err != nil {
			return opts, err
		}
		opts.Ignore = append(opts.Ignore, patterns...)
	}
	if changed("dot") {
		opts.Dot = f.dot
	}
	if changed("absolute") {
		opts.Absolute = f.absolute
	}
	if changed("deep") {
		opts.Deep = nil
		if f.deep >= 0 {
			opts.Deep = glob.Depth(f.deep)
		}
	}
	if changed("only-dirs") {
		opts.OnlyDirectories = f.onlyDirectories
	}
	if changed("only-files") {
		opts.OnlyFiles = f.onlyFiles
	}
	if changed("case-insensitive") {
		opts.CaseInsensitive = f.caseInsensitive
	}
	if changed("strict") {
		opts.Strict = f.strict
	}
	if changed("cwd") {
		opts.Cwd = f.cwd
	}
	if changed("concurrency") || opts.Concurrency == 0 {
		opts.Concurrency = f.concurrency
	}

	if opts.OnlyDirectories && opts.OnlyFiles {
		return opts, fmt.Errorf("--only-dirs and --only-files are mutually exclusive")
	}

	return opts, nil
}

func printEntries(w io.Writer, entries []glob.Match, count bool) error {
	if count {
		_, err := fmt.Fprintln(w, len(entries))
		return err
	}

	dirColor := color.New(color.FgBlue, color.Bold)
	for _, e := range entries {
		var err error
		if e.IsDir {
			_, err = dirColor.Fprintln(w, e.Path)
		} else {
			_, err = fmt.Fprintln(w, e.Path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
