package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/praetorian-inc/searchbin"
	"github.com/praetorian-inc/searchbin/pkg/config"
	"github.com/praetorian-inc/searchbin/pkg/enum"
	"github.com/praetorian-inc/searchbin/pkg/logging"
	"github.com/praetorian-inc/searchbin/pkg/pattern"
	"github.com/praetorian-inc/searchbin/pkg/report"
	"github.com/praetorian-inc/searchbin/pkg/store"
	"github.com/praetorian-inc/searchbin/pkg/types"
)

// stdinName is the source name reported for standard input.
const stdinName = "<stdin>"

var (
	patternFile   string
	patternHex    string
	patternText   string
	before        int
	after         int
	bufferSize    int
	start         int64
	end           int64
	maxMatches    int
	logPath       string
	verbose       bool
	debug         bool
	outputFormat  string
	colorMode     string
	dbPath        string
	recursive     bool
	includeHidden bool
	followLinks   bool
	keepGoing     bool
	configPath    string
)

var errTargetsFailed = errors.New("one or more targets could not be scanned")

var rootCmd = &cobra.Command{
	Use:   "searchbin [flags] [FILE...]",
	Short: "Search binary files for byte patterns",
	Long: `searchbin finds every occurrence of a byte pattern in files or standard input.

The pattern is given as hex (-p "DE AD ?? EF", "??" matches any byte),
as text (--text "GIF8?a", "?" matches any byte) or as the content of a
pattern file (-f). Files of any size are read through a fixed-size buffer.

With no FILE, standard input is searched.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSearch,
}

func init() {
	rootCmd.Version = versionString()
	rootCmd.SetFlagErrorFunc(flagError)
	addFlags(rootCmd.Flags())
}

// flagError reports command-line parse failures as ConfigErrors naming the
// rejected value.
func flagError(_ *cobra.Command, err error) error {
	var invalid *pflag.InvalidValueError
	if errors.As(err, &invalid) {
		switch invalid.GetFlag().Value.Type() {
		case "int", "int64":
			return types.Wrap(types.ConfigError, invalid.GetValue(), err, "size parameters must be in decimal format")
		default:
			return types.Wrap(types.ConfigError, invalid.GetValue(), err, "invalid option value")
		}
	}
	return types.Wrap(types.ConfigError, "", err, "invalid command line")
}

// addFlags registers the search options on flags, resetting their
// variables to the defaults.
func addFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&patternFile, "file", "f", "", "file containing the binary pattern to search for")
	flags.StringVarP(&patternHex, "pattern", "p", "", `hex pattern to search for, "??" matches any byte`)
	flags.StringVar(&patternText, "text", "", `text pattern to search for, "?" matches any byte`)
	flags.IntVarP(&before, "before", "b", 0, "bytes of context to show before each match")
	flags.IntVarP(&after, "after", "a", 32, "bytes of context to show after each match start")
	flags.IntVar(&bufferSize, "buffer-size", 0, "read buffer size in bytes (default max(2 x pattern length, 8 MiB))")
	flags.Int64VarP(&start, "start", "s", 0, "offset to start searching at")
	flags.Int64VarP(&end, "end", "e", 0, "last offset a match may start at (0 = end of file)")
	flags.IntVar(&maxMatches, "max-matches", 0, "stop each file after this many matches (0 = unlimited)")
	flags.StringVarP(&logPath, "log", "l", "", "write results to this file instead of stdout")
	flags.BoolVarP(&verbose, "verbose", "v", false, "report progress after every buffer refill")
	flags.BoolVar(&debug, "debug", false, "print debug diagnostics on stderr")
	flags.StringVar(&outputFormat, "format", "text", "output format: text, json, sarif")
	flags.StringVar(&colorMode, "color", "auto", "colorize text output: auto, always, never")
	flags.StringVar(&dbPath, "db", "", "record scans and matches in this SQLite database")
	flags.BoolVarP(&recursive, "recursive", "r", false, "search files below directory targets")
	flags.BoolVar(&includeHidden, "include-hidden", false, "include hidden files and directories when recursing")
	flags.BoolVar(&followLinks, "follow-symlinks", false, "search symbolic links to files when recursing")
	flags.BoolVar(&keepGoing, "keep-going", false, "continue with the next file after open or read errors")
	flags.StringVar(&configPath, "config", "", "YAML file with option defaults")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := applyConfig(cmd); err != nil {
		return err
	}

	logger := logging.Init(cmd.ErrOrStderr(), debug)

	src, err := patternSource()
	if err != nil {
		return err
	}
	p, err := pattern.Compile(src)
	if err != nil {
		return err
	}
	logger.Debug("pattern compiled", "source", pattern.Describe(src), "length", p.Len(), "wildcards", p.Wildcards())

	opts := []searchbin.Option{
		searchbin.WithRange(start, end),
		searchbin.WithMaxMatches(maxMatches),
		searchbin.WithContext(before, after),
		searchbin.WithLogger(logger),
	}
	if bufferSize != 0 {
		opts = append(opts, searchbin.WithBufferSize(bufferSize))
	}
	if verbose {
		opts = append(opts, searchbin.WithVerbose())
	}
	searcher, err := searchbin.NewSearcher(p, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			return types.Wrap(types.LogOpenError, logPath, err, "could not open log file")
		}
		defer f.Close()
		out = f
	}

	useColor, err := colorEnabled(colorMode, out)
	if err != nil {
		return err
	}
	rep, err := report.New(out, report.Format(outputFormat), report.Options{Color: useColor, Pattern: p})
	if err != nil {
		return err
	}

	var s store.Store
	if dbPath != "" {
		s, err = store.New(store.Config{Path: dbPath})
		if err != nil {
			return fmt.Errorf("creating store: %w", err)
		}
		defer s.Close()
	}

	runner := &searchRun{
		searcher: searcher,
		reporter: rep,
		store:    s,
		pattern:  p,
		logger:   logger,
		errOut:   cmd.ErrOrStderr(),
	}

	if len(args) == 0 {
		err = runner.scan(ctx, stdinName, func(h searchbin.Handler) (searchbin.Result, error) {
			return searcher.Search(ctx, stdinName, cmd.InOrStdin(), h)
		})
	} else {
		enumCfg := enum.Config{
			IncludeHidden:  includeHidden,
			FollowSymlinks: followLinks,
			OnError:        runner.skip,
			Logger:         logger,
		}
		err = enum.Targets(ctx, args, recursive, enumCfg, func(path string) error {
			return runner.scan(ctx, path, func(h searchbin.Handler) (searchbin.Result, error) {
				return searcher.SearchFile(ctx, path, h)
			})
		})
	}

	if ferr := rep.Flush(); ferr != nil && err == nil {
		err = fmt.Errorf("writing report: %w", ferr)
	}
	if err != nil {
		return err
	}
	if runner.failed > 0 {
		return errTargetsFailed
	}
	return nil
}

// searchRun carries the state shared by all targets of one invocation.
type searchRun struct {
	searcher *searchbin.Searcher
	reporter report.Reporter
	store    store.Store
	pattern  types.Pattern
	logger   *slog.Logger
	errOut   io.Writer
	failed   int
}

// scan runs one target through search, recording it in the store when
// one is configured. Non-fatal errors are reported and skipped with
// --keep-going.
func (r *searchRun) scan(ctx context.Context, name string, search func(searchbin.Handler) (searchbin.Result, error)) error {
	handler := searchbin.Handler(r.reporter)

	var recorder *store.Recorder
	if r.store != nil {
		var err error
		recorder, err = store.NewRecorder(r.store, &store.Scan{
			Source:     name,
			Pattern:    r.pattern.String(),
			Start:      start,
			End:        end,
			BufferSize: r.searcher.BufferSize(),
			StartedAt:  time.Now(),
		})
		if err != nil {
			return fmt.Errorf("recording scan: %w", err)
		}
		handler = report.Tee(r.reporter, recorder)
	}

	result, err := search(handler)
	if err != nil {
		return r.skip(err)
	}

	r.logger.Debug("scan finished",
		"source", result.Source,
		"matches", result.Matches,
		"refills", result.Refills,
		"reason", result.Reason.String())

	if recorder != nil {
		if err := recorder.Finish(result.Matches, result.Reason.String()); err != nil {
			return fmt.Errorf("recording scan: %w", err)
		}
	}
	return nil
}

// skip reports a non-fatal target error and returns nil when --keep-going
// is set. Any other error is returned unchanged.
func (r *searchRun) skip(err error) error {
	var typed *types.Error
	if keepGoing && errors.As(err, &typed) && !typed.Fatal() {
		r.failed++
		fmt.Fprintln(r.errOut, diagnostic(err))
		r.logger.Debug("skipping target", "source", typed.Value, "error", err)
		return nil
	}
	return err
}

// patternSource returns the single pattern source given on the command line.
func patternSource() (types.Source, error) {
	var sources []types.Source
	if patternFile != "" {
		sources = append(sources, types.Source{Kind: types.SourceRaw, Value: patternFile})
	}
	if patternHex != "" {
		sources = append(sources, types.Source{Kind: types.SourceHex, Value: patternHex})
	}
	if patternText != "" {
		sources = append(sources, types.Source{Kind: types.SourceText, Value: patternText})
	}

	switch len(sources) {
	case 0:
		return types.Source{}, types.Errorf(types.ConfigError, "", "No pattern to search for was supplied")
	case 1:
		return sources[0], nil
	default:
		return types.Source{}, types.Errorf(types.ConfigError, "", "Cannot search for multiple patterns")
	}
}

// applyConfig loads --config and sets every option the command line left
// unset.
func applyConfig(cmd *cobra.Command) error {
	if configPath == "" {
		return nil
	}
	f, err := config.Load(configPath)
	if err != nil {
		return err
	}
	for name, value := range f.Values() {
		if cmd.Flags().Changed(name) {
			continue
		}
		if err := cmd.Flags().Set(name, value); err != nil {
			return types.Wrap(types.ConfigError, name, err, "invalid value in config file")
		}
	}
	return nil
}

// colorEnabled resolves --color. auto colors only a terminal, and only when
// NO_COLOR is unset.
func colorEnabled(mode string, out io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		f, ok := out.(*os.File)
		if !ok || !term.IsTerminal(int(f.Fd())) || os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		return true, nil
	default:
		return false, types.Errorf(types.ConfigError, mode, "unknown color mode")
	}
}
