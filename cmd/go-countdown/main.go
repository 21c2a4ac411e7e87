package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/tartampluch/go-countdown/internal/config"
	"golang.org/x/term"
)

// main delegates to run so deferred calls (closing the log file) execute
// before os.Exit.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// options holds the parsed command line.
type options struct {
	version    bool
	debug      bool
	quiet      bool
	jsonOut    bool
	serve      bool
	reverse    bool
	login      bool
	birthday   string
	today      string
	file       string
	url        string
	user       string
	configPath string
	lang       string
	sortKey    string
	port       string
	within     int
}

// usageError marks failures that exit with config.ExitCodeUsage.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usage(err error) error { return usageError{err: err} }

// newFlagSet declares every flag of the command.
func newFlagSet(opts *options, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(filepath.Base(os.Args[0]), pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	fs.StringVarP(&opts.birthday, config.FlagBirthday, "b", "", config.FlagDescBirthday)
	fs.StringVarP(&opts.today, config.FlagToday, "t", "", config.FlagDescToday)
	fs.BoolVarP(&opts.quiet, config.FlagQuiet, "q", false, config.FlagDescQuiet)
	fs.StringVarP(&opts.file, config.FlagFile, "f", "", config.FlagDescFile)
	fs.StringVar(&opts.url, config.FlagURL, "", config.FlagDescURL)
	fs.StringVarP(&opts.user, config.FlagUser, "u", "", config.FlagDescUser)
	fs.IntVarP(&opts.within, config.FlagWithin, "w", 0, config.FlagDescWithin)
	fs.StringVarP(&opts.sortKey, config.FlagSort, "s", config.SortKeyDays, config.FlagDescSort)
	fs.BoolVarP(&opts.reverse, config.FlagReverse, "r", false, config.FlagDescReverse)
	fs.BoolVar(&opts.jsonOut, config.FlagJSON, false, config.FlagDescJSON)
	fs.BoolVar(&opts.serve, config.FlagServe, false, config.FlagDescServe)
	fs.StringVarP(&opts.port, config.FlagPort, "p", "", config.FlagDescPort)
	fs.BoolVar(&opts.login, config.FlagLogin, false, config.FlagDescLogin)
	fs.StringVarP(&opts.configPath, config.FlagConfig, "c", "", config.FlagDescConfig)
	fs.StringVarP(&opts.lang, config.FlagLang, "l", "", config.FlagDescLang)
	fs.BoolVar(&opts.debug, config.FlagDebug, false, config.FlagDescDebug)
	fs.BoolVarP(&opts.version, config.FlagVersion, "v", false, config.FlagDescVersion)

	fs.Usage = func() {
		_, _ = fmt.Fprint(stderr, config.MsgUsageHeader)
		_, _ = fmt.Fprint(stderr, fs.FlagUsages())
	}
	return fs
}

// run parses args, sets up logging and dispatches to the requested mode. It
// returns the process exit code.
func run(ctx context.Context, args []string, stdin *os.File, stdout, stderr io.Writer) int {
	var opts options
	fs := newFlagSet(&opts, stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return config.ExitCodeSuccess
		}
		return config.ExitCodeUsage
	}
	if fs.NArg() > 0 {
		_, _ = fmt.Fprintf(stderr, "%s: %q\n", config.ErrUnexpectedArg, fs.Arg(0))
		fs.Usage()
		return config.ExitCodeUsage
	}

	if opts.version {
		printVersion(stdout)
		return config.ExitCodeSuccess
	}

	logCloser := setupLogging(stderr, opts.debug, opts.serve)
	if logCloser != nil {
		defer func() { _ = logCloser.Close() }()
	}
	if opts.serve {
		logStartupInfo()
	}

	err := dispatch(ctx, fs, opts, stdin, stdout, stderr)
	if err == nil {
		if opts.serve {
			slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
		}
		return config.ExitCodeSuccess
	}

	_, _ = fmt.Fprintln(stderr, err)
	var uerr usageError
	if errors.As(err, &uerr) {
		return config.ExitCodeUsage
	}
	slog.Error(config.ErrAppFailed,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyError, err,
	)
	return config.ExitCodeError
}

// printVersion outputs the build information.
func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger. Records go to stderr (text
// on a terminal, JSON otherwise). In serve mode they are also written as JSON
// to a file in the user cache dir. One-shot commands only log warnings unless
// debug is set and never touch that file.
func setupLogging(stderr io.Writer, debugMode, serving bool) io.Closer {
	level := slog.LevelWarn
	if serving {
		level = slog.LevelInfo
	}
	if debugMode {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	var console slog.Handler
	if f, ok := stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		console = slog.NewTextHandler(stderr, opts)
	} else {
		console = slog.NewJSONHandler(stderr, opts)
	}

	if !serving {
		slog.SetDefault(slog.New(console))
		return nil
	}

	var logFile *os.File
	handlers := []slog.Handler{console}
	if logPath, err := getLogFilePath(); err == nil {
		// The file belongs to the daemon: reset on restart, appended to after.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_APPEND|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			handlers = append(handlers, slog.NewJSONHandler(f, opts))
			logFile = f
		} else {
			_, _ = fmt.Fprintf(stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	slog.SetDefault(slog.New(fanout(handlers)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}

// fanout duplicates every record to each handler.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
