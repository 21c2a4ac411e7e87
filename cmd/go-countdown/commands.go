package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/countdown"
	"github.com/tartampluch/go-countdown/internal/engine"
	"github.com/tartampluch/go-countdown/internal/locale"
	"github.com/tartampluch/go-countdown/internal/secret"
	"github.com/tartampluch/go-countdown/internal/server"
	"github.com/tartampluch/go-countdown/internal/worker"
	"golang.org/x/sync/errgroup"
)

// dateClock pins "now" to midnight of a fixed local date.
type dateClock struct{ date countdown.CalendarDate }

func (c dateClock) Now() time.Time { return c.date.Time(time.Local) }

// dispatch loads the settings, applies flag overrides and runs one mode.
func dispatch(ctx context.Context, fs *pflag.FlagSet, opts options, stdin *os.File, stdout, stderr io.Writer) error {
	settings, err := loadSettings(opts.configPath)
	if err != nil {
		return usage(err)
	}
	if err := applyOverrides(&settings, fs, opts); err != nil {
		return usage(err)
	}

	if opts.within < 0 {
		return usage(errors.New(config.ErrInvalidWithin))
	}

	clock := countdown.Clock(countdown.SystemClock{})
	if opts.today != "" {
		today, err := countdown.ParseDate(opts.today)
		if err != nil {
			return usage(err)
		}
		clock = dateClock{date: today}
	}

	loc := locale.New(settings.Language)

	switch {
	case opts.login:
		return runLogin(settings.Source.User, stdin, stdout, stderr)
	case opts.birthday != "":
		return runCountdown(opts, clock, loc, stdout)
	case opts.serve:
		return runServe(ctx, settings, loc)
	case fs.Changed(config.FlagFile) || fs.Changed(config.FlagURL):
		return runList(ctx, settings, opts, clock, loc, stdout)
	default:
		fs.Usage()
		return usage(errors.New(config.ErrNothingToDo))
	}
}

// loadSettings reads the YAML settings, falling back to defaults when the
// per-user config dir cannot be determined.
func loadSettings(explicit string) (config.Settings, error) {
	path, required, err := config.ResolveSettingsPath(explicit)
	if err != nil {
		slog.Warn(err.Error(), config.LogKeyComponent, config.CompSettings)
		return config.DefaultSettings(), nil
	}
	return config.LoadSettings(path, required)
}

// applyOverrides lets explicitly set flags win over the settings file. The
// result is validated like the file itself.
func applyOverrides(s *config.Settings, fs *pflag.FlagSet, opts options) error {
	if fs.Changed(config.FlagLang) {
		s.Language = opts.lang
	}
	if fs.Changed(config.FlagPort) {
		if err := config.ValidatePort(opts.port); err != nil {
			return err
		}
		s.Server.Port = opts.port
	}
	if fs.Changed(config.FlagFile) {
		s.Source.Mode = config.SourceModeLocal
		s.Source.LocalPath = opts.file
	}
	if fs.Changed(config.FlagURL) {
		s.Source.Mode = config.SourceModeWeb
		s.Source.URL = opts.url
	}
	if fs.Changed(config.FlagUser) {
		s.Source.User = opts.user
	}
	return s.Validate()
}

// syncConfig turns the settings into an engine configuration. The password
// comes from the keyring.
func syncConfig(s config.Settings) engine.SyncConfig {
	cfg := engine.SyncConfig{
		Mode:            s.Source.Mode,
		LocalPath:       s.Source.LocalPath,
		WebURL:          s.Source.URL,
		WebUser:         s.Source.User,
		ReminderTrigger: s.ReminderTrigger(),
	}
	if cfg.Mode == config.SourceModeWeb {
		cfg.WebPass = secret.LookupOptional(cfg.WebUser)
	}
	return cfg
}

// runCountdown prints the days until a single birthday.
func runCountdown(opts options, clock countdown.Clock, loc *locale.Locale, stdout io.Writer) error {
	birthday, err := countdown.ParseBirthday(opts.birthday)
	if err != nil {
		return usage(err)
	}

	today := countdown.DateOf(clock.Now())
	next := countdown.Next(birthday, today)
	days := countdown.Calculate(birthday, today)

	slog.Debug(config.MsgCountdown,
		config.LogKeyComponent, config.CompCountdown,
		config.LogKeyBirthday, birthday.String(),
		config.LogKeyRefDate, today.String(),
		config.LogKeyNext, next.String(),
		config.LogKeyDays, days,
	)

	switch {
	case opts.jsonOut:
		return writeJSON(stdout, server.CountdownResponse{
			Birthday: birthday.String(),
			Today:    today,
			Next:     next,
			Days:     days,
		})
	case opts.quiet:
		_, err = fmt.Fprintln(stdout, strconv.Itoa(days))
	default:
		_, err = fmt.Fprintln(stdout, loc.Countdown("", days))
	}
	return err
}

// runList prints the contact book ordered by countdown.
func runList(ctx context.Context, s config.Settings, opts options, clock countdown.Clock, loc *locale.Locale, stdout io.Writer) error {
	gen := &engine.Generator{
		Clock:         clock,
		Fetcher:       engine.NewHTTPFetcher(),
		FormatSummary: loc.EventSummary,
	}

	entries, err := gen.Entries(ctx, syncConfig(s))
	if err != nil {
		return err
	}
	entries = engine.Upcoming(entries, opts.within)
	if err := engine.SortBy(entries, opts.sortKey, !opts.reverse); err != nil {
		return usage(err)
	}

	if opts.jsonOut {
		return writeJSON(stdout, entries)
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(stdout, loc.Msg(config.TKeyListEmpty))
		return err
	}

	dateLayout := loc.Msg(config.TKeyFormatDate)
	if dateLayout == config.TKeyFormatDate {
		dateLayout = config.DateFormatDisplay
	}

	writer := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
		loc.Msg(config.TKeyColName),
		loc.Msg(config.TKeyColDate),
		loc.Msg(config.TKeyColDays),
		loc.Msg(config.TKeyColAge),
	)
	for _, e := range entries {
		age := config.AgeUnknown
		switch {
		case e.YearKnown && e.AgeNext == 0:
			age = loc.Msg(config.TKeyAgeBirth)
		case e.YearKnown:
			age = strconv.Itoa(e.AgeNext)
		}
		_, _ = fmt.Fprintf(writer, config.FormatListRow,
			e.Name,
			e.NextOccurrence.Time(time.Local).Format(dateLayout),
			e.DaysUntil,
			age,
		)
	}
	return writer.Flush()
}

// runServe runs the HTTP server and the sync worker until ctx is cancelled.
// SIGHUP triggers an immediate resync.
func runServe(ctx context.Context, s config.Settings, loc *locale.Locale) error {
	srv := server.NewCalendarServer(s.Server.Port)
	srv.UpcomingDays = s.Server.UpcomingDays

	gen := &engine.Generator{
		Clock:         countdown.SystemClock{},
		Fetcher:       engine.NewHTTPFetcher(),
		FormatSummary: loc.EventSummary,
	}
	syncer := worker.New(gen, syncConfig(s), srv, s.Server.RefreshMinutes)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	g.Go(func() error { return syncer.Run(gctx) })
	g.Go(func() error {
		hup := make(chan os.Signal, config.ChannelBufferSize)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				syncer.Refresh()
			}
		}
	})
	return g.Wait()
}

// runLogin stores the password of user in the keyring.
func runLogin(user string, stdin *os.File, stdout, stderr io.Writer) error {
	if user == "" {
		return usage(errors.New(config.ErrUserRequired))
	}
	if err := secret.Login(user, stdin, stderr); err != nil {
		return err
	}
	_, err := fmt.Fprintln(stdout, config.MsgPasswordSaved)
	return err
}

// writeJSON emits value as indented JSON; nil slices become [].
func writeJSON(w io.Writer, value any) error {
	if entries, ok := value.([]engine.BirthdayEntry); ok && entries == nil {
		value = []engine.BirthdayEntry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
