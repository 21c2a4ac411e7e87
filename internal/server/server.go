package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/countdown"
	"github.com/tartampluch/go-countdown/internal/engine"
)

// snapshot stores the last synchronization and its metadata for HTTP caching.
type snapshot struct {
	data         []byte
	entries      []engine.BirthdayEntry
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// CountdownResponse is the JSON body of GET /countdown.
type CountdownResponse struct {
	Birthday string                 `json:"birthday"`
	Today    countdown.CalendarDate `json:"today"`
	Next     countdown.CalendarDate `json:"next"`
	Days     int                    `json:"days"`
}

// ErrorResponse is the JSON body of rejected API requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CalendarServer serves the generated ICS feed and the countdown API over HTTP.
type CalendarServer struct {
	// cache is written once per sync and read on every request.
	cache atomic.Pointer[snapshot]

	Port  string
	Clock countdown.Clock

	// UpcomingDays is the /upcoming window when the request has none.
	UpcomingDays int
}

// NewCalendarServer creates a new instance of the server.
func NewCalendarServer(port string) *CalendarServer {
	return &CalendarServer{
		Port:         port,
		Clock:        countdown.SystemClock{},
		UpcomingDays: config.DefaultUpcomingDays,
	}
}

// Handler returns the routing table of the server.
func (s *CalendarServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleCalendarRequest)
	mux.HandleFunc(config.RouteCountdown, s.handleCountdownRequest)
	mux.HandleFunc(config.RouteUpcoming, s.handleUpcomingRequest)
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Publish atomically replaces the served calendar and entries.
func (s *CalendarServer) Publish(data []byte, entries []engine.BirthdayEntry) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	s.cache.Store(&snapshot{
		data:         data,
		entries:      entries,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyCount, len(entries),
		config.LogKeyETag, etag,
	)
}

// allowRead rejects anything but GET and HEAD.
func allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set(config.HeaderAllow, config.AllowedMethods)
	http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	return false
}

// notReady answers 503 until the first sync is published.
func notReady(w http.ResponseWriter) {
	w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
	http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}

	item := s.cache.Load()
	if item == nil {
		notReady(w)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// handleCountdownRequest computes a single countdown from query parameters.
func (s *CalendarServer) handleCountdownRequest(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}

	q := r.URL.Query()
	raw := q.Get(config.QueryBirthday)
	if raw == "" {
		s.badRequest(w, r, errors.New(config.HTTPMsgMissingBday))
		return
	}

	birthday, err := countdown.ParseBirthday(raw)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	today := countdown.DateOf(s.Clock.Now())
	if v := q.Get(config.QueryToday); v != "" {
		if today, err = countdown.ParseDate(v); err != nil {
			s.badRequest(w, r, err)
			return
		}
	}

	next := countdown.Next(birthday, today)
	resp := CountdownResponse{
		Birthday: birthday.String(),
		Today:    today,
		Next:     next,
		Days:     today.DaysUntil(next),
	}

	slog.Debug(config.MsgCountdown,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyBirthday, resp.Birthday,
		config.LogKeyRefDate, today.String(),
		config.LogKeyDays, resp.Days,
	)
	writeJSON(w, r, http.StatusOK, resp)
}

// handleUpcomingRequest lists the synced entries inside a window of days.
// Countdowns are recomputed against the server clock.
func (s *CalendarServer) handleUpcomingRequest(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}

	within := s.UpcomingDays
	if v := r.URL.Query().Get(config.QueryWithin); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.badRequest(w, r, errors.New(config.ErrInvalidWithin))
			return
		}
		within = n
	}

	item := s.cache.Load()
	if item == nil {
		notReady(w)
		return
	}

	today := countdown.DateOf(s.Clock.Now())
	current := make([]engine.BirthdayEntry, len(item.entries))
	for i, e := range item.entries {
		e.NextOccurrence = countdown.Next(e.Birthday, today)
		e.DaysUntil = today.DaysUntil(e.NextOccurrence)
		e.AgeNext = countdown.AgeAt(e.Birthday, e.NextOccurrence.Year)
		current[i] = e
	}

	writeJSON(w, r, http.StatusOK, engine.Upcoming(current, within))
}

func (s *CalendarServer) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	slog.Debug(config.MsgBadRequest,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyPath, r.URL.Path,
		config.LogKeyError, err,
	)
	writeJSON(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlNoStore)
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
