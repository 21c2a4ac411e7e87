package engine_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/engine"
)

// TestHTTPFetcher_Fetch_Success checks headers (User-Agent, Basic Auth) and body integrity.
func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	const (
		expectedUser = "testuser"
		expectedPass = "securepass"
		expectedBody = "BEGIN:VCARD\nVERSION:3.0\nFN:Test\nBDAY:--06-15\nEND:VCARD"
	)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "Basic auth header should be present")
		assert.Equal(t, expectedUser, user)
		assert.Equal(t, expectedPass, pass)
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))
		assert.Equal(t, config.MimeVCardAccept, r.Header.Get(config.HeaderAccept))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(expectedBody))
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, expectedUser, expectedPass)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, expectedBody, string(body))
}

// TestHTTPFetcher_Fetch_Anonymous ensures no Authorization header leaks when no
// credentials are configured.
func TestHTTPFetcher_Fetch_Anonymous(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL+"/book.vcf?token=secret", "", "")
	require.NoError(t, err)
	_ = rc.Close()
}

// TestHTTPFetcher_Fetch_Errors verifies error handling for non-200 statuses.
func TestHTTPFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    string
	}{
		{"NotFound", http.StatusNotFound, config.ErrFetchStatus + ": 404"},
		{"ServerError", http.StatusInternalServerError, "500"},
		{"Unauthorized", http.StatusUnauthorized, "401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer ts.Close()

			rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")

			assert.Error(t, err)
			assert.Nil(t, rc)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestHTTPFetcher_Fetch_Timeout ensures the client respects context deadlines.
func TestHTTPFetcher_Fetch_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := engine.NewHTTPFetcher().Fetch(ctx, ts.URL, "", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestHTTPFetcher_Fetch_InvalidURL ensures malformed URLs are caught early.
func TestHTTPFetcher_Fetch_InvalidURL(t *testing.T) {
	_, err := engine.NewHTTPFetcher().Fetch(context.Background(), string([]byte{0x7f}), "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrInvalidURL)
}

// TestHTTPFetcher_Fetch_ProtocolSecurity enforces HTTP/HTTPS only.
func TestHTTPFetcher_Fetch_ProtocolSecurity(t *testing.T) {
	_, err := engine.NewHTTPFetcher().Fetch(context.Background(), "ftp://example.com/file.vcf", "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrProtocol)
}

const authBook = "BEGIN:VCARD\nVERSION:3.0\nFN:Remote Ann\nBDAY:1985-03-10\nEND:VCARD\n" +
	"BEGIN:VCARD\nVERSION:3.0\nFN:Remote Ben\nBDAY:--01-05\nEND:VCARD\n"

// newBookServer serves authBook to requests carrying the expected credentials.
func newBookServer(t *testing.T, user, pass string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="contacts"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, authBook)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestRunSync_Web_BasicAuth(t *testing.T) {
	ts := newBookServer(t, "carddav", "hunter2")
	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)},
		Fetcher: engine.NewHTTPFetcher(),
	}

	tests := []struct {
		name    string
		user    string
		pass    string
		wantErr string
	}{
		{"Valid credentials", "carddav", "hunter2", ""},
		{"Wrong password", "carddav", "nope", config.ErrFetchStatus + ": 401"},
		{"Anonymous", "", "", config.ErrFetchStatus + ": 401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ics, contacts, _, err := gen.RunSync(context.Background(), engine.SyncConfig{
				Mode:    config.SourceModeWeb,
				WebURL:  ts.URL + "/addressbook.vcf",
				WebUser: tt.user,
				WebPass: tt.pass,
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), config.ErrVCardParse)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, ics)
				return
			}

			require.NoError(t, err)
			require.Len(t, contacts, 2)
			engine.SortByCountdown(contacts)
			assert.Equal(t, "Remote Ben", contacts[0].Name)
			assert.Equal(t, 4, contacts[0].DaysUntil)
			assert.Equal(t, "Remote Ann", contacts[1].Name)
			assert.Equal(t, 68, contacts[1].DaysUntil)
			assert.Equal(t, 40, contacts[1].AgeNext)
			assert.Contains(t, string(ics), "SUMMARY:Birthday: Remote Ann")
		})
	}
}

func TestHTTPFetcher_SizeCap(t *testing.T) {
	tests := []struct {
		name    string
		chunked bool
	}{
		{"Declared length", false},
		{"Chunked body", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.chunked {
					_, _ = io.WriteString(w, authBook[:10])
					w.(http.Flusher).Flush()
					_, _ = io.WriteString(w, authBook[10:])
					return
				}
				_, _ = io.WriteString(w, authBook)
			}))
			defer ts.Close()

			fetcher := engine.NewHTTPFetcher()
			fetcher.MaxBytes = 64

			gen := &engine.Generator{
				Clock:   MockClock{CurrentTime: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)},
				Fetcher: fetcher,
			}
			_, contacts, _, err := gen.RunSync(context.Background(), engine.SyncConfig{
				Mode:   config.SourceModeWeb,
				WebURL: ts.URL,
			})

			require.Error(t, err, "a truncated book must not be published")
			assert.Contains(t, err.Error(), config.ErrFetchTooLarge)
			assert.Nil(t, contacts)

			fetcher.MaxBytes = int64(len(authBook))
			_, contacts, _, err = gen.RunSync(context.Background(), engine.SyncConfig{
				Mode:   config.SourceModeWeb,
				WebURL: ts.URL,
			})
			require.NoError(t, err, "a book exactly at the cap is accepted")
			assert.Len(t, contacts, 2)
		})
	}
}

func TestHTTPFetcher_LogsRedactedURL(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ts := newBookServer(t, "carddav", "hunter2")
	target := strings.Replace(ts.URL, "http://", "http://carddav:hunter2@", 1) + "/book.vcf?token=abc123"

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), target, "carddav", "hunter2")
	require.NoError(t, err)
	_ = rc.Close()

	out := logs.String()
	assert.Contains(t, out, ts.URL+"/book.vcf")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "abc123")
	assert.Contains(t, out, `"basic_auth":true`)
}
