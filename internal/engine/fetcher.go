package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-countdown/internal/config"
)

// VCardFetcher retrieves a remote contact book.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher downloads a contact book over HTTP(S), with Basic Auth when
// credentials are given.
type HTTPFetcher struct {
	Client *http.Client

	// MaxBytes caps the body. Larger books fail instead of being truncated.
	MaxBytes int64
}

// NewHTTPFetcher creates an HTTPFetcher with the default timeout and size cap.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: config.HTTPTimeout},
		MaxBytes: config.MaxHTTPResponseSize,
	}
}

// Fetch opens the contact book at bookURL. The caller must close the stream.
func (f *HTTPFetcher) Fetch(ctx context.Context, bookURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(bookURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		config.LogKeyComponent, config.CompFetcher,
		config.LogKeyURL, redactURL(u),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, bookURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeVCardAccept)

	withAuth := user != "" || pass != ""
	if withAuth {
		req.SetBasicAuth(user, pass)
	}
	log.Debug(config.MsgFetchStart, config.LogKeyAuth, withAuth)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus, config.LogKeyStatus, resp.StatusCode)
		return nil, fmt.Errorf("%s: %s", config.ErrFetchStatus, resp.Status)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = config.MaxHTTPResponseSize
	}
	if resp.ContentLength > limit {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s: %d > %d bytes", config.ErrFetchTooLarge, resp.ContentLength, limit)
	}

	log.Info(config.MsgFetchStream, config.LogKeyLength, resp.ContentLength)

	return &cappedBody{
		Reader: io.LimitReader(resp.Body, limit+1),
		Closer: resp.Body,
		limit:  limit,
	}, nil
}

// redactURL drops credentials and the query string, which may carry tokens.
func redactURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}

// cappedBody fails once more than limit bytes have been read.
type cappedBody struct {
	io.Reader
	io.Closer

	limit int64
	read  int64
}

func (b *cappedBody) Read(p []byte) (int, error) {
	if b.read > b.limit {
		return 0, b.tooLarge()
	}
	n, err := b.Reader.Read(p)
	b.read += int64(n)
	if over := b.read - b.limit; over > 0 {
		return n - int(over), b.tooLarge()
	}
	return n, err
}

func (b *cappedBody) tooLarge() error {
	return fmt.Errorf("%s: %d bytes", config.ErrFetchTooLarge, b.limit)
}
