package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0 Safari/537.36"

	// DefaultAcceptLanguage is the Accept-Language header sent with every request.
	DefaultAcceptLanguage = "es-ES,es;q=0.9"

	// DefaultMaxBodySize is the largest body accepted from a response.
	DefaultMaxBodySize int64 = 32 * 1024 * 1024
)

var (
	// ErrUnexpectedStatus is wrapped by StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrTimeout is returned when the server takes longer than the fetch
	// timeout to answer or pauses longer than it while sending the body.
	ErrTimeout = errors.New("fetch timed out")

	// ErrBodyTooLarge is returned while reading a body larger than the
	// fetcher's maximum body size.
	ErrBodyTooLarge = errors.New("response body too large")
)

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap allows errors.Is(err, ErrUnexpectedStatus).
func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Fetcher issues GET requests with the crawler's header profile.
type Fetcher struct {
	client         *http.Client
	userAgent      string
	acceptLanguage string
	maxBodySize    int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithAcceptLanguage sets the Accept-Language header value.
func WithAcceptLanguage(value string) FetcherOption {
	return func(f *Fetcher) {
		if value != "" {
			f.acceptLanguage = value
		}
	}
}

// WithMaxBodySize sets the largest body accepted per response.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// NewFetcher returns a Fetcher using client. A nil client means
// http.DefaultClient.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{
		client:         client,
		userAgent:      DefaultUserAgent,
		acceptLanguage: DefaultAcceptLanguage,
		maxBodySize:    DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Response is a successful (2xx) response. Body must be closed; closing it
// also releases the request.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
}

// IsHTML reports whether the response declares a text/html body.
func (r *Response) IsHTML() bool {
	return strings.Contains(strings.ToLower(r.ContentType), "text/html")
}

// Get fetches rawURL. The timeout bounds connecting and waiting for the
// response headers, and then every wait for more body data; a body that keeps
// arriving may take longer in total. Non-2xx responses are returned as
// *StatusError. Reading more than the maximum body size fails with
// ErrBodyTooLarge.
func (f *Fetcher) Get(ctx context.Context, rawURL string, timeout time.Duration) (*Response, error) {
	reqCtx, cancel := context.WithCancelCause(ctx)
	var timer *time.Timer
	if timeout > 0 {
		timer = time.AfterFunc(timeout, func() { cancel(ErrTimeout) })
	}
	release := func() {
		if timer != nil {
			timer.Stop()
		}
		cancel(nil)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		release()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", f.acceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		err = timeoutError(reqCtx, err, timeout)
		release()
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		release()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	return &Response{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body: &fetchBody{
			body:    resp.Body,
			ctx:     reqCtx,
			timer:   timer,
			timeout: timeout,
			limit:   f.maxBodySize,
			release: release,
		},
	}, nil
}

// timeoutError reports err as ErrTimeout when the request was aborted by the
// fetch timer rather than by the caller.
func timeoutError(reqCtx context.Context, err error, timeout time.Duration) error {
	if errors.Is(context.Cause(reqCtx), ErrTimeout) {
		return fmt.Errorf("%w after %s: %w", ErrTimeout, timeout, err)
	}
	return err
}

// fetchBody enforces the idle timeout and the size limit while the body is
// read, and releases the request when closed.
type fetchBody struct {
	body    io.ReadCloser
	ctx     context.Context
	timer   *time.Timer
	timeout time.Duration
	limit   int64
	read    int64
	release func()
}

func (b *fetchBody) Read(p []byte) (int, error) {
	if b.read > b.limit {
		return 0, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, b.limit)
	}
	if b.timer != nil {
		b.timer.Reset(b.timeout)
	}

	// Ask for at most one byte past the limit so an oversized body is
	// detected without reading it.
	if room := b.limit - b.read + 1; int64(len(p)) > room {
		p = p[:room]
	}

	n, err := b.body.Read(p)
	b.read += int64(n)
	if b.read > b.limit {
		return n - int(b.read-b.limit), fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, b.limit)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		err = timeoutError(b.ctx, err, b.timeout)
	}
	return n, err
}

func (b *fetchBody) Close() error {
	err := b.body.Close()
	b.release()
	return err
}
