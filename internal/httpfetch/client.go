package httpfetch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"mclocale/internal/logging"
	"mclocale/internal/services"
)

const (
	defaultTimeout  = 60 * time.Second
	defaultAttempts = 3
)

// ErrChecksumMismatch reports downloaded bytes that do not match the expected digest.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// StatusError reports a non-success HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	Attempts   int
	RetryDelay time.Duration
	Fs         afero.Fs
	Logger     *slog.Logger
	Progress   Progress
}

// Client performs HTTP retrievals with bounded retries.
type Client struct {
	http       *http.Client
	userAgent  string
	attempts   int
	retryDelay time.Duration
	fs         afero.Fs
	logger     *slog.Logger
	progress   Progress
}

// New builds a Client. Zero options fall back to an OS filesystem, a 60s
// timeout, three attempts, and log-based progress.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := logging.NewComponentLogger(opts.Logger, "httpfetch")
	progress := opts.Progress
	if progress == nil {
		progress = NewLogProgress(logger)
	}
	return &Client{
		http:       httpClient,
		userAgent:  strings.TrimSpace(opts.UserAgent),
		attempts:   attempts,
		retryDelay: opts.RetryDelay,
		fs:         fs,
		logger:     logger,
		progress:   progress,
	}
}

// Get returns the body of url. Extra headers override the client defaults.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	body, err := services.Retry(ctx, c.policy(url), func(ctx context.Context, _ int) ([]byte, error) {
		resp, err := c.do(ctx, url, headers)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", url, err)
		}
		return data, nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrAcquisition, "fetch", url, "", err)
	}
	return body, nil
}

// GetJSON fetches url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, v any) error {
	data, err := c.Get(ctx, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return services.Wrap(services.ErrAcquisition, "fetch", url, "decode JSON", err)
	}
	return nil
}

// Download describes one file transfer.
type Download struct {
	URL  string
	Dest string
	// SHA1 is the expected hex digest; empty skips verification.
	SHA1    string
	Headers map[string]string
	// Label names the transfer in progress output. Defaults to the file name.
	Label string
}

// Result describes a completed download.
type Result struct {
	Path  string
	Size  int64
	SHA1  string
	Tries int
}

// Download streams d.URL into d.Dest.
func (c *Client) Download(ctx context.Context, d Download) (Result, error) {
	if strings.TrimSpace(d.Dest) == "" {
		return Result{}, services.Wrap(services.ErrAcquisition, "download", d.URL, "destination not set", nil)
	}
	if d.Label == "" {
		d.Label = filepath.Base(d.Dest)
	}
	if err := c.fs.MkdirAll(filepath.Dir(d.Dest), 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrAcquisition, "download", d.Label, "create directory", err)
	}

	result, err := services.Retry(ctx, c.policy(d.URL), func(ctx context.Context, attempt int) (Result, error) {
		res, err := c.downloadOnce(ctx, d)
		res.Tries = attempt
		return res, err
	})
	if err != nil {
		return Result{}, services.Wrap(services.ErrAcquisition, "download", d.Label, "", err)
	}
	c.logger.Info("download complete",
		logging.String("file", d.Label),
		logging.Bytes("size", result.Size),
		logging.String("sha1", result.SHA1),
		logging.String(logging.FieldEventType, "download_complete"),
	)
	return result, nil
}

func (c *Client) downloadOnce(ctx context.Context, d Download) (res Result, err error) {
	partPath := d.Dest + ".part"
	defer func() {
		if err != nil {
			_ = c.fs.Remove(partPath)
		}
	}()

	resp, err := c.do(ctx, d.URL, d.Headers)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	file, err := c.fs.OpenFile(partPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return Result{}, fmt.Errorf("create %s: %w", partPath, err)
	}

	hasher := sha1.New()
	tracker := c.progress.Start(d.Label, resp.ContentLength)
	written, copyErr := io.Copy(io.MultiWriter(file, hasher, tracker), resp.Body)
	tracker.Finish()
	closeErr := file.Close()
	if copyErr != nil {
		return Result{}, fmt.Errorf("stream %s: %w", d.URL, copyErr)
	}
	if closeErr != nil {
		return Result{}, fmt.Errorf("close %s: %w", partPath, closeErr)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return Result{}, fmt.Errorf("stream %s: got %d of %d bytes", d.URL, written, resp.ContentLength)
	}

	digest := hex.EncodeToString(hasher.Sum(nil))
	if want := strings.TrimSpace(d.SHA1); want != "" && !strings.EqualFold(want, digest) {
		return Result{}, fmt.Errorf("%w: %s: want %s got %s", ErrChecksumMismatch, d.Label, strings.ToLower(want), digest)
	}
	if err := c.fs.Rename(partPath, d.Dest); err != nil {
		return Result{}, fmt.Errorf("move %s into place: %w", d.Dest, err)
	}
	return Result{Path: d.Dest, Size: written, SHA1: digest}, nil
}

func (c *Client) do(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "*/*")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}
	return resp, nil
}

func (c *Client) policy(url string) services.RetryPolicy {
	return services.RetryPolicy{
		Attempts:    c.attempts,
		Delay:       c.retryDelay,
		ShouldRetry: retryable,
		OnRetry: func(attempt int, err error) {
			logging.WarnWithContext(c.logger, "request failed; retrying", "http_retry",
				logging.String("url", url),
				logging.Int("attempt", attempt),
				logging.Int("max_attempts", c.attempts),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check network connectivity"),
				logging.String(logging.FieldImpact, "download delayed"),
			)
		},
	}
}

// retryable treats client errors other than timeouts and rate limits as final.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		switch {
		case status.Code == http.StatusRequestTimeout, status.Code == http.StatusTooManyRequests:
			return true
		case status.Code >= 400 && status.Code < 500:
			return false
		}
	}
	return true
}
