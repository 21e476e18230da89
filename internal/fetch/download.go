package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	pb "github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const defaultChunkSize = 8192

// Fetcher downloads files over HTTP(S). The zero value is not usable; use
// New.
type Fetcher struct {
	client    *http.Client
	chunkSize int
	retry     RetryPolicy
	logger    *zap.Logger
	progress  bool
	hashAlgo  string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithChunkSize sets the streaming chunk size in bytes.
func WithChunkSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.chunkSize = n
		}
	}
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(f *Fetcher) { f.retry = p }
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithProgress enables or disables the terminal progress bar.
func WithProgress(enabled bool) Option {
	return func(f *Fetcher) { f.progress = enabled }
}

// New creates a Fetcher. By default it uses an HTTP client with a long
// timeout suited to large dataset files, 8 KiB chunks, the default retry
// policy, sha256 verification, and no progress bar.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: 30 * time.Minute},
		chunkSize: defaultChunkSize,
		retry:     DefaultRetryPolicy(),
		logger:    zap.NewNop(),
		hashAlgo:  "sha256",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// httpStatusError reports a non-2xx response.
type httpStatusError struct {
	code   int
	status string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http error: %s", e.status)
}

// retryable reports whether err is worth another attempt. Server errors and
// transport failures are; client errors, integrity failures, and context
// cancellation are not.
func retryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.code >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// DownloadFile fetches url into baseDir/filename, resuming a partial file if
// one exists. If expectedHash is non-empty the file is verified (and an
// already-present verified file is returned without any network request).
// On integrity failure the file is left in place and the returned error
// wraps ErrIntegrity.
func (f *Fetcher) DownloadFile(ctx context.Context, url, filename, baseDir, expectedHash string) (string, error) {
	path := filepath.Join(baseDir, filename)

	if info, err := os.Stat(path); err == nil {
		if expectedHash == "" {
			f.logger.Info("file already present",
				zap.String("file", filename),
				zap.String("size", humanize.Bytes(uint64(info.Size()))))
			return path, nil
		}
		ok, err := VerifyHash(path, expectedHash, f.hashAlgo)
		if err != nil {
			return "", err
		}
		if ok {
			f.logger.Info("file already verified", zap.String("file", filename))
			return path, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", filepath.Dir(path), err)
	}

	var lastErr error
	for attempt := 0; attempt <= f.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := f.retry.backoff(attempt)
			f.logger.Warn("retrying download",
				zap.String("file", filename),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", wait),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		lastErr = f.fetchOnce(ctx, url, path, filename)
		if lastErr == nil {
			break
		}
		if !retryable(lastErr) {
			return "", lastErr
		}
	}
	if lastErr != nil {
		return "", lastErr
	}

	if expectedHash != "" {
		ok, err := VerifyHash(path, expectedHash, f.hashAlgo)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w for %s", ErrIntegrity, filename)
		}
	}

	f.logger.Info("download complete", zap.String("file", filename), zap.String("path", path))
	return path, nil
}

// fetchOnce performs a single ranged GET attempt, appending to any partial
// file at path.
func (f *Fetcher) fetchOnce(ctx context.Context, url, path, filename string) error {
	var offset int64
	if info, err := os.Stat(path); err == nil {
		offset = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Server ignored the range request (or none was sent); write from
		// the beginning.
		offset = 0
	case resp.StatusCode == http.StatusPartialContent:
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && offset > 0:
		// Partial file already covers the whole resource.
		return nil
	default:
		return &httpStatusError{code: resp.StatusCode, status: resp.Status}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if offset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	out, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer out.Close()

	f.logger.Info("downloading",
		zap.String("file", filename),
		zap.Bool("resume", offset > 0),
		zap.Int64("offset", offset))

	body := io.Reader(resp.Body)
	if f.progress {
		total := int64(0)
		if resp.ContentLength > 0 {
			total = offset + resp.ContentLength
		}
		bar := pb.New64(total)
		bar.Set(pb.Bytes, true)
		bar.SetCurrent(offset)
		bar.Start()
		defer bar.Finish()
		body = bar.NewProxyReader(resp.Body)
	}

	buf := make([]byte, f.chunkSize)
	if _, err := io.CopyBuffer(out, body, buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
