// Package download streams remote audio files to disk with retry, writing to
// a temp path and renaming into place so a partially written file is never
// observed at the final location.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"podscribe/internal/config"
	"podscribe/internal/logging"
	"podscribe/internal/services"
)

const (
	userAgent = "podscribe/1.0"
	chunkSize = 1 << 20
)

// Downloader fetches audio enclosures.
type Downloader struct {
	client     *http.Client
	tempDir    string
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// New builds a downloader from the runtime configuration.
func New(cfg *config.Config, logger *slog.Logger) *Downloader {
	return &Downloader{
		client:     &http.Client{Timeout: time.Duration(cfg.Runtime.DownloadTimeoutSeconds) * time.Second},
		tempDir:    cfg.Storage.TempDir,
		maxRetries: cfg.Runtime.MaxRetries,
		backoff:    time.Duration(cfg.Runtime.RetryBackoffSeconds) * time.Second,
		logger:     logging.WithComponent(logger, "download"),
	}
}

// Fetch downloads url to dest. The file is streamed to
// <temp_dir>/<name>.part and atomically renamed into place on success; when
// the server reports a content length, the written byte count must match it
// exactly. Failed attempts are retried with linearly increasing backoff up to
// the configured limit.
func (d *Downloader) Fetch(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create episode directory: %w", err)
	}
	if err := os.MkdirAll(d.tempDir, 0o755); err != nil {
		return fmt.Errorf("create temp directory: %w", err)
	}

	tempPath := filepath.Join(d.tempDir, filepath.Base(dest)+".part")

	retries := d.maxRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := d.fetchOnce(ctx, url, tempPath, dest)
		if err == nil {
			d.logger.Info("downloaded", logging.String("url", url), logging.String("dest", dest))
			return nil
		}
		lastErr = err
		d.logger.Warn("download attempt failed",
			logging.String("url", url),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", retries),
			logging.Error(err))
		if attempt < retries {
			if err := sleepContext(ctx, d.backoff*time.Duration(attempt)); err != nil {
				return err
			}
		}
	}
	return services.Wrap(services.ErrTransient, "download", "fetch",
		fmt.Sprintf("failed after %d attempts", retries), lastErr)
}

func (d *Downloader) fetchOnce(ctx context.Context, url, tempPath, dest string) error {
	// A stale partial file from an interrupted run is discarded.
	if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale partial file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}

	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("create partial file: %w", err)
	}
	written, err := io.CopyBuffer(out, resp.Body, make([]byte, chunkSize))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write partial file: %w", err)
	}

	if total := resp.ContentLength; total > 0 && written != total {
		return fmt.Errorf("size mismatch: expected %d, wrote %d", total, written)
	}

	if err := moveFile(tempPath, dest); err != nil {
		return fmt.Errorf("move into place: %w", err)
	}
	return nil
}

// moveFile renames src to dest, copying when the rename crosses filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyInto(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyInto copies src to dest through a temporary file in the destination
// directory, so dest only ever appears via rename and a crash mid-copy never
// leaves a partial file at the final path.
func copyInto(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dest + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
