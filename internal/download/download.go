package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"resolveup/internal/logger"
)

// ErrNoArtifact indicates the transfer finished without producing the file
var ErrNoArtifact = errors.New("download produced no artifact")

// No client timeout: the installer archive is multiple gigabytes and a slow
// transfer is not an error. Cancellation comes from the request context.
var httpClient = &http.Client{}

// Fetch streams url into dest. When dest already exists and force is unset the
// call is a no-op, which makes re-runs after a downstream failure cheap. The
// body is written to a temp file first so an interrupted transfer never leaves
// a truncated artifact behind.
func Fetch(ctx context.Context, url, dest string, force bool) error {
	if !force {
		if _, err := os.Stat(dest); err == nil {
			logger.Info("artifact already present, skipping download: %s\n", filepath.Base(dest))
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	defer func() { _ = os.Remove(tmp) }()

	bar := progressbar.DefaultBytes(resp.ContentLength, filepath.Base(dest))
	if _, err := io.Copy(io.MultiWriter(f, bar), resp.Body); err != nil {
		_ = f.Close()
		return fmt.Errorf("transfer failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}

	if _, err := os.Stat(dest); err != nil {
		return fmt.Errorf("%w: %s", ErrNoArtifact, dest)
	}
	return nil
}

// SHA256 returns the hex digest of the file at path.
func SHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
