package recipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"resolveup/internal/download"
	"resolveup/internal/logger"
)

const recipeFile = "PKGBUILD"

var (
	// ErrFetch indicates the recipe clone produced no recipe file
	ErrFetch = errors.New("recipe fetch failed")
	// ErrMissingArtifact indicates the expected installer archive is not in the build dir
	ErrMissingArtifact = errors.New("expected artifact not found")
)

var (
	pkgverRe = regexp.MustCompile(`(?m)^pkgver=(.*)$`)
	pkgrelRe = regexp.MustCompile(`(?m)^pkgrel=.*$`)
	// The checksum field is an array; only the first hash token inside it is
	// rewritten by the fallback path.
	sumsFieldRe = regexp.MustCompile(`(?s)sha256sums=\([^)]*\)`)
	hashTokenRe = regexp.MustCompile(`[0-9a-fA-F]{64}`)
)

// Syncer aligns a freshly fetched build recipe with a downloaded artifact:
// fetch, rewrite the version fields, refresh the checksum.
type Syncer struct {
	fetcher Fetcher
	// keepExt marks previously downloaded artifacts that survive the
	// build-dir sweep, e.g. ".zip".
	keepExt string

	lookPath func(file string) (string, error)
	runSums  func(ctx context.Context, dir string) error
}

// NewSyncer creates a Syncer that preserves files with the given extension
// when clearing the build directory.
func NewSyncer(fetcher Fetcher, keepExt string) *Syncer {
	return &Syncer{
		fetcher:  fetcher,
		keepExt:  keepExt,
		lookPath: exec.LookPath,
		runSums: func(ctx context.Context, dir string) error {
			cmd := exec.CommandContext(ctx, "updpkgsums")
			cmd.Dir = dir
			out, err := cmd.CombinedOutput()
			if err != nil {
				return fmt.Errorf("updpkgsums: %w\n%s", err, out)
			}
			return nil
		},
	}
}

// Sync prepares buildDir for the build: a clean recipe checkout whose pkgver
// matches version and whose checksum matches the artifact already sitting in
// buildDir. The artifact is never renamed; the recipe is rewritten to match it.
func (s *Syncer) Sync(ctx context.Context, buildDir, version, artifactName string) error {
	if err := s.clear(buildDir); err != nil {
		return err
	}
	if err := s.fetch(ctx, buildDir); err != nil {
		return err
	}
	if err := s.setVersion(buildDir, version); err != nil {
		return err
	}

	artifact := filepath.Join(buildDir, artifactName)
	if _, err := os.Stat(artifact); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingArtifact, artifact)
	}

	return s.refreshChecksum(ctx, buildDir, artifact)
}

// clear removes everything from buildDir except downloaded artifacts, so each
// run starts from a pristine recipe without re-fetching gigabytes.
func (s *Syncer) clear(buildDir string) error {
	entries, err := os.ReadDir(buildDir)
	if err != nil {
		return fmt.Errorf("failed to read build dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), s.keepExt) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(buildDir, e.Name())); err != nil {
			return fmt.Errorf("failed to clear build dir: %w", err)
		}
	}
	return nil
}

// fetch clones the recipe into a temp subdirectory and moves its files up
// into buildDir, discarding repository metadata.
func (s *Syncer) fetch(ctx context.Context, buildDir string) error {
	tmp, err := os.MkdirTemp(buildDir, ".recipe-*")
	if err != nil {
		return fmt.Errorf("failed to create clone dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := s.fetcher.Fetch(ctx, tmp); err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if err := copyTree(tmp, buildDir); err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}

	if _, err := os.Stat(filepath.Join(buildDir, recipeFile)); err != nil {
		return fmt.Errorf("%w: no %s in checkout", ErrFetch, recipeFile)
	}
	return nil
}

// setVersion rewrites the recipe's pkgver to version and resets pkgrel to 1.
// A recipe already at the target version is left untouched.
func (s *Syncer) setVersion(buildDir, version string) error {
	path := filepath.Join(buildDir, recipeFile)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read recipe: %w", err)
	}

	m := pkgverRe.FindSubmatch(content)
	if m == nil {
		return fmt.Errorf("%w: recipe has no pkgver field", ErrFetch)
	}
	current := strings.TrimSpace(string(m[1]))
	if current == version {
		logger.Debug("recipe already at %s\n", version)
		return nil
	}

	logger.Info("updating recipe %s -> %s\n", current, version)
	content = pkgverRe.ReplaceAll(content, []byte("pkgver="+version))
	content = pkgrelRe.ReplaceAll(content, []byte("pkgrel=1"))

	return os.WriteFile(path, content, 0o644)
}

// refreshChecksum aligns the recipe's checksum field with the artifact.
// When the distro's checksum helper is installed it is authoritative.
// Otherwise the first 64-char hash token inside the sha256sums field is
// replaced; if none exists the recipe may be left inconsistent, which is
// reported but not fatal.
func (s *Syncer) refreshChecksum(ctx context.Context, buildDir, artifact string) error {
	if _, err := s.lookPath("updpkgsums"); err == nil {
		logger.Info("refreshing checksums with updpkgsums\n")
		return s.runSums(ctx, buildDir)
	}

	sum, err := download.SHA256(artifact)
	if err != nil {
		return err
	}

	path := filepath.Join(buildDir, recipeFile)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read recipe: %w", err)
	}

	field := sumsFieldRe.FindIndex(content)
	if field == nil {
		logger.Warn("recipe has no sha256sums field; verify checksums manually\n")
		return nil
	}
	token := hashTokenRe.FindIndex(content[field[0]:field[1]])
	if token == nil {
		logger.Warn("no checksum token found in recipe; verify checksums manually\n")
		return nil
	}

	start, end := field[0]+token[0], field[0]+token[1]
	var out []byte
	out = append(out, content[:start]...)
	out = append(out, sum...)
	out = append(out, content[end:]...)

	return os.WriteFile(path, out, 0o644)
}

// copyTree copies the contents of src into dst, skipping git metadata.
func copyTree(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Name() == ".git" {
			continue
		}
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())
		if e.IsDir() {
			if err := os.MkdirAll(to, 0o755); err != nil {
				return err
			}
			if err := copyTree(from, to); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(from, to); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
