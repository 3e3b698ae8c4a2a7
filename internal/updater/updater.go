package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"resolveup/internal/build"
	"resolveup/internal/config"
	"resolveup/internal/download"
	"resolveup/internal/logger"
	"resolveup/internal/pkgdb"
	"resolveup/internal/profile"
	"resolveup/internal/recipe"
	"resolveup/internal/vendorapi"
)

// ErrDependencyMissing indicates a required external tool is not on PATH
var ErrDependencyMissing = errors.New("required tool not found")

// requiredTools must be present before any stage runs. updpkgsums is merely
// advisory: without it the checksum fallback heuristic is used.
var requiredTools = []string{"pacman", "makepkg"}

// The orchestrator depends on capabilities, not on the external programs
// behind them, so every stage is substitutable in tests.
type (
	// PackageQuery reports the installed version of a package, or
	// pkgdb.VersionNone.
	PackageQuery interface {
		Installed(ctx context.Context, pkg string) string
	}

	// VersionSource is the vendor API surface: latest release lookup and the
	// registration handshake.
	VersionSource interface {
		LatestVersion(ctx context.Context) (vendorapi.Version, error)
		RequestDownloadURL(ctx context.Context, downloadID string, p *profile.Profile) (string, error)
	}

	// RecipeSyncer aligns the community recipe with a target version and a
	// downloaded artifact.
	RecipeSyncer interface {
		Sync(ctx context.Context, buildDir, version, artifactName string) error
	}

	// Builder turns a prepared recipe directory into an installed package.
	Builder interface {
		Build(ctx context.Context, buildDir string, install bool) error
	}
)

// Options are the run modes selected on the command line.
type Options struct {
	Force       bool
	CheckOnly   bool
	SkipInstall bool
	Reconfigure bool
}

// Updater runs the update pipeline: preflight, configure, check, acquire,
// realize. Stages run strictly in order and the first error aborts the run.
type Updater struct {
	settings config.Settings
	opts     Options

	packages PackageQuery
	api      VersionSource
	syncer   RecipeSyncer
	builder  Builder

	fetch       func(ctx context.Context, url, dest string, force bool) error
	loadProfile func(path string, reconfigure bool) (*profile.Profile, error)
	lookPath    func(file string) (string, error)
}

// New wires an Updater to the real collaborators: pacman, the vendor API, the
// AUR clone, and makepkg.
func New(settings config.Settings, opts Options) *Updater {
	return &Updater{
		settings: settings,
		opts:     opts,
		packages: pkgdb.NewPacman(),
		api: vendorapi.NewClient(vendorapi.Options{
			VersionURL:  settings.VersionURL,
			RegisterURL: settings.RegisterURL,
			Referer:     settings.Referer,
			Product:     settings.Product,
			Platform:    settings.Platform,
		}),
		syncer:  recipe.NewSyncer(&recipe.GitFetcher{URL: settings.RecipeURL}, filepath.Ext(settings.ArtifactSuffix)),
		builder: build.NewMakepkg(),
		fetch:   download.Fetch,
		loadProfile: func(path string, reconfigure bool) (*profile.Profile, error) {
			return profile.Load(path, reconfigure, profile.NewTerminalPrompter())
		},
		lookPath: exec.LookPath,
	}
}

// Run executes the pipeline. A nil return covers three outcomes: already up
// to date, check-only report, or a completed build.
func (u *Updater) Run(ctx context.Context) error {
	if err := u.preflight(); err != nil {
		return err
	}

	prof, err := u.loadProfile(u.settings.ProfilePath, u.opts.Reconfigure)
	if err != nil {
		return err
	}

	installed := u.packages.Installed(ctx, u.settings.Package)
	latest, err := u.api.LatestVersion(ctx)
	if err != nil {
		return err
	}
	logger.Info("installed: %s, latest: %s\n", installed, latest)

	// The up-to-date short-circuit wins over check-only mode.
	if installed == latest.String() && !u.opts.Force {
		logger.Success("%s %s is up to date\n", u.settings.Package, installed)
		return nil
	}
	if u.opts.CheckOnly {
		logger.Success("update available: %s -> %s\n", installed, latest)
		return nil
	}

	if err := u.acquire(ctx, latest, prof); err != nil {
		return err
	}

	if err := u.builder.Build(ctx, u.settings.BuildDir, !u.opts.SkipInstall); err != nil {
		return err
	}

	if u.opts.SkipInstall {
		logger.Success("built %s %s in %s\n", u.settings.Package, latest, u.settings.BuildDir)
	} else {
		logger.Success("installed %s %s\n", u.settings.Package, latest)
	}
	return nil
}

// preflight verifies the external toolchain before any work starts.
func (u *Updater) preflight() error {
	for _, tool := range requiredTools {
		if _, err := u.lookPath(tool); err != nil {
			return fmt.Errorf("%w: %s (install it with: pacman -S --needed base-devel)", ErrDependencyMissing, tool)
		}
	}
	if _, err := u.lookPath("updpkgsums"); err != nil {
		logger.Warn("updpkgsums not found (pacman-contrib); falling back to built-in checksum rewrite\n")
	}
	return nil
}

// acquire downloads the installer archive and synchronizes the recipe to it.
func (u *Updater) acquire(ctx context.Context, latest vendorapi.Version, prof *profile.Profile) error {
	if err := os.MkdirAll(u.settings.BuildDir, 0o755); err != nil {
		return fmt.Errorf("failed to create build dir: %w", err)
	}

	url, err := u.api.RequestDownloadURL(ctx, latest.DownloadID, prof)
	if err != nil {
		return err
	}

	artifact := u.settings.ArtifactName(latest.String())
	if err := u.fetch(ctx, url, filepath.Join(u.settings.BuildDir, artifact), u.opts.Force); err != nil {
		return err
	}

	return u.syncer.Sync(ctx, u.settings.BuildDir, latest.String(), artifact)
}
