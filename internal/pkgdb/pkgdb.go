package pkgdb

import (
	"context"
	"os/exec"
	"strings"

	"resolveup/internal/logger"
)

// VersionNone is reported when the tracked package has no entry in the
// package database.
const VersionNone = "none"

// Pacman answers installed-version queries against the system package
// database. Query failures are not fatal: an uninstalled package and an
// unreadable database both report VersionNone.
type Pacman struct {
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewPacman() *Pacman {
	return &Pacman{
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// Installed returns the installed version of pkg with the package-release
// suffix stripped, e.g. "19.0.1-1" becomes "19.0.1".
func (p *Pacman) Installed(ctx context.Context, pkg string) string {
	out, err := p.run(ctx, "pacman", "-Q", pkg)
	if err != nil {
		logger.Debug("pacman -Q %s failed: %v\n", pkg, err)
		return VersionNone
	}

	// Output shape: "<name> <version>-<release>"
	parts := strings.Fields(string(out))
	if len(parts) < 2 {
		return VersionNone
	}
	ver := parts[1]
	if i := strings.LastIndex(ver, "-"); i > 0 {
		ver = ver[:i]
	}
	return ver
}
