package build

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"resolveup/internal/logger"
)

// Makepkg drives the distro build tool against a prepared recipe directory.
type Makepkg struct {
	run func(ctx context.Context, dir string, args ...string) error
}

func NewMakepkg() *Makepkg {
	return &Makepkg{
		run: func(ctx context.Context, dir string, args ...string) error {
			cmd := exec.CommandContext(ctx, "makepkg", args...)
			cmd.Dir = dir
			cmd.Stdin = os.Stdin
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			return cmd.Run()
		},
	}
}

// Build compiles the recipe in buildDir, resolving build dependencies and
// auto-answering prompts. With install set the result is also installed and
// registered with the package database. Failures propagate as-is; partial
// build output is left in place for inspection.
func (m *Makepkg) Build(ctx context.Context, buildDir string, install bool) error {
	args := []string{"--noconfirm", "-s"}
	if install {
		args = append(args, "-i")
	}

	logger.Info("running makepkg in %s\n", buildDir)
	if err := m.run(ctx, buildDir, args...); err != nil {
		return fmt.Errorf("makepkg failed: %w", err)
	}
	return nil
}
