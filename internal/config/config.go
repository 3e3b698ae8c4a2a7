package config

import (
	"github.com/spf13/viper"

	"resolveup/internal/paths"
)

// Settings holds all runtime configuration for a resolveup run.
// Values are populated from settings.yaml, RESOLVEUP_* env vars, and CLI flags.
type Settings struct {
	// Product is the vendor-facing product label sent with the registration call.
	Product string `mapstructure:"product"`
	// Package is the name the recipe and the package database track the product under.
	Package string `mapstructure:"package"`
	// Platform is the vendor API platform selector.
	Platform string `mapstructure:"platform"`

	VersionURL  string `mapstructure:"version_url"`
	RegisterURL string `mapstructure:"register_url"`
	Referer     string `mapstructure:"referer"`
	RecipeURL   string `mapstructure:"recipe_url"`

	// ArtifactPrefix and ArtifactSuffix bracket the version in the vendor's
	// installer filename, e.g. DaVinci_Resolve_19.0.1_Linux.zip.
	ArtifactPrefix string `mapstructure:"artifact_prefix"`
	ArtifactSuffix string `mapstructure:"artifact_suffix"`

	BuildDir    string `mapstructure:"build_dir"`
	ProfilePath string `mapstructure:"profile_path"`
}

// Load reads settings from viper, applying built-in defaults for any values
// not set by config file, environment, or flags.
func Load() Settings {
	viper.SetDefault("product", "DaVinci Resolve")
	viper.SetDefault("package", "davinci-resolve")
	viper.SetDefault("platform", "linux")
	viper.SetDefault("version_url", "https://www.blackmagicdesign.com/api/support/latest-stable-version/davinci-resolve/linux")
	viper.SetDefault("register_url", "https://www.blackmagicdesign.com/api/register/us/download/%s")
	viper.SetDefault("referer", "https://www.blackmagicdesign.com/products/davinciresolve")
	viper.SetDefault("recipe_url", "https://aur.archlinux.org/davinci-resolve.git")
	viper.SetDefault("artifact_prefix", "DaVinci_Resolve_")
	viper.SetDefault("artifact_suffix", "_Linux.zip")
	viper.SetDefault("build_dir", paths.DefaultBuildDir())
	viper.SetDefault("profile_path", paths.DefaultProfilePath())

	var s Settings
	_ = viper.Unmarshal(&s)
	return s
}

// ArtifactName returns the installer filename the vendor serves for version.
func (s Settings) ArtifactName(version string) string {
	return s.ArtifactPrefix + version + s.ArtifactSuffix
}
