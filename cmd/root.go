package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resolveup/internal/config"
	"resolveup/internal/logger"
	"resolveup/internal/paths"
	"resolveup/internal/updater"
)

var version = "dev"

var (
	force       bool
	checkOnly   bool
	skipInstall bool
	reconfigure bool
	debug       bool
)

var rootCmd = &cobra.Command{
	Use:     "resolveup",
	Short:   "Keep DaVinci Resolve current through the community build recipe",
	Version: version,
	Args:    cobra.NoArgs,
	Long: `resolveup checks the vendor's support API for the latest DaVinci Resolve
release, performs the registration handshake to obtain a download URL, fetches
the installer archive, aligns the AUR recipe with it, and builds the package
with makepkg.

Registration details are collected once and stored in
` + paths.DefaultProfilePath() + ` (owner-readable only).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
		initSettings()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		u := updater.New(config.Load(), updater.Options{
			Force:       force,
			CheckOnly:   checkOnly,
			SkipInstall: skipInstall,
			Reconfigure: reconfigure,
		})
		return u.Run(cmd.Context())
	},
}

func initSettings() {
	viper.SetConfigFile(paths.DefaultSettingsPath())
	viper.SetEnvPrefix("RESOLVEUP")
	viper.AutomaticEnv()

	// The settings file is optional; defaults cover everything.
	_ = viper.ReadInConfig()
}

func Execute() error {
	// Silence usage and errors to avoid cluttering output with Cobra defaults
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().BoolVar(&force, "force", false, "reinstall even when already up to date, re-downloading the installer")
	rootCmd.Flags().BoolVar(&checkOnly, "check-only", false, "report whether an update is available and exit")
	rootCmd.Flags().BoolVar(&skipInstall, "skip-install", false, "build the package without installing it")
	rootCmd.Flags().BoolVar(&reconfigure, "reconfigure", false, "prompt for registration details again")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}
