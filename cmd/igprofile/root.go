package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"igprofile/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd scrapes a profile when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "igprofile [username|profile-url]",
	Short: "Scrape an Instagram profile through the Apify instagram-scraper actor",
	Long: `igprofile fetches the most recent posts of an Instagram profile through the
apify/instagram-scraper actor, downloads their media and writes CSV tables.

Without an argument you are asked for a username or profile URL.

Output layout:
  post/<shortcode>.jpg        single images
  post/<shortcode>/1.jpg ...  carousel items
  reel/<shortcode>.mp4        videos
  <username>_*.csv            profile, posts, comments and reels tables`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	// Errors are printed once by Execute.
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScrape(cmd, args)
	},
}

// configError marks failures that should end the process with status 1.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// Execute runs the command tree and returns the process exit status.
func Execute() int {
	return exitCode(rootCmd.Execute())
}

// exitCode prints err and maps it to a status. Only configuration and flag
// errors are fatal; a failed scrape has already been reported and exits 0.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ce *configError
	if errors.As(err, &ce) {
		ui.PrintError("Configuration error", err.Error())
		return 1
	}
	ui.PrintError("Error", err.Error())
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: .igprofile.yaml or ~/.config/igprofile/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	addScrapeFlags(rootCmd)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &configError{err: err}
	})

	rootCmd.SetVersionTemplate(`igprofile {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
