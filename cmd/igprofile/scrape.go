package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"igprofile/pkg/auth"
	"igprofile/pkg/config"
	errs "igprofile/pkg/errors"
	"igprofile/pkg/logger"
	"igprofile/pkg/scraper"
	"igprofile/pkg/ui"
	"igprofile/pkg/ui/tui"
)

var (
	// Scrape command flags
	apiToken     string
	outputDir    string
	resultsLimit int
	waitTimeout  time.Duration
	noDownload   bool
	saveRaw      bool
	userFolders  bool
	notify       bool
	reuseDataset bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [username|profile-url]",
	Short: "Scrape one Instagram profile",
	Long: `Scrape the most recent posts of one Instagram profile.

The Apify API token is taken from, in order:
  - APIFY_API_TOKEN in the environment or a .env file
  - apify.token in the configuration file
  - the token stored with 'igprofile auth login'`,
	Example: `  # Ask for the profile interactively
  igprofile scrape

  # Scrape by handle or URL
  igprofile scrape naturelovers
  igprofile scrape https://www.instagram.com/naturelovers/

  # Only export tables, keep the raw dataset, one folder per profile
  igprofile scrape naturelovers --no-download --save-raw --user-folders

  # Re-read the dataset of the previous run instead of starting a new one
  igprofile scrape naturelovers --reuse-dataset`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	addScrapeFlags(scrapeCmd)
}

func addScrapeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&apiToken, "token", "", "Apify API token (overrides "+config.TokenEnvVar+")")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: current directory)")
	cmd.Flags().IntVar(&resultsLimit, "limit", 0, "number of recent posts to fetch (default 5)")
	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 0, "how long to wait for the actor run (default 5m)")
	cmd.Flags().BoolVar(&noDownload, "no-download", false, "skip media downloads")
	cmd.Flags().BoolVar(&saveRaw, "save-raw", false, "write the raw dataset and summary as JSON")
	cmd.Flags().BoolVar(&userFolders, "user-folders", false, "write output under <output>/<username>")
	cmd.Flags().BoolVar(&notify, "notify", true, "print or send a notification when the run ends")
	cmd.Flags().BoolVar(&reuseDataset, "reuse-dataset", false, "reuse the dataset of the last recorded run for this profile")
}

// scrapeFlags collects the flags the user actually set.
func scrapeFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("token") {
		flags["token"] = apiToken
	}
	if changed("output") {
		flags["output"] = outputDir
	}
	if changed("limit") {
		flags["limit"] = resultsLimit
	}
	if changed("wait-timeout") {
		flags["wait-timeout"] = waitTimeout
	}
	if changed("no-download") {
		flags["no-download"] = noDownload
	}
	if changed("save-raw") {
		flags["save-raw"] = saveRaw
	}
	if changed("user-folders") {
		flags["user-folders"] = userFolders
	}
	if changed("notify") {
		flags["notify"] = notify
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, scrapeFlags(cmd))
	if err != nil {
		return &configError{err: err}
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return &configError{err: err}
	}
	log := logger.GetLogger()
	log.WithField("version", version).Debug("igprofile starting")

	if ok, err := requireToken(cfg, storedToken, config.EnvFileName); !ok {
		return err
	}

	ui.PrintBanner()

	var input string
	if len(args) > 0 {
		input = args[0]
	} else {
		input, err = ui.PromptUsername(os.Stdin, ui.Out)
		if errors.Is(err, tui.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := scraper.New(cfg, scraper.Deps{Logger: log, Progress: ui.Out})
	if err != nil {
		return err
	}
	s.ReuseDataset = reuseDataset

	rep, err := s.Scrape(ctx, input)
	if err != nil {
		if errs.Is(err, errs.ErrorTypeConfig) {
			auth.WriteQuickHint(ui.Out)
		}
		return err
	}

	reportRun(rep)
	return nil
}

// resolveToken fills cfg.Apify.Token from the credential store when neither
// the environment nor the config file provided one. It reports whether a
// usable token is set.
func resolveToken(cfg *config.Config, lookup func() (string, error)) bool {
	if config.IsPlaceholderToken(cfg.Apify.Token) {
		cfg.Apify.Token = ""
	}
	if cfg.Apify.Token != "" {
		return true
	}

	token, err := lookup()
	if err != nil || config.IsPlaceholderToken(token) {
		return false
	}
	cfg.Apify.Token = token
	return true
}

// requireToken resolves the API token before any prompt or network call.
// When none is found it writes a template dotenv file at envPath if there
// is none yet, or returns a config error naming the missing variable.
func requireToken(cfg *config.Config, lookup func() (string, error), envPath string) (bool, error) {
	if resolveToken(cfg, lookup) {
		return true, nil
	}

	created, err := config.EnsureEnvTemplate(envPath)
	if err != nil {
		logger.GetLogger().WithError(err).Warn("Could not create .env template")
	}
	if created {
		ui.PrintWarning(fmt.Sprintf("Created %s. Add your Apify API token to it and run igprofile again.", envPath))
		auth.WriteQuickHint(ui.Out)
		return false, nil
	}

	auth.WriteQuickHint(ui.Out)
	return false, errs.Wrap(errs.ErrorTypeConfig, config.ErrMissingToken, "cannot scrape without an API token")
}

func storedToken() (string, error) {
	manager, err := auth.NewManager()
	if err != nil {
		return "", err
	}
	return manager.Token()
}

func reportRun(rep *scraper.Report) {
	if rep.Reused {
		ui.PrintInfo("Dataset", rep.DatasetID+" (reused)")
	}
	if rep.Partial {
		ui.PrintWarning("The actor run had not finished; results may be incomplete.")
	}

	ui.PrintSummary(rep.Summary)

	failed := 0
	for _, d := range rep.Downloads {
		if !d.Success {
			failed++
		}
	}
	if failed > 0 {
		ui.PrintWarning(fmt.Sprintf("%d of %d media downloads failed", failed, len(rep.Downloads)))
	}
	for _, f := range rep.Export.Files {
		ui.PrintInfo("Saved", f)
	}
	for _, f := range rep.Snapshots {
		ui.PrintInfo("Saved", f)
	}
	if rep.Export.Err != nil {
		ui.PrintError("Export stopped", rep.Export.Err.Error())
	}
	ui.PrintSuccess("Done: " + rep.OutputDir)
}
