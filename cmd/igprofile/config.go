package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"igprofile/pkg/auth"
	"igprofile/pkg/config"
	"igprofile/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Manage the igprofile configuration file.

Configuration is merged from, highest priority first:
  - command line flags
  - environment variables (APIFY_API_TOKEN, IGPROFILE_*) and .env files
  - the configuration file
  - default values`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	Long: `Write a configuration file holding every option at its default value.

The file is written to --config when given, otherwise to
~/.config/igprofile/config.yaml. The API token is never written.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and check for an API token",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		ui.PrintError("Configuration file already exists", path)
		fmt.Fprintf(ui.Out, "\nTo overwrite, first remove the existing file:\n  rm %s\n", path)
		return nil
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Fprintln(ui.Out, "\nNext steps:")
	fmt.Fprintf(ui.Out, "1. Put your token in %s or run 'igprofile auth login'\n", config.EnvFileName)
	fmt.Fprintln(ui.Out, "2. Run 'igprofile config validate' to check the configuration")
	fmt.Fprintln(ui.Out, "3. Scrape a profile with 'igprofile scrape <username>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return &configError{err: err}
	}

	display := *cfg
	display.Apify.Token = ""
	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, string(data))

	token := "(not set)"
	if !config.IsPlaceholderToken(cfg.Apify.Token) {
		token = auth.MaskToken(cfg.Apify.Token)
	}
	fmt.Fprintln(ui.Out)
	ui.PrintInfo("API token", token)

	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source == "" {
		source = "(none, defaults only)"
	}
	ui.PrintInfo("Configuration file", source)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source != "" {
		ui.PrintInfo("Validating configuration", source)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return &configError{err: err}
	}

	var problems []string
	if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}
	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Fprintf(ui.Out, "  - %s\n", p)
		}
		return &configError{err: fmt.Errorf("%d configuration problem(s)", len(problems))}
	}

	if !resolveToken(cfg, storedToken) {
		ui.PrintWarning("No API token found")
		auth.WriteQuickHint(ui.Out)
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Fprintln(ui.Out, "\nConfiguration summary:")
	fmt.Fprintf(ui.Out, "  Actor: %s (%d posts)\n", cfg.Apify.ActorID, cfg.Apify.ResultsLimit)
	fmt.Fprintf(ui.Out, "  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Fprintf(ui.Out, "  Downloads: %t (%d carousel workers)\n", cfg.Download.Enabled, cfg.Download.CarouselWorkers)
	fmt.Fprintf(ui.Out, "  Max retries: %d\n", cfg.Retry.MaxAttempts)
	fmt.Fprintf(ui.Out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
