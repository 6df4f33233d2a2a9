package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TokenEnvVar is the environment variable holding the Apify API token.
const TokenEnvVar = "APIFY_API_TOKEN"

// MaxCarouselWorkers caps concurrent fetches within one carousel.
const MaxCarouselWorkers = 5

// envPrefix prefixes every other environment override.
const envPrefix = "IGPROFILE_"

// Config holds all configuration options for the profile scraper
type Config struct {
	// Remote scraping service
	Apify ApifyConfig `yaml:"apify" json:"apify"`

	// Media download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output layout
	Output OutputConfig `yaml:"output" json:"output"`

	// CSV export settings
	Export ExportConfig `yaml:"export" json:"export"`

	// Retry policy for calls to the scraping service
	Retry RetryConfig `yaml:"retry" json:"retry"`

	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ApifyConfig describes how the actor run is submitted and awaited.
type ApifyConfig struct {
	Token             string        `yaml:"token,omitempty" json:"-"`
	BaseURL           string        `yaml:"base_url" json:"base_url"`
	ActorID           string        `yaml:"actor_id" json:"actor_id"`
	ResultsLimit      int           `yaml:"results_limit" json:"results_limit"`
	ProxyGroups       []string      `yaml:"proxy_groups" json:"proxy_groups"`
	MaxRequestRetries int           `yaml:"max_request_retries" json:"max_request_retries"`
	MaxConcurrency    int           `yaml:"max_concurrency" json:"max_concurrency"`
	InitialDelay      time.Duration `yaml:"initial_delay" json:"initial_delay"`
	PollInterval      time.Duration `yaml:"poll_interval" json:"poll_interval"`
	WaitTimeout       time.Duration `yaml:"wait_timeout" json:"wait_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// DownloadConfig holds media download settings
type DownloadConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled"`
	CarouselWorkers   int           `yaml:"carousel_workers" json:"carousel_workers"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory     string `yaml:"base_directory" json:"base_directory"`
	CreateUserFolders bool   `yaml:"create_user_folders" json:"create_user_folders"`
	SaveRaw           bool   `yaml:"save_raw" json:"save_raw"`
	RunsFile          string `yaml:"runs_file" json:"runs_file"`
}

// ExportConfig controls which CSV files are written.
type ExportConfig struct {
	Enabled          bool `yaml:"enabled" json:"enabled"`
	CommentsFile     bool `yaml:"comments_file" json:"comments_file"`
	EmbedReelComment bool `yaml:"embed_reel_comments" json:"embed_reel_comments"`
}

// RetryConfig configures backoff for remote service calls
type RetryConfig struct {
	Enabled      bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay    time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
	JitterFactor float64       `yaml:"jitter_factor" json:"jitter_factor"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	OnComplete       bool   `yaml:"on_complete" json:"on_complete"`
	OnError          bool   `yaml:"on_error" json:"on_error"`
	NotificationType string `yaml:"notification_type" json:"notification_type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Apify: ApifyConfig{
			BaseURL:           "https://api.apify.com/v2",
			ActorID:           "apify~instagram-scraper",
			ResultsLimit:      5,
			ProxyGroups:       []string{"RESIDENTIAL"},
			MaxRequestRetries: 5,
			MaxConcurrency:    1,
			PollInterval:      3 * time.Second,
			WaitTimeout:       5 * time.Minute,
			RequestTimeout:    60 * time.Second,
		},
		Download: DownloadConfig{
			Enabled:           true,
			CarouselWorkers:   MaxCarouselWorkers,
			Timeout:           0,
			RequestsPerMinute: 0,
			UserAgent:         "igprofile/1.0",
		},
		Output: OutputConfig{
			BaseDirectory:     ".",
			CreateUserFolders: false,
			SaveRaw:           false,
			RunsFile:          ".igprofile_runs.json",
		},
		Export: ExportConfig{
			Enabled:          true,
			CommentsFile:     true,
			EmbedReelComment: true,
		},
		Retry: RetryConfig{
			Enabled:      true,
			MaxAttempts:  3,
			BaseDelay:    1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		Notifications: NotificationConfig{
			Enabled:          true,
			OnComplete:       true,
			OnError:          true,
			NotificationType: "terminal",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if token := os.Getenv(TokenEnvVar); token != "" {
		c.Apify.Token = token
	}
	if v := env("BASE_URL"); v != "" {
		c.Apify.BaseURL = v
	}
	if v := env("ACTOR_ID"); v != "" {
		c.Apify.ActorID = v
	}
	if v := env("RESULTS_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sRESULTS_LIMIT: %w", envPrefix, err))
		} else {
			c.Apify.ResultsLimit = n
		}
	}
	if v := env("WAIT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sWAIT_TIMEOUT: %w", envPrefix, err))
		} else {
			c.Apify.WaitTimeout = d
		}
	}
	if v := env("OUTPUT_DIR"); v != "" {
		c.Output.BaseDirectory = v
	}
	if v := env("DOWNLOAD_ENABLED"); v != "" {
		c.Download.Enabled = strings.EqualFold(v, "true")
	}
	if v := env("REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sREQUESTS_PER_MINUTE: %w", envPrefix, err))
		} else {
			c.Download.RequestsPerMinute = n
		}
	}
	if v := env("NOTIFICATIONS_ENABLED"); v != "" {
		c.Notifications.Enabled = strings.EqualFold(v, "true")
	}
	if v := env("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := env("LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

func env(name string) string {
	return os.Getenv(envPrefix + name)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in the standard locations and
// returns the first one that exists.
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".igprofile.yaml",
		".igprofile.yml",
		filepath.Join(home, ".config", "igprofile", "config.yaml"),
		filepath.Join(home, ".config", "igprofile", "config.yml"),
		filepath.Join(home, ".igprofile.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// DefaultConfigPath is where `config init` writes a new file.
func DefaultConfigPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "igprofile", "config.yaml")
}

// Validate checks the structure of the configuration. Credentials are
// checked separately by ValidateCredentials.
func (c *Config) Validate() error {
	var errs []error

	if c.Apify.BaseURL == "" {
		errs = append(errs, errors.New("apify base URL is required"))
	}
	if c.Apify.ActorID == "" {
		errs = append(errs, errors.New("apify actor ID is required"))
	}
	if c.Apify.ResultsLimit <= 0 {
		errs = append(errs, errors.New("results limit must be positive"))
	}
	if c.Apify.MaxConcurrency <= 0 {
		errs = append(errs, errors.New("actor max concurrency must be positive"))
	}
	if c.Apify.MaxRequestRetries < 0 {
		errs = append(errs, errors.New("actor max request retries cannot be negative"))
	}
	if c.Apify.PollInterval <= 0 {
		errs = append(errs, errors.New("poll interval must be positive"))
	}
	if c.Apify.WaitTimeout <= 0 {
		errs = append(errs, errors.New("wait timeout must be positive"))
	}
	if c.Apify.InitialDelay < 0 {
		errs = append(errs, errors.New("initial delay cannot be negative"))
	}

	if c.Download.CarouselWorkers <= 0 {
		errs = append(errs, errors.New("carousel workers must be positive"))
	}
	if c.Download.CarouselWorkers > MaxCarouselWorkers {
		errs = append(errs, fmt.Errorf("carousel workers cannot exceed %d", MaxCarouselWorkers))
	}
	if c.Download.Timeout < 0 {
		errs = append(errs, errors.New("download timeout cannot be negative"))
	}
	if c.Download.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Retry.Enabled {
		if c.Retry.MaxAttempts <= 0 {
			errs = append(errs, errors.New("retry max attempts must be positive"))
		}
		if c.Retry.Multiplier < 1 {
			errs = append(errs, errors.New("retry multiplier must be at least 1"))
		}
		if c.Retry.JitterFactor < 0 || c.Retry.JitterFactor > 1 {
			errs = append(errs, errors.New("retry jitter factor must be between 0 and 1"))
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	validFormats := map[string]bool{"": true, "console": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, errors.New("invalid log format"))
	}

	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "both": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	return errors.Join(errs...)
}

// ErrMissingToken is returned by ValidateCredentials when no API token is set.
var ErrMissingToken = fmt.Errorf("%s is not set", TokenEnvVar)

// ValidateCredentials reports whether an API token is available.
func (c *Config) ValidateCredentials() error {
	if strings.TrimSpace(c.Apify.Token) == "" {
		return ErrMissingToken
	}
	return nil
}

// Save saves the configuration to a file. The token is never written.
func (c *Config) Save(path string) error {
	out := *c
	out.Apify.Token = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["token"].(string); ok && token != "" {
		c.Apify.Token = token
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if limit, ok := flags["limit"].(int); ok && limit > 0 {
		c.Apify.ResultsLimit = limit
	}
	if wait, ok := flags["wait-timeout"].(time.Duration); ok && wait > 0 {
		c.Apify.WaitTimeout = wait
	}
	if noDownload, ok := flags["no-download"].(bool); ok && noDownload {
		c.Download.Enabled = false
	}
	if saveRaw, ok := flags["save-raw"].(bool); ok && saveRaw {
		c.Output.SaveRaw = true
	}
	if userFolders, ok := flags["user-folders"].(bool); ok && userFolders {
		c.Output.CreateUserFolders = true
	}
	if notify, ok := flags["notify"].(bool); ok {
		c.Notifications.Enabled = notify
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// EnvFileName is the dotenv file read from the working directory.
const EnvFileName = ".env"

// LoadEnvFiles loads dotenv files without overriding variables that are
// already set. Missing files are ignored.
func LoadEnvFiles() {
	home := os.Getenv("HOME")
	_ = godotenv.Load(EnvFileName)
	_ = godotenv.Load(filepath.Join(home, ".igprofile.env"))
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	LoadEnvFiles()

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// TokenPlaceholder is written into a freshly created .env template.
const TokenPlaceholder = "your_apify_token_here"

// EnsureEnvTemplate creates a dotenv file holding a placeholder token when
// path does not exist yet. It reports whether the file was created.
func EnsureEnvTemplate(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := godotenv.Write(map[string]string{TokenEnvVar: TokenPlaceholder}, path); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// IsPlaceholderToken reports whether token is unset or still the template value.
func IsPlaceholderToken(token string) bool {
	token = strings.TrimSpace(token)
	return token == "" || token == TokenPlaceholder
}
