package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// config is the merged result of flags, PUGTL_* variables and the config
// file, in that order of precedence.
type config struct {
	Paths []string

	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Context  string
	Exclude  []string
	Keywords []string

	DryRun   bool
	JSON     bool
	Jobs     int
	HTML     bool
	FailFast bool
	NoDetect bool

	RedisURL    string
	CacheTTL    time.Duration
	CacheImport string
	CacheExport string

	RPM             int
	Burst           int
	Retries         int
	BreakerFailures int

	LogLevel  string
	LogFormat string
	Quiet     bool
}

func setupFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default is ./.pugtl.yaml or $HOME/.pugtl.yaml)")

	fs.StringP("provider", "p", "google", "translation backend: google, openai or gemini")
	fs.String("api-key", "", "API key (default: OPENAI_API_KEY or GEMINI_API_KEY/GOOGLE_API_KEY)")
	fs.String("model", "", "model for openai/gemini (default: gpt-4o-mini / gemini-2.5-flash)")
	fs.String("base-url", "", "base URL for an OpenAI-compatible API")
	fs.String("context", "", "what the site is about, passed to LLM backends")
	fs.StringSlice("exclude", nil, "terms LLM backends must not translate")
	fs.StringSlice("keyword", nil, "extra words that mark a span as Spanish")

	fs.BoolP("dry-run", "n", false, "list candidate spans without calling the backend or writing files")
	fs.Bool("json", false, "print the report as JSON")
	fs.IntP("jobs", "j", 1, "files processed at once")
	fs.Bool("html", false, "also rewrite .html files")
	fs.Bool("fail-fast", false, "stop at the first file error")
	fs.Bool("no-detect", false, "disable statistical language detection")

	fs.String("redis-url", "", "share the translation cache through Redis (redis://host:6379/0)")
	fs.Duration("cache-ttl", 0, "cache entry lifetime (0 = never expire)")
	fs.String("cache-import", "", "seed the cache from a JSON snapshot")
	fs.String("cache-export", "", "write the cache to a JSON snapshot after the run")

	fs.Int("rpm", 60, "backend requests per minute")
	fs.Int("burst", 1, "backend request burst")
	fs.Int("retries", 0, "retries for transient backend errors")
	fs.Int("breaker-failures", 5, "consecutive backend failures before giving up on it (0 = never)")

	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("log-format", "console", "log format: console or json")
	fs.BoolP("quiet", "q", false, "only log errors and skip the progress bar")
}

// loadConfig binds the command's flags to a fresh viper instance and reads
// the optional config file.
func loadConfig(cmd *cobra.Command, args []string) (*config, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("PUGTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file, _ := cmd.Flags().GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	} else {
		v.SetConfigName(".pugtl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := &config{
		Paths: args,

		Provider: strings.ToLower(v.GetString("provider")),
		APIKey:   v.GetString("api-key"),
		Model:    v.GetString("model"),
		BaseURL:  v.GetString("base-url"),
		Context:  v.GetString("context"),
		Exclude:  v.GetStringSlice("exclude"),
		Keywords: v.GetStringSlice("keyword"),

		DryRun:   v.GetBool("dry-run"),
		JSON:     v.GetBool("json"),
		Jobs:     v.GetInt("jobs"),
		HTML:     v.GetBool("html"),
		FailFast: v.GetBool("fail-fast"),
		NoDetect: v.GetBool("no-detect"),

		RedisURL:    v.GetString("redis-url"),
		CacheTTL:    v.GetDuration("cache-ttl"),
		CacheImport: v.GetString("cache-import"),
		CacheExport: v.GetString("cache-export"),

		RPM:             v.GetInt("rpm"),
		Burst:           v.GetInt("burst"),
		Retries:         v.GetInt("retries"),
		BreakerFailures: v.GetInt("breaker-failures"),

		LogLevel:  v.GetString("log-level"),
		LogFormat: v.GetString("log-format"),
		Quiet:     v.GetBool("quiet"),
	}

	if len(cfg.Paths) == 0 {
		cfg.Paths = v.GetStringSlice("paths")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = apiKeyFromEnv(cfg.Provider)
	}

	return cfg, cfg.validate()
}

func (c *config) validate() error {
	switch c.Provider {
	case "google", "openai", "gemini":
	default:
		return fmt.Errorf("unknown provider %q (want google, openai or gemini)", c.Provider)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1")
	}
	if c.Retries < 0 || c.RPM < 0 || c.Burst < 0 || c.BreakerFailures < 0 {
		return fmt.Errorf("--retries, --rpm, --burst and --breaker-failures must not be negative")
	}
	if c.DryRun {
		return nil
	}
	if c.Provider != "google" && c.APIKey == "" {
		return fmt.Errorf("%s needs an API key (--api-key or %s)", c.Provider, strings.Join(apiKeyEnv[c.Provider], "/"))
	}
	return nil
}

// apiKeyEnv lists the variables consulted for each backend's key.
var apiKeyEnv = map[string][]string{
	"openai": {"OPENAI_API_KEY"},
	"gemini": {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

func apiKeyFromEnv(provider string) string {
	for _, name := range apiKeyEnv[provider] {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}
