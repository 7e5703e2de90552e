// Package config loads and validates scraper configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when no OMDb API key was supplied.
var ErrMissingAPIKey = errors.New("omdb api key is required (set OMDB_API_KEY)")

// Config captures all scraper configuration knobs loaded via Viper.
type Config struct {
	Chart   ChartConfig   `mapstructure:"chart"`
	Render  RenderConfig  `mapstructure:"render"`
	OMDb    OMDbConfig    `mapstructure:"omdb"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Output  OutputConfig  `mapstructure:"output"`
	Storage StorageConfig `mapstructure:"storage"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ChartConfig points at the ranked listing page.
type ChartConfig struct {
	URL string `mapstructure:"url"`
}

// RenderConfig configures the headless browser session.
type RenderConfig struct {
	Settle    time.Duration `mapstructure:"settle"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// OMDbConfig holds the metadata API endpoint and credentials.
type OMDbConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// HTTPConfig configures outbound HTTP calls. A zero timeout means none.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// OutputConfig sets where the report and thumbnails land.
type OutputConfig struct {
	Dir        string `mapstructure:"dir"`
	ThumbsDir  string `mapstructure:"thumbs_dir"`
	ReportFile string `mapstructure:"report_file"`
}

// StorageConfig selects the poster blob backend. Empty bucket means local disk.
type StorageConfig struct {
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig controls the optional Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from defaults, an optional file, and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("omdb.api_key", "SCRAPER_OMDB_API_KEY", "OMDB_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind api key env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chart.url", "https://www.imdb.com/chart/top/")
	v.SetDefault("render.settle", "2s")
	v.SetDefault("render.timeout", "0s")
	v.SetDefault("render.user_agent", "")
	v.SetDefault("omdb.base_url", "https://www.omdbapi.com/")
	v.SetDefault("omdb.api_key", "")
	v.SetDefault("http.timeout", "0s")
	v.SetDefault("http.user_agent", "movie-scraper/1.0")
	v.SetDefault("output.dir", "external-movies")
	v.SetDefault("output.thumbs_dir", "thumbs")
	v.SetDefault("output.report_file", "movies.json")
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.OMDb.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.Chart.URL == "" {
		return fmt.Errorf("chart.url must be set")
	}
	if c.OMDb.BaseURL == "" {
		return fmt.Errorf("omdb.base_url must be set")
	}
	if c.Render.Settle < 0 {
		return fmt.Errorf("render.settle must be >= 0")
	}
	if c.Render.Timeout < 0 || c.HTTP.Timeout < 0 {
		return fmt.Errorf("timeouts must be >= 0")
	}
	if c.Output.Dir == "" || c.Output.ReportFile == "" {
		return fmt.Errorf("output.dir and output.report_file must be set")
	}
	if c.Storage.GCSBucket == "" && c.Output.ThumbsDir == "" {
		return fmt.Errorf("output.thumbs_dir must be set when storing posters locally")
	}
	return nil
}

// ReportPath is the fixed location of the report inside the output dir.
func (c Config) ReportPath() string {
	return filepath.Join(c.Output.Dir, c.Output.ReportFile)
}

// CheckLayout verifies the output directories exist. The scraper never
// creates them.
func (c Config) CheckLayout() error {
	dirs := []string{c.Output.Dir}
	if c.Storage.GCSBucket == "" {
		dirs = append(dirs, filepath.Join(c.Output.Dir, c.Output.ThumbsDir))
	}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("output directory %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("output path %s is not a directory", dir)
		}
	}
	return nil
}
