// Package config loads and validates sitescout configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stordev/sitescout/internal/sites"
)

// Config captures all configuration knobs loaded via Viper. Secrets
// (database.dsn, places.api_key, census.api_key) are only ever sourced
// from the environment or a config file, never literals.
type Config struct {
	Application ApplicationConfig       `mapstructure:"application"`
	Server      ServerConfig            `mapstructure:"server"`
	Logging     LoggingConfig           `mapstructure:"logging"`
	HTTP        HTTPConfig              `mapstructure:"http"`
	Database    DatabaseConfig          `mapstructure:"database"`
	Storage     StorageConfig           `mapstructure:"storage"`
	PubSub      PubSubConfig            `mapstructure:"pubsub"`
	Places      PlacesConfig            `mapstructure:"places"`
	QCEW        QCEWConfig              `mapstructure:"qcew"`
	Census      CensusConfig            `mapstructure:"census"`
	Permits     PermitsConfig           `mapstructure:"permits"`
	Scoring     ScoringConfig           `mapstructure:"scoring"`
	Saturation  sites.SaturationFactors `mapstructure:"saturation"`
}

// ApplicationConfig identifies the service for telemetry resources.
type ApplicationConfig struct {
	ServiceName   string `mapstructure:"service_name"`
	Version       string `mapstructure:"version"`
	ProjectID     string `mapstructure:"project_id"`
	ProjectNumber string `mapstructure:"project_number"`
	Region        string `mapstructure:"region"`
}

// ServerConfig controls the read API server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// HTTPConfig applies to every outbound fetch.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// DatabaseConfig controls access to the shared Postgres database.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// StorageConfig selects the raw-payload archive backend.
type StorageConfig struct {
	Provider string `mapstructure:"provider"`
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	LocalDir string `mapstructure:"local_dir"`
}

// PubSubConfig identifies the run-completed event topic. Both fields empty
// means events are dropped (noop publisher).
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// PlacesConfig governs the Google Places adapter.
type PlacesConfig struct {
	APIKey            string `mapstructure:"api_key"`
	BaseURL           string `mapstructure:"base_url"`
	RadiusMeters      int    `mapstructure:"radius_meters"`
	Keyword           string `mapstructure:"keyword"`
	StorageKeyword    string `mapstructure:"storage_keyword"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// QCEWConfig governs the BLS QCEW adapter.
type QCEWConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// CensusConfig governs the Census ACS adapter.
type CensusConfig struct {
	APIKey            string `mapstructure:"api_key"`
	BaseURL           string `mapstructure:"base_url"`
	Year              int    `mapstructure:"year"`
	BatchSize         int    `mapstructure:"batch_size"`
	PipelineDepth     int    `mapstructure:"pipeline_depth"`
	BatchDelayMs      int    `mapstructure:"batch_delay_ms"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// PermitsConfig governs the permit PDF/portal adapter.
type PermitsConfig struct {
	PortalURL           string `mapstructure:"portal_url"`
	RespectRobots       bool   `mapstructure:"respect_robots"`
	HeadlessEnabled     bool   `mapstructure:"headless_enabled"`
	HeadlessMaxParallel int    `mapstructure:"headless_max_parallel"`
	NavTimeoutSeconds   int    `mapstructure:"nav_timeout_seconds"`
	RequestsPerMinute   int    `mapstructure:"requests_per_minute"`
}

// ScoringConfig externalizes the final-score business rule.
type ScoringConfig struct {
	Weights        sites.Weights `mapstructure:"weights"`
	MaxCostPerAcre float64       `mapstructure:"max_cost_per_acre"`
}

// maxACSBatch is the Census API's hard per-request ZCTA limit.
const maxACSBatch = 50

// Load builds a Config from defaults, an optional YAML file, and
// SITESCOUT_-prefixed environment variables (env wins).
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SITESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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
	v.SetDefault("application.service_name", "sitescout")
	v.SetDefault("application.version", "dev")
	v.SetDefault("application.project_id", "")
	v.SetDefault("application.project_number", "")
	v.SetDefault("application.region", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.user_agent", "sitescout/1.0")

	// Secrets default empty so environment overrides bind through Unmarshal.
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "30m")

	v.SetDefault("storage.provider", "noop")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.prefix", "raw")
	v.SetDefault("storage.local_dir", "data/raw")

	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")

	v.SetDefault("places.api_key", "")
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("places.radius_meters", 40000)
	v.SetDefault("places.keyword", "distribution center")
	v.SetDefault("places.storage_keyword", "self storage")
	v.SetDefault("places.requests_per_minute", 60)

	v.SetDefault("qcew.base_url", "https://data.bls.gov/cew/data/api")
	v.SetDefault("qcew.requests_per_minute", 30)

	v.SetDefault("census.api_key", "")
	v.SetDefault("census.base_url", "https://api.census.gov/data")
	v.SetDefault("census.year", 2023)
	v.SetDefault("census.batch_size", maxACSBatch)
	v.SetDefault("census.pipeline_depth", 4)
	v.SetDefault("census.batch_delay_ms", 250)
	v.SetDefault("census.requests_per_minute", 30)

	v.SetDefault("permits.portal_url", "")
	v.SetDefault("permits.respect_robots", true)
	v.SetDefault("permits.headless_enabled", false)
	v.SetDefault("permits.headless_max_parallel", 1)
	v.SetDefault("permits.nav_timeout_seconds", 25)
	v.SetDefault("permits.requests_per_minute", 10)

	w := sites.DefaultWeights()
	v.SetDefault("scoring.weights.parcel", w.Parcel)
	v.SetDefault("scoring.weights.county", w.County)
	v.SetDefault("scoring.weights.financial", w.Financial)
	v.SetDefault("scoring.weights.saturation", w.Saturation)
	v.SetDefault("scoring.max_cost_per_acre", 250000)

	f := sites.DefaultSaturationFactors()
	v.SetDefault("saturation.sqft_per_capita", f.SqftPerCapita)
	v.SetDefault("saturation.avg_facility_sqft", f.AvgFacilitySqft)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	switch c.Storage.Provider {
	case "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket must be set when storage.provider is gcs")
		}
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir must be set when storage.provider is local")
		}
	case "noop":
	default:
		return fmt.Errorf("storage.provider must be one of gcs, local, noop: %q", c.Storage.Provider)
	}
	if (c.PubSub.ProjectID == "") != (c.PubSub.TopicName == "") {
		return fmt.Errorf("pubsub.project_id and pubsub.topic_name must be set together")
	}
	if c.Census.BatchSize <= 0 || c.Census.BatchSize > maxACSBatch {
		return fmt.Errorf("census.batch_size must be in 1..%d", maxACSBatch)
	}
	if c.Census.PipelineDepth <= 0 {
		return fmt.Errorf("census.pipeline_depth must be > 0")
	}
	if c.Permits.HeadlessEnabled && c.Permits.HeadlessMaxParallel <= 0 {
		return fmt.Errorf("permits.headless_max_parallel must be > 0 when headless is enabled")
	}
	if err := c.Scoring.Weights.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if c.Scoring.MaxCostPerAcre <= 0 {
		return fmt.Errorf("scoring.max_cost_per_acre must be > 0")
	}
	if c.Saturation.SqftPerCapita <= 0 || c.Saturation.AvgFacilitySqft <= 0 {
		return fmt.Errorf("saturation factors must be > 0")
	}
	return nil
}

// RequestTimeout converts the HTTP timeout into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
