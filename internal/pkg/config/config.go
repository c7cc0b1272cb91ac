package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Elevation ElevationConfig `mapstructure:"elevation"`
	Sun       SunConfig       `mapstructure:"sun"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	TaskQueue string `mapstructure:"task_queue"`
}

// ElevationConfig configures the terrain height lookup service.
type ElevationConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

func (e ElevationConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutMS) * time.Millisecond
}

// SunConfig carries the tunables of the sun/shadow engine. The historical
// front-end implementations disagreed on several of these values; they are
// configuration here, not code forks.
type SunConfig struct {
	StepMinutes    int     `mapstructure:"step_minutes"`     // exposure sampling interval
	ShadowCapM     float64 `mapstructure:"shadow_cap_m"`     // hard cap on projected shadow length
	TerrainHeightM float64 `mapstructure:"terrain_height_m"` // assumed local-relief height for terrain shadows
	MarkerHeightM  float64 `mapstructure:"marker_height_m"`  // assumed height for marker shadows
	MinShadowM     float64 `mapstructure:"min_shadow_m"`     // visibility threshold for terrain segments
	GridLow        int     `mapstructure:"grid_low"`         // lattice size below zoom_medium
	GridMedium     int     `mapstructure:"grid_medium"`      // lattice size in [zoom_medium, zoom_high)
	GridHigh       int     `mapstructure:"grid_high"`        // lattice size at zoom_high and above
	ZoomMedium     int     `mapstructure:"zoom_medium"`
	ZoomHigh       int     `mapstructure:"zoom_high"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "spots")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "spots")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.task_queue", "exposure-digests")
	v.SetDefault("elevation.base_url", "https://data.geopf.fr/altimetrie/1.0/calcul/alti/rest/elevation.json")
	v.SetDefault("elevation.timeout_ms", 2000)
	v.SetDefault("sun.step_minutes", 30)
	v.SetDefault("sun.shadow_cap_m", 1000)
	v.SetDefault("sun.terrain_height_m", 10)
	v.SetDefault("sun.marker_height_m", 20)
	v.SetDefault("sun.min_shadow_m", 10)
	v.SetDefault("sun.grid_low", 5)
	v.SetDefault("sun.grid_medium", 10)
	v.SetDefault("sun.grid_high", 20)
	v.SetDefault("sun.zoom_medium", 12)
	v.SetDefault("sun.zoom_high", 15)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SPOTS_DATABASE_HOST → database.host
	v.SetEnvPrefix("SPOTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Elevation.BaseURL == "" {
		errs = append(errs, "elevation.base_url is required")
	}
	if c.Elevation.TimeoutMS <= 0 {
		errs = append(errs, "elevation.timeout_ms must be positive")
	}
	if c.Sun.StepMinutes <= 0 || c.Sun.StepMinutes > 180 {
		errs = append(errs, fmt.Sprintf("sun.step_minutes must be 1-180, got %d", c.Sun.StepMinutes))
	}
	if c.Sun.ShadowCapM <= 0 {
		errs = append(errs, "sun.shadow_cap_m must be positive")
	}
	if c.Sun.GridLow < 1 || c.Sun.GridMedium < c.Sun.GridLow || c.Sun.GridHigh < c.Sun.GridMedium {
		errs = append(errs, "sun grid sizes must satisfy 1 <= grid_low <= grid_medium <= grid_high")
	}
	if c.Sun.ZoomHigh <= c.Sun.ZoomMedium {
		errs = append(errs, "sun.zoom_high must be greater than sun.zoom_medium")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
