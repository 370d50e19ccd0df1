package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/UnknownOlympus/meridian/internal/geo"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix maps MERIDIAN_GEOCODER_WORKERS to geocoder.workers and so on.
const envPrefix = "MERIDIAN"

// configPathEnv names an explicit YAML file to load instead of ./config.yaml.
const configPathEnv = "MERIDIAN_CONFIG_PATH"

// Config holds the configuration settings for the geocoding worker.
type Config struct {
	Env      string         `mapstructure:"env"`      // Env is the current environment: local, development, production.
	Port     int            `mapstructure:"port"`     // Port is the monitoring server port.
	Provider ProviderConfig `mapstructure:"provider"` // Provider selects and configures the geocoding backend.
	Geocoder GeocoderConfig `mapstructure:"geocoder"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Area     AreaConfig     `mapstructure:"area"`
}

type ProviderConfig struct {
	Type      string `mapstructure:"type"`       // google or nominatim.
	APIKey    string `mapstructure:"api_key"`    // Required for google.
	RateLimit int    `mapstructure:"rate_limit"` // Requests per second shared by all workers, 0 for the provider default.
}

type GeocoderConfig struct {
	Workers    int           `mapstructure:"workers"`
	Interval   time.Duration `mapstructure:"interval"`
	AddrPrefix string        `mapstructure:"addr_prefix"` // Prepended to every address (country, city).
}

// PostgresConfig holds the connection details for the task database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the connection string accepted by pgxpool.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Name, p.SSLMode,
	)
}

// RedisConfig configures the optional geocode cache.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// AreaConfig describes the service area. Polygon is a list of [lat, lon]
// pairs in degrees; when present it replaces the radius test.
type AreaConfig struct {
	OriginLat float64     `mapstructure:"origin_lat"`
	OriginLon float64     `mapstructure:"origin_lon"`
	Radius    float64     `mapstructure:"radius"`
	Unit      string      `mapstructure:"unit"`
	Polygon   [][]float64 `mapstructure:"polygon"`
}

// PolygonPairs converts Polygon into fixed-size pairs. Validate guarantees
// every entry has exactly two elements.
func (a AreaConfig) PolygonPairs() [][2]float64 {
	if len(a.Polygon) == 0 {
		return nil
	}

	pairs := make([][2]float64, 0, len(a.Polygon))
	for _, p := range a.Polygon {
		pairs = append(pairs, [2]float64{p[0], p[1]})
	}

	return pairs
}

// MustLoad loads the configuration and panics if it cannot be read or is invalid.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

// Load reads defaults, an optional YAML file and the environment, in that
// order of increasing precedence, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyDatabaseEnv {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// legacyDatabaseEnv keeps the DB_* variables used by the deployment manifests working.
var legacyDatabaseEnv = map[string]string{
	"postgres.host":     "DB_HOST",
	"postgres.port":     "DB_PORT",
	"postgres.user":     "DB_USERNAME",
	"postgres.password": "DB_PASSWORD",
	"postgres.name":     "DB_NAME",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("port", 8080)

	v.SetDefault("provider.type", "nominatim")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.rate_limit", 0)

	v.SetDefault("geocoder.workers", 10)
	v.SetDefault("geocoder.interval", "10m")
	v.SetDefault("geocoder.addr_prefix", "")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.name", "meridian")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "720h")

	v.SetDefault("area.origin_lat", 0.0)
	v.SetDefault("area.origin_lon", 0.0)
	v.SetDefault("area.radius", 25.0)
	v.SetDefault("area.unit", string(geo.Miles))
}

func readConfigFile(v *viper.Viper) error {
	if path, ok := os.LookupEnv(configPathEnv); ok && path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port must be 1-65535, got %d", c.Port))
	}

	switch c.Provider.Type {
	case "google":
		if c.Provider.APIKey == "" {
			errs = append(errs, "provider.api_key is required for the google provider")
		}
	case "nominatim":
	default:
		errs = append(errs, fmt.Sprintf("provider.type must be google or nominatim, got %q", c.Provider.Type))
	}
	if c.Provider.RateLimit < 0 {
		errs = append(errs, "provider.rate_limit must not be negative")
	}

	if c.Geocoder.Workers <= 0 {
		errs = append(errs, "geocoder.workers must be positive")
	}
	if c.Geocoder.Interval <= 0 {
		errs = append(errs, "geocoder.interval must be positive")
	}

	if c.Postgres.Host == "" {
		errs = append(errs, "postgres.host is required")
	}
	if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
		errs = append(errs, fmt.Sprintf("postgres.port must be 1-65535, got %d", c.Postgres.Port))
	}
	if c.Postgres.User == "" {
		errs = append(errs, "postgres.user is required")
	}
	if c.Postgres.Name == "" {
		errs = append(errs, "postgres.name is required")
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis.addr is required when redis is enabled")
		}
		if c.Redis.TTL <= 0 {
			errs = append(errs, "redis.ttl must be positive")
		}
	}

	errs = append(errs, c.Area.validate()...)

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func (a AreaConfig) validate() []string {
	var errs []string

	if _, err := geo.FromDegrees(a.OriginLat, a.OriginLon); err != nil {
		errs = append(errs, fmt.Sprintf("area origin: %v", err))
	}
	if math.IsNaN(a.Radius) || a.Radius < 0 {
		errs = append(errs, "area.radius must not be negative")
	}
	if _, err := geo.ParseUnit(a.Unit); err != nil {
		errs = append(errs, fmt.Sprintf("area.unit: %v", err))
	}

	if len(a.Polygon) == 0 {
		return errs
	}
	for i, p := range a.Polygon {
		if len(p) != 2 {
			errs = append(errs, fmt.Sprintf("area.polygon[%d] must be a [lat, lon] pair", i))
		}
	}
	if len(a.Polygon) < 3 {
		errs = append(errs, "area.polygon needs at least 3 vertices")
	}

	return errs
}
