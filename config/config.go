package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sdg-collector/apperr"
)

const (
	DefaultTargetYear = 2020
	DefaultMappingCSV = "./data/UNSDMethodology.csv"
	DefaultOutputJSON = "./data/sdg_data_mapped.json"
	DefaultAPIBaseURL = "https://unstats.un.org/SDGAPI/v1/sdg"
	DefaultUserAgent  = "ComposeSDGs/1.0 (academic non-commercial)"
)

// Config holds all application configuration.
type Config struct {
	TargetYear     int
	MappingCSVPath string
	OutputJSONPath string

	APIBaseURL      string
	UserAgent       string
	AreaListRetries int
	AreaListTimeout time.Duration
	SeriesRetries   int
	SeriesTimeout   time.Duration
	RetryPause      time.Duration

	CSVOutputPath string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	LogLevel   string
	NoProgress bool
}

var defaults = map[string]any{
	"TARGET_YEAR":      DefaultTargetYear,
	"MAPPING_CSV_PATH": DefaultMappingCSV,
	"OUTPUT_JSON_PATH": DefaultOutputJSON,

	"SDG_API_BASE_URL":          DefaultAPIBaseURL,
	"USER_AGENT":                DefaultUserAgent,
	"AREA_LIST_RETRIES":         2,
	"AREA_LIST_TIMEOUT_SECONDS": 20,
	"SERIES_RETRIES":            1,
	"SERIES_TIMEOUT_SECONDS":    15,
	"RETRY_PAUSE_MS":            1000,

	"CSV_OUTPUT_PATH": "",

	"POSTGRES_ENABLED":  false,
	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_USER":     "sdg",
	"POSTGRES_PASSWORD": "sdg",
	"POSTGRES_DB":       "sdg",
	"POSTGRES_SSLMODE":  "disable",

	"LOG_LEVEL":   "info",
	"NO_PROGRESS": false,
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"year":        "TARGET_YEAR",
	"mapping":     "MAPPING_CSV_PATH",
	"out":         "OUTPUT_JSON_PATH",
	"api-base":    "SDG_API_BASE_URL",
	"csv":         "CSV_OUTPUT_PATH",
	"postgres":    "POSTGRES_ENABLED",
	"log-level":   "LOG_LEVEL",
	"no-progress": "NO_PROGRESS",
}

// RegisterFlags defines the command-line flags understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "optional YAML config file (keys as in .env, lower case)")
	fs.Int("year", DefaultTargetYear, "target year for indicator values")
	fs.String("mapping", DefaultMappingCSV, "semicolon-delimited M49/ISO3 mapping file")
	fs.String("out", DefaultOutputJSON, "output JSON document")
	fs.String("api-base", DefaultAPIBaseURL, "SDG API base URL")
	fs.String("csv", "", "also write a flat CSV export to this path")
	fs.Bool("postgres", false, "mirror collected values to PostgreSQL")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.Bool("no-progress", false, "disable the progress bar")
}

// Load reads .env into the environment, then resolves every key from
// flags > environment > config file > defaults.
func Load(fs *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, &apperr.ConfigurationError{Reason: "bind flag --" + name, Err: err}
				}
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, &apperr.ConfigurationError{Path: f.Value.String(), Reason: "read config file", Err: err}
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	p := &parser{v: v}
	cfg := &Config{
		TargetYear:     p.int("TARGET_YEAR"),
		MappingCSVPath: p.string("MAPPING_CSV_PATH"),
		OutputJSONPath: p.string("OUTPUT_JSON_PATH"),

		APIBaseURL:      p.string("SDG_API_BASE_URL"),
		UserAgent:       p.string("USER_AGENT"),
		AreaListRetries: p.int("AREA_LIST_RETRIES"),
		AreaListTimeout: time.Duration(p.int("AREA_LIST_TIMEOUT_SECONDS")) * time.Second,
		SeriesRetries:   p.int("SERIES_RETRIES"),
		SeriesTimeout:   time.Duration(p.int("SERIES_TIMEOUT_SECONDS")) * time.Second,
		RetryPause:      time.Duration(p.int("RETRY_PAUSE_MS")) * time.Millisecond,

		CSVOutputPath: p.string("CSV_OUTPUT_PATH"),

		PostgresEnabled:  p.bool("POSTGRES_ENABLED"),
		PostgresHost:     p.string("POSTGRES_HOST"),
		PostgresPort:     p.string("POSTGRES_PORT"),
		PostgresUser:     p.string("POSTGRES_USER"),
		PostgresPassword: p.string("POSTGRES_PASSWORD"),
		PostgresDB:       p.string("POSTGRES_DB"),
		PostgresSSLMode:  p.string("POSTGRES_SSLMODE"),

		LogLevel:   p.string("LOG_LEVEL"),
		NoProgress: p.bool("NO_PROGRESS"),
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the collector cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.TargetYear <= 0:
		return apperr.Configf("TARGET_YEAR", "must be a positive year, got %d", c.TargetYear)
	case c.MappingCSVPath == "":
		return apperr.Configf("MAPPING_CSV_PATH", "must not be empty")
	case c.OutputJSONPath == "":
		return apperr.Configf("OUTPUT_JSON_PATH", "must not be empty")
	case c.APIBaseURL == "":
		return apperr.Configf("SDG_API_BASE_URL", "must not be empty")
	case c.AreaListRetries < 0:
		return apperr.Configf("AREA_LIST_RETRIES", "must not be negative")
	case c.SeriesRetries < 0:
		return apperr.Configf("SERIES_RETRIES", "must not be negative")
	case c.AreaListTimeout <= 0:
		return apperr.Configf("AREA_LIST_TIMEOUT_SECONDS", "must be positive")
	case c.SeriesTimeout <= 0:
		return apperr.Configf("SERIES_TIMEOUT_SECONDS", "must be positive")
	case c.RetryPause < 0:
		return apperr.Configf("RETRY_PAUSE_MS", "must not be negative")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// parser reads typed values and keeps the first conversion error.
type parser struct {
	v   *viper.Viper
	err error
}

func (p *parser) string(key string) string {
	return strings.TrimSpace(p.v.GetString(key))
}

func (p *parser) int(key string) int {
	n, err := cast.ToIntE(p.v.Get(key))
	if err != nil && p.err == nil {
		p.err = apperr.Configf(key, "invalid integer %q", p.v.GetString(key))
	}
	return n
}

func (p *parser) bool(key string) bool {
	b, err := cast.ToBoolE(p.v.Get(key))
	if err != nil && p.err == nil {
		p.err = apperr.Configf(key, "invalid boolean %q", p.v.GetString(key))
	}
	return b
}
