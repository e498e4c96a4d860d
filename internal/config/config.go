package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the tradegate gateway.
type Config struct {
	Venue     string    `yaml:"venue"` // "fubon" or "alpaca"
	Storage   Storage   `yaml:"storage"`
	Server    Server    `yaml:"server"`
	Fubon     Fubon     `yaml:"fubon"`
	Alpaca    Alpaca    `yaml:"alpaca"`
	Limits    Limits    `yaml:"limits"`
	Logging   Logging   `yaml:"logging"`
	Profiling Profiling `yaml:"profiling"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Server holds network listener configuration for the ops API.
type Server struct {
	Host           string  `yaml:"host"`
	Port           int     `yaml:"port"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// Fubon holds credentials and endpoints for the Fubon venue session.
type Fubon struct {
	BaseURL     string `yaml:"base_url"`
	NationalID  string `yaml:"national_id"`
	Account     string `yaml:"account"`
	AccountPass string `yaml:"account_pass"`
	CertPath    string `yaml:"cert_path"`
	CertPass    string `yaml:"cert_pass"`
}

// Alpaca holds credentials and endpoints for the Alpaca broker API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
}

// Limits controls venue pacing.
type Limits struct {
	PositionCooldownSec int `yaml:"position_cooldown_sec"`
	QuoteRatePerMin     int `yaml:"quote_rate_per_min"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Profiling configures continuous profiling. An empty address disables it.
type Profiling struct {
	Address string `yaml:"address"`
	AppName string `yaml:"app_name"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// Validate checks that the fields required for the selected venue are set.
func (c *Config) Validate() error {
	switch c.Venue {
	case "fubon":
		if c.Fubon.NationalID == "" || c.Fubon.AccountPass == "" || c.Fubon.CertPath == "" {
			return fmt.Errorf("fubon venue requires national_id, account_pass and cert_path (or the FUBON_* environment variables)")
		}
	case "alpaca":
		if c.Alpaca.APIKey == "" || c.Alpaca.APISecret == "" {
			return fmt.Errorf("alpaca venue requires api_key and api_secret (or the APCA_* environment variables)")
		}
	case "":
		return fmt.Errorf("venue must be set to \"fubon\" or \"alpaca\"")
	default:
		return fmt.Errorf("unknown venue %q", c.Venue)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Limits.PositionCooldownSec == 0 {
		cfg.Limits.PositionCooldownSec = 10
	}
	if cfg.Limits.QuoteRatePerMin == 0 {
		cfg.Limits.QuoteRatePerMin = 120
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = 10
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = 20
	}
	if cfg.Profiling.AppName == "" {
		cfg.Profiling.AppName = "tradegate"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADEGATE_VENUE"); v != "" {
		cfg.Venue = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRADEGATE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}

	if v := os.Getenv("FUBON_BASE_URL"); v != "" {
		cfg.Fubon.BaseURL = v
	}
	if v := os.Getenv("FUBON_NATIONAL_ID"); v != "" {
		cfg.Fubon.NationalID = v
	}
	if v := os.Getenv("FUBON_ACCOUNT"); v != "" {
		cfg.Fubon.Account = v
	}
	if v := os.Getenv("FUBON_ACCOUNT_PASS"); v != "" {
		cfg.Fubon.AccountPass = v
	}
	if v := os.Getenv("FUBON_CERT_PATH"); v != "" {
		cfg.Fubon.CertPath = v
	}
	if v := os.Getenv("FUBON_CERT_PASS"); v != "" {
		cfg.Fubon.CertPass = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	// The canonical SDK variable names win over the TRADEGATE-prefixed ones.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
