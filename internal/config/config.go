package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application. API keys are
// never read from the file: they come from the environment at load time.
type Config struct {
	Server          ServerConfig          `yaml:"server"`
	CoinGecko       CoinGeckoConfig       `yaml:"coingecko"`
	Moralis         MoralisConfig         `yaml:"moralis"`
	RecentAddresses RecentAddressesConfig `yaml:"recentAddresses"`
	Logging         LoggingConfig         `yaml:"logging"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// CoinGeckoConfig holds configuration for the market-data provider client and
// the background page loop that builds the price table.
type CoinGeckoConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"-"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	TokensPerPage        int    `yaml:"tokensPerPage"`
	MaxPages             int    `yaml:"maxPages"`
	PageDelayMillis      int64  `yaml:"pageDelayMillis"`
	CacheTTLMinutes      int    `yaml:"cacheTTLMinutes"`
}

// MoralisConfig holds configuration for the wallet-data provider client.
type MoralisConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"-"`
	Chain                string `yaml:"chain"`
	NativeSymbol         string `yaml:"nativeSymbol"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	RateLimit            int    `yaml:"rateLimit"`
	BurstLimit           int    `yaml:"burstLimit"`
}

// RecentAddressesConfig holds configuration for the persisted recent-address list.
type RecentAddressesConfig struct {
	File string `yaml:"file"`
	Max  int    `yaml:"max"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g. "debug", "info", "warn", "error"
}

// Environment variables the keys are sourced from.
const (
	CoinGeckoAPIKeyEnv = "COINGECKO_API_KEY"
	MoralisAPIKeyEnv   = "MORALIS_API_KEY"
)

// LoadConfig loads configuration from a YAML file, applies defaults and reads
// API keys from the environment. A missing Moralis key is not an error here:
// it is surfaced per request, before any wallet call is attempted.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)

	cfg.CoinGecko.APIKey = os.Getenv(CoinGeckoAPIKeyEnv)
	cfg.Moralis.APIKey = os.Getenv(MoralisAPIKeyEnv)
	if cfg.CoinGecko.APIKey == "" {
		logrus.Warnf("%s not set, market-data requests will be sent without a key", CoinGeckoAPIKeyEnv)
	}
	if cfg.Moralis.APIKey == "" {
		logrus.Warnf("%s not set, balance lookups will fail validation until it is provided", MoralisAPIKeyEnv)
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.CoinGecko.RequestTimeoutMillis == 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 10000
	}
	if cfg.CoinGecko.TokensPerPage == 0 {
		cfg.CoinGecko.TokensPerPage = 100
	}
	if cfg.CoinGecko.MaxPages == 0 {
		cfg.CoinGecko.MaxPages = 10
	}
	if cfg.CoinGecko.PageDelayMillis == 0 {
		cfg.CoinGecko.PageDelayMillis = 3000
	}

	if cfg.Moralis.BaseURL == "" {
		cfg.Moralis.BaseURL = "https://deep-index.moralis.io/api/v2.2"
	}
	if cfg.Moralis.Chain == "" {
		cfg.Moralis.Chain = "eth"
	}
	if cfg.Moralis.NativeSymbol == "" {
		cfg.Moralis.NativeSymbol = "ETH"
	}
	if cfg.Moralis.RequestTimeoutMillis == 0 {
		cfg.Moralis.RequestTimeoutMillis = 10000
	}
	if cfg.Moralis.RateLimit == 0 {
		cfg.Moralis.RateLimit = 5
	}
	if cfg.Moralis.BurstLimit == 0 {
		cfg.Moralis.BurstLimit = 5
	}

	if cfg.RecentAddresses.File == "" {
		cfg.RecentAddresses.File = "data/recent_addresses.json"
	}
	if cfg.RecentAddresses.Max == 0 {
		cfg.RecentAddresses.Max = 5
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
