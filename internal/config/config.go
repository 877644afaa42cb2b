package config

import (
	"encoding/json"
	"os"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Knowledge KnowledgeConfig `json:"knowledge"`
	Memory    MemoryConfig    `json:"memory"`
	Sources   SourcesConfig   `json:"sources"`

	// KnownCoins maps symbols to display names for entity detection
	KnownCoins map[string]string `json:"known_coins"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port int `json:"port"`
}

// DatabaseConfig represents PostgreSQL configuration for the query audit log
type DatabaseConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

// KnowledgeConfig represents knowledge store configuration
type KnowledgeConfig struct {
	// Backend selects the store implementation: "file" or "redis"
	Backend             string      `json:"backend"`
	File                string      `json:"file"`
	FreshnessTTLMinutes int         `json:"freshness_ttl_minutes"`
	Redis               RedisConfig `json:"redis"`
}

// RedisConfig represents Redis configuration for the redis knowledge backend
type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	Database int    `json:"database"`
}

// MemoryConfig represents conversation memory configuration
type MemoryConfig struct {
	MaxTurns int `json:"max_turns"`
}

// SourcesConfig represents price source configuration
type SourcesConfig struct {
	// Mode selects the startup price source: "live" or "sim"
	Mode       string           `json:"mode"`
	FreeCrypto FreeCryptoConfig `json:"freecrypto"`
	CoinGecko  CoinGeckoConfig  `json:"coingecko"`
}

// FreeCryptoConfig represents the FreeCryptoAPI source configuration.
// The API key is read from the FREECRYPTO_API_KEY environment variable.
type FreeCryptoConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"-"`
}

// CoinGeckoConfig represents the CoinGecko fallback source configuration
type CoinGeckoConfig struct {
	BaseURL string `json:"base_url"`
}

// defaultKnownCoins is the alias table used when the config file does not
// provide one
var defaultKnownCoins = map[string]string{
	"BTC":   "Bitcoin",
	"ETH":   "Ethereum",
	"SOL":   "Solana",
	"ADA":   "Cardano",
	"XRP":   "Ripple",
	"DOT":   "Polkadot",
	"MATIC": "Polygon",
	"AVAX":  "Avalanche",
	"LINK":  "Chainlink",
	"UNI":   "Uniswap",
}

// Load loads configuration from file
func Load() (*Config, error) {
	configFile := "configs/config.json"
	if envFile := os.Getenv("CONFIG_FILE"); envFile != "" {
		configFile = envFile
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	config.Sources.FreeCrypto.APIKey = os.Getenv("FREECRYPTO_API_KEY")

	return &config, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Knowledge.Backend == "" {
		cfg.Knowledge.Backend = "file"
	}
	if cfg.Knowledge.File == "" {
		cfg.Knowledge.File = "knowledge/coins.json"
	}
	if cfg.Knowledge.FreshnessTTLMinutes == 0 {
		cfg.Knowledge.FreshnessTTLMinutes = 5
	}
	if cfg.Memory.MaxTurns == 0 {
		cfg.Memory.MaxTurns = 10
	}
	if cfg.Sources.Mode == "" {
		cfg.Sources.Mode = "live"
	}
	if cfg.Sources.FreeCrypto.BaseURL == "" {
		cfg.Sources.FreeCrypto.BaseURL = "https://api.freecryptoapi.com/v1"
	}
	if cfg.Sources.CoinGecko.BaseURL == "" {
		cfg.Sources.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if len(cfg.KnownCoins) == 0 {
		cfg.KnownCoins = defaultKnownCoins
	}
}
