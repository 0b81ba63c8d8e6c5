package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// MasterDataDir is the directory holding the yearly master-data CSV
	// exports consumed by the seed service.
	MasterDataDir string

	// DefaultYear is the fiscal year assumed when a request omits one.
	DefaultYear int

	// AllowNegativeBalances is the ledger policy flag: when false, any
	// posting or transfer that would drive a balance below zero is rejected.
	AllowNegativeBalances bool

	// DisableTxWrites selects the sequential-write fallback for deployments
	// whose connection topology cannot run multi-statement transactions
	// (e.g. a pooler in statement mode). Leave false on a normal PostgreSQL
	// setup: the fallback trades the all-or-nothing guarantee for
	// best-effort consistency.
	DisableTxWrites bool

	// RateLimit is a ulule/limiter formatted rate, e.g. "120-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("MASTER_DATA_DIR", "data/contabilidad")
	viper.SetDefault("DEFAULT_YEAR", 2025)
	viper.SetDefault("ALLOW_NEGATIVE_BALANCES", false)
	viper.SetDefault("DISABLE_TX_WRITES", false)
	viper.SetDefault("RATE_LIMIT", "120-M")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:           viper.GetString("PGSQL_URL"),
		Port:                  viper.GetString("PORT"),
		IsProduction:          viper.GetBool("IS_PRODUCTION"),
		JWTSecret:             viper.GetString("JWT_SECRET"),
		MasterDataDir:         viper.GetString("MASTER_DATA_DIR"),
		DefaultYear:           viper.GetInt("DEFAULT_YEAR"),
		AllowNegativeBalances: viper.GetBool("ALLOW_NEGATIVE_BALANCES"),
		DisableTxWrites:       viper.GetBool("DISABLE_TX_WRITES"),
		RateLimit:             viper.GetString("RATE_LIMIT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}
	if cfg.DisableTxWrites {
		log.Println("Warning: DISABLE_TX_WRITES is set. Ledger writes run sequentially; a crash between movement insert and state update leaves an orphan movement recoverable by replay.")
	}

	return cfg, nil
}
