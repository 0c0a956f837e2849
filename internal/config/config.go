package config

import (
    "fmt"
    "strings"

    "github.com/spf13/viper"
)

// Config holds all configuration for the API.
type Config struct {
    Server   ServerConfig
    Database DatabaseConfig
    Redis    RedisConfig
    FedEx    CarrierConfig
    UPS      CarrierConfig
    Mappings MappingsConfig
}

type ServerConfig struct {
    Port        string `mapstructure:"port"`
    Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
    // URL is optional; without it mapping overrides and shipments are
    // in-memory / disabled.
    URL string `mapstructure:"url"`
}

type RedisConfig struct {
    // Addr is optional; without it carrier tokens are cached in-process.
    Addr string `mapstructure:"addr"`
}

// CarrierConfig holds one carrier's API credentials.
type CarrierConfig struct {
    ClientID      string `mapstructure:"client_id"`
    ClientSecret  string `mapstructure:"client_secret"`
    AccountNumber string `mapstructure:"account_number"`
    Environment   string `mapstructure:"environment"` // "production" or "sandbox"
}

type MappingsConfig struct {
    // File points at an optional CSV override table; a missing file is
    // tolerated.
    File string `mapstructure:"file"`
}

// Load reads configuration from an optional config.yaml plus
// SHIPVOX_-prefixed environment variables.
func Load() (*Config, error) {
    v := viper.New()

    v.SetConfigName("config")
    v.SetConfigType("yaml")
    v.AddConfigPath(".")
    v.AddConfigPath("/etc/shipvox/")

    v.SetEnvPrefix("SHIPVOX")
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
    v.AutomaticEnv()

    // Unmarshal only sees keys viper already knows about, so every key
    // gets an explicit env binding; AutomaticEnv alone is not enough
    // for keys without a default or config-file entry.
    for _, key := range []string{
        "server.port", "server.environment",
        "database.url",
        "redis.addr",
        "fedex.client_id", "fedex.client_secret", "fedex.account_number", "fedex.environment",
        "ups.client_id", "ups.client_secret", "ups.account_number", "ups.environment",
        "mappings.file",
    } {
        v.MustBindEnv(key)
    }

    setDefaults(v)

    if err := v.ReadInConfig(); err != nil {
        if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
            return nil, fmt.Errorf("error reading config file: %w", err)
        }
        // No config file; environment variables and defaults apply.
    }

    var cfg Config
    if err := v.Unmarshal(&cfg); err != nil {
        return nil, fmt.Errorf("unable to decode config: %w", err)
    }
    if err := validate(&cfg); err != nil {
        return nil, fmt.Errorf("invalid configuration: %w", err)
    }
    return &cfg, nil
}

func setDefaults(v *viper.Viper) {
    v.SetDefault("server.port", "8080")
    v.SetDefault("server.environment", "development")
    v.SetDefault("fedex.environment", "sandbox")
    v.SetDefault("ups.environment", "sandbox")
    v.SetDefault("mappings.file", "data/normalized_services.csv")
}

func validate(cfg *Config) error {
    for name, env := range map[string]string{"fedex": cfg.FedEx.Environment, "ups": cfg.UPS.Environment} {
        if env != "production" && env != "sandbox" {
            return fmt.Errorf("%s.environment must be 'production' or 'sandbox', got %q", name, env)
        }
    }
    return nil
}
