// Package config loads runtime settings for the projection runners.
//
// Sources, lowest priority first: built-in defaults, config/engine.yaml,
// config/engine.<LEVFIN_ENV>.yaml, then LEVFIN_* environment variables
// (a .env file is loaded into the environment first).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"levfin_model/pkg/core/assumption"
)

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Scenario ScenarioConfig `mapstructure:"scenario"`
	Store    StoreConfig    `mapstructure:"store"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig.Mode is "lenient" or "strict" (see assumption.Mode).
type EngineConfig struct {
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type ScenarioConfig struct {
	Parallelism int `mapstructure:"parallelism"`
}

// StoreConfig.Dir is used for file-backed models when no database is configured.
type StoreConfig struct {
	Dir string `mapstructure:"dir"`
}

const envPrefix = "LEVFIN"

// Load reads configuration from the given search directories. With no
// directories it looks in ./config and the working directory.
func Load(dirs ...string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("engine")
	v.SetConfigType("yaml")
	if len(dirs) == 0 {
		dirs = []string{"./config", "."}
	}
	for _, d := range dirs {
		v.AddConfigPath(d)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	if env := os.Getenv(envPrefix + "_ENV"); env != "" {
		v.SetConfigName("engine." + env)
		if err := v.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading %s config: %w", env, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// DATABASE_URL is honoured for compatibility with existing deployments.
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("engine.mode", "lenient")
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.ttl", 15*time.Minute)
	v.SetDefault("scenario.parallelism", 4)
	v.SetDefault("store.dir", filepath.Join(".cache", "deal_models"))
}

func loadEnvFile() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

func validate(cfg *Config) error {
	mode, err := assumption.ParseMode(cfg.Engine.Mode)
	if err != nil {
		return fmt.Errorf("engine.mode must be lenient or strict, got %q", cfg.Engine.Mode)
	}
	cfg.Engine.Mode = string(mode)

	if cfg.Scenario.Parallelism < 1 {
		return fmt.Errorf("scenario.parallelism must be at least 1, got %d", cfg.Scenario.Parallelism)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}
