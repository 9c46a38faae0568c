package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. REVISIT_BACKEND.
const EnvPrefix = "REVISIT"

// Home returns the data directory: $REVISIT_HOME or ~/.revisit.
func Home() string {
	if env := os.Getenv(EnvPrefix + "_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".revisit")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", "sqlite")
	v.SetDefault("path", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("upcoming_days", 7)
	v.SetDefault("remind.every", "1h")
	v.SetDefault("remind.window_start", 8)
	v.SetDefault("remind.window_end", 22)
}

// Load reads configuration. configFile may be empty, in which case
// revisit.yaml is looked up in Home(). A .env file in the working directory
// is loaded first; existing environment variables win over it.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("revisit")
		v.SetConfigType("yaml")
		v.AddConfigPath(Home())
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Backend = strings.ToLower(cfg.Backend)
	if cfg.Path == "" {
		cfg.Path = DefaultPath(cfg.Backend)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultPath returns the backing file location for a backend.
func DefaultPath(backend string) string {
	if backend == "json" {
		return filepath.Join(Home(), "revisit.json")
	}
	return filepath.Join(Home(), "revisit.db")
}

var validate = validator.New()

// Validate checks field constraints.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
