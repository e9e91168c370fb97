package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/libris.yaml"
)

type Config struct {
	AdminKey                  string        `koanf:"admin_key"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path" required:"true"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	Environment               string        `koanf:"environment"`
	JWTSecret                 string        `koanf:"jwt_secret" required:"true"`
	MaxExtensionDays          int           `koanf:"max_extension_days"`
	RatingDedupe              bool          `koanf:"rating_dedupe"`
	ServerHost                string        `koanf:"server_host"`
	ServerPort                int           `koanf:"server_port"`
	StaffExtensionExempt      bool          `koanf:"staff_extension_exempt"`
}

// LoanPolicy holds the tunable rules of the loan engine.
type LoanPolicy struct {
	MaxExtensionDays     int  `json:"max_extension_days"`
	StaffExtensionExempt bool `json:"staff_extension_exempt"`
}

// RatingPolicy holds the tunable rules of publication rating.
type RatingPolicy struct {
	Dedupe bool `json:"dedupe"`
}

func defaultConfig() *Config {
	return &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        5,
		Environment:               "production",
		MaxExtensionDays:          30,
		ServerHost:                "0.0.0.0",
		ServerPort:                3689,
	}
}

// New loads the configuration from the optional YAML file named by CONFIG_FILE
// and then from the environment, which takes precedence.
func New() (*Config, error) {
	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	keys := knownKeys()
	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(key)
		if _, ok := keys[key]; !ok || value == "" {
			return "", nil
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := defaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := validateRequired(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a config suitable for tests backed by an in-memory
// database.
func NewForTest() *Config {
	cfg := defaultConfig()
	cfg.DatabaseFilePath = ":memory:"
	cfg.Environment = "test"
	cfg.JWTSecret = "test-secret"
	cfg.ServerHost = "127.0.0.1"
	return cfg
}

func (cfg *Config) LoanPolicy() LoanPolicy {
	return LoanPolicy{
		MaxExtensionDays:     cfg.MaxExtensionDays,
		StaffExtensionExempt: cfg.StaffExtensionExempt,
	}
}

func (cfg *Config) RatingPolicy() RatingPolicy {
	return RatingPolicy{Dedupe: cfg.RatingDedupe}
}

func knownKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		keys[t.Field(i).Tag.Get("koanf")] = struct{}{}
	}
	return keys
}

func validateRequired(cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("required") != "true" {
			continue
		}
		if v.Field(i).IsZero() {
			key := toSnakeCase(field.Name)
			return errors.Errorf("missing required config: set %s or %s in the config file", strings.ToUpper(key), key)
		}
	}
	return nil
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
