package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "ENVELOPE"

// Options tune where Load looks for configuration.
type Options struct {
	// ConfigPaths are directories searched for config.yaml.
	ConfigPaths []string
	// EnvFiles are dotenv files loaded before reading the environment.
	// Missing files are ignored; variables already set are not overridden.
	EnvFiles []string
}

// DefaultOptions searches the working directory for config.yaml and .env.
func DefaultOptions() Options {
	return Options{ConfigPaths: []string{"."}, EnvFiles: []string{".env"}}
}

// Load reads configuration with the default options.
func Load() (*Config, error) {
	return LoadWithOptions(DefaultOptions())
}

// LoadWithOptions reads configuration from defaults, an optional config.yaml
// and ENVELOPE_* environment variables (in increasing precedence), then
// validates it.
func LoadWithOptions(opts Options) (*Config, error) {
	for _, f := range opts.EnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range opts.ConfigPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.media_url", "/media/")
	v.SetDefault("auth.realm", "api")
	v.SetDefault("response.debug", false)
	v.SetDefault("response.development_state", false)
	v.SetDefault("response.exception_handling", true)
	v.SetDefault("response.monitor_keys", []string{})
}

// bindEnvs makes AutomaticEnv see keys that have no default, so that
// Unmarshal picks them up from the environment.
func bindEnvs(v *viper.Viper) {
	for _, key := range []string{
		"server.port", "server.log_level", "server.media_url",
		"auth.jwt_secret", "auth.realm",
		"response.debug", "response.development_state", "response.exception_handling",
		"response.support_contact", "response.monitor_keys",
	} {
		// BindEnv only fails without a key.
		_ = v.BindEnv(key)
	}
}
