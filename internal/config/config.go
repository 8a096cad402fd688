package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Response ResponseConfig `mapstructure:"response"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
	// MediaURL is the prefix views use to turn stored file names into URLs.
	MediaURL string `mapstructure:"media_url" validate:"omitempty,startswith=/|url"`
}

// AuthConfig contains the bearer-token authentication settings. Views are
// unauthenticated when JWTSecret is empty.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	Realm     string `mapstructure:"realm" validate:"required"`
}

// ResponseConfig controls how response envelopes are built.
type ResponseConfig struct {
	// Debug adds log and exception messages to development messages.
	Debug bool `mapstructure:"debug"`
	// DevelopmentState enables the Development-Messages-Display and
	// Exception-Status-Display request headers.
	DevelopmentState bool `mapstructure:"development_state"`
	// ExceptionHandling turns unrecognized errors into 421 envelopes instead
	// of passing them to the uncaught-error handler.
	ExceptionHandling bool `mapstructure:"exception_handling"`
	// SupportContact is the address mentioned in unexpected-error messages.
	SupportContact string `mapstructure:"support_contact" validate:"omitempty,email"`
	// MonitorKeys lists the keys views may set on the monitor map.
	MonitorKeys []string `mapstructure:"monitor_keys" validate:"dive,required"`
	// Monitor maps monitor keys to registered hook names.
	Monitor map[string]string `mapstructure:"monitor" validate:"dive,keys,required,endkeys,required"`
	// PasteToRequest maps request value keys to registered hook names.
	PasteToRequest map[string]string `mapstructure:"paste_to_request" validate:"dive,keys,required,endkeys,required"`
}
