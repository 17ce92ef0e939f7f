package config

import "time"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Listen host
	Host string `mapstructure:"host"`

	// Listen port
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// Read/write timeouts
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// CORS allowed origins; "*" allows any
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}
