package api

import "time"

// APIConfig configures the tracker HTTP server.
//
// The server carries the tracker operations under /api/v1/rpc, the health
// probes, the operator endpoints under /admin, and the Prometheus scrape
// endpoint.
type APIConfig struct {
	// Port is the HTTP port for the tracker endpoints.
	// Default: 4750
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 10s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// MaxUsers arms the session table at startup when set. Zero leaves the
	// tracker in the not-ready state until an operator arms it via
	// POST /admin/capacity.
	MaxUsers int `mapstructure:"max_users" validate:"omitempty,min=1,max=100" yaml:"max_users"`
}

// applyDefaults fills in zero values with sensible defaults.
func (c *APIConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = 4750
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
}
