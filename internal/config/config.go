// Package config provides the configuration schema, loader, and credential
// resolution for the crmgate server.
package config

// LogLevel controls log verbosity for the crmgate server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for crmgate.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server ServerConfig `yaml:"server"`
	API    APIConfig    `yaml:"api"`
}

// ServerConfig holds logging and observability settings for the server.
type ServerConfig struct {
	// LogLevel controls verbosity. Logs go to stderr so that stdout stays
	// reserved for the MCP stdio transport.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the optional TCP address for the Prometheus /metrics
	// endpoint (e.g., "127.0.0.1:9187"). When empty, no metrics listener
	// is started.
	MetricsAddr string `yaml:"metrics_addr"`
}

// APIConfig holds settings for the upstream CRM API.
type APIConfig struct {
	// Endpoint overrides the CRM API endpoint URL. When empty, the client's
	// built-in default is used. Mainly useful for testing against a stub.
	Endpoint string `yaml:"endpoint"`

	// Token is the CRM API token. This is the lowest-priority credential
	// source; see [ResolveToken] for the full resolution order.
	Token string `yaml:"token"`
}
