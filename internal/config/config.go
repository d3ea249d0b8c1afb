// Package config loads the gtpd YAML configuration, following the nested
// struct + Load(path) + Get*Address() helper pattern used across this
// codebase's other components.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config holds the full gtpd configuration.
type Config struct {
	Node          NodeConfig          `yaml:"node"`
	GTPListener   GTPListenerConfig   `yaml:"gtp_listener"`
	IPListener    IPListenerConfig    `yaml:"ip_listener"`
	Transport     TransportConfig     `yaml:"transport"`
	Admin         AdminConfig         `yaml:"admin"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// NodeConfig names this instance for logs and metrics labels.
type NodeConfig struct {
	Name       string `yaml:"name"`
	InstanceID string `yaml:"instance_id"`
}

// GTPListenerConfig configures the UDP GTP-U/C listener.
type GTPListenerConfig struct {
	BindAddress  string        `yaml:"bind_address"`
	Port         int           `yaml:"port"`
	EchoTimeout  time.Duration `yaml:"echo_timeout"`
	RestartCount uint8         `yaml:"restart_counter"`
}

// IPListenerConfig configures the datalink capture side of the tunnel.
type IPListenerConfig struct {
	Interface  string `yaml:"interface"`
	SourceCIDR string `yaml:"source_cidr"`
	DestCIDR   string `yaml:"dest_cidr"`
	Promiscuous bool  `yaml:"promiscuous"`
	SnapLen    int    `yaml:"snap_len"`
}

// TransportConfig configures how decapsulated packets are injected back
// into the host's IP stack.
type TransportConfig struct {
	LinkName string `yaml:"link_name"`
	MTU      int    `yaml:"mtu"`
}

// AdminConfig configures the admin/metrics HTTP surface.
type AdminConfig struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
}

// ObservabilityConfig groups metrics/tracing/logging knobs.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Logging LoggingConfig `yaml:"logging"`
}

// MetricsConfig enables/disables the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// TracingConfig configures the OpenTelemetry exporter.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the configuration file at path, filling in the
// defaults any component relies on when a value is left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if c.GTPListener.Port == 0 {
		c.GTPListener.Port = 2152
	}
	if c.GTPListener.EchoTimeout == 0 {
		c.GTPListener.EchoTimeout = 5 * time.Second
	}
	if c.IPListener.SnapLen == 0 {
		c.IPListener.SnapLen = 65535
	}
	if c.Transport.MTU == 0 {
		c.Transport.MTU = 1500
	}
	if c.Admin.Port == 0 {
		c.Admin.Port = 9090
	}
	if c.Observability.Metrics.Port == 0 {
		c.Observability.Metrics.Port = 9098
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "json"
	}

	if c.Node.InstanceID == "" {
		c.Node.InstanceID = uuid.NewString()
	} else if _, err := uuid.Parse(c.Node.InstanceID); err != nil {
		return nil, fmt.Errorf("config: node.instance_id: %w", err)
	}

	return &c, nil
}

// GetGTPAddress returns the GTP-U/C listener's bind address.
func (c *Config) GetGTPAddress() string {
	return fmt.Sprintf("%s:%d", c.GTPListener.BindAddress, c.GTPListener.Port)
}

// GetAdminAddress returns the admin HTTP server's bind address.
func (c *Config) GetAdminAddress() string {
	return fmt.Sprintf("%s:%d", c.Admin.BindAddress, c.Admin.Port)
}
