package config

import "time"

// Config holds runtime settings for the diary CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the diary gRPC endpoint.
//   - AccessToken: token sent with every call; prompted for when empty.
//   - RequestTimeout: upper bound for a single command.
type Config struct {
	ServerEndpointAddr string
	AccessToken        string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.AccessToken = ""
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
