// Package util provides common utilities for netkit.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DataDir        string `mapstructure:"data_dir"`
	LogLevel       string `mapstructure:"log_level"`
	LogFile        string `mapstructure:"log_file"`
	HistoryEnabled bool   `mapstructure:"history_enabled"`
	Output         string `mapstructure:"output"`

	// Ping
	PingCount   int           `mapstructure:"ping_count"`
	PingTimeout time.Duration `mapstructure:"ping_timeout"`

	// Traceroute
	TraceMaxHops int           `mapstructure:"trace_max_hops"`
	TraceWait    time.Duration `mapstructure:"trace_wait"`

	// TCP probing
	ScanTimeout  time.Duration `mapstructure:"scan_timeout"`
	SweepTimeout time.Duration `mapstructure:"sweep_timeout"`

	// DNS server as host or host:port; empty means the system resolver.
	DNSServer string `mapstructure:"dns_server"`

	HTTPUserAgent string        `mapstructure:"http_user_agent"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
	TLSTimeout    time.Duration `mapstructure:"tls_timeout"`
	WhoisTimeout  time.Duration `mapstructure:"whois_timeout"`

	// Wake-on-LAN
	WOLBroadcast string `mapstructure:"wol_broadcast"`
	WOLPort      int    `mapstructure:"wol_port"`

	// Web API
	WebPort int `mapstructure:"web_port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".netkit")

	return &Config{
		DataDir:        dataDir,
		LogLevel:       "warn",
		HistoryEnabled: true,
		Output:         "text",

		PingCount:   4,
		PingTimeout: 5 * time.Second,

		TraceMaxHops: 30,
		TraceWait:    3 * time.Second,

		ScanTimeout:  2 * time.Second,
		SweepTimeout: 1 * time.Second,

		HTTPUserAgent: "netkit/1.0",
		HTTPTimeout:   10 * time.Second,
		TLSTimeout:    10 * time.Second,
		WhoisTimeout:  15 * time.Second,

		WOLBroadcast: "255.255.255.255",
		WOLPort:      9,

		WebPort: 8080,
	}
}

// LoadConfig loads configuration from file and environment.
func LoadConfig(cfgFile string) (*Config, error) {
	cfg := DefaultConfig()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(cfg.DataDir)
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("netkit")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("data_dir", cfg.DataDir)
	viper.SetDefault("log_level", cfg.LogLevel)
	viper.SetDefault("log_file", cfg.LogFile)
	viper.SetDefault("history_enabled", cfg.HistoryEnabled)
	viper.SetDefault("output", cfg.Output)
	viper.SetDefault("ping_count", cfg.PingCount)
	viper.SetDefault("ping_timeout", cfg.PingTimeout)
	viper.SetDefault("trace_max_hops", cfg.TraceMaxHops)
	viper.SetDefault("trace_wait", cfg.TraceWait)
	viper.SetDefault("scan_timeout", cfg.ScanTimeout)
	viper.SetDefault("sweep_timeout", cfg.SweepTimeout)
	viper.SetDefault("dns_server", cfg.DNSServer)
	viper.SetDefault("http_user_agent", cfg.HTTPUserAgent)
	viper.SetDefault("http_timeout", cfg.HTTPTimeout)
	viper.SetDefault("tls_timeout", cfg.TLSTimeout)
	viper.SetDefault("whois_timeout", cfg.WhoisTimeout)
	viper.SetDefault("wol_broadcast", cfg.WOLBroadcast)
	viper.SetDefault("wol_port", cfg.WOLPort)
	viper.SetDefault("web_port", cfg.WebPort)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// EnsureDir ensures a directory exists.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
