package config

import (
	"runtime"
	"time"
)

// Config holds server configuration values. The core treats all of them as
// immutable for its lifetime.
type Config struct {
	TCPAddr  string `mapstructure:"tcp_addr" yaml:"tcp_addr"`
	HTTPAddr string `mapstructure:"http_addr" yaml:"http_addr"`

	MulticastAddr string `mapstructure:"multicast_addr" yaml:"multicast_addr"`

	// Diffie-Hellman group parameters shared with every client.
	DHPrime     int64 `mapstructure:"dh_prime" yaml:"dh_prime"`
	DHGenerator int64 `mapstructure:"dh_generator" yaml:"dh_generator"`

	WorkerPoolSize int `mapstructure:"worker_pool_size" yaml:"worker_pool_size"`
	MaxFrameBytes  int `mapstructure:"max_frame_bytes" yaml:"max_frame_bytes"`

	RankingInterval time.Duration `mapstructure:"ranking_interval" yaml:"ranking_interval"`

	// Business-tunable ranking weights. The defaults are load-bearing for
	// compatibility with historic rankings; change them knowingly.
	RecencyDecayPerYear float64 `mapstructure:"recency_decay_per_year" yaml:"recency_decay_per_year"`
	QuantityBase        float64 `mapstructure:"quantity_base" yaml:"quantity_base"`
	QuantityStep        float64 `mapstructure:"quantity_step" yaml:"quantity_step"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	SeedPath     string `mapstructure:"seed_path" yaml:"seed_path"`

	UserFlushInterval   time.Duration `mapstructure:"user_flush_interval" yaml:"user_flush_interval"`
	HotelFlushInterval  time.Duration `mapstructure:"hotel_flush_interval" yaml:"hotel_flush_interval"`
	ReviewFlushInterval time.Duration `mapstructure:"review_flush_interval" yaml:"review_flush_interval"`

	NotifyTimeout   time.Duration `mapstructure:"notify_timeout" yaml:"notify_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		TCPAddr:       ":7777",
		HTTPAddr:      ":8080",
		MulticastAddr: "239.255.32.32:4446",

		// Small toy group, same order of magnitude as the historic deployment.
		DHPrime:     39551,
		DHGenerator: 7,

		WorkerPoolSize: runtime.NumCPU(),
		MaxFrameBytes:  64 * 1024,

		RankingInterval: 30 * time.Second,

		RecencyDecayPerYear: 0.05,
		QuantityBase:        0.3,
		QuantityStep:        0.02,

		DatabasePath: "hotelier.db",
		SeedPath:     "hotels.json",

		UserFlushInterval:   45 * time.Second,
		HotelFlushInterval:  45 * time.Second,
		ReviewFlushInterval: 45 * time.Second,

		NotifyTimeout:   3 * time.Second,
		ShutdownTimeout: 5 * time.Second,

		LogLevel: "info",
	}
}
