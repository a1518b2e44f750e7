package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type serverConfig struct {
	Addr              string
	ChunkSize         int
	IdleTimeout       time.Duration
	HeartbeatInterval time.Duration
	LogLevel          string
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		Addr:        "localhost:8000",
		IdleTimeout: 30 * time.Second,
		LogLevel:    "info",
	}
}

type fileConfig struct {
	Addr              string `toml:"addr"`
	ChunkSize         int    `toml:"chunk_size"`
	IdleTimeout       string `toml:"idle_timeout"`
	HeartbeatInterval string `toml:"heartbeat_interval"`
	LogLevel          string `toml:"log_level"`
}

func loadServerConfig(path string) (serverConfig, error) {
	cfg := defaultServerConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return serverConfig{}, fmt.Errorf("load server config: %w", err)
	}

	if meta.IsDefined("addr") {
		addr := strings.TrimSpace(raw.Addr)
		if addr != "" {
			cfg.Addr = addr
		}
	}

	if meta.IsDefined("chunk_size") {
		cfg.ChunkSize = raw.ChunkSize
	}

	if meta.IsDefined("idle_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.IdleTimeout))
		if err != nil {
			return serverConfig{}, fmt.Errorf("parse idle_timeout: %w", err)
		}
		cfg.IdleTimeout = d
	}

	if meta.IsDefined("heartbeat_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.HeartbeatInterval))
		if err != nil {
			return serverConfig{}, fmt.Errorf("parse heartbeat_interval: %w", err)
		}
		cfg.HeartbeatInterval = d
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	return cfg, nil
}
