// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads gateway settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the runtime settings for the gateway process.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// AgentServiceURL is the base URL of the upstream agent service.
	AgentServiceURL string

	// UpstreamTimeout bounds each upstream call.
	UpstreamTimeout time.Duration

	// OTLPEndpoint enables trace export when non-empty.
	OTLPEndpoint string

	// RateLimitRPS and RateLimitBurst configure per-IP throttling.
	// RateLimitRPS <= 0 disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from the environment, applying defaults for
// anything unset. It never fails on missing values, only on unparsable ones.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnvString("GATEWAY_PORT", "8080"),
		AgentServiceURL: getEnvString("AGENT_SERVICE_URL", "http://localhost:9000"),
		OTLPEndpoint:    getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	timeoutSec, err := getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.UpstreamTimeout = time.Duration(timeoutSec) * time.Second

	rps, err := getEnvInt("RATE_LIMIT_RPS", 50)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitRPS = float64(rps)

	burst, err := getEnvInt("RATE_LIMIT_BURST", 100)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitBurst = burst

	return cfg, nil
}

// getEnvString returns an environment variable with surrounding quotes and
// whitespace stripped, or defaultVal if unset. Compose files sometimes leave
// quotes around values.
func getEnvString(key, defaultVal string) string {
	val := strings.TrimSpace(os.Getenv(key))
	val = strings.Trim(val, `"'`)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt returns an environment variable as int, or defaultVal if unset.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := getEnvString(key, "")
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return n, nil
}
