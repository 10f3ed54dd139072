package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig tunes the token bucket applied to the /v1/auth endpoints.
// The defaults allow 5 attempts, refilling one attempt every 3 minutes per
// client IP, which works out to the classic "5 tries per 15 minutes" policy
// for brute-force protection.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int           // bucket size (burst)
	RefillTokens   int           // tokens added per interval
	RefillInterval time.Duration // interval between refills
	TTL            time.Duration // idle bucket expiry in redis
	Prefix         string        // redis key prefix
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables with auth-appropriate
// defaults and clamps nonsensical values.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_MAX", 5),
		RefillTokens:   1,
		RefillInterval: envDur("RATE_LIMIT_WINDOW", 15*time.Minute),
		TTL:            envDur("RATE_LIMIT_TTL", time.Hour),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl:auth"),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	// The configured window covers a full bucket; one token refills every
	// window/capacity.
	cfg.RefillInterval /= time.Duration(cfg.Capacity)
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}
