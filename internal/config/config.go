package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration.  It is built once at startup and
// treated as immutable afterwards; every component receives the values it
// needs through its constructor.
type Config struct {
	Env        string        // application environment ("dev", "test", "prod")
	Port       string        // HTTP port to listen on
	DBUser     string        // database username
	DBPass     string        // database password (optional)
	DBHost     string        // database host address
	DBPort     string        // database port number
	DBName     string        // database name
	JWTSecret  string        // secret used to sign and verify JWTs
	AccessTTL  time.Duration // access token lifetime
	BcryptCost int           // bcrypt work factor for password hashing
}

// Load reads configuration from the environment.  Required variables are
// enforced by must(); the token lifetime and hash cost fall back to the
// documented defaults (7 days, cost 12).
func Load() Config {
	return Config{
		Env:        must("APP_ENV"),
		Port:       must("APP_PORT"),
		DBUser:     must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"), // empty allowed
		DBHost:     must("DB_HOST"),
		DBPort:     must("DB_PORT"),
		DBName:     must("DB_NAME"),
		JWTSecret:  must("JWT_SECRET"),
		AccessTTL:  time.Duration(intOr("ACCESS_TOKEN_TTL_HOURS", 168)) * time.Hour,
		BcryptCost: intOr("BCRYPT_COST", 12),
	}
}

// IsProd reports whether the service runs in production mode.  In production
// the handlers return generic error messages for unclassified failures
// instead of internal detail.
func (c Config) IsProd() bool { return c.Env == "prod" }

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr parses an optional integer variable, falling back to def when the
// variable is unset.  A malformed value is fatal rather than silently
// defaulted.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
