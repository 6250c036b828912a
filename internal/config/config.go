package config // package config loads application configuration from environment variables

import (
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits comma separated lists
	"time"    // time parses duration values
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Every value has a development default so the server
// can start with an empty environment; production deployments are expected to
// override at least JWT_SECRET and APP_ENV.
type Config struct {
	Env         string   // application environment ("dev" or "prod")
	Port        string   // HTTP port to listen on
	JWTSecret   string   // secret used to sign JWTs
	DBPath      string   // path of the SQLite database file
	ReceiptsDir string   // directory where generated receipt PDFs are written
	UploadsDir  string   // directory where uploaded cover images are stored
	CORSOrigins []string // allowed CORS origins in development
	BcryptCost  int      // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables, applying
// defaults for anything unset.
func Load() Config {
	return Config{
		Env:         getenv("APP_ENV", "dev"),
		Port:        getenv("APP_PORT", "3002"),
		JWTSecret:   getenv("JWT_SECRET", "boda-suite-secret-key-2024"),
		DBPath:      getenv("DB_PATH", "./data/boda_suite.db"),
		ReceiptsDir: getenv("RECEIPTS_DIR", "./recibos"),
		UploadsDir:  getenv("UPLOADS_DIR", "./uploads"),
		CORSOrigins: parseList(getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		BcryptCost:  envInt("BCRYPT_COST", 10),
	}
}

// IsProd reports whether the server runs in production mode. Production
// enables wildcard CORS and static frontend serving.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getenv returns the value of the environment variable or the default when
// the variable is unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
