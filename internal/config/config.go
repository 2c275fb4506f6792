package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits list-valued variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Strings for identifiers and secrets, ints for
// durations and costs.  SMTP credentials may be empty: the mailer then runs
// in dev mode and only logs outbound messages instead of delivering them.
type Config struct {
	Env             string   // application environment (e.g. "dev", "prod")
	Port            string   // HTTP port to listen on
	DBUser          string   // database username
	DBPass          string   // database password (optional)
	DBHost          string   // database host address
	DBPort          string   // database port number
	DBName          string   // database name
	BcryptCost      int      // bcrypt cost for password hashing
	SessionTTLHours int      // session token time-to-live in hours
	ResetTTLMin     int      // password reset token time-to-live in minutes
	CORSOrigins     []string // allowed origins for browser clients
	UploadDir       string   // directory for uploaded profile images
	ImportStrict    bool     // reject import rows with missing required fields instead of backfilling
	SMTPHost        string   // SMTP server host
	SMTPPort        string   // SMTP server port
	SMTPUser        string   // SMTP username
	SMTPPass        string   // SMTP password (app password)
	SMTPFrom        string   // From address on outbound mail
	PublicBaseURL   string   // base URL used in reset links sent by email
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:             envStr("APP_ENV", "dev"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"), // empty allowed
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		BcryptCost:      envInt("BCRYPT_COST", 10),
		SessionTTLHours: envInt("SESSION_TTL_HOURS", 24),
		ResetTTLMin:     envInt("RESET_TOKEN_TTL_MIN", 60),
		CORSOrigins:     splitList(envStr("CORS_ORIGINS", "*")),
		UploadDir:       envStr("UPLOAD_DIR", "uploads"),
		ImportStrict:    envBool("IMPORT_STRICT", false),
		SMTPHost:        envStr("SMTP_HOST", ""),
		SMTPPort:        envStr("SMTP_PORT", "587"),
		SMTPUser:        envStr("SMTP_USERNAME", ""),
		SMTPPass:        envStr("SMTP_PASSWORD", ""),
		SMTPFrom:        envStr("SMTP_FROM", "noreply@babybliss.events"),
		PublicBaseURL:   envStr("PUBLIC_BASE_URL", "http://localhost:3000"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// splitList parses a comma separated list, trimming whitespace and dropping
// empty entries.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
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
