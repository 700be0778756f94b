package config

import "time"

// Config holds runtime configuration for the API service.
type Config struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	CorpToolsBaseURL   string
	CorpToolsAccessKey string
	CorpToolsSecretKey string
	CorpToolsTimeout   time.Duration
	StripeSecretKey    string
	Debug              bool
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// Load constructs a Config from environment variables. DATABASE_URL is
// deliberately empty by default: without it the server runs on the
// in-memory store. The CorpTools keys carry no baked-in fallback values;
// requests signed with empty keys are rejected upstream.
func Load() Config {
	return Config{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":3000"),
		DatabaseURL:        GetString("DATABASE_URL", ""),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		CorpToolsBaseURL:   GetString("CORPTOOLS_API_URL", "https://api.corporatetools.com"),
		CorpToolsAccessKey: GetString("CORPTOOLS_ACCESS_KEY", ""),
		CorpToolsSecretKey: GetString("CORPTOOLS_SECRET_KEY", ""),
		CorpToolsTimeout:   GetDuration("CORPTOOLS_TIMEOUT_SECONDS", 30*time.Second),
		StripeSecretKey:    GetString("STRIPE_SECRET_KEY", ""),
		Debug:              GetBool("DEBUG", false),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}
