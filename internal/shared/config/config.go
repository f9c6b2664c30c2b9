package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultMaxUploadBytes = 5 << 20 // 5MB

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	DatabaseURL     string
	JWTSecret       string
	JWTTTL          time.Duration

	ObjectStoreType string
	LocalStoreDir   string
	PublicBaseURL   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3Endpoint      string
	S3PublicURL     string
	S3AccessKeyID   string
	S3SecretKey     string

	LLMProvider          string
	LLMBaseURL           string
	LLMModel             string
	LLMAPIKey            string
	LLMTimeout           time.Duration
	LLMRequestsPerSecond float64
	LLMMaxRetries        int

	SofficeBin     string
	ConvertTimeout time.Duration
	TempDir        string
	RedisURL       string

	MaxUploadBytes        int64
	GenerateRatePerMinute int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Existing environment wins over file values.
	if files := existingFiles(".env", "cmd/.env"); len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			log.Printf("config: load env files: %v", err)
		}
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	port := getEnv("PORT", "8080")
	provider := normalizeProvider(getEnv("LLM_PROVIDER", "groq"))

	return Config{
		Port:            port,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:             env,
		DatabaseURL:     dbURL,
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTTTL:          getDuration("JWT_TTL", 24*time.Hour),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+strings.TrimPrefix(port, ":")), "/"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3PublicURL:     getEnv("S3_PUBLIC_URL", ""),
		S3AccessKeyID:   getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:     getEnv("S3_SECRET_ACCESS_KEY", ""),

		LLMProvider:          provider,
		LLMBaseURL:           getEnv("LLM_BASE_URL", defaultBaseURL(provider)),
		LLMModel:             getEnv("LLM_MODEL", defaultModel(provider)),
		LLMAPIKey:            firstNonEmpty(os.Getenv("LLM_API_KEY"), os.Getenv("GROQ_API_KEY"), os.Getenv("OPENAI_API_KEY"), os.Getenv("GOOGLE_API_KEY")),
		LLMTimeout:           getDuration("LLM_TIMEOUT", 120*time.Second),
		LLMRequestsPerSecond: getFloat("LLM_REQUESTS_PER_SECOND", 0),
		LLMMaxRetries:        getInt("LLM_MAX_RETRIES", 0),

		SofficeBin:     getEnv("SOFFICE_BIN", "soffice"),
		ConvertTimeout: getDuration("CONVERT_TIMEOUT", 120*time.Second),
		TempDir:        getEnv("TEMP_DIR", os.TempDir()),
		RedisURL:       getEnv("REDIS_URL", ""),

		MaxUploadBytes:        int64(getInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		GenerateRatePerMinute: getInt("GENERATE_RATE_PER_MINUTE", 10),
	}
}

// IsDevLike reports whether env allows in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func existingFiles(paths ...string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config %s invalid float: %v", key, err)
		return def
	}
	return val
}

// getDuration accepts Go durations ("90s") or bare seconds ("90").
func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid duration: %q", key, raw)
		return def
	}
	return val
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "gemini", "google", "googleai":
		return "gemini"
	default:
		return "groq"
	}
}

func defaultBaseURL(provider string) string {
	switch provider {
	case "openai":
		return "https://api.openai.com/v1"
	case "gemini":
		return ""
	default:
		return "https://api.groq.com/openai/v1"
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "gemini":
		return "gemini-2.5-flash"
	default:
		return "llama3-70b-8192"
	}
}
