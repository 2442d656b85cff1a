package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	ModeDevelopment = "development"
	ModeTest        = "test"
	ModeProduction  = "production"

	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Mode    string `validate:"oneof=development test production"`
	Host    string `validate:"required"`
	Port    int    `validate:"min=1,max=65535"`
	LogDir  string
	Driver  string `validate:"oneof=mongo memory"`
	EnvFile string

	MongoURL                    string `validate:"required_if=Driver mongo"`
	MongoDB                     string `validate:"required_if=Driver mongo"`
	MongoMaxPoolSize            uint64 `validate:"min=1"`
	MongoMinPoolSize            uint64 `validate:"ltefield=MongoMaxPoolSize"`
	MongoServerSelectionTimeout time.Duration
	MongoConnectTimeout         time.Duration
	MongoSocketTimeout          time.Duration
	MongoMaxConnecting          uint64
	MongoMaxIdleTime            time.Duration
	MongoCompressors            []string `validate:"dive,oneof=snappy zlib zstd"`

	JWTSecretKey   string        `validate:"required"`
	JWTAlgorithm   string        `validate:"oneof=HS256 HS384 HS512"`
	AccessTokenTTL time.Duration `validate:"gt=0"`
	BcryptCost     int           `validate:"min=4,max=31"`

	RedisHost string
	RedisPort int `validate:"min=1,max=65535"`

	RateLimitMax    int           `validate:"min=0"`
	RateLimitWindow time.Duration `validate:"gt=0"`
	CORSOrigins     string
}

// envReader collects the first parse failure so LoadConfig can read every
// field before reporting.
type envReader struct {
	err error
}

func (r *envReader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *envReader) integer(key string, def int) int {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("%s: %q is not an integer", key, raw)
		}
		return def
	}
	return v
}

func (r *envReader) unsigned(key string, def uint64) uint64 {
	raw := r.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("%s: %q is not a non-negative integer", key, raw)
		}
		return def
	}
	return v
}

func (r *envReader) millis(key string, def int) time.Duration {
	return time.Duration(r.integer(key, def)) * time.Millisecond
}

func (r *envReader) list(key string) []string {
	raw := r.str(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads env/.env.<mode>, falling back to .env. Variables already
// set in the environment are never overridden.
func loadEnvFile(mode string) (string, error) {
	for _, path := range []string{fmt.Sprintf("env/.env.%s", mode), ".env"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return "", fmt.Errorf("load %s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}

func LoadConfig() (Config, error) {
	mode := strings.TrimSpace(os.Getenv("APP_MODE"))
	switch mode {
	case ModeDevelopment, ModeTest, ModeProduction:
	case "":
		return Config{}, errors.New("APP_MODE is not set; expected development, test or production")
	default:
		return Config{}, fmt.Errorf("APP_MODE %q is invalid; expected development, test or production", mode)
	}

	envFile, err := loadEnvFile(mode)
	if err != nil {
		return Config{}, err
	}

	r := &envReader{}
	cfg := Config{
		Mode:    mode,
		Host:    r.str("APP_HOST", "0.0.0.0"),
		Port:    r.integer("APP_PORT", 8000),
		LogDir:  r.str("LOG_DIR", ""),
		Driver:  r.str("STORE_DRIVER", DriverMongo),
		EnvFile: envFile,

		MongoURL:                    r.str("MONGO_URL", ""),
		MongoDB:                     r.str("MONGO_DB", ""),
		MongoMaxPoolSize:            r.unsigned("MONGO_MAX_POOL_SIZE", 100),
		MongoMinPoolSize:            r.unsigned("MONGO_MIN_POOL_SIZE", 0),
		MongoServerSelectionTimeout: r.millis("MONGO_SERVER_SELECTION_TIMEOUT_MS", 5000),
		MongoConnectTimeout:         r.millis("MONGO_CONNECT_TIMEOUT_MS", 10000),
		MongoSocketTimeout:          r.millis("MONGO_SOCKET_TIMEOUT_MS", 20000),
		MongoMaxConnecting:          r.unsigned("MONGO_MAX_CONNECTING", 2),
		MongoMaxIdleTime:            r.millis("MONGO_MAX_IDLE_TIME_MS", 0),
		MongoCompressors:            r.list("MONGO_COMPRESSORS"),

		JWTSecretKey:   r.str("JWT_SECRET_KEY", ""),
		JWTAlgorithm:   r.str("JWT_ALGORITHM", "HS256"),
		AccessTokenTTL: time.Duration(r.integer("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		BcryptCost:     r.integer("BCRYPT_COST", bcrypt.DefaultCost),

		RedisHost: r.str("REDIS_HOST", ""),
		RedisPort: r.integer("REDIS_PORT", 6379),

		RateLimitMax:    r.integer("RATE_LIMIT_MAX", 100),
		RateLimitWindow: time.Duration(r.integer("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		CORSOrigins:     r.str("CORS_ALLOW_ORIGINS", "*"),
	}
	if r.err != nil {
		return Config{}, r.err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// RedisEnabled reports whether a Redis host was configured.
func (c Config) RedisEnabled() bool {
	return c.RedisHost != ""
}
