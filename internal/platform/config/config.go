package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Source modes.
const (
	SourceLive   = "live"
	SourceStatic = "static"
)

// Config is the full process configuration. main builds it once and passes
// the pieces to constructors.
type Config struct {
	Server  Server
	Log     Log
	Store   Store
	Cache   Cache
	Redis   RedisConfig
	Source  Source
	Resolve Resolve
	Import  Import
	Kafka   Kafka
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	// Optional; empty disables the claim check.
	JWTIssuer   string
	JWTAudience string
}

type Log struct {
	Level  string
	Format string
}

type Store struct {
	Backend       string
	DatabaseURL   string
	MongoURL      string
	MongoDatabase string
}

type Cache struct {
	Backend string
	TTL     time.Duration
}

// RedisConfig holds connection settings for the cache backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Source selects and configures the external source adapter.
type Source struct {
	Mode           string
	APIURL         string
	APIKey         string
	Timeout        time.Duration
	StaticDataPath string
	// Breaker settings for the live adapter.
	FailureThreshold int
	SuccessThreshold int
	Cooldown         time.Duration
}

type Resolve struct {
	Concurrency int
}

type Import struct {
	MaxBytes int64
}

type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// Enabled reports whether audit events go to a broker.
func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	e := env{lookup: lookup}

	cfg := Config{
		Server: Server{
			Addr:          e.str("VOTERDATA_ADDR", ":8080"),
			JWTSigningKey: e.str("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     e.str("JWT_ISSUER", ""),
			JWTAudience:   e.str("JWT_AUDIENCE", ""),
		},
		Log: Log{
			Level:  strings.ToLower(e.str("LOG_LEVEL", "info")),
			Format: strings.ToLower(e.str("LOG_FORMAT", "json")),
		},
		Store: Store{
			Backend:       strings.ToLower(e.str("STORE_BACKEND", StoreMemory)),
			DatabaseURL:   e.str("DATABASE_URL", ""),
			MongoURL:      e.str("MONGO_URL", ""),
			MongoDatabase: e.str("MONGO_DATABASE", "voterdata"),
		},
		Cache: Cache{
			TTL: e.duration("CACHE_TTL", time.Hour),
		},
		Redis: RedisConfig{
			URL:          e.str("REDIS_URL", ""),
			PoolSize:     e.number("REDIS_POOL_SIZE", 10),
			MinIdleConns: e.number("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  e.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  e.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: e.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Source: Source{
			Mode:             strings.ToLower(e.str("SOURCE_MODE", "")),
			APIURL:           e.str("THIRD_PARTY_API_URL", ""),
			APIKey:           e.str("THIRD_PARTY_API_KEY", ""),
			Timeout:          e.duration("SOURCE_TIMEOUT", 10*time.Second),
			StaticDataPath:   e.str("STATIC_DATA_PATH", "tempData.json"),
			FailureThreshold: e.number("SOURCE_BREAKER_FAILURES", 5),
			SuccessThreshold: e.number("SOURCE_BREAKER_SUCCESSES", 2),
			Cooldown:         e.duration("SOURCE_BREAKER_COOLDOWN", 30*time.Second),
		},
		Resolve: Resolve{
			Concurrency: e.number("RESOLVE_CONCURRENCY", 8),
		},
		Import: Import{
			MaxBytes: int64(e.number("IMPORT_MAX_BYTES", 10<<20)),
		},
		Kafka: Kafka{
			Brokers:    splitCSV(e.str("KAFKA_BROKERS", "")),
			AuditTopic: e.str("AUDIT_TOPIC", "voterdata.audit"),
		},
	}

	if cfg.Source.Mode == "" {
		cfg.Source.Mode = SourceLive
		if v := e.str("STATIC_DATA", ""); v == "1" || strings.EqualFold(v, "true") {
			cfg.Source.Mode = SourceStatic
		}
	}

	cfg.Cache.Backend = strings.ToLower(e.str("CACHE_BACKEND", ""))
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheNone
		if cfg.Redis.URL != "" {
			cfg.Cache.Backend = CacheRedis
		}
	}

	if err := errors.Join(e.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case StoreMemory:
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case StoreMongo:
		if c.Store.MongoURL == "" {
			errs = append(errs, errors.New("MONGO_URL is required for the mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}

	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}

	switch c.Source.Mode {
	case SourceLive:
		if c.Source.APIURL == "" {
			errs = append(errs, errors.New("THIRD_PARTY_API_URL is required in live mode"))
		}
	case SourceStatic:
		if c.Source.StaticDataPath == "" {
			errs = append(errs, errors.New("STATIC_DATA_PATH is required in static mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SOURCE_MODE %q", c.Source.Mode))
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, errors.New("SOURCE_TIMEOUT must be positive"))
	}

	if c.Resolve.Concurrency < 1 {
		errs = append(errs, errors.New("RESOLVE_CONCURRENCY must be at least 1"))
	}
	if c.Import.MaxBytes < 1 {
		errs = append(errs, errors.New("IMPORT_MAX_BYTES must be positive"))
	}
	if c.Server.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY must not be empty"))
	}
	return errors.Join(errs...)
}

type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) str(key, def string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e *env) number(key string, def int) int {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return def
	}
	return n
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
