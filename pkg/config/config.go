package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Realtime     RealtimeConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NANOPRO_APP_ENV" required:"true"`
	Port         string `envconfig:"NANOPRO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"NANOPRO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NANOPRO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"NANOPRO_DB_DSN"`

	Host     string `envconfig:"NANOPRO_DB_HOST"`
	Port     int    `envconfig:"NANOPRO_DB_PORT" default:"5432"`
	User     string `envconfig:"NANOPRO_DB_USER"`
	Password string `envconfig:"NANOPRO_DB_PASSWORD"`
	Name     string `envconfig:"NANOPRO_DB_NAME"`
	SSLMode  string `envconfig:"NANOPRO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NANOPRO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NANOPRO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NANOPRO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NANOPRO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database DSN or host/user/name are required")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"NANOPRO_REDIS_URL"`
	Address      string        `envconfig:"NANOPRO_REDIS_ADDR"`
	Password     string        `envconfig:"NANOPRO_REDIS_PASSWORD"`
	DB           int           `envconfig:"NANOPRO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NANOPRO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NANOPRO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NANOPRO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NANOPRO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NANOPRO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"NANOPRO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"NANOPRO_JWT_ISSUER" default:"nanopro"`
	ExpirationMinutes      int    `envconfig:"NANOPRO_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"NANOPRO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NANOPRO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NANOPRO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NANOPRO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NANOPRO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NANOPRO_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"NANOPRO_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"NANOPRO_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type RealtimeConfig struct {
	PollInterval  time.Duration `envconfig:"NANOPRO_REALTIME_POLL_INTERVAL" default:"1s"`
	DispatchBatch int           `envconfig:"NANOPRO_REALTIME_DISPATCH_BATCH" default:"100"`
}
