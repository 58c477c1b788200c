package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/khoahotran/portfolio/pkg/apperror"
)

const (
	DriverREST     = "rest"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	Backend struct {
		Driver string `mapstructure:"driver"`
	} `mapstructure:"backend"`
	Supabase struct {
		URL     string        `mapstructure:"url"`
		AnonKey string        `mapstructure:"anon_key"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"supabase"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Admin struct {
		Email    string `mapstructure:"email"`
		Password string `mapstructure:"password"`
	} `mapstructure:"admin"`
	Session struct {
		CookieName string `mapstructure:"cookie_name"`
		Secure     bool   `mapstructure:"secure"`
	} `mapstructure:"session"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"tracing"`
}

// LoadConfig reads .env and config.yaml from the given directories (the
// working directory when none is given), then overlays the environment.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	envFiles := make([]string, 0, len(paths))
	for _, p := range paths {
		envFiles = append(envFiles, filepath.Join(p, ".env"))
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("warning: .env file not found, use environment only.")
	}

	v := viper.New()
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read environment only. Error: %v", err)
	}

	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("backend.driver", DriverREST)
	v.SetDefault("supabase.timeout", 30*time.Second)
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("session.cookie_name", "portfolio_session")
	v.SetDefault("kafka.topic", "content.events")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT", "PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("backend.driver", "BACKEND_DRIVER")
	v.BindEnv("supabase.url", "SUPABASE_URL", "VITE_SUPABASE_URL")
	v.BindEnv("supabase.anon_key", "SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY")
	v.BindEnv("supabase.timeout", "SUPABASE_TIMEOUT")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")
	v.BindEnv("admin.email", "ADMIN_EMAIL")
	v.BindEnv("admin.password", "ADMIN_PASSWORD")
	v.BindEnv("session.cookie_name", "SESSION_COOKIE_NAME")
	v.BindEnv("session.secure", "SESSION_COOKIE_SECURE")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_TOPIC")
	v.BindEnv("tracing.otlp_endpoint", "JAEGER_OTLP_ENDPOINT")

	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate fails when the selected backend is missing either of its two
// required values. The application must not start half configured.
func (c Config) Validate() error {
	switch c.Backend.Driver {
	case DriverREST:
		return requireAll(map[string]string{
			"SUPABASE_URL":      c.Supabase.URL,
			"SUPABASE_ANON_KEY": c.Supabase.AnonKey,
		})
	case DriverPostgres:
		return requireAll(map[string]string{
			"DB_DSN":     c.DB.DSN,
			"JWT_SECRET": c.Auth.JWTSecret,
		})
	case DriverMemory:
		return nil
	default:
		return apperror.NewConfiguration(fmt.Sprintf("unknown backend driver %q", c.Backend.Driver))
	}
}

func requireAll(values map[string]string) error {
	missing := make([]string, 0, len(values))
	for key, val := range values {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return apperror.NewConfiguration("missing " + strings.Join(missing, ", "))
}
