package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"

	AuthProviderLocal    = "local"
	AuthProviderSupabase = "supabase"

	ResharePolicyInvalidate = "invalidate"
	ResharePolicyKeep       = "keep"
)

type Config struct {
	App struct {
		Port               string        `mapstructure:"port"`
		Env                string        `mapstructure:"env"`
		RoutePrefix        string        `mapstructure:"route_prefix"`
		CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
		ReadTimeout        time.Duration `mapstructure:"read_timeout"`
		WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"app"`
	Store struct {
		Driver string `mapstructure:"driver"`
	} `mapstructure:"store"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		Provider      string        `mapstructure:"provider"`
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Supabase struct {
		URL            string `mapstructure:"url"`
		ServiceRoleKey string `mapstructure:"service_role_key"`
		AnonKey        string `mapstructure:"anon_key"`
	} `mapstructure:"supabase"`
	Sharing struct {
		PublicBaseURL string `mapstructure:"public_base_url"`
		ResharePolicy string `mapstructure:"reshare_policy"`
	} `mapstructure:"sharing"`
	Documents struct {
		AllowUnknownFields bool `mapstructure:"allow_unknown_fields"`
	} `mapstructure:"documents"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"tracing"`
}

// LoadConfig reads .env, an optional config.yaml from the given paths (default "."),
// then environment overrides.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	for _, p := range paths {
		if loadErr := godotenv.Load(strings.TrimRight(p, "/") + "/.env"); loadErr == nil {
			break
		}
	}

	v := viper.New()
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read environment only. Error: %v", err)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.route_prefix", "APP_ROUTE_PREFIX")
	v.BindEnv("app.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("auth.provider", "AUTH_PROVIDER")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")
	v.BindEnv("supabase.url", "SUPABASE_URL")
	v.BindEnv("supabase.service_role_key", "SUPABASE_SERVICE_ROLE_KEY")
	v.BindEnv("supabase.anon_key", "SUPABASE_ANON_KEY")
	v.BindEnv("sharing.public_base_url", "SHARE_PUBLIC_BASE_URL")
	v.BindEnv("sharing.reshare_policy", "RESHARE_POLICY")
	v.BindEnv("documents.allow_unknown_fields", "DOCUMENTS_ALLOW_UNKNOWN_FIELDS")
	v.BindEnv("tracing.otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	if err = v.Unmarshal(&cfg); err != nil {
		return
	}

	cfg.App.CORSAllowedOrigins = splitList(cfg.App.CORSAllowedOrigins)
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	cfg.Auth.Provider = strings.ToLower(strings.TrimSpace(cfg.Auth.Provider))
	cfg.Sharing.ResharePolicy = strings.ToLower(strings.TrimSpace(cfg.Sharing.ResharePolicy))
	cfg.Sharing.PublicBaseURL = strings.TrimRight(cfg.Sharing.PublicBaseURL, "/")
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.route_prefix", "/make-server-a189b8f6")
	v.SetDefault("app.cors_allowed_origins", []string{"*"})
	v.SetDefault("app.read_timeout", 15*time.Second)
	v.SetDefault("app.write_timeout", 15*time.Second)
	v.SetDefault("store.driver", StoreMemory)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("kafka.group_id", "cv-view-recorder")
	v.SetDefault("auth.provider", AuthProviderLocal)
	v.SetDefault("auth.jwt_secret", "dev-secret-key")
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("sharing.public_base_url", "https://cvnova.com")
	v.SetDefault("sharing.reshare_policy", ResharePolicyInvalidate)
	v.SetDefault("documents.allow_unknown_fields", true)
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
