package config

import (
	"errors"
	"strings"
	"time"

	"blogapp/global"
	"blogapp/utils"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Name string
		Port string
		Env  string
	}
	Database struct {
		Driver       string
		Dsn          string
		MaxIdleConns int
		MaxOpenConns int
	}
	Redis struct {
		Addr     string
		DB       int
		Password string
	}
	RabbitMQ struct {
		Url   string
		Queue string
	}
	JWT struct {
		Secret string
		TTL    time.Duration
	}
	Cookie struct {
		Name string
	}
	Cors struct {
		AllowOrigins []string
	}
	Log struct {
		Level  string
		Format string
	}
}

// IsProd reports whether the app runs in production mode.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "production")
}

var AppConfig *Config

// InitConfig loads ./config/config.yml and opens every backing service.
func InitConfig() {
	cfg, err := Load("./config")
	if err != nil {
		global.Logger.Fatalf("Error reading config file: %v", err)
	}
	AppConfig = cfg

	initLogger()
	global.Tokens = utils.NewTokenService(AppConfig.JWT.Secret, AppConfig.JWT.TTL)

	initDB()
	initRedis()
	initRabbit()
}

// Load reads config.yml from path when present. Environment variables
// prefixed with BLOGAPP_ override file values, e.g. BLOGAPP_JWT_SECRET.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(path)
	setDefaults(v)

	v.SetEnvPrefix("BLOGAPP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt.secret is required")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "blogapp")
	v.SetDefault("app.port", ":3000")
	v.SetDefault("app.env", "development")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "root:root@tcp(127.0.0.1:3306)/blogapp?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.maxidleconns", 10)
	v.SetDefault("database.maxopenconns", 100)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.queue", "like.queue")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", utils.DefaultTokenTTL)

	v.SetDefault("cookie.name", "auth-token")

	v.SetDefault("cors.alloworigins", []string{"http://localhost:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
