// Package config provides utilities to load environment variables & set config structs, it includes app, logger, db, redis cache, message broker, pool service and http server settings.
package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// AppConfig contains environment variables for the application, database, cache, broker, pool service and http server
type (
	AppConfig struct {
		App       *App       `mapstructure:"app"`
		Logger    *Logger    `mapstructure:"logger"`
		DB        *DB        `mapstructure:"db"`
		Redis     *Redis     `mapstructure:"redis"`
		Broker    *Broker    `mapstructure:"broker"`
		Pool      *Pool      `mapstructure:"pool"`
		Broadcast *Broadcast `mapstructure:"broadcast"`
		HTTP      *HTTP      `mapstructure:"http"`
	}

	// App contains all the environment variables for the application
	App struct {
		Name  string `mapstructure:"name"`
		Env   string `mapstructure:"env"`
		Owner string `mapstructure:"owner"`
	}

	// Redis contains all the environment variables for the cache service
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	}

	// DB contains all the environment variables for the database
	DB struct {
		Connection string `mapstructure:"connection"`
		Database   string `mapstructure:"database"`
		Host       string `mapstructure:"host"`
		Port       string `mapstructure:"port"`
		User       string `mapstructure:"user"`
		Password   string `mapstructure:"password"`
		Name       string `mapstructure:"name"`
	}

	// Broker contains all the environment variables for the message broker
	Broker struct {
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		VHost    string `mapstructure:"vhost"`
	}

	// Pool contains all the environment variables for the external pool service
	Pool struct {
		BaseURL string `mapstructure:"baseUrl"`
		// MockMode short-circuits every outbound pool call, for environments
		// with no real pool service behind them.
		MockMode bool `mapstructure:"mockMode"`
		// SecretKey is the hex-encoded AES key that opens stored pool API keys.
		SecretKey string `mapstructure:"secretKey"`
	}

	// Broadcast contains all the environment variables for realtime event fan-out
	Broadcast struct {
		Enabled bool `mapstructure:"enabled"`
		// Driver selects the transport, "redis" or "rabbitmq"
		Driver string `mapstructure:"driver"`
	}

	// HTTP contains all the environment variables for the http server
	HTTP struct {
		Addr         string `mapstructure:"addr"`
		ReadTimeout  int    `mapstructure:"readTimeout"`
		WriteTimeout int    `mapstructure:"writeTimeout"`
	}

	// Logger contains all the environment variables for the logger
	Logger struct {
		Level             string                `mapstructure:"level"`
		Development       bool                  `mapstructure:"development"`
		DisableStacktrace bool                  `mapstructure:"disableStacktrace"`
		Encoding          string                `mapstructure:"encoding"`
		EncoderConfig     zapcore.EncoderConfig `mapstructure:"encoderConfig"`
	}
)

// addZapEncoderConfig fills encoder config with zapcore types
func addZapEncoderConfig(cfg *zapcore.EncoderConfig) {
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.SecondsDurationEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.EncodeName = func(s string, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString("[" + s + "]")
	}
}

// New creates a new AppConfig instance
func New() *AppConfig {
	// Set up viper to read the config.yaml file
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/secrets/")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("env")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Fatalf("config file not found: %v", err)
		} else {
			log.Fatalf("error reading config file: %v", err)
		}
	}

	// Bind the app.name key to the APP_NAME environment variable
	if err := viper.BindEnv("app.name", "APP_NAME"); err != nil {
		log.Fatalf("error finding APP_NAME env variable")
	}

	// Bind DB variables
	viper.BindEnv("db.host", "PG_HOST")
	viper.BindEnv("db.port", "PG_PORT")
	viper.BindEnv("db.user", "PG_USER")
	viper.BindEnv("db.password", "PG_PASS")
	viper.BindEnv("db.name", "PG_DB")

	// Bind Redis variables
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Bind broker variables
	viper.BindEnv("broker.user", "MQ_USER")
	viper.BindEnv("broker.password", "MQ_PASS")
	viper.BindEnv("broker.host", "MQ_HOST")
	viper.BindEnv("broker.port", "MQ_PORT")

	// Bind pool service variables
	viper.BindEnv("pool.baseUrl", "POOL_API_URL")
	viper.BindEnv("pool.mockMode", "MOCK_POOL_API")
	viper.BindEnv("pool.secretKey", "POOL_SECRET_KEY")
	viper.BindEnv("broadcast.enabled", "BROADCAST_ENABLED")
	viper.BindEnv("broadcast.driver", "BROADCAST_DRIVER")

	// Create an instance of AppConfig
	var config *AppConfig
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("unable to decode into struct: %v", err)
	}
	addZapEncoderConfig(&config.Logger.EncoderConfig)

	return config
}

// AMQPURL assembles the broker dial string from its parts
func (b *Broker) AMQPURL() string {
	vhost := b.VHost
	if vhost == "" {
		vhost = "/"
	}
	return "amqp://" + b.User + ":" + b.Password + "@" + b.Host + ":" + b.Port + vhost
}
