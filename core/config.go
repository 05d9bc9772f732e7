package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// devSecretKey signs tokens on developer machines only; Validate rejects it elsewhere.
const devSecretKey = "ul2-f&4q=yt_@x0d!w$9n#(kv7bq1*s^j3)e6z%hp+8cm5ra"

// ErrInsecureConfig is the cause of every Validate failure.
var ErrInsecureConfig = errors.New("insecure configuration")

type (
	ServerConfig struct {
		Address         string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	MongoConfig struct {
		URI            string
		Database       string
		ConnectTimeout time.Duration
	}

	BlobConfig struct {
		Backend       string // gridfs | s3
		Bucket        string
		MaxUploadSize int64 // bytes
	}

	S3Config struct {
		Endpoint        string
		Region          string
		AccessKeyID     string
		SecretAccessKey string
		Bucket          string
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
		TTL      time.Duration
	}

	KafkaConfig struct {
		Brokers []string
		Topic   string
	}

	Config struct {
		Env                string
		Build              string
		Debug              bool
		TestMode           bool
		AppName            string
		SecretKey          string
		JWTExpirationDelta time.Duration
		PageSize           int
		RollbarToken       string
		SendgridApiKey     string
		FromEmail          string

		Server ServerConfig
		Mongo  MongoConfig
		Blob   BlobConfig
		S3     S3Config
		Redis  RedisConfig
		Kafka  KafkaConfig
	}
)

// NewConfig loads the configuration once at startup.
// Values are read from `<ENV>_*` environment variables, optionally seeded from `config/.env.<env>`.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Courseware")
	if env == "DEV" || env == "TEST" {
		v.SetDefault("secretKey", devSecretKey)
	} else {
		v.SetDefault("secretKey", "")
	}
	v.SetDefault("jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("pageSize", DefaultPageSize)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "Courseware <noreply@localhost>")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "courseware")
	v.SetDefault("mongo.connectTimeout", 10*time.Second)
	v.SetDefault("blob.backend", "gridfs")
	v.SetDefault("blob.bucket", "submissions")
	v.SetDefault("blob.maxUploadSize", int64(10<<20))
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.accessKeyID", "")
	v.SetDefault("s3.secretAccessKey", "")
	v.SetDefault("s3.bucket", "submissions")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "courseware.events")

	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:                env,
		Build:              v.GetString("build"),
		Debug:              v.GetBool("debug"),
		TestMode:           v.GetBool("testMode"),
		AppName:            v.GetString("appName"),
		SecretKey:          v.GetString("secretKey"),
		JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		PageSize:           v.GetInt("pageSize"),
		RollbarToken:       v.GetString("rollbarToken"),
		SendgridApiKey:     v.GetString("sendgridApiKey"),
		FromEmail:          v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Mongo: MongoConfig{
			URI:            v.GetString("mongo.uri"),
			Database:       v.GetString("mongo.database"),
			ConnectTimeout: v.GetDuration("mongo.connectTimeout"),
		},
		Blob: BlobConfig{
			Backend:       v.GetString("blob.backend"),
			Bucket:        v.GetString("blob.bucket"),
			MaxUploadSize: v.GetInt64("blob.maxUploadSize"),
		},
		S3: S3Config{
			Endpoint:        v.GetString("s3.endpoint"),
			Region:          v.GetString("s3.region"),
			AccessKeyID:     v.GetString("s3.accessKeyID"),
			SecretAccessKey: v.GetString("s3.secretAccessKey"),
			Bucket:          v.GetString("s3.bucket"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Kafka: KafkaConfig{
			Brokers: v.GetStringSlice("kafka.brokers"),
			Topic:   v.GetString("kafka.topic"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests; nothing is read from the environment.
func NewTestConfig() *Config {
	return &Config{
		Env:                "TEST",
		Build:              "test",
		TestMode:           true,
		AppName:            "Courseware",
		SecretKey:          "test-secret",
		JWTExpirationDelta: 24 * time.Hour,
		PageSize:           DefaultPageSize,
		FromEmail:          "Courseware <noreply@localhost>",
		Server:             ServerConfig{Address: ":0", ShutdownTimeout: time.Second},
		Blob:               BlobConfig{Backend: "memory", Bucket: "submissions", MaxUploadSize: 1 << 20},
	}
}

// Validate refuses settings that are only acceptable on DEV and TEST:
// a missing or built-in signing key, and debug mode.
func (c *Config) Validate() error {
	if c.Env == "DEV" || c.Env == "TEST" {
		return nil
	}
	if c.SecretKey == "" || c.SecretKey == devSecretKey {
		return errors.Wrapf(ErrInsecureConfig, "%s_SECRETKEY must be set", c.Env)
	}
	if c.Debug {
		return errors.Wrapf(ErrInsecureConfig, "debug must be off in %s", c.Env)
	}
	return nil
}

// DefaultFromEmail parses the configured sender address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.FromEmail)
	if err != nil {
		return mail.Address{Address: c.FromEmail}
	}
	return *addr
}
