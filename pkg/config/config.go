// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ScyllaHosts []string `envconfig:"SCYLLA_HOSTS" default:"localhost:9042"`
	Keyspace    string   `envconfig:"SCYLLA_KEYSPACE" default:"socialnet"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:19092"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"dm-messages"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"dev_secret_change_me"`

	GatewayAddr string `envconfig:"GATEWAY_ADDR" default:":8080"`
	APIAddr     string `envconfig:"API_ADDR" default:":8081"`

	// Base URL of the external profile service consumed by UI clients.
	ProfileBaseURL string `envconfig:"PROFILE_BASE_URL" default:"http://localhost:3002"`

	// Snowflake node id; must differ per gateway instance.
	NodeID int64 `envconfig:"NODE_ID" default:"1"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
