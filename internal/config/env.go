package config

import (
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env carries the deploy-time overrides. Everything else stays a compile-time
// constant until it actually needs to differ between environments.
type Env struct {
	ListenAddr string `env:"LISTEN_ADDR"`

	RedisAddr  string `env:"REDIS_ADDR"`
	QdrantHost string `env:"QDRANT_HOST"`
	QdrantPort int    `env:"QDRANT_PORT"`

	Provider     string `env:"MODEL_PROVIDER"` //google | openai
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	ServiceToken string `env:"SERVICE_TOKEN"`
}

var (
	envOnce   sync.Once
	loadedEnv Env
)

func GetEnv() Env {
	envOnce.Do(func() {
		//a missing .env is fine, the process env still applies
		_ = godotenv.Load()

		loadedEnv = Env{
			ListenAddr: ServerListenAddr,
			RedisAddr:  RedisAddr,
			QdrantHost: QdrantHost,
			QdrantPort: QdrantGrpcPort,
			Provider:   ProviderGoogle,
		}
		if err := env.Parse(&loadedEnv); err != nil {
			//keep the defaults, the caller nil-checks the services anyway
			loadedEnv.Provider = ProviderGoogle
		}
	})
	return loadedEnv
}
