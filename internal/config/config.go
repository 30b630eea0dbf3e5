package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	APIConfig
	FlowConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEventContentFile() string
	GetLogLevel() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

// APIConfig describes the external registration backend.
type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

// FlowConfig holds the tunables of the login and registration flows.
type FlowConfig interface {
	GetOTPLength() int
	GetOTPCooldown() time.Duration
	GetSuccessDelay() time.Duration
	GetFlowIdleTimeout() time.Duration
}

type StorageConfig interface {
	GetStorageBackend() string
	GetSQLitePath() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	API
	Flow
	Storage
}

func New() Config {
	return mainConfig{}
}
