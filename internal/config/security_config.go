package config

import "time"

type SecurityConfig interface {
	GetSessionSecret() string
	GetProfileMaxAge() time.Duration
	GetSecureCookies() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSessionSecret is the master secret the cookie signing and encryption keys are derived from.
// An empty value makes the server generate an ephemeral secret at start-up.
func (Security) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "")
}

// GetProfileMaxAge is the lifetime of the persistent profile cookie.
func (Security) GetProfileMaxAge() time.Duration {
	return GetEnvDuration("PROFILE_MAX_AGE", 30*24*time.Hour)
}

func (Security) GetSecureCookies() bool {
	return EnvVars{}.GetEnv() != "DEV"
}
