package config

import "time"

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:5000/api")
}

// GetAPITimeout bounds every call to the backend so a hung request cannot pin a page forever.
func (API) GetAPITimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 15*time.Second)
}
