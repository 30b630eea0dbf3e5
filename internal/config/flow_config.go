package config

import "time"

type Flow struct{}

var _ FlowConfig = Flow{}

func (Flow) GetOTPLength() int {
	return GetEnvInt("OTP_LENGTH", 6)
}

func (Flow) GetOTPCooldown() time.Duration {
	return GetEnvDuration("OTP_COOLDOWN", 60*time.Second)
}

// GetSuccessDelay is how long a success screen stays up before moving on to the dashboard.
func (Flow) GetSuccessDelay() time.Duration {
	return GetEnvDuration("SUCCESS_DELAY", 2*time.Second)
}

func (Flow) GetFlowIdleTimeout() time.Duration {
	return GetEnvDuration("FLOW_IDLE_TIMEOUT", 30*time.Minute)
}
