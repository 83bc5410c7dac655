package config

const (
	jwtSecretEnvVar      = "JWT_SECRET"
	rateLimitRPSEnvVar   = "RATE_LIMIT_RPS"
	rateLimitBurstEnvVar = "RATE_LIMIT_BURST"
)

type SecurityConfig interface {
	GetJWTSecret() string
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
	GetEnableRateLimiting() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetJWTSecret is the HMAC key for access tokens. Empty means a random key per process.
func (Security) GetJWTSecret() string {
	return GetEnv(jwtSecretEnvVar, "")
}

func (Security) GetRateLimitRPS() float64 {
	return GetEnvFloat(rateLimitRPSEnvVar, 5)
}

func (Security) GetRateLimitBurst() int {
	return GetEnvInt(rateLimitBurstEnvVar, 10)
}

func (s Security) GetEnableRateLimiting() bool {
	return s.GetRateLimitRPS() > 0 && s.GetRateLimitBurst() > 0
}
