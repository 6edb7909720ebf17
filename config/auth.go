package config

import (
	"sync"
	"time"
)

var (
	authOnce   sync.Once
	authConfig *AuthConfig
)

type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CodeTTL         time.Duration
	CodeLength      int
}

func GetAuthConfig() *AuthConfig {
	authOnce.Do(func() {
		loadEnv()

		authConfig = &AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			AccessTokenTTL:  time.Duration(getEnvInt("JWT_ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
			RefreshTokenTTL: time.Duration(getEnvInt("JWT_REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
			CodeTTL:         time.Duration(getEnvInt("VERIFICATION_CODE_EXPIRE_MINUTES", 10)) * time.Minute,
			CodeLength:      getEnvInt("VERIFICATION_CODE_LENGTH", 6),
		}
	})
	return authConfig
}
