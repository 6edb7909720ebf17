package config

import "sync"

var (
	emailOnce   sync.Once
	emailConfig *EmailConfig
)

type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
}

func GetEmailConfig() *EmailConfig {
	emailOnce.Do(func() {
		loadEnv()

		emailConfig = &EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("RESEND_FROM_EMAIL", "onboarding@resend.dev"),
		}
	})
	return emailConfig
}
