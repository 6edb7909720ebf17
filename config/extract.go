package config

import "sync"

var (
	extractOnce   sync.Once
	extractConfig *ExtractConfig
)

type ExtractConfig struct {
	MaxFileSizeMB int
}

func GetExtractConfig() *ExtractConfig {
	extractOnce.Do(func() {
		loadEnv()

		extractConfig = &ExtractConfig{
			MaxFileSizeMB: getEnvInt("MAX_FILE_SIZE_MB", 10),
		}
	})
	return extractConfig
}
