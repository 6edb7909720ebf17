package config

import (
	"sync"
	"time"
)

var (
	classifierOnce   sync.Once
	classifierConfig *ClassifierConfig
)

type ClassifierConfig struct {
	Endpoint string
	Model    string
	Timeout  time.Duration
}

func GetClassifierConfig() *ClassifierConfig {
	classifierOnce.Do(func() {
		loadEnv()

		classifierConfig = &ClassifierConfig{
			Endpoint: getEnv("CLASSIFIER_URL", "http://localhost:8501"),
			Model:    getEnv("HF_MODEL_NAME", "alxdev/echocheck-political-stance"),
			Timeout:  time.Duration(getEnvInt("CLASSIFIER_TIMEOUT_SECONDS", 30)) * time.Second,
		}
	})
	return classifierConfig
}
