package config

import "sync"

var (
	mongoOnce   sync.Once
	mongoConfig *MongoConfig
)

type MongoConfig struct {
	URI      string
	Database string
}

func GetMongoConfig() *MongoConfig {
	mongoOnce.Do(func() {
		loadEnv()

		mongoConfig = &MongoConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DB_NAME", "echocheck"),
		}
	})
	return mongoConfig
}
