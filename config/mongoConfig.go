package config

// MongoConfig represents the configuration needed to connect to the document store.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

func GetMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		Database: getEnv("MONGO_DATABASE", "pricetracker"),
	}
}
