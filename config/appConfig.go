package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"gopricetracker/config/values"
)

type AliExpressConfig struct {
	Host          string `yaml:"host"`
	AppKey        string `yaml:"app_key"`
	AppSecret     string `yaml:"app_secret"`
	RatePerMinute int    `yaml:"rate_per_minute"`
}

type IngestConfig struct {
	Categories []string `yaml:"categories"`
	Workers    int      `yaml:"workers"`
	MinVolume  int      `yaml:"min_volume"`
	Retries    int      `yaml:"retries"`
}

type AppConfig struct {
	Mongo      MongoConfig          `yaml:"mongo"`
	AliExpress AliExpressConfig     `yaml:"aliexpress"`
	Ingest     IngestConfig         `yaml:"ingest"`
	Values     values.TrackerValues `yaml:"default_values"`
}

func LoadConfig(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := &AppConfig{}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides file-provided connection settings and secrets with
// environment values when set.
func (c *AppConfig) ApplyEnv() {
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		c.Mongo.Database = v
	}
	if v := os.Getenv("ALIEXPRESS_APP_KEY"); v != "" {
		c.AliExpress.AppKey = v
	}
	if v := os.Getenv("ALIEXPRESS_APP_SECRET"); v != "" {
		c.AliExpress.AppSecret = v
	}
}
