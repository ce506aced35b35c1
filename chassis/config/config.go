package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

const (
	defaultMaxMessages  = 1
	defaultWaitTime     = 2
	defaultWatchSeconds = 20
	defaultPollInterval = 1
	defaultProfile      = "my_profile"
	defaultRetries      = 3
)

// AppConfig ...
type AppConfig struct {
	AWS struct {
		Region             string `yaml:"region"`
		CredentialsFile    string `yaml:"credentialsFile"`
		CredentialsProfile string `yaml:"credentialsProfile"`
		AccessKey          string `yaml:"accessKey"`
		SecretKey          string `yaml:"secretKey"`
		Endpoint           string `yaml:"endpoint"`
		Retries            int    `yaml:"retries"`
	}
	Queue struct {
		URL         string `yaml:"url"`
		MaxMessages int    `yaml:"maxMessages"`
		WaitTime    int    `yaml:"waitTime"`
	}
	Watch struct {
		MaxSeconds   int `yaml:"maxSeconds"`
		PollInterval int `yaml:"pollInterval"`
	}
	Storage struct {
		DSN string `yaml:"dsn"`
	}
	Metrics struct {
		Addr string `yaml:"addr"`
	}
	LogLevel string `yaml:"loglevel"`
}

// Default returns a config with every optional value filled in.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.AWS.CredentialsProfile = defaultProfile
	cfg.AWS.Retries = defaultRetries
	cfg.Queue.MaxMessages = defaultMaxMessages
	cfg.Queue.WaitTime = defaultWaitTime
	cfg.Watch.MaxSeconds = defaultWatchSeconds
	cfg.Watch.PollInterval = defaultPollInterval
	cfg.LogLevel = "info"
	return cfg
}

// Read loads the yaml file pointed by CFG_PATH. Without CFG_PATH defaults are returned.
func Read() (*AppConfig, error) {
	filename := os.Getenv("CFG_PATH")
	if filename == "" {
		return Default(), nil
	}
	return ReadFile(filename)
}

// ReadFile ...
func ReadFile(filename string) (*AppConfig, error) {
	cfg := Default()
	buff, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(buff, cfg)
	if err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize clamps values into the ranges accepted by the queue service.
func (cfg *AppConfig) Normalize() {
	if cfg.AWS.CredentialsProfile == "" {
		cfg.AWS.CredentialsProfile = defaultProfile
	}
	if cfg.AWS.Retries < 0 {
		cfg.AWS.Retries = 0
	}
	if cfg.Queue.MaxMessages <= 0 {
		cfg.Queue.MaxMessages = defaultMaxMessages
	} else if cfg.Queue.MaxMessages > 10 {
		cfg.Queue.MaxMessages = 10
	}
	// 0 disables long polling, 20 is the service maximum
	if cfg.Queue.WaitTime < 0 {
		cfg.Queue.WaitTime = 0
	} else if cfg.Queue.WaitTime > 20 {
		cfg.Queue.WaitTime = 20
	}
	if cfg.Watch.MaxSeconds < 0 {
		cfg.Watch.MaxSeconds = 0
	}
	if cfg.Watch.PollInterval <= 0 {
		cfg.Watch.PollInterval = defaultPollInterval
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}
