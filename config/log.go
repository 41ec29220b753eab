package config

import "os"

type LogConfig struct {
	LogLevel   string `json:"logLevel,omitempty"`
	LogHandler string `json:"logHandler,omitempty"`
}

func NewLogConfig() *LogConfig {
	conf := &LogConfig{
		LogLevel:   "info",
		LogHandler: "default",
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		conf.LogLevel = v
	}
	if v := os.Getenv("LOG_HANDLER"); v != "" {
		conf.LogHandler = v
	}
	return conf
}
