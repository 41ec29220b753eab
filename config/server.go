package config

import (
	"os"
	"strconv"
)

type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
}

func NewServerConfig() *ServerConfig {
	conf := &ServerConfig{
		Host: "0.0.0.0",
		Port: 9080,
	}
	if v := os.Getenv("HOST"); v != "" {
		conf.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			conf.Port = port
		}
	}
	return conf
}
