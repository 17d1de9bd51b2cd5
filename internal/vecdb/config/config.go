// Package config loads the vectordb server's configuration from a YAML
// file with environment-variable overrides.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/pkg/logx"
)

// ServerConfig configures the vectordb-server binary.
type ServerConfig struct {
	ListenAddr   string             `yaml:"listen_addr"`
	LogLevel     string             `yaml:"log_level"`
	DefaultIndex DefaultIndexConfig `yaml:"default_index"`
}

// DefaultIndexConfig carries the server-wide defaults applied when a
// library is created without an explicit index configuration.
type DefaultIndexConfig struct {
	Metric string `yaml:"metric"`
	NList  int    `yaml:"nlist"`
	NProbe int    `yaml:"nprobe"`
}

// Default returns the built-in configuration, used when no file is
// present.
func Default() ServerConfig {
	return ServerConfig{
		ListenAddr: ":8080",
		LogLevel:   "info",
		DefaultIndex: DefaultIndexConfig{
			Metric: string(entity.MetricCosine),
			NProbe: 1,
		},
	}
}

// Load reads path (if it exists) as YAML over the defaults, then applies
// VECTORDB_-prefixed environment overrides.
func Load(path string) (ServerConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return ServerConfig{}, err
			}
		case os.IsNotExist(err):
			logx.WithField("path", path).Debug("no config file found, using defaults")
		default:
			return ServerConfig{}, err
		}
	}

	cfg.ListenAddr = getEnv("VECTORDB_LISTEN_ADDR", cfg.ListenAddr)
	cfg.LogLevel = getEnv("VECTORDB_LOG_LEVEL", cfg.LogLevel)
	cfg.DefaultIndex.Metric = getEnv("VECTORDB_DEFAULT_METRIC", cfg.DefaultIndex.Metric)
	cfg.DefaultIndex.NList = getEnvInt("VECTORDB_DEFAULT_NLIST", cfg.DefaultIndex.NList)
	cfg.DefaultIndex.NProbe = getEnvInt("VECTORDB_DEFAULT_NPROBE", cfg.DefaultIndex.NProbe)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
