// Command vectordb-server is the thin HTTP transport around the core
// in-memory vector database: request validation, routing, and JSON
// encoding only. Everything that makes the decisions lives in
// internal/vecdb.
package main

import (
	"os"

	"github.com/Abraxas-365/vectordb/internal/vecdb/config"
	"github.com/Abraxas-365/vectordb/pkg/logx"
)

func main() {
	configPath := os.Getenv("VECTORDB_CONFIG")
	cfg, err := config.Load(configPath)
	if err != nil {
		logx.Fatalf("failed to load config: %v", err)
	}

	switch cfg.LogLevel {
	case "debug":
		logx.SetLevel(logx.LevelDebug)
	case "warn":
		logx.SetLevel(logx.LevelWarn)
	case "error":
		logx.SetLevel(logx.LevelError)
	default:
		logx.SetLevel(logx.LevelInfo)
	}

	logx.Info("starting vectordb server")

	container := NewContainer(cfg)
	app := newApp(container)
	startServer(app, cfg.ListenAddr)
}
