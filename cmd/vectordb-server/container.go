// Composition root. Owns the entity store and index registry and wires
// the entity services and search coordinator over them. Both are
// explicitly constructed values threaded through the service layer,
// never package-level singletons.
package main

import (
	"github.com/Abraxas-365/vectordb/internal/vecdb/config"
	"github.com/Abraxas-365/vectordb/internal/vecdb/entity"
	"github.com/Abraxas-365/vectordb/internal/vecdb/registry"
	"github.com/Abraxas-365/vectordb/internal/vecdb/search"
	"github.com/Abraxas-365/vectordb/internal/vecdb/service"
	"github.com/Abraxas-365/vectordb/internal/vecdb/store"
	"github.com/Abraxas-365/vectordb/pkg/logx"
)

// Container holds the process's entity store, index registry, entity
// services, and search coordinator.
type Container struct {
	Config   config.ServerConfig
	Store    *store.Store
	Registry *registry.Registry
	Services *service.Services
	Search   *search.Coordinator
}

// NewContainer builds and wires the container from cfg.
func NewContainer(cfg config.ServerConfig) *Container {
	logx.Info("initializing vectordb container")

	st := store.New()
	reg := registry.New(st)
	services := service.New(st, reg, entity.IndexConfig{
		Metric: entity.Metric(cfg.DefaultIndex.Metric),
		NList:  cfg.DefaultIndex.NList,
		NProbe: cfg.DefaultIndex.NProbe,
	})
	coordinator := search.New(reg, st)

	logx.Info("vectordb container initialized")

	return &Container{
		Config:   cfg,
		Store:    st,
		Registry: reg,
		Services: services,
		Search:   coordinator,
	}
}
