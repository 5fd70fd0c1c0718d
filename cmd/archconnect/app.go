package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dusk-indust/archconnect/internal/config"
	"github.com/dusk-indust/archconnect/internal/graph"
	"github.com/dusk-indust/archconnect/internal/ontology"
	"github.com/dusk-indust/archconnect/internal/resolution"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// app bundles what every command loads from the project root.
type app struct {
	cfg    *config.ProjectConfig
	bundle *ontology.Bundle
	engine *resolution.Engine
	log    logr.Logger
}

func loadApp(flags *rootFlags) (*app, error) {
	root, err := filepath.Abs(flags.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	logger := stdr.New(log.New(os.Stderr, "archconnect: ", log.LstdFlags))
	if flags.Verbose || cfg.Verbose {
		stdr.SetVerbosity(1)
	}

	bundle, err := ontology.LoadOrDefault(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if _, err := bundle.Ontology.ViewpointFilter(cfg.Viewpoint); err != nil {
		return nil, fmt.Errorf("archconnect.yml viewpoint: %w", err)
	}

	return &app{
		cfg:    cfg,
		bundle: bundle,
		engine: resolution.NewEngineFromBundle(bundle, resolution.WithBatchConcurrency(cfg.BatchConcurrency)),
		log:    logger,
	}, nil
}

// openStore opens the configured model store and ensures its schema exists.
func (a *app) openStore(ctx context.Context) (graph.Store, error) {
	var (
		store graph.Store
		err   error
	)
	switch a.cfg.Store {
	case config.StoreKuzu:
		if err := os.MkdirAll(filepath.Dir(a.cfg.StorePath), 0o755); err != nil {
			return nil, err
		}
		store, err = graph.NewKuzuFileStore(a.cfg.StorePath)
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(a.cfg.StorePath), 0o755); err != nil {
			return nil, err
		}
		store, err = graph.NewSQLiteStore(a.cfg.StorePath)
	default:
		store = graph.NewMemStore()
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", a.cfg.Store, err)
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	a.log.V(1).Info("store opened", "store", a.cfg.Store, "path", a.cfg.StorePath)
	return store, nil
}

// viewpoint returns name, or the configured viewpoint when name is empty.
func (a *app) viewpoint(name string) string {
	if name == "" {
		return a.cfg.Viewpoint
	}
	return name
}
