package main

import (
	"context"
	"fmt"

	"storefront-backend/config"
	"storefront-backend/internal/catalog"
	"storefront-backend/internal/repository/pgxrepo"
	"storefront-backend/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// env is what every subcommand starts from.
type env struct {
	cfg    *config.Config
	engine *catalog.Engine
	rules  catalog.RuleSet
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger.InitWriter(cmd.ErrOrStderr(), cfg.Env, cfg.LogLevel)

	path := cfg.CatalogRulesFile
	if p, _ := cmd.Flags().GetString("rules"); p != "" {
		path = p
	}
	rules, err := catalog.LoadRuleSet(path)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, engine: catalog.NewEngine(rules), rules: rules}, nil
}

func (e *env) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if err := e.cfg.RequireDB(); err != nil {
		return nil, err
	}
	pool, err := pgxrepo.NewPgxPool(ctx, e.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return pool, nil
}
