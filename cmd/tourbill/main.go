package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tourbill/internal/clock"
	"github.com/smallbiznis/tourbill/internal/config"
	"github.com/smallbiznis/tourbill/internal/guide"
	"github.com/smallbiznis/tourbill/internal/migration"
	"github.com/smallbiznis/tourbill/internal/observability"
	"github.com/smallbiznis/tourbill/internal/product"
	"github.com/smallbiznis/tourbill/internal/ratelimit"
	"github.com/smallbiznis/tourbill/internal/reporting"
	"github.com/smallbiznis/tourbill/internal/server"
	"github.com/smallbiznis/tourbill/internal/visit"
	"github.com/smallbiznis/tourbill/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		ratelimit.Module,

		// Functional Domains
		guide.Module,
		product.Module,
		visit.Module,
		reporting.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
