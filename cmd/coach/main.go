package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/purposeful/coach/internal/clock"
	"github.com/purposeful/coach/internal/config"
	"github.com/purposeful/coach/internal/migration"
	"github.com/purposeful/coach/internal/server"
	"github.com/purposeful/coach/pkg/db"
	"github.com/purposeful/coach/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
