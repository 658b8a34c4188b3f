/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/extrudo/engine/config"
	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/testbed"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			core.LogFatal("failed to load configuration: %s", err.Error())
		}
	}

	tb, err := testbed.NewTestGame(cfg)
	if err != nil {
		panic(err)
	}

	// stop the loop on SIGTERM and friends
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := tb.Boot(ctx); err != nil {
		_ = tb.Engine.Shutdown()
		panic(err)
	}

	runErr := tb.Engine.Run(ctx)
	if err := tb.Engine.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err.Error())
	}
	if runErr != nil {
		core.LogError("session failed: %s", runErr.Error())
		os.Exit(1)
	}
}
