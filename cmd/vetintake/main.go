package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/vetintake/internal/buildinfo"
	"github.com/dmitrijs2005/vetintake/internal/cli"
	"github.com/dmitrijs2005/vetintake/internal/config"
	"github.com/dmitrijs2005/vetintake/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()

	cfg := config.LoadConfig()
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
