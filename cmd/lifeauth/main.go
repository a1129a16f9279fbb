package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/lifeauth/internal/buildinfo"
	"github.com/dmitrijs2005/lifeauth/internal/cli"
	"github.com/dmitrijs2005/lifeauth/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
