package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/siegesync/internal/buildinfo"
	"github.com/dmitrijs2005/siegesync/internal/client/cli"
	"github.com/dmitrijs2005/siegesync/internal/client/config"
)

func main() {

	cfg, args := config.LoadConfig()
	if len(args) == 0 {
		buildinfo.PrintBuildData(os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cfg, os.Stdin, os.Stdout)

	if err := app.Run(ctx, args); err != nil {
		stop()
		log.Fatalf("%v", err)
	}

}
