package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/equiptracker/internal/server"
	"github.com/dmitrijs2005/equiptracker/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("%v", err)
		os.Exit(2)
	}

	app, err := server.NewApp(ctx, cfg, server.NewLogger(cfg))
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
