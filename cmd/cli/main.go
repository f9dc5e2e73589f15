package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/equiptracker/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
