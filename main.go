package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/semmy-space/wdc/internal/cli"
)

var (
	version = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Main(ctx, version)
	stop()
	os.Exit(code)
}
