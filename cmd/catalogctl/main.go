// Command catalogctl browses a catalog server from the terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand(viper.New()).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
