package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bassista/mkdoc/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.WithComponent("main").Error(err)
		os.Exit(1)
	}
}
