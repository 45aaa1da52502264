package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cleared-dev/nu_plugin_beancount/internal/commands"
	"github.com/cleared-dev/nu_plugin_beancount/internal/errhandler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	// After the first signal, restore default handling so a second one
	// kills a process stuck in a blocking read.
	context.AfterFunc(ctx, stop)

	err := commands.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		errhandler.HandleError(err)
	}
}
