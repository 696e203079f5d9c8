package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/praetorian-inc/searchbin/pkg/types"
)

// exitFatal is the process status for any fatal error.
const exitFatal = 128

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// After the first signal, restore default handling so a second one
	// terminates even while a read is blocked.
	context.AfterFunc(ctx, stop)

	if err := Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, diagnostic(err))
		return exitFatal
	}
	return 0
}

// diagnostic formats err as "Error <Kind>: <message>".
func diagnostic(err error) string {
	var typed *types.Error
	if errors.As(err, &typed) {
		return fmt.Sprintf("Error %s: %s", typed.Kind, typed.Error())
	}
	return fmt.Sprintf("Error: %s", err)
}
