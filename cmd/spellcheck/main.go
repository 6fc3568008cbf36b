// Command spellcheck counts likely spelling errors per document in a
// collection of titles and abstracts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spellcheck: %v\n", err)
	}
	os.Exit(apperrors.ExitCode(err))
}
