package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/drstein77/organicfilter/internal/app"
	"github.com/drstein77/organicfilter/internal/config"
	"github.com/drstein77/organicfilter/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Cancel the dataset read on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	option := config.NewOptions()
	if err := option.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	nLogger, err := logger.NewLogger(option.LogLevel())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer nLogger.Sync()

	summary, err := app.NewApp(option, nLogger).Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	fmt.Printf("Done. Saved %d items to %s\n", summary.Kept, summary.Output)
	return 0
}
