package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/cijene/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional, defaults to ~/.config/cijene/config.toml)")
	pollSeconds := flag.Int("poll", 0, "chains refresh interval in seconds (optional, defaults to 5m)")
	requireLogin := flag.Bool("require-login", false, "require an account before favorites can be used")
	exportPath := flag.String("export", "", "write saved preferences to a .json or .yaml file and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath:   *configPath,
		RequireLogin: *requireLogin,
		ExportPath:   *exportPath,
	}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "cijene: %v\n", err)
		return 1
	}
	return 0
}
