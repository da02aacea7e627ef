package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/khoahotran/cvnova/internal/client/cli"
	"github.com/khoahotran/cvnova/internal/config"
)

func main() {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot load config:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cli.NewRootCommand(cli.NewEnv(cfg, os.Stdin, os.Stdout, os.Stderr))
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
