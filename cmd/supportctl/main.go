package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanqian/support-expert/internal/domain/auth"
	"github.com/yanqian/support-expert/internal/infra/config"
	"github.com/yanqian/support-expert/internal/interface/cli"
	"github.com/yanqian/support-expert/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	authSvc := auth.NewService(auth.Config{
		Secret:   cfg.Auth.Secret,
		TokenTTL: cfg.Auth.TokenTTL,
		Issuer:   cfg.Auth.Issuer,
		Admins:   cfg.Auth.Admins,
	}, logger.NewWithWriter(os.Stderr))

	root := cli.NewRootCommand(cli.Dependencies{
		Auth:      authSvc,
		ServerURL: serverURL(cfg.HTTP.Address),
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func serverURL(address string) string {
	if len(address) > 0 && address[0] == ':' {
		return "http://localhost" + address
	}
	return "http://" + address
}
