package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sidharth73/mern-e-commerce/internal/config"
	"github.com/sidharth73/mern-e-commerce/internal/handler"
	"github.com/sidharth73/mern-e-commerce/internal/infra/api"
	"github.com/sidharth73/mern-e-commerce/internal/logging"
	"github.com/sidharth73/mern-e-commerce/internal/server"
	"github.com/sidharth73/mern-e-commerce/internal/usecase"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.GoEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// セッションごとに別のクライアント（cookie jarを共有しない）
	newGateways := func(token string) usecase.Gateways {
		if token == "" {
			token = cfg.AuthorityToken
		}
		c := api.NewClient(cfg.AuthorityBaseURL,
			api.WithToken(token),
			api.WithTimeout(cfg.AuthorityTimeout),
		)
		return usecase.Gateways{Cart: c, Coupons: c}
	}

	sessions := usecase.NewSessionUsecase(newGateways, logger,
		usecase.WithSessionIdleTimeout(cfg.SessionIdle),
	)
	e := server.NewCartd(logger, handler.NewSessionHandler(sessions))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("cartd using authority", zap.String("base_url", cfg.AuthorityBaseURL))
	if err := server.Start(ctx, e, cfg.Addr(), logger); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}
