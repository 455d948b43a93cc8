package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/sidharth73/mern-e-commerce/internal/handler"
	"github.com/sidharth73/mern-e-commerce/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

func newEcho(logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	return e
}

// NewAuthority は /api/products, /api/cart, /api/coupons を持つechoを作る
func NewAuthority(logger *zap.Logger, jwtSecret string, productH *handler.ProductHandler, cartH *handler.CartHandler, couponH *handler.CouponHandler) *echo.Echo {
	e := newEcho(logger)
	RegisterAuthorityRoutes(e, jwtSecret, productH, cartH, couponH)
	return e
}

// NewCartd は /session 以下を持つechoを作る
func NewCartd(logger *zap.Logger, sessionH *handler.SessionHandler) *echo.Echo {
	e := newEcho(logger)
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderContentType, handler.SessionHeader},
	}))
	RegisterCartdRoutes(e, sessionH)
	return e
}

// Start はctxが終わるまで動かし、終わったらgracefulに止める
func Start(ctx context.Context, e *echo.Echo, addr string, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("server shutting down")
	return e.Shutdown(shutdownCtx)
}
