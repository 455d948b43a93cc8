package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sidharth73/mern-e-commerce/internal/handler"
)

// Authority: /api 以下
func RegisterAuthorityRoutes(e *echo.Echo, jwtSecret string, productH *handler.ProductHandler, cartH *handler.CartHandler, couponH *handler.CouponHandler) {
	e.GET("/healthz", healthz)

	api := e.Group("/api")
	productH.RegisterRoutes(api)
	cartH.RegisterRoutes(api, jwtSecret)
	couponH.RegisterRoutes(api, jwtSecret)
}

// cartd: /session 以下
func RegisterCartdRoutes(e *echo.Echo, sessionH *handler.SessionHandler) {
	e.GET("/healthz", healthz)
	sessionH.RegisterRoutes(e)
}

func healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
