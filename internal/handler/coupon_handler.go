package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sidharth73/mern-e-commerce/internal/middleware"
	"github.com/sidharth73/mern-e-commerce/internal/usecase"
)

// /api/coupons のHTTP
type CouponHandler struct {
	uc *usecase.CouponUsecase
}

// DI
func NewCouponHandler(uc *usecase.CouponUsecase) *CouponHandler {
	return &CouponHandler{uc: uc}
}

type ValidateCouponRequest struct {
	Code string `json:"code"`
}

func (h *CouponHandler) RegisterRoutes(g *echo.Group, jwtSecret string) {
	cg := g.Group("/coupons")
	cg.Use(middleware.AuthJWT(jwtSecret))

	cg.GET("", h.getCoupon)
	cg.POST("/validate", h.validate)
}

// 無ければ null
func (h *CouponHandler) getCoupon(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
	}

	out, err := h.uc.GetCoupon(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CouponHandler) validate(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
	}

	var req ValidateCouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid body"})
	}

	out, err := h.uc.ValidateCoupon(c.Request().Context(), userID, req.Code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
