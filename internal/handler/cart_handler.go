package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
	"github.com/sidharth73/mern-e-commerce/internal/middleware"
	"github.com/sidharth73/mern-e-commerce/internal/usecase"
)

// /api/cart のHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type CartProductRequest struct {
	ProductID string `json:"productId"`
}

type UpdateQuantityRequest struct {
	Quantity *int64 `json:"quantity"`
}

// /cart, /cart/:id を登録
func (h *CartHandler) RegisterRoutes(g *echo.Group, jwtSecret string) {
	cg := g.Group("/cart")
	cg.Use(middleware.AuthJWT(jwtSecret))

	cg.GET("", h.getCart)
	cg.POST("", h.addToCart)
	cg.DELETE("", h.removeFromCart)
	cg.PUT("/:id", h.updateQuantity)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
	}

	var req CartProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid body"})
	}

	out, err := h.uc.AddToCart(c.Request().Context(), userID, model.ProductID(req.ProductID))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// productIdが無ければ全削除
func (h *CartHandler) removeFromCart(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
	}

	var req CartProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid body"})
	}

	out, err := h.uc.RemoveFromCart(c.Request().Context(), userID, model.ProductID(req.ProductID))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) updateQuantity(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
	}

	var req UpdateQuantityRequest
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid body"})
	}

	out, err := h.uc.UpdateQuantity(c.Request().Context(), userID, model.ProductID(c.Param("id")), *req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
