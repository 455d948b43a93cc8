package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
	"github.com/sidharth73/mern-e-commerce/internal/usecase"
)

const (
	SessionCookie = "cart_session"
	SessionHeader = "X-Cart-Session"
)

// cartd の /session 以下。画面1つにつき1セッション
type SessionHandler struct {
	uc *usecase.SessionUsecase
}

// DI
func NewSessionHandler(uc *usecase.SessionUsecase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

type CreateSessionRequest struct {
	Token string `json:"token"`
}

type AddItemRequest struct {
	Product model.Product `json:"product"`
}

type SessionQuantityRequest struct {
	Quantity *int64 `json:"quantity"`
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

func (h *SessionHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/session")

	g.POST("", h.create)
	g.DELETE("", h.close)

	g.GET("/cart", h.view)
	g.POST("/cart/refresh", h.refresh)
	g.POST("/cart/items", h.addItem)
	g.PUT("/cart/items/:id", h.updateQuantity)
	g.DELETE("/cart/items/:id", h.removeItem)
	g.DELETE("/cart", h.clear)

	g.POST("/coupon/fetch", h.fetchCoupon)
	g.POST("/coupon", h.applyCoupon)
	g.DELETE("/coupon", h.removeCoupon)
}

func (h *SessionHandler) create(c echo.Context) error {
	var req CreateSessionRequest
	// bodyは任意
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid body"})
		}
	}

	view := h.uc.Create(req.Token)
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    view.SessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusCreated, view)
}

func (h *SessionHandler) close(c echo.Context) error {
	if err := h.uc.Close(sessionID(c)); err != nil {
		return writeError(c, err)
	}
	c.SetCookie(&http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	return c.NoContent(http.StatusNoContent)
}

func (h *SessionHandler) view(c echo.Context) error {
	return respond(c)(h.uc.View(sessionID(c)))
}

func (h *SessionHandler) refresh(c echo.Context) error {
	return respond(c)(h.uc.Refresh(c.Request().Context(), sessionID(c)))
}

func (h *SessionHandler) addItem(c echo.Context) error {
	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid body"})
	}
	return respond(c)(h.uc.AddItem(c.Request().Context(), sessionID(c), req.Product))
}

func (h *SessionHandler) updateQuantity(c echo.Context) error {
	var req SessionQuantityRequest
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid body"})
	}
	return respond(c)(h.uc.UpdateQuantity(c.Request().Context(), sessionID(c), model.ProductID(c.Param("id")), *req.Quantity))
}

func (h *SessionHandler) removeItem(c echo.Context) error {
	return respond(c)(h.uc.RemoveItem(c.Request().Context(), sessionID(c), model.ProductID(c.Param("id"))))
}

func (h *SessionHandler) clear(c echo.Context) error {
	return respond(c)(h.uc.Clear(sessionID(c)))
}

func (h *SessionHandler) fetchCoupon(c echo.Context) error {
	return respond(c)(h.uc.FetchCoupon(c.Request().Context(), sessionID(c)))
}

func (h *SessionHandler) applyCoupon(c echo.Context) error {
	var req ApplyCouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid body"})
	}
	return respond(c)(h.uc.ApplyCoupon(c.Request().Context(), sessionID(c), req.Code))
}

func (h *SessionHandler) removeCoupon(c echo.Context) error {
	return respond(c)(h.uc.RemoveCoupon(sessionID(c)))
}

// 操作の成否はResultで返すので、HTTPとしては200
func respond(c echo.Context) func(usecase.SessionView, error) error {
	return func(view usecase.SessionView, err error) error {
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, view)
	}
}

// cookie優先、無ければヘッダ
func sessionID(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	return strings.TrimSpace(c.Request().Header.Get(SessionHeader))
}
