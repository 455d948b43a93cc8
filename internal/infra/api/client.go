// Package api はPricing Authority（カート/クーポンAPI）へのHTTPクライアント。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

// 通信自体の失敗（接続できない、レスポンスが読めない等）
var ErrTransport = errors.New("api: transport failure")

// Authorityが4xx/5xxを返した
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// 画面に出す文言
func (e *Error) UserMessage() string { return e.Message }

func (e *Error) StatusCode() int { return e.Status }

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

// Bearerトークン。空なら付けない（cookie認証に任せる）
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient は cookie jar 付きのクライアントを作る（accessToken cookie を引き継ぐ）
func NewClient(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout: defaultTimeout,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GET /cart
func (c *Client) ListItems(ctx context.Context) ([]model.LineItem, error) {
	var items []model.LineItem
	if err := c.do(ctx, http.MethodGet, nil, &items, "cart"); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.LineItem{}
	}
	return items, nil
}

// POST /cart {productId}
func (c *Client) AddItem(ctx context.Context, productID model.ProductID) error {
	body := map[string]string{"productId": string(productID)}
	return c.do(ctx, http.MethodPost, body, nil, "cart")
}

// DELETE /cart {productId}
func (c *Client) RemoveItem(ctx context.Context, productID model.ProductID) error {
	body := map[string]string{"productId": string(productID)}
	return c.do(ctx, http.MethodDelete, body, nil, "cart")
}

// PUT /cart/:id {quantity}
func (c *Client) UpdateQuantity(ctx context.Context, productID model.ProductID, quantity int64) error {
	body := map[string]int64{"quantity": quantity}
	return c.do(ctx, http.MethodPut, body, nil, "cart", url.PathEscape(string(productID)))
}

// GET /coupons。nullならnil
func (c *Client) FetchCoupon(ctx context.Context) (*model.Coupon, error) {
	var coupon *model.Coupon
	if err := c.do(ctx, http.MethodGet, nil, &coupon, "coupons"); err != nil {
		return nil, err
	}
	return coupon, nil
}

// POST /coupons/validate {code}
func (c *Client) ValidateCoupon(ctx context.Context, code string) (model.Coupon, error) {
	var coupon model.Coupon
	body := map[string]string{"code": code}
	if err := c.do(ctx, http.MethodPost, body, &coupon, "coupons", "validate"); err != nil {
		return model.Coupon{}, err
	}
	return coupon, nil
}

func (c *Client) do(ctx context.Context, method string, body any, out any, segments ...string) error {
	// segmentsはエスケープ済みとして扱われる
	endpoint, err := url.JoinPath(c.baseURL, segments...)
	if err != nil {
		return fmt.Errorf("api: build url: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("api: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &Error{Status: resp.StatusCode, Message: readMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrTransport, method, endpoint, err)
	}
	return nil
}

// {"message": "..."} か {"error": "..."}。どちらも無ければ本文そのまま
func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
		return ""
	}
	return strings.TrimSpace(string(raw))
}
