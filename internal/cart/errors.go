package cart

import (
	"errors"
	"strings"
)

var (
	ErrSessionClosed = errors.New("cart: session closed")
	// 後から出た操作に追い越された応答
	ErrStaleResponse = errors.New("cart: response superseded")
	// ユーザーが適用したクーポンは受動取得で置き換えない
	ErrCouponAlreadyApplied = errors.New("cart: coupon already applied")
	ErrCouponRejected       = errors.New("cart: coupon rejected")

	ErrInvalidQuantity = &UserError{Err: errors.New("cart: invalid quantity"), Message: "Quantity must not be negative"}
	ErrInvalidProduct  = &UserError{Err: errors.New("cart: invalid product"), Message: "Invalid product"}
)

// 画面にそのまま出せる文言を持つエラー
type UserError struct {
	Err     error
	Message string
}

func (e *UserError) Error() string { return e.Err.Error() }

func (e *UserError) Unwrap() error { return e.Err }

func (e *UserError) UserMessage() string { return e.Message }

// クーポンコードの検証失敗（期限切れ・存在しない・形式不正）
type ValidationError struct {
	Code   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return "cart: coupon " + e.Code + " rejected: " + e.Reason + ": " + e.Err.Error()
	}
	return "cart: coupon " + e.Code + " rejected: " + e.Reason
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCouponRejected}
	}
	return []error{ErrCouponRejected, e.Err}
}

func (e *ValidationError) UserMessage() string { return e.Reason }

type userMessager interface {
	UserMessage() string
}

type statusCoder interface {
	StatusCode() int
}

// 表示用メッセージ。サーバーの message を優先し、無ければ fallback。
func MessageFor(err error, fallback string) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}

// Authorityがリクエストを拒否した（4xx）か
func rejectedByAuthority(err error) bool {
	var sc statusCoder
	if !errors.As(err, &sc) {
		return false
	}
	code := sc.StatusCode()
	return code >= 400 && code < 500
}
