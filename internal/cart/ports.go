// Package cart はクライアント側のカート状態（Cart Store）とクーポン解決を持つ。
// Authorityとの通信は CartGateway / CouponGateway の実装に任せる。
package cart

import (
	"context"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
)

// カートAPIへの約束
type CartGateway interface {
	ListItems(ctx context.Context) ([]model.LineItem, error)
	AddItem(ctx context.Context, productID model.ProductID) error
	RemoveItem(ctx context.Context, productID model.ProductID) error
	UpdateQuantity(ctx context.Context, productID model.ProductID, quantity int64) error
}

// クーポンAPIへの約束
type CouponGateway interface {
	// 無ければ nil, nil
	FetchCoupon(ctx context.Context) (*model.Coupon, error)
	ValidateCoupon(ctx context.Context, code string) (model.Coupon, error)
}
