package repository

import (
	"context"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
)

type CartItemRepository interface {
	// 追加順
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一商品は+1、無ければ数量1で作る
	Increment(ctx context.Context, cartID int64, productID model.ProductID) error
	// 行が無ければ ErrNotFound
	SetQuantity(ctx context.Context, cartID int64, productID model.ProductID, qty int64) error
	// 行が無くてもエラーにしない
	DeleteByCartAndProduct(ctx context.Context, cartID int64, productID model.ProductID) error
}
