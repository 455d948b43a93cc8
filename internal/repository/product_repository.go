package repository

import (
	"context"
	"errors"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Featured bool
	Sort     string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id model.ProductID) (model.Product, error)
	// ランダムに最大n件
	Sample(ctx context.Context, n int) ([]model.Product, error)
	// 見つからないIDは結果に含まれない
	FindByIDs(ctx context.Context, ids []model.ProductID) (map[model.ProductID]model.Product, error)
	// seed用。同じIDなら上書き
	Save(ctx context.Context, p model.Product) error
}
