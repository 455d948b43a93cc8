package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
	repo "github.com/sidharth73/mern-e-commerce/internal/repository"
)

// =====================
// Mocks
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID int64) error {
	return m.Called(ctx, cartID).Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) Increment(ctx context.Context, cartID int64, productID model.ProductID) error {
	return m.Called(ctx, cartID, productID).Error(0)
}

func (m *CartItemRepoMock) SetQuantity(ctx context.Context, cartID int64, productID model.ProductID, qty int64) error {
	return m.Called(ctx, cartID, productID, qty).Error(0)
}

func (m *CartItemRepoMock) DeleteByCartAndProduct(ctx context.Context, cartID int64, productID model.ProductID) error {
	return m.Called(ctx, cartID, productID).Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id model.ProductID) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Sample(ctx context.Context, n int) ([]model.Product, error) {
	args := m.Called(ctx, n)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []model.ProductID) (map[model.ProductID]model.Product, error) {
	args := m.Called(ctx, ids)
	out, _ := args.Get(0).(map[model.ProductID]model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Save(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

type CouponRepoMock struct{ mock.Mock }

func (m *CouponRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.CouponRecord, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.CouponRecord)
	return c, args.Error(1)
}

func (m *CouponRepoMock) FindActiveByCode(ctx context.Context, userID int64, code string) (model.CouponRecord, error) {
	args := m.Called(ctx, userID, code)
	c, _ := args.Get(0).(model.CouponRecord)
	return c, args.Error(1)
}

func (m *CouponRepoMock) Deactivate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CouponRepoMock) Save(ctx context.Context, c model.CouponRecord) error {
	return m.Called(ctx, c).Error(0)
}

// Txは同じモックをそのまま渡すだけ
type fakeTxRepos struct {
	carts    *CartRepoMock
	items    *CartItemRepoMock
	products *ProductRepoMock
}

func (r fakeTxRepos) Carts() repo.CartRepository         { return r.carts }
func (r fakeTxRepos) CartItems() repo.CartItemRepository { return r.items }
func (r fakeTxRepos) Products() repo.ProductRepository   { return r.products }

type fakeTxManager struct {
	repos fakeTxRepos
	calls int
}

func (tm *fakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	tm.calls++
	return fn(tm.repos)
}
