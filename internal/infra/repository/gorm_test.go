package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sidharth73/mern-e-commerce/internal/config"
	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
	"github.com/sidharth73/mern-e-commerce/internal/infra/db"
	repo "github.com/sidharth73/mern-e-commerce/internal/repository"
)

// DATABASE_URL が無ければスキップ
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is not set")
	}

	gdb, err := db.Connect(config.Authority{DatabaseURL: dsn, GoEnv: "test"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// テストごとに別ユーザーを使う
func testUserID() int64 {
	return time.Now().UnixNano() % 1_000_000_000
}

func seedProduct(t *testing.T, r *ProductGormRepository, price string) model.Product {
	t.Helper()
	p := model.Product{
		ID:    model.ProductID(uuid.NewString()),
		Name:  "test product",
		Price: decimal.RequireFromString(price),
	}
	require.NoError(t, r.Save(context.Background(), p))
	return p
}

func TestCartGorm_IncrementAndSetQuantity(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	carts := NewCartGormRepository(gdb)
	products := NewProductGormRepository(gdb)

	p1 := seedProduct(t, products, "10.00")
	p2 := seedProduct(t, products, "2.50")

	cart, err := carts.GetOrCreateActiveByUserID(ctx, testUserID())
	require.NoError(t, err)
	t.Cleanup(func() { _ = carts.Clear(context.Background(), cart.ID) })

	require.NoError(t, carts.Increment(ctx, cart.ID, p1.ID))
	require.NoError(t, carts.Increment(ctx, cart.ID, p2.ID))
	require.NoError(t, carts.Increment(ctx, cart.ID, p1.ID))

	items, err := carts.ListByCartID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, p1.ID, items[0].ProductID)
	assert.Equal(t, int64(2), items[0].Quantity)
	assert.Equal(t, int64(1), items[1].Quantity)

	require.NoError(t, carts.SetQuantity(ctx, cart.ID, p2.ID, 5))
	assert.ErrorIs(t, carts.SetQuantity(ctx, cart.ID, "missing", 1), repo.ErrNotFound)

	require.NoError(t, carts.DeleteByCartAndProduct(ctx, cart.ID, p1.ID))
	items, err = carts.ListByCartID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].Quantity)

	found, err := products.FindByIDs(ctx, []model.ProductID{p1.ID, p2.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.True(t, decimal.RequireFromString("2.50").Equal(found[p2.ID].Price))
}

func TestCartGorm_GetOrCreateIsIdempotent(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	carts := NewCartGormRepository(gdb)
	userID := testUserID()

	first, err := carts.GetOrCreateActiveByUserID(ctx, userID)
	require.NoError(t, err)
	second, err := carts.GetOrCreateActiveByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCouponGorm_Lifecycle(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	coupons := NewCouponGormRepository(gdb)
	userID := testUserID()
	code := "T" + uuid.NewString()[:8]

	require.NoError(t, coupons.Save(ctx, model.CouponRecord{
		Code:               code,
		DiscountPercentage: decimal.NewFromInt(15),
		ExpirationDate:     time.Now().Add(time.Hour),
		IsActive:           true,
		UserID:             userID,
	}))

	got, err := coupons.FindActiveByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, code, got.Code)

	byCode, err := coupons.FindActiveByCode(ctx, userID, code)
	require.NoError(t, err)
	assert.Equal(t, got.ID, byCode.ID)

	_, err = coupons.FindActiveByCode(ctx, userID+1, code)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	require.NoError(t, coupons.Deactivate(ctx, got.ID))
	_, err = coupons.FindActiveByUserID(ctx, userID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestTxManagerGorm_RollsBack(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	products := NewProductGormRepository(gdb)
	p := seedProduct(t, products, "1.00")
	userID := testUserID()

	tm := NewTxManagerGorm(gdb)
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateActiveByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := r.CartItems().Increment(ctx, cart.ID, p.ID); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = NewCartGormRepository(gdb).FindActiveByUserID(ctx, userID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
