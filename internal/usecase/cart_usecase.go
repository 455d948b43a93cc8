package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
	"github.com/sidharth73/mern-e-commerce/internal/logging"
	repo "github.com/sidharth73/mern-e-commerce/internal/repository"
)

// CartUsecase は /api/cart の業務ロジック（Authority側）。
// 応答は常にカート全体（明細の配列）。
type CartUsecase struct {
	tx           repo.TransactionManager
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	logger       *zap.Logger
}

func NewCartUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	logger *zap.Logger,
) *CartUsecase {
	logger = logging.OrNop(logger)
	return &CartUsecase{
		tx:           tx,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// GetCart はカート取得（無ければACTIVEを作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) ([]model.LineItem, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return nil, u.dbError("get cart", err)
	}
	return u.buildLines(ctx, u.cartItemRepo, u.productRepo, cart.ID)
}

// AddToCart は数量+1（無ければ1で追加）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, productID model.ProductID) ([]model.LineItem, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	productID = model.ProductID(strings.TrimSpace(string(productID)))
	if productID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "productId is required")
	}

	var lines []model.LineItem
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Products().FindByID(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "Product not found")
			}
			return err
		}

		cart, err := r.Carts().GetOrCreateActiveByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := r.CartItems().Increment(ctx, cart.ID, productID); err != nil {
			return err
		}

		lines, err = u.buildLines(ctx, r.CartItems(), r.Products(), cart.ID)
		return err
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return nil, err
		}
		return nil, u.dbError("add to cart", err)
	}
	return lines, nil
}

// RemoveFromCart は明細削除。productIDが無ければ全部消す。
func (u *CartUsecase) RemoveFromCart(ctx context.Context, userID int64, productID model.ProductID) ([]model.LineItem, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return nil, u.dbError("get cart", err)
	}

	// productId を省略したときだけ全削除。空白だけのIDは不正
	if productID == "" {
		err = u.cartRepo.Clear(ctx, cart.ID)
	} else {
		productID = model.ProductID(strings.TrimSpace(string(productID)))
		if productID == "" {
			return nil, NewHTTPError(http.StatusBadRequest, "productId is required")
		}
		err = u.cartItemRepo.DeleteByCartAndProduct(ctx, cart.ID, productID)
	}
	if err != nil {
		return nil, u.dbError("remove from cart", err)
	}
	return u.buildLines(ctx, u.cartItemRepo, u.productRepo, cart.ID)
}

// UpdateQuantity は数量を上書き。0なら削除。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, productID model.ProductID, qty int64) ([]model.LineItem, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	if strings.TrimSpace(string(productID)) == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "productId is required")
	}
	if qty < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "Invalid quantity")
	}

	cart, err := u.cartRepo.FindActiveByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return nil, u.dbError("get cart", err)
	}

	if qty == 0 {
		err = u.cartItemRepo.DeleteByCartAndProduct(ctx, cart.ID, productID)
	} else {
		err = u.cartItemRepo.SetQuantity(ctx, cart.ID, productID, qty)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return nil, u.dbError("update quantity", err)
	}
	return u.buildLines(ctx, u.cartItemRepo, u.productRepo, cart.ID)
}

// 明細に商品情報を付けて返す。消えた商品の行は出さない。
func (u *CartUsecase) buildLines(ctx context.Context, items repo.CartItemRepository, products repo.ProductRepository, cartID int64) ([]model.LineItem, error) {
	rows, err := items.ListByCartID(ctx, cartID)
	if err != nil {
		return nil, u.dbError("list cart items", err)
	}

	ids := make([]model.ProductID, 0, len(rows))
	for _, it := range rows {
		ids = append(ids, it.ProductID)
	}
	byID, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, u.dbError("find products", err)
	}

	lines := make([]model.LineItem, 0, len(rows))
	for _, it := range rows {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		line := model.NewLineItem(p)
		line.Quantity = it.Quantity
		lines = append(lines, line)
	}
	return lines, nil
}

func (u *CartUsecase) dbError(op string, err error) error {
	u.logger.Error("cart db error", zap.String("op", op), zap.Error(err))
	return NewHTTPError(http.StatusInternalServerError, "Server error")
}
