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

const (
	maxFeatured        = 20
	maxRecommendations = 4
)

// 商品カタログ（カートに入れる商品を選ぶための公開API）
type ProductUsecase struct {
	productRepo repo.ProductRepository
	logger      *zap.Logger
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, logger *zap.Logger) *ProductUsecase {
	logger = logging.OrNop(logger)
	return &ProductUsecase{productRepo: productRepo, logger: logger}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	Sort     string
}

// 画面側は response.data.products を読む
type ProductListOutput struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
		Sort:     in.Sort,
	})
	if err != nil {
		u.logger.Error("list products", zap.Error(err))
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return ProductListOutput{
		Products: items,
		Total:    total,
		Page:     in.Page,
		Limit:    in.Limit,
	}, nil
}

// おすすめ商品（最大20件）
func (u *ProductUsecase) ListFeatured(ctx context.Context) ([]model.Product, error) {
	items, _, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{Page: 1, Limit: maxFeatured, Featured: true})
	if err != nil {
		u.logger.Error("list featured products", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return items, nil
}

// 「この商品を買った人は」用にランダムで数件
func (u *ProductUsecase) ListRecommendations(ctx context.Context) ([]model.Product, error) {
	items, err := u.productRepo.Sample(ctx, maxRecommendations)
	if err != nil {
		u.logger.Error("sample products", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	if items == nil {
		items = []model.Product{}
	}
	return items, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID model.ProductID) (model.Product, error) {
	if strings.TrimSpace(string(productID)) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		u.logger.Error("find product", zap.Error(err))
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return p, nil
}
