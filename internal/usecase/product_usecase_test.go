package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
	repo "github.com/sidharth73/mern-e-commerce/internal/repository"
	"github.com/sidharth73/mern-e-commerce/internal/usecase"
)

func TestProductUsecase_List_InvalidInput(t *testing.T) {
	ctx := context.Background()
	m := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(m, nil)

	cases := []struct {
		name string
		in   usecase.ListProductsInput
		msg  string
	}{
		{"page", usecase.ListProductsInput{Page: 0, Limit: 20}, "invalid page"},
		{"limit", usecase.ListProductsInput{Page: 1, Limit: 101}, "invalid limit"},
		{"sort", usecase.ListProductsInput{Page: 1, Limit: 20, Sort: "random"}, "invalid sort"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.ListPublicProducts(ctx, tc.in)
			assertHTTPError(t, err, http.StatusBadRequest, tc.msg)
		})
	}
	m.AssertNotCalled(t, "ListPublic", mock.Anything, mock.Anything)
}

func TestProductUsecase_List_TrimsQuery(t *testing.T) {
	ctx := context.Background()
	m := new(ProductRepoMock)
	m.On("ListPublic", ctx, repo.ProductListQuery{Page: 2, Limit: 10, Q: "tee", Category: "t-shirts", Sort: "price_asc"}).
		Return([]model.Product{tee}, int64(11), nil)

	out, err := usecase.NewProductUsecase(m, nil).ListPublicProducts(ctx, usecase.ListProductsInput{
		Page: 2, Limit: 10, Q: " tee ", Category: " t-shirts ", Sort: "price_asc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), out.Total)
	assert.Len(t, out.Products, 1)
	assert.Equal(t, 2, out.Page)
}

func TestProductUsecase_ListFeatured(t *testing.T) {
	ctx := context.Background()
	m := new(ProductRepoMock)
	m.On("ListPublic", ctx, repo.ProductListQuery{Page: 1, Limit: 20, Featured: true}).
		Return([]model.Product{tee}, int64(1), nil)

	items, err := usecase.NewProductUsecase(m, nil).ListFeatured(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestProductUsecase_ListRecommendations(t *testing.T) {
	ctx := context.Background()
	m := new(ProductRepoMock)
	m.On("Sample", ctx, 4).Return([]model.Product{tee}, nil).Once()
	m.On("Sample", ctx, 4).Return(nil, nil).Once()
	m.On("Sample", ctx, 4).Return(nil, errors.New("db down")).Once()
	uc := usecase.NewProductUsecase(m, nil)

	items, err := uc.ListRecommendations(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = uc.ListRecommendations(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	_, err = uc.ListRecommendations(ctx)
	assertHTTPError(t, err, http.StatusInternalServerError, "Server error")
}

func TestProductUsecase_GetProductDetail(t *testing.T) {
	ctx := context.Background()
	m := new(ProductRepoMock)
	m.On("FindByID", ctx, model.ProductID("p1")).Return(tee, nil)
	m.On("FindByID", ctx, model.ProductID("nope")).Return(nil, repo.ErrNotFound)
	m.On("FindByID", ctx, model.ProductID("boom")).Return(nil, errors.New("db down"))
	uc := usecase.NewProductUsecase(m, nil)

	p, err := uc.GetProductDetail(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Tee", p.Name)

	_, err = uc.GetProductDetail(ctx, "nope")
	assertHTTPError(t, err, http.StatusNotFound, "Product not found")

	_, err = uc.GetProductDetail(ctx, "boom")
	assertHTTPError(t, err, http.StatusInternalServerError, "Server error")

	_, err = uc.GetProductDetail(ctx, " ")
	assertHTTPError(t, err, http.StatusBadRequest, "invalid product id")
}
