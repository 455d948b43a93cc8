package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
	"github.com/sidharth73/mern-e-commerce/internal/logging"
	repo "github.com/sidharth73/mern-e-commerce/internal/repository"
)

// /api/coupons の業務ロジック（Authority側）
type CouponUsecase struct {
	couponRepo repo.CouponRepository
	now        func() time.Time
	logger     *zap.Logger
}

func NewCouponUsecase(couponRepo repo.CouponRepository, now func() time.Time, logger *zap.Logger) *CouponUsecase {
	if now == nil {
		now = time.Now
	}
	logger = logging.OrNop(logger)
	return &CouponUsecase{couponRepo: couponRepo, now: now, logger: logger}
}

// 検証OKの応答
type ValidateCouponResponse struct {
	Message            string    `json:"message"`
	Code               string    `json:"code"`
	DiscountPercentage string    `json:"discountPercentage"`
	ExpirationDate     time.Time `json:"expirationDate"`
}

// GetCoupon はユーザーの有効なクーポン。無ければnil。
func (u *CouponUsecase) GetCoupon(ctx context.Context, userID int64) (*model.Coupon, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	rec, err := u.couponRepo.FindActiveByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		u.logger.Error("coupon db error", zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	c := rec.ToCoupon()
	return &c, nil
}

// ValidateCoupon はコード検証。期限切れは無効化してから404。
func (u *CouponUsecase) ValidateCoupon(ctx context.Context, userID int64, code string) (ValidateCouponResponse, error) {
	if userID <= 0 {
		return ValidateCouponResponse{}, NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return ValidateCouponResponse{}, NewHTTPError(http.StatusBadRequest, "Coupon code is required")
	}

	rec, err := u.couponRepo.FindActiveByCode(ctx, userID, code)
	if errors.Is(err, repo.ErrNotFound) {
		return ValidateCouponResponse{}, NewHTTPError(http.StatusNotFound, "Invalid coupon code")
	}
	if err != nil {
		u.logger.Error("coupon db error", zap.Error(err))
		return ValidateCouponResponse{}, NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	if rec.ToCoupon().ExpiredAt(u.now()) {
		if err := u.couponRepo.Deactivate(ctx, rec.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			u.logger.Warn("deactivate expired coupon failed", zap.Int64("coupon_id", rec.ID), zap.Error(err))
		}
		return ValidateCouponResponse{}, NewHTTPError(http.StatusNotFound, "Coupon expired")
	}

	return ValidateCouponResponse{
		Message:            "Coupon is valid",
		Code:               rec.Code,
		DiscountPercentage: rec.DiscountPercentage.String(),
		ExpirationDate:     rec.ExpirationDate,
	}, nil
}
