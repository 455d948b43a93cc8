package cart

import (
	"context"
	"strings"
	"time"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
	"github.com/sidharth73/mern-e-commerce/internal/pricing"

	"go.uber.org/zap"
)

const (
	reasonCodeRequired = "Coupon code is required"
	reasonExpired      = "Coupon expired"
	reasonInvalid      = "Invalid coupon code"
)

// CouponResolver はAuthorityのクーポンAPIの境界。Sessionの状態には触らない。
type CouponResolver struct {
	gateway CouponGateway
	clock   func() time.Time
	logger  *zap.Logger
}

type ResolverOption func(*CouponResolver)

func WithClock(clock func() time.Time) ResolverOption {
	return func(r *CouponResolver) {
		if clock != nil {
			r.clock = clock
		}
	}
}

func WithResolverLogger(logger *zap.Logger) ResolverOption {
	return func(r *CouponResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewCouponResolver(gateway CouponGateway, opts ...ResolverOption) *CouponResolver {
	r := &CouponResolver{
		gateway: gateway,
		clock:   time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FetchEligibleCoupon は呼び出し元ユーザーのクーポンを返す。無ければ nil（エラーではない）。
// 期限切れ・割引率が範囲外のものも無し扱い。
func (r *CouponResolver) FetchEligibleCoupon(ctx context.Context) (*model.Coupon, error) {
	c, err := r.gateway.FetchCoupon(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	if c.ExpiredAt(r.clock()) {
		r.logger.Debug("eligible coupon already expired", zap.String("code", c.Code))
		return nil, nil
	}
	if !pricing.ValidPercentage(c.DiscountPercentage) {
		r.logger.Warn("eligible coupon has out-of-range discount",
			zap.String("code", c.Code),
			zap.String("discount_percentage", c.DiscountPercentage.String()),
		)
		return nil, nil
	}
	out := *c
	return &out, nil
}

// ValidateCode はコードを1往復だけで検証する。リトライしない。
func (r *CouponResolver) ValidateCode(ctx context.Context, code string) (model.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.Coupon{}, &ValidationError{Reason: reasonCodeRequired}
	}

	c, err := r.gateway.ValidateCoupon(ctx, code)
	if err != nil {
		if rejectedByAuthority(err) {
			return model.Coupon{}, &ValidationError{Code: code, Reason: MessageFor(err, reasonInvalid), Err: err}
		}
		return model.Coupon{}, err
	}

	if c.ExpiredAt(r.clock()) {
		return model.Coupon{}, &ValidationError{Code: code, Reason: reasonExpired}
	}
	if !pricing.ValidPercentage(c.DiscountPercentage) {
		return model.Coupon{}, &ValidationError{Code: code, Reason: reasonInvalid}
	}
	if c.Code == "" {
		c.Code = code
	}
	return c, nil
}
