package repository

import (
	"context"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
)

// ユーザーごとに発行されたクーポン
type CouponRepository interface {
	FindActiveByUserID(ctx context.Context, userID int64) (model.CouponRecord, error)
	FindActiveByCode(ctx context.Context, userID int64, code string) (model.CouponRecord, error)
	Deactivate(ctx context.Context, id int64) error
	// seed用。同じcodeなら上書き
	Save(ctx context.Context, c model.CouponRecord) error
}
