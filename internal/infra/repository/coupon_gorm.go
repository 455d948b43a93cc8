package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
	repo "github.com/sidharth73/mern-e-commerce/internal/repository"
)

type CouponGormRepository struct {
	db *gorm.DB
}

// DI
func NewCouponGormRepository(db *gorm.DB) *CouponGormRepository {
	return &CouponGormRepository{db: db}
}

// ユーザーの有効なクーポン（新しいもの優先）
func (r *CouponGormRepository) FindActiveByUserID(ctx context.Context, userID int64) (model.CouponRecord, error) {
	var c model.CouponRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("id desc").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CouponRecord{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CouponRecord{}, err
	}
	return c, nil
}

// code + user で有効なものだけ
func (r *CouponGormRepository) FindActiveByCode(ctx context.Context, userID int64, code string) (model.CouponRecord, error) {
	var c model.CouponRecord
	err := r.db.WithContext(ctx).
		Where("code = ? AND user_id = ? AND is_active = ?", code, userID, true).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CouponRecord{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CouponRecord{}, err
	}
	return c, nil
}

// 期限切れにしたものを無効化
func (r *CouponGormRepository) Deactivate(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CouponRecord{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 同じcodeなら上書き
func (r *CouponGormRepository) Save(ctx context.Context, c model.CouponRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"discount_percentage", "expiration_date", "is_active", "user_id", "updated_at"}),
		}).
		Create(&c).Error
}
