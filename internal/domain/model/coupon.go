package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// クーポン（クライアントが扱う形）
type Coupon struct {
	Code               string          `json:"code"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	ExpirationDate     time.Time       `json:"expirationDate"`
}

// 期限切れか。期限が無いものは切れない。
func (c Coupon) ExpiredAt(now time.Time) bool {
	if c.ExpirationDate.IsZero() {
		return false
	}
	return !now.Before(c.ExpirationDate)
}

// Authority側で保存するクーポン。ユーザーごとに発行される。
type CouponRecord struct {
	ID                 int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code               string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discountPercentage"`
	ExpirationDate     time.Time       `gorm:"not null" json:"expirationDate"`
	IsActive           bool            `gorm:"not null;default:true;index" json:"isActive"`
	UserID             int64           `gorm:"not null;index" json:"userId"`
	CreatedAt          time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (CouponRecord) TableName() string {
	return "coupons"
}

func (r CouponRecord) ToCoupon() Coupon {
	return Coupon{
		Code:               r.Code,
		DiscountPercentage: r.DiscountPercentage,
		ExpirationDate:     r.ExpirationDate,
	}
}
