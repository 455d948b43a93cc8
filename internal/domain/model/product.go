package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 商品ID（Authorityが採番する文字列ID）
type ProductID string

// 商品。カート追加時にクライアントが渡す形もこれ。
type Product struct {
	ID          ProductID       `gorm:"primaryKey;type:varchar(64)" json:"_id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Image       string          `gorm:"type:text" json:"image"`
	Category    string          `gorm:"type:varchar(100);index" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"price"`
	IsFeatured  bool            `gorm:"not null;default:false" json:"isFeatured"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
