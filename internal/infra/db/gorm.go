package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sidharth73/mern-e-commerce/internal/config"
	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Authority, logger *zap.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.GoEnv == "dev" {
		level = gormlogger.Info
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(logger), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return gdb, nil
}

// Migrate はテーブルを作る。ACTIVEカートは1ユーザー1つ（部分ユニークインデックス）
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.CouponRecord{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := gdb.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_carts_user_active ON carts (user_id) WHERE status = 'ACTIVE'`,
	).Error; err != nil {
		return fmt.Errorf("create active cart index: %w", err)
	}
	return nil
}
