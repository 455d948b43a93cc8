package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sidharth73/mern-e-commerce/internal/config"
	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
	"github.com/sidharth73/mern-e-commerce/internal/handler"
	"github.com/sidharth73/mern-e-commerce/internal/infra/db"
	infraRepo "github.com/sidharth73/mern-e-commerce/internal/infra/repository"
	"github.com/sidharth73/mern-e-commerce/internal/logging"
	"github.com/sidharth73/mern-e-commerce/internal/middleware"
	"github.com/sidharth73/mern-e-commerce/internal/server"
	"github.com/sidharth73/mern-e-commerce/internal/usecase"
)

const devTokenTTL = 24 * time.Hour

func main() {
	var (
		seed    = flag.Bool("seed", false, "insert demo products and coupons, then exit")
		tokenOf = flag.Int64("token", 0, "print a dev access token for the user id, then exit")
	)
	flag.Parse()

	cfg, err := config.LoadAuthority()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.GoEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	//開発用トークンだけ出して終わる
	if *tokenOf > 0 {
		tok, err := middleware.IssueAccessToken(cfg.JWTSecret, *tokenOf, devTokenTTL, time.Now())
		if err != nil {
			logger.Fatal("issue token", zap.Error(err))
		}
		fmt.Println(tok)
		return
	}

	//DB接続
	gormDB, err := db.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	//Repository（GORM実装）生成
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	if *seed {
		if err := seedDemo(context.Background(), productRepo, couponRepo); err != nil {
			logger.Fatal("seed", zap.Error(err))
		}
		logger.Info("seeded demo data")
		return
	}

	//Usecase生成
	cartUC := usecase.NewCartUsecase(txManager, cartRepo, cartRepo, productRepo, logger)
	couponUC := usecase.NewCouponUsecase(couponRepo, time.Now, logger)
	productUC := usecase.NewProductUsecase(productRepo, logger)

	//Handler生成
	e := server.NewAuthority(logger, cfg.JWTSecret,
		handler.NewProductHandler(productUC),
		handler.NewCartHandler(cartUC),
		handler.NewCouponHandler(couponUC),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//Server起動
	if err := server.Start(ctx, e, cfg.Addr(), logger); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}

// 商品3つと、user 1 のクーポン
func seedDemo(ctx context.Context, products *infraRepo.ProductGormRepository, coupons *infraRepo.CouponGormRepository) error {
	demo := []model.Product{
		{Name: "Classic Tee", Category: "t-shirts", Image: "/tshirts.jpg", Price: decimal.RequireFromString("24.99"), IsFeatured: true},
		{Name: "Denim Jacket", Category: "jackets", Image: "/jackets.jpg", Price: decimal.RequireFromString("89.00")},
		{Name: "Running Shoes", Category: "shoes", Image: "/shoes.jpg", Price: decimal.RequireFromString("120.50")},
	}
	for _, p := range demo {
		p.ID = model.ProductID(uuid.NewString())
		if err := products.Save(ctx, p); err != nil {
			return fmt.Errorf("save product %q: %w", p.Name, err)
		}
	}

	return coupons.Save(ctx, model.CouponRecord{
		Code:               "GIFT" + uuid.NewString()[:6],
		DiscountPercentage: decimal.NewFromInt(10),
		ExpirationDate:     time.Now().Add(30 * 24 * time.Hour),
		IsActive:           true,
		UserID:             1,
	})
}
