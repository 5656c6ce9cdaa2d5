package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shopify_sync_v1/internal/config"
	"shopify_sync_v1/internal/controller"
	"shopify_sync_v1/internal/middleware"
	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/internal/router"
	"shopify_sync_v1/internal/service"
	"shopify_sync_v1/internal/task"
	"shopify_sync_v1/pkg/database"
	"shopify_sync_v1/pkg/logger"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 2. 初始化日志
	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer zlog.Sync()

	// 3. 初始化数据库
	db := initDatabase(cfg)

	// 4. 初始化依赖
	deps := initDependencies(cfg, db, zlog)

	// 5. 启动定时任务
	if cfg.Sync.Enabled {
		deps.SyncTask.Start()
		defer deps.SyncTask.Stop()
	}

	// 6. 初始化路由
	r := gin.New()
	r.Use(middleware.RequestLog(zlog), gin.Recovery())
	router.InitRoutes(r,
		deps.Controllers.Webhook,
		deps.Controllers.Connection,
		deps.Controllers.Sync,
		deps.Controllers.Product,
		deps.Controllers.Inventory,
		deps.Controllers.Cart,
		deps.Controllers.Order,
		deps.Controllers.Affiliate,
		deps.Controllers.Settings,
		time.Duration(cfg.Sync.CooldownSeconds)*time.Second)

	// 7. 启动服务
	startServer(r, cfg.App.Port, zlog)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	SyncTask    *task.CatalogSyncTask
}

// Repositories 仓库集合
type Repositories struct {
	Connection repository.ConnectionRepository
	Product    repository.ProductRepository
	Order      repository.OrderRepository
	Affiliate  repository.AffiliateOrderRepository
	Cart       repository.CartRepository
	Settings   repository.SettingsRepository
}

// Services 服务集合
type Services struct {
	Vault      *service.VaultService
	Pricing    *service.PricingService
	Connection *service.ConnectionService
	Sync       *service.SyncService
	Inventory  *service.InventoryService
	Product    *service.ProductService
	Cart       *service.CartService
	Order      *service.OrderService
	Webhook    *service.WebhookService
}

// Controllers 控制器集合
type Controllers struct {
	Webhook    *controller.WebhookController
	Connection *controller.ConnectionController
	Sync       *controller.SyncController
	Product    *controller.ProductController
	Inventory  *controller.InventoryController
	Cart       *controller.CartController
	Order      *controller.OrderController
	Affiliate  *controller.AffiliateController
	Settings   *controller.SettingsController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.Database.DSN(),
		// Connection
		&model.Connection{}, &model.TenantSettings{},
		// Catalog
		&model.Product{},
		// Order
		&model.Order{}, &model.OrderItem{},
		&model.Cart{}, &model.CartItem{},
		// Affiliate
		&model.AffiliateOrder{}, &model.AffiliateOrderItem{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, zlog *zap.Logger) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Connection: repository.NewConnectionRepository(db),
		Product:    repository.NewProductRepository(db),
		Order:      repository.NewOrderRepository(db),
		Affiliate:  repository.NewAffiliateOrderRepository(db),
		Cart:       repository.NewCartRepository(db),
		Settings:   repository.NewSettingsRepository(db),
	}

	// -------- 基础服务 --------
	vault := service.NewVaultService(cfg.Vault.SecretEnv)
	pricing := service.NewPricingService()
	factory := service.NewClientFactory(vault, cfg.Shopify.APIVersion)
	verifier := service.NewTokenVerifier(cfg.Shopify.APIVersion)

	// -------- 业务服务 --------
	services := &Services{
		Vault:   vault,
		Pricing: pricing,
	}
	services.Connection = service.NewConnectionService(repos.Connection, vault, verifier, zlog)
	services.Sync = service.NewSyncService(repos.Connection, repos.Product, factory, cfg.Shopify.PageSize, zlog)
	services.Inventory = service.NewInventoryService(repos.Product, repos.Connection, repos.Settings, factory, cfg.Defaults, zlog)
	services.Product = service.NewProductService(repos.Product, repos.Settings, pricing, cfg.Defaults)
	services.Cart = service.NewCartService(repos.Cart, repos.Product)
	services.Order = service.NewOrderService(repos.Order, repos.Product, repos.Cart, repos.Settings, pricing, cfg.Defaults, zlog)
	services.Webhook = service.NewWebhookService(
		repos.Connection, repos.Product, repos.Affiliate, repos.Settings,
		services.Sync, services.Inventory, pricing, cfg.Defaults, zlog)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Webhook:    controller.NewWebhookController(services.Webhook, cfg.Shopify.WebhookSecret, zlog),
		Connection: controller.NewConnectionController(services.Connection),
		Sync:       controller.NewSyncController(services.Sync, services.Connection),
		Product:    controller.NewProductController(services.Product),
		Inventory:  controller.NewInventoryController(services.Inventory),
		Cart:       controller.NewCartController(services.Cart),
		Order:      controller.NewOrderController(services.Order),
		Affiliate:  controller.NewAffiliateController(repos.Affiliate),
		Settings:   controller.NewSettingsController(repos.Settings),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		SyncTask:    task.NewCatalogSyncTask(repos.Connection, services.Sync, cfg.Sync.CronSpec, zlog),
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, port string, zlog *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		zlog.Info("服务启动", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("服务强制关闭", zap.Error(err))
	}

	zlog.Info("服务已退出")
}
