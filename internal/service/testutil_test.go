package service

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopify_sync_v1/internal/config"
	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/pkg/shopify"
)

// ==================== 测试辅助 ====================

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&model.Connection{}, &model.TenantSettings{},
		&model.Product{},
		&model.Order{}, &model.OrderItem{},
		&model.Cart{}, &model.CartItem{},
		&model.AffiliateOrder{}, &model.AffiliateOrderItem{},
	)
	if err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}
	return db
}

func testDefaults() config.DefaultsConfig {
	return config.DefaultsConfig{
		MarginType:        model.MarginTypePercentage,
		MarginValue:       20,
		CommissionType:    model.MarginTypePercentage,
		CommissionValue:   10,
		LowStockThreshold: 5,
	}
}

// ==================== 远端假实现 ====================

type adjustCall struct {
	InventoryItemID string
	LocationID      string
	Delta           int
}

// fakeCommerce CommerceAPI 假实现
// pages 按游标串联；products 按 GID 精确查找
type fakeCommerce struct {
	pages     []shopify.ProductPage
	products  map[string]*shopify.RemoteProduct
	locations []shopify.RemoteLocation

	adjustCalls []adjustCall
	err         error
}

func (f *fakeCommerce) GetProducts(ctx context.Context, pageSize int, cursor string) (*shopify.ProductPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pages) == 0 {
		return &shopify.ProductPage{}, nil
	}
	if cursor == "" {
		return &f.pages[0], nil
	}
	for i := 0; i < len(f.pages)-1; i++ {
		if f.pages[i].EndCursor == cursor {
			return &f.pages[i+1], nil
		}
	}
	return &shopify.ProductPage{}, nil
}

func (f *fakeCommerce) GetProduct(ctx context.Context, id string) (*shopify.RemoteProduct, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products[id], nil
}

func (f *fakeCommerce) GetLocations(ctx context.Context) ([]shopify.RemoteLocation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.locations, nil
}

func (f *fakeCommerce) AdjustInventory(ctx context.Context, inventoryItemID, locationID string, delta int) error {
	if f.err != nil {
		return f.err
	}
	f.adjustCalls = append(f.adjustCalls, adjustCall{inventoryItemID, locationID, delta})
	return nil
}

func (f *fakeCommerce) SetInventory(ctx context.Context, inventoryItemID, locationID string, quantity int) error {
	return f.err
}

func fakeFactory(fake *fakeCommerce) ClientFactory {
	return func(conn *model.Connection) (CommerceAPI, error) {
		return fake, nil
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// createTestConnection 建一条启用中的连接
func createTestConnection(t *testing.T, db *gorm.DB, tenantID int64, domain string) *model.Connection {
	t.Helper()
	conn := &model.Connection{
		TenantID:    tenantID,
		ShopDomain:  domain,
		AccessToken: "encrypted-token",
		IsActive:    true,
	}
	if err := db.Create(conn).Error; err != nil {
		t.Fatalf("创建测试连接失败: %v", err)
	}
	return conn
}
