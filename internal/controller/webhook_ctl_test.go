package controller

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopify_sync_v1/internal/config"
	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/internal/service"
	"shopify_sync_v1/pkg/shopify"
)

const testWebhookSecret = "whsec_ctl_test"

// ==================== 测试辅助 ====================

// stubCommerce 测试用远端桩，webhook 路径上只有 GetProduct 会被调用
type stubCommerce struct {
	products map[string]*shopify.RemoteProduct
}

func (s *stubCommerce) GetProducts(ctx context.Context, pageSize int, cursor string) (*shopify.ProductPage, error) {
	return &shopify.ProductPage{}, nil
}

func (s *stubCommerce) GetProduct(ctx context.Context, id string) (*shopify.RemoteProduct, error) {
	return s.products[id], nil
}

func (s *stubCommerce) GetLocations(ctx context.Context) ([]shopify.RemoteLocation, error) {
	return nil, nil
}

func (s *stubCommerce) AdjustInventory(ctx context.Context, inventoryItemID, locationID string, delta int) error {
	return nil
}

func (s *stubCommerce) SetInventory(ctx context.Context, inventoryItemID, locationID string, quantity int) error {
	return nil
}

func setupWebhookCtlTest(t *testing.T) (*gin.Engine, *gorm.DB, *model.Connection) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Connection{}, &model.TenantSettings{}, &model.Product{},
		&model.AffiliateOrder{}, &model.AffiliateOrderItem{},
	))

	conn := &model.Connection{
		TenantID:    1,
		ShopDomain:  "shop.myshopify.com",
		AccessToken: "encrypted",
		IsActive:    true,
	}
	require.NoError(t, db.Create(conn).Error)

	connRepo := repository.NewConnectionRepository(db)
	productRepo := repository.NewProductRepository(db)
	affiliateRepo := repository.NewAffiliateOrderRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	stub := &stubCommerce{products: map[string]*shopify.RemoteProduct{
		"gid://shopify/Product/101": {
			ID:     "gid://shopify/Product/101",
			Title:  "商品",
			Status: "ACTIVE",
			Variants: []shopify.RemoteVariant{{
				ID:                "gid://shopify/ProductVariant/201",
				Price:             "10.00",
				InventoryQuantity: 3,
			}},
		},
	}}
	factory := func(conn *model.Connection) (service.CommerceAPI, error) {
		return stub, nil
	}

	defaults := config.DefaultsConfig{
		MarginType: model.MarginTypePercentage, MarginValue: 20,
		CommissionType: model.MarginTypePercentage, CommissionValue: 10,
		LowStockThreshold: 5,
	}
	zlog := zap.NewNop()
	syncSvc := service.NewSyncService(connRepo, productRepo, factory, 50, zlog)
	inventorySvc := service.NewInventoryService(productRepo, connRepo, settingsRepo, factory, defaults, zlog)
	webhookSvc := service.NewWebhookService(connRepo, productRepo, affiliateRepo, settingsRepo,
		syncSvc, inventorySvc, service.NewPricingService(), defaults, zlog)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctl := NewWebhookController(webhookSvc, testWebhookSecret, zlog)
	r.POST("/api/webhooks/shopify", ctl.Handle)
	return r, db, conn
}

func postWebhook(r *gin.Engine, topic, domain, webhookID string, body []byte, secret string) *httptest.ResponseRecorder {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/shopify", bytes.NewReader(body))
	req.Header.Set("X-Shopify-Topic", topic)
	req.Header.Set("X-Shopify-Shop-Domain", domain)
	req.Header.Set("X-Shopify-Hmac-Sha256", signature)
	if webhookID != "" {
		req.Header.Set("X-Shopify-Webhook-Id", webhookID)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== 测试用例 ====================

func TestWebhookHandle_BadSignatureRejected(t *testing.T) {
	r, _, conn := setupWebhookCtlTest(t)

	w := postWebhook(r, "products/update", conn.ShopDomain, "", []byte(`{"id":101}`), "wrong-secret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookHandle_ProductUpdateSynced(t *testing.T) {
	r, db, conn := setupWebhookCtlTest(t)

	w := postWebhook(r, "products/update", conn.ShopDomain, "", []byte(`{"id":101}`), testWebhookSecret)
	require.Equal(t, http.StatusOK, w.Code)

	var row model.Product
	require.NoError(t, db.Where(
		"connection_id = ? AND platform_product_id = ? AND platform_variant_id = ?",
		conn.ID, "101", "201").First(&row).Error)
	assert.Equal(t, int64(1000), row.PriceCents)
	assert.Equal(t, 3, row.InventoryQuantity)
}

func TestWebhookHandle_DuplicateWebhookIDSuppressed(t *testing.T) {
	r, db, conn := setupWebhookCtlTest(t)

	body := []byte(`{
		"id": 5001,
		"total_price": "10.00",
		"note_attributes": [{"name": "stylist_ref", "value": "7"}],
		"line_items": [{"title": "洗发水", "quantity": 1, "price": "10.00", "product_id": 101, "variant_id": 201}]
	}`)

	first := postWebhook(r, "orders/create", conn.ShopDomain, "wh-1", body, testWebhookSecret)
	require.Equal(t, http.StatusOK, first.Code)

	second := postWebhook(r, "orders/create", conn.ShopDomain, "wh-1", body, testWebhookSecret)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), "duplicate")

	var count int64
	require.NoError(t, db.Model(&model.AffiliateOrder{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWebhookHandle_UnknownShopStillOK(t *testing.T) {
	r, _, _ := setupWebhookCtlTest(t)

	// 未知店铺按无操作成功处理，避免平台无限重投
	w := postWebhook(r, "products/update", "stranger.myshopify.com", "", []byte(`{"id":101}`), testWebhookSecret)
	assert.Equal(t, http.StatusOK, w.Code)
}
