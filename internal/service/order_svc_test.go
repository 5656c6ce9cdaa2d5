package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/pkg/apperr"
)

type orderFixture struct {
	db          *gorm.DB
	svc         *OrderService
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	conn        *model.Connection
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := setupTestDB(t)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	conn := createTestConnection(t, db, 1, "shop.myshopify.com")

	svc := NewOrderService(orderRepo, productRepo, cartRepo, settingsRepo,
		NewPricingService(), testDefaults(), testLogger())
	return &orderFixture{
		db:          db,
		svc:         svc,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		conn:        conn,
	}
}

func (f *orderFixture) seedProduct(t *testing.T, variantID string, priceCents int64, qty int, tracked bool) *model.Product {
	t.Helper()
	row := &model.Product{
		ConnectionID:      f.conn.ID,
		TenantID:          1,
		PlatformProductID: "101",
		PlatformVariantID: variantID,
		Title:             "商品 " + variantID,
		PriceCents:        priceCents,
		InventoryQuantity: qty,
		InventoryTracked:  tracked,
	}
	require.NoError(t, f.productRepo.Upsert(context.Background(), row))
	got, err := f.productRepo.GetByNaturalKey(context.Background(), f.conn.ID, "101", variantID)
	require.NoError(t, err)
	return got
}

func (f *orderFixture) addToCart(t *testing.T, stylistID, productID int64, qty int) {
	t.Helper()
	cart, err := f.cartRepo.GetOrCreate(context.Background(), 1, stylistID)
	require.NoError(t, err)
	require.NoError(t, f.cartRepo.AddItem(context.Background(), cart.ID, productID, qty))
}

func TestCreateOrder_BillingPaidImmediately(t *testing.T) {
	f := newOrderFixture(t)
	product := f.seedProduct(t, "201", 1000, 10, true)
	f.addToCart(t, 7, product.ID, 2)

	order, err := f.svc.CreateOrderFromCart(context.Background(), 1, 7, model.PaymentMethodBilling, "备注")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPaid, order.Status)
	assert.NotNil(t, order.PaidAt)
	assert.Contains(t, order.OrderNumber, "SO-")

	// 发型师价 10.00 + 20% = 12.00，两件 24.00
	assert.Equal(t, int64(2400), order.SubtotalCents)
	assert.Equal(t, int64(0), order.TaxCents)
	assert.Equal(t, int64(2400), order.TotalCents)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(1200), order.Items[0].UnitPriceCents)

	// 库存已扣减
	after, err := f.productRepo.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, after.InventoryQuantity)

	// 购物车已清空
	cart, err := f.cartRepo.GetOrCreate(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCreateOrder_CardStaysPending(t *testing.T) {
	f := newOrderFixture(t)
	product := f.seedProduct(t, "201", 1000, 10, true)
	f.addToCart(t, 7, product.ID, 1)

	order, err := f.svc.CreateOrderFromCart(context.Background(), 1, 7, model.PaymentMethodCard, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Nil(t, order.PaidAt)
}

func TestCreateOrder_TaxFromSettings(t *testing.T) {
	f := newOrderFixture(t)
	require.NoError(t, f.db.Create(&model.TenantSettings{
		TenantID:                 1,
		DefaultMarginType:        model.MarginTypePercentage,
		DefaultMarginValue:       decimal.NewFromInt(20),
		DefaultCommissionType:    model.MarginTypePercentage,
		DefaultCommissionValue:   decimal.NewFromInt(10),
		DefaultLowStockThreshold: 5,
		TaxRateBps:               825, // 8.25%
	}).Error)

	product := f.seedProduct(t, "201", 1000, 10, true)
	f.addToCart(t, 7, product.ID, 1)

	order, err := f.svc.CreateOrderFromCart(context.Background(), 1, 7, model.PaymentMethodBilling, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), order.SubtotalCents)
	assert.Equal(t, int64(1200*825/10000), order.TaxCents)
	assert.Equal(t, order.SubtotalCents+order.TaxCents, order.TotalCents)
}

func TestCreateOrder_EmptyCartRejected(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.CreateOrderFromCart(context.Background(), 1, 7, model.PaymentMethodBilling, "")
	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateOrder_InsufficientStockAllOrNothing(t *testing.T) {
	f := newOrderFixture(t)
	ok := f.seedProduct(t, "201", 1000, 10, true)
	short := f.seedProduct(t, "202", 500, 1, true)
	f.addToCart(t, 7, ok.ID, 2)
	f.addToCart(t, 7, short.ID, 5)

	_, err := f.svc.CreateOrderFromCart(context.Background(), 1, 7, model.PaymentMethodBilling, "")
	var stockErr *apperr.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, short.ID, stockErr.ProductID)

	// 整单失败：零订单行、库存原样、购物车保留
	var orderCount int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)

	var itemCount int64
	require.NoError(t, f.db.Model(&model.OrderItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)

	afterOk, err := f.productRepo.GetByID(context.Background(), ok.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, afterOk.InventoryQuantity)

	cart, err := f.cartRepo.GetOrCreate(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestCreateOrder_UntrackedSkipsStockCheck(t *testing.T) {
	f := newOrderFixture(t)
	product := f.seedProduct(t, "201", 1000, 0, false)
	f.addToCart(t, 7, product.ID, 3)

	order, err := f.svc.CreateOrderFromCart(context.Background(), 1, 7, model.PaymentMethodBilling, "")
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.False(t, order.Items[0].Tracked)

	// 未追踪商品不扣库存
	after, err := f.productRepo.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.InventoryQuantity)
}

func TestOrderSnapshot_ImmuneToProductChanges(t *testing.T) {
	f := newOrderFixture(t)
	product := f.seedProduct(t, "201", 1000, 10, true)
	f.addToCart(t, 7, product.ID, 1)

	order, err := f.svc.CreateOrderFromCart(context.Background(), 1, 7, model.PaymentMethodBilling, "")
	require.NoError(t, err)

	// 同步引擎改价后，订单快照保持原值
	require.NoError(t, f.productRepo.UpdateFields(context.Background(), product.ID,
		map[string]interface{}{"price_cents": 9999, "title": "改名了"}))

	reloaded, err := f.orderRepo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), reloaded.Items[0].UnitPriceCents)
	assert.Equal(t, "商品 201", reloaded.Items[0].Title)
}

func TestUpdateStatus_HappyPath(t *testing.T) {
	f := newOrderFixture(t)
	product := f.seedProduct(t, "201", 1000, 10, true)
	f.addToCart(t, 7, product.ID, 1)

	order, err := f.svc.CreateOrderFromCart(context.Background(), 1, 7, model.PaymentMethodCard, "")
	require.NoError(t, err)

	for _, next := range []string{
		model.OrderStatusPaid, model.OrderStatusReady, model.OrderStatusPickedUp,
	} {
		order, err = f.svc.UpdateStatus(context.Background(), 1, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, order.Status)
	}
	assert.NotNil(t, order.PaidAt)
	assert.NotNil(t, order.ReadyAt)
	assert.NotNil(t, order.PickedUpAt)
}

func TestUpdateStatus_TerminalGuard(t *testing.T) {
	f := newOrderFixture(t)
	product := f.seedProduct(t, "201", 1000, 10, true)
	f.addToCart(t, 7, product.ID, 1)

	order, err := f.svc.CreateOrderFromCart(context.Background(), 1, 7, model.PaymentMethodBilling, "")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), 1, order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)

	// 终态不允许再迁出
	for _, next := range []string{model.OrderStatusPaid, model.OrderStatusReady, model.OrderStatusPending} {
		_, err := f.svc.UpdateStatus(context.Background(), 1, order.ID, next)
		var validationErr *apperr.ValidationError
		assert.ErrorAs(t, err, &validationErr, "迁移到 %s 应被拒绝", next)
	}
}

func TestUpdateStatus_SkipLevelRejected(t *testing.T) {
	f := newOrderFixture(t)
	product := f.seedProduct(t, "201", 1000, 10, true)
	f.addToCart(t, 7, product.ID, 1)

	order, err := f.svc.CreateOrderFromCart(context.Background(), 1, 7, model.PaymentMethodCard, "")
	require.NoError(t, err)

	// PENDING 不能直接 READY
	_, err = f.svc.UpdateStatus(context.Background(), 1, order.ID, model.OrderStatusReady)
	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestUpdateStatus_CancelRestocksTrackedItems(t *testing.T) {
	f := newOrderFixture(t)
	tracked := f.seedProduct(t, "201", 1000, 10, true)
	untracked := f.seedProduct(t, "202", 500, 0, false)
	f.addToCart(t, 7, tracked.ID, 4)
	f.addToCart(t, 7, untracked.ID, 2)

	order, err := f.svc.CreateOrderFromCart(context.Background(), 1, 7, model.PaymentMethodBilling, "")
	require.NoError(t, err)

	afterCreate, err := f.productRepo.GetByID(context.Background(), tracked.ID)
	require.NoError(t, err)
	require.Equal(t, 6, afterCreate.InventoryQuantity)

	cancelled, err := f.svc.UpdateStatus(context.Background(), 1, order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.NotNil(t, cancelled.CancelledAt)

	// 追踪商品精确回补，未追踪商品不动
	afterCancel, err := f.productRepo.GetByID(context.Background(), tracked.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, afterCancel.InventoryQuantity)

	afterUntracked, err := f.productRepo.GetByID(context.Background(), untracked.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, afterUntracked.InventoryQuantity)
}

func TestUpdateStatus_CrossTenantRejected(t *testing.T) {
	f := newOrderFixture(t)
	product := f.seedProduct(t, "201", 1000, 10, true)
	f.addToCart(t, 7, product.ID, 1)

	order, err := f.svc.CreateOrderFromCart(context.Background(), 1, 7, model.PaymentMethodCard, "")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), 999, order.ID, model.OrderStatusPaid)
	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
