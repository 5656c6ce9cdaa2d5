package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/pkg/apperr"
	"shopify_sync_v1/pkg/shopify"
)

func newInventoryFixture(t *testing.T) (*InventoryService, repository.ProductRepository, *model.Connection, *fakeCommerce) {
	t.Helper()
	db := setupTestDB(t)
	connRepo := repository.NewConnectionRepository(db)
	productRepo := repository.NewProductRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	conn := createTestConnection(t, db, 1, "shop.myshopify.com")

	fake := &fakeCommerce{
		locations: []shopify.RemoteLocation{
			{ID: "gid://shopify/Location/1", Name: "仓库", IsActive: true},
		},
	}
	svc := NewInventoryService(productRepo, connRepo, settingsRepo, fakeFactory(fake), testDefaults(), testLogger())
	return svc, productRepo, conn, fake
}

func seedProduct(t *testing.T, repo repository.ProductRepository, conn *model.Connection, qty int) *model.Product {
	t.Helper()
	row := &model.Product{
		ConnectionID:      conn.ID,
		TenantID:          conn.TenantID,
		PlatformProductID: "101",
		PlatformVariantID: "201",
		InventoryItemID:   "301",
		Title:             "测试商品",
		PriceCents:        1000,
		InventoryQuantity: qty,
		InventoryTracked:  true,
	}
	require.NoError(t, repo.Upsert(context.Background(), row))
	got, err := repo.GetByNaturalKey(context.Background(), conn.ID, "101", "201")
	require.NoError(t, err)
	return got
}

func TestAdjust_Positive(t *testing.T) {
	svc, productRepo, conn, _ := newInventoryFixture(t)
	product := seedProduct(t, productRepo, conn, 5)

	got, err := svc.Adjust(context.Background(), 1, product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 8, got.InventoryQuantity)
}

func TestAdjust_GuardRejectsNegativeResult(t *testing.T) {
	svc, productRepo, conn, _ := newInventoryFixture(t)
	product := seedProduct(t, productRepo, conn, 2)

	_, err := svc.Adjust(context.Background(), 1, product.ID, -5)

	var stockErr *apperr.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)

	// 拒绝时数量保持不变
	after, err := productRepo.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.InventoryQuantity)
}

func TestAdjust_ToExactlyZeroAllowed(t *testing.T) {
	svc, productRepo, conn, _ := newInventoryFixture(t)
	product := seedProduct(t, productRepo, conn, 3)

	got, err := svc.Adjust(context.Background(), 1, product.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 0, got.InventoryQuantity)
}

func TestAdjust_CrossTenantRejected(t *testing.T) {
	svc, productRepo, conn, _ := newInventoryFixture(t)
	product := seedProduct(t, productRepo, conn, 5)

	_, err := svc.Adjust(context.Background(), 999, product.ID, 1)
	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestSetAbsolute_Idempotent(t *testing.T) {
	svc, productRepo, conn, _ := newInventoryFixture(t)
	product := seedProduct(t, productRepo, conn, 5)

	for i := 0; i < 3; i++ {
		got, err := svc.SetAbsolute(context.Background(), 1, product.ID, 42)
		require.NoError(t, err)
		assert.Equal(t, 42, got.InventoryQuantity)
	}
}

func TestSetAbsolute_NegativeClampedToZero(t *testing.T) {
	svc, productRepo, conn, _ := newInventoryFixture(t)
	product := seedProduct(t, productRepo, conn, 5)

	got, err := svc.SetAbsolute(context.Background(), 1, product.ID, -10)
	require.NoError(t, err)
	assert.Equal(t, 0, got.InventoryQuantity)
}

func TestPushAdjustment_SendsGIDToRemote(t *testing.T) {
	svc, productRepo, conn, fake := newInventoryFixture(t)
	product := seedProduct(t, productRepo, conn, 5)

	require.NoError(t, svc.PushAdjustment(context.Background(), 1, product.ID, -2))

	require.Len(t, fake.adjustCalls, 1)
	assert.Equal(t, "gid://shopify/InventoryItem/301", fake.adjustCalls[0].InventoryItemID)
	assert.Equal(t, "gid://shopify/Location/1", fake.adjustCalls[0].LocationID)
	assert.Equal(t, -2, fake.adjustCalls[0].Delta)
}

func TestApplyRemoteLevel_SetsAbsolute(t *testing.T) {
	svc, productRepo, conn, _ := newInventoryFixture(t)
	product := seedProduct(t, productRepo, conn, 5)

	require.NoError(t, svc.ApplyRemoteLevel(context.Background(), conn, "301", 17))

	after, err := productRepo.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 17, after.InventoryQuantity)
}

func TestApplyRemoteLevel_UnknownItemIgnored(t *testing.T) {
	svc, _, conn, _ := newInventoryFixture(t)

	// 本地没有对应行时静默忽略，不报错
	assert.NoError(t, svc.ApplyRemoteLevel(context.Background(), conn, "does-not-exist", 5))
}

func TestListLowStock_ProductThresholdBeatsDefault(t *testing.T) {
	svc, productRepo, conn, _ := newInventoryFixture(t)

	threshold := 10
	require.NoError(t, productRepo.Upsert(context.Background(), &model.Product{
		ConnectionID: conn.ID, TenantID: 1,
		PlatformProductID: "101", PlatformVariantID: "201",
		InventoryQuantity: 8, InventoryTracked: true,
		LowStockThreshold: &threshold,
	}))
	require.NoError(t, productRepo.Upsert(context.Background(), &model.Product{
		ConnectionID: conn.ID, TenantID: 1,
		PlatformProductID: "102", PlatformVariantID: "202",
		InventoryQuantity: 8, InventoryTracked: true,
	}))

	// 8 <= 商品阈值 10 命中；8 > 默认阈值 5 不命中
	low, err := svc.ListLowStock(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "101", low[0].PlatformProductID)
}

func TestStats_Aggregates(t *testing.T) {
	svc, productRepo, conn, _ := newInventoryFixture(t)

	rows := []*model.Product{
		{ConnectionID: conn.ID, TenantID: 1, PlatformProductID: "101", PlatformVariantID: "201",
			InventoryQuantity: 10, InventoryTracked: true, PriceCents: 100},
		{ConnectionID: conn.ID, TenantID: 1, PlatformProductID: "102", PlatformVariantID: "202",
			InventoryQuantity: 3, InventoryTracked: true, PriceCents: 200},
		{ConnectionID: conn.ID, TenantID: 1, PlatformProductID: "103", PlatformVariantID: "203",
			InventoryQuantity: 0, InventoryTracked: true, PriceCents: 300},
	}
	for _, row := range rows {
		require.NoError(t, productRepo.Upsert(context.Background(), row))
	}

	stats, err := svc.Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(13), stats.TotalStock)
	assert.Equal(t, int64(2), stats.LowStockCount) // 3 和 0 都 <= 默认阈值 5
	assert.Equal(t, int64(1), stats.OutOfStockCount)
	assert.Equal(t, int64(10*100+3*200), stats.TotalValueCents)
}
