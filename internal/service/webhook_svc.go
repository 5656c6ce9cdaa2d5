package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"shopify_sync_v1/internal/config"
	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/pkg/shopify"
)

// ==================== 签名校验 ====================

// VerifySignature 校验 webhook 签名
// HMAC-SHA256 必须算在未解析的原始请求体上；常数时间比较防时序侧信道
func VerifySignature(rawBody []byte, signatureHeader, secret string) bool {
	if secret == "" || signatureHeader == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signatureHeader)))
}

// ==================== 事件载荷 ====================

type productPayload struct {
	ID int64 `json:"id"`
}

type inventoryLevelPayload struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	Available       int   `json:"available"`
}

type orderPayload struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Tags           string `json:"tags"`
	TotalPrice     string `json:"total_price"`
	NoteAttributes []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"note_attributes"`
	Customer struct {
		ID        int64  `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"customer"`
	LineItems []struct {
		Title     string `json:"title"`
		Quantity  int    `json:"quantity"`
		Price     string `json:"price"`
		ProductID int64  `json:"product_id"`
		VariantID int64  `json:"variant_id"`
	} `json:"line_items"`
}

// referralStylist 解析推荐标记
// 约定：note_attributes 里 name 为 stylist_ref / ref 的条目，
// 或 tags 逗号串里的 "ref:<id>" 条目；都没有则不是推荐订单
func referralStylist(p *orderPayload) (int64, bool) {
	for _, attr := range p.NoteAttributes {
		if attr.Name == "stylist_ref" || attr.Name == "ref" {
			if id, err := strconv.ParseInt(strings.TrimSpace(attr.Value), 10, 64); err == nil && id > 0 {
				return id, true
			}
		}
	}
	for _, tag := range strings.Split(p.Tags, ",") {
		tag = strings.TrimSpace(tag)
		if v, ok := strings.CutPrefix(tag, "ref:"); ok {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
				return id, true
			}
		}
	}
	return 0, false
}

// ==================== WebhookService 事件分发 ====================

// WebhookService webhook 事件处理
// 每个处理器先按发送方域名精确反查归属连接；处理器可跨连接/跨商品并发执行，
// 真正的防重靠存储层自然键与 platform_order_id 唯一约束
type WebhookService struct {
	connRepo      repository.ConnectionRepository
	productRepo   repository.ProductRepository
	affiliateRepo repository.AffiliateOrderRepository
	settingsRepo  repository.SettingsRepository
	syncSvc       *SyncService
	inventorySvc  *InventoryService
	pricing       *PricingService
	defaults      config.DefaultsConfig
	logger        *zap.Logger
}

// NewWebhookService 创建 webhook 服务
func NewWebhookService(
	connRepo repository.ConnectionRepository,
	productRepo repository.ProductRepository,
	affiliateRepo repository.AffiliateOrderRepository,
	settingsRepo repository.SettingsRepository,
	syncSvc *SyncService,
	inventorySvc *InventoryService,
	pricing *PricingService,
	defaults config.DefaultsConfig,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		connRepo:      connRepo,
		productRepo:   productRepo,
		affiliateRepo: affiliateRepo,
		settingsRepo:  settingsRepo,
		syncSvc:       syncSvc,
		inventorySvc:  inventorySvc,
		pricing:       pricing,
		defaults:      defaults,
		logger:        logger,
	}
}

// ResolveConnection 归一化域名后精确查找连接，未知域名返回 (nil, nil)
// 子串匹配在一个租户域名是另一个前缀时会误判，这里只做精确匹配
func (s *WebhookService) ResolveConnection(ctx context.Context, domain string) (*model.Connection, error) {
	conn, err := s.connRepo.GetByDomain(ctx, shopify.NormalizeDomain(domain))
	if err != nil {
		return nil, err
	}
	if conn == nil || !conn.IsActive {
		return nil, nil
	}
	return conn, nil
}

// Dispatch 按事件主题路由
// 未知域名/未知主题按无操作成功处理，让平台不再重投
func (s *WebhookService) Dispatch(ctx context.Context, topic, domain string, rawBody []byte) error {
	conn, err := s.ResolveConnection(ctx, domain)
	if err != nil {
		return err
	}
	if conn == nil {
		s.logger.Warn("webhook 来自未知店铺", zap.String("domain", domain), zap.String("topic", topic))
		return nil
	}

	switch topic {
	case "products/create", "products/update":
		return s.handleProductUpsert(ctx, conn, rawBody)
	case "products/delete":
		return s.handleProductDelete(ctx, conn, rawBody)
	case "inventory_levels/update":
		return s.handleInventoryLevel(ctx, conn, rawBody)
	case "orders/create":
		return s.handleOrderCreated(ctx, conn, rawBody)
	case "orders/fulfilled":
		return s.handleOrderFulfilled(ctx, conn, rawBody)
	case "orders/cancelled":
		return s.handleOrderCancelled(ctx, conn, rawBody)
	default:
		s.logger.Debug("忽略未订阅的主题", zap.String("topic", topic))
		return nil
	}
}

// handleProductUpsert 商品创建/更新 → 单商品增量同步
func (s *WebhookService) handleProductUpsert(ctx context.Context, conn *model.Connection, rawBody []byte) error {
	var p productPayload
	if err := json.Unmarshal(rawBody, &p); err != nil {
		return err
	}
	return s.syncSvc.SyncProduct(ctx, conn, strconv.FormatInt(p.ID, 10))
}

// handleProductDelete 商品删除 → 清掉本地全部对应行
func (s *WebhookService) handleProductDelete(ctx context.Context, conn *model.Connection, rawBody []byte) error {
	var p productPayload
	if err := json.Unmarshal(rawBody, &p); err != nil {
		return err
	}
	return s.syncSvc.DeleteProduct(ctx, conn, strconv.FormatInt(p.ID, 10))
}

// handleInventoryLevel 远端库存水位变化 → 应用绝对值到本地
func (s *WebhookService) handleInventoryLevel(ctx context.Context, conn *model.Connection, rawBody []byte) error {
	var p inventoryLevelPayload
	if err := json.Unmarshal(rawBody, &p); err != nil {
		return err
	}
	return s.inventorySvc.ApplyRemoteLevel(ctx, conn,
		strconv.FormatInt(p.InventoryItemID, 10), p.Available)
}

// handleOrderCreated 远端订单创建
// 不带推荐标记的订单与本系统无关，直接无操作；
// 带标记的构建推荐订单，佣金按此刻的定价配置计算并固定；
// platform_order_id 唯一约束保证重复投递不产生第二行
func (s *WebhookService) handleOrderCreated(ctx context.Context, conn *model.Connection, rawBody []byte) error {
	var p orderPayload
	if err := json.Unmarshal(rawBody, &p); err != nil {
		return err
	}

	stylistID, ok := referralStylist(&p)
	if !ok {
		return nil
	}

	settings, err := s.settingsRepo.GetByTenant(ctx, conn.TenantID)
	if err != nil {
		return err
	}
	defaults := DefaultsFromSettings(settings, s.defaults)

	var totalCommission int64
	items := make([]model.AffiliateOrderItem, 0, len(p.LineItems))
	for _, line := range p.LineItems {
		pid := strconv.FormatInt(line.ProductID, 10)
		vid := strconv.FormatInt(line.VariantID, 10)

		// 本地镜像行可能不存在（非同步商品），此时只用租户默认配置
		product, err := s.productRepo.GetByNaturalKey(ctx, conn.ID, pid, vid)
		if err != nil {
			return err
		}

		unitPrice := priceToCents(line.Price)
		perUnit := s.pricing.CommissionForPriceCents(unitPrice, product, defaults)
		lineCommission := perUnit * int64(line.Quantity)
		totalCommission += lineCommission

		items = append(items, model.AffiliateOrderItem{
			PlatformProductID: pid,
			PlatformVariantID: vid,
			Title:             line.Title,
			UnitPriceCents:    unitPrice,
			Quantity:          line.Quantity,
			CommissionCents:   lineCommission,
		})
	}

	order := &model.AffiliateOrder{
		ConnectionID:    conn.ID,
		TenantID:        conn.TenantID,
		StylistID:       stylistID,
		PlatformOrderID: strconv.FormatInt(p.ID, 10),
		CustomerInfo: map[string]interface{}{
			"email":      p.Customer.Email,
			"first_name": p.Customer.FirstName,
			"last_name":  p.Customer.LastName,
		},
		TotalCents:       priceToCents(p.TotalPrice),
		CommissionCents:  totalCommission,
		OrderStatus:      model.AffiliateOrderCreated,
		CommissionStatus: model.CommissionStatusPending,
		Items:            items,
	}

	created, err := s.affiliateRepo.CreateIfAbsent(ctx, order)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("推荐订单已入账",
			zap.String("platform_order_id", order.PlatformOrderID),
			zap.Int64("stylist_id", stylistID),
			zap.Int64("commission_cents", totalCommission))
	}
	return nil
}

// handleOrderFulfilled 远端订单发货 → 盖发货标记；本地无此单则无操作
func (s *WebhookService) handleOrderFulfilled(ctx context.Context, conn *model.Connection, rawBody []byte) error {
	var p orderPayload
	if err := json.Unmarshal(rawBody, &p); err != nil {
		return err
	}
	order, err := s.affiliateRepo.GetByPlatformOrderID(ctx, strconv.FormatInt(p.ID, 10))
	if err != nil || order == nil {
		return err
	}
	return s.affiliateRepo.MarkFulfilled(ctx, order.ID, time.Now())
}

// handleOrderCancelled 远端订单取消 → 作废佣金，保留行；本地无此单则无操作
func (s *WebhookService) handleOrderCancelled(ctx context.Context, conn *model.Connection, rawBody []byte) error {
	var p orderPayload
	if err := json.Unmarshal(rawBody, &p); err != nil {
		return err
	}
	order, err := s.affiliateRepo.GetByPlatformOrderID(ctx, strconv.FormatInt(p.ID, 10))
	if err != nil || order == nil {
		return err
	}
	return s.affiliateRepo.VoidCommission(ctx, order.ID)
}
