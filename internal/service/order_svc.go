package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shopify_sync_v1/internal/config"
	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/pkg/apperr"
)

// ==================== 状态机 ====================

// allowedTransitions 订单状态迁移表
// PICKED_UP 与 CANCELLED 不在表中——终态不允许迁出
var allowedTransitions = map[string][]string{
	model.OrderStatusPending: {model.OrderStatusPaid, model.OrderStatusCancelled},
	model.OrderStatusPaid:    {model.OrderStatusReady, model.OrderStatusCancelled},
	model.OrderStatusReady:   {model.OrderStatusPickedUp, model.OrderStatusCancelled},
}

func transitionAllowed(from, to string) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ==================== OrderService 订单履约 ====================

// OrderService B2B 订单生命周期
type OrderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	cartRepo     repository.CartRepository
	settingsRepo repository.SettingsRepository
	pricing      *PricingService
	defaults     config.DefaultsConfig
	logger       *zap.Logger
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	settingsRepo repository.SettingsRepository,
	pricing *PricingService,
	defaults config.DefaultsConfig,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
		settingsRepo: settingsRepo,
		pricing:      pricing,
		defaults:     defaults,
		logger:       logger,
	}
}

// newOrderNumber 生成订单号，如 SO-20250830-1A2B3C4D
func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("SO-%s-%s", time.Now().Format("20060102"), suffix)
}

// CreateOrderFromCart 从购物车创建订单
// 整个流程在一个事务内：校验归属 → 定价 → 全行库存预检 → 落单+快照 →
// 逐行条件扣减 → 清空购物车。任一行库存不足则整单失败、无任何副作用。
// 记账支付（BILLING）下单即 PAID；卡支付留在 PENDING 等外部扣款
func (s *OrderService) CreateOrderFromCart(ctx context.Context, tenantID, stylistID int64, paymentMethod, notes string) (*model.Order, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, tenantID, stylistID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, &apperr.ValidationError{Message: "购物车为空"}
	}

	settings, err := s.settingsRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defaults := DefaultsFromSettings(settings, s.defaults)

	taxRateBps := 0
	if settings != nil {
		taxRateBps = settings.TaxRateBps
	}

	var order *model.Order
	err = s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		txProducts := s.productRepo.WithTx(tx)
		txOrders := s.orderRepo.WithTx(tx)
		txCart := s.cartRepo.WithTx(tx)

		// 1. 校验归属 + 预检库存 + 定价快照
		items := make([]model.OrderItem, 0, len(cart.Items))
		var subtotal int64
		for _, ci := range cart.Items {
			product, err := txProducts.GetByID(ctx, ci.ProductID)
			if err != nil {
				return &apperr.ValidationError{Message: fmt.Sprintf("商品 %d 不存在", ci.ProductID)}
			}
			if product.TenantID != tenantID {
				return &apperr.ValidationError{Message: fmt.Sprintf("商品 %d 不属于当前租户", ci.ProductID)}
			}
			if product.InventoryTracked && product.InventoryQuantity < ci.Quantity {
				return &apperr.InsufficientStockError{
					ProductID: product.ID,
					Requested: ci.Quantity,
					Available: product.InventoryQuantity,
				}
			}

			unitPrice := s.pricing.StylistPriceCents(product, defaults)
			lineTotal := unitPrice * int64(ci.Quantity)
			subtotal += lineTotal

			image := ""
			if len(product.Images) > 0 {
				image = product.Images[0]
			}
			items = append(items, model.OrderItem{
				ProductID:      product.ID,
				Title:          product.Title,
				ImageURL:       image,
				UnitPriceCents: unitPrice,
				Quantity:       ci.Quantity,
				LineTotalCents: lineTotal,
				Tracked:        product.InventoryTracked,
			})
		}

		tax := subtotal * int64(taxRateBps) / 10000

		now := time.Now()
		order = &model.Order{
			TenantID:      tenantID,
			StylistID:     stylistID,
			OrderNumber:   newOrderNumber(),
			Status:        model.OrderStatusPending,
			PaymentMethod: paymentMethod,
			SubtotalCents: subtotal,
			TaxCents:      tax,
			TotalCents:    subtotal + tax,
			Notes:         notes,
			Items:         items,
		}
		if paymentMethod == model.PaymentMethodBilling {
			order.Status = model.OrderStatusPaid
			order.PaidAt = &now
		}

		// 2. 落单（快照在此固化）
		if err := txOrders.Create(ctx, order); err != nil {
			return err
		}

		// 3. 逐行条件扣减：预检通过后仍可能被并发订单抢先，
		//    条件更新失败即回滚整单
		for _, ci := range cart.Items {
			product, err := txProducts.GetByID(ctx, ci.ProductID)
			if err != nil {
				return err
			}
			if !product.InventoryTracked {
				continue
			}
			ok, err := txProducts.AdjustQuantity(ctx, ci.ProductID, -ci.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &apperr.InsufficientStockError{
					ProductID: ci.ProductID,
					Requested: ci.Quantity,
					Available: product.InventoryQuantity,
				}
			}
		}

		// 4. 清空购物车
		return txCart.Clear(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("订单已创建",
		zap.String("order_number", order.OrderNumber),
		zap.Int64("tenant_id", tenantID),
		zap.Int64("stylist_id", stylistID),
		zap.Int64("total_cents", order.TotalCents))
	return order, nil
}

// UpdateStatus 迁移订单状态
// 先校验租户归属；终态（PICKED_UP/CANCELLED）不允许迁出；
// 迁入 CANCELLED 时按下单数量精确回补追踪库存并盖取消时间戳
func (s *OrderService) UpdateStatus(ctx context.Context, tenantID, orderID int64, newStatus string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, &apperr.ValidationError{Message: "订单不存在"}
	}
	if order.TenantID != tenantID {
		return nil, &apperr.ValidationError{Message: "订单不属于当前租户"}
	}
	if !transitionAllowed(order.Status, newStatus) {
		return nil, &apperr.ValidationError{
			Message: fmt.Sprintf("不允许的状态迁移: %s -> %s", order.Status, newStatus),
		}
	}

	now := time.Now()
	fields := map[string]interface{}{"status": newStatus}
	switch newStatus {
	case model.OrderStatusPaid:
		fields["paid_at"] = now
	case model.OrderStatusReady:
		fields["ready_at"] = now
	case model.OrderStatusPickedUp:
		fields["picked_up_at"] = now
	case model.OrderStatusCancelled:
		fields["cancelled_at"] = now
	}

	err = s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		txOrders := s.orderRepo.WithTx(tx)
		txProducts := s.productRepo.WithTx(tx)

		if newStatus == model.OrderStatusCancelled {
			// 回补库存：只看下单时的快照，数量精确等于下单数
			for _, item := range order.Items {
				if !item.Tracked || item.ProductID == 0 {
					continue
				}
				if _, err := txProducts.AdjustQuantity(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return txOrders.UpdateFields(ctx, orderID, fields)
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.GetByID(ctx, orderID)
}

// List 订单列表
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.List(ctx, filter)
}

// Get 订单详情（校验租户归属）
func (s *OrderService) Get(ctx context.Context, tenantID, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, &apperr.ValidationError{Message: "订单不存在"}
	}
	if order.TenantID != tenantID {
		return nil, &apperr.ValidationError{Message: "订单不属于当前租户"}
	}
	return order, nil
}
