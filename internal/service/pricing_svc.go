package service

import (
	"github.com/shopspring/decimal"

	"shopify_sync_v1/internal/config"
	"shopify_sync_v1/internal/model"
)

// ==================== PricingService 定价引擎 ====================

// PricingDefaults 租户级定价默认值（已解析好，纯值对象）
type PricingDefaults struct {
	MarginType      string
	MarginValue     decimal.Decimal
	CommissionType  string
	CommissionValue decimal.Decimal
}

// DefaultsFromSettings 把租户配置行解析为定价默认值
// settings 为 nil 时回落到全局配置
func DefaultsFromSettings(settings *model.TenantSettings, cfg config.DefaultsConfig) PricingDefaults {
	if settings == nil {
		return PricingDefaults{
			MarginType:      cfg.MarginType,
			MarginValue:     decimal.NewFromFloat(cfg.MarginValue),
			CommissionType:  cfg.CommissionType,
			CommissionValue: decimal.NewFromFloat(cfg.CommissionValue),
		}
	}
	return PricingDefaults{
		MarginType:      settings.DefaultMarginType,
		MarginValue:     settings.DefaultMarginValue,
		CommissionType:  settings.DefaultCommissionType,
		CommissionValue: settings.DefaultCommissionValue,
	}
}

// PricingService 纯计算，无 I/O、无状态
// 下单与 webhook 分佣各自调用，相同输入必须得到相同结果
type PricingService struct{}

// NewPricingService 创建定价引擎
func NewPricingService() *PricingService {
	return &PricingService{}
}

// StylistPriceCents 发型师采购价（分）
// 基数：商品采购成本，未设置时用远端售价
// 加价方式：商品级覆盖优先，其次租户默认
func (s *PricingService) StylistPriceCents(product *model.Product, defaults PricingDefaults) int64 {
	base := product.PriceCents
	if product.CostCents != nil {
		base = *product.CostCents
	}

	marginType, marginValue := defaults.MarginType, defaults.MarginValue
	if product.MarginType != nil && product.MarginValue != nil {
		marginType, marginValue = *product.MarginType, *product.MarginValue
	}
	return applyCents(base, marginType, marginValue)
}

// CommissionCents 推荐佣金（分），基数永远是远端售价而非成本
func (s *PricingService) CommissionCents(product *model.Product, defaults PricingDefaults) int64 {
	return s.CommissionForPriceCents(product.PriceCents, product, defaults)
}

// CommissionForPriceCents 按指定售价计算佣金
// webhook 订单行可能没有对应本地商品，此时 product 传 nil、只用租户默认
// PERCENTAGE: base * value/100；FIXED: value（货币单位，按件）
func (s *PricingService) CommissionForPriceCents(priceCents int64, product *model.Product, defaults PricingDefaults) int64 {
	commType, commValue := defaults.CommissionType, defaults.CommissionValue
	if product != nil && product.CommissionType != nil && product.CommissionValue != nil {
		commType, commValue = *product.CommissionType, *product.CommissionValue
	}

	hundred := decimal.NewFromInt(100)
	var result decimal.Decimal
	switch commType {
	case model.MarginTypeFixed:
		result = commValue.Mul(hundred)
	default: // PERCENTAGE
		result = decimal.NewFromInt(priceCents).Mul(commValue).Div(hundred)
	}
	return result.Round(0).IntPart()
}

// applyCents 定点分值运算，四舍五入到分
// PERCENTAGE: base * (1 + value/100)；FIXED: base + value（value 为货币单位）
func applyCents(baseCents int64, marginType string, value decimal.Decimal) int64 {
	base := decimal.NewFromInt(baseCents)
	hundred := decimal.NewFromInt(100)

	var result decimal.Decimal
	switch marginType {
	case model.MarginTypeFixed:
		result = base.Add(value.Mul(hundred))
	default: // PERCENTAGE
		result = base.Mul(hundred.Add(value)).Div(hundred)
	}
	return result.Round(0).IntPart()
}
