package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"shopify_sync_v1/internal/model"
)

func percentDefaults(margin, commission float64) PricingDefaults {
	return PricingDefaults{
		MarginType:      model.MarginTypePercentage,
		MarginValue:     decimal.NewFromFloat(margin),
		CommissionType:  model.MarginTypePercentage,
		CommissionValue: decimal.NewFromFloat(commission),
	}
}

func TestStylistPrice_PercentageMargin(t *testing.T) {
	pricing := NewPricingService()

	// 10.00 + 20% = 12.00
	product := &model.Product{PriceCents: 1000}
	got := pricing.StylistPriceCents(product, percentDefaults(20, 10))
	assert.Equal(t, int64(1200), got)
}

func TestStylistPrice_FixedMargin(t *testing.T) {
	pricing := NewPricingService()

	// 10.00 + 固定 5 元 = 15.00
	fixed := model.MarginTypeFixed
	value := decimal.NewFromInt(5)
	product := &model.Product{
		PriceCents:  1000,
		MarginType:  &fixed,
		MarginValue: &value,
	}
	got := pricing.StylistPriceCents(product, percentDefaults(20, 10))
	assert.Equal(t, int64(1500), got)
}

func TestStylistPrice_CostBasePreferred(t *testing.T) {
	pricing := NewPricingService()

	// 有采购成本时基数用成本而非售价：6.00 + 20% = 7.20
	cost := int64(600)
	product := &model.Product{PriceCents: 1000, CostCents: &cost}
	got := pricing.StylistPriceCents(product, percentDefaults(20, 10))
	assert.Equal(t, int64(720), got)
}

func TestStylistPrice_ProductOverrideBeatsDefaults(t *testing.T) {
	pricing := NewPricingService()

	// 商品级 50% 覆盖租户默认 20%
	override := model.MarginTypePercentage
	value := decimal.NewFromInt(50)
	product := &model.Product{
		PriceCents:  1000,
		MarginType:  &override,
		MarginValue: &value,
	}
	got := pricing.StylistPriceCents(product, percentDefaults(20, 10))
	assert.Equal(t, int64(1500), got)
}

func TestStylistPrice_RoundsToCent(t *testing.T) {
	pricing := NewPricingService()

	// 9.99 + 15% = 11.4885 -> 11.49
	product := &model.Product{PriceCents: 999}
	got := pricing.StylistPriceCents(product, percentDefaults(15, 10))
	assert.Equal(t, int64(1149), got)
}

func TestCommission_Percentage(t *testing.T) {
	pricing := NewPricingService()

	// 20.00 的 10% = 2.00；基数永远是售价，成本不参与
	cost := int64(600)
	product := &model.Product{PriceCents: 2000, CostCents: &cost}
	got := pricing.CommissionCents(product, percentDefaults(20, 10))
	assert.Equal(t, int64(200), got)
}

func TestCommission_Fixed(t *testing.T) {
	pricing := NewPricingService()

	fixed := model.MarginTypeFixed
	value := decimal.NewFromInt(3)
	product := &model.Product{
		PriceCents:      2000,
		CommissionType:  &fixed,
		CommissionValue: &value,
	}
	got := pricing.CommissionCents(product, percentDefaults(20, 10))
	assert.Equal(t, int64(300), got)
}

func TestCommission_NilProductUsesDefaults(t *testing.T) {
	pricing := NewPricingService()

	// webhook 订单行没有本地商品时只用租户默认
	got := pricing.CommissionForPriceCents(1500, nil, percentDefaults(20, 10))
	assert.Equal(t, int64(150), got)
}

func TestPricing_Deterministic(t *testing.T) {
	pricing := NewPricingService()
	product := &model.Product{PriceCents: 1234}
	defaults := percentDefaults(17.5, 8.25)

	first := pricing.StylistPriceCents(product, defaults)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, pricing.StylistPriceCents(product, defaults))
	}
}

func TestDefaultsFromSettings_NilFallsBackToConfig(t *testing.T) {
	defaults := DefaultsFromSettings(nil, testDefaults())
	assert.Equal(t, model.MarginTypePercentage, defaults.MarginType)
	assert.True(t, defaults.MarginValue.Equal(decimal.NewFromInt(20)))
}

func TestDefaultsFromSettings_UsesSettingsRow(t *testing.T) {
	settings := &model.TenantSettings{
		DefaultMarginType:      model.MarginTypeFixed,
		DefaultMarginValue:     decimal.NewFromInt(2),
		DefaultCommissionType:  model.MarginTypePercentage,
		DefaultCommissionValue: decimal.NewFromInt(5),
	}
	defaults := DefaultsFromSettings(settings, testDefaults())
	assert.Equal(t, model.MarginTypeFixed, defaults.MarginType)
	assert.True(t, defaults.CommissionValue.Equal(decimal.NewFromInt(5)))
}

func TestPriceToCents(t *testing.T) {
	assert.Equal(t, int64(1234), priceToCents("12.34"))
	assert.Equal(t, int64(0), priceToCents(""))
	assert.Equal(t, int64(0), priceToCents("abc"))
	assert.Equal(t, int64(100), priceToCents("1"))
}
