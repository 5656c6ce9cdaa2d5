package dto

import "github.com/shopspring/decimal"

// ================== TenantSettings DTO ==================

// SettingsUpsertReq 租户默认定价配置
type SettingsUpsertReq struct {
	DefaultMarginType        string          `json:"default_margin_type" binding:"required,oneof=PERCENTAGE FIXED"`
	DefaultMarginValue       decimal.Decimal `json:"default_margin_value" binding:"required"`
	DefaultCommissionType    string          `json:"default_commission_type" binding:"required,oneof=PERCENTAGE FIXED"`
	DefaultCommissionValue   decimal.Decimal `json:"default_commission_value" binding:"required"`
	DefaultLowStockThreshold int             `json:"default_low_stock_threshold" binding:"gte=0"`
	TaxRateBps               int             `json:"tax_rate_bps" binding:"gte=0,lte=10000"`
}
