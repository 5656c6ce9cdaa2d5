package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 请求 DTO ====================

// ProductListReq 商品列表请求
type ProductListReq struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20"`
}

// ProductPricingReq 商品级定价覆盖请求
// 所有字段可选，传了才更新；margin/commission 的 type 与 value 必须成对出现
type ProductPricingReq struct {
	CostCents         *int64           `json:"cost_cents"`
	MarginType        *string          `json:"margin_type" binding:"omitempty,oneof=PERCENTAGE FIXED"`
	MarginValue       *decimal.Decimal `json:"margin_value"`
	CommissionType    *string          `json:"commission_type" binding:"omitempty,oneof=PERCENTAGE FIXED"`
	CommissionValue   *decimal.Decimal `json:"commission_value"`
	LowStockThreshold *int             `json:"low_stock_threshold" binding:"omitempty,gte=0"`
	InventoryTracked  *bool            `json:"inventory_tracked"`
}

// ==================== 响应 DTO ====================

// ProductResp 商品响应，附带按当前配置算出的发型师价与佣金
type ProductResp struct {
	ID                int64      `json:"id"`
	PlatformProductID string     `json:"platform_product_id"`
	PlatformVariantID string     `json:"platform_variant_id"`
	Title             string     `json:"title"`
	VariantTitle      string     `json:"variant_title"`
	Vendor            string     `json:"vendor"`
	ProductType       string     `json:"product_type"`
	SKU               string     `json:"sku"`
	Images            []string   `json:"images"`
	PriceCents        int64      `json:"price_cents"`
	CostCents         *int64     `json:"cost_cents"`
	StylistPriceCents int64      `json:"stylist_price_cents"`
	CommissionCents   int64      `json:"commission_cents"`
	InventoryQuantity int        `json:"inventory_quantity"`
	InventoryTracked  bool       `json:"inventory_tracked"`
	LowStockThreshold *int       `json:"low_stock_threshold"`
	LastSyncedAt      *time.Time `json:"last_synced_at"`
}

// ProductListResp 商品列表响应
type ProductListResp struct {
	Total int64         `json:"total"`
	List  []ProductResp `json:"list"`
}
