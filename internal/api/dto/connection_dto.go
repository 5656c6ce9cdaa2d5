package dto

import "time"

// ================== Connection DTO ==================

// ConnectionCreateReq 绑定外部店铺请求
type ConnectionCreateReq struct {
	ShopDomain  string `json:"shop_domain" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
}

// ConnectionResp 连接响应，凭证永不回显
type ConnectionResp struct {
	ID         int64      `json:"id"`
	ShopDomain string     `json:"shop_domain"`
	IsActive   bool       `json:"is_active"`
	LastSyncAt *time.Time `json:"last_sync_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ConnectionListResp 连接列表响应
type ConnectionListResp struct {
	Total int64            `json:"total"`
	List  []ConnectionResp `json:"list"`
}
