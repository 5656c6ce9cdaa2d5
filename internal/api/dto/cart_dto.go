package dto

// ================== Cart DTO ==================

// CartAddReq 加购请求
type CartAddReq struct {
	StylistID int64 `json:"stylist_id" binding:"required,gt=0"`
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gte=1"`
}

// CartItemResp 购物车行响应
type CartItemResp struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CartResp 购物车响应
type CartResp struct {
	ID        int64          `json:"id"`
	StylistID int64          `json:"stylist_id"`
	Items     []CartItemResp `json:"items"`
}
