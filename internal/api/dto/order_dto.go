package dto

// ==================== Order DTO ====================

// OrderCreateReq 从购物车下单请求
type OrderCreateReq struct {
	StylistID     int64  `json:"stylist_id" binding:"required,gt=0"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=BILLING CARD"`
	Notes         string `json:"notes"`
}

// OrderListReq 订单列表请求
type OrderListReq struct {
	StylistID int64  `form:"stylist_id"`
	Status    string `form:"status"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
}

// OrderStatusReq 订单状态迁移请求
type OrderStatusReq struct {
	Status string `json:"status" binding:"required,oneof=PAID READY PICKED_UP CANCELLED"`
}
