package dto

// ================== Inventory DTO ==================

// InventoryAdjustReq 增量调整请求，delta 可正可负但不能为 0
// push=true 时同时把增量推送到远端平台
type InventoryAdjustReq struct {
	Delta int  `json:"delta" binding:"required"`
	Push  bool `json:"push"`
}

// InventorySetReq 绝对值设置请求
type InventorySetReq struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}
