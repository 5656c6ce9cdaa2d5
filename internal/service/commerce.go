package service

import (
	"context"

	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/pkg/shopify"
)

// ==================== 远端平台访问抽象 ====================

// CommerceAPI 同步/库存引擎依赖的远端操作子集
// 生产实现为 pkg/shopify.Client，测试注入假实现
type CommerceAPI interface {
	GetProducts(ctx context.Context, pageSize int, cursor string) (*shopify.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*shopify.RemoteProduct, error)
	GetLocations(ctx context.Context) ([]shopify.RemoteLocation, error)
	AdjustInventory(ctx context.Context, inventoryItemID, locationID string, delta int) error
	SetInventory(ctx context.Context, inventoryItemID, locationID string, quantity int) error
}

var _ CommerceAPI = (*shopify.Client)(nil)

// ClientFactory 按连接构造远端客户端（内部解密令牌）
type ClientFactory func(conn *model.Connection) (CommerceAPI, error)

// NewClientFactory 生产实现：解密令牌后创建 GraphQL 客户端
func NewClientFactory(vault *VaultService, apiVersion string) ClientFactory {
	return func(conn *model.Connection) (CommerceAPI, error) {
		token, err := vault.Decrypt(conn.AccessToken)
		if err != nil {
			return nil, err
		}
		return shopify.NewClient(conn.ShopDomain, token, apiVersion), nil
	}
}
