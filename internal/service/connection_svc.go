package service

import (
	"context"

	"go.uber.org/zap"

	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/pkg/apperr"
	"shopify_sync_v1/pkg/shopify"
)

// ==================== ConnectionService 平台连接管理 ====================

// TokenVerifier 校验 (域名, 明文令牌) 是否能访问远端店铺
// 生产实现走一次店铺信息查询，测试注入假实现
type TokenVerifier func(ctx context.Context, domain, token string) error

// NewTokenVerifier 生产实现
func NewTokenVerifier(apiVersion string) TokenVerifier {
	return func(ctx context.Context, domain, token string) error {
		client := shopify.NewClient(domain, token, apiVersion)
		_, err := client.GetShopInfo(ctx)
		return err
	}
}

// ConnectionService 连接生命周期：绑定、列表、停用
// 令牌入库前加密，任何出口都不回显明文
type ConnectionService struct {
	connRepo repository.ConnectionRepository
	vault    *VaultService
	verify   TokenVerifier
	logger   *zap.Logger
}

// NewConnectionService 创建连接服务
func NewConnectionService(
	connRepo repository.ConnectionRepository,
	vault *VaultService,
	verify TokenVerifier,
	logger *zap.Logger,
) *ConnectionService {
	return &ConnectionService{
		connRepo: connRepo,
		vault:    vault,
		verify:   verify,
		logger:   logger,
	}
}

// Create 绑定外部店铺
// 先在线校验令牌有效性，再加密入库；同域名重复绑定直接拒绝
func (s *ConnectionService) Create(ctx context.Context, tenantID int64, shopDomain, accessToken string) (*model.Connection, error) {
	domain := shopify.NormalizeDomain(shopDomain)
	if domain == "" {
		return nil, &apperr.ValidationError{Message: "店铺域名不能为空"}
	}

	existing, err := s.connRepo.GetByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &apperr.ValidationError{Message: "该店铺已绑定"}
	}

	if err := s.verify(ctx, domain, accessToken); err != nil {
		return nil, err
	}

	encrypted, err := s.vault.Encrypt(accessToken)
	if err != nil {
		return nil, err
	}

	conn := &model.Connection{
		TenantID:    tenantID,
		ShopDomain:  domain,
		AccessToken: encrypted,
		IsActive:    true,
	}
	if err := s.connRepo.Create(ctx, conn); err != nil {
		return nil, err
	}

	s.logger.Info("店铺已绑定",
		zap.Int64("tenant_id", tenantID),
		zap.String("shop_domain", domain))
	return conn, nil
}

// UpdateToken 轮换令牌，先在线校验再加密落库
func (s *ConnectionService) UpdateToken(ctx context.Context, tenantID, connectionID int64, accessToken string) error {
	conn, err := s.getOwned(ctx, tenantID, connectionID)
	if err != nil {
		return err
	}

	if err := s.verify(ctx, conn.ShopDomain, accessToken); err != nil {
		return err
	}

	encrypted, err := s.vault.Encrypt(accessToken)
	if err != nil {
		return err
	}
	return s.connRepo.UpdateToken(ctx, connectionID, encrypted)
}

// List 租户下全部连接
func (s *ConnectionService) List(ctx context.Context, tenantID int64) ([]model.Connection, error) {
	return s.connRepo.ListByTenant(ctx, tenantID)
}

// Deactivate 停用连接，镜像数据保留
func (s *ConnectionService) Deactivate(ctx context.Context, tenantID, connectionID int64) error {
	if _, err := s.getOwned(ctx, tenantID, connectionID); err != nil {
		return err
	}
	return s.connRepo.Deactivate(ctx, connectionID)
}

// getOwned 取连接并校验租户归属
func (s *ConnectionService) getOwned(ctx context.Context, tenantID, connectionID int64) (*model.Connection, error) {
	conn, err := s.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, &apperr.ValidationError{Message: "连接不存在"}
	}
	if conn.TenantID != tenantID {
		return nil, &apperr.ValidationError{Message: "连接不属于当前租户"}
	}
	return conn, nil
}
