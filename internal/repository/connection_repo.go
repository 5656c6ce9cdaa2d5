package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"shopify_sync_v1/internal/model"
)

// ==================== 接口定义 ====================

// ConnectionRepository 平台连接仓储接口
type ConnectionRepository interface {
	Create(ctx context.Context, conn *model.Connection) error
	GetByID(ctx context.Context, id int64) (*model.Connection, error)
	// GetByDomain 按归一化域名精确查找，找不到返回 (nil, nil)
	GetByDomain(ctx context.Context, domain string) (*model.Connection, error)
	GetByTenant(ctx context.Context, tenantID int64) (*model.Connection, error)
	ListActive(ctx context.Context) ([]model.Connection, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]model.Connection, error)
	UpdateToken(ctx context.Context, id int64, encryptedToken string) error
	Deactivate(ctx context.Context, id int64) error
	StampSynced(ctx context.Context, id int64, at time.Time) error
}

// ==================== 仓储实现 ====================

type connectionRepo struct {
	db *gorm.DB
}

// NewConnectionRepository 创建连接仓储
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepo{db: db}
}

func (r *connectionRepo) Create(ctx context.Context, conn *model.Connection) error {
	return r.db.WithContext(ctx).Create(conn).Error
}

func (r *connectionRepo) GetByID(ctx context.Context, id int64) (*model.Connection, error) {
	var conn model.Connection
	if err := r.db.WithContext(ctx).First(&conn, id).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepo) GetByDomain(ctx context.Context, domain string) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.WithContext(ctx).
		Where("shop_domain = ?", domain).
		First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepo) GetByTenant(ctx context.Context, tenantID int64) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepo) ListActive(ctx context.Context) ([]model.Connection, error) {
	var conns []model.Connection
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&conns).Error
	return conns, err
}

func (r *connectionRepo) ListByTenant(ctx context.Context, tenantID int64) ([]model.Connection, error) {
	var conns []model.Connection
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Find(&conns).Error
	return conns, err
}

func (r *connectionRepo) UpdateToken(ctx context.Context, id int64, encryptedToken string) error {
	return r.db.WithContext(ctx).
		Model(&model.Connection{}).
		Where("id = ?", id).
		Update("access_token", encryptedToken).Error
}

func (r *connectionRepo) Deactivate(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Connection{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *connectionRepo) StampSynced(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Connection{}).
		Where("id = ?", id).
		Update("last_sync_at", at).Error
}
