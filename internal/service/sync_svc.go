package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shopify_sync_v1/internal/model"
	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/pkg/apperr"
	"shopify_sync_v1/pkg/shopify"
)

// remoteStatusActive 只有该状态的商品参与同步，draft/archived 一律跳过
const remoteStatusActive = "ACTIVE"

// SyncSummary 一次全量同步的结果
// 单个条目失败只记入 Errors，不中断整轮；部分成功是预期结果
type SyncSummary struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Removed int      `json:"removed"`
	Errors  []string `json:"errors"`
}

// SyncRun 最近一次全量同步的记录，仅进程内存，重启即清零
type SyncRun struct {
	Summary    SyncSummary `json:"summary"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

// SyncService 目录同步引擎
type SyncService struct {
	connRepo    repository.ConnectionRepository
	productRepo repository.ProductRepository
	factory     ClientFactory
	pageSize    int
	locks       *keyedMutex
	lastRuns    sync.Map // connectionID -> *SyncRun
	logger      *zap.Logger
}

// NewSyncService 创建同步引擎
func NewSyncService(
	connRepo repository.ConnectionRepository,
	productRepo repository.ProductRepository,
	factory ClientFactory,
	pageSize int,
	logger *zap.Logger,
) *SyncService {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &SyncService{
		connRepo:    connRepo,
		productRepo: productRepo,
		factory:     factory,
		pageSize:    pageSize,
		locks:       newKeyedMutex(),
		logger:      logger,
	}
}

// FullSync 对单个连接执行全量同步
//  1. 快照当前本地自然键集合 before
//  2. 串行翻页拉取远端目录，ACTIVE 商品逐变体按自然键 upsert
//  3. 删除 before 中未被本轮触达的行
//  4. 盖上连接的同步时间戳
//
// 同一连接的全量同步必须单飞，见 keyedMutex
func (s *SyncService) FullSync(ctx context.Context, connectionID int64) (*SyncSummary, error) {
	unlock := s.locks.Lock(connectionID)
	defer unlock()

	startedAt := time.Now()

	conn, err := s.connRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.IsActive {
		return nil, &apperr.ValidationError{Message: "连接已停用"}
	}

	client, err := s.factory(conn)
	if err != nil {
		return nil, err
	}

	before, err := s.productRepo.ListNaturalKeys(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	summary := &SyncSummary{Errors: []string{}}
	synced := make(map[string]struct{})

	cursor := ""
	for {
		page, err := client.GetProducts(ctx, s.pageSize, cursor)
		if err != nil {
			// 翻页失败无法继续，但已 upsert 的行保留，不做删除步骤
			return nil, err
		}

		for _, remote := range page.Items {
			if remote.Status != remoteStatusActive {
				continue
			}
			for _, variant := range remote.Variants {
				key, err := s.upsertVariant(ctx, conn, &remote, &variant)
				if err != nil {
					summary.Errors = append(summary.Errors,
						fmt.Sprintf("product %s variant %s: %v", remote.ID, variant.ID, err))
					continue
				}
				if _, existed := before[key]; existed {
					summary.Updated++
				} else {
					summary.Created++
				}
				synced[key] = struct{}{}
			}
		}

		if !page.HasNextPage {
			break
		}
		cursor = page.EndCursor
	}

	// 删除本轮未触达的本地行
	var stale []string
	for key := range before {
		if _, ok := synced[key]; !ok {
			stale = append(stale, key)
		}
	}
	removed, err := s.productRepo.DeleteByNaturalKeys(ctx, connectionID, stale)
	if err != nil {
		return nil, err
	}
	summary.Removed = int(removed)

	now := time.Now()
	if err := s.connRepo.StampSynced(ctx, connectionID, now); err != nil {
		return nil, err
	}

	s.lastRuns.Store(connectionID, &SyncRun{
		Summary:    *summary,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	})

	s.logger.Info("全量同步完成",
		zap.Int64("connection_id", connectionID),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("removed", summary.Removed),
		zap.Int("errors", len(summary.Errors)))
	return summary, nil
}

// LastRun 最近一次成功的全量同步记录，本进程启动以来没有则返回 nil
func (s *SyncService) LastRun(connectionID int64) *SyncRun {
	if v, ok := s.lastRuns.Load(connectionID); ok {
		return v.(*SyncRun)
	}
	return nil
}

// SyncProduct 单商品增量同步（webhook 驱动）
// 远端不存在或已不是 ACTIVE 状态时删除本地所有对应行，统一承接删除/下架事件；
// 否则逐变体 upsert，并清掉本轮未出现的旧变体行
func (s *SyncService) SyncProduct(ctx context.Context, conn *model.Connection, platformProductID string) error {
	client, err := s.factory(conn)
	if err != nil {
		return err
	}

	remote, err := client.GetProduct(ctx, shopify.GID("Product", platformProductID))
	if err != nil {
		return err
	}
	if remote == nil || remote.Status != remoteStatusActive {
		return s.DeleteProduct(ctx, conn, platformProductID)
	}

	seen := make(map[string]struct{})
	for _, variant := range remote.Variants {
		key, err := s.upsertVariant(ctx, conn, remote, &variant)
		if err != nil {
			return err
		}
		seen[key] = struct{}{}
	}

	// 清理该商品下已消失的变体
	existing, err := s.productRepo.ListNaturalKeys(ctx, conn.ID)
	if err != nil {
		return err
	}
	var stale []string
	for key := range existing {
		if _, ok := seen[key]; ok {
			continue
		}
		if keyProductID(key) == platformProductID {
			stale = append(stale, key)
		}
	}
	_, err = s.productRepo.DeleteByNaturalKeys(ctx, conn.ID, stale)
	return err
}

// DeleteProduct 删除某远端商品的全部本地行
func (s *SyncService) DeleteProduct(ctx context.Context, conn *model.Connection, platformProductID string) error {
	removed, err := s.productRepo.DeleteByPlatformProduct(ctx, conn.ID, platformProductID)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Info("商品镜像已删除",
			zap.Int64("connection_id", conn.ID),
			zap.String("platform_product_id", platformProductID),
			zap.Int64("rows", removed))
	}
	return nil
}

// upsertVariant 单变体自然键 upsert，返回自然键
func (s *SyncService) upsertVariant(ctx context.Context, conn *model.Connection, remote *shopify.RemoteProduct, variant *shopify.RemoteVariant) (string, error) {
	now := time.Now()
	row := &model.Product{
		ConnectionID:        conn.ID,
		TenantID:            conn.TenantID,
		PlatformProductID:   shopify.NumericID(remote.ID),
		PlatformVariantID:   shopify.NumericID(variant.ID),
		InventoryItemID:     shopify.NumericID(variant.InventoryItemID),
		Title:               remote.Title,
		VariantTitle:        variant.Title,
		Description:         remote.Description,
		Vendor:              remote.Vendor,
		ProductType:         remote.ProductType,
		SKU:                 variant.SKU,
		Images:              remote.Images,
		PriceCents:          priceToCents(variant.Price),
		CompareAtPriceCents: priceToCents(variant.CompareAtPrice),
		InventoryQuantity:   maxInt(variant.InventoryQuantity, 0),
		LastSyncedAt:        &now,
	}
	if err := s.productRepo.Upsert(ctx, row); err != nil {
		return "", err
	}
	return row.NaturalKey(), nil
}

// priceToCents "12.34" -> 1234；空串或解析失败按 0 处理
func priceToCents(price string) int64 {
	if price == "" {
		return 0
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return 0
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// keyProductID 自然键的商品 ID 部分
func keyProductID(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			return key[:i]
		}
	}
	return key
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
