package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"shopify_sync_v1/internal/middleware"
	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/internal/service"
)

// ==================== CatalogSyncTask 目录同步定时任务 ====================

// CatalogSyncTask 周期性对所有启用连接执行全量同步
// 同一连接的并发互斥在 SyncService 内部保证，这里只负责调度；
// 执行完成后标记冷却窗口，和手动触发共享同一套限流
type CatalogSyncTask struct {
	connRepo repository.ConnectionRepository
	syncSvc  *service.SyncService
	cron     *cron.Cron
	spec     string
	logger   *zap.Logger
}

// NewCatalogSyncTask 创建目录同步任务
func NewCatalogSyncTask(
	connRepo repository.ConnectionRepository,
	syncSvc *service.SyncService,
	spec string,
	logger *zap.Logger,
) *CatalogSyncTask {
	if spec == "" {
		spec = "@every 30m"
	}
	return &CatalogSyncTask{
		connRepo: connRepo,
		syncSvc:  syncSvc,
		cron:     cron.New(),
		spec:     spec,
		logger:   logger,
	}
}

// Start 启动定时任务
func (t *CatalogSyncTask) Start() {
	// 首次执行延迟 30 秒，避开进程启动高峰
	go func() {
		time.Sleep(30 * time.Second)
		t.syncAllConnections()
	}()

	_, err := t.cron.AddFunc(t.spec, t.syncAllConnections)
	if err != nil {
		t.logger.Error("定时任务启动失败", zap.Error(err))
		return
	}

	t.cron.Start()
	t.logger.Info("目录同步任务已启动", zap.String("spec", t.spec))
}

// Stop 停止任务，等待进行中的执行结束
func (t *CatalogSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.logger.Info("目录同步任务已停止")
}

// syncAllConnections 逐连接串行全量同步
// 串行而非并发：远端对同一 app 的配额是全局的，并发只会换来限流
func (t *CatalogSyncTask) syncAllConnections() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	conns, err := t.connRepo.ListActive(ctx)
	if err != nil {
		t.logger.Error("拉取连接列表失败", zap.Error(err))
		return
	}

	for i := range conns {
		conn := &conns[i]
		summary, err := t.syncSvc.FullSync(ctx, conn.ID)
		if err != nil {
			t.logger.Error("定时全量同步失败",
				zap.Int64("connection_id", conn.ID),
				zap.String("shop_domain", conn.ShopDomain),
				zap.Error(err))
			continue
		}
		middleware.MarkSyncExecuted(conn.ID)
		t.logger.Info("定时全量同步完成",
			zap.Int64("connection_id", conn.ID),
			zap.Int("created", summary.Created),
			zap.Int("updated", summary.Updated),
			zap.Int("removed", summary.Removed),
			zap.Int("errors", len(summary.Errors)))
	}
}
