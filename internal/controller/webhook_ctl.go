package controller

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopify_sync_v1/internal/service"
	"shopify_sync_v1/pkg/utils"
)

// ==================== Webhook 入口 ====================

// WebhookController 外部平台 webhook 入口
// 该路由不走租户中间件，租户归属由发送方店铺域名反查
type WebhookController struct {
	webhookSvc *service.WebhookService
	secret     string
	seen       *utils.TTLCache // webhook id 去重，短窗口内抑制重放
	logger     *zap.Logger
}

// NewWebhookController 创建 webhook 控制器
func NewWebhookController(webhookSvc *service.WebhookService, secret string, logger *zap.Logger) *WebhookController {
	return &WebhookController{
		webhookSvc: webhookSvc,
		secret:     secret,
		seen:       utils.NewTTLCache(10 * time.Minute),
		logger:     logger,
	}
}

// Handle 接收 webhook
// 签名必须算在原始请求体上，所以先读 raw body 再做任何解析；
// 业务上的无操作（未知店铺、非推荐订单）一律返回 200，
// 只有签名不合法 401、处理出错 500 时平台才会重投
func (c *WebhookController) Handle(ctx *gin.Context) {
	rawBody, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "读取请求体失败"})
		return
	}

	signature := ctx.GetHeader("X-Shopify-Hmac-Sha256")
	if !service.VerifySignature(rawBody, signature, c.secret) {
		c.logger.Warn("webhook 签名校验失败",
			zap.String("domain", ctx.GetHeader("X-Shopify-Shop-Domain")))
		ctx.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "签名校验失败"})
		return
	}

	topic := ctx.GetHeader("X-Shopify-Topic")
	domain := ctx.GetHeader("X-Shopify-Shop-Domain")

	// 短窗口去重只是降噪，跨进程的幂等靠存储层唯一约束
	if webhookID := ctx.GetHeader("X-Shopify-Webhook-Id"); webhookID != "" {
		if !c.seen.SetIfAbsent(webhookID, topic) {
			ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "duplicate"})
			return
		}
	}

	if err := c.webhookSvc.Dispatch(ctx.Request.Context(), topic, domain, rawBody); err != nil {
		c.logger.Error("webhook 处理失败",
			zap.String("topic", topic),
			zap.String("domain", domain),
			zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "处理失败"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok"})
}
