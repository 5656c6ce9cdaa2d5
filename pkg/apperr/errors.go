package apperr

import (
	"fmt"
	"strings"
	"time"
)

// ==================== 业务错误类型 ====================

// ConnectionError 连接类错误（域名/Token/店铺不存在）
type ConnectionError struct {
	Message string
}

func (e *ConnectionError) Error() string {
	if e.Message != "" {
		return "connection error: " + e.Message
	}
	return "connection error"
}

// ApiError 远端 API 通用错误（携带状态码与原始消息）
type ApiError struct {
	Status   int
	Messages []string
}

func (e *ApiError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("api error [%d]: %s", e.Status, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("api error [%d]", e.Status)
}

// NewApiError 创建 API 错误
func NewApiError(status int, msgs ...string) *ApiError {
	return &ApiError{Status: status, Messages: msgs}
}

// RateLimitError 限流错误，携带最小重试间隔
// 传输层不做自动重试，由调用方决定退避策略
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// ValidationError 业务校验错误（跨租户访问、商品不存在等）
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// InsufficientStockError 库存不足错误，携带当前可用数量
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// DecryptionError 解密错误（格式损坏或密钥不匹配）
type DecryptionError struct {
	Message string
}

func (e *DecryptionError) Error() string {
	if e.Message != "" {
		return "decryption failed: " + e.Message
	}
	return "decryption failed"
}
