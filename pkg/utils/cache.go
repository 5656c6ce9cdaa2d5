package utils

import (
	"sync"
	"time"
)

// TTLCache 带过期时间的内存缓存
// 用于 webhook 重放抑制等短生命周期状态
// 注意：多进程部署下各进程独立，持久层的唯一约束才是最终幂等保障
type TTLCache struct {
	items sync.Map
	ttl   time.Duration
}

type cacheItem struct {
	value      string
	expiration int64
}

// NewTTLCache 创建缓存，ttl 为条目存活时间
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{ttl: ttl}
}

// Set 写入缓存
func (c *TTLCache) Set(key, value string) {
	c.items.Store(key, cacheItem{
		value:      value,
		expiration: time.Now().Add(c.ttl).UnixNano(),
	})
}

// Get 读取缓存并校验过期（懒删除）
func (c *TTLCache) Get(key string) (string, bool) {
	val, ok := c.items.Load(key)
	if !ok {
		return "", false
	}

	item := val.(cacheItem)
	if time.Now().UnixNano() > item.expiration {
		c.items.Delete(key)
		return "", false
	}

	return item.value, true
}

// SetIfAbsent 不存在（或已过期）时写入，返回是否写入成功
// 用于判定同一事件是否首次出现
func (c *TTLCache) SetIfAbsent(key, value string) bool {
	if _, ok := c.Get(key); ok {
		return false
	}
	c.Set(key, value)
	return true
}

// Delete 删除缓存（用完即焚）
func (c *TTLCache) Delete(key string) {
	c.items.Delete(key)
}
