package model

import (
	"time"
)

// BaseModel 公共字段
// 同步镜像表不使用软删除：自然键上有唯一索引，软删除残留行会挡住重新插入
type BaseModel struct {
	ID        int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
