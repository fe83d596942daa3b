package model

import (
	"time"

	"gorm.io/gorm"
)

// TimePrecision DATETIME(3) 列能保存的精度，写库的时间先截断到这个精度
const TimePrecision = time.Millisecond

// Model 软删除的公共字段；结算相关的表不软删除，不使用它
type Model struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
