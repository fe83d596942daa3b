package model

type User struct {
	Model
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	RoleID       int    `gorm:"default:0;not null" json:"role_id"`
	PointBalance int64  `gorm:"default:0;not null" json:"point_balance"` // 当前积分余额，只能通过 wallet 账本修改
}
