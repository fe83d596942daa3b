package model

import "time"

type PointHistoryType string

const (
	HistoryCharge PointHistoryType = "CHARGE" // 充值
	HistoryJoin   PointHistoryType = "JOIN"   // 报名费扣除
	HistoryReward PointHistoryType = "REWARD" // 结算奖励
)

// PointHistory 积分流水，只追加不修改
type PointHistory struct {
	ID           uint             `gorm:"primaryKey" json:"point_history_id"`
	UserID       uint             `gorm:"not null;index:idx_user_occurred" json:"user_id"`
	ChallengeID  *uint            `gorm:"index" json:"challenge_id"`
	SettlementID *uint            `gorm:"index" json:"settlement_id"`
	Type         PointHistoryType `gorm:"type:varchar(12);not null;index" json:"type"`
	Amount       int64            `gorm:"not null" json:"amount"`        // 正数入账，负数扣除
	BalanceAfter int64            `gorm:"not null" json:"balance_after"` // 记账后的余额
	Description  string           `gorm:"type:varchar(255)" json:"description"`
	OccurredAt   time.Time        `gorm:"not null;index:idx_user_occurred" json:"occurred_at"`
	CreatedAt    time.Time        `json:"created_at"`
}
