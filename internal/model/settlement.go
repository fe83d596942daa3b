package model

import (
	"time"

	"gorm.io/datatypes"
)

type SettlementStatus string

const (
	SettlementScheduled  SettlementStatus = "scheduled"  // 结束日次日零点之前
	SettlementProcessing SettlementStatus = "processing" // 计算中，可重算
	SettlementReady      SettlementStatus = "ready"      // 金额已冻结，等待领取
	SettlementPaid       SettlementStatus = "paid"       // 全员已领取
)

// Frozen 金额冻结后不再重算
func (s SettlementStatus) Frozen() bool {
	return s == SettlementReady || s == SettlementPaid
}

// Settlement 每个挑战最多一条，challenge_id 唯一索引保证
type Settlement struct {
	ID             uint                               `gorm:"primaryKey" json:"settlement_id"`
	ChallengeID    uint                               `gorm:"not null;uniqueIndex" json:"challenge_id"`
	Method         SettleMethod                       `gorm:"not null" json:"method"`
	Status         SettlementStatus                   `gorm:"type:varchar(16);not null;default:scheduled;index" json:"status"`
	TotalPoolPoint int64                              `gorm:"not null;default:0" json:"total_pool_point"`
	ScheduledAt    *time.Time                         `gorm:"index" json:"scheduled_at"`
	SettledAt      *time.Time                         `json:"settled_at"`
	Meta           datatypes.JSONType[SettlementMeta] `gorm:"type:json" json:"meta"`
	CreatedAt      time.Time                          `json:"created_at"`
	UpdatedAt      time.Time                          `json:"updated_at"`
}

// SettlementMeta 分配规则说明，随结算一起保存，READY 之后查询仍可展示
type SettlementMeta struct {
	RuleText            string    `json:"rule_text"`
	Rounding            *Rounding `json:"rounding,omitempty"`
	PlatformGainPoints  *int64    `json:"platform_gain_points,omitempty"`
	UndistributedPoints *int64    `json:"undistributed_points,omitempty"`
}

// Rounding 取整说明（方式 3）
type Rounding struct {
	BaseShare        int64  `json:"base_share"`
	Remainder        int64  `json:"remainder"`
	RoundingPolicy   string `json:"rounding_policy"`
	RoundedUpUserIDs []uint `json:"rounded_up_user_ids"`
}

// SettlementDetail 每个 (settlement, member) 一条，ClaimedAt 只会从 nil 变为时间一次；
// SuccessDays / RequiredDays / IsSuccess 是结算时的达标情况，冻结后和奖励一起展示
type SettlementDetail struct {
	ID                uint       `gorm:"primaryKey" json:"detail_id"`
	SettlementID      uint       `gorm:"not null;index:uniq_settlement_member,unique" json:"settlement_id"`
	ChallengeMemberID uint       `gorm:"not null;index:uniq_settlement_member,unique" json:"challenge_member_id"`
	RewardPoint       int64      `gorm:"not null;default:0" json:"reward_point"`
	SuccessDays       int        `gorm:"not null;default:0" json:"success_days"`
	RequiredDays      int        `gorm:"not null;default:0" json:"required_days"`
	IsSuccess         bool       `gorm:"not null;default:false" json:"is_success"`
	ClaimedAt         *time.Time `json:"claimed_at"`
	CreatedAt         time.Time  `json:"created_at"`
}
