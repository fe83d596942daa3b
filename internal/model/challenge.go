package model

import "time"

type FreqType string

const (
	FreqDaily        FreqType = "DAILY"
	FreqWeekdays     FreqType = "WEEKDAYS"
	FreqWeekends     FreqType = "WEEKENDS"
	FreqNDaysPerWeek FreqType = "N_DAYS_PER_WEEK"
)

// SettleMethod 结算方式，创建挑战时确定
type SettleMethod int

const (
	MethodNToOneWinner  SettleMethod = 1 // 成功者之间均分
	MethodProportional  SettleMethod = 2 // 按成功天数比例分配
	MethodRefundPlusAll SettleMethod = 3 // 成功者退还报名费，剩余全员均分
	MethodDonateFailFee SettleMethod = 4 // 失败者报名费归平台
)

func (m SettleMethod) Valid() bool {
	return m >= MethodNToOneWinner && m <= MethodDonateFailFee
}

type ChallengeStatus string

const (
	ChallengeDraft  ChallengeStatus = "draft"
	ChallengeActive ChallengeStatus = "active"
	ChallengeEnded  ChallengeStatus = "ended"
)

// Challenge 由挑战模块维护，结算只读
type Challenge struct {
	Model
	Title         string          `gorm:"type:varchar(200);not null" json:"title"`
	EntryFee      int64           `gorm:"not null;default:0" json:"entry_fee"`
	DurationWeeks int             `gorm:"not null;default:1" json:"duration_weeks"`
	FreqType      FreqType        `gorm:"type:varchar(20);not null;default:DAILY" json:"freq_type"`
	FreqNDays     *int            `json:"freq_n_days"` // 仅 N_DAYS_PER_WEEK 有效，1-6
	SettleMethod  SettleMethod    `gorm:"not null;default:1" json:"settlement_method"`
	Status        ChallengeStatus `gorm:"type:varchar(10);not null;default:draft;index" json:"status"`
	StartDate     *time.Time      `gorm:"type:date;index" json:"start_date"`
	EndDate       *time.Time      `gorm:"type:date;index" json:"end_date"`
}

type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

// ChallengeMember 参与记录，每个 (challenge, user) 一条
type ChallengeMember struct {
	Model
	ChallengeID uint       `gorm:"not null;index:idx_challenge_user,unique" json:"challenge_id"`
	UserID      uint       `gorm:"not null;index:idx_challenge_user,unique" json:"user_id"`
	Role        MemberRole `gorm:"type:varchar(10);not null;default:member" json:"role"`
	User        User       `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

type ProofStatus string

const (
	ProofPending  ProofStatus = "pending"
	ProofApproved ProofStatus = "approved"
	ProofRejected ProofStatus = "rejected"
)

// ProofRecord 认证打卡记录，只有 approved 计入进度
type ProofRecord struct {
	Model
	ChallengeMemberID uint        `gorm:"not null;index" json:"challenge_member_id"`
	ChallengeID       uint        `gorm:"not null;index" json:"challenge_id"`
	Status            ProofStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	Date              time.Time   `gorm:"type:date;not null" json:"date"`
}
