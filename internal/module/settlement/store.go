package settlement

import (
	"context"
	"time"

	"challenge-settlement-system/internal/model"
	"challenge-settlement-system/internal/module/settlement/progress"
	"challenge-settlement-system/internal/module/wallet"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 结算持久化，Transaction 内拿到的 Store 以及它的 Wallet() 绑定同一个事务
// 查询不到时返回 nil, nil
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Wallet() wallet.Store

	GetChallenge(ctx context.Context, challengeID uint) (*model.Challenge, error)
	// ListMembers 按 id 升序，带上用户名
	ListMembers(ctx context.Context, challengeID uint) ([]model.ChallengeMember, error)
	FindMember(ctx context.Context, challengeID, userID uint) (*model.ChallengeMember, error)
	ListApprovedProofs(ctx context.Context, challengeID uint) ([]progress.Proof, error)
	// ListDueChallenges 有结束日期、结束日不晚于 before 且结算尚未冻结的挑战
	ListDueChallenges(ctx context.Context, before time.Time) ([]uint, error)

	GetSettlement(ctx context.Context, challengeID uint) (*model.Settlement, error)
	// LockSettlement SELECT ... FOR UPDATE
	LockSettlement(ctx context.Context, challengeID uint) (*model.Settlement, error)
	// CreateSettlement 已存在同一挑战的结算时什么都不做
	CreateSettlement(ctx context.Context, st *model.Settlement) error
	SaveSettlement(ctx context.Context, st *model.Settlement) error

	ListDetails(ctx context.Context, settlementID uint) ([]model.SettlementDetail, error)
	CreateDetail(ctx context.Context, d *model.SettlementDetail) error
	// UpdateDetail 只改奖励和达标情况
	UpdateDetail(ctx context.Context, d *model.SettlementDetail) error
	// LockDetail SELECT ... FOR UPDATE
	LockDetail(ctx context.Context, settlementID, memberID uint) (*model.SettlementDetail, error)
	MarkClaimed(ctx context.Context, detailID uint, at time.Time) error
	CountUnclaimed(ctx context.Context, settlementID uint) (int64, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Wallet() wallet.Store {
	return wallet.NewGormStore(s.db)
}

func first[T any](db *gorm.DB) (*T, error) {
	var list []T
	if err := db.Limit(1).Find(&list).Error; err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (s *gormStore) GetChallenge(ctx context.Context, challengeID uint) (*model.Challenge, error) {
	return first[model.Challenge](s.db.WithContext(ctx).Where("id = ?", challengeID))
}

func (s *gormStore) ListMembers(ctx context.Context, challengeID uint) ([]model.ChallengeMember, error) {
	var members []model.ChallengeMember
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("challenge_id = ?", challengeID).
		Order("id ASC").
		Find(&members).Error
	return members, err
}

func (s *gormStore) FindMember(ctx context.Context, challengeID, userID uint) (*model.ChallengeMember, error) {
	return first[model.ChallengeMember](s.db.WithContext(ctx).
		Where("challenge_id = ? AND user_id = ?", challengeID, userID))
}

func (s *gormStore) ListApprovedProofs(ctx context.Context, challengeID uint) ([]progress.Proof, error) {
	var rows []struct {
		ChallengeMemberID uint
		Date              time.Time
	}
	err := s.db.WithContext(ctx).Model(&model.ProofRecord{}).
		Select("challenge_member_id, date").
		Where("challenge_id = ? AND status = ?", challengeID, model.ProofApproved).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	proofs := make([]progress.Proof, 0, len(rows))
	for _, r := range rows {
		proofs = append(proofs, progress.Proof{MemberID: r.ChallengeMemberID, Date: r.Date})
	}
	return proofs, nil
}

func (s *gormStore) ListDueChallenges(ctx context.Context, before time.Time) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&model.Challenge{}).
		Joins("LEFT JOIN settlement ON settlement.challenge_id = challenge.id").
		Where("challenge.end_date IS NOT NULL AND challenge.end_date <= ?", before).
		Where("settlement.id IS NULL OR settlement.status IN ?",
			[]model.SettlementStatus{model.SettlementScheduled, model.SettlementProcessing}).
		Order("challenge.id ASC").
		Pluck("challenge.id", &ids).Error
	return ids, err
}

func (s *gormStore) GetSettlement(ctx context.Context, challengeID uint) (*model.Settlement, error) {
	return first[model.Settlement](s.db.WithContext(ctx).Where("challenge_id = ?", challengeID))
}

func (s *gormStore) LockSettlement(ctx context.Context, challengeID uint) (*model.Settlement, error) {
	return first[model.Settlement](s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("challenge_id = ?", challengeID))
}

func (s *gormStore) CreateSettlement(ctx context.Context, st *model.Settlement) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "challenge_id"}}, DoNothing: true}).
		Create(st).Error
}

func (s *gormStore) SaveSettlement(ctx context.Context, st *model.Settlement) error {
	return s.db.WithContext(ctx).Save(st).Error
}

func (s *gormStore) ListDetails(ctx context.Context, settlementID uint) ([]model.SettlementDetail, error) {
	var details []model.SettlementDetail
	err := s.db.WithContext(ctx).
		Where("settlement_id = ?", settlementID).
		Order("id ASC").
		Find(&details).Error
	return details, err
}

func (s *gormStore) CreateDetail(ctx context.Context, d *model.SettlementDetail) error {
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *gormStore) UpdateDetail(ctx context.Context, d *model.SettlementDetail) error {
	return s.db.WithContext(ctx).Model(&model.SettlementDetail{}).
		Where("id = ?", d.ID).
		Updates(map[string]any{
			"reward_point":  d.RewardPoint,
			"success_days":  d.SuccessDays,
			"required_days": d.RequiredDays,
			"is_success":    d.IsSuccess,
		}).Error
}

func (s *gormStore) LockDetail(ctx context.Context, settlementID, memberID uint) (*model.SettlementDetail, error) {
	return first[model.SettlementDetail](s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("settlement_id = ? AND challenge_member_id = ?", settlementID, memberID))
}

func (s *gormStore) MarkClaimed(ctx context.Context, detailID uint, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.SettlementDetail{}).
		Where("id = ? AND claimed_at IS NULL", detailID).
		Update("claimed_at", at).Error
}

func (s *gormStore) CountUnclaimed(ctx context.Context, settlementID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.SettlementDetail{}).
		Where("settlement_id = ? AND claimed_at IS NULL", settlementID).
		Count(&n).Error
	return n, err
}
