package wallet

import (
	"context"

	"challenge-settlement-system/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 钱包持久化，Transaction 内拿到的 Store 绑定同一个事务
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error
	// LockUser SELECT ... FOR UPDATE，用户不存在返回 nil, nil
	LockUser(ctx context.Context, userID uint) (*model.User, error)
	GetUser(ctx context.Context, userID uint) (*model.User, error)
	UpdateBalance(ctx context.Context, userID uint, balance int64) error
	CreateHistory(ctx context.Context, h *model.PointHistory) error
	ListHistory(ctx context.Context, userID uint, offset, limit int) ([]model.PointHistory, int64, error)
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

func (s *gormStore) LockUser(ctx context.Context, userID uint) (*model.User, error) {
	return s.findUser(s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (s *gormStore) GetUser(ctx context.Context, userID uint) (*model.User, error) {
	return s.findUser(s.db.WithContext(ctx), userID)
}

func (s *gormStore) findUser(db *gorm.DB, userID uint) (*model.User, error) {
	var users []model.User
	if err := db.Where("id = ? AND deleted_at IS NULL", userID).Limit(1).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (s *gormStore) UpdateBalance(ctx context.Context, userID uint, balance int64) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("point_balance", balance).Error
}

func (s *gormStore) CreateHistory(ctx context.Context, h *model.PointHistory) error {
	return s.db.WithContext(ctx).Create(h).Error
}

func (s *gormStore) ListHistory(ctx context.Context, userID uint, offset, limit int) ([]model.PointHistory, int64, error) {
	var (
		list  []model.PointHistory
		total int64
	)
	wrapper := s.db.WithContext(ctx).Model(&model.PointHistory{}).Where("user_id = ?", userID)
	if err := wrapper.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := wrapper.
		Order("occurred_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
