// Package wallettest 提供内存版钱包存储，测试里代替 MySQL
package wallettest

import (
	"context"
	"sort"
	"sync"

	"challenge-settlement-system/internal/model"
	"challenge-settlement-system/internal/module/wallet"
)

// MemStore Transaction 持有全局互斥锁，相当于把所有行锁串行化；
// fn 返回错误时回滚到进入事务前的状态
type MemStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users     map[uint]model.User
	histories []model.PointHistory
	nextID    uint
}

func NewMemStore(users ...model.User) *MemStore {
	s := &MemStore{users: make(map[uint]model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *MemStore) Transaction(ctx context.Context, fn func(tx wallet.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.InTx(func() error { return fn(s) })
}

// InTx 在调用方已持有锁的前提下提供回滚，供组合存储复用
func (s *MemStore) InTx(fn func() error) error {
	s.mu.Lock()
	users := make(map[uint]model.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	histories := append([]model.PointHistory(nil), s.histories...)
	nextID := s.nextID
	s.mu.Unlock()

	if err := fn(); err != nil {
		s.mu.Lock()
		s.users, s.histories, s.nextID = users, histories, nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemStore) LockUser(_ context.Context, userID uint) (*model.User, error) {
	return s.GetUser(context.Background(), userID)
}

func (s *MemStore) GetUser(_ context.Context, userID uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemStore) UpdateBalance(_ context.Context, userID uint, balance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	u.PointBalance = balance
	s.users[userID] = u
	return nil
}

func (s *MemStore) CreateHistory(_ context.Context, h *model.PointHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	h.ID = s.nextID
	stored := *h
	// 和 DATETIME(3) 列一样按毫秒舍入
	stored.OccurredAt = h.OccurredAt.Round(model.TimePrecision)
	s.histories = append(s.histories, stored)
	return nil
}

func (s *MemStore) ListHistory(_ context.Context, userID uint, offset, limit int) ([]model.PointHistory, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []model.PointHistory
	for _, h := range s.histories {
		if h.UserID == userID {
			list = append(list, h)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].OccurredAt.Equal(list[j].OccurredAt) {
			return list[i].OccurredAt.After(list[j].OccurredAt)
		}
		return list[i].ID > list[j].ID
	})
	total := int64(len(list))
	if offset >= len(list) {
		return nil, total, nil
	}
	end := min(offset+limit, len(list))
	return list[offset:end], total, nil
}

// Balance 测试断言用
func (s *MemStore) Balance(userID uint) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID].PointBalance
}

// Histories 返回所有流水的副本
func (s *MemStore) Histories() []model.PointHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.PointHistory(nil), s.histories...)
}
