package wallet

import (
	"context"
	"errors"
	"time"

	"challenge-settlement-system/internal/model"
)

var (
	ErrInvalidAmount      = errors.New("wallet: amount must be positive")
	ErrInsufficientPoints = errors.New("wallet: insufficient points")
	ErrUserNotFound       = errors.New("wallet: user not found")
)

// Entry 一次积分变动
type Entry struct {
	UserID       uint
	Delta        int64
	Description  string
	ChallengeID  *uint
	SettlementID *uint
	Kind         model.PointHistoryType
}

// Ledger 余额只在这里修改：锁用户行、改余额、追加一条流水
type Ledger struct {
	store Store
	now   func() time.Time
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// WithClock 测试用，固定流水时间
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// ApplyPoints 在调用方的事务 tx 中记账，返回的流水带记账后余额和时间
func (l *Ledger) ApplyPoints(ctx context.Context, tx Store, e Entry) (*model.PointHistory, error) {
	user, err := tx.LockUser(ctx, e.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	balance := user.PointBalance + e.Delta
	if balance < 0 {
		return nil, ErrInsufficientPoints
	}
	if err = tx.UpdateBalance(ctx, e.UserID, balance); err != nil {
		return nil, err
	}

	kind := e.Kind
	if kind == "" {
		kind = model.HistoryReward
		if e.Delta < 0 {
			kind = model.HistoryJoin
		}
	}
	h := &model.PointHistory{
		UserID:       e.UserID,
		ChallengeID:  e.ChallengeID,
		SettlementID: e.SettlementID,
		Type:         kind,
		Amount:       e.Delta,
		BalanceAfter: balance,
		Description:  e.Description,
		OccurredAt:   l.now().Truncate(model.TimePrecision),
	}
	if err = tx.CreateHistory(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Charge 充值，独立事务
func (l *Ledger) Charge(ctx context.Context, userID uint, amount int64, description string) (*model.PointHistory, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	var h *model.PointHistory
	err := l.store.Transaction(ctx, func(tx Store) (err error) {
		h, err = l.ApplyPoints(ctx, tx, Entry{
			UserID:      userID,
			Delta:       amount,
			Description: description,
			Kind:        model.HistoryCharge,
		})
		return
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (l *Ledger) Balance(ctx context.Context, userID uint) (int64, error) {
	user, err := l.store.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrUserNotFound
	}
	return user.PointBalance, nil
}

func (l *Ledger) History(ctx context.Context, userID uint, offset, limit int) ([]model.PointHistory, int64, error) {
	return l.store.ListHistory(ctx, userID, offset, limit)
}
