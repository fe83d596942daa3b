package settlement

import (
	"context"
	"time"

	"challenge-settlement-system/tools"

	"github.com/xuri/excelize/v2"
)

type exportRow struct {
	UserID       uint       `excel:"用户ID"`
	Name         string     `excel:"姓名"`
	SuccessDays  int        `excel:"成功天数"`
	RequiredDays int        `excel:"要求天数"`
	IsSuccess    bool       `excel:"是否达标"`
	RewardPoints int64      `excel:"奖励积分"`
	ClaimedAt    *time.Time `excel:"领取时间"`
}

// Export 导出已冻结结算的分配明细
func (e *Engine) Export(ctx context.Context, challengeID uint) (*excelize.File, error) {
	ch, err := e.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrNotFound
	}
	st, err := e.store.GetSettlement(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if st == nil || !st.Status.Frozen() {
		return nil, ErrNotReady
	}
	view, err := e.Status(ctx, challengeID, 0)
	if err != nil {
		return nil, err
	}

	rows := make([]exportRow, 0, len(view.Allocations))
	for _, a := range view.Allocations {
		rows = append(rows, exportRow{
			UserID:       a.UserID,
			Name:         a.Name,
			SuccessDays:  a.SuccessDays,
			RequiredDays: a.RequiredDays,
			IsSuccess:    a.IsSuccess,
			RewardPoints: a.RewardPoints,
			ClaimedAt:    a.ClaimedAt,
		})
	}

	f := excelize.NewFile()
	if err = tools.WriteSheet(f, "结算明细", rows); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}
