package settlement

import (
	"context"
	"errors"
	"time"

	"challenge-settlement-system/internal/model"
	"challenge-settlement-system/internal/module/settlement/distribute"
	"challenge-settlement-system/internal/module/settlement/progress"
)

type AllocationView struct {
	progress.Verdict
	RewardPoints int64      `json:"reward_points"`
	ClaimedAt    *time.Time `json:"-"`
}

type MyView struct {
	UserID    uint       `json:"user_id"`
	MyReward  int64      `json:"my_reward"`
	CanClaim  bool       `json:"can_claim"`
	ClaimedAt *time.Time `json:"claimed_at"`
}

// StatusView 奖励状态；SCHEDULED 和 PROCESSING 时没有分配结果
type StatusView struct {
	ChallengeID         uint                   `json:"challenge_id"`
	Title               string                 `json:"title"`
	EntryFee            int64                  `json:"entry_fee"`
	PotTotal            int64                  `json:"pot_total"`
	ParticipantCount    int                    `json:"participant_count"`
	RequiredDays        int                    `json:"required_days"`
	SettlementMethod    model.SettleMethod     `json:"settlement_method"`
	Status              model.SettlementStatus `json:"status"`
	ScheduledAt         *time.Time             `json:"scheduled_at"`
	ProcessedAt         *time.Time             `json:"processed_at"`
	RuleText            string                 `json:"rule_text"`
	Rounding            *model.Rounding        `json:"rounding,omitempty"`
	PlatformGainPoints  *int64                 `json:"platform_gain_points,omitempty"`
	UndistributedPoints *int64                 `json:"undistributed_points,omitempty"`
	Message             string                 `json:"message,omitempty"`
	Allocations         []AllocationView       `json:"allocations"`
	My                  MyView                 `json:"my"`
}

// Status 查询奖励状态，到期且尚未结算时顺带触发一次结算
func (e *Engine) Status(ctx context.Context, challengeID, userID uint) (*StatusView, error) {
	ch, err := e.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrNotFound
	}
	members, err := e.store.ListMembers(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	required, _ := progress.RequiredDays(ch)
	view := &StatusView{
		ChallengeID:      ch.ID,
		Title:            ch.Title,
		EntryFee:         ch.EntryFee,
		PotTotal:         ch.EntryFee * int64(len(members)),
		ParticipantCount: len(members),
		RequiredDays:     required,
		SettlementMethod: ch.SettleMethod,
		Status:           model.SettlementScheduled,
		ScheduledAt:      e.ScheduledAt(ch),
		RuleText:         distribute.RuleText[ch.SettleMethod],
		Allocations:      []AllocationView{},
		My:               MyView{UserID: userID},
	}

	st, err := e.store.GetSettlement(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if st == nil && (view.ScheduledAt == nil || e.now().Before(*view.ScheduledAt)) {
		view.Message = msgScheduled
		return view, nil
	}
	if st == nil || !st.Status.Frozen() {
		st, err = e.Run(ctx, challengeID)
		switch {
		case errors.Is(err, ErrNotReady):
			view.Message = msgScheduled
			return view, nil
		case errors.Is(err, ErrBusy):
			view.Status = model.SettlementProcessing
			return view, nil
		case err != nil:
			return nil, err
		}
		// Run 可能新增了成员
		if members, err = e.store.ListMembers(ctx, challengeID); err != nil {
			return nil, err
		}
	}

	details, err := e.store.ListDetails(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	byMember := make(map[uint]*model.ChallengeMember, len(members))
	for i := range members {
		byMember[members[i].ID] = &members[i]
	}

	meta := st.Meta.Data()
	view.PotTotal = st.TotalPoolPoint
	view.ParticipantCount = len(members)
	view.SettlementMethod = st.Method
	view.Status = st.Status
	if st.ScheduledAt != nil {
		view.ScheduledAt = st.ScheduledAt
	}
	view.ProcessedAt = st.SettledAt
	view.RuleText = meta.RuleText
	view.Rounding = meta.Rounding
	view.PlatformGainPoints = meta.PlatformGainPoints
	view.UndistributedPoints = meta.UndistributedPoints

	// 达标情况取结算时写入的值，之后通过的认证不影响已冻结的结果
	for _, d := range details {
		v := progress.Verdict{
			MemberID:     d.ChallengeMemberID,
			SuccessDays:  d.SuccessDays,
			RequiredDays: d.RequiredDays,
			IsSuccess:    d.IsSuccess,
		}
		m, ok := byMember[d.ChallengeMemberID]
		if ok {
			// 成员已退出时明细保留，但没有用户信息
			v.UserID, v.Name = m.UserID, m.User.Name
		}
		view.Allocations = append(view.Allocations, AllocationView{Verdict: v, RewardPoints: d.RewardPoint, ClaimedAt: d.ClaimedAt})
		if ok && v.UserID == userID {
			view.My.MyReward = d.RewardPoint
			view.My.ClaimedAt = d.ClaimedAt
		}
	}
	view.My.CanClaim = st.Status == model.SettlementReady && view.My.MyReward > 0 && view.My.ClaimedAt == nil
	return view, nil
}
