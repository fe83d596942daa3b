package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"challenge-settlement-system/internal/global/logger"
	"challenge-settlement-system/internal/model"
	"challenge-settlement-system/internal/module/settlement/distribute"
	"challenge-settlement-system/internal/module/settlement/progress"
	"challenge-settlement-system/internal/module/wallet"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
)

var (
	ErrNotFound    = errors.New("settlement: challenge not found")
	ErrNotReady    = errors.New("settlement: not ready")
	ErrForbidden   = errors.New("settlement: not a participant")
	ErrNotAssigned = errors.New("settlement: no allocation for participant")
	ErrBusy        = errors.New("settlement: run in progress")
)

const (
	msgCredited       = "结算奖励已存入钱包"
	msgNoReward       = "没有可领取的奖励"
	msgAlreadyClaimed = "奖励已经领取过"
	msgScheduled      = "结算将在挑战结束日次日零点进行"
)

// Engine 结算编排与领取
// 运行在结算行锁内完成重算、写明细、置为 READY；领取依次锁结算行、明细行、用户行
type Engine struct {
	store  Store
	ledger *wallet.Ledger
	guard  Guard
	loc    *time.Location
	now    func() time.Time
	log    *slog.Logger
	tracer trace.Tracer
}

func NewEngine(store Store, ledger *wallet.Ledger, guard Guard, loc *time.Location) *Engine {
	if guard == nil {
		guard = noopGuard{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		store:  store,
		ledger: ledger,
		guard:  guard,
		loc:    loc,
		now:    time.Now,
		log:    logger.New("Settlement"),
		tracer: otel.Tracer("challenge-settlement-system/settlement"),
	}
}

// WithClock 测试用
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ScheduledAt 结束日次日零点（结算时区），没有结束日期返回 nil
func (e *Engine) ScheduledAt(ch *model.Challenge) *time.Time {
	if ch.EndDate == nil {
		return nil
	}
	y, m, d := ch.EndDate.Date()
	t := time.Date(y, m, d+1, 0, 0, 0, 0, e.loc)
	return &t
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Run 结算一个挑战。READY/PAID 原样返回；未到时间返回 ErrNotReady；
// 其他进程正在运行时返回 ErrBusy，调用方稍后重试即可
func (e *Engine) Run(ctx context.Context, challengeID uint) (st *model.Settlement, err error) {
	ctx, span := e.tracer.Start(ctx, "settlement.run",
		trace.WithAttributes(attribute.Int64("challenge_id", int64(challengeID))))
	defer func() { endSpan(span, err) }()

	release, ok, err := e.guard.Acquire(ctx, challengeID)
	if err != nil {
		// 只剩行锁保护，结果仍然正确
		e.log.Warn("获取结算运行锁失败", "challenge_id", challengeID, "error", err)
		release, err = func() {}, nil
	} else if !ok {
		return nil, ErrBusy
	}
	defer release()

	err = e.store.Transaction(ctx, func(tx Store) error {
		st, err = e.runLocked(ctx, tx, challengeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (e *Engine) runLocked(ctx context.Context, tx Store, challengeID uint) (*model.Settlement, error) {
	ch, err := tx.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrNotFound
	}

	st, err := tx.LockSettlement(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if st != nil && st.Status.Frozen() {
		return st, nil
	}

	now := e.now()
	sched := e.ScheduledAt(ch)
	if st == nil {
		if sched == nil || now.Before(*sched) {
			return nil, ErrNotReady
		}
		err = tx.CreateSettlement(ctx, &model.Settlement{
			ChallengeID: ch.ID,
			Method:      ch.SettleMethod,
			Status:      model.SettlementProcessing,
			ScheduledAt: sched,
		})
		if err != nil {
			return nil, err
		}
		if st, err = tx.LockSettlement(ctx, challengeID); err != nil {
			return nil, err
		}
		if st == nil {
			return nil, fmt.Errorf("settlement for challenge %d missing after create", challengeID)
		}
		if st.Status.Frozen() {
			return st, nil
		}
	} else if st.Status == model.SettlementScheduled {
		if st.ScheduledAt != nil && now.Before(*st.ScheduledAt) {
			return nil, ErrNotReady
		}
	}

	members, err := tx.ListMembers(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	proofs, err := tx.ListApprovedProofs(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	required, known := progress.RequiredDays(ch)
	if !known {
		e.log.Warn("无法识别的打卡频率，按 DAILY 计算", "challenge_id", ch.ID, "freq_type", ch.FreqType)
	}
	verdicts := progress.Collect(ch, members, proofs)

	// 方式在结算行创建时确定，之后不随挑战变化
	pot := ch.EntryFee * int64(len(members))
	alloc, err := distribute.Distribute(st.Method, pot, ch.EntryFee, verdicts)
	if err != nil {
		return nil, err
	}

	if err = e.writeDetails(ctx, tx, st.ID, required, alloc.Rewards, verdicts); err != nil {
		return nil, err
	}

	st.Status = model.SettlementReady
	st.TotalPoolPoint = pot
	st.SettledAt = &now
	st.Meta = datatypes.NewJSONType(alloc.Meta)
	if st.ScheduledAt == nil {
		st.ScheduledAt = sched
	}
	if err = tx.SaveSettlement(ctx, st); err != nil {
		return nil, err
	}

	e.log.Info("结算完成",
		"challenge_id", ch.ID,
		"settlement_id", st.ID,
		"method", st.Method,
		"pot", pot,
		"members", len(members),
	)
	return st, nil
}

// writeDetails 按成员写入奖励和达标情况：已有明细原地更新，没有的新建，从不删除；
// 已不在挑战中的成员奖励置 0
func (e *Engine) writeDetails(ctx context.Context, tx Store, settlementID uint, required int, rewards map[uint]int64, verdicts []progress.Verdict) error {
	byMember := make(map[uint]progress.Verdict, len(verdicts))
	for _, v := range verdicts {
		byMember[v.MemberID] = v
	}
	fill := func(d *model.SettlementDetail) {
		v, ok := byMember[d.ChallengeMemberID]
		if !ok {
			v.RequiredDays = required
		}
		d.RewardPoint = rewards[d.ChallengeMemberID]
		d.SuccessDays = v.SuccessDays
		d.RequiredDays = v.RequiredDays
		d.IsSuccess = v.IsSuccess
	}

	existing, err := tx.ListDetails(ctx, settlementID)
	if err != nil {
		return err
	}
	seen := make(map[uint]struct{}, len(existing))
	for _, d := range existing {
		seen[d.ChallengeMemberID] = struct{}{}
		want := d
		fill(&want)
		if want != d {
			if err = tx.UpdateDetail(ctx, &want); err != nil {
				return err
			}
		}
	}
	missing := make([]uint, 0, len(rewards))
	for memberID := range rewards {
		if _, ok := seen[memberID]; !ok {
			missing = append(missing, memberID)
		}
	}
	slices.Sort(missing)
	for _, memberID := range missing {
		d := &model.SettlementDetail{SettlementID: settlementID, ChallengeMemberID: memberID}
		fill(d)
		if err = tx.CreateDetail(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// ClaimResult 领取结果；AlreadyClaimed 时 ClaimedAt 是第一次领取的时间
type ClaimResult struct {
	ChallengeID        uint               `json:"challenge_id"`
	SettlementMethod   model.SettleMethod `json:"settlement_method"`
	CreditedPoints     int64              `json:"credited_points"`
	ClaimedAt          time.Time          `json:"claimed_at"`
	WalletBalanceAfter int64              `json:"wallet_balance_after"`
	AlreadyClaimed     bool               `json:"already_claimed"`
	Message            string             `json:"message"`
}

// Claim 领取自己的奖励，同一成员只会入账一次
func (e *Engine) Claim(ctx context.Context, challengeID, userID uint) (res *ClaimResult, err error) {
	ctx, span := e.tracer.Start(ctx, "settlement.claim", trace.WithAttributes(
		attribute.Int64("challenge_id", int64(challengeID)),
		attribute.Int64("user_id", int64(userID)),
	))
	defer func() { endSpan(span, err) }()

	err = e.store.Transaction(ctx, func(tx Store) error {
		res, err = e.claimLocked(ctx, tx, challengeID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) claimLocked(ctx context.Context, tx Store, challengeID, userID uint) (*ClaimResult, error) {
	ch, err := tx.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrNotFound
	}
	st, err := tx.LockSettlement(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if st == nil || !st.Status.Frozen() {
		return nil, ErrNotReady
	}
	member, err := tx.FindMember(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrForbidden
	}
	detail, err := tx.LockDetail(ctx, st.ID, member.ID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, ErrNotAssigned
	}

	res := &ClaimResult{ChallengeID: ch.ID, SettlementMethod: st.Method}
	if detail.ClaimedAt != nil {
		res.AlreadyClaimed = true
		res.ClaimedAt = *detail.ClaimedAt
		res.Message = msgAlreadyClaimed
		res.WalletBalanceAfter, err = e.balance(ctx, tx, userID)
		return res, err
	}

	if detail.RewardPoint > 0 {
		settlementID := st.ID
		h, err := e.ledger.ApplyPoints(ctx, tx.Wallet(), wallet.Entry{
			UserID:       userID,
			Delta:        detail.RewardPoint,
			Description:  "[结算] " + ch.Title,
			ChallengeID:  &ch.ID,
			SettlementID: &settlementID,
			Kind:         model.HistoryReward,
		})
		if err != nil {
			return nil, err
		}
		res.CreditedPoints = h.Amount
		res.ClaimedAt = h.OccurredAt
		res.WalletBalanceAfter = h.BalanceAfter
		res.Message = msgCredited
	} else {
		res.ClaimedAt = e.now().Truncate(model.TimePrecision)
		res.Message = msgNoReward
		if res.WalletBalanceAfter, err = e.balance(ctx, tx, userID); err != nil {
			return nil, err
		}
	}
	if err = tx.MarkClaimed(ctx, detail.ID, res.ClaimedAt); err != nil {
		return nil, err
	}

	unclaimed, err := tx.CountUnclaimed(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	if unclaimed == 0 && st.Status != model.SettlementPaid {
		st.Status = model.SettlementPaid
		if err = tx.SaveSettlement(ctx, st); err != nil {
			return nil, err
		}
		e.log.Info("全员已领取", "challenge_id", ch.ID, "settlement_id", st.ID)
	}
	return res, nil
}

func (e *Engine) balance(ctx context.Context, tx Store, userID uint) (int64, error) {
	user, err := tx.Wallet().GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, wallet.ErrUserNotFound
	}
	return user.PointBalance, nil
}
