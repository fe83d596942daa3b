// Package distribute 把整数积分池按结算方式分给参与者
//
// 所有方式都保证不丢分：方式 1-3 奖励之和等于积分池；
// 方式 4 奖励之和加 platform_gain_points 等于积分池；
// 无人可分时奖励全为 0，整池记入 undistributed_points。
// 余数按确定的顺序逐个加 1 分，同一输入永远得到同一结果。
package distribute

import (
	"fmt"
	"sort"

	"challenge-settlement-system/internal/model"
	"challenge-settlement-system/internal/module/settlement/progress"
)

var RuleText = map[model.SettleMethod]string{
	model.MethodNToOneWinner:  "报名费总额由成功者平分",
	model.MethodProportional:  "报名费按成功天数比例分配",
	model.MethodRefundPlusAll: "成功者退还报名费，剩余部分全员平分",
	model.MethodDonateFailFee: "失败者的报名费捐给平台",
}

const roundingPolicy = "余数优先分给成功者，每人加 1 分"

// Allocation 分配结果，Rewards 以 challenge_member_id 为键，每个参与者都有一项
type Allocation struct {
	Rewards map[uint]int64
	Meta    model.SettlementMeta
}

// Sum 奖励合计
func (a Allocation) Sum() int64 {
	var s int64
	for _, v := range a.Rewards {
		s += v
	}
	return s
}

type UnknownMethodError struct {
	Method model.SettleMethod
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown settlement method %d", e.Method)
}

// Distribute 按 method 分配 pot
func Distribute(method model.SettleMethod, pot, entryFee int64, verdicts []progress.Verdict) (Allocation, error) {
	switch method {
	case model.MethodNToOneWinner:
		return nToOneWinner(pot, verdicts), nil
	case model.MethodProportional:
		return proportional(pot, verdicts), nil
	case model.MethodRefundPlusAll:
		return refundPlusAll(pot, entryFee, verdicts), nil
	case model.MethodDonateFailFee:
		return donateFailFee(pot, entryFee, verdicts), nil
	}
	return Allocation{}, &UnknownMethodError{Method: method}
}

func zeroed(verdicts []progress.Verdict) map[uint]int64 {
	rewards := make(map[uint]int64, len(verdicts))
	for _, v := range verdicts {
		rewards[v.MemberID] = 0
	}
	return rewards
}

func undistributed(method model.SettleMethod, pot int64, verdicts []progress.Verdict) Allocation {
	return Allocation{
		Rewards: zeroed(verdicts),
		Meta:    model.SettlementMeta{RuleText: RuleText[method], UndistributedPoints: &pot},
	}
}

// nToOneWinner 成功者平分，余数按 user_id 升序每人加 1
func nToOneWinner(pot int64, verdicts []progress.Verdict) Allocation {
	var winners []progress.Verdict
	for _, v := range progress.ByUserID(verdicts) {
		if v.IsSuccess {
			winners = append(winners, v)
		}
	}
	if len(winners) == 0 {
		return undistributed(model.MethodNToOneWinner, pot, verdicts)
	}

	n := int64(len(winners))
	base, rem := pot/n, pot%n
	rewards := zeroed(verdicts)
	for i, w := range winners {
		rewards[w.MemberID] = base
		if int64(i) < rem {
			rewards[w.MemberID]++
		}
	}
	return Allocation{Rewards: rewards, Meta: model.SettlementMeta{RuleText: RuleText[model.MethodNToOneWinner]}}
}

// proportional 按成功天数分配
// 余数按 (成功天数降序, user_id 升序) 发放，每人最多加自己的成功天数，
// 余数小于总天数，所以一轮必定发完，0 天的人拿不到余数
func proportional(pot int64, verdicts []progress.Verdict) Allocation {
	var total int64
	for _, v := range verdicts {
		total += int64(v.SuccessDays)
	}
	if total == 0 {
		return undistributed(model.MethodProportional, pot, verdicts)
	}

	unit := pot / total
	rewards := make(map[uint]int64, len(verdicts))
	var used int64
	for _, v := range verdicts {
		rewards[v.MemberID] = unit * int64(v.SuccessDays)
		used += rewards[v.MemberID]
	}

	order := append([]progress.Verdict(nil), verdicts...)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].SuccessDays != order[j].SuccessDays {
			return order[i].SuccessDays > order[j].SuccessDays
		}
		return order[i].UserID < order[j].UserID
	})
	rem := pot - used
	for _, v := range order {
		if rem <= 0 {
			break
		}
		extra := min(rem, int64(v.SuccessDays))
		rewards[v.MemberID] += extra
		rem -= extra
	}
	return Allocation{Rewards: rewards, Meta: model.SettlementMeta{RuleText: RuleText[model.MethodProportional]}}
}

// refundPlusAll 成功者先退报名费，剩余全员平分，余数成功者优先、再按 user_id
func refundPlusAll(pot, entryFee int64, verdicts []progress.Verdict) Allocation {
	var winners int64
	for _, v := range verdicts {
		if v.IsSuccess {
			winners++
		}
	}
	remain := pot - entryFee*winners

	people := int64(len(verdicts))
	if people == 0 {
		people = 1
	}
	base, rem := remain/people, remain%people
	rounding := &model.Rounding{
		BaseShare:        base,
		Remainder:        rem,
		RoundingPolicy:   roundingPolicy,
		RoundedUpUserIDs: []uint{},
	}

	order := append([]progress.Verdict(nil), verdicts...)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].IsSuccess != order[j].IsSuccess {
			return order[i].IsSuccess
		}
		return order[i].UserID < order[j].UserID
	})
	rewards := make(map[uint]int64, len(verdicts))
	for _, v := range order {
		r := base
		if v.IsSuccess {
			r += entryFee
		}
		if rem > 0 {
			r++
			rem--
			rounding.RoundedUpUserIDs = append(rounding.RoundedUpUserIDs, v.UserID)
		}
		rewards[v.MemberID] = r
	}
	return Allocation{
		Rewards: rewards,
		Meta:    model.SettlementMeta{RuleText: RuleText[model.MethodRefundPlusAll], Rounding: rounding},
	}
}

// donateFailFee 成功者只退报名费，其余归平台
func donateFailFee(pot, entryFee int64, verdicts []progress.Verdict) Allocation {
	rewards := zeroed(verdicts)
	var refunded int64
	for _, v := range verdicts {
		if v.IsSuccess {
			rewards[v.MemberID] = entryFee
			refunded += entryFee
		}
	}
	gain := pot - refunded
	return Allocation{
		Rewards: rewards,
		Meta:    model.SettlementMeta{RuleText: RuleText[model.MethodDonateFailFee], PlatformGainPoints: &gain},
	}
}
