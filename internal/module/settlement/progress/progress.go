// Package progress 统计每个参与者的有效打卡天数，并给出是否达标的判定
package progress

import (
	"sort"
	"time"

	"challenge-settlement-system/internal/model"
)

const dateLayout = "20060102"

// Proof 一条已通过审核的认证，只关心日期
type Proof struct {
	MemberID uint
	Date     time.Time
}

// Verdict 单个参与者的进度判定
type Verdict struct {
	MemberID     uint   `json:"-"`
	UserID       uint   `json:"user_id"`
	Name         string `json:"name"`
	SuccessDays  int    `json:"success_days"`
	RequiredDays int    `json:"required_days"`
	IsSuccess    bool   `json:"is_success"`
}

// RequiredDays 根据频率计算达标所需天数
// known 为 false 表示频率类型无法识别，按 DAILY 处理，调用方应记录数据异常
func RequiredDays(ch *model.Challenge) (days int, known bool) {
	weeks := ch.DurationWeeks
	if weeks <= 0 {
		weeks = 1
	}
	if ch.StartDate == nil || ch.EndDate == nil {
		return weeks * 7, true
	}
	start, end := civil(*ch.StartDate), civil(*ch.EndDate)

	switch ch.FreqType {
	case model.FreqDaily:
		return countDays(start, end, func(time.Weekday) bool { return true }), true
	case model.FreqWeekdays:
		return countDays(start, end, func(d time.Weekday) bool {
			return d != time.Saturday && d != time.Sunday
		}), true
	case model.FreqWeekends:
		return countDays(start, end, func(d time.Weekday) bool {
			return d == time.Saturday || d == time.Sunday
		}), true
	case model.FreqNDaysPerWeek:
		// 不核对起止日期实际跨了几周
		n := 1
		if ch.FreqNDays != nil && *ch.FreqNDays > 0 {
			n = *ch.FreqNDays
		}
		return n * weeks, true
	}
	return countDays(start, end, func(time.Weekday) bool { return true }), false
}

// Collect 为每个参与者生成一条判定，顺序与 members 一致
// proofs 只应包含 approved 记录；同一天多条只算一次，窗口外的不算
func Collect(ch *model.Challenge, members []model.ChallengeMember, proofs []Proof) []Verdict {
	required, _ := RequiredDays(ch)

	var from, to string
	if ch.StartDate != nil {
		from = ch.StartDate.Format(dateLayout)
	}
	if ch.EndDate != nil {
		to = ch.EndDate.Format(dateLayout)
	}

	days := make(map[uint]map[string]struct{}, len(members))
	for _, p := range proofs {
		key := p.Date.Format(dateLayout)
		if (from != "" && key < from) || (to != "" && key > to) {
			continue
		}
		set, ok := days[p.MemberID]
		if !ok {
			set = make(map[string]struct{})
			days[p.MemberID] = set
		}
		set[key] = struct{}{}
	}

	result := make([]Verdict, 0, len(members))
	for _, m := range members {
		success := len(days[m.ID])
		result = append(result, Verdict{
			MemberID:     m.ID,
			UserID:       m.UserID,
			Name:         m.User.Name,
			SuccessDays:  success,
			RequiredDays: required,
			IsSuccess:    success >= required,
		})
	}
	return result
}

// ByUserID 按 user_id 升序排列，返回新切片
func ByUserID(vs []Verdict) []Verdict {
	out := append([]Verdict(nil), vs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func countDays(start, end time.Time, match func(time.Weekday) bool) int {
	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if match(d.Weekday()) {
			n++
		}
	}
	return n
}
