package progress

import (
	"testing"
	"time"

	"challenge-settlement-system/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func ptr[T any](v T) *T { return &v }

// 2025-03-03 是周一，到 2025-03-16 共两周
func twoWeekChallenge(freq model.FreqType) *model.Challenge {
	return &model.Challenge{
		DurationWeeks: 2,
		FreqType:      freq,
		StartDate:     ptr(date(2025, 3, 3)),
		EndDate:       ptr(date(2025, 3, 16)),
	}
}

func TestRequiredDays(t *testing.T) {
	cases := []struct {
		name  string
		ch    *model.Challenge
		want  int
		known bool
	}{
		{"daily", twoWeekChallenge(model.FreqDaily), 14, true},
		{"weekdays", twoWeekChallenge(model.FreqWeekdays), 10, true},
		{"weekends", twoWeekChallenge(model.FreqWeekends), 4, true},
		{"n days", func() *model.Challenge {
			ch := twoWeekChallenge(model.FreqNDaysPerWeek)
			ch.FreqNDays = ptr(3)
			return ch
		}(), 6, true},
		{"n days without n", twoWeekChallenge(model.FreqNDaysPerWeek), 2, true},
		{"no window", &model.Challenge{DurationWeeks: 3, FreqType: model.FreqWeekdays}, 21, true},
		{"zero weeks without window", &model.Challenge{FreqType: model.FreqDaily}, 7, true},
		{"unknown freq", twoWeekChallenge("EVERY_OTHER_DAY"), 14, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, known := RequiredDays(tc.ch)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.known, known)
		})
	}
}

func TestRequiredDays_DailyFollowsWindow(t *testing.T) {
	ch := twoWeekChallenge(model.FreqDaily)
	ch.EndDate = ptr(date(2025, 3, 12))
	got, _ := RequiredDays(ch)
	assert.Equal(t, 10, got)
}

func TestCollect(t *testing.T) {
	ch := twoWeekChallenge(model.FreqWeekends)
	members := []model.ChallengeMember{
		{Model: model.Model{ID: 11}, UserID: 7, User: model.User{Name: "kim"}},
		{Model: model.Model{ID: 12}, UserID: 3},
	}
	proofs := []Proof{
		{MemberID: 11, Date: date(2025, 3, 8)},
		{MemberID: 11, Date: date(2025, 3, 8).Add(5 * time.Hour)}, // 同一天
		{MemberID: 11, Date: date(2025, 3, 9)},
		{MemberID: 11, Date: date(2025, 3, 15)},
		{MemberID: 11, Date: date(2025, 3, 16)},
		{MemberID: 11, Date: date(2025, 3, 17)}, // 窗口外
		{MemberID: 12, Date: date(2025, 3, 2)},  // 窗口外
		{MemberID: 12, Date: date(2025, 3, 3)},
		{MemberID: 99, Date: date(2025, 3, 3)}, // 非参与者
	}

	got := Collect(ch, members, proofs)
	require.Len(t, got, 2)

	assert.Equal(t, Verdict{MemberID: 11, UserID: 7, Name: "kim", SuccessDays: 4, RequiredDays: 4, IsSuccess: true}, got[0])
	assert.Equal(t, Verdict{MemberID: 12, UserID: 3, SuccessDays: 1, RequiredDays: 4, IsSuccess: false}, got[1])
}

func TestCollect_NoWindowCountsEverything(t *testing.T) {
	ch := &model.Challenge{DurationWeeks: 1, FreqType: model.FreqDaily}
	members := []model.ChallengeMember{{Model: model.Model{ID: 1}, UserID: 1}}
	var proofs []Proof
	for i := 0; i < 9; i++ {
		proofs = append(proofs, Proof{MemberID: 1, Date: date(2024, 12, 28).AddDate(0, 0, i)})
	}
	got := Collect(ch, members, proofs)
	assert.Equal(t, 9, got[0].SuccessDays)
	assert.Equal(t, 7, got[0].RequiredDays)
	assert.True(t, got[0].IsSuccess)
}

func TestByUserID(t *testing.T) {
	in := []Verdict{{UserID: 5}, {UserID: 2}, {UserID: 9}}
	out := ByUserID(in)
	assert.Equal(t, []uint{2, 5, 9}, []uint{out[0].UserID, out[1].UserID, out[2].UserID})
	assert.Equal(t, uint(5), in[0].UserID)
}
