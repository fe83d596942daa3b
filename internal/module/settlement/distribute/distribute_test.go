package distribute

import (
	"math/rand"
	"testing"

	"challenge-settlement-system/internal/model"
	"challenge-settlement-system/internal/module/settlement/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 4 人，报名费 100，user 2/4/6 成功，user 8 失败；member id = user id + 100
func fourMembers() []progress.Verdict {
	return []progress.Verdict{
		{MemberID: 106, UserID: 6, SuccessDays: 14, RequiredDays: 14, IsSuccess: true},
		{MemberID: 102, UserID: 2, SuccessDays: 14, RequiredDays: 14, IsSuccess: true},
		{MemberID: 108, UserID: 8, SuccessDays: 3, RequiredDays: 14, IsSuccess: false},
		{MemberID: 104, UserID: 4, SuccessDays: 14, RequiredDays: 14, IsSuccess: true},
	}
}

func TestNToOneWinner(t *testing.T) {
	a, err := Distribute(model.MethodNToOneWinner, 400, 100, fourMembers())
	require.NoError(t, err)

	assert.Equal(t, map[uint]int64{102: 134, 104: 133, 106: 133, 108: 0}, a.Rewards)
	assert.Equal(t, int64(400), a.Sum())
	assert.Equal(t, RuleText[model.MethodNToOneWinner], a.Meta.RuleText)
	assert.Nil(t, a.Meta.UndistributedPoints)
}

func TestNToOneWinner_NoWinners(t *testing.T) {
	vs := fourMembers()
	for i := range vs {
		vs[i].IsSuccess = false
	}
	a, err := Distribute(model.MethodNToOneWinner, 400, 100, vs)
	require.NoError(t, err)

	assert.Equal(t, int64(0), a.Sum())
	assert.Len(t, a.Rewards, 4)
	require.NotNil(t, a.Meta.UndistributedPoints)
	assert.Equal(t, int64(400), *a.Meta.UndistributedPoints)
}

func TestProportional(t *testing.T) {
	vs := []progress.Verdict{
		{MemberID: 1, UserID: 10, SuccessDays: 10},
		{MemberID: 2, UserID: 20, SuccessDays: 5},
		{MemberID: 3, UserID: 30},
		{MemberID: 4, UserID: 40},
	}
	a, err := Distribute(model.MethodProportional, 400, 100, vs)
	require.NoError(t, err)

	// unit = 400/15 = 26, base = 260/130, 余数 10 全部给成功天数最多的人
	assert.Equal(t, map[uint]int64{1: 270, 2: 130, 3: 0, 4: 0}, a.Rewards)
	assert.Equal(t, int64(400), a.Sum())
}

func TestProportional_TieBrokenByUserID(t *testing.T) {
	vs := []progress.Verdict{
		{MemberID: 1, UserID: 9, SuccessDays: 1},
		{MemberID: 2, UserID: 3, SuccessDays: 1},
		{MemberID: 3, UserID: 5, SuccessDays: 1},
	}
	a, err := Distribute(model.MethodProportional, 5, 0, vs)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{1: 1, 2: 2, 3: 2}, a.Rewards)
}

func TestProportional_NoSuccessDays(t *testing.T) {
	vs := []progress.Verdict{{MemberID: 1, UserID: 1}, {MemberID: 2, UserID: 2}}
	a, err := Distribute(model.MethodProportional, 200, 100, vs)
	require.NoError(t, err)

	assert.Equal(t, map[uint]int64{1: 0, 2: 0}, a.Rewards)
	require.NotNil(t, a.Meta.UndistributedPoints)
	assert.Equal(t, int64(200), *a.Meta.UndistributedPoints)
}

func TestRefundPlusAll(t *testing.T) {
	vs := []progress.Verdict{
		{MemberID: 1, UserID: 1, IsSuccess: false},
		{MemberID: 2, UserID: 2, IsSuccess: true},
		{MemberID: 3, UserID: 3, IsSuccess: false},
	}
	// pot 310（含额外 10 分），退还 100，剩余 210 / 3 = 70
	a, err := Distribute(model.MethodRefundPlusAll, 310, 100, vs)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{1: 70, 2: 170, 3: 70}, a.Rewards)

	// 剩余 211，余数 1 先给成功者
	a, err = Distribute(model.MethodRefundPlusAll, 311, 100, vs)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{1: 70, 2: 171, 3: 70}, a.Rewards)
	require.NotNil(t, a.Meta.Rounding)
	assert.Equal(t, int64(70), a.Meta.Rounding.BaseShare)
	assert.Equal(t, int64(1), a.Meta.Rounding.Remainder)
	assert.Equal(t, []uint{2}, a.Meta.Rounding.RoundedUpUserIDs)

	// 余数 2：成功者之后按 user_id
	a, err = Distribute(model.MethodRefundPlusAll, 312, 100, vs)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{1: 71, 2: 171, 3: 70}, a.Rewards)
	assert.Equal(t, []uint{2, 1}, a.Meta.Rounding.RoundedUpUserIDs)
}

func TestRefundPlusAll_EveryoneSucceeds(t *testing.T) {
	a, err := Distribute(model.MethodRefundPlusAll, 300, 100, []progress.Verdict{
		{MemberID: 1, UserID: 1, IsSuccess: true},
		{MemberID: 2, UserID: 2, IsSuccess: true},
		{MemberID: 3, UserID: 3, IsSuccess: true},
	})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{1: 100, 2: 100, 3: 100}, a.Rewards)
	assert.Empty(t, a.Meta.Rounding.RoundedUpUserIDs)
}

func TestDonateFailFee(t *testing.T) {
	a, err := Distribute(model.MethodDonateFailFee, 400, 100, fourMembers())
	require.NoError(t, err)

	assert.Equal(t, map[uint]int64{102: 100, 104: 100, 106: 100, 108: 0}, a.Rewards)
	assert.Equal(t, int64(300), a.Sum())
	require.NotNil(t, a.Meta.PlatformGainPoints)
	assert.Equal(t, int64(100), *a.Meta.PlatformGainPoints)
}

func TestUnknownMethod(t *testing.T) {
	_, err := Distribute(model.SettleMethod(9), 100, 100, fourMembers())
	var target *UnknownMethodError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, model.SettleMethod(9), target.Method)
}

func TestConservation(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	methods := []model.SettleMethod{
		model.MethodNToOneWinner,
		model.MethodProportional,
		model.MethodRefundPlusAll,
		model.MethodDonateFailFee,
	}
	for round := 0; round < 500; round++ {
		n := r.Intn(12) + 1
		fee := int64(r.Intn(1000))
		required := r.Intn(28) + 1
		ids := r.Perm(1000)
		vs := make([]progress.Verdict, n)
		for i := range vs {
			days := r.Intn(required + 3)
			vs[i] = progress.Verdict{
				MemberID:     uint(i + 1),
				UserID:       uint(ids[i] + 1),
				SuccessDays:  days,
				RequiredDays: required,
				IsSuccess:    days >= required,
			}
		}
		pot := fee * int64(n)

		for _, m := range methods {
			a, err := Distribute(m, pot, fee, vs)
			require.NoError(t, err)
			require.Len(t, a.Rewards, n)

			total := a.Sum()
			for _, v := range a.Rewards {
				require.GreaterOrEqual(t, v, int64(0))
			}
			if a.Meta.PlatformGainPoints != nil {
				total += *a.Meta.PlatformGainPoints
			}
			if a.Meta.UndistributedPoints != nil {
				total += *a.Meta.UndistributedPoints
			}
			require.Equal(t, pot, total, "method %d round %d", m, round)

			again, _ := Distribute(m, pot, fee, vs)
			require.Equal(t, a.Rewards, again.Rewards)
		}
	}
}
