package settlement

import (
	"context"
	"sort"
	"sync"
	"time"

	"challenge-settlement-system/internal/model"
	"challenge-settlement-system/internal/module/settlement/progress"
	"challenge-settlement-system/internal/module/wallet"
	"challenge-settlement-system/internal/module/wallet/wallettest"
)

// memStore 内存版结算存储。Transaction 串行执行，相当于所有行锁一起持有；
// fn 出错时结算数据和钱包数据一起回滚
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	wallet      *wallettest.MemStore
	challenges  map[uint]model.Challenge
	members     []model.ChallengeMember
	proofs      []model.ProofRecord
	settlements map[uint]model.Settlement // challenge_id -> settlement
	details     []model.SettlementDetail
	nextID      uint

	transactions int
}

func newMemStore(users ...model.User) *memStore {
	return &memStore{
		wallet:      wallettest.NewMemStore(users...),
		challenges:  make(map[uint]model.Challenge),
		settlements: make(map[uint]model.Settlement),
		nextID:      1000,
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) Transaction(_ context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.transactions++
	members := append([]model.ChallengeMember(nil), s.members...)
	settlements := make(map[uint]model.Settlement, len(s.settlements))
	for k, v := range s.settlements {
		settlements[k] = v
	}
	details := append([]model.SettlementDetail(nil), s.details...)
	nextID := s.nextID
	s.mu.Unlock()

	err := s.wallet.InTx(func() error { return fn(s) })
	if err != nil {
		s.mu.Lock()
		s.members, s.settlements, s.details, s.nextID = members, settlements, details, nextID
		s.mu.Unlock()
	}
	return err
}

func (s *memStore) Wallet() wallet.Store {
	return s.wallet
}

func (s *memStore) GetChallenge(_ context.Context, challengeID uint) (*model.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[challengeID]
	if !ok {
		return nil, nil
	}
	return &ch, nil
}

func (s *memStore) ListMembers(_ context.Context, challengeID uint) ([]model.ChallengeMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []model.ChallengeMember
	for _, m := range s.members {
		if m.ChallengeID == challengeID {
			list = append(list, m)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *memStore) FindMember(_ context.Context, challengeID, userID uint) (*model.ChallengeMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.ChallengeID == challengeID && m.UserID == userID {
			return &m, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListApprovedProofs(_ context.Context, challengeID uint) ([]progress.Proof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var proofs []progress.Proof
	for _, p := range s.proofs {
		if p.ChallengeID == challengeID && p.Status == model.ProofApproved {
			proofs = append(proofs, progress.Proof{MemberID: p.ChallengeMemberID, Date: p.Date})
		}
	}
	return proofs, nil
}

func (s *memStore) ListDueChallenges(_ context.Context, before time.Time) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint
	for id, ch := range s.challenges {
		if ch.EndDate == nil || ch.EndDate.After(before) {
			continue
		}
		if st, ok := s.settlements[id]; ok && st.Status.Frozen() {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *memStore) GetSettlement(_ context.Context, challengeID uint) (*model.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settlements[challengeID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *memStore) LockSettlement(ctx context.Context, challengeID uint) (*model.Settlement, error) {
	return s.GetSettlement(ctx, challengeID)
}

func (s *memStore) CreateSettlement(_ context.Context, st *model.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.settlements[st.ChallengeID]; ok {
		return nil
	}
	st.ID = s.id()
	s.settlements[st.ChallengeID] = *st
	return nil
}

func (s *memStore) SaveSettlement(_ context.Context, st *model.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settlements[st.ChallengeID] = *st
	return nil
}

func (s *memStore) ListDetails(_ context.Context, settlementID uint) ([]model.SettlementDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []model.SettlementDetail
	for _, d := range s.details {
		if d.SettlementID == settlementID {
			list = append(list, d)
		}
	}
	return list, nil
}

func (s *memStore) CreateDetail(_ context.Context, d *model.SettlementDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.details {
		if existing.SettlementID == d.SettlementID && existing.ChallengeMemberID == d.ChallengeMemberID {
			panic("duplicate settlement detail")
		}
	}
	d.ID = s.id()
	s.details = append(s.details, *d)
	return nil
}

func (s *memStore) UpdateDetail(_ context.Context, d *model.SettlementDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.details {
		if s.details[i].ID == d.ID {
			s.details[i].RewardPoint = d.RewardPoint
			s.details[i].SuccessDays = d.SuccessDays
			s.details[i].RequiredDays = d.RequiredDays
			s.details[i].IsSuccess = d.IsSuccess
		}
	}
	return nil
}

func (s *memStore) LockDetail(_ context.Context, settlementID, memberID uint) (*model.SettlementDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.details {
		if d.SettlementID == settlementID && d.ChallengeMemberID == memberID {
			return &d, nil
		}
	}
	return nil, nil
}

func (s *memStore) MarkClaimed(_ context.Context, detailID uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.details {
		if s.details[i].ID == detailID && s.details[i].ClaimedAt == nil {
			// 和 DATETIME(3) 列一样按毫秒舍入
			at = at.Round(model.TimePrecision)
			s.details[i].ClaimedAt = &at
		}
	}
	return nil
}

func (s *memStore) CountUnclaimed(_ context.Context, settlementID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, d := range s.details {
		if d.SettlementID == settlementID && d.ClaimedAt == nil {
			n++
		}
	}
	return n, nil
}

// 以下为测试数据准备

func (s *memStore) addChallenge(ch model.Challenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[ch.ID] = ch
}

func (s *memStore) addMember(memberID, challengeID, userID uint, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := model.ChallengeMember{ChallengeID: challengeID, UserID: userID, Role: model.RoleMember}
	m.ID = memberID
	m.User.ID = userID
	m.User.Name = name
	s.members = append(s.members, m)
}

// addProofs 从 from 开始连续 days 天各一条认证
func (s *memStore) addProofs(challengeID, memberID uint, from time.Time, days int, status model.ProofStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < days; i++ {
		s.proofs = append(s.proofs, model.ProofRecord{
			ChallengeID:       challengeID,
			ChallengeMemberID: memberID,
			Status:            status,
			Date:              from.AddDate(0, 0, i),
		})
	}
}

func (s *memStore) putSettlement(st model.Settlement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settlements[st.ChallengeID] = st
}

func (s *memStore) putDetail(d model.SettlementDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details = append(s.details, d)
}

func (s *memStore) rewards(settlementID uint) map[uint]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint]int64)
	for _, d := range s.details {
		if d.SettlementID == settlementID {
			out[d.ChallengeMemberID] = d.RewardPoint
		}
	}
	return out
}
