package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/learnway/member/internal/app/models"
	"github.com/learnway/member/internal/app/repositories"
	"github.com/learnway/member/internal/pkg/apperrors"
	"github.com/learnway/member/internal/pkg/session"
)

// fakeStore is an in-memory repositories.Store. A failed transaction restores
// the state captured when it began.
type fakeStore struct {
	mu          sync.Mutex
	members     map[int64]models.Member
	targetUnis  map[int64]models.TargetUni
	consultants map[string]bool
	nextID      int64

	// Fault injection
	failCreateTargetUni error
	failUpdateMember    error
	txCount             int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members:     make(map[int64]models.Member),
		targetUnis:  make(map[int64]models.TargetUni),
		consultants: make(map[string]bool),
	}
}

func (f *fakeStore) Members() repositories.MemberRepository         { return fakeMembers{f} }
func (f *fakeStore) TargetUnis() repositories.TargetUniRepository   { return fakeTargetUnis{f} }
func (f *fakeStore) Consultants() repositories.ConsultantRepository { return fakeConsultants{f} }

func (f *fakeStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Store) error) error {
	f.mu.Lock()
	f.txCount++
	members := make(map[int64]models.Member, len(f.members))
	for k, v := range f.members {
		members[k] = v
	}
	unis := make(map[int64]models.TargetUni, len(f.targetUnis))
	for k, v := range f.targetUnis {
		unis[k] = v
	}
	nextID := f.nextID
	f.mu.Unlock()

	if err := fn(ctx, f); err != nil {
		f.mu.Lock()
		f.members, f.targetUnis, f.nextID = members, unis, nextID
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

// seedMember stores m and its target universities, returning the stored copy
func (f *fakeStore) seedMember(m models.Member, unis ...models.TargetUni) *models.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = f.id()
	f.members[m.ID] = m
	for _, t := range unis {
		t.ID = f.id()
		t.MemberID = m.ID
		f.targetUnis[t.ID] = t
	}
	return &m
}

func (f *fakeStore) member(memberID string) (models.Member, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.MemberID == memberID {
			return m, true
		}
	}
	return models.Member{}, false
}

func (f *fakeStore) unisOf(memberPK int64) []models.TargetUni {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TargetUni
	for _, t := range f.targetUnis {
		if t.MemberID == memberPK {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

func (f *fakeStore) count() (members, unis int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.members), len(f.targetUnis)
}

type fakeMembers struct{ f *fakeStore }

func (r fakeMembers) find(match func(models.Member) bool) (*models.Member, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, m := range r.f.members {
		if match(m) {
			m := m
			return &m, nil
		}
	}
	return nil, apperrors.ErrMemberNotFound
}

func (r fakeMembers) FindByID(_ context.Context, id int64) (*models.Member, error) {
	return r.find(func(m models.Member) bool { return m.ID == id })
}

func (r fakeMembers) FindByMemberID(_ context.Context, memberID string) (*models.Member, error) {
	return r.find(func(m models.Member) bool { return m.MemberID == memberID })
}

func (r fakeMembers) ExistsByMemberID(ctx context.Context, memberID string) (bool, error) {
	_, err := r.FindByMemberID(ctx, memberID)
	return err == nil, nil
}

func (r fakeMembers) Create(_ context.Context, m *models.Member) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, existing := range r.f.members {
		if existing.MemberID == m.MemberID {
			return 0, apperrors.NewFieldError("username", apperrors.ErrDuplicateIdentity, "member id already in use")
		}
	}
	stored := *m
	stored.ID = r.f.id()
	stored.TargetUnis = nil
	r.f.members[stored.ID] = stored
	return stored.ID, nil
}

func (r fakeMembers) Update(_ context.Context, m *models.Member) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.failUpdateMember != nil {
		return r.f.failUpdateMember
	}
	if _, ok := r.f.members[m.ID]; !ok {
		return apperrors.ErrMemberNotFound
	}
	stored := *m
	stored.TargetUnis = nil
	r.f.members[m.ID] = stored
	return nil
}

func (r fakeMembers) UpdateNote(_ context.Context, id int64, note string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, ok := r.f.members[id]
	if !ok {
		return apperrors.ErrMemberNotFound
	}
	r.f.members[id] = m.WithNote(note)
	return nil
}

func (r fakeMembers) page(match func(models.Member) bool, offset, limit uint64) ([]*models.Member, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var all []*models.Member
	for _, m := range r.f.members {
		if match(m) {
			m := m
			all = append(all, &m)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	if offset >= uint64(len(all)) {
		return []*models.Member{}, total, nil
	}
	end := offset + limit
	if end > uint64(len(all)) {
		end = uint64(len(all))
	}
	return all[offset:end], total, nil
}

func (r fakeMembers) FindAll(_ context.Context, offset, limit uint64) ([]*models.Member, int64, error) {
	return r.page(func(models.Member) bool { return true }, offset, limit)
}

func (r fakeMembers) FindByNameContaining(_ context.Context, fragment string, offset, limit uint64) ([]*models.Member, int64, error) {
	fragment = strings.ToLower(fragment)
	return r.page(func(m models.Member) bool {
		return strings.Contains(strings.ToLower(m.Name), fragment)
	}, offset, limit)
}

type fakeTargetUnis struct{ f *fakeStore }

func (r fakeTargetUnis) FindByMember(_ context.Context, memberPK int64) ([]*models.TargetUni, error) {
	out := []*models.TargetUni{}
	for _, t := range r.f.unisOf(memberPK) {
		t := t
		out = append(out, &t)
	}
	return out, nil
}

func (r fakeTargetUnis) FindByMembers(ctx context.Context, memberPKs []int64) (map[int64][]*models.TargetUni, error) {
	grouped := make(map[int64][]*models.TargetUni, len(memberPKs))
	for _, id := range memberPKs {
		unis, _ := r.FindByMember(ctx, id)
		if len(unis) > 0 {
			grouped[id] = unis
		}
	}
	return grouped, nil
}

func (r fakeTargetUnis) Create(_ context.Context, uni *models.TargetUni) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.failCreateTargetUni != nil {
		return 0, r.f.failCreateTargetUni
	}
	for _, t := range r.f.targetUnis {
		if t.MemberID == uni.MemberID && t.Rank == uni.Rank {
			return 0, apperrors.ErrTargetUniRankTaken
		}
	}
	stored := *uni
	stored.ID = r.f.id()
	r.f.targetUnis[stored.ID] = stored
	return stored.ID, nil
}

func (r fakeTargetUnis) UpdateName(_ context.Context, id int64, name string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.targetUnis[id]
	if !ok {
		return apperrors.ErrResourceNotFound
	}
	r.f.targetUnis[id] = t.Renamed(name)
	return nil
}

type fakeConsultants struct{ f *fakeStore }

func (r fakeConsultants) ExistsByConsultantID(_ context.Context, consultantID string) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return r.f.consultants[consultantID], nil
}

// failingIdentities rejects every write
type failingIdentities struct{ err error }

func (f failingIdentities) Save(context.Context, session.Identity) error { return f.err }
func (f failingIdentities) Get(context.Context, string) (*session.Identity, error) {
	return nil, session.ErrIdentityNotFound
}
func (f failingIdentities) Delete(context.Context, string) error { return f.err }
