package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Really-Great-Tech/chareli-backend/internal/model"
	"github.com/Really-Great-Tech/chareli-backend/internal/repository"
)

// In-memory fakes for the repository and integration interfaces. They mirror
// the gorm error contract the services branch on.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) add(u *model.User) *model.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.IsDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmailAny(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByPhoneAny(_ context.Context, phone string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PhoneNumber == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetActiveByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && !u.IsDeleted {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetActiveByPhone(_ context.Context, phone string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PhoneNumber == phone && !u.IsDeleted {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByResetTokenHash(_ context.Context, hash string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == hash && hash != "" && !u.IsDeleted {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	u.IsDeleted = true
	u.DeletedAt = &now
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if u.IsDeleted {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) CountCreatedBetween(_ context.Context, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if !u.CreatedAt.Before(from) && u.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) DeactivateInactive(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.IsActive && u.LastSeen != nil && u.LastSeen.Before(cutoff) {
			u.IsActive = false
			n++
		}
	}
	return n, nil
}

type fakeRoleRepo struct {
	roles map[string]*model.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	r := &fakeRoleRepo{roles: make(map[string]*model.Role)}
	for _, name := range []string{
		model.RoleSuperAdmin, model.RoleAdmin, model.RoleEditor,
		model.RoleViewer, model.RolePlayer,
	} {
		r.roles[name] = &model.Role{ID: uuid.New(), Name: name}
	}
	return r
}

func (r *fakeRoleRepo) GetByName(_ context.Context, name string) (*model.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return role, nil
}

func (r *fakeRoleRepo) List(_ context.Context) ([]model.Role, error) {
	var out []model.Role
	for _, role := range r.roles {
		out = append(out, *role)
	}
	return out, nil
}

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations []*model.Invitation
}

func (r *fakeInvitationRepo) GetByToken(_ context.Context, token string) (*model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInvitationRepo) GetPendingByEmail(_ context.Context, email string, now time.Time) (*model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.Email == email && inv.Pending(now) {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInvitationRepo) ReplaceForEmail(_ context.Context, invitation *model.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.invitations[:0]
	for _, inv := range r.invitations {
		if inv.Email != invitation.Email {
			kept = append(kept, inv)
		}
	}
	r.invitations = kept
	if invitation.ID == uuid.Nil {
		invitation.ID = uuid.New()
	}
	cp := *invitation
	r.invitations = append(r.invitations, &cp)
	return nil
}

func (r *fakeInvitationRepo) Update(_ context.Context, invitation *model.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, inv := range r.invitations {
		if inv.ID == invitation.ID {
			cp := *invitation
			r.invitations[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeInvitationRepo) MarkExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, inv := range r.invitations {
		if !inv.IsAccepted && !inv.IsExpired && !inv.ExpiresAt.After(now) {
			inv.IsExpired = true
			n++
		}
	}
	return n, nil
}

func (r *fakeInvitationRepo) List(_ context.Context) ([]model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Invitation
	for _, inv := range r.invitations {
		out = append(out, *inv)
	}
	return out, nil
}

type fakeOtpRepo struct {
	mu   sync.Mutex
	otps []*model.Otp
}

func (r *fakeOtpRepo) Create(_ context.Context, otp *model.Otp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if otp.ID == uuid.Nil {
		otp.ID = uuid.New()
	}
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now()
	}
	cp := *otp
	r.otps = append(r.otps, &cp)
	return nil
}

func (r *fakeOtpRepo) LatestUnverified(_ context.Context, userID uuid.UUID) (*model.Otp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.Otp
	for _, otp := range r.otps {
		if otp.UserID != userID || otp.IsVerified {
			continue
		}
		if latest == nil || otp.CreatedAt.After(latest.CreatedAt) {
			latest = otp
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeOtpRepo) Update(_ context.Context, otp *model.Otp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.otps {
		if o.ID == otp.ID {
			cp := *otp
			r.otps[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeGameRepo struct {
	mu    sync.Mutex
	games map[uuid.UUID]*model.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[uuid.UUID]*model.Game)}
}

func (r *fakeGameRepo) Create(_ context.Context, game *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if game.ID == uuid.Nil {
		game.ID = uuid.New()
	}
	r.games[game.ID] = game
	return nil
}

func (r *fakeGameRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGameRepo) GetBySlug(_ context.Context, slug string) (*model.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.games {
		if g.Slug == slug {
			cp := *g
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGameRepo) Update(_ context.Context, game *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[game.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *game
	r.games[game.ID] = &cp
	return nil
}

func (r *fakeGameRepo) List(_ context.Context, filter repository.GameFilter) ([]model.Game, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Game
	for _, g := range r.games {
		if filter.ActiveOnly && !g.IsActive {
			continue
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, int64(len(out)), nil
}

type fakeAnalyticsRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.Analytics
}

func newFakeAnalyticsRepo() *fakeAnalyticsRepo {
	return &fakeAnalyticsRepo{sessions: make(map[uuid.UUID]*model.Analytics)}
}

func (r *fakeAnalyticsRepo) matches(s *model.Analytics, filter repository.SessionFilter) bool {
	if filter.UserID != nil && s.UserID != *filter.UserID {
		return false
	}
	if filter.GameID != nil && s.GameID != *filter.GameID {
		return false
	}
	if filter.ActivityType != "" && string(s.ActivityType) != filter.ActivityType {
		return false
	}
	if !filter.From.IsZero() && s.StartTime.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && !s.StartTime.Before(filter.To) {
		return false
	}
	return true
}

func (r *fakeAnalyticsRepo) Create(_ context.Context, record *model.Analytics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	cp := *record
	r.sessions[record.ID] = &cp
	return nil
}

func (r *fakeAnalyticsRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Analytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeAnalyticsRepo) Update(_ context.Context, record *model.Analytics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[record.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *record
	r.sessions[record.ID] = &cp
	return nil
}

func (r *fakeAnalyticsRepo) List(_ context.Context, filter repository.SessionFilter) ([]model.Analytics, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Analytics
	for _, s := range r.sessions {
		if r.matches(s, filter) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, int64(len(out)), nil
}

func (r *fakeAnalyticsRepo) CountWhere(_ context.Context, filter repository.SessionFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions {
		if r.matches(s, filter) {
			n++
		}
	}
	return n, nil
}

func (r *fakeAnalyticsRepo) SumDurationWhere(_ context.Context, filter repository.SessionFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, s := range r.sessions {
		if r.matches(s, filter) {
			sum += s.Duration
		}
	}
	return sum, nil
}

func (r *fakeAnalyticsRepo) Popularity(_ context.Context, from, to time.Time, limit int) ([]repository.PopularityRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byGame := make(map[uuid.UUID]*repository.PopularityRow)
	for _, s := range r.sessions {
		if s.StartTime.Before(from) || !s.StartTime.Before(to) {
			continue
		}
		row, ok := byGame[s.GameID]
		if !ok {
			row = &repository.PopularityRow{GameID: s.GameID}
			byGame[s.GameID] = row
		}
		row.Sessions++
		row.TotalDuration += s.Duration
	}
	var out []repository.PopularityRow
	for _, row := range byGame {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sessions > out[j].Sessions })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeSignupRepo struct {
	mu     sync.Mutex
	clicks []model.SignupAnalytics

	summaryCalls int
}

func (r *fakeSignupRepo) Create(_ context.Context, record *model.SignupAnalytics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	r.clicks = append(r.clicks, *record)
	return nil
}

func (r *fakeSignupRepo) CountBetween(_ context.Context, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.clicks {
		if !c.CreatedAt.Before(from) && c.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r *fakeSignupRepo) Summary(_ context.Context, filter repository.SignupFilter) ([]repository.SignupSummaryRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaryCalls++
	buckets := make(map[string]*repository.SignupSummaryRow)
	for _, c := range r.clicks {
		if filter.Country != "" && c.Country != filter.Country {
			continue
		}
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		key := c.Country + "|" + c.Type
		row, ok := buckets[key]
		if !ok {
			row = &repository.SignupSummaryRow{Country: c.Country, Type: c.Type}
			buckets[key] = row
		}
		row.Clicks++
	}
	var out []repository.SignupSummaryRow
	for _, row := range buckets {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

type fakeGeoIP struct {
	country string
	err     error
}

func (g *fakeGeoIP) Country(_ context.Context, ip string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.country, nil
}

type sentMail struct {
	kind string
	to   string
	body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) record(kind, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: kind, to: to, body: body})
	return nil
}

func (m *fakeMailer) SendOtpEmail(_ context.Context, to, code string) error {
	return m.record("otp", to, code)
}

func (m *fakeMailer) SendInvitationEmail(_ context.Context, to, link, role string) error {
	return m.record("invitation", to, link)
}

func (m *fakeMailer) SendPasswordResetEmail(_ context.Context, to, link string) error {
	return m.record("reset", to, link)
}

func (m *fakeMailer) SendRoleChangeEmail(_ context.Context, to, role string) error {
	return m.record("role-change", to, role)
}

type fakeSmsVerifier struct {
	configured bool
	approved   bool
	started    []string
}

func (v *fakeSmsVerifier) IsConfigured() bool { return v.configured }

func (v *fakeSmsVerifier) StartVerification(_ context.Context, phone string) error {
	v.started = append(v.started, phone)
	return nil
}

func (v *fakeSmsVerifier) CheckVerification(_ context.Context, phone, code string) (bool, error) {
	return v.approved, nil
}

type enqueuedJob struct {
	queue   string
	payload interface{}
}

type fakeEnqueuer struct {
	mu   sync.Mutex
	jobs []enqueuedJob
}

func (e *fakeEnqueuer) Enqueue(_ context.Context, queue string, payload interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jobs = append(e.jobs, enqueuedJob{queue: queue, payload: payload})
	return nil
}
