package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/tcghub/poke-tournaments/models"
	"github.com/tcghub/poke-tournaments/repositories"
	"github.com/tcghub/poke-tournaments/storage"
)

// In-memory fakes for the repository and storage interfaces. They mirror the
// postgres behavior the services depend on: sentinel errors, copy-on-read,
// tag superset matching and date ordering.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User

	updatePasswordCalls int
	markDeletionCalls   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByConfirmationToken(_ context.Context, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ConfirmationToken != nil && *u.ConfirmationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) ConfirmEmail(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.EmailConfirmed = true
	u.ConfirmationToken = nil
	return nil
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, id string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	r.updatePasswordCalls++
	u.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) MarkDeletionRequested(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	r.markDeletionCalls++
	u.DeletionRequested = true
	u.DeletionRequestedAt = &at
	return nil
}

func (r *fakeUserRepo) AddLinkedProvider(_ context.Context, id string, provider string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	for _, p := range u.LinkedProviders {
		if p == provider {
			return nil
		}
	}
	u.LinkedProviders = append(u.LinkedProviders, provider)
	return nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile

	deleteErr   error
	deleteCalls int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*models.Profile)}
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) Upsert(_ context.Context, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.Username != nil {
		for id, p := range r.profiles {
			if id != profile.ID && p.Username != nil && *p.Username == *profile.Username {
				return repositories.ErrProfileUsernameConflict
			}
		}
	}
	now := time.Now()
	if existing, ok := r.profiles[profile.ID]; ok {
		profile.Role = existing.Role
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.Role = models.RolePlayer
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	cp := *profile
	r.profiles[profile.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.profiles[id]; !ok {
		return repositories.ErrProfileNotFound
	}
	delete(r.profiles, id)
	return nil
}

type fakeVerificationRepo struct {
	mu       sync.Mutex
	requests []models.ShopVerificationRequest
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{}
}

func (r *fakeVerificationRepo) Create(_ context.Context, req *models.ShopVerificationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.CreatedAt = time.Now()
	r.requests = append(r.requests, *req)
	return nil
}

func (r *fakeVerificationRepo) GetLatestByUserID(_ context.Context, userID string) (*models.ShopVerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.requests) - 1; i >= 0; i-- {
		if r.requests[i].UserID == userID {
			cp := r.requests[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrVerificationNotFound
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[string]*models.Tournament
	regCounts   map[string]int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{
		tournaments: make(map[string]*models.Tournament),
		regCounts:   make(map[string]int),
	}
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	r.tournaments[t.ID] = &cp
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]models.Tournament, 0)
	for _, t := range r.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.ShopID != nil && t.ShopID != *filter.ShopID {
			continue
		}
		if !containsAllTags(t.Tags, filter.Tags) {
			continue
		}
		matched = append(matched, *t)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.Before(matched[j].Date)
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	t.UpdatedAt = time.Now()
	cp := *t
	r.tournaments[t.ID] = &cp
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) CountRegistrations(_ context.Context, tournamentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.regCounts[tournamentID], nil
}

func containsAllTags(have []string, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type fakeRegistrationRepo struct {
	mu           sync.Mutex
	byTournament map[string][]models.TournamentRegistration
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{byTournament: make(map[string][]models.TournamentRegistration)}
}

func (r *fakeRegistrationRepo) ListByTournamentID(_ context.Context, tournamentID string) ([]models.TournamentRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.TournamentRegistration(nil), r.byTournament[tournamentID]...), nil
}

func (r *fakeRegistrationRepo) ListByPlayerID(_ context.Context, playerID string) ([]models.TournamentRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.TournamentRegistration, 0)
	for _, regs := range r.byTournament {
		for _, reg := range regs {
			if reg.PlayerID == playerID {
				out = append(out, reg)
			}
		}
	}
	return out, nil
}

type fakeUploader struct {
	mu   sync.Mutex
	keys []string

	uploadErr error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{}
}

func (u *fakeUploader) Upload(_ context.Context, key string, _ string, _ io.Reader) (*storage.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.uploadErr != nil {
		return nil, u.uploadErr
	}
	u.keys = append(u.keys, key)
	return &storage.UploadResult{
		Key:      key,
		Location: "https://cdn.example.test/" + key,
		ETag:     "fake-etag",
	}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.test/" + key
}

func (u *fakeUploader) uploadCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.keys)
}
