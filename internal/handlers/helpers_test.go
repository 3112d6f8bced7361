package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"POOLSHARE_BACK-END/internal/config"
	"POOLSHARE_BACK-END/internal/models"
	"POOLSHARE_BACK-END/internal/store"
	"POOLSHARE_BACK-END/internal/utils"
	"POOLSHARE_BACK-END/internal/visibility"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:         "handler-test-secret",
			AccessTokenTTL: time.Hour,
			ResetTokenTTL:  time.Hour,
		},
		Admin: config.AdminConfig{Secret: "admin-secret"},
		Email: config.EmailConfig{ResetURLBase: "http://localhost:3000/reset-password"},
	}
}

// fakeUserStore is an in-memory store.UserStore mirroring the database
// semantics the handlers rely on: case-insensitive unique emails and a
// reset token consumed by a single conditional update.
type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *fakeUserStore) emailTaken(email string, except uuid.UUID) bool {
	for _, u := range s.users {
		if u.ID != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *fakeUserStore) CreateUser(_ context.Context, u *models.User) error {
	if s.emailTaken(u.Email, u.ID) {
		return store.ErrDuplicateEmail
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) UpdateUser(_ context.Context, u *models.User) error {
	if _, ok := s.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	if s.emailTaken(u.Email, u.ID) {
		return store.ErrDuplicateEmail
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) SetResetToken(_ context.Context, userID uuid.UUID, token string, expires time.Time) error {
	u, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.ResetToken = &token
	u.ResetTokenExpires = &expires
	return nil
}

func (s *fakeUserStore) ResetPassword(_ context.Context, token, passwordHash string, now time.Time) error {
	for _, u := range s.users {
		if u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetTokenExpires != nil && !u.ResetTokenExpires.Before(now) {
			u.PasswordHash = passwordHash
			u.ResetToken = nil
			u.ResetTokenExpires = nil
			u.UpdatedAt = now
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *fakeUserStore) SetAvatarURL(_ context.Context, userID uuid.UUID, url string) error {
	u, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.AvatarURL = &url
	return nil
}

func (s *fakeUserStore) ListUsers(_ context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// fakePoolStore is an in-memory store.PoolStore. Owner-scoped mutations
// match id and owner together, the same way the SQL statements do.
type fakePoolStore struct {
	pools map[uuid.UUID]*models.Pool
}

func newFakePoolStore() *fakePoolStore {
	return &fakePoolStore{pools: make(map[uuid.UUID]*models.Pool)}
}

func (s *fakePoolStore) CreatePool(_ context.Context, p *models.Pool) error {
	cp := *p
	s.pools[p.ID] = &cp
	return nil
}

func (s *fakePoolStore) GetPoolByID(_ context.Context, id uuid.UUID) (*models.Pool, error) {
	p, ok := s.pools[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakePoolStore) ListPools(_ context.Context, filter visibility.ListFilter, now time.Time) ([]models.Pool, error) {
	out := make([]models.Pool, 0, len(s.pools))
	for _, p := range s.pools {
		if filter.OwnerID != nil {
			if p.OwnerID == *filter.OwnerID {
				out = append(out, *p)
			}
		} else if visibility.IsPubliclyVisible(p, now) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakePoolStore) UpdatePool(_ context.Context, p *models.Pool, ownerID uuid.UUID) error {
	existing, ok := s.pools[p.ID]
	if !ok || existing.OwnerID != ownerID {
		return store.ErrNotFound
	}
	existing.Title = p.Title
	existing.City = p.City
	existing.Capacity = p.Capacity
	existing.Images = p.Images
	existing.PricePerDay = p.PricePerDay
	existing.Description = p.Description
	existing.Filters = p.Filters
	existing.BusyDays = p.BusyDays
	existing.UpdatedAt = p.UpdatedAt
	return nil
}

func (s *fakePoolStore) DeletePool(_ context.Context, id, ownerID uuid.UUID) error {
	existing, ok := s.pools[id]
	if !ok || existing.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(s.pools, id)
	return nil
}

func (s *fakePoolStore) SetVisibility(_ context.Context, id uuid.UUID, visible bool, until *time.Time) (*models.Pool, error) {
	existing, ok := s.pools[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	existing.IsVisible = visible
	existing.VisibleUntil = until
	existing.UpdatedAt = time.Now()
	cp := *existing
	return &cp, nil
}

func (s *fakePoolStore) AppendImage(_ context.Context, id, ownerID uuid.UUID, url string) (*models.Pool, error) {
	existing, ok := s.pools[id]
	if !ok || existing.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	if len(existing.Images) >= store.MaxPoolImages {
		return nil, store.ErrImageLimit
	}
	existing.Images = append(existing.Images, url)
	existing.UpdatedAt = time.Now()
	cp := *existing
	return &cp, nil
}

// jsonRequest builds a request with a JSON body; as identifies the
// authenticated caller, nil means anonymous.
func jsonRequest(t *testing.T, method, target string, payload interface{}, as *models.User) *http.Request {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req = req.WithContext(utils.ContextWithUser(req.Context(), as.ID, as.Email))
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

// seedUser registers a user directly in the fake store with the given
// plaintext password
func seedUser(t *testing.T, s *fakeUserStore, email, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	now := time.Now()
	u := &models.User{
		ID:           uuid.New(),
		FirstName:    "Pat",
		LastName:     "Doe",
		Email:        email,
		Mobile:       "491234567890",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// seedPool stores a listing directly in the fake store
func seedPool(t *testing.T, s *fakePoolStore, owner uuid.UUID, visible bool, until *time.Time) *models.Pool {
	t.Helper()
	now := time.Now()
	p := &models.Pool{
		ID:           uuid.New(),
		OwnerID:      owner,
		Title:        "Garden pool",
		City:         "Hamburg",
		Capacity:     6,
		Images:       []string{"https://img.example.com/pool.jpg"},
		IsVisible:    visible,
		VisibleUntil: until,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreatePool(context.Background(), p))
	return p
}
