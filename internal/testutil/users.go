// Package testutil holds in-memory stand-ins for the Postgres and Redis
// repositories, shared by package tests.
package testutil

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"mentalwell/internal/domain/entity"
	"mentalwell/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Logger returns a logger that discards everything.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// HashPassword hashes with the minimum cost to keep tests fast.
func HashPassword(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}

// UserStore implements repository.UserRepository. When Err is set every
// method fails with it; Delay blocks each call until it elapses or the
// context ends.
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
	calls int

	Err   error
	Delay time.Duration
}

var _ repository.UserRepository = (*UserStore)(nil)

func NewUserStore(users ...*entity.User) *UserStore {
	s := &UserStore{users: make(map[uuid.UUID]*entity.User)}
	for _, u := range users {
		s.Add(u)
	}
	return s
}

// Add stores u as is, filling ID, IsActive and RegisteredAt when unset.
func (s *UserStore) Add(u *entity.User) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.IsActive == nil {
		u.IsActive = entity.Bool(true)
	}
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = time.Now().UTC()
	}
	s.users[u.ID] = u
	return u
}

// Get returns a copy of the stored user, bypassing Err and the call count.
func (s *UserStore) Get(id uuid.UUID) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

// Calls reports how many repository methods were invoked.
func (s *UserStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *UserStore) enter(ctx context.Context) error {
	s.mu.Lock()
	s.calls++
	delay, err := s.Delay, s.Err
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (s *UserStore) Create(ctx context.Context, user *entity.User) error {
	if err := s.enter(ctx); err != nil {
		return err
	}
	s.Add(user)
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string, activeOnly bool) (*entity.User, error) {
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email && (!activeOnly || u.Active()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	return s.Get(id), nil
}

func (s *UserStore) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if err := s.enter(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for column, value := range fields {
		switch column {
		case "email":
			u.Email = value.(string)
		case "nombre":
			u.FirstName = value.(string)
		case "apellido":
			u.LastName = value.(string)
		case "telefono":
			u.Phone = value.(string)
		case "fecha_nacimiento":
			u.BirthDate = value.(*time.Time)
		case "profesion":
			u.Profession = value.(string)
		case "especialidad":
			u.Specialty = value.(string)
		case "numero_licencia":
			u.LicenseNumber = value.(string)
		case "password_hash":
			u.PasswordHash = value.(string)
		case "configuracion":
			u.Preferences = value.(entity.JSON)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *UserStore) UpdateStatus(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.enter(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = entity.Bool(active)
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.enter(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *UserStore) ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error) {
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	return s.filter(func(u *entity.User) bool { return u.Role == role && u.Active() }), nil
}

func (s *UserStore) ListAll(ctx context.Context) ([]entity.User, error) {
	if err := s.enter(ctx); err != nil {
		return nil, err
	}
	return s.filter(func(*entity.User) bool { return true }), nil
}

func (s *UserStore) CountActiveByRole(ctx context.Context, role entity.Role) (int64, error) {
	users, err := s.ListByRole(ctx, role)
	return int64(len(users)), err
}

func (s *UserStore) CountByStatus(ctx context.Context, active bool) (int64, error) {
	if err := s.enter(ctx); err != nil {
		return 0, err
	}
	return int64(len(s.filter(func(u *entity.User) bool { return u.Active() == active }))), nil
}

func (s *UserStore) CountRegisteredSince(ctx context.Context, since time.Time) (int64, error) {
	if err := s.enter(ctx); err != nil {
		return 0, err
	}
	return int64(len(s.filter(func(u *entity.User) bool { return !u.RegisteredAt.Before(since) }))), nil
}

// filter returns matching users ordered by registration, newest first.
func (s *UserStore) filter(keep func(*entity.User) bool) []entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.User
	for _, u := range s.users {
		if keep(u) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.After(out[j].RegisteredAt) })
	return out
}
