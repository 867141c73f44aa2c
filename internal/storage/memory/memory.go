// Package memory is a process-local storage backend for tests and demos.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"kharcha/internal/core"
	"kharcha/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	mu       sync.Mutex
	users    map[string]core.User
	byEmail  map[string]string
	profiles map[string]core.ProfileSettings
	budgets  map[string]core.Budget
	expenses map[string][]core.Expense // per user, insertion order
}

func New() *Store {
	return &Store{
		users:    map[string]core.User{},
		byEmail:  map[string]string{},
		profiles: map[string]core.ProfileSettings{},
		budgets:  map[string]core.Budget{},
		expenses: map[string][]core.Expense{},
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) ListExpenses(_ context.Context, userID string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Expense(nil), s.expenses[userID]...)
	core.SortExpenses(out)
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, userID string, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	s.expenses[userID] = append(s.expenses[userID], e)
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, userID string, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.expenses[userID]
	for i := range items {
		if items[i].ID == e.ID {
			items[i] = e
			return e, nil
		}
	}
	return core.Expense{}, storage.ErrNotFound
}

func (s *Store) DeleteExpense(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.expenses[userID]
	for i := range items {
		if items[i].ID == id {
			s.expenses[userID] = append(items[:i:i], items[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) GetBudget(_ context.Context, userID string) (*core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[userID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *Store) UpsertBudget(_ context.Context, userID string, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[userID] = b
	return b, nil
}

func (s *Store) GetProfile(_ context.Context, userID string) (*core.ProfileSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) UpdateProfile(_ context.Context, userID string, p core.ProfileSettings) (core.ProfileSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[userID]; !ok {
		return core.ProfileSettings{}, storage.ErrNotFound
	}
	s.profiles[userID] = p
	return p, nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = core.NormalizeEmail(u.Email)
	if _, taken := s.byEmail[u.Email]; taken {
		return core.User{}, storage.ErrEmailTaken
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	s.profiles[u.ID] = core.DefaultProfileSettings()
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[core.NormalizeEmail(email)]
	if !ok {
		return core.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) MarkVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Verified = true
	s.users[id] = u
	return nil
}

func (s *Store) ListUserIDs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	return ids, nil
}
