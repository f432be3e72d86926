package user

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"inkwell/internal/auth/models"
	"inkwell/internal/sentinel"
	id "inkwell/pkg/domain"
)

// Error Contract:
// - Return sentinel.ErrNotFound when the requested user does not exist
// - Return sentinel.ErrAlreadyUsed when an email is already registered
// Stored records are copied in and out so callers never share state with the store.

// InMemoryUserStore keeps users in memory for development and tests.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemoryUserStore) Insert(_ context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return fmt.Errorf("email already registered: %w", sentinel.ErrAlreadyUsed)
	}
	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user id already exists: %w", sentinel.ErrAlreadyUsed)
	}
	stored := *user
	s.users[user.ID] = &stored
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		found := *user
		return &found, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID, ok := s.byEmail[email]; ok {
		found := *s.users[userID]
		return &found, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryUserStore) UpdatePasswordHash(_ context.Context, userID id.UserID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	user.PasswordHash = hash
	return nil
}

func (s *InMemoryUserStore) UpdateRole(_ context.Context, userID id.UserID, role id.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	user.Role = role
	return nil
}

// ListAll returns users ordered by creation time, then email.
func (s *InMemoryUserStore) ListAll(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		copied := *u
		users = append(users, &copied)
	}
	s.mu.RUnlock()

	slices.SortFunc(users, func(a, b *models.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Email, b.Email)
	})
	return users, nil
}

// Ping satisfies readiness checks; memory is always available.
func (s *InMemoryUserStore) Ping(_ context.Context) error {
	return nil
}
