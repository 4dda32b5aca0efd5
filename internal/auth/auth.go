package auth

import (
	"sort"
	"sync"
)

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

type Repository interface {
	LoadAll() ([]User, error)
	Upsert(user User) error
	Remove(userID int64) error
}

// Service is the bot allowlist. When it starts empty the bot is open to
// everyone until the first user is allowed; after that it stays restricted,
// even if every user is removed again.
type Service struct {
	mu           sync.RWMutex
	repo         Repository
	allowedUsers map[int64]User
	open         bool
}

func NewWithRepo(repo Repository, initial []int64) (*Service, error) {
	s := &Service{repo: repo, allowedUsers: make(map[int64]User)}
	if repo != nil {
		users, err := repo.LoadAll()
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			s.allowedUsers[u.ID] = u
		}
	}
	// merge initial IDs (from env) without usernames
	for _, id := range initial {
		if _, ok := s.allowedUsers[id]; !ok {
			s.allowedUsers[id] = User{ID: id}
		}
	}
	s.open = len(s.allowedUsers) == 0
	return s, nil
}

func (s *Service) IsAllowed(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.open {
		return true
	}
	_, ok := s.allowedUsers[userID]
	return ok
}

// Upsert persists the user first; memory is only touched on success.
func (s *Service) Upsert(user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo != nil {
		if err := s.repo.Upsert(user); err != nil {
			return err
		}
	}
	s.allowedUsers[user.ID] = user
	s.open = false
	return nil
}

func (s *Service) Remove(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo != nil {
		if err := s.repo.Remove(userID); err != nil {
			return err
		}
	}
	delete(s.allowedUsers, userID)
	return nil
}

// IsOpen reports whether the bot currently accepts every user.
func (s *Service) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// List returns the allowlist sorted by user id.
func (s *Service) List() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.allowedUsers))
	for _, u := range s.allowedUsers {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
