package history

import (
	"log"
	"sync"
)

// Interaction is one user message paired with the reply the bot gave.
type Interaction struct {
	UserInput string
	BotOutput string
}

// Store keeps the recent conversation of every user.
// Get must return an empty slice for unknown users, Clear on an unknown user is a no-op.
type Store interface {
	Get(userID int64) []Interaction
	Add(userID int64, userInput, botOutput string)
	Clear(userID int64)
}

type Manager struct {
	mu       sync.RWMutex
	maxSize  int
	sessions map[int64]*ring
}

func NewManager(maxSize int) *Manager {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Manager{maxSize: maxSize, sessions: make(map[int64]*ring)}
}

func (m *Manager) MaxSize() int { return m.maxSize }

func (m *Manager) Get(userID int64) []Interaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.sessions[userID]
	if !ok {
		return nil
	}
	return r.slice()
}

func (m *Manager) Add(userID int64, userInput, botOutput string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.sessions[userID]
	if !ok {
		r = newRing(m.maxSize)
		m.sessions[userID] = r
	}
	r.push(Interaction{UserInput: userInput, BotOutput: botOutput})
}

func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[userID]; !ok {
		log.Printf("history: clear requested for unknown user %d", userID)
		return
	}
	delete(m.sessions, userID)
	log.Printf("history: cleared for user %d", userID)
}

func (m *Manager) Len(userID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.sessions[userID]; ok {
		return r.size
	}
	return 0
}

// Users lists the users that currently hold a history, in no particular order.
func (m *Manager) Users() []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int64, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	return out
}
