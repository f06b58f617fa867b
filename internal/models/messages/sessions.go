package messages

import "sync"

// SessionState Состояние диалога пользователя.
type SessionState int

const (
	StateIdle SessionState = iota

	// Сценарий добавления расхода.
	StateSelectingCategory
	StateAddingCustomCategory
	StateSelectingAmount
	StateEnteringAmount
	StateEnteringDescription
	StateDeletingExpense

	// Сценарий добавления инвестиции.
	StateInvestSelectingCategory
	StateInvestSelectingAsset
	StateInvestEnteringQuantity
	StateInvestEnteringPrice
)

// Session Данные незавершённого диалога. У пользователя не бывает больше
// одной активной сессии: запуск нового сценария перетирает старую.
type Session struct {
	State    SessionState
	Category string
	Amount   float64
	Asset    string
	Quantity float64
}

// Active Признак незавершённого сценария.
func (s Session) Active() bool {
	return s.State != StateIdle
}

// SessionStore Хранилище сессий диалогов, ключ — telegram id пользователя.
// Живёт в памяти процесса: сессия создаётся при старте сценария и удаляется
// при завершении или отмене.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[int64]Session{}}
}

// Get Текущая сессия пользователя (пустая, если сценарий не запущен).
func (s *SessionStore) Get(userID int64) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[userID]
}

// Set Сохранение сессии пользователя.
func (s *SessionStore) Set(userID int64, session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
}

// Clear Завершение сценария: сессия удаляется.
func (s *SessionStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
