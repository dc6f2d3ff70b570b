package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/model"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/validation"
)

type lockState int

const (
	lockStateUnlocked lockState = iota
	lockStateLocked
)

// PeriodLock pins a working portfolio to the fiscal period it was assembled
// under. The first position added locks the session to the currently selected
// period; changing the period while positions exist signals that the portfolio
// must be cleared, since positions priced under one period are meaningless
// under another.
type PeriodLock struct {
	state  lockState
	period model.Period
}

// Observe advances the lock against the currently selected period and the
// portfolio size. It returns true when the portfolio must be cleared: the
// session was locked to a different period than the one now selected. After a
// clearing transition the lock re-pins to the new period.
//
// A partially selected period (only year or only quarter set) still counts as
// a period change; waiting for the second half would let positions survive
// half a period switch.
func (l *PeriodLock) Observe(current model.Period, portfolioSize int) bool {
	if portfolioSize == 0 {
		return false
	}

	switch l.state {
	case lockStateUnlocked:
		l.state = lockStateLocked
		l.period = current
		return false
	case lockStateLocked:
		if current.Defined() && current != l.period {
			l.period = current
			return true
		}
	}
	return false
}

// Locked reports whether the lock is pinned, and to which period.
func (l *PeriodLock) Locked() (model.Period, bool) {
	return l.period, l.state == lockStateLocked
}

// Unlock resets the lock to its initial state.
func (l *PeriodLock) Unlock() {
	l.state = lockStateUnlocked
	l.period = model.Period{}
}

// Session is one interactive portfolio-building workspace: a working
// portfolio, the selected base period, and the period lock guarding their
// consistency.
type Session struct {
	ID string

	mu        sync.Mutex
	portfolio model.Portfolio
	selected  model.Period
	lock      PeriodLock
}

// SessionSnapshot is a point-in-time copy of a session's state.
type SessionSnapshot struct {
	ID           string
	Portfolio    model.Portfolio
	Selected     model.Period
	Locked       bool
	LockedPeriod model.Period
}

// SessionService manages interactive portfolio-building sessions in memory.
// Sessions are ephemeral working state; only completed simulation runs are
// persisted.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionService creates a new SessionService.
func NewSessionService() *SessionService {
	return &SessionService{sessions: map[string]*Session{}}
}

// CreateSession creates a new empty session and returns its ID.
func (s *SessionService) CreateSession() string {
	session := &Session{
		ID:        uuid.NewString(),
		portfolio: model.Portfolio{},
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session.ID
}

// getSession looks up a session by ID.
func (s *SessionService) getSession(id string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return session, nil
}

// SetPeriod updates the session's selected base period. Returns true when the
// change tripped the period lock and the portfolio was cleared.
func (s *SessionService) SetPeriod(id string, period model.Period) (bool, error) {
	if err := validation.ValidatePeriod(period); err != nil {
		return false, err
	}

	session, err := s.getSession(id)
	if err != nil {
		return false, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.selected = period
	if session.lock.Observe(session.selected, len(session.portfolio)) {
		session.portfolio = model.Portfolio{}
		return true, nil
	}
	return false, nil
}

// AddPosition adds a position to the session's working portfolio. Adding a
// ticker that is already held replaces the held position. Returns true when
// the add tripped the period lock and the prior portfolio was cleared first.
func (s *SessionService) AddPosition(id string, position model.Position) (bool, error) {
	if err := validation.ValidatePosition(position); err != nil {
		return false, err
	}

	session, err := s.getSession(id)
	if err != nil {
		return false, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	cleared := session.lock.Observe(session.selected, len(session.portfolio))
	if cleared {
		session.portfolio = model.Portfolio{}
	}

	ticker := validation.NormalizeTicker(position.Ticker)
	position.Ticker = ticker
	session.portfolio[ticker] = position
	session.lock.Observe(session.selected, len(session.portfolio))

	return cleared, nil
}

// RemovePosition removes a held position from the session's portfolio.
func (s *SessionService) RemovePosition(id, ticker string) error {
	session, err := s.getSession(id)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	ticker = validation.NormalizeTicker(ticker)
	if _, held := session.portfolio[ticker]; !held {
		return apperrors.ErrPositionNotFound
	}
	delete(session.portfolio, ticker)
	return nil
}

// ClearPortfolio empties the session's working portfolio. The period lock
// stays pinned; clearing is not a period change.
func (s *SessionService) ClearPortfolio(id string) error {
	session, err := s.getSession(id)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.portfolio = model.Portfolio{}
	return nil
}

// Snapshot returns a point-in-time copy of the session's state.
func (s *SessionService) Snapshot(id string) (SessionSnapshot, error) {
	session, err := s.getSession(id)
	if err != nil {
		return SessionSnapshot{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	lockedPeriod, locked := session.lock.Locked()
	return SessionSnapshot{
		ID:           session.ID,
		Portfolio:    session.portfolio.Clone(),
		Selected:     session.selected,
		Locked:       locked,
		LockedPeriod: lockedPeriod,
	}, nil
}

// ReplayBase returns the session's selected period, validated as a complete
// (year, quarter) pair usable as a simulation base.
func (s *SessionService) ReplayBase(id string) (model.Period, model.Portfolio, error) {
	session, err := s.getSession(id)
	if err != nil {
		return model.Period{}, nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if !session.selected.Complete() {
		return model.Period{}, nil, apperrors.ErrIncompletePeriod
	}
	return session.selected, session.portfolio.Clone(), nil
}
