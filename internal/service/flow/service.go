// Package flow implements the scripted conversation engine behind the
// local devserver's flow endpoints.
package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnauthorized covers unknown sessions, token mismatches, and
	// sessions past the inactivity window; the handler maps it to 401.
	ErrUnauthorized = errors.New("session unauthorized")
)

// SessionTimeout is the sliding inactivity window, matching the client's
// own 30-minute expectation.
const SessionTimeout = 30 * time.Minute

// Intro is the result of opening a conversation.
type Intro struct {
	SessionID    string
	SessionToken string
	Messages     []string
}

// StepResult is the result of one advanced turn.
type StepResult struct {
	SessionID string
	Messages  []string
	Done      bool
}

type sessionState struct {
	token        string
	step         int
	lastActivity time.Time
}

// Service holds the in-memory session registry and the script.
type Service struct {
	mu       sync.RWMutex
	script   Script
	sessions map[string]*sessionState
	timeout  time.Duration
	now      func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithClock overrides the wall clock, used by tests to force expiry.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithTimeout overrides the inactivity window.
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = d }
}

// NewService bootstraps the in-memory flow engine.
func NewService(script Script, opts ...ServiceOption) *Service {
	s := &Service{
		script:   script,
		sessions: make(map[string]*sessionState),
		timeout:  SessionTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Intro provisions a fresh session and returns the greeting batch.
func (s *Service) Intro(_ context.Context) (Intro, error) {
	state := &sessionState{
		token:        uuid.NewString(),
		lastActivity: s.now(),
	}
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = state
	s.mu.Unlock()

	return Intro{
		SessionID:    id,
		SessionToken: state.token,
		Messages:     s.script.Greeting,
	}, nil
}

// Step validates the credentials and advances the script by one batch.
// The session disappears once the final batch is served.
func (s *Service) Step(_ context.Context, sessionID, token, _ string) (StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok || state.token != token {
		return StepResult{}, ErrUnauthorized
	}

	if s.now().Sub(state.lastActivity) > s.timeout {
		delete(s.sessions, sessionID)
		return StepResult{}, ErrUnauthorized
	}

	state.lastActivity = s.now()

	step := state.step
	if step >= len(s.script.Replies) {
		step = len(s.script.Replies) - 1
	}
	done := step == len(s.script.Replies)-1

	if done {
		delete(s.sessions, sessionID)
	} else {
		state.step++
	}

	return StepResult{
		SessionID: sessionID,
		Messages:  s.script.Replies[step],
		Done:      done,
	}, nil
}

// ActiveSessions reports the registry size, exposed for tests and the
// devserver's startup log line.
func (s *Service) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
