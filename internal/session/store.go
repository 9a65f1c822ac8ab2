package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	keySessionID    = "wuffchat_session_id"
	keySessionToken = "wuffchat_session_token"
	keyTimestamp    = "wuffchat_session_timestamp"

	// Timeout is the sliding inactivity window after which a stored
	// session is treated as absent.
	Timeout = 30 * time.Minute
)

// Session is the backend-issued identity bound to one conversation. The
// token must never appear in logs; it only travels to storage and into
// outgoing request bodies.
type Session struct {
	ID    string
	Token string
}

// Store persists and validates the session entity. Expiry is enforced
// lazily on read, so there is no timer lifecycle to manage and validity is
// always judged against wall-clock time at the moment of use.
type Store struct {
	storage Storage
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the wall clock, used by tests to control expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTimeout overrides the inactivity window.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// WithLogger attaches a logger for storage-failure diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore wraps the given storage. A nil storage gets an in-memory one.
func NewStore(storage Storage, opts ...Option) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	s := &Store{
		storage: storage,
		timeout: Timeout,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSession persists the identity and stamps the current time. Both
// arguments must be non-empty. Storage failures are reported as false,
// never as a panic or error value the caller has to unwrap.
func (s *Store) SetSession(id, token string) bool {
	if id == "" || token == "" {
		s.log.Warn().Msg("session store: refusing to persist incomplete session")
		return false
	}

	// Fixed write order; a partial write is surfaced as a failure and the
	// half-written state falls out as "absent" on the next read.
	if err := s.storage.Set(keySessionID, id); err != nil {
		s.log.Error().Err(err).Msg("session store: failed to persist session id")
		return false
	}
	if err := s.storage.Set(keySessionToken, token); err != nil {
		s.log.Error().Err(err).Msg("session store: failed to persist session token")
		return false
	}
	if err := s.storage.Set(keyTimestamp, s.formatNow()); err != nil {
		s.log.Error().Err(err).Msg("session store: failed to persist session timestamp")
		return false
	}
	return true
}

// GetSession reads the stored session. Any missing field, unreadable
// storage, or malformed timestamp yields absent. An expired session is
// cleared as a side effect and also yields absent.
func (s *Store) GetSession() (Session, bool) {
	id, err := s.storage.Get(keySessionID)
	if err != nil {
		return Session{}, false
	}
	token, err := s.storage.Get(keySessionToken)
	if err != nil {
		return Session{}, false
	}
	stamp, err := s.storage.Get(keyTimestamp)
	if err != nil {
		return Session{}, false
	}
	if id == "" || token == "" || stamp == "" {
		return Session{}, false
	}

	millis, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		s.log.Warn().Str("timestamp", stamp).Msg("session store: malformed timestamp, dropping session")
		s.ClearSession()
		return Session{}, false
	}

	age := s.now().Sub(time.UnixMilli(millis))
	if age > s.timeout {
		s.ClearSession()
		return Session{}, false
	}

	return Session{ID: id, Token: token}, true
}

// RefreshSession extends the inactivity window by rewriting only the
// timestamp. It reports false when no valid session exists.
func (s *Store) RefreshSession() bool {
	if _, ok := s.GetSession(); !ok {
		return false
	}
	if err := s.storage.Set(keyTimestamp, s.formatNow()); err != nil {
		s.log.Error().Err(err).Msg("session store: failed to refresh session timestamp")
		return false
	}
	return true
}

// ClearSession removes all session keys. Removing keys that are already
// gone is fine; only a storage error makes this report false.
func (s *Store) ClearSession() bool {
	ok := true
	for _, key := range []string{keySessionID, keySessionToken, keyTimestamp} {
		if err := s.storage.Remove(key); err != nil && !errors.Is(err, ErrKeyNotFound) {
			s.log.Error().Err(err).Str("key", key).Msg("session store: failed to remove key")
			ok = false
		}
	}
	return ok
}

// HasValidSession reports whether GetSession would succeed right now.
func (s *Store) HasValidSession() bool {
	_, ok := s.GetSession()
	return ok
}

func (s *Store) formatNow() string {
	return strconv.FormatInt(s.now().UnixMilli(), 10)
}
