// Package conversation drives one backend conversation turn and the staged,
// human-paced reveal of multi-message responses.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/wuffchat/wuffchat-cli/internal/api"
	"github.com/wuffchat/wuffchat-cli/internal/session"
)

const (
	// ReadingSpeed paces the staged reveal, in characters per second.
	ReadingSpeed = 100

	// MinDelay is the floor under a message's display delay so short
	// messages are never flashed imperceptibly fast.
	MinDelay = time.Second

	// IndicatorDelay is how long the typing indicator shows before every
	// message except the first of a batch.
	IndicatorDelay = time.Second

	// RestartDelay is the pause between the session-expired notice and the
	// automatic re-bootstrap, long enough to read the notice.
	RestartDelay = 2 * time.Second
)

// User-visible notices. Failures surface as chat bubbles in the product
// language, never as raw error dumps.
const (
	NoticeGreetingFailed = "Willkommen! Leider konnte die Begrüßung nicht geladen werden."
	NoticeSessionExpired = "Deine Sitzung ist abgelaufen. Bitte starte eine neue Unterhaltung."
	NoticeServerError    = "Serverfehler. Bitte später erneut versuchen."
)

// Transport is the backend collaborator the controller talks through.
// *api.Client satisfies it.
type Transport interface {
	Intro(ctx context.Context) (*api.IntroResponse, error)
	Step(ctx context.Context, sessionID, sessionToken, text string) (*api.StepResponse, error)
}

// Controller orchestrates the request/response cycle of one conversation:
// session bootstrap, turn submission, expiry detection, and the staged
// reveal schedule. Callers must serialize turns; the controller is safe to
// touch from timer callbacks and the UI goroutine but does not queue
// overlapping SubmitTurn calls.
type Controller struct {
	mu       sync.Mutex
	store    *session.Store
	client   Transport
	sched    Scheduler
	log      zerolog.Logger
	listener func(Event)

	state        State
	history      []Entry
	typing       bool
	sessionID    string
	sessionToken string

	// epoch increments on every bootstrap. Scheduled callbacks capture it
	// and no-op when stale, so a reset never resurrects cleared history.
	epoch int
}

// ControllerOption customizes a Controller.
type ControllerOption func(*Controller)

// WithScheduler substitutes the reveal scheduler.
func WithScheduler(s Scheduler) ControllerOption {
	return func(c *Controller) { c.sched = s }
}

// WithControllerLogger attaches a logger.
func WithControllerLogger(log zerolog.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// WithListener registers the event sink. The listener runs with the
// controller lock held and must not call back into the controller;
// forwarding onto a channel is the intended use.
func WithListener(fn func(Event)) ControllerOption {
	return func(c *Controller) { c.listener = fn }
}

// NewController wires the controller to its session store and transport.
func NewController(store *session.Store, client Transport, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:  store,
		client: client,
		sched:  NewTimerScheduler(),
		log:    zerolog.Nop(),
		state:  StateUninitialized,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// History returns a copy of the transcript.
func (c *Controller) History() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.history))
	copy(out, c.history)
	return out
}

// Typing reports whether the typing indicator is showing.
func (c *Controller) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

// Bootstrap starts a fresh conversation. Any stored session is discarded
// first so every (re)opened conversation gets a greeting; greetings are not
// resumable by design. Greeting messages append immediately, without the
// staged delay. A transport failure leaves the controller in a usable Idle
// state with a single error notice.
func (c *Controller) Bootstrap(ctx context.Context) {
	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.sessionID = ""
	c.sessionToken = ""
	c.store.ClearSession()
	c.history = nil
	c.setTypingLocked(false)
	c.emitLocked(HistoryReplaced{Entries: nil})
	c.setStateLocked(StateBootstrapping)
	c.mu.Unlock()

	resp, err := c.client.Intro(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return
	}

	if err != nil {
		c.log.Error().Err(err).Msg("conversation bootstrap failed")
		c.appendLocked(Entry{Text: NoticeGreetingFailed, Role: RoleError})
		c.setStateLocked(StateIdle)
		return
	}

	if resp.SessionID != "" && resp.SessionToken != "" {
		if c.store.SetSession(resp.SessionID, resp.SessionToken) {
			c.sessionID = resp.SessionID
			c.sessionToken = resp.SessionToken
		} else {
			c.log.Error().Msg("failed to persist bootstrapped session")
		}
	}

	for _, msg := range resp.Messages {
		c.appendLocked(entryFromMessage(msg))
	}
	c.setStateLocked(StateIdle)
}

// SubmitTurn sends one user turn. Whitespace-only input is a no-op: no
// history entry, no network call. The call returns once the response has
// been interpreted; the reveal of the returned batch is fire-and-forget.
func (c *Controller) SubmitTurn(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	c.mu.Lock()
	epoch := c.epoch
	sessionID, sessionToken := c.sessionID, c.sessionToken
	c.appendLocked(Entry{Text: text, Role: RoleUser})
	c.setStateLocked(StateAwaitingResponse)
	c.mu.Unlock()

	resp, err := c.client.Step(ctx, sessionID, sessionToken, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		// A reset happened while the request was in flight; the response
		// belongs to a conversation that no longer exists.
		return
	}

	switch {
	case errors.Is(err, api.ErrUnauthorized):
		c.log.Info().Msg("session expired, scheduling fresh conversation")
		c.store.ClearSession()
		c.sessionID = ""
		c.sessionToken = ""
		c.history = []Entry{{Text: NoticeSessionExpired, Role: RoleSystem}}
		c.setTypingLocked(false)
		c.emitLocked(HistoryReplaced{Entries: c.historyCopyLocked()})
		c.setStateLocked(StateTerminated)
		c.sched.AfterFunc(RestartDelay, func() {
			c.restartIfTerminated(epoch)
		})

	case err != nil:
		c.log.Error().Err(err).Msg("turn submission failed")
		c.store.ClearSession()
		c.sessionID = ""
		c.sessionToken = ""
		c.appendLocked(Entry{Text: NoticeServerError, Role: RoleError})
		c.setStateLocked(StateIdle)

	default:
		c.store.RefreshSession()
		if c.sessionID == "" && resp.SessionID != "" {
			// Bootstrap was skipped or failed silently; adopt the
			// identity the backend is already using.
			c.sessionID = resp.SessionID
		}
		c.scheduleRevealLocked(resp.Messages, resp.Done, epoch)
		if resp.Done {
			// Completion does not cancel the in-flight reveal; the
			// session just stops being reusable.
			c.store.ClearSession()
			c.sessionID = ""
			c.sessionToken = ""
		}
	}
}

// scheduleRevealLocked stages the batch per the pacing rules: each message
// waits proportionally to its length (floored at MinDelay), and every
// message after the first is preceded by IndicatorDelay of typing state.
func (c *Controller) scheduleRevealLocked(msgs []api.Message, done bool, epoch int) {
	terminal := StateIdle
	if done {
		terminal = StateTerminated
	}

	if len(msgs) == 0 {
		c.setStateLocked(terminal)
		return
	}

	c.setStateLocked(StateRevealingMessages)

	cursor := time.Duration(0)
	for i, msg := range msgs {
		entry := entryFromMessage(msg)
		lead := time.Duration(0)
		if i > 0 {
			lead = IndicatorDelay
			c.afterLocked(cursor, epoch, func() {
				c.setTypingLocked(true)
			})
		}
		c.afterLocked(cursor+lead, epoch, func() {
			c.setTypingLocked(false)
			c.appendLocked(entry)
		})
		cursor += displayDelay(entry.Text) + lead
	}

	c.afterLocked(cursor, epoch, func() {
		c.setStateLocked(terminal)
	})
}

// restartIfTerminated re-bootstraps after the expiry notice, unless the
// user already started over (or anything else moved the state).
func (c *Controller) restartIfTerminated(epoch int) {
	c.mu.Lock()
	stale := c.epoch != epoch || c.state != StateTerminated
	c.mu.Unlock()
	if stale {
		return
	}
	c.Bootstrap(context.Background())
}

// afterLocked schedules fn relative to now. fn runs under the controller
// lock and only if the epoch still matches; late callbacks from an
// abandoned conversation are no-ops.
func (c *Controller) afterLocked(d time.Duration, epoch int, fn func()) {
	c.sched.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch {
			return
		}
		fn()
	})
}

func (c *Controller) appendLocked(entry Entry) {
	c.history = append(c.history, entry)
	c.emitLocked(EntryAppended{Entry: entry})
}

func (c *Controller) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	c.emitLocked(StateChanged{State: s})
}

func (c *Controller) setTypingLocked(typing bool) {
	if c.typing == typing {
		return
	}
	c.typing = typing
	c.emitLocked(TypingChanged{Typing: typing})
}

func (c *Controller) emitLocked(ev Event) {
	if c.listener != nil {
		c.listener(ev)
	}
}

func (c *Controller) historyCopyLocked() []Entry {
	out := make([]Entry, len(c.history))
	copy(out, c.history)
	return out
}

// entryFromMessage maps a normalized wire message onto a transcript entry.
// Messages without a sender default to the bot role.
func entryFromMessage(msg api.Message) Entry {
	role := RoleBot
	if msg.Sender != "" {
		role = Role(msg.Sender)
	}
	return Entry{Text: msg.Text, Role: role}
}

// displayDelay converts message length into reading time.
func displayDelay(text string) time.Duration {
	d := time.Duration(utf8.RuneCountInString(text)) * time.Second / ReadingSpeed
	if d < MinDelay {
		return MinDelay
	}
	return d
}
