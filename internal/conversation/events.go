package conversation

// Role tags a transcript entry for rendering. Backend senders outside the
// known vocabulary are carried verbatim and rendered generically.
type Role string

const (
	RoleUser   Role = "user"
	RoleBot    Role = "bot"
	RoleSystem Role = "system"
	RoleError  Role = "error"
)

// Entry is one rendered utterance in the transcript.
type Entry struct {
	Text string
	Role Role
}

// State enumerates the controller lifecycle per conversation.
type State int

const (
	StateUninitialized State = iota
	StateBootstrapping
	StateIdle
	StateAwaitingResponse
	StateRevealingMessages
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBootstrapping:
		return "bootstrapping"
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateRevealingMessages:
		return "revealing_messages"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Event is delivered to the registered listener as the transcript and
// controller state change over time.
type Event interface{ isEvent() }

// EntryAppended carries one new transcript entry.
type EntryAppended struct{ Entry Entry }

// HistoryReplaced carries the full new transcript (bootstrap reset and the
// session-expired notice path).
type HistoryReplaced struct{ Entries []Entry }

// TypingChanged toggles the transient typing indicator. The indicator is
// synthetic and never part of the transcript itself.
type TypingChanged struct{ Typing bool }

// StateChanged reports a lifecycle transition.
type StateChanged struct{ State State }

func (EntryAppended) isEvent()   {}
func (HistoryReplaced) isEvent() {}
func (TypingChanged) isEvent()   {}
func (StateChanged) isEvent()    {}
