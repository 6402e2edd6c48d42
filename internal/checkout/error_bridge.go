package checkout

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Severity string

const (
	SeverityError Severity = "error"

	// Auto-dismiss timeout for submission error toasts.
	NotificationTimeout = 7000 * time.Millisecond
)

// Notification is a request for the toast collaborator.
type Notification struct {
	Message     string        `json:"message"`
	Severity    Severity      `json:"severity"`
	Dismissable bool          `json:"dismissable"`
	Timeout     time.Duration `json:"timeout"`
}

func (n Notification) TimeoutMs() int64 {
	return n.Timeout.Milliseconds()
}

// ErrorNotification decides whether moving from prev to cur must notify. Only
// edges fire: absent -> present, or present -> a different occurrence.
func ErrorNotification(prev, cur *SubmissionError) (Notification, bool) {
	if cur == nil {
		return Notification{}, false
	}
	if prev != nil && sameOccurrence(prev, cur) {
		return Notification{}, false
	}
	return errorNotification(cur), true
}

func errorNotification(e *SubmissionError) Notification {
	message := strings.TrimSpace(e.Message)
	if message == "" {
		message = defaultSubmissionErrorMessage
	}
	return Notification{
		Message:     message,
		Severity:    SeverityError,
		Dismissable: true,
		Timeout:     NotificationTimeout,
	}
}

// Occurrence IDs win; errors without IDs fall back to comparing messages.
func sameOccurrence(a, b *SubmissionError) bool {
	if a.ID != "" || b.ID != "" {
		return a.ID == b.ID
	}
	return a.Message == b.Message
}

// ErrorBridge remembers the last observed error so the host loop can run the
// edge-triggered decision once per snapshot. Not safe for concurrent use; each
// host loop owns one.
type ErrorBridge struct {
	// Production disables the diagnostic log line.
	Production bool

	prev *SubmissionError
}

// Observe feeds the next snapshot and returns the notification to send, if any.
func (b *ErrorBridge) Observe(s Session) (Notification, bool) {
	cur := copyError(s.LastError)
	n, fire := ErrorNotification(b.prev, cur)
	b.prev = cur
	if fire && !b.Production {
		log.Error().
			Str("session_id", s.ID).
			Str("error_id", cur.ID).
			Str("stage", EffectiveStage(s).String()).
			Err(cur).
			Msg("checkout submission error")
	}
	return n, fire
}

// Reset forgets the previous error.
func (b *ErrorBridge) Reset() {
	b.prev = nil
}
