package audit

import (
	"time"

	"github.com/rs/zerolog"
)

// Entry represents a single audit log entry with structured fields
type Entry struct {
	Timestamp    time.Time
	Action       string
	Actor        string
	ResourceType string
	ResourceID   string
	Status       string // "success" or "failure"
	Details      map[string]string
}

// Logger records state-changing operations on a dedicated audit stream.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a new audit logger writing through base.
func NewLogger(base zerolog.Logger) *Logger {
	return &Logger{logger: base.With().Bool("audit", true).Logger()}
}

// Log writes an audit entry
func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	event := l.logger.Info().
		Time("at", entry.Timestamp).
		Str("action", entry.Action).
		Str("actor", entry.Actor).
		Str("status", entry.Status)
	if entry.ResourceType != "" {
		event = event.Str("resource_type", entry.ResourceType)
	}
	if entry.ResourceID != "" {
		event = event.Str("resource_id", entry.ResourceID)
	}
	if len(entry.Details) > 0 {
		dict := zerolog.Dict()
		for k, v := range entry.Details {
			dict = dict.Str(k, v)
		}
		event = event.Dict("details", dict)
	}
	event.Msg("audit")
}

// LogSuccess logs a successful operation
func (l *Logger) LogSuccess(action, actor, resourceType, resourceID string, details map[string]string) {
	l.Log(Entry{
		Action:       action,
		Actor:        actor,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       "success",
		Details:      details,
	})
}

// LogFailure logs a rejected operation
func (l *Logger) LogFailure(action, actor, resourceType, resourceID string, details map[string]string) {
	l.Log(Entry{
		Action:       action,
		Actor:        actor,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       "failure",
		Details:      details,
	})
}
