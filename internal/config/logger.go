package config

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/models"
)

const (
	redactedValue = "****"

	// Values shorter than this are too likely to collide with ordinary text.
	minimumSecretLength = 6

	recentEventsSize = 1000
)

// redactingHook masks registered secrets in every entry and keeps the most
// recent entries in a ring buffer for diagnostics.
type redactingHook struct {
	sessionUID uuid.UUID

	secretsMu sync.RWMutex
	secrets   map[string]struct{}
	replacer  *strings.Replacer

	// Ring buffer for storing events
	mu          sync.RWMutex
	eventBuffer []*models.LogEntry
	maxSize     int
	currentPos  int
	isFull      bool
}

var hook = newRedactingHook(recentEventsSize)

func newRedactingHook(size int) *redactingHook {
	return &redactingHook{
		sessionUID:  uuid.New(),
		secrets:     make(map[string]struct{}),
		eventBuffer: make([]*models.LogEntry, size),
		maxSize:     size,
	}
}

// EnableRedaction installs the hook on the standard logger once.
func EnableRedaction() {
	loggingOnce.Do(func() {
		logrus.AddHook(hook)
	})
}

// RegisterSecret adds a value to be masked in log output.
func RegisterSecret(secret string) {
	hook.register(secret)
}

// Redact masks every registered secret in s.
func Redact(s string) string {
	return hook.redact(s)
}

// RecentEvents returns up to count of the most recent log entries, oldest first.
func RecentEvents(count int) []*models.LogEntry {
	return hook.recentEvents(count)
}

// SessionID identifies this process in diagnostics.
func SessionID() uuid.UUID {
	return hook.sessionUID
}

func (h *redactingHook) register(secret string) {
	secret = strings.TrimSpace(secret)
	if len(secret) < minimumSecretLength {
		return
	}

	h.secretsMu.Lock()
	defer h.secretsMu.Unlock()

	if _, exists := h.secrets[secret]; exists {
		return
	}
	h.secrets[secret] = struct{}{}

	pairs := make([]string, 0, len(h.secrets)*2)
	for value := range h.secrets {
		pairs = append(pairs, value, redactedValue)
	}
	h.replacer = strings.NewReplacer(pairs...)
}

func (h *redactingHook) redact(s string) string {
	h.secretsMu.RLock()
	replacer := h.replacer
	h.secretsMu.RUnlock()

	if replacer == nil || len(s) == 0 {
		return s
	}
	return replacer.Replace(s)
}

// Fire masks the entry in place so formatters never see the secret, then
// records a copy.
func (h *redactingHook) Fire(entry *logrus.Entry) error {
	logEntry := models.NewLogEntry(entry, h.redact)

	entry.Message = logEntry.Message
	for key, value := range logEntry.Data {
		entry.Data[key] = value
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Add to ring buffer
	h.eventBuffer[h.currentPos] = logEntry
	h.currentPos = (h.currentPos + 1) % h.maxSize

	if h.currentPos == 0 {
		h.isFull = true
	}

	return nil
}

func (h *redactingHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *redactingHook) events() []*models.LogEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.isFull {
		// Return only filled portion
		result := make([]*models.LogEntry, h.currentPos)
		copy(result, h.eventBuffer[:h.currentPos])
		return result
	}

	// Return in chronological order (oldest first)
	result := make([]*models.LogEntry, h.maxSize)
	copy(result, h.eventBuffer[h.currentPos:])
	copy(result[h.maxSize-h.currentPos:], h.eventBuffer[:h.currentPos])
	return result
}

func (h *redactingHook) recentEvents(count int) []*models.LogEntry {
	events := h.events()
	if count <= 0 || len(events) <= count {
		return events
	}
	return events[len(events)-count:]
}
