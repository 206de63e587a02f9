package models

import (
	"time"

	"github.com/sirupsen/logrus"
)

type LogEntry struct {

	// Fields attached to the entry, with secret values masked.
	Data logrus.Fields `json:"data,omitempty"`

	// Time at which the log entry was created
	Time time.Time `json:"time"`

	// Level the log entry was logged at
	Level logrus.Level `json:"level,omitempty"`

	// Message with secret values masked
	Message string `json:"message,omitempty"`
}

// NewLogEntry copies an entry, passing the message and every string field
// through mask.
func NewLogEntry(entry *logrus.Entry, mask func(string) string) *LogEntry {
	if mask == nil {
		mask = func(s string) string { return s }
	}

	data := make(logrus.Fields, len(entry.Data))
	for key, value := range entry.Data {
		switch v := value.(type) {
		case string:
			data[key] = mask(v)
		case error:
			data[key] = mask(v.Error())
		default:
			data[key] = value
		}
	}

	return &LogEntry{
		Data:    data,
		Time:    entry.Time,
		Level:   entry.Level,
		Message: mask(entry.Message),
	}
}
