package utils

import (
	"github.com/google/uuid"
)

// NewRequestID returns a fresh correlation identifier attached to outgoing
// requests and their log entries.
func NewRequestID() string {
	return uuid.New().String()
}
