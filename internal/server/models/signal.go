package models

import (
	"fmt"
	"strings"
)

// SignalPrefix namespaces signal keys so that full listings can skip them.
const SignalPrefix = "signal_"

// SignalRecord is a directed social notification. ID is the store key; it is
// attached when listing and never persisted.
type SignalRecord struct {
	ID        string `json:"id,omitempty"`
	From      string `json:"from"`
	To        string `json:"to"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Read      bool   `json:"read"`
}

// SignalKey builds the store key for a signal sent to `to` at ts (epoch ms).
// The random suffix keeps near-simultaneous sends apart.
func SignalKey(to string, ts int64, suffix string) string {
	return fmt.Sprintf("%s%s_%d_%s", SignalPrefix, to, ts, suffix)
}

// SignalInboxPrefix is the key prefix of every signal addressed to username.
func SignalInboxPrefix(username string) string {
	return SignalPrefix + username + "_"
}

// IsSignalKey reports whether key belongs to the signal namespace.
func IsSignalKey(key string) bool {
	return strings.HasPrefix(key, SignalPrefix)
}
