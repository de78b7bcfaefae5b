package honeypot

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/vigilante/internal/intel"
)

// Timestamp accepts RFC 3339 strings, epoch numbers (seconds or
// milliseconds) or null. Anything unparseable decodes to the zero time.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			t.Time = time.Time{}
			return nil
		}
		t.Time = parseTimestamp(s)
		return nil
	}
	t.Time = parseTimestamp(string(data))
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC()
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && n > 0 {
		// Values past the year 2286 in seconds are taken as milliseconds.
		if n > 1e10 {
			return time.UnixMilli(int64(n)).UTC()
		}
		return time.Unix(int64(n), 0).UTC()
	}
	return time.Time{}
}

// Message is one line as the transport delivers it.
type Message struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp Timestamp `json:"timestamp"`
}

// Metadata is optional channel context.
type Metadata struct {
	Channel  string `json:"channel"`
	Language string `json:"language"`
	Locale   string `json:"locale"`
	Persona  string `json:"persona"`
}

// TurnRequest is the webhook body.
type TurnRequest struct {
	SessionID string    `json:"sessionId"`
	Message   Message   `json:"message"`
	History   []Message `json:"conversationHistory"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// TurnMetrics summarizes the session after a turn.
type TurnMetrics struct {
	Turns      int      `json:"turns"`
	Confidence float64  `json:"confidence"`
	IsScam     bool     `json:"isScam"`
	Reasons    []string `json:"reasons"`
	Persona    string   `json:"persona"`
}

// TurnResponse is returned to the transport.
type TurnResponse struct {
	Status       string       `json:"status"`
	Reply        string       `json:"reply"`
	DebugThought string       `json:"debug_thought"`
	Intelligence intel.Record `json:"intelligence"`
	Metrics      TurnMetrics  `json:"metrics"`
}

// TurnEvent is published to observers after every completed turn.
type TurnEvent struct {
	SessionID    string       `json:"session_id"`
	Persona      string       `json:"persona"`
	Message      string       `json:"message"`
	Reply        string       `json:"reply"`
	Strategy     string       `json:"strategy"`
	Intelligence intel.Record `json:"intelligence"`
	Confidence   float64      `json:"confidence"`
	IsScam       bool         `json:"is_scam"`
	Reasons      []string     `json:"reasons"`
	Turns        int          `json:"turns"`
	Fallback     bool         `json:"fallback"`
	At           time.Time    `json:"at"`
}
