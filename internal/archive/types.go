package archive

import (
	"time"

	"github.com/wolfman30/vigilante/internal/intel"
)

// ReportRecord is the JSON document archived per scam session.
type ReportRecord struct {
	Version      string       `json:"version"` // "1.0"
	SessionID    string       `json:"session_id"`
	ReportID     string       `json:"report_id"`
	PersonaID    string       `json:"persona_id"`
	ArchivedAt   time.Time    `json:"archived_at"`
	ScamDetected bool         `json:"scam_detected"`
	Confidence   float64      `json:"confidence"`
	Reasons      []string     `json:"reasons"`
	MessageCount int          `json:"message_count"`
	AgentNotes   string       `json:"agent_notes"`
	Intelligence intel.Record `json:"intelligence"`
	Labels       Labels       `json:"labels"`
	Messages     []Message    `json:"messages,omitempty"`
}

// Labels tag the archived session for later analysis.
type Labels struct {
	ScamType    string `json:"scam_type"` // bank_kyc|upi_refund|job_offer|lottery|tech_support|investment|sextortion|other
	Language    string `json:"language"`  // english|hinglish|hindi|other
	Tactic      string `json:"tactic"`    // urgency|authority|greed|fear|romance|other
	AutoLabeled bool   `json:"auto_labeled"`
	LabelModel  string `json:"label_model"`
}

// Message is a single transcript line.
type Message struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ManifestEntry is one JSONL line in the monthly manifest file.
type ManifestEntry struct {
	SessionID    string  `json:"session_id"`
	S3Key        string  `json:"s3_key"`
	ScamType     string  `json:"scam_type"`
	Confidence   float64 `json:"confidence"`
	IntelValues  int     `json:"intel_values"`
	ArchivedAt   string  `json:"archived_at"`
	MessageCount int     `json:"message_count"`
}
