// Package callback delivers the final result report for a session to the
// evaluation endpoint and the durable sinks, off the request path.
package callback

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/vigilante/internal/intel"
)

// ReportedCategories are the categories the evaluation endpoint accepts.
var ReportedCategories = []intel.Category{
	intel.BankAccounts,
	intel.UPIIDs,
	intel.PhishingLinks,
	intel.PhoneNumbers,
	intel.SuspiciousKeywords,
}

// ExtractedIntelligence is the evaluator's view of the session record.
type ExtractedIntelligence struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// Payload is the body POSTed to the evaluation endpoint.
type Payload struct {
	SessionID              string                `json:"sessionId"`
	ScamDetected           bool                  `json:"scamDetected"`
	TotalMessagesExchanged int                   `json:"totalMessagesExchanged"`
	ExtractedIntelligence  ExtractedIntelligence `json:"extractedIntelligence"`
	AgentNotes             string                `json:"agentNotes"`
}

// Report is what travels through the queue: the payload plus the context
// the other sinks need.
type Report struct {
	ID             string       `json:"id"`
	Payload        Payload      `json:"payload"`
	PersonaID      string       `json:"persona_id"`
	Confidence     float64      `json:"confidence"`
	Reasons        []string     `json:"reasons"`
	Strategy       string       `json:"strategy"`
	Intel          intel.Record `json:"intel"`
	FirstDetection bool         `json:"first_detection"`
	CreatedAt      time.Time    `json:"created_at"`
}

// ShouldReport gates the callback on the scorer's verdict.
func ShouldReport(a intel.Assessment) bool {
	return a.IsScam || a.Confidence > intel.ScamThreshold
}

// Notes renders the agent notes line, e.g.
// "Scam Confidence: 0.7 (Urgency/Threat detected, Financial request detected) | Strategy: stalling".
func Notes(a intel.Assessment, strategy string) string {
	return fmt.Sprintf("Scam Confidence: %s (%s) | Strategy: %s",
		strconv.FormatFloat(a.Confidence, 'f', -1, 64),
		strings.Join(a.Reasons, ", "),
		strategy,
	)
}

// NewReport builds the report for a session's accumulated intelligence.
func NewReport(sessionID, personaID string, totalMessages int, acc intel.Record, a intel.Assessment, strategy string, firstDetection bool, now time.Time) Report {
	sub := acc.Restrict(ReportedCategories...)
	return Report{
		ID: uuid.NewString(),
		Payload: Payload{
			SessionID:              sessionID,
			ScamDetected:           ShouldReport(a),
			TotalMessagesExchanged: totalMessages,
			ExtractedIntelligence: ExtractedIntelligence{
				BankAccounts:       sub[intel.BankAccounts],
				UPIIDs:             sub[intel.UPIIDs],
				PhishingLinks:      sub[intel.PhishingLinks],
				PhoneNumbers:       sub[intel.PhoneNumbers],
				SuspiciousKeywords: sub[intel.SuspiciousKeywords],
			},
			AgentNotes: Notes(a, strategy),
		},
		PersonaID:      personaID,
		Confidence:     a.Confidence,
		Reasons:        append([]string{}, a.Reasons...),
		Strategy:       strategy,
		Intel:          acc.Clone(),
		FirstDetection: firstDetection,
		CreatedAt:      now.UTC(),
	}
}

func encodeReport(r Report) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("callback: encode report: %w", err)
	}
	return string(body), nil
}

func decodeReport(body string) (Report, error) {
	var r Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return Report{}, fmt.Errorf("callback: decode report: %w", err)
	}
	r.Intel = r.Intel.Clone()
	return r, nil
}
