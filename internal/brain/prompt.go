package brain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wolfman30/vigilante/internal/intel"
	"github.com/wolfman30/vigilante/internal/persona"
)

// historyWindow is how many prior lines the model sees.
const historyWindow = 10

const (
	PhaseEngagement = "ENGAGEMENT"
	PhaseExtraction = "EXTRACTION"
)

const toneRules = `TONE AND FLOW:
- Answer the caller's last message directly, in character, before steering.
- Keep it under two short sentences, lowercase, informal texting.
- Never use the same excuse or "technical problem" twice in a row.
- Do not ask for details already listed under INTEL GATHERED.
- Never reveal that you suspect a scam. Never say you are an AI.
- Never share real personal or financial data; invent harmless fake details if pressed.`

const replyShape = `Respond with ONE JSON object and nothing else:
{
  "analysis": "one line on what the caller is trying to do",
  "strategy": "your tactic this turn, e.g. faking an error, stalling, verifying identity",
  "reply": "your in-character message",
  "extractedIntel": {
    "scammerName": [], "bankAccounts": [], "upiIds": [], "phishingLinks": [], "phoneNumbers": [],
    "jobTitle": [], "companyNames": [], "location": [], "suspiciousKeywords": []
  }
}
Only put values in extractedIntel that the caller actually said.`

// Line is one prior message as the model sees it.
type Line struct {
	FromCounterpart bool
	Text            string
}

// Phase reports the conversation phase for an accumulated record.
func Phase(acc intel.Record) string {
	if acc.Total() == 0 {
		return PhaseEngagement
	}
	return PhaseExtraction
}

// BuildSystemPrompt renders persona, rules, session state and reply format.
func BuildSystemPrompt(p persona.Persona, acc intel.Record) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(p.Instructions))
	if p.Style != "" {
		fmt.Fprintf(&b, "\nStyle: %s.", p.Style)
	}
	if len(p.Catchphrases) > 0 {
		fmt.Fprintf(&b, "\nPhrases you like: %s.", strings.Join(p.Catchphrases, "; "))
	}

	b.WriteString("\n\n")
	b.WriteString(toneRules)

	gathered, err := json.Marshal(acc.Clone())
	if err != nil {
		gathered = []byte("{}")
	}
	targets := make([]string, 0, len(p.Targets))
	var missing []string
	for _, t := range p.Targets {
		targets = append(targets, string(t))
		if len(acc.Get(t)) == 0 {
			missing = append(missing, string(t))
		}
	}

	b.WriteString("\n\nSESSION STATE:\n")
	fmt.Fprintf(&b, "- CURRENT PHASE: %s\n", Phase(acc))
	fmt.Fprintf(&b, "- INTEL GATHERED: %s\n", gathered)
	fmt.Fprintf(&b, "- GOAL: get %s without sounding suspicious.\n", strings.Join(targets, ", "))
	if len(missing) > 0 {
		fmt.Fprintf(&b, "- STILL MISSING: %s\n", strings.Join(missing, ", "))
	}

	b.WriteString("\n")
	b.WriteString(replyShape)
	return b.String()
}

// BuildUserPrompt renders the last lines of the conversation and the new message.
func BuildUserPrompt(history []Line, message string) string {
	var b strings.Builder
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	if len(history) > 0 {
		b.WriteString("CONVERSATION SO FAR:\n")
		for _, line := range history {
			label := "YOU"
			if line.FromCounterpart {
				label = "SCAMMER"
			}
			fmt.Fprintf(&b, "%s: %s\n", label, strings.TrimSpace(line.Text))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "LATEST SCAMMER MESSAGE: %q", strings.TrimSpace(message))
	return b.String()
}
