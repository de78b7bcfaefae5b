package intel

import "strings"

// ScamThreshold is the confidence at or above which a message counts as a scam.
const ScamThreshold = 0.4

// Reasons reported by the scorer, in evaluation order.
const (
	ReasonUrgency   = "Urgency/Threat detected"
	ReasonFinancial = "Financial request detected"
	ReasonAction    = "Suspicious action requested"
	ReasonURL       = "Contains URL"
)

// Assessment is the scorer's verdict for one message.
type Assessment struct {
	IsScam     bool     `json:"isScam"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

type signal struct {
	reason string
	points int
	terms  []string
}

// Weights are in hundredths so sums stay exact.
var signals = []signal{
	{
		reason: ReasonUrgency,
		points: 40,
		terms:  []string{"urgent", "immediately", "suspended", "blocked", "arrest", "warrant", "expire", "lapse", "turant", "jaldi"},
	},
	{
		reason: ReasonFinancial,
		points: 30,
		terms:  []string{"pay", "transfer", "upi", "bank", "refund", "gpay", "paytm", "credit card", "kyc", "paise"},
	},
	{
		reason: ReasonAction,
		points: 30,
		terms:  []string{"click here", "link", "download", "apk", "form"},
	},
	{
		reason: ReasonURL,
		points: 20,
		terms:  []string{"http://", "https://"},
	},
}

// Scorer rates a raw message for scam likelihood. It is stateless.
type Scorer struct{}

// NewScorer returns a scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score evaluates each signal once against the lower-cased message. Terms are
// matched as substrings. Confidence is capped at 1.0.
func (s *Scorer) Score(raw string) Assessment {
	lower := strings.ToLower(raw)
	points := 0
	reasons := []string{}
	for _, sig := range signals {
		if containsAny(lower, sig.terms) {
			points += sig.points
			reasons = append(reasons, sig.reason)
		}
	}
	if points > 100 {
		points = 100
	}
	return Assessment{
		IsScam:     points >= int(ScamThreshold*100),
		Confidence: float64(points) / 100,
		Reasons:    reasons,
	}
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
