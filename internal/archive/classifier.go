package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/wolfman30/vigilante/pkg/logging"
)

// BedrockConverseAPI is the subset of the Bedrock client used for labelling.
type BedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Classifier labels archived sessions. Without a Bedrock client it falls
// back to keyword rules.
type Classifier struct {
	client  BedrockConverseAPI
	modelID string
	logger  *logging.Logger
}

// NewClassifier creates a Classifier. client may be nil.
func NewClassifier(client BedrockConverseAPI, modelID string, logger *logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Classifier{client: client, modelID: modelID, logger: logger}
}

// Classify returns labels for the counterpart's side of a transcript.
func (c *Classifier) Classify(ctx context.Context, messages []Message) (*Labels, error) {
	if c == nil || c.client == nil || c.modelID == "" {
		return ruleLabels(messages), nil
	}

	var sb strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&sb, "%s: %s\n", m.Sender, m.Text)
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: classificationSystemPrompt},
		},
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: classificationPrompt(sb.String())},
				},
			},
		},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(256),
			Temperature: aws.Float32(0.0),
		},
	}

	resp, err := c.client.Converse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("archive: bedrock converse: %w", err)
	}

	text := extractResponseText(resp)
	if text == "" {
		return ruleLabels(messages), nil
	}
	return parseLabelsJSON(text, c.modelID, messages), nil
}

func extractResponseText(resp *bedrockruntime.ConverseOutput) string {
	if resp == nil || resp.Output == nil {
		return ""
	}
	output, ok := resp.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok || len(output.Value.Content) == 0 {
		return ""
	}
	textBlock, ok := output.Value.Content[0].(*brtypes.ContentBlockMemberText)
	if !ok {
		return ""
	}
	return textBlock.Value
}

func parseLabelsJSON(text, model string, messages []Message) *Labels {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return ruleLabels(messages)
	}

	var labels Labels
	if err := json.Unmarshal([]byte(text[start:end+1]), &labels); err != nil || labels.ScamType == "" {
		return ruleLabels(messages)
	}
	labels.AutoLabeled = true
	labels.LabelModel = model
	return &labels
}

var scamTypeRules = []struct {
	label string
	terms []string
}{
	{"bank_kyc", []string{"kyc", "account blocked", "account suspended", "pan card", "aadhaar"}},
	{"upi_refund", []string{"refund", "cashback", "upi pin", "collect request"}},
	{"job_offer", []string{"job", "work from home", "part time", "salary", "hiring"}},
	{"lottery", []string{"lottery", "prize", "winner", "lucky draw", "won"}},
	{"tech_support", []string{"anydesk", "teamviewer", "virus", "remote access"}},
	{"investment", []string{"crypto", "bitcoin", "trading", "double your", "returns"}},
}

var hinglishMarkers = []string{"bhai", "jaldi", "karo", "nahi", "aapka", "hai", "kya", "paisa"}

func ruleLabels(messages []Message) *Labels {
	var sb strings.Builder
	for _, m := range messages {
		if m.Sender == "user" {
			continue
		}
		sb.WriteString(strings.ToLower(m.Text))
		sb.WriteByte(' ')
	}
	text := sb.String()

	labels := &Labels{ScamType: "other", Language: "english", Tactic: "other"}
	for _, rule := range scamTypeRules {
		if containsAnyTerm(text, rule.terms) {
			labels.ScamType = rule.label
			break
		}
	}
	if containsAnyTerm(text, hinglishMarkers) {
		labels.Language = "hinglish"
	}
	switch {
	case containsAnyTerm(text, []string{"urgent", "immediately", "blocked", "suspended"}):
		labels.Tactic = "urgency"
	case containsAnyTerm(text, []string{"police", "rbi", "officer", "court", "customs"}):
		labels.Tactic = "authority"
	case containsAnyTerm(text, []string{"prize", "won", "returns", "bonus"}):
		labels.Tactic = "greed"
	}
	return labels
}

func containsAnyTerm(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

const classificationSystemPrompt = `You label scam conversations captured by a honeypot. Return only a JSON object. Be conservative.`

func classificationPrompt(conversationText string) string {
	return fmt.Sprintf(`Label this conversation. Return ONLY a JSON object with these fields:

{
  "scam_type": "bank_kyc|upi_refund|job_offer|lottery|tech_support|investment|sextortion|other",
  "language": "english|hinglish|hindi|other",
  "tactic": "urgency|authority|greed|fear|romance|other"
}

Judge only the scammer's messages; "user" lines are the honeypot persona.

Conversation:
%s`, conversationText)
}
