// Package brain asks a text generator for the persona's next reply and its
// own, untrusted, reading of the intelligence in the message.
package brain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/vigilante/internal/intel"
	"github.com/wolfman30/vigilante/internal/persona"
	"github.com/wolfman30/vigilante/pkg/logging"
)

var tracer = otel.Tracer("vigilante/brain")

var (
	// ErrMalformedReply means the generator answered but not with usable JSON.
	ErrMalformedReply = errors.New("brain: malformed reply")
	// ErrEmptyReply means the JSON carried no reply text.
	ErrEmptyReply = errors.New("brain: empty reply")
)

// Fixed replies used when the generator cannot be relied on.
const (
	TransportFallbackReply    = "sorry wait... my phone is glitching. what did u say?"
	TransportFallbackStrategy = "Error recovery"
	ParseFallbackReply        = "Could you repeat that?"
	ParseFallbackStrategy     = "Fallback"
)

var llmLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "vigilante",
		Subsystem: "brain",
		Name:      "llm_latency_seconds",
		Help:      "Latency of persona reply generation",
		Buckets:   []float64{0.25, 0.5, 1, 2, 3, 4, 5, 6, 8, 10, 15},
	},
	[]string{"model", "status"},
)

var llmTokensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "vigilante",
		Subsystem: "brain",
		Name:      "llm_tokens_total",
		Help:      "Tokens used by the LLM",
	},
	[]string{"model", "type"}, // type: input, output
)

func init() {
	prometheus.MustRegister(llmLatency, llmTokensTotal, providerSwitches)
}

// RegisterMetrics registers brain metrics with a non-default registry.
func RegisterMetrics(reg prometheus.Registerer) {
	if reg == nil || reg == prometheus.DefaultRegisterer {
		return
	}
	reg.MustRegister(llmLatency, llmTokensTotal, providerSwitches)
}

// Request is everything the generator sees for one turn.
type Request struct {
	Persona     persona.Persona
	History     []Line
	Message     string
	Accumulated intel.Record
}

// Reply is the decoded generator output.
type Reply struct {
	Analysis string          `json:"analysis"`
	Strategy string          `json:"strategy"`
	Reply    string          `json:"reply"`
	Intel    intel.Candidate `json:"extractedIntel"`
}

// Option configures a Brain.
type Option func(*Brain)

// WithTimeout bounds each generator call.
func WithTimeout(d time.Duration) Option {
	return func(b *Brain) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float32) Option {
	return func(b *Brain) {
		b.temperature = t
	}
}

// Brain builds prompts, calls the LLM and decodes its JSON answer.
type Brain struct {
	client      LLMClient
	model       string
	timeout     time.Duration
	temperature float32
	logger      *logging.Logger
}

// New returns a Brain. client is required.
func New(client LLMClient, model string, logger *logging.Logger, opts ...Option) *Brain {
	if client == nil {
		panic("brain: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	b := &Brain{
		client:      client,
		model:       model,
		timeout:     12 * time.Second,
		temperature: 0.7,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Generate returns the persona's next reply. Transport failures and timeouts
// are returned wrapped; undecodable output wraps ErrMalformedReply.
func (b *Brain) Generate(ctx context.Context, req Request) (Reply, error) {
	ctx, span := tracer.Start(ctx, "brain.generate")
	defer span.End()

	llmReq := LLMRequest{
		Model:  b.model,
		System: []string{BuildSystemPrompt(req.Persona, req.Accumulated)},
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: BuildUserPrompt(req.History, req.Message)},
		},
		MaxTokens:   1000,
		Temperature: b.temperature,
		JSON:        true,
	}

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	resp, err := b.client.Complete(callCtx, llmReq)
	latency := time.Since(start)
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmLatency.WithLabelValues(b.model, status).Observe(latency.Seconds())
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("vigilante.llm.model", b.model),
			attribute.String("vigilante.persona", req.Persona.ID),
			attribute.Float64("vigilante.llm.latency_ms", float64(latency.Milliseconds())),
			attribute.Int("vigilante.llm.input_tokens", int(resp.Usage.InputTokens)),
			attribute.Int("vigilante.llm.output_tokens", int(resp.Usage.OutputTokens)),
		)
	}
	if err != nil {
		span.RecordError(err)
		b.logger.Warn("llm completion failed", "model", b.model, "latency_ms", latency.Milliseconds(), "error", err)
		return Reply{}, fmt.Errorf("brain: completion failed: %w", err)
	}
	if resp.Usage.InputTokens > 0 {
		llmTokensTotal.WithLabelValues(b.model, "input").Add(float64(resp.Usage.InputTokens))
	}
	if resp.Usage.OutputTokens > 0 {
		llmTokensTotal.WithLabelValues(b.model, "output").Add(float64(resp.Usage.OutputTokens))
	}

	reply, err := ParseReply(resp.Text)
	if err != nil {
		span.RecordError(err)
		b.logger.Warn("llm reply unusable", "model", b.model, "error", err)
		return Reply{}, err
	}
	return reply, nil
}

// ParseReply decodes generator output, tolerating code fences and prose
// around the JSON object.
func ParseReply(raw string) (Reply, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return Reply{}, fmt.Errorf("%w: no json object", ErrMalformedReply)
		}
		text = text[start : end+1]
	}

	var reply Reply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	reply.Reply = strings.TrimSpace(reply.Reply)
	if reply.Reply == "" {
		return Reply{}, fmt.Errorf("%w: %w", ErrMalformedReply, ErrEmptyReply)
	}
	if reply.Intel == nil {
		reply.Intel = intel.Candidate{}
	}
	return reply, nil
}

// Fallback returns the fixed reply for a failed generation.
func Fallback(err error) Reply {
	if errors.Is(err, ErrMalformedReply) {
		return Reply{Analysis: "unparseable model output", Strategy: ParseFallbackStrategy, Reply: ParseFallbackReply, Intel: intel.Candidate{}}
	}
	return Reply{Analysis: "generator unavailable", Strategy: TransportFallbackStrategy, Reply: TransportFallbackReply, Intel: intel.Candidate{}}
}
