// Package honeypot runs one conversation turn end to end: score, extract,
// generate the persona's reply, fold intelligence into the session and
// report detected scams.
package honeypot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/vigilante/internal/brain"
	"github.com/wolfman30/vigilante/internal/callback"
	"github.com/wolfman30/vigilante/internal/intel"
	"github.com/wolfman30/vigilante/internal/persona"
	"github.com/wolfman30/vigilante/internal/session"
	"github.com/wolfman30/vigilante/pkg/logging"
)

var tracer = otel.Tracer("vigilante/honeypot")

// ErrInvalidRequest is returned for a missing session id or message text.
var ErrInvalidRequest = errors.New("honeypot: invalid request")

// Generator produces the persona's reply.
type Generator interface {
	Generate(ctx context.Context, req brain.Request) (brain.Reply, error)
}

// Reporter schedules a callback report without blocking.
type Reporter interface {
	Schedule(r callback.Report)
}

// Observer receives every completed turn. Publish must not block.
type Observer interface {
	Publish(evt TurnEvent)
}

// Recorder captures turn metrics.
type Recorder interface {
	ObserveTurn(persona string, isScam bool, confidence, seconds float64)
	ObserveIntel(category string, added int)
	ObserveFallback(reason string)
}

// SessionLocker serializes turns of one session beyond this process.
type SessionLocker interface {
	Lock(ctx context.Context, id string) (func(), error)
}

type noopRecorder struct{}

func (noopRecorder) ObserveTurn(string, bool, float64, float64) {}
func (noopRecorder) ObserveIntel(string, int)                   {}
func (noopRecorder) ObserveFallback(string)                     {}

// Option configures an Engine.
type Option func(*Engine)

// WithReporter wires the callback publisher. Without it nothing is reported.
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

// WithObserver adds a turn observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithRecorder wires metrics.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.metrics = r
		}
	}
}

// WithExtractor overrides the extractor used for voice and unlabelled
// channels. Typed channels always skip voice normalization.
func WithExtractor(x *intel.Extractor) Option {
	return func(e *Engine) {
		if x != nil {
			e.extractor = x
		}
	}
}

// WithDistributedLock serializes turns across replicas on top of the
// in-process lock. A failing lock store degrades to the process lock.
func WithDistributedLock(l SessionLocker) Option {
	return func(e *Engine) {
		if l != nil {
			e.distributed = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine processes turns. It is safe for concurrent use; turns of one
// session are serialized.
type Engine struct {
	sessions    session.Repository
	locker      *session.Locker
	distributed SessionLocker
	personas    *persona.Registry
	extractor   *intel.Extractor
	typed       *intel.Extractor
	scorer      *intel.Scorer
	brain       Generator
	reporter    Reporter
	observers   []Observer
	metrics     Recorder
	logger      *logging.Logger
	now         func() time.Time
}

// NewEngine wires an engine. sessions, personas and generator are required.
func NewEngine(sessions session.Repository, personas *persona.Registry, generator Generator, logger *logging.Logger, opts ...Option) *Engine {
	if sessions == nil {
		panic("honeypot: session repository cannot be nil")
	}
	if personas == nil {
		panic("honeypot: persona registry cannot be nil")
	}
	if generator == nil {
		panic("honeypot: generator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		sessions:  sessions,
		locker:    session.NewLocker(),
		personas:  personas,
		extractor: intel.NewExtractor(),
		typed:     intel.NewExtractor(intel.WithoutNormalization()),
		scorer:    intel.NewScorer(),
		brain:     generator,
		metrics:   noopRecorder{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessTurn handles one counterpart message. Besides ErrInvalidRequest
// the only errors are context cancellation; generator and storage failures
// degrade to fallbacks.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	start := e.now()
	ctx, span := tracer.Start(ctx, "honeypot.process_turn")
	defer span.End()

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Message.Text) == "" {
		return nil, fmt.Errorf("%w: message text is required", ErrInvalidRequest)
	}
	span.SetAttributes(attribute.String("session.id", sessionID))
	log := e.logger.WithSession(sessionID)

	unlock, err := e.locker.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()
	if e.distributed != nil {
		unlockShared, err := e.distributed.Lock(ctx, sessionID)
		switch {
		case err == nil:
			defer unlockShared()
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			log.Warn("distributed session lock unavailable, using process lock only", "error", err)
		}
	}

	sess, loaded := e.loadOrCreate(ctx, sessionID, req, log)
	extractor := e.extractorFor(req.Metadata)
	if len(sess.Messages) == 0 && sess.MessageCount == 0 && len(req.History) > 0 {
		e.seedHistory(sess, req.History, extractor)
		log.Debug("seeded session from request history", "messages", len(req.History))
	}
	p := e.personas.Get(sess.PersonaID)
	sess.PersonaID = p.ID

	text := req.Message.Text
	assessment := e.scorer.Score(text)

	var (
		extracted intel.Record
		reply     brain.Reply
		fellBack  bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		extracted = extractor.Extract(text)
		return nil
	})
	g.Go(func() error {
		r, genErr := e.brain.Generate(gctx, brain.Request{
			Persona:     p,
			History:     historyLines(sess.Messages),
			Message:     text,
			Accumulated: sess.Intel,
		})
		if genErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			reason := fallbackReason(genErr)
			log.Warn("brain generation failed, using fallback reply", "error", genErr, "reason", reason)
			e.metrics.ObserveFallback(reason)
			r = brain.Fallback(genErr)
			fellBack = true
		}
		reply = r
		return nil
	})
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	turnIntel := intel.MergeTurn(extracted, reply.Intel)
	accumulated := intel.Accumulate(sess.Intel, turnIntel)
	for _, c := range intel.Categories {
		if added := len(accumulated[c]) - len(sess.Intel[c]); added > 0 {
			e.metrics.ObserveIntel(string(c), added)
		}
	}
	sess.Intel = accumulated

	now := e.now().UTC()
	sent := req.Message.Timestamp.Time
	if sent.IsZero() {
		sent = now
	}
	sess.Append(session.Message{Sender: session.SenderScammer, Text: text, Timestamp: sent})
	turns := sess.MessageCount
	sess.Append(session.Message{Sender: session.SenderPersona, Text: reply.Reply, Timestamp: now})
	sess.UpdatedAt = now

	report := callback.ShouldReport(assessment)
	firstDetection := report && !sess.ScamReported
	if report {
		sess.ScamReported = true
	}

	// A session that failed to load is a partial view; saving or reporting it
	// would overwrite the stored accumulator with less intelligence.
	if loaded {
		if err := e.sessions.Save(ctx, sess); err != nil {
			log.Error("failed to save session", "error", err)
		}
	} else {
		log.Warn("session store unavailable, turn not persisted or reported")
	}

	if loaded && report && e.reporter != nil {
		e.reporter.Schedule(callback.NewReport(sess.ID, p.ID, turns, sess.Intel, assessment, reply.Strategy, firstDetection, now))
	}

	elapsed := e.now().Sub(start)
	e.metrics.ObserveTurn(p.ID, assessment.IsScam, assessment.Confidence, elapsed.Seconds())
	span.SetAttributes(
		attribute.Bool("scam.detected", assessment.IsScam),
		attribute.Float64("scam.confidence", assessment.Confidence),
		attribute.Bool("brain.fallback", fellBack),
	)

	evt := TurnEvent{
		SessionID:    sess.ID,
		Persona:      p.ID,
		Message:      text,
		Reply:        reply.Reply,
		Strategy:     reply.Strategy,
		Intelligence: sess.Intel.Clone(),
		Confidence:   assessment.Confidence,
		IsScam:       assessment.IsScam,
		Reasons:      assessment.Reasons,
		Turns:        turns,
		Fallback:     fellBack,
		At:           now,
	}
	for _, o := range e.observers {
		o.Publish(evt)
	}

	log.Info("turn processed",
		"persona", p.ID,
		"turns", turns,
		"confidence", assessment.Confidence,
		"is_scam", assessment.IsScam,
		"intel_values", sess.Intel.Total(),
		"fallback", fellBack,
		"latency_ms", elapsed.Milliseconds(),
	)
	log.Debug("turn text", "message", text, "reply", reply.Reply)

	return &TurnResponse{
		Status:       "success",
		Reply:        reply.Reply,
		DebugThought: reply.Analysis + " | " + reply.Strategy,
		Intelligence: turnIntel,
		Metrics: TurnMetrics{
			Turns:      turns,
			Confidence: assessment.Confidence,
			IsScam:     assessment.IsScam,
			Reasons:    assessment.Reasons,
			Persona:    p.ID,
		},
	}, nil
}

// Session returns a copy of the stored session.
func (e *Engine) Session(ctx context.Context, id string) (*session.Session, error) {
	sess, err := e.sessions.Load(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// Personas exposes the registry for transport handlers.
func (e *Engine) Personas() *persona.Registry {
	return e.personas
}

// loadOrCreate never fails: storage errors start a fresh session so the
// turn can still be answered. loaded is false when the store could not say
// whether the session exists.
func (e *Engine) loadOrCreate(ctx context.Context, id string, req TurnRequest, log *logging.Logger) (sess *session.Session, loaded bool) {
	sess, err := e.sessions.Load(ctx, id)
	loaded = err == nil || errors.Is(err, session.ErrNotFound)
	if !loaded {
		log.Warn("failed to load session, answering from a fresh one", "error", err)
		sess = nil
	}
	if sess == nil {
		personaID := ""
		if req.Metadata != nil {
			personaID = req.Metadata.Persona
		}
		sess = session.New(id, e.personas.Get(personaID).ID, e.now().UTC())
	}
	if sess.Intel == nil {
		sess.Intel = intel.NewRecord()
	}
	return sess, loaded
}

// seedHistory replays transport-supplied history into an empty session and
// rebuilds the accumulated record from the counterpart's messages.
func (e *Engine) seedHistory(sess *session.Session, history []Message, extractor *intel.Extractor) {
	acc := intel.NewRecord()
	for _, m := range history {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		msg := session.Message{
			Sender:    session.NormalizeSender(m.Sender),
			Text:      m.Text,
			Timestamp: m.Timestamp.Time,
		}
		sess.Append(msg)
		if msg.FromCounterpart() {
			acc = intel.Accumulate(acc, extractor.Extract(m.Text))
		}
	}
	sess.Intel = acc
}

// typedChannels carry text the counterpart typed, where spoken-number
// normalization only corrupts words like "phone" and "done".
var typedChannels = map[string]struct{}{
	"sms": {}, "whatsapp": {}, "telegram": {}, "email": {}, "chat": {}, "webchat": {}, "instagram": {},
}

// extractorFor picks the extractor by metadata channel. Unknown or missing
// channels use the configured default.
func (e *Engine) extractorFor(md *Metadata) *intel.Extractor {
	if md == nil {
		return e.extractor
	}
	if _, ok := typedChannels[strings.ToLower(strings.TrimSpace(md.Channel))]; ok {
		return e.typed
	}
	return e.extractor
}

func historyLines(msgs []session.Message) []brain.Line {
	lines := make([]brain.Line, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, brain.Line{FromCounterpart: m.FromCounterpart(), Text: m.Text})
	}
	return lines
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, brain.ErrMalformedReply):
		return "malformed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport"
	}
}
