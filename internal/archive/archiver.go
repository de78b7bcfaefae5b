package archive

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/vigilante/internal/callback"
	"github.com/wolfman30/vigilante/internal/session"
	"github.com/wolfman30/vigilante/pkg/logging"
)

// SessionLoader reads the transcript that goes with a report.
type SessionLoader interface {
	Load(ctx context.Context, id string) (*session.Session, error)
}

// Archiver labels a report and writes it to S3. It is a callback sink.
type Archiver struct {
	store      *Store
	classifier *Classifier
	sessions   SessionLoader
	logger     *logging.Logger
	now        func() time.Time
}

// NewArchiver returns nil when the store is not enabled.
func NewArchiver(store *Store, classifier *Classifier, sessions SessionLoader, logger *logging.Logger) *Archiver {
	if !store.Enabled() {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Archiver{store: store, classifier: classifier, sessions: sessions, logger: logger, now: time.Now}
}

// Name implements callback.Sink.
func (a *Archiver) Name() string { return "s3" }

// Deliver implements callback.Sink.
func (a *Archiver) Deliver(ctx context.Context, r callback.Report) error {
	msgs := a.transcript(ctx, r.Payload.SessionID)

	labels, err := a.classifier.Classify(ctx, msgs)
	if err != nil {
		a.logger.Warn("archive: classification failed, using rules",
			"error", err, "session_id", r.Payload.SessionID)
		labels = ruleLabels(msgs)
	}

	record := &ReportRecord{
		Version:      "1.0",
		SessionID:    r.Payload.SessionID,
		ReportID:     r.ID,
		PersonaID:    r.PersonaID,
		ArchivedAt:   a.now().UTC(),
		ScamDetected: r.Payload.ScamDetected,
		Confidence:   r.Confidence,
		Reasons:      r.Reasons,
		MessageCount: r.Payload.TotalMessagesExchanged,
		AgentNotes:   r.Payload.AgentNotes,
		Intelligence: r.Intel.Clone(),
		Labels:       *labels,
		Messages:     msgs,
	}
	_, err = a.store.ArchiveReport(ctx, record)
	return err
}

func (a *Archiver) transcript(ctx context.Context, sessionID string) []Message {
	if a.sessions == nil {
		return nil
	}
	sess, err := a.sessions.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			a.logger.Warn("archive: load transcript failed", "error", err, "session_id", sessionID)
		}
		return nil
	}
	msgs := make([]Message, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		msgs = append(msgs, Message{Sender: m.Sender, Text: m.Text, Timestamp: m.Timestamp})
	}
	return msgs
}
