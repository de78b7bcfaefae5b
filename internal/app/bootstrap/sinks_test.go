package bootstrap

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	appconfig "github.com/wolfman30/vigilante/internal/config"
	"github.com/wolfman30/vigilante/internal/notify"
	"github.com/wolfman30/vigilante/internal/session"
	"github.com/wolfman30/vigilante/pkg/logging"
)

func sinkNames(s Sinks) []string {
	names := make([]string, 0, len(s.All))
	for _, sink := range s.All {
		names = append(names, sink.Name())
	}
	return names
}

func TestBuildSinksNilConfig(t *testing.T) {
	if s := BuildSinks(SinkDeps{}); len(s.All) != 0 || s.Reports != nil {
		t.Fatalf("expected no sinks, got %v", sinkNames(s))
	}
}

func TestBuildSinksEvaluatorOnly(t *testing.T) {
	cfg := &appconfig.Config{CallbackEnabled: true, CallbackURL: "https://evaluator.example/final"}
	s := BuildSinks(SinkDeps{Config: cfg, Logger: logging.New("error")})
	if names := sinkNames(s); len(names) != 1 || names[0] != "evaluator" {
		t.Fatalf("expected evaluator sink, got %v", names)
	}
}

func TestBuildSinksCallbackDisabled(t *testing.T) {
	cfg := &appconfig.Config{CallbackEnabled: false, CallbackURL: "https://evaluator.example/final"}
	if s := BuildSinks(SinkDeps{Config: cfg, Logger: logging.New("error")}); len(s.All) != 0 {
		t.Fatalf("expected no sinks, got %v", sinkNames(s))
	}
}

func TestBuildSinksAllOptional(t *testing.T) {
	cfg := &appconfig.Config{
		CallbackEnabled: true,
		CallbackURL:     "https://evaluator.example/final",
		ArchiveBucket:   "vigilante-archive",
		EmailProvider:   "stub",
		AlertEmailTo:    "ops@example.com",
	}
	s := BuildSinks(SinkDeps{
		Config:   cfg,
		AWS:      aws.Config{Region: "ap-south-1"},
		Sessions: session.NewMemoryRepository(),
		Logger:   logging.New("error"),
	})
	names := sinkNames(s)
	want := []string{"evaluator", "s3", "email"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestBuildEmailSender(t *testing.T) {
	logger := logging.New("error")
	if s := BuildEmailSender(&appconfig.Config{EmailProvider: "sendgrid"}, aws.Config{}, logger); s != nil {
		t.Fatalf("expected nil sender without sendgrid key, got %T", s)
	}
	if s := BuildEmailSender(&appconfig.Config{EmailProvider: "ses"}, aws.Config{}, logger); s != nil {
		t.Fatalf("expected nil sender without ses from address, got %T", s)
	}
	s := BuildEmailSender(&appconfig.Config{EmailProvider: "sendgrid", SendGridAPIKey: "SG.test", SendGridFromEmail: "alerts@example.com"}, aws.Config{}, logger)
	if _, ok := s.(*notify.SendGridSender); !ok {
		t.Fatalf("expected sendgrid sender, got %T", s)
	}
	s = BuildEmailSender(&appconfig.Config{EmailProvider: "ses", SESFromEmail: "alerts@example.com"}, aws.Config{Region: "ap-south-1"}, logger)
	if _, ok := s.(*notify.SESSender); !ok {
		t.Fatalf("expected ses sender, got %T", s)
	}
}
