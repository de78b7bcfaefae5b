package bootstrap

import (
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/vigilante/internal/archive"
	"github.com/wolfman30/vigilante/internal/callback"
	appconfig "github.com/wolfman30/vigilante/internal/config"
	"github.com/wolfman30/vigilante/internal/notify"
	"github.com/wolfman30/vigilante/internal/reports"
	"github.com/wolfman30/vigilante/pkg/logging"
)

// SinkDeps are the shared clients report sinks are built from.
type SinkDeps struct {
	Config   *appconfig.Config
	AWS      aws.Config
	Pool     *pgxpool.Pool
	Sessions archive.SessionLoader
	Logger   *logging.Logger
}

// Sinks is the set of report destinations enabled by config.
type Sinks struct {
	All     []callback.Sink
	Reports *reports.Store
}

// BuildSinks enables each destination whose settings are present. The
// evaluator comes first so its delivery is not delayed by slower sinks.
func BuildSinks(deps SinkDeps) Sinks {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	var out Sinks
	if cfg == nil {
		return out
	}

	if cfg.CallbackEnabled && strings.TrimSpace(cfg.CallbackURL) != "" {
		out.All = append(out.All, callback.NewEvaluatorClient(cfg.CallbackURL, &http.Client{Timeout: cfg.CallbackTimeout}))
		logger.Info("report sink enabled", "sink", "evaluator", "url", cfg.CallbackURL)
	} else {
		logger.Warn("evaluator callback disabled")
	}

	if deps.Pool != nil {
		out.Reports = reports.NewStore(deps.Pool)
		out.All = append(out.All, out.Reports)
		logger.Info("report sink enabled", "sink", "postgres")
	}

	if bucket := strings.TrimSpace(cfg.ArchiveBucket); bucket != "" {
		var bedrock archive.BedrockConverseAPI
		if cfg.BedrockModelID != "" {
			bedrock = bedrockruntime.NewFromConfig(deps.AWS)
		}
		store := archive.NewStore(s3.NewFromConfig(deps.AWS), bucket, logger)
		classifier := archive.NewClassifier(bedrock, cfg.BedrockModelID, logger)
		if archiver := archive.NewArchiver(store, classifier, deps.Sessions, logger); archiver != nil {
			out.All = append(out.All, archiver)
			logger.Info("report sink enabled", "sink", "s3", "bucket", bucket)
		}
	}

	if alerter := notify.NewAlerter(BuildEmailSender(cfg, deps.AWS, logger), cfg.AlertEmailTo, logger); alerter != nil {
		out.All = append(out.All, alerter)
		logger.Info("report sink enabled", "sink", "email", "provider", cfg.EmailProvider)
	}

	return out
}

// BuildEmailSender returns the configured alert sender or nil.
func BuildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	if cfg == nil {
		return nil
	}
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			return s
		}
	case "ses":
		if strings.TrimSpace(cfg.SESFromEmail) != "" {
			return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
				FromEmail:        cfg.SESFromEmail,
				FromName:         cfg.EmailFromName,
				ConfigurationSet: cfg.SESConfigSet,
			}, logger)
		}
	case "stub":
		return notify.NewStubEmailSender(logger)
	}
	return nil
}
