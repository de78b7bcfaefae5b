package bootstrap

import (
	"github.com/wolfman30/vigilante/internal/callback"
	appconfig "github.com/wolfman30/vigilante/internal/config"
	"github.com/wolfman30/vigilante/internal/console"
	"github.com/wolfman30/vigilante/internal/honeypot"
	"github.com/wolfman30/vigilante/internal/intel"
	"github.com/wolfman30/vigilante/internal/observability/metrics"
	"github.com/wolfman30/vigilante/internal/persona"
	"github.com/wolfman30/vigilante/internal/session"
	"github.com/wolfman30/vigilante/pkg/logging"
)

// EngineDeps collects what the turn engine is assembled from. Publisher,
// Hub, Metrics and Locker are optional.
type EngineDeps struct {
	Config    *appconfig.Config
	Sessions  session.Repository
	Personas  *persona.Registry
	Generator honeypot.Generator
	Publisher *callback.Publisher
	Hub       *console.Hub
	Metrics   *metrics.HoneypotMetrics
	Locker    *session.RedisLocker
	Logger    *logging.Logger
}

// BuildEngine assembles the honeypot engine.
func BuildEngine(deps EngineDeps) *honeypot.Engine {
	var opts []honeypot.Option
	if deps.Publisher != nil {
		opts = append(opts, honeypot.WithReporter(deps.Publisher))
	}
	if deps.Hub != nil {
		opts = append(opts, honeypot.WithObserver(deps.Hub))
	}
	if deps.Metrics != nil {
		opts = append(opts, honeypot.WithRecorder(deps.Metrics))
	}
	if deps.Locker != nil {
		opts = append(opts, honeypot.WithDistributedLock(deps.Locker))
	}
	if deps.Config != nil && !deps.Config.VoiceNormalization {
		opts = append(opts, honeypot.WithExtractor(intel.NewExtractor(intel.WithoutNormalization())))
	}
	return honeypot.NewEngine(deps.Sessions, deps.Personas, deps.Generator, deps.Logger, opts...)
}
