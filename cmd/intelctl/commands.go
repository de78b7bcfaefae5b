package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wolfman30/vigilante/cmd/mainconfig"
	"github.com/wolfman30/vigilante/internal/app/bootstrap"
	"github.com/wolfman30/vigilante/internal/brain"
	appconfig "github.com/wolfman30/vigilante/internal/config"
	"github.com/wolfman30/vigilante/internal/intel"
	"github.com/wolfman30/vigilante/internal/persona"
	"github.com/wolfman30/vigilante/pkg/logging"
)

const maxStdinBytes = 64 << 10

func messageText(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, maxStdinBytes))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("no message text given")
	}
	return text, nil
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runExtract(text string, raw bool, w io.Writer) error {
	var opts []intel.Option
	if raw {
		opts = append(opts, intel.WithoutNormalization())
	}
	return writeIndented(w, intel.NewExtractor(opts...).Extract(text))
}

func runScore(text string, w io.Writer) error {
	return writeIndented(w, intel.NewScorer().Score(text))
}

func runPersonas(file, defaultID string, w io.Writer) error {
	registry, err := persona.Load(file, defaultID)
	if err != nil {
		return err
	}
	def := registry.Default().ID
	for _, id := range registry.IDs() {
		p := registry.Get(id)
		marker := " "
		if id == def {
			marker = "*"
		}
		targets := make([]string, 0, len(p.Targets))
		for _, c := range p.Targets {
			targets = append(targets, string(c))
		}
		if _, err := fmt.Fprintf(w, "%s %-10s %-28s %s\n", marker, p.ID, p.Name, strings.Join(targets, ",")); err != nil {
			return err
		}
	}
	return nil
}

type replyOutput struct {
	Persona      string           `json:"persona"`
	Strategy     string           `json:"strategy"`
	Reply        string           `json:"reply"`
	Analysis     string           `json:"analysis,omitempty"`
	Intelligence intel.Record     `json:"intelligence"`
	Assessment   intel.Assessment `json:"assessment"`
}

func runReply(ctx context.Context, text, personaID string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := appconfig.Load()
	logger := logging.New("warn")

	registry, err := bootstrap.BuildPersonas(cfg)
	if err != nil {
		return err
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("aws config: %w", err)
	}
	gen, err := bootstrap.BuildGenerator(ctx, cfg, awsCfg, logger)
	if err != nil {
		return err
	}

	p := registry.Get(personaID)
	acc := intel.NewExtractor().Extract(text)
	reply, err := gen.Generate(ctx, brain.Request{Persona: p, Message: text, Accumulated: acc})
	if err != nil {
		logger.Warn("generator failed; showing fallback reply", "error", err)
		reply = brain.Fallback(err)
	}
	acc = intel.MergeTurn(acc, reply.Intel)

	return writeIndented(w, replyOutput{
		Persona:      p.ID,
		Strategy:     reply.Strategy,
		Reply:        reply.Reply,
		Analysis:     reply.Analysis,
		Intelligence: acc,
		Assessment:   intel.NewScorer().Score(text),
	})
}
