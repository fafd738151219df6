// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reasoning invokes a language model for one named pipeline stage:
// it renders the stage prompt from the input, calls the model, and decodes
// the JSON answer into the caller's output value.
package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-reviewer/pkg/types"
)

// Invoker runs the model for one stage. output must be a pointer.
type Invoker interface {
	Invoke(ctx context.Context, stage string, input, output any) error
}

// Prompt is one system and user message pair.
type Prompt struct {
	System string
	User   string
}

// Completer sends a prompt to a model and returns the raw reply.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Template renders the user message of one stage from its input.
type Template struct {
	System string
	User   *template.Template
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// ModelInvoker implements Invoker on top of a Completer.
type ModelInvoker struct {
	Client     Completer
	Prompts    map[string]Template
	MaxRetries int
	Logger     zerolog.Logger
}

// New builds an invoker for the configured provider.
func New(cfg types.ModelConfig, prompts map[string]Template, log zerolog.Logger) (*ModelInvoker, error) {
	var (
		client Completer
		err    error
	)
	switch cfg.Provider {
	case types.ProviderAnthropic:
		client, err = NewClaudeClient(cfg)
	case types.ProviderOpenAI, "":
		client, err = NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return &ModelInvoker{
		Client:     client,
		Prompts:    prompts,
		MaxRetries: cfg.MaxRetries,
		Logger:     log.With().Str("model", cfg.Model).Logger(),
	}, nil
}

// Invoke renders the stage prompt, calls the model (retrying rate-limited
// calls with exponential backoff), and decodes the JSON reply into output.
func (m *ModelInvoker) Invoke(ctx context.Context, stage string, input, output any) error {
	tmpl, ok := m.Prompts[stage]
	if !ok {
		return fmt.Errorf("no prompt registered for stage %q", stage)
	}
	var user bytes.Buffer
	if err := tmpl.User.Execute(&user, input); err != nil {
		return fmt.Errorf("rendering %s prompt: %w", stage, err)
	}
	p := Prompt{System: tmpl.System, User: user.String()}

	reply, err := m.complete(ctx, stage, p)
	if err != nil {
		return err
	}
	if err := decodeJSON(reply, output); err != nil {
		return &ModelError{Kind: KindMalformed, Stage: stage, Err: err}
	}
	return nil
}

func (m *ModelInvoker) complete(ctx context.Context, stage string, p Prompt) (string, error) {
	for attempt := 0; ; attempt++ {
		start := time.Now()
		reply, err := m.Client.Complete(ctx, p)
		if err == nil {
			m.Logger.Debug().Str("stage", stage).Int("attempt", attempt+1).Dur("elapsed", time.Since(start)).Msg("model call completed")
			return reply, nil
		}

		var me *ModelError
		if !errors.As(err, &me) {
			return "", fmt.Errorf("%s: %w", stage, err)
		}
		me.Stage = stage
		if me.Kind != KindRateLimited || attempt >= m.MaxRetries {
			return "", me
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * backoffBase
		m.Logger.Debug().Str("stage", stage).Int("attempt", attempt+1).Dur("backoff", backoff).Msg("model rate limited, retrying")
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// decodeJSON extracts the outermost JSON object from a model reply, which
// may be wrapped in prose or a Markdown code fence.
func decodeJSON(reply string, out any) error {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return errors.New("reply contains no JSON object")
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), out); err != nil {
		return fmt.Errorf("parsing reply JSON: %w", err)
	}
	return nil
}
