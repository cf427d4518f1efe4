package oracle

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/pkg/anthropic"
)

// Anthropic completes prompts with a hosted Claude model.
type Anthropic struct {
	client      anthropic.Client
	key         string
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropic creates an Anthropic oracle.
func NewAnthropic(client anthropic.Client, key, model string, maxTokens int, temperature float64) *Anthropic {
	return &Anthropic{
		client:      client,
		key:         key,
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: temperature,
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

// Complete sends system as a cached system block and text as the only user
// turn.
func (a *Anthropic) Complete(ctx context.Context, system, text string) (string, error) {
	temp := a.temperature
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      anthropic.BuildCachedSystemBlocks(system, ""),
		Messages:    []anthropic.Message{{Role: "user", Content: text}},
		Temperature: &temp,
	})
	if err != nil {
		return "", transient(err, anthropic.StatusCode(err))
	}
	resp.Usage.LogUsage(a.model)
	return resp.Text(), nil
}

// Ready requires an API key and a model. No request is made.
func (a *Anthropic) Ready(context.Context) error {
	if a.key == "" {
		return eris.Wrap(ErrNotReady, "anthropic: api key is not set")
	}
	if a.model == "" {
		return eris.Wrap(ErrNotReady, "anthropic: model is not set")
	}
	return nil
}
