package oracle

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/pkg/ollama"
)

// Ollama completes prompts with a model served by a local Ollama server.
type Ollama struct {
	client      ollama.Client
	model       string
	numPredict  int
	temperature float64
}

// NewOllama creates an Ollama oracle.
func NewOllama(client ollama.Client, model string, maxTokens int, temperature float64) *Ollama {
	return &Ollama{client: client, model: model, numPredict: maxTokens, temperature: temperature}
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Complete(ctx context.Context, system, text string) (string, error) {
	resp, err := o.client.Chat(ctx, ollama.ChatRequest{
		Model: o.model,
		Messages: []ollama.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: text},
		},
		Options: &ollama.Options{Temperature: o.temperature, NumPredict: o.numPredict},
	})
	if err != nil {
		var se *ollama.StatusError
		if errors.As(err, &se) {
			return "", transient(err, se.StatusCode)
		}
		return "", err
	}
	return resp.Message.Content, nil
}

// Ready checks the server answers and has the model pulled.
func (o *Ollama) Ready(ctx context.Context) error {
	if err := o.client.Ping(ctx); err != nil {
		return eris.Wrapf(ErrNotReady, "ollama: server unreachable: %v", err)
	}
	tags, err := o.client.Tags(ctx)
	if err != nil {
		return eris.Wrapf(ErrNotReady, "ollama: list models: %v", err)
	}
	if !tags.HasModel(o.model) {
		return eris.Wrapf(ErrNotReady, "ollama: model %s is not installed (run: ollama pull %s)", o.model, o.model)
	}
	return nil
}
