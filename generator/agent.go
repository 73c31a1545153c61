package generator

import (
	"context"
	"errors"
	"strings"
)

// Agent turns article text into platform posts with a single model call.
type Agent struct {
	llm LLMClient
}

func NewAgent(llm LLMClient) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm}, nil
}

// Generate runs the full pipeline: prompt, one model call, parse. A failed
// call is terminal for the request; there is no retry and no fallback model.
func (a *Agent) Generate(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, errors.New("article text is empty")
	}
	raw, err := a.llm.Complete(ctx, BuildRipplePrompt(text))
	if err != nil {
		return Result{}, err
	}
	return ParsePosts(raw)
}
