package llm

import (
	"context"
	"strings"
)

// mockClient is a deterministic Client used for local smoke runs
// (LLM_API_KEY=mock) and tests. It classifies everything as a movie and
// echoes the trimmed input as the resolved title.
type mockClient struct{}

// NewMock returns the deterministic mock client.
func NewMock() Client {
	return mockClient{}
}

func (mockClient) Classify(_ context.Context, text, _ string) (Verdict, error) {
	if strings.TrimSpace(text) == "" {
		return VerdictNotEntertainment, nil
	}

	return VerdictMovie, nil
}

func (mockClient) ResolveTitle(_ context.Context, text, _ string) (Resolution, error) {
	title := strings.TrimSpace(text)
	if title == "" {
		return Resolution{}, ErrUnparseableResponse
	}

	return Resolution{Title: title}, nil
}

var _ Client = mockClient{}
