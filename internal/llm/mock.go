package llm

import (
	"context"
	"fmt"
)

// MockResult is one scripted outcome for a MockClient call.
type MockResult struct {
	Text string
	Err  error
}

// MockClient is a scripted completion gateway for testing. Each Generate
// call consumes the next scripted result in order and records the prompt and
// sampling parameters it was invoked with.
type MockClient struct {
	Script []MockResult

	// Prompts and Params record every Generate invocation.
	Prompts []string
	Params  []SamplingParams
}

// Generate returns the next scripted result.
func (m *MockClient) Generate(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	call := len(m.Prompts)
	m.Prompts = append(m.Prompts, prompt)
	m.Params = append(m.Params, params)

	if call >= len(m.Script) {
		return "", fmt.Errorf("mock client: unscripted call %d", call+1)
	}

	result := m.Script[call]
	return result.Text, result.Err
}

// CallCount returns how many times Generate was invoked.
func (m *MockClient) CallCount() int {
	return len(m.Prompts)
}
