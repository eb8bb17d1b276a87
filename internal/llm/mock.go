package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider returns queued responses in FIFO order and records every
// request. A plain mock fails with ErrProviderUnavailable once the queue
// is empty; an offline mock falls back to answering by purpose instead.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	offline   bool
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewOfflineProvider returns the provider behind llm.provider=mock. It
// needs no network and produces content that passes the question set
// contract, so a full drill can run without credentials.
func NewOfflineProvider() *MockProvider {
	return &MockProvider{offline: true}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		if m.offline {
			return offlineAnswer(PurposeFrom(ctx), req)
		}
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("mock queue empty after %d calls", len(m.Calls)-1)}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

const offlinePassage = "This passage was prepared offline. Configure an LLM provider for a formatted copy."

// offlineAnswer builds a response from the request alone.
//
// Reformat requests get the message body back: the text after the first
// blank line, with the instructions before it dropped. Question requests
// get req.Items placeholder questions, the answer rotating through the
// four options.
func offlineAnswer(purpose string, req Request) (*Response, error) {
	var text string
	switch purpose {
	case PurposeReformat:
		text = offlinePassage
		if len(req.Messages) > 0 {
			if _, body, ok := strings.Cut(req.Messages[len(req.Messages)-1].Content, "\n\n"); ok && strings.TrimSpace(body) != "" {
				text = strings.TrimSpace(body)
			}
		}
		return offlineResponse(json.RawMessage(text)), nil
	case PurposeQuestions:
		n := req.Items
		if n <= 0 {
			return nil, &ErrInvalidResponse{Err: fmt.Errorf("offline question set needs a positive item count, got %d", n)}
		}
		b, err := json.Marshal(offlineQuestions(n))
		if err != nil {
			return nil, err
		}
		return offlineResponse(b), nil
	default:
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("offline provider has no answer for purpose %q", purpose)}
	}
}

type offlineQuestion struct {
	QuestionText         string   `json:"questionText"`
	Options              []string `json:"options"`
	CorrectAnswerText    string   `json:"correctAnswerText"`
	Explanation          string   `json:"explanation"`
	DifficultyAssessment string   `json:"difficultyAssessment"`
	CommonPitfalls       string   `json:"commonPitfalls"`
}

func offlineQuestions(n int) []offlineQuestion {
	qs := make([]offlineQuestion, n)
	for i := range qs {
		opts := make([]string, 4)
		for j := range opts {
			opts[j] = fmt.Sprintf("Question %d, statement %c", i+1, 'A'+j)
		}
		qs[i] = offlineQuestion{
			QuestionText:         fmt.Sprintf("Offline question %d: which statement does the passage support?", i+1),
			Options:              opts,
			CorrectAnswerText:    opts[i%len(opts)],
			Explanation:          "Placeholder question generated without an LLM provider.",
			DifficultyAssessment: "Offline",
			CommonPitfalls:       "None; the answers rotate through the options.",
		}
	}
	return qs
}

func offlineResponse(content json.RawMessage) *Response {
	words := len(strings.Fields(string(content)))
	return &Response{
		Content:    content,
		Usage:      Usage{OutputTokens: words, TotalTokens: words},
		Model:      "mock",
		StopReason: "end",
	}
}
