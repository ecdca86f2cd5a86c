package onboarding

import (
	"context"
	"errors"
	"strings"
)

// stubCompleter is a deterministic oracle for tests. Responses are consumed
// in order; once exhausted it keeps returning the last one.
type stubCompleter struct {
	responses []string
	calls     []string
	err       error
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls = append(s.calls, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "{}", nil
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

// failingCompleter always errors, simulating a dead oracle endpoint
type failingCompleter struct{}

func (failingCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("oracle unavailable")
}

// garbageCompleter returns text no parser can save
type garbageCompleter struct{}

func (garbageCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return "I am definitely not JSON, sorry about that", nil
}

// routingCompleter answers extraction prompts with a fixed mapping keyed by
// the answer text, and question prompts with a canned envelope. Lets scenario
// tests script an entire conversation.
type routingCompleter struct {
	extractions map[string]string // answer substring -> extraction JSON
	question    string            // envelope returned for question prompts
}

func (r *routingCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "Extract structured information") {
		for needle, response := range r.extractions {
			if strings.Contains(prompt, needle) {
				return response, nil
			}
		}
		return "{}", nil
	}
	if r.question != "" {
		return r.question, nil
	}
	return "", errors.New("no scripted question")
}

func never(Turn) bool { return false }
