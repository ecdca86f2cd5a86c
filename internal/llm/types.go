package llm

import (
	"context"
	"time"
)

// Completer is the text-completion oracle boundary. Implementations may fail,
// time out, or return text that is not well-formed JSON; callers must treat
// every result as untrusted.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Request encapsulates one oracle call queued for dispatch
type Request struct {
	ID      string
	Context context.Context

	URL     string
	Payload map[string]interface{}

	// Response handling
	ResponseCh chan<- *Response
	ErrorCh    chan<- error

	SubmitTime time.Time
	Timeout    time.Duration
}

// Response encapsulates raw oracle output
type Response struct {
	StatusCode int
	Body       []byte
}

// Metrics tracks queue performance
type Metrics struct {
	Enqueued          int64
	Processed         int64
	Dropped           int64
	CurrentQueueDepth int
}
