package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

// Manager serializes oracle requests through a bounded queue with a
// concurrency cap. The onboarding engine issues at most one call per turn,
// but many sessions share one endpoint; the queue keeps a busy endpoint from
// being hammered and gives every request a hard timeout.
type Manager struct {
	queue     chan *Request
	semaphore chan struct{} // Limit concurrent requests

	breaker    *CircuitBreaker
	httpClient *http.Client

	mu      sync.RWMutex
	metrics Metrics

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewManager creates a queue manager and starts its dispatcher
func NewManager(queueSize, maxConcurrent int, breaker *CircuitBreaker) *Manager {
	if queueSize < 1 {
		queueSize = 32
	}
	if maxConcurrent < 1 {
		maxConcurrent = 4
	}
	m := &Manager{
		queue:      make(chan *Request, queueSize),
		semaphore:  make(chan struct{}, maxConcurrent),
		breaker:    breaker,
		httpClient: &http.Client{},
		stopCh:     make(chan struct{}),
	}

	m.wg.Add(1)
	go m.dispatcher()

	log.Printf("[Oracle Queue] Started with %d concurrent slots", maxConcurrent)
	return m
}

// Submit adds a request to the queue (non-blocking with drop behavior)
func (m *Manager) Submit(req *Request) error {
	select {
	case m.queue <- req:
		m.mu.Lock()
		m.metrics.Enqueued++
		m.metrics.CurrentQueueDepth = len(m.queue)
		m.mu.Unlock()
		return nil
	default:
		m.mu.Lock()
		m.metrics.Dropped++
		m.mu.Unlock()
		log.Printf("[Oracle Queue] WARNING: queue full, dropping request %s", req.ID)
		return fmt.Errorf("queue full")
	}
}

func (m *Manager) dispatcher() {
	defer m.wg.Done()

	for {
		var req *Request
		select {
		case <-m.stopCh:
			return
		case req = <-m.queue:
		}

		// Wait for a processing slot; stay responsive to shutdown
		select {
		case <-m.stopCh:
			req.ErrorCh <- fmt.Errorf("oracle queue shutting down")
			return
		case m.semaphore <- struct{}{}:
		}

		m.wg.Add(1)
		go m.processRequest(req)
	}
}

// processRequest executes the actual oracle call
func (m *Manager) processRequest(req *Request) {
	defer func() {
		<-m.semaphore // Release slot
		m.wg.Done()

		m.mu.Lock()
		m.metrics.Processed++
		m.mu.Unlock()
	}()

	startTime := time.Now()

	if req.Context.Err() != nil {
		req.ErrorCh <- req.Context.Err()
		return
	}

	ctx, cancel := context.WithTimeout(req.Context, req.Timeout)
	defer cancel()

	var resp *Response
	err := m.breaker.Call(func() error {
		var callErr error
		resp, callErr = m.executeHTTPRequest(ctx, req)
		return callErr
	})
	if err != nil {
		log.Printf("[Oracle Queue] Request %s failed after %s: %v",
			req.ID, time.Since(startTime), err)
		req.ErrorCh <- err
		return
	}

	select {
	case req.ResponseCh <- resp:
		log.Printf("[Oracle Queue] Request %s completed in %s",
			req.ID, time.Since(startTime))
	case <-ctx.Done():
		log.Printf("[Oracle Queue] Request %s timeout after %s",
			req.ID, time.Since(startTime))
		req.ErrorCh <- ctx.Err()
	}
}

func (m *Manager) executeHTTPRequest(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{StatusCode: httpResp.StatusCode, Body: raw}, nil
}

// GetMetrics returns a snapshot of queue metrics
func (m *Manager) GetMetrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot := m.metrics
	snapshot.CurrentQueueDepth = len(m.queue)
	return snapshot
}

// Stop shuts down the dispatcher and waits for in-flight requests
func (m *Manager) Stop() {
	close(m.stopCh)
	m.wg.Wait()
}
