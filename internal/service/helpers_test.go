package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// stubClient replays canned extraction results in order and records requests.
type stubClient struct {
	mu       sync.Mutex
	results  []Result[json.RawMessage]
	err      error
	requests []ExtractionRequest
}

func (c *stubClient) Extract(_ context.Context, req ExtractionRequest) (Result[json.RawMessage], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return Result[json.RawMessage]{}, c.err
	}
	if len(c.results) == 0 {
		return Failed[json.RawMessage]("no canned result"), nil
	}
	res := c.results[0]
	if len(c.results) > 1 {
		c.results = c.results[1:]
	}
	return res, nil
}

func (c *stubClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func okJSON(doc string) Result[json.RawMessage] {
	return decodeStructured(doc)
}

// instantRetrier records requested delays instead of sleeping.
func instantRetrier(attempts int) (*Retrier, *[]time.Duration) {
	var delays []time.Duration
	r := NewRetrier(attempts, time.Second, 4*time.Second, nil)
	r.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return r, &delays
}

func ptr(v float64) *float64 { return &v }
