package testassess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTP status codes the endpoint is expected to return.
const (
	statusOK            = 200
	statusUnprocessable = 422
	statusUnavailable   = 503
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// submitOutcome classifies one submission attempt.
type submitOutcome struct {
	kind       string // success, rejected, unavailable, failed
	confidence float64
}

// submitPayloads posts payloads concurrently using a worker pool.
func submitPayloads(ctx context.Context, config *Config, payloads []Payload, stats *Stats) error {
	log.Printf("submitting %d assessments with %d workers", len(payloads), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/v1/assess"

	var (
		successful  int64
		rejected    int64
		unavailable int64
		failed      int64
		submitted   int64
	)
	var confMu sync.Mutex
	var sumConfidence float64

	var lastReport time.Time
	reportInterval := 1 * time.Second

	payloadChan := make(chan Payload, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for p := range payloadChan {
				select {
				case <-ctx.Done():
					return
				default:
					outcome := submitSingle(ctx, client, url, p)

					atomic.AddInt64(&submitted, 1)
					switch outcome.kind {
					case "success":
						atomic.AddInt64(&successful, 1)
						confMu.Lock()
						sumConfidence += outcome.confidence
						confMu.Unlock()
					case "rejected":
						atomic.AddInt64(&rejected, 1)
					case "unavailable":
						atomic.AddInt64(&unavailable, 1)
					default:
						atomic.AddInt64(&failed, 1)
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						if config.Verbose {
							log.Printf("progress: %d/%d submitted (success: %d, rejected: %d, unavailable: %d, failed: %d)",
								total, len(payloads),
								atomic.LoadInt64(&successful), atomic.LoadInt64(&rejected),
								atomic.LoadInt64(&unavailable), atomic.LoadInt64(&failed))
						} else {
							fmt.Printf("\rsubmitted: %d/%d", total, len(payloads))
						}
					}
				}
			}
		}()
	}

	go func() {
		defer close(payloadChan)
		for _, p := range payloads {
			select {
			case <-ctx.Done():
				return
			case payloadChan <- p:
			}
		}
	}()

	wg.Wait()

	if !config.Verbose {
		fmt.Println()
	}

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Successful = int(atomic.LoadInt64(&successful))
	stats.Rejected = int(atomic.LoadInt64(&rejected))
	stats.Unavailable = int(atomic.LoadInt64(&unavailable))
	stats.Failed = int(atomic.LoadInt64(&failed))
	stats.SumConfidence = sumConfidence

	log.Printf(`assessment submission completed:
   Successful: %d
   Rejected: %d
   Unavailable: %d
   Failed: %d
`, stats.Successful, stats.Rejected, stats.Unavailable, stats.Failed)

	return nil
}

// submitSingle posts one payload and classifies the response.
func submitSingle(ctx context.Context, client *HTTPClient, url string, p Payload) submitOutcome {
	resp, err := client.Post(ctx, url, p.Fields)
	if err != nil {
		return submitOutcome{kind: "failed"}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return submitOutcome{kind: "failed"}
	}

	switch resp.StatusCode {
	case statusOK:
		var env PredictionEnvelope
		if err := json.Unmarshal(body, &env); err == nil && env.Success {
			return submitOutcome{kind: "success", confidence: env.Prediction.Confidence}
		}
		return submitOutcome{kind: "success"}
	case statusUnprocessable:
		return submitOutcome{kind: "rejected"}
	case statusUnavailable:
		return submitOutcome{kind: "unavailable"}
	default:
		return submitOutcome{kind: "failed"}
	}
}
