package bloggen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sellerlift/backend/pkg/logger"
	"sellerlift/backend/pkg/resilience"
)

// Draft is what the generator service returns for a topic
type Draft struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
}

// Client calls the external blog generator service. All calls go
// through a circuit breaker so a flapping generator cannot pile up
// admin requests.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *resilience.CircuitBreaker
	log     *logger.Logger
}

func NewClient(baseURL string, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		breaker: resilience.NewCircuitBreaker(resilience.DefaultConfig("blog-generator"), log),
		log:     log,
	}
}

// Enabled reports whether a generator endpoint is configured
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Generate asks the generator for a draft on the given topic
func (c *Client) Generate(ctx context.Context, topic string) (*Draft, error) {
	var draft Draft
	err := c.breaker.Execute(func() error {
		return c.generate(ctx, topic, &draft)
	})
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (c *Client) generate(ctx context.Context, topic string, out *Draft) error {
	body, err := json.Marshal(map[string]string{"topic": topic})
	if err != nil {
		return fmt.Errorf("encoding generator request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building generator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling generator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("generator returned non-200",
			"status", resp.StatusCode,
			"body", string(payload),
		)
		return fmt.Errorf("generator returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding generator response: %w", err)
	}
	return nil
}
