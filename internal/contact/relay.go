// Package contact relays contact-form submissions to an external webhook
// with a bounded fixed-delay retry. This is the only outbound integration
// that retries; CRUD paths never do.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"medghor/internal/core"
	"medghor/pkg/domain"
)

// EnvWebhookURL configures the submission endpoint. When unset the relay
// rejects every message.
const EnvWebhookURL = "MEDGHOR_CONTACT_WEBHOOK_URL"

const (
	defaultAttempts = 3
	defaultDelay    = 2 * time.Second
	defaultTimeout  = 10 * time.Second
)

// ErrNotConfigured is returned when no webhook URL is set.
var ErrNotConfigured = errors.New("contact: webhook not configured")

// ErrThrottled is returned when the submission rate limit is exceeded.
var ErrThrottled = errors.New("contact: too many submissions")

// Message is one contact-form submission.
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}

// Validate checks the minimum shape of a submission.
func (m Message) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(m.Message) == "" {
		return domain.ValidationError{Field: "message", Reason: "must not be empty"}
	}
	if strings.TrimSpace(m.Email) == "" && strings.TrimSpace(m.Phone) == "" {
		return domain.ValidationError{Field: "email", Reason: "email or phone required"}
	}
	return nil
}

// Relay delivers messages to the webhook, retrying transient failures with a
// fixed delay between attempts.
type Relay struct {
	url      string
	client   *http.Client
	limiter  *rate.Limiter
	logger   core.Logger
	attempts int
	delay    time.Duration
	sleepFn  func(context.Context, time.Duration) error
}

// RelayOption configures optional relay behavior.
type RelayOption func(*Relay)

// WithHTTPClient overrides the HTTP client, for tests.
func WithHTTPClient(client *http.Client) RelayOption {
	return func(r *Relay) {
		if client != nil {
			r.client = client
		}
	}
}

// WithLogger attaches a structured logger to the relay.
func WithLogger(logger core.Logger) RelayOption {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRetry overrides the attempt count and inter-attempt delay.
func WithRetry(attempts int, delay time.Duration) RelayOption {
	return func(r *Relay) {
		if attempts > 0 {
			r.attempts = attempts
		}
		if delay >= 0 {
			r.delay = delay
		}
	}
}

// WithLimiter overrides the submission rate limiter.
func WithLimiter(limiter *rate.Limiter) RelayOption {
	return func(r *Relay) {
		if limiter != nil {
			r.limiter = limiter
		}
	}
}

// NewRelay constructs a relay posting to url. Defaults: three attempts, two
// seconds between them, ten seconds per attempt, one submission per second
// with a burst of five.
func NewRelay(url string, opts ...RelayOption) *Relay {
	r := &Relay{
		url:      url,
		client:   &http.Client{Timeout: defaultTimeout},
		limiter:  rate.NewLimiter(rate.Every(time.Second), 5),
		logger:   core.NoopLogger(),
		attempts: defaultAttempts,
		delay:    defaultDelay,
		sleepFn:  sleepCtx,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OpenFromEnv constructs a relay from MEDGHOR_CONTACT_WEBHOOK_URL.
func OpenFromEnv(opts ...RelayOption) *Relay {
	return NewRelay(os.Getenv(EnvWebhookURL), opts...)
}

// Send validates and delivers a message. Delivery is attempted up to the
// configured number of times; the last error is returned when all attempts
// fail.
func (r *Relay) Send(ctx context.Context, msg Message) error {
	if r.url == "" {
		return ErrNotConfigured
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if !r.limiter.Allow() {
		return ErrThrottled
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if attempt > 1 {
			if err := r.sleepFn(ctx, r.delay); err != nil {
				return err
			}
		}
		lastErr = r.post(ctx, payload)
		if lastErr == nil {
			r.logger.Info("contact message delivered", "attempt", attempt)
			return nil
		}
		r.logger.Warn("contact delivery attempt failed", "attempt", attempt, "error", lastErr)
	}
	return fmt.Errorf("deliver after %d attempts: %w", r.attempts, lastErr)
}

func (r *Relay) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
