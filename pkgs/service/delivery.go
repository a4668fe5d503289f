package service

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"challenge-orchestrator/pkgs/task"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultDeliveryTimeout = 30 * time.Second
	DefaultMaxRetries      = 3
)

// DeliveryOutcome records one attempt sequence against one endpoint.
// HTTPStatus is nil when no attempt ever completed a response.
type DeliveryOutcome struct {
	Succeeded    bool
	HTTPStatus   *int
	LastError    string
	AttemptsMade int
}

// DeliveryClient posts task payloads to participant intake endpoints.
// Only network-level failures are retried; a completed HTTP response
// of any status ends the attempt sequence, so endpoint-side errors
// (4xx/5xx) are never re-sent.
type DeliveryClient struct {
	client       *http.Client
	maxRetries   int
	baseInterval time.Duration
}

func NewDeliveryClient(timeout time.Duration, maxRetries int) *DeliveryClient {
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &DeliveryClient{
		client:       &http.Client{Timeout: timeout},
		maxRetries:   maxRetries,
		baseInterval: time.Second,
	}
}

// Deliver sends payload to endpoint as JSON. Attempt k sleeps 2^k base
// intervals after a network failure; there is no delay before the
// first attempt.
func (c *DeliveryClient) Deliver(endpoint string, payload *task.Payload) DeliveryOutcome {
	outcome := DeliveryOutcome{}

	body, err := json.Marshal(payload)
	if err != nil {
		outcome.LastError = err.Error()
		return outcome
	}

	operation := func() error {
		outcome.AttemptsMade++

		req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			outcome.LastError = err.Error()
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			outcome.LastError = err.Error()
			log.Warnf("Delivery attempt %d to %s failed: %v", outcome.AttemptsMade, endpoint, err)
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		status := resp.StatusCode
		outcome.HTTPStatus = &status
		outcome.Succeeded = status >= 200 && status < 300
		return nil
	}

	backOff := backoff.NewExponentialBackOff()
	backOff.InitialInterval = c.baseInterval
	backOff.Multiplier = 2
	backOff.RandomizationFactor = 0
	backOff.MaxInterval = time.Hour
	backOff.MaxElapsedTime = 0

	// maxRetries counts attempts, WithMaxRetries counts retries.
	_ = backoff.Retry(operation, backoff.WithMaxRetries(backOff, uint64(c.maxRetries-1)))

	return outcome
}
