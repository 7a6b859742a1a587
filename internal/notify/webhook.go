// Package notify delivers operational notifications to a webhook channel.
// Delivery is fire-and-forget: the dispatcher owns its own timeout and a
// failure is logged and dropped, never surfaced to the caller.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/talgurevich/hitquote-accounts/internal/infra"
)

// Event describes one upgrade request submission worth announcing.
type Event struct {
	Email         string
	DisplayName   string
	RequestedPlan string
}

// Sink sends one message to the operational channel.
type Sink interface {
	Send(ctx context.Context, ev Event) error
}

// WebhookSink posts Slack-compatible text payloads to a webhook URL.
type WebhookSink struct {
	url        string
	httpClient *http.Client
}

// NewWebhookSink creates a sink for the given webhook URL.
func NewWebhookSink(url string, httpClient *http.Client) *WebhookSink {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookSink{url: url, httpClient: httpClient}
}

// Send posts the event text to the webhook.
func (s *WebhookSink) Send(ctx context.Context, ev Event) error {
	name := ev.DisplayName
	if strings.TrimSpace(name) == "" {
		name = ev.Email
	}
	payload, err := json.Marshal(map[string]string{
		"text": fmt.Sprintf("Upgrade request: %s <%s> asked for the %s plan", name, ev.Email, ev.RequestedPlan),
	})
	if err != nil {
		return fmt.Errorf("notify: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: webhook returned status %d", resp.StatusCode)
	}
	return nil
}

const queueCapacity = 64

// Dispatcher runs a background worker draining a bounded event queue.
// A nil sink produces a disabled dispatcher: Enqueue becomes a no-op, so
// a missing webhook URL never errors anywhere.
type Dispatcher struct {
	sink    Sink
	queue   chan Event
	timeout time.Duration
	logger  infra.Logger
	done    chan struct{}
}

// NewDispatcher starts the worker. Close must be called on shutdown.
func NewDispatcher(sink Sink, timeout time.Duration, logger infra.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	d := &Dispatcher{
		sink:    sink,
		queue:   make(chan Event, queueCapacity),
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue hands an event to the worker without blocking. When the queue
// is full or the sink is disabled the event is dropped.
func (d *Dispatcher) Enqueue(ev Event) {
	if d.sink == nil {
		return
	}
	select {
	case d.queue <- ev:
	default:
		d.logger.Warn().Str("email", ev.Email).Msg("notification queue full, dropping event")
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		if d.sink == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.sink.Send(ctx, ev); err != nil {
			d.logger.Error().Err(err).Str("email", ev.Email).Msg("upgrade notification failed")
		}
		cancel()
	}
}
