package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"golang.org/x/time/rate"

	"summit-push-go/internal/models"
)

var (
	// ErrGone means the push service no longer knows the endpoint (404/410).
	ErrGone = errors.New("push endpoint gone")
	// ErrRejected covers every other non-2xx answer from the push service.
	ErrRejected = errors.New("push rejected")
)

// Transport delivers one serialized payload to one subscription.
type Transport interface {
	Deliver(ctx context.Context, sub models.Subscription, payload []byte) error
}

type WebPushConfig struct {
	Subscriber      string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	TTL             int
	Timeout         time.Duration
	// RatePerSec caps outgoing requests across all broadcasts; 0 disables the cap.
	RatePerSec int
}

// WebPushTransport sends encrypted, VAPID-signed messages with webpush-go.
type WebPushTransport struct {
	cfg     WebPushConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewWebPushTransport(cfg WebPushConfig) *WebPushTransport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	}
	return &WebPushTransport{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (t *WebPushTransport) Deliver(ctx context.Context, sub models.Subscription, payload []byte) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	s := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}
	resp, err := webpush.SendNotificationWithContext(ctx, payload, s, &webpush.Options{
		HTTPClient:      t.client,
		Subscriber:      t.cfg.Subscriber,
		VAPIDPublicKey:  t.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: t.cfg.VAPIDPrivateKey,
		TTL:             t.cfg.TTL,
	})
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: status %d", ErrGone, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, body)
	}
}
