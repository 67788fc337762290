package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"summit-push-go/internal/clock"
	"summit-push-go/internal/models"
)

// Lister provides the subscriptions a dispatch fans out to.
type Lister interface {
	List() []models.Subscription
}

// Dispatcher sends one payload to every registered subscription at once.
// It holds no state of its own between calls.
type Dispatcher struct {
	subs      Lister
	transport Transport
	clock     clock.Clock
	log       *zap.Logger
}

func NewDispatcher(subs Lister, transport Transport, clk clock.Clock, log *zap.Logger) *Dispatcher {
	if clk == nil {
		clk = clock.System{}
	}
	return &Dispatcher{
		subs:      subs,
		transport: transport,
		clock:     clk,
		log:       log,
	}
}

// Dispatch delivers the notification to a snapshot of the registry.
// Every delivery runs in its own goroutine and the call returns once all of
// them have settled. A failed delivery is recorded in the report and never
// affects the others; the returned error is non-nil only when the payload
// cannot be encoded.
//
// Cancelling ctx does not abort a broadcast: once issued, deliveries run to
// completion and are bounded by the transport timeout only.
func (d *Dispatcher) Dispatch(ctx context.Context, title, body, category string) (models.DispatchReport, error) {
	ctx = context.WithoutCancel(ctx)

	subs := d.subs.List()
	started := d.clock.Now()
	payload := models.NewNotificationPayload(title, body, category, started)
	data, err := json.Marshal(payload)
	if err != nil {
		return models.DispatchReport{}, fmt.Errorf("encode payload: %w", err)
	}

	results := make([]error, len(subs))
	var wg conc.WaitGroup
	for i, sub := range subs {
		wg.Go(func() {
			var err error
			if r := panics.Try(func() { err = d.transport.Deliver(ctx, sub, data) }); r != nil {
				err = r.AsError()
			}
			results[i] = err
		})
	}
	wg.Wait()

	report := models.DispatchReport{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		Category:  category,
		Icon:      payload.Notification.Icon,
		Total:     len(subs),
		StartedAt: started,
	}
	for i, err := range results {
		if err == nil {
			report.Sent++
			continue
		}
		report.Failures = append(report.Failures, models.DeliveryFailure{
			Endpoint: subs[i].Endpoint,
			Error:    err.Error(),
			Err:      err,
		})
		d.log.Warn("push delivery failed", zap.String("endpoint", subs[i].Endpoint), zap.Error(err))
	}
	report.FinishedAt = d.clock.Now()

	broadcastsTotal.Inc()
	deliveriesTotal.WithLabelValues("ok").Add(float64(report.Sent))
	deliveriesTotal.WithLabelValues("failed").Add(float64(report.Failed()))
	broadcastDuration.Observe(report.Duration().Seconds())

	d.log.Info("broadcast dispatched",
		zap.String("id", report.ID),
		zap.String("title", title),
		zap.String("category", category),
		zap.Int("total", report.Total),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed()),
	)
	return report, nil
}
