// Package notifier is the push core as seen by its callers: register and
// unregister subscriptions, and broadcast a notification to all of them.
package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"summit-push-go/internal/models"
	"summit-push-go/internal/push"
)

const (
	OriginAPI      = "api"
	originSchedule = "schedule:"
)

// Recorder receives every finished dispatch report.
type Recorder interface {
	Record(ctx context.Context, origin string, report models.DispatchReport) error
}

type Options struct {
	// PruneGone removes subscriptions whose push service answered 404/410.
	PruneGone bool
	Recorders []Recorder
}

type Service struct {
	registry   *push.Registry
	dispatcher *push.Dispatcher
	opts       Options
	log        *zap.Logger
}

func New(registry *push.Registry, dispatcher *push.Dispatcher, opts Options, log *zap.Logger) *Service {
	return &Service{
		registry:   registry,
		dispatcher: dispatcher,
		opts:       opts,
		log:        log,
	}
}

func (s *Service) RegisterSubscription(sub models.Subscription) {
	if s.registry.Add(sub) {
		s.log.Info("subscription registered", zap.String("endpoint", sub.Endpoint), zap.Int("total", s.registry.Len()))
	}
}

func (s *Service) UnregisterSubscription(endpointKey string) {
	if removed, ok := s.registry.Remove(endpointKey); ok {
		s.log.Info("subscription removed", zap.String("endpoint", removed.Endpoint), zap.String("key", endpointKey))
	}
}

func (s *Service) Broadcast(ctx context.Context, title, body, category string) (models.DispatchReport, error) {
	return s.BroadcastFrom(ctx, OriginAPI, title, body, category)
}

// BroadcastFrom is Broadcast with the trigger recorded alongside the report.
// The broadcast and its recording outlive a cancelled ctx.
func (s *Service) BroadcastFrom(ctx context.Context, origin, title, body, category string) (models.DispatchReport, error) {
	ctx = context.WithoutCancel(ctx)
	report, err := s.dispatcher.Dispatch(ctx, title, body, category)
	if err != nil {
		return report, fmt.Errorf("dispatch: %w", err)
	}

	if s.opts.PruneGone {
		for _, endpoint := range push.PruneGone(s.registry, report) {
			s.log.Info("pruned expired subscription", zap.String("endpoint", endpoint))
		}
	}

	for _, r := range s.opts.Recorders {
		if err := r.Record(ctx, origin, report); err != nil {
			s.log.Warn("failed to record broadcast", zap.String("id", report.ID), zap.String("origin", origin), zap.Error(err))
		}
	}
	return report, nil
}

// ScheduledAction returns the action a scheduled broadcast runs. It fails when
// there were subscribers and none of them could be reached.
func (s *Service) ScheduledAction(name, title, body, category string) func(context.Context) error {
	return func(ctx context.Context) error {
		report, err := s.BroadcastFrom(ctx, originSchedule+name, title, body, category)
		if err != nil {
			return err
		}
		if report.AllFailed() {
			return fmt.Errorf("all %d deliveries failed", report.Total)
		}
		return nil
	}
}
