package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"summit-push-go/internal/models"
	"summit-push-go/internal/push"
)

type stubTransport struct {
	fail map[string]error
}

func (s stubTransport) Deliver(_ context.Context, sub models.Subscription, _ []byte) error {
	return s.fail[sub.Endpoint]
}

type memRecorder struct {
	mu      sync.Mutex
	origins []string
	reports []models.DispatchReport
	ctxErrs []error
	err     error
}

func (m *memRecorder) Record(ctx context.Context, origin string, report models.DispatchReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.origins = append(m.origins, origin)
	m.reports = append(m.reports, report)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	return m.err
}

func newTestService(fail map[string]error, opts Options) (*Service, *push.Registry) {
	reg := push.NewRegistry()
	disp := push.NewDispatcher(reg, stubTransport{fail: fail}, nil, zap.NewNop())
	return New(reg, disp, opts, zap.NewNop()), reg
}

func TestService_RegisterAndUnregister(t *testing.T) {
	svc, reg := newTestService(nil, Options{})

	svc.RegisterSubscription(models.Subscription{Endpoint: "https://fcm.example/abc123"})
	svc.RegisterSubscription(models.Subscription{Endpoint: "https://fcm.example/abc123"})
	svc.RegisterSubscription(models.Subscription{Endpoint: "https://fcm.example/abc456"})
	require.Equal(t, 2, reg.Len())

	svc.UnregisterSubscription("abc")
	svc.UnregisterSubscription("nothing-matches")
	list := reg.List()
	require.Len(t, list, 1)
	assert.Equal(t, "https://fcm.example/abc456", list[0].Endpoint)
}

func TestService_BroadcastRecordsReport(t *testing.T) {
	rec := &memRecorder{}
	failing := &memRecorder{err: errors.New("redis down")}
	svc, _ := newTestService(map[string]error{"b": push.ErrRejected}, Options{Recorders: []Recorder{failing, rec}})
	svc.RegisterSubscription(models.Subscription{Endpoint: "a"})
	svc.RegisterSubscription(models.Subscription{Endpoint: "b"})

	report, err := svc.Broadcast(context.Background(), "Lunch", "Served on level 2", "lunch")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Failed())

	require.Len(t, rec.reports, 1)
	assert.Equal(t, OriginAPI, rec.origins[0])
	assert.Equal(t, report.ID, rec.reports[0].ID)
	assert.Len(t, failing.reports, 1)
}

func TestService_PruneGone(t *testing.T) {
	svc, reg := newTestService(map[string]error{"gone": push.ErrGone}, Options{PruneGone: true})
	svc.RegisterSubscription(models.Subscription{Endpoint: "gone"})
	svc.RegisterSubscription(models.Subscription{Endpoint: "alive"})

	_, err := svc.Broadcast(context.Background(), "T", "B", "")
	require.NoError(t, err)
	list := reg.List()
	require.Len(t, list, 1)
	assert.Equal(t, "alive", list[0].Endpoint)
}

func TestService_KeepsGoneWithoutPrune(t *testing.T) {
	svc, reg := newTestService(map[string]error{"gone": push.ErrGone}, Options{})
	svc.RegisterSubscription(models.Subscription{Endpoint: "gone"})

	_, err := svc.Broadcast(context.Background(), "T", "B", "")
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
}

func TestService_ScheduledAction(t *testing.T) {
	rec := &memRecorder{}
	svc, _ := newTestService(map[string]error{"dead": push.ErrGone}, Options{Recorders: []Recorder{rec}})

	action := svc.ScheduledAction("keynote", "Keynote", "Starts in 5 minutes", "alert")
	require.NoError(t, action(context.Background()), "no subscribers is not a failure")

	svc.RegisterSubscription(models.Subscription{Endpoint: "dead"})
	err := action(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 1 deliveries failed")

	require.Len(t, rec.origins, 2)
	assert.Equal(t, "schedule:keynote", rec.origins[1])
}

func TestService_BroadcastOutlivesCancelledCaller(t *testing.T) {
	rec := &memRecorder{}
	svc, reg := newTestService(nil, Options{Recorders: []Recorder{rec}})
	reg.Add(models.Subscription{Endpoint: "https://push.example/1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Broadcast(ctx, "T", "B", "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	require.Len(t, rec.reports, 1)
	assert.NoError(t, rec.ctxErrs[0], "recorders get a live context")
}
