package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/ciw-intake/internal/observability"
	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/services"
	"go.uber.org/zap"
)

// MockOutboxRepository is a mock implementation of OutboxRepository
type MockOutboxRepository struct {
	mock.Mock
	mu       sync.Mutex
	enqueued []*models.OutboxMessage
}

func (m *MockOutboxRepository) Enqueue(ctx context.Context, msg *models.OutboxMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		m.enqueued = append(m.enqueued, msg)
	}
	return args.Error(0)
}

func (m *MockOutboxRepository) Messages() []*models.OutboxMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.OutboxMessage(nil), m.enqueued...)
}

func newTestDispatcher(t *testing.T, outbox *MockOutboxRepository, cfg Config) (*Dispatcher, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	d, err := NewDispatcher(outbox, cfg, metrics, zap.NewNop())
	require.NoError(t, err)
	return d, metrics
}

func TestDispatcher_StartStop(t *testing.T) {
	d, _ := newTestDispatcher(t, new(MockOutboxRepository), DefaultConfig())

	require.NoError(t, d.Start())
	assert.Error(t, d.Start(), "starting twice")
	assert.True(t, d.Stats().Started)

	require.NoError(t, d.Stop(time.Second))
	assert.Error(t, d.Stop(time.Second), "stopping twice")
	assert.Error(t, d.Start(), "restart after stop")
	assert.False(t, d.Stats().Started)
}

func TestDispatcher_Notify(t *testing.T) {
	outbox := new(MockOutboxRepository)
	outbox.On("Enqueue", mock.Anything, mock.Anything).Return(nil)

	d, metrics := newTestDispatcher(t, outbox, DefaultConfig())
	require.NoError(t, d.Start())

	kinds := []models.NotificationKind{
		models.NotificationARRA,
		models.NotificationARRA,
		models.NotificationSponsorshipInitiated,
	}
	for _, kind := range kinds {
		require.NoError(t, d.Notify(context.Background(), *models.NewNotification(kind, file)))
	}

	require.NoError(t, d.Stop(time.Second))

	msgs := outbox.Messages()
	require.Len(t, msgs, 3)
	for _, m := range msgs {
		assert.Equal(t, []string{"jane.doe@gsa.gov"}, m.To)
		assert.Nil(t, m.SentAt)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Notifications.WithLabelValues("arra", ResultWritten)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Notifications.WithLabelValues("sponsorship_initiated", ResultQueued)))
}

func TestDispatcher_NotifyBeforeStart(t *testing.T) {
	d, _ := newTestDispatcher(t, new(MockOutboxRepository), DefaultConfig())

	err := d.Notify(context.Background(), *models.NewNotification(models.NotificationARRA, file))
	assert.Error(t, err)
}

func TestDispatcher_RenderFailure(t *testing.T) {
	d, metrics := newTestDispatcher(t, new(MockOutboxRepository), DefaultConfig())
	require.NoError(t, d.Start())
	defer d.Stop(time.Second)

	err := d.Notify(context.Background(), *models.NewNotification("carrier_pigeon", file))

	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNotifyFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Notifications.WithLabelValues("carrier_pigeon", ResultFailed)))
}

func TestDispatcher_BufferFull(t *testing.T) {
	release := make(chan struct{})
	outbox := new(MockOutboxRepository)
	outbox.On("Enqueue", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil)

	d, metrics := newTestDispatcher(t, outbox, Config{
		From:           "ciw-intake@gsa.gov",
		SupportAddress: support,
		BufferSize:     1,
		WorkerCount:    1,
	})
	require.NoError(t, d.Start())

	n := *models.NewNotification(models.NotificationARRA, file)

	// The worker takes the first message and blocks in Enqueue, the second
	// fills the buffer, and eventually one is dropped.
	var dropped error
	for i := 0; i < 10 && dropped == nil; i++ {
		dropped = d.Notify(context.Background(), n)
		time.Sleep(5 * time.Millisecond)
	}

	require.Error(t, dropped)
	assert.True(t, errors.Is(dropped, services.ErrNotifyFailed))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Notifications.WithLabelValues("arra", ResultDropped)))

	close(release)
	require.NoError(t, d.Stop(time.Second))
}

func TestDispatcher_OutboxFailure(t *testing.T) {
	outbox := new(MockOutboxRepository)
	outbox.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("relation \"email_outbox\" does not exist"))

	d, metrics := newTestDispatcher(t, outbox, DefaultConfig())
	require.NoError(t, d.Start())

	require.NoError(t, d.Notify(context.Background(), *models.NewNotification(models.NotificationARRA, file)))
	require.NoError(t, d.Stop(time.Second))

	assert.Empty(t, outbox.Messages())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Notifications.WithLabelValues("arra", ResultFailed)))
}
