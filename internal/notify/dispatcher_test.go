package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"orgatlas/internal/notify"
	"orgatlas/internal/notify/mocks"
	"orgatlas/pkg/platform/circuit"
)

//go:generate mockgen -source=publisher.go -destination=mocks/mocks.go -package=mocks Publisher

type DispatcherSuite struct {
	suite.Suite
	ctx      context.Context
	primary  *mocks.MockPublisher
	fallback *mocks.MockPublisher
	metrics  *notify.Metrics
	dispatch *notify.Dispatcher
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.ctx = context.Background()
	s.primary = mocks.NewMockPublisher(ctrl)
	s.fallback = mocks.NewMockPublisher(ctrl)
	s.metrics = notify.NewMetricsWith(prometheus.NewRegistry())
	s.dispatch = notify.NewDispatcher(s.primary,
		notify.WithFallback(s.fallback),
		notify.WithBreaker(circuit.New("test", circuit.WithFailureThreshold(2))),
		notify.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		notify.WithMetrics(s.metrics),
		notify.WithTimeout(time.Second),
	)
}

func (s *DispatcherSuite) msg() notify.Message {
	return notify.Message{Entity: notify.EntityOrganization, Action: notify.ActionCreated, ID: 7}
}

func (s *DispatcherSuite) notifyAndWait(msg notify.Message) {
	s.dispatch.Notify(s.ctx, msg)
	ctx, cancel := context.WithTimeout(s.ctx, time.Second)
	defer cancel()
	s.Require().NoError(s.dispatch.Wait(ctx))
}

func (s *DispatcherSuite) TestPublishesOnDefaultTopic() {
	s.primary.EXPECT().Publish(gomock.Any(), notify.DefaultTopic, s.msg()).Return(nil)

	s.notifyAndWait(s.msg())

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Published))
}

func (s *DispatcherSuite) TestDeliveryOutlivesRequestContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	s.primary.EXPECT().Publish(gomock.Any(), notify.DefaultTopic, s.msg()).DoAndReturn(
		func(pubCtx context.Context, _ string, _ notify.Message) error {
			return pubCtx.Err()
		})

	cancel()
	s.dispatch.Notify(ctx, s.msg())
	s.Require().NoError(s.dispatch.Wait(s.ctx))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Published))
}

func (s *DispatcherSuite) TestFailureBelowThresholdIsDropped() {
	s.primary.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	s.notifyAndWait(s.msg())

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Failures))
	s.Equal(0.0, testutil.ToFloat64(s.metrics.FallbackUsed))
}

func (s *DispatcherSuite) TestOpenBreakerRoutesToFallback() {
	s.primary.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down")).Times(3)
	s.fallback.EXPECT().Publish(gomock.Any(), notify.DefaultTopic, gomock.Any()).Return(nil).Times(2)

	s.notifyAndWait(s.msg())
	s.notifyAndWait(s.msg())
	s.notifyAndWait(s.msg())

	s.Equal(1.0, testutil.ToFloat64(s.metrics.CircuitBreakerState))
	s.Equal(2.0, testutil.ToFloat64(s.metrics.FallbackUsed))
}

func (s *DispatcherSuite) TestPrimaryRecoveryClosesBreaker() {
	gomock.InOrder(
		s.primary.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down")).Times(2),
		s.primary.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
	)
	s.fallback.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	s.notifyAndWait(s.msg())
	s.notifyAndWait(s.msg())
	s.notifyAndWait(s.msg())

	s.Equal(0.0, testutil.ToFloat64(s.metrics.CircuitBreakerState))
}

func (s *DispatcherSuite) TestNilDispatcherIsNoop() {
	var d *notify.Dispatcher
	s.NotPanics(func() { d.Notify(s.ctx, s.msg()) })
}

func TestMessageEncode(t *testing.T) {
	msg := notify.Message{
		Entity:     notify.EntityAddress,
		Action:     notify.ActionDeleted,
		ID:         3,
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	raw, err := msg.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"entity":"address","action":"deleted","id":3,"occurred_at":"2026-01-02T03:04:05Z"}`, string(raw))
	assert.Equal(t, "address", msg.Key())
}
