//go:build integration

package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"orgatlas/internal/notify"
	"orgatlas/internal/platform/config"
	"orgatlas/internal/platform/kafka"
	"orgatlas/internal/platform/logger"
	platformredis "orgatlas/internal/platform/redis"
	"orgatlas/pkg/testutil/containers"
)

type PublisherSuite struct {
	suite.Suite
	ctx context.Context
	msg notify.Message
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.ctx = context.Background()
	s.msg = notify.Message{
		Entity:     notify.EntityOrganization,
		Action:     notify.ActionCreated,
		ID:         42,
		OccurredAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		RequestID:  "req-42",
	}
}

func (s *PublisherSuite) TestKafkaPublisherProducesKeyedJSON() {
	broker := containers.NewKafkaContainer(s.T())
	const topic = "orgatlas.changes.test"

	client, err := kafka.New(s.ctx, config.KafkaConfig{Brokers: []string{broker.Broker}, ClientID: "orgatlas-test"}, topic)
	s.Require().NoError(err)
	defer client.Close()
	s.Require().NoError(client.EnsureTopic(s.ctx, topic, 1, 1))
	s.Require().NoError(client.EnsureTopic(s.ctx, topic, 1, 1), "existing topic is accepted")
	s.Require().NoError(client.Health(s.ctx))

	s.Require().NoError(notify.NewKafkaPublisher(client.Client).Publish(s.ctx, topic, s.msg))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(s.ctx, 15*time.Second)
	defer cancel()
	fetches := consumer.PollRecords(ctx, 1)
	s.Require().NoError(fetches.Err())
	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal("organization", string(records[0].Key))

	var got notify.Message
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(s.msg, got)
}

func (s *PublisherSuite) TestRedisPublisherReachesSubscribers() {
	rc := containers.NewRedisContainer(s.T())
	client, err := platformredis.New(s.ctx, config.RedisConfig{URL: rc.URL})
	s.Require().NoError(err)
	defer client.Close()
	s.Require().NoError(client.Health(s.ctx))

	sub := rc.Client.Subscribe(s.ctx, "orgatlas.changes")
	defer sub.Close()
	_, err = sub.Receive(s.ctx)
	s.Require().NoError(err)

	d := notify.NewDispatcher(notify.NewRedisPublisher(client.Client),
		notify.WithTopic("orgatlas.changes"),
		notify.WithLogger(logger.Discard()),
	)
	d.Notify(s.ctx, s.msg)
	s.Require().NoError(d.Wait(s.ctx))

	select {
	case m := <-sub.Channel():
		var got notify.Message
		s.Require().NoError(json.Unmarshal([]byte(m.Payload), &got))
		s.Equal(s.msg, got)
	case <-time.After(5 * time.Second):
		s.Fail("no message received")
	}
}
