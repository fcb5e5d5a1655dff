//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"voterdata/internal/audit"
	"voterdata/internal/platform/kafka"
	"voterdata/pkg/testutil/containers"
)

func TestKafkaSink_ProducesKeyedEvents(t *testing.T) {
	broker := containers.GetManager().GetRedpanda(t).Broker
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const topic = "voterdata.audit.test"
	producer, err := kafka.NewProducer([]string{broker})
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, kafka.EnsureTopic(ctx, producer, topic, 1, 1))
	require.NoError(t, kafka.EnsureTopic(ctx, producer, topic, 1, 1), "ensure is idempotent")

	publisher := audit.NewPublisher(audit.NewKafkaSink(producer, topic))
	require.NoError(t, publisher.Emit(ctx, audit.Event{
		Action: audit.ActionDisabled,
		EPICNo: "ABC1234567",
		Actor:  "admin-1",
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.NotEmpty(t, records)

	got := records[0]
	assert.Equal(t, "ABC1234567", string(got.Key))
	var event audit.Event
	require.NoError(t, json.Unmarshal(got.Value, &event))
	assert.Equal(t, audit.ActionDisabled, event.Action)
	assert.Equal(t, "admin-1", event.Actor)
}
