//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dwd-warncodes/internal/adapter/kafka"
	"github.com/couchcryptid/dwd-warncodes/internal/catalog"
	"github.com/couchcryptid/dwd-warncodes/internal/config"
	"github.com/couchcryptid/dwd-warncodes/internal/domain"
	"github.com/couchcryptid/dwd-warncodes/internal/observability"
	"github.com/couchcryptid/dwd-warncodes/internal/publish"
)

const testTopic = "test-warning-codes"

// publishedMessage holds a deserialized message read from the catalog topic.
type publishedMessage struct {
	Entry   domain.WarningEntry
	Key     string
	Headers map[string]string
}

func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from catalog topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var entry domain.WarningEntry
	require.NoError(t, json.Unmarshal(msg.Value, &entry), "unmarshal catalog message")

	return publishedMessage{Entry: entry, Key: string(msg.Key), Headers: headers}
}

// TestPublishCatalogSnapshot publishes the bundled catalog through the Kafka
// writer and reads every entry back.
func TestPublishCatalogSnapshot(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaTopic:       testTopic,
		PublishBatchSize: 20,
	}

	cat, err := catalog.Default()
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := publish.New(writer, discardLogger(), observability.NewMetricsForTesting(), cfg.PublishBatchSize)
	require.Error(t, p.CheckReadiness(ctx))
	require.NoError(t, p.Publish(ctx, cat))
	require.NoError(t, p.CheckReadiness(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make(map[string]publishedMessage, cat.Len())
	for len(received) < cat.Len() {
		pm := readPublished(ctx, t, consumer)
		received[pm.Key] = pm
	}

	counts := map[domain.Category]int{}
	for key, pm := range received {
		counts[pm.Entry.Category]++
		assert.Equal(t, string(pm.Entry.Category), pm.Headers["category"], key)
		_, err := time.Parse(time.RFC3339, pm.Headers["published_at"])
		assert.NoError(t, err, "invalid published_at on %s", key)
	}
	assert.Equal(t, cat.Counts(), counts)

	frost, ok := received["warnungen/22"]
	require.True(t, ok, "expected warnungen/22 on the topic")
	assert.Equal(t, "FROST", frost.Entry.Event)
	assert.Equal(t, domain.LevelWarning, frost.Entry.Level)

	test, ok := received["testwarnungen/98"]
	require.True(t, ok, "expected testwarnungen/98 on the topic")
	assert.Equal(t, domain.LevelNone, test.Entry.Level)

	_, coastal := received["kuestenwarnungen/57"]
	_, inland := received["binnenwarnungen/57"]
	assert.True(t, coastal && inland, "repeated codes must stay distinct per category")
}
