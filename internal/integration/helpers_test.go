//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/sakura-phenology-service/internal/domain"
	"github.com/couchcryptid/sakura-phenology-service/internal/phenology"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	kc, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("bloom-enricher-test"))
	testcontainers.CleanupContainer(t, kc)
	require.NoError(t, err, "start kafka container")

	brokers, err := kc.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close() //nolint:errcheck // test cleanup

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close() //nolint:errcheck // test cleanup

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func loadTestEngine(t *testing.T) *phenology.Engine {
	t.Helper()
	open := func(name string) *os.File {
		f, err := os.Open(filepath.Join("..", "phenology", "testdata", name))
		require.NoError(t, err)
		t.Cleanup(func() { _ = f.Close() })
		return f
	}
	engine, _, err := phenology.Load(open("flowering_date.csv"), open("bloom_state.csv"), nil)
	require.NoError(t, err)
	return engine
}

func submission(t *testing.T, treeID, photoDate string, lat, lon float64, prefecture string) []byte {
	t.Helper()
	data, err := json.Marshal(domain.PhotoSubmission{
		TreeID:         treeID,
		PhotoDate:      photoDate,
		Latitude:       &lat,
		Longitude:      &lon,
		PrefectureCode: prefecture,
	})
	require.NoError(t, err)
	return data
}

// sinkMessage holds a deserialized message read from the sink topic.
type sinkMessage struct {
	Assessment domain.BloomAssessment
	Key        string
	Headers    map[string]string
}

func newSinkConsumer(t *testing.T, broker, topic string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       topic,
		GroupID:     "test-sink-" + strconv.FormatInt(time.Now().UnixNano(), 10),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// readAssessment reads a single message from the sink consumer and deserializes it.
func readAssessment(ctx context.Context, t *testing.T, consumer *kafkago.Reader) sinkMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var a domain.BloomAssessment
	require.NoError(t, json.Unmarshal(msg.Value, &a), "unmarshal sink message")

	return sinkMessage{Assessment: a, Key: string(msg.Key), Headers: headers}
}
