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

	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/kafka"
	"github.com/DavidKimmel/DC-Traffic2/internal/adapter/source"
	"github.com/DavidKimmel/DC-Traffic2/internal/config"
	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
	"github.com/DavidKimmel/DC-Traffic2/internal/observability"
	"github.com/DavidKimmel/DC-Traffic2/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testViewsTopic = "test-dashboard-views"

const crashCSV = `DATE,WARD,LATITUDE,LONGITUDE,FATAL_DRIVER,MAJORINJURIES_DRIVER,MINORINJURIES_DRIVER
2018-02-01,Ward 1,38.90,-77.03,0,0,1
2022-03-01,Ward 1,38.90,-77.03,0,0,0
2022-07-11,Ward 2,38.91,-77.02,0,1,0
2023-03-01,Ward 1,38.92,-77.01,1,0,0
2023-04-01,Ward 1,,,0,1,0
2023-09-21,Ward 2,38.88,-77.00,0,0,1
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("dashboard-test"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

type snapshotMessage struct {
	Key      string
	Headers  map[string]string
	Snapshot struct {
		View      string           `json:"view"`
		Selection domain.Selection `json:"selection"`
		Data      json.RawMessage  `json:"data"`
	}
}

func readSnapshot(ctx context.Context, t *testing.T, consumer *kafkago.Reader) snapshotMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from views topic")

	var out snapshotMessage
	out.Key = string(msg.Key)
	out.Headers = make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		out.Headers[h.Key] = string(h.Value)
	}
	require.NoError(t, json.Unmarshal(msg.Value, &out.Snapshot))
	return out
}

// TestCoordinatorPublishesSnapshots loads a CSV through the real loader,
// dispatches through the Kafka publisher, and reads the snapshots back.
func TestCoordinatorPublishesSnapshots(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testViewsTopic)

	dataPath := filepath.Join(t.TempDir(), "crashes.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(crashCSV), 0o600))

	cfg := &config.Config{
		KafkaBrokers:    []string{broker},
		KafkaViewsTopic: testViewsTopic,
		KafkaEnabled:    true,
	}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()

	publisher := kafka.NewPublisher(cfg, clock, logger)
	t.Cleanup(func() { _ = publisher.Close() })

	fetcher := source.NewFetcher(10*time.Second, logger)
	loader := pipeline.NewLoader(source.NewCSVReader(fetcher, dataPath), domain.DefaultExcludedYears, clock, logger, metrics)
	coord := pipeline.New(loader, pipeline.Renderers{
		KPIs:     []pipeline.KPIRenderer{publisher},
		Severity: []pipeline.SeverityRenderer{publisher},
		Trend:    []pipeline.TrendRenderer{publisher},
	}, logger, metrics, clock)

	require.NoError(t, coord.Load(ctx, "2023"))
	require.NoError(t, coord.CheckReadiness(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testViewsTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	wantKey := domain.Selection{Year: "2023"}.Key()
	got := make(map[string]snapshotMessage, 3)
	for range 3 {
		m := readSnapshot(ctx, t, consumer)
		assert.Equal(t, wantKey, m.Key)
		assert.Equal(t, m.Snapshot.View, m.Headers[kafka.HeaderView])
		assert.Equal(t, "2024-06-01T12:00:00Z", m.Headers[kafka.HeaderGeneratedAt])
		got[m.Snapshot.View] = m
	}
	require.Len(t, got, 3)

	var kpis domain.KPISet
	require.NoError(t, json.Unmarshal(got[pipeline.ViewKPIs].Snapshot.Data, &kpis))
	assert.Equal(t, domain.KPISet{Total: 3, FatalCrashes: 1, MajorInjuryCrashes: 1, PercentChange: "50.0%"}, kpis)

	var severity []domain.CategoryCount
	require.NoError(t, json.Unmarshal(got[pipeline.ViewSeverity].Snapshot.Data, &severity))
	assert.Equal(t, domain.SeverityHistogram{Fatal: 1, Major: 1, Minor: 1}.Categories(), severity)

	var trend []domain.YearCount
	require.NoError(t, json.Unmarshal(got[pipeline.ViewTrend].Snapshot.Data, &trend))
	assert.Equal(t, []domain.YearCount{{Year: "2022", Count: 2}, {Year: "2023", Count: 3}}, trend)
}
