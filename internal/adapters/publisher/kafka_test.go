package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventsapi/internal/domain"
	"eventsapi/internal/metrics"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleChange() domain.EventChange {
	return domain.EventChange{
		ID:         "9a4c1f0e-7c1b-4c36-8d43-3d4f2b1a6e10",
		Type:       domain.EventCreated,
		EventID:    "64b7f0c2a1b2c3d4e5f60799",
		ActorID:    "64b7f0c2a1b2c3d4e5f60718",
		OccurredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Event:      &domain.Event{ID: "64b7f0c2a1b2c3d4e5f60799", Name: "GoConf"},
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	before := testutil.ToFloat64(metrics.EventChangesPublished.WithLabelValues("event.created", "success"))

	require.NoError(t, p.Publish(context.Background(), sampleChange()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60799", string(msg.Key))
	assert.Equal(t, []kafka.Header{
		{Key: "type", Value: []byte("event.created")},
		{Key: "id", Value: []byte("9a4c1f0e-7c1b-4c36-8d43-3d4f2b1a6e10")},
	}, msg.Headers)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "event.created", decoded["type"])
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", decoded["actorId"])
	assert.Equal(t, "GoConf", decoded["event"].(map[string]any)["name"])

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.EventChangesPublished.WithLabelValues("event.created", "success")))
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := &KafkaPublisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	change := sampleChange()
	change.Type = domain.EventDeleted
	before := testutil.ToFloat64(metrics.EventChangesPublished.WithLabelValues("event.deleted", "error"))

	err := p.Publish(context.Background(), change)
	require.Error(t, err)
	assert.ErrorContains(t, err, "leader not available")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.EventChangesPublished.WithLabelValues("event.deleted", "error")))
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNop(t *testing.T) {
	var p domain.EventPublisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), sampleChange()))
	assert.NoError(t, p.Close())
}
