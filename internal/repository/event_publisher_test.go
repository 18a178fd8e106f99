package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"IndexScope/internal/domain/models"
	pkgkafka "IndexScope/pkg/kafka"
)

type recordingWriter struct{ msgs []kafka.Message }

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisher_KeysBySymbol(t *testing.T) {
	w := &recordingWriter{}
	pub := NewKafkaPublisher(pkgkafka.NewProducerWithWriter(w, "", nil), "projections")

	evt := &models.ProjectionComputed{Symbol: "NYSE", Target: "2020-01-10", Points: 7, ComputedAt: time.Unix(0, 0).UTC()}
	if err := pub.PublishProjection(context.Background(), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "NYSE" || w.msgs[0].Topic != "projections" {
		t.Fatalf("unexpected messages %+v", w.msgs)
	}
	var got models.ProjectionComputed
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Points != 7 || got.Target != "2020-01-10" {
		t.Fatalf("unexpected event %+v", got)
	}
}
