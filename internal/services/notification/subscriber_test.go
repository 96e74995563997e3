package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzapap/internal/logger"
	"pizzapap/internal/messaging"
	"pizzapap/internal/models"
)

type fakeConsumer struct {
	bodies [][]byte
	err    error
}

func (f *fakeConsumer) Run(ctx context.Context, handler messaging.MessageHandler) error {
	for _, body := range f.bodies {
		if err := handler(ctx, "order.test", body); err != nil {
			return err
		}
	}
	return f.err
}

var ts = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name        string
		event       models.OrderEvent
		contains    []string
		notContains []string
	}{
		{
			name: "placed",
			event: models.OrderEvent{
				Event: models.EventOrderPlaced, OrderID: "o-1", Name: "Amy", Location: "Main St", Timestamp: ts,
			},
			contains: []string{"2024-03-01 12:30:00", "o-1", "Hello Amy", "Main St"},
		},
		{
			name: "rejected",
			event: models.OrderEvent{
				Event: models.EventOrderRejected, Name: "Amy", Location: "Main St", Timestamp: ts,
			},
			contains:    []string{"Sorry Amy"},
			notContains: []string{"Main St"},
		},
		{
			name: "delivered",
			event: models.OrderEvent{
				Event: models.EventOrderDelivered, OrderID: "o-2", AccountID: "amy.testnet", Timestamp: ts,
			},
			contains: []string{"o-2", "amy.testnet", "delivered"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := FormatEvent(&tt.event)
			for _, s := range tt.contains {
				assert.Contains(t, line, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, line, s)
			}
		})
	}
}

func TestSubscriber_PrintsEachEvent(t *testing.T) {
	placed, err := json.Marshal(models.OrderEvent{
		Event: models.EventOrderPlaced, OrderID: "o-1", Name: "Amy", Location: "Main St", Timestamp: ts,
	})
	require.NoError(t, err)

	var out bytes.Buffer
	consumer := &fakeConsumer{bodies: [][]byte{placed, []byte("not json")}}
	sub := NewSubscriber(consumer, &out, logger.Discard())

	require.NoError(t, sub.Start(context.Background()))
	assert.Contains(t, out.String(), "Hello Amy")
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("\n")), "malformed payload is dropped")
}

func TestSubscriber_ConsumerFailure(t *testing.T) {
	sub := NewSubscriber(&fakeConsumer{err: errors.New("broker gone")}, &bytes.Buffer{}, logger.Discard())
	err := sub.Start(context.Background())
	assert.ErrorContains(t, err, "broker gone")
}

func TestSubscriber_StopsQuietlyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sub := NewSubscriber(&fakeConsumer{err: context.Canceled}, &bytes.Buffer{}, logger.Discard())
	assert.NoError(t, sub.Start(ctx))
}
