package eventbus

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type payload struct {
		RaceName string `json:"race_name"`
		Count    int    `json:"count"`
	}

	received := make(chan payload, 1)
	err := bus.Subscribe(ctx, TopicResultsImported, func(ctx context.Context, msg *message.Message) error {
		var p payload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		received <- p
		return nil
	})
	require.NoError(t, err)

	err = bus.Publish(ctx, TopicResultsImported, payload{RaceName: "Carnethy 5", Count: 42})
	require.NoError(t, err)

	select {
	case got := <-received:
		require.Equal(t, "Carnethy 5", got.RaceName)
		require.Equal(t, 42, got.Count)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestEventBus_UnmarshalablePayload(t *testing.T) {
	bus := NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer bus.Close()

	err := bus.Publish(context.Background(), TopicResultsImported, make(chan int))
	require.Error(t, err)
}
