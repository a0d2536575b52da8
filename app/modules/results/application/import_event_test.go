package resultsservice

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/require"
)

func TestImportedEventLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := ImportedEventLogger(logger)

	payload, err := json.Marshal(ResultsImportedEvent{
		RaceName:    "Carnethy 5",
		RaceYear:    2024,
		RecordCount: 412,
		DroppedRows: 3,
	})
	require.NoError(t, err)

	msg := message.NewMessage(watermill.NewUUID(), payload)
	require.NoError(t, handler(context.Background(), msg))

	logged := buf.String()
	require.Contains(t, logged, "Results imported")
	require.Contains(t, logged, "Carnethy 5")
	require.Contains(t, logged, "race_year=2024")
	require.Contains(t, logged, "records=412")
	require.Contains(t, logged, "dropped=3")
}

func TestImportedEventLogger_BadPayload(t *testing.T) {
	var buf bytes.Buffer
	handler := ImportedEventLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	err := handler(context.Background(), msg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to decode import event")
	require.Empty(t, buf.String())
}
