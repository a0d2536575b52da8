package resultsservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
)

// ImportedEventLogger returns a handler for the results.imported topic that
// logs each import summary.
func ImportedEventLogger(logger *slog.Logger) func(ctx context.Context, msg *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var event ResultsImportedEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			return fmt.Errorf("failed to decode import event: %w", err)
		}

		logger.InfoContext(ctx, "Results imported",
			slog.String("race_name", event.RaceName),
			slog.Int("race_year", event.RaceYear),
			slog.Int("records", event.RecordCount),
			slog.Int("dropped", event.DroppedRows),
		)
		return nil
	}
}
