package jobs

import (
	"context"
	"errors"
	"time"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
)

// ReportCapacityShortfalls logs, per product, the days within the horizon
// that have no free units left.
func (jr *JobRunner) ReportCapacityShortfalls() {
	jr.runWithRecovery("ReportCapacityShortfalls", func(ctx context.Context) {
		if _, err := jr.capacityShortfalls(ctx); err != nil {
			logger.Error("Failed to report capacity shortfalls", "error", err)
		}
	})
}

func (jr *JobRunner) capacityShortfalls(ctx context.Context) (map[int32][]string, error) {
	loc := jr.config.Location()
	now := jr.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	horizon, err := domain.NewTimeRange(today, today.AddDate(0, 0, jr.config.Engine.CapacityHorizonDays))
	if err != nil {
		return nil, err
	}

	ids, err := jr.rates.ListProductIDs(ctx)
	if err != nil {
		return nil, err
	}

	shortfalls := make(map[int32][]string)
	for _, id := range ids {
		days, err := jr.availability.AvailabilityCalendar(ctx, id, horizon)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("Skipping product without stock level", "product_id", id)
			continue
		}
		if err != nil {
			logger.Error("Failed to build calendar", "product_id", id, "error", err)
			continue
		}

		var soldOut []string
		for _, d := range days {
			if d.AvailableQuantity == 0 {
				soldOut = append(soldOut, d.Date)
			}
		}
		if len(soldOut) > 0 {
			shortfalls[id] = soldOut
			logger.Warn("Product sold out within horizon",
				"product_id", id,
				"days", len(soldOut),
				"first", soldOut[0],
			)
		}
	}

	logger.Info("Capacity report finished", "products", len(ids), "short", len(shortfalls))
	return shortfalls, nil
}
