package jobs

import (
	"context"

	"rental-engine-backend/internal/logger"
)

// ExpireCartHolds releases CART holds older than the configured TTL so
// abandoned carts stop counting against stock.
func (jr *JobRunner) ExpireCartHolds() {
	jr.runWithRecovery("ExpireCartHolds", func(ctx context.Context) {
		if _, err := jr.expireCartHolds(ctx); err != nil {
			logger.Error("Failed to expire cart holds", "error", err)
		}
	})
}

func (jr *JobRunner) expireCartHolds(ctx context.Context) (int64, error) {
	cutoff := jr.now().Add(-jr.config.CartHoldTTL())
	n, err := jr.holds.ExpireCartHolds(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	logger.Info("Expired cart holds", "count", n, "cutoff", cutoff)
	return n, nil
}
