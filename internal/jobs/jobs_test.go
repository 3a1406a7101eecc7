package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-engine-backend/internal/config"
	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/repository/memory"
	"rental-engine-backend/internal/service"
)

const testConfig = `
server:
  http_port: 8080
database:
  host: localhost
  user: rental
  database: rental
auth:
  secret: 0123456789abcdef0123456789abcdef
engine:
  cart_hold_ttl_minutes: 30
  capacity_horizon_days: 5
`

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newRunner(t *testing.T) (*JobRunner, *memory.Ledger) {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)

	ledger := memory.NewLedger()
	availability := service.NewAvailabilityService(ledger, ledger)
	return NewJobRunner(ledger, ledger, availability, cfg, func() time.Time { return now }), ledger
}

func dayRange(from, to int) domain.TimeRange {
	return domain.TimeRange{
		Start: time.Date(2026, 6, from, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 6, to, 0, 0, 0, 0, time.UTC),
	}
}

func TestExpireCartHolds(t *testing.T) {
	jr, ledger := newRunner(t)
	ctx := context.Background()

	for _, h := range []domain.ReservationHold{
		{ProductID: 1, Range: dayRange(2, 4), Quantity: 1, Status: domain.HoldStatusCart, CreatedOn: now.Add(-time.Hour)},
		{ProductID: 1, Range: dayRange(2, 4), Quantity: 1, Status: domain.HoldStatusCart, CreatedOn: now.Add(-10 * time.Minute)},
		{ProductID: 1, Range: dayRange(2, 4), Quantity: 1, Status: domain.HoldStatusApproved, CreatedOn: now.Add(-48 * time.Hour)},
	} {
		require.NoError(t, ledger.InsertHold(ctx, &h))
	}

	n, err := jr.expireCartHolds(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	statuses := make([]domain.HoldStatus, 0, 3)
	for _, h := range ledger.Holds() {
		statuses = append(statuses, h.Status)
	}
	assert.Equal(t, []domain.HoldStatus{domain.HoldStatusExpired, domain.HoldStatusCart, domain.HoldStatusApproved}, statuses)

	// Expired holds no longer count.
	n, err = jr.expireCartHolds(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCapacityShortfalls(t *testing.T) {
	jr, ledger := newRunner(t)
	ctx := context.Background()

	for _, id := range []int32{1, 2, 3} {
		require.NoError(t, ledger.PutRateTable(domain.RateTable{
			ProductID: id,
			DailyRate: decimal.NewNullDecimal(decimal.NewFromInt(10)),
		}))
	}
	require.NoError(t, ledger.SetStock(ctx, &domain.StockLevel{ProductID: 1, TotalQuantity: 2}))
	require.NoError(t, ledger.SetStock(ctx, &domain.StockLevel{ProductID: 2, TotalQuantity: 2}))
	// Product 3 has a rate table but no stock row.

	require.NoError(t, ledger.InsertHold(ctx, &domain.ReservationHold{
		ProductID: 1, Range: dayRange(2, 4), Quantity: 2, Status: domain.HoldStatusApproved,
	}))
	require.NoError(t, ledger.InsertHold(ctx, &domain.ReservationHold{
		ProductID: 2, Range: dayRange(2, 4), Quantity: 1, Status: domain.HoldStatusApproved,
	}))

	shortfalls, err := jr.capacityShortfalls(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int32][]string{1: {"2026-06-02", "2026-06-03"}}, shortfalls)
}

type failingRates struct{ *memory.Ledger }

func (failingRates) ListProductIDs(context.Context) ([]int32, error) {
	return nil, errors.New("connection refused")
}

func TestJobsSwallowFailures(t *testing.T) {
	jr, ledger := newRunner(t)
	jr.rates = failingRates{ledger}

	_, err := jr.capacityShortfalls(context.Background())
	assert.Error(t, err)

	// The cron entry points log and return instead of propagating.
	assert.NotPanics(t, jr.RunAll)
}

func TestRunWithRecovery(t *testing.T) {
	jr, _ := newRunner(t)
	ran := false
	assert.NotPanics(t, func() {
		jr.runWithRecovery("Boom", func(context.Context) {
			ran = true
			panic("boom")
		})
	})
	assert.True(t, ran)
}
