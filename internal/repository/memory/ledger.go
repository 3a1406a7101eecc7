package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"rental-engine-backend/internal/domain"
)

// Ledger keeps stock levels, holds and rate tables in process memory.
// It satisfies the same repository interfaces as the postgres store.
type Ledger struct {
	mu         sync.RWMutex
	stocks     map[int32]int
	holds      []domain.ReservationHold
	rateTables map[int32]domain.RateTable
	nextID     int32
}

func NewLedger() *Ledger {
	return &Ledger{
		stocks:     make(map[int32]int),
		rateTables: make(map[int32]domain.RateTable),
	}
}

func (l *Ledger) GetStock(_ context.Context, productID int32) (*domain.StockLevel, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total, ok := l.stocks[productID]
	if !ok {
		return nil, fmt.Errorf("%w: stock for product %d", domain.ErrNotFound, productID)
	}
	return &domain.StockLevel{ProductID: productID, TotalQuantity: total}, nil
}

func (l *Ledger) SetStock(_ context.Context, level *domain.StockLevel) error {
	if level.TotalQuantity < 0 {
		return fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidQuantity)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stocks[level.ProductID] = level.TotalQuantity
	return nil
}

func (l *Ledger) OverlappingHolds(_ context.Context, productID int32, r domain.TimeRange) ([]domain.ReservationHold, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.ReservationHold
	for _, h := range l.holds {
		if h.ProductID == productID && h.Status.CountsAgainstStock() && h.Range.Overlaps(r) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (l *Ledger) InsertHold(_ context.Context, hold *domain.ReservationHold) error {
	if hold.Quantity <= 0 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, hold.Quantity)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	hold.ID = l.nextID
	if hold.CreatedOn.IsZero() {
		hold.CreatedOn = time.Now()
	}
	l.holds = append(l.holds, *hold)
	return nil
}

func (l *Ledger) ExpireCartHolds(_ context.Context, cutoff time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int64
	for i := range l.holds {
		if l.holds[i].Status == domain.HoldStatusCart && l.holds[i].CreatedOn.Before(cutoff) {
			l.holds[i].Status = domain.HoldStatusExpired
			n++
		}
	}
	return n, nil
}

// Holds returns a copy of every stored hold, in insertion order.
func (l *Ledger) Holds() []domain.ReservationHold {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.holds)
}

func (l *Ledger) GetRateTable(_ context.Context, productID int32) (*domain.RateTable, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rt, ok := l.rateTables[productID]
	if !ok {
		return nil, fmt.Errorf("%w: rate table for product %d", domain.ErrNotFound, productID)
	}
	return rt.Clone(), nil
}

// PutRateTable validates and stores a rate table, replacing any previous one.
func (l *Ledger) PutRateTable(rt domain.RateTable) error {
	if err := rt.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rateTables[rt.ProductID] = *rt.Clone()
	return nil
}

func (l *Ledger) ListProductIDs(_ context.Context) ([]int32, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]int32, 0, len(l.rateTables))
	for id := range l.rateTables {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
