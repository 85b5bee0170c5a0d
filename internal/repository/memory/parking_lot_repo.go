package memory

import (
	"context"
	"fmt"
	"sync"

	"parking_ledger/internal/domain"
	"parking_ledger/internal/repository"
)

type memParkingLotRepository struct {
	mu    sync.RWMutex
	order []int
	lots  map[int]domain.ParkingLot
}

func NewParkingLotRepository() repository.ParkingLotRepository {
	return &memParkingLotRepository{lots: make(map[int]domain.ParkingLot)}
}

func (r *memParkingLotRepository) Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lots[lot.ID]; exists {
		return nil, fmt.Errorf("%w: parking lot %d", repository.ErrDuplicateEntry, lot.ID)
	}
	r.lots[lot.ID] = *lot
	r.order = append(r.order, lot.ID)

	created := *lot
	return &created, nil
}

func (r *memParkingLotRepository) FindByID(ctx context.Context, id int) (*domain.ParkingLot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lot, ok := r.lots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &lot, nil
}

func (r *memParkingLotRepository) FindAll(ctx context.Context) ([]domain.ParkingLot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lots := make([]domain.ParkingLot, 0, len(r.order))
	for _, id := range r.order {
		lots = append(lots, r.lots[id])
	}
	return lots, nil
}

func (r *memParkingLotRepository) UpdateAvailable(ctx context.Context, id int, available int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lot, ok := r.lots[id]
	if !ok {
		return repository.ErrNotFound
	}
	if available < 0 || available > lot.Capacity {
		return fmt.Errorf("ParkingLotRepository.UpdateAvailable: %d outside [0, %d] for lot %d", available, lot.Capacity, id)
	}
	lot.Available = available
	r.lots[id] = lot
	return nil
}
