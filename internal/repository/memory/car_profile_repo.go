package memory

import (
	"context"
	"sync"

	"parking_ledger/internal/domain"
	"parking_ledger/internal/repository"
)

type memCarProfileRepository struct {
	mu       sync.RWMutex
	order    []string
	profiles map[string]domain.CarProfile
}

func NewCarProfileRepository() repository.CarProfileRepository {
	return &memCarProfileRepository{profiles: make(map[string]domain.CarProfile)}
}

func (r *memCarProfileRepository) Save(ctx context.Context, profile *domain.CarProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.CarNumber]; !exists {
		r.order = append(r.order, profile.CarNumber)
	}
	r.profiles[profile.CarNumber] = *profile
	return nil
}

func (r *memCarProfileRepository) FindByCarNumber(ctx context.Context, carNumber string) (*domain.CarProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[carNumber]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &profile, nil
}

func (r *memCarProfileRepository) FindAll(ctx context.Context) ([]domain.CarProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profiles := make([]domain.CarProfile, 0, len(r.order))
	for _, carNumber := range r.order {
		profiles = append(profiles, r.profiles[carNumber])
	}
	return profiles, nil
}
