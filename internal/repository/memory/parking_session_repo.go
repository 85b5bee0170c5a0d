package memory

import (
	"context"
	"sort"
	"sync"

	"parking_ledger/internal/domain"
	"parking_ledger/internal/repository"
)

type memParkingSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.ParkingSession
}

func NewParkingSessionRepository() repository.ParkingSessionRepository {
	return &memParkingSessionRepository{sessions: make(map[string]domain.ParkingSession)}
}

func (r *memParkingSessionRepository) Save(ctx context.Context, session *domain.ParkingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.CarNumber] = *session
	return nil
}

func (r *memParkingSessionRepository) FindByCarNumber(ctx context.Context, carNumber string) (*domain.ParkingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[carNumber]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

// FindOpenByLot returns the open sessions of a lot, oldest entry first.
func (r *memParkingSessionRepository) FindOpenByLot(ctx context.Context, lotID int) ([]domain.ParkingSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []domain.ParkingSession
	for _, s := range r.sessions {
		if s.LotID == lotID && s.IsOpen() {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].EntryTime.Equal(sessions[j].EntryTime) {
			return sessions[i].CarNumber < sessions[j].CarNumber
		}
		return sessions[i].EntryTime.Before(sessions[j].EntryTime)
	})
	return sessions, nil
}
