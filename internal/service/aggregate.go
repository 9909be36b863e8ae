package service

import (
	"context"
	"log/slog"

	"github.com/gameshelfapp/gameshelf-server/internal/store"
)

// AggregateService serves the store's cached aggregate slots.
type AggregateService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAggregateService creates a new aggregate service.
func NewAggregateService(st *store.Store, logger *slog.Logger) *AggregateService {
	return &AggregateService{
		store:  st,
		logger: logger,
	}
}

// Get returns a slot's aggregate, computing it if no cached value exists.
func (s *AggregateService) Get(ctx context.Context, slotName string) (*store.AggregateResult, error) {
	slot, err := store.ParseSlot(slotName)
	if err != nil {
		return nil, err
	}
	return s.store.Aggregate(slot)
}

// Refresh recomputes a slot regardless of its cached state.
func (s *AggregateService) Refresh(ctx context.Context, slotName string) (*store.AggregateResult, error) {
	slot, err := store.ParseSlot(slotName)
	if err != nil {
		return nil, err
	}

	result, err := s.store.RefreshAggregate(slot)
	if err != nil {
		return nil, err
	}

	s.logger.Info("aggregate refreshed", "slot", slot)
	return result, nil
}
