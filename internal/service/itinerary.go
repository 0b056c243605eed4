package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/skoglund/wayfarer/backend/internal/domain"
	"github.com/skoglund/wayfarer/backend/internal/repo"
)

// ItineraryService implements the itinerary operations: item CRUD plus the
// anchor-based move. All writes require EDITOR; reads follow the view rules.
type ItineraryService struct {
	trips repo.TripRepo
}

// NewItineraryService constructs an ItineraryService backed by the provided
// TripRepo.
func NewItineraryService(trips repo.TripRepo) *ItineraryService {
	return &ItineraryService{trips: trips}
}

// Get returns the aggregate for itinerary reads; the handler projects it
// into the day/backlog view.
func (s *ItineraryService) Get(ctx context.Context, actorID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := loadForView(ctx, s.trips, actorID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ItineraryService.Get: %w", err)
	}
	return trip, nil
}

// AddItem appends a new item to the end of the trip's flat item list.
func (s *ItineraryService) AddItem(ctx context.Context, actorID, tripID uuid.UUID, item domain.ItineraryItem) (domain.Trip, error) {
	trip, err := loadForRole(ctx, s.trips, actorID, tripID, domain.RoleEditor)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ItineraryService.AddItem: %w", err)
	}
	item.ID = uuid.New()
	next, err := trip.AddItineraryItem(item)
	if err != nil {
		return domain.Trip{}, err
	}
	saved, err := s.trips.Save(ctx, next)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ItineraryService.AddItem: %w", err)
	}
	return saved, nil
}

// UpdateItem replaces the editable fields of an existing item.
func (s *ItineraryService) UpdateItem(ctx context.Context, actorID, tripID, itemID uuid.UUID, item domain.ItineraryItem) (domain.Trip, error) {
	trip, err := loadForRole(ctx, s.trips, actorID, tripID, domain.RoleEditor)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ItineraryService.UpdateItem: %w", err)
	}
	next, err := trip.UpdateItineraryItem(itemID, item)
	if err != nil {
		return domain.Trip{}, err
	}
	saved, err := s.trips.Save(ctx, next)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ItineraryService.UpdateItem: %w", err)
	}
	return saved, nil
}

// RemoveItem deletes an item from the flat list.
func (s *ItineraryService) RemoveItem(ctx context.Context, actorID, tripID, itemID uuid.UUID) (domain.Trip, error) {
	trip, err := loadForRole(ctx, s.trips, actorID, tripID, domain.RoleEditor)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ItineraryService.RemoveItem: %w", err)
	}
	next, err := trip.RemoveItineraryItem(itemID)
	if err != nil {
		return domain.Trip{}, err
	}
	saved, err := s.trips.Save(ctx, next)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ItineraryService.RemoveItem: %w", err)
	}
	return saved, nil
}

// Move repositions an item between day buckets and the backlog using the
// anchor vocabulary of domain.Trip.MoveItem.
func (s *ItineraryService) Move(ctx context.Context, actorID, tripID, itemID uuid.UUID, targetDay *int, beforeID, afterID *uuid.UUID) (domain.Trip, error) {
	trip, err := loadForRole(ctx, s.trips, actorID, tripID, domain.RoleEditor)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ItineraryService.Move: %w", err)
	}
	next, err := trip.MoveItem(itemID, targetDay, beforeID, afterID)
	if err != nil {
		return domain.Trip{}, err
	}
	saved, err := s.trips.Save(ctx, next)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ItineraryService.Move: %w", err)
	}
	return saved, nil
}
