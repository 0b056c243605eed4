// Package service contains the business logic for the Wayfarer API.
// Services load the trip aggregate, gate the acting user, apply a pure
// domain transition, and hand the result back to the repo for a full
// aggregate replace. No SQL lives here — services depend on repo interfaces.
//
// Disclosure policy: a user who is not a member of a private trip gets
// domain.ErrNotFound for every operation on it, never ErrForbidden, so the
// trip's existence is not revealed. ErrForbidden is reserved for members
// whose role is too low for the operation.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skoglund/wayfarer/backend/internal/domain"
	"github.com/skoglund/wayfarer/backend/internal/repo"
)

// TripDetails carries the caller-editable trip fields.
type TripDetails struct {
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	Visibility domain.Visibility
}

// TripService implements business logic for trip-level operations.
type TripService struct {
	trips repo.TripRepo
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(trips repo.TripRepo) *TripService {
	return &TripService{trips: trips}
}

// Create validates and persists a new trip with ownerID as primary owner.
func (s *TripService) Create(ctx context.Context, ownerID uuid.UUID, d TripDetails) (domain.Trip, error) {
	trip, err := domain.NewTrip(ownerID, d.Name, d.StartDate, d.EndDate, d.Visibility)
	if err != nil {
		return domain.Trip{}, err
	}
	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns the full aggregate when actorID may view it.
func (s *TripService) GetByID(ctx context.Context, actorID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := loadForView(ctx, s.trips, actorID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// List returns the trips actorID is a member of, newest start date first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) List(ctx context.Context, actorID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.trips.ListByMemberPaged(ctx, actorID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// UpdateDetails changes trip name, range, and visibility. Requires EDITOR.
// A range shrink converts newly out-of-range items to Places-to-Visit
// entries inside the same transition.
func (s *TripService) UpdateDetails(ctx context.Context, actorID, tripID uuid.UUID, d TripDetails) (domain.Trip, error) {
	trip, err := loadForRole(ctx, s.trips, actorID, tripID, domain.RoleEditor)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateDetails: %w", err)
	}
	next, err := trip.UpdateDetails(d.Name, d.StartDate, d.EndDate, d.Visibility)
	if err != nil {
		return domain.Trip{}, err
	}
	saved, err := s.trips.Save(ctx, next)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateDetails: %w", err)
	}
	return saved, nil
}

// Delete removes a trip and everything under it. Requires OWNER.
func (s *TripService) Delete(ctx context.Context, actorID, tripID uuid.UUID) error {
	if _, err := loadForRole(ctx, s.trips, actorID, tripID, domain.RoleOwner); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if err := s.trips.Delete(ctx, tripID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// loadForView loads a trip and checks read access: members always, anyone
// for PUBLIC trips. Non-members of private trips get ErrNotFound.
func loadForView(ctx context.Context, trips repo.TripRepo, actorID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if _, member := trip.RoleOf(actorID); member || trip.Visibility == domain.VisibilityPublic {
		return trip, nil
	}
	return domain.Trip{}, domain.ErrNotFound
}

// loadForRole loads a trip and checks that actorID is a member holding at
// least the given role. Non-members get ErrNotFound (existence stays
// hidden); members with a lower role get ErrForbidden.
func loadForRole(ctx context.Context, trips repo.TripRepo, actorID, tripID uuid.UUID, need domain.Role) (domain.Trip, error) {
	trip, err := trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	role, member := trip.RoleOf(actorID)
	if !member {
		return domain.Trip{}, domain.ErrNotFound
	}
	if !role.AtLeast(need) {
		return domain.Trip{}, fmt.Errorf("%w: requires the %s role", domain.ErrForbidden, need)
	}
	return trip, nil
}
