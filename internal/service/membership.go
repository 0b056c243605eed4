package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/skoglund/wayfarer/backend/internal/domain"
	"github.com/skoglund/wayfarer/backend/internal/repo"
)

// MembershipService implements the membership and invite lifecycle: who gets
// invited, how invites resolve into memberships, role changes, removal,
// leaving, and ownership transfer. Role gating itself lives in the domain
// transitions; this layer loads/saves the aggregate and applies the
// disclosure policy for non-members.
type MembershipService struct {
	trips repo.TripRepo
}

// NewMembershipService constructs a MembershipService backed by the provided
// TripRepo.
func NewMembershipService(trips repo.TripRepo) *MembershipService {
	return &MembershipService{trips: trips}
}

// Get returns the aggregate for membership reads; the handler projects it
// into the memberships/invites view.
func (s *MembershipService) Get(ctx context.Context, actorID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := loadForView(ctx, s.trips, actorID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Get: %w", err)
	}
	return trip, nil
}

// Invite records a PENDING invite for email with the given role.
func (s *MembershipService) Invite(ctx context.Context, actorID, tripID uuid.UUID, email string, role domain.Role) (domain.Trip, error) {
	trip, err := s.loadForMember(ctx, actorID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Invite: %w", err)
	}
	next, err := trip.InviteMember(actorID, email, role)
	if err != nil {
		return domain.Trip{}, err
	}
	return s.save(ctx, "Invite", next)
}

// Respond resolves the actor's own pending invite on the trip. The invite is
// matched by case-insensitive equality with the account email.
func (s *MembershipService) Respond(ctx context.Context, actor domain.Identity, tripID uuid.UUID, accept bool) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Respond: %w", err)
	}
	next, err := trip.RespondToInvite(actor.Email, actor.UserID, accept)
	if err != nil {
		return domain.Trip{}, err
	}
	return s.save(ctx, "Respond", next)
}

// ChangeMemberRole updates an existing member's role.
func (s *MembershipService) ChangeMemberRole(ctx context.Context, actorID, tripID, targetID uuid.UUID, role domain.Role) (domain.Trip, error) {
	trip, err := s.loadForMember(ctx, actorID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.ChangeMemberRole: %w", err)
	}
	next, err := trip.ChangeMemberRole(actorID, targetID, role)
	if err != nil {
		return domain.Trip{}, err
	}
	return s.save(ctx, "ChangeMemberRole", next)
}

// ChangeInviteRole updates the role carried by an existing invite.
func (s *MembershipService) ChangeInviteRole(ctx context.Context, actorID, tripID uuid.UUID, email string, role domain.Role) (domain.Trip, error) {
	trip, err := s.loadForMember(ctx, actorID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.ChangeInviteRole: %w", err)
	}
	next, err := trip.ChangeInviteRole(actorID, email, role)
	if err != nil {
		return domain.Trip{}, err
	}
	return s.save(ctx, "ChangeInviteRole", next)
}

// RemoveInvite deletes a PENDING or DECLINED invite.
func (s *MembershipService) RemoveInvite(ctx context.Context, actorID, tripID uuid.UUID, email string) (domain.Trip, error) {
	trip, err := s.loadForMember(ctx, actorID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.RemoveInvite: %w", err)
	}
	next, err := trip.RemoveInvite(actorID, email)
	if err != nil {
		return domain.Trip{}, err
	}
	return s.save(ctx, "RemoveInvite", next)
}

// RevokeInvite cancels a PENDING invite.
func (s *MembershipService) RevokeInvite(ctx context.Context, actorID, tripID uuid.UUID, email string) (domain.Trip, error) {
	trip, err := s.loadForMember(ctx, actorID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.RevokeInvite: %w", err)
	}
	next, err := trip.RevokeInvite(actorID, email)
	if err != nil {
		return domain.Trip{}, err
	}
	return s.save(ctx, "RevokeInvite", next)
}

// RemoveMember removes a member under the ownership rules of the aggregate.
func (s *MembershipService) RemoveMember(ctx context.Context, actorID, tripID, targetID uuid.UUID) (domain.Trip, error) {
	trip, err := s.loadForMember(ctx, actorID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.RemoveMember: %w", err)
	}
	next, err := trip.RemoveMember(actorID, targetID)
	if err != nil {
		return domain.Trip{}, err
	}
	return s.save(ctx, "RemoveMember", next)
}

// AddOwner promotes an existing member to OWNER.
func (s *MembershipService) AddOwner(ctx context.Context, actorID, tripID, targetID uuid.UUID) (domain.Trip, error) {
	trip, err := s.loadForMember(ctx, actorID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.AddOwner: %w", err)
	}
	next, err := trip.AddOwner(actorID, targetID)
	if err != nil {
		return domain.Trip{}, err
	}
	return s.save(ctx, "AddOwner", next)
}

// Leave removes the actor from the trip, transferring primary ownership to
// the successor when required.
func (s *MembershipService) Leave(ctx context.Context, actorID, tripID uuid.UUID, successorID *uuid.UUID) (domain.Trip, error) {
	trip, err := s.loadForMember(ctx, actorID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Leave: %w", err)
	}
	next, err := trip.LeaveTrip(actorID, successorID)
	if err != nil {
		return domain.Trip{}, err
	}
	return s.save(ctx, "Leave", next)
}

// LinkPendingInvites accepts every PENDING invite matching the newly
// registered account's email, creating the memberships the invites promised.
// Trips that fail to link do not stop the others; the failures are combined
// into one error. Returns the number of trips linked.
func (s *MembershipService) LinkPendingInvites(ctx context.Context, user domain.Identity) (int, error) {
	trips, err := s.trips.ListByPendingInviteEmail(ctx, user.Email)
	if err != nil {
		return 0, fmt.Errorf("service.MembershipService.LinkPendingInvites: %w", err)
	}

	linked := 0
	var errs error
	for _, trip := range trips {
		next, err := trip.RespondToInvite(user.Email, user.UserID, true)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("trip %s: %w", trip.ID, err))
			continue
		}
		if _, err := s.trips.Save(ctx, next); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("trip %s: %w", trip.ID, err))
			continue
		}
		linked++
	}
	if errs != nil {
		return linked, fmt.Errorf("service.MembershipService.LinkPendingInvites: %w", errs)
	}
	return linked, nil
}

// loadForMember loads a trip for a membership mutation. The actor must be a
// member; non-members get ErrNotFound per the disclosure policy. Role
// checks beyond membership belong to the domain transition itself.
func (s *MembershipService) loadForMember(ctx context.Context, actorID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if _, member := trip.RoleOf(actorID); !member {
		return domain.Trip{}, domain.ErrNotFound
	}
	return trip, nil
}

// save persists a transitioned aggregate with a consistent error prefix.
func (s *MembershipService) save(ctx context.Context, op string, trip domain.Trip) (domain.Trip, error) {
	saved, err := s.trips.Save(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.%s: %w", op, err)
	}
	return saved, nil
}
