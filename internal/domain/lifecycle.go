package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Membership and invite lifecycle transitions. Authorization is role-gated:
// each transition checks the actor's role by direct lookup, not by type.
// Actors who are not members at all get ErrForbidden here; the service layer
// converts that to ErrNotFound before it leaves the process, so private trips
// stay hidden from outsiders.

// requireOwner returns an error unless actorID is a member holding OWNER.
func (t Trip) requireOwner(actorID uuid.UUID) error {
	role, ok := t.RoleOf(actorID)
	if !ok || role != RoleOwner {
		return fmt.Errorf("%w: operation requires the OWNER role", ErrForbidden)
	}
	return nil
}

// InviteMember records a PENDING invite for email with the given role.
// Invites are keyed by case-insensitive email. A PENDING or ACCEPTED invite
// for the same email blocks a new one; a DECLINED or REVOKED invite is
// replaced in place, so its stable identity survives re-invitation.
func (t Trip) InviteMember(actorID uuid.UUID, email string, role Role) (Trip, error) {
	if err := t.requireOwner(actorID); err != nil {
		return Trip{}, err
	}
	if !role.Valid() {
		return Trip{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	key := NormalizeEmail(email)
	if key == "" {
		return Trip{}, fmt.Errorf("%w: invite email is required", ErrValidation)
	}

	next := t.clone()
	invite := TripInvite{Email: key, Role: role, Status: InvitePending, CreatedAt: time.Now().UTC()}
	if idx := next.inviteIndex(key); idx >= 0 {
		switch next.Invites[idx].Status {
		case InvitePending, InviteAccepted:
			return Trip{}, fmt.Errorf("%w: an active invite for %s already exists", ErrValidation, key)
		}
		next.Invites[idx] = invite
	} else {
		next.Invites = append(next.Invites, invite)
	}
	if err := next.validate(); err != nil {
		return Trip{}, err
	}
	return next, nil
}

// RespondToInvite resolves the PENDING invite matching email. Accepting marks
// it ACCEPTED and adds a membership with the invite's role; if the user is
// somehow already a member the membership step is skipped, so acceptance is
// idempotent. Declining only flips the status.
func (t Trip) RespondToInvite(email string, userID uuid.UUID, accept bool) (Trip, error) {
	idx := t.inviteIndex(NormalizeEmail(email))
	if idx < 0 {
		return Trip{}, fmt.Errorf("%w: invite for %s", ErrNotFound, NormalizeEmail(email))
	}
	if t.Invites[idx].Status != InvitePending {
		return Trip{}, fmt.Errorf("%w: invite is no longer pending", ErrValidation)
	}

	next := t.clone()
	if !accept {
		next.Invites[idx].Status = InviteDeclined
		return next, nil
	}
	next.Invites[idx].Status = InviteAccepted
	if _, member := next.RoleOf(userID); !member {
		next.Members = append(next.Members, TripMembership{UserID: userID, Role: next.Invites[idx].Role})
	}
	if err := next.validate(); err != nil {
		return Trip{}, err
	}
	return next, nil
}

// ChangeInviteRole updates the role carried by an existing invite.
func (t Trip) ChangeInviteRole(actorID uuid.UUID, email string, role Role) (Trip, error) {
	if err := t.requireOwner(actorID); err != nil {
		return Trip{}, err
	}
	if !role.Valid() {
		return Trip{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	idx := t.inviteIndex(NormalizeEmail(email))
	if idx < 0 {
		return Trip{}, fmt.Errorf("%w: invite for %s", ErrNotFound, NormalizeEmail(email))
	}
	next := t.clone()
	next.Invites[idx].Role = role
	return next, nil
}

// RevokeInvite cancels a PENDING invite without deleting it. A revoked invite
// can be replaced by a fresh InviteMember call.
func (t Trip) RevokeInvite(actorID uuid.UUID, email string) (Trip, error) {
	if err := t.requireOwner(actorID); err != nil {
		return Trip{}, err
	}
	idx := t.inviteIndex(NormalizeEmail(email))
	if idx < 0 {
		return Trip{}, fmt.Errorf("%w: invite for %s", ErrNotFound, NormalizeEmail(email))
	}
	if t.Invites[idx].Status != InvitePending {
		return Trip{}, fmt.Errorf("%w: only a pending invite can be revoked", ErrValidation)
	}
	next := t.clone()
	next.Invites[idx].Status = InviteRevoked
	return next, nil
}

// RemoveInvite deletes a PENDING or DECLINED invite. An ACCEPTED invite is
// never removable — deleting it would desync the invite list from the
// membership it produced.
func (t Trip) RemoveInvite(actorID uuid.UUID, email string) (Trip, error) {
	if err := t.requireOwner(actorID); err != nil {
		return Trip{}, err
	}
	idx := t.inviteIndex(NormalizeEmail(email))
	if idx < 0 {
		return Trip{}, fmt.Errorf("%w: invite for %s", ErrNotFound, NormalizeEmail(email))
	}
	switch t.Invites[idx].Status {
	case InvitePending, InviteDeclined:
	default:
		return Trip{}, fmt.Errorf("%w: only a pending or declined invite can be removed", ErrValidation)
	}
	next := t.clone()
	next.Invites = append(next.Invites[:idx], next.Invites[idx+1:]...)
	return next, nil
}

// ChangeMemberRole updates the role of an existing member. Demoting the
// primary owner is rejected by aggregate validation.
func (t Trip) ChangeMemberRole(actorID, targetID uuid.UUID, role Role) (Trip, error) {
	if err := t.requireOwner(actorID); err != nil {
		return Trip{}, err
	}
	if !role.Valid() {
		return Trip{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	idx := t.memberIndex(targetID)
	if idx < 0 {
		return Trip{}, fmt.Errorf("%w: member %s", ErrNotFound, targetID)
	}
	next := t.clone()
	next.Members[idx].Role = role
	if err := next.validate(); err != nil {
		return Trip{}, err
	}
	return next, nil
}

// AddOwner promotes an existing member to OWNER.
func (t Trip) AddOwner(actorID, targetID uuid.UUID) (Trip, error) {
	return t.ChangeMemberRole(actorID, targetID, RoleOwner)
}

// RemoveMember removes a member from the trip. Owners cannot be removed by
// someone else — an owner may only be removed by themself, and never when
// they are the sole remaining owner or the primary owner (the primary owner
// must transfer ownership via LeaveTrip first).
func (t Trip) RemoveMember(actorID, targetID uuid.UUID) (Trip, error) {
	if err := t.requireOwner(actorID); err != nil {
		return Trip{}, err
	}
	idx := t.memberIndex(targetID)
	if idx < 0 {
		return Trip{}, fmt.Errorf("%w: member %s", ErrNotFound, targetID)
	}
	if t.Members[idx].Role == RoleOwner {
		if targetID != actorID {
			return Trip{}, fmt.Errorf("%w: another owner cannot be removed", ErrValidation)
		}
		if t.ownerCount() == 1 {
			return Trip{}, fmt.Errorf("%w: the last owner cannot be removed", ErrInvariant)
		}
	}
	if targetID == t.OwnerID {
		return Trip{}, fmt.Errorf("%w: the primary owner must transfer ownership before being removed", ErrInvariant)
	}
	next := t.clone()
	next.Members = append(next.Members[:idx], next.Members[idx+1:]...)
	if err := next.validate(); err != nil {
		return Trip{}, err
	}
	return next, nil
}

// LeaveTrip removes memberID from the trip at their own request.
//
// Non-owners just leave. A leaving owner must name a successor when they are
// the last owner; the successor, an existing member, is promoted to OWNER in
// the same transition. When the primary owner leaves, OwnerID is reassigned
// to the successor — primary ownership is never left dangling, so the primary
// owner always needs a successor to leave.
func (t Trip) LeaveTrip(memberID uuid.UUID, successorID *uuid.UUID) (Trip, error) {
	idx := t.memberIndex(memberID)
	if idx < 0 {
		return Trip{}, fmt.Errorf("%w: member %s", ErrNotFound, memberID)
	}
	leavingRole := t.Members[idx].Role

	if leavingRole == RoleOwner && successorID == nil {
		if t.ownerCount() == 1 {
			return Trip{}, fmt.Errorf("%w: the last owner must name a successor to leave", ErrValidation)
		}
		if memberID == t.OwnerID {
			return Trip{}, fmt.Errorf("%w: the primary owner must name a successor to leave", ErrValidation)
		}
	}

	next := t.clone()
	if successorID != nil {
		if *successorID == memberID {
			return Trip{}, fmt.Errorf("%w: successor must be a different member", ErrValidation)
		}
		sIdx := next.memberIndex(*successorID)
		if sIdx < 0 {
			return Trip{}, fmt.Errorf("%w: successor must already be a member", ErrValidation)
		}
		next.Members[sIdx].Role = RoleOwner
		if memberID == next.OwnerID {
			next.OwnerID = *successorID
		}
	}
	next.Members = append(next.Members[:idx], next.Members[idx+1:]...)
	if err := next.validate(); err != nil {
		return Trip{}, err
	}
	return next, nil
}

// inviteIndex returns the position of the invite whose normalized email
// matches key, or -1.
func (t Trip) inviteIndex(key string) int {
	for i, inv := range t.Invites {
		if NormalizeEmail(inv.Email) == key {
			return i
		}
	}
	return -1
}

// memberIndex returns the position of the membership for userID, or -1.
func (t Trip) memberIndex(userID uuid.UUID) int {
	for i, m := range t.Members {
		if m.UserID == userID {
			return i
		}
	}
	return -1
}

// ownerCount returns the number of members holding OWNER.
func (t Trip) ownerCount() int {
	n := 0
	for _, m := range t.Members {
		if m.Role == RoleOwner {
			n++
		}
	}
	return n
}
